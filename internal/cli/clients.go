package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"go-repair-shop/internal/model"
	"go-repair-shop/internal/notify"
	"go-repair-shop/internal/page"
	"go-repair-shop/internal/validate"
)

func newClientsCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "clients",
		Aliases: []string{"client"},
		Short:   "List and manage clients",
	}

	cmd.AddCommand(
		newClientsListCmd(deps),
		newClientsGetCmd(deps),
		newClientsCreateCmd(deps),
		newClientsUpdateCmd(deps),
		newClientsDeleteCmd(deps),
		newClientVehiclesCmd(deps),
		newClientAddVehicleCmd(deps),
		newClientRemoveVehicleCmd(deps),
	)
	return cmd
}

func clientRows(clients []model.Client) [][]string {
	rows := make([][]string, 0, len(clients))
	for _, c := range clients {
		rows = append(rows, []string{model.FormatID(c.ID), c.Name, c.PhoneNumber, orDash(model.Text(c.Email))})
	}
	return rows
}

func newClientsListCmd(deps *Dependencies) *cobra.Command {
	flags := &listFlags{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List clients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, snap, err := openPage(cmd.Context(), deps, page.KindClients, flags)
			if err != nil {
				return err
			}
			defer c.Close()

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, renderTable([]string{"ID", "Name", "Phone", "Email"}, clientRows(snap.Clients.Items)))
			_, _ = fmt.Fprintln(out, pageFooter(snap.Clients.Page, snap.Clients.TotalPages, snap.Clients.Total))
			return nil
		},
	}
	flags.bind(cmd)
	return cmd
}

func newClientsGetCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a client and the vehicles they own",
		Args:  idArg("client"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := deps.requireSession(); err != nil {
				return err
			}
			id, _ := parseID(args[0])

			client, err := deps.API.Clients().Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			vehicles, err := deps.API.Vehicles().ListByOwner(cmd.Context(), id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, renderCard("Client #"+model.FormatID(client.ID), []kvPair{
				{"Name", client.Name},
				{"Phone", client.PhoneNumber},
				{"Email", orDash(model.Text(client.Email))},
				{"Vehicles", fmt.Sprint(len(vehicles))},
			}))
			if len(vehicles) > 0 {
				_, _ = fmt.Fprintln(out, renderTable(vehicleHeaders[:5], vehicleRows(vehicles, 5)))
			}
			return nil
		},
	}
}

type clientFlags struct {
	name  string
	phone string
	email string
}

func (f *clientFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "client name")
	cmd.Flags().StringVar(&f.phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&f.email, "email", "", "email address (optional)")
}

// merge copies the flags the user actually set onto in.
func (f *clientFlags) merge(cmd *cobra.Command, in *model.ClientInput) {
	if cmd.Flags().Changed("name") {
		in.Name = f.name
	}
	if cmd.Flags().Changed("phone") {
		in.PhoneNumber = f.phone
	}
	if cmd.Flags().Changed("email") {
		in.Email = model.StringPtr(f.email)
	}
	in.Normalize()
}

func newClientsCreateCmd(deps *Dependencies) *cobra.Command {
	flags := &clientFlags{}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a client",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := deps.requireSession(); err != nil {
				return err
			}

			var in model.ClientInput
			flags.merge(cmd, &in)

			c := deps.newPage(page.KindClients, nil)
			defer c.Close()
			created, err := c.CreateClient(cmd.Context(), in)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), model.FormatID(created.ID))
			return nil
		},
	}
	flags.bind(cmd)
	return cmd
}

func newClientsUpdateCmd(deps *Dependencies) *cobra.Command {
	flags := &clientFlags{}
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a client's details",
		Args:  idArg("client"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := deps.requireSession(); err != nil {
				return err
			}
			id, _ := parseID(args[0])

			current, err := deps.API.Clients().Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			in := current.Input()
			flags.merge(cmd, &in)

			c := deps.newPage(page.KindClients, nil)
			defer c.Close()
			_, err = c.UpdateClient(cmd.Context(), id, in)
			return err
		},
	}
	flags.bind(cmd)
	return cmd
}

func newClientsDeleteCmd(deps *Dependencies) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a client with their vehicles and work orders (admin)",
		Args:  idArg("client"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := deps.requireSession(model.RoleAdmin); err != nil {
				return err
			}
			id, _ := parseID(args[0])
			if err := confirm(fmt.Sprintf("Delete client #%d and everything they own?", id), yes); err != nil {
				return err
			}

			c := deps.newPage(page.KindClients, nil)
			defer c.Close()
			return c.DeleteClient(cmd.Context(), id)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newClientVehiclesCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "vehicles <id>",
		Short: "List the vehicles a client owns",
		Args:  idArg("client"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := deps.requireSession(); err != nil {
				return err
			}
			id, _ := parseID(args[0])

			vehicles, err := deps.API.Vehicles().ListByOwner(cmd.Context(), id)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), renderTable(vehicleHeaders[:5], vehicleRows(vehicles, 5)))
			return nil
		},
	}
}

func newClientAddVehicleCmd(deps *Dependencies) *cobra.Command {
	flags := &vehicleFlags{}
	cmd := &cobra.Command{
		Use:   "add-vehicle <id>",
		Short: "Register a vehicle under a client",
		Args:  idArg("client"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := deps.requireSession(); err != nil {
				return err
			}
			ownerID, _ := parseID(args[0])

			in := model.VehicleInput{OwnerID: ownerID}
			flags.merge(cmd, &in)
			in.OwnerID = ownerID
			if err := validate.Vehicle(in).Err(); err != nil {
				return err
			}

			created, err := deps.API.Vehicles().CreateForOwner(cmd.Context(), ownerID, in)
			if err != nil {
				deps.Notify.Publish("Failed to create vehicle: "+err.Error(), notify.SeverityError)
				return err
			}
			deps.Notify.Publish("Vehicle created successfully", notify.SeveritySuccess)
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), model.FormatID(created.ID))
			return nil
		},
	}
	flags.bind(cmd, false)
	return cmd
}

func newClientRemoveVehicleCmd(deps *Dependencies) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "remove-vehicle <id> <vehicle-id>",
		Short: "Delete a vehicle owned by a client",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := deps.requireSession(); err != nil {
				return err
			}
			ownerID, err := parseID(args[0])
			if err != nil {
				return err
			}
			vehicleID, err := parseID(args[1])
			if err != nil {
				return err
			}
			if err := confirm(fmt.Sprintf("Delete vehicle #%d of client #%d?", vehicleID, ownerID), yes); err != nil {
				return err
			}

			if err := deps.API.Vehicles().DeleteForOwner(cmd.Context(), ownerID, vehicleID); err != nil {
				deps.Notify.Publish("Failed to delete vehicle: "+err.Error(), notify.SeverityError)
				return err
			}
			deps.Notify.Publish("Vehicle deleted successfully", notify.SeveritySuccess)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}
