package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"go-repair-shop/internal/model"
	"go-repair-shop/internal/page"
	"go-repair-shop/internal/view"
)

var vehicleHeaders = []string{"ID", "Plate", "Model", "Type", "Km", "Owner"}

// vehicleRows renders the first n vehicle columns.
func vehicleRows(vehicles []model.Vehicle, n int) [][]string {
	rows := make([][]string, 0, len(vehicles))
	for _, v := range vehicles {
		row := []string{model.FormatID(v.ID), v.PlateNumber, v.BrandModel, v.VehicleType, strconv.Itoa(v.Kilometers), model.FormatID(v.OwnerID)}
		rows = append(rows, row[:n])
	}
	return rows
}

func vehicleViewRows(items []view.VehicleRow) [][]string {
	rows := make([][]string, 0, len(items))
	for _, v := range items {
		rows = append(rows, []string{model.FormatID(v.ID), v.PlateNumber, v.BrandModel, v.VehicleType, strconv.Itoa(v.Kilometers), v.OwnerName})
	}
	return rows
}

func newVehiclesCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "vehicles",
		Aliases: []string{"vehicle"},
		Short:   "List and manage vehicles",
	}

	cmd.AddCommand(
		newVehiclesListCmd(deps),
		newVehiclesGetCmd(deps),
		newVehiclesCreateCmd(deps),
		newVehiclesUpdateCmd(deps),
		newVehiclesDeleteCmd(deps),
	)
	return cmd
}

func newVehiclesListCmd(deps *Dependencies) *cobra.Command {
	flags := &listFlags{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List vehicles with their owners",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, snap, err := openPage(cmd.Context(), deps, page.KindVehicles, flags)
			if err != nil {
				return err
			}
			defer c.Close()

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, renderTable(vehicleHeaders, vehicleViewRows(snap.Vehicles.Items)))
			_, _ = fmt.Fprintln(out, pageFooter(snap.Vehicles.Page, snap.Vehicles.TotalPages, snap.Vehicles.Total))
			return nil
		},
	}
	flags.bind(cmd)
	flags.filter(cmd, view.FilterVehicleType, "type", "only vehicles of this type")
	flags.filter(cmd, view.FilterOwner, "owner", "only vehicles owned by this client id")
	return cmd
}

// newVehiclesGetCmd shows a vehicle with its owner and its work order history.
// The history goes through the work orders page, so --search, --order and
// --page behave as in `work-orders list`.
func newVehiclesGetCmd(deps *Dependencies) *cobra.Command {
	flags := &listFlags{}
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a vehicle, its owner and its work orders",
		Args:  idArg("vehicle"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := deps.requireSession(); err != nil {
				return err
			}
			id, _ := parseID(args[0])

			v, err := deps.API.Vehicles().Get(cmd.Context(), id)
			if err != nil {
				return err
			}

			vehicleID := model.FormatID(id)
			flags.filters = map[string]*string{view.FilterVehicle: &vehicleID}
			c, snap, err := openPage(cmd.Context(), deps, page.KindWorkOrders, flags)
			if err != nil {
				return err
			}
			defer c.Close()

			row := view.JoinVehicles([]model.Vehicle{v}, c.Data().Clients)[0]

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, renderCard("Vehicle #"+model.FormatID(v.ID), []kvPair{
				{"Plate", v.PlateNumber},
				{"Model", v.BrandModel},
				{"Type", v.VehicleType},
				{"Kilometers", strconv.Itoa(v.Kilometers)},
				{"Owner", fmt.Sprintf("%s (#%s)", row.OwnerName, model.FormatID(v.OwnerID))},
				{"Phone", row.OwnerPhone},
			}))
			_, _ = fmt.Fprintln(out, titleStyle.Render("Work orders"))
			_, _ = fmt.Fprintln(out, renderTable(workOrderHeaders, workOrderRows(snap.WorkOrders.Items)))
			_, _ = fmt.Fprintln(out, pageFooter(snap.WorkOrders.Page, snap.WorkOrders.TotalPages, snap.WorkOrders.Total))
			return nil
		},
	}
	flags.bind(cmd)
	return cmd
}

type vehicleFlags struct {
	owner int64
	kind  string
	model string
	plate string
	km    int
}

func (f *vehicleFlags) bind(cmd *cobra.Command, withOwner bool) {
	if withOwner {
		cmd.Flags().Int64Var(&f.owner, "owner", 0, "owning client id")
	}
	cmd.Flags().StringVar(&f.kind, "type", "", "vehicle type, e.g. van or truck")
	cmd.Flags().StringVar(&f.model, "model", "", "brand and model")
	cmd.Flags().StringVar(&f.plate, "plate", "", "plate number")
	cmd.Flags().IntVar(&f.km, "km", 0, "odometer reading in kilometers")
}

func (f *vehicleFlags) merge(cmd *cobra.Command, in *model.VehicleInput) {
	changed := cmd.Flags().Changed
	if changed("owner") {
		in.OwnerID = f.owner
	}
	if changed("type") {
		in.VehicleType = f.kind
	}
	if changed("model") {
		in.BrandModel = f.model
	}
	if changed("plate") {
		in.PlateNumber = f.plate
	}
	if changed("km") {
		in.Kilometers = f.km
	}
	in.Normalize()
}

func newVehiclesCreateCmd(deps *Dependencies) *cobra.Command {
	flags := &vehicleFlags{}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a vehicle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := deps.requireSession(); err != nil {
				return err
			}

			var in model.VehicleInput
			flags.merge(cmd, &in)

			c := deps.newPage(page.KindVehicles, nil)
			defer c.Close()
			created, err := c.CreateVehicle(cmd.Context(), in)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), model.FormatID(created.ID))
			return nil
		},
	}
	flags.bind(cmd, true)
	return cmd
}

func newVehiclesUpdateCmd(deps *Dependencies) *cobra.Command {
	flags := &vehicleFlags{}
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a vehicle",
		Args:  idArg("vehicle"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := deps.requireSession(); err != nil {
				return err
			}
			id, _ := parseID(args[0])

			current, err := deps.API.Vehicles().Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			in := current.Input()
			flags.merge(cmd, &in)

			c := deps.newPage(page.KindVehicles, nil)
			defer c.Close()
			_, err = c.UpdateVehicle(cmd.Context(), id, in)
			return err
		},
	}
	flags.bind(cmd, true)
	return cmd
}

func newVehiclesDeleteCmd(deps *Dependencies) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a vehicle and its work orders",
		Args:  idArg("vehicle"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := deps.requireSession(); err != nil {
				return err
			}
			id, _ := parseID(args[0])
			if err := confirm(fmt.Sprintf("Delete vehicle #%d?", id), yes); err != nil {
				return err
			}

			c := deps.newPage(page.KindVehicles, nil)
			defer c.Close()
			return c.DeleteVehicle(cmd.Context(), id)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}
