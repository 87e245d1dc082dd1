package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"go-repair-shop/internal/model"
	"go-repair-shop/internal/page"
	"go-repair-shop/internal/view"
)

func workOrderRows(items []view.WorkOrderRow) [][]string {
	rows := make([][]string, 0, len(items))
	for _, o := range items {
		rows = append(rows, []string{
			model.FormatID(o.ID),
			o.EntryDate.String(),
			o.CustomerName,
			o.VehiclePlate,
			label(string(o.WorkStatus)),
			label(string(o.PaymentStatus)),
			o.Workers,
		})
	}
	return rows
}

var workOrderHeaders = []string{"ID", "Entry", "Customer", "Plate", "Status", "Payment", "Workers"}

func newWorkOrdersCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "work-orders",
		Aliases: []string{"orders", "wo"},
		Short:   "List and manage work orders",
	}

	cmd.AddCommand(
		newWorkOrdersListCmd(deps),
		newWorkOrdersGetCmd(deps),
		newWorkOrdersCreateCmd(deps),
		newWorkOrdersUpdateCmd(deps),
		newWorkOrdersDeleteCmd(deps),
	)
	return cmd
}

func newWorkOrdersListCmd(deps *Dependencies) *cobra.Command {
	flags := &listFlags{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List work orders joined with client and vehicle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, snap, err := openPage(cmd.Context(), deps, page.KindWorkOrders, flags)
			if err != nil {
				return err
			}
			defer c.Close()

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, renderTable(workOrderHeaders, workOrderRows(snap.WorkOrders.Items)))
			_, _ = fmt.Fprintln(out, pageFooter(snap.WorkOrders.Page, snap.WorkOrders.TotalPages, snap.WorkOrders.Total))
			return nil
		},
	}
	flags.bind(cmd)
	flags.filter(cmd, view.FilterWorkStatus, "status", "work status: pending, in_progress or completed")
	flags.filter(cmd, view.FilterPaymentStatus, "payment", "payment status, e.g. not_paid or paid")
	flags.filter(cmd, view.FilterClient, "client", "only orders of this client id")
	flags.filter(cmd, view.FilterVehicle, "vehicle", "only orders of this vehicle id")
	return cmd
}

func optionalInt(value *int) string {
	if value == nil {
		return "-"
	}
	return strconv.Itoa(*value)
}

func workOrderCard(o view.WorkOrderRow) string {
	hours := "-"
	if o.Hours != nil {
		hours = strconv.FormatFloat(*o.Hours, 'f', -1, 64)
	}
	egress := "-"
	if o.EgressDate != nil {
		egress = o.EgressDate.String()
	}

	return renderCard("Work order #"+model.FormatID(o.ID), []kvPair{
		{"Customer", fmt.Sprintf("%s (%s)", o.CustomerName, o.CustomerPhone)},
		{"Vehicle", fmt.Sprintf("%s %s", o.VehiclePlate, o.VehicleModel)},
		{"Entry", o.EntryDate.String()},
		{"Egress", egress},
		{"Status", label(string(o.WorkStatus))},
		{"Payment", label(string(o.PaymentStatus))},
		{"Workers", o.Workers},
		{"Hours", hours},
		{"Gas retrieved", optionalInt(o.RefrigerantGasRetrieved)},
		{"Gas injected", optionalInt(o.RefrigerantGasInjected)},
		{"Oil retrieved", optionalInt(o.OilRetrieved)},
		{"Oil injected", optionalInt(o.OilInjected)},
		{"Detector", orDash(label(o.Detector.String()))},
		{"Spare parts", orDash(model.Text(o.SpareParts))},
		{"Details", orDash(model.Text(o.Details))},
	})
}

func newWorkOrdersGetCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show every field of a work order",
		Args:  idArg("work order"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := deps.requireSession(); err != nil {
				return err
			}
			id, _ := parseID(args[0])

			order, err := deps.API.WorkOrders().Get(cmd.Context(), id)
			if err != nil {
				return err
			}

			row := view.WorkOrderRow{WorkOrder: order, CustomerName: view.UnknownName, CustomerPhone: view.NotAvailable, VehiclePlate: view.NotAvailable, VehicleModel: view.NotAvailable}
			if client, err := deps.API.Clients().Get(cmd.Context(), order.ClientID); err == nil {
				row.CustomerName, row.CustomerPhone = client.Name, client.PhoneNumber
			}
			if vehicle, err := deps.API.Vehicles().Get(cmd.Context(), order.VehicleID); err == nil {
				row.VehiclePlate, row.VehicleModel = vehicle.PlateNumber, vehicle.BrandModel
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), workOrderCard(row))
			return nil
		},
	}
}

func newWorkOrdersCreateCmd(deps *Dependencies) *cobra.Command {
	flags := &workOrderFlags{}
	var useForm bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Open a work order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, _, err := openPage(cmd.Context(), deps, page.KindWorkOrders, nil)
			if err != nil {
				return err
			}
			defer c.Close()

			var in model.WorkOrderInput
			if err := flags.merge(cmd, &in); err != nil {
				return err
			}
			if useForm || (interactive() && (in.ClientID == 0 || in.VehicleID == 0)) {
				if err := workOrderForm(&in, c.Data()); err != nil {
					return err
				}
			}

			created, err := c.CreateWorkOrder(cmd.Context(), in)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), model.FormatID(created.ID))
			return nil
		},
	}
	flags.bind(cmd)
	cmd.Flags().BoolVar(&useForm, "form", false, "fill the order in an interactive form")
	return cmd
}

func newWorkOrdersUpdateCmd(deps *Dependencies) *cobra.Command {
	flags := &workOrderFlags{}
	var useForm bool

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a work order",
		Args:  idArg("work order"),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := openPage(cmd.Context(), deps, page.KindWorkOrders, nil)
			if err != nil {
				return err
			}
			defer c.Close()
			id, _ := parseID(args[0])

			current, err := deps.API.WorkOrders().Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			in := current.Input()
			if err := flags.merge(cmd, &in); err != nil {
				return err
			}
			if useForm {
				if err := workOrderForm(&in, c.Data()); err != nil {
					return err
				}
			}

			_, err = c.UpdateWorkOrder(cmd.Context(), id, in)
			return err
		},
	}
	flags.bind(cmd)
	cmd.Flags().BoolVar(&useForm, "form", false, "edit the order in an interactive form")
	return cmd
}

func newWorkOrdersDeleteCmd(deps *Dependencies) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a work order",
		Args:  idArg("work order"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := deps.requireSession(); err != nil {
				return err
			}
			id, _ := parseID(args[0])
			if err := confirm(fmt.Sprintf("Delete work order #%d?", id), yes); err != nil {
				return err
			}

			c := deps.newPage(page.KindWorkOrders, nil)
			defer c.Close()
			return c.DeleteWorkOrder(cmd.Context(), id)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}
