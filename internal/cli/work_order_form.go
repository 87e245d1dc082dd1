package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"go-repair-shop/internal/model"
	"go-repair-shop/internal/page"
)

type workOrderFlags struct {
	client       int64
	vehicle      int64
	entry        string
	egress       string
	status       string
	payment      string
	workers      string
	hours        float64
	gasRetrieved int
	gasInjected  int
	oilRetrieved int
	oilInjected  int
	detector     string
	spareParts   string
	details      string
}

func (f *workOrderFlags) bind(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.Int64Var(&f.client, "client", 0, "client id")
	fs.Int64Var(&f.vehicle, "vehicle", 0, "vehicle id (must belong to the client)")
	fs.StringVar(&f.entry, "entry", "", "entry date, YYYY-MM-DD")
	fs.StringVar(&f.egress, "egress", "", "egress date, YYYY-MM-DD (empty clears it)")
	fs.StringVar(&f.status, "status", "", "pending, in_progress or completed")
	fs.StringVar(&f.payment, "payment", "", "not_paid, partially_paid, paid, bill_sent or not_requested")
	fs.StringVar(&f.workers, "workers", "", "who worked on the vehicle")
	fs.Float64Var(&f.hours, "hours", 0, "hours spent")
	fs.IntVar(&f.gasRetrieved, "gas-retrieved", 0, "refrigerant gas retrieved (g)")
	fs.IntVar(&f.gasInjected, "gas-injected", 0, "refrigerant gas injected (g)")
	fs.IntVar(&f.oilRetrieved, "oil-retrieved", 0, "oil retrieved (ml)")
	fs.IntVar(&f.oilInjected, "oil-injected", 0, "oil injected (ml)")
	fs.StringVar(&f.detector, "detector", "", "leak detector used: yes, no or empty")
	fs.StringVar(&f.spareParts, "spare-parts", "", "spare parts used")
	fs.StringVar(&f.details, "details", "", "free-form notes")
}

func intPtr(v int) *int { return &v }

// merge copies the flags that were set onto in. Unset flags keep in's value so
// update only changes what the user named.
func (f *workOrderFlags) merge(cmd *cobra.Command, in *model.WorkOrderInput) error {
	changed := cmd.Flags().Changed

	if changed("client") {
		in.ClientID = f.client
	}
	if changed("vehicle") {
		in.VehicleID = f.vehicle
	}
	if changed("entry") {
		d, err := model.ParseDate(f.entry)
		if err != nil {
			return fmt.Errorf("--entry: %w", err)
		}
		in.EntryDate = d
	}
	if changed("egress") {
		d, err := model.ParseDate(f.egress)
		if err != nil {
			return fmt.Errorf("--egress: %w", err)
		}
		in.EgressDate = model.DatePtr(d)
	}
	if changed("status") {
		in.WorkStatus = model.WorkStatus(model.NormalizeEnum(f.status))
	}
	if changed("payment") {
		in.PaymentStatus = model.PaymentStatus(model.NormalizeEnum(f.payment))
	}
	if changed("workers") {
		in.Workers = f.workers
	}
	if changed("hours") {
		hours := f.hours
		in.Hours = &hours
	}
	if changed("gas-retrieved") {
		in.RefrigerantGasRetrieved = intPtr(f.gasRetrieved)
	}
	if changed("gas-injected") {
		in.RefrigerantGasInjected = intPtr(f.gasInjected)
	}
	if changed("oil-retrieved") {
		in.OilRetrieved = intPtr(f.oilRetrieved)
	}
	if changed("oil-injected") {
		in.OilInjected = intPtr(f.oilInjected)
	}
	if changed("detector") {
		value, ok := model.ParseTriBool(f.detector)
		if !ok {
			return fmt.Errorf("--detector must be yes, no or empty, got %q", f.detector)
		}
		in.Detector = value
	}
	if changed("spare-parts") {
		in.SpareParts = model.StringPtr(f.spareParts)
	}
	if changed("details") {
		in.Details = model.StringPtr(f.details)
	}

	in.Normalize()
	return nil
}

func validDate(required bool) func(string) error {
	return func(raw string) error {
		if strings.TrimSpace(raw) == "" {
			if required {
				return errors.New("date is required")
			}
			return nil
		}
		_, err := model.ParseDate(raw)
		return err
	}
}

func validNumber(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || v < 0 {
		return errors.New("must be a non-negative number")
	}
	return nil
}

// workOrderForm edits in with a huh form. The vehicle choices follow the
// selected client.
func workOrderForm(in *model.WorkOrderInput, data page.Data) error {
	clientOptions := make([]huh.Option[int64], 0, len(data.Clients))
	for _, c := range data.Clients {
		clientOptions = append(clientOptions, huh.NewOption(fmt.Sprintf("#%d %s", c.ID, c.Name), c.ID))
	}
	if len(clientOptions) == 0 {
		return errors.New("no clients yet: create one with `shopctl clients create`")
	}

	statusOptions := make([]huh.Option[model.WorkStatus], 0, len(model.WorkStatuses))
	for _, s := range model.WorkStatuses {
		statusOptions = append(statusOptions, huh.NewOption(label(string(s)), s))
	}
	paymentOptions := make([]huh.Option[model.PaymentStatus], 0, len(model.PaymentStatuses))
	for _, p := range model.PaymentStatuses {
		paymentOptions = append(paymentOptions, huh.NewOption(label(string(p)), p))
	}

	entry := in.EntryDate.String()
	egress := ""
	if in.EgressDate != nil {
		egress = in.EgressDate.String()
	}
	hours := ""
	if in.Hours != nil {
		hours = strconv.FormatFloat(*in.Hours, 'f', -1, 64)
	}
	detector := in.Detector.String()
	spareParts := model.Text(in.SpareParts)
	details := model.Text(in.Details)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int64]().Title("Client").Options(clientOptions...).Value(&in.ClientID),
			huh.NewSelect[int64]().Title("Vehicle").
				OptionsFunc(func() []huh.Option[int64] {
					var options []huh.Option[int64]
					for _, v := range data.Vehicles {
						if v.OwnerID == in.ClientID {
							options = append(options, huh.NewOption(fmt.Sprintf("%s %s", v.PlateNumber, v.BrandModel), v.ID))
						}
					}
					return options
				}, &in.ClientID).
				Value(&in.VehicleID),
		),
		huh.NewGroup(
			huh.NewInput().Title("Entry date").Placeholder("YYYY-MM-DD").Value(&entry).Validate(validDate(true)),
			huh.NewInput().Title("Egress date").Placeholder("YYYY-MM-DD").Value(&egress).Validate(validDate(false)),
			huh.NewSelect[model.WorkStatus]().Title("Work status").Options(statusOptions...).Value(&in.WorkStatus),
			huh.NewSelect[model.PaymentStatus]().Title("Payment").Options(paymentOptions...).Value(&in.PaymentStatus),
		),
		huh.NewGroup(
			huh.NewInput().Title("Workers").Value(&in.Workers),
			huh.NewInput().Title("Hours").Value(&hours).Validate(validNumber),
			huh.NewSelect[string]().Title("Leak detector").Options(
				huh.NewOption("Not recorded", ""),
				huh.NewOption("Yes", "yes"),
				huh.NewOption("No", "no"),
			).Value(&detector),
			huh.NewInput().Title("Spare parts").Value(&spareParts),
			huh.NewText().Title("Details").Value(&details),
		),
	)
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return errAborted
		}
		return err
	}

	in.EntryDate, _ = model.ParseDate(entry)
	parsedEgress, _ := model.ParseDate(egress)
	in.EgressDate = model.DatePtr(parsedEgress)
	in.Hours = nil
	if strings.TrimSpace(hours) != "" {
		h, _ := strconv.ParseFloat(strings.TrimSpace(hours), 64)
		in.Hours = &h
	}
	in.Detector, _ = model.ParseTriBool(detector)
	in.SpareParts = model.StringPtr(spareParts)
	in.Details = model.StringPtr(details)
	in.Normalize()
	return nil
}
