package validate

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"go-repair-shop/internal/model"
)

// Result holds field errors keyed by the field's JSON name. A Result without
// errors is a success.
type Result struct {
	Fields map[string]string
}

func (r Result) OK() bool {
	return len(r.Fields) == 0
}

// Err returns nil for a successful result and an *Error otherwise.
func (r Result) Err() error {
	if r.OK() {
		return nil
	}
	return &Error{Fields: r.Fields}
}

// Add records msg for field unless the field already has an error.
func (r *Result) Add(field string, msg string) {
	if r.Fields == nil {
		r.Fields = map[string]string{}
	}
	if _, exists := r.Fields[field]; exists {
		return
	}
	r.Fields[field] = msg
}

type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for key := range e.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+" "+e.Fields[key])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// FieldErrors extracts the field map from a validation error, if err is one.
func FieldErrors(err error) (map[string]string, bool) {
	var verr *Error
	if errors.As(err, &verr) {
		return verr.Fields, true
	}
	return nil, false
}

var (
	engineOnce sync.Once
	engine     *validator.Validate
)

func structValidator() *validator.Validate {
	engineOnce.Do(func() {
		engine = validator.New(validator.WithRequiredStructEnabled())
		engine.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return engine
}

func checkStruct(value any, result *Result) {
	err := structValidator().Struct(value)
	if err == nil {
		return
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		result.Add("_", err.Error())
		return
	}

	for _, fe := range fieldErrs {
		result.Add(fe.Field(), message(fe))
	}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "email":
		return "must be a valid email address"
	case "gte":
		if fe.Param() == "0" {
			return "must not be negative"
		}
		return "must be at least " + fe.Param()
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	}
	return "is invalid"
}

func Client(in model.ClientInput) Result {
	in.Normalize()

	var result Result
	checkStruct(in, &result)
	return result
}

func Vehicle(in model.VehicleInput) Result {
	in.Normalize()

	var result Result
	checkStruct(in, &result)
	return result
}

// WorkOrder checks a work order. When vehicles is non-nil the chosen vehicle
// must be one of them and belong to the chosen client.
func WorkOrder(in model.WorkOrderInput, vehicles []model.Vehicle) Result {
	in.Normalize()

	var result Result
	if in.EntryDate.IsZero() {
		result.Add("entry_date", "is required")
	}
	checkStruct(in, &result)

	if in.EgressDate != nil && !in.EntryDate.IsZero() && in.EgressDate.Compare(in.EntryDate) < 0 {
		result.Add("egress_date", "must not be before entry_date")
	}

	if vehicles != nil && in.VehicleID != 0 && in.ClientID != 0 {
		if !ownedBy(vehicles, in.VehicleID, in.ClientID) {
			result.Add("vehicle_id", "must belong to the selected client")
		}
	}

	return result
}

func ownedBy(vehicles []model.Vehicle, vehicleID int64, clientID int64) bool {
	for _, vehicle := range vehicles {
		if vehicle.ID == vehicleID {
			return vehicle.OwnerID == clientID
		}
	}
	return false
}

func User(in model.CreateUserRequest) Result {
	var result Result
	username := strings.TrimSpace(in.Username)
	switch {
	case username == "":
		result.Add("username", "is required")
	case len(username) > 25:
		result.Add("username", "must be at most 25 characters")
	}
	if len(in.Password) < 8 {
		result.Add("password", "must be at least 8 characters")
	}
	if !model.Role(model.NormalizeEnum(string(in.Role))).Valid() {
		result.Add("role", "must be one of: admin, employee")
	}
	return result
}
