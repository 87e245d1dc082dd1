package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

type WorkStatus string

const (
	WorkStatusPending    WorkStatus = "pending"
	WorkStatusInProgress WorkStatus = "in_progress"
	WorkStatusCompleted  WorkStatus = "completed"
)

var WorkStatuses = []WorkStatus{WorkStatusPending, WorkStatusInProgress, WorkStatusCompleted}

func (s WorkStatus) Valid() bool {
	for _, known := range WorkStatuses {
		if s == known {
			return true
		}
	}
	return false
}

func (s *WorkStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = WorkStatus(NormalizeEnum(raw))
	return nil
}

type PaymentStatus string

const (
	PaymentNotPaid       PaymentStatus = "not_paid"
	PaymentPartiallyPaid PaymentStatus = "partially_paid"
	PaymentPaid          PaymentStatus = "paid"
	PaymentBillSent      PaymentStatus = "bill_sent"
	PaymentNotRequested  PaymentStatus = "not_requested"
)

var PaymentStatuses = []PaymentStatus{
	PaymentNotPaid,
	PaymentPartiallyPaid,
	PaymentPaid,
	PaymentBillSent,
	PaymentNotRequested,
}

func (s PaymentStatus) Valid() bool {
	for _, known := range PaymentStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// AwaitingPayment reports whether money is still owed for the order.
func (s PaymentStatus) AwaitingPayment() bool {
	return s == PaymentNotPaid || s == PaymentPartiallyPaid || s == PaymentBillSent
}

func (s *PaymentStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = PaymentStatus(NormalizeEnum(raw))
	return nil
}

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleEmployee
}

func (r *Role) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Role(NormalizeEnum(raw))
	return nil
}

// NormalizeEnum maps "IN_PROGRESS", "In Progress" and "in-progress" to "in_progress".
func NormalizeEnum(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	value = strings.NewReplacer(" ", "_", "-", "_").Replace(value)
	return value
}

// TriBool is an optional boolean: unset, true or false.
type TriBool int8

const (
	Unset TriBool = iota
	True
	False
)

func TriBoolOf(value *bool) TriBool {
	if value == nil {
		return Unset
	}
	if *value {
		return True
	}
	return False
}

// ParseTriBool accepts true/false/yes/no and treats anything blank as unset.
func ParseTriBool(raw string) (TriBool, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return Unset, true
	case "true", "yes", "y", "1":
		return True, true
	case "false", "no", "n", "0":
		return False, true
	}
	return Unset, false
}

func (t TriBool) Ptr() *bool {
	switch t {
	case True:
		v := true
		return &v
	case False:
		v := false
		return &v
	}
	return nil
}

func (t TriBool) String() string {
	switch t {
	case True:
		return "yes"
	case False:
		return "no"
	}
	return ""
}

func (t TriBool) MarshalJSON() ([]byte, error) {
	switch t {
	case True:
		return []byte("true"), nil
	case False:
		return []byte("false"), nil
	}
	return []byte("null"), nil
}

func (t *TriBool) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch string(trimmed) {
	case "null":
		*t = Unset
		return nil
	case "true":
		*t = True
		return nil
	case "false":
		*t = False
		return nil
	}

	var raw string
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return err
	}
	parsed, ok := ParseTriBool(raw)
	if !ok {
		return fmt.Errorf("invalid tri-state value %q", raw)
	}
	*t = parsed
	return nil
}
