package view

import (
	"slices"

	"go-repair-shop/internal/model"
)

const PageWindowDelta = 2

// Distinct returns the sorted set of non-empty values, used to offer filter
// choices.
func Distinct[T any](rows []T, value func(T) string) []string {
	seen := make(map[string]struct{}, len(rows))
	out := make([]string, 0)
	for _, row := range rows {
		v := value(row)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

// PageWindow lists the page numbers shown around current, clamped to
// [1, total].
func PageWindow(current int, total int, delta int) []int {
	if total < 1 {
		total = 1
	}
	left := max(1, current-delta)
	right := min(total, current+delta)

	pages := make([]int, 0, right-left+1)
	for p := left; p <= right; p++ {
		pages = append(pages, p)
	}
	return pages
}

type Stats struct {
	Total           int `json:"total"`
	New             int `json:"new"`
	InProgress      int `json:"in_progress"`
	Completed       int `json:"completed"`
	AwaitingPayment int `json:"awaiting_payment"`
}

// WorkOrderStats counts the dashboard figures. New orders are the pending
// ones; awaiting payment covers not paid, partially paid and bill sent.
func WorkOrderStats(orders []model.WorkOrder) Stats {
	stats := Stats{Total: len(orders)}
	for _, order := range orders {
		switch order.WorkStatus {
		case model.WorkStatusPending:
			stats.New++
		case model.WorkStatusInProgress:
			stats.InProgress++
		case model.WorkStatusCompleted:
			stats.Completed++
		}
		if order.PaymentStatus.AwaitingPayment() {
			stats.AwaitingPayment++
		}
	}
	return stats
}

// Recent returns up to n orders with the latest entry dates first.
func Recent(rows []WorkOrderRow, n int) []WorkOrderRow {
	sorted := Sort(rows, WorkOrderSchema.Compare, Desc)
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
