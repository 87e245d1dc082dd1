package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-repair-shop/internal/model"
)

type WorkOrderRepository struct {
	pool *pgxpool.Pool
}

func NewWorkOrderRepository(pool *pgxpool.Pool) *WorkOrderRepository {
	return &WorkOrderRepository{pool: pool}
}

const workOrderColumns = `id, client_id, vehicle_id, entry_date, egress_date, work_status, payment_status,
	workers, hours, refrigerant_gas_retrieved, refrigerant_gas_injected, oil_retrieved, oil_injected,
	detector, spare_parts, details`

func scanWorkOrder(row pgx.Row) (model.WorkOrder, error) {
	var (
		w        model.WorkOrder
		entry    pgtype.Date
		egress   pgtype.Date
		detector *bool
	)
	err := row.Scan(&w.ID, &w.ClientID, &w.VehicleID, &entry, &egress, &w.WorkStatus, &w.PaymentStatus,
		&w.Workers, &w.Hours, &w.RefrigerantGasRetrieved, &w.RefrigerantGasInjected, &w.OilRetrieved, &w.OilInjected,
		&detector, &w.SpareParts, &w.Details)
	if err != nil {
		return model.WorkOrder{}, err
	}

	w.EntryDate = fromPgDate(entry)
	w.EgressDate = model.DatePtr(fromPgDate(egress))
	w.Detector = model.TriBoolOf(detector)
	return w, nil
}

func fromPgDate(d pgtype.Date) model.Date {
	if !d.Valid {
		return model.Date{}
	}
	return model.NewDate(d.Time.Year(), d.Time.Month(), d.Time.Day())
}

func toPgDate(d *model.Date) pgtype.Date {
	if d == nil || d.IsZero() {
		return pgtype.Date{}
	}
	return pgtype.Date{Time: d.Time, Valid: true}
}

func workOrderArgs(in model.WorkOrderInput) []any {
	return []any{
		in.ClientID, in.VehicleID, toPgDate(&in.EntryDate), toPgDate(in.EgressDate),
		string(in.WorkStatus), string(in.PaymentStatus), in.Workers, in.Hours,
		in.RefrigerantGasRetrieved, in.RefrigerantGasInjected, in.OilRetrieved, in.OilInjected,
		in.Detector.Ptr(), in.SpareParts, in.Details,
	}
}

func workOrderWriteErr(op string, err error) error {
	if isForeignKeyViolation(err) {
		return model.ErrVehicleNotFound
	}
	return fmt.Errorf("%s work order: %w", op, err)
}

func (r *WorkOrderRepository) List(ctx context.Context, params model.ListParams) ([]model.WorkOrder, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+workOrderColumns+` FROM work_orders ORDER BY id OFFSET $1 LIMIT $2`,
		offsetArg(params.Skip), limitArg(params.Limit))
	if err != nil {
		return nil, fmt.Errorf("list work orders: %w", err)
	}
	defer rows.Close()

	orders := make([]model.WorkOrder, 0)
	for rows.Next() {
		w, err := scanWorkOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan work order: %w", err)
		}
		orders = append(orders, w)
	}
	return orders, rows.Err()
}

func (r *WorkOrderRepository) FindByID(ctx context.Context, id int64) (model.WorkOrder, error) {
	w, err := scanWorkOrder(r.pool.QueryRow(ctx,
		`SELECT `+workOrderColumns+` FROM work_orders WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.WorkOrder{}, model.ErrWorkOrderNotFound
	}
	if err != nil {
		return model.WorkOrder{}, fmt.Errorf("find work order by id: %w", err)
	}
	return w, nil
}

func (r *WorkOrderRepository) Create(ctx context.Context, in model.WorkOrderInput) (model.WorkOrder, error) {
	w, err := scanWorkOrder(r.pool.QueryRow(ctx,
		`INSERT INTO work_orders (client_id, vehicle_id, entry_date, egress_date, work_status, payment_status,
			workers, hours, refrigerant_gas_retrieved, refrigerant_gas_injected, oil_retrieved, oil_injected,
			detector, spare_parts, details)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		 RETURNING `+workOrderColumns,
		workOrderArgs(in)...))
	if err != nil {
		return model.WorkOrder{}, workOrderWriteErr("create", err)
	}
	return w, nil
}

func (r *WorkOrderRepository) Update(ctx context.Context, id int64, in model.WorkOrderInput) (model.WorkOrder, error) {
	args := append([]any{id}, workOrderArgs(in)...)
	w, err := scanWorkOrder(r.pool.QueryRow(ctx,
		`UPDATE work_orders SET
			client_id = $2, vehicle_id = $3, entry_date = $4, egress_date = $5,
			work_status = $6, payment_status = $7, workers = $8, hours = $9,
			refrigerant_gas_retrieved = $10, refrigerant_gas_injected = $11,
			oil_retrieved = $12, oil_injected = $13, detector = $14,
			spare_parts = $15, details = $16
		 WHERE id = $1
		 RETURNING `+workOrderColumns,
		args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.WorkOrder{}, model.ErrWorkOrderNotFound
	}
	if err != nil {
		return model.WorkOrder{}, workOrderWriteErr("update", err)
	}
	return w, nil
}

func (r *WorkOrderRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM work_orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete work order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrWorkOrderNotFound
	}
	return nil
}
