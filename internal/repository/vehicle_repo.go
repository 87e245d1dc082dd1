package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-repair-shop/internal/model"
)

type VehicleRepository struct {
	pool *pgxpool.Pool
}

func NewVehicleRepository(pool *pgxpool.Pool) *VehicleRepository {
	return &VehicleRepository{pool: pool}
}

const vehicleColumns = `id, owner_id, vehicle_type, brand_model, plate_number, kilometers`

func scanVehicle(row pgx.Row) (model.Vehicle, error) {
	var v model.Vehicle
	err := row.Scan(&v.ID, &v.OwnerID, &v.VehicleType, &v.BrandModel, &v.PlateNumber, &v.Kilometers)
	return v, err
}

func collectVehicles(rows pgx.Rows) ([]model.Vehicle, error) {
	defer rows.Close()

	vehicles := make([]model.Vehicle, 0)
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan vehicle: %w", err)
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

// vehicleWriteErr maps constraint violations on vehicles to domain errors.
func vehicleWriteErr(op string, err error) error {
	switch {
	case isUniqueViolation(err):
		return model.ErrPlateConflict
	case isForeignKeyViolation(err):
		return model.ErrClientNotFound
	}
	return fmt.Errorf("%s vehicle: %w", op, err)
}

func (r *VehicleRepository) List(ctx context.Context, params model.ListParams) ([]model.Vehicle, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+vehicleColumns+` FROM vehicles ORDER BY id OFFSET $1 LIMIT $2`,
		offsetArg(params.Skip), limitArg(params.Limit))
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	return collectVehicles(rows)
}

func (r *VehicleRepository) ListByOwner(ctx context.Context, ownerID int64) ([]model.Vehicle, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+vehicleColumns+` FROM vehicles WHERE owner_id = $1 ORDER BY id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list vehicles by owner: %w", err)
	}
	return collectVehicles(rows)
}

func (r *VehicleRepository) FindByID(ctx context.Context, id int64) (model.Vehicle, error) {
	v, err := scanVehicle(r.pool.QueryRow(ctx,
		`SELECT `+vehicleColumns+` FROM vehicles WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Vehicle{}, model.ErrVehicleNotFound
	}
	if err != nil {
		return model.Vehicle{}, fmt.Errorf("find vehicle by id: %w", err)
	}
	return v, nil
}

func (r *VehicleRepository) Create(ctx context.Context, in model.VehicleInput) (model.Vehicle, error) {
	v, err := scanVehicle(r.pool.QueryRow(ctx,
		`INSERT INTO vehicles (owner_id, vehicle_type, brand_model, plate_number, kilometers)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+vehicleColumns,
		in.OwnerID, in.VehicleType, in.BrandModel, in.PlateNumber, in.Kilometers))
	if err != nil {
		return model.Vehicle{}, vehicleWriteErr("create", err)
	}
	return v, nil
}

func (r *VehicleRepository) Update(ctx context.Context, id int64, in model.VehicleInput) (model.Vehicle, error) {
	v, err := scanVehicle(r.pool.QueryRow(ctx,
		`UPDATE vehicles
		 SET owner_id = $2, vehicle_type = $3, brand_model = $4, plate_number = $5, kilometers = $6
		 WHERE id = $1
		 RETURNING `+vehicleColumns,
		id, in.OwnerID, in.VehicleType, in.BrandModel, in.PlateNumber, in.Kilometers))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Vehicle{}, model.ErrVehicleNotFound
	}
	if err != nil {
		return model.Vehicle{}, vehicleWriteErr("update", err)
	}
	return v, nil
}

func (r *VehicleRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM vehicles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete vehicle: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrVehicleNotFound
	}
	return nil
}

// DeleteForOwner removes the vehicle only when ownerID owns it.
func (r *VehicleRepository) DeleteForOwner(ctx context.Context, ownerID int64, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM vehicles WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete owner vehicle: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrVehicleNotFound
	}
	return nil
}
