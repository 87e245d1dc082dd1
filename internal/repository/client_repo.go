package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-repair-shop/internal/model"
)

type ClientRepository struct {
	pool *pgxpool.Pool
}

func NewClientRepository(pool *pgxpool.Pool) *ClientRepository {
	return &ClientRepository{pool: pool}
}

const clientColumns = `id, name, phone_number, email`

func scanClient(row pgx.Row) (model.Client, error) {
	var c model.Client
	err := row.Scan(&c.ID, &c.Name, &c.PhoneNumber, &c.Email)
	return c, err
}

func (r *ClientRepository) List(ctx context.Context, params model.ListParams) ([]model.Client, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+clientColumns+` FROM clients ORDER BY id OFFSET $1 LIMIT $2`,
		offsetArg(params.Skip), limitArg(params.Limit))
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	clients := make([]model.Client, 0)
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

func (r *ClientRepository) FindByID(ctx context.Context, id int64) (model.Client, error) {
	c, err := scanClient(r.pool.QueryRow(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Client{}, model.ErrClientNotFound
	}
	if err != nil {
		return model.Client{}, fmt.Errorf("find client by id: %w", err)
	}
	return c, nil
}

func (r *ClientRepository) Create(ctx context.Context, in model.ClientInput) (model.Client, error) {
	c, err := scanClient(r.pool.QueryRow(ctx,
		`INSERT INTO clients (name, phone_number, email)
		 VALUES ($1, $2, $3)
		 RETURNING `+clientColumns,
		in.Name, in.PhoneNumber, in.Email))
	if err != nil {
		return model.Client{}, fmt.Errorf("create client: %w", err)
	}
	return c, nil
}

func (r *ClientRepository) Update(ctx context.Context, id int64, in model.ClientInput) (model.Client, error) {
	c, err := scanClient(r.pool.QueryRow(ctx,
		`UPDATE clients SET name = $2, phone_number = $3, email = $4
		 WHERE id = $1
		 RETURNING `+clientColumns,
		id, in.Name, in.PhoneNumber, in.Email))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Client{}, model.ErrClientNotFound
	}
	if err != nil {
		return model.Client{}, fmt.Errorf("update client: %w", err)
	}
	return c, nil
}

// Delete removes the client together with its vehicles and work orders.
func (r *ClientRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrClientNotFound
	}
	return nil
}
