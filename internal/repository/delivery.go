package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"delivery-dispatch/internal/apperr"
	"delivery-dispatch/internal/domain"
)

// DeliveryRepo represents delivery repository.
type DeliveryRepo struct {
	db *pgxpool.Pool
}

// NewDeliveryRepo creates a new DeliveryRepo.
func NewDeliveryRepo(db *pgxpool.Pool) *DeliveryRepo {
	return &DeliveryRepo{db: db}
}

// WithTx opens a transaction and executes fn within it.
func (r *DeliveryRepo) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) (err error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return wrap("begin tx", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("rollback tx: %w (original error: %s)", rbErr, err.Error())
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return wrap("commit tx", err)
	}
	return nil
}

// CreateDelivery - inserts a new delivery.
func (r *DeliveryRepo) CreateDelivery(ctx context.Context, d *domain.Delivery) error {
	err := r.db.QueryRow(ctx, `
        INSERT INTO deliveries (id, order_id, status, restaurant_lat, restaurant_lng, customer_lat, customer_lng, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING created_at
    `, d.ID, d.OrderID, string(d.Status),
		d.RestaurantLocation.Lat, d.RestaurantLocation.Lng,
		d.CustomerLocation.Lat, d.CustomerLocation.Lng, d.CreatedAt,
	).Scan(&d.CreatedAt)
	if err != nil {
		if IsDuplicate(err) {
			return apperr.ErrConflict
		}
		return wrap("create delivery", err)
	}
	return nil
}

// GetDelivery - get delivery by ID.
func (r *DeliveryRepo) GetDelivery(ctx context.Context, id string) (*domain.Delivery, error) {
	return r.getOne(ctx, fmt.Sprintf("get delivery %q", id),
		`SELECT `+deliveryColumns+` FROM deliveries WHERE id = $1`, id)
}

// GetDeliveryByOrderID - get delivery by order ID.
func (r *DeliveryRepo) GetDeliveryByOrderID(ctx context.Context, orderID string) (*domain.Delivery, error) {
	return r.getOne(ctx, fmt.Sprintf("get delivery by order %q", orderID),
		`SELECT `+deliveryColumns+` FROM deliveries WHERE order_id = $1`, orderID)
}

func (r *DeliveryRepo) getOne(ctx context.Context, op, q string, arg any) (*domain.Delivery, error) {
	d, err := scanDelivery(r.db.QueryRow(ctx, q, arg))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, wrap(op, err)
	}
	return d, nil
}

// ListDeliveries returns deliveries ordered by creation time.
func (r *DeliveryRepo) ListDeliveries(ctx context.Context, f domain.DeliveryFilter) ([]domain.Delivery, error) {
	q := `SELECT ` + deliveryColumns + ` FROM deliveries WHERE TRUE`
	args := make([]any, 0, 4)
	if f.Status != nil {
		args = append(args, string(*f.Status))
		q += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if f.DriverID != nil {
		args = append(args, *f.DriverID)
		q += fmt.Sprintf(" AND driver_id = $%d", len(args))
	}
	q += " ORDER BY created_at, id"
	if f.Limit != nil {
		args = append(args, *f.Limit)
		q += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset != nil {
		args = append(args, *f.Offset)
		q += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, wrap("list deliveries", err)
	}
	capacity := 0
	if f.Limit != nil && *f.Limit > 0 {
		capacity = *f.Limit
	}
	return collect(rows, scanDelivery, capacity)
}

// PendingDeliveries returns unassigned deliveries, oldest first.
func (r *DeliveryRepo) PendingDeliveries(ctx context.Context) ([]domain.Delivery, error) {
	status := domain.StatusPending
	return r.ListDeliveries(ctx, domain.DeliveryFilter{Status: &status})
}
