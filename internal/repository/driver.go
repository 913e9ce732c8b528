package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"delivery-dispatch/internal/apperr"
	"delivery-dispatch/internal/domain"
	"delivery-dispatch/internal/geo"
)

// DriverRepo represents driver repository.
type DriverRepo struct{ db *pgxpool.Pool }

// NewDriverRepo creates a new DriverRepo.
func NewDriverRepo(db *pgxpool.Pool) *DriverRepo { return &DriverRepo{db: db} }

// GetDriver - returns driver by its ID.
func (r *DriverRepo) GetDriver(ctx context.Context, id int64) (*domain.Driver, error) {
	d, err := scanDriver(r.db.QueryRow(ctx,
		`SELECT `+driverColumns+` FROM drivers WHERE id=$1`, id))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, wrap(fmt.Sprintf("get driver %d", id), err)
	}
	return d, nil
}

// ListDrivers returns drivers ordered by id. Nil limit/offset return the full list.
func (r *DriverRepo) ListDrivers(ctx context.Context, f domain.DriverFilter) ([]domain.Driver, error) {
	q := `SELECT ` + driverColumns + ` FROM drivers`
	args := make([]any, 0, 3)
	if f.Available != nil {
		args = append(args, *f.Available)
		q += fmt.Sprintf(" WHERE available = $%d", len(args))
	}
	q += " ORDER BY id"
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
		return nil, wrap("list drivers", err)
	}
	capacity := 0
	if f.Limit != nil && *f.Limit > 0 {
		capacity = *f.Limit
	}
	return collect(rows, scanDriver, capacity)
}

// AvailableDrivers returns drivers not holding an active delivery, in registration order.
func (r *DriverRepo) AvailableDrivers(ctx context.Context) ([]domain.Driver, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+driverColumns+` FROM drivers WHERE available ORDER BY id`)
	if err != nil {
		return nil, wrap("available drivers", err)
	}
	return collect(rows, scanDriver, 0)
}

// CreateDriver - registers a new driver and fills its ID and registration time.
func (r *DriverRepo) CreateDriver(ctx context.Context, d *domain.Driver) error {
	err := r.db.QueryRow(ctx, `
        INSERT INTO drivers (name, phone, available)
        VALUES ($1, $2, TRUE)
        RETURNING id, registered_at
    `, d.Name, d.Phone).Scan(&d.ID, &d.RegisteredAt)
	if err != nil {
		if IsDuplicate(err) {
			return apperr.ErrConflict
		}
		return wrap("create driver", err)
	}
	d.Available = true
	return nil
}

// UpdateDriverPosition stores an idle position ping unless a newer one is already stored.
func (r *DriverRepo) UpdateDriverPosition(ctx context.Context, id int64, p geo.Point, at time.Time) (bool, error) {
	ct, err := r.db.Exec(ctx, `
        UPDATE drivers
        SET lat = $2, lng = $3, location_at = $4, updated_at = now()
        WHERE id = $1 AND (location_at IS NULL OR location_at <= $4)
    `, id, p.Lat, p.Lng, at)
	if err != nil {
		return false, wrap(fmt.Sprintf("update driver %d position", id), err)
	}
	return ct.RowsAffected() > 0, nil
}
