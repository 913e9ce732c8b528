package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"delivery-dispatch/internal/apperr"
	"delivery-dispatch/internal/domain"
)

// stampColumns whitelists the timestamp column recorded for each status.
var stampColumns = map[domain.Status]string{
	domain.StatusPickedUp:  "picked_up_at",
	domain.StatusInTransit: "in_transit_at",
	domain.StatusDelivered: "delivered_at",
	domain.StatusCancelled: "cancelled_at",
}

// ClaimAssignment takes the driver and the delivery in one transaction.
// Either guard missing rolls back both and returns apperr.ErrAlreadyClaimed.
func (r *DeliveryRepo) ClaimAssignment(ctx context.Context, c domain.Claim) (*domain.Delivery, error) {
	var out *domain.Delivery
	err := r.WithTx(ctx, func(tx pgx.Tx) error {
		ct, err := tx.Exec(ctx, `
            UPDATE drivers
            SET available = FALSE, current_delivery_id = $2, updated_at = now()
            WHERE id = $1 AND available AND current_delivery_id IS NULL
        `, c.DriverID, c.DeliveryID)
		if err != nil {
			return wrap(fmt.Sprintf("claim driver %d", c.DriverID), err)
		}
		if ct.RowsAffected() == 0 {
			return apperr.ErrAlreadyClaimed
		}

		d, err := scanDelivery(tx.QueryRow(ctx, `
            UPDATE deliveries
            SET status = $3, driver_id = $2, assigned_at = $4, updated_at = now()
            WHERE id = $1 AND status = $5
            RETURNING `+deliveryColumns,
			c.DeliveryID, c.DriverID, string(domain.StatusDriverAssigned), c.At, string(domain.StatusPending)))
		if err != nil {
			if IsNotFound(err) || IsDuplicate(err) {
				return apperr.ErrAlreadyClaimed
			}
			return wrap(fmt.Sprintf("claim delivery %q", c.DeliveryID), err)
		}
		out = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// TransitionStatus moves a delivery from ch.From to ch.To, stamping the matching
// timestamp once. With ReleaseDriver the owning driver is freed in the same transaction.
func (r *DeliveryRepo) TransitionStatus(ctx context.Context, ch domain.StatusChange) (*domain.Delivery, error) {
	col, ok := stampColumns[ch.To]
	if !ok {
		return nil, fmt.Errorf("transition to %q: %w", ch.To, apperr.ErrInvalidTransition)
	}

	var out *domain.Delivery
	err := r.WithTx(ctx, func(tx pgx.Tx) error {
		d, err := scanDelivery(tx.QueryRow(ctx, fmt.Sprintf(`
            UPDATE deliveries
            SET status = $3, %[1]s = COALESCE(%[1]s, $4), updated_at = now()
            WHERE id = $1 AND status = $2
            RETURNING `+deliveryColumns, col),
			ch.DeliveryID, string(ch.From), string(ch.To), ch.At))
		if err != nil {
			if IsNotFound(err) {
				return apperr.ErrAlreadyClaimed
			}
			return wrap(fmt.Sprintf("transition delivery %q", ch.DeliveryID), err)
		}

		if ch.ReleaseDriver && d.DriverID != nil {
			if _, err := tx.Exec(ctx, `
                UPDATE drivers
                SET available = TRUE, current_delivery_id = NULL, updated_at = now()
                WHERE id = $1 AND current_delivery_id = $2
            `, *d.DriverID, d.ID); err != nil {
				return wrap(fmt.Sprintf("release driver %d", *d.DriverID), err)
			}
		}
		out = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SetRating records the rating of a delivered, unrated delivery and folds it into
// the driver's average.
func (r *DeliveryRepo) SetRating(ctx context.Context, deliveryID string, rating int) (*domain.Delivery, error) {
	var out *domain.Delivery
	err := r.WithTx(ctx, func(tx pgx.Tx) error {
		d, err := scanDelivery(tx.QueryRow(ctx, `
            UPDATE deliveries
            SET rating = $2, updated_at = now()
            WHERE id = $1 AND status = $3 AND rating IS NULL
            RETURNING `+deliveryColumns,
			deliveryID, rating, string(domain.StatusDelivered)))
		if err != nil {
			if IsNotFound(err) {
				return apperr.ErrAlreadyClaimed
			}
			return wrap(fmt.Sprintf("rate delivery %q", deliveryID), err)
		}

		if d.DriverID != nil {
			if _, err := tx.Exec(ctx, `
                UPDATE drivers
                SET average_rating = (average_rating * rating_count + $2) / (rating_count + 1),
                    rating_count   = rating_count + 1,
                    updated_at     = now()
                WHERE id = $1
            `, *d.DriverID, float64(rating)); err != nil {
				return wrap(fmt.Sprintf("update driver %d rating", *d.DriverID), err)
			}
		}
		out = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateDeliveryLocation stores the owning driver's position on an active delivery.
// It returns false without error for a point older than the stored one, and
// apperr.ErrAlreadyClaimed when the delivery is no longer active for that driver.
func (r *DeliveryRepo) UpdateDeliveryLocation(ctx context.Context, u domain.LocationUpdate) (bool, error) {
	active := []string{
		string(domain.StatusDriverAssigned),
		string(domain.StatusPickedUp),
		string(domain.StatusInTransit),
	}

	stored := false
	err := r.WithTx(ctx, func(tx pgx.Tx) error {
		var (
			driverID *int64
			status   domain.Status
		)
		err := tx.QueryRow(ctx,
			`SELECT driver_id, status FROM deliveries WHERE id = $1 FOR UPDATE`, u.DeliveryID,
		).Scan(&driverID, &status)
		if err != nil {
			if IsNotFound(err) {
				return apperr.ErrAlreadyClaimed
			}
			return wrap(fmt.Sprintf("lock delivery %q", u.DeliveryID), err)
		}
		if driverID == nil || *driverID != u.DriverID || !status.Active() {
			return apperr.ErrAlreadyClaimed
		}

		ct, err := tx.Exec(ctx, `
            UPDATE deliveries
            SET driver_lat = $2, driver_lng = $3, driver_location_at = $4, updated_at = now()
            WHERE id = $1 AND status = ANY($5)
              AND (driver_location_at IS NULL OR driver_location_at <= $4)
        `, u.DeliveryID, u.Point.Lat, u.Point.Lng, u.At, active)
		if err != nil {
			return wrap(fmt.Sprintf("update delivery %q location", u.DeliveryID), err)
		}
		if ct.RowsAffected() == 0 {
			return nil
		}
		stored = true

		if _, err := tx.Exec(ctx, `
            UPDATE drivers
            SET lat = $2, lng = $3, location_at = $4, updated_at = now()
            WHERE id = $1 AND (location_at IS NULL OR location_at <= $4)
        `, u.DriverID, u.Point.Lat, u.Point.Lng, u.At); err != nil {
			return wrap(fmt.Sprintf("update driver %d position", u.DriverID), err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return stored, nil
}
