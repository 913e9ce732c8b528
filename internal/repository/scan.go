package repository

import (
	"time"

	"github.com/jackc/pgx/v5"

	"delivery-dispatch/internal/domain"
	"delivery-dispatch/internal/geo"
)

const deliveryColumns = `id, order_id, status, driver_id,
	restaurant_lat, restaurant_lng, customer_lat, customer_lng,
	driver_lat, driver_lng, driver_location_at,
	created_at, assigned_at, picked_up_at, in_transit_at, delivered_at, cancelled_at, rating`

const driverColumns = `id, name, phone, average_rating, rating_count, available,
	current_delivery_id, lat, lng, location_at, registered_at`

func scanDelivery(row pgx.Row) (*domain.Delivery, error) {
	var (
		d          domain.Delivery
		dLat, dLng *float64
		rating     *int16
	)
	err := row.Scan(
		&d.ID, &d.OrderID, &d.Status, &d.DriverID,
		&d.RestaurantLocation.Lat, &d.RestaurantLocation.Lng,
		&d.CustomerLocation.Lat, &d.CustomerLocation.Lng,
		&dLat, &dLng, &d.DriverLocationAt,
		&d.CreatedAt, &d.AssignedAt, &d.PickedUpAt, &d.InTransitAt, &d.DeliveredAt, &d.CancelledAt,
		&rating,
	)
	if err != nil {
		return nil, err
	}
	d.DriverLocation = point(dLat, dLng)
	if rating != nil {
		v := int(*rating)
		d.Rating = &v
	}
	d.CreatedAt = d.CreatedAt.UTC()
	return &d, nil
}

func scanDriver(row pgx.Row) (*domain.Driver, error) {
	var (
		d        domain.Driver
		lat, lng *float64
		locAt    *time.Time
	)
	err := row.Scan(
		&d.ID, &d.Name, &d.Phone, &d.AverageRating, &d.RatingCount, &d.Available,
		&d.CurrentDeliveryID, &lat, &lng, &locAt, &d.RegisteredAt,
	)
	if err != nil {
		return nil, err
	}
	d.Location = point(lat, lng)
	d.LocationAt = locAt
	return &d, nil
}

func point(lat, lng *float64) *geo.Point {
	if lat == nil || lng == nil {
		return nil
	}
	return &geo.Point{Lat: *lat, Lng: *lng}
}

func collect[T any](rows pgx.Rows, scan func(pgx.Row) (*T, error), capacity int) ([]T, error) {
	defer rows.Close()
	out := make([]T, 0, capacity)
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}
