package assignment

import (
	"math"
	"sort"

	"delivery-dispatch/internal/domain"
	"delivery-dispatch/internal/geo"
)

// Plan pairs pending deliveries with available drivers.
//
// Deliveries are served oldest first. Each takes the nearest remaining driver to
// its restaurant; equal distances go to the earliest registered driver. Drivers
// with no known position are used only after every located driver is taken, and
// each driver is planned at most once.
func Plan(deliveries []domain.Delivery, drivers []domain.Driver) []domain.Candidate {
	pending := make([]domain.Delivery, 0, len(deliveries))
	for _, d := range deliveries {
		if d.Status == domain.StatusPending {
			pending = append(pending, d)
		}
	}
	sort.SliceStable(pending, func(i, j int) bool {
		if !pending[i].CreatedAt.Equal(pending[j].CreatedAt) {
			return pending[i].CreatedAt.Before(pending[j].CreatedAt)
		}
		return pending[i].ID < pending[j].ID
	})

	free := make([]domain.Driver, 0, len(drivers))
	for _, dr := range drivers {
		if dr.Available && dr.CurrentDeliveryID == nil {
			free = append(free, dr)
		}
	}
	sort.SliceStable(free, func(i, j int) bool { return free[i].ID < free[j].ID })

	used := make([]bool, len(free))
	out := make([]domain.Candidate, 0, min(len(pending), len(free)))
	for _, d := range pending {
		best, dist := -1, math.Inf(1)
		for i, dr := range free {
			if used[i] {
				continue
			}
			k := driverDistance(d, dr)
			// free is ordered by id, so strict less keeps the earliest driver on ties.
			if best == -1 || k < dist {
				best, dist = i, k
			}
		}
		if best == -1 {
			break
		}
		used[best] = true
		out = append(out, domain.Candidate{Delivery: d, Driver: free[best], DistanceKm: dist})
	}
	return out
}

// driverDistance is +Inf for drivers with no known position.
func driverDistance(d domain.Delivery, dr domain.Driver) float64 {
	if dr.Location == nil {
		return math.Inf(1)
	}
	return geo.DistanceKm(*dr.Location, d.RestaurantLocation)
}
