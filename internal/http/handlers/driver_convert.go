package handlers

import "delivery-dispatch/internal/domain"

func driverToResponse(d domain.Driver) driverDTO {
	return driverDTO{
		ID:                d.ID,
		Name:              d.Name,
		Phone:             d.Phone,
		Available:         d.Available,
		AverageRating:     d.AverageRating,
		RatingCount:       d.RatingCount,
		CurrentDeliveryID: d.CurrentDeliveryID,
		Location:          d.Location,
		LocationAt:        d.LocationAt,
		RegisteredAt:      d.RegisteredAt,
	}
}

func driversToResponse(list []domain.Driver) []driverDTO {
	out := make([]driverDTO, 0, len(list))
	for _, d := range list {
		out = append(out, driverToResponse(d))
	}
	return out
}
