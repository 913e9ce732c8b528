package handlers

import "delivery-dispatch/internal/domain"

func (r createDeliveryRequest) toModel() domain.NewDelivery {
	return domain.NewDelivery{
		OrderID:            r.OrderID,
		RestaurantLocation: r.RestaurantLocation,
		CustomerLocation:   r.CustomerLocation,
	}
}

func (r changeStatusRequest) actor() domain.Actor {
	return domain.Actor{Kind: domain.ActorKind(r.Actor), DriverID: r.DriverID}
}

func deliveryToResponse(d domain.Delivery) deliveryDTO {
	return deliveryDTO{
		ID:                 d.ID,
		OrderID:            d.OrderID,
		Status:             string(d.Status),
		DriverID:           d.DriverID,
		RestaurantLocation: d.RestaurantLocation,
		CustomerLocation:   d.CustomerLocation,
		DriverLocation:     d.DriverLocation,
		DriverLocationAt:   d.DriverLocationAt,
		CreatedAt:          d.CreatedAt,
		AssignedAt:         d.AssignedAt,
		PickedUpAt:         d.PickedUpAt,
		InTransitAt:        d.InTransitAt,
		DeliveredAt:        d.DeliveredAt,
		CancelledAt:        d.CancelledAt,
		Rating:             d.Rating,
	}
}

func deliveriesToResponse(list []domain.Delivery) []deliveryDTO {
	out := make([]deliveryDTO, 0, len(list))
	for _, d := range list {
		out = append(out, deliveryToResponse(d))
	}
	return out
}
