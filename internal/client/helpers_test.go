package client

import "github.com/debopam-roy/swaadly-frontend-sub000/internal/models"

func modelsOrderRequest() models.CreateOrderRequest {
	return models.CreateOrderRequest{
		AddressID:        "addr-1",
		Items:            []models.OrderItemRequest{{ProductID: "p1", VariantID: "v1", Quantity: 2}},
		DeliveryOptionID: "opt-1",
	}
}
