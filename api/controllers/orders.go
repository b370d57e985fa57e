package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/angelmondragon/icecream-backend/api/responses"
	"github.com/angelmondragon/icecream-backend/api/validators"
	"github.com/angelmondragon/icecream-backend/internal/orders"
	"github.com/angelmondragon/icecream-backend/pkg/logger"
	"github.com/shopspring/decimal"
)

type createOrderRequest struct {
	Items     []orders.ItemInput `json:"items"`
	Cups      json.RawMessage    `json:"cups"`
	Total     *decimal.Decimal   `json:"total" validate:"required"`
	Subtotal  *decimal.Decimal   `json:"subtotal"`
	Discount  *decimal.Decimal   `json:"discount"`
	Ticket    *string            `json:"ticket"`
	Customer  *string            `json:"customer"`
	Store     *string            `json:"store"`
	Timestamp *string            `json:"timestamp"`
}

func (req createOrderRequest) toInput() orders.CreateOrderInput {
	return orders.CreateOrderInput{
		Items:           req.Items,
		Cups:            req.Cups,
		Total:           req.Total,
		Subtotal:        req.Subtotal,
		Discount:        req.Discount,
		Ticket:          req.Ticket,
		Customer:        req.Customer,
		Store:           req.Store,
		ClientTimestamp: req.Timestamp,
	}
}

// CreateOrder records a sale. The point-of-sale front end sends extra fields,
// so the body is decoded leniently.
func CreateOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req createOrderRequest
		if err := validators.DecodeJSONBodyLenient(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		res, err := svc.Create(ctx, req.toInput())
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, res)
	}
}

// ListOrders returns orders newest first by default. allOrders enables the
// receipt-text fallback for orders stored without items.
func ListOrders(svc orders.Service, defaultLimit int, allOrders bool, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		params := validators.PaginationFromQuery(r, defaultLimit)
		list, err := svc.List(ctx, params, orders.ListOptions{TicketFallback: allOrders})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, list)
	}
}
