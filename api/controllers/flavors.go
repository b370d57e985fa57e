package controllers

import (
	"net/http"

	"github.com/angelmondragon/icecream-backend/api/responses"
	"github.com/angelmondragon/icecream-backend/api/validators"
	"github.com/angelmondragon/icecream-backend/internal/catalog"
	"github.com/angelmondragon/icecream-backend/pkg/logger"
	"github.com/shopspring/decimal"
)

const (
	msgFlavorAdded   = "Sabor agregado"
	msgFlavorUpdated = "Flavor updated"
	msgFlavorDeleted = "Flavor deleted"
)

type addFlavorRequest struct {
	Name  string           `json:"name"`
	Price *decimal.Decimal `json:"price"`
}

type updateFlavorRequest struct {
	Price  *decimal.Decimal `json:"price"`
	Active *bool            `json:"active"`
}

func ListFlavors(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		list, err := svc.List(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, list)
	}
}

func AddFlavor(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req addFlavorRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if err := svc.Add(ctx, catalog.AddInput{Name: req.Name, Price: req.Price}); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusOK, msgFlavorAdded)
	}
}

func UpdateFlavor(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req updateFlavorRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		input := catalog.UpdateInput{Price: req.Price, Active: req.Active}
		if err := svc.Update(ctx, pathParam(r, "name"), input); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusOK, msgFlavorUpdated)
	}
}

func DeleteFlavor(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if err := svc.Delete(ctx, pathParam(r, "name")); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusOK, msgFlavorDeleted)
	}
}
