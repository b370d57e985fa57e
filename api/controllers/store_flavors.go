package controllers

import (
	"net/http"

	"github.com/angelmondragon/icecream-backend/api/responses"
	"github.com/angelmondragon/icecream-backend/api/validators"
	"github.com/angelmondragon/icecream-backend/internal/storeflavors"
	pkgerrors "github.com/angelmondragon/icecream-backend/pkg/errors"
	"github.com/angelmondragon/icecream-backend/pkg/logger"
)

const msgStoreFlavorsUpdated = "Store flavors updated successfully"

type assignmentRequest struct {
	FlavorID   *int64  `json:"flavorId"`
	FlavorName *string `json:"flavorName"`
	Active     *bool   `json:"active"`
}

type setStoreFlavorsRequest struct {
	FlavorAssignments *[]assignmentRequest `json:"flavorAssignments"`
}

func ListStoreFlavors(svc storeflavors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		list, err := svc.ActiveFlavors(ctx, pathParam(r, "store"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, list)
	}
}

// SetStoreFlavors replaces a store's whole active set. Assignment objects may
// carry display fields from the front end, so decoding is lenient.
func SetStoreFlavors(svc storeflavors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req setStoreFlavorsRequest
		if err := validators.DecodeJSONBodyLenient(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if req.FlavorAssignments == nil {
			responses.WriteError(ctx, logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "flavorAssignments must be an array"))
			return
		}

		assignments := make([]storeflavors.AssignmentInput, 0, len(*req.FlavorAssignments))
		for _, a := range *req.FlavorAssignments {
			assignments = append(assignments, storeflavors.AssignmentInput{
				FlavorID:   a.FlavorID,
				FlavorName: a.FlavorName,
				Active:     a.Active,
			})
		}
		if err := svc.SetActiveFlavors(ctx, pathParam(r, "store"), assignments); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusOK, msgStoreFlavorsUpdated)
	}
}
