package controllers

import (
	"net/http"

	"github.com/angelmondragon/rentflow-backend/api/responses"
	"github.com/angelmondragon/rentflow-backend/api/validators"
	"github.com/angelmondragon/rentflow-backend/internal/bookings"
	pkgerrors "github.com/angelmondragon/rentflow-backend/pkg/errors"
	"github.com/angelmondragon/rentflow-backend/pkg/logger"
)

// BookingCreate registers the rider if new, opens the rental and takes the
// optional first payment in one transaction. Every failure other than an
// internal one is reported as a bad request.
func BookingCreate(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bookings service unavailable"))
			return
		}
		var input bookings.CreateInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithFields(ctx, map[string]any{"plan_id": input.PlanID, "vehicle_id": input.VehicleID})
		}
		result, err := svc.Create(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if logg != nil {
			logg.Info(logg.WithRentalID(ctx, result.RentalID), "booking.created")
		}
		responses.WriteSuccess(w, result)
	}
}
