package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/rentflow-backend/api/responses"
	"github.com/angelmondragon/rentflow-backend/api/validators"
	"github.com/angelmondragon/rentflow-backend/internal/rentals"
	"github.com/angelmondragon/rentflow-backend/internal/returns"
	"github.com/angelmondragon/rentflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/rentflow-backend/pkg/errors"
	"github.com/angelmondragon/rentflow-backend/pkg/logger"
)

// ReturnsList lists rentals in a derived due-date bucket.
func ReturnsList(svc returns.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "returns service unavailable"))
			return
		}
		rawScope := strings.TrimSpace(r.URL.Query().Get("scope"))
		if rawScope == "" {
			rawScope = string(enums.ReturnScopeDueToday)
		}
		scope, err := enums.ParseReturnScope(rawScope)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "scope must be one of due-today, overdue, recent").
				WithDetails(map[string]any{"scope": rawScope}))
			return
		}
		page, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), rentals.ListInput{
			Scope:      scope,
			Search:     validators.ParseSearch(r),
			Pagination: page,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// ReturnDetail returns the rental, its latest inspection and the fee policy.
func ReturnDetail(svc returns.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "returns service unavailable"))
			return
		}
		rentalID, err := validators.ParseIDParam(r, "rentalId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.Get(r.Context(), rentalID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// ReturnSaveDraft upserts the inspection draft for a rental.
func ReturnSaveDraft(svc returns.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "returns service unavailable"))
			return
		}
		rentalID, err := validators.ParseIDParam(r, "rentalId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var input returns.DraftInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithRentalID(ctx, rentalID)
		}
		inspection, err := svc.SaveDraft(ctx, rentalID, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if logg != nil {
			logg.Info(logg.WithFields(ctx, map[string]any{
				"inspection_id": inspection.ID,
				"total_due":     inspection.TotalDue.StringFixed(2),
			}), "returns.draft_saved")
		}
		responses.WriteSuccess(w, inspection)
	}
}

// ReturnSettle commits the settlement. The body is optional.
func ReturnSettle(svc returns.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "returns service unavailable"))
			return
		}
		rentalID, err := validators.ParseIDParam(r, "rentalId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var input returns.SettleInput
		if err := validators.DecodeOptionalJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithFields(logg.WithRentalID(ctx, rentalID), map[string]any{
				"closing_payment": input.Payment != nil,
				"issue_noc":       input.IssueNoc,
			})
		}
		settlement, err := svc.Settle(ctx, rentalID, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if logg != nil {
			logg.Info(ctx, "returns.settled")
		}
		responses.WriteSuccess(w, settlement)
	}
}
