package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/rentflow-backend/api/responses"
	"github.com/angelmondragon/rentflow-backend/api/validators"
	"github.com/angelmondragon/rentflow-backend/internal/alerts"
	"github.com/angelmondragon/rentflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/rentflow-backend/pkg/errors"
	"github.com/angelmondragon/rentflow-backend/pkg/logger"
)

// AlertsList returns a page of alerts filtered by type and status.
func AlertsList(svc alerts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "alerts service unavailable"))
			return
		}
		input := alerts.ListInput{}
		if raw := strings.TrimSpace(r.URL.Query().Get("type")); raw != "" {
			alertType, err := enums.ParseAlertType(strings.ToUpper(raw))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid alert type").
					WithDetails(map[string]any{"type": raw}))
				return
			}
			input.Type = alertType
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseAlertStatus(strings.ToLower(raw))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid alert status").
					WithDetails(map[string]any{"status": raw}))
				return
			}
			input.Status = status
		}
		page, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.Pagination = page

		result, err := svc.List(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// AlertsApply runs a manual resolve, reopen or snooze.
func AlertsApply(svc alerts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "alerts service unavailable"))
			return
		}
		var input alerts.ApplyInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithFields(ctx, map[string]any{"alert_id": input.ID, "action": string(input.Action)})
		}
		view, err := svc.Apply(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if logg != nil {
			logg.Info(ctx, "alerts.action_applied")
		}
		responses.WriteSuccess(w, view)
	}
}

// AlertsRefresh runs one reconciliation pass on demand.
func AlertsRefresh(svc alerts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "alerts service unavailable"))
			return
		}
		summary, err := svc.Refresh(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}
