package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/rentflow-backend/api/responses"
	"github.com/angelmondragon/rentflow-backend/api/validators"
	"github.com/angelmondragon/rentflow-backend/internal/ledger"
	"github.com/angelmondragon/rentflow-backend/internal/rentals"
	"github.com/angelmondragon/rentflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/rentflow-backend/pkg/errors"
	"github.com/angelmondragon/rentflow-backend/pkg/logger"
)

type rentalActionRequest struct {
	Action string `json:"action" validate:"required"`
}

type recordPaymentRequest struct {
	Amount decimal.Decimal     `json:"amount"`
	Method enums.PaymentMethod `json:"method" validate:"required"`
	TxnRef *string             `json:"txnRef,omitempty" validate:"omitempty,max=120"`
}

// RentalDetail returns one rental with its derived status.
func RentalDetail(svc rentals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "rentals service unavailable"))
			return
		}
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// RentalAction applies a lifecycle transition. "return" force-closes the rental
// without fee computation.
func RentalAction(svc rentals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "rentals service unavailable"))
			return
		}
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req rentalActionRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		action, err := enums.ParseRentalAction(req.Action)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "action must be one of return, start, cancel").
				WithDetails(map[string]any{"action": req.Action}))
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithFields(logg.WithRentalID(ctx, id), map[string]any{"action": string(action)})
		}
		view, err := svc.Apply(ctx, id, action)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if logg != nil {
			logg.Info(ctx, "rental.transitioned")
		}
		responses.WriteSuccess(w, view)
	}
}

// RentalPayments lists the ledger rows of a rental.
func RentalPayments(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		payments, err := svc.ListPayments(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": ledger.NewPaymentViews(payments)})
	}
}

// RentalRecordPayment records a SUCCESS payment against a rental.
func RentalRecordPayment(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req recordPaymentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithRentalID(ctx, id)
		}
		receipt, err := svc.RecordPayment(ctx, ledger.RecordInput{
			RentalID: id,
			Amount:   req.Amount,
			Method:   req.Method,
			TxnRef:   req.TxnRef,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if logg != nil {
			logg.Info(logg.WithField(ctx, "payment_id", receipt.Payment.ID), "payment.recorded")
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, ledger.NewReceiptView(*receipt))
	}
}
