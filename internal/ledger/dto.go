package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/rentflow-backend/pkg/db/models"
	"github.com/angelmondragon/rentflow-backend/pkg/enums"
)

// PaymentView is the API representation of a payment row.
type PaymentView struct {
	ID                int64               `json:"id"`
	RentalID          int64               `json:"rentalId"`
	RiderID           int64               `json:"riderId"`
	Amount            decimal.Decimal     `json:"amount"`
	Method            enums.PaymentMethod `json:"method"`
	TxnRef            *string             `json:"txnRef,omitempty"`
	TransactionStatus enums.PaymentStatus `json:"transactionStatus"`
	TransactionDate   time.Time           `json:"transactionDate"`
	CreatedAt         time.Time           `json:"createdAt"`
}

// ReceiptView is the response body for a recorded payment.
type ReceiptView struct {
	Payment PaymentView `json:"payment"`
	Totals  Totals      `json:"totals"`
}

func NewPaymentView(payment models.Payment) PaymentView {
	return PaymentView{
		ID:                payment.ID,
		RentalID:          payment.RentalID,
		RiderID:           payment.RiderID,
		Amount:            payment.Amount,
		Method:            payment.Method,
		TxnRef:            payment.TxnRef,
		TransactionStatus: payment.TransactionStatus,
		TransactionDate:   payment.TransactionDate,
		CreatedAt:         payment.CreatedAt,
	}
}

func NewPaymentViews(payments []models.Payment) []PaymentView {
	views := make([]PaymentView, 0, len(payments))
	for _, payment := range payments {
		views = append(views, NewPaymentView(payment))
	}
	return views
}

func NewReceiptView(receipt Receipt) ReceiptView {
	return ReceiptView{Payment: NewPaymentView(receipt.Payment), Totals: receipt.Totals}
}
