package bookings

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/rentflow-backend/internal/riders"
	"github.com/angelmondragon/rentflow-backend/pkg/enums"
)

// PaymentInput is the optional payment taken when the booking is made.
type PaymentInput struct {
	Amount decimal.Decimal     `json:"amount"`
	Method enums.PaymentMethod `json:"method" validate:"required"`
	TxnRef *string             `json:"txnRef,omitempty" validate:"omitempty,max=120"`
}

// CreateInput is a counter booking.
type CreateInput struct {
	Rider              riders.Profile `json:"rider" validate:"required"`
	PlanID             int64          `json:"planId" validate:"required,gt=0"`
	VehicleID          int64          `json:"vehicleId" validate:"required,gt=0"`
	StartDate          time.Time      `json:"startDate" validate:"required"`
	ExpectedReturnDate time.Time      `json:"expectedReturnDate" validate:"required"`
	Payment            *PaymentInput  `json:"payment,omitempty"`
}

// Result summarizes a committed booking.
type Result struct {
	RentalID          int64              `json:"rentalId"`
	RiderID           int64              `json:"riderId"`
	RiderCreated      bool               `json:"riderCreated"`
	TemporaryPassword string             `json:"temporaryPassword,omitempty"`
	Status            enums.RentalStatus `json:"status"`
	Days              int                `json:"days"`
	UsageAmount       decimal.Decimal    `json:"usageAmount"`
	PayableTotal      decimal.Decimal    `json:"payableTotal"`
	Paid              decimal.Decimal    `json:"paid"`
	Balance           decimal.Decimal    `json:"balance"`
	PaymentID         *int64             `json:"paymentId,omitempty"`
}
