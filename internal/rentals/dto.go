package rentals

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/rentflow-backend/pkg/db/models"
	"github.com/angelmondragon/rentflow-backend/pkg/enums"
	"github.com/angelmondragon/rentflow-backend/pkg/pagination"
)

// Row is a rental joined with the rider and vehicle columns used by list views.
type Row struct {
	models.Rental       `gorm:"embedded"`
	RiderName           string
	RiderPhone          string
	VehicleRegistration string
	VehicleModel        string
}

// View is the API representation of a rental.
type View struct {
	ID                  int64              `json:"id"`
	RiderID             int64              `json:"riderId"`
	VehicleID           int64              `json:"vehicleId"`
	PlanID              int64              `json:"planId"`
	RiderName           string             `json:"riderName,omitempty"`
	RiderPhone          string             `json:"riderPhone,omitempty"`
	VehicleRegistration string             `json:"vehicleRegistration,omitempty"`
	VehicleModel        string             `json:"vehicleModel,omitempty"`
	StartDate           time.Time          `json:"startDate"`
	ExpectedReturnDate  time.Time          `json:"expectedReturnDate"`
	ActualReturnDate    *time.Time         `json:"actualReturnDate,omitempty"`
	Status              enums.RentalStatus `json:"status"`
	DerivedStatus       enums.RentalStatus `json:"derivedStatus"`
	IsOverdue           bool               `json:"isOverdue"`
	RatePerDay          decimal.Decimal    `json:"ratePerDay"`
	Deposit             decimal.Decimal    `json:"deposit"`
	JoiningFee          decimal.Decimal    `json:"joiningFee"`
	UsageAmount         decimal.Decimal    `json:"usageAmount"`
	PayableTotal        decimal.Decimal    `json:"payableTotal"`
	PaidTotal           decimal.Decimal    `json:"paidTotal"`
	BalanceDue          decimal.Decimal    `json:"balanceDue"`
	CancelledAt         *time.Time         `json:"cancelledAt,omitempty"`
	CreatedAt           time.Time          `json:"createdAt"`
	UpdatedAt           time.Time          `json:"updatedAt"`
}

// ListInput filters the returns desk.
type ListInput struct {
	Scope      enums.ReturnScope
	Search     string
	Pagination pagination.Params
}

// ListResult is one page of rentals.
type ListResult struct {
	Items []View          `json:"items"`
	Meta  pagination.Meta `json:"meta"`
}

// NewView maps a rental onto its API shape, deriving the overdue status at now.
func NewView(rental models.Rental, now time.Time) View {
	return View{
		ID:                 rental.ID,
		RiderID:            rental.RiderID,
		VehicleID:          rental.VehicleID,
		PlanID:             rental.PlanID,
		StartDate:          rental.StartDate,
		ExpectedReturnDate: rental.ExpectedReturnDate,
		ActualReturnDate:   rental.ActualReturnDate,
		Status:             rental.Status,
		DerivedStatus:      DerivedStatus(rental, now),
		IsOverdue:          IsOverdue(rental, now),
		RatePerDay:         rental.RatePerDay,
		Deposit:            rental.Deposit,
		JoiningFee:         rental.JoiningFee,
		UsageAmount:        rental.UsageAmount,
		PayableTotal:       rental.PayableTotal,
		PaidTotal:          rental.PaidTotal,
		BalanceDue:         rental.BalanceDue,
		CancelledAt:        rental.CancelledAt,
		CreatedAt:          rental.CreatedAt,
		UpdatedAt:          rental.UpdatedAt,
	}
}

// NewRowView maps a joined row onto its API shape.
func NewRowView(row Row, now time.Time) View {
	view := NewView(row.Rental, now)
	view.RiderName = row.RiderName
	view.RiderPhone = row.RiderPhone
	view.VehicleRegistration = row.VehicleRegistration
	view.VehicleModel = row.VehicleModel
	return view
}
