package returns

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/rentflow-backend/internal/ledger"
	"github.com/angelmondragon/rentflow-backend/internal/rentals"
	"github.com/angelmondragon/rentflow-backend/pkg/db/models"
	"github.com/angelmondragon/rentflow-backend/pkg/enums"
	"github.com/angelmondragon/rentflow-backend/pkg/types"
)

// DraftInput holds the inspection findings entered at the returns desk.
type DraftInput struct {
	OdometerEnd         *int64                    `json:"odometerEnd,omitempty" validate:"omitempty,gte=0"`
	ChargePercent       *int                      `json:"chargePercent,omitempty" validate:"omitempty,gte=0,lte=100"`
	AccessoriesReturned types.AccessoriesReturned `json:"accessoriesReturned"`
	IsBatteryMissing    bool                      `json:"isBatteryMissing"`
	MissingItemsCharge  decimal.Decimal           `json:"missingItemsCharge"`
	CleaningFee         decimal.Decimal           `json:"cleaningFee"`
	DamageFee           decimal.Decimal           `json:"damageFee"`
	OtherAdjustments    decimal.Decimal           `json:"otherAdjustments"`
	TaxPercent          *decimal.Decimal          `json:"taxPercent,omitempty"`
	Remarks             *string                   `json:"remarks,omitempty" validate:"omitempty,max=2000"`
}

// PaymentInput is the optional closing payment taken during settlement.
type PaymentInput struct {
	Amount decimal.Decimal     `json:"amount"`
	Method enums.PaymentMethod `json:"method"`
	TxnRef *string             `json:"txnRef,omitempty"`
}

// SettleInput commits a settlement.
type SettleInput struct {
	Payment  *PaymentInput `json:"payment,omitempty"`
	IssueNoc bool          `json:"issueNoc"`
}

// InspectionView is the API representation of a return inspection.
type InspectionView struct {
	ID                  int64                     `json:"id"`
	RentalID            int64                     `json:"rentalId"`
	OdometerEnd         *int64                    `json:"odometerEnd,omitempty"`
	ChargePercent       *int                      `json:"chargePercent,omitempty"`
	AccessoriesReturned types.AccessoriesReturned `json:"accessoriesReturned"`
	MissingAccessories  []string                  `json:"missingAccessories"`
	IsBatteryMissing    bool                      `json:"isBatteryMissing"`
	MissingItemsCharge  decimal.Decimal           `json:"missingItemsCharge"`
	CleaningFee         decimal.Decimal           `json:"cleaningFee"`
	DamageFee           decimal.Decimal           `json:"damageFee"`
	OtherAdjustments    decimal.Decimal           `json:"otherAdjustments"`
	LateDays            int                       `json:"lateDays"`
	LateFee             decimal.Decimal           `json:"lateFee"`
	TaxPercent          decimal.Decimal           `json:"taxPercent"`
	Subtotal            decimal.Decimal           `json:"subtotal"`
	TaxAmount           decimal.Decimal           `json:"taxAmount"`
	TotalDue            decimal.Decimal           `json:"totalDue"`
	DepositHeld         decimal.Decimal           `json:"depositHeld"`
	DepositReturn       decimal.Decimal           `json:"depositReturn"`
	FinalAmount         decimal.Decimal           `json:"finalAmount"`
	Remarks             *string                   `json:"remarks,omitempty"`
	Settled             bool                      `json:"settled"`
	SettledAt           *time.Time                `json:"settledAt,omitempty"`
	NocIssued           bool                      `json:"nocIssued"`
	NocID               *string                   `json:"nocId,omitempty"`
	CreatedAt           time.Time                 `json:"createdAt"`
	UpdatedAt           time.Time                 `json:"updatedAt"`
}

// ReturnView is everything the returns desk shows for one rental.
type ReturnView struct {
	Rental     rentals.View    `json:"rental"`
	Inspection *InspectionView `json:"inspection"`
	Policy     Policy          `json:"policy"`
}

// Settlement is the outcome of a committed settlement.
type Settlement struct {
	Rental     rentals.View        `json:"rental"`
	Inspection InspectionView      `json:"inspection"`
	Payment    *ledger.PaymentView `json:"payment,omitempty"`
	Totals     ledger.Totals       `json:"totals"`
	NocID      *string             `json:"nocId,omitempty"`
}

func NewInspectionView(inspection models.ReturnInspection) InspectionView {
	return InspectionView{
		ID:                  inspection.ID,
		RentalID:            inspection.RentalID,
		OdometerEnd:         inspection.OdometerEnd,
		ChargePercent:       inspection.ChargePercent,
		AccessoriesReturned: inspection.AccessoriesReturned,
		MissingAccessories:  inspection.AccessoriesReturned.Missing(),
		IsBatteryMissing:    inspection.IsBatteryMissing,
		MissingItemsCharge:  inspection.MissingItemsCharge,
		CleaningFee:         inspection.CleaningFee,
		DamageFee:           inspection.DamageFee,
		OtherAdjustments:    inspection.OtherAdjustments,
		LateDays:            inspection.LateDays,
		LateFee:             inspection.LateFee,
		TaxPercent:          inspection.TaxPercent,
		Subtotal:            inspection.Subtotal,
		TaxAmount:           inspection.TaxAmount,
		TotalDue:            inspection.TotalDue,
		DepositHeld:         inspection.DepositHeld,
		DepositReturn:       inspection.DepositReturn,
		FinalAmount:         inspection.FinalAmount,
		Remarks:             inspection.Remarks,
		Settled:             inspection.Settled,
		SettledAt:           inspection.SettledAt,
		NocIssued:           inspection.NocIssued,
		NocID:               inspection.NocID,
		CreatedAt:           inspection.CreatedAt,
		UpdatedAt:           inspection.UpdatedAt,
	}
}

func (in DraftInput) charges(policy Policy) Charges {
	tax := policy.DefaultTaxPercent
	if in.TaxPercent != nil {
		tax = *in.TaxPercent
	}
	return Charges{
		MissingItems: in.MissingItemsCharge,
		Cleaning:     in.CleaningFee,
		Damage:       in.DamageFee,
		Other:        in.OtherAdjustments,
		TaxPercent:   tax.Round(2),
	}
}

func chargesOf(inspection models.ReturnInspection) Charges {
	return Charges{
		MissingItems: inspection.MissingItemsCharge,
		Cleaning:     inspection.CleaningFee,
		Damage:       inspection.DamageFee,
		Other:        inspection.OtherAdjustments,
		TaxPercent:   inspection.TaxPercent,
	}
}

func applyFigures(inspection *models.ReturnInspection, charges Charges, figures Figures) {
	inspection.MissingItemsCharge = charges.MissingItems.Round(2)
	inspection.CleaningFee = charges.Cleaning.Round(2)
	inspection.DamageFee = charges.Damage.Round(2)
	inspection.OtherAdjustments = charges.Other.Round(2)
	inspection.TaxPercent = charges.TaxPercent
	inspection.LateDays = figures.LateDays
	inspection.LateFee = figures.LateFee
	inspection.Subtotal = figures.Subtotal
	inspection.TaxAmount = figures.TaxAmount
	inspection.TotalDue = figures.TotalDue
	inspection.DepositHeld = figures.DepositHeld
	inspection.DepositReturn = figures.DepositReturn
	inspection.FinalAmount = figures.FinalAmount
}
