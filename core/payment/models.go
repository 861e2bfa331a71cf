package payment

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/rekodi/core"
)

// Statuses
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusRefunded  = "refunded"
)

// Methods
const (
	MethodCash         = "cash"
	MethodCard         = "card"
	MethodBankTransfer = "bank_transfer"
	MethodMobileMoney  = "mobile_money"
)

// Payment is one ledger row, optionally allocated to an enrollment.
type Payment struct {
	ID           string      `json:"id"`
	StudentID    string      `json:"student_id"`
	EnrollmentID null.String `json:"enrollment_id,omitempty"`
	Amount       float64     `json:"amount"`
	Method       string      `json:"method"`
	Reference    string      `json:"reference"`
	Status       string      `json:"status"`
	PaidAt       time.Time   `json:"paid_at"`    // UTC
	CreatedAt    time.Time   `json:"created_at"` // UTC
}

// NewPayment contains information needed to record a payment.
type NewPayment struct {
	StudentID    string  `json:"student_id" validate:"required"`
	EnrollmentID string  `json:"enrollment_id"`
	Amount       float64 `json:"amount" validate:"gt=0"`
	Method       string  `json:"method" validate:"required,oneof=cash card bank_transfer mobile_money"`
	Reference    string  `json:"reference"`
}

func (np *NewPayment) Validate() error {
	np.StudentID = core.CleanString(np.StudentID)
	np.EnrollmentID = core.CleanString(np.EnrollmentID)
	np.Method = core.CleanString(np.Method, true /* lower */)
	np.Reference = core.CleanString(np.Reference)
	return core.Validate.Struct(np)
}

// QueryFilter filters payment queries.
type QueryFilter struct {
	StudentID string `query:"student_id"`
	Status    string `query:"status"`
}
