package payment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a payment. Only StatusCompleted is
// assigned by the current processor; the remaining states are kept for the
// day a real gateway integration needs them.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
	StatusRefunded   Status = "REFUNDED"
)

// Payment is the durable record of a payment attempt. Records are written
// once at creation and never mutated afterwards.
type Payment struct {
	ID            uuid.UUID       `json:"id"`
	OrderID       uuid.UUID       `json:"order_id"`
	UserID        uuid.UUID       `json:"user_id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	PaymentMethod string          `json:"payment_method"`
	PaymentStatus Status          `json:"payment_status"`
	TransactionID string          `json:"transaction_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// CreateRequest carries the caller-supplied fields of a new payment.
type CreateRequest struct {
	OrderID       uuid.UUID       `json:"order_id"`
	UserID        uuid.UUID       `json:"user_id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	PaymentMethod string          `json:"payment_method"`
}

func (r CreateRequest) Validate() error {
	if r.OrderID == uuid.Nil {
		return &ValidationError{Field: "order_id", Reason: "required"}
	}
	if r.UserID == uuid.Nil {
		return &ValidationError{Field: "user_id", Reason: "required"}
	}
	if !r.Amount.IsPositive() {
		return &ValidationError{Field: "amount", Reason: "must be positive"}
	}
	if r.Currency == "" {
		return &ValidationError{Field: "currency", Reason: "required"}
	}
	if r.PaymentMethod == "" {
		return &ValidationError{Field: "payment_method", Reason: "required"}
	}
	return nil
}
