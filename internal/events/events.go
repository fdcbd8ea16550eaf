package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentCompletedEvent is the contract published after a payment record
// has been persisted.
type PaymentCompletedEvent struct {
	EventID       string          `json:"event_id"`
	PaymentID     string          `json:"payment_id"`
	OrderID       string          `json:"order_id"`
	UserID        string          `json:"user_id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Status        string          `json:"status"`
	TransactionID string          `json:"transaction_id,omitempty"`
	Processed     time.Time       `json:"processed_at"`
}
