package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"shopium/payments-service/internal/events"
	"shopium/payments-service/internal/metrics"

	"github.com/google/uuid"
)

// Store is the persistence boundary for payment records.
type Store interface {
	InsertPayment(ctx context.Context, p Payment) error
	GetPaymentByID(ctx context.Context, id uuid.UUID) (Payment, error)
	GetPaymentByOrderID(ctx context.Context, orderID uuid.UUID) (Payment, error)
}

type Processor struct {
	store      Store
	authorizer Authorizer
	publisher  events.Publisher
	logger     *slog.Logger
}

func NewProcessor(store Store, authorizer Authorizer, publisher events.Publisher, logger *slog.Logger) *Processor {
	return &Processor{
		store:      store,
		authorizer: authorizer,
		publisher:  publisher,
		logger:     logger,
	}
}

// Create settles a creation request through the injected authorizer and
// persists the resulting record. Exactly one durable write happens; if it
// fails, no record is visible to callers.
func (p *Processor) Create(ctx context.Context, req CreateRequest) (Payment, error) {
	if err := req.Validate(); err != nil {
		return Payment{}, err
	}

	outcome, err := p.authorizer.Authorize(ctx, req)
	if err != nil {
		return Payment{}, fmt.Errorf("authorize payment: %w", err)
	}

	now := time.Now().UTC()
	pay := Payment{
		ID:            uuid.New(),
		OrderID:       req.OrderID,
		UserID:        req.UserID,
		Amount:        req.Amount,
		Currency:      req.Currency,
		PaymentMethod: req.PaymentMethod,
		PaymentStatus: outcome.Status,
		TransactionID: outcome.TransactionID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := p.store.InsertPayment(ctx, pay); err != nil {
		return Payment{}, fmt.Errorf("insert payment: %w", err)
	}

	metrics.PaymentsCreated.WithLabelValues(string(pay.PaymentStatus)).Inc()
	p.logger.Info("payment created",
		"payment_id", pay.ID,
		"order_id", pay.OrderID,
		"status", pay.PaymentStatus,
	)

	p.publishCompleted(ctx, pay)

	return pay, nil
}

func (p *Processor) GetByID(ctx context.Context, id uuid.UUID) (Payment, error) {
	pay, err := p.store.GetPaymentByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			metrics.PaymentLookupMisses.Inc()
		}
		return Payment{}, err
	}
	return pay, nil
}

func (p *Processor) GetByOrderID(ctx context.Context, orderID uuid.UUID) (Payment, error) {
	pay, err := p.store.GetPaymentByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			metrics.PaymentLookupMisses.Inc()
		}
		return Payment{}, err
	}
	return pay, nil
}

// publishCompleted is best effort: a broker outage must not fail a payment
// that is already durable.
func (p *Processor) publishCompleted(ctx context.Context, pay Payment) {
	evt := events.PaymentCompletedEvent{
		EventID:       uuid.NewString(),
		PaymentID:     pay.ID.String(),
		OrderID:       pay.OrderID.String(),
		UserID:        pay.UserID.String(),
		Amount:        pay.Amount,
		Currency:      pay.Currency,
		Status:        string(pay.PaymentStatus),
		TransactionID: pay.TransactionID,
		Processed:     time.Now().UTC(),
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		p.logger.Error("marshal payment event", "payment_id", pay.ID, "err", err)
		return
	}

	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := p.publisher.Publish(pubCtx, "payments.completed", payload); err != nil {
		p.logger.Warn("publish payment event", "payment_id", pay.ID, "err", err)
	}
}
