package payment_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"shopium/payments-service/internal/events"
	"shopium/payments-service/internal/payment"
)

type memStore struct {
	records   map[uuid.UUID]payment.Payment
	insertErr error
}

func newMemStore() *memStore {
	return &memStore{records: make(map[uuid.UUID]payment.Payment)}
}

func (s *memStore) InsertPayment(_ context.Context, p payment.Payment) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.records[p.ID] = p
	return nil
}

func (s *memStore) GetPaymentByID(_ context.Context, id uuid.UUID) (payment.Payment, error) {
	p, ok := s.records[id]
	if !ok {
		return payment.Payment{}, payment.ErrNotFound
	}
	return p, nil
}

func (s *memStore) GetPaymentByOrderID(_ context.Context, orderID uuid.UUID) (payment.Payment, error) {
	var found payment.Payment
	ok := false
	for _, p := range s.records {
		if p.OrderID != orderID {
			continue
		}
		if !ok || p.CreatedAt.After(found.CreatedAt) {
			found = p
			ok = true
		}
	}
	if !ok {
		return payment.Payment{}, payment.ErrNotFound
	}
	return found, nil
}

type fakeAuthorizer struct {
	outcome payment.Outcome
	err     error
}

func (f *fakeAuthorizer) Authorize(context.Context, payment.CreateRequest) (payment.Outcome, error) {
	return f.outcome, f.err
}

type recordingPublisher struct {
	routingKeys []string
	payloads    [][]byte
}

func (p *recordingPublisher) Publish(_ context.Context, routingKey string, payload []byte) error {
	p.routingKeys = append(p.routingKeys, routingKey)
	p.payloads = append(p.payloads, payload)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func validRequest() payment.CreateRequest {
	return payment.CreateRequest{
		OrderID:       uuid.New(),
		UserID:        uuid.New(),
		Amount:        decimal.RequireFromString("49.99"),
		Currency:      "USD",
		PaymentMethod: "card",
	}
}

func TestCreateCompletesWithTransactionID(t *testing.T) {
	store := newMemStore()
	processor := payment.NewProcessor(store, payment.StubAuthorizer{}, events.NopPublisher{}, testLogger())

	req := validRequest()
	pay, err := processor.Create(context.Background(), req)
	require.NoError(t, err)

	require.Equal(t, payment.StatusCompleted, pay.PaymentStatus)
	require.NotEmpty(t, pay.TransactionID)
	require.NotEqual(t, uuid.Nil, pay.ID)
	require.Equal(t, req.OrderID, pay.OrderID)
	require.Equal(t, req.UserID, pay.UserID)
	require.True(t, pay.Amount.Equal(req.Amount))
	require.Equal(t, "USD", pay.Currency)
	require.Equal(t, pay.CreatedAt, pay.UpdatedAt)
}

func TestCreateThenGetByIDReturnsSameRecord(t *testing.T) {
	store := newMemStore()
	processor := payment.NewProcessor(store, payment.StubAuthorizer{}, events.NopPublisher{}, testLogger())

	created, err := processor.Create(context.Background(), validRequest())
	require.NoError(t, err)

	got, err := processor.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, created, got)
}

func TestCreateThenGetByOrderID(t *testing.T) {
	store := newMemStore()
	processor := payment.NewProcessor(store, payment.StubAuthorizer{}, events.NopPublisher{}, testLogger())

	req := validRequest()
	created, err := processor.Create(context.Background(), req)
	require.NoError(t, err)

	got, err := processor.GetByOrderID(context.Background(), req.OrderID)
	require.NoError(t, err)
	require.Equal(t, created, got)
}

func TestGetByIDUnknownIsNotFound(t *testing.T) {
	processor := payment.NewProcessor(newMemStore(), payment.StubAuthorizer{}, events.NopPublisher{}, testLogger())

	_, err := processor.GetByID(context.Background(), uuid.New())
	require.ErrorIs(t, err, payment.ErrNotFound)
}

func TestGetByOrderIDUnknownIsNotFound(t *testing.T) {
	processor := payment.NewProcessor(newMemStore(), payment.StubAuthorizer{}, events.NopPublisher{}, testLogger())

	_, err := processor.GetByOrderID(context.Background(), uuid.New())
	require.ErrorIs(t, err, payment.ErrNotFound)
}

func TestCreateRejectsInvalidRequests(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*payment.CreateRequest)
	}{
		{"missing order id", func(r *payment.CreateRequest) { r.OrderID = uuid.Nil }},
		{"missing user id", func(r *payment.CreateRequest) { r.UserID = uuid.Nil }},
		{"zero amount", func(r *payment.CreateRequest) { r.Amount = decimal.Zero }},
		{"negative amount", func(r *payment.CreateRequest) { r.Amount = decimal.RequireFromString("-1") }},
		{"missing currency", func(r *payment.CreateRequest) { r.Currency = "" }},
		{"missing method", func(r *payment.CreateRequest) { r.PaymentMethod = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newMemStore()
			processor := payment.NewProcessor(store, payment.StubAuthorizer{}, events.NopPublisher{}, testLogger())

			req := validRequest()
			tc.mutate(&req)

			_, err := processor.Create(context.Background(), req)

			var verr *payment.ValidationError
			require.ErrorAs(t, err, &verr)
			require.Empty(t, store.records, "no write may happen for a rejected request")
		})
	}
}

func TestCreateStorageFailureLeavesNoRecord(t *testing.T) {
	store := newMemStore()
	store.insertErr = errors.New("connection reset")
	publisher := &recordingPublisher{}
	processor := payment.NewProcessor(store, payment.StubAuthorizer{}, publisher, testLogger())

	_, err := processor.Create(context.Background(), validRequest())
	require.Error(t, err)
	require.Empty(t, store.records)
	require.Empty(t, publisher.payloads, "no event may be published for a failed write")
}

func TestCreateUsesAuthorizerOutcome(t *testing.T) {
	store := newMemStore()
	auth := &fakeAuthorizer{outcome: payment.Outcome{Status: payment.StatusFailed, TransactionID: "tx-123"}}
	processor := payment.NewProcessor(store, auth, events.NopPublisher{}, testLogger())

	pay, err := processor.Create(context.Background(), validRequest())
	require.NoError(t, err)
	require.Equal(t, payment.StatusFailed, pay.PaymentStatus)
	require.Equal(t, "tx-123", pay.TransactionID)
}

func TestCreateAuthorizerErrorPropagates(t *testing.T) {
	store := newMemStore()
	auth := &fakeAuthorizer{err: errors.New("gateway down")}
	processor := payment.NewProcessor(store, auth, events.NopPublisher{}, testLogger())

	_, err := processor.Create(context.Background(), validRequest())
	require.Error(t, err)
	require.Empty(t, store.records)
}

func TestCreatePublishesCompletedEvent(t *testing.T) {
	store := newMemStore()
	publisher := &recordingPublisher{}
	processor := payment.NewProcessor(store, payment.StubAuthorizer{}, publisher, testLogger())

	pay, err := processor.Create(context.Background(), validRequest())
	require.NoError(t, err)

	require.Len(t, publisher.payloads, 1)
	require.Equal(t, []string{"payments.completed"}, publisher.routingKeys)

	var evt events.PaymentCompletedEvent
	require.NoError(t, json.Unmarshal(publisher.payloads[0], &evt))
	require.Equal(t, pay.ID.String(), evt.PaymentID)
	require.Equal(t, pay.OrderID.String(), evt.OrderID)
	require.Equal(t, string(payment.StatusCompleted), evt.Status)
	require.Equal(t, pay.TransactionID, evt.TransactionID)
}
