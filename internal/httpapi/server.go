package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"shopium/payments-service/internal/payment"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const serviceName = "payment-service"

// PaymentService is the business-logic surface the transport calls into.
type PaymentService interface {
	Create(ctx context.Context, req payment.CreateRequest) (payment.Payment, error)
	GetByID(ctx context.Context, id uuid.UUID) (payment.Payment, error)
	GetByOrderID(ctx context.Context, orderID uuid.UUID) (payment.Payment, error)
}

// TokenValidator gates protected routes.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (bool, error)
	ResolveSubject(ctx context.Context, token string) (string, error)
}

// Pinger reports storage reachability for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	payments PaymentService
	auth     TokenValidator
	db       Pinger
	logger   *slog.Logger
	mux      *http.ServeMux
	handler  http.Handler
}

func NewServer(payments PaymentService, auth TokenValidator, db Pinger, logger *slog.Logger) *Server {
	s := &Server{
		payments: payments,
		auth:     auth,
		db:       db,
		logger:   logger,
		mux:      http.NewServeMux(),
	}
	s.routes()
	s.handler = withRequestMetrics(s.mux)
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/health", s.health)
	s.mux.HandleFunc("POST /api/payments", s.requireAuth(s.createPayment))
	s.mux.HandleFunc("GET /api/payments/{id}", s.requireAuth(s.getPayment))
	s.mux.HandleFunc("GET /api/payments/order/{orderID}", s.requireAuth(s.getPaymentByOrder))
	s.mux.Handle("GET /metrics", promhttp.Handler())
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	status := "UP"
	code := http.StatusOK
	dbStatus := "connected"

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.db.Ping(ctx); err != nil {
		status = "DEGRADED"
		dbStatus = "disconnected"
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, map[string]any{
		"status":    status,
		"service":   serviceName,
		"database":  dbStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) createPayment(w http.ResponseWriter, r *http.Request) {
	var req payment.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	pay, err := s.payments.Create(r.Context(), req)
	if err != nil {
		var verr *payment.ValidationError
		if errors.As(err, &verr) {
			writeFailure(w, http.StatusBadRequest, verr.Error())
			return
		}
		s.logger.Error("create payment", "order_id", req.OrderID, "err", err)
		writeFailure(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeSuccess(w, http.StatusCreated, pay)
}

func (s *Server) getPayment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid payment id")
		return
	}

	pay, err := s.payments.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, payment.ErrNotFound) {
			writeFailure(w, http.StatusNotFound, "payment not found")
			return
		}
		s.logger.Error("get payment", "payment_id", id, "err", err)
		writeFailure(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeSuccess(w, http.StatusOK, pay)
}

func (s *Server) getPaymentByOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(r.PathValue("orderID"))
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid order id")
		return
	}

	pay, err := s.payments.GetByOrderID(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, payment.ErrNotFound) {
			writeFailure(w, http.StatusNotFound, "payment not found for order")
			return
		}
		s.logger.Error("get payment by order", "order_id", orderID, "err", err)
		writeFailure(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeSuccess(w, http.StatusOK, pay)
}
