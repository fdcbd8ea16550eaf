package payment

import (
	"context"

	"github.com/google/uuid"
)

// Outcome is the result of asking an authorizer to settle a payment.
type Outcome struct {
	Status        Status
	TransactionID string
}

// Authorizer settles a creation request into a status and transaction
// reference. The processor does not care how the decision is made, so a
// real gateway integration can replace StubAuthorizer without touching the
// processor's control flow.
type Authorizer interface {
	Authorize(ctx context.Context, req CreateRequest) (Outcome, error)
}

// StubAuthorizer approves every payment with a synthetic transaction
// reference. No gateway is called.
type StubAuthorizer struct{}

func (StubAuthorizer) Authorize(_ context.Context, _ CreateRequest) (Outcome, error) {
	return Outcome{
		Status:        StatusCompleted,
		TransactionID: uuid.NewString(),
	}, nil
}
