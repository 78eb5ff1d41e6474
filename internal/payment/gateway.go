package payment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

//go:generate mockgen -destination=mocks/mock_gateway.go -package=mocks github.com/mattjoyce/hearth/internal/payment Gateway

// DefaultProcessingDelay is how long the simulated gateway takes to answer.
const DefaultProcessingDelay = 2 * time.Second

// ChargeStatus is the outcome of a charge.
type ChargeStatus string

const (
	ChargeSuccess  ChargeStatus = "success"
	ChargeDeclined ChargeStatus = "declined"
	ChargeError    ChargeStatus = "error"
)

// ChargeRequest asks the backend to take a payment.
type ChargeRequest struct {
	AmountCents int64      `json:"amountCents"`
	Currency    string     `json:"currency"`
	Method      MethodType `json:"method"`
	// MethodID is set when paying with a stored method.
	MethodID string `json:"methodId,omitempty"`
}

// ChargeResult is the backend's answer.
type ChargeResult struct {
	Status    ChargeStatus `json:"status"`
	Reference string       `json:"reference,omitempty"`
	Message   string       `json:"message,omitempty"`
}

// Gateway is the payment backend.
type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error)
}

// SimulatedGateway approves every charge after Delay.
type SimulatedGateway struct {
	Delay time.Duration
}

// NewSimulatedGateway returns a gateway answering after delay, or after
// DefaultProcessingDelay when delay is negative.
func NewSimulatedGateway(delay time.Duration) *SimulatedGateway {
	if delay < 0 {
		delay = DefaultProcessingDelay
	}
	return &SimulatedGateway{Delay: delay}
}

func (g *SimulatedGateway) Charge(ctx context.Context, _ ChargeRequest) (ChargeResult, error) {
	if g.Delay > 0 {
		timer := time.NewTimer(g.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ChargeResult{Status: ChargeError}, ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return ChargeResult{Status: ChargeError}, err
	}
	return ChargeResult{Status: ChargeSuccess, Reference: "sim-" + uuid.NewString()}, nil
}
