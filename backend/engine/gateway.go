package engine

import (
	"context"
	"time"
)

// PaymentMethod is opaque to the engine: it is handed to the gateway
// untouched and only the gateway's success/failure outcome matters.
type PaymentMethod struct {
	Kind   string `json:"kind"` // card, wallet, ...
	Token  string `json:"token"`
	Holder string `json:"holder"`
}

// Gateway is the asynchronous settlement port. Authorize reserves the
// amount; Settle completes the transaction after the provider's delay.
// Both block until the outcome is known or the context ends.
type Gateway interface {
	Authorize(ctx context.Context, amount int, method PaymentMethod) error
	Settle(ctx context.Context, txID string) error
}

// SimulatedGateway stands in for a real payment provider: it sleeps
// for the configured delay and succeeds, except for methods with an
// empty token, which are declined at authorization.
type SimulatedGateway struct {
	Delay time.Duration
}

func (g *SimulatedGateway) Authorize(ctx context.Context, amount int, method PaymentMethod) error {
	if amount > 0 && method.Token == "" {
		return ErrSettlementFailed
	}
	return g.wait(ctx)
}

func (g *SimulatedGateway) Settle(ctx context.Context, txID string) error {
	return g.wait(ctx)
}

func (g *SimulatedGateway) wait(ctx context.Context) error {
	if g.Delay <= 0 {
		return nil
	}
	select {
	case <-time.After(g.Delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
