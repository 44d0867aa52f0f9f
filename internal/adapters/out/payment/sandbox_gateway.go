package payment

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"parcelshare/internal/core/domain/model/kernel"
	"parcelshare/internal/core/ports"

	"github.com/google/uuid"
)

// DeclinedMethodPrefix makes the sandbox decline an authorization.
const DeclinedMethodPrefix = "pm_card_declined"

type sandboxHold struct {
	amount   kernel.Money
	captured bool
	refunded int64
	refunds  map[int64]bool
}

// SandboxGateway keeps holds in memory and follows the same idempotency
// rules as the real processor. It is wired when no gateway url is set.
type SandboxGateway struct {
	mu    sync.Mutex
	holds map[string]*sandboxHold
	keys  map[string]string
}

func NewSandboxGateway() *SandboxGateway {
	return &SandboxGateway{
		holds: make(map[string]*sandboxHold),
		keys:  make(map[string]string),
	}
}

func (g *SandboxGateway) Authorize(_ context.Context, methodID string, amount kernel.Money, idempotencyKey string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if id, ok := g.keys[idempotencyKey]; ok {
		return id, nil
	}
	if strings.HasPrefix(methodID, DeclinedMethodPrefix) {
		return "", fmt.Errorf("%w: card declined", ports.ErrGatewayRejected)
	}
	if !amount.IsPositive() {
		return "", fmt.Errorf("%w: amount must be positive", ports.ErrGatewayRejected)
	}

	id := "sbx_" + uuid.NewString()
	g.holds[id] = &sandboxHold{amount: amount, refunds: make(map[int64]bool)}
	g.keys[idempotencyKey] = id
	return id, nil
}

func (g *SandboxGateway) Capture(_ context.Context, gatewayTxnID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	hold, ok := g.holds[gatewayTxnID]
	if !ok {
		return fmt.Errorf("%w: unknown transaction %s", ports.ErrGatewayRejected, gatewayTxnID)
	}
	if hold.refunded > 0 && !hold.captured {
		return fmt.Errorf("%w: hold %s was voided", ports.ErrGatewayRejected, gatewayTxnID)
	}
	hold.captured = true
	return nil
}

func (g *SandboxGateway) Refund(_ context.Context, gatewayTxnID string, amount kernel.Money) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	hold, ok := g.holds[gatewayTxnID]
	if !ok {
		return fmt.Errorf("%w: unknown transaction %s", ports.ErrGatewayRejected, gatewayTxnID)
	}
	if amount.Currency() != hold.amount.Currency() {
		return fmt.Errorf("%w: currency mismatch", ports.ErrGatewayRejected)
	}
	// refunds are keyed by amount, so a replay is a no-op
	if hold.refunds[amount.Minor()] {
		return nil
	}
	if hold.refunded+amount.Minor() > hold.amount.Minor() {
		return fmt.Errorf("%w: refund exceeds held amount", ports.ErrGatewayRejected)
	}
	hold.refunded += amount.Minor()
	hold.refunds[amount.Minor()] = true
	return nil
}

// Captured reports whether gatewayTxnID was captured.
func (g *SandboxGateway) Captured(gatewayTxnID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	hold, ok := g.holds[gatewayTxnID]
	return ok && hold.captured
}
