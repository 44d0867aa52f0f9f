package ports

import (
	"context"
	"errors"

	"parcelshare/internal/core/domain/model/kernel"
)

// ErrGatewayRejected marks a gateway answer that will not change on retry,
// such as a declined card or an unknown transaction.
var ErrGatewayRejected = errors.New("payment gateway rejected the request")

// PaymentGateway is the external card processor. Every call is idempotent:
// authorizations by idempotency key, captures and refunds by gateway
// transaction id, so callers may replay them after a timeout.
type PaymentGateway interface {
	// Authorize places a hold on the payment method and returns the gateway
	// transaction id.
	Authorize(ctx context.Context, methodID string, amount kernel.Money, idempotencyKey string) (string, error)

	Capture(ctx context.Context, gatewayTxnID string) error

	// Refund returns amount to the payer. Refunding an uncaptured hold in
	// full voids it.
	Refund(ctx context.Context, gatewayTxnID string, amount kernel.Money) error
}
