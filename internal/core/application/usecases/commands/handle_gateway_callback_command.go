package commands

import (
	"errors"
	"strings"

	"parcelshare/internal/core/domain/model/kernel"
	"parcelshare/internal/pkg/errs"
	"parcelshare/internal/pkg/guard"
)

var ErrHandleGatewayCallbackCommandIsNotConstructed = errors.New(
	"HandleGatewayCallbackCommand must be created via NewHandleGatewayCallbackCommand constructor",
)

// GatewayCallbackKind is the gateway's name for what happened.
type GatewayCallbackKind string

const (
	CallbackPaymentCaptured   GatewayCallbackKind = "payment.captured"
	CallbackPaymentAuthorized GatewayCallbackKind = "payment.authorized"
	CallbackPaymentRefunded   GatewayCallbackKind = "payment.refunded"
)

// HandleGatewayCallbackCommand is a webhook notification from the gateway.
// The gateway may deliver the same callback more than once.
type HandleGatewayCallbackCommand struct {
	callbackID   string
	kind         GatewayCallbackKind
	assignmentID kernel.UUID
	gatewayTxnID string

	guard guard.ConstructorGuard
}

func NewHandleGatewayCallbackCommand(
	callbackID string,
	kind GatewayCallbackKind,
	assignmentID kernel.UUID,
	gatewayTxnID string,
) (HandleGatewayCallbackCommand, error) {
	callbackID = strings.TrimSpace(callbackID)
	gatewayTxnID = strings.TrimSpace(gatewayTxnID)

	errList := []error{assignmentID.Validate()}
	if callbackID == "" {
		errList = append(errList, errs.NewValueIsRequiredError("callback id"))
	}
	if gatewayTxnID == "" {
		errList = append(errList, errs.NewValueIsRequiredError("gateway transaction id"))
	}
	if kind == "" {
		errList = append(errList, errs.NewValueIsRequiredError("kind"))
	}
	if err := errors.Join(errList...); err != nil {
		return HandleGatewayCallbackCommand{}, err
	}

	return HandleGatewayCallbackCommand{
		callbackID:   callbackID,
		kind:         kind,
		assignmentID: assignmentID,
		gatewayTxnID: gatewayTxnID,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

func (c HandleGatewayCallbackCommand) Validate() error {
	return c.guard.Validate(ErrHandleGatewayCallbackCommandIsNotConstructed)
}

func (c HandleGatewayCallbackCommand) CallbackID() string        { return c.callbackID }
func (c HandleGatewayCallbackCommand) Kind() GatewayCallbackKind { return c.kind }
func (c HandleGatewayCallbackCommand) AssignmentID() kernel.UUID { return c.assignmentID }
func (c HandleGatewayCallbackCommand) GatewayTxnID() string      { return c.gatewayTxnID }
