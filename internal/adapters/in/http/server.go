package http

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"

	"parcelshare/internal/core/application/usecases/commands"
	"parcelshare/internal/core/application/usecases/queries"
	"parcelshare/internal/core/domain/model/assignment"
	"parcelshare/internal/core/domain/model/dispute"
	"parcelshare/internal/core/domain/model/kernel"
	"parcelshare/internal/core/domain/model/safety"
	"parcelshare/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// CommandHandler is satisfied by the command handlers that return only an error.
type CommandHandler[C any] interface {
	Handle(ctx context.Context, command C) error
}

// ResultHandler is satisfied by the query handlers and the command
// handlers that report an outcome.
type ResultHandler[C any, R any] interface {
	Handle(ctx context.Context, command C) (R, error)
}

// Handlers lists the use cases the REST API exposes.
type Handlers struct {
	CreatePackage            CommandHandler[commands.CreatePackageCommand]
	CancelPackage            CommandHandler[commands.CancelPackageCommand]
	CreateTrip               CommandHandler[commands.CreateTripCommand]
	RequestMatch             CommandHandler[commands.RequestMatchCommand]
	ProposePrice             CommandHandler[commands.ProposePriceCommand]
	ConfirmPrice             CommandHandler[commands.ConfirmPriceCommand]
	AcceptAssignment         CommandHandler[commands.AcceptAssignmentCommand]
	RecordSafetyConfirmation ResultHandler[commands.RecordSafetyConfirmationCommand, safety.Status]
	ConfirmPickup            CommandHandler[commands.ConfirmPickupCommand]
	ConfirmDelivery          CommandHandler[commands.ConfirmDeliveryCommand]
	CancelAssignment         ResultHandler[commands.CancelAssignmentCommand, assignment.CancelOutcome]
	RaiseDispute             CommandHandler[commands.RaiseDisputeCommand]
	ResolveDispute           CommandHandler[commands.ResolveDisputeCommand]
	HandleGatewayCallback    CommandHandler[commands.HandleGatewayCallbackCommand]

	GetAssignmentSnapshot ResultHandler[queries.GetAssignmentSnapshotQuery, queries.GetAssignmentSnapshotQueryResponse]
	GetAssignmentLedger   ResultHandler[queries.GetAssignmentLedgerQuery, []queries.GetAssignmentLedgerQueryResponse]
	GetTripCapacity       ResultHandler[queries.GetTripCapacityQuery, queries.GetTripCapacityQueryResponse]
}

// Server translates HTTP requests into commands and queries. The acting
// party is always the authenticated user, never a field of the body.
type Server struct {
	h             Handlers
	webhookSecret []byte
}

func NewServer(h Handlers, webhookSecret []byte) *Server {
	return &Server{h: h, webhookSecret: webhookSecret}
}

// CreatePackage handles POST /api/v1/packages.
func (s *Server) CreatePackage(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var body NewPackage
	if err := c.Bind(&body); err != nil {
		return badRequest("invalid request body")
	}

	params, err := body.toParams(actor.ID)
	if err != nil {
		return err
	}
	id := kernel.NewUUID()
	cmd, err := commands.NewCreatePackageCommand(id, params)
	if err != nil {
		return err
	}
	if err := s.h.CreatePackage.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, createdOf(id))
}

// CancelPackage handles DELETE /api/v1/packages/{id}.
func (s *Server) CancelPackage(c echo.Context) error {
	actor, id, err := s.actorAndID(c)
	if err != nil {
		return err
	}
	cmd, err := commands.NewCancelPackageCommand(id, actor.ID)
	if err != nil {
		return err
	}
	if err := s.h.CancelPackage.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// CreateTrip handles POST /api/v1/trips.
func (s *Server) CreateTrip(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var body NewTrip
	if err := c.Bind(&body); err != nil {
		return badRequest("invalid request body")
	}

	params, err := body.toParams(actor.ID)
	if err != nil {
		return err
	}
	id := kernel.NewUUID()
	cmd, err := commands.NewCreateTripCommand(id, params)
	if err != nil {
		return err
	}
	if err := s.h.CreateTrip.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, createdOf(id))
}

// GetTripCapacity handles GET /api/v1/trips/{id}/capacity.
func (s *Server) GetTripCapacity(c echo.Context) error {
	_, id, err := s.actorAndID(c)
	if err != nil {
		return err
	}
	query, err := queries.NewGetTripCapacityQuery(id)
	if err != nil {
		return err
	}
	resp, err := s.h.GetTripCapacity.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tripCapacityOf(resp))
}

// RequestMatch handles POST /api/v1/assignments.
func (s *Server) RequestMatch(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var body MatchRequest
	if err := c.Bind(&body); err != nil {
		return badRequest("invalid request body")
	}

	packageID, err := kernel.UUIDFromBytes(body.PackageID[:])
	if err != nil {
		return err
	}
	tripID, err := kernel.UUIDFromBytes(body.TripID[:])
	if err != nil {
		return err
	}
	id := kernel.NewUUID()
	cmd, err := commands.NewRequestMatchCommand(id, packageID, tripID, actor.ID)
	if err != nil {
		return err
	}
	if err := s.h.RequestMatch.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, createdOf(id))
}

// GetAssignment handles GET /api/v1/assignments/{id}.
func (s *Server) GetAssignment(c echo.Context) error {
	actor, id, err := s.actorAndID(c)
	if err != nil {
		return err
	}
	query, err := queries.NewGetAssignmentSnapshotQuery(id, actor.ID)
	if err != nil {
		return err
	}
	resp, err := s.h.GetAssignmentSnapshot.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, assignmentOf(resp))
}

// GetAssignmentLedger handles GET /api/v1/assignments/{id}/ledger.
func (s *Server) GetAssignmentLedger(c echo.Context) error {
	actor, id, err := s.actorAndID(c)
	if err != nil {
		return err
	}
	query, err := queries.NewGetAssignmentLedgerQuery(id, actor.ID)
	if err != nil {
		return err
	}
	resp, err := s.h.GetAssignmentLedger.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, transactionsOf(resp))
}

// ProposePrice handles POST /api/v1/assignments/{id}/proposals.
func (s *Server) ProposePrice(c echo.Context) error {
	actor, id, err := s.actorAndID(c)
	if err != nil {
		return err
	}
	var body PriceProposal
	if err := c.Bind(&body); err != nil {
		return badRequest("invalid request body")
	}

	price, err := body.Price.toDomain()
	if err != nil {
		return err
	}
	cmd, err := commands.NewProposePriceCommand(id, actor.ID, price, body.Note, body.ExpectedVersion)
	if err != nil {
		return err
	}
	if err := s.h.ProposePrice.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ConfirmPrice handles POST /api/v1/assignments/{id}/price-confirmation.
func (s *Server) ConfirmPrice(c echo.Context) error {
	actor, id, version, err := s.transition(c)
	if err != nil {
		return err
	}
	cmd, err := commands.NewConfirmPriceCommand(id, actor.ID, version)
	if err != nil {
		return err
	}
	if err := s.h.ConfirmPrice.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// AcceptAssignment handles POST /api/v1/assignments/{id}/acceptance.
func (s *Server) AcceptAssignment(c echo.Context) error {
	actor, id, version, err := s.transition(c)
	if err != nil {
		return err
	}
	cmd, err := commands.NewAcceptAssignmentCommand(id, actor.ID, version)
	if err != nil {
		return err
	}
	if err := s.h.AcceptAssignment.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// RecordSafetyConfirmation handles POST /api/v1/assignments/{id}/safety-checks.
func (s *Server) RecordSafetyConfirmation(c echo.Context) error {
	actor, id, err := s.actorAndID(c)
	if err != nil {
		return err
	}
	var body SafetyCheck
	if err := c.Bind(&body); err != nil {
		return badRequest("invalid request body")
	}

	event, err := safety.ParseEvent(body.Event)
	if err != nil {
		return err
	}
	item, err := safety.ParseItem(body.Item)
	if err != nil {
		return err
	}
	cmd, err := commands.NewRecordSafetyConfirmationCommand(id, actor.ID, event, item, body.Value, body.ExpectedVersion)
	if err != nil {
		return err
	}
	status, err := s.h.RecordSafetyConfirmation.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, SafetyStatus{Status: status.String()})
}

// ConfirmPickup handles POST /api/v1/assignments/{id}/pickup.
func (s *Server) ConfirmPickup(c echo.Context) error {
	actor, id, version, err := s.transition(c)
	if err != nil {
		return err
	}
	cmd, err := commands.NewConfirmPickupCommand(id, actor.ID, version)
	if err != nil {
		return err
	}
	if err := s.h.ConfirmPickup.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ConfirmDelivery handles POST /api/v1/assignments/{id}/delivery.
func (s *Server) ConfirmDelivery(c echo.Context) error {
	actor, id, version, err := s.transition(c)
	if err != nil {
		return err
	}
	cmd, err := commands.NewConfirmDeliveryCommand(id, actor.ID, version)
	if err != nil {
		return err
	}
	if err := s.h.ConfirmDelivery.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// CancelAssignment handles POST /api/v1/assignments/{id}/cancellation.
// A cancel queued behind an in-flight payment operation answers 202.
func (s *Server) CancelAssignment(c echo.Context) error {
	actor, id, err := s.actorAndID(c)
	if err != nil {
		return err
	}
	var body CancelRequest
	if err := c.Bind(&body); err != nil {
		return badRequest("invalid request body")
	}

	cmd, err := commands.NewCancelAssignmentCommand(id, actor.ID, body.Reason, body.ExpectedVersion)
	if err != nil {
		return err
	}
	outcome, err := s.h.CancelAssignment.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}

	status := http.StatusOK
	if outcome == assignment.CancelQueued {
		status = http.StatusAccepted
	}
	return c.JSON(status, CancelResult{Outcome: outcome.String()})
}

// RaiseDispute handles POST /api/v1/assignments/{id}/disputes.
func (s *Server) RaiseDispute(c echo.Context) error {
	actor, id, err := s.actorAndID(c)
	if err != nil {
		return err
	}
	var body DisputeRequest
	if err := c.Bind(&body); err != nil {
		return badRequest("invalid request body")
	}

	disputeID := kernel.NewUUID()
	cmd, err := commands.NewRaiseDisputeCommand(disputeID, id, actor.ID, body.Reason, body.ExpectedVersion)
	if err != nil {
		return err
	}
	if err := s.h.RaiseDispute.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, createdOf(disputeID))
}

// ResolveDispute handles POST /api/v1/disputes/{id}/resolution. Moderators only.
func (s *Server) ResolveDispute(c echo.Context) error {
	actor, id, err := s.actorAndID(c)
	if err != nil {
		return err
	}
	if !actor.IsModerator() {
		return errs.NewForbiddenError("resolve dispute", "moderator role required")
	}
	var body Verdict
	if err := c.Bind(&body); err != nil {
		return badRequest("invalid request body")
	}

	outcome, err := dispute.ParseOutcome(body.Outcome)
	if err != nil {
		return err
	}
	cmd, err := commands.NewResolveDisputeCommand(id, actor.ID, outcome, body.Note)
	if err != nil {
		return err
	}
	if err := s.h.ResolveDispute.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleGatewayCallback handles POST /api/v1/gateway/callbacks. The body is
// signed with the shared webhook secret (hex HMAC-SHA256).
func (s *Server) HandleGatewayCallback(c echo.Context) error {
	raw, err := readBody(c)
	if err != nil {
		return badRequest("invalid request body")
	}
	if !s.validSignature(raw, c.Request().Header.Get("X-Gateway-Signature")) {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid signature")
	}

	var body GatewayCallback
	if err := c.Bind(&body); err != nil {
		return badRequest("invalid request body")
	}
	assignmentID, err := kernel.UUIDFromBytes(body.AssignmentID[:])
	if err != nil {
		return err
	}
	cmd, err := commands.NewHandleGatewayCallbackCommand(
		body.ID,
		commands.GatewayCallbackKind(body.Type),
		assignmentID,
		body.GatewayTxnID,
	)
	if err != nil {
		return err
	}
	if err := s.h.HandleGatewayCallback.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) validSignature(body []byte, signature string) bool {
	if len(s.webhookSecret) == 0 {
		return false
	}
	got, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, s.webhookSecret)
	mac.Write(body)
	return hmac.Equal(got, mac.Sum(nil))
}

// SignCallback returns the signature the gateway sends for body.
func SignCallback(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *Server) actorAndID(c echo.Context) (Actor, kernel.UUID, error) {
	actor, err := actorFrom(c)
	if err != nil {
		return Actor{}, kernel.UUID{}, err
	}
	id, err := pathID(c)
	if err != nil {
		return Actor{}, kernel.UUID{}, err
	}
	return actor, id, nil
}

func (s *Server) transition(c echo.Context) (Actor, kernel.UUID, *int64, error) {
	actor, id, err := s.actorAndID(c)
	if err != nil {
		return Actor{}, kernel.UUID{}, nil, err
	}
	var body Transition
	if err := c.Bind(&body); err != nil {
		return Actor{}, kernel.UUID{}, nil, badRequest("invalid request body")
	}
	return actor, id, body.ExpectedVersion, nil
}

func pathID(c echo.Context) (kernel.UUID, error) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", "id", c.Param("id"), &id, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
	if err != nil {
		return kernel.UUID{}, badRequest("invalid format for parameter id: " + err.Error())
	}
	parsed, err := kernel.UUIDFromBytes(id[:])
	if err != nil {
		return kernel.UUID{}, badRequest("parameter id must not be the nil uuid")
	}
	return parsed, nil
}

// readBody returns the raw body and leaves a fresh reader for Bind.
func readBody(c echo.Context) ([]byte, error) {
	req := c.Request()
	raw, err := io.ReadAll(io.LimitReader(req.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	req.Body = io.NopCloser(bytes.NewReader(raw))
	return raw, nil
}

func badRequest(message string) error {
	return echo.NewHTTPError(http.StatusBadRequest, message)
}
