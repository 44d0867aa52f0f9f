package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"parcelshare/internal/core/application/usecases/commands"
	"parcelshare/internal/core/application/usecases/queries"
	"parcelshare/internal/core/domain/model/assignment"
	"parcelshare/internal/core/domain/model/dispute"
	"parcelshare/internal/core/domain/model/kernel"
	"parcelshare/internal/core/domain/model/safety"
	"parcelshare/internal/pkg/errs"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testSecret        = []byte("test-jwt-secret")
	testWebhookSecret = []byte("test-webhook-secret")
)

type fakeCommand[C any] struct {
	got   C
	calls int
	err   error
}

func (f *fakeCommand[C]) Handle(_ context.Context, c C) error {
	f.got = c
	f.calls++
	return f.err
}

type fakeResult[C any, R any] struct {
	got   C
	resp  R
	calls int
	err   error
}

func (f *fakeResult[C, R]) Handle(_ context.Context, c C) (R, error) {
	f.got = c
	f.calls++
	return f.resp, f.err
}

type fakes struct {
	createPackage    *fakeCommand[commands.CreatePackageCommand]
	cancelPackage    *fakeCommand[commands.CancelPackageCommand]
	createTrip       *fakeCommand[commands.CreateTripCommand]
	requestMatch     *fakeCommand[commands.RequestMatchCommand]
	proposePrice     *fakeCommand[commands.ProposePriceCommand]
	confirmPrice     *fakeCommand[commands.ConfirmPriceCommand]
	accept           *fakeCommand[commands.AcceptAssignmentCommand]
	safety           *fakeResult[commands.RecordSafetyConfirmationCommand, safety.Status]
	pickup           *fakeCommand[commands.ConfirmPickupCommand]
	delivery         *fakeCommand[commands.ConfirmDeliveryCommand]
	cancelAssignment *fakeResult[commands.CancelAssignmentCommand, assignment.CancelOutcome]
	raiseDispute     *fakeCommand[commands.RaiseDisputeCommand]
	resolveDispute   *fakeCommand[commands.ResolveDisputeCommand]
	callback         *fakeCommand[commands.HandleGatewayCallbackCommand]
	snapshot         *fakeResult[queries.GetAssignmentSnapshotQuery, queries.GetAssignmentSnapshotQueryResponse]
	ledger           *fakeResult[queries.GetAssignmentLedgerQuery, []queries.GetAssignmentLedgerQueryResponse]
	capacity         *fakeResult[queries.GetTripCapacityQuery, queries.GetTripCapacityQueryResponse]
}

func newTestRouter(t *testing.T) (*echo.Echo, *fakes) {
	t.Helper()

	f := &fakes{
		createPackage:    &fakeCommand[commands.CreatePackageCommand]{},
		cancelPackage:    &fakeCommand[commands.CancelPackageCommand]{},
		createTrip:       &fakeCommand[commands.CreateTripCommand]{},
		requestMatch:     &fakeCommand[commands.RequestMatchCommand]{},
		proposePrice:     &fakeCommand[commands.ProposePriceCommand]{},
		confirmPrice:     &fakeCommand[commands.ConfirmPriceCommand]{},
		accept:           &fakeCommand[commands.AcceptAssignmentCommand]{},
		safety:           &fakeResult[commands.RecordSafetyConfirmationCommand, safety.Status]{},
		pickup:           &fakeCommand[commands.ConfirmPickupCommand]{},
		delivery:         &fakeCommand[commands.ConfirmDeliveryCommand]{},
		cancelAssignment: &fakeResult[commands.CancelAssignmentCommand, assignment.CancelOutcome]{},
		raiseDispute:     &fakeCommand[commands.RaiseDisputeCommand]{},
		resolveDispute:   &fakeCommand[commands.ResolveDisputeCommand]{},
		callback:         &fakeCommand[commands.HandleGatewayCallbackCommand]{},
		snapshot:         &fakeResult[queries.GetAssignmentSnapshotQuery, queries.GetAssignmentSnapshotQueryResponse]{},
		ledger:           &fakeResult[queries.GetAssignmentLedgerQuery, []queries.GetAssignmentLedgerQueryResponse]{},
		capacity:         &fakeResult[queries.GetTripCapacityQuery, queries.GetTripCapacityQueryResponse]{},
	}

	server := NewServer(Handlers{
		CreatePackage:            f.createPackage,
		CancelPackage:            f.cancelPackage,
		CreateTrip:               f.createTrip,
		RequestMatch:             f.requestMatch,
		ProposePrice:             f.proposePrice,
		ConfirmPrice:             f.confirmPrice,
		AcceptAssignment:         f.accept,
		RecordSafetyConfirmation: f.safety,
		ConfirmPickup:            f.pickup,
		ConfirmDelivery:          f.delivery,
		CancelAssignment:         f.cancelAssignment,
		RaiseDispute:             f.raiseDispute,
		ResolveDispute:           f.resolveDispute,
		HandleGatewayCallback:    f.callback,
		GetAssignmentSnapshot:    f.snapshot,
		GetAssignmentLedger:      f.ledger,
		GetTripCapacity:          f.capacity,
	}, testWebhookSecret)

	e, err := NewRouter(t.Context(), server, RouterConfig{
		JWTSecret: testSecret,
		JWTIssuer: "parcelshare-test",
		Logger:    slog.New(slog.DiscardHandler),
	})
	require.NoError(t, err)
	return e, f
}

func token(t *testing.T, userID kernel.UUID, role string) string {
	t.Helper()

	signed, err := IssueToken(testSecret, "parcelshare-test", userID, role, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	require.NoError(t, err)
	return signed
}

func do(e *echo.Echo, method, path, bearer, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorBody {
	t.Helper()

	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

const newPackageBody = `{
	"title": "Books",
	"dimensions": {"length": 30, "width": 20, "height": 10},
	"weight_grams": 3000,
	"type": "DOCUMENTS",
	"declared_value": {"amount": 5000, "currency": "EUR"},
	"pickup": {"street": "Alexanderplatz 1", "city": "Berlin", "postal_code": "10178", "country": "DE"},
	"dropoff": {"street": "Rynek 1", "city": "Wroclaw", "postal_code": "50-106", "country": "PL"},
	"window": {"from": "2030-05-01T08:00:00Z", "to": "2030-05-04T08:00:00Z"},
	"offered_price": {"amount": 4000, "currency": "EUR"},
	"payment_method_id": "pm_card_visa"
}`

func TestRouter_Health(t *testing.T) {
	e, _ := newTestRouter(t)

	rec := do(e, http.MethodGet, "/health", "", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Healthy", rec.Body.String())
}

func TestRouter_SwaggerServesDocument(t *testing.T) {
	e, _ := newTestRouter(t)

	rec := do(e, http.MethodGet, "/swagger/doc.json", "", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"title":"parcelshare"`)
}

func TestRouter_Authentication(t *testing.T) {
	user := kernel.NewUUID()
	expired, err := IssueToken(testSecret, "parcelshare-test", user, RoleMember, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	})
	require.NoError(t, err)
	wrongIssuer, err := IssueToken(testSecret, "someone-else", user, RoleMember, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	require.NoError(t, err)
	wrongKey, err := IssueToken([]byte("other"), "parcelshare-test", user, RoleMember, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	require.NoError(t, err)

	tests := []struct {
		name    string
		bearer  string
		message string
	}{
		{"missing token", "", "bearer token required"},
		{"expired token", expired, "token expired"},
		{"wrong issuer", wrongIssuer, "invalid token"},
		{"wrong key", wrongKey, "invalid token"},
		{"garbage", "not-a-jwt", "invalid token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, f := newTestRouter(t)

			rec := do(e, http.MethodGet, "/api/v1/assignments/"+kernel.NewUUID().String(), tt.bearer, "")

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, tt.message, decodeError(t, rec).Message)
			assert.Equal(t, 0, f.snapshot.calls)
		})
	}
}

func TestServer_CreatePackage_SenderIsTokenSubject(t *testing.T) {
	// Arrange
	e, f := newTestRouter(t)
	sender := kernel.NewUUID()

	// Act
	rec := do(e, http.MethodPost, "/api/v1/packages", token(t, sender, RoleMember), newPackageBody)

	// Assert
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created Created
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	params := f.createPackage.got.Params()
	assert.Equal(t, created.ID.String(), f.createPackage.got.PackageID().String())
	assert.True(t, params.SenderID.IsEqual(sender))
	assert.Equal(t, 3*kernel.Kilogram, params.Weight)
	assert.Equal(t, kernel.PackageTypeDocuments, params.Type)
	assert.Equal(t, int64(4000), params.OfferedPrice.Minor())
	assert.Equal(t, "Wroclaw", params.Dropoff.City())
}

func TestServer_CreatePackage_RejectedByDocument(t *testing.T) {
	// Arrange
	e, f := newTestRouter(t)
	body := strings.Replace(newPackageBody, `"weight_grams": 3000`, `"weight_grams": 0`, 1)

	// Act
	rec := do(e, http.MethodPost, "/api/v1/packages", token(t, kernel.NewUUID(), RoleMember), body)

	// Assert
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEmpty(t, decodeError(t, rec).Details)
	assert.Equal(t, 0, f.createPackage.calls)
}

func TestServer_CreatePackage_InvalidWindow(t *testing.T) {
	// Arrange
	e, f := newTestRouter(t)
	body := strings.Replace(newPackageBody, `"to": "2030-05-04T08:00:00Z"`, `"to": "2030-04-01T08:00:00Z"`, 1)

	// Act
	rec := do(e, http.MethodPost, "/api/v1/packages", token(t, kernel.NewUUID(), RoleMember), body)

	// Assert
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, f.createPackage.calls)
}

func TestServer_RequestMatch(t *testing.T) {
	// Arrange
	e, f := newTestRouter(t)
	traveler := kernel.NewUUID()
	packageID, tripID := kernel.NewUUID(), kernel.NewUUID()
	body := `{"package_id":"` + packageID.String() + `","trip_id":"` + tripID.String() + `"}`

	// Act
	rec := do(e, http.MethodPost, "/api/v1/assignments", token(t, traveler, RoleMember), body)

	// Assert
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.True(t, f.requestMatch.got.PackageID().IsEqual(packageID))
	assert.True(t, f.requestMatch.got.TripID().IsEqual(tripID))
	assert.True(t, f.requestMatch.got.ActorID().IsEqual(traveler))
}

func TestServer_ConfirmPrice_PassesExpectedVersion(t *testing.T) {
	// Arrange
	e, f := newTestRouter(t)
	actor, id := kernel.NewUUID(), kernel.NewUUID()

	// Act
	rec := do(e, http.MethodPost, "/api/v1/assignments/"+id.String()+"/price-confirmation",
		token(t, actor, RoleMember), `{"expected_version": 3}`)

	// Assert
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	assert.True(t, f.confirmPrice.got.AssignmentID().IsEqual(id))
	assert.True(t, f.confirmPrice.got.ActorID().IsEqual(actor))
	require.NotNil(t, f.confirmPrice.got.ExpectedVersion())
	assert.Equal(t, int64(3), *f.confirmPrice.got.ExpectedVersion())
}

func TestServer_AcceptAssignment_WithoutBody(t *testing.T) {
	e, f := newTestRouter(t)

	rec := do(e, http.MethodPost, "/api/v1/assignments/"+kernel.NewUUID().String()+"/acceptance",
		token(t, kernel.NewUUID(), RoleMember), "")

	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	assert.Equal(t, 1, f.accept.calls)
	assert.Nil(t, f.accept.got.ExpectedVersion())
}

func TestServer_InvalidPathID(t *testing.T) {
	e, f := newTestRouter(t)

	rec := do(e, http.MethodPost, "/api/v1/assignments/not-a-uuid/pickup", token(t, kernel.NewUUID(), RoleMember), "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, f.pickup.calls)
}

func TestServer_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"concurrent modification", errs.NewConcurrentModificationError("assignment", "a1"), http.StatusConflict},
		{"invalid state", errs.NewInvalidStateError("assignment", "MATCHED", "confirm price"), http.StatusConflict},
		{"insufficient capacity", errs.ErrInsufficientTripCapacity, http.StatusConflict},
		{"not negotiable", errs.NewAssignmentNotNegotiableError("CANCELLED"), http.StatusUnprocessableEntity},
		{"checklist incomplete", errs.NewChecklistIncompleteError("PICKUP", "partial", []string{"photo_taken"}), http.StatusUnprocessableEntity},
		{"payment authorization", errs.NewPaymentAuthorizationError("card declined"), http.StatusPaymentRequired},
		{"settlement failed", errs.NewSettlementFailedError("capture", "gw_1", 3, assert.AnError), http.StatusBadGateway},
		{"forbidden", errs.NewForbiddenError("confirm price", "not a party"), http.StatusForbidden},
		{"not found", errs.NewObjectNotFoundError("assignment", "a1"), http.StatusNotFound},
		{"invalid value", errs.NewValueIsInvalidError("price"), http.StatusBadRequest},
		{"unexpected", assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			e, f := newTestRouter(t)
			f.confirmPrice.err = tt.err

			// Act
			rec := do(e, http.MethodPost, "/api/v1/assignments/"+kernel.NewUUID().String()+"/price-confirmation",
				token(t, kernel.NewUUID(), RoleMember), "")

			// Assert
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.status, decodeError(t, rec).Code)
		})
	}
}

func TestServer_ErrorMapping_MessagesAndDetails(t *testing.T) {
	// Arrange
	e, f := newTestRouter(t)
	f.pickup.err = errs.NewChecklistIncompleteError("PICKUP", "partial", []string{"photo_taken", "location_confirmed"})
	f.delivery.err = errs.NewConcurrentModificationError("assignment", "a1")
	f.accept.err = assert.AnError
	bearer := token(t, kernel.NewUUID(), RoleMember)
	base := "/api/v1/assignments/" + kernel.NewUUID().String()

	// Act
	pickup := decodeError(t, do(e, http.MethodPost, base+"/pickup", bearer, ""))
	delivery := decodeError(t, do(e, http.MethodPost, base+"/delivery", bearer, ""))
	accept := decodeError(t, do(e, http.MethodPost, base+"/acceptance", bearer, ""))

	// Assert
	assert.Equal(t, []string{"photo_taken", "location_confirmed"}, pickup.Details)
	assert.Equal(t, "this assignment changed, please refresh", delivery.Message)
	assert.Equal(t, "internal server error", accept.Message)
}

func TestServer_CancelAssignment_Outcomes(t *testing.T) {
	tests := []struct {
		outcome assignment.CancelOutcome
		status  int
		body    string
	}{
		{assignment.CancelApplied, http.StatusOK, "applied"},
		{assignment.CancelQueued, http.StatusAccepted, "queued"},
		{assignment.CancelAwaitingRefund, http.StatusOK, "awaiting_refund"},
	}

	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			// Arrange
			e, f := newTestRouter(t)
			f.cancelAssignment.resp = tt.outcome

			// Act
			rec := do(e, http.MethodPost, "/api/v1/assignments/"+kernel.NewUUID().String()+"/cancellation",
				token(t, kernel.NewUUID(), RoleMember), `{"reason":"changed plans"}`)

			// Assert
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			var result CancelResult
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
			assert.Equal(t, tt.body, result.Outcome)
			assert.Equal(t, "changed plans", f.cancelAssignment.got.Reason())
		})
	}
}

func TestServer_RecordSafetyConfirmation(t *testing.T) {
	// Arrange
	e, f := newTestRouter(t)
	f.safety.resp = safety.StatusPartial

	// Act
	rec := do(e, http.MethodPost, "/api/v1/assignments/"+kernel.NewUUID().String()+"/safety-checks",
		token(t, kernel.NewUUID(), RoleMember), `{"event":"PICKUP","item":"photo_taken","value":true,"expected_version":7}`)

	// Assert
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"status":"partial"}`, rec.Body.String())
	assert.Equal(t, safety.EventPickup, f.safety.got.Event())
	assert.Equal(t, safety.ItemPhotoTaken, f.safety.got.Item())
	assert.True(t, f.safety.got.Value())
	require.NotNil(t, f.safety.got.ExpectedVersion())
	assert.Equal(t, int64(7), *f.safety.got.ExpectedVersion())
}

func TestServer_RaiseDispute_PassesExpectedVersion(t *testing.T) {
	// Arrange
	e, f := newTestRouter(t)
	actor, id := kernel.NewUUID(), kernel.NewUUID()

	// Act
	rec := do(e, http.MethodPost, "/api/v1/assignments/"+id.String()+"/disputes",
		token(t, actor, RoleMember), `{"reason":"package arrived wet","expected_version":4}`)

	// Assert
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.True(t, f.raiseDispute.got.AssignmentID().IsEqual(id))
	assert.True(t, f.raiseDispute.got.ActorID().IsEqual(actor))
	assert.Equal(t, "package arrived wet", f.raiseDispute.got.Reason())
	require.NotNil(t, f.raiseDispute.got.ExpectedVersion())
	assert.Equal(t, int64(4), *f.raiseDispute.got.ExpectedVersion())
}

func TestServer_RecordSafetyConfirmation_ItemOutsideEvent(t *testing.T) {
	e, f := newTestRouter(t)

	rec := do(e, http.MethodPost, "/api/v1/assignments/"+kernel.NewUUID().String()+"/safety-checks",
		token(t, kernel.NewUUID(), RoleMember), `{"event":"ASSIGNMENT","item":"signature_obtained","value":true}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, f.safety.calls)
}

func TestServer_ResolveDispute_RequiresModerator(t *testing.T) {
	// Arrange
	e, f := newTestRouter(t)
	path := "/api/v1/disputes/" + kernel.NewUUID().String() + "/resolution"
	body := `{"outcome":"RESOLVE_CANCEL","note":"damaged in transit"}`

	// Act
	member := do(e, http.MethodPost, path, token(t, kernel.NewUUID(), RoleMember), body)
	moderatorID := kernel.NewUUID()
	moderator := do(e, http.MethodPost, path, token(t, moderatorID, RoleModerator), body)

	// Assert
	assert.Equal(t, http.StatusForbidden, member.Code)
	require.Equal(t, http.StatusNoContent, moderator.Code, moderator.Body.String())
	assert.Equal(t, 1, f.resolveDispute.calls)
	assert.Equal(t, dispute.OutcomeResolveCancel, f.resolveDispute.got.Outcome())
	assert.True(t, f.resolveDispute.got.ModeratorID().IsEqual(moderatorID))
}

func TestServer_GatewayCallback_Signature(t *testing.T) {
	// Arrange
	e, f := newTestRouter(t)
	assignmentID := kernel.NewUUID()
	body := `{"id":"evt_1","type":"payment.captured","assignment_id":"` + assignmentID.String() + `","gateway_txn_id":"gw_auth_1"}`

	send := func(signature string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/gateway/callbacks", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.Header.Set("X-Gateway-Signature", signature)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	// Act
	forged := send(SignCallback([]byte("wrong"), []byte(body)))
	genuine := send(SignCallback(testWebhookSecret, []byte(body)))

	// Assert
	assert.Equal(t, http.StatusUnauthorized, forged.Code)
	require.Equal(t, http.StatusNoContent, genuine.Code, genuine.Body.String())
	assert.Equal(t, 1, f.callback.calls)
	assert.Equal(t, commands.CallbackPaymentCaptured, f.callback.got.Kind())
	assert.Equal(t, "evt_1", f.callback.got.CallbackID())
	assert.True(t, f.callback.got.AssignmentID().IsEqual(assignmentID))
}

func TestServer_GetAssignment(t *testing.T) {
	// Arrange
	e, f := newTestRouter(t)
	actor := kernel.NewUUID()
	agreed := kernel.MustMoney(4500, "EUR")
	f.snapshot.resp = queries.GetAssignmentSnapshotQueryResponse{
		ID:                kernel.NewUUID(),
		PackageID:         kernel.NewUUID(),
		TripID:            kernel.NewUUID(),
		Status:            "MATCHED",
		ProposedPrice:     kernel.MustMoney(4500, "EUR"),
		ProposedBy:        "TRAVELER",
		AgreedPrice:       &agreed,
		ConfirmedBySender: true,
		SafetyChecklist:   map[string]map[string]bool{"PICKUP": {"photo_taken": true}},
		PendingOperation:  "NONE",
		Version:           4,
	}

	// Act
	rec := do(e, http.MethodGet, "/api/v1/assignments/"+f.snapshot.resp.ID.String(), token(t, actor, RoleMember), "")

	// Assert
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var got Assignment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "MATCHED", got.Status)
	require.NotNil(t, got.AgreedPrice)
	assert.Equal(t, Money{Amount: 4500, Currency: "EUR"}, *got.AgreedPrice)
	assert.True(t, got.SafetyChecklist["PICKUP"]["photo_taken"])
	assert.Equal(t, int64(4), got.Version)
	assert.True(t, f.snapshot.got.ActorID().IsEqual(actor))
}

func TestServer_GetTripCapacity(t *testing.T) {
	// Arrange
	e, f := newTestRouter(t)
	tripID := kernel.NewUUID()
	f.capacity.resp = queries.GetTripCapacityQueryResponse{
		TripID:         tripID,
		MaxWeight:      10 * kernel.Kilogram,
		AvailableSpace: 7 * kernel.Kilogram,
		Reserved:       3 * kernel.Kilogram,
		Packages: []queries.BoundPackage{{
			PackageID:        kernel.NewUUID(),
			AssignmentID:     kernel.NewUUID(),
			Weight:           3 * kernel.Kilogram,
			PackageStatus:    "MATCHED",
			AssignmentStatus: "MATCHED",
		}},
	}

	// Act
	rec := do(e, http.MethodGet, "/api/v1/trips/"+tripID.String()+"/capacity", token(t, kernel.NewUUID(), RoleMember), "")

	// Assert
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var got TripCapacity
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, int64(7000), got.AvailableSpaceGrams)
	assert.Equal(t, int64(3000), got.ReservedGrams)
	require.Len(t, got.Packages, 1)
	assert.Equal(t, int64(3000), got.Packages[0].WeightGrams)
}
