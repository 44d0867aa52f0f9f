package http

import (
	"errors"
	"time"

	"parcelshare/internal/core/application/usecases/queries"
	"parcelshare/internal/core/domain/model/kernel"
	"parcelshare/internal/core/domain/model/parcel"
	"parcelshare/internal/core/domain/model/trip"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func (m Money) toDomain() (kernel.Money, error) {
	return kernel.NewMoney(m.Amount, m.Currency)
}

func moneyOf(m kernel.Money) Money {
	return Money{Amount: m.Minor(), Currency: m.Currency()}
}

func moneyPtrOf(m *kernel.Money) *Money {
	if m == nil {
		return nil
	}
	out := moneyOf(*m)
	return &out
}

type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

func (a Address) toDomain() (kernel.Address, error) {
	return kernel.NewAddress(a.Street, a.City, a.PostalCode, a.Country)
}

type Dimensions struct {
	Length int `json:"length"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (d Dimensions) toDomain() (kernel.Dimensions, error) {
	return kernel.NewDimensions(d.Length, d.Width, d.Height)
}

type Window struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

func (w Window) toDomain() (kernel.DateWindow, error) {
	return kernel.NewDateWindow(w.From, w.To)
}

type Created struct {
	ID openapi_types.UUID `json:"id"`
}

func createdOf(id kernel.UUID) Created {
	return Created{ID: id.Bytes()}
}

type NewPackage struct {
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Dimensions      Dimensions `json:"dimensions"`
	WeightGrams     int64      `json:"weight_grams"`
	Type            string     `json:"type"`
	DeclaredValue   Money      `json:"declared_value"`
	Pickup          Address    `json:"pickup"`
	Dropoff         Address    `json:"dropoff"`
	Window          Window     `json:"window"`
	OfferedPrice    Money      `json:"offered_price"`
	PaymentMethodID string     `json:"payment_method_id"`
}

func (p NewPackage) toParams(senderID kernel.UUID) (parcel.Params, error) {
	dims, dimsErr := p.Dimensions.toDomain()
	packageType, typeErr := kernel.ParsePackageType(p.Type)
	declared, declaredErr := p.DeclaredValue.toDomain()
	pickup, pickupErr := p.Pickup.toDomain()
	dropoff, dropoffErr := p.Dropoff.toDomain()
	window, windowErr := p.Window.toDomain()
	offered, offeredErr := p.OfferedPrice.toDomain()

	if err := errors.Join(dimsErr, typeErr, declaredErr, pickupErr, dropoffErr, windowErr, offeredErr); err != nil {
		return parcel.Params{}, err
	}

	return parcel.Params{
		SenderID:        senderID,
		Title:           p.Title,
		Description:     p.Description,
		Dimensions:      dims,
		Weight:          kernel.Weight(p.WeightGrams),
		Type:            packageType,
		DeclaredValue:   declared,
		Pickup:          pickup,
		Dropoff:         dropoff,
		Window:          window,
		OfferedPrice:    offered,
		PaymentMethodID: p.PaymentMethodID,
	}, nil
}

type NewTrip struct {
	Origin         Address    `json:"origin"`
	Destination    Address    `json:"destination"`
	Window         Window     `json:"window"`
	MaxWeightGrams int64      `json:"max_weight_grams"`
	MaxDimensions  Dimensions `json:"max_dimensions"`
	Currency       string     `json:"currency"`
	PricePerKg     *int64     `json:"price_per_kg,omitempty"`
	MinPrice       *int64     `json:"min_price,omitempty"`
	MaxPrice       *int64     `json:"max_price,omitempty"`
	AcceptedTypes  []string   `json:"accepted_types"`
}

func (t NewTrip) toParams(travelerID kernel.UUID) (trip.Params, error) {
	origin, originErr := t.Origin.toDomain()
	destination, destinationErr := t.Destination.toDomain()
	window, windowErr := t.Window.toDomain()
	dims, dimsErr := t.MaxDimensions.toDomain()
	perKg, perKgErr := optionalMoney(t.PricePerKg, t.Currency)
	minPrice, minErr := optionalMoney(t.MinPrice, t.Currency)
	maxPrice, maxErr := optionalMoney(t.MaxPrice, t.Currency)

	errList := []error{originErr, destinationErr, windowErr, dimsErr, perKgErr, minErr, maxErr}
	accepted := make([]kernel.PackageType, 0, len(t.AcceptedTypes))
	for _, raw := range t.AcceptedTypes {
		packageType, err := kernel.ParsePackageType(raw)
		errList = append(errList, err)
		accepted = append(accepted, packageType)
	}
	if err := errors.Join(errList...); err != nil {
		return trip.Params{}, err
	}

	return trip.Params{
		TravelerID:    travelerID,
		Origin:        origin,
		Destination:   destination,
		Window:        window,
		MaxWeight:     kernel.Weight(t.MaxWeightGrams),
		MaxDimensions: dims,
		Pricing: trip.Pricing{
			Currency:   t.Currency,
			PricePerKg: perKg,
			MinPrice:   minPrice,
			MaxPrice:   maxPrice,
		},
		AcceptedTypes: accepted,
	}, nil
}

func optionalMoney(minor *int64, currency string) (*kernel.Money, error) {
	if minor == nil {
		return nil, nil
	}
	m, err := kernel.NewMoney(*minor, currency)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

type MatchRequest struct {
	PackageID openapi_types.UUID `json:"package_id"`
	TripID    openapi_types.UUID `json:"trip_id"`
}

type Transition struct {
	ExpectedVersion *int64 `json:"expected_version,omitempty"`
}

type PriceProposal struct {
	Price           Money  `json:"price"`
	Note            string `json:"note"`
	ExpectedVersion *int64 `json:"expected_version,omitempty"`
}

type SafetyCheck struct {
	Event           string `json:"event"`
	Item            string `json:"item"`
	Value           bool   `json:"value"`
	ExpectedVersion *int64 `json:"expected_version,omitempty"`
}

type SafetyStatus struct {
	Status string `json:"status"`
}

type CancelRequest struct {
	Reason          string `json:"reason"`
	ExpectedVersion *int64 `json:"expected_version,omitempty"`
}

type CancelResult struct {
	Outcome string `json:"outcome"`
}

type DisputeRequest struct {
	Reason          string `json:"reason"`
	ExpectedVersion *int64 `json:"expected_version,omitempty"`
}

type Verdict struct {
	Outcome string `json:"outcome"`
	Note    string `json:"note"`
}

type GatewayCallback struct {
	ID           string             `json:"id"`
	Type         string             `json:"type"`
	AssignmentID openapi_types.UUID `json:"assignment_id"`
	GatewayTxnID string             `json:"gateway_txn_id"`
}

type Assignment struct {
	ID                  openapi_types.UUID         `json:"id"`
	PackageID           openapi_types.UUID         `json:"package_id"`
	TripID              openapi_types.UUID         `json:"trip_id"`
	Status              string                     `json:"status"`
	ProposedPrice       Money                      `json:"proposed_price"`
	ProposedBy          string                     `json:"proposed_by"`
	ProposalNote        string                     `json:"proposal_note,omitempty"`
	AgreedPrice         *Money                     `json:"agreed_price,omitempty"`
	ConfirmedBySender   bool                       `json:"confirmed_by_sender"`
	ConfirmedByTraveler bool                       `json:"confirmed_by_traveler"`
	AcceptedBySender    bool                       `json:"accepted_by_sender"`
	AcceptedByTraveler  bool                       `json:"accepted_by_traveler"`
	SafetyChecklist     map[string]map[string]bool `json:"safety_checklist"`
	CancelReason        string                     `json:"cancel_reason,omitempty"`
	PendingOperation    string                     `json:"pending_operation"`
	CancelQueued        bool                       `json:"cancel_queued"`
	Version             int64                      `json:"version"`
	UpdatedAt           time.Time                  `json:"updated_at"`
}

func assignmentOf(r queries.GetAssignmentSnapshotQueryResponse) Assignment {
	return Assignment{
		ID:                  r.ID.Bytes(),
		PackageID:           r.PackageID.Bytes(),
		TripID:              r.TripID.Bytes(),
		Status:              r.Status,
		ProposedPrice:       moneyOf(r.ProposedPrice),
		ProposedBy:          r.ProposedBy,
		ProposalNote:        r.ProposalNote,
		AgreedPrice:         moneyPtrOf(r.AgreedPrice),
		ConfirmedBySender:   r.ConfirmedBySender,
		ConfirmedByTraveler: r.ConfirmedByTraveler,
		AcceptedBySender:    r.AcceptedBySender,
		AcceptedByTraveler:  r.AcceptedByTraveler,
		SafetyChecklist:     r.SafetyChecklist,
		CancelReason:        r.CancelReason,
		PendingOperation:    r.PendingOperation,
		CancelQueued:        r.CancelQueued,
		Version:             r.Version,
		UpdatedAt:           r.UpdatedAt,
	}
}

type Transaction struct {
	ID           openapi_types.UUID `json:"id"`
	Type         string             `json:"type"`
	Status       string             `json:"status"`
	Amount       Money              `json:"amount"`
	PlatformFee  Money              `json:"platform_fee"`
	GatewayFee   Money              `json:"gateway_fee"`
	NetAmount    Money              `json:"net_amount"`
	GatewayTxnID string             `json:"gateway_txn_id,omitempty"`
	Failure      string             `json:"failure,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	ProcessedAt  *time.Time         `json:"processed_at,omitempty"`
}

func transactionsOf(rows []queries.GetAssignmentLedgerQueryResponse) []Transaction {
	out := make([]Transaction, len(rows))
	for i, r := range rows {
		out[i] = Transaction{
			ID:           r.ID.Bytes(),
			Type:         r.Type,
			Status:       r.Status,
			Amount:       moneyOf(r.Amount),
			PlatformFee:  moneyOf(r.PlatformFee),
			GatewayFee:   moneyOf(r.GatewayFee),
			NetAmount:    moneyOf(r.NetAmount),
			GatewayTxnID: r.GatewayTxnID,
			Failure:      r.Failure,
			CreatedAt:    r.CreatedAt,
			ProcessedAt:  r.ProcessedAt,
		}
	}
	return out
}

type BoundPackage struct {
	PackageID        openapi_types.UUID `json:"package_id"`
	AssignmentID     openapi_types.UUID `json:"assignment_id"`
	WeightGrams      int64              `json:"weight_grams"`
	PackageStatus    string             `json:"package_status"`
	AssignmentStatus string             `json:"assignment_status"`
}

type TripCapacity struct {
	TripID              openapi_types.UUID `json:"trip_id"`
	MaxWeightGrams      int64              `json:"max_weight_grams"`
	AvailableSpaceGrams int64              `json:"available_space_grams"`
	ReservedGrams       int64              `json:"reserved_grams"`
	Packages            []BoundPackage     `json:"packages"`
}

func tripCapacityOf(r queries.GetTripCapacityQueryResponse) TripCapacity {
	packages := make([]BoundPackage, len(r.Packages))
	for i, p := range r.Packages {
		packages[i] = BoundPackage{
			PackageID:        p.PackageID.Bytes(),
			AssignmentID:     p.AssignmentID.Bytes(),
			WeightGrams:      p.Weight.Grams(),
			PackageStatus:    p.PackageStatus,
			AssignmentStatus: p.AssignmentStatus,
		}
	}
	return TripCapacity{
		TripID:              r.TripID.Bytes(),
		MaxWeightGrams:      r.MaxWeight.Grams(),
		AvailableSpaceGrams: r.AvailableSpace.Grams(),
		ReservedGrams:       r.Reserved.Grams(),
		Packages:            packages,
	}
}
