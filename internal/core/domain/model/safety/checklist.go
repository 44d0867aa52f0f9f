package safety

import (
	"fmt"

	"parcelshare/internal/pkg/errs"
)

// Event is the handover step a checklist belongs to.
type Event int

const (
	EventUnknown Event = iota
	EventAssignment
	EventPickup
	EventDelivery

	eventCount
)

// Item is a single safety check.
type Item int

const (
	ItemUnknown Item = iota
	ItemIdentityVerified
	ItemPackageConditionOK
	ItemLocationConfirmed
	ItemPhotoTaken
	ItemSignatureObtained

	itemCount
)

// Status is the completion level of one event's checklist.
type Status int

const (
	StatusIncomplete Status = iota
	StatusPartial
	StatusComplete
)

var (
	eventNames = [eventCount]string{"UNKNOWN", "ASSIGNMENT", "PICKUP", "DELIVERY"}
	itemNames  = [itemCount]string{
		"unknown",
		"identity_verified",
		"package_condition_ok",
		"location_confirmed",
		"photo_taken",
		"signature_obtained",
	}
	statusNames = [...]string{"incomplete", "partial", "complete"}

	requiredItems = [eventCount][]Item{
		EventAssignment: {ItemIdentityVerified, ItemPackageConditionOK},
		EventPickup:     {ItemIdentityVerified, ItemPackageConditionOK, ItemLocationConfirmed, ItemPhotoTaken},
		EventDelivery: {
			ItemIdentityVerified, ItemPackageConditionOK, ItemLocationConfirmed, ItemPhotoTaken, ItemSignatureObtained,
		},
	}
)

// Events lists the recordable events in handover order.
func Events() []Event {
	return []Event{EventAssignment, EventPickup, EventDelivery}
}

// ParseEvent accepts ASSIGNMENT, PICKUP or DELIVERY.
func ParseEvent(s string) (Event, error) {
	for e := EventAssignment; e < eventCount; e++ {
		if eventNames[e] == s {
			return e, nil
		}
	}
	return EventUnknown, errs.NewValueIsInvalidErrorWithCause("checklist event", fmt.Errorf("%q is not a known event", s))
}

// Validate rejects EventUnknown and out of range values.
func (e Event) Validate() error {
	if e <= EventUnknown || e >= eventCount {
		return errs.NewValueIsInvalidErrorWithCause("checklist event", fmt.Errorf("%d is not a known event", e))
	}
	return nil
}

func (e Event) String() string {
	if e < 0 || e >= eventCount {
		return eventNames[EventUnknown]
	}
	return eventNames[e]
}

// RequiredItems returns the items that make up the event's checklist.
func (e Event) RequiredItems() []Item {
	if e.Validate() != nil {
		return nil
	}
	return append([]Item(nil), requiredItems[e]...)
}

// Has reports whether item belongs to the event's checklist.
func (e Event) Has(item Item) bool {
	if e.Validate() != nil {
		return false
	}
	for _, it := range requiredItems[e] {
		if it == item {
			return true
		}
	}
	return false
}

// ParseItem accepts the snake_case item names, e.g. "photo_taken".
func ParseItem(s string) (Item, error) {
	for i := ItemIdentityVerified; i < itemCount; i++ {
		if itemNames[i] == s {
			return i, nil
		}
	}
	return ItemUnknown, errs.NewValueIsInvalidErrorWithCause("checklist item", fmt.Errorf("%q is not a known item", s))
}

func (i Item) String() string {
	if i < 0 || i >= itemCount {
		return itemNames[ItemUnknown]
	}
	return itemNames[i]
}

// ParseStatus reverses Status.String; an unknown name yields StatusIncomplete
// and an error.
func ParseStatus(s string) (Status, error) {
	for i, name := range statusNames {
		if name == s {
			return Status(i), nil
		}
	}
	return StatusIncomplete, errs.NewValueIsInvalidErrorWithCause("checklist status", fmt.Errorf("%q is not a known status", s))
}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return statusNames[StatusIncomplete]
	}
	return statusNames[s]
}

// Checklist holds every item of every event. It is a value; Record returns
// an updated copy.
type Checklist struct {
	marks [eventCount][itemCount]bool
}

// Recording describes what a Record call changed.
type Recording struct {
	Event      Event
	Item       Item
	Previous   bool
	Value      bool
	Status     Status
	WasStatus  Status
	Correction bool
}

// BecameComplete reports whether the recording completed the event's checklist.
func (r Recording) BecameComplete() bool {
	return r.WasStatus != StatusComplete && r.Status == StatusComplete
}

// Record sets one item. Items outside the event's set are rejected.
func (c Checklist) Record(event Event, item Item, value bool) (Checklist, Recording, error) {
	if err := event.Validate(); err != nil {
		return c, Recording{}, err
	}
	if !event.Has(item) {
		return c, Recording{}, errs.NewValueIsInvalidErrorWithCause("checklist item",
			fmt.Errorf("%s is not part of the %s checklist", item, event))
	}

	rec := Recording{
		Event:     event,
		Item:      item,
		Previous:  c.marks[event][item],
		Value:     value,
		WasStatus: c.Status(event),
	}
	rec.Correction = rec.Previous && !value

	c.marks[event][item] = value
	rec.Status = c.Status(event)

	return c, rec, nil
}

// Value returns the recorded value of one item.
func (c Checklist) Value(event Event, item Item) bool {
	if event.Validate() != nil || item <= ItemUnknown || item >= itemCount {
		return false
	}
	return c.marks[event][item]
}

// Status is incomplete below half of the required items, partial from half
// up to all, and complete when every required item is true.
func (c Checklist) Status(event Event) Status {
	required := event.RequiredItems()
	if len(required) == 0 {
		return StatusIncomplete
	}

	done := 0
	for _, item := range required {
		if c.marks[event][item] {
			done++
		}
	}

	switch {
	case done == len(required):
		return StatusComplete
	case 2*done >= len(required):
		return StatusPartial
	default:
		return StatusIncomplete
	}
}

// Missing lists required items that are not yet true.
func (c Checklist) Missing(event Event) []Item {
	var missing []Item
	for _, item := range event.RequiredItems() {
		if !c.marks[event][item] {
			missing = append(missing, item)
		}
	}
	return missing
}

// Require returns a ChecklistIncompleteError unless the event is complete.
func (c Checklist) Require(event Event) error {
	status := c.Status(event)
	if status == StatusComplete {
		return nil
	}

	missing := c.Missing(event)
	names := make([]string, 0, len(missing))
	for _, item := range missing {
		names = append(names, item.String())
	}
	return errs.NewChecklistIncompleteError(event.String(), status.String(), names)
}

// Marks exports the checklist as event -> item -> value for persistence and
// read models. Only items of each event's set are included.
func (c Checklist) Marks() map[string]map[string]bool {
	out := make(map[string]map[string]bool, len(Events()))
	for _, event := range Events() {
		items := make(map[string]bool, len(requiredItems[event]))
		for _, item := range requiredItems[event] {
			items[item.String()] = c.marks[event][item]
		}
		out[event.String()] = items
	}
	return out
}

// RestoreChecklist is the inverse of Marks. Unknown keys are rejected.
func RestoreChecklist(marks map[string]map[string]bool) (Checklist, error) {
	var c Checklist
	for eventName, items := range marks {
		event, err := ParseEvent(eventName)
		if err != nil {
			return Checklist{}, err
		}
		for itemName, value := range items {
			item, err := ParseItem(itemName)
			if err != nil {
				return Checklist{}, err
			}
			if c, _, err = c.Record(event, item, value); err != nil {
				return Checklist{}, err
			}
		}
	}
	return c, nil
}
