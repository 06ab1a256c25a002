// Package model defines data structures used throughout the application.
package model

import (
	"encoding/json"
	"strings"
	"time"
)

// Contact is a single communication channel attached to a Client.
// Type is a free-form label (phone, email, social network name);
// no enum is enforced on the server side.
type Contact struct {
	Type  string `json:"type" validate:"required"`
	Value string `json:"value" validate:"required"`
}

// Client represents one contact-management record.
type Client struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Surname   string    `json:"surname"`
	LastName  string    `json:"lastName"`
	Contacts  []Contact `json:"contacts"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Clone returns a deep copy of the client. The contacts slice is copied
// so callers can mutate the result without affecting the original.
func (c *Client) Clone() Client {
	clone := *c
	if c.Contacts != nil {
		clone.Contacts = make([]Contact, len(c.Contacts))
		copy(clone.Contacts, c.Contacts)
	}
	return clone
}

// Fields returns the mutable fields of the client, suitable for merging
// a partial update over.
func (c *Client) Fields() Fields {
	return Fields{
		Name:     c.Name,
		Surname:  c.Surname,
		LastName: c.LastName,
		Contacts: append([]Contact(nil), c.Contacts...),
	}
}

// ApplyFields overwrites the mutable fields of the client. ID and
// timestamps are left untouched.
func (c *Client) ApplyFields(f Fields) {
	c.Name = f.Name
	c.Surname = f.Surname
	c.LastName = f.LastName
	c.Contacts = f.Contacts
}

// Fields holds the client fields a caller is allowed to set. The Store
// owns ID and timestamps; they never appear here.
type Fields struct {
	Name     string    `validate:"required"`
	Surname  string    `validate:"required"`
	LastName string
	Contacts []Contact `validate:"dive"`
}

// OptionalString decodes a JSON scalar the permissive way the API has
// always accepted it: strings are taken as-is, numbers keep their literal
// text, true becomes "true", and everything else (null, false, objects,
// arrays) collapses to the empty string. Validation then treats the empty
// string the same as a missing field.
type OptionalString string

// UnmarshalJSON implements json.Unmarshaler.
func (s *OptionalString) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))

	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = OptionalString(str)
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(data, &num); err == nil {
		*s = OptionalString(num.String())
		return nil
	}

	if trimmed == "true" {
		*s = "true"
		return nil
	}

	*s = ""
	return nil
}

// ContactInput is one raw contact entry from a request body.
type ContactInput struct {
	Type  OptionalString `json:"type"`
	Value OptionalString `json:"value"`
}

// ContactInputList decodes the raw contacts value. Anything that is not a
// JSON array collapses to an empty (but present) list, matching the
// long-standing behavior of the API.
type ContactInputList []ContactInput

// UnmarshalJSON implements json.Unmarshaler.
func (l *ContactInputList) UnmarshalJSON(data []byte) error {
	var items []ContactInput
	if err := json.Unmarshal(data, &items); err != nil {
		*l = ContactInputList{}
		return nil
	}
	if items == nil {
		items = []ContactInput{}
	}
	*l = items
	return nil
}

// Contacts converts the raw entries into Contact values.
func (l ContactInputList) Contacts() []Contact {
	contacts := make([]Contact, len(l))
	for i, in := range l {
		contacts[i] = Contact{
			Type:  string(in.Type),
			Value: string(in.Value),
		}
	}
	return contacts
}

// ClientInput is the raw request body for create and update operations.
// Pointer fields distinguish "omitted" from "present but empty" so a
// partial update can leave untouched fields alone. A field set to JSON
// null decodes to a nil pointer and is therefore treated as omitted;
// clearing a field requires an explicit empty string.
type ClientInput struct {
	Name     *OptionalString   `json:"name"`
	Surname  *OptionalString   `json:"surname"`
	LastName *OptionalString   `json:"lastName"`
	Contacts *ContactInputList `json:"contacts"`
}

// ApplyTo merges the present fields of the input over base and returns
// the result. Omitted fields keep their base values; a present contacts
// array replaces the base contacts wholesale.
func (in ClientInput) ApplyTo(base Fields) Fields {
	if in.Name != nil {
		base.Name = string(*in.Name)
	}
	if in.Surname != nil {
		base.Surname = string(*in.Surname)
	}
	if in.LastName != nil {
		base.LastName = string(*in.LastName)
	}
	if in.Contacts != nil {
		base.Contacts = in.Contacts.Contacts()
	}
	return base
}

// FieldError describes a single field-level validation failure. Message
// is user-facing text rendered by the UI as-is.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries the ordered list of field errors for an input
// that failed validation. It maps to HTTP 422.
type ValidationError struct {
	Errors []FieldError
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	fields := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		fields[i] = fe.Field
	}
	return "validation failed: " + strings.Join(fields, ", ")
}

// ValidationFailureResponse is the 422 response body.
type ValidationFailureResponse struct {
	Errors []FieldError `json:"errors"`
}

// MessageResponse is the body of error responses that carry a single
// human-readable message (404, 400, 500).
type MessageResponse struct {
	Message string `json:"message"`
}

// Client change event names.
const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
)

// ClientEvent is a change notification sent to subscribed UI clients.
type ClientEvent struct {
	Event     string    `json:"event"`
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewClientEvent creates a change event stamped with the current time.
func NewClientEvent(event, id string) ClientEvent {
	return ClientEvent{
		Event:     event,
		ID:        id,
		Timestamp: time.Now().UTC(),
	}
}
