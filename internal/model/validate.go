package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// User-facing validation messages. The browser UI renders these verbatim.
const (
	MsgNameRequired     = "Не указано имя"
	MsgSurnameRequired  = "Не указана фамилия"
	MsgContactsRequired = "Не все добавленные контакты полностью заполнены"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Normalize trims the fields, guarantees a non-nil contacts slice and
// validates the whole record. It returns the normalized fields or a
// *ValidationError listing every failed field. Pure; no I/O.
//
// For partial updates the caller must merge the input over the existing
// record first (ClientInput.ApplyTo) and normalize the merged whole:
// required fields may be supplied only by the existing record.
func Normalize(f Fields) (Fields, error) {
	f.Name = strings.TrimSpace(f.Name)
	f.Surname = strings.TrimSpace(f.Surname)
	f.LastName = strings.TrimSpace(f.LastName)

	contacts := make([]Contact, len(f.Contacts))
	for i, contact := range f.Contacts {
		contacts[i] = Contact{
			Type:  strings.TrimSpace(contact.Type),
			Value: strings.TrimSpace(contact.Value),
		}
	}
	f.Contacts = contacts

	if err := validate.Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return Fields{}, fmt.Errorf("validating client fields: %w", err)
		}
		return Fields{}, convertValidatorErrors(verrs)
	}

	return f, nil
}

// convertValidatorErrors turns validator errors into the API's ordered
// field-error list. All contact-level failures collapse into a single
// aggregate "contacts" entry.
func convertValidatorErrors(verrs validator.ValidationErrors) *ValidationError {
	var nameBad, surnameBad, contactsBad bool

	for _, fe := range verrs {
		switch fe.StructField() {
		case "Name":
			nameBad = true
		case "Surname":
			surnameBad = true
		default:
			// Nested contact fields (Type, Value).
			contactsBad = true
		}
	}

	result := &ValidationError{}
	if nameBad {
		result.Errors = append(result.Errors, FieldError{Field: "name", Message: MsgNameRequired})
	}
	if surnameBad {
		result.Errors = append(result.Errors, FieldError{Field: "surname", Message: MsgSurnameRequired})
	}
	if contactsBad {
		result.Errors = append(result.Errors, FieldError{Field: "contacts", Message: MsgContactsRequired})
	}
	return result
}
