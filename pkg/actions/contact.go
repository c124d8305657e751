// Package actions holds the helpers shared by the workflow action executors.
package actions

import (
	"context"
	"errors"

	"github.com/dukex/salesflow/pkg/models"
	"github.com/dukex/salesflow/pkg/persistence"
)

// ErrNoSubjectContact is returned when the triggering entity carries no contact.
var ErrNoSubjectContact = errors.New("triggering entity has no associated contact")

// LoadContact reads a contact by id. A missing contact is reported through the boolean,
// not as an error.
func LoadContact(ctx context.Context, contacts persistence.ContactRepository, id int64) (*models.Contact, bool, error) {
	contact, err := contacts.GetByID(ctx, id)
	if err != nil {
		if persistence.IsContactNotFound(err) {
			return nil, false, nil
		}

		return nil, false, err
	}

	return contact, true, nil
}

// ResolveContact returns the full contact a subject refers to. A contact subject is used
// as is; a task subject has its associated contact loaded.
//
// It returns ErrNoSubjectContact when the subject carries no contact, and an error matching
// persistence.ErrContactNotFound when the associated contact no longer exists.
func ResolveContact(ctx context.Context, subject models.Subject, contacts persistence.ContactRepository) (*models.Contact, error) {
	if s, ok := subject.(models.ContactSubject); ok && s.Contact != nil {
		return s.Contact, nil
	}

	contactID, ok := models.ContactIDOf(subject)
	if !ok {
		return nil, ErrNoSubjectContact
	}

	return contacts.GetByID(ctx, contactID)
}
