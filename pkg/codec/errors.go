package codec

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dukex/salesflow/pkg/models"
)

var (
	// ErrEmptyParameters indicates an action was persisted without a parameters payload.
	ErrEmptyParameters = errors.New("parameters payload is empty")

	// ErrUnsupportedSchemaVersion indicates the payload was written by a newer parameter schema.
	ErrUnsupportedSchemaVersion = errors.New("unsupported parameters schema version")

	// ErrInvalidParameters indicates the payload does not satisfy the parameter schema.
	ErrInvalidParameters = errors.New("invalid parameters")
)

// DecodeError reports why a parameters payload could not be decoded for an action kind.
type DecodeError struct {
	Kind    models.ActionKind
	Details []string
	Err     error
}

func (e *DecodeError) Error() string {
	if len(e.Details) == 0 {
		return fmt.Sprintf("failed to decode %s parameters: %v", e.Kind, e.Err)
	}

	return fmt.Sprintf("failed to decode %s parameters: %v: %s", e.Kind, e.Err, strings.Join(e.Details, "; "))
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsDecodeError reports whether err was caused by an undecodable parameters payload.
func IsDecodeError(err error) bool {
	var decodeErr *DecodeError

	return errors.As(err, &decodeErr)
}
