package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// LeadStatus is the sales qualification state of a contact.
type LeadStatus int

const (
	LeadStatusNew LeadStatus = iota + 1
	LeadStatusOpen
	LeadStatusInProgress
	LeadStatusOpenDeal
	LeadStatusUnqualified
	LeadStatusAttemptedToContact
	LeadStatusConnected
	LeadStatusBadTiming
)

var leadStatusNames = map[LeadStatus]string{
	LeadStatusNew:                "New",
	LeadStatusOpen:               "Open",
	LeadStatusInProgress:         "InProgress",
	LeadStatusOpenDeal:           "OpenDeal",
	LeadStatusUnqualified:        "Unqualified",
	LeadStatusAttemptedToContact: "AttemptedToContact",
	LeadStatusConnected:          "Connected",
	LeadStatusBadTiming:          "BadTiming",
}

func (s LeadStatus) IsValid() bool {
	_, ok := leadStatusNames[s]

	return ok
}

func (s LeadStatus) String() string {
	if name, ok := leadStatusNames[s]; ok {
		return name
	}

	return fmt.Sprintf("LeadStatus(%d)", int(s))
}

// ParseLeadStatus resolves a lead status by its name.
func ParseLeadStatus(name string) (LeadStatus, error) {
	for s, n := range leadStatusNames {
		if n == name {
			return s, nil
		}
	}

	return 0, fmt.Errorf("unknown lead status: %q", name)
}

func (s LeadStatus) MarshalJSON() ([]byte, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("unknown lead status: %d", int(s))
	}

	return json.Marshal(s.String())
}

// UnmarshalJSON accepts either the status name or its numeric value,
// since parameter payloads written by older clients carry numbers.
func (s *LeadStatus) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}

		parsed, err := ParseLeadStatus(name)
		if err != nil {
			return err
		}

		*s = parsed

		return nil
	}

	var value int
	if err := json.Unmarshal(data, &value); err != nil {
		return fmt.Errorf("lead status must be a name or a number: %w", err)
	}

	if !LeadStatus(value).IsValid() {
		return fmt.Errorf("unknown lead status: %d", value)
	}

	*s = LeadStatus(value)

	return nil
}
