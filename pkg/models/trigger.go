package models

import "fmt"

// Trigger is a CRM domain event that workflows react to.
// Values are persisted as integers; JSON and YAML use the names.
type Trigger int

const (
	TriggerContactCreated Trigger = iota + 1
	TriggerContactLeadStatusChangesToNew
	TriggerContactLeadStatusChangesToOpen
	TriggerContactLeadStatusChangesToInProgress
	TriggerContactLeadStatusChangesToOpenDeal
	TriggerContactLeadStatusChangesToUnqualified
	TriggerContactLeadStatusChangesToAttemptedToContact
	TriggerContactLeadStatusChangesToConnected
	TriggerContactLeadStatusChangesToBadTiming
	TriggerTaskCreated
	TriggerTaskCompleted
)

var triggerNames = map[Trigger]string{
	TriggerContactCreated:                               "ContactCreated",
	TriggerContactLeadStatusChangesToNew:                "ContactLeadStatusChangesToNew",
	TriggerContactLeadStatusChangesToOpen:               "ContactLeadStatusChangesToOpen",
	TriggerContactLeadStatusChangesToInProgress:         "ContactLeadStatusChangesToInProgress",
	TriggerContactLeadStatusChangesToOpenDeal:           "ContactLeadStatusChangesToOpenDeal",
	TriggerContactLeadStatusChangesToUnqualified:        "ContactLeadStatusChangesToUnqualified",
	TriggerContactLeadStatusChangesToAttemptedToContact: "ContactLeadStatusChangesToAttemptedToContact",
	TriggerContactLeadStatusChangesToConnected:          "ContactLeadStatusChangesToConnected",
	TriggerContactLeadStatusChangesToBadTiming:          "ContactLeadStatusChangesToBadTiming",
	TriggerTaskCreated:                                  "TaskCreated",
	TriggerTaskCompleted:                                "TaskCompleted",
}

var leadStatusTriggers = map[LeadStatus]Trigger{
	LeadStatusNew:                TriggerContactLeadStatusChangesToNew,
	LeadStatusOpen:               TriggerContactLeadStatusChangesToOpen,
	LeadStatusInProgress:         TriggerContactLeadStatusChangesToInProgress,
	LeadStatusOpenDeal:           TriggerContactLeadStatusChangesToOpenDeal,
	LeadStatusUnqualified:        TriggerContactLeadStatusChangesToUnqualified,
	LeadStatusAttemptedToContact: TriggerContactLeadStatusChangesToAttemptedToContact,
	LeadStatusConnected:          TriggerContactLeadStatusChangesToConnected,
	LeadStatusBadTiming:          TriggerContactLeadStatusChangesToBadTiming,
}

// Triggers returns every known trigger in declaration order.
func Triggers() []Trigger {
	triggers := make([]Trigger, 0, len(triggerNames))
	for t := TriggerContactCreated; t <= TriggerTaskCompleted; t++ {
		triggers = append(triggers, t)
	}

	return triggers
}

// LeadStatusChangedTrigger returns the trigger raised when a contact moves to status.
func LeadStatusChangedTrigger(status LeadStatus) (Trigger, bool) {
	t, ok := leadStatusTriggers[status]

	return t, ok
}

func (t Trigger) IsValid() bool {
	_, ok := triggerNames[t]

	return ok
}

func (t Trigger) String() string {
	if name, ok := triggerNames[t]; ok {
		return name
	}

	return fmt.Sprintf("Trigger(%d)", int(t))
}

// ParseTrigger resolves a trigger by its name.
func ParseTrigger(name string) (Trigger, error) {
	for t, n := range triggerNames {
		if n == name {
			return t, nil
		}
	}

	return 0, fmt.Errorf("unknown trigger: %q", name)
}

func (t Trigger) MarshalText() ([]byte, error) {
	if !t.IsValid() {
		return nil, fmt.Errorf("unknown trigger: %d", int(t))
	}

	return []byte(t.String()), nil
}

func (t *Trigger) UnmarshalText(text []byte) error {
	parsed, err := ParseTrigger(string(text))
	if err != nil {
		return err
	}

	*t = parsed

	return nil
}
