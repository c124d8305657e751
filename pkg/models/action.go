package models

import "fmt"

// ActionKind identifies the executor responsible for a workflow action.
type ActionKind int

const (
	ActionKindCreateTask ActionKind = iota + 1
	ActionKindSendEmail
	ActionKindChangeLeadStatus
	ActionKindChangeLifeCycleStage
)

var actionKindNames = map[ActionKind]string{
	ActionKindCreateTask:           "CreateTask",
	ActionKindSendEmail:            "SendEmail",
	ActionKindChangeLeadStatus:     "ChangeLeadStatus",
	ActionKindChangeLifeCycleStage: "ChangeLifeCycleStage",
}

func (k ActionKind) IsValid() bool {
	_, ok := actionKindNames[k]

	return ok
}

func (k ActionKind) String() string {
	if name, ok := actionKindNames[k]; ok {
		return name
	}

	return fmt.Sprintf("ActionKind(%d)", int(k))
}

// ParseActionKind resolves an action kind by its name.
func ParseActionKind(name string) (ActionKind, error) {
	for k, n := range actionKindNames {
		if n == name {
			return k, nil
		}
	}

	return 0, fmt.Errorf("unknown action kind: %q", name)
}

func (k ActionKind) MarshalText() ([]byte, error) {
	if !k.IsValid() {
		return nil, fmt.Errorf("unknown action kind: %d", int(k))
	}

	return []byte(k.String()), nil
}

func (k *ActionKind) UnmarshalText(text []byte) error {
	parsed, err := ParseActionKind(string(text))
	if err != nil {
		return err
	}

	*k = parsed

	return nil
}
