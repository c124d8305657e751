package events

import (
	"fmt"

	"github.com/dukex/salesflow/pkg/models"
)

// TriggerOf maps a CRM domain event to the workflow trigger it raises and the subject the
// workflows run against.
func TriggerOf(event any) (models.Trigger, models.Subject, error) {
	switch e := event.(type) {
	case *ContactCreated:
		contact := e.Contact

		return models.TriggerContactCreated, models.ContactSubject{Contact: &contact}, nil
	case *ContactLeadStatusChanged:
		contact := e.Contact

		trigger, ok := models.LeadStatusChangedTrigger(contact.LeadStatus)
		if !ok {
			return 0, nil, fmt.Errorf("no trigger for lead status %s", contact.LeadStatus)
		}

		return trigger, models.ContactSubject{Contact: &contact}, nil
	case *TaskCreated:
		task := e.Task

		return models.TriggerTaskCreated, models.TaskSubject{Task: &task}, nil
	case *TaskCompleted:
		task := e.Task

		return models.TriggerTaskCompleted, models.TaskSubject{Task: &task}, nil
	default:
		return 0, nil, fmt.Errorf("event %T does not raise a workflow trigger", event)
	}
}
