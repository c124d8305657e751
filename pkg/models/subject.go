package models

// Subject is the entity whose change raised a trigger. The set of variants is closed:
// ContactSubject and TaskSubject.
type Subject interface {
	isSubject()
}

// ContactSubject carries the post-commit state of a contact.
type ContactSubject struct {
	Contact *Contact
}

// TaskSubject carries the post-commit state of a task.
type TaskSubject struct {
	Task *Task
}

func (ContactSubject) isSubject() {}
func (TaskSubject) isSubject()    {}

// TenantOf returns the tenant owning the subject.
func TenantOf(subject Subject) (int64, bool) {
	switch s := subject.(type) {
	case ContactSubject:
		if s.Contact == nil {
			return 0, false
		}

		return s.Contact.TenantID, true
	case TaskSubject:
		if s.Task == nil {
			return 0, false
		}

		return s.Task.TenantID, true
	default:
		return 0, false
	}
}

// ContactIDOf returns the contact a subject refers to: the contact itself, or the
// contact associated with a task.
func ContactIDOf(subject Subject) (int64, bool) {
	switch s := subject.(type) {
	case ContactSubject:
		if s.Contact == nil {
			return 0, false
		}

		return s.Contact.ID, true
	case TaskSubject:
		if s.Task == nil || s.Task.ContactID == nil {
			return 0, false
		}

		return *s.Task.ContactID, true
	default:
		return 0, false
	}
}

// SubjectKind names the subject variant for logging.
func SubjectKind(subject Subject) string {
	switch subject.(type) {
	case ContactSubject:
		return "contact"
	case TaskSubject:
		return "task"
	default:
		return "unknown"
	}
}
