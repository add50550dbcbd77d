package ports

import "context"

// NotificationKind identifies the event a notification describes.
type NotificationKind string

const (
	KindIssueAssigned      NotificationKind = "issue_assigned"
	KindIssueStatusChanged NotificationKind = "issue_status_changed"
	KindIssueOverdue       NotificationKind = "issue_overdue"
	KindSprintStarted      NotificationKind = "sprint_started"
	KindSprintCompleted    NotificationKind = "sprint_completed"
	KindSprintEnding       NotificationKind = "sprint_ending"
)

// Notifier is the outbound port to the external notification dispatcher.
// Delivery, retries, and email/push fan-out are the dispatcher's concern.
// Callers treat a returned error as log-and-swallow: a failed notification
// never rolls back a committed workflow mutation.
type Notifier interface {
	Notify(ctx context.Context, userID int64, kind NotificationKind, payload map[string]any) error
}
