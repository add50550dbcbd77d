// Package project defines the Project entity. Projects are provisioned by an
// external flow; the workflow core only reads them and uses the project key
// as the prefix for issue keys.
package project

import (
	"time"
)

// Status represents the administrative state of a project.
type Status string

const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
)

// Project represents a container for sprints and issues. The Key is short,
// unique, and immutable once issues reference it (e.g. "HRM" for issue keys
// "HRM-1", "HRM-2", ...).
type Project struct {
	ID        int64
	Key       string
	Name      string
	Status    Status
	OwnerID   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}
