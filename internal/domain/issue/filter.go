package issue

// Filter holds optional filter criteria for listing issues.
// Zero-value fields mean "no filter" for that dimension.
type Filter struct {
	ProjectID  *int64
	SprintID   *int64
	StatusID   *int64
	AssigneeID *int64
	Priority   Priority

	// Backlog restricts results to issues with no sprint assigned.
	// Mutually exclusive with SprintID.
	Backlog bool
}
