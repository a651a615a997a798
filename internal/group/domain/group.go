package domain

import "time"

// Group is a community a user owns. A user has zero or one group from the
// routing decision's point of view; when more exist, the earliest-created wins.
type Group struct {
	ID        string
	UserID    string
	Name      string
	CreatedAt time.Time
}

// Channel belongs to a group. A group may legitimately have zero channels.
type Channel struct {
	ID        string
	GroupID   string
	Name      string
	CreatedAt time.Time
}
