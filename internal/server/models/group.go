package models

import "time"

// Group is a shared workspace joined via invite code. PasswordHash is empty
// for open groups.
type Group struct {
	ID           string    `json:"groupId"`
	Name         string    `json:"name"`
	InviteCode   string    `json:"groupCode"`
	PasswordHash string    `json:"-"`
	Status       string    `json:"-"`
	CreatedByID  string    `json:"-"`
	AuditID      string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// GroupSummary is the per-user listing row; CanRemove is true when the
// requester created the group.
type GroupSummary struct {
	ID         string    `json:"groupId"`
	Name       string    `json:"name"`
	InviteCode string    `json:"groupCode"`
	CreatedAt  time.Time `json:"createdAt"`
	CanRemove  bool      `json:"canRemove"`
}

// Membership links a user to a group. At most one Active row may exist per
// (user, group) pair.
type Membership struct {
	ID        string
	UserID    string
	GroupID   string
	Status    string
	AuditID   string
	CreatedAt time.Time
}
