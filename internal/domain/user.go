// Package domain holds the small value types shared across feature packages.
package domain

import (
	"encoding/json"
	"errors"
)

type UserRole string

const (
	RoleOwner  UserRole = "owner"
	RoleRenter UserRole = "renter"
	RoleAdmin  UserRole = "admin"
)

func (r UserRole) Valid() bool {
	return r == RoleOwner || r == RoleRenter || r == RoleAdmin
}

// UserSummary is the public face of a user attached to bookings and conversations.
type UserSummary struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	AvatarURL string   `json:"avatar_url,omitempty"`
	Role      UserRole `json:"role"`
}

// UserRef is either an unresolved id or a resolved summary. The zero value is
// an unresolved reference to id 0.
type UserRef struct {
	id      int64
	summary *UserSummary
}

func Unresolved(id int64) UserRef {
	return UserRef{id: id}
}

func Resolved(s UserSummary) UserRef {
	return UserRef{id: s.ID, summary: &s}
}

func (r UserRef) ID() int64 { return r.id }

// Summary returns the resolved data; ok is false for unresolved references.
func (r UserRef) Summary() (UserSummary, bool) {
	if r.summary == nil {
		return UserSummary{}, false
	}
	return *r.summary, true
}

func (r UserRef) IsResolved() bool { return r.summary != nil }

// MarshalJSON renders a resolved ref as the full summary and an unresolved one
// as {"id": n}.
func (r UserRef) MarshalJSON() ([]byte, error) {
	if r.summary != nil {
		return json.Marshal(r.summary)
	}
	return json.Marshal(struct {
		ID int64 `json:"id"`
	}{ID: r.id})
}

func (r *UserRef) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID        int64    `json:"id"`
		Name      *string  `json:"name"`
		AvatarURL string   `json:"avatar_url"`
		Role      UserRole `json:"role"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.ID == 0 {
		return errors.New("user reference without id")
	}
	if raw.Name == nil {
		*r = Unresolved(raw.ID)
		return nil
	}
	*r = Resolved(UserSummary{ID: raw.ID, Name: *raw.Name, AvatarURL: raw.AvatarURL, Role: raw.Role})
	return nil
}
