// Package domain contains core domain types for the campus assistant.
package domain

import "strings"

// UserProfile is the signed-in student as supplied by the portal.
type UserProfile struct {
	ID        string `json:"id" yaml:"id"`
	StudentID string `json:"studentId,omitempty" yaml:"studentId"`
	Name      string `json:"name" yaml:"name"`
	Email     string `json:"email" yaml:"email"`
	Program   string `json:"program,omitempty" yaml:"program"`
}

// FirstName returns the first word of the profile name, or "there" when unknown.
func (u UserProfile) FirstName() string {
	fields := strings.Fields(u.Name)
	if len(fields) == 0 {
		return "there"
	}
	return fields[0]
}

// Identity is the student identity stamped on every ticket.
type Identity struct {
	StudentID    string `json:"studentId"`
	StudentName  string `json:"studentName"`
	StudentEmail string `json:"studentEmail"`
}

// Identity derives the ticket identity from the profile.
// The portal student number wins over the account id when both are present.
func (u UserProfile) Identity() Identity {
	id := u.StudentID
	if id == "" {
		id = u.ID
	}
	return Identity{
		StudentID:    id,
		StudentName:  u.Name,
		StudentEmail: u.Email,
	}
}
