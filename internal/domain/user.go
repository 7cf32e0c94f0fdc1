// Package domain contains entity without logic, just meta-data
package domain

import "github.com/google/uuid"

type UserID string

// User is one connected client. Its transport handle and current-room
// association live in the registry, not here.
type User struct {
	ID UserID `json:"id"`
}

func NewUser() *User {
	return &User{ID: UserID(uuid.NewString())}
}
