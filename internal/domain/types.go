package domain

import "time"

type UserID string

// GuestUserID is used when a request carries no identity header.
const GuestUserID UserID = "guest"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Timestamp = time.Time
