package domain

// ConversationTurn is one message in a user's conversation log.
// Turns are written once and never updated.
type ConversationTurn struct {
	UserID    UserID
	Role      Role
	Message   string
	Timestamp Timestamp
}

// WindowRole is the role vocabulary the generator understands.
type WindowRole string

const (
	WindowRoleUser  WindowRole = "user"
	WindowRoleModel WindowRole = "model"
)

// WindowTurn is a turn as handed to the generator.
type WindowTurn struct {
	Role WindowRole
	Text string
}
