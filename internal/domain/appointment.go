package domain

type AppointmentID string

const (
	DefaultAppointmentName = "Anonymous"
	DefaultCounsellorType  = "on-campus"
)

// Appointment is a counselling booking request. Date and Time are kept as
// the client sent them.
type Appointment struct {
	ID             AppointmentID
	UserID         UserID
	Name           string
	Email          string
	CounsellorType string
	Date           string
	Time           string
	Timestamp      Timestamp
}
