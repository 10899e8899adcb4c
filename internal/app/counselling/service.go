package counselling

import (
	"context"
	"strings"
	"time"

	"github.com/PabloGalante/liora-api/internal/domain"
	"github.com/PabloGalante/liora-api/internal/observability"
)

// BookingRequest is what the client sends; empty fields get defaults.
type BookingRequest struct {
	Name           string
	Email          string
	CounsellorType string
	Date           string
	Time           string
}

type Service struct {
	store domain.AppointmentStore
	now   func() time.Time
}

func NewService(store domain.AppointmentStore) *Service {
	return &Service{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Book records an appointment request as sent.
func (s *Service) Book(ctx context.Context, userID domain.UserID, req BookingRequest) (*domain.Appointment, error) {
	appt := &domain.Appointment{
		UserID:         userID,
		Name:           orDefault(req.Name, domain.DefaultAppointmentName),
		Email:          strings.TrimSpace(req.Email),
		CounsellorType: orDefault(req.CounsellorType, domain.DefaultCounsellorType),
		Date:           req.Date,
		Time:           req.Time,
		Timestamp:      s.now(),
	}

	if err := s.store.CreateAppointment(ctx, appt); err != nil {
		observability.LoggerFromContext(ctx).Error("failed to book appointment", "error", err)
		return nil, domain.StoreError("book appointment", err)
	}

	observability.LoggerFromContext(ctx).Info("appointment booked",
		"appointment_id", appt.ID,
		"counsellor_type", appt.CounsellorType)
	return appt, nil
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}
