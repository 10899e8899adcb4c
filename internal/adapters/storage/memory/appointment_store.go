package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/PabloGalante/liora-api/internal/domain"
)

type AppointmentStore struct {
	mu    sync.Mutex
	items []domain.Appointment
}

func NewAppointmentStore() *AppointmentStore {
	return &AppointmentStore{}
}

func (s *AppointmentStore) CreateAppointment(_ context.Context, appt *domain.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if appt.ID == "" {
		appt.ID = domain.AppointmentID(uuid.NewString())
	}
	s.items = append(s.items, *appt)
	return nil
}

// List returns a copy of every stored appointment in booking order.
func (s *AppointmentStore) List() []domain.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Appointment, len(s.items))
	copy(out, s.items)
	return out
}
