package memory

import "github.com/PabloGalante/liora-api/internal/domain"

// NewStores returns a fresh set of in-memory stores.
func NewStores() domain.Stores {
	return domain.Stores{
		Conversations: NewConversationStore(),
		Screenings:    NewScreeningStore(),
		Community:     NewCommunityStore(),
		Journal:       NewJournalStore(),
		Appointments:  NewAppointmentStore(),
	}
}
