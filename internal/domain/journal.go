package domain

// JournalEntryID identifies a journal entry
type JournalEntryID string

// JournalEntry is a private free-text note.
type JournalEntry struct {
	ID        JournalEntryID
	UserID    UserID
	Text      string
	Timestamp Timestamp
}
