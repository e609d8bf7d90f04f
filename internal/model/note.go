package model

// DefaultNote is the body of the note seeded for every new account.
const DefaultNote = "Default note: this is your first note. Edit or delete it."

// Note represents a row of the `notes` table.  A note belongs to exactly
// one email; there is no sharing.
type Note struct {
	ID    uint64 // notes.id
	Email string // notes.email (owner)
	Body  string // notes.notes
}
