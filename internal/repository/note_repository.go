package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/secret-notes/internal/model"
)

// NoteRepo reads and writes the `notes` table.  Every mutation filters on
// the owner's email so a user can only touch their own notes.
type NoteRepo struct {
	db *sql.DB
}

func NewNoteRepo(db *sql.DB) *NoteRepo {
	return &NoteRepo{db: db}
}

// ListByEmail returns the notes owned by email in insertion order.
func (r *NoteRepo) ListByEmail(ctx context.Context, email string) ([]model.Note, error) {
	const q = `SELECT id, email, notes FROM notes WHERE email = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, NormalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	var out []model.Note
	for rows.Next() {
		var n model.Note
		if err := rows.Scan(&n.ID, &n.Email, &n.Body); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return out, nil
}

// Create inserts a note owned by email.
func (r *NoteRepo) Create(ctx context.Context, email, body string) (model.Note, error) {
	email = NormalizeEmail(email)
	res, err := r.db.ExecContext(ctx, `INSERT INTO notes (email, notes) VALUES (?, ?)`, email, body)
	if err != nil {
		return model.Note{}, fmt.Errorf("insert note: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Note{}, fmt.Errorf("insert note id: %w", err)
	}
	return model.Note{ID: uint64(id), Email: email, Body: body}, nil
}

// Update replaces the body of a note owned by email.  It returns
// ErrNoteNotFound when no row matches (missing or not owned).
func (r *NoteRepo) Update(ctx context.Context, id uint64, email, body string) error {
	const q = `UPDATE notes SET notes = ? WHERE id = ? AND email = ?`
	res, err := r.db.ExecContext(ctx, q, body, id, NormalizeEmail(email))
	if err != nil {
		return fmt.Errorf("update note: %w", err)
	}
	return affectedOne(res)
}

// Delete removes a note owned by email, with the same ErrNoteNotFound
// semantics as Update.
func (r *NoteRepo) Delete(ctx context.Context, id uint64, email string) error {
	const q = `DELETE FROM notes WHERE id = ? AND email = ?`
	res, err := r.db.ExecContext(ctx, q, id, NormalizeEmail(email))
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	return affectedOne(res)
}

func affectedOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNoteNotFound
	}
	return nil
}
