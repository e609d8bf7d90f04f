package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoteRepoListByEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewNoteRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, notes FROM notes WHERE email = ? ORDER BY id")).
		WithArgs("a@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "notes"}).
			AddRow(1, "a@x.com", "first").
			AddRow(2, "a@x.com", "second"))

	notes, err := repo.ListByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "first", notes[0].Body)
	assert.Equal(t, uint64(2), notes[1].ID)
}

func TestNoteRepoCreate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewNoteRepo(db)

	mock.ExpectExec("INSERT INTO notes").
		WithArgs("a@x.com", "buy milk").
		WillReturnResult(sqlmock.NewResult(11, 1))

	n, err := repo.Create(context.Background(), "a@x.com", "buy milk")
	require.NoError(t, err)
	assert.Equal(t, uint64(11), n.ID)
}

func TestNoteRepoUpdateScopedToOwner(t *testing.T) {
	db, mock := newMock(t)
	repo := NewNoteRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE notes SET notes = ? WHERE id = ? AND email = ?")).
		WithArgs("new", uint64(5), "a@x.com").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Update(context.Background(), 5, "a@x.com", "new"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNoteRepoUpdateOtherOwnersNote(t *testing.T) {
	db, mock := newMock(t)
	repo := NewNoteRepo(db)

	mock.ExpectExec("UPDATE notes").
		WithArgs("new", uint64(5), "mallory@x.com").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), 5, "mallory@x.com", "new")
	assert.ErrorIs(t, err, ErrNoteNotFound)
}

func TestNoteRepoDelete(t *testing.T) {
	db, mock := newMock(t)
	repo := NewNoteRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM notes WHERE id = ? AND email = ?")).
		WithArgs(uint64(5), "a@x.com").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM notes").
		WithArgs(uint64(5), "a@x.com").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), 5, "a@x.com"))
	assert.ErrorIs(t, repo.Delete(context.Background(), 5, "a@x.com"), ErrNoteNotFound)
}
