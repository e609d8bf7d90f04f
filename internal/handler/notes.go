package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/secret-notes/internal/logger"
	"github.com/iliyamo/secret-notes/internal/model"
	"github.com/iliyamo/secret-notes/internal/repository"
	"github.com/iliyamo/secret-notes/internal/session"
)

// NoteStore is implemented by repository.NoteRepo.
type NoteStore interface {
	ListByEmail(ctx context.Context, email string) ([]model.Note, error)
	Create(ctx context.Context, email, body string) (model.Note, error)
	Update(ctx context.Context, id uint64, email, body string) error
	Delete(ctx context.Context, id uint64, email string) error
}

// NotesHandler serves the notes pages.  Every route must sit behind
// RequireAuth; the owner is always the session user, never a form field.
type NotesHandler struct {
	Notes NoteStore
}

func NewNotesHandler(n NoteStore) *NotesHandler {
	return &NotesHandler{Notes: n}
}

type notesPage struct {
	Email string
	Notes []model.Note
	Error string
}

// currentEmail returns the session user's email.  RequireAuth guarantees a
// user; a missing one means the route was wired without it.
func currentEmail(c echo.Context) (string, error) {
	u, ok := session.Current(c)
	if !ok {
		return "", echo.ErrUnauthorized
	}
	return u.Email, nil
}

// List handles GET /notes.
func (h *NotesHandler) List(c echo.Context) error {
	email, err := currentEmail(c)
	if err != nil {
		return c.Redirect(http.StatusFound, "/login")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	page := notesPage{Email: email}
	page.Notes, err = h.Notes.ListByEmail(ctx, email)
	if err != nil {
		logger.From(c).Error("list notes", zap.Error(err))
		page.Error = "Your notes could not be loaded. Please try again."
	}
	return c.Render(http.StatusOK, "notes.html", page)
}

// Add handles POST /add.
func (h *NotesHandler) Add(c echo.Context) error {
	email, err := currentEmail(c)
	if err != nil {
		return c.Redirect(http.StatusFound, "/login")
	}
	body := strings.TrimSpace(c.FormValue("note"))
	if body == "" {
		return c.Redirect(http.StatusFound, "/notes")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if _, err := h.Notes.Create(ctx, email, body); err != nil {
		logger.From(c).Error("add note", zap.Error(err))
	}
	return c.Redirect(http.StatusFound, "/notes")
}

// Edit handles POST /edit.
func (h *NotesHandler) Edit(c echo.Context) error {
	email, err := currentEmail(c)
	if err != nil {
		return c.Redirect(http.StatusFound, "/login")
	}
	id, ok := noteID(c)
	if !ok {
		return c.Redirect(http.StatusFound, "/notes")
	}
	body := strings.TrimSpace(c.FormValue("updatedNote"))
	if body == "" {
		return c.Redirect(http.StatusFound, "/notes")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	h.logMutation(c, "edit note", id, h.Notes.Update(ctx, id, email, body))
	return c.Redirect(http.StatusFound, "/notes")
}

// Delete handles POST /delete.
func (h *NotesHandler) Delete(c echo.Context) error {
	email, err := currentEmail(c)
	if err != nil {
		return c.Redirect(http.StatusFound, "/login")
	}
	id, ok := noteID(c)
	if !ok {
		return c.Redirect(http.StatusFound, "/notes")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	h.logMutation(c, "delete note", id, h.Notes.Delete(ctx, id, email))
	return c.Redirect(http.StatusFound, "/notes")
}

func (h *NotesHandler) logMutation(c echo.Context, op string, id uint64, err error) {
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrNoteNotFound):
		logger.From(c).Warn(op+": not found or not owned", zap.Uint64("note_id", id))
	default:
		logger.From(c).Error(op, zap.Uint64("note_id", id), zap.Error(err))
	}
}

func noteID(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(c.FormValue("noteId")), 10, 64)
	return id, err == nil && id > 0
}
