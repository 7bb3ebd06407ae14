package handlers

import (
	"strings"

	"github.com/AnemiB/SipStop/internal/httpx"
	"github.com/AnemiB/SipStop/internal/service"
	"github.com/gofiber/fiber/v2"
)

type NoteHandler struct {
	noteService    *service.NoteService
	commentService *service.CommentService
}

func NewNoteHandler(noteService *service.NoteService, commentService *service.CommentService) *NoteHandler {
	return &NoteHandler{noteService: noteService, commentService: commentService}
}

func noteID(c *fiber.Ctx) (string, bool) {
	id := strings.TrimSpace(c.Params("id"))
	return id, id != ""
}

// ListCommunity returns every user's notes, newest first.
func (h *NoteHandler) ListCommunity(c *fiber.Ctx) error {
	notes, err := h.noteService.CommunityFeed()
	if err != nil {
		return httpx.ServiceError(c, err, "list_notes_failed")
	}
	return c.JSON(fiber.Map{"notes": notes})
}

func (h *NoteHandler) Create(c *fiber.Ctx) error {
	sess, err := httpx.RequireSession(c)
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var input service.CreateNoteInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	note, err := h.noteService.CreateNote(c.UserContext(), sess, input)
	if err != nil {
		return httpx.ServiceError(c, err, "create_note_failed")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"note": note})
}

func (h *NoteHandler) Get(c *fiber.Ctx) error {
	id, ok := noteID(c)
	if !ok {
		return httpx.BadRequest(c, "missing_note_id", "Note id is required")
	}

	note, err := h.noteService.GetNote(id)
	if err != nil {
		return httpx.ServiceError(c, err, "get_note_failed")
	}
	return c.JSON(fiber.Map{"note": note})
}

// ListComments returns a note's comments, oldest first.
func (h *NoteHandler) ListComments(c *fiber.Ctx) error {
	id, ok := noteID(c)
	if !ok {
		return httpx.BadRequest(c, "missing_note_id", "Note id is required")
	}

	comments, err := h.commentService.ListComments(id)
	if err != nil {
		return httpx.ServiceError(c, err, "list_comments_failed")
	}
	return c.JSON(fiber.Map{"comments": comments})
}

func (h *NoteHandler) AddComment(c *fiber.Ctx) error {
	sess, err := httpx.RequireSession(c)
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	id, ok := noteID(c)
	if !ok {
		return httpx.BadRequest(c, "missing_note_id", "Note id is required")
	}

	var input service.AddCommentInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	comment, err := h.commentService.AddComment(c.UserContext(), sess, id, input)
	if err != nil {
		return httpx.ServiceError(c, err, "add_comment_failed")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"comment": comment})
}

// MarkViewed records that the caller has opened the note's comments.
func (h *NoteHandler) MarkViewed(c *fiber.Ctx) error {
	sess, err := httpx.RequireSession(c)
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	id, ok := noteID(c)
	if !ok {
		return httpx.BadRequest(c, "missing_note_id", "Note id is required")
	}

	at, err := h.commentService.MarkViewed(c.UserContext(), sess, id)
	if err != nil {
		return httpx.ServiceError(c, err, "mark_viewed_failed")
	}
	return c.JSON(fiber.Map{"note_id": id, "viewed_at": at})
}
