package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/MrFantastico007/DeadDrop/internal/repository"
	"github.com/MrFantastico007/DeadDrop/internal/service"
)

type handlers struct {
	svc    *service.MessageService
	reaper *service.Reaper
	log    *zap.SugaredLogger
}

func newHandlers(svc *service.MessageService, reaper *service.Reaper, log *zap.SugaredLogger) *handlers {
	return &handlers{svc: svc, reaper: reaper, log: log}
}

// POST /api/room/join {roomCode} -> full ascending history. An empty room
// is a normal 200 with no messages; "room not found" is not a thing.
func (h *handlers) joinRoom(c *fiber.Ctx) error {
	var body struct {
		RoomCode string `json:"roomCode"`
	}
	if err := c.BodyParser(&body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	msgs, err := h.svc.History(c.Context(), body.RoomCode)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			return jsonError(c, fiber.StatusBadRequest, "room code is required")
		}
		h.log.Errorw("history fetch failed", "room", body.RoomCode, "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "failed to join room")
	}
	return c.JSON(fiber.Map{"success": true, "messages": msgs})
}

// POST /api/upload (multipart field "file") -> {fileRef, fileDeletionToken}.
// Upload and message creation are two separate calls; a client that
// uploads and never submits leaves an orphaned object until the room it
// never posted to would have been cleaned. Accepted gap.
func (h *handlers) upload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "no file uploaded")
	}
	f, err := fileHeader.Open()
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "cannot open file")
	}
	defer f.Close()
	data := make([]byte, fileHeader.Size)
	if _, err := io.ReadFull(f, data); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "cannot read file")
	}

	ct := fileHeader.Header.Get("Content-Type")
	if ct == "" {
		ct = http.DetectContentType(data)
	}

	obj, err := h.svc.UploadFile(c.Context(), fileHeader.Filename, ct, data)
	if err != nil {
		h.log.Errorw("upload failed", "file", fileHeader.Filename, "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "upload failed")
	}
	return c.JSON(fiber.Map{"fileRef": obj.Ref, "fileDeletionToken": obj.Token})
}

// POST /api/message -> persists then broadcasts. The response body is
// informational; clients render from the broadcast.
func (h *handlers) createMessage(c *fiber.Ctx) error {
	var in service.SubmitInput
	if err := c.BodyParser(&in); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	msg, err := h.svc.Submit(c.Context(), in)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			return jsonError(c, fiber.StatusBadRequest, err.Error())
		}
		h.log.Errorw("message create failed", "room", in.RoomCode, "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "failed to send message")
	}
	return c.JSON(fiber.Map{"success": true, "message": msg})
}

// DELETE /api/message/:id
func (h *handlers) deleteMessage(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.svc.Delete(c.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return jsonError(c, fiber.StatusNotFound, "message not found")
		}
		h.log.Errorw("message delete failed", "message", id, "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "failed to delete message")
	}
	return c.JSON(fiber.Map{"success": true, "messageId": id})
}

// GET /api/cleanup — external scheduler trigger. Idempotent; calling it
// more often than needed only produces zero-count reports.
func (h *handlers) cleanup(c *fiber.Ctx) error {
	report, err := h.reaper.Sweep(c.Context())
	if err != nil {
		h.log.Errorw("cleanup failed", "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "cleanup failed")
	}
	return c.JSON(fiber.Map{
		"success":                true,
		"deletedCount":           report.DeletedCount,
		"fileDeletionsAttempted": report.FileDeletionsAttempted,
		"roomsCleaned":           report.RoomsCleaned,
	})
}

func jsonError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}
