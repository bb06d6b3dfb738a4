package handlers

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/ahmetcoskunkizilkaya/spysignal-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/spysignal-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/spysignal-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/spysignal-backend/internal/session"
	"github.com/gofiber/fiber/v2"
)

type MessageHandler struct {
	messageService *services.MessageService
}

func NewMessageHandler(messageService *services.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// Create handles POST /api/messages.
func (h *MessageHandler) Create(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Detail: "Unauthorized",
		})
	}

	var req dto.CreateMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	msg, err := h.messageService.Create(c.UserContext(), userID, &req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidRequest) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
				Detail: err.Error(),
			})
		}
		if errors.Is(err, services.ErrRecipientNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Detail: "Recipient not found",
			})
		}
		slog.Error("failed to create message", "action", "messages.create", "user_id", userID, "error", err)
		return internalError(c)
	}

	return c.JSON(dto.CreateMessageResponse{OK: true, ID: msg.ID})
}

// List handles GET /api/messages?peer_id=, returning the dialog oldest first.
func (h *MessageHandler) List(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Detail: "Unauthorized",
		})
	}

	peerID, err := strconv.ParseUint(c.Query("peer_id"), 10, 63)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
			Detail: "peer_id must be a non-negative integer",
		})
	}

	msgs, err := h.messageService.ListDialog(c.UserContext(), userID, uint(peerID))
	if err != nil {
		slog.Error("failed to list messages", "action", "messages.list", "user_id", userID, "error", err)
		return internalError(c)
	}

	resp := dto.MessagesResponse{Messages: make([]dto.MessageResponse, len(msgs))}
	for i := range msgs {
		resp.Messages[i] = toMessageResponse(&msgs[i])
	}
	return c.JSON(resp)
}

func toMessageResponse(m *models.Message) dto.MessageResponse {
	return dto.MessageResponse{
		ID:         m.ID,
		FromID:     m.FromID,
		ToID:       m.ToID,
		IV:         m.IV,
		Ciphertext: m.Ciphertext,
		MsgType:    m.MsgType,
		TTLSec:     m.TTLSec,
		CreatedAt:  m.CreatedAt,
	}
}
