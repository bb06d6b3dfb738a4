package handlers

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/spysignal-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/spysignal-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/spysignal-backend/internal/session"
	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Register handles POST /api/register. Registering a known username returns
// the existing account and token.
func (h *UserHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	resp, err := h.userService.Register(c.UserContext(), &req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidRequest) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
				Detail: err.Error(),
			})
		}
		slog.Error("registration failed", "action", "register", "error", err)
		return internalError(c)
	}

	return c.JSON(resp)
}

// Search handles GET /api/users/search?query=.
func (h *UserHandler) Search(c *fiber.Ctx) error {
	if !c.Context().QueryArgs().Has("query") {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
			Detail: "query is required",
		})
	}

	results, err := h.userService.Search(c.UserContext(), c.Query("query"))
	if err != nil {
		slog.Error("user search failed", "action", "users.search", "error", err)
		return internalError(c)
	}

	return c.JSON(dto.SearchResponse{Results: results})
}

// SetPubKey handles POST /api/pubkey for the authenticated caller.
func (h *UserHandler) SetPubKey(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Detail: "Unauthorized",
		})
	}

	var req dto.PubKeyUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	if err := h.userService.SetPubKey(c.UserContext(), userID, &req); err != nil {
		if errors.Is(err, services.ErrInvalidRequest) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
				Detail: err.Error(),
			})
		}
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Detail: "Invalid token",
			})
		}
		slog.Error("failed to save pubkey", "action", "pubkey.set", "user_id", userID, "error", err)
		return internalError(c)
	}

	return c.JSON(dto.OKResponse{OK: true})
}

// GetPubKey handles GET /api/pubkey/:user_id. It is public.
func (h *UserHandler) GetPubKey(c *fiber.Ctx) error {
	userID, err := c.ParamsInt("user_id")
	if err != nil || userID < 0 {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
			Detail: "user_id must be a non-negative integer",
		})
	}

	pubkey, err := h.userService.GetPubKey(c.UserContext(), uint(userID))
	if err != nil {
		if errors.Is(err, services.ErrPubKeyNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Detail: "No pubkey",
			})
		}
		slog.Error("failed to load pubkey", "action", "pubkey.get", "error", err)
		return internalError(c)
	}

	return c.JSON(dto.PubKeyResponse{PubKey: pubkey})
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
		Detail: "Invalid request body",
	})
}

func internalError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Detail: "Internal server error",
	})
}
