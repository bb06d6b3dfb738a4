package signaling

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/spysignal-backend/internal/dto"
	"github.com/gofiber/fiber/v2"
)

type SignalHandler struct {
	signalService *SignalService
}

func NewSignalHandler(signalService *SignalService) *SignalHandler {
	return &SignalHandler{signalService: signalService}
}

// Offer handles POST /call/offer.
func (h *SignalHandler) Offer(c *fiber.Ctx) error {
	var req SDPRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	return h.submit(c, KindOffer, &SubmitRequest{FromID: req.FromID, ToID: req.ToID, Content: req.SDP})
}

// Answer handles POST /call/answer.
func (h *SignalHandler) Answer(c *fiber.Ctx) error {
	var req SDPRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	return h.submit(c, KindAnswer, &SubmitRequest{FromID: req.FromID, ToID: req.ToID, Content: req.SDP})
}

// Candidate handles POST /call/candidate.
func (h *SignalHandler) Candidate(c *fiber.Ctx) error {
	var req CandidateRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	return h.submit(c, KindCandidate, &SubmitRequest{FromID: req.FromID, ToID: req.ToID, Content: req.Candidate})
}

func (h *SignalHandler) submit(c *fiber.Ctx, kind Kind, req *SubmitRequest) error {
	signal, err := h.signalService.Submit(c.UserContext(), kind, req)
	if err != nil {
		if errors.Is(err, ErrInvalidSignal) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
				Detail: err.Error(),
			})
		}
		slog.Error("failed to queue signal", "action", "call."+string(kind), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Detail: "Internal server error",
		})
	}

	return c.JSON(signal)
}

// Poll handles GET /call/poll/:user_id. The returned signals are removed
// from the queue.
func (h *SignalHandler) Poll(c *fiber.Ctx) error {
	userID, err := c.ParamsInt("user_id")
	if err != nil || userID < 0 {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
			Detail: "user_id must be a non-negative integer",
		})
	}

	signals, err := h.signalService.Poll(c.UserContext(), uint(userID))
	if err != nil {
		slog.Error("failed to poll signals", "action", "call.poll", "user_id", userID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Detail: "Internal server error",
		})
	}

	return c.JSON(signals)
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
		Detail: "Invalid request body",
	})
}
