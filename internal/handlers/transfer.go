package handlers

import (
	"errors"

	"quicksend/internal/services/transfer"
	"quicksend/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// TransferHandler exposes the P2P transfer endpoint.
type TransferHandler struct {
	service transfer.Service
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(s transfer.Service) *TransferHandler { return &TransferHandler{service: s} }

// SendMoney handles POST /api/wallet/send. The sender is the authenticated
// caller; the recipient is looked up by phone number.
func (h *TransferHandler) SendMoney(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		RecipientPhone string          `json:"recipient_phone"`
		Amount         decimal.Decimal `json:"amount"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}
	if input.RecipientPhone == "" {
		return utils.BadRequest(c, "Recipient phone number is required")
	}

	receipt, err := h.service.Transfer(c.Context(), claims.UserID, input.RecipientPhone, input.Amount)
	if err != nil {
		switch {
		case errors.Is(err, transfer.ErrInvalidAmount):
			return utils.BadRequest(c, "Amount must be greater than zero")
		case errors.Is(err, transfer.ErrSenderNotFound):
			return utils.NotFound(c, "Sender not found")
		case errors.Is(err, transfer.ErrRecipientNotFound):
			return utils.NotFound(c, "Recipient not found")
		case errors.Is(err, transfer.ErrSelfTransfer):
			return utils.BadRequest(c, "Cannot send money to yourself")
		case errors.Is(err, transfer.ErrInsufficientFunds):
			return utils.BadRequest(c, "Insufficient balance")
		default:
			return utils.InternalError(c, "Transfer failed, please try again")
		}
	}

	return utils.Success(c, fiber.Map{
		"status":  "ok",
		"message": "Money sent successfully",
		"receipt": receipt,
	})
}
