package handlers

import (
	"errors"

	"quicksend/internal/services/deposit"
	"quicksend/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// DepositHandler exposes the deposit and reconciliation endpoints.
type DepositHandler struct {
	service deposit.Service
}

func NewDepositHandler(s deposit.Service) *DepositHandler { return &DepositHandler{service: s} }

// Deposit handles POST /api/wallet/deposit. The charge goes through the
// payment gateway first; the wallet is only credited once the gateway reports
// the charge settled.
func (h *DepositHandler) Deposit(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		AmountInCents   int64  `json:"amount_in_cents"`
		Currency        string `json:"currency"`
		PaymentMethodID string `json:"payment_method_id"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}
	if input.Currency == "" {
		input.Currency = "usd"
	}
	if input.PaymentMethodID == "" {
		return utils.BadRequest(c, "Payment method is required")
	}

	result, err := h.service.Deposit(c.Context(), claims.UserID, input.AmountInCents, input.Currency, input.PaymentMethodID)
	if err != nil {
		switch {
		case errors.Is(err, deposit.ErrInvalidAmount):
			return utils.BadRequest(c, "Amount must be greater than zero")
		case errors.Is(err, deposit.ErrWalletNotFound):
			return utils.NotFound(c, "Wallet not found")
		case errors.Is(err, deposit.ErrPaymentRejected):
			return utils.BadRequest(c, "Payment failed")
		case errors.Is(err, deposit.ErrCreditFailed):
			// The charge is captured and recorded; crediting can be retried.
			return utils.ServiceUnavailable(c, "Deposit is being processed, please retry shortly")
		default:
			return utils.InternalError(c, "Deposit failed, please try again")
		}
	}

	if result.Status == deposit.StatusRequiresAction {
		return utils.Success(c, fiber.Map{
			"status":       deposit.StatusRequiresAction,
			"action_token": result.ActionToken,
		})
	}

	return utils.Success(c, fiber.Map{
		"status":      deposit.StatusOK,
		"message":     "Deposit successful",
		"new_balance": result.NewBalance,
	})
}

// Reconcile handles POST /api/admin/reconcile: operator retry of a wallet
// credit for a charge that settled but whose ledger commit failed.
func (h *DepositHandler) Reconcile(c *fiber.Ctx) error {
	var input struct {
		Reference string `json:"reference"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}
	if input.Reference == "" {
		return utils.BadRequest(c, "Charge reference is required")
	}

	result, err := h.service.Reconcile(c.Context(), input.Reference)
	if err != nil {
		switch {
		case errors.Is(err, deposit.ErrUnknownReference):
			return utils.NotFound(c, "Unknown charge reference")
		case errors.Is(err, deposit.ErrCreditFailed):
			return utils.ServiceUnavailable(c, "Credit failed, retry later")
		default:
			return utils.InternalError(c, "Reconciliation failed")
		}
	}

	return utils.Success(c, fiber.Map{
		"status":      result.Status,
		"reference":   result.Reference,
		"new_balance": result.NewBalance,
	})
}
