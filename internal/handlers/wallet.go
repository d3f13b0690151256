package handlers

import (
	"errors"

	"quicksend/internal/models"
	"quicksend/internal/repositories"
	"quicksend/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type WalletHandler struct {
	wallets repositories.WalletRepository
}

func NewWalletHandler(wallets repositories.WalletRepository) *WalletHandler {
	return &WalletHandler{
		wallets: wallets,
	}
}

// extractUserClaims is a helper function to reduce duplication
func extractUserClaims(c *fiber.Ctx) (*models.UserClaims, error) {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok || claims == nil {
		return nil, fiber.ErrUnauthorized
	}
	return claims, nil
}

func (h *WalletHandler) GetWallet(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	wallet, err := h.wallets.GetByUserID(claims.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrWalletNotFound) {
			return utils.NotFound(c, "Wallet not found")
		}
		return utils.InternalError(c, "Failed to get wallet")
	}

	return utils.Success(c, fiber.Map{
		"wallet": wallet,
	})
}

func (h *WalletHandler) GetTransactions(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	limit := c.QueryInt("limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}

	wallet, err := h.wallets.GetByUserID(claims.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrWalletNotFound) {
			return utils.NotFound(c, "Wallet not found")
		}
		return utils.InternalError(c, "Failed to get wallet")
	}

	entries, total, err := h.wallets.GetEntries(c.Context(), wallet.ID, limit, (page-1)*limit)
	if err != nil {
		return utils.InternalError(c, "Failed to get transactions")
	}

	return utils.Success(c, fiber.Map{
		"transactions": entries,
		"total":        total,
		"page":         page,
		"limit":        limit,
	})
}
