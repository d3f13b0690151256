// Package routes defines the API routing configuration.
// It wires repositories, services and handlers together and registers all
// HTTP routes with their middleware.
package routes

import (
	"quicksend/internal/config"
	"quicksend/internal/handlers"
	"quicksend/internal/ledger"
	"quicksend/internal/middleware"
	"quicksend/internal/repositories"
	"quicksend/internal/services/auth"
	"quicksend/internal/services/deposit"
	"quicksend/internal/services/transfer"
	"quicksend/internal/services/user"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SetupRoutes configures all application routes.
func SetupRoutes(app *fiber.App, db *gorm.DB) {
	// Repositories
	userRepo := repositories.NewUserRepository(db, repositories.CacheService)
	walletRepo := repositories.NewWalletRepository(db, repositories.CacheService)
	pendingRepo := repositories.NewPendingCreditRepository(db)
	ledgerStore := ledger.New(db)

	// Services
	authService := auth.NewService(userRepo)
	userService := user.NewService(userRepo)
	transferService := transfer.NewService(userRepo, walletRepo, ledgerStore)
	gateway := deposit.NewStripeGateway(config.GetEnv("STRIPE_SECRET_KEY", ""))
	depositService := deposit.NewService(gateway, walletRepo, ledgerStore, pendingRepo)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, userService)
	walletHandler := handlers.NewWalletHandler(walletRepo)
	transferHandler := handlers.NewTransferHandler(transferService)
	depositHandler := handlers.NewDepositHandler(depositService)

	app.Get("/health", handlers.HealthCheck)

	api := app.Group("/api")

	// Public endpoints (no auth required)
	api.Post("/register", authHandler.RegisterUser)
	api.Post("/login", authHandler.LoginUser)
	api.Post("/refresh", authHandler.RefreshToken)

	// Protected routes
	authMiddleware := middleware.NewAuthMiddleware(authService)
	protected := api.Use(authMiddleware.Handler)

	protected.Post("/logout", authHandler.LogoutUser)
	protected.Post("/change-password", authHandler.ChangePassword)

	wallet := protected.Group("/wallet")
	wallet.Get("/", walletHandler.GetWallet)
	wallet.Get("/transactions", walletHandler.GetTransactions)
	wallet.Post("/send", transferHandler.SendMoney)
	wallet.Post("/deposit", depositHandler.Deposit)

	admin := protected.Group("/admin", middleware.AdminOnly)
	admin.Post("/reconcile", depositHandler.Reconcile)
}
