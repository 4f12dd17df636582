package routes

import (
	"github.com/gofiber/fiber/v2"

	"meditour-backend/controllers"
	"meditour-backend/middlewares"
	"meditour-backend/models"
)

// Register wires all HTTP routes.
func Register(app *fiber.App) {
	api := app.Group("/api")

	// Public auth endpoints
	api.Post("/registration", controllers.Register)
	api.Post("/login", controllers.Login)
	api.Post("/logout", controllers.Logout)

	// Protected endpoints (JWT auth)
	protected := api.Group("")
	protected.Use(middlewares.IsAuthenticatedHeader())

	// Idempotency guard FIRST (not tied to request TX)
	protected.Use(middlewares.Idempotency())

	// Then the per-request transaction (commits/rolls back around handlers)
	protected.Use(middlewares.RequestTx())

	// Reservations
	protected.Post("/reservation", controllers.CreateReservation)
	protected.Get("/reservations", controllers.GetReservations)
	protected.Get("/reservation/:id", controllers.GetReservation)
	protected.Patch("/reservation/:id", controllers.UpdateReservation)
	protected.Get("/reservation/:id/history", controllers.GetReservationHistory)

	// Reservation lifecycle
	protected.Put("/reservation/:id/claim", middlewares.RequireRole(models.RoleAgency), controllers.ClaimPreChat)
	protected.Put("/reservation/:id/confirm", middlewares.RequireRole(models.RoleHospital), controllers.ConfirmReservation)
	protected.Put("/reservation/:id/cancel", controllers.CancelReservation)
	protected.Get("/reservation/:id/settlement/preview", middlewares.RequireRole(models.RoleHospital), controllers.PreviewSettlement)
	protected.Put("/reservation/:id/settlement", middlewares.RequireRole(models.RoleHospital), controllers.EnterSettlement)
	protected.Put("/reservation/:id/complete", middlewares.RequireRole(models.RoleAgency), controllers.CompleteSettlement)
	protected.Put("/reservation/:id/reopen", middlewares.RequireRole(models.RoleAdmin), controllers.ReopenSettlement)

	// Settlement ledger (hospital read model)
	protected.Get("/ledger", controllers.GetLedgerEntries)
	protected.Get("/ledger/export", controllers.ExportLedgerCSV)
	protected.Get("/ledger/balance", controllers.GetBalance)

	// Charge (prepaid top-up) workflow
	protected.Post("/charge", middlewares.RequireRole(models.RoleHospital, models.RoleAdmin), controllers.CreateChargeRequest)
	protected.Get("/charges", controllers.GetChargeRequests)
	protected.Put("/charge/:id/approve", middlewares.RequireRole(models.RoleAdmin), controllers.ApproveChargeRequest)
	protected.Put("/charge/:id/reject", middlewares.RequireRole(models.RoleAdmin), controllers.RejectChargeRequest)

	// Agency payouts
	protected.Get("/payouts/eligible", middlewares.RequireRole(models.RoleAgency, models.RoleAdmin), controllers.GetEligibleSettlements)
	protected.Post("/payout", middlewares.RequireRole(models.RoleAgency), controllers.CreatePayoutRequest)
	protected.Get("/payouts", controllers.GetPayoutRequests)
	protected.Put("/payout/:id/paid", middlewares.RequireRole(models.RoleAdmin), controllers.MarkPayoutPaid)
	protected.Put("/payout/:id/reject", middlewares.RequireRole(models.RoleAdmin), controllers.RejectPayoutRequest)

	// Tax invoices (revisioned, void + reissue)
	protected.Post("/tax-settlement", middlewares.RequireRole(models.RoleAdmin), controllers.IssueTaxSettlement)
	protected.Get("/tax-settlements", controllers.GetTaxSettlements)
	protected.Get("/tax-settlements/history", controllers.GetTaxHistory)
	protected.Get("/tax-settlement/:id", controllers.GetTaxSettlement)
	protected.Put("/tax-settlement/:id/issue", middlewares.RequireRole(models.RoleAdmin), controllers.IssueTaxDraft)
	protected.Put("/tax-settlement/:id/void", middlewares.RequireRole(models.RoleAdmin), controllers.VoidTaxSettlement)
}
