package handler

import "github.com/gofiber/fiber/v2"

// Routes collects the handlers mounted under /api/v1.
type Routes struct {
	Auth      *AuthHandler
	Inventory *InventoryHandler
	Expense   *ExpenseHandler
	Financial *FinancialHandler
	Report    *ReportHandler
	Profile   *ProfileHandler

	RequireAuth fiber.Handler

	// Optional live feed at /ws.
	RequireWSAuth fiber.Handler
	WS            fiber.Handler
}

func (r *Routes) Mount(app *fiber.App) {
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/register", r.Auth.Register)
	auth.Post("/login", r.Auth.Login)
	auth.Post("/reset-password", r.Auth.ResetPassword)
	auth.Post("/validate-token", r.Auth.ValidateToken)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", r.RequireAuth)

	protected.Get("/me", r.Profile.GetMe)
	protected.Put("/me", r.Profile.UpdateMe)

	protected.Get("/products", r.Inventory.GetProducts)
	protected.Post("/products", r.Inventory.CreateProduct)
	protected.Get("/products/:id", r.Inventory.GetProduct)
	protected.Post("/products/:id/convert", r.Inventory.ConvertPackets)

	protected.Get("/transactions", r.Inventory.GetTransactions)
	protected.Post("/transactions", r.Inventory.CreateTransaction)
	protected.Get("/transactions/:id", r.Inventory.GetTransaction)
	protected.Delete("/transactions/:id", r.Inventory.DeleteTransaction)
	protected.Post("/transactions/:id/paid", r.Inventory.MarkPaid)

	protected.Get("/expenses", r.Expense.GetExpenses)
	protected.Post("/expenses", r.Expense.CreateExpense)
	protected.Delete("/expenses/:id", r.Expense.DeleteExpense)

	protected.Get("/financials/summary", r.Financial.GetSummary)
	protected.Get("/dashboard/stats", r.Financial.GetDashboardStats)
	protected.Get("/dashboard/stock-movement", r.Financial.GetStockMovement)

	protected.Get("/reports/ledger.xlsx", r.Report.GetLedgerWorkbook)

	if r.WS != nil {
		app.Get("/ws", UpgradeWS, r.RequireWSAuth, r.WS)
	}
}
