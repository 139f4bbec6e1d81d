package main

import (
	"net/http"

	"fintrack/internal/shared/config"
	"fintrack/internal/shared/logger"
	"fintrack/internal/shared/middleware"
)

// SetupRoutes configures all HTTP routes and returns the final handler with middleware.
func SetupRoutes(deps *Dependencies, cfg *config.Config) http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", deps.HealthHandler.HandleHealth)

	// Public auth routes, rate limited per client IP
	limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, cfg.RateLimit.TrustedProxies)
	public := func(h http.HandlerFunc) http.Handler { return limiter.Middleware(h) }

	mux.Handle("POST /api/auth/register", public(deps.AuthHandler.HandleRegister))
	mux.Handle("POST /api/auth/login", public(deps.AuthHandler.HandleLogin))
	mux.Handle("POST /api/auth/refresh-token", public(deps.AuthHandler.HandleRefresh))
	mux.Handle("POST /api/auth/logout", public(deps.AuthHandler.HandleLogout))

	// Protected routes
	authMiddleware := middleware.Auth(deps.JWT)
	protected := func(h http.HandlerFunc) http.Handler { return authMiddleware(h) }

	mux.Handle("POST /api/auth/change-password", limiter.Middleware(protected(deps.AuthHandler.HandleChangePassword)))

	mux.Handle("GET /api/profile", protected(deps.ProfileHandler.HandleGet))
	mux.Handle("PUT /api/profile", protected(deps.ProfileHandler.HandleUpdate))

	mux.Handle("GET /api/accounts", protected(deps.AccountHandler.HandleList))
	mux.Handle("POST /api/accounts", protected(deps.AccountHandler.HandleCreate))
	mux.Handle("GET /api/accounts/types", protected(deps.AccountHandler.HandleTypes))
	mux.Handle("GET /api/accounts/summary", protected(deps.AccountHandler.HandleSummary))
	mux.Handle("GET /api/accounts/{id}", protected(deps.AccountHandler.HandleGet))
	mux.Handle("PUT /api/accounts/{id}", protected(deps.AccountHandler.HandleUpdate))
	mux.Handle("DELETE /api/accounts/{id}", protected(deps.AccountHandler.HandleDelete))

	mux.Handle("GET /api/transactions", protected(deps.TransactionHandler.HandleList))
	mux.Handle("POST /api/transactions", protected(deps.TransactionHandler.HandleCreate))
	mux.Handle("GET /api/transactions/search", protected(deps.TransactionHandler.HandleSearch))
	mux.Handle("GET /api/transactions/categories", protected(deps.TransactionHandler.HandleCategories))
	mux.Handle("GET /api/transactions/summary", protected(deps.TransactionHandler.HandleSummary))
	mux.Handle("POST /api/transactions/transfer", protected(deps.TransactionHandler.HandleTransfer))
	mux.Handle("GET /api/transactions/{id}", protected(deps.TransactionHandler.HandleGet))
	mux.Handle("PUT /api/transactions/{id}", protected(deps.TransactionHandler.HandleUpdate))
	mux.Handle("DELETE /api/transactions/{id}", protected(deps.TransactionHandler.HandleDelete))

	mux.Handle("GET /api/budgets", protected(deps.BudgetHandler.HandleList))
	mux.Handle("POST /api/budgets", protected(deps.BudgetHandler.HandleCreate))
	mux.Handle("GET /api/budgets/periods", protected(deps.BudgetHandler.HandlePeriods))
	mux.Handle("GET /api/budgets/summary", protected(deps.BudgetHandler.HandleSummary))
	mux.Handle("GET /api/budgets/{id}", protected(deps.BudgetHandler.HandleGet))
	mux.Handle("PUT /api/budgets/{id}", protected(deps.BudgetHandler.HandleUpdate))
	mux.Handle("DELETE /api/budgets/{id}", protected(deps.BudgetHandler.HandleDelete))

	mux.Handle("GET /api/goals", protected(deps.GoalHandler.HandleList))
	mux.Handle("POST /api/goals", protected(deps.GoalHandler.HandleCreate))
	mux.Handle("GET /api/goals/categories", protected(deps.GoalHandler.HandleCategories))
	mux.Handle("GET /api/goals/summary", protected(deps.GoalHandler.HandleSummary))
	mux.Handle("GET /api/goals/{id}", protected(deps.GoalHandler.HandleGet))
	mux.Handle("PUT /api/goals/{id}", protected(deps.GoalHandler.HandleUpdate))
	mux.Handle("DELETE /api/goals/{id}", protected(deps.GoalHandler.HandleDelete))
	mux.Handle("POST /api/goals/{id}/contribute", protected(deps.GoalHandler.HandleContribute))

	mux.Handle("GET /api/recurring-transactions", protected(deps.RecurringHandler.HandleList))
	mux.Handle("POST /api/recurring-transactions", protected(deps.RecurringHandler.HandleCreate))
	mux.Handle("GET /api/recurring-transactions/{id}", protected(deps.RecurringHandler.HandleGet))
	mux.Handle("PUT /api/recurring-transactions/{id}", protected(deps.RecurringHandler.HandleUpdate))
	mux.Handle("DELETE /api/recurring-transactions/{id}", protected(deps.RecurringHandler.HandleDelete))
	mux.Handle("PATCH /api/recurring-transactions/{id}/toggle", protected(deps.RecurringHandler.HandleToggle))
	mux.Handle("POST /api/recurring-transactions/{id}/run", protected(deps.RecurringHandler.HandleRun))

	mux.Handle("GET /api/notifications", protected(deps.NotificationHandler.HandleList))
	mux.Handle("GET /api/notifications/unread", protected(deps.NotificationHandler.HandleUnread))
	mux.Handle("GET /api/notifications/summary", protected(deps.NotificationHandler.HandleSummary))
	mux.Handle("POST /api/notifications/read-all", protected(deps.NotificationHandler.HandleMarkAllRead))
	mux.Handle("POST /api/notifications/register-device", protected(deps.NotificationHandler.HandleRegisterDevice))
	mux.Handle("GET /api/notifications/preferences", protected(deps.NotificationHandler.HandleGetPreferences))
	mux.Handle("PUT /api/notifications/preferences", protected(deps.NotificationHandler.HandleUpdatePreferences))
	mux.Handle("POST /api/notifications/{id}/read", protected(deps.NotificationHandler.HandleMarkRead))
	mux.Handle("DELETE /api/notifications/{id}", protected(deps.NotificationHandler.HandleDelete))

	mux.Handle("POST /api/import/transactions/csv", protected(deps.ImportExportHandler.HandleImportCSV))
	mux.Handle("GET /api/import/template", protected(deps.ImportExportHandler.HandleTemplate))
	mux.Handle("GET /api/export/transactions/csv", protected(deps.ImportExportHandler.HandleExportTransactionsCSV))
	mux.Handle("GET /api/export/transactions/json", protected(deps.ImportExportHandler.HandleExportTransactionsJSON))
	mux.Handle("GET /api/export/accounts/csv", protected(deps.ImportExportHandler.HandleExportAccountsCSV))

	mux.Handle("GET /api/reports/dashboard", protected(deps.ReportHandler.HandleDashboard))
	mux.Handle("GET /api/reports/monthly", protected(deps.ReportHandler.HandleMonthly))

	mux.Handle("GET /api/balance-history/trend", protected(deps.HistoryHandler.HandleTrend))
	mux.Handle("GET /api/balance-history/account/{id}", protected(deps.HistoryHandler.HandleAccount))
	mux.Handle("GET /api/balance-history/account/{id}/daily", protected(deps.HistoryHandler.HandleAccountDaily))

	mux.Handle("GET /api/categories", protected(deps.CategoryHandler.HandleList))
	mux.Handle("POST /api/categories", protected(deps.CategoryHandler.HandleCreate))
	mux.Handle("GET /api/categories/{id}", protected(deps.CategoryHandler.HandleGet))
	mux.Handle("PUT /api/categories/{id}", protected(deps.CategoryHandler.HandleUpdate))
	mux.Handle("DELETE /api/categories/{id}", protected(deps.CategoryHandler.HandleDelete))

	mux.Handle("GET /api/currencies", protected(deps.CurrencyHandler.HandleList))
	mux.Handle("GET /api/currencies/{code}", protected(deps.CurrencyHandler.HandleGet))

	mux.Handle("GET /api/search", protected(deps.SearchHandler.HandleSearch))

	// Global middleware, innermost first
	handler := middleware.CORS(cfg.Server.AllowedHosts)(mux)
	handler = middleware.Tracing(handler)
	if cfg.Telemetry.Enabled {
		handler = middleware.Telemetry(cfg.Telemetry.ServiceName)(handler)
	}
	handler = middleware.Logging(handler)
	handler = middleware.RequestID(handler)

	// Apply security middleware when TLS is enabled
	if cfg.TLS.Enabled {
		handler = middleware.HSTS(middleware.SecureCookies(handler))
		logger.WithComponent("routes").Info("TLS security middleware enabled", "hsts", true, "secure_cookies", true)
	}

	return handler
}
