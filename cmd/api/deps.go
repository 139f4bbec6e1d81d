package main

import (
	"context"

	"fintrack/internal/domain/account"
	"fintrack/internal/domain/budget"
	"fintrack/internal/domain/category"
	"fintrack/internal/domain/goal"
	"fintrack/internal/domain/importexport"
	"fintrack/internal/domain/notification"
	"fintrack/internal/domain/recurring"
	"fintrack/internal/domain/report"
	"fintrack/internal/domain/search"
	"fintrack/internal/domain/transaction"
	"fintrack/internal/domain/user"
	"fintrack/internal/infrastructure/broker"
	"fintrack/internal/infrastructure/firebase"
	"fintrack/internal/infrastructure/postgres"
	"fintrack/internal/infrastructure/postgres/listener"
	httphandlers "fintrack/internal/interfaces/http"
	"fintrack/internal/shared/auth"
	"fintrack/internal/shared/cache"
	"fintrack/internal/shared/config"
	"fintrack/internal/shared/events"
	"fintrack/internal/shared/logger"
	"fintrack/internal/shared/messages"
)

// Dependencies holds all initialized application components.
type Dependencies struct {
	DB        *postgres.DB
	Publisher events.Publisher
	Listener  *listener.TransactionListener

	// Handlers
	HealthHandler       *httphandlers.HealthHandler
	AuthHandler         *httphandlers.AuthHandler
	ProfileHandler      *httphandlers.ProfileHandler
	AccountHandler      *httphandlers.AccountHandler
	TransactionHandler  *httphandlers.TransactionHandler
	BudgetHandler       *httphandlers.BudgetHandler
	GoalHandler         *httphandlers.GoalHandler
	RecurringHandler    *httphandlers.RecurringHandler
	NotificationHandler *httphandlers.NotificationHandler
	ImportExportHandler *httphandlers.ImportExportHandler
	ReportHandler       *httphandlers.ReportHandler
	HistoryHandler      *httphandlers.BalanceHistoryHandler
	CategoryHandler     *httphandlers.CategoryHandler
	CurrencyHandler     *httphandlers.CurrencyHandler
	SearchHandler       *httphandlers.SearchHandler

	// Auth
	JWT *auth.JWT

	// Services used by the scheduler job provider
	RecurringService *recurring.Service
	BudgetService    *budget.Service
	AlertService     *budget.AlertService
}

// NewDependencies initializes all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	log := logger.WithComponent("deps")

	db, err := postgres.New(cfg.Database.ConnectionString())
	if err != nil {
		return nil, err
	}
	log.Info("connected to database", "host", cfg.Database.Host, "name", cfg.Database.DBName)

	if cfg.Database.AutoMigrate {
		if err := postgres.RunMigrations(db); err != nil {
			_ = db.Close()
			return nil, err
		}
		log.Info("database migrations applied")
	}

	publisher, err := broker.New(cfg.Events)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Info("event publisher ready", "driver", cfg.Events.Driver)

	msgs, err := messages.Load(cfg.Firebase.MessagesFile)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	summaryCache := cache.New(cfg.Cache.TTL, cfg.Cache.CleanupInterval)

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	accountRepo := postgres.NewAccountRepository(db)
	transactionRepo := postgres.NewTransactionRepository(db)
	budgetRepo := postgres.NewBudgetRepository(db)
	goalRepo := postgres.NewGoalRepository(db)
	recurringRepo := postgres.NewRecurringRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)
	categoryRepo := postgres.NewCategoryRepository(db)

	// Push delivery is optional; without credentials notifications are only stored.
	var messenger notification.Messenger
	if cfg.Firebase.CredentialsFile != "" {
		fcm, err := firebase.NewClient(ctx, cfg.Firebase.CredentialsFile, notificationRepo.DeactivateToken)
		if err != nil {
			log.Warn("push notifications disabled", logger.Err(err))
		} else {
			messenger = fcm
			log.Info("firebase messaging initialized")
		}
	} else {
		log.Info("FIREBASE_CREDENTIALS_FILE not set, push notifications disabled")
	}

	jwt := auth.NewJWT(cfg.JWT.Secret, auth.TTLConfig{
		Access:    cfg.JWT.AccessTTL,
		Refresh:   cfg.JWT.RefreshTTL,
		Analytics: cfg.JWT.AnalyticsTTL,
	})

	// Services
	userService := user.NewService(userRepo)
	accountService := account.NewService(accountRepo, summaryCache)
	transactionService := transaction.NewService(transactionRepo, accountRepo, publisher, summaryCache)
	notificationService := notification.NewService(notificationRepo, messenger)
	budgetService := budget.NewService(budgetRepo, summaryCache)
	alertService := budget.NewAlertService(budgetRepo, notificationService, msgs)
	goalService := goal.NewService(goal.Deps{
		Repo:      goalRepo,
		Accounts:  accountRepo,
		Notifier:  notificationService,
		Publisher: publisher,
		Messages:  msgs,
		Cache:     summaryCache,
	})
	recurringService := recurring.NewService(recurring.Deps{
		Repo:      recurringRepo,
		Accounts:  accountRepo,
		Notifier:  notificationService,
		Publisher: publisher,
		Messages:  msgs,
		Cache:     summaryCache,
	})
	reportService := report.NewService(accountService, transactionService, budgetService, goalService, summaryCache)
	historyService := report.NewHistoryService(accountService, transactionService)
	categoryService := category.NewService(categoryRepo)
	searchService := search.NewService(search.Deps{
		Transactions: transactionService,
		Accounts:     accountService,
		Budgets:      budgetService,
		Goals:        goalService,
		Recurring:    recurringService,
	})
	importer := importexport.NewImporter(accountService, transactionService)

	return &Dependencies{
		DB:        db,
		Publisher: publisher,
		Listener:  listener.NewTransactionListener(cfg.Database.ConnectionString(), alertService),

		HealthHandler:       httphandlers.NewHealthHandler(db),
		AuthHandler:         httphandlers.NewAuthHandler(userService, jwt),
		ProfileHandler:      httphandlers.NewProfileHandler(userService),
		AccountHandler:      httphandlers.NewAccountHandler(accountService),
		TransactionHandler:  httphandlers.NewTransactionHandler(transactionService),
		BudgetHandler:       httphandlers.NewBudgetHandler(budgetService),
		GoalHandler:         httphandlers.NewGoalHandler(goalService),
		RecurringHandler:    httphandlers.NewRecurringHandler(recurringService),
		NotificationHandler: httphandlers.NewNotificationHandler(notificationService),
		ImportExportHandler: httphandlers.NewImportExportHandler(importer, accountService, transactionService),
		ReportHandler:       httphandlers.NewReportHandler(reportService),
		HistoryHandler:      httphandlers.NewBalanceHistoryHandler(historyService),
		CategoryHandler:     httphandlers.NewCategoryHandler(categoryService),
		CurrencyHandler:     httphandlers.NewCurrencyHandler(),
		SearchHandler:       httphandlers.NewSearchHandler(searchService),

		JWT: jwt,

		RecurringService: recurringService,
		BudgetService:    budgetService,
		AlertService:     alertService,
	}, nil
}

// Close releases the publisher and the database pool.
func (d *Dependencies) Close() {
	log := logger.WithComponent("deps")
	if err := d.Publisher.Close(); err != nil {
		log.Warn("failed to close event publisher", logger.Err(err))
	}
	if err := d.DB.Close(); err != nil {
		log.Warn("failed to close database", logger.Err(err))
	}
}
