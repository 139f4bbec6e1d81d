package main

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"fintrack/internal/domain/budget"
	"fintrack/internal/domain/notification"
	"fintrack/internal/domain/recurring"
	"fintrack/internal/domain/transaction"
	"fintrack/internal/domain/user"
	"fintrack/internal/infrastructure/broker"
	"fintrack/internal/infrastructure/postgres"
	"fintrack/internal/shared/cache"
	"fintrack/internal/shared/config"
	"fintrack/internal/shared/events"
	"fintrack/internal/shared/logger"
	"fintrack/internal/shared/messages"
)

const defaultTimeout = 30 * time.Minute

// app is the set of components an admin command works with. Push delivery is
// never configured here; notifications created by admin runs are only stored.
type app struct {
	cfg       *config.Config
	db        *postgres.DB
	publisher events.Publisher
	log       *slog.Logger

	users        *user.Service
	transactions *transaction.Service
	transRepo    *postgres.TransactionRepository
	budgets      *budget.Service
	alerts       *budget.AlertService
	recurring    *recurring.Service
}

func openApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	log := logger.Init(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	db, err := postgres.New(cfg.Database.ConnectionString())
	if err != nil {
		return nil, err
	}
	log.Info("connected to database", "host", cfg.Database.Host, "name", cfg.Database.DBName)

	publisher, err := broker.New(cfg.Events)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	msgs, err := messages.Load(cfg.Firebase.MessagesFile)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	summaryCache := cache.New(cfg.Cache.TTL, cfg.Cache.CleanupInterval)
	accountRepo := postgres.NewAccountRepository(db)
	transactionRepo := postgres.NewTransactionRepository(db)
	budgetRepo := postgres.NewBudgetRepository(db)
	notifications := notification.NewService(postgres.NewNotificationRepository(db), nil)

	return &app{
		cfg:          cfg,
		db:           db,
		publisher:    publisher,
		log:          log,
		users:        user.NewService(postgres.NewUserRepository(db)),
		transactions: transaction.NewService(transactionRepo, accountRepo, publisher, summaryCache),
		transRepo:    transactionRepo,
		budgets:      budget.NewService(budgetRepo, summaryCache),
		alerts:       budget.NewAlertService(budgetRepo, notifications, msgs),
		recurring: recurring.NewService(recurring.Deps{
			Repo:      postgres.NewRecurringRepository(db),
			Accounts:  accountRepo,
			Notifier:  notifications,
			Publisher: publisher,
			Messages:  msgs,
			Cache:     summaryCache,
		}),
	}, nil
}

func (a *app) Close() {
	_ = a.publisher.Close()
	_ = a.db.Close()
}

// commandContext bounds a command by the --timeout flag.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	timeout, err := cmd.Flags().GetDuration("timeout")
	if err != nil || timeout <= 0 {
		timeout = defaultTimeout
	}
	return context.WithTimeout(cmd.Context(), timeout)
}

// parseUserIDs parses a comma-separated list such as "1, 2,3".
func parseUserIDs(s string) ([]int64, error) {
	var ids []int64
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid user ID %q", p)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
