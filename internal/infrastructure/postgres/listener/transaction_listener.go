package listener

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/lib/pq"

	"fintrack/internal/shared/logger"
)

const (
	ChannelTransactionChanged = "transaction_changed"

	reconnectInterval = 5 * time.Second
	pingInterval      = 90 * time.Second
	checkTimeout      = 30 * time.Second
)

// TransactionChange is the payload of the transaction_changed trigger.
type TransactionChange struct {
	UserID   int64  `json:"user_id"`
	Category string `json:"category"`
	Op       string `json:"op"`
}

// BudgetChecker evaluates a user's budgets after an expense write.
type BudgetChecker interface {
	CheckUser(ctx context.Context, userID int64, category string) (int, error)
}

// TransactionListener consumes expense changes published by the database and
// runs the budget alert check for the affected user and category.
type TransactionListener struct {
	connStr    string
	checker    BudgetChecker
	log        *slog.Logger
	shutdownCh chan struct{}
	done       chan struct{}
	wg         sync.WaitGroup
}

func NewTransactionListener(connStr string, checker BudgetChecker) *TransactionListener {
	return &TransactionListener{
		connStr:    connStr,
		checker:    checker,
		log:        logger.WithComponent("transaction_listener"),
		shutdownCh: make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start begins listening in a background goroutine.
func (l *TransactionListener) Start(ctx context.Context) {
	go l.listen(ctx)
	l.log.Info("transaction listener started", "channel", ChannelTransactionChanged)
}

// Stop shuts the listener down and waits for in-flight checks.
func (l *TransactionListener) Stop() {
	close(l.shutdownCh)
	<-l.done
	l.wg.Wait()
	l.log.Info("transaction listener stopped")
}

func (l *TransactionListener) listen(ctx context.Context) {
	defer close(l.done)

	for {
		select {
		case <-l.shutdownCh:
			return
		case <-ctx.Done():
			return
		default:
			l.connectAndListen(ctx)
		}

		select {
		case <-l.shutdownCh:
			return
		case <-ctx.Done():
			return
		case <-time.After(reconnectInterval):
			l.log.Info("reconnecting to notification channel")
		}
	}
}

func (l *TransactionListener) connectAndListen(ctx context.Context) {
	pl := pq.NewListener(l.connStr, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		switch ev {
		case pq.ListenerEventConnected:
			l.log.Info("connected to notification channel")
		case pq.ListenerEventDisconnected:
			l.log.Warn("disconnected from notification channel", logger.Err(err))
		case pq.ListenerEventReconnected:
			l.log.Info("reconnected to notification channel")
		case pq.ListenerEventConnectionAttemptFailed:
			l.log.Error("notification channel connection attempt failed", logger.Err(err))
		}
	})
	defer pl.Close()

	if err := pl.Listen(ChannelTransactionChanged); err != nil {
		l.log.Error("failed to listen", "channel", ChannelTransactionChanged, logger.Err(err))
		return
	}

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.shutdownCh:
			return
		case <-ctx.Done():
			return
		case n := <-pl.Notify:
			if n == nil {
				// connection lost; pq reconnects and we re-LISTEN
				return
			}
			l.handle(n.Extra)
		case <-ticker.C:
			go func() {
				if err := pl.Ping(); err != nil {
					l.log.Warn("listener ping failed", logger.Err(err))
				}
			}()
		}
	}
}

func (l *TransactionListener) handle(extra string) {
	change, err := ParseChange(extra)
	if err != nil {
		l.log.Warn("failed to parse notification payload", logger.Err(err))
		return
	}

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		// detached from the listen context so shutdown does not cut a check short
		ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
		defer cancel()

		sent, err := l.checker.CheckUser(ctx, change.UserID, change.Category)
		if err != nil {
			l.log.Error("budget check failed",
				logger.FieldUserID, change.UserID,
				"category", change.Category,
				logger.Err(err),
			)
			return
		}
		if sent > 0 {
			l.log.Info("budget alerts sent", logger.FieldUserID, change.UserID, "count", sent)
		}
	}()
}

// ParseChange decodes a trigger payload.
func ParseChange(extra string) (TransactionChange, error) {
	var c TransactionChange
	err := json.Unmarshal([]byte(extra), &c)
	return c, err
}
