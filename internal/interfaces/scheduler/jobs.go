package scheduler

import (
	"context"
	"fmt"

	"fintrack/internal/domain/recurring"
)

// RecurringProcessor materialises due recurring transactions.
type RecurringProcessor interface {
	UsersWithDue(ctx context.Context) ([]int64, error)
	ProcessUser(ctx context.Context, userID int64) (*recurring.ProcessResult, error)
}

// BudgetSource lists users whose budgets should be checked.
type BudgetSource interface {
	UsersWithActiveBudgets(ctx context.Context) ([]int64, error)
}

// BudgetChecker sends budget alerts. An empty category checks every budget.
type BudgetChecker interface {
	CheckUser(ctx context.Context, userID int64, category string) (int, error)
}

// RecurringUserJob runs the due recurring transactions of one user.
type RecurringUserJob struct {
	userID    int64
	processor RecurringProcessor
}

func NewRecurringUserJob(userID int64, processor RecurringProcessor) *RecurringUserJob {
	return &RecurringUserJob{userID: userID, processor: processor}
}

func (j *RecurringUserJob) Execute(ctx context.Context) error {
	result, err := j.processor.ProcessUser(ctx, j.userID)
	if err != nil {
		return fmt.Errorf("processing recurring transactions: %w", err)
	}
	if result.Failed > 0 {
		return fmt.Errorf("%d of %d recurring transactions failed", result.Failed, result.Processed+result.Deactivated+result.Failed)
	}
	return nil
}

func (j *RecurringUserJob) UserID() int64 { return j.userID }

func (j *RecurringUserJob) Description() string {
	return fmt.Sprintf("recurring transactions for user %d", j.userID)
}

// BudgetCheckJob evaluates every active budget of one user.
type BudgetCheckJob struct {
	userID  int64
	checker BudgetChecker
}

func NewBudgetCheckJob(userID int64, checker BudgetChecker) *BudgetCheckJob {
	return &BudgetCheckJob{userID: userID, checker: checker}
}

func (j *BudgetCheckJob) Execute(ctx context.Context) error {
	if _, err := j.checker.CheckUser(ctx, j.userID, ""); err != nil {
		return fmt.Errorf("checking budgets: %w", err)
	}
	return nil
}

func (j *BudgetCheckJob) UserID() int64 { return j.userID }

func (j *BudgetCheckJob) Description() string {
	return fmt.Sprintf("budget check for user %d", j.userID)
}

// NewJobProvider builds the provider for a scheduled run: one recurring job
// per user with due templates, then one budget job per user with active
// budgets. Recurring jobs are queued first.
func NewJobProvider(processor RecurringProcessor, budgets BudgetSource, checker BudgetChecker) JobProvider {
	return func(ctx context.Context) ([]Job, error) {
		dueUsers, err := processor.UsersWithDue(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing users with due recurring transactions: %w", err)
		}
		budgetUsers, err := budgets.UsersWithActiveBudgets(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing users with active budgets: %w", err)
		}

		jobs := make([]Job, 0, len(dueUsers)+len(budgetUsers))
		for _, id := range dueUsers {
			jobs = append(jobs, NewRecurringUserJob(id, processor))
		}
		for _, id := range budgetUsers {
			jobs = append(jobs, NewBudgetCheckJob(id, checker))
		}
		return jobs, nil
	}
}
