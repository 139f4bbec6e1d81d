package transaction

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"fintrack/internal/shared/logger"
)

const (
	// DefaultWorkerCount is the default number of users checked concurrently
	DefaultWorkerCount = 4

	// DefaultBatchSize is the page size used while scanning a user's history
	DefaultBatchSize = 500
)

// DuplicateGroup is a set of transactions that share account, day, amount,
// type and description.
type DuplicateGroup struct {
	Key          string         `json:"key"`
	Transactions []*Transaction `json:"transactions"`
}

// DuplicateCheckResult contains the results of a duplicate check operation
type DuplicateCheckResult struct {
	TransactionsChecked int              `json:"transactions_checked"`
	DuplicatesFound     int              `json:"duplicates_found"`
	Groups              []DuplicateGroup `json:"groups"`
	Errors              []string         `json:"errors,omitempty"`
}

// DuplicateCheckService scans stored transactions for likely duplicates,
// typically left behind by importing the same CSV twice.
type DuplicateCheckService struct {
	repo        Repository
	workerCount int
	log         *slog.Logger
}

func NewDuplicateCheckService(repo Repository, workerCount int) *DuplicateCheckService {
	if workerCount <= 0 {
		workerCount = DefaultWorkerCount
	}
	return &DuplicateCheckService{
		repo:        repo,
		workerCount: workerCount,
		log:         logger.WithComponent("duplicates"),
	}
}

// DuplicateKey is the grouping key used by both the scan and import checks.
func DuplicateKey(t *Transaction) string {
	return fmt.Sprintf("%d|%s|%s|%s|%s",
		t.AccountID,
		t.Date.Format(dateLayout),
		t.Amount.StringFixed(2),
		t.Type,
		strings.ToLower(strings.TrimSpace(t.Description)),
	)
}

// GroupDuplicates returns every key shared by more than one transaction.
// Transfer legs are ignored. Groups are ordered by key.
func GroupDuplicates(transactions []*Transaction) []DuplicateGroup {
	byKey := make(map[string][]*Transaction)
	for _, t := range transactions {
		if t.IsTransfer() {
			continue
		}
		k := DuplicateKey(t)
		byKey[k] = append(byKey[k], t)
	}

	groups := make([]DuplicateGroup, 0)
	for k, txns := range byKey {
		if len(txns) > 1 {
			groups = append(groups, DuplicateGroup{Key: k, Transactions: txns})
		}
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Key < groups[j].Key })
	return groups
}

// CheckUser scans the whole history of a user in batches.
func (s *DuplicateCheckService) CheckUser(ctx context.Context, userID int64) (*DuplicateCheckResult, error) {
	s.log.InfoContext(ctx, "starting duplicate check", logger.FieldUserID, userID)

	var all []*Transaction
	for offset := 0; ; {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		batch, err := s.repo.ListByUserID(ctx, userID, DefaultBatchSize, offset)
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		offset += len(batch)

		if len(batch) < DefaultBatchSize {
			break
		}
	}

	result := &DuplicateCheckResult{
		TransactionsChecked: len(all),
		Groups:              GroupDuplicates(all),
	}
	for _, g := range result.Groups {
		// the first of each group is the original
		result.DuplicatesFound += len(g.Transactions) - 1
	}

	s.log.InfoContext(ctx, "duplicate check completed",
		logger.FieldUserID, userID,
		"checked", result.TransactionsChecked,
		"duplicates", result.DuplicatesFound,
		"groups", len(result.Groups),
	)
	return result, nil
}

// CheckUsers runs CheckUser for every user with bounded concurrency and
// returns a map of userID -> result. Failures are reported in the result.
func (s *DuplicateCheckService) CheckUsers(ctx context.Context, userIDs []int64) map[int64]*DuplicateCheckResult {
	results := make(map[int64]*DuplicateCheckResult, len(userIDs))
	var mu sync.Mutex
	var wg sync.WaitGroup

	sem := make(chan struct{}, s.workerCount)

	for _, userID := range userIDs {
		wg.Add(1)
		go func(uid int64) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				mu.Lock()
				results[uid] = &DuplicateCheckResult{Errors: []string{ctx.Err().Error()}}
				mu.Unlock()
				return
			}

			result, err := s.CheckUser(ctx, uid)
			if err != nil {
				result = &DuplicateCheckResult{Errors: []string{err.Error()}}
			}

			mu.Lock()
			results[uid] = result
			mu.Unlock()
		}(userID)
	}

	wg.Wait()
	return results
}
