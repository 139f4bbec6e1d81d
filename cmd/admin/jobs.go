package main

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"fintrack/internal/domain/transaction"
	"fintrack/internal/shared/logger"
)

func newRecurringCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recurring",
		Short: "Recurring transaction maintenance",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "process",
		Short: "Run every due recurring transaction once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := commandContext(cmd)
			defer cancel()

			start := time.Now()
			result, err := a.recurring.ProcessDue(ctx)
			if err != nil {
				return err
			}

			cmd.Printf("processed:   %d\n", result.Processed)
			cmd.Printf("deactivated: %d\n", result.Deactivated)
			cmd.Printf("failed:      %d\n", result.Failed)
			printErrors(cmd, result.Errors)
			a.log.Info("recurring processing completed", "elapsed", time.Since(start))
			return nil
		},
	})

	return cmd
}

func newBudgetsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budgets",
		Short: "Budget maintenance",
	}

	var userIDs string
	var all bool
	var workers int

	check := &cobra.Command{
		Use:   "check",
		Short: "Evaluate budget thresholds and send alerts",
		Example: `  admin budgets check --user-id=1
  admin budgets check --user-id=1,2,3
  admin budgets check --all --workers=8`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if userIDs == "" && !all {
				return errors.New("must specify --user-id or --all")
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := commandContext(cmd)
			defer cancel()

			var ids []int64
			if all {
				ids, err = a.budgets.UsersWithActiveBudgets(ctx)
			} else {
				ids, err = parseUserIDs(userIDs)
			}
			if err != nil {
				return err
			}
			if len(ids) == 0 {
				cmd.Println("no users to process")
				return nil
			}

			a.log.Info("starting budget check", "users", len(ids), "workers", workers)

			var mu sync.Mutex
			sent := make(map[int64]int, len(ids))
			failed := make(map[int64]error)

			g, gctx := errgroup.WithContext(ctx)
			g.SetLimit(max(workers, 1))
			for _, id := range ids {
				g.Go(func() error {
					n, err := a.alerts.CheckUser(gctx, id, "")
					mu.Lock()
					defer mu.Unlock()
					if err != nil {
						failed[id] = err
						a.log.Warn("budget check failed", logger.FieldUserID, id, logger.Err(err))
						return nil
					}
					sent[id] = n
					return nil
				})
			}
			_ = g.Wait()

			sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
			for _, id := range ids {
				if err, ok := failed[id]; ok {
					cmd.Printf("user %d: error: %v\n", id, err)
					continue
				}
				cmd.Printf("user %d: %d alert(s) sent\n", id, sent[id])
			}
			return nil
		},
	}

	check.Flags().StringVar(&userIDs, "user-id", "", "user ID(s) to check, comma-separated")
	check.Flags().BoolVar(&all, "all", false, "check every user with an active budget")
	check.Flags().IntVar(&workers, "workers", transaction.DefaultWorkerCount, "number of concurrent workers")
	check.MarkFlagsMutuallyExclusive("user-id", "all")

	cmd.AddCommand(check)
	return cmd
}

func newDuplicatesCommand() *cobra.Command {
	var userIDs string
	var all bool
	var workers int

	cmd := &cobra.Command{
		Use:   "duplicates",
		Short: "List groups of likely duplicate transactions",
		Example: `  admin duplicates --user-id=1
  admin duplicates --all --workers=8 --timeout=1h`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if userIDs == "" && !all {
				return errors.New("must specify --user-id or --all")
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := commandContext(cmd)
			defer cancel()

			var ids []int64
			if all {
				users, err := a.users.ListUsers(ctx)
				if err != nil {
					return err
				}
				for _, u := range users {
					ids = append(ids, u.ID)
				}
			} else if ids, err = parseUserIDs(userIDs); err != nil {
				return err
			}
			if len(ids) == 0 {
				cmd.Println("no users to process")
				return nil
			}

			svc := transaction.NewDuplicateCheckService(a.transRepo, workers)
			start := time.Now()
			results := svc.CheckUsers(ctx, ids)

			sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
			for _, id := range ids {
				printDuplicates(cmd, id, results[id])
			}
			a.log.Info("duplicate check completed", "users", len(ids), "elapsed", time.Since(start))
			return nil
		},
	}

	cmd.Flags().StringVar(&userIDs, "user-id", "", "user ID(s) to check, comma-separated")
	cmd.Flags().BoolVar(&all, "all", false, "check every user")
	cmd.Flags().IntVar(&workers, "workers", transaction.DefaultWorkerCount, "number of concurrent workers")
	cmd.MarkFlagsMutuallyExclusive("user-id", "all")

	return cmd
}

func printDuplicates(cmd *cobra.Command, userID int64, result *transaction.DuplicateCheckResult) {
	cmd.Printf("\n=== User %d ===\n", userID)
	if result == nil {
		cmd.Println("  no result")
		return
	}
	cmd.Printf("  Transactions checked: %d\n", result.TransactionsChecked)
	cmd.Printf("  Duplicates found:     %d\n", result.DuplicatesFound)

	for _, g := range result.Groups {
		cmd.Printf("  - %s\n", g.Key)
		for _, t := range g.Transactions {
			cmd.Printf("      #%d %s %s %s\n", t.ID, t.Date.Format(time.DateOnly), t.Amount.StringFixed(2), t.Description)
		}
	}
	printErrors(cmd, result.Errors)
}

func printErrors(cmd *cobra.Command, errs []string) {
	if len(errs) == 0 {
		return
	}
	cmd.Printf("  Errors: %d\n", len(errs))
	for i, e := range errs {
		if i >= 5 {
			cmd.Printf("    ... and %d more errors\n", len(errs)-5)
			break
		}
		cmd.Printf("    - %s\n", e)
	}
}
