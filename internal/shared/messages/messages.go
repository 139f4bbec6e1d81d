package messages

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// MessageText is a notification title and body. Body may contain
// {placeholders} filled in by Render.
type MessageText struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type Messages struct {
	BudgetExceeded    MessageText `json:"budget_exceeded"`
	BudgetWarning     MessageText `json:"budget_warning"`
	BudgetAlert       MessageText `json:"budget_alert"`
	BudgetUpdate      MessageText `json:"budget_update"`
	GoalAchieved      MessageText `json:"goal_achieved"`
	RecurringExecuted MessageText `json:"recurring_executed"`
}

func Defaults() *Messages {
	return &Messages{
		BudgetExceeded: MessageText{
			Title: "Budget Exceeded!",
			Body:  "You've spent {percent}% of your {budget} budget ({spent} of {amount}).",
		},
		BudgetWarning: MessageText{
			Title: "Budget Warning",
			Body:  "You've used {percent}% of your {budget} budget. Only {remaining} left.",
		},
		BudgetAlert: MessageText{
			Title: "Budget Alert",
			Body:  "You've used {percent}% of your {budget} budget.",
		},
		BudgetUpdate: MessageText{
			Title: "Budget Update",
			Body:  "You're halfway through your {budget} budget ({percent}% used).",
		},
		GoalAchieved: MessageText{
			Title: "Goal achieved",
			Body:  "Congratulations! You reached your goal \"{goal}\" of {amount}.",
		},
		RecurringExecuted: MessageText{
			Title: "Recurring transaction processed",
			Body:  "{description}: {amount} was recorded.",
		},
	}
}

// Load reads a JSON catalogue and overlays it on the defaults, so a file may
// override only some messages. An empty path returns the defaults.
func Load(path string) (*Messages, error) {
	m := Defaults()
	if path == "" {
		return m, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read messages file: %w", err)
	}

	var override Messages
	if err := json.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("failed to parse messages file: %w", err)
	}

	merge(&m.BudgetExceeded, override.BudgetExceeded)
	merge(&m.BudgetWarning, override.BudgetWarning)
	merge(&m.BudgetAlert, override.BudgetAlert)
	merge(&m.BudgetUpdate, override.BudgetUpdate)
	merge(&m.GoalAchieved, override.GoalAchieved)
	merge(&m.RecurringExecuted, override.RecurringExecuted)

	return m, nil
}

func merge(dst *MessageText, src MessageText) {
	if src.Title != "" {
		dst.Title = src.Title
	}
	if src.Body != "" {
		dst.Body = src.Body
	}
}

// Render replaces {key} placeholders in the body.
func (t MessageText) Render(vars map[string]string) string {
	if len(vars) == 0 {
		return t.Body
	}
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(t.Body)
}
