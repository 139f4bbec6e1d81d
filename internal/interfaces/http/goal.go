package http

import (
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"fintrack/internal/domain/goal"
	"fintrack/internal/shared/logger"
)

type GoalHandler struct {
	goals *goal.Service
	log   *slog.Logger
}

func NewGoalHandler(goals *goal.Service) *GoalHandler {
	return &GoalHandler{goals: goals, log: logger.WithComponent("http.goal")}
}

type CreateGoalRequest struct {
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	TargetAmount  decimal.Decimal `json:"target_amount"`
	CurrentAmount decimal.Decimal `json:"current_amount"`
	Currency      string          `json:"currency"`
	Category      string          `json:"category"`
	Icon          string          `json:"icon"`
	Color         string          `json:"color"`
	TargetDate    *flexDate       `json:"target_date"`
	StartDate     *flexDate       `json:"start_date"`
	AccountID     *int64          `json:"account_id"`
	Priority      int             `json:"priority"`
}

type UpdateGoalRequest struct {
	Name          *string          `json:"name"`
	Description   *string          `json:"description"`
	TargetAmount  *decimal.Decimal `json:"target_amount"`
	CurrentAmount *decimal.Decimal `json:"current_amount"`
	Currency      *string          `json:"currency"`
	Category      *string          `json:"category"`
	Icon          *string          `json:"icon"`
	Color         *string          `json:"color"`
	TargetDate    *flexDate        `json:"target_date"`
	AccountID     *int64           `json:"account_id"`
	Priority      *int             `json:"priority"`
}

type ContributeRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

// HandleList GET /api/goals
func (h *GoalHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	goals, err := h.goals.ListGoals(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, goals)
}

// HandleCreate POST /api/goals
func (h *GoalHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req CreateGoalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	params := goal.CreateParams{
		UserID:        userID,
		Name:          req.Name,
		Description:   req.Description,
		TargetAmount:  req.TargetAmount,
		CurrentAmount: req.CurrentAmount,
		Currency:      req.Currency,
		Category:      req.Category,
		Icon:          req.Icon,
		Color:         req.Color,
		TargetDate:    req.TargetDate.ptr(),
		AccountID:     req.AccountID,
		Priority:      req.Priority,
	}
	if d := req.StartDate.ptr(); d != nil {
		params.StartDate = *d
	}

	g, err := h.goals.CreateGoal(r.Context(), params)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

// HandleGet GET /api/goals/{id}
func (h *GoalHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	g, err := h.goals.GetGoal(r.Context(), id, userID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// HandleUpdate PUT /api/goals/{id}
func (h *GoalHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	var req UpdateGoalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	g, err := h.goals.UpdateGoal(r.Context(), id, userID, goal.UpdateParams{
		Name:          req.Name,
		Description:   req.Description,
		TargetAmount:  req.TargetAmount,
		CurrentAmount: req.CurrentAmount,
		Currency:      req.Currency,
		Category:      req.Category,
		Icon:          req.Icon,
		Color:         req.Color,
		TargetDate:    req.TargetDate.ptr(),
		AccountID:     req.AccountID,
		Priority:      req.Priority,
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// HandleDelete DELETE /api/goals/{id}
func (h *GoalHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	if err := h.goals.DeleteGoal(r.Context(), id, userID); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleContribute POST /api/goals/{id}/contribute
func (h *GoalHandler) HandleContribute(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	var req ContributeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	g, err := h.goals.Contribute(r.Context(), id, userID, goal.ContributeParams{
		Amount:      req.Amount,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// HandleCategories GET /api/goals/categories
func (h *GoalHandler) HandleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, goal.Categories())
}

// HandleSummary GET /api/goals/summary
func (h *GoalHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	summary, err := h.goals.GetSummary(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
