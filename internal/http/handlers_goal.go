package http

import (
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/report"
)

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	targetCents, err := core.ParseDecimalToCents(strings.TrimSpace(r.Form.Get("target")))
	if err != nil {
		UnprocessableEntityError("Invalid target amount").Write(w)
		return
	}

	// The starting amount is optional and may legitimately be zero.
	var currentCents int64
	if v := strings.TrimSpace(r.Form.Get("current")); v != "" {
		currentCents, err = core.ParseNonNegativeToCents(v)
		if err != nil {
			UnprocessableEntityError("Invalid starting amount").Write(w)
			return
		}
	}

	goal := core.SavingsGoal{
		Name:    sanitizeInput(r.Form.Get("name")),
		Target:  core.Money{Cents: targetCents},
		Current: core.Money{Cents: currentCents},
	}
	goal.TargetDate, err = core.ParseDate(strings.TrimSpace(r.Form.Get("target_date")))
	if err != nil {
		UnprocessableEntityError("Invalid target date").Write(w)
		return
	}
	if err := goal.Validate(); err != nil {
		UnprocessableEntityError("Invalid data: " + err.Error()).Write(w)
		return
	}

	if _, err := s.store.InsertSavingsGoal(r.Context(), goal); err != nil {
		if errors.Is(err, core.ErrDuplicateName) {
			UnprocessableEntityError("A goal with this name already exists").Write(w)
			return
		}
		slog.ErrorContext(r.Context(), "Failed to save goal",
			"error", err, "goal_name", goal.Name, "operation", "create")
		InternalServerError("Error saving goal").Write(w)
		return
	}

	msg := fmt.Sprintf("Goal %q created with target %s", goal.Name, formatAmount(targetCents))

	NewHTMXResponse().
		TriggerGoalChanged().
		TriggerFormReset().
		TriggerSuccessNotification(msg).
		BodyHTML(`<div class="success">` + template.HTMLEscapeString(msg) + `</div>`).
		Write(w)
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	id, err := parseID(r.Form.Get("id"))
	if err != nil {
		BadRequestError("Missing goal id").Write(w)
		return
	}

	cents, err := core.ParseNonNegativeToCents(strings.TrimSpace(r.Form.Get("current")))
	if err != nil {
		UnprocessableEntityError("Invalid amount").Write(w)
		return
	}

	if err := s.store.UpdateSavingsGoalAmount(r.Context(), id, core.Money{Cents: cents}); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			ErrorResponse(http.StatusNotFound, "Goal not found").Write(w)
			return
		}
		slog.ErrorContext(r.Context(), "Failed to update goal",
			"error", err, "goal_id", id, "operation", "update")
		InternalServerError("Error updating goal").Write(w)
		return
	}

	NewHTMXResponse().
		TriggerGoalChanged().
		TriggerSuccessNotification("Goal progress updated").
		Write(w)
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodDelete, http.MethodPost); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	id, err := parseID(r.Form.Get("id"))
	if err != nil {
		BadRequestError("Missing goal id").Write(w)
		return
	}

	if err := s.store.DeleteSavingsGoal(r.Context(), id); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			ErrorResponse(http.StatusNotFound, "Goal not found").Write(w)
			return
		}
		slog.ErrorContext(r.Context(), "Failed to delete goal",
			"error", err, "goal_id", id, "operation", "delete")
		InternalServerError("Error deleting goal").Write(w)
		return
	}

	NewHTMXResponse().
		TriggerGoalChanged().
		TriggerSuccessNotification("Goal deleted").
		Write(w)
}

// goalRow is the template-friendly shape of a savings goal.
type goalRow struct {
	ID         int64
	Name       string
	Target     string
	Current    string
	Remaining  string
	Progress   string
	BarWidth   int
	Complete   bool
	TargetDate string
}

// handleGoalList renders all savings goals with progress bars.
func (s *Server) handleGoalList(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	goals, err := s.store.ListSavingsGoals(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "List goals error", "error", err)
		_, _ = w.Write([]byte(`<div class="placeholder">Error loading goals</div>`))
		return
	}

	items := make([]goalRow, 0, len(goals))
	for _, g := range goals {
		progress := report.GoalProgress(g)
		remaining := g.Target.Sub(g.Current)
		if remaining.Cents < 0 {
			remaining.Cents = 0
		}
		items = append(items, goalRow{
			ID:         g.ID,
			Name:       g.Name,
			Target:     formatAmount(g.Target.Cents),
			Current:    formatAmount(g.Current.Cents),
			Remaining:  formatAmount(remaining.Cents),
			Progress:   formatPercent(progress),
			BarWidth:   int(report.GoalRatio(g) * 100),
			Complete:   progress >= 100,
			TargetDate: g.TargetDate.String(),
		})
	}

	data := struct {
		Items []goalRow
	}{Items: items}

	if err := s.templates.ExecuteTemplate(w, "goal_list.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Goal list template failed", "error", err, "template", "goal_list.html")
		_, _ = w.Write([]byte(`<div class="placeholder">Error rendering goals</div>`))
	}
}
