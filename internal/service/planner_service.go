package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	dom "planhub/internal/domain"
	"planhub/internal/repo"
	"planhub/internal/utils"

	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/singleflight"
)

var (
	ErrTaskNotFound = errors.New("task not found")
	ErrNotAssignee  = errors.New("task not assigned to user")
)

// dailyPlanSize is how many tasks make it onto a day's plan.
const dailyPlanSize = 3

const completionMarker = "✅ COMPLETED"

// DayCache caches a user's plan lines per calendar day.
type DayCache interface {
	GetDay(ctx context.Context, userID int64, day time.Time) ([]dom.DailyPlanLine, error)
	SetDay(ctx context.Context, userID int64, day time.Time, lines []dom.DailyPlanLine) error
	InvalidateDay(ctx context.Context, userID int64, day time.Time) error
}

// PlannerService selects and ranks a user's top tasks for the day,
// persists them as an idempotent daily plan, and reconciles task
// completion back into the plan.
type PlannerService struct {
	tasks repo.TaskRepo
	plans repo.PlanRepo
	cache DayCache
	sf    singleflight.Group
	now   func() time.Time
}

// NewPlannerService creates a PlannerService. If c is nil, caching is disabled.
func NewPlannerService(tasks repo.TaskRepo, plans repo.PlanRepo, c DayCache) *PlannerService {
	return &PlannerService{tasks: tasks, plans: plans, cache: c, now: time.Now}
}

// GetOrGeneratePlan returns the daily plan for (userID, day of targetDate),
// generating and persisting it if it does not exist yet. The zero targetDate
// means "now". Repeated calls for the same day return the same records;
// a day with no open tasks yields an empty plan and no persisted rows.
func (s *PlannerService) GetOrGeneratePlan(ctx context.Context, userID int64, targetDate time.Time) ([]dom.DailyPlanLine, error) {
	if targetDate.IsZero() {
		targetDate = s.now()
	}
	dayStart, dayEnd := dayBounds(targetDate)

	key := fmt.Sprintf("plan:%d:%s", userID, dayStart.Format("2006-01-02"))
	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		return s.generate(ctx, userID, targetDate, dayStart, dayEnd)
	})
	if err != nil {
		return nil, err
	}
	return v.([]dom.DailyPlanLine), nil
}

func (s *PlannerService) generate(ctx context.Context, userID int64, targetDate, dayStart, dayEnd time.Time) ([]dom.DailyPlanLine, error) {
	existing, err := s.plans.FindLines(ctx, userID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return existing, nil
	}

	candidates, err := s.tasks.ListByAssigneeAndStatuses(ctx, userID,
		[]string{dom.TaskPending, dom.TaskInProgress})
	if err != nil {
		return nil, err
	}
	selected := selectTopTasks(candidates, targetDate)
	if len(selected) == 0 {
		return []dom.DailyPlanLine{}, nil
	}

	lines := make([]dom.DailyPlanLine, 0, len(selected))
	for i, t := range selected {
		taskID := t.ID
		lines = append(lines, dom.DailyPlanLine{
			Date:        dayStart,
			SummaryText: renderLabel(t, i+1, targetDate),
			UserID:      userID,
			TaskID:      &taskID,
		})
	}

	saved, err := s.plans.InsertLines(ctx, lines)
	if err != nil {
		// A concurrent caller won the insert; the unique (user, day, task)
		// constraint is the authoritative duplicate guard. Return its plan.
		if utils.IsPGUniqueViolation(err) {
			return s.plans.FindLines(ctx, userID, dayStart, dayEnd)
		}
		return nil, err
	}
	s.invalidateCache(ctx, userID, dayStart)
	return saved, nil
}

// selectTopTasks scores the candidates against refDate and returns up to
// dailyPlanSize of them, highest score first. The sort is stable, so ties
// keep candidate order and the result is reproducible for a fixed input.
func selectTopTasks(candidates []dom.Task, refDate time.Time) []dom.Task {
	if len(candidates) == 0 {
		return nil
	}
	scored := make([]dom.Task, len(candidates))
	copy(scored, candidates)
	sort.SliceStable(scored, func(i, j int) bool {
		return scoreTask(scored[i], refDate) > scoreTask(scored[j], refDate)
	})
	if len(scored) > dailyPlanSize {
		scored = scored[:dailyPlanSize]
	}
	return scored
}

// scoreTask is the additive priority score: priority rank ×10, +15 when
// in progress, a due-date urgency bonus and +5 for tasks older than 30 days.
func scoreTask(t dom.Task, refDate time.Time) int {
	score := dom.PriorityRank(t.Priority) * 10

	if t.Status == dom.TaskInProgress {
		score += 15
	}

	if t.DueDate != nil {
		switch d := wholeDaysBetween(refDate, *t.DueDate); {
		case d < 0:
			score += 50
		case d == 0:
			score += 40
		case d <= 3:
			score += 30
		case d <= 7:
			score += 20
		case d <= 14:
			score += 10
		}
	}

	if !t.CreatedAt.IsZero() && wholeDaysBetween(t.CreatedAt, refDate) > 30 {
		score += 5
	}

	return score
}

// wholeDaysBetween is the floored whole-day difference from `from` to `to`.
// Negative when `to` is in the past.
func wholeDaysBetween(from, to time.Time) int {
	return int(math.Floor(to.Sub(from).Hours() / 24))
}

func renderLabel(t dom.Task, rank int, refDate time.Time) string {
	var emoji string
	switch t.Priority {
	case dom.PriorityUrgent:
		emoji = "🔥"
	case dom.PriorityHigh:
		emoji = "⚡"
	case dom.PriorityLow:
		emoji = "💡"
	default:
		emoji = "📌"
	}

	var due string
	if t.DueDate != nil {
		switch d := wholeDaysBetween(refDate, *t.DueDate); {
		case d < 0:
			due = fmt.Sprintf(" (OVERDUE by %d days)", -d)
		case d == 0:
			due = " (DUE TODAY)"
		case d <= 3:
			due = fmt.Sprintf(" (Due in %d days)", d)
		}
	}

	return fmt.Sprintf("#%d %s %s%s", rank, emoji, t.Title, due)
}

// MarkTaskComplete sets the task to completed and reconciles today's plan
// line for it, if one exists. hoursWorked (minutes, stored verbatim) is
// optional. Completing an already completed task is a no-op and returns
// the task unchanged.
func (s *PlannerService) MarkTaskComplete(ctx context.Context, taskID, userID int64, hoursWorked *int) (dom.Task, error) {
	t, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Task{}, ErrTaskNotFound
		}
		return dom.Task{}, err
	}
	if t.AssigneeID == nil || *t.AssigneeID != userID {
		return dom.Task{}, ErrNotAssignee
	}
	if t.Status == dom.TaskCompleted {
		return t, nil
	}

	now := s.now()
	t.Status = dom.TaskCompleted
	t.CompletedAt = &now
	updated, err := s.tasks.Update(ctx, t)
	if err != nil {
		return dom.Task{}, err
	}

	dayStart, dayEnd := dayBounds(now)
	line, err := s.plans.FindLineForTask(ctx, userID, taskID, dayStart, dayEnd)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Task was not part of today's plan; nothing to reconcile.
			return updated, nil
		}
		return dom.Task{}, err
	}

	line.TasksCompleted = 1
	if hoursWorked != nil {
		line.HoursWorked = *hoursWorked
	}
	line.SummaryText = completedLabel(line.SummaryText)
	if err := s.plans.UpdateLine(ctx, line); err != nil {
		return dom.Task{}, err
	}
	s.invalidateCache(ctx, userID, dayStart)

	return updated, nil
}

// completedLabel rebuilds the label as "<base> - ✅ COMPLETED" without
// stacking markers when the task is completed more than once.
func completedLabel(label string) string {
	base, _, _ := strings.Cut(label, " - ")
	return base + " - " + completionMarker
}

// PlanSummary aggregates a user's plan for one day.
type PlanSummary struct {
	Date             time.Time
	TotalTasks       int
	CompletedTasks   int
	CompletionRate   float64
	TotalHoursWorked int
	Lines            []dom.DailyPlanLine
}

// GetPlanSummary aggregates the plan lines for (userID, day of date).
// Pure read; an empty day reports a zero completion rate.
func (s *PlannerService) GetPlanSummary(ctx context.Context, userID int64, date time.Time) (PlanSummary, error) {
	dayStart, dayEnd := dayBounds(date)

	lines, err := s.loadLines(ctx, userID, dayStart, dayEnd)
	if err != nil {
		return PlanSummary{}, err
	}

	summary := PlanSummary{Date: dayStart, Lines: lines, TotalTasks: len(lines)}
	for _, l := range lines {
		if l.TasksCompleted > 0 {
			summary.CompletedTasks++
		}
		summary.TotalHoursWorked += l.HoursWorked
	}
	if summary.TotalTasks > 0 {
		summary.CompletionRate = float64(summary.CompletedTasks) / float64(summary.TotalTasks) * 100
	}
	return summary, nil
}

func (s *PlannerService) loadLines(ctx context.Context, userID int64, dayStart, dayEnd time.Time) ([]dom.DailyPlanLine, error) {
	if s.cache == nil {
		return s.plans.FindLines(ctx, userID, dayStart, dayEnd)
	}
	key := fmt.Sprintf("summary:%d:%s", userID, dayStart.Format("2006-01-02"))
	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		if lines, err := s.cache.GetDay(ctx, userID, dayStart); err == nil && lines != nil {
			return lines, nil
		}
		lines, err := s.plans.FindLines(ctx, userID, dayStart, dayEnd)
		if err != nil {
			return nil, err
		}
		if lines == nil {
			// Пустой день тоже кэшируем: nil в JSON — это null, на чтении он
			// неотличим от промаха.
			lines = []dom.DailyPlanLine{}
		}
		_ = s.cache.SetDay(ctx, userID, dayStart, lines)
		return lines, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]dom.DailyPlanLine), nil
}

func (s *PlannerService) invalidateCache(ctx context.Context, userID int64, day time.Time) {
	if s.cache != nil {
		_ = s.cache.InvalidateDay(ctx, userID, day)
	}
}

// dayBounds returns [00:00:00.000000, 23:59:59.999999] of t's calendar day,
// in t's location.
func dayBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	end := time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999999000, t.Location())
	return start, end
}
