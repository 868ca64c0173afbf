package service

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"planhub/internal/repo"

	"github.com/robfig/cron/v3"
)

// SchedulerService pre-generates the daily plan for every active user at a
// fixed local time each morning.
type SchedulerService struct {
	cron    *cron.Cron
	planner *PlannerService
	users   repo.UserRepo
	loc     *time.Location
	now     func() time.Time
}

func NewSchedulerService(planner *PlannerService, users repo.UserRepo, loc *time.Location) *SchedulerService {
	return &SchedulerService{
		cron:    cron.New(cron.WithLocation(loc)),
		planner: planner,
		users:   users,
		loc:     loc,
		now:     time.Now,
	}
}

// ScheduleDaily registers the plan-generation job at the given HH:MM.
func (s *SchedulerService) ScheduleDaily(timeStr string) (cron.EntryID, error) {
	spec, err := buildDailySpec(timeStr)
	if err != nil {
		return 0, err
	}
	return s.cron.AddFunc(spec, s.generateAll)
}

func (s *SchedulerService) Start() {
	s.cron.Start()
}

func (s *SchedulerService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *SchedulerService) generateAll() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	ids, err := s.users.ListActiveIDs(ctx)
	if err != nil {
		log.Printf("daily plan job: list users: %v", err)
		return
	}
	// День берём по часовому поясу планировщика, а не сервера.
	target := s.now().In(s.loc)
	var generated int
	for _, userID := range ids {
		lines, err := s.planner.GetOrGeneratePlan(ctx, userID, target)
		if err != nil {
			log.Printf("daily plan job: user %d: %v", userID, err)
			continue
		}
		generated += len(lines)
	}
	log.Printf("daily plan job: %d users, %d plan lines", len(ids), generated)
}

func buildDailySpec(timeStr string) (string, error) {
	parts := strings.Split(timeStr, ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid time %q, expected HH:MM", timeStr)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("invalid hour in %q", timeStr)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("invalid minute in %q", timeStr)
	}
	// cron format: minute hour dom month dow
	return fmt.Sprintf("%d %d * * *", minute, hour), nil
}
