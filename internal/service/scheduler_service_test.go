package service

import (
	"testing"
	"time"

	dom "planhub/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAll_KeysPlanToSchedulerTimezone(t *testing.T) {
	// 23:00 UTC 29 августа = 06:00 утра 30 августа в UTC+7.
	loc := time.FixedZone("UTC+7", 7*3600)
	firing := time.Date(2026, 8, 29, 23, 0, 0, 0, time.UTC)

	tasks := &taskRepoStub{tasks: []dom.Task{openTask(1, 1, dom.PriorityMedium, dom.TaskPending, nil)}}
	plans := &planRepoStub{}
	planner := NewPlannerService(tasks, plans, nil)
	planner.now = func() time.Time { return firing }

	users := &userRepoStub{users: []dom.User{{ID: 1, IsActive: true}}}
	sched := NewSchedulerService(planner, users, loc)
	sched.now = func() time.Time { return firing }

	sched.generateAll()

	require.Len(t, plans.lines, 1)
	want := time.Date(2026, 8, 30, 0, 0, 0, 0, loc)
	assert.True(t, plans.lines[0].Date.Equal(want), "plan keyed to %v, want %v", plans.lines[0].Date, want)
}

func TestBuildDailySpec(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "06:00", want: "0 6 * * *"},
		{in: "23:59", want: "59 23 * * *"},
		{in: "0:5", want: "5 0 * * *"},
		{in: "24:00", wantErr: true},
		{in: "06:60", wantErr: true},
		{in: "06", wantErr: true},
		{in: "six:30", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := buildDailySpec(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
