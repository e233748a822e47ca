package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"fjacquet/receipt-bot/internal/bot"
	"fjacquet/receipt-bot/internal/config"
	"fjacquet/receipt-bot/internal/logging"
	"fjacquet/receipt-bot/internal/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reportCall struct {
	kind report.Kind
	at   time.Time
}

type fakeReports struct {
	calls []reportCall
	err   error
}

func (f *fakeReports) ReportActions(kind report.Kind, at time.Time) ([]bot.Action, error) {
	f.calls = append(f.calls, reportCall{kind: kind, at: at})
	if f.err != nil {
		return nil, f.err
	}
	return []bot.Action{bot.SendText{Text: string(kind)}}, nil
}

type fakeExecutor struct {
	chatIDs []int64
	actions [][]bot.Action
	err     error
}

func (f *fakeExecutor) Execute(chatID int64, actions []bot.Action) error {
	f.chatIDs = append(f.chatIDs, chatID)
	f.actions = append(f.actions, actions)
	return f.err
}

type fakeRecurring struct {
	calls int
	err   error
}

func (f *fakeRecurring) AddMonthlyExpenses() (int, error) {
	f.calls++
	return 2, f.err
}

var firstOfMarch = time.Date(2024, 3, 1, 21, 0, 0, 0, time.UTC)

func newScheduler(t *testing.T, cfg config.ScheduleConfig) (*Scheduler, *fakeReports, *fakeExecutor, *fakeRecurring, *logging.MockLogger) {
	t.Helper()
	reports := &fakeReports{}
	exec := &fakeExecutor{}
	recurring := &fakeRecurring{}
	logger := logging.NewMockLogger()
	s, err := New(cfg, time.UTC, Deps{
		Reports:   reports,
		Executor:  exec,
		Recurring: recurring,
		ChatID:    -42,
		Now:       func() time.Time { return firstOfMarch },
	}, logger)
	require.NoError(t, err)
	return s, reports, exec, recurring, logger
}

func defaultSchedule() config.ScheduleConfig {
	return config.ScheduleConfig{
		Enabled:       true,
		DailyReport:   "0 21 * * *",
		WeeklyReport:  "0 21 * * 0",
		MonthlyReport: "0 21 1 * *",
		Recurring:     "0 0 1 * *",
	}
}

func TestNew_RegistersJobs(t *testing.T) {
	s, _, _, _, _ := newScheduler(t, defaultSchedule())
	assert.Equal(t, []string{JobDailyReport, JobMonthlyReport, JobRecurring, JobWeeklyReport}, s.Jobs())
}

func TestNew_SkipsEmptySpecs(t *testing.T) {
	cfg := defaultSchedule()
	cfg.WeeklyReport = ""
	cfg.Recurring = ""
	s, _, _, _, logger := newScheduler(t, cfg)
	assert.Equal(t, []string{JobDailyReport, JobMonthlyReport}, s.Jobs())
	assert.Len(t, logger.EntriesByLevel("INFO"), 4)
}

func TestNew_InvalidSpec(t *testing.T) {
	cfg := defaultSchedule()
	cfg.DailyReport = "every day at nine"
	_, err := New(cfg, time.UTC, Deps{}, logging.NewMockLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), JobDailyReport)
}

func TestJobs_SendReports(t *testing.T) {
	s, reports, exec, _, _ := newScheduler(t, defaultSchedule())

	s.RunDailyReport()
	s.RunWeeklyReport()
	s.RunMonthlyReport()

	require.Len(t, reports.calls, 3)
	assert.Equal(t, report.KindDaily, reports.calls[0].kind)
	assert.Equal(t, firstOfMarch, reports.calls[0].at)
	assert.Equal(t, report.KindWeekly, reports.calls[1].kind)
	assert.Equal(t, report.KindMonthly, reports.calls[2].kind)
	assert.Equal(t, time.February, reports.calls[2].at.Month())

	assert.Equal(t, []int64{-42, -42, -42}, exec.chatIDs)
	assert.Equal(t, []bot.Action{bot.SendText{Text: "daily"}}, exec.actions[0])
}

func TestJobs_FailuresAreLogged(t *testing.T) {
	s, reports, exec, recurring, logger := newScheduler(t, defaultSchedule())

	reports.err = errors.New("disk")
	s.RunDailyReport()
	assert.Empty(t, exec.chatIDs)
	assert.True(t, logger.HasEntry("ERROR", "Failed to build scheduled report"))

	reports.err = nil
	exec.err = errors.New("telegram down")
	s.RunWeeklyReport()
	assert.True(t, logger.HasEntry("ERROR", "Failed to send scheduled report"))

	recurring.err = errors.New("boom")
	s.RunRecurring()
	assert.True(t, logger.HasEntry("ERROR", "Failed to add recurring expenses"))
}

func TestRunRecurring(t *testing.T) {
	s, _, _, recurring, logger := newScheduler(t, defaultSchedule())
	s.RunRecurring()
	assert.Equal(t, 1, recurring.calls)

	entries := logger.EntriesByLevel("INFO")
	last := entries[len(entries)-1]
	assert.Equal(t, "Recurring expenses added", last.Message)
	count, ok := last.Field(logging.FieldCount)
	assert.True(t, ok)
	assert.Equal(t, 2, count)
}

func TestRun_StopsOnCancel(t *testing.T) {
	s, _, _, _, logger := newScheduler(t, defaultSchedule())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
	assert.True(t, logger.HasEntry("INFO", "Scheduler stopped"))
}

func TestCronLogger(t *testing.T) {
	logger := logging.NewMockLogger()
	l := cronLogger{logger: logger}
	l.Info("start", "entries", 4)
	l.Error(errors.New("bad"), "panic", "job", "x", "dangling")

	debug := logger.EntriesByLevel("DEBUG")
	require.Len(t, debug, 1)
	v, ok := debug[0].Field("entries")
	assert.True(t, ok)
	assert.Equal(t, 4, v)

	errs := logger.EntriesByLevel("ERROR")
	require.Len(t, errs, 1)
	assert.Equal(t, "cron: panic", errs[0].Message)
	assert.Len(t, errs[0].Fields, 1)
	assert.EqualError(t, errs[0].Error, "bad")
}
