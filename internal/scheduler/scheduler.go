// Package scheduler runs the periodic jobs: daily, weekly and monthly
// reports posted to the configured chat, and the monthly recurring-expense
// injection.
package scheduler

import (
	"context"
	"fmt"
	"sort"
	"time"

	"fjacquet/receipt-bot/internal/bot"
	"fjacquet/receipt-bot/internal/config"
	"fjacquet/receipt-bot/internal/logging"
	"fjacquet/receipt-bot/internal/report"

	"github.com/robfig/cron/v3"
)

// Job names, also used as log field values.
const (
	JobDailyReport   = "daily_report"
	JobWeeklyReport  = "weekly_report"
	JobMonthlyReport = "monthly_report"
	JobRecurring     = "recurring"
)

// ReportBuilder renders a report into chat actions.
type ReportBuilder interface {
	ReportActions(kind report.Kind, at time.Time) ([]bot.Action, error)
}

// Executor delivers actions to a chat.
type Executor interface {
	Execute(chatID int64, actions []bot.Action) error
}

// RecurringApplier materializes the month's recurring expenses.
type RecurringApplier interface {
	AddMonthlyExpenses() (int, error)
}

// Scheduler owns the cron runner and the job bodies.
type Scheduler struct {
	cron      *cron.Cron
	reports   ReportBuilder
	executor  Executor
	recurring RecurringApplier
	chatID    int64
	now       func() time.Time
	logger    logging.Logger
	jobs      []string
}

// Deps groups the collaborators the jobs call.
type Deps struct {
	Reports   ReportBuilder
	Executor  Executor
	Recurring RecurringApplier
	ChatID    int64
	// Now defaults to time.Now.
	Now func() time.Time
}

// New registers every job whose cron expression is non-empty. Expressions
// are evaluated in loc.
func New(cfg config.ScheduleConfig, loc *time.Location, deps Deps, logger logging.Logger) (*Scheduler, error) {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	logger = logger.WithField(logging.FieldComponent, "scheduler")
	adapter := cronLogger{logger: logger}

	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(adapter),
			cron.WithChain(cron.Recover(adapter)),
		),
		reports:   deps.Reports,
		executor:  deps.Executor,
		recurring: deps.Recurring,
		chatID:    deps.ChatID,
		now:       deps.Now,
		logger:    logger,
	}

	bodies := map[string]func(){
		JobDailyReport:   s.RunDailyReport,
		JobWeeklyReport:  s.RunWeeklyReport,
		JobMonthlyReport: s.RunMonthlyReport,
		JobRecurring:     s.RunRecurring,
	}
	specs := cfg.Jobs()
	names := make([]string, 0, len(specs))
	for name := range specs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		spec := specs[name]
		if spec == "" {
			logger.Info("Job disabled", logging.F(logging.FieldJob, name))
			continue
		}
		body, ok := bodies[name]
		if !ok {
			continue
		}
		if _, err := s.cron.AddFunc(spec, body); err != nil {
			return nil, fmt.Errorf("invalid schedule %q for %s: %w", spec, name, err)
		}
		s.jobs = append(s.jobs, name)
		logger.Info("Job scheduled", logging.F(logging.FieldJob, name), logging.F(logging.FieldSchedule, spec))
	}
	return s, nil
}

// Jobs lists the registered job names in sorted order.
func (s *Scheduler) Jobs() []string {
	return append([]string(nil), s.jobs...)
}

// Run starts the cron runner and blocks until ctx is done, then waits for
// running jobs to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	s.cron.Start()
	<-ctx.Done()
	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")
	return nil
}

func (s *Scheduler) RunDailyReport()  { s.sendReport(JobDailyReport, report.KindDaily, s.now()) }
func (s *Scheduler) RunWeeklyReport() { s.sendReport(JobWeeklyReport, report.KindWeekly, s.now()) }

// RunMonthlyReport fires on the first of the month and reports the month
// that just ended.
func (s *Scheduler) RunMonthlyReport() {
	s.sendReport(JobMonthlyReport, report.KindMonthly, s.now().AddDate(0, 0, -1))
}

// RunRecurring adds this month's recurring expenses.
func (s *Scheduler) RunRecurring() {
	log := s.logger.WithField(logging.FieldJob, JobRecurring)
	added, err := s.recurring.AddMonthlyExpenses()
	if err != nil {
		log.WithError(err).Error("Failed to add recurring expenses")
		return
	}
	log.Info("Recurring expenses added", logging.F(logging.FieldCount, added))
}

// sendReport is fire-and-forget: failures are logged and the run is abandoned.
func (s *Scheduler) sendReport(job string, kind report.Kind, at time.Time) {
	log := s.logger.WithFields(logging.F(logging.FieldJob, job), logging.F(logging.FieldReport, string(kind)))
	actions, err := s.reports.ReportActions(kind, at)
	if err != nil {
		log.WithError(err).Error("Failed to build scheduled report")
		return
	}
	if err := s.executor.Execute(s.chatID, actions); err != nil {
		log.WithError(err).Error("Failed to send scheduled report")
		return
	}
	log.Info("Scheduled report sent")
}

// cronLogger bridges cron's key/value logger to logging.Logger.
type cronLogger struct {
	logger logging.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, pairs(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.WithError(err).Error("cron: "+msg, pairs(keysAndValues)...)
}

func pairs(kv []interface{}) []logging.Field {
	fields := make([]logging.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		fields = append(fields, logging.F(fmt.Sprint(kv[i]), kv[i+1]))
	}
	return fields
}
