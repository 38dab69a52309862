package server

import (
	"context"
	"time"

	"divination-bot/internal/bot"
	"divination-bot/internal/conf"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/robfig/cron/v3"
)

// defaultDailySchedule fires the daily card at 09:25 local time.
const defaultDailySchedule = "0 25 9 * * *"

// CronServer runs scheduled jobs as a kratos transport server.
type CronServer struct {
	cron *cron.Cron
	job  *bot.DailyCardJob
	conf *conf.Bootstrap
	log  *log.Helper
}

// NewCronServer creates the scheduler. An unknown timezone falls back to
// Europe/Moscow, then UTC.
func NewCronServer(c *conf.Bootstrap, job *bot.DailyCardJob, logger log.Logger) *CronServer {
	helper := log.NewHelper(logger)

	tz := ""
	if c.Bot != nil && c.Bot.DailyCard != nil {
		tz = c.Bot.DailyCard.Timezone
	}
	if tz == "" {
		tz = "Europe/Moscow"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		helper.Warnf("unknown timezone %q, using UTC", tz)
		loc = time.UTC
	}

	return &CronServer{
		cron: cron.New(cron.WithSeconds(), cron.WithLocation(loc)),
		job:  job,
		conf: c,
		log:  helper,
	}
}

// Start registers the jobs and starts the scheduler.
func (s *CronServer) Start(ctx context.Context) error {
	schedule := defaultDailySchedule
	if s.conf.Bot != nil && s.conf.Bot.DailyCard != nil && s.conf.Bot.DailyCard.Schedule != "" {
		schedule = s.conf.Bot.DailyCard.Schedule
	}

	if _, err := s.cron.AddFunc(schedule, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()
		s.job.SendDailyCards(jobCtx)
	}); err != nil {
		return err
	}

	s.log.Infof("cron started, daily card schedule %q", schedule)
	s.cron.Start()
	return nil
}

// Stop halts scheduling and gives the running job a grace period.
func (s *CronServer) Stop(ctx context.Context) error {
	s.log.Info("cron stopping")
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(5 * time.Second):
		s.log.Warn("cron job still running at shutdown")
	case <-ctx.Done():
	}
	return nil
}
