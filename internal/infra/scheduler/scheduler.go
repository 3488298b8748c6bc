package scheduler

import (
	"context"
	"time"

	"student_request_triage/internal/app"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// RefreshScheduler periodically reloads the request list from the
// source-of-record so new and updated requests show up without a restart.
type RefreshScheduler struct {
	cronEngine      *cron.Cron
	triageService   *app.TriageService
	logger          *logrus.Entry
	cronSpecRefresh string
}

func NewRefreshScheduler(triageService *app.TriageService, logger *logrus.Entry, cronSpecRefresh string) *RefreshScheduler {
	return &RefreshScheduler{
		cronEngine:      cron.New(cron.WithLocation(time.Local)),
		triageService:   triageService,
		logger:          logger,
		cronSpecRefresh: cronSpecRefresh,
	}
}

func (s *RefreshScheduler) Start() error {
	_, err := s.cronEngine.AddFunc(s.cronSpecRefresh, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		if err := s.triageService.Refresh(ctx); err != nil {
			s.logger.WithError(err).Error("Scheduled request list refresh failed")
		}
	})
	if err != nil {
		return err
	}

	s.cronEngine.Start()
	s.logger.WithField("spec", s.cronSpecRefresh).Info("Refresh scheduler started")
	return nil
}

func (s *RefreshScheduler) Stop() {
	s.logger.Info("Stopping refresh scheduler...")
	ctx := s.cronEngine.Stop() // Waits for a running refresh to finish.
	<-ctx.Done()
	s.logger.Info("Refresh scheduler stopped")
}
