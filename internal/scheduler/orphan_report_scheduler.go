package scheduler

import (
	"github.com/ikkim/storybook-backend/internal/app/service"
	"github.com/ikkim/storybook-backend/internal/metrics"
	"github.com/ikkim/storybook-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// OrphanReportScheduler periodically logs stories whose age group or theme
// matches no stored record. It only reports; nothing is changed.
type OrphanReportScheduler struct {
	cron     *cron.Cron
	schedule string
	reports  service.ReportService
}

func NewOrphanReportScheduler(reports service.ReportService, schedule string) *OrphanReportScheduler {
	return &OrphanReportScheduler{
		cron:     cron.New(),
		schedule: schedule,
		reports:  reports,
	}
}

// Start registers the job and starts the cron loop.
func (s *OrphanReportScheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.Run); err != nil {
		logger.Error("Failed to add cron job for orphan report", err, map[string]interface{}{
			"schedule": s.schedule,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Orphan report scheduler started", map[string]interface{}{
		"schedule": s.schedule,
	})
	return nil
}

// Run produces one report. Exported so the CLI and tests can trigger it.
func (s *OrphanReportScheduler) Run() {
	report, err := s.reports.OrphanReport()
	if err != nil {
		logger.Error("Failed to build orphan report", err)
		return
	}

	metrics.OrphanedStories.Set(float64(len(report.Stories)))

	if report.Empty() {
		logger.Info("Orphan report: every story matches a stored age group and theme", nil)
		return
	}

	ids := make([]uint, 0, len(report.Stories))
	for _, story := range report.Stories {
		ids = append(ids, story.ID)
	}
	logger.Warn("Orphan report: stories reference unknown age groups or themes", map[string]interface{}{
		"count":              len(report.Stories),
		"story_ids":          ids,
		"unknown_age_groups": report.UnknownAgeGroups,
		"unknown_themes":     report.UnknownThemes,
	})
}

func (s *OrphanReportScheduler) Stop() {
	logger.Info("Stopping orphan report scheduler...", nil)
	<-s.cron.Stop().Done()
	logger.Info("Orphan report scheduler stopped", nil)
}
