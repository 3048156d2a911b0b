package cron

import (
	log "log/slog"

	"github.com/robfig/cron/v3"

	"Paystone/internal/api/config"
	"Paystone/internal/job"
)

type Manager struct {
	engine          *cron.Cron
	recomputeJob    *job.PayoutRecomputeJob
	monthlyCloseJob *job.MonthlyCloseJob
	snapshotPollJob *job.SnapshotPollJob
}

func NewCronManager(
	recomputeJob *job.PayoutRecomputeJob,
	monthlyCloseJob *job.MonthlyCloseJob,
	snapshotPollJob *job.SnapshotPollJob,
) *Manager {
	return &Manager{
		engine:          cron.New(cron.WithSeconds()),
		recomputeJob:    recomputeJob,
		monthlyCloseJob: monthlyCloseJob,
		snapshotPollJob: snapshotPollJob,
	}
}

// RegisterJobs 注册定时任务
func (s *Manager) RegisterJobs() error {
	cronCfg := config.Cfg.Cron

	if _, err := s.engine.AddJob(cronCfg.RecomputeSpec, s.recomputeJob); err != nil {
		return err
	}
	if _, err := s.engine.AddJob(cronCfg.MonthlyCloseSpec, s.monthlyCloseJob); err != nil {
		return err
	}
	if _, err := s.engine.AddJob(cronCfg.SnapshotPollSpec, s.snapshotPollJob); err != nil {
		return err
	}
	return nil
}

func (s *Manager) Start() {
	log.Info("Cron 定时任务引擎启动")
	s.engine.Start()
}

func (s *Manager) Stop() {
	log.Info("Cron 定时任务引擎停止")
	s.engine.Stop()
}
