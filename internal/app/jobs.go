package app

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// StartJobs schedules background jobs and starts the cron runner.
func (a *Application) StartJobs() error {
	loc, err := time.LoadLocation(a.appConfig.System.Location)
	if err != nil {
		loc = time.Local
	}
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	spec := a.appConfig.Jobs.SweepSpec
	if spec == "" {
		spec = "@every 1h"
	}
	_, err = a.sched.AddFunc(spec, func() {
		a.SchedSweepUploadsTask()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
		return err
	}

	a.sched.Start()
	return nil
}

// SchedSweepUploadsTask upload sweeper
func (a *Application) SchedSweepUploadsTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()
	if _, err := a.SweepUploads(); err != nil {
		zap.L().Error("upload sweep failed", zap.Error(err))
	}
}

// SweepUploads deletes stored images older than the grace period that no product
// references. Files inside the grace period may belong to a request still in flight.
func (a *Application) SweepUploads() (int, error) {
	ctx := context.Background()
	grace := time.Duration(a.appConfig.Jobs.SweepGrace) * time.Second

	files, err := a.images.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(files) == 0 {
		return 0, nil
	}
	refs, err := a.products.ImageReferences(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-grace)
	removed := 0
	for _, f := range files {
		if _, ok := refs[f.Path]; ok {
			continue
		}
		if f.ModTime.After(cutoff) {
			continue
		}
		a.images.Delete(ctx, f.Path)
		removed++
	}
	if removed > 0 {
		zap.L().Info("swept orphan uploads", zap.Int("removed", removed), zap.Int("scanned", len(files)))
	}
	return removed, nil
}
