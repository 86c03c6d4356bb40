package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/garikaib/rates-scrapper/internal/bootstrap"
	"github.com/garikaib/rates-scrapper/internal/config"
	"github.com/garikaib/rates-scrapper/internal/infrastructure/logx"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

func init() { _ = godotenv.Load() }

func main() {
	log := logx.L()
	cfg := config.Load()
	ctx := context.Background()

	repos, cleanup, err := bootstrap.BuildStore(cfg)
	if err != nil {
		log.Fatal("bootstrap store", zap.Error(err))
	}
	defer cleanup()

	cfg, err = bootstrap.OverlayCredentials(ctx, cfg, repos.Creds)
	if err != nil {
		log.Fatal("load credentials", zap.Error(err))
	}
	ctrl, err := bootstrap.BuildController(cfg, repos)
	if err != nil {
		log.Fatal("bootstrap controller", zap.Error(err))
	}
	loc, err := bootstrap.Location(cfg)
	if err != nil {
		log.Fatal("load timezone", zap.Error(err))
	}

	invoke := func() {
		if _, err := ctrl.Run(ctx, false); err != nil {
			log.Error("scheduled run failed", zap.Error(err))
		}
	}

	// Six-field spec with seconds; the schedule fires in the publisher's
	// timezone, not the host's.
	c := cron.New(cron.WithSeconds(), cron.WithLocation(loc))
	if _, err := c.AddFunc(cfg.CronSpec, invoke); err != nil {
		log.Fatal("register schedule", zap.String("spec", cfg.CronSpec), zap.Error(err))
	}

	if cfg.RunOnStart {
		invoke()
	}

	c.Start()
	log.Info("daemon started", zap.String("spec", cfg.CronSpec), zap.String("timezone", cfg.Timezone))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	stopped := c.Stop()
	<-stopped.Done()
	log.Info("daemon stopped")
}
