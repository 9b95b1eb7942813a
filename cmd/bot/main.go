package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"chembot/internal/bot"
	"chembot/internal/health"
	"chembot/internal/repository"
	"chembot/internal/service"
	"chembot/pkg/config"
	"chembot/pkg/logger"
	"chembot/pkg/storage"
	"chembot/pkg/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.Bot.Token == "" {
		log.Fatal("BOT_TOKEN is not set")
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	client, err := store.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("store unreachable", "error", err)
	}
	defer client.Close() //nolint:errcheck

	files, err := storage.NewLectureStore(cfg.Lectures.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init lecture storage", "error", err)
	}

	studentRepo := repository.NewStudentRepository(client, logr)
	lectureRepo := repository.NewLectureRepository(client, logr)
	adminRepo := repository.NewAdminRepository(client, logr)

	students := service.NewStudentService(studentRepo, lectureRepo, nil, logr)
	lectures := service.NewLectureService(lectureRepo, files, logr)
	admin := service.NewAdminService(studentRepo, lectureRepo, adminRepo, logr)

	metrics := health.NewMetrics()

	b, err := bot.New(cfg, students, lectures, admin, metrics, logr)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to telegram", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	healthSrv := health.NewServer(cfg, logr, admin, metrics)
	go func() {
		if err := healthSrv.Run(); err != nil {
			logr.Sugar().Errorw("health server failed", "error", err)
		}
	}()

	if err := b.Run(ctx); err != nil {
		logr.Sugar().Fatalw("bot stopped", "error", err)
	}
	logr.Info("bot stopped")
}
