package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"chembot/internal/console"
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

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	client, err := store.NewRedis(cfg.Redis)
	if err != nil {
		log.Fatalf("store unreachable: %v", err)
	}
	defer client.Close() //nolint:errcheck

	files, err := storage.NewLectureStore(cfg.Lectures.StorageDir)
	if err != nil {
		log.Fatalf("failed to init lecture storage: %v", err)
	}

	studentRepo := repository.NewStudentRepository(client, logr)
	lectureRepo := repository.NewLectureRepository(client, logr)
	adminRepo := repository.NewAdminRepository(client, logr)

	students := service.NewStudentService(studentRepo, lectureRepo, nil, logr)
	lectures := service.NewLectureService(lectureRepo, files, logr)
	admin := service.NewAdminService(studentRepo, lectureRepo, adminRepo, logr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := console.New(students, lectures, admin, logr)
	if err := c.Run(ctx); err != nil {
		log.Fatalf("console: %v", err)
	}
}
