package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/hr-backoffice-go/internal/app"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/config"
	appHTTP "github.com/cmlabs-hris/hr-backoffice-go/internal/handler/http"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/pkg/cron"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/pkg/database"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	if err := database.Migrate(cfg.MigrationURL(), database.Up); err != nil {
		return err
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	services, err := app.NewServices(cfg, db)
	if err != nil {
		return err
	}

	scheduler := cron.NewScheduler()
	if err := cron.NewPayslipJobs(services.Payslip, cfg.Payroll.PayslipRetryPeriod).RegisterJobs(scheduler); err != nil {
		return err
	}
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(
		appHTTP.RouterOptions{
			AllowedOrigins: cfg.App.AllowedOrigins,
			Env:            cfg.App.Env,
			LogLevel:       cfg.SlogLevel(),
		},
		services.JWT,
		appHTTP.Handlers{
			Auth:       appHTTP.NewAuthHandler(services.JWT, services.Auth),
			Employee:   appHTTP.NewEmployeeHandler(services.Employee),
			Attendance: appHTTP.NewAttendanceHandler(services.Attendance),
			Payroll:    appHTTP.NewPayrollHandler(services.Payroll, services.Payslip),
		},
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr, "env", cfg.App.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
