package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hr-backoffice-go/internal/domain/payroll"
)

const payslipRetryJob = "retry_failed_payslips"

type PayslipJobs struct {
	payslipService payroll.PayslipService
	interval       time.Duration
}

func NewPayslipJobs(payslipService payroll.PayslipService, interval time.Duration) *PayslipJobs {
	return &PayslipJobs{
		payslipService: payslipService,
		interval:       interval,
	}
}

func (j *PayslipJobs) RegisterJobs(scheduler *Scheduler) error {
	return scheduler.AddJob(payslipRetryJob, j.interval, j.RetryFailedPayslips)
}

// RetryFailedPayslips re-sends FAILED payslip emails whose retry time is due.
func (j *PayslipJobs) RetryFailedPayslips(ctx context.Context) error {
	sent, err := j.payslipService.RetryFailed(ctx)
	if err != nil {
		return fmt.Errorf("failed to retry payslips: %w", err)
	}
	if sent > 0 {
		slog.Info("Cron: Re-sent failed payslips", "count", sent)
	}
	return nil
}
