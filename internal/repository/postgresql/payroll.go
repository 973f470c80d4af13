package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hr-backoffice-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ========== PAYROLL HISTORIES ==========

type payrollRepositoryImpl struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepositoryImpl{db: db}
}

const historyColumns = `employee_id, payruns, version, created_at, updated_at`

func scanHistory(row pgx.Row) (payroll.PayrollHistory, error) {
	var h payroll.PayrollHistory
	err := row.Scan(&h.EmployeeID, &h.Payruns, &h.Version, &h.CreatedAt, &h.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return payroll.PayrollHistory{}, payroll.ErrPayrollNotFound
	}
	return h, err
}

func (r *payrollRepositoryImpl) GetByEmployeeID(ctx context.Context, employeeID string) (payroll.PayrollHistory, error) {
	q := GetQuerier(ctx, r.db)
	h, err := scanHistory(q.QueryRow(ctx, `SELECT `+historyColumns+` FROM payroll_histories WHERE employee_id = $1`, employeeID))
	if err != nil && !errors.Is(err, payroll.ErrPayrollNotFound) {
		return payroll.PayrollHistory{}, fmt.Errorf("failed to get payroll for %s: %w", employeeID, err)
	}
	return h, err
}

func (r *payrollRepositoryImpl) Save(ctx context.Context, h payroll.PayrollHistory) (payroll.PayrollHistory, error) {
	q := GetQuerier(ctx, r.db)
	if h.Payruns == nil {
		h.Payruns = []payroll.Payrun{}
	}

	var row pgx.Row
	if h.Version == 0 {
		row = q.QueryRow(ctx, `
			INSERT INTO payroll_histories (employee_id, payruns, version)
			VALUES ($1, $2, 1)
			ON CONFLICT (employee_id) DO NOTHING
			RETURNING `+historyColumns, h.EmployeeID, h.Payruns)
	} else {
		row = q.QueryRow(ctx, `
			UPDATE payroll_histories
			SET payruns = $2, version = version + 1, updated_at = NOW()
			WHERE employee_id = $1 AND version = $3
			RETURNING `+historyColumns, h.EmployeeID, h.Payruns, h.Version)
	}

	saved, err := scanHistory(row)
	if errors.Is(err, payroll.ErrPayrollNotFound) {
		return payroll.PayrollHistory{}, payroll.ErrVersionConflict
	}
	if err != nil {
		return payroll.PayrollHistory{}, fmt.Errorf("failed to save payroll for %s: %w", h.EmployeeID, err)
	}
	return saved, nil
}

func (r *payrollRepositoryImpl) listHistories(ctx context.Context, where string, args ...any) ([]payroll.PayrollHistory, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + historyColumns + ` FROM payroll_histories`
	if where != "" {
		query += ` WHERE ` + where
	}
	query += ` ORDER BY employee_id`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payrolls: %w", err)
	}
	defer rows.Close()

	histories := []payroll.PayrollHistory{}
	for rows.Next() {
		h, err := scanHistory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll: %w", err)
		}
		histories = append(histories, h)
	}
	return histories, rows.Err()
}

func (r *payrollRepositoryImpl) List(ctx context.Context) ([]payroll.PayrollHistory, error) {
	return r.listHistories(ctx, "")
}

func (r *payrollRepositoryImpl) ListByPeriod(ctx context.Context, month, year int) ([]payroll.PayrollHistory, error) {
	probe, err := json.Marshal([]map[string]int{{"salaryMonth": month, "salaryYear": year}})
	if err != nil {
		return nil, err
	}
	return r.listHistories(ctx, `payruns @> $1::jsonb`, string(probe))
}

func (r *payrollRepositoryImpl) Delete(ctx context.Context, employeeID string) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `DELETE FROM payroll_histories WHERE employee_id = $1`, employeeID)
	if err != nil {
		return fmt.Errorf("failed to delete payroll for %s: %w", employeeID, err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrPayrollNotFound
	}
	return nil
}

// ========== PAYSLIP EMAIL LOGS ==========

type payslipLogRepositoryImpl struct {
	db *database.DB
}

func NewPayslipLogRepository(db *database.DB) payroll.PayslipLogRepository {
	return &payslipLogRepositoryImpl{db: db}
}

const payslipLogColumns = `
	id, batch_id, employee_id, employee_name, email_id, salary_month, salary_year,
	status, response_message, error_details, retry_count, max_retries,
	next_retry_at, sent_at, created_at, updated_at`

func scanPayslipLog(row pgx.Row) (payroll.PayslipEmailLog, error) {
	var l payroll.PayslipEmailLog
	err := row.Scan(
		&l.ID, &l.BatchID, &l.EmployeeID, &l.EmployeeName, &l.EmailID, &l.SalaryMonth, &l.SalaryYear,
		&l.Status, &l.ResponseMessage, &l.ErrorDetails, &l.RetryCount, &l.MaxRetries,
		&l.NextRetryAt, &l.SentAt, &l.CreatedAt, &l.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return payroll.PayslipEmailLog{}, payroll.ErrPayslipLogNotFound
	}
	return l, err
}

func (r *payslipLogRepositoryImpl) Create(ctx context.Context, log payroll.PayslipEmailLog) (payroll.PayslipEmailLog, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		INSERT INTO payslip_email_logs (
			id, batch_id, employee_id, employee_name, email_id, salary_month, salary_year,
			status, response_message, error_details, retry_count, max_retries, next_retry_at, sent_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING ` + payslipLogColumns

	created, err := scanPayslipLog(q.QueryRow(ctx, query,
		uuid.Must(uuid.NewV7()).String(), log.BatchID, log.EmployeeID, log.EmployeeName, log.EmailID, log.SalaryMonth, log.SalaryYear,
		log.Status, log.ResponseMessage, log.ErrorDetails, log.RetryCount, log.MaxRetries, log.NextRetryAt, log.SentAt,
	))
	if err != nil {
		return payroll.PayslipEmailLog{}, fmt.Errorf("failed to create payslip email log: %w", err)
	}
	return created, nil
}

func (r *payslipLogRepositoryImpl) Update(ctx context.Context, log payroll.PayslipEmailLog) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `
		UPDATE payslip_email_logs SET
			status = $2, response_message = $3, error_details = $4,
			retry_count = $5, next_retry_at = $6, sent_at = $7, updated_at = NOW()
		WHERE id = $1
	`, log.ID, log.Status, log.ResponseMessage, log.ErrorDetails, log.RetryCount, log.NextRetryAt, log.SentAt)
	if err != nil {
		return fmt.Errorf("failed to update payslip email log: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrPayslipLogNotFound
	}
	return nil
}

func (r *payslipLogRepositoryImpl) List(ctx context.Context, filter payroll.EmailLogFilter) ([]payroll.PayslipEmailLog, error) {
	var (
		where []string
		args  []any
	)
	add := func(clause string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}
	if filter.EmployeeID != "" {
		add("employee_id = $%d", filter.EmployeeID)
	}
	if filter.Status != "" {
		add("status = $%d", filter.Status)
	}
	if filter.SalaryMonth != 0 {
		add("salary_month = $%d", filter.SalaryMonth)
	}
	if filter.SalaryYear != 0 {
		add("salary_year = $%d", filter.SalaryYear)
	}

	query := `SELECT ` + payslipLogColumns + ` FROM payslip_email_logs`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC`
	return r.query(ctx, query, args...)
}

func (r *payslipLogRepositoryImpl) ListRetryable(ctx context.Context, now time.Time, limit int) ([]payroll.PayslipEmailLog, error) {
	query := `SELECT ` + payslipLogColumns + ` FROM payslip_email_logs
		WHERE status = $1 AND retry_count < max_retries AND (next_retry_at IS NULL OR next_retry_at <= $2)
		ORDER BY next_retry_at NULLS FIRST, created_at
		LIMIT $3`
	return r.query(ctx, query, payroll.EmailStatusFailed, now, limit)
}

func (r *payslipLogRepositoryImpl) query(ctx context.Context, query string, args ...any) ([]payroll.PayslipEmailLog, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payslip email logs: %w", err)
	}
	defer rows.Close()

	logs := []payroll.PayslipEmailLog{}
	for rows.Next() {
		l, err := scanPayslipLog(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payslip email log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
