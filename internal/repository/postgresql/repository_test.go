package postgresql_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/hr-backoffice-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/domain/auth"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/domain/employee"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/domain/user"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/repository/postgresql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	repo := postgresql.NewUserRepository(db)

	created, err := repo.Create(ctx, user.User{Name: "Priya", Email: "Priya@Example.com", PasswordHash: "hash", Role: user.RoleSuperAdmin})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "priya@example.com", created.Email)

	_, err = repo.Create(ctx, user.User{Name: "Dup", Email: "priya@example.com", PasswordHash: "x", Role: user.RoleHR})
	assert.ErrorIs(t, err, user.ErrUserEmailExists)

	got, err := repo.GetByEmail(ctx, "PRIYA@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = repo.GetByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, user.ErrUserNotFound)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestJWTRepository(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	u, err := postgresql.NewUserRepository(db).Create(ctx, user.User{Name: "A", Email: "a@example.com", PasswordHash: "h", Role: user.RoleHR})
	require.NoError(t, err)

	repo := postgresql.NewJWTRepository(db)
	require.NoError(t, repo.CreateRefreshToken(ctx, u.ID, "tok", time.Now().Add(time.Hour).Unix(), auth.SessionTrackingRequest{UserAgent: "test"}))

	revoked, err := repo.IsRefreshTokenRevoked(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, repo.RevokeRefreshToken(ctx, "tok"))
	revoked, err = repo.IsRefreshTokenRevoked(ctx, "tok")
	require.NoError(t, err)
	assert.True(t, revoked)

	_, err = repo.IsRefreshTokenRevoked(ctx, "unknown")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestEmployeeRepository(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	repo := postgresql.NewEmployeeRepository(db)

	e := employee.NewPlaceholder("E1", "Asha", "Production", "Operator")
	e.Salary = decimal.RequireFromString("41600.50")
	created, err := repo.Create(ctx, e)
	require.NoError(t, err)
	assert.True(t, created.Salary.Equal(e.Salary))

	_, err = repo.Create(ctx, e)
	assert.ErrorIs(t, err, employee.ErrEmployeeIDExists)

	other := employee.NewPlaceholder("E2", "", "", "")
	other.MailID = e.MailID
	_, err = repo.Create(ctx, other)
	assert.ErrorIs(t, err, employee.ErrMailIDExists)

	// concurrent placeholder creation writes one row
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		writers int
	)
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.CreateIfMissing(ctx, employee.NewPlaceholder("E3", "", "", ""))
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				writers++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, writers)

	created.Department = "Stores"
	updated, err := repo.Update(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, "Stores", updated.Department)

	list, total, err := repo.List(ctx, employee.EmployeeFilter{Search: "e", Page: 1, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, list, 1)
	assert.Equal(t, "E1", list[0].EmployeeID)

	byID, err := repo.GetByEmployeeIDs(ctx, []string{"E1", "E3", "E9"})
	require.NoError(t, err)
	assert.Len(t, byID, 2)

	require.NoError(t, repo.Delete(ctx, "E1"))
	_, err = repo.GetByEmployeeID(ctx, "E1")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func date(s string) *time.Time {
	t, _ := time.Parse(time.DateOnly, s)
	return &t
}

func TestAttendanceRepository(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	repo := postgresql.NewAttendanceRepository(db)

	rec := attendance.AttendanceRecord{
		EmployeeID:       "E1",
		EmployeeName:     "Asha",
		ReportPeriodFrom: "01-03-2025",
		ReportPeriodTo:   "31-03-2025",
		PeriodStart:      date("2025-03-01"),
		PeriodEnd:        date("2025-03-31"),
		DailyAttendance:  []attendance.DailyEntry{{Date: "2025-03-03", Status: attendance.StatusPresent, TimeIn: "09:00"}},
		MonthlySummary:   attendance.MonthlySummary{PresentDays: "1"},
	}
	first, err := repo.Upsert(ctx, rec)
	require.NoError(t, err)

	rec.MonthlySummary.PresentDays = "2"
	second, err := repo.Upsert(ctx, rec)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "2", second.MonthlySummary.PresentDays)
	require.Len(t, second.DailyAttendance, 1)
	assert.Equal(t, "09:00", second.DailyAttendance[0].TimeIn)

	feb := rec
	feb.ReportPeriodFrom, feb.ReportPeriodTo = "01-02-2025", "28-02-2025"
	feb.PeriodStart, feb.PeriodEnd = date("2025-02-01"), date("2025-02-28")
	_, err = repo.Upsert(ctx, feb)
	require.NoError(t, err)

	all, err := repo.ListByEmployee(ctx, "E1", nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "01-03-2025", all[0].ReportPeriodFrom)

	byPeriod, err := repo.ListByPeriod(ctx, &attendance.Period{From: "01-02-2025", To: "28-02-2025"})
	require.NoError(t, err)
	assert.Len(t, byPeriod, 1)

	overlapping, err := repo.ListOverlapping(ctx, "2025-03-15", "2025-04-15")
	require.NoError(t, err)
	assert.Len(t, overlapping, 1)

	containing, err := repo.ListContainingDate(ctx, "2025-02-14")
	require.NoError(t, err)
	require.Len(t, containing, 1)
	assert.Equal(t, "01-02-2025", containing[0].ReportPeriodFrom)

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalRecords)
	assert.Equal(t, int64(1), stats.UniqueEmployees)

	require.NoError(t, repo.Delete(ctx, first.ID))
	assert.ErrorIs(t, repo.Delete(ctx, first.ID), attendance.ErrRecordNotFound)
}

func TestPayrollRepository_CompareAndSwap(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	repo := postgresql.NewPayrollRepository(db)

	h := payroll.PayrollHistory{
		EmployeeID: "E1",
		Payruns:    []payroll.Payrun{{SalaryMonth: 3, SalaryYear: 2025, Salary: decimal.RequireFromString("23493.75")}},
	}
	saved, err := repo.Save(ctx, h)
	require.NoError(t, err)
	assert.Equal(t, 1, saved.Version)

	_, err = repo.Save(ctx, h)
	assert.ErrorIs(t, err, payroll.ErrVersionConflict)

	saved.Payruns = append(saved.Payruns, payroll.Payrun{SalaryMonth: 4, SalaryYear: 2025})
	next, err := repo.Save(ctx, saved)
	require.NoError(t, err)
	assert.Equal(t, 2, next.Version)

	_, err = repo.Save(ctx, saved)
	assert.ErrorIs(t, err, payroll.ErrVersionConflict)

	got, err := repo.GetByEmployeeID(ctx, "E1")
	require.NoError(t, err)
	require.Len(t, got.Payruns, 2)
	assert.True(t, got.Payruns[0].Salary.Equal(decimal.RequireFromString("23493.75")))

	march, err := repo.ListByPeriod(ctx, 3, 2025)
	require.NoError(t, err)
	assert.Len(t, march, 1)
	may, err := repo.ListByPeriod(ctx, 5, 2025)
	require.NoError(t, err)
	assert.Empty(t, may)
}

func TestPayslipLogRepository(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	repo := postgresql.NewPayslipLogRepository(db)

	batch := "6f1c1c6e-3a57-4d0e-9c55-1d7f5b4f0a11"
	log, err := repo.Create(ctx, payroll.PayslipEmailLog{
		BatchID:     &batch,
		EmployeeID:  "E1",
		EmailID:     "e1@example.com",
		SalaryMonth: 3,
		SalaryYear:  2025,
		Status:      payroll.EmailStatusPending,
		MaxRetries:  3,
	})
	require.NoError(t, err)

	due := time.Now().Add(-time.Minute)
	log.Status = payroll.EmailStatusFailed
	log.NextRetryAt = &due
	require.NoError(t, repo.Update(ctx, log))

	retryable, err := repo.ListRetryable(ctx, time.Now(), 10)
	require.NoError(t, err)
	require.Len(t, retryable, 1)
	assert.Equal(t, batch, *retryable[0].BatchID)

	log.RetryCount = 3
	require.NoError(t, repo.Update(ctx, log))
	retryable, err = repo.ListRetryable(ctx, time.Now(), 10)
	require.NoError(t, err)
	assert.Empty(t, retryable)

	logs, err := repo.List(ctx, payroll.EmailLogFilter{EmployeeID: "E1", Status: payroll.EmailStatusFailed})
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}
