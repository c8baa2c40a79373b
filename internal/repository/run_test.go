package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/paiban/nightshift/internal/database"
	"github.com/paiban/nightshift/internal/report"
	apperrors "github.com/paiban/nightshift/pkg/errors"
	"github.com/paiban/nightshift/pkg/model"
	"github.com/paiban/nightshift/pkg/scheduler/optimizer"
)

type execCall struct {
	query string
	args  []interface{}
}

// fakeDB 记录执行的语句，第 failAt 次执行时返回错误
type fakeDB struct {
	calls      []execCall
	failAt     int
	failErr    error
	committed  bool
	rolledBack bool
}

func (f *fakeDB) ExecContext(_ context.Context, query string, args ...interface{}) (sql.Result, error) {
	f.calls = append(f.calls, execCall{query: query, args: args})
	if f.failAt > 0 && len(f.calls) == f.failAt {
		return nil, f.failErr
	}
	return driverResult(1), nil
}

func (f *fakeDB) QueryRowContext(context.Context, string, ...interface{}) *sql.Row {
	return nil
}

func (f *fakeDB) Transaction(_ context.Context, fn func(tx database.Executor) error) error {
	if err := fn(f); err != nil {
		f.rolledBack = true
		return err
	}
	f.committed = true
	return nil
}

type driverResult int64

func (r driverResult) LastInsertId() (int64, error) { return 0, nil }
func (r driverResult) RowsAffected() (int64, error) { return int64(r), nil }

func newRun(t *testing.T) *Run {
	t.Helper()
	start, _ := model.ParseDate("2024-03-04")
	end, _ := model.ParseDate("2024-03-06")
	c, err := model.NewCalendar(model.NewDateRange(start, end), nil)
	if err != nil {
		t.Fatalf("NewCalendar: %v", err)
	}
	r, err := model.NewRoster([]*model.Worker{
		{ID: "ANN", Employment: 1, Workday: model.FixedTarget(2), Weekend: model.FixedTarget(0)},
		{ID: "BOB", Employment: 1, Workday: model.FixedTarget(1), Weekend: model.FixedTarget(0)},
	})
	if err != nil {
		t.Fatalf("NewRoster: %v", err)
	}
	if err := c.BuildEligibility(r); err != nil {
		t.Fatalf("BuildEligibility: %v", err)
	}
	s, err := report.NewSchedule(c, r, []int{0, 1, 0})
	if err != nil {
		t.Fatalf("NewSchedule: %v", err)
	}

	res := &optimizer.Result{
		Island:            "africa",
		SearchFitness:     19,
		SearchPerfect:     20,
		DiagnosticFitness: 5004,
		DiagnosticPerfect: 6006,
		Generations:       12,
		Status:            optimizer.StatusExhausted,
		Seed:              42,
		Duration:          1500 * time.Millisecond,
	}
	return NewRun(res, s)
}

func TestNewRun(t *testing.T) {
	run := newRun(t)

	if run.Status != "exhausted" || run.Seed != 42 || run.Island != "africa" {
		t.Errorf("unexpected run: %+v", run)
	}
	if len(run.Assignments) != 3 || run.Assignments[1].WorkerID != "BOB" {
		t.Errorf("unexpected assignments: %+v", run.Assignments)
	}
	if len(run.Workers) != 2 || run.Workers[0] != "ANN" {
		t.Errorf("Workers = %v", run.Workers)
	}
}

func TestRunRepository_Save(t *testing.T) {
	db := &fakeDB{}
	repo := NewRunRepository(db)
	run := newRun(t)

	if err := repo.Save(context.Background(), run); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if run.ID == uuid.Nil || run.CreatedAt.IsZero() {
		t.Error("Save should assign ID and CreatedAt")
	}
	if !db.committed {
		t.Error("transaction should be committed")
	}
	if len(db.calls) != 4 {
		t.Fatalf("exec calls = %d, want 1 run + 3 assignments", len(db.calls))
	}
	if !strings.Contains(db.calls[0].query, "nightshift_runs") {
		t.Errorf("first statement should insert the run: %s", db.calls[0].query)
	}
	if got := db.calls[0].args[13]; got != int64(1500) {
		t.Errorf("duration_ms = %v, want 1500", got)
	}
	if _, ok := db.calls[0].args[12].(*pq.StringArray); !ok {
		t.Errorf("workers should be bound as a postgres array, got %T", db.calls[0].args[12])
	}
	for i, call := range db.calls[1:] {
		if call.args[0] != run.ID {
			t.Errorf("assignment %d bound to run %v", i, call.args[0])
		}
	}
}

func TestRunRepository_SaveRollback(t *testing.T) {
	db := &fakeDB{failAt: 3, failErr: &pq.Error{Code: "23505"}}
	repo := NewRunRepository(db)

	err := repo.Save(context.Background(), newRun(t))
	if !apperrors.Is(err, apperrors.CodeDatabaseError) {
		t.Fatalf("expected DATABASE_ERROR, got %v", err)
	}
	if !db.rolledBack || db.committed {
		t.Error("transaction should be rolled back")
	}
	if len(db.calls) != 3 {
		t.Errorf("should stop at the failing statement, got %d calls", len(db.calls))
	}
}

func TestEnsureSchema(t *testing.T) {
	db := &fakeDB{}
	if err := EnsureSchema(context.Background(), db); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	if len(db.calls) != 1 || !strings.Contains(db.calls[0].query, "CREATE TABLE IF NOT EXISTS nightshift_assignments") {
		t.Errorf("unexpected schema statement")
	}

	failing := &fakeDB{failAt: 1, failErr: errors.New("permission denied")}
	if err := EnsureSchema(context.Background(), failing); !apperrors.Is(err, apperrors.CodeDatabaseError) {
		t.Errorf("expected DATABASE_ERROR, got %v", err)
	}
}

// fakeRow 按顺序填充扫描目标
type fakeRow struct {
	values []interface{}
}

func (r fakeRow) Scan(dest ...interface{}) error {
	if len(dest) != len(r.values) {
		return errors.New("column count mismatch")
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *uuid.UUID:
			*p = r.values[i].(uuid.UUID)
		case *time.Time:
			*p = r.values[i].(time.Time)
		case *int64:
			*p = r.values[i].(int64)
		case *int:
			*p = r.values[i].(int)
		case *string:
			*p = r.values[i].(string)
		case *float64:
			*p = r.values[i].(float64)
		case sql.Scanner:
			if err := p.Scan(r.values[i]); err != nil {
				return err
			}
		default:
			return errors.New("unsupported destination")
		}
	}
	return nil
}

func TestScanRun(t *testing.T) {
	id := uuid.New()
	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	row := fakeRow{values: []interface{}{
		id, day, day.AddDate(0, 0, 2), int64(42), "converged", "eurasia", 7,
		20.0, 20.0, 6006.0, 6006.0,
		0, []byte(`{ANN,BOB}`), int64(2500), day,
	}}

	run, err := scanRun(row)
	if err != nil {
		t.Fatalf("scanRun: %v", err)
	}
	if run.ID != id || run.Island != "eurasia" || run.Generations != 7 {
		t.Errorf("unexpected run: %+v", run)
	}
	if len(run.Workers) != 2 || run.Workers[1] != "BOB" {
		t.Errorf("Workers = %v", run.Workers)
	}
	if run.Duration != 2500*time.Millisecond {
		t.Errorf("Duration = %v", run.Duration)
	}
}
