package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/paiban/nightshift/internal/database"
	"github.com/paiban/nightshift/internal/report"
	apperrors "github.com/paiban/nightshift/pkg/errors"
	"github.com/paiban/nightshift/pkg/scheduler/optimizer"
)

// Run 一次排班运行的记录
type Run struct {
	ID                uuid.UUID       `json:"id"`
	SpanStart         time.Time       `json:"span_start"`
	SpanEnd           time.Time       `json:"span_end"`
	Seed              int64           `json:"seed"`
	Status            string          `json:"status"`
	Island            string          `json:"island"`
	Generations       int             `json:"generations"`
	SearchScore       float64         `json:"search_score"`
	SearchPerfect     float64         `json:"search_perfect"`
	DiagnosticScore   float64         `json:"diagnostic_score"`
	DiagnosticPerfect float64         `json:"diagnostic_perfect"`
	Violations        int             `json:"violations"`
	Workers           []string        `json:"workers"`
	Duration          time.Duration   `json:"duration"`
	CreatedAt         time.Time       `json:"created_at"`
	Assignments       []RunAssignment `json:"assignments,omitempty"`
}

// RunAssignment 单日排班记录
type RunAssignment struct {
	Day      time.Time `json:"day"`
	WorkerID string    `json:"worker_id"`
	Eligible bool      `json:"eligible"`
}

// NewRun 由搜索结果和排班表生成运行记录
func NewRun(res *optimizer.Result, s *report.Schedule) *Run {
	run := &Run{
		SpanStart:         s.Calendar.Span.Start,
		SpanEnd:           s.Calendar.Span.End,
		Seed:              res.Seed,
		Status:            string(res.Status),
		Island:            res.Island,
		Generations:       res.Generations,
		SearchScore:       res.SearchFitness,
		SearchPerfect:     res.SearchPerfect,
		DiagnosticScore:   res.DiagnosticFitness,
		DiagnosticPerfect: res.DiagnosticPerfect,
		Violations:        len(res.Violations),
		Workers:           s.Roster.IDs(),
		Duration:          res.Duration,
		Assignments:       make([]RunAssignment, len(s.Assignments)),
	}
	for i, a := range s.Assignments {
		run.Assignments[i] = RunAssignment{Day: a.Date, WorkerID: a.WorkerID, Eligible: a.Eligible}
	}
	return run
}

// RunRepository 排班运行仓储
type RunRepository struct {
	db Transactor
}

// NewRunRepository 创建排班运行仓储
func NewRunRepository(db Transactor) *RunRepository {
	return &RunRepository{db: db}
}

const insertRun = `
	INSERT INTO nightshift_runs (
		id, span_start, span_end, seed, status, island, generations,
		search_score, search_perfect, diagnostic_score, diagnostic_perfect,
		violations, workers, duration_ms, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
`

const insertAssignment = `
	INSERT INTO nightshift_assignments (run_id, day, worker_id, eligible)
	VALUES ($1, $2, $3, $4)
`

// Save 在一个事务中保存运行记录及逐日排班
func (r *RunRepository) Save(ctx context.Context, run *Run) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	return r.db.Transaction(ctx, func(tx database.Executor) error {
		_, err := tx.ExecContext(ctx, insertRun,
			run.ID, run.SpanStart, run.SpanEnd, run.Seed, run.Status, run.Island, run.Generations,
			run.SearchScore, run.SearchPerfect, run.DiagnosticScore, run.DiagnosticPerfect,
			run.Violations, pq.Array(run.Workers), run.Duration.Milliseconds(), run.CreatedAt,
		)
		if err != nil {
			return database.Classify(err, "保存排班运行失败")
		}

		for _, a := range run.Assignments {
			if _, err := tx.ExecContext(ctx, insertAssignment, run.ID, a.Day, a.WorkerID, a.Eligible); err != nil {
				return database.Classify(err, "保存排班明细失败")
			}
		}
		return nil
	})
}

// Get 根据ID获取运行记录，不含逐日排班
func (r *RunRepository) Get(ctx context.Context, id uuid.UUID) (*Run, error) {
	query := `
		SELECT id, span_start, span_end, seed, status, island, generations,
			search_score, search_perfect, diagnostic_score, diagnostic_perfect,
			violations, workers, duration_ms, created_at
		FROM nightshift_runs
		WHERE id = $1
	`
	run, err := scanRun(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("排班运行", id.String())
	}
	if err != nil {
		return nil, database.Classify(err, "查询排班运行失败")
	}
	return run, nil
}

// scanRun 扫描运行记录
func scanRun(row Scanner) (*Run, error) {
	var (
		run        Run
		durationMS int64
	)
	err := row.Scan(
		&run.ID, &run.SpanStart, &run.SpanEnd, &run.Seed, &run.Status, &run.Island, &run.Generations,
		&run.SearchScore, &run.SearchPerfect, &run.DiagnosticScore, &run.DiagnosticPerfect,
		&run.Violations, pq.Array(&run.Workers), &durationMS, &run.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	run.Duration = time.Duration(durationMS) * time.Millisecond
	return &run, nil
}
