// Package repository 提供排班结果的持久化
package repository

import (
	"context"

	"github.com/paiban/nightshift/internal/database"
)

// DB 语句执行接口
type DB = database.Executor

// Transactor 事务执行接口，由 *database.DB 实现
type Transactor interface {
	DB
	Transaction(ctx context.Context, fn func(tx database.Executor) error) error
}

// Scanner 行扫描接口
type Scanner interface {
	Scan(dest ...interface{}) error
}

// schema 数据表定义
const schema = `
CREATE TABLE IF NOT EXISTS nightshift_runs (
	id                 UUID PRIMARY KEY,
	span_start         DATE NOT NULL,
	span_end           DATE NOT NULL,
	seed               BIGINT NOT NULL,
	status             TEXT NOT NULL,
	island             TEXT NOT NULL,
	generations        INTEGER NOT NULL,
	search_score       DOUBLE PRECISION NOT NULL,
	search_perfect     DOUBLE PRECISION NOT NULL,
	diagnostic_score   DOUBLE PRECISION NOT NULL,
	diagnostic_perfect DOUBLE PRECISION NOT NULL,
	violations         INTEGER NOT NULL,
	workers            TEXT[] NOT NULL,
	duration_ms        BIGINT NOT NULL,
	created_at         TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS nightshift_assignments (
	run_id    UUID NOT NULL REFERENCES nightshift_runs(id) ON DELETE CASCADE,
	day       DATE NOT NULL,
	worker_id TEXT NOT NULL,
	eligible  BOOLEAN NOT NULL,
	PRIMARY KEY (run_id, day)
);
`

// EnsureSchema 创建缺失的数据表
func EnsureSchema(ctx context.Context, db DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return database.Classify(err, "创建数据表失败")
	}
	return nil
}
