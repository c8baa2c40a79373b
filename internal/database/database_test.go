package database

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/lib/pq"

	apperrors "github.com/paiban/nightshift/pkg/errors"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantMessage string
	}{
		{"唯一约束", &pq.Error{Code: "23505", Constraint: "runs_pkey"}, "记录已存在"},
		{"外键约束", fmt.Errorf("insert: %w", &pq.Error{Code: "23503"}), "关联记录不存在"},
		{"其他驱动错误", &pq.Error{Code: "42P01"}, "保存失败"},
		{"普通错误", errors.New("connection reset"), "保存失败"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Classify(tt.err, "保存失败")
			if !apperrors.Is(err, apperrors.CodeDatabaseError) {
				t.Fatalf("expected DATABASE_ERROR, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantMessage) {
				t.Errorf("error %q should contain %q", err.Error(), tt.wantMessage)
			}
			if apperrors.GetExitCode(err) != apperrors.ExitDatabase {
				t.Errorf("exit code = %d", apperrors.GetExitCode(err))
			}
		})
	}

	if Classify(nil, "noop") != nil {
		t.Error("Classify(nil) should return nil")
	}
}

func TestTruncateQuery(t *testing.T) {
	short := "SELECT 1"
	if truncateQuery(short) != short {
		t.Errorf("short query should be unchanged")
	}
	long := strings.Repeat("x", 250)
	if got := truncateQuery(long); len(got) != 203 || !strings.HasSuffix(got, "...") {
		t.Errorf("truncateQuery length = %d", len(got))
	}
}
