package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"无错误", nil, ExitOK},
		{"配置错误", InvalidConfig("population_size", "必须为正数"), ExitConfig},
		{"需求错误", InvalidDemand("workday", "剩余天数为负"), ExitInput},
		{"空可用集合", EmptyEligibility("2024-03-01"), ExitInput},
		{"包装后的取消", fmt.Errorf("run: %w", New(CodeCancelled, "取消")), ExitCancelled},
		{"原生上下文取消", context.Canceled, ExitCancelled},
		{"数据库错误", Wrap(errors.New("conn refused"), CodeDatabaseError, "保存失败"), ExitDatabase},
		{"普通错误", errors.New("boom"), ExitInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetExitCode(tt.err); got != tt.expected {
				t.Errorf("GetExitCode() = %d, expected %d", got, tt.expected)
			}
		})
	}
}

func TestIsAndGetCode(t *testing.T) {
	err := fmt.Errorf("load: %w", EmptyEligibility("2024-03-05"))

	if !Is(err, CodeEmptyEligibility) {
		t.Error("Is() should see through fmt wrapping")
	}
	if Is(err, CodeInvalidDemand) {
		t.Error("Is() matched the wrong code")
	}
	if GetCode(errors.New("plain")) != CodeUnknown {
		t.Error("plain errors should map to CodeUnknown")
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(cause, CodeInternal, "写入失败")

	if !errors.Is(err, cause) {
		t.Error("wrapped cause should be reachable via errors.Is")
	}
	if err.Error() != "[INTERNAL_ERROR] 写入失败: disk full" {
		t.Errorf("unexpected message: %s", err.Error())
	}
}

func TestFromContext(t *testing.T) {
	if FromContext(context.Background()) != nil {
		t.Fatal("live context should not produce an error")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if got := FromContext(ctx); got == nil || got.Code != CodeCancelled {
		t.Errorf("expected CANCELLED, got %v", got)
	}

	ctx, cancel = context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()
	if got := FromContext(ctx); got == nil || got.Code != CodeTimeout {
		t.Errorf("expected TIMEOUT, got %v", got)
	}
}

func TestValidationErrors(t *testing.T) {
	var ve ValidationErrors
	if ve.HasErrors() {
		t.Fatal("empty collection should report no errors")
	}

	ve.Add("workers[0].employment", "必须在 (0,1] 范围内")
	ve.Add("workers[1].id", "不能为空")

	appErr := ve.ToAppError()
	if appErr.Code != CodeValidationFail {
		t.Errorf("expected VALIDATION_FAILED, got %s", appErr.Code)
	}
	if len(appErr.Fields) != 2 {
		t.Errorf("expected 2 fields, got %d", len(appErr.Fields))
	}
	if appErr.ExitCode != ExitInput {
		t.Errorf("expected exit code %d, got %d", ExitInput, appErr.ExitCode)
	}
}
