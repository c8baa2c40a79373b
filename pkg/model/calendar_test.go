package model

import (
	"testing"
	"time"

	apperrors "github.com/paiban/nightshift/pkg/errors"
)

func newTestRoster(t *testing.T, workers ...*Worker) *Roster {
	t.Helper()
	r, err := NewRoster(workers)
	if err != nil {
		t.Fatalf("NewRoster: %v", err)
	}
	return r
}

func TestNewCalendar_Weights(t *testing.T) {
	// 2024-03-04 为周一
	span := NewDateRange(mustDate(t, "2024-03-04"), mustDate(t, "2024-03-10"))
	holidays := map[time.Time]DayWeight{mustDate(t, "2024-03-06"): 1.4}

	c, err := NewCalendar(span, holidays)
	if err != nil {
		t.Fatalf("NewCalendar: %v", err)
	}
	if c.Len() != 7 {
		t.Fatalf("expected 7 days, got %d", c.Len())
	}

	expected := []DayWeight{
		WeightWeekday, WeightWeekday, 1.4, WeightThursday,
		WeightFriday, WeightSaturday, WeightSunday,
	}
	for i, w := range expected {
		if c.Days[i].Weight != w {
			t.Errorf("day %d weight = %v, expected %v", i, c.Days[i].Weight, w)
		}
	}
	if !c.Days[2].Holiday {
		t.Error("holiday flag not set")
	}

	workdays, fridays, weekends := c.CountKinds()
	if workdays != 3 || fridays != 1 || weekends != 3 {
		t.Errorf("CountKinds() = %d/%d/%d, expected 3/1/3", workdays, fridays, weekends)
	}

	if pos, ok := c.Position(mustDate(t, "2024-03-08")); !ok || pos != 4 {
		t.Errorf("Position() = %d,%v, expected 4,true", pos, ok)
	}
}

func TestNewCalendar_InvalidSpan(t *testing.T) {
	span := NewDateRange(mustDate(t, "2024-03-10"), mustDate(t, "2024-03-04"))
	if _, err := NewCalendar(span, nil); !apperrors.Is(err, apperrors.CodeInvalidTimeRange) {
		t.Errorf("expected INVALID_TIME_RANGE, got %v", err)
	}
}

func TestBuildEligibility(t *testing.T) {
	d1 := mustDate(t, "2024-03-04")
	d2 := mustDate(t, "2024-03-05")
	d3 := mustDate(t, "2024-03-06")

	roster := newTestRoster(t,
		&Worker{ID: "A", Employment: 1, Desired: NewDateSet(d3)},
		&Worker{ID: "B", Employment: 1, Undesired: NewDateSet(d2)},
		&Worker{ID: "C", Employment: 1, Desired: NewDateSet(d3), Undesired: NewDateSet(d1)},
	)
	c, err := NewCalendar(NewDateRange(d1, d3), nil)
	if err != nil {
		t.Fatalf("NewCalendar: %v", err)
	}
	if err := c.BuildEligibility(roster); err != nil {
		t.Fatalf("BuildEligibility: %v", err)
	}

	tests := []struct {
		name     string
		day      int
		expected []int
	}{
		{"C 不能值班", 0, []int{0, 1}},
		{"B 不能值班", 1, []int{0, 2}},
		{"希望值班覆盖默认集合", 2, []int{0, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Days[tt.day].Eligible
			if len(got) != len(tt.expected) {
				t.Fatalf("Eligible = %v, expected %v", got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("Eligible = %v, expected %v", got, tt.expected)
				}
			}
		})
	}
}

func TestBuildEligibility_EmptyDayIsFatal(t *testing.T) {
	d := mustDate(t, "2024-03-04")
	roster := newTestRoster(t,
		&Worker{ID: "A", Employment: 1, Undesired: NewDateSet(d)},
		&Worker{ID: "B", Employment: 1, Undesired: NewDateSet(d)},
	)
	c, _ := NewCalendar(NewDateRange(d, d.AddDate(0, 0, 2)), nil)

	err := c.BuildEligibility(roster)
	if !apperrors.Is(err, apperrors.CodeEmptyEligibility) {
		t.Fatalf("expected EMPTY_ELIGIBILITY, got %v", err)
	}
}

func TestResolveDemand(t *testing.T) {
	// 周一至下周三共 10 天：8 个工作日（含 1 个周五），2 个周末日
	span := NewDateRange(mustDate(t, "2024-03-04"), mustDate(t, "2024-03-13"))
	c, err := NewCalendar(span, nil)
	if err != nil {
		t.Fatalf("NewCalendar: %v", err)
	}

	a := &Worker{ID: "A", Employment: 1, Workday: FixedTarget(3), Weekend: FixedTarget(0)}
	b := &Worker{ID: "B", Employment: 1, Workday: FixedTarget(1), Weekend: FixedTarget(1)}
	cw := &Worker{ID: "C", Employment: 1, Workday: AutoTarget(), Weekend: AutoTarget()}
	dw := &Worker{ID: "D", Employment: 0.5, Workday: AutoTarget(), Weekend: AutoTarget()}
	roster := newTestRoster(t, a, b, cw, dw)

	d, err := ResolveDemand(c, roster)
	if err != nil {
		t.Fatalf("ResolveDemand: %v", err)
	}

	if d.Workdays != 8 || d.Weekends != 2 || d.Fridays != 1 {
		t.Errorf("day counts = %d/%d/%d, expected 8/2/1", d.Workdays, d.Weekends, d.Fridays)
	}
	if d.IdealFriday != 0.25 {
		t.Errorf("IdealFriday = %v, expected 0.25", d.IdealFriday)
	}

	tests := []struct {
		name     string
		got      Target
		expected float64
	}{
		{"C 工作日", cw.Workday, 2},
		{"D 工作日", dw.Workday, 1},
		{"C 周末", cw.Weekend, 0.5},
		{"D 周末", dw.Weekend, 0.25},
		{"A 工作日保持不变", a.Workday, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got.Value != tt.expected {
				t.Errorf("target = %v, expected %v", tt.got.Value, tt.expected)
			}
		})
	}

	if !roster.Ready() {
		t.Error("all targets should be resolved")
	}
	if cw.Workday.Mode != TargetResolved {
		t.Errorf("auto target should be marked resolved, got %v", cw.Workday.Mode)
	}
}

func TestResolveDemand_Errors(t *testing.T) {
	span := NewDateRange(mustDate(t, "2024-03-04"), mustDate(t, "2024-03-10"))
	c, _ := NewCalendar(span, nil)

	t.Run("固定目标超出总天数", func(t *testing.T) {
		roster := newTestRoster(t,
			&Worker{ID: "A", Employment: 1, Workday: FixedTarget(9), Weekend: FixedTarget(0)},
			&Worker{ID: "B", Employment: 1, Workday: AutoTarget(), Weekend: AutoTarget()},
		)
		if _, err := ResolveDemand(c, roster); !apperrors.Is(err, apperrors.CodeInvalidDemand) {
			t.Errorf("expected INVALID_DEMAND, got %v", err)
		}
	})

	t.Run("没有自动员工时允许超出", func(t *testing.T) {
		roster := newTestRoster(t,
			&Worker{ID: "A", Employment: 1, Workday: FixedTarget(9), Weekend: FixedTarget(5)},
		)
		if _, err := ResolveDemand(c, roster); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("重复计算不会再次写回", func(t *testing.T) {
		roster := newTestRoster(t,
			&Worker{ID: "A", Employment: 1, Workday: AutoTarget(), Weekend: FixedTarget(1)},
		)
		if _, err := ResolveDemand(c, roster); err != nil {
			t.Fatalf("first resolve: %v", err)
		}
		before := roster.Workers[0].Workday
		if _, err := ResolveDemand(c, roster); err != nil {
			t.Fatalf("second resolve: %v", err)
		}
		if roster.Workers[0].Workday != before {
			t.Errorf("resolved target rewritten: %+v -> %+v", before, roster.Workers[0].Workday)
		}
	})

	t.Run("空名单", func(t *testing.T) {
		if _, err := ResolveDemand(c, nil); !apperrors.Is(err, apperrors.CodeInvalidDemand) {
			t.Errorf("expected INVALID_DEMAND, got %v", err)
		}
	})
}
