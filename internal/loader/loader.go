// Package loader 读取排班输入：YAML 名单或旧版文本目录
package loader

import (
	"strings"
	"time"

	apperrors "github.com/paiban/nightshift/pkg/errors"
	"github.com/paiban/nightshift/pkg/model"
)

// Input 排班输入
type Input struct {
	Roster   *model.Roster
	Span     model.DateRange
	Holidays map[time.Time]model.DayWeight
	Notes    []string
	Source   string // 来源文件或目录
}

// Calendar 根据排班周期与节假日生成日历
func (in *Input) Calendar() (*model.Calendar, error) {
	return model.NewCalendar(in.Span, in.Holidays)
}

// 旧版数据中出现过的日期写法
var dateLayouts = []string{model.DateLayout, "2.1.2006", "2. 1. 2006"}

// parseDay 解析日期，兼容 YYYY-MM-DD 与 D.M.YYYY
func parseDay(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, apperrors.InvalidInput("date", "无法识别的日期 "+s)
}

// parseSpan 解析排班周期
func parseSpan(start, end string) (model.DateRange, error) {
	s, err := parseDay(start)
	if err != nil {
		return model.DateRange{}, err
	}
	e, err := parseDay(end)
	if err != nil {
		return model.DateRange{}, err
	}
	span := model.NewDateRange(s, e)
	if !span.Valid() {
		return model.DateRange{}, apperrors.New(apperrors.CodeInvalidTimeRange, "结束日期早于开始日期").
			WithDetails(span.String())
	}
	return span, nil
}

// parseDates 解析日期列表并加入集合
func parseDates(field string, values []string, ve *apperrors.ValidationErrors) model.DateSet {
	set := model.NewDateSet()
	for _, v := range values {
		t, err := parseDay(v)
		if err != nil {
			ve.Add(field, "无法识别的日期 "+v)
			continue
		}
		set.Add(t)
	}
	return set
}
