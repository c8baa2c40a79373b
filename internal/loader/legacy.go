package loader

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/paiban/nightshift/pkg/errors"
	"github.com/paiban/nightshift/pkg/logger"
	"github.com/paiban/nightshift/pkg/model"
)

// unavailableKeyword 旧版员工文件中分隔"希望"与"不能"日期的关键字
const unavailableKeyword = "NEMUZE"

// 员工文件头部固定行数：工作日目标、周末目标、工作量、最小间隔及五个已废弃计数
const legacyHeaderLines = 9

// LegacyOptions 旧版文本目录参数
type LegacyOptions struct {
	Dir          string
	WorkersFile  string // 员工名单文件，每行一个姓名
	HolidaysFile string // 节假日文件，每行 "日期 权重"
	NotesFile    string // 可选，每行一条备注
	Start        string
	End          string
}

// LoadLegacy 读取旧版文本目录
func LoadLegacy(opts LegacyOptions) (*Input, error) {
	span, err := parseSpan(opts.Start, opts.End)
	if err != nil {
		return nil, err
	}

	names, err := readLines(filepath.Join(opts.Dir, opts.WorkersFile))
	if err != nil {
		return nil, err
	}

	workers := make([]*model.Worker, 0, len(names))
	for _, name := range names {
		w, err := loadLegacyWorker(opts.Dir, name)
		if err != nil {
			return nil, err
		}
		workers = append(workers, w)
	}
	roster, err := model.NewRoster(workers)
	if err != nil {
		return nil, err
	}

	holidays, err := loadHolidays(filepath.Join(opts.Dir, opts.HolidaysFile))
	if err != nil {
		return nil, err
	}

	var notes []string
	if opts.NotesFile != "" {
		if notes, err = readLines(filepath.Join(opts.Dir, opts.NotesFile)); err != nil {
			return nil, err
		}
	}

	return &Input{
		Roster:   roster,
		Span:     span,
		Holidays: holidays,
		Notes:    notes,
		Source:   opts.Dir,
	}, nil
}

// loadLegacyWorker 读取单个员工文件 <name>.txt
func loadLegacyWorker(dir, name string) (*model.Worker, error) {
	path := filepath.Join(dir, name+".txt")
	lines, err := readRawLines(path)
	if err != nil {
		return nil, err
	}
	if len(lines) < legacyHeaderLines {
		return nil, apperrors.InvalidInput(path,
			fmt.Sprintf("至少需要 %d 行，实际 %d 行", legacyHeaderLines, len(lines)))
	}

	var ve apperrors.ValidationErrors
	workday, err := model.ParseTarget(lines[0])
	if err != nil {
		ve.Add(name+".workday", err.Error())
	}
	weekend, err := model.ParseTarget(lines[1])
	if err != nil {
		ve.Add(name+".weekend", err.Error())
	}
	employment, err := strconv.ParseFloat(strings.ReplaceAll(lines[2], ",", "."), 64)
	if err != nil {
		ve.Add(name+".employment", "必须为数字 "+lines[2])
	}
	minInterval, err := strconv.Atoi(lines[3])
	if err != nil {
		ve.Add(name+".min_interval", "必须为整数 "+lines[3])
	}

	var desired, undesired []string
	afterKeyword := false
	for _, line := range lines[legacyHeaderLines:] {
		switch {
		case line == "":
		case line == unavailableKeyword:
			afterKeyword = true
		case afterKeyword:
			undesired = append(undesired, line)
		default:
			desired = append(desired, line)
		}
	}

	w := &model.Worker{
		ID:          name,
		Name:        name,
		Employment:  employment,
		MinInterval: minInterval,
		Workday:     workday,
		Weekend:     weekend,
		Desired:     parseDates(name+".desired", desired, &ve),
		Undesired:   parseDates(name+".undesired", undesired, &ve),
	}
	if ve.HasErrors() {
		return nil, ve.ToAppError().WithField("path", path)
	}
	return w, nil
}

// loadHolidays 读取节假日文件，文件不存在时视为没有节假日
func loadHolidays(path string) (map[time.Time]model.DayWeight, error) {
	holidays := make(map[time.Time]model.DayWeight)
	lines, err := readLines(path)
	if apperrors.Is(err, apperrors.CodeNotFound) {
		logger.Warn().Str("path", path).Msg("节假日文件不存在，按普通日历处理")
		return holidays, nil
	}
	if err != nil {
		return nil, err
	}

	for i, line := range lines {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, apperrors.InvalidInput(path, fmt.Sprintf("第 %d 行需要日期和权重", i+1))
		}
		t, err := parseDay(fields[0])
		if err != nil {
			return nil, err
		}
		weight, err := strconv.ParseFloat(strings.Join(fields[1:], ""), 64)
		if err != nil || weight <= 0 {
			return nil, apperrors.InvalidInput(path, fmt.Sprintf("第 %d 行权重无效 %q", i+1, fields[1]))
		}
		holidays[t] = model.DayWeight(weight)
	}
	return holidays, nil
}

// readLines 读取非空行
func readLines(path string) ([]string, error) {
	raw, err := readRawLines(path)
	if err != nil {
		return nil, err
	}
	lines := raw[:0]
	for _, l := range raw {
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines, nil
}

// readRawLines 读取全部行并去除首尾空白
func readRawLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, openError(err, path)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, strings.TrimSpace(sc.Text()))
	}
	if err := sc.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInvalidInput, "读取文件失败").WithField("path", path)
	}
	return lines, nil
}
