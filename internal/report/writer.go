package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	apperrors "github.com/paiban/nightshift/pkg/errors"
	"github.com/paiban/nightshift/pkg/model"
	"github.com/paiban/nightshift/pkg/scheduler/constraint"
)

// HardLimitMark 指派员工不在当日可排班名单时的行尾标记
const HardLimitMark = "Hard limit error"

// abbreviate 取名字前三个字符作为列名
func abbreviate(name string) string {
	r := []rune(name)
	if len(r) > 3 {
		r = r[:3]
	}
	return string(r)
}

// WriteTable 输出排班表，每天一行，每位员工一列
func WriteTable(w io.Writer, s *Schedule) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)

	header := make([]string, 0, s.Roster.Len()+1)
	header = append(header, "")
	for _, wk := range s.Roster.Workers {
		header = append(header, abbreviate(wk.ID))
	}
	fmt.Fprintln(tw, strings.Join(header, "\t")+"\t")

	row := make([]string, s.Roster.Len()+1)
	for _, a := range s.Assignments {
		row[0] = model.FormatDate(a.Date)
		for i := range s.Roster.Workers {
			row[i+1] = ""
			if i == a.Worker {
				row[i+1] = "X"
			}
		}
		line := strings.Join(row, "\t") + "\t"
		if !a.Eligible {
			line += HardLimitMark
		}
		fmt.Fprintln(tw, line)
	}
	return tw.Flush()
}

// WriteSummary 输出员工统计
func WriteSummary(w io.Writer, sum *Summary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "worker\tworkday\ttarget\tfriday\tweekend\ttarget\ttotal\tdev%\t")
	for _, st := range sum.Workers {
		fmt.Fprintf(tw, "%s\t%d\t%.2f\t%d\t%d\t%.2f\t%d\t%+.1f\t\n",
			st.Name, st.Workdays, st.WorkdayTarget, st.Fridays,
			st.Weekends, st.WeekendTarget, st.Total, st.Deviation)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "avg %.2f  stddev %.2f  gini %.3f  weekend gini %.3f\n",
		sum.AvgShifts, sum.StdDev, sum.TotalGini, sum.WeekendGini)
	return err
}

// WriteViolations 输出诊断评分发现的违规
func WriteViolations(w io.Writer, violations []constraint.ViolationDetail) error {
	for _, v := range violations {
		date := ""
		if v.Date != "" {
			date = v.Date + " "
		}
		if _, err := fmt.Fprintf(w, "[%s] %s %s%s (-%.0f)\n",
			v.Severity, v.WorkerID, date, v.Message, v.Penalty); err != nil {
			return err
		}
	}
	return nil
}

// WriteNotes 输出无法量化的人工备注
func WriteNotes(w io.Writer, notes []string) error {
	for _, n := range notes {
		if _, err := fmt.Fprintln(w, n); err != nil {
			return err
		}
	}
	return nil
}

// WriteResults 将排班结果写入文件，每行一个员工
func WriteResults(path string, s *Schedule) error {
	f, err := os.Create(path)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "创建结果文件失败").WithField("path", path)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	for _, a := range s.Assignments {
		if _, err := bw.WriteString(a.WorkerID + "\n"); err != nil {
			return apperrors.Wrap(err, apperrors.CodeInternal, "写入结果文件失败").WithField("path", path)
		}
	}
	if err := bw.Flush(); err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "写入结果文件失败").WithField("path", path)
	}
	return nil
}
