package analyzer

import (
	"fmt"
	"io"
	"strings"

	"daily-digits/internal/database"
)

var rule = strings.Repeat("=", 50)

// Render 以控制台文本格式输出报告
func Render(w io.Writer, r *Report) error {
	p := &printer{w: w}
	p.line("=== DIGIT PATTERN ANALYSIS ===")
	p.line("")

	if r.Empty() {
		p.line("No records to analyze. Import history or submit results first.")
		return p.err
	}

	p.line("Analyzing %d records from %s to %s", r.Records,
		r.From.Format(database.DateLayout), r.To.Format(database.DateLayout))
	p.line("")

	p.section("FREQUENCY DISTRIBUTION ANALYSIS")
	for _, f := range r.Fields {
		p.line("Most Frequent %s:", f.Field.Label())
		for _, e := range f.Top {
			p.line("  %d: %d times (%.1f%%)", e.Value, e.Count, e.Percent)
		}
		p.line("")
	}
	for _, f := range r.Fields {
		p.line("Least Frequent (Cold Numbers) %s:", f.Field.Label())
		for _, vc := range f.Cold {
			p.line("  %d: %d times", vc.Value, vc.Count)
		}
		p.line("")
	}

	p.section("DAY OF WEEK PATTERN ANALYSIS")
	p.line("Average digits by day of week:")
	for _, d := range r.Weekdays {
		p.line("  %s: Digit1 avg=%.1f, Digit2 avg=%.1f (%d days)", d.Weekday, d.Avg1, d.Avg2, d.Count)
	}
	p.line("")

	p.section("DATE PATTERNS (Day of Month)")
	if len(r.Consistent) > 0 {
		p.line("Dates with consistent patterns (low variance):")
		for _, d := range r.Consistent {
			p.line("  Day %d: Avg Digit1=%.1f, Avg Digit2=%.1f (%d occurrences)", d.Day, d.Avg1, d.Avg2, d.Count)
		}
	} else {
		p.line("No day of month shows a consistent pattern.")
	}
	p.line("")

	p.section("SEQUENTIAL PATTERN ANALYSIS")
	p.line("Average day-to-day change:")
	p.line("  Digit1: %.2f", r.Sequential.AvgDiff1)
	p.line("  Digit2: %.2f", r.Sequential.AvgDiff2)
	p.line("")
	p.line("Consecutive day repeats:")
	p.line("  Digit1: %d times (%.1f%%)", r.Sequential.Repeats1, r.Sequential.RepeatPct1)
	p.line("  Digit2: %d times (%.1f%%)", r.Sequential.Repeats2, r.Sequential.RepeatPct2)
	p.line("")

	p.section("GAP ANALYSIS (Overdue Numbers)")
	for _, f := range r.Fields {
		p.line("%s - Numbers not seen recently (overdue):", f.Field.Label())
		for _, g := range f.Overdue {
			p.line("  %d: Last seen %d days ago", g.Value, g.Index)
		}
		p.line("")
	}

	p.section("RANGE PATTERN ANALYSIS")
	p.line("Digit distribution by range:")
	for _, b := range r.Ranges {
		p.line("  %s: %d times (%.1f%%)", b.Label, b.Count, b.Percent)
	}
	p.line("")

	p.section("SUM PATTERN ANALYSIS")
	p.line("Sum of Digit1 + Digit2:")
	p.line("  Average: %.1f", r.Sums.Avg)
	p.line("  Min: %d", r.Sums.Min)
	p.line("  Max: %d", r.Sums.Max)
	p.line("  Median: %.1f", r.Sums.Median)
	p.line("")

	p.section("MONTHLY TRENDS")
	p.line("Monthly averages:")
	for _, m := range r.Monthly {
		p.line("  %s: Digit1=%.1f, Digit2=%.1f", m.Month, m.Avg1, m.Avg2)
	}
	p.line("")

	return p.err
}

// printer 记录第一个写入错误，之后的写入全部忽略
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) line(format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *printer) section(title string) {
	p.line("%s", title)
	p.line("%s", rule)
}
