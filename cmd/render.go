package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/resource-sim/resource-sim/sim"
	"github.com/resource-sim/resource-sim/sim/trace"
)

// Terminal palette. Styles degrade to plain text when stdout is not a TTY.
var (
	colorTeal   = lipgloss.Color("#20B9B4")
	colorBright = lipgloss.Color("#2CD7C7")
	colorSlate  = lipgloss.Color("#2C4A54")
	colorDark   = lipgloss.Color("#0F1923")
	colorWarn   = lipgloss.Color("#F4D03F")
	colorError  = lipgloss.Color("#E74C3C")

	// processColors cycles across PIDs in the Gantt bar.
	processColors = []lipgloss.Color{"#2CD7C7", "#1D9EA3", "#16858E", "#157483", "#104855"}
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorBright)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorSlate)
	idleStyle    = lipgloss.NewStyle().Foreground(colorSlate)
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(colorBright)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarn)
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorError)
)

var boxStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorTeal).
	Padding(0, 1)

// ganttWidth is the target number of columns for the timeline bar. Longer
// schedules are compressed to several ticks per column.
const ganttWidth = 72

// writeJSON writes v as indented JSON followed by a newline.
func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling output: %w", err)
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorSlate)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return s.Bold(true).Foreground(colorTeal)
			}
			return s
		})
}

func processStyle(pid int) lipgloss.Style {
	c := processColors[(pid%len(processColors)+len(processColors))%len(processColors)]
	return lipgloss.NewStyle().Background(c).Foreground(colorDark)
}

// ganttBar draws the timeline as labelled blocks over a time axis. Gaps
// between entries are drawn as idle blocks.
func ganttBar(gantt []sim.GanttEntry) string {
	if len(gantt) == 0 {
		return mutedStyle.Render("(empty timeline)")
	}
	scale := (gantt[len(gantt)-1].End + ganttWidth - 1) / ganttWidth

	var bar, axis strings.Builder
	block := func(label string, start, dur int64, style lipgloss.Style) {
		tick := strconv.FormatInt(start, 10)
		width := max(int(dur/scale), len(label)+2, len(tick)+1)
		bar.WriteString("|")
		bar.WriteString(style.Width(width).Align(lipgloss.Center).Render(label))
		fmt.Fprintf(&axis, "%-*s", width+1, tick)
	}

	var clock int64
	for _, g := range gantt {
		if g.Start > clock {
			block("idle", clock, g.Start-clock, idleStyle)
		}
		block("P"+strconv.Itoa(g.PID), g.Start, g.Duration(), processStyle(g.PID))
		clock = g.End
	}
	bar.WriteString("|")
	axis.WriteString(strconv.FormatInt(clock, 10))
	return bar.String() + "\n" + axis.String()
}

func renderSchedule(w io.Writer, res *sim.Result) {
	title := strings.ToUpper(string(res.Policy))
	if res.Quantum > 0 {
		title += fmt.Sprintf(" (quantum %d)", res.Quantum)
	}
	fmt.Fprintln(w, titleStyle.Render(title))
	fmt.Fprintln(w, ganttBar(res.Gantt))
	fmt.Fprintln(w)

	t := newTable("PID", "Arrival", "Burst", "Priority", "Completion", "Turnaround", "Waiting", "Response")
	for _, p := range res.Processes {
		response := "-"
		if p.Dispatched() {
			response = strconv.FormatInt(p.ResponseTime-p.ArrivalTime, 10)
		}
		t.Row(
			strconv.Itoa(p.PID),
			strconv.FormatInt(p.ArrivalTime, 10),
			strconv.FormatInt(p.BurstTime, 10),
			strconv.Itoa(p.Priority),
			strconv.FormatInt(p.CompletionTime, 10),
			strconv.FormatInt(p.TurnaroundTime, 10),
			strconv.FormatInt(p.WaitingTime, 10),
			response,
		)
	}
	fmt.Fprintln(w, t.Render())

	var m strings.Builder
	res.Metrics.Print(&m)
	fmt.Fprintln(w, boxStyle.Render(strings.TrimRight(m.String(), "\n")))
}

func renderComparison(w io.Writer, cmp *sim.Comparison) {
	fmt.Fprintln(w, titleStyle.Render("Policy comparison"), mutedStyle.Render(cmp.ID))

	best := cmp.Best()
	bestRow := -1
	t := newTable("Policy", "Avg Waiting", "Avg Turnaround", "Avg Response", "Throughput", "CPU %", "Switches")
	for i, r := range cmp.Results {
		if r.Policy == best {
			bestRow = i
		}
		m := r.Metrics
		t.Row(
			string(r.Policy),
			fmt.Sprintf("%.2f", m.AvgWaitingTime),
			fmt.Sprintf("%.2f", m.AvgTurnaroundTime),
			fmt.Sprintf("%.2f", m.AvgResponseTime),
			fmt.Sprintf("%.4f", m.Throughput),
			fmt.Sprintf("%.1f", m.CPUUtilization*100),
			strconv.Itoa(m.ContextSwitches),
		)
	}
	t.StyleFunc(func(row, col int) lipgloss.Style {
		s := lipgloss.NewStyle().Padding(0, 1)
		switch row {
		case table.HeaderRow:
			return s.Bold(true).Foreground(colorTeal)
		case bestRow:
			return s.Foreground(colorBright)
		}
		return s
	})
	fmt.Fprintln(w, t.Render())
	if best != "" {
		fmt.Fprintln(w, "Lowest average waiting time:", successStyle.Render(string(best)))
	}
}

func renderDeadlock(w io.Writer, r *deadlockReport) {
	fmt.Fprintln(w, titleStyle.Render("Resource-allocation graph"))

	res := newTable("Resource", "Total", "Allocated", "Free")
	for _, x := range r.Resources {
		res.Row(x.ID, strconv.Itoa(x.Total), strconv.Itoa(x.Allocated), strconv.Itoa(x.Free()))
	}
	fmt.Fprintln(w, res.Render())

	for _, e := range r.Edges {
		fmt.Fprintf(w, "  %s -> %s x%d %s\n", e.From, e.To, e.Weight, mutedStyle.Render(string(e.Kind)))
	}

	waiters := make([]string, 0, len(r.WaitFor))
	for p, blockers := range r.WaitFor {
		if len(blockers) > 0 {
			waiters = append(waiters, p)
		}
	}
	sort.Strings(waiters)
	if len(waiters) > 0 {
		fmt.Fprintln(w, titleStyle.Render("Wait-for graph"))
		for _, p := range waiters {
			fmt.Fprintf(w, "  %s waits for %s\n", p, strings.Join(r.WaitFor[p], ", "))
		}
	}

	if !r.Deadlocked {
		fmt.Fprintln(w, successStyle.Render("No deadlock"))
		return
	}
	loop := append(append([]string(nil), r.Cycle...), r.Cycle[0])
	fmt.Fprintln(w, errorStyle.Render("DEADLOCK: "+strings.Join(loop, " -> ")))
}

func joinInts(v []int) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = strconv.Itoa(x)
	}
	return strings.Join(parts, " ")
}

func renderBanker(w io.Writer, r *bankerReport) {
	s := r.Initial
	fmt.Fprintln(w, titleStyle.Render("Banker's state"), mutedStyle.Render("("+strings.Join(s.Resources, " ")+")"))
	fmt.Fprintln(w, "Available:", joinInts(s.Available))

	t := newTable("Process", "Max", "Allocation", "Need")
	for i, p := range s.Processes {
		t.Row(p, joinInts(s.Max[i]), joinInts(s.Allocation[i]), joinInts(s.Need[i]))
	}
	fmt.Fprintln(w, t.Render())

	if r.Safe {
		fmt.Fprintln(w, successStyle.Render("SAFE"), "order:", strings.Join(r.Order, " -> "))
	} else {
		fmt.Fprintln(w, errorStyle.Render("UNSAFE"), "no order lets every process finish")
	}

	if len(r.Outcomes) == 0 {
		return
	}
	fmt.Fprintln(w, titleStyle.Render("Requests"))
	for i, o := range r.Outcomes {
		verdict := successStyle.Render("GRANTED")
		if !o.Granted {
			verdict = warningStyle.Render("DENIED")
		}
		fmt.Fprintf(w, "  %d. %s requests [%s]: %s %s\n", i+1, o.Process, joinInts(o.Amounts), verdict, mutedStyle.Render(o.Message))
	}
	fmt.Fprintln(w, "Available after requests:", joinInts(r.Final.Available))
	if r.Trace != nil {
		renderTraceSummary(w, r.Trace)
	}
}

func renderTraceSummary(w io.Writer, s *trace.TraceSummary) {
	var lines []string
	if s.TotalDispatches > 0 {
		lines = append(lines, fmt.Sprintf("Dispatches: %d (%d preempted) across %d processes",
			s.TotalDispatches, s.Preemptions, s.UniqueProcesses))
		pids := make([]int, 0, len(s.DispatchDistribution))
		for pid := range s.DispatchDistribution {
			pids = append(pids, pid)
		}
		sort.Ints(pids)
		for _, pid := range pids {
			lines = append(lines, fmt.Sprintf("  P%d: %d", pid, s.DispatchDistribution[pid]))
		}
	}
	if s.TotalRequests > 0 {
		lines = append(lines, fmt.Sprintf("Requests: %d granted, %d denied", s.GrantedCount, s.DeniedCount))
		reasons := make([]string, 0, len(s.DenialReasons))
		for reason := range s.DenialReasons {
			reasons = append(reasons, reason)
		}
		sort.Strings(reasons)
		for _, reason := range reasons {
			lines = append(lines, fmt.Sprintf("  %s: %d", reason, s.DenialReasons[reason]))
		}
	}
	if len(lines) == 0 {
		lines = append(lines, "No decisions recorded")
	}
	fmt.Fprintln(w, boxStyle.Render(titleStyle.Render("Decision trace")+"\n"+strings.Join(lines, "\n")))
}
