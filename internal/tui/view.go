package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/raphaelgruber/ordermatters/internal/chat"
	"github.com/raphaelgruber/ordermatters/internal/strategy"
)

var helpText = map[Tab]string{
	TabOverview:     "tab/1-6 switch tabs • q quit",
	TabPlayground:   "↑/↓ select • K/J move item • p perfect • w worst • r random • q quit",
	TabStrategies:   "←/→ change strategy • q quit",
	TabSegmentation: "+/- segment size • q quit",
	TabResults:      "tab switch tabs • q quit",
	TabAssistant:    "enter send • tab leave • ctrl+c quit",
}

func (m Model) render() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.theme.titleStyle().Render("Order Matters!"))
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	switch m.tab {
	case TabOverview:
		b.WriteString(m.renderOverview())
	case TabPlayground:
		b.WriteString(m.renderPlayground())
	case TabStrategies:
		b.WriteString(m.renderStrategies())
	case TabSegmentation:
		b.WriteString(m.renderSegmentation())
	case TabResults:
		b.WriteString(m.renderResults())
	case TabAssistant:
		b.WriteString(m.renderAssistant())
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(m.theme.errorStyle().Render("✗ " + m.err.Error()))
	}
	b.WriteString("\n")
	b.WriteString(m.theme.hintStyle().Render(helpText[m.tab]))
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderTabs() string {
	tabs := make([]string, len(tabNames))
	for i, name := range tabNames {
		label := fmt.Sprintf("%d %s", i+1, name)
		if Tab(i) == m.tab {
			tabs[i] = m.theme.activeTabStyle().Render(label)
		} else {
			tabs[i] = m.theme.tabStyle().Render(label)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) renderOverview() string {
	var b strings.Builder

	if doc := m.data.Briefing; doc != nil {
		b.WriteString(m.theme.titleStyle().Render(doc.Title))
		b.WriteString("\n")
		if doc.Meta.Venue != "" {
			fmt.Fprintf(&b, "%s • %s\n", doc.Meta.Venue, strings.Join(doc.Meta.Authors, ", "))
		}
		if len(doc.Meta.Models) > 0 {
			fmt.Fprintf(&b, "Models: %s\n", strings.Join(doc.Meta.Models, ", "))
		}
		b.WriteString("\n")
	}

	rows := m.data.OrderBias
	if len(rows) > 0 {
		best, worst := rows[0], rows[len(rows)-1]
		for _, r := range rows {
			if r.Tau > best.Tau {
				best = r
			}
			if r.Tau < worst.Tau {
				worst = r
			}
		}
		b.WriteString("Presenting the faulty method first versus last:\n")
		fmt.Fprintf(&b, "  %-8s %s %5.1f%% Top-1\n", best.Label, m.bar.ViewAs(best.Top1/100), best.Top1)
		fmt.Fprintf(&b, "  %-8s %s %5.1f%% Top-1\n", worst.Label, m.bar.ViewAs(worst.Top1/100), worst.Top1)
		b.WriteString("\n")
	}

	b.WriteString(m.theme.hintStyle().Render("Reorder methods in the Playground and watch the Kendall Tau score."))
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderPlayground() string {
	if !m.loaded {
		return "Loading session...\n"
	}

	var list strings.Builder
	for i, e := range m.state.Items {
		prefix := "  "
		if i == m.cursor {
			prefix = "> "
		}
		line := fmt.Sprintf("%s%d. %s", prefix, i+1, e.DisplayName())
		if e.Target {
			line = m.theme.targetStyle().Render(line)
		}
		list.WriteString(line)
		list.WriteString("\n")
	}

	res := m.state.Result
	var info strings.Builder
	fmt.Fprintf(&info, "Kendall Tau: %s\n", m.theme.scoreStyle(res.Score).Render(fmt.Sprintf("%.2f", res.Score)))
	fmt.Fprintf(&info, "Concordant %d • Discordant %d\n", res.Concordant, res.Discordant)
	if exp := m.state.Expected; exp != nil {
		fmt.Fprintf(&info, "\nClosest reference: %s (τ %.1f)\n", exp.Label, exp.Tau)
		fmt.Fprintf(&info, "Top-1 %s %.1f%%\n", m.bar.ViewAs(exp.Top1/100), exp.Top1)
	}

	labels := make(map[int]string, len(m.state.Items))
	for _, e := range m.state.Items {
		labels[e.ID] = e.Label
	}
	if wrong := res.DiscordantPairs(); len(wrong) > 0 {
		info.WriteString("\nOut of order:\n")
		for _, p := range wrong {
			fmt.Fprintf(&info, "  %s before %s\n", labels[p.First], labels[p.Second])
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		m.theme.panelStyle().Render(strings.TrimRight(list.String(), "\n")),
		"  ",
		info.String(),
	) + "\n"
}

func (m Model) renderStrategies() string {
	if !m.loaded {
		return "Loading session...\n"
	}

	var b strings.Builder
	current := m.state.Strategy.Strategy
	names := make([]string, 0, len(strategy.All()))
	for _, s := range strategy.All() {
		if s == current {
			names = append(names, m.theme.activeTabStyle().Render(string(s)))
		} else {
			names = append(names, m.theme.tabStyle().Render(string(s)))
		}
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, names...))
	b.WriteString("\n")
	b.WriteString(m.theme.hintStyle().Render(current.Description()))
	b.WriteString("\n\n")

	for i, e := range m.state.Strategy.Ranked {
		line := fmt.Sprintf("%d. %-16s size %4d  distance %d  score %.2f", i+1, e.Label, e.Size, e.Distance, e.LearnedScore)
		if e.Target {
			line = m.theme.targetStyle().Render(line + "  ← faulty")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	rank := m.state.Strategy.TargetRank
	fmt.Fprintf(&b, "\nFaulty method rank: %s of %d\n",
		m.rankStyle(rank).Render(strconv.Itoa(rank)), len(m.state.Strategy.Ranked))

	if row := m.state.Measured; row != nil {
		fmt.Fprintf(&b, "Measured: %s (%s) Top-1 %s %.1f%%\n",
			row.Technique, row.Category, m.bar.ViewAs(row.Top1/100), row.Top1)
	}
	return b.String()
}

func (m Model) rankStyle(rank int) lipgloss.Style {
	if rank == 1 {
		return m.theme.goodStyle()
	}
	return m.theme.errorStyle()
}

func (m Model) renderSegmentation() string {
	split := m.split
	if split.Size == 0 {
		return "Loading segments...\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d items in segments of %d (target item %d)\n\n", split.Total, split.Size, split.Target)

	for _, seg := range split.Segments {
		cells := make([]string, len(seg.Items))
		for i, item := range seg.Items {
			cell := fmt.Sprintf("%2d", item)
			if item == split.Target {
				cell = m.theme.targetStyle().Render(cell)
			}
			cells[i] = cell
		}
		fmt.Fprintf(&b, "Segment %-2d [%s]\n", seg.Index+1, strings.Join(cells, " "))
	}

	if split.TargetSegment >= 0 {
		fmt.Fprintf(&b, "\nTarget lands in segment %d at position %d\n", split.TargetSegment+1, split.TargetPosition)
	}

	if row, ok := m.data.BySegmentSize(split.Size); ok {
		fmt.Fprintf(&b, "\nMeasured at size %d: perfect %.1f%% • worst %.1f%% • gap %.1f\n",
			row.SegmentSize, row.PerfectTop1, row.WorstTop1, row.Gap())
	}
	return b.String()
}

func (m Model) renderResults() string {
	var b strings.Builder

	b.WriteString(m.theme.titleStyle().Render("Order bias"))
	b.WriteString("\n")
	for _, r := range m.data.OrderBias {
		fmt.Fprintf(&b, "  %-14s τ %5.1f %s %5.1f%%\n", r.Label, r.Tau, m.bar.ViewAs(r.Top1/100), r.Top1)
	}

	b.WriteString("\n")
	b.WriteString(m.theme.titleStyle().Render("Segmentation"))
	b.WriteString("\n")
	for _, r := range m.data.Segmentation {
		fmt.Fprintf(&b, "  size %-3d perfect %5.1f%%  worst %5.1f%%  gap %4.1f\n", r.SegmentSize, r.PerfectTop1, r.WorstTop1, r.Gap())
	}

	b.WriteString("\n")
	b.WriteString(m.theme.titleStyle().Render("Ordering strategies"))
	b.WriteString("\n")
	for _, r := range m.data.StrategiesByTop1() {
		fmt.Fprintf(&b, "  %-22s %s %5.1f%%\n", r.Technique, m.bar.ViewAs(r.Top1/100), r.Top1)
	}

	b.WriteString("\n")
	b.WriteString(m.theme.titleStyle().Render("Memorization"))
	b.WriteString("\n")
	for _, r := range m.data.Leakage {
		fmt.Fprintf(&b, "  %-24s original %5.1f%%  renamed %5.1f%%\n", r.Context, r.Original, r.Renamed)
	}
	return b.String()
}

func (m Model) renderAssistant() string {
	var b strings.Builder
	for _, msg := range m.state.Messages {
		switch {
		case msg.IsError:
			b.WriteString(m.theme.errorStyle().Render("Assistant: " + msg.Text))
		case msg.Role == chat.RoleUser:
			b.WriteString(m.theme.titleStyle().Render("You: ") + msg.Text)
		default:
			b.WriteString(m.theme.goodStyle().Render("Assistant: ") + msg.Text)
		}
		b.WriteString("\n\n")
	}
	if m.state.ChatState == chat.StateAwaiting {
		b.WriteString(m.theme.hintStyle().Render("Thinking..."))
		b.WriteString("\n")
	}
	b.WriteString(m.input.View())
	b.WriteString("\n")
	return b.String()
}
