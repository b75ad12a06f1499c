package output

import (
	"fmt"
	"strings"
)

// ScoreBar renders a bar for a 0-100 score, e.g. "████████░░ 80/100".
func ScoreBar(score float64, width int) string {
	if width <= 0 {
		width = 20
	}
	filled := min(width, max(0, int(score/100*float64(width))))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("%s %s", scoreStyle(score)(bar), StyleMuted.Render(fmt.Sprintf("%.0f/100", score)))
}

// Score renders a score with one decimal in its band color.
func Score(score float64) string {
	return scoreStyle(score)(fmt.Sprintf("%.1f", score))
}

func scoreStyle(score float64) func(...string) string {
	switch {
	case score >= 70:
		return StyleSuccess.Render
	case score >= 40:
		return StyleWarning.Render
	default:
		return StyleError.Render
	}
}

// Direction renders a trend direction word as an arrow. Higher values are
// assumed better.
func Direction(dir string) string {
	switch dir {
	case "increasing":
		return StyleSuccess.Render("▲ increasing")
	case "decreasing":
		return StyleError.Render("▼ decreasing")
	default:
		return StyleMuted.Render("─ stable")
	}
}

// TrendArrowPercent returns a styled indicator for a percentage change.
func TrendArrowPercent(delta float64, higherIsBetter bool) string {
	if delta == 0 {
		return StyleMuted.Render("─")
	}
	arrow := fmt.Sprintf("▼ %.1f%%", delta)
	if delta > 0 {
		arrow = fmt.Sprintf("▲ +%.1f%%", delta)
	}
	if (delta > 0) == higherIsBetter {
		return StyleSuccess.Render(arrow)
	}
	return StyleError.Render(arrow)
}

// Severity renders an alert severity.
func Severity(sev string) string {
	if sev == "critical" {
		return StyleError.Render("CRITICAL")
	}
	return StyleWarning.Render("WARNING")
}

const defaultRuleWidth = 66

var ruleWidth = defaultRuleWidth

// SetWidth sizes section rules for a terminal of the given width. Widths
// below 20 restore the default.
func SetWidth(width int) {
	if width < 20 {
		ruleWidth = defaultRuleWidth
		return
	}
	ruleWidth = width - 2
}

// Section returns a styled section header with a horizontal rule.
func Section(title string) string {
	header := StyleHeader.Render(title)
	rule := StyleMuted.Render(strings.Repeat("─", ruleWidth))
	return fmt.Sprintf("\n %s\n %s", header, rule)
}

// KeyValue renders one padded label and value line.
func KeyValue(label, value string) string {
	return " " + StyleLabel.Render(label) + value
}
