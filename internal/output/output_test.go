package output

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVisualLen(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"plain", "hello", 5},
		{"empty", "", 0},
		{"bold", "\x1b[1mhello\x1b[0m", 5},
		{"nested", "\x1b[1m\x1b[34mblue bold\x1b[0m", 9},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, visualLen(tc.input))
		})
	}
}

func TestPad(t *testing.T) {
	assert.Equal(t, "hi        ", pad("hi", 10))
	assert.Equal(t, "toolong", pad("toolong", 3))
	assert.Equal(t, 6, visualLen(pad("\x1b[31mred\x1b[0m", 6)))
}

func TestTable_Render(t *testing.T) {
	SetNoColor(true)

	tbl := NewTable("Product", "Score", "Note")
	tbl.AddRow("p1", "95.0", "ok")
	tbl.AddRow("p-long-id", "7.5")
	tbl.AddRow("p3", "50.0", "x", "dropped")
	assert.Equal(t, 3, tbl.Len())

	lines := strings.Split(strings.TrimRight(tbl.Render(), "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "Product    Score  Note", lines[0])
	assert.Equal(t, "─────────  ─────  ────", lines[1])
	assert.Equal(t, "p1         95.0   ok", lines[2])
	assert.Equal(t, "p-long-id  7.5    ", lines[3])
	assert.NotContains(t, lines[4], "dropped")
	assert.Equal(t, tbl.String(), tbl.Render())
}

func TestTable_Empty(t *testing.T) {
	assert.Empty(t, NewTable().Render())
}

func TestScoreBar(t *testing.T) {
	SetNoColor(true)
	assert.Equal(t, "████████░░ 80/100", ScoreBar(80, 10))
	assert.Equal(t, "░░░░░ -5/100", ScoreBar(-5, 5))
	assert.Equal(t, "█████ 150/100", ScoreBar(150, 5))
	assert.Equal(t, 20+len(" 50/100"), visualLen(ScoreBar(50, 0)))
}

func TestIndicators(t *testing.T) {
	SetNoColor(true)
	assert.Equal(t, "▲ increasing", Direction("increasing"))
	assert.Equal(t, "▼ decreasing", Direction("decreasing"))
	assert.Equal(t, "─ stable", Direction("anything"))
	assert.Equal(t, "▲ +12.5%", TrendArrowPercent(12.5, true))
	assert.Equal(t, "▼ -3.0%", TrendArrowPercent(-3, true))
	assert.Equal(t, "─", TrendArrowPercent(0, true))
	assert.Equal(t, "CRITICAL", Severity("critical"))
	assert.Equal(t, "WARNING", Severity("warning"))
	assert.Equal(t, "71.2", Score(71.24))
}

func TestAutoColor_NotTerminal(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out"))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	noColor = false
	AutoColor(f, true)
	assert.True(t, IsNoColor())
}

func TestSetNoColor(t *testing.T) {
	SetNoColor(true)
	assert.NotContains(t, StyleHeader.Render("test"), "\x1b[")
	assert.True(t, IsNoColor())
}

func TestSection_Width(t *testing.T) {
	SetNoColor(true)
	t.Cleanup(func() { SetWidth(0) })

	SetWidth(40)
	s := Section("Title")
	assert.Contains(t, s, "Title")
	assert.Contains(t, s, strings.Repeat("─", 38))
	assert.NotContains(t, s, strings.Repeat("─", 39))

	SetWidth(5)
	assert.Contains(t, Section("Title"), strings.Repeat("─", defaultRuleWidth))
}
