package components

import (
	"strings"

	"github.com/receiptia/receiptia/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Tab represents a single tab in the tab bar.
type Tab struct {
	Name   string
	Key    rune
	KeyPos int // position of the shortcut letter in the name
}

// Tabs defines the dashboard tabs in display order.
var Tabs = []Tab{
	{Name: "Home", Key: 'h', KeyPos: 0},
	{Name: "Genius", Key: 'g', KeyPos: 0},
	{Name: "Expenses", Key: 'e', KeyPos: 0},
	{Name: "Breakdown", Key: 'b', KeyPos: 0},
	{Name: "Settings", Key: 's', KeyPos: 0},
}

// TabVisualWidth returns the rendered width of a tab, including padding.
func TabVisualWidth(tab Tab, active bool) int {
	return lipgloss.Width(tab.Name) + 2
}

// RenderTabBar renders the tab row with the given active index.
// Tabs are separated by one column.
func RenderTabBar(activeIdx, width int) string {
	t := theme.Active

	activeStyle := lipgloss.NewStyle().
		Foreground(t.Background).
		Background(t.Accent).
		Bold(true).
		Padding(0, 1)
	inactiveStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface)
	keyStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Background(t.Surface).
		Bold(true)
	sep := lipgloss.NewStyle().Background(t.Surface).Render(" ")

	parts := make([]string, len(Tabs))
	for i, tab := range Tabs {
		if i == activeIdx {
			parts[i] = activeStyle.Render(tab.Name)
			continue
		}
		before, key, after := tab.Name[:tab.KeyPos], tab.Name[tab.KeyPos:tab.KeyPos+1], tab.Name[tab.KeyPos+1:]
		parts[i] = inactiveStyle.Render(" "+before) + keyStyle.Render(key) + inactiveStyle.Render(after+" ")
	}

	row := strings.Join(parts, sep)
	return lipgloss.NewStyle().Background(t.Surface).Width(width).Render(row)
}

// TabIdxByKey returns the tab index for a given key press, or -1.
func TabIdxByKey(key string) int {
	for i, tab := range Tabs {
		if string(tab.Key) == key {
			return i
		}
	}
	return -1
}
