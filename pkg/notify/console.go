package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var levelIcons = map[Level]string{
	LevelSuccess: "✓",
	LevelError:   "✕",
	LevelWarning: "⚠",
	LevelInfo:    "ℹ",
}

var levelColors = map[Level]lipgloss.Color{
	LevelSuccess: lipgloss.Color("#7BC4CE"),
	LevelError:   lipgloss.Color("#FF6B6B"),
	LevelWarning: lipgloss.Color("#F5A282"),
	LevelInfo:    lipgloss.Color("#9ED1D9"),
}

// Console writes each notification as one styled line.
type Console struct {
	mu       sync.Mutex
	out      io.Writer
	renderer *lipgloss.Renderer
}

// NewConsole returns a console sink writing to out.
func NewConsole(out io.Writer) *Console {
	return &Console{
		out:      out,
		renderer: lipgloss.NewRenderer(out),
	}
}

// Render formats a notification the way Console prints it.
func (c *Console) Render(level Level, title, message string) string {
	color, ok := levelColors[level]
	if !ok {
		color = levelColors[LevelInfo]
	}

	icon := c.renderer.NewStyle().Bold(true).Foreground(color).Render(levelIcons[level])
	heading := c.renderer.NewStyle().Bold(true).Render(title)
	body := c.renderer.NewStyle().Foreground(lipgloss.Color("#5A6C7D")).Render(message)

	if message == "" {
		return fmt.Sprintf("%s %s", icon, heading)
	}
	return fmt.Sprintf("%s %s  %s", icon, heading, body)
}

func (c *Console) write(level Level, title, message string) {
	line := c.Render(level, title, message)

	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, line)
}

func (c *Console) NotifySuccess(title, message string) { c.write(LevelSuccess, title, message) }
func (c *Console) NotifyError(title, message string)   { c.write(LevelError, title, message) }
func (c *Console) NotifyWarning(title, message string) { c.write(LevelWarning, title, message) }
func (c *Console) NotifyInfo(title, message string)    { c.write(LevelInfo, title, message) }
