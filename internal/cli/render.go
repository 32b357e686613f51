package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/yukikurage/task-board/internal/models"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	priorityStyles = map[models.Priority]lipgloss.Style{
		models.PriorityHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		models.PriorityMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("226")),
		models.PriorityLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("69")),
	}
)

// render writes v as JSON or YAML, or calls text for the human format.
func (a *app) render(v any, text func(w io.Writer)) error {
	switch a.format {
	case formatJSON:
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(a.out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		text(a.out)
		return nil
	}
}

func header(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf(format, args...)))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// taskLine is the one-line text form of a task.
func taskLine(t models.Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  %s  %s", mutedStyle.Render(shortID(t.ID)), t.Title)
	if style, ok := priorityStyles[t.Priority]; ok {
		b.WriteString("  " + style.Render(string(t.Priority)))
	}
	if t.AssigneeID != nil {
		b.WriteString("  @" + shortID(*t.AssigneeID))
	}
	if len(t.Tags) > 0 {
		b.WriteString("  " + mutedStyle.Render("#"+strings.Join(t.Tags, " #")))
	}
	return b.String()
}

func writeTasks(w io.Writer, tasks []models.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("  (none)"))
		return
	}
	for _, t := range tasks {
		fmt.Fprintln(w, taskLine(t))
	}
}
