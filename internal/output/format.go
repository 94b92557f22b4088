// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"taskflow/internal/service"
)

// rowFormat lays out one task per line:
// "{ID:>4}  {STATUS:<6}  {DUE:<10}  {PRIORITY:<9}  {DIFFICULTY:<10}  {TITLE}"
const rowFormat = "%4v  %-6s  %-10s  %-9s  %-10s  %s\n"

// NoTasks is printed for an empty list.
const NoTasks = "no tasks found"

// FormatHeader writes the column header of a task list.
func FormatHeader(w io.Writer) {
	fmt.Fprintf(w, rowFormat, "ID", "STATUS", "DUE", "PRIORITY", "DIFFICULTY", "TITLE")
}

// FormatTask writes a task row.
func FormatTask(w io.Writer, task service.Task) {
	fmt.Fprintf(w, rowFormat,
		task.ID,
		task.Status.Label(),
		dueOrDash(task),
		task.Priority.Label(),
		task.Difficulty.Label(),
		normalizeTitle(task.Title),
	)
}

// FormatTasks writes a header and one row per task.
func FormatTasks(w io.Writer, tasks []service.Task) {
	FormatHeader(w)
	for _, t := range tasks {
		FormatTask(w, t)
	}
}

// FormatCard writes every field of a task, one per line, followed by the
// description indented by two spaces.
func FormatCard(w io.Writer, task service.Task) {
	fmt.Fprintf(w, "#%d %s\n", task.ID, normalizeTitle(task.Title))
	fmt.Fprintf(w, "Status:     %s\n", task.Status.Label())
	fmt.Fprintf(w, "Priority:   %s\n", task.Priority.Label())
	fmt.Fprintf(w, "Difficulty: %s\n", task.Difficulty.Label())
	fmt.Fprintf(w, "Due:        %s\n", dueOrDash(task))

	desc := strings.TrimSpace(strings.ReplaceAll(task.Description, "\r\n", "\n"))
	if desc == "" {
		return
	}
	fmt.Fprintln(w)
	for _, line := range strings.Split(desc, "\n") {
		fmt.Fprintf(w, "  %s\n", strings.TrimRight(line, " \t"))
	}
}

func dueOrDash(task service.Task) string {
	if due := task.DueString(); due != "" {
		return due
	}
	return "-"
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
