// Package render provides output formatting utilities for ncluster commands.
package render

import (
	"fmt"
	"io"
	"strconv"
	"time"
)

// Constants for human output formatting.
const (
	// NameMaxLen is the maximum display length for a task name.
	NameMaxLen = 50

	SessionAlive = "alive"
	SessionGone  = "-"
)

// TaskRow holds the display fields of a single ls row.
type TaskRow struct {
	Name        string
	Session     string
	Created     string
	Commands    string
	Generations string
	WorkingDir  string
}

// TaskSummary is the input of FormatTaskRow.
type TaskSummary struct {
	Name        string
	Alive       bool
	CreatedAt   time.Time
	Commands    int
	Generations int
	WorkingDir  string
}

// FormatTaskRow converts a summary to a display row relative to now.
func FormatTaskRow(s TaskSummary, now time.Time) TaskRow {
	row := TaskRow{
		Name:        truncateName(s.Name),
		Session:     SessionGone,
		Commands:    strconv.Itoa(s.Commands),
		Generations: strconv.Itoa(s.Generations),
		WorkingDir:  s.WorkingDir,
	}
	if s.Alive {
		row.Session = SessionAlive
	}
	if !s.CreatedAt.IsZero() {
		row.Created = formatRelativeTime(s.CreatedAt, now)
	}
	return row
}

// WriteTasks writes rows as whitespace-aligned columns.
func WriteTasks(w io.Writer, rows []TaskRow) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "no tasks found")
		return err
	}

	header := TaskRow{
		Name:        "TASK",
		Session:     "SESSION",
		Created:     "CREATED",
		Commands:    "CMDS",
		Generations: "GENS",
		WorkingDir:  "WORKING_DIR",
	}
	widths := columnWidths(append([]TaskRow{header}, rows...))

	if _, err := fmt.Fprintln(w, formatRow(header, widths)); err != nil {
		return err
	}
	for _, row := range rows {
		if _, err := fmt.Fprintln(w, formatRow(row, widths)); err != nil {
			return err
		}
	}
	return nil
}

// colWidths holds the calculated column widths. The last column is unpadded.
type colWidths struct {
	name, session, created, commands, generations int
}

func columnWidths(rows []TaskRow) colWidths {
	var w colWidths
	for _, row := range rows {
		w.name = max(w.name, len(row.Name))
		w.session = max(w.session, len(row.Session))
		w.created = max(w.created, len(row.Created))
		w.commands = max(w.commands, len(row.Commands))
		w.generations = max(w.generations, len(row.Generations))
	}
	return w
}

func formatRow(row TaskRow, w colWidths) string {
	return fmt.Sprintf("%-*s  %-*s  %-*s  %*s  %*s  %s",
		w.name, row.Name,
		w.session, row.Session,
		w.created, row.Created,
		w.commands, row.Commands,
		w.generations, row.Generations,
		row.WorkingDir,
	)
}

// truncateName truncates the name to NameMaxLen, adding ellipsis if needed.
func truncateName(name string) string {
	runes := []rune(name)
	if len(runes) <= NameMaxLen {
		return name
	}
	return string(runes[:NameMaxLen-1]) + "…"
}

// formatRelativeTime formats a time as a human-friendly relative string.
func formatRelativeTime(t time.Time, now time.Time) string {
	diff := now.Sub(t)
	if diff < 0 {
		diff = -diff
	}

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return plural(int(diff.Minutes()), "min")
	case diff < 24*time.Hour:
		return plural(int(diff.Hours()), "hour")
	case diff < 7*24*time.Hour:
		return plural(int(diff.Hours()/24), "day")
	case diff < 30*24*time.Hour:
		return plural(int(diff.Hours()/(24*7)), "week")
	default:
		return t.Format("2006-01-02")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit + " ago"
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
