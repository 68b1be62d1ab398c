package render

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestFormatRelativeTime(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{10 * time.Second, "just now"},
		{time.Minute, "1 min ago"},
		{5 * time.Minute, "5 mins ago"},
		{time.Hour, "1 hour ago"},
		{3 * time.Hour, "3 hours ago"},
		{24 * time.Hour, "1 day ago"},
		{8 * 24 * time.Hour, "1 week ago"},
		{15 * 24 * time.Hour, "2 weeks ago"},
		{60 * 24 * time.Hour, "2024-04-16"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := formatRelativeTime(now.Add(-tt.ago), now); got != tt.want {
				t.Errorf("formatRelativeTime(-%v) = %q, want %q", tt.ago, got, tt.want)
			}
		})
	}
}

func TestTruncateName(t *testing.T) {
	short := "0.train"
	if got := truncateName(short); got != short {
		t.Errorf("truncateName(%q) = %q", short, got)
	}
	long := strings.Repeat("x", NameMaxLen+10)
	got := truncateName(long)
	if len([]rune(got)) != NameMaxLen || !strings.HasSuffix(got, "…") {
		t.Errorf("truncateName(long) = %q", got)
	}
}

func TestFormatTaskRow(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	row := FormatTaskRow(TaskSummary{
		Name:        "0.train",
		Alive:       true,
		CreatedAt:   now.Add(-2 * time.Hour),
		Commands:    7,
		Generations: 2,
		WorkingDir:  "/tmp/tasklogs/train.0.1.2",
	}, now)

	want := TaskRow{
		Name:        "0.train",
		Session:     SessionAlive,
		Created:     "2 hours ago",
		Commands:    "7",
		Generations: "2",
		WorkingDir:  "/tmp/tasklogs/train.0.1.2",
	}
	if row != want {
		t.Errorf("FormatTaskRow() = %+v, want %+v", row, want)
	}

	if got := FormatTaskRow(TaskSummary{Name: "gone"}, now); got.Session != SessionGone || got.Created != "" {
		t.Errorf("FormatTaskRow(dead) = %+v", got)
	}
}

func TestWriteTasks(t *testing.T) {
	var buf bytes.Buffer
	rows := []TaskRow{
		{Name: "0.train", Session: SessionAlive, Created: "just now", Commands: "12", Generations: "1", WorkingDir: "/a"},
		{Name: "eval", Session: SessionGone, Created: "3 days ago", Commands: "0", Generations: "4", WorkingDir: "/b"},
	}
	if err := WriteTasks(&buf, rows); err != nil {
		t.Fatalf("WriteTasks() error = %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "TASK     SESSION  CREATED") {
		t.Errorf("header = %q", lines[0])
	}
	// Columns line up: WORKING_DIR starts at the same offset on every line.
	col := strings.Index(lines[0], "WORKING_DIR")
	if strings.Index(lines[1], "/a") != col || strings.Index(lines[2], "/b") != col {
		t.Errorf("misaligned columns:\n%s", buf.String())
	}
}

func TestWriteTasks_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTasks(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "no tasks found\n" {
		t.Errorf("output = %q", buf.String())
	}
}
