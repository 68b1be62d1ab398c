package commands

import (
	"context"
	"io"
	"time"

	"github.com/NielsdaWheelz/ncluster/internal/local"
	"github.com/NielsdaWheelz/ncluster/internal/naming"
	"github.com/NielsdaWheelz/ncluster/internal/render"
)

// LS lists the tasks found under the task root with the state of their
// sessions.
func LS(ctx context.Context, deps Deps, now time.Time, stdout io.Writer) error {
	records, err := local.ScanTasks(deps.Config)
	if err != nil {
		return err
	}

	rows := make([]render.TaskRow, 0, len(records))
	for _, rec := range records {
		alive, err := deps.Tmux.HasSession(ctx, naming.SessionID(rec.Name))
		if err != nil {
			deps.logger().Debug("session check failed", "task", rec.Name, "error", err)
		}
		rows = append(rows, render.FormatTaskRow(render.TaskSummary{
			Name:        rec.Name,
			Alive:       alive,
			CreatedAt:   rec.CreatedAt,
			Commands:    rec.Commands,
			Generations: rec.Generations,
			WorkingDir:  rec.WorkingDir,
		}, now))
	}
	return render.WriteTasks(stdout, rows)
}
