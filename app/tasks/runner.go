package tasks

import (
	"context"
	"fmt"
	"log/slog"
)

// Runner executes pipeline tasks one after another on the calling goroutine.
type Runner struct {
	recorder TaskRecorder
}

func NewRunner(recorder TaskRecorder) *Runner {
	return &Runner{recorder: recorder}
}

// Run stops at the first failing task; later tasks depend on its output.
func (r *Runner) Run(ctx context.Context, tasks ...TaskInterface) error {
	for _, task := range tasks {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		task.Start()
		err := task.Execute(ctx)

		if r.recorder != nil {
			r.recorder.RecordTask(string(task.GetType()), task.GetDuration())
		}

		if err != nil {
			slog.Error("Task execution failed", "type", string(task.GetType()), "id", task.GetID(), "error", err)
			return fmt.Errorf("%s: %w", task.GetType(), err)
		}
	}

	return nil
}
