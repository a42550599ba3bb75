package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/lysyi3m/medium-wxr/app/wxr"
)

type WriteFeedTask struct {
	Task
	TemplateFile string
	OutFile      string
	generator    *wxr.Generator
	run          *Run
}

func NewWriteFeedTask(templateFile, outFile string, generator *wxr.Generator, run *Run) *WriteFeedTask {
	return &WriteFeedTask{
		Task:         NewTask(TaskTypeWriteFeed),
		TemplateFile: templateFile,
		OutFile:      outFile,
		generator:    generator,
		run:          run,
	}
}

func (t *WriteFeedTask) Execute(ctx context.Context) error {
	skeleton, err := wxr.LoadSkeleton(t.TemplateFile)
	if err != nil {
		return err
	}

	out, err := t.generator.Run(skeleton, t.run.Records)
	if err != nil {
		return fmt.Errorf("failed to generate feed: %w", err)
	}

	if err := os.WriteFile(t.OutFile, []byte(out), 0644); err != nil {
		return fmt.Errorf("failed to write feed: %w", err)
	}

	t.run.OutFile = t.OutFile

	slog.Info("Task completed",
		"type", "WriteFeed",
		"duration", t.GetDuration(),
		"path", t.OutFile,
		"items", len(t.run.Records))

	return nil
}
