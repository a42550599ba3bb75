package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/medium-wxr/app/medium"
)

type DiscoverPostsTask struct {
	Task
	Sources   medium.Sources
	discovery *medium.Discovery
	run       *Run
}

func NewDiscoverPostsTask(sources medium.Sources, discovery *medium.Discovery, run *Run) *DiscoverPostsTask {
	return &DiscoverPostsTask{
		Task:      NewTask(TaskTypeDiscoverPosts),
		Sources:   sources,
		discovery: discovery,
		run:       run,
	}
}

func (t *DiscoverPostsTask) Execute(ctx context.Context) error {
	urls, err := t.discovery.Run(ctx, t.Sources)
	if err != nil {
		return fmt.Errorf("failed to discover posts: %w", err)
	}

	t.run.PostURLs = urls

	slog.Info("Task completed",
		"type", "DiscoverPosts",
		"duration", t.GetDuration(),
		"posts", len(urls))

	return nil
}
