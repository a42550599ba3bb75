package tasks

import (
	"context"
	"log/slog"

	"github.com/lysyi3m/medium-wxr/app/medium"
)

// BuildPermalinksTask is the index phase: it fetches every discovered post
// once and maps its path to the slug of its title.
type BuildPermalinksTask struct {
	Task
	site  medium.Site
	pages medium.PageGetter
	run   *Run
}

func NewBuildPermalinksTask(site medium.Site, pages medium.PageGetter, run *Run) *BuildPermalinksTask {
	return &BuildPermalinksTask{
		Task:  NewTask(TaskTypeBuildPermalinks),
		site:  site,
		pages: pages,
		run:   run,
	}
}

func (t *BuildPermalinksTask) Execute(ctx context.Context) error {
	permalinks, err := medium.BuildPermalinks(ctx, t.pages, t.site, t.run.PostURLs)
	if err != nil {
		return err
	}

	t.run.Permalinks = permalinks

	slog.Info("Task completed",
		"type", "BuildPermalinks",
		"duration", t.GetDuration(),
		"permalinks", permalinks.Len())

	return nil
}
