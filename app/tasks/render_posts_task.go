package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lysyi3m/medium-wxr/app/database"
	"github.com/lysyi3m/medium-wxr/app/medium"
	"github.com/lysyi3m/medium-wxr/app/wxr"
)

// RenderPostsTask is the render phase. It runs after the permalink index is
// complete, so every post page it reads is already cached.
type RenderPostsTask struct {
	Task
	Strict    bool
	site      medium.Site
	pages     medium.PageGetter
	embeds    *medium.EmbedResolver
	assembler *wxr.Assembler
	ledger    PostLedger
	recorder  PostRecorder
	run       *Run
}

func NewRenderPostsTask(site medium.Site, pages medium.PageGetter, embeds *medium.EmbedResolver, assembler *wxr.Assembler, ledger PostLedger, recorder PostRecorder, strict bool, run *Run) *RenderPostsTask {
	return &RenderPostsTask{
		Task:      NewTask(TaskTypeRenderPosts),
		Strict:    strict,
		site:      site,
		pages:     pages,
		embeds:    embeds,
		assembler: assembler,
		ledger:    ledger,
		recorder:  recorder,
		run:       run,
	}
}

func (t *RenderPostsTask) Execute(ctx context.Context) error {
	if t.run.Permalinks == nil {
		return errors.New("permalink index has not been built")
	}

	normalizer := medium.NewNormalizer(t.site, t.run.Permalinks, t.embeds)

	for _, postURL := range t.run.PostURLs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		record, err := t.renderPost(ctx, normalizer, postURL)
		if err != nil {
			var postErr *PostError
			if !errors.As(err, &postErr) {
				return err
			}

			slog.Error("Failed to render post", "url", postURL, "error", postErr.Err)
			t.run.Failures = append(t.run.Failures, postErr)
			t.recordOutcome(database.Post{
				SourceURL: postURL,
				Slug:      t.slug(postURL),
				Status:    database.StatusFailed,
				Error:     postErr.Err.Error(),
			})

			if t.Strict {
				return postErr
			}
			continue
		}

		t.run.Records = append(t.run.Records, record)
		publishedAt := record.PublishedAt
		t.recordOutcome(database.Post{
			SourceURL:   postURL,
			Slug:        record.Slug,
			Title:       record.Title,
			PublishedAt: &publishedAt,
			Status:      database.StatusPublished,
			Content:     record.Content,
		})
	}

	slog.Info("Task completed",
		"type", "RenderPosts",
		"duration", t.GetDuration(),
		"total", len(t.run.PostURLs),
		"rendered", len(t.run.Records),
		"failed", len(t.run.Failures))

	return nil
}

// renderPost returns fetch failures as they are; only metadata problems are
// wrapped in a PostError.
func (t *RenderPostsTask) renderPost(ctx context.Context, normalizer *medium.Normalizer, postURL string) (*wxr.PostRecord, error) {
	rawHTML, err := t.pages.Get(ctx, postURL, false)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch post %s: %w", postURL, err)
	}

	content, err := normalizer.Normalize(ctx, rawHTML)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize post %s: %w", postURL, err)
	}

	record, err := t.assembler.Assemble(postURL, t.slug(postURL), rawHTML, content)
	if err != nil {
		return nil, &PostError{URL: postURL, Err: err}
	}

	return record, nil
}

func (t *RenderPostsTask) slug(postURL string) string {
	path, _ := t.run.Permalinks.Path(postURL)
	return strings.TrimPrefix(path, "/")
}

func (t *RenderPostsTask) recordOutcome(post database.Post) {
	if t.recorder != nil {
		t.recorder.RecordPost(post.Status)
	}
	if t.ledger == nil {
		return
	}
	if err := t.ledger.UpsertPost(post); err != nil {
		slog.Warn("Failed to record post in ledger", "url", post.SourceURL, "error", err)
	}
}
