package tasks

import (
	"time"

	"github.com/lysyi3m/medium-wxr/app/database"
)

// PostLedger stores the outcome of every rendered post.
type PostLedger interface {
	UpsertPost(post database.Post) error
}

// PostRecorder counts rendered posts by status.
type PostRecorder interface {
	RecordPost(status string)
}

// TaskRecorder observes task durations.
type TaskRecorder interface {
	RecordTask(task string, duration time.Duration)
}
