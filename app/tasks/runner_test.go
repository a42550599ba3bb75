package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lysyi3m/medium-wxr/app/medium"
)

type stubTask struct {
	Task
	executed *[]TaskType
	err      error
}

func newStubTask(taskType TaskType, executed *[]TaskType, err error) *stubTask {
	return &stubTask{Task: NewTask(taskType), executed: executed, err: err}
}

func (t *stubTask) Execute(ctx context.Context) error {
	*t.executed = append(*t.executed, t.Type)
	return t.err
}

type taskLog struct {
	tasks []string
}

func (l *taskLog) RecordTask(task string, duration time.Duration) {
	l.tasks = append(l.tasks, task)
}

func TestRunner_RunsInOrder(t *testing.T) {
	var executed []TaskType
	recorder := &taskLog{}

	err := NewRunner(recorder).Run(context.Background(),
		newStubTask(TaskTypeDiscoverPosts, &executed, nil),
		newStubTask(TaskTypeBuildPermalinks, &executed, nil),
		newStubTask(TaskTypeRenderPosts, &executed, nil),
	)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	want := []TaskType{TaskTypeDiscoverPosts, TaskTypeBuildPermalinks, TaskTypeRenderPosts}
	if len(executed) != len(want) {
		t.Fatalf("Expected %d tasks to run, got %d", len(want), len(executed))
	}
	for i := range want {
		if executed[i] != want[i] {
			t.Errorf("Expected task %d to be %s, got %s", i, want[i], executed[i])
		}
	}
	if len(recorder.tasks) != 3 {
		t.Errorf("Expected 3 recorded durations, got %d", len(recorder.tasks))
	}
}

func TestRunner_StopsAtFirstError(t *testing.T) {
	var executed []TaskType
	boom := errors.New("boom")

	err := NewRunner(nil).Run(context.Background(),
		newStubTask(TaskTypeDiscoverPosts, &executed, nil),
		newStubTask(TaskTypeBuildPermalinks, &executed, boom),
		newStubTask(TaskTypeRenderPosts, &executed, nil),
	)

	if !errors.Is(err, boom) {
		t.Errorf("Expected wrapped task error, got %v", err)
	}
	if len(executed) != 2 {
		t.Errorf("Expected execution to stop after the failing task, got %v", executed)
	}
}

func TestRunner_CancelledContext(t *testing.T) {
	var executed []TaskType
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewRunner(nil).Run(ctx, newStubTask(TaskTypeDiscoverPosts, &executed, nil))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if len(executed) != 0 {
		t.Errorf("Expected no task to run, got %v", executed)
	}
}

func TestTask_Duration(t *testing.T) {
	task := NewTask(TaskTypeWriteFeed)
	if task.GetDuration() != 0 {
		t.Errorf("Expected zero duration before start, got %v", task.GetDuration())
	}
	other := NewTask(TaskTypeWriteFeed)
	if task.GetID() == "" || task.GetID() == other.GetID() {
		t.Errorf("Expected unique task ids, got '%s'", task.GetID())
	}

	task.Start()
	if task.StartedAt == nil {
		t.Error("Expected start time to be set")
	}
}

func TestRenderPostsTask_RequiresPermalinks(t *testing.T) {
	task := NewRenderPostsTask(medium.Site{}, nil, nil, nil, nil, nil, false, NewRun())
	if err := task.Execute(context.Background()); err == nil {
		t.Error("Expected error when the index phase has not run")
	}
}
