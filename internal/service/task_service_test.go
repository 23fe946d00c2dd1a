package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskboard/taskboard-api/internal/cache"
	"github.com/taskboard/taskboard-api/internal/domain"
	"github.com/taskboard/taskboard-api/internal/events"
	"github.com/taskboard/taskboard-api/internal/mocks"
	"github.com/taskboard/taskboard-api/internal/service"
	"github.com/taskboard/taskboard-api/internal/store"
)

type taskFixture struct {
	svc     service.TaskService
	tasks   *mocks.MockTaskStore
	emitter *mocks.MockEventEmitter
	cache   *cache.TaskCache
}

func newTaskFixture(t *testing.T, tasks ...*domain.Task) (*taskFixture, func(commit bool)) {
	t.Helper()
	db, sqlMock := newTxDB(t)
	f := &taskFixture{
		tasks:   mocks.NewMockTaskStore(tasks...),
		emitter: &mocks.MockEventEmitter{},
		cache:   newTestTaskCache(),
	}
	f.svc = service.NewTaskService(f.tasks, f.cache, f.emitter, db, testLogger())

	expectTx := func(commit bool) {
		sqlMock.ExpectBegin()
		if commit {
			sqlMock.ExpectCommit()
		} else {
			sqlMock.ExpectRollback()
		}
	}
	t.Cleanup(func() {
		assert.NoError(t, sqlMock.ExpectationsWereMet())
	})
	return f, expectTx
}

func TestTaskService_CreateTask(t *testing.T) {
	ctx := context.Background()
	owner := newUser("owner", false)

	t.Run("defaults and append", func(t *testing.T) {
		f, _ := newTaskFixture(t, newTask(owner.ID, "existing", 4))

		task, err := f.svc.CreateTask(ctx, owner, service.CreateTaskInput{Title: "  Write docs  "})
		require.NoError(t, err)

		assert.Equal(t, "Write docs", task.Title)
		assert.Equal(t, domain.TaskStatusPending, task.Status)
		assert.Equal(t, domain.TaskPriorityMedium, task.Priority)
		assert.Equal(t, 5, task.Order)
		assert.Equal(t, owner.ID, task.UserID)
		assert.Equal(t, 1, f.tasks.CallCount("Append"))
		assert.Equal(t, []events.EventType{events.TaskCreated}, f.emitter.Types())
	})

	t.Run("explicit fields", func(t *testing.T) {
		f, _ := newTaskFixture(t)

		task, err := f.svc.CreateTask(ctx, owner, service.CreateTaskInput{
			Title:       "Ship release",
			Description: ptr("tag and publish"),
			Status:      ptr(domain.TaskStatusCompleted),
			Priority:    ptr(domain.TaskPriorityHigh),
			Order:       ptr(7),
		})
		require.NoError(t, err)

		assert.Equal(t, 7, task.Order)
		assert.Equal(t, domain.TaskStatusCompleted, task.Status)
		assert.Equal(t, domain.TaskPriorityHigh, task.Priority)
		assert.Equal(t, "tag and publish", *task.Description)
		assert.Equal(t, 1, f.tasks.CallCount("Create"))
		assert.Equal(t, 0, f.tasks.CallCount("Append"))
	})

	t.Run("validation", func(t *testing.T) {
		f, _ := newTaskFixture(t)

		_, err := f.svc.CreateTask(ctx, owner, service.CreateTaskInput{Title: "   "})
		assert.ErrorIs(t, err, domain.ErrValidation)

		_, err = f.svc.CreateTask(ctx, owner, service.CreateTaskInput{
			Title:  "bad status",
			Status: ptr(domain.TaskStatus("archived")),
		})
		assert.ErrorIs(t, err, domain.ErrValidation)

		assert.Empty(t, f.emitter.Events)
	})

	t.Run("store failure", func(t *testing.T) {
		f, _ := newTaskFixture(t)
		f.tasks.AppendFn = func(ctx context.Context, task *domain.Task) error {
			return errors.New("disk full")
		}

		_, err := f.svc.CreateTask(ctx, owner, service.CreateTaskInput{Title: "anything"})
		require.Error(t, err)
		assert.Empty(t, f.emitter.Events)
	})
}

func TestTaskService_Permissions(t *testing.T) {
	ctx := context.Background()
	owner := newUser("owner", false)
	other := newUser("other", false)
	admin := newUser("admin", true)

	tests := []struct {
		name       string
		actor      *domain.User
		wantGet    error
		wantUpdate error
		wantToggle error
		wantDelete error
	}{
		{"owner", owner, nil, nil, nil, nil},
		{"other user", other, service.ErrForbidden, service.ErrForbidden, service.ErrForbidden, service.ErrForbidden},
		{"admin", admin, nil, service.ErrForbidden, service.ErrForbidden, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := newTask(owner.ID, "guarded", 1)
			f, _ := newTaskFixture(t, task)

			_, err := f.svc.GetTask(ctx, tt.actor, task.ID)
			assertErr(t, tt.wantGet, err)

			_, err = f.svc.UpdateTask(ctx, tt.actor, task.ID, domain.TaskUpdate{Title: ptr("renamed")})
			assertErr(t, tt.wantUpdate, err)

			_, err = f.svc.ToggleStatus(ctx, tt.actor, task.ID)
			assertErr(t, tt.wantToggle, err)

			err = f.svc.DeleteTask(ctx, tt.actor, task.ID)
			assertErr(t, tt.wantDelete, err)
		})
	}
}

func assertErr(t *testing.T, want, got error) {
	t.Helper()
	if want == nil {
		assert.NoError(t, got)
		return
	}
	assert.ErrorIs(t, got, want)
}

func TestTaskService_NotFound(t *testing.T) {
	ctx := context.Background()
	owner := newUser("owner", false)
	f, _ := newTaskFixture(t)
	missing := uuid.New()

	_, err := f.svc.GetTask(ctx, owner, missing)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
	_, err = f.svc.UpdateTask(ctx, owner, missing, domain.TaskUpdate{Title: ptr("x")})
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
	_, err = f.svc.ToggleStatus(ctx, owner, missing)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
	assert.ErrorIs(t, f.svc.DeleteTask(ctx, owner, missing), store.ErrTaskNotFound)
}

func TestTaskService_UpdateTask(t *testing.T) {
	ctx := context.Background()
	owner := newUser("owner", false)

	t.Run("partial update", func(t *testing.T) {
		task := newTask(owner.ID, "draft", 1)
		task.Description = ptr("old")
		f, _ := newTaskFixture(t, task)

		updated, err := f.svc.UpdateTask(ctx, owner, task.ID, domain.TaskUpdate{
			Priority:         ptr(domain.TaskPriorityHigh),
			ClearDescription: true,
		})
		require.NoError(t, err)
		assert.Equal(t, "draft", updated.Title)
		assert.Equal(t, domain.TaskPriorityHigh, updated.Priority)
		assert.Nil(t, updated.Description)
		assert.Equal(t, []events.EventType{events.TaskUpdated}, f.emitter.Types())
	})

	t.Run("empty update is a no-op", func(t *testing.T) {
		task := newTask(owner.ID, "draft", 1)
		f, _ := newTaskFixture(t, task)

		got, err := f.svc.UpdateTask(ctx, owner, task.ID, domain.TaskUpdate{})
		require.NoError(t, err)
		assert.Equal(t, task.Title, got.Title)
		assert.Equal(t, 0, f.tasks.CallCount("Update"))
		assert.Empty(t, f.emitter.Events)
	})

	t.Run("invalid update leaves task unchanged", func(t *testing.T) {
		task := newTask(owner.ID, "draft", 1)
		f, _ := newTaskFixture(t, task)

		_, err := f.svc.UpdateTask(ctx, owner, task.ID, domain.TaskUpdate{Order: ptr(-1)})
		assert.ErrorIs(t, err, domain.ErrValidation)

		stored, err := f.tasks.GetByID(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, stored.Order)
	})
}

func TestTaskService_ToggleStatus(t *testing.T) {
	ctx := context.Background()
	owner := newUser("owner", false)
	task := newTask(owner.ID, "flip me", 1)
	f, _ := newTaskFixture(t, task)

	got, err := f.svc.ToggleStatus(ctx, owner, task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusCompleted, got.Status)

	got, err = f.svc.ToggleStatus(ctx, owner, task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusPending, got.Status)
}

func TestTaskService_Reorder(t *testing.T) {
	ctx := context.Background()
	owner := newUser("owner", false)
	other := newUser("other", false)

	t.Run("assigns positions in the given order", func(t *testing.T) {
		a := newTask(owner.ID, "a", 1)
		b := newTask(owner.ID, "b", 2)
		c := newTask(owner.ID, "c", 3)
		f, expectTx := newTaskFixture(t, a, b, c)
		expectTx(true)

		require.NoError(t, f.svc.Reorder(ctx, owner, []uuid.UUID{c.ID, a.ID, b.ID}))

		tasks, err := f.svc.ListTasks(ctx, owner, domain.TaskFilter{})
		require.NoError(t, err)
		require.Len(t, tasks, 3)
		assert.Equal(t, []string{"c", "a", "b"}, []string{tasks[0].Title, tasks[1].Title, tasks[2].Title})
		assert.Equal(t, []events.EventType{events.TaskReordered}, f.emitter.Types())
	})

	t.Run("duplicate ids keep the last position", func(t *testing.T) {
		a := newTask(owner.ID, "a", 1)
		b := newTask(owner.ID, "b", 2)
		f, expectTx := newTaskFixture(t, a, b)
		expectTx(true)

		require.NoError(t, f.svc.Reorder(ctx, owner, []uuid.UUID{a.ID, b.ID, a.ID}))

		assert.Equal(t, 3, f.tasks.Tasks[a.ID].Order)
		assert.Equal(t, 2, f.tasks.Tasks[b.ID].Order)
	})

	t.Run("empty list", func(t *testing.T) {
		f, _ := newTaskFixture(t)
		err := f.svc.Reorder(ctx, owner, nil)
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "tasks", verr.Field)
	})

	t.Run("unknown task", func(t *testing.T) {
		a := newTask(owner.ID, "a", 1)
		f, expectTx := newTaskFixture(t, a)
		expectTx(false)

		err := f.svc.Reorder(ctx, owner, []uuid.UUID{a.ID, uuid.New()})
		assert.ErrorIs(t, err, service.ErrUnknownTasks)
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Equal(t, 0, f.tasks.CallCount("Reorder"))
	})

	t.Run("foreign task", func(t *testing.T) {
		a := newTask(owner.ID, "a", 1)
		theirs := newTask(other.ID, "theirs", 1)
		f, expectTx := newTaskFixture(t, a, theirs)
		expectTx(false)

		err := f.svc.Reorder(ctx, owner, []uuid.UUID{a.ID, theirs.ID})
		assert.ErrorIs(t, err, service.ErrTaskNotOwned)
		assert.Equal(t, 0, f.tasks.CallCount("Reorder"))
		assert.Empty(t, f.emitter.Events)
	})
}

func TestTaskService_ListTasks_Cache(t *testing.T) {
	ctx := context.Background()
	owner := newUser("owner", false)
	f, _ := newTaskFixture(t, newTask(owner.ID, "first", 1))

	// The service notifies the emitter; wire invalidation the way the
	// server does.
	emitter := events.NewInMemoryEventEmitter(testLogger())
	emitter.RegisterHandler(events.NewCacheInvalidationHandler(f.cache))
	db, _ := newTxDB(t)
	svc := service.NewTaskService(f.tasks, f.cache, emitter, db, testLogger())

	tasks, err := svc.ListTasks(ctx, owner, domain.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	_, err = svc.ListTasks(ctx, owner, domain.TaskFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, f.tasks.CallCount("List"), "second read should come from the cache")

	_, err = svc.CreateTask(ctx, owner, service.CreateTaskInput{Title: "second"})
	require.NoError(t, err)

	tasks, err = svc.ListTasks(ctx, owner, domain.TaskFilter{})
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
	assert.Equal(t, 2, f.tasks.CallCount("List"))
}

func TestTaskService_ReadRacingInvalidationIsNotCached(t *testing.T) {
	ctx := context.Background()
	owner := newUser("owner", false)
	f, _ := newTaskFixture(t)

	// The first read sees a task that a concurrent delete removes before the
	// result reaches the cache.
	stale := []domain.Task{*newTask(owner.ID, "deleted meanwhile", 1)}
	f.tasks.ListFn = func(ctx context.Context, userID uuid.UUID, filter domain.TaskFilter) ([]domain.Task, error) {
		f.cache.InvalidateUser(ctx, userID)
		return stale, nil
	}
	f.tasks.StatisticsFn = func(ctx context.Context, userID uuid.UUID) (*domain.TaskStatistics, error) {
		f.cache.InvalidateUser(ctx, userID)
		return &domain.TaskStatistics{Total: 1}, nil
	}

	tasks, err := f.svc.ListTasks(ctx, owner, domain.TaskFilter{})
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
	stats, err := f.svc.Statistics(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Total)

	f.tasks.ListFn = nil
	f.tasks.StatisticsFn = nil

	tasks, err = f.svc.ListTasks(ctx, owner, domain.TaskFilter{})
	require.NoError(t, err)
	assert.Empty(t, tasks)
	assert.Equal(t, 2, f.tasks.CallCount("List"))

	stats, err = f.svc.Statistics(ctx, owner)
	require.NoError(t, err)
	assert.Zero(t, stats.Total)
	assert.Equal(t, 2, f.tasks.CallCount("Statistics"))
}

func TestTaskService_ListTasksPage(t *testing.T) {
	ctx := context.Background()
	owner := newUser("owner", false)
	var seed []*domain.Task
	for i := range 12 {
		seed = append(seed, newTask(owner.ID, "task", i+1))
	}
	f, _ := newTaskFixture(t, seed...)

	page, err := f.svc.ListTasksPage(ctx, owner, domain.TaskFilter{})
	require.NoError(t, err)
	assert.Len(t, page.Items, domain.DefaultTaskPerPage)
	assert.Equal(t, 12, page.Meta.Total)
	assert.Equal(t, 1, page.Meta.CurrentPage)

	page, err = f.svc.ListTasksPage(ctx, owner, domain.TaskFilter{Page: 2, PerPage: 5})
	require.NoError(t, err)
	assert.Len(t, page.Items, 5)
	assert.Equal(t, 6, page.Items[0].Order)

	_, err = f.svc.ListTasksPage(ctx, owner, domain.TaskFilter{PerPage: 51})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTaskService_Statistics(t *testing.T) {
	ctx := context.Background()
	owner := newUser("owner", false)
	done := newTask(owner.ID, "done", 1)
	done.Status = domain.TaskStatusCompleted
	high := newTask(owner.ID, "urgent", 2)
	high.Priority = domain.TaskPriorityHigh
	third := newTask(owner.ID, "later", 3)
	f, _ := newTaskFixture(t, done, high, third)

	stats, err := f.svc.Statistics(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.Completed)
	assert.Equal(t, 2, stats.Pending)
	assert.Equal(t, 1, stats.HighPriority)
	assert.InDelta(t, 33.33, stats.CompletionRate, 0.001)

	_, err = f.svc.Statistics(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 1, f.tasks.CallCount("Statistics"))
}

func TestTaskService_Statistics_Empty(t *testing.T) {
	f, _ := newTaskFixture(t)
	stats, err := f.svc.Statistics(context.Background(), newUser("nobody", false))
	require.NoError(t, err)
	assert.Zero(t, stats.Total)
	assert.Zero(t, stats.CompletionRate)
}

func TestTaskService_SearchSuggestions(t *testing.T) {
	ctx := context.Background()
	owner := newUser("owner", false)
	other := newUser("other", false)

	deploy := newTask(owner.ID, "Deploy app", 1)
	deploy.Description = ptr("Deploy the application, then re-deploy docs. Deployment notes apply.")
	review := newTask(owner.ID, "Review application form", 2)
	foreign := newTask(other.ID, "Application secrets", 1)
	f, _ := newTaskFixture(t, deploy, review, foreign)

	got, err := f.svc.SearchSuggestions(ctx, owner, "  app ")
	require.NoError(t, err)
	assert.Equal(t, []string{"Deploy app", "Review application form", "application", "apply"}, got)

	_, err = f.svc.SearchSuggestions(ctx, owner, "   ")
	assert.ErrorIs(t, err, domain.ErrValidation)

	long := make([]rune, service.MaxSuggestionQueryLength+1)
	for i := range long {
		long[i] = 'x'
	}
	_, err = f.svc.SearchSuggestions(ctx, owner, string(long))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTaskService_FilterOptions(t *testing.T) {
	f, _ := newTaskFixture(t)
	opts := f.svc.FilterOptions()

	assert.Len(t, opts.Statuses, 2)
	assert.Len(t, opts.Priorities, 3)
	assert.Len(t, opts.SortOptions, 6)
	assert.Equal(t, service.Option{Value: "high", Label: "High Priority"}, opts.Priorities[2])
}

func TestTaskService_CleanupOldTasks(t *testing.T) {
	ctx := context.Background()
	alice := newUser("alice", false)
	bob := newUser("bob", false)

	old := newTask(alice.ID, "ancient", 1)
	old.CreatedAt = time.Now().UTC().AddDate(0, 0, -40)
	oldBob := newTask(bob.ID, "ancient too", 1)
	oldBob.CreatedAt = time.Now().UTC().AddDate(0, 0, -31)
	fresh := newTask(alice.ID, "fresh", 2)
	f, _ := newTaskFixture(t, old, oldBob, fresh)

	deleted, err := f.svc.CleanupOldTasks(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
	assert.Len(t, f.tasks.Tasks, 1)
	assert.Equal(t, []events.EventType{events.TaskCleanup, events.TaskCleanup}, f.emitter.Types())

	_, err = f.svc.CleanupOldTasks(ctx, 0)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTaskService_EmitterFailureDoesNotFailMutation(t *testing.T) {
	owner := newUser("owner", false)
	f, _ := newTaskFixture(t)
	f.emitter.Err = errors.New("handler failed")

	task, err := f.svc.CreateTask(context.Background(), owner, service.CreateTaskInput{Title: "still saved"})
	require.NoError(t, err)
	assert.Contains(t, f.tasks.Tasks, task.ID)
}
