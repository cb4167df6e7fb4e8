package task

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-monolith/mono/pkg/types"
	domain "github.com/isw2-unileon/go-tdd-kata/domain/task"
)

// OverdueCompletedMessage is sent to the notifier when an overdue task is completed.
const OverdueCompletedMessage = "task was completed after its due date"

// ErrTaggingDisabled is returned by tag operations when no tag repository is configured.
var ErrTaggingDisabled = fmt.Errorf("%w: tagging is not configured", domain.ErrInvalidInput)

// TaskService coordinates the task repository, notifier and tag repository.
// Command methods run one at a time.
type TaskService struct {
	mu       sync.Mutex
	repo     domain.TaskRepository
	notifier domain.Notifier
	tags     domain.TagRepository
	factory  *domain.Factory
	clock    domain.Clock
	logger   types.Logger
}

type ServiceOption func(*TaskService)

// WithTagRepository enables TagTask and SearchByTag.
func WithTagRepository(tags domain.TagRepository) ServiceOption {
	return func(s *TaskService) { s.tags = tags }
}

// WithFactory sets the factory used by Add.
func WithFactory(f *domain.Factory) ServiceOption {
	return func(s *TaskService) {
		if f != nil {
			s.factory = f
		}
	}
}

// WithServiceClock sets the clock used to decide overdue state and stamp completions.
func WithServiceClock(c domain.Clock) ServiceOption {
	return func(s *TaskService) {
		if c != nil {
			s.clock = c
		}
	}
}

func WithLogger(l types.Logger) ServiceOption {
	return func(s *TaskService) { s.logger = l }
}

// NewTaskService creates a task service. The factory defaults to one sharing
// the service clock.
func NewTaskService(repo domain.TaskRepository, notifier domain.Notifier, opts ...ServiceOption) *TaskService {
	s := &TaskService{
		repo:     repo,
		notifier: notifier,
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.factory == nil {
		s.factory = domain.NewFactory(domain.WithClock(s.clock))
	}
	return s
}

// Add creates and saves a new task. Titles are unique across the repository.
func (s *TaskService) Add(ctx context.Context, title string, dueDate time.Time) (*domain.Task, error) {
	t, err := s.factory.New(title, dueDate)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.findAll(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := byTitle(all, t.Title()); ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrDuplicateTask, t.Title())
	}
	if err := s.save(ctx, t); err != nil {
		return nil, err
	}

	s.debug("task added", "id", t.ID(), "title", t.Title())
	return t, nil
}

// CompleteTask marks the titled task done and saves it. When the task was
// overdue before completion the notifier is called after the save. A
// notification failure is returned but the completion stays saved.
func (s *TaskService) CompleteTask(ctx context.Context, title string) error {
	_, err := s.complete(ctx, title)
	return err
}

// complete reports whether the task was overdue at the moment it was
// completed. The flag is valid whenever the completion was saved, including
// when the notifier failed afterwards.
func (s *TaskService) complete(ctx context.Context, title string) (wasOverdue bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.find(ctx, title)
	if err != nil {
		return false, err
	}

	wasOverdue = t.IsOverdue(s.clock())
	if err := t.Complete(); err != nil {
		return false, err
	}
	if err := s.save(ctx, t); err != nil {
		return false, err
	}

	if !wasOverdue {
		return false, nil
	}
	if err := s.notifier.Notify(ctx, t.Title(), OverdueCompletedMessage); err != nil {
		s.warn("overdue notification failed", "title", t.Title(), "error", err)
		return true, domain.NewDependencyError("notifier", "notify", err)
	}
	return true, nil
}

// PostponeTask moves the titled task's due date forward and saves it.
func (s *TaskService) PostponeTask(ctx context.Context, title string, days int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.find(ctx, title)
	if err != nil {
		return err
	}
	if err := t.Postpone(days); err != nil {
		return err
	}
	return s.save(ctx, t)
}

// PrioritizeTask sets the titled task's priority and saves it.
func (s *TaskService) PrioritizeTask(ctx context.Context, title string, p domain.Priority) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.find(ctx, title)
	if err != nil {
		return err
	}
	if err := t.Prioritize(p); err != nil {
		return err
	}
	return s.save(ctx, t)
}

// Get returns the titled task.
func (s *TaskService) Get(ctx context.Context, title string) (*domain.Task, error) {
	return s.find(ctx, title)
}

// ListOverdue returns the tasks overdue at now in repository order.
func (s *TaskService) ListOverdue(ctx context.Context, now time.Time) ([]*domain.Task, error) {
	return s.filter(ctx, func(t *domain.Task) bool { return t.IsOverdue(now) })
}

// ListPending returns the unfinished tasks in repository order.
func (s *TaskService) ListPending(ctx context.Context) ([]*domain.Task, error) {
	return s.filter(ctx, func(t *domain.Task) bool { return !t.IsCompleted() })
}

// TagTask attaches a tag to the titled task.
func (s *TaskService) TagTask(ctx context.Context, title, tag string) error {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return domain.ErrInvalidTag
	}
	if s.tags == nil {
		return ErrTaggingDisabled
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.find(ctx, title)
	if err != nil {
		return err
	}
	if err := s.tags.AddTag(ctx, t.ID(), tag); err != nil {
		return domain.NewDependencyError("tags", "add_tag", err)
	}
	return nil
}

// SearchByTag resolves the identifiers tagged with tag into tasks, in the
// order the tag repository returns them. Identifiers that no longer resolve
// are skipped and repeated identifiers appear once.
func (s *TaskService) SearchByTag(ctx context.Context, tag string) ([]*domain.Task, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return nil, domain.ErrInvalidTag
	}
	if s.tags == nil {
		return nil, ErrTaggingDisabled
	}

	ids, err := s.tags.FindByTag(ctx, tag)
	if err != nil {
		return nil, domain.NewDependencyError("tags", "find_by_tag", err)
	}
	all, err := s.findAll(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*domain.Task, len(all))
	for _, t := range all {
		byID[t.ID()] = t
	}

	result := make([]*domain.Task, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		t, ok := byID[id]
		if !ok {
			s.debug("skipping dangling tag reference", "tag", tag, "id", id)
			continue
		}
		result = append(result, t)
	}
	return result, nil
}

func (s *TaskService) find(ctx context.Context, title string) (*domain.Task, error) {
	all, err := s.findAll(ctx)
	if err != nil {
		return nil, err
	}
	t, ok := byTitle(all, title)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrTaskNotFound, strings.TrimSpace(title))
	}
	return t.UsingClock(s.clock), nil
}

func (s *TaskService) filter(ctx context.Context, keep func(*domain.Task) bool) ([]*domain.Task, error) {
	all, err := s.findAll(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]*domain.Task, 0, len(all))
	for _, t := range all {
		if keep(t) {
			result = append(result, t)
		}
	}
	return result, nil
}

func (s *TaskService) findAll(ctx context.Context) ([]*domain.Task, error) {
	all, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, domain.NewDependencyError("repository", "find_all", err)
	}
	return all, nil
}

func (s *TaskService) save(ctx context.Context, t *domain.Task) error {
	if err := s.repo.Save(ctx, t); err != nil {
		return domain.NewDependencyError("repository", "save", err)
	}
	return nil
}

func (s *TaskService) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *TaskService) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}

func byTitle(tasks []*domain.Task, title string) (*domain.Task, bool) {
	title = strings.TrimSpace(title)
	for _, t := range tasks {
		if t.Title() == title {
			return t, true
		}
	}
	return nil, false
}
