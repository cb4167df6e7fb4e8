package task

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	gonanoid "github.com/jaevor/go-nanoid"
)

// IDGenerator produces task identifiers.
type IDGenerator interface {
	NewID() string
}

// Clock returns the current instant.
type Clock func() time.Time

// UUIDGenerator issues UUID v7 identifiers, which sort by creation time.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// NanoIDGenerator issues URL-safe nanoid identifiers.
type NanoIDGenerator struct {
	next func() string
}

// NewNanoIDGenerator returns a generator producing ids of the given length.
func NewNanoIDGenerator(length int) (*NanoIDGenerator, error) {
	next, err := gonanoid.Standard(length)
	if err != nil {
		return nil, fmt.Errorf("failed to create nanoid generator: %w", err)
	}
	return &NanoIDGenerator{next: next}, nil
}

func (g *NanoIDGenerator) NewID() string {
	return g.next()
}

// SequenceGenerator issues prefix-1, prefix-2, ... and is meant for tests and fixtures.
type SequenceGenerator struct {
	prefix string
	mu     sync.Mutex
	n      int
}

func NewSequenceGenerator(prefix string) *SequenceGenerator {
	return &SequenceGenerator{prefix: prefix}
}

func (g *SequenceGenerator) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}

// NewIDGenerator picks a generator by format name: "uuid" (default) or "nanoid".
func NewIDGenerator(format string) (IDGenerator, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "uuid":
		return UUIDGenerator{}, nil
	case "nanoid":
		return NewNanoIDGenerator(21)
	default:
		return nil, fmt.Errorf("unknown id format %q", format)
	}
}

// Factory builds tasks with an owned identity generator and clock.
type Factory struct {
	ids   IDGenerator
	clock Clock
}

type FactoryOption func(*Factory)

func WithIDGenerator(g IDGenerator) FactoryOption {
	return func(f *Factory) {
		if g != nil {
			f.ids = g
		}
	}
}

func WithClock(c Clock) FactoryOption {
	return func(f *Factory) {
		if c != nil {
			f.clock = c
		}
	}
}

var defaultFactory = NewFactory()

// NewFactory returns a factory issuing UUID v7 ids stamped with time.Now unless overridden.
func NewFactory(opts ...FactoryOption) *Factory {
	f := &Factory{ids: UUIDGenerator{}, clock: time.Now}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// New validates the title and builds a pending task with medium priority.
// A due date in the past is accepted as given.
func (f *Factory) New(title string, dueDate time.Time) (*Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrInvalidTitle
	}
	return &Task{
		id:        f.ids.NewID(),
		title:     title,
		status:    StatusTodo,
		priority:  PriorityMedium,
		dueDate:   dueDate,
		createdAt: f.clock(),
		clock:     f.clock,
	}, nil
}

// Clock returns the factory's clock.
func (f *Factory) Clock() Clock {
	return f.clock
}
