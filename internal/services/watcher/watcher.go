// Package watcher notices when an upstream stage rewrites one of the input
// tables.
package watcher

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/j-veylop/brand-forecast-tui/internal/logger"
)

// DefaultDebounce coalesces the burst of events a single rewrite produces.
const DefaultDebounce = 500 * time.Millisecond

// EventType defines the type of watcher event.
type EventType int

const (
	// EventTablesChanged fires once per debounced burst of table writes.
	EventTablesChanged EventType = iota
	// EventError carries a watcher failure.
	EventError
)

// Event represents a watcher event.
type Event struct {
	Type  EventType
	Paths []string // Changed tables, sorted
	Error error
}

// Service watches a fixed set of files through their parent directories.
type Service struct {
	mu            sync.Mutex
	files         map[string]struct{}
	debounce      time.Duration
	watcher       *fsnotify.Watcher
	eventChan     chan Event
	stopChan      chan struct{}
	stopOnce      sync.Once
	debounceTimer *time.Timer
	pending       map[string]struct{}
}

// New starts watching the given files. Directories that do not exist yet
// are created so tables appearing later are still noticed.
func New(files []string, debounce time.Duration) (*Service, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	s := &Service{
		files:     make(map[string]struct{}, len(files)),
		debounce:  debounce,
		eventChan: make(chan Event, 100),
		stopChan:  make(chan struct{}),
		pending:   make(map[string]struct{}),
	}

	dirs := make(map[string]struct{})
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", f, err)
		}
		s.files[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to start file watcher: %w", err)
	}
	s.watcher = watcher

	for dir := range dirs {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			_ = watcher.Close()
			return nil, fmt.Errorf("failed to create watched directory: %w", err)
		}
		if err := watcher.Add(dir); err != nil {
			if closeErr := watcher.Close(); closeErr != nil {
				logger.Error("failed to close watcher", "error", closeErr)
			}
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	go s.watchLoop()
	return s, nil
}

// Events returns the event channel.
func (s *Service) Events() <-chan Event {
	return s.eventChan
}

func (s *Service) watchLoop() {
	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			s.handle(event)

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.sendEvent(Event{Type: EventError, Error: err})

		case <-s.stopChan:
			return
		}
	}
}

func (s *Service) handle(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}
	name, err := filepath.Abs(event.Name)
	if err != nil {
		return
	}
	if _, tracked := s.files[name]; !tracked {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[name] = struct{}{}
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}
	s.debounceTimer = time.AfterFunc(s.debounce, s.flush)
}

func (s *Service) flush() {
	s.mu.Lock()
	paths := make([]string, 0, len(s.pending))
	for p := range s.pending {
		paths = append(paths, p)
	}
	s.pending = make(map[string]struct{})
	s.mu.Unlock()

	if len(paths) == 0 {
		return
	}
	sort.Strings(paths)
	logger.Debug("input tables changed", "paths", paths)
	s.sendEvent(Event{Type: EventTablesChanged, Paths: paths})
}

// sendEvent sends an event to the event channel non-blocking.
func (s *Service) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
		// Channel full, drop oldest event
		select {
		case <-s.eventChan:
		default:
		}
		select {
		case s.eventChan <- event:
		default:
		}
	}
}

// Close stops the file watcher and cleans up resources.
func (s *Service) Close() error {
	var err error
	s.stopOnce.Do(func() {
		close(s.stopChan)

		s.mu.Lock()
		if s.debounceTimer != nil {
			s.debounceTimer.Stop()
		}
		s.mu.Unlock()

		if s.watcher != nil {
			err = s.watcher.Close()
		}
	})
	return err
}
