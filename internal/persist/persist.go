// Package persist binds in-memory stores to durable storage. Each store owns
// one Slot, which rehydrates the store's document once at startup and writes
// snapshots behind the store's back after every mutation.
package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrNotFound is returned by a Backend when nothing was saved under a key.
var ErrNotFound = errors.New("persist: key not found")

// ErrClosed is returned by Flush after Close.
var ErrClosed = errors.New("persist: slot closed")

const writeTimeout = 5 * time.Second

// Backend is a durable key-value store holding one document per key.
type Backend interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

type envelope[T any] struct {
	State   T   `json:"state"`
	Version int `json:"version"`
}

// Slot is the write-behind binding between a single store document of type
// T and a Backend key. Save never blocks on I/O; a background writer
// persists the most recent snapshot, coalescing any that were superseded
// before it got to them.
type Slot[T any] struct {
	key     string
	version int
	backend Backend
	logger  *zap.Logger

	mu       sync.Mutex
	pending  *T
	seq      uint64 // snapshots accepted by Save
	written  uint64 // highest seq whose write has finished
	lastErr  error
	progress chan struct{}
	closed   bool

	wake      chan struct{}
	stop      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

// NewSlot starts the writer goroutine for key. Call Close to stop it.
func NewSlot[T any](key string, backend Backend, logger *zap.Logger) *Slot[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Slot[T]{
		key:      key,
		backend:  backend,
		logger:   logger.With(zap.String("slot", key)),
		progress: make(chan struct{}),
		wake:     make(chan struct{}, 1),
		stop:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	go s.run()
	return s
}

// Key returns the storage key this slot writes to.
func (s *Slot[T]) Key() string { return s.key }

// Load reads the persisted document. A missing key yields the zero value and
// no error.
func (s *Slot[T]) Load(ctx context.Context) (T, error) {
	var zero T
	data, err := s.backend.Load(ctx, s.key)
	if errors.Is(err, ErrNotFound) {
		return zero, nil
	}
	if err != nil {
		return zero, fmt.Errorf("load %s: %w", s.key, err)
	}

	var env envelope[T]
	if err := json.Unmarshal(data, &env); err != nil {
		return zero, fmt.Errorf("decode %s: %w", s.key, err)
	}
	return env.State, nil
}

// Save queues doc to be written. doc must not be modified afterwards.
func (s *Slot[T]) Save(doc T) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.logger.Warn("save after close dropped")
		return
	}
	s.pending = &doc
	s.seq++
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Flush blocks until every snapshot queued before the call is durable, and
// returns the error of the last write, if any.
func (s *Slot[T]) Flush(ctx context.Context) error {
	s.mu.Lock()
	target := s.seq
	for s.written < target {
		ch := s.progress
		s.mu.Unlock()
		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stopped:
			s.mu.Lock()
			if s.written < target {
				s.mu.Unlock()
				return ErrClosed
			}
			s.mu.Unlock()
		}
		s.mu.Lock()
	}
	err := s.lastErr
	s.mu.Unlock()
	return err
}

// Err returns the error of the most recent write.
func (s *Slot[T]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Close writes any pending snapshot and stops the writer.
func (s *Slot[T]) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		close(s.stop)
	})
	<-s.stopped
	return s.Err()
}

func (s *Slot[T]) run() {
	defer close(s.stopped)
	for {
		select {
		case <-s.wake:
			s.drain()
		case <-s.stop:
			s.drain()
			return
		}
	}
}

func (s *Slot[T]) drain() {
	for {
		s.mu.Lock()
		if s.pending == nil {
			s.mu.Unlock()
			return
		}
		doc := *s.pending
		target := s.seq
		s.pending = nil
		s.mu.Unlock()

		err := s.write(doc)

		s.mu.Lock()
		s.lastErr = err
		s.written = target
		close(s.progress)
		s.progress = make(chan struct{})
		s.mu.Unlock()
	}
}

func (s *Slot[T]) write(doc T) error {
	start := time.Now()
	defer func() {
		writeDuration.WithLabelValues(s.key).Observe(time.Since(start).Seconds())
	}()

	data, err := json.Marshal(envelope[T]{State: doc, Version: s.version})
	if err != nil {
		writesTotal.WithLabelValues(s.key, resultError).Inc()
		s.logger.Error("encode snapshot", zap.Error(err))
		return fmt.Errorf("encode %s: %w", s.key, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := s.backend.Save(ctx, s.key, data); err != nil {
		writesTotal.WithLabelValues(s.key, resultError).Inc()
		s.logger.Error("write snapshot", zap.Error(err))
		return fmt.Errorf("save %s: %w", s.key, err)
	}

	writesTotal.WithLabelValues(s.key, resultOK).Inc()
	s.logger.Debug("snapshot written", zap.Int("bytes", len(data)))
	return nil
}
