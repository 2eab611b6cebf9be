package client

import (
	"context"
	"sync"
)

// ResolveFunc resolves one decklist submission.
type ResolveFunc func(ctx context.Context, text string) (*Result, error)

// Submitter serializes decklist submissions so that only the latest one's
// outcome ever becomes visible. Submitting while a previous run is in
// flight cancels it; a superseded run's result (or failure) is discarded
// without comment.
type Submitter struct {
	resolve ResolveFunc
	deliver func(*Result, error)

	mu     sync.Mutex
	cancel context.CancelFunc
	gen    uint64
	wg     sync.WaitGroup
}

// NewSubmitter creates a submitter that resolves with resolve and hands
// each surviving outcome to deliver.
func NewSubmitter(resolve ResolveFunc, deliver func(*Result, error)) *Submitter {
	return &Submitter{resolve: resolve, deliver: deliver}
}

// Submit starts resolving text, superseding any in-flight submission.
func (s *Submitter) Submit(text string) {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()

		result, err := s.resolve(ctx, text)

		s.mu.Lock()
		superseded := gen != s.gen
		s.mu.Unlock()
		if superseded || ctx.Err() != nil {
			return
		}

		s.deliver(result, err)
	}()
}

// Close cancels any in-flight submission and waits for it to finish.
func (s *Submitter) Close() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++ // anything still running is now superseded
	s.mu.Unlock()
	s.wg.Wait()
}
