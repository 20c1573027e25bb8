package services

import (
	"context"
	"sync"
)

// stubClient is an InferenceClient returning canned responses in order; the
// last one repeats.
type stubClient struct {
	mu        sync.Mutex
	responses []string
	err       error
	prompts   []string
	// release, when set, blocks every call until it is closed.
	release chan struct{}
}

func newStubClient(responses ...string) *stubClient {
	return &stubClient{responses: responses}
}

func (s *stubClient) Complete(ctx context.Context, prompt string) (string, error) {
	if s.release != nil {
		select {
		case <-s.release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	if len(s.responses) == 0 {
		return "", nil
	}
	idx := len(s.prompts) - 1
	if idx >= len(s.responses) {
		idx = len(s.responses) - 1
	}
	return s.responses[idx], nil
}

func (s *stubClient) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prompts)
}

func (s *stubClient) LastPrompt() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.prompts) == 0 {
		return ""
	}
	return s.prompts[len(s.prompts)-1]
}
