package pipeline

import (
	"context"
	"sync"

	"github.com/sells-group/enrich-cli/internal/model"
	"github.com/sells-group/enrich-cli/internal/store"
	"github.com/sells-group/enrich-cli/pkg/anthropic"
	"github.com/sells-group/enrich-cli/pkg/reader"
	"github.com/sells-group/enrich-cli/pkg/search"
)

// fakeSearch replays scripted responses in call order.
type fakeSearch struct {
	mu        sync.Mutex
	responses []string
	prompts   []string
	err       error
}

func (f *fakeSearch) ChatCompletion(_ context.Context, req search.ChatCompletionRequest) (*search.ChatCompletionResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(req.Messages) > 0 {
		f.prompts = append(f.prompts, req.Messages[len(req.Messages)-1].Content)
	}
	if f.err != nil {
		return nil, f.err
	}
	text := ""
	if len(f.responses) > 0 {
		text = f.responses[0]
		f.responses = f.responses[1:]
	}
	return &search.ChatCompletionResponse{
		Choices: []search.Choice{{Message: search.Message{Role: "assistant", Content: text}}},
	}, nil
}

// fakeReader serves page content from a map; absent URLs error.
type fakeReader struct {
	mu    sync.Mutex
	pages map[string]string
	reads []string
	err   error
}

func (f *fakeReader) Read(_ context.Context, url string) (*reader.ReadResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads = append(f.reads, url)
	if f.err != nil {
		return nil, f.err
	}
	content, ok := f.pages[url]
	if !ok {
		return &reader.ReadResponse{Code: 422}, nil
	}
	return &reader.ReadResponse{
		Code: 200,
		Data: reader.ReadData{URL: url, Content: content, Usage: reader.ReadUsage{Tokens: len(content)}},
	}, nil
}

// fakeAnthropic replays scripted responses in call order.
type fakeAnthropic struct {
	mu        sync.Mutex
	responses []string
	requests  []anthropic.MessageRequest
	err       error
}

func (f *fakeAnthropic) CreateMessage(_ context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	text := ""
	if len(f.responses) > 0 {
		text = f.responses[0]
		f.responses = f.responses[1:]
	}
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: text}},
		Usage:   anthropic.TokenUsage{InputTokens: 500, OutputTokens: 200},
	}, nil
}

// fakeStore is an in-memory store.Store.
type fakeStore struct {
	mu       sync.Mutex
	profiles map[string]*model.Profile
	runs     map[string]*model.Run
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		profiles: make(map[string]*model.Profile),
		runs:     make(map[string]*model.Run),
	}
}

func (s *fakeStore) GetProfile(_ context.Context, domain string) (*model.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[domain]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *fakeStore) UpsertProfile(_ context.Context, p *model.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.profiles[p.Domain] = &cp
	return nil
}

func (s *fakeStore) SaveRun(_ context.Context, run *model.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *run
	s.runs[run.ID] = &cp
	return nil
}

func (s *fakeStore) GetRun(_ context.Context, runID string) (*model.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.runs[runID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *fakeStore) ListApprovedCodes(context.Context) ([]model.CandidateIndustryCode, error) {
	return nil, nil
}

func (s *fakeStore) ListTargetCodes(context.Context) ([]string, error) {
	return nil, nil
}

func (s *fakeStore) Migrate(context.Context) error { return nil }
func (s *fakeStore) Close() error                  { return nil }
