package studio

import (
	"context"
	"errors"
	"sync"

	"github.com/shouni/gemini-image-studio/pkg/domain"
)

// --- Mocks ---

type mockGenerator struct {
	mu      sync.Mutex
	calls   []domain.GenerationRequest
	resp    *domain.ImageResponse
	err     error
	release chan struct{} // nil なら即時応答
	ctxErr  error
}

func (m *mockGenerator) Generate(ctx context.Context, req domain.GenerationRequest) (*domain.ImageResponse, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	release := m.release
	m.mu.Unlock()

	if release != nil {
		<-release
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.ctxErr = ctx.Err()
	return m.resp, m.err
}

func (m *mockGenerator) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func (m *mockGenerator) lastCall() domain.GenerationRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[len(m.calls)-1]
}

func okGenerator() *mockGenerator {
	return &mockGenerator{resp: &domain.ImageResponse{Data: []byte("generated"), MimeType: "image/png"}}
}

type mockPersister struct {
	keys []string
	data [][]byte
	err  error
}

func (m *mockPersister) Write(ctx context.Context, key string, data []byte) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.keys = append(m.keys, key)
	m.data = append(m.data, data)
	return key, nil
}

var errBoom = errors.New("boom")
