package server

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"sync"
	"testing"

	"github.com/shouni/gemini-image-studio/pkg/domain"
)

// --- Mocks ---

type mockGenerator struct {
	mu      sync.Mutex
	calls   []domain.GenerationRequest
	err     error
	release chan struct{}
}

func (m *mockGenerator) Generate(ctx context.Context, req domain.GenerationRequest) (*domain.ImageResponse, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	release := m.release
	m.mu.Unlock()
	if release != nil {
		<-release
	}
	if m.err != nil {
		return nil, m.err
	}
	return &domain.ImageResponse{Data: []byte("generated-png"), MimeType: "image/png"}, nil
}

func (m *mockGenerator) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

type mockPersister struct {
	mu   sync.Mutex
	keys []string
}

func (m *mockPersister) Write(ctx context.Context, key string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys = append(m.keys, key)
	return key, nil
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	return pngOfSize(t, 3)
}

func pngOfSize(t *testing.T, n int) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, image.NewRGBA(image.Rect(0, 0, n, n))); err != nil {
		t.Fatalf("failed to encode dummy image: %v", err)
	}
	return buf.Bytes()
}
