package studio

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shouni/gemini-image-studio/pkg/domain"
	"github.com/shouni/gemini-image-studio/pkg/generator"
)

// ErrGenerationInFlight は生成中に再度 Submit されたときに返されます。
var ErrGenerationInFlight = errors.New("a generation is already in flight")

var errEmptyImage = errors.New("service returned an empty image")

// Status は生成ライフサイクルの状態です。
// Succeeded と Failed は表示上の区別で、どちらも Idle と同様に次の Submit を受け付けます。
type Status string

const (
	StatusIdle      Status = "idle"
	StatusInFlight  Status = "in_flight"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Snapshot はある時点のライフサイクル状態です。
type Snapshot struct {
	Status Status
	Result *domain.GeneratedResult
}

// Controller は同時に最大1件の生成リクエストを管理します。
// キャンセルと自動リトライは行いません。
type Controller struct {
	gen    generator.ImageGenerator
	logger zerolog.Logger
	now    func() time.Time

	// notifyMu は状態変更とその通知をひとまとめに直列化します。mu より先に取ります。
	notifyMu  sync.Mutex
	mu        sync.Mutex
	status    Status
	result    *domain.GeneratedResult
	listeners map[int]func(Snapshot)
	nextID    int
}

// NewController は Idle 状態の Controller を作成します。
func NewController(gen generator.ImageGenerator, logger zerolog.Logger) *Controller {
	return &Controller{
		gen:       gen,
		logger:    logger,
		now:       time.Now,
		status:    StatusIdle,
		listeners: make(map[int]func(Snapshot)),
	}
}

// Snapshot は現在の状態を返します。
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	s := Snapshot{Status: c.status}
	if c.result != nil {
		r := *c.result
		s.Result = &r
	}
	return s
}

// Subscribe は状態遷移ごとに呼ばれるリスナーを登録し、解除関数を返します。
// リスナーは遷移を起こしたゴルーチン上から遷移の順に呼ばれます。
// リスナー内で Snapshot は呼べますが、Submit や Clear 系を呼ぶとデッドロックします。
func (c *Controller) Subscribe(fn func(Snapshot)) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

// Submit は生成を開始し、完了時に閉じられるチャネルを返します。
// InFlight 中は ErrGenerationInFlight を返し、状態は変えません。
// 外部呼び出しは呼び出し元のキャンセルから切り離されたコンテキストで実行されます。
func (c *Controller) Submit(ctx context.Context, req domain.GenerationRequest) (<-chan struct{}, error) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	if c.status == StatusInFlight {
		c.mu.Unlock()
		return nil, ErrGenerationInFlight
	}
	c.status = StatusInFlight
	c.result = nil
	snap, listeners := c.snapshotLocked(), c.listenersLocked()
	c.mu.Unlock()
	notify(listeners, snap)

	done := make(chan struct{})
	go c.run(context.WithoutCancel(ctx), req, done)
	return done, nil
}

func (c *Controller) run(ctx context.Context, req domain.GenerationRequest, done chan struct{}) {
	defer close(done)

	resp, err := c.gen.Generate(ctx, req)
	if err == nil && (resp == nil || len(resp.Data) == 0) {
		err = errEmptyImage
	}

	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	if err != nil {
		c.status = StatusFailed
		c.logger.Error().Err(err).
			Str("mode", req.Mode.String()).
			Str("preset", req.Preset.String()).
			Msg("image generation failed")
	} else {
		c.status = StatusSucceeded
		c.result = &domain.GeneratedResult{
			URL:       domain.EncodeImage(resp.MimeType, resp.Data),
			Prompt:    req.UserPrompt,
			Mode:      req.Mode,
			Function:  req.Preset,
			CreatedAt: c.now(),
		}
		c.logger.Info().
			Str("mode", req.Mode.String()).
			Str("preset", req.Preset.String()).
			Str("mime_type", resp.MimeType).
			Int("bytes", len(resp.Data)).
			Msg("image generated")
	}
	snap, listeners := c.snapshotLocked(), c.listenersLocked()
	c.mu.Unlock()
	notify(listeners, snap)
}

// Result は直近の成功結果を返します。なければ nil です。
func (c *Controller) Result() *domain.GeneratedResult {
	return c.Snapshot().Result
}

// ClearResult は現在の結果を破棄します。表示状態は Idle に戻ります。
func (c *Controller) ClearResult() {
	c.transition(func() bool {
		if c.result == nil {
			return false
		}
		c.result = nil
		if c.status == StatusSucceeded {
			c.status = StatusIdle
		}
		return true
	})
}

// ClearError は Failed を Idle に戻します。
func (c *Controller) ClearError() {
	c.transition(func() bool {
		if c.status != StatusFailed {
			return false
		}
		c.status = StatusIdle
		return true
	})
}

func (c *Controller) transition(apply func() bool) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	if !apply() {
		c.mu.Unlock()
		return
	}
	snap, listeners := c.snapshotLocked(), c.listenersLocked()
	c.mu.Unlock()
	notify(listeners, snap)
}

func (c *Controller) listenersLocked() []func(Snapshot) {
	out := make([]func(Snapshot), 0, len(c.listeners))
	for _, fn := range c.listeners {
		out = append(out, fn)
	}
	return out
}

func notify(listeners []func(Snapshot), s Snapshot) {
	for _, fn := range listeners {
		fn(s)
	}
}
