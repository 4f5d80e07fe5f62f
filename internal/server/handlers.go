package server

import (
	"context"
	"errors"
	"mime"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shouni/gemini-image-studio/pkg/domain"
	"github.com/shouni/gemini-image-studio/pkg/imagestore"
	"github.com/shouni/gemini-image-studio/pkg/preset"
	"github.com/shouni/gemini-image-studio/pkg/request"
	"github.com/shouni/gemini-image-studio/pkg/studio"
	"golang.org/x/sync/errgroup"
)

// Health は死活監視用です。
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{"status": "ok", "sessions": a.sessions.Len()})
}

// ListPresets はモードごとのプリセット一覧を返します。mode 未指定なら両方です。
func (a *App) ListPresets(w http.ResponseWriter, r *http.Request) {
	if raw := r.URL.Query().Get("mode"); raw != "" {
		mode, err := domain.ParseMode(raw)
		if err != nil {
			a.error(w, http.StatusBadRequest, "invalid_mode", err.Error())
			return
		}
		a.json(w, http.StatusOK, map[string]any{"mode": mode, "presets": preset.PresetsFor(mode)})
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"create": preset.PresetsFor(domain.ModeCreate),
		"edit":   preset.PresetsFor(domain.ModeEdit),
	})
}

func (a *App) CreateSession(w http.ResponseWriter, r *http.Request) {
	locale := LocaleFromContext(r.Context())
	s, err := a.sessions.Create(func(id string) (*studio.Session, error) {
		return a.newSession(id, locale)
	})
	if err != nil {
		a.logger.Error().Err(err).Msg("failed to create session")
		a.error(w, http.StatusInternalServerError, "internal", "failed to create session")
		return
	}
	a.json(w, http.StatusCreated, s.State())
}

func (a *App) GetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}
	a.json(w, http.StatusOK, s.State())
}

func (a *App) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if !a.sessions.Delete(chi.URLParam(r, "id")) {
		a.error(w, http.StatusNotFound, "not_found", errSessionNotFound.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type promptBody struct {
	Prompt string `json:"prompt"`
}

func (a *App) SetPrompt(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}
	var body promptBody
	if err := decodeJSON(r, &body); err != nil {
		a.error(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}
	s.SetPrompt(body.Prompt)
	a.json(w, http.StatusOK, s.State())
}

type modeBody struct {
	Mode string `json:"mode"`
}

func (a *App) SetMode(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}
	var body modeBody
	if err := decodeJSON(r, &body); err != nil {
		a.error(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}
	mode, err := domain.ParseMode(body.Mode)
	if err != nil {
		a.error(w, http.StatusBadRequest, "invalid_mode", err.Error())
		return
	}
	_ = s.SetMode(mode)
	a.json(w, http.StatusOK, s.State())
}

type presetBody struct {
	Preset string `json:"preset"`
}

func (a *App) SelectPreset(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}
	var body presetBody
	if err := decodeJSON(r, &body); err != nil {
		a.error(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}
	if err := s.SelectPreset(domain.PresetID(body.Preset)); err != nil {
		a.error(w, http.StatusBadRequest, "invalid_preset", err.Error())
		return
	}
	a.json(w, http.StatusOK, s.State())
}

// uploadFields はマルチパートのフィールド名とスロットの対応です。
var uploadFields = map[string]imagestore.Slot{
	"image":  imagestore.SlotDefault,
	"image1": imagestore.Slot1,
	"image2": imagestore.Slot2,
}

// UploadImages はマルチパートの画像を各スロットに読み込みます。
// 各ファイルは並行にデコードされ、読めなかったファイルは黙って無視されます。
// image と image1 が両方あるときは image1 を使い、image は読み込みません。
func (a *App) UploadImages(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, 2*imagestore.MaxImageBytes+(1<<20))
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		a.error(w, http.StatusBadRequest, "invalid_upload", err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	updated := make(map[string]bool, len(uploadFields))
	results := make(map[string]*bool, len(uploadFields))
	g, ctx := errgroup.WithContext(r.Context())
	for field, slot := range uploadFields {
		headers := r.MultipartForm.File[field]
		if len(headers) == 0 {
			continue
		}
		if field == "image" && len(r.MultipartForm.File["image1"]) > 0 {
			continue
		}
		res := new(bool)
		results[field] = res
		g.Go(func() error {
			*res = loadPart(ctx, s.Images(), slot, headers[0])
			return nil
		})
	}
	_ = g.Wait()

	for field, res := range results {
		updated[field] = *res
	}
	a.json(w, http.StatusOK, map[string]any{"updated": updated, "session": s.State()})
}

func loadPart(ctx context.Context, store *imagestore.Store, slot imagestore.Slot, fh *multipart.FileHeader) bool {
	f, err := fh.Open()
	if err != nil {
		return false
	}
	defer f.Close()
	return store.Load(ctx, slot, f)
}

type uriBody struct {
	URI string `json:"uri"`
}

// LoadImageURI は URI（http(s) またはサーバー側の入力ディレクトリ）から参照画像を読み込みます。
func (a *App) LoadImageURI(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}
	slot, err := imagestore.ParseSlot(chi.URLParam(r, "slot"))
	if err != nil {
		a.error(w, http.StatusBadRequest, "invalid_slot", err.Error())
		return
	}
	var body uriBody
	if err := decodeJSON(r, &body); err != nil {
		a.error(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}
	updated := s.Images().LoadURI(r.Context(), slot, body.URI)
	a.json(w, http.StatusOK, map[string]any{"updated": updated, "session": s.State()})
}

func (a *App) ClearImage(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}
	slot, err := imagestore.ParseSlot(chi.URLParam(r, "slot"))
	if err != nil {
		a.error(w, http.StatusBadRequest, "invalid_slot", err.Error())
		return
	}
	_ = s.Images().Clear(slot)
	a.json(w, http.StatusOK, s.State())
}

// Generate は生成を開始して 202 を返します。完了はセッション状態のポーリングで確認します。
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}
	_, err := s.Generate(r.Context())
	var vErr *request.ValidationError
	switch {
	case errors.As(err, &vErr):
		a.error(w, http.StatusBadRequest, "validation", s.State().Error)
		return
	case errors.Is(err, studio.ErrGenerationInFlight):
		a.error(w, http.StatusConflict, "in_flight", err.Error())
		return
	case err != nil:
		a.logger.Error().Err(err).Str("session_id", s.ID()).Msg("failed to submit generation")
		a.error(w, http.StatusInternalServerError, "internal", "failed to submit generation")
		return
	}
	a.json(w, http.StatusAccepted, s.State())
}

func (a *App) resultBytes(w http.ResponseWriter, s *studio.Session) (*domain.GeneratedResult, string, []byte, bool) {
	result := s.Result()
	if result == nil {
		a.error(w, http.StatusNotFound, "no_result", studio.ErrNoResult.Error())
		return nil, "", nil, false
	}
	mimeType, data, err := result.URL.Decode()
	if err != nil {
		a.logger.Error().Err(err).Str("session_id", s.ID()).Msg("stored result is not decodable")
		a.error(w, http.StatusInternalServerError, "internal", "result is not available")
		return nil, "", nil, false
	}
	return result, mimeType, data, true
}

// ResultImage は結果画像をそのまま返します。
func (a *App) ResultImage(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}
	_, mimeType, data, ok := a.resultBytes(w, s)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", mimeType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// DownloadResult は結果を保存した上で添付ファイルとして返します。
func (a *App) DownloadResult(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}
	_, mimeType, data, ok := a.resultBytes(w, s)
	if !ok {
		return
	}
	name := s.PersistToDisk(r.Context())
	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// ReEdit は結果を入力スロット1に戻して編集モードに切り替えます。
func (a *App) ReEdit(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}
	if err := s.ReEdit(); err != nil {
		if errors.Is(err, studio.ErrNoResult) {
			a.error(w, http.StatusNotFound, "no_result", err.Error())
			return
		}
		a.error(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	a.json(w, http.StatusOK, s.State())
}
