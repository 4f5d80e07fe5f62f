package preset

import (
	"github.com/shouni/gemini-image-studio/pkg/domain"
)

var createPresets = []domain.FunctionPreset{
	{ID: domain.PresetFree, Name: "Prompt", Mode: domain.ModeCreate},
	{ID: domain.PresetSticker, Name: "Figura", Mode: domain.ModeCreate},
	{ID: domain.PresetText, Name: "Logo", Mode: domain.ModeCreate},
	{ID: domain.PresetComic, Name: "Desenho", Mode: domain.ModeCreate},
}

var editPresets = []domain.FunctionPreset{
	{ID: domain.PresetAddRemove, Name: "Adicionar", Mode: domain.ModeEdit},
	{ID: domain.PresetRetouch, Name: "Retoque", Mode: domain.ModeEdit},
	{ID: domain.PresetStyle, Name: "Estilo", Mode: domain.ModeEdit},
	{ID: domain.PresetCompose, Name: "Mesclar", Mode: domain.ModeEdit, RequiresTwo: true},
}

// PresetsFor はモードに対応するプリセットを表示順で返します。
// 戻り値はコピーなので、呼び出し側が変更してもレジストリには影響しません。
func PresetsFor(mode domain.Mode) []domain.FunctionPreset {
	var src []domain.FunctionPreset
	switch mode {
	case domain.ModeCreate:
		src = createPresets
	case domain.ModeEdit:
		src = editPresets
	default:
		return nil
	}
	out := make([]domain.FunctionPreset, len(src))
	copy(out, src)
	return out
}

// Lookup はモード内で ID に一致するプリセットを探します。
func Lookup(mode domain.Mode, id domain.PresetID) (domain.FunctionPreset, bool) {
	for _, p := range PresetsFor(mode) {
		if p.ID == id {
			return p, true
		}
	}
	return domain.FunctionPreset{}, false
}

// Default はモード切替時に選択されるプリセットです。
func Default(mode domain.Mode) domain.PresetID {
	if mode == domain.ModeEdit {
		return domain.PresetAddRemove
	}
	return domain.PresetFree
}
