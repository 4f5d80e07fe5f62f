package domain

// PresetID はファンクションプリセットの識別子です。
// 両モードを通して一意であり、プロンプト変換ルールのキーにもなります。
type PresetID string

const (
	// Create モード
	PresetFree    PresetID = "free"
	PresetSticker PresetID = "sticker"
	PresetText    PresetID = "text"
	PresetComic   PresetID = "comic"

	// Edit モード
	PresetAddRemove PresetID = "add-remove"
	PresetRetouch   PresetID = "retouch"
	PresetStyle     PresetID = "style"
	PresetCompose   PresetID = "compose"
)

func (id PresetID) String() string {
	return string(id)
}

// FunctionPreset はプロセス起動時に定義され、以後変更されないプリセット定義です。
type FunctionPreset struct {
	ID          PresetID `json:"id"`
	Name        string   `json:"name"`
	Mode        Mode     `json:"mode"`
	RequiresTwo bool     `json:"requires_two"`
}
