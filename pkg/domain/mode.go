package domain

import (
	"fmt"
	"strings"
)

// Mode はスタジオの動作モード（新規作成 / 編集）です。
// モードによって表示・選択できるプリセットの一覧が切り替わります。
type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

func (m Mode) String() string {
	return string(m)
}

// Valid は既知のモードかどうかを返します。
func (m Mode) Valid() bool {
	return m == ModeCreate || m == ModeEdit
}

// ParseMode は文字列を Mode に変換します。大文字小文字と前後の空白は無視します。
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("unknown mode: %q", s)
	}
	return m, nil
}
