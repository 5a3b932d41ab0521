package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// TriggerKind はトリガー応答の種別を表します
type TriggerKind string

const (
	// TriggerText はテキスト応答のトリガー
	TriggerText TriggerKind = "text"

	// TriggerImage は画像埋め込み応答のトリガー
	TriggerImage TriggerKind = "image"
)

// imageURLPattern は画像URLの検証パターンです
// http(s) スキームかつ既知の画像拡張子のみ許可します（拡張子は大文字小文字を区別しない）
var imageURLPattern = regexp.MustCompile(`(?i)^https?://.+\.(jpg|jpeg|png|gif|webp)$`)

// 登録済みトリガー（フレーズ→応答）を表す構造体
type Trigger struct {
	// Phrase はトリガーフレーズ（小文字、一意キー）
	Phrase string

	// Kind は応答種別（text / image）
	Kind TriggerKind

	// Response は応答内容。text の場合は本文、image の場合は画像URL
	Response string
}

// ParseTriggerKind は入力文字列をトリガー種別へ変換します
// text / image 以外の値は ErrInvalid を返します
func ParseTriggerKind(s string) (TriggerKind, error) {
	switch TriggerKind(strings.ToLower(strings.TrimSpace(s))) {
	case TriggerText:
		return TriggerText, nil
	case TriggerImage:
		return TriggerImage, nil
	}
	return "", fmt.Errorf("%w: トリガー種別は text または image を指定してください", ErrInvalid)
}

// IsValidImageURL は画像トリガーに設定できるURLかを判定します
func IsValidImageURL(url string) bool {
	return imageURLPattern.MatchString(url)
}

// Validate はTriggerの必須項目と整合性を検証します
func (t Trigger) Validate() error {
	if strings.TrimSpace(t.Phrase) == "" {
		return fmt.Errorf("%w: Phraseは必須項目です", ErrInvalid)
	}
	if t.Phrase != strings.ToLower(t.Phrase) {
		return fmt.Errorf("%w: Phraseは小文字に正規化されている必要があります", ErrInvalid)
	}
	if t.Kind != TriggerText && t.Kind != TriggerImage {
		return fmt.Errorf("%w: 不明なトリガー種別です (kind=%s)", ErrInvalid, t.Kind)
	}
	if t.Response == "" {
		return fmt.Errorf("%w: Responseは必須項目です", ErrInvalid)
	}
	if t.Kind == TriggerImage && !IsValidImageURL(t.Response) {
		return fmt.Errorf("%w: 画像トリガーのResponseは http(s) の画像URLである必要があります", ErrInvalid)
	}
	return nil
}
