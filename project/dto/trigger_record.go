package dto

import (
	"igris-bot/project/domain"
)

// TriggerRecord は永続化スナップショット上のトリガー1件を表すワイヤ形式です
// 旧実装の triggers.json と互換のフィールド名を維持します
type TriggerRecord struct {
	// Type は応答種別（"text" または "image"）
	Type string `json:"type"`

	// Response は応答内容（本文または画像URL）
	Response string `json:"response"`
}

// RecordFromTrigger はドメインエンティティをワイヤ形式へ変換します
func RecordFromTrigger(t domain.Trigger) TriggerRecord {
	return TriggerRecord{
		Type:     string(t.Kind),
		Response: t.Response,
	}
}

// Trigger はワイヤ形式をドメインエンティティへ変換します
// phrase はスナップショット上のマッピングキーです
func (r TriggerRecord) Trigger(phrase string) domain.Trigger {
	return domain.Trigger{
		Phrase:   phrase,
		Kind:     domain.TriggerKind(r.Type),
		Response: r.Response,
	}
}
