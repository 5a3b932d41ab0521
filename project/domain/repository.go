package domain

import (
	"context"
)

// TriggerRepository はトリガー全量スナップショットの永続化を担当します
// メモリ上のマッピングが常に正であり、永続化層は再起動時の復元用バックストップです
type TriggerRepository interface {
	// Load は保存済みスナップショット全体を読み込みます
	// スナップショットが存在しない場合は空のマップを返します（エラーにしない）
	Load(ctx context.Context) (map[string]Trigger, error)

	// Save はスナップショット全体を書き込みます（毎回全量書き換え）
	// 書き込み失敗は必ずエラーとして返します
	Save(ctx context.Context, triggers map[string]Trigger) error
}
