package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"igris-bot/project/domain"
	"igris-bot/project/dto"
)

// FileStore は domain.TriggerRepository のローカルファイル実装です
// スナップショット全体をインデント付き JSON として毎回書き換えます
// 旧実装の triggers.json と互換のフォーマットです
type FileStore struct {
	path string
}

// NewFileStore はファイルリポジトリを初期化します
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load はスナップショットを読み込みます。ファイルが存在しない場合は空のマップを返します
func (fs *FileStore) Load(ctx context.Context) (map[string]domain.Trigger, error) {
	data, err := os.ReadFile(fs.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]domain.Trigger{}, nil
		}
		return nil, fmt.Errorf("filestore: 読み込み失敗 (path=%s): %w", fs.path, err)
	}

	var records map[string]dto.TriggerRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("filestore: JSON パース失敗 (path=%s): %w", fs.path, err)
	}

	triggers := make(map[string]domain.Trigger, len(records))
	for phrase, r := range records {
		triggers[phrase] = r.Trigger(phrase)
	}
	return triggers, nil
}

// Save はスナップショット全体を書き込みます。書き込み失敗はエラーとして返します
func (fs *FileStore) Save(ctx context.Context, triggers map[string]domain.Trigger) error {
	records := make(map[string]dto.TriggerRecord, len(triggers))
	for phrase, t := range triggers {
		records[phrase] = dto.RecordFromTrigger(t)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("filestore: JSON 変換失敗: %w", err)
	}

	if err := os.WriteFile(fs.path, data, 0o644); err != nil {
		return fmt.Errorf("filestore: 書き込み失敗 (path=%s): %w", fs.path, err)
	}
	return nil
}
