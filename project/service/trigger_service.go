package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"igris-bot/project/domain"
)

// TriggerService は登録トリガーの参照と更新を管理するサービスです
// メモリ上のマッピングが正であり、変更のたびにスナップショット全体を同期書き込みします
type TriggerService struct {
	repo domain.TriggerRepository

	mu       sync.RWMutex
	triggers map[string]domain.Trigger
	order    []string // List 用の挿入順。再読み込み直後はフレーズ順
}

// NewTriggerService は保存済みスナップショットを読み込んでサービスを初期化します
func NewTriggerService(ctx context.Context, repo domain.TriggerRepository) (*TriggerService, error) {
	triggers, err := repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("trigger: スナップショット読み込み失敗: %w", err)
	}

	// 永続化形式はマッピングのため挿入順は復元できない。再読み込み後はフレーズ順で確定させる
	order := make([]string, 0, len(triggers))
	for phrase := range triggers {
		order = append(order, phrase)
	}
	sort.Strings(order)

	return &TriggerService{
		repo:     repo,
		triggers: triggers,
		order:    order,
	}, nil
}

// Lookup は正規化済みフレーズの完全一致でトリガーを検索します
func (ts *TriggerService) Lookup(phrase string) (domain.Trigger, bool) {
	key := normalizePhrase(phrase)

	ts.mu.RLock()
	defer ts.mu.RUnlock()

	t, ok := ts.triggers[key]
	return t, ok
}

// Set はトリガーを追加または上書きし、スナップショットを同期書き込みします
// 画像トリガーのURL検証に失敗した場合は domain.ErrInvalid を返します
// 書き込み失敗はエラーとして返します（メモリ上の変更は保持されます）
func (ts *TriggerService) Set(ctx context.Context, phrase string, kind domain.TriggerKind, response string) error {
	t := domain.Trigger{
		Phrase:   normalizePhrase(phrase),
		Kind:     kind,
		Response: response,
	}
	if err := t.Validate(); err != nil {
		return fmt.Errorf("trigger: Set検証失敗: %w", err)
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()

	if _, exists := ts.triggers[t.Phrase]; !exists {
		ts.order = append(ts.order, t.Phrase)
	}
	ts.triggers[t.Phrase] = t

	return ts.persist(ctx)
}

// Remove は指定フレーズのトリガーを削除し、スナップショットを同期書き込みします
// 存在しない場合は domain.ErrNotFound を返します
func (ts *TriggerService) Remove(ctx context.Context, phrase string) error {
	key := normalizePhrase(phrase)

	ts.mu.Lock()
	defer ts.mu.Unlock()

	if _, ok := ts.triggers[key]; !ok {
		return fmt.Errorf("trigger: 削除対象が見つかりません (phrase=%s): %w", key, domain.ErrNotFound)
	}

	delete(ts.triggers, key)
	for i, phrase := range ts.order {
		if phrase == key {
			ts.order = append(ts.order[:i], ts.order[i+1:]...)
			break
		}
	}

	return ts.persist(ctx)
}

// Clear は全トリガーを削除し、空のスナップショットを同期書き込みします
func (ts *TriggerService) Clear(ctx context.Context) error {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	ts.triggers = make(map[string]domain.Trigger)
	ts.order = nil

	return ts.persist(ctx)
}

// List は登録済みトリガーを挿入順で返します
func (ts *TriggerService) List() []domain.Trigger {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	result := make([]domain.Trigger, 0, len(ts.order))
	for _, phrase := range ts.order {
		result = append(result, ts.triggers[phrase])
	}
	return result
}

// persist はメモリ上のマッピング全体を永続化層へ書き込みます
// 呼び出し元がロックを保持している前提です
func (ts *TriggerService) persist(ctx context.Context) error {
	snapshot := make(map[string]domain.Trigger, len(ts.triggers))
	for phrase, t := range ts.triggers {
		snapshot[phrase] = t
	}

	if err := ts.repo.Save(ctx, snapshot); err != nil {
		return fmt.Errorf("trigger: スナップショット書き込み失敗: %w", err)
	}
	return nil
}

// normalizePhrase はフレーズを検索キーへ正規化します（前後空白除去と小文字化）
func normalizePhrase(phrase string) string {
	return strings.ToLower(strings.TrimSpace(phrase))
}
