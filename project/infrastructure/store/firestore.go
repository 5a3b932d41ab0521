package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"igris-bot/project/domain"
	"igris-bot/project/dto"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// snapshotDocID はスナップショットを保持する単一ドキュメントのIDです
const snapshotDocID = "snapshot"

// isNotFound は Firestore の NotFound エラーを判定するヘルパー関数です
func isNotFound(err error) bool {
	st, ok := status.FromError(err)
	return ok && st.Code() == codes.NotFound
}

// snapshotDoc は Firestore 上のスナップショットドキュメントです
// フレーズには任意の文字が含まれるため、フィールド名制約を避けて
// マッピング全体を JSON 文字列として1ドキュメントに保存します
type snapshotDoc struct {
	Triggers  string `firestore:"triggers"`
	UpdatedAt int64  `firestore:"updated_at"`
}

// FirestoreStore は domain.TriggerRepository の Firestore 実装です
type FirestoreStore struct {
	cli *firestore.Client
	col string
}

// NewFirestoreStore は Firestore リポジトリを初期化します
func NewFirestoreStore(ctx context.Context, projectID, collection string) (*FirestoreStore, error) {
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("firestore: クライアント初期化失敗: %w", err)
	}

	return &FirestoreStore{
		cli: client,
		col: collection,
	}, nil
}

// Load はスナップショットを読み込みます。ドキュメントが存在しない場合は空のマップを返します
func (s *FirestoreStore) Load(ctx context.Context) (map[string]domain.Trigger, error) {
	docRef := s.cli.Collection(s.col).Doc(snapshotDocID)

	snapshot, err := docRef.Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return map[string]domain.Trigger{}, nil
		}
		return nil, fmt.Errorf("firestore: スナップショット取得失敗: %w", err)
	}

	var doc snapshotDoc
	if err := snapshot.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("firestore: スナップショット構造体変換失敗: %w", err)
	}

	var records map[string]dto.TriggerRecord
	if err := json.Unmarshal([]byte(doc.Triggers), &records); err != nil {
		return nil, fmt.Errorf("firestore: スナップショット JSON パース失敗: %w", err)
	}

	triggers := make(map[string]domain.Trigger, len(records))
	for phrase, r := range records {
		triggers[phrase] = r.Trigger(phrase)
	}
	return triggers, nil
}

// Save はスナップショット全体を書き込みます
func (s *FirestoreStore) Save(ctx context.Context, triggers map[string]domain.Trigger) error {
	records := make(map[string]dto.TriggerRecord, len(triggers))
	for phrase, t := range triggers {
		records[phrase] = dto.RecordFromTrigger(t)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("firestore: スナップショット JSON 変換失敗: %w", err)
	}

	docRef := s.cli.Collection(s.col).Doc(snapshotDocID)
	doc := snapshotDoc{
		Triggers:  string(data),
		UpdatedAt: time.Now().Unix(),
	}
	if _, err := docRef.Set(ctx, doc); err != nil {
		return fmt.Errorf("firestore: スナップショット書き込み失敗: %w", err)
	}
	return nil
}

// Close は Firestore クライアントを閉じます
func (s *FirestoreStore) Close() error {
	if s.cli != nil {
		return s.cli.Close()
	}
	return nil
}
