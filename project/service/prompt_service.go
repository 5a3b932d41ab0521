package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"igris-bot/project/domain"
)

// PromptStep はダイアログの1ステップ（質問と回答検証）を定義します
type PromptStep struct {
	// Question はステップ開始時にチャンネルへ送信する質問文
	Question string

	// Long は自由入力フィールド（長い待機ウィンドウを使う）かどうか
	Long bool

	// Validate は回答を検証し、保存用の値へ正規化します
	// fields にはそれまでのステップで収集済みの値が入ります
	// エラーを返すとダイアログは中止され、エラー文言がそのままユーザーへ表示されます
	Validate func(fields []string, input string) (string, error)
}

// PromptFlow はダイアログ全体の定義です
type PromptFlow struct {
	// Steps は順番に実行されるステップ列
	Steps []PromptStep

	// OnCommit は最終ステップ完了時に呼ばれます（Trigger Store への反映など）
	OnCommit func(ctx context.Context, fields []string) error

	// CommitText は完了通知メッセージを作成します
	CommitText func(fields []string) string

	// TimeoutText は期限切れ時にユーザーへ表示するメッセージ
	TimeoutText string
}

// promptKey は進行中ダイアログの一意キーです
// 同一 (チャンネル, ユーザー) につきダイアログは1つまで
type promptKey struct {
	ChannelID string
	UserID    string
}

// pendingPrompt は進行中ダイアログ1件の状態です
//
// 状態遷移: 各ステップで質問送信後に回答待ち（期限付き）となり、
// 有効な回答で次ステップへ、検証失敗で中止、期限切れでタイムアウトへ遷移します。
// 最終ステップの有効な回答で OnCommit が実行されます。
// 終端状態（完了・中止・タイムアウト）に達した時点でレジストリから破棄されます。
type pendingPrompt struct {
	flow   *PromptFlow
	step   int
	fields []string

	// gen はステップ進行のたびに増える世代カウンタ。
	// 期限切れタイマーが古いステップに対して発火した場合の誤破棄を防ぎます
	gen int
}

// PromptService は管理者向け多段ダイアログを管理するサービスです
// ダイアログの状態はメモリ上にのみ存在し、永続化されません
type PromptService struct {
	chat  ChatPort
	tasks TaskPort

	// shortWindow は短い入力フィールドの回答待ちウィンドウ
	shortWindow time.Duration

	// longWindow は自由入力フィールドの回答待ちウィンドウ
	longWindow time.Duration

	mu      sync.Mutex
	pending map[promptKey]*pendingPrompt
}

// NewPromptService は PromptService のインスタンスを作成します
func NewPromptService(chat ChatPort, tasks TaskPort, shortWindow, longWindow time.Duration) *PromptService {
	return &PromptService{
		chat:        chat,
		tasks:       tasks,
		shortWindow: shortWindow,
		longWindow:  longWindow,
		pending:     make(map[promptKey]*pendingPrompt),
	}
}

// Begin は新しいダイアログを開始し、最初の質問を送信します
// 同一 (ユーザー, チャンネル) で進行中のダイアログがある場合は
// domain.ErrDialogInProgress を返し、新しいダイアログは開始しません
func (ps *PromptService) Begin(ctx context.Context, channelID, userID string, flow *PromptFlow) error {
	key := promptKey{ChannelID: channelID, UserID: userID}

	ps.mu.Lock()
	if _, exists := ps.pending[key]; exists {
		ps.mu.Unlock()
		return fmt.Errorf("prompt: ダイアログ開始失敗 (channel=%s, user=%s): %w",
			channelID, userID, domain.ErrDialogInProgress)
	}
	p := &pendingPrompt{flow: flow}
	ps.pending[key] = p
	// 質問送信と回答受付は並行し得るため、世代はロック内で確定させる
	gen := p.gen
	ps.mu.Unlock()

	// 最初の質問を送信
	if err := ps.chat.SendText(ctx, channelID, flow.Steps[0].Question); err != nil {
		ps.mu.Lock()
		delete(ps.pending, key)
		ps.mu.Unlock()
		return fmt.Errorf("prompt: 質問送信失敗: %w", err)
	}

	// 期限切れタイマーを起動
	ps.armDeadline(key, gen, flow.Steps[0])

	return nil
}

// Deliver は受信メッセージを進行中ダイアログへ引き渡します
// 同一 (チャンネル, 送信者) のダイアログが消費した場合は true を返し、
// 呼び出し元はそのメッセージのコマンド解釈を行ってはいけません
func (ps *PromptService) Deliver(ctx context.Context, ev *MessageEvent) bool {
	key := promptKey{ChannelID: ev.ChannelID, UserID: ev.AuthorID}

	ps.mu.Lock()
	p, ok := ps.pending[key]
	if !ok {
		ps.mu.Unlock()
		return false
	}

	// 回答を検証
	value, err := p.flow.Steps[p.step].Validate(p.fields, ev.Content)
	if err != nil {
		// 検証失敗は中止（終端）。部分的なコミットは行わない
		delete(ps.pending, key)
		ps.mu.Unlock()
		ps.notify(ctx, key.ChannelID, err.Error())
		return true
	}

	p.fields = append(p.fields, value)
	p.step++
	p.gen++

	if p.step < len(p.flow.Steps) {
		// 次のステップへ。質問を送信して期限を張り直す
		step := p.flow.Steps[p.step]
		gen := p.gen
		ps.mu.Unlock()

		ps.notify(ctx, key.ChannelID, step.Question)
		ps.armDeadline(key, gen, step)
		return true
	}

	// 全フィールドが揃ったためコミット（終端）
	delete(ps.pending, key)
	flow, fields := p.flow, p.fields
	ps.mu.Unlock()

	if err := flow.OnCommit(ctx, fields); err != nil {
		slog.Error("ダイアログのコミット失敗", "channel", key.ChannelID, "user", key.UserID, "error", err)
		ps.notify(ctx, key.ChannelID, "⛔ Failed to save the trigger. Please try again.")
		return true
	}
	ps.notify(ctx, key.ChannelID, flow.CommitText(fields))
	return true
}

// armDeadline はステップの回答待ちウィンドウに応じた期限切れタイマーを予約します
func (ps *PromptService) armDeadline(key promptKey, gen int, step PromptStep) {
	window := ps.shortWindow
	if step.Long {
		window = ps.longWindow
	}
	ps.tasks.Schedule(window, func() {
		ps.expire(key, gen)
	})
}

// expire は期限切れタイマーの発火処理です
// 対象ダイアログがすでに進行または終了している場合（世代不一致）は何もしません
func (ps *PromptService) expire(key promptKey, gen int) {
	ps.mu.Lock()
	p, ok := ps.pending[key]
	if !ok || p.gen != gen {
		ps.mu.Unlock()
		return
	}
	// タイムアウト（終端）。部分的なコミットは行わない
	flow := p.flow
	delete(ps.pending, key)
	ps.mu.Unlock()

	ps.notify(context.Background(), key.ChannelID, flow.TimeoutText)
}

// notify はユーザーへの通知を送信します。失敗はログに記録するだけで伝播させません
func (ps *PromptService) notify(ctx context.Context, channelID, text string) {
	if err := ps.chat.SendText(ctx, channelID, text); err != nil {
		slog.Error("ダイアログ通知の送信失敗", "channel", channelID, "error", err)
	}
}
