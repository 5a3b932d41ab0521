package service

import (
	"context"
	"sync"
	"time"

	"igris-bot/project/domain"
)

// ===== ChatPort フェイク =====

type sentText struct {
	ChannelID string
	Text      string
}

type sentEmbed struct {
	ChannelID string
	Embed     *Embed
}

type sentReply struct {
	ChannelID string
	MessageID string
	Text      string
}

type fakeChat struct {
	mu      sync.Mutex
	sendErr error
	texts   []sentText
	embeds  []sentEmbed
	replies []sentReply

	// onText を設定すると次のテキスト送信直後に一度だけ呼ばれます
	// 送信とイベント受信の競合をテストから再現するためのフックです
	onText func()
}

func (fc *fakeChat) SendText(ctx context.Context, channelID, text string) error {
	fc.mu.Lock()
	if fc.sendErr != nil {
		fc.mu.Unlock()
		return fc.sendErr
	}
	fc.texts = append(fc.texts, sentText{ChannelID: channelID, Text: text})
	hook := fc.onText
	fc.onText = nil
	fc.mu.Unlock()

	if hook != nil {
		hook()
	}
	return nil
}

func (fc *fakeChat) SendEmbed(ctx context.Context, channelID string, embed *Embed) error {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	if fc.sendErr != nil {
		return fc.sendErr
	}
	fc.embeds = append(fc.embeds, sentEmbed{ChannelID: channelID, Embed: embed})
	return nil
}

func (fc *fakeChat) Reply(ctx context.Context, channelID, messageID, text string) error {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	if fc.sendErr != nil {
		return fc.sendErr
	}
	fc.replies = append(fc.replies, sentReply{ChannelID: channelID, MessageID: messageID, Text: text})
	return nil
}

func (fc *fakeChat) lastText() string {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	if len(fc.texts) == 0 {
		return ""
	}
	return fc.texts[len(fc.texts)-1].Text
}

func (fc *fakeChat) messageCount() int {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return len(fc.texts) + len(fc.embeds) + len(fc.replies)
}

// ===== ModerationPort フェイク =====

type modCall struct {
	GuildID string
	UserID  string
	Reason  string
	Until   time.Time
}

type fakeMod struct {
	err      error
	kicks    []modCall
	bans     []modCall
	unbans   []modCall
	timeouts []modCall
}

func (fm *fakeMod) Kick(ctx context.Context, guildID, userID, reason string) error {
	if fm.err != nil {
		return fm.err
	}
	fm.kicks = append(fm.kicks, modCall{GuildID: guildID, UserID: userID, Reason: reason})
	return nil
}

func (fm *fakeMod) Ban(ctx context.Context, guildID, userID, reason string) error {
	if fm.err != nil {
		return fm.err
	}
	fm.bans = append(fm.bans, modCall{GuildID: guildID, UserID: userID, Reason: reason})
	return nil
}

func (fm *fakeMod) Unban(ctx context.Context, guildID, userID string) error {
	if fm.err != nil {
		return fm.err
	}
	fm.unbans = append(fm.unbans, modCall{GuildID: guildID, UserID: userID})
	return nil
}

func (fm *fakeMod) Timeout(ctx context.Context, guildID, userID string, until time.Time, reason string) error {
	if fm.err != nil {
		return fm.err
	}
	fm.timeouts = append(fm.timeouts, modCall{GuildID: guildID, UserID: userID, Reason: reason, Until: until})
	return nil
}

// ===== GuildPort フェイク =====

type fakeGuild struct {
	members       map[string]*Member
	ownerID       string
	botID         string
	hasAdmin      bool
	notifyChannel string
	notifyErr     error
}

func (fg *fakeGuild) ResolveMember(ctx context.Context, guildID, userID string) (*Member, error) {
	m, ok := fg.members[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return m, nil
}

func (fg *fakeGuild) OwnerID(ctx context.Context, guildID string) (string, error) {
	return fg.ownerID, nil
}

func (fg *fakeGuild) BotUserID() string {
	return fg.botID
}

func (fg *fakeGuild) BotHasAdmin(ctx context.Context, guildID string) (bool, error) {
	return fg.hasAdmin, nil
}

func (fg *fakeGuild) NotifyChannelID(ctx context.Context, guildID string) (string, error) {
	if fg.notifyErr != nil {
		return "", fg.notifyErr
	}
	return fg.notifyChannel, nil
}

// ===== TaskPort フェイク =====

// scheduledTask は予約されたタスク1件の記録です
type scheduledTask struct {
	Delay time.Duration
	Task  func()
}

// fakeTasks はタイマーを使わず手動発火できるスケジューラーです
// テストから fire を呼ぶことで期限切れや発火を決定的に再現します
type fakeTasks struct {
	mu    sync.Mutex
	tasks []scheduledTask
}

func (ft *fakeTasks) Schedule(delay time.Duration, task func()) {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	ft.tasks = append(ft.tasks, scheduledTask{Delay: delay, Task: task})
}

func (ft *fakeTasks) count() int {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	return len(ft.tasks)
}

func (ft *fakeTasks) fire(i int) {
	ft.mu.Lock()
	task := ft.tasks[i].Task
	ft.mu.Unlock()
	task()
}

// ===== TriggerRepository フェイク =====

// memRepo は domain.TriggerRepository のメモリ実装です
// saveErr で書き込み失敗を注入できます
type memRepo struct {
	data    map[string]domain.Trigger
	saveErr error
	saves   int
}

func newMemRepo() *memRepo {
	return &memRepo{data: map[string]domain.Trigger{}}
}

func (mr *memRepo) Load(ctx context.Context) (map[string]domain.Trigger, error) {
	out := make(map[string]domain.Trigger, len(mr.data))
	for k, v := range mr.data {
		out[k] = v
	}
	return out, nil
}

func (mr *memRepo) Save(ctx context.Context, triggers map[string]domain.Trigger) error {
	if mr.saveErr != nil {
		return mr.saveErr
	}
	mr.saves++
	out := make(map[string]domain.Trigger, len(triggers))
	for k, v := range triggers {
		out[k] = v
	}
	mr.data = out
	return nil
}
