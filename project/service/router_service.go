package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"igris-bot/project/domain"
)

// RouterService は受信メッセージを分類してハンドラーへ振り分けるサービスです
// 分類の優先順位: 進行中ダイアログへの回答 → トリガー完全一致 → コマンド → 無視
type RouterService struct {
	prefix   string
	triggers *TriggerService
	prompts  *PromptService
	chat     ChatPort
	mod      ModerationPort
	tasks    TaskPort
}

// NewRouterService は RouterService のインスタンスを作成します
func NewRouterService(
	prefix string,
	triggers *TriggerService,
	prompts *PromptService,
	chat ChatPort,
	mod ModerationPort,
	tasks TaskPort,
) *RouterService {
	return &RouterService{
		prefix:   prefix,
		triggers: triggers,
		prompts:  prompts,
		chat:     chat,
		mod:      mod,
		tasks:    tasks,
	}
}

// OnMessage は受信メッセージ1件を処理します
// エラーは呼び出し元でログに記録される前提で、他のイベント処理へは影響しません
func (rs *RouterService) OnMessage(ctx context.Context, ev *MessageEvent) error {
	// Bot 投稿とギルド外（DM）は対象外
	if ev.AuthorIsBot || ev.GuildID == "" {
		return nil
	}

	// 進行中ダイアログへの回答を最優先で引き渡す
	if rs.prompts.Deliver(ctx, ev) {
		return nil
	}

	content := strings.TrimSpace(ev.Content)
	if content == "" {
		return nil
	}

	// トリガー完全一致はコマンド解釈より優先される（コマンド語と衝突するフレーズはコマンドを隠す）
	if t, ok := rs.triggers.Lookup(content); ok {
		return rs.renderTrigger(ctx, ev.ChannelID, t)
	}

	// 空白区切りの先頭トークンがコマンド、残りが位置引数
	args := strings.Fields(content)
	command := strings.ToLower(args[0])
	args = args[1:]

	if !strings.HasPrefix(command, rs.prefix) {
		return nil
	}

	switch strings.TrimPrefix(command, rs.prefix) {
	case "arise":
		return rs.handleArise(ctx, ev)
	case "avatar":
		return rs.handleAvatar(ctx, ev)
	case "help":
		return rs.handleHelp(ctx, ev)
	case "remindme":
		return rs.handleRemindMe(ctx, ev, args)
	case "countdown":
		return rs.handleCountdown(ctx, ev, args)
	case "addtrigger":
		return rs.handleAddTrigger(ctx, ev)
	case "removetrigger":
		return rs.handleRemoveTrigger(ctx, ev, args)
	case "edittrigger":
		return rs.handleEditTrigger(ctx, ev)
	case "listtriggers":
		return rs.handleListTriggers(ctx, ev)
	case "cleartriggers":
		return rs.handleClearTriggers(ctx, ev)
	case "kick":
		return rs.handleKick(ctx, ev, args)
	case "ban":
		return rs.handleBan(ctx, ev, args)
	case "unban":
		return rs.handleUnban(ctx, ev, args)
	case "timeout":
		return rs.handleTimeout(ctx, ev, args)
	}

	// 未知のコマンドは黙って無視する
	return nil
}

// renderTrigger はトリガーの応答を種別に応じて送信します
func (rs *RouterService) renderTrigger(ctx context.Context, channelID string, t domain.Trigger) error {
	if t.Kind == domain.TriggerImage {
		embed := &Embed{
			Title:    "🎯 Triggered Image",
			ImageURL: t.Response,
			Color:    colorPurple,
		}
		if err := rs.chat.SendEmbed(ctx, channelID, embed); err != nil {
			return fmt.Errorf("router: 画像トリガー応答失敗: %w", err)
		}
		return nil
	}

	if err := rs.chat.SendText(ctx, channelID, t.Response); err != nil {
		return fmt.Errorf("router: テキストトリガー応答失敗: %w", err)
	}
	return nil
}

// handleArise は !arise（自己紹介）を処理します
func (rs *RouterService) handleArise(ctx context.Context, ev *MessageEvent) error {
	embed := &Embed{
		Title:         "⚔️ Igris Has Awakened!",
		Description:   "Summoned by the shadows, Igris stands ready.\n\n**How can I assist you today, master?**",
		Color:         colorDarkPurple,
		FooterText:    fmt.Sprintf("⚔️ %s", ev.AuthorName),
		FooterIconURL: ev.AuthorAvatarURL,
		Timestamp:     true,
	}
	return rs.chat.SendEmbed(ctx, ev.ChannelID, embed)
}

// handleAvatar は !avatar を処理します
// 最初にメンションされたユーザー、いなければ送信者自身のアバターを表示します
func (rs *RouterService) handleAvatar(ctx context.Context, ev *MessageEvent) error {
	target := UserRef{
		ID:        ev.AuthorID,
		Username:  ev.AuthorName,
		AvatarURL: ev.AuthorAvatarURL,
	}
	if len(ev.Mentions) > 0 {
		target = ev.Mentions[0]
	}

	embed := &Embed{
		Title:    fmt.Sprintf("%s's Avatar", target.Username),
		ImageURL: target.AvatarURL,
		Color:    colorBlue,
	}
	return rs.chat.SendEmbed(ctx, ev.ChannelID, embed)
}

// handleHelp は !help（コマンド一覧）を処理します
func (rs *RouterService) handleHelp(ctx context.Context, ev *MessageEvent) error {
	p := rs.prefix
	embed := &Embed{
		Title:       "🛡️ Igris Bot Help",
		Description: "Here's a list of available commands:",
		Color:       colorBlue,
		Fields: []EmbedField{
			{Name: p + "arise", Value: "Summon Igris from the shadows."},
			{Name: p + "avatar", Value: "Get your or a mentioned user's avatar."},
			{Name: p + "remindme <time> <message>", Value: "Set a personal reminder."},
			{Name: p + "countdown <time>", Value: "Start a countdown timer and get notified when it ends."},
			{Name: p + "addtrigger", Value: "Add a custom trigger (admin only)."},
			{Name: p + "removetrigger", Value: "Remove a trigger (admin only)."},
			{Name: p + "edittrigger", Value: "Edit an existing trigger (admin only)."},
			{Name: p + "listtriggers", Value: "List all custom triggers."},
			{Name: p + "cleartriggers", Value: "Clear all custom triggers (admin only)."},
			{Name: p + "kick @user [reason]", Value: "Kick a user from the server (admin only)."},
			{Name: p + "ban @user [reason]", Value: "Ban a user from the server (admin only)."},
			{Name: p + "unban userid", Value: "Unban a user by ID (admin only)."},
			{Name: p + "timeout @user <duration>", Value: "Timeout a user (admin only)."},
		},
	}
	return rs.chat.SendEmbed(ctx, ev.ChannelID, embed)
}

// handleRemindMe は !remindme <span> <text> を処理します
func (rs *RouterService) handleRemindMe(ctx context.Context, ev *MessageEvent, args []string) error {
	if len(args) < 2 {
		return rs.chat.Reply(ctx, ev.ChannelID, ev.MessageID,
			fmt.Sprintf("Invalid format. Use `%sremindme 10m Take a break`.", rs.prefix))
	}

	span := args[0]
	text := strings.Join(args[1:], " ")
	delay, ok := domain.ParseSpan(span)
	if !ok {
		return rs.chat.Reply(ctx, ev.ChannelID, ev.MessageID,
			fmt.Sprintf("Invalid format. Use `%sremindme 10m Take a break`.", rs.prefix))
	}

	// 発火時の通知失敗はログに記録するだけでプロセスへは影響させない
	channelID, messageID := ev.ChannelID, ev.MessageID
	rs.tasks.Schedule(delay, func() {
		if err := rs.chat.Reply(context.Background(), channelID, messageID, "⏰ Reminder: "+text); err != nil {
			slog.Error("リマインダー通知の送信失敗", "channel", channelID, "error", err)
		}
	})

	return rs.chat.Reply(ctx, ev.ChannelID, ev.MessageID, fmt.Sprintf("✅ Reminder set for %s.", span))
}

// handleCountdown は !countdown <span> を処理します
func (rs *RouterService) handleCountdown(ctx context.Context, ev *MessageEvent, args []string) error {
	if len(args) < 1 {
		return rs.chat.Reply(ctx, ev.ChannelID, ev.MessageID,
			fmt.Sprintf("Invalid format. Use `%scountdown 1h`.", rs.prefix))
	}

	span := args[0]
	delay, ok := domain.ParseSpan(span)
	if !ok {
		return rs.chat.Reply(ctx, ev.ChannelID, ev.MessageID,
			fmt.Sprintf("Invalid format. Use `%scountdown 1h`.", rs.prefix))
	}

	channelID, authorID := ev.ChannelID, ev.AuthorID
	rs.tasks.Schedule(delay, func() {
		text := fmt.Sprintf("⏰ <@%s> Countdown for %s has ended!", authorID, span)
		if err := rs.chat.SendText(context.Background(), channelID, text); err != nil {
			slog.Error("カウントダウン通知の送信失敗", "channel", channelID, "error", err)
		}
	})

	return rs.chat.Reply(ctx, ev.ChannelID, ev.MessageID, fmt.Sprintf("⏳ Countdown started for %s...", span))
}

// handleAddTrigger は !addtrigger（対話形式、管理者専用）を処理します
func (rs *RouterService) handleAddTrigger(ctx context.Context, ev *MessageEvent) error {
	if !ev.AuthorIsAdmin {
		return nil // 権限なしは黙って無視する（意図された仕様）
	}

	err := rs.prompts.Begin(ctx, ev.ChannelID, ev.AuthorID, AddTriggerFlow(rs.triggers))
	if errors.Is(err, domain.ErrDialogInProgress) {
		return rs.chat.SendText(ctx, ev.ChannelID, "⛔ A trigger dialog is already in progress.")
	}
	return err
}

// handleRemoveTrigger は !removetrigger <phrase>（管理者専用）を処理します
func (rs *RouterService) handleRemoveTrigger(ctx context.Context, ev *MessageEvent, args []string) error {
	if !ev.AuthorIsAdmin {
		return nil
	}

	if len(args) < 1 {
		return rs.chat.Reply(ctx, ev.ChannelID, ev.MessageID, "⛔ Trigger not found.")
	}

	phrase := strings.ToLower(args[0])
	if err := rs.triggers.Remove(ctx, phrase); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return rs.chat.Reply(ctx, ev.ChannelID, ev.MessageID, "⛔ Trigger not found.")
		}
		// 永続化失敗はユーザーへ汎用通知しつつ呼び出し元へも返す
		rs.notify(ctx, ev.ChannelID, "⛔ Failed to save triggers.")
		return err
	}

	return rs.chat.Reply(ctx, ev.ChannelID, ev.MessageID, fmt.Sprintf("✅ Trigger `%s` removed.", phrase))
}

// handleEditTrigger は !edittrigger（対話形式、管理者専用）を処理します
func (rs *RouterService) handleEditTrigger(ctx context.Context, ev *MessageEvent) error {
	if !ev.AuthorIsAdmin {
		return nil
	}

	err := rs.prompts.Begin(ctx, ev.ChannelID, ev.AuthorID, EditTriggerFlow(rs.triggers))
	if errors.Is(err, domain.ErrDialogInProgress) {
		return rs.chat.SendText(ctx, ev.ChannelID, "⛔ A trigger dialog is already in progress.")
	}
	return err
}

// handleListTriggers は !listtriggers を処理します
func (rs *RouterService) handleListTriggers(ctx context.Context, ev *MessageEvent) error {
	list := rs.triggers.List()
	if len(list) == 0 {
		return rs.chat.SendText(ctx, ev.ChannelID, "No triggers found.")
	}

	lines := make([]string, 0, len(list))
	for _, t := range list {
		lines = append(lines, fmt.Sprintf("• **%s** → %s", t.Phrase, t.Kind))
	}

	embed := &Embed{
		Title:       "🧠 Active Triggers",
		Description: strings.Join(lines, "\n"),
		Color:       colorPurple,
	}
	return rs.chat.SendEmbed(ctx, ev.ChannelID, embed)
}

// handleClearTriggers は !cleartriggers（管理者専用）を処理します
func (rs *RouterService) handleClearTriggers(ctx context.Context, ev *MessageEvent) error {
	if !ev.AuthorIsAdmin {
		return nil
	}

	if err := rs.triggers.Clear(ctx); err != nil {
		rs.notify(ctx, ev.ChannelID, "⛔ Failed to save triggers.")
		return err
	}
	return rs.chat.SendText(ctx, ev.ChannelID, "✅ All triggers cleared.")
}

// handleKick は !kick @user [reason]（管理者専用）を処理します
func (rs *RouterService) handleKick(ctx context.Context, ev *MessageEvent, args []string) error {
	if !ev.AuthorIsAdmin {
		return nil
	}

	if len(ev.Mentions) == 0 {
		return rs.chat.Reply(ctx, ev.ChannelID, ev.MessageID, "Mention a valid user to kick.")
	}
	target := ev.Mentions[0]
	reason := moderationReason(args, 1)

	if err := rs.mod.Kick(ctx, ev.GuildID, target.ID, reason); err != nil {
		// プラットフォーム側の失敗は内部詳細を出さずに汎用通知（リトライなし）
		slog.Error("キック失敗", "guild", ev.GuildID, "user", target.ID, "error", err)
		return rs.chat.SendText(ctx, ev.ChannelID, "⛔ Failed to kick.")
	}
	return rs.chat.SendText(ctx, ev.ChannelID, fmt.Sprintf("✅ %s was kicked. Reason: %s", target.Username, reason))
}

// handleBan は !ban @user [reason]（管理者専用）を処理します
func (rs *RouterService) handleBan(ctx context.Context, ev *MessageEvent, args []string) error {
	if !ev.AuthorIsAdmin {
		return nil
	}

	if len(ev.Mentions) == 0 {
		return rs.chat.Reply(ctx, ev.ChannelID, ev.MessageID, "Mention a valid user to ban.")
	}
	target := ev.Mentions[0]
	reason := moderationReason(args, 1)

	if err := rs.mod.Ban(ctx, ev.GuildID, target.ID, reason); err != nil {
		slog.Error("BAN失敗", "guild", ev.GuildID, "user", target.ID, "error", err)
		return rs.chat.SendText(ctx, ev.ChannelID, "⛔ Failed to ban.")
	}
	return rs.chat.SendText(ctx, ev.ChannelID, fmt.Sprintf("✅ %s was banned. Reason: %s", target.Username, reason))
}

// handleUnban は !unban <userid>（管理者専用）を処理します
func (rs *RouterService) handleUnban(ctx context.Context, ev *MessageEvent, args []string) error {
	if !ev.AuthorIsAdmin {
		return nil
	}

	if len(args) < 1 {
		return rs.chat.Reply(ctx, ev.ChannelID, ev.MessageID,
			fmt.Sprintf("Usage: %sunban userid", rs.prefix))
	}
	userID := args[0]

	if err := rs.mod.Unban(ctx, ev.GuildID, userID); err != nil {
		slog.Error("BAN解除失敗", "guild", ev.GuildID, "user", userID, "error", err)
		return rs.chat.SendText(ctx, ev.ChannelID, "⛔ Failed to unban.")
	}
	return rs.chat.SendText(ctx, ev.ChannelID, fmt.Sprintf("✅ Unbanned user with ID: %s", userID))
}

// handleTimeout は !timeout @user <span> [reason]（管理者専用）を処理します
func (rs *RouterService) handleTimeout(ctx context.Context, ev *MessageEvent, args []string) error {
	if !ev.AuthorIsAdmin {
		return nil
	}

	usage := fmt.Sprintf("Usage: %stimeout @user 10m Spamming", rs.prefix)
	if len(ev.Mentions) == 0 || len(args) < 2 {
		return rs.chat.Reply(ctx, ev.ChannelID, ev.MessageID, usage)
	}

	target := ev.Mentions[0]
	span := args[1]
	delay, ok := domain.ParseSpan(span)
	if !ok {
		return rs.chat.Reply(ctx, ev.ChannelID, ev.MessageID, usage)
	}
	reason := moderationReason(args, 2)

	until := time.Now().Add(delay)
	if err := rs.mod.Timeout(ctx, ev.GuildID, target.ID, until, reason); err != nil {
		slog.Error("タイムアウト失敗", "guild", ev.GuildID, "user", target.ID, "error", err)
		return rs.chat.SendText(ctx, ev.ChannelID, "⛔ Failed to timeout user.")
	}
	return rs.chat.SendText(ctx, ev.ChannelID,
		fmt.Sprintf("✅ %s has been timed out for %s.", target.Username, span))
}

// notify はユーザーへの補助的な通知を送信します。失敗はログに記録するだけです
func (rs *RouterService) notify(ctx context.Context, channelID, text string) {
	if err := rs.chat.SendText(ctx, channelID, text); err != nil {
		slog.Error("通知送信失敗", "channel", channelID, "error", err)
	}
}

// moderationReason は位置引数から強制措置の理由文字列を組み立てます
// from より前の引数（メンションや期間トークン）は含めません
func moderationReason(args []string, from int) string {
	if len(args) <= from {
		return "No reason"
	}
	reason := strings.Join(args[from:], " ")
	if reason == "" {
		return "No reason"
	}
	return reason
}
