package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"igris-bot/project/domain"
)

// guardKickReason は自動対処で強制退出させる際に監査ログへ残す理由です
const guardKickReason = "Anti-nuke: Unauthorized action"

// GuardService は監査ログを監視し、保護対象の管理操作へ自動対処するサービスです
// 対処は1回限りのベストエフォートで、リトライや同一実行者への抑制は行いません
type GuardService struct {
	chat  ChatPort
	mod   ModerationPort
	guild GuildPort
}

// NewGuardService は GuardService のインスタンスを作成します
func NewGuardService(chat ChatPort, mod ModerationPort, guild GuildPort) *GuardService {
	return &GuardService{
		chat:  chat,
		mod:   mod,
		guild: guild,
	}
}

// OnAuditEntry は監査ログエントリ1件を処理します
// 保護対象操作を権限のない実行者が行った場合、実行者を強制退出させて通知します
// エラーは呼び出し元でログに記録される前提で、プロセスを停止させることはありません
func (gs *GuardService) OnAuditEntry(ctx context.Context, ev *AuditEvent) error {
	// 保護対象外の操作は無視
	if !ev.Action.Protected() {
		return nil
	}

	// Bot 自身に管理者権限がなければ対処できないためスキップ
	hasAdmin, err := gs.guild.BotHasAdmin(ctx, ev.GuildID)
	if err != nil {
		return fmt.Errorf("guard: Bot権限確認失敗 (guild=%s): %w", ev.GuildID, err)
	}
	if !hasAdmin {
		return nil
	}

	// 実行者のメンバー解決。解決できない場合は対処しない
	member, err := gs.guild.ResolveMember(ctx, ev.GuildID, ev.ExecutorID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("guard: 実行者解決失敗 (guild=%s, user=%s): %w", ev.GuildID, ev.ExecutorID, err)
	}

	// サーバーオーナーと Bot 自身は対象外
	ownerID, err := gs.guild.OwnerID(ctx, ev.GuildID)
	if err != nil {
		return fmt.Errorf("guard: オーナー取得失敗 (guild=%s): %w", ev.GuildID, err)
	}
	if member.UserID == ownerID || member.UserID == gs.guild.BotUserID() {
		return nil
	}

	// 強制退出（1回限り、失敗してもリトライしない）
	if err := gs.mod.Kick(ctx, ev.GuildID, member.UserID, guardKickReason); err != nil {
		return fmt.Errorf("guard: 強制退出失敗 (guild=%s, user=%s): %w", ev.GuildID, member.UserID, err)
	}

	// 通知はベストエフォート。投稿先がない・送信に失敗してもエラーにしない
	channelID, err := gs.guild.NotifyChannelID(ctx, ev.GuildID)
	if err != nil {
		slog.Warn("ガード通知の投稿先が見つかりません", "guild", ev.GuildID, "error", err)
		return nil
	}

	text := fmt.Sprintf("⚠️ **Anti-Nuke Triggered:** %s was kicked for attempting: **%s**",
		member.Username, ev.Action)
	if err := gs.chat.SendText(ctx, channelID, text); err != nil {
		slog.Warn("ガード通知の送信失敗", "guild", ev.GuildID, "channel", channelID, "error", err)
	}

	return nil
}
