package service

import (
	"context"
	"time"
)

// ChatPort はチャンネルへのメッセージ送信のポートです
type ChatPort interface {
	// SendText はチャンネルへプレーンテキストを送信します
	SendText(ctx context.Context, channelID, text string) error

	// SendEmbed はチャンネルへ埋め込みメッセージを送信します
	SendEmbed(ctx context.Context, channelID string, embed *Embed) error

	// Reply は元メッセージへの返信としてテキストを送信します
	Reply(ctx context.Context, channelID, messageID, text string) error
}

// ModerationPort はメンバーへの強制措置のポートです
type ModerationPort interface {
	// Kick はメンバーをギルドから強制退出させます
	Kick(ctx context.Context, guildID, userID, reason string) error

	// Ban はメンバーをギルドから追放します
	Ban(ctx context.Context, guildID, userID, reason string) error

	// Unban は指定IDのユーザーの追放を解除します
	Unban(ctx context.Context, guildID, userID string) error

	// Timeout はメンバーに until までの発言制限を適用します
	Timeout(ctx context.Context, guildID, userID string, until time.Time, reason string) error
}

// GuildPort はギルド情報の照会のポートです
type GuildPort interface {
	// ResolveMember は現在のメンバー情報を解決します
	// 解決できない場合は domain.ErrNotFound を返します
	ResolveMember(ctx context.Context, guildID, userID string) (*Member, error)

	// OwnerID はギルドのオーナーのユーザーIDを返します
	OwnerID(ctx context.Context, guildID string) (string, error)

	// BotUserID は Bot 自身のユーザーIDを返します
	BotUserID() string

	// BotHasAdmin は Bot 自身がギルドの管理者権限を持つかを判定します
	BotHasAdmin(ctx context.Context, guildID string) (bool, error)

	// NotifyChannelID は通知の投稿先チャンネルを返します
	// システムチャンネル、なければ Bot が書き込める最初のテキストチャンネル
	// 候補がない場合は domain.ErrNotFound を返します
	NotifyChannelID(ctx context.Context, guildID string) (string, error)
}

// TaskPort は遅延タスク予約のポートです
type TaskPort interface {
	// Schedule は delay 経過後に task を一度だけ実行します
	// 呼び出しは即座に返り、予約後のキャンセル手段は提供しません
	// タスクはプロセス再起動で失われます（永続化しない設計）
	Schedule(delay time.Duration, task func())
}
