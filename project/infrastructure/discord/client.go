package discord

import (
	"context"
	"fmt"
	"time"

	"igris-bot/project/domain"
	"igris-bot/project/service"

	"github.com/bwmarrin/discordgo"
)

// Client は service の各ポート（ChatPort / ModerationPort / GuildPort）の Discord SDK 実装です
type Client struct {
	s *discordgo.Session
}

// NewClient は Discord クライアントを初期化します
func NewClient(s *discordgo.Session) *Client {
	return &Client{s: s}
}

// ===== ChatPort 実装 =====

// SendText はチャンネルへプレーンテキストを送信します
func (c *Client) SendText(ctx context.Context, channelID, text string) error {
	_, err := c.s.ChannelMessageSend(channelID, text, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("discord: メッセージ送信失敗 (channel=%s): %w", channelID, err)
	}
	return nil
}

// SendEmbed はチャンネルへ埋め込みメッセージを送信します
func (c *Client) SendEmbed(ctx context.Context, channelID string, embed *service.Embed) error {
	_, err := c.s.ChannelMessageSendEmbed(channelID, toMessageEmbed(embed), discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("discord: 埋め込み送信失敗 (channel=%s): %w", channelID, err)
	}
	return nil
}

// Reply は元メッセージへの返信としてテキストを送信します
func (c *Client) Reply(ctx context.Context, channelID, messageID, text string) error {
	ref := &discordgo.MessageReference{
		MessageID: messageID,
		ChannelID: channelID,
	}
	_, err := c.s.ChannelMessageSendReply(channelID, text, ref, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("discord: 返信送信失敗 (channel=%s, message=%s): %w", channelID, messageID, err)
	}
	return nil
}

// ===== ModerationPort 実装 =====

// Kick はメンバーをギルドから強制退出させます
func (c *Client) Kick(ctx context.Context, guildID, userID, reason string) error {
	if err := c.s.GuildMemberDeleteWithReason(guildID, userID, reason, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("discord: キック失敗 (guild=%s, user=%s): %w", guildID, userID, err)
	}
	return nil
}

// Ban はメンバーをギルドから追放します
func (c *Client) Ban(ctx context.Context, guildID, userID, reason string) error {
	if err := c.s.GuildBanCreateWithReason(guildID, userID, reason, 0, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("discord: BAN失敗 (guild=%s, user=%s): %w", guildID, userID, err)
	}
	return nil
}

// Unban は指定IDのユーザーの追放を解除します
func (c *Client) Unban(ctx context.Context, guildID, userID string) error {
	if err := c.s.GuildBanDelete(guildID, userID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("discord: BAN解除失敗 (guild=%s, user=%s): %w", guildID, userID, err)
	}
	return nil
}

// Timeout はメンバーに until までの発言制限を適用します。reason は監査ログに記録されます
func (c *Client) Timeout(ctx context.Context, guildID, userID string, until time.Time, reason string) error {
	opts := []discordgo.RequestOption{discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason)}
	if err := c.s.GuildMemberTimeout(guildID, userID, &until, opts...); err != nil {
		return fmt.Errorf("discord: タイムアウト失敗 (guild=%s, user=%s): %w", guildID, userID, err)
	}
	return nil
}

// ===== GuildPort 実装 =====

// ResolveMember は現在のメンバー情報を解決します
// ギルドを離脱済みなどで取得できない場合は domain.ErrNotFound を返します
func (c *Client) ResolveMember(ctx context.Context, guildID, userID string) (*service.Member, error) {
	member, err := c.s.State.Member(guildID, userID)
	if err != nil {
		member, err = c.s.GuildMember(guildID, userID, discordgo.WithContext(ctx))
		if err != nil {
			// 取得できない実行者は対処対象外として扱う
			return nil, fmt.Errorf("discord: メンバー解決失敗 (guild=%s, user=%s): %w",
				guildID, userID, domain.ErrNotFound)
		}
	}

	return &service.Member{
		UserID:   member.User.ID,
		Username: member.User.Username,
	}, nil
}

// OwnerID はギルドのオーナーのユーザーIDを返します
func (c *Client) OwnerID(ctx context.Context, guildID string) (string, error) {
	guild, err := c.guild(ctx, guildID)
	if err != nil {
		return "", err
	}
	return guild.OwnerID, nil
}

// BotUserID は Bot 自身のユーザーIDを返します
func (c *Client) BotUserID() string {
	if c.s.State.User == nil {
		return ""
	}
	return c.s.State.User.ID
}

// BotHasAdmin は Bot 自身がギルドの管理者権限を持つかを判定します
// ロールの権限ビットを集計して確認します（オーナーは常に管理者扱い）
func (c *Client) BotHasAdmin(ctx context.Context, guildID string) (bool, error) {
	guild, err := c.guild(ctx, guildID)
	if err != nil {
		return false, err
	}

	botID := c.BotUserID()
	if guild.OwnerID == botID {
		return true, nil
	}

	member, err := c.s.State.Member(guildID, botID)
	if err != nil {
		member, err = c.s.GuildMember(guildID, botID, discordgo.WithContext(ctx))
		if err != nil {
			return false, fmt.Errorf("discord: Botメンバー取得失敗 (guild=%s): %w", guildID, err)
		}
	}

	// @everyone ロール（ID がギルドIDと一致）も権限計算に含める
	roleIDs := append([]string{guildID}, member.Roles...)
	for _, roleID := range roleIDs {
		for _, role := range guild.Roles {
			if role.ID != roleID {
				continue
			}
			if role.Permissions&discordgo.PermissionAdministrator != 0 {
				return true, nil
			}
		}
	}
	return false, nil
}

// NotifyChannelID は通知の投稿先チャンネルを返します
// システムチャンネルが未設定の場合は Bot が書き込める最初のテキストチャンネルを選びます
func (c *Client) NotifyChannelID(ctx context.Context, guildID string) (string, error) {
	guild, err := c.guild(ctx, guildID)
	if err != nil {
		return "", err
	}

	if guild.SystemChannelID != "" {
		return guild.SystemChannelID, nil
	}

	channels := guild.Channels
	if len(channels) == 0 {
		channels, err = c.s.GuildChannels(guildID, discordgo.WithContext(ctx))
		if err != nil {
			return "", fmt.Errorf("discord: チャンネル一覧取得失敗 (guild=%s): %w", guildID, err)
		}
	}

	botID := c.BotUserID()
	for _, ch := range channels {
		if ch.Type != discordgo.ChannelTypeGuildText {
			continue
		}
		perms, err := c.s.State.UserChannelPermissions(botID, ch.ID)
		if err != nil {
			continue
		}
		if perms&discordgo.PermissionSendMessages != 0 {
			return ch.ID, nil
		}
	}

	return "", fmt.Errorf("discord: 書き込み可能なチャンネルが見つかりません (guild=%s): %w",
		guildID, domain.ErrNotFound)
}

// ===== ヘルパー関数 =====

// guild はギルド情報をステートキャッシュ優先で取得します
func (c *Client) guild(ctx context.Context, guildID string) (*discordgo.Guild, error) {
	guild, err := c.s.State.Guild(guildID)
	if err == nil {
		return guild, nil
	}

	guild, err = c.s.Guild(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("discord: ギルド取得失敗 (guild=%s): %w", guildID, err)
	}
	return guild, nil
}

// toMessageEmbed はサービス層の埋め込みモデルを discordgo の形式へ変換します
func toMessageEmbed(embed *service.Embed) *discordgo.MessageEmbed {
	me := &discordgo.MessageEmbed{
		Title:       embed.Title,
		Description: embed.Description,
		Color:       embed.Color,
	}

	if embed.ImageURL != "" {
		me.Image = &discordgo.MessageEmbedImage{URL: embed.ImageURL}
	}
	for _, f := range embed.Fields {
		me.Fields = append(me.Fields, &discordgo.MessageEmbedField{
			Name:  f.Name,
			Value: f.Value,
		})
	}
	if embed.FooterText != "" {
		me.Footer = &discordgo.MessageEmbedFooter{
			Text:    embed.FooterText,
			IconURL: embed.FooterIconURL,
		}
	}
	if embed.Timestamp {
		me.Timestamp = time.Now().Format(time.RFC3339)
	}

	return me
}
