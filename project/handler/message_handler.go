package handler

import (
	"context"
	"log/slog"
	"time"

	"igris-bot/project/service"

	"github.com/bwmarrin/discordgo"
)

// MessageHandler は Discord ゲートウェイのメッセージイベントをサービスへ橋渡しします
type MessageHandler struct {
	router *service.RouterService
}

// NewMessageHandler はメッセージハンドラーを作成します
func NewMessageHandler(router *service.RouterService) *MessageHandler {
	return &MessageHandler{
		router: router,
	}
}

// Handle は discordgo の MessageCreate コールバックです
// ハンドラー単位の失敗はログに記録するだけで、他のイベント処理へは影響しません
func (h *MessageHandler) Handle(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil {
		return
	}

	ev := &service.MessageEvent{
		GuildID:         m.GuildID,
		ChannelID:       m.ChannelID,
		MessageID:       m.ID,
		AuthorID:        m.Author.ID,
		AuthorName:      displayName(m),
		AuthorAvatarURL: m.Author.AvatarURL("1024"),
		AuthorIsBot:     m.Author.Bot,
		AuthorIsAdmin:   memberIsAdmin(s, m),
		Content:         m.Content,
		Mentions:        mentionRefs(m),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := h.router.OnMessage(ctx, ev); err != nil {
		slog.Error("メッセージ処理エラー", "channel", m.ChannelID, "error", err)
	}
}

// displayName は送信者の表示名を返します（ニックネーム優先）
func displayName(m *discordgo.MessageCreate) string {
	if m.Member != nil && m.Member.Nick != "" {
		return m.Member.Nick
	}
	return m.Author.Username
}

// memberIsAdmin は送信者が管理者権限を持つかを判定します
// 判定できない場合は権限なしとして扱います
func memberIsAdmin(s *discordgo.Session, m *discordgo.MessageCreate) bool {
	if m.GuildID == "" {
		return false
	}

	perms, err := s.State.UserChannelPermissions(m.Author.ID, m.ChannelID)
	if err != nil {
		perms, err = s.UserChannelPermissions(m.Author.ID, m.ChannelID)
		if err != nil {
			return false
		}
	}
	return perms&discordgo.PermissionAdministrator != 0
}

// mentionRefs はメッセージ中のメンションをサービスのモデルへ変換します
func mentionRefs(m *discordgo.MessageCreate) []service.UserRef {
	if len(m.Mentions) == 0 {
		return nil
	}

	refs := make([]service.UserRef, 0, len(m.Mentions))
	for _, u := range m.Mentions {
		refs = append(refs, service.UserRef{
			ID:        u.ID,
			Username:  u.Username,
			AvatarURL: u.AvatarURL("1024"),
		})
	}
	return refs
}
