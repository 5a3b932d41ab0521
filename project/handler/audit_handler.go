package handler

import (
	"context"
	"log/slog"
	"time"

	"igris-bot/project/service"

	"github.com/bwmarrin/discordgo"
)

// AuditHandler は Discord の監査ログイベントをガードサービスへ橋渡しします
// メッセージイベントとは独立したフィードとして処理されます
type AuditHandler struct {
	guard *service.GuardService
}

// NewAuditHandler は監査ログハンドラーを作成します
func NewAuditHandler(guard *service.GuardService) *AuditHandler {
	return &AuditHandler{
		guard: guard,
	}
}

// Handle は discordgo の GuildAuditLogEntryCreate コールバックです
func (h *AuditHandler) Handle(s *discordgo.Session, e *discordgo.GuildAuditLogEntryCreate) {
	action, ok := mapAuditAction(e.ActionType)
	if !ok {
		// 監視対象外の操作種別は早期に捨てる
		return
	}

	ev := &service.AuditEvent{
		GuildID:    e.GuildID,
		Action:     action,
		ExecutorID: e.UserID,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := h.guard.OnAuditEntry(ctx, ev); err != nil {
		slog.Error("監査ガード処理エラー", "guild", e.GuildID, "error", err)
	}
}

// mapAuditAction は discordgo の監査操作種別をサービスの種別へ変換します
// 保護対象となり得る操作のみ変換し、それ以外は false を返します
func mapAuditAction(t *discordgo.AuditLogAction) (service.AuditAction, bool) {
	if t == nil {
		return "", false
	}

	switch *t {
	case discordgo.AuditLogActionChannelDelete:
		return service.AuditChannelDelete, true
	case discordgo.AuditLogActionRoleDelete:
		return service.AuditRoleDelete, true
	case discordgo.AuditLogActionBotAdd:
		return service.AuditBotAdd, true
	}
	return "", false
}
