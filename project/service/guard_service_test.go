package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGuardFixture() (*GuardService, *fakeChat, *fakeMod, *fakeGuild) {
	chat := &fakeChat{}
	mod := &fakeMod{}
	guild := &fakeGuild{
		members: map[string]*Member{
			"attacker": {UserID: "attacker", Username: "Attacker"},
			"owner1":   {UserID: "owner1", Username: "Owner"},
			"bot1":     {UserID: "bot1", Username: "Igris"},
		},
		ownerID:       "owner1",
		botID:         "bot1",
		hasAdmin:      true,
		notifyChannel: "general",
	}
	return NewGuardService(chat, mod, guild), chat, mod, guild
}

func auditEntry(action AuditAction, executorID string) *AuditEvent {
	return &AuditEvent{
		GuildID:    "g1",
		ExecutorID: executorID,
		Action:     action,
	}
}

func TestGuardService_ProtectedActionKicksAndNotifies(t *testing.T) {
	ctx := context.Background()
	gs, chat, mod, _ := newGuardFixture()

	require.NoError(t, gs.OnAuditEntry(ctx, auditEntry(AuditRoleDelete, "attacker")))

	require.Len(t, mod.kicks, 1)
	assert.Equal(t, "attacker", mod.kicks[0].UserID)
	assert.Equal(t, "Anti-nuke: Unauthorized action", mod.kicks[0].Reason)

	require.Len(t, chat.texts, 1)
	assert.Equal(t, "general", chat.texts[0].ChannelID)
	assert.Equal(t,
		"⚠️ **Anti-Nuke Triggered:** Attacker was kicked for attempting: **RoleDelete**",
		chat.texts[0].Text)
}

func TestGuardService_AllProtectedActionsCovered(t *testing.T) {
	ctx := context.Background()

	for _, action := range []AuditAction{AuditChannelDelete, AuditRoleDelete, AuditBotAdd} {
		gs, _, mod, _ := newGuardFixture()
		require.NoError(t, gs.OnAuditEntry(ctx, auditEntry(action, "attacker")))
		assert.Len(t, mod.kicks, 1, "action=%s", action)
	}
}

func TestGuardService_BenignActionIgnored(t *testing.T) {
	ctx := context.Background()
	gs, chat, mod, _ := newGuardFixture()

	require.NoError(t, gs.OnAuditEntry(ctx, auditEntry(AuditAction("MessageDelete"), "attacker")))

	assert.Empty(t, mod.kicks)
	assert.Zero(t, chat.messageCount())
}

func TestGuardService_OwnerExempt(t *testing.T) {
	ctx := context.Background()
	gs, chat, mod, _ := newGuardFixture()

	require.NoError(t, gs.OnAuditEntry(ctx, auditEntry(AuditChannelDelete, "owner1")))

	assert.Empty(t, mod.kicks)
	assert.Zero(t, chat.messageCount())
}

func TestGuardService_BotSelfExempt(t *testing.T) {
	ctx := context.Background()
	gs, chat, mod, _ := newGuardFixture()

	require.NoError(t, gs.OnAuditEntry(ctx, auditEntry(AuditChannelDelete, "bot1")))

	assert.Empty(t, mod.kicks)
	assert.Zero(t, chat.messageCount())
}

func TestGuardService_UnresolvableExecutorSkipped(t *testing.T) {
	ctx := context.Background()
	gs, chat, mod, _ := newGuardFixture()

	// 既に退出済みなどでメンバー解決できない場合は対処しない
	require.NoError(t, gs.OnAuditEntry(ctx, auditEntry(AuditRoleDelete, "ghost")))

	assert.Empty(t, mod.kicks)
	assert.Zero(t, chat.messageCount())
}

func TestGuardService_NoAdminPermissionSkipped(t *testing.T) {
	ctx := context.Background()
	gs, chat, mod, guild := newGuardFixture()
	guild.hasAdmin = false

	require.NoError(t, gs.OnAuditEntry(ctx, auditEntry(AuditRoleDelete, "attacker")))

	assert.Empty(t, mod.kicks)
	assert.Zero(t, chat.messageCount())
}

func TestGuardService_KickFailureSurfacedWithoutNotice(t *testing.T) {
	ctx := context.Background()
	gs, chat, mod, _ := newGuardFixture()
	mod.err = assert.AnError

	err := gs.OnAuditEntry(ctx, auditEntry(AuditRoleDelete, "attacker"))

	require.Error(t, err)
	assert.Zero(t, chat.messageCount())
}

func TestGuardService_MissingNotifyChannelStillKicks(t *testing.T) {
	ctx := context.Background()
	gs, chat, mod, guild := newGuardFixture()
	guild.notifyErr = assert.AnError

	// 通知先が見つからなくても強制退出は成立し、エラーにもならない
	require.NoError(t, gs.OnAuditEntry(ctx, auditEntry(AuditRoleDelete, "attacker")))

	assert.Len(t, mod.kicks, 1)
	assert.Zero(t, chat.messageCount())
}

func TestGuardService_NotifySendFailureIgnored(t *testing.T) {
	ctx := context.Background()
	gs, chat, mod, _ := newGuardFixture()
	chat.sendErr = assert.AnError

	require.NoError(t, gs.OnAuditEntry(ctx, auditEntry(AuditRoleDelete, "attacker")))

	assert.Len(t, mod.kicks, 1)
}
