package service

// UserRef はイベント中で参照されたユーザーを表します
type UserRef struct {
	// ID はユーザーID
	ID string

	// Username はユーザー名（表示用）
	Username string

	// AvatarURL はアバター画像のURL
	AvatarURL string
}

// Member はギルドメンバーの解決結果を表します
type Member struct {
	// UserID はユーザーID
	UserID string

	// Username はユーザー名（通知文言に使用）
	Username string
}

// MessageEvent は受信メッセージイベントを表します
type MessageEvent struct {
	// GuildID はメッセージが投稿されたギルドのID。DMの場合は空
	GuildID string

	// ChannelID はメッセージが投稿されたチャンネルのID
	ChannelID string

	// MessageID はメッセージのID（返信に使用）
	MessageID string

	// AuthorID は送信者のユーザーID
	AuthorID string

	// AuthorName は送信者の表示名
	AuthorName string

	// AuthorAvatarURL は送信者のアバターURL
	AuthorAvatarURL string

	// AuthorIsBot は送信者が Bot かどうか
	AuthorIsBot bool

	// AuthorIsAdmin は送信者が管理者権限を持つかどうか
	AuthorIsAdmin bool

	// Content はメッセージ本文
	Content string

	// Mentions はメッセージ中でメンションされたユーザー（出現順）
	Mentions []UserRef
}

// AuditAction は監査ログ上の管理操作種別を表します
type AuditAction string

const (
	// AuditChannelDelete はチャンネル削除
	AuditChannelDelete AuditAction = "ChannelDelete"

	// AuditRoleDelete はロール削除
	AuditRoleDelete AuditAction = "RoleDelete"

	// AuditBotAdd は Bot の追加
	AuditBotAdd AuditAction = "BotAdd"
)

// Protected は自動対処の対象となる保護対象操作かを判定します
func (a AuditAction) Protected() bool {
	switch a {
	case AuditChannelDelete, AuditRoleDelete, AuditBotAdd:
		return true
	}
	return false
}

// AuditEvent は監査ログエントリ1件を表します
// 一度ガードが消費したら破棄される一時データです
type AuditEvent struct {
	// GuildID は操作が行われたギルドのID
	GuildID string

	// Action は操作種別
	Action AuditAction

	// ExecutorID は操作を実行したユーザーのID
	ExecutorID string
}

// EmbedField は埋め込みメッセージのフィールド1件です
type EmbedField struct {
	Name  string
	Value string
}

// Embed は埋め込みメッセージの内容を表します
// 表示形式の詳細はポート実装側（プラットフォームSDK）に委ねます
type Embed struct {
	Title         string
	Description   string
	ImageURL      string
	Color         int
	Fields        []EmbedField
	FooterText    string
	FooterIconURL string
	Timestamp     bool
}

// 埋め込みメッセージの既定カラー
const (
	colorBlue       = 0x3498DB
	colorPurple     = 0x9B59B6
	colorDarkPurple = 0x71368A
)
