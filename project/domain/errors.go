package domain

import "errors"

// ドメインエラー定義
var (
	// ErrInvalid は不正な値が設定された場合のエラー
	ErrInvalid = errors.New("ドメイン: 不正な値です")

	// ErrNotFound は要求されたリソースが見つからない場合のエラー
	ErrNotFound = errors.New("ドメイン: リソースが見つかりません")

	// ErrDialogInProgress は同一ユーザー・チャンネルでダイアログが進行中の場合のエラー
	ErrDialogInProgress = errors.New("ドメイン: ダイアログが進行中です")
)
