package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"igris-bot/project/domain"
)

// AddTriggerFlow は !addtrigger のダイアログ定義を作成します
// フレーズ → 種別 → 応答内容 の3ステップを収集し、完了時にトリガーを登録します
func AddTriggerFlow(triggers *TriggerService) *PromptFlow {
	return &PromptFlow{
		Steps: []PromptStep{
			{
				Question: "Enter the trigger word:",
				Validate: validatePhrase("⛔ Trigger setup cancelled."),
			},
			{
				Question: "Is this a text or image trigger? (text/image)",
				Validate: validateKind("⛔ Invalid type. Cancelled."),
			},
			{
				Question: "Enter the response content:",
				Long:     true,
				Validate: validateResponse,
			},
		},
		OnCommit: func(ctx context.Context, fields []string) error {
			return triggers.Set(ctx, fields[0], domain.TriggerKind(fields[1]), fields[2])
		},
		CommitText: func(fields []string) string {
			return fmt.Sprintf("✅ Trigger `%s` added.", fields[0])
		},
		TimeoutText: "⛔ Trigger setup cancelled.",
	}
}

// EditTriggerFlow は !edittrigger のダイアログ定義を作成します
// 既存フレーズの確認後、種別と応答内容を収集して上書き登録します
func EditTriggerFlow(triggers *TriggerService) *PromptFlow {
	return &PromptFlow{
		Steps: []PromptStep{
			{
				Question: "Which trigger do you want to edit?",
				Validate: func(fields []string, input string) (string, error) {
					phrase := strings.ToLower(strings.TrimSpace(input))
					if _, ok := triggers.Lookup(phrase); !ok {
						return "", errors.New("⛔ Trigger not found.")
					}
					return phrase, nil
				},
			},
			{
				Question: "New type? (text/image)",
				Validate: validateKind("⛔ Invalid type."),
			},
			{
				Question: "New response?",
				Long:     true,
				Validate: validateResponse,
			},
		},
		OnCommit: func(ctx context.Context, fields []string) error {
			return triggers.Set(ctx, fields[0], domain.TriggerKind(fields[1]), fields[2])
		},
		CommitText: func(fields []string) string {
			return fmt.Sprintf("✅ Trigger `%s` updated.", fields[0])
		},
		TimeoutText: "⛔ Trigger edit cancelled.",
	}
}

// validatePhrase はトリガーフレーズの検証関数を作成します
func validatePhrase(cancelText string) func([]string, string) (string, error) {
	return func(fields []string, input string) (string, error) {
		phrase := strings.ToLower(strings.TrimSpace(input))
		if phrase == "" {
			return "", errors.New(cancelText)
		}
		return phrase, nil
	}
}

// validateKind はトリガー種別の検証関数を作成します
func validateKind(cancelText string) func([]string, string) (string, error) {
	return func(fields []string, input string) (string, error) {
		kind, err := domain.ParseTriggerKind(input)
		if err != nil {
			return "", errors.New(cancelText)
		}
		return string(kind), nil
	}
}

// validateResponse は応答内容を検証します
// 直前のステップで収集した種別が image の場合は画像URLの形式も確認します
func validateResponse(fields []string, input string) (string, error) {
	response := strings.TrimSpace(input)
	if response == "" {
		return "", errors.New("⛔ Cancelled.")
	}
	if domain.TriggerKind(fields[1]) == domain.TriggerImage && !domain.IsValidImageURL(response) {
		return "", errors.New("⛔ Invalid image URL.")
	}
	return response, nil
}
