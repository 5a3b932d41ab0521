package config

import (
	"context"
	"fmt"
	"os"
	"time"

	"igris-bot/project/infrastructure/secret"

	"github.com/joho/godotenv"
)

// Config は環境変数から読み込まれるアプリケーション設定を表します
type Config struct {
	// Discord 設定
	DiscordToken  string // 環境変数または Secret Manager から読み込み
	CommandPrefix string

	// トリガー永続化設定
	TriggerBackend     string // "file" または "firestore"
	TriggerFilePath    string
	FirestoreProjectID string
	CollectionTriggers string

	// ダイアログ設定
	PromptShortWindow time.Duration
	PromptLongWindow  time.Duration

	// ヘルスチェック設定
	HealthPort string
}

// NewConfig は環境変数から設定を読み込み、Config構造体を返します
// DISCORD_TOKEN_SECRET_NAME が設定されている場合、トークンは Secret Manager から取得します
func NewConfig(ctx context.Context) (*Config, error) {
	// .env があれば読み込む（存在しなくてもエラーにしない）
	_ = godotenv.Load()

	token, err := loadToken(ctx)
	if err != nil {
		return nil, err
	}

	shortWindow, err := getEnvDuration("PROMPT_SHORT_WINDOW", 30*time.Second)
	if err != nil {
		return nil, err
	}

	longWindow, err := getEnvDuration("PROMPT_LONG_WINDOW", 60*time.Second)
	if err != nil {
		return nil, err
	}

	config := &Config{
		// Discord 設定
		DiscordToken:  token,
		CommandPrefix: getEnvDefault("COMMAND_PREFIX", "!"),

		// トリガー永続化設定
		TriggerBackend:  getEnvDefault("TRIGGER_BACKEND", "file"),
		TriggerFilePath: getEnvDefault("TRIGGER_FILE", "triggers.json"),

		// ダイアログ設定
		PromptShortWindow: shortWindow,
		PromptLongWindow:  longWindow,

		// ヘルスチェック設定
		HealthPort: getEnvDefault("PORT", "8080"),
	}

	// Firestore バックエンドの場合のみ必須となる設定
	if config.TriggerBackend == "firestore" {
		config.FirestoreProjectID = mustGetEnv("FIRESTORE_PROJECT_ID")
		config.CollectionTriggers = getEnvDefault("FS_COLLECTION_TRIGGERS", "triggers")
	}

	return config, nil
}

// loadToken は Bot トークンを取得します
// DISCORD_TOKEN_SECRET_NAME 指定時は Secret Manager、それ以外は DISCORD_TOKEN 環境変数
func loadToken(ctx context.Context) (string, error) {
	secretName := os.Getenv("DISCORD_TOKEN_SECRET_NAME")
	if secretName == "" {
		token := os.Getenv("DISCORD_TOKEN")
		if token == "" {
			return "", fmt.Errorf("DISCORD_TOKEN が設定されていません")
		}
		return token, nil
	}

	gcpProject := mustGetEnv("GCP_PROJECT")

	mgr, err := secret.NewManager(ctx, gcpProject)
	if err != nil {
		return "", fmt.Errorf("Secret Manager 初期化失敗: %w", err)
	}
	defer mgr.Close()

	token, err := mgr.GetSecret(ctx, secretName)
	if err != nil {
		return "", fmt.Errorf("DISCORD_TOKEN 取得失敗: %w", err)
	}
	return token, nil
}

// getEnvDefault は環境変数を取得し、未設定の場合はデフォルト値を返します
func getEnvDefault(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		return def
	}
	return value
}

// getEnvDuration は期間形式の環境変数を取得します
func getEnvDuration(key string, def time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return def, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s format: %v", key, err)
	}
	return d, nil
}

// mustGetEnv は環境変数を取得し、存在しない場合はパニックします
func mustGetEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		panic(fmt.Sprintf("required environment variable not set: %s", key))
	}
	return value
}
