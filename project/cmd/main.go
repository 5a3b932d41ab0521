package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"igris-bot/project/domain"
	"igris-bot/project/handler"
	"igris-bot/project/infrastructure/config"
	"igris-bot/project/infrastructure/discord"
	"igris-bot/project/infrastructure/store"
	"igris-bot/project/infrastructure/tasks"
	"igris-bot/project/service"

	"github.com/bwmarrin/discordgo"
)

func main() {
	ctx := context.Background()

	// 1. 設定を読み込む
	cfg, err := config.NewConfig(ctx)
	if err != nil {
		log.Fatalf("設定読み込み失敗: %v", err)
	}

	// 2. トリガーリポジトリを初期化（file / firestore）
	var repo domain.TriggerRepository
	switch cfg.TriggerBackend {
	case "firestore":
		fsStore, err := store.NewFirestoreStore(ctx, cfg.FirestoreProjectID, cfg.CollectionTriggers)
		if err != nil {
			log.Fatalf("Firestore 初期化失敗: %v", err)
		}
		defer fsStore.Close()
		repo = fsStore
	default:
		repo = store.NewFileStore(cfg.TriggerFilePath)
	}

	// 3. Discord セッションを作成
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		log.Fatalf("Discord セッション作成失敗: %v", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentMessageContent |
		discordgo.IntentsGuildMembers |
		discordgo.IntentGuildModeration

	// 4. ポート実装とサービス層を初期化
	client := discord.NewClient(session)
	scheduler := tasks.NewTimerScheduler()

	triggerService, err := service.NewTriggerService(ctx, repo)
	if err != nil {
		log.Fatalf("トリガー読み込み失敗: %v", err)
	}
	promptService := service.NewPromptService(client, scheduler, cfg.PromptShortWindow, cfg.PromptLongWindow)
	routerService := service.NewRouterService(cfg.CommandPrefix, triggerService, promptService, client, client, scheduler)
	guardService := service.NewGuardService(client, client, client)

	// 5. ゲートウェイイベントハンドラーを登録
	session.AddHandler(handler.NewMessageHandler(routerService).Handle)
	session.AddHandler(handler.NewAuditHandler(guardService).Handle)
	session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		slog.Info("ログイン完了", "user", r.User.String())
	})

	// 6. ヘルスチェックサーバーを起動
	mux := http.NewServeMux()
	mux.Handle("/health", handler.NewHealthHandler())

	go func() {
		addr := fmt.Sprintf(":%s", cfg.HealthPort)
		slog.Info("ヘルスチェックサーバー起動", "addr", addr)
		if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
			slog.Error("ヘルスチェックサーバーエラー", "error", err)
		}
	}()

	// 7. ゲートウェイ接続を開く
	if err := session.Open(); err != nil {
		log.Fatalf("Discord 接続失敗: %v", err)
	}
	defer session.Close()

	// 8. シグナル受信まで待機
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	slog.Info("シャットダウンします")
}
