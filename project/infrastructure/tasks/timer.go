package tasks

import (
	"log/slog"
	"time"
)

// TimerScheduler は service.TaskPort のプロセス内タイマー実装です
// 予約済みタスクはプロセス再起動で失われます（永続化しない設計）
type TimerScheduler struct{}

// NewTimerScheduler はタイマースケジューラーを初期化します
func NewTimerScheduler() *TimerScheduler {
	return &TimerScheduler{}
}

// Schedule は delay 経過後に task を一度だけ実行します
// 各タスクは独立して発火し、task 内の panic は回復してログに記録します
func (ts *TimerScheduler) Schedule(delay time.Duration, task func()) {
	time.AfterFunc(delay, func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("遅延タスク実行中に panic が発生しました", "panic", r)
			}
		}()
		task()
	})
}
