package tasks

import (
	"testing"
	"time"
)

func TestTimerScheduler_FiresOnce(t *testing.T) {
	ts := NewTimerScheduler()
	done := make(chan struct{})

	ts.Schedule(time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("タスクが発火しませんでした")
	}
}

func TestTimerScheduler_ZeroDelay(t *testing.T) {
	ts := NewTimerScheduler()
	done := make(chan struct{})

	ts.Schedule(0, func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("タスクが発火しませんでした")
	}
}

func TestTimerScheduler_PanicRecovered(t *testing.T) {
	ts := NewTimerScheduler()
	panicked := make(chan struct{})
	after := make(chan struct{})

	ts.Schedule(time.Millisecond, func() {
		close(panicked)
		panic("boom")
	})

	select {
	case <-panicked:
	case <-time.After(time.Second):
		t.Fatal("タスクが発火しませんでした")
	}

	// panic 後も別のタスクが問題なく実行できる
	ts.Schedule(time.Millisecond, func() { close(after) })
	select {
	case <-after:
	case <-time.After(time.Second):
		t.Fatal("後続タスクが発火しませんでした")
	}
}
