package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"igris-bot/project/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "triggers.json")
	fs := NewFileStore(path)

	want := map[string]domain.Trigger{
		"hello": {Phrase: "hello", Kind: domain.TriggerText, Response: "Hi there!"},
		"cat":   {Phrase: "cat", Kind: domain.TriggerImage, Response: "https://x.png"},
	}
	require.NoError(t, fs.Save(ctx, want))

	got, err := fs.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFileStore_MissingFileIsEmpty(t *testing.T) {
	ctx := context.Background()
	fs := NewFileStore(filepath.Join(t.TempDir(), "nosuch.json"))

	got, err := fs.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFileStore_LegacySnapshotFormat(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "triggers.json")

	// 旧実装が書き出していたスナップショットをそのまま読めること
	legacy := `{
  "hello": {
    "type": "text",
    "response": "Hi there!"
  },
  "cat": {
    "type": "image",
    "response": "https://x.png"
  }
}`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	got, err := NewFileStore(path).Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, domain.TriggerText, got["hello"].Kind)
	assert.Equal(t, "Hi there!", got["hello"].Response)
	assert.Equal(t, domain.TriggerImage, got["cat"].Kind)
}

func TestFileStore_SnapshotFieldNames(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "triggers.json")
	fs := NewFileStore(path)

	require.NoError(t, fs.Save(ctx, map[string]domain.Trigger{
		"hello": {Phrase: "hello", Kind: domain.TriggerText, Response: "Hi"},
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"hello":{"type":"text","response":"Hi"}}`, string(data))
}

func TestFileStore_CorruptFileErrors(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "triggers.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewFileStore(path).Load(ctx)
	assert.Error(t, err)
}

func TestFileStore_SaveToInvalidPathErrors(t *testing.T) {
	ctx := context.Background()
	fs := NewFileStore(filepath.Join(t.TempDir(), "nosuchdir", "triggers.json"))

	err := fs.Save(ctx, map[string]domain.Trigger{})
	assert.Error(t, err)
}
