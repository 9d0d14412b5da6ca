package historydb

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielchristiancazares/forge/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sonnet(t *testing.T) domain.ModelName {
	t.Helper()
	m, err := domain.NewModelName(domain.ProviderClaude, "claude-sonnet-4-20250514")
	require.NoError(t, err)
	return m
}

func TestCreateSessionAndListReturnsIt(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	require.NoError(t, s.CreateSession(ctx, "sess-1", "first session", time.Now()))

	metas, err := s.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, metas, 1)
	assert.Equal(t, "sess-1", metas[0].ID)
	assert.Equal(t, "first session", metas[0].Title)
}

func TestMostRecentSessionOrdersByCreatedAt(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	require.NoError(t, s.CreateSession(ctx, "older", "older", time.Now().Add(-time.Hour)))
	require.NoError(t, s.CreateSession(ctx, "newer", "newer", time.Now()))

	meta, ok, err := s.MostRecentSession(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "newer", meta.ID)
}

func TestSetActiveBranchRequiresExistingSession(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	err := s.SetActiveBranch(ctx, "missing", "alt")
	assert.Error(t, err)
}

func TestAppendAndLoadSessionRoundTripsAllMessageKinds(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	require.NoError(t, s.CreateSession(ctx, "sess-1", "", time.Now()))

	model := sonnet(t)
	now := time.Now()
	entries := []domain.Entry{
		{ID: 1, Message: domain.NewSystemMessage("system prompt", now)},
		{ID: 2, Message: domain.NewUserMessage("hello", "hello (edited)", true, now)},
		{ID: 3, Message: domain.NewAssistantMessage("hi there", model, now)},
		{ID: 4, Message: domain.NewThinkingMessage("pondering", domain.ClaudeSignedReplay("sig-abc"), model, now)},
		{ID: 5, Message: domain.NewToolUseMessage("call-1", "Bash", []byte(`{"command":"ls"}`), domain.NewThoughtSignature("thought-sig"), false, now)},
		{ID: 6, Message: domain.NewToolResultMessage("call-1", "Bash", "file1\nfile2", false, now)},
	}
	for i, e := range entries {
		require.NoError(t, s.AppendMessage(ctx, "sess-1", i, e))
	}

	loaded, err := s.LoadSession(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, loaded, len(entries))

	assert.Equal(t, domain.MessageSystem, loaded[0].Message.Kind())
	assert.Equal(t, "system prompt", loaded[0].Message.Content())

	override, has := loaded[1].Message.DisplayOverride()
	assert.True(t, has)
	assert.Equal(t, "hello (edited)", override)

	assert.Equal(t, "hi there", loaded[2].Message.Content())
	assert.Equal(t, model, loaded[2].Message.Model())

	assert.Equal(t, domain.ReplayClaudeSigned, loaded[3].Message.ThinkingReplay().Kind())
	assert.Equal(t, "sig-abc", loaded[3].Message.ThinkingReplay().Signature())

	assert.Equal(t, "Bash", loaded[4].Message.ToolName())
	assert.True(t, loaded[4].Message.ThoughtSignature().Present())
	assert.Equal(t, "thought-sig", loaded[4].Message.ThoughtSignature().Value())
	assert.JSONEq(t, `{"command":"ls"}`, string(loaded[4].Message.Arguments()))

	assert.Equal(t, "file1\nfile2", loaded[5].Message.Content())
	assert.False(t, loaded[5].Message.IsError())
}

func TestLoadSessionPreservesSeqOrder(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	require.NoError(t, s.CreateSession(ctx, "sess-1", "", time.Now()))
	now := time.Now()
	for i, text := range []string{"first", "second", "third"} {
		e := domain.Entry{ID: domain.MessageId(i + 1), Message: domain.NewSystemMessage(text, now)}
		require.NoError(t, s.AppendMessage(ctx, "sess-1", i, e))
	}

	loaded, err := s.LoadSession(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, loaded, 3)
	assert.Equal(t, "first", loaded[0].Message.Content())
	assert.Equal(t, "second", loaded[1].Message.Content())
	assert.Equal(t, "third", loaded[2].Message.Content())
}
