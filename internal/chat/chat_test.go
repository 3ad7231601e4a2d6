package chat

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/botforge/botforge/internal/models"
	"github.com/botforge/botforge/internal/platform"
	"github.com/botforge/botforge/internal/storage"
)

// fakeQuerier answers from a function and records every request.
type fakeQuerier struct {
	mu       sync.Mutex
	requests []platform.QueryRequest
	answer   func(platform.QueryRequest) (string, error)
}

func (q *fakeQuerier) Query(_ context.Context, req platform.QueryRequest) (string, error) {
	q.mu.Lock()
	q.requests = append(q.requests, req)
	q.mu.Unlock()
	return q.answer(req)
}

func newTestOrchestrator(answer func(platform.QueryRequest) (string, error)) (*Orchestrator, *storage.MemoryStore, *fakeQuerier) {
	store := storage.NewMemoryStore()
	querier := &fakeQuerier{answer: answer}
	return NewOrchestrator(store, querier, zap.NewNop()), store, querier
}

func TestSendAppendsPairBeforeQuery(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	sess := models.Session{BotID: "bot-1", ID: "sess-1"}

	// The querier observes the transcript at query time: the user
	// message and its placeholder must already be there.
	querier := &fakeQuerier{}
	querier.answer = func(platform.QueryRequest) (string, error) {
		snapshot, err := store.Load(ctx, sess.ID)
		require.NoError(t, err)
		require.Len(t, snapshot, 2)
		assert.Equal(t, "hello", snapshot[0].Text)
		assert.False(t, snapshot[0].FromBot)
		assert.True(t, snapshot[1].Pending)
		assert.True(t, snapshot[1].FromBot)
		return "hi!", nil
	}
	o := NewOrchestrator(store, querier, zap.NewNop())

	reply, err := o.Send(ctx, sess, "kb-1", "user-1", "hello")
	require.NoError(t, err)
	assert.Equal(t, "hi!", reply.Text)
	assert.True(t, reply.FromBot)
	assert.False(t, reply.Pending)

	final, err := store.Load(ctx, sess.ID)
	require.NoError(t, err)
	require.Len(t, final, 2)
	assert.Equal(t, reply, final[1])

	require.Len(t, querier.requests, 1)
	req := querier.requests[0]
	assert.Equal(t, "user-1", req.UserID)
	assert.Equal(t, "bot-1", req.BotID)
	assert.Equal(t, "kb-1", req.KBID)
	assert.Equal(t, "sess-1", req.SessionID)
	assert.Equal(t, "hello", req.InputText)
}

func TestSendFailureResolvesToFixedText(t *testing.T) {
	ctx := context.Background()
	o, store, _ := newTestOrchestrator(func(platform.QueryRequest) (string, error) {
		return "", errors.New("connection refused")
	})
	sess := models.Session{BotID: "bot-1", ID: "sess-1"}

	reply, err := o.Send(ctx, sess, "kb-1", "user-1", "hello")
	require.NoError(t, err, "network failures resolve in the transcript, not as errors")
	assert.Equal(t, "❌ Failed to get a response. Please try again.", reply.Text)

	final, err := store.Load(ctx, sess.ID)
	require.NoError(t, err)
	require.Len(t, final, 2)
	assert.Equal(t, FailureText, final[1].Text)
	assert.False(t, final[1].Pending)
}

func TestSendRejectsBlankInput(t *testing.T) {
	ctx := context.Background()
	o, store, querier := newTestOrchestrator(func(platform.QueryRequest) (string, error) {
		return "unreachable", nil
	})
	sess := models.Session{BotID: "bot-1", ID: "sess-1"}

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := o.Send(ctx, sess, "kb-1", "user-1", text)
		assert.ErrorIs(t, err, ErrEmptyMessage)
	}

	final, err := store.Load(ctx, sess.ID)
	require.NoError(t, err)
	assert.Empty(t, final, "rejected input must leave no transcript entries")
	assert.Empty(t, querier.requests)
}

func TestOverlappingSendsResolveOwnPlaceholders(t *testing.T) {
	ctx := context.Background()
	sess := models.Session{BotID: "bot-1", ID: "sess-1"}

	// The first query blocks until the second turn has fully resolved,
	// forcing the out-of-order completion case.
	firstStarted := make(chan struct{})
	secondDone := make(chan struct{})
	o, store, _ := newTestOrchestrator(func(req platform.QueryRequest) (string, error) {
		if req.InputText == "first" {
			close(firstStarted)
			<-secondDone
			return "answer one", nil
		}
		return "answer two", nil
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := o.Send(ctx, sess, "kb-1", "user-1", "first")
		assert.NoError(t, err)
	}()

	<-firstStarted
	_, err := o.Send(ctx, sess, "kb-1", "user-1", "second")
	require.NoError(t, err)
	close(secondDone)
	wg.Wait()

	final, err := store.Load(ctx, sess.ID)
	require.NoError(t, err)
	require.Len(t, final, 4)

	answers := map[string]bool{}
	for _, m := range final {
		assert.False(t, m.Pending, "every placeholder must be resolved")
		if m.FromBot {
			answers[m.Text] = true
		}
	}
	assert.True(t, answers["answer one"])
	assert.True(t, answers["answer two"])
	// Each answer landed where its own placeholder was, so the late
	// first answer sits before the second turn's entries.
	assert.Equal(t, "answer one", final[1].Text)
	assert.Equal(t, "answer two", final[3].Text)
}

func TestSendIntoClearedSessionIsQuiet(t *testing.T) {
	ctx := context.Background()
	sess := models.Session{BotID: "bot-1", ID: "sess-1"}

	store := storage.NewMemoryStore()
	querier := &fakeQuerier{}
	querier.answer = func(platform.QueryRequest) (string, error) {
		// A reset lands while the query is in flight.
		require.NoError(t, store.Clear(ctx, sess.ID))
		return "late answer", nil
	}
	o := NewOrchestrator(store, querier, zap.NewNop())

	reply, err := o.Send(ctx, sess, "kb-1", "user-1", "hello")
	require.NoError(t, err)
	assert.Equal(t, "late answer", reply.Text)

	// The stale replace is a no-op against the cleared transcript.
	final, err := store.Load(ctx, sess.ID)
	require.NoError(t, err)
	assert.Empty(t, final)
}
