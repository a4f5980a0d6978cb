package hub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/DoyleJ11/team-builder/internal/engine"
	"github.com/DoyleJ11/team-builder/internal/lobby"
	"github.com/DoyleJ11/team-builder/internal/metrics"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func stop(t *testing.T, h *Hub) {
	t.Helper()
	h.Inbox() <- ShutdownHub{}
	select {
	case <-h.Done():
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}
}

func TestHub_Create_Get_SamePointer(t *testing.T) {
	ctx := context.Background()
	h := NewHub(ctx, lobby.Deps{})
	defer stop(t, h)
	reply := make(chan *lobby.Lobby, 1)

	state := engine.NewEmptyState()
	h.Inbox() <- CreateLobby{Code: "ZED123", State: state, Reply: reply}
	lb1 := <-reply

	h.Inbox() <- GetLobby{Code: "ZED123", Reply: reply}
	lb2 := <-reply

	if lb1 == nil || lb2 == nil || lb1 != lb2 {
		t.Fatalf("expected same lobby pointer")
	}
	assert.Equal(t, "ZED123", lb1.Code())
	assert.Same(t, lb1, h.Lobby("ZED123"))
	assert.Nil(t, h.Lobby("NOPE00"))
}

func TestHub_EnsureKeepsExistingState(t *testing.T) {
	ctx := context.Background()
	h := NewHub(ctx, lobby.Deps{})
	defer stop(t, h)

	reply := make(chan *lobby.Lobby, 1)
	h.Inbox() <- EnsureLobby{Code: "AAA111", State: engine.NewEmptyState(), Reply: reply}
	lb := <-reply

	res, err := lb.Do(ctx, "c1", engine.Command{Type: engine.CmdSubmitNames, Text: "Alice"})
	require.NoError(t, err)
	require.NoError(t, res.Err)

	h.Inbox() <- EnsureLobby{Code: "AAA111", State: engine.NewState([]string{"Solo"}, nil), Reply: reply}
	again := <-reply
	require.Same(t, lb, again)

	v, ok := again.View(ctx)
	require.True(t, ok)
	assert.Len(t, v.State.Players, 1)
	assert.Len(t, v.State.Lanes, 5)
}

func TestHub_RemoveAndShutdownStopLobbies(t *testing.T) {
	ctx := context.Background()
	m := metrics.New()
	h := NewHub(ctx, lobby.Deps{Metrics: m})

	reply := make(chan *lobby.Lobby, 1)
	h.Inbox() <- CreateLobby{Code: "ONE111", State: engine.NewEmptyState(), Reply: reply}
	one := <-reply
	h.Inbox() <- CreateLobby{Code: "TWO222", State: engine.NewEmptyState(), Reply: reply}
	two := <-reply

	count := make(chan int, 1)
	h.Inbox() <- CountLobbies{Reply: count}
	assert.Equal(t, 2, <-count)

	h.Inbox() <- RemoveLobby{Code: "ONE111"}
	select {
	case <-one.Done():
	case <-time.After(time.Second):
		t.Fatal("removed lobby did not stop")
	}
	assert.Nil(t, h.Lobby("ONE111"))

	stop(t, h)
	select {
	case <-two.Done():
	case <-time.After(time.Second):
		t.Fatal("hub shutdown did not stop remaining lobby")
	}
	assert.Nil(t, h.Lobby("TWO222"))
}
