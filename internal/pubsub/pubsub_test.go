package pubsub

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/team-builder/internal/engine"
)

func runServer(t *testing.T) *server.Server {
	t.Helper()
	ns, err := server.NewServer(&server.Options{Port: -1, NoSigs: true, NoLog: true})
	require.NoError(t, err)
	go ns.Start()
	if !ns.ReadyForConnections(10 * time.Second) {
		ns.Shutdown()
		t.Fatal("embedded NATS server failed to start")
	}
	t.Cleanup(ns.Shutdown)
	return ns
}

func TestNATSPublisher_Publish(t *testing.T) {
	ns := runServer(t)

	sub, err := nats.Connect(ns.ClientURL())
	require.NoError(t, err)
	defer sub.Close()

	msgs := make(chan *nats.Msg, 1)
	_, err = sub.ChanSubscribe("teambuilder.rooms.ABC123", msgs)
	require.NoError(t, err)
	require.NoError(t, sub.Flush())

	p, err := NewNATSPublisher(ns.ClientURL(), "teambuilder.rooms")
	require.NoError(t, err)
	defer p.Close()

	events := []engine.Event{{Type: engine.EvtLaneSwapped, Position: "Top", Operator: engine.OpLess}}
	require.NoError(t, p.Publish("ABC123", 3, events))

	select {
	case msg := <-msgs:
		var got Message
		require.NoError(t, json.Unmarshal(msg.Data, &got))
		assert.Equal(t, "ABC123", got.Room)
		assert.Equal(t, 3, got.Version)
		require.Len(t, got.Events, 1)
		assert.Equal(t, "LaneSwapped", got.Events[0].Type)
		assert.Equal(t, "<", got.Events[0].Operator)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for published message")
	}
}

func TestNewNATSPublisher_BadURL(t *testing.T) {
	_, err := NewNATSPublisher("nats://127.0.0.1:1", "x")
	assert.Error(t, err)
}

func TestNoop(t *testing.T) {
	var p Publisher = Noop{}
	assert.NoError(t, p.Publish("R", 1, nil))
	p.Close()
}
