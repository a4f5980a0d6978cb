package lobby

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/team-builder/internal/engine"
	"github.com/DoyleJ11/team-builder/internal/journal"
	"github.com/DoyleJ11/team-builder/internal/metrics"
	"github.com/DoyleJ11/team-builder/internal/pubsub"
)

const journalTimeout = 2 * time.Second

type Msg interface{ isLobbyMsg() }

// FromClient applies one command. Reply is optional; when set it must have
// room for one Result.
type FromClient struct {
	ClientID string
	Cmd      engine.Command
	Reply    chan Result
}

func (FromClient) isLobbyMsg() {}

type Join struct {
	ClientID string
	Outbox   chan Snapshot // where this client wants to receive snapshots
}

func (Join) isLobbyMsg() {}

type Leave struct{ ClientID string }

func (Leave) isLobbyMsg() {}

type Shutdown struct{}

func (Shutdown) isLobbyMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isLobbyMsg() {}

// Snapshot states are never modified after they are sent: the engine
// always returns fresh copies.
type Snapshot struct {
	Version int
	State   engine.State
}

type View struct {
	Version    int
	NumClients int
	State      engine.State
}

type Result struct {
	Version int
	State   engine.State
	Events  []engine.Event
	Err     error
}

// Deps are the lobby's side effects. Every field may be left zero.
type Deps struct {
	Logger    *zap.Logger
	Journal   journal.Journal
	Publisher pubsub.Publisher
	Metrics   *metrics.Metrics
	Rand      engine.Rand
}

type Lobby struct {
	code    string
	inbox   chan Msg
	state   engine.State
	version int
	clients map[string]chan Snapshot
	deps    Deps
	log     *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewLobby(parent context.Context, code string, initial engine.State, deps Deps) *Lobby {
	ctx, cancel := context.WithCancel(parent)

	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	l := &Lobby{
		code:    code,
		inbox:   make(chan Msg, 64), // Small buffer
		state:   initial,
		version: 0,
		clients: make(map[string]chan Snapshot),
		deps:    deps,
		log:     log.With(zap.String("room", code)),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	go l.loop()
	return l
}

func (l *Lobby) loop() {
	defer close(l.done)
	for {
		select {
		case <-l.ctx.Done():
			l.shutdown()
			return

		case m := <-l.inbox:
			switch msg := m.(type) {
			case Join:
				// Register client + send current snapshot immediately
				l.clients[msg.ClientID] = msg.Outbox
				l.deps.Metrics.ClientJoined()
				msg.Outbox <- Snapshot{Version: l.version, State: l.state}
				l.log.Debug("client joined", zap.String("client", msg.ClientID))

			case Leave:
				if _, ok := l.clients[msg.ClientID]; ok {
					delete(l.clients, msg.ClientID)
					l.deps.Metrics.ClientLeft()
				}

			case FromClient:
				l.apply(msg)

			case GetState:
				msg.Reply <- View{
					Version:    l.version,
					NumClients: len(l.clients),
					State:      l.state,
				}

			case Shutdown:
				l.shutdown()
				return
			}
		}
	}
}

func (l *Lobby) apply(msg FromClient) {
	var events []engine.Event
	var newState engine.State
	var err error
	if l.deps.Rand != nil {
		events, newState, err = engine.ApplyWith(l.state, msg.Cmd, l.deps.Rand)
	} else {
		events, newState, err = engine.Apply(l.state, msg.Cmd)
	}

	if err != nil {
		l.deps.Metrics.CommandRejected(string(msg.Cmd.Type))
		l.log.Debug("command rejected",
			zap.String("client", msg.ClientID),
			zap.String("type", string(msg.Cmd.Type)),
			zap.Error(err))
		l.reply(msg, Result{Version: l.version, State: l.state, Err: err})
		return
	}

	if engine.ContainsEvent(events, engine.EvtRandomAssignSkipped) {
		l.deps.Metrics.RandomAssignSkipped()
		l.log.Debug("random assign skipped", zap.String("reason", events[0].Detail))
	}

	if !engine.Changed(events) {
		l.reply(msg, Result{Version: l.version, State: l.state, Events: events})
		return
	}

	l.state = newState
	l.version++
	l.deps.Metrics.CommandApplied(string(msg.Cmd.Type))
	l.log.Debug("command applied",
		zap.String("client", msg.ClientID),
		zap.String("type", string(msg.Cmd.Type)),
		zap.Int("version", l.version),
		zap.Int("events", len(events)))

	l.record(events)
	l.reply(msg, Result{Version: l.version, State: l.state, Events: events})
	l.broadcast(Snapshot{Version: l.version, State: l.state})
}

func (l *Lobby) record(events []engine.Event) {
	if l.deps.Journal != nil {
		ctx, cancel := context.WithTimeout(l.ctx, journalTimeout)
		if err := l.deps.Journal.Append(ctx, l.code, l.version, events); err != nil {
			l.log.Warn("journal append failed", zap.Int("version", l.version), zap.Error(err))
		}
		cancel()
	}
	if l.deps.Publisher != nil {
		if err := l.deps.Publisher.Publish(l.code, l.version, events); err != nil {
			l.log.Warn("publish failed", zap.Int("version", l.version), zap.Error(err))
		}
	}
}

func (l *Lobby) reply(msg FromClient, res Result) {
	if msg.Reply == nil {
		return
	}
	select {
	case msg.Reply <- res:
	default:
		l.log.Warn("dropping command reply, channel full", zap.String("client", msg.ClientID))
	}
}

func (l *Lobby) shutdown() {
	for id, ch := range l.clients {
		close(ch) // Tell client no more snapshots
		delete(l.clients, id)
		l.deps.Metrics.ClientLeft()
	}
	l.cancel()
	l.log.Debug("lobby shut down")
}

func (l *Lobby) broadcast(snap Snapshot) {
	for id, ch := range l.clients {
		select {
		case ch <- snap:
			//ok
		default:
			// Client is slow/full - drop them.
			close(ch)
			delete(l.clients, id)
			l.deps.Metrics.ClientLeft()
			l.log.Info("dropped slow client", zap.String("client", id))
		}
	}
}

// Expose the inbox so tests or WS layer can send messages.
func (l *Lobby) Inbox() chan<- Msg { return l.inbox }

// Send delivers m unless the lobby has stopped.
func (l *Lobby) Send(m Msg) bool {
	select {
	case l.inbox <- m:
		return true
	case <-l.done:
		return false
	}
}

// Do applies cmd and waits for the outcome.
func (l *Lobby) Do(ctx context.Context, clientID string, cmd engine.Command) (Result, error) {
	reply := make(chan Result, 1)
	if !l.Send(FromClient{ClientID: clientID, Cmd: cmd, Reply: reply}) {
		return Result{}, context.Canceled
	}
	select {
	case res := <-reply:
		return res, nil
	case <-l.done:
		return Result{}, context.Canceled
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// View returns the lobby's current state, or false once it has stopped.
func (l *Lobby) View(ctx context.Context) (View, bool) {
	reply := make(chan View, 1)
	if !l.Send(GetState{Reply: reply}) {
		return View{}, false
	}
	select {
	case v := <-reply:
		return v, true
	case <-l.done:
		return View{}, false
	case <-ctx.Done():
		return View{}, false
	}
}

func (l *Lobby) Code() string { return l.code }

// Done is closed once the loop has exited.
func (l *Lobby) Done() <-chan struct{} { return l.done }
