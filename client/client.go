// Package client implements the session controller for one connected
// participant: a websocket session, a local cache of server-confirmed
// state and await-style request operations.
package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"matchroom/dispatch"
	"matchroom/model"
	"matchroom/proto"
)

const (
	defaultRequestTimeout   = 5 * time.Second
	defaultHandshakeTimeout = 3 * time.Second
	defaultWriteDeadline    = 5 * time.Second

	eventBufferSize = 16
)

var (
	ErrDial          = errors.New("unable to dial session endpoint")
	ErrSessionClosed = errors.New("session is closed")
	ErrNoWelcome     = errors.New("no identity received from server")
)

// EventType tags unsolicited notifications surfaced to the embedder.
type EventType int

const (
	EventPlayerJoined EventType = iota + 1
	EventPlayerLeft
	EventPlayerRenamed
	EventAdminGranted
	EventGameStarted
)

type Event struct {
	Type     EventType
	PlayerID uint32
	Name     string
}

type Config struct {
	Logger         *zerolog.Logger
	RequestTimeout time.Duration
}

// Session is a single identity's view of the matchmaking service.
//
// Request operations assume at most one outstanding call per
// operation kind; issuing the same operation concurrently before the
// first answer arrives is not supported.
type Session struct {
	logger     zerolog.Logger
	conn       *websocket.Conn
	dispatcher *dispatch.Dispatcher
	cache      *cache

	reqTimeout time.Duration

	tx      chan []byte
	events  chan Event
	welcome chan struct{}

	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	closeOnce  sync.Once
	eventsOnce sync.Once
}

// Dial connects to the service, waits for the assigned identity and
// returns a live session.
func Dial(ctx context.Context, url string, cfg Config) (*Session, error) {
	logger := cfg.Logger.With().Str("component", "client-session").Logger()

	dialer := websocket.Dialer{HandshakeTimeout: defaultHandshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, errors.Join(ErrDial, err)
	}

	sCtx, cancel := context.WithCancel(context.Background())
	s := &Session{
		logger:     logger,
		conn:       conn,
		dispatcher: dispatch.New(&logger),
		cache:      &cache{},
		reqTimeout: cfg.RequestTimeout,
		tx:         make(chan []byte, 16),
		events:     make(chan Event, eventBufferSize),
		welcome:    make(chan struct{}),
		ctx:        sCtx,
		cancel:     cancel,
	}
	if s.reqTimeout <= 0 {
		s.reqTimeout = defaultRequestTimeout
	}
	s.registerNotificationHandlers()

	s.wg.Add(2)
	go s.readLoop()
	go s.writeLoop()

	select {
	case <-s.welcome:
	case <-ctx.Done():
		s.Close()
		return nil, errors.Join(ErrNoWelcome, ctx.Err())
	case <-time.After(s.reqTimeout):
		s.Close()
		return nil, ErrNoWelcome
	}
	return s, nil
}

func (s *Session) registerNotificationHandlers() {
	var welcomeOnce sync.Once
	dispatch.On(s.dispatcher, proto.KindWelcome, func(_ context.Context, msg proto.Welcome, _ uuid.UUID) {
		s.cache.setSelf(msg.Player)
		welcomeOnce.Do(func() { close(s.welcome) })
	})
	dispatch.On(s.dispatcher, proto.KindPlayerJoined, func(_ context.Context, msg proto.PlayerJoined, _ uuid.UUID) {
		s.cache.addOther(model.Player{ID: msg.PlayerID, Name: msg.Name})
		s.emit(Event{Type: EventPlayerJoined, PlayerID: msg.PlayerID, Name: msg.Name})
	})
	dispatch.On(s.dispatcher, proto.KindPlayerLeft, func(_ context.Context, msg proto.PlayerLeft, _ uuid.UUID) {
		s.cache.removeOther(msg.PlayerID)
		s.emit(Event{Type: EventPlayerLeft, PlayerID: msg.PlayerID})
	})
	dispatch.On(s.dispatcher, proto.KindPlayerRenamed, func(_ context.Context, msg proto.PlayerRenamed, _ uuid.UUID) {
		s.cache.renameOther(msg.PlayerID, msg.NewName)
		s.emit(Event{Type: EventPlayerRenamed, PlayerID: msg.PlayerID, Name: msg.NewName})
	})
	dispatch.On(s.dispatcher, proto.KindAdminGranted, func(_ context.Context, _ proto.AdminGranted, _ uuid.UUID) {
		s.cache.grantAdmin()
		s.emit(Event{Type: EventAdminGranted})
	})
	dispatch.On(s.dispatcher, proto.KindGameStarted, func(_ context.Context, _ proto.GameStarted, _ uuid.UUID) {
		s.emit(Event{Type: EventGameStarted})
	})
}

func (s *Session) emit(ev Event) {
	select {
	case s.events <- ev:
	default:
		s.logger.Debug().Int("type", int(ev.Type)).Msg("event buffer full, notification dropped")
	}
}

func (s *Session) readLoop() {
	defer func() {
		s.teardown()
		s.wg.Done()
	}()
	for {
		_, frame, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway) {
				s.logger.Debug().Err(err).Msg("connection closed")
			} else if s.ctx.Err() == nil {
				s.logger.Error().Err(err).Msg("unexpected error during receive")
			}
			return
		}
		s.dispatcher.Dispatch(s.ctx, frame, uuid.Nil)
	}
}

func (s *Session) writeLoop() {
	defer s.wg.Done()
	for {
		select {
		case <-s.ctx.Done():
			return
		case frame := <-s.tx:
			if err := s.conn.SetWriteDeadline(time.Now().Add(defaultWriteDeadline)); err != nil {
				s.logger.Error().Err(err).Msg("failed to set write deadline")
				return
			}
			if err := s.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
				s.logger.Error().Err(err).Msg("failed to write frame")
				return
			}
		}
	}
}

// teardown resets the cache and cancels every pending request. Safe to
// call multiple times.
func (s *Session) teardown() {
	s.closeOnce.Do(func() {
		s.cancel()
		s.cache.reset()
		_ = s.conn.Close()
		s.logger.Debug().Msg("session torn down")
	})
}

// Close shuts the session down and blocks until both pump goroutines
// exited, then closes the events channel so consumers ranging over
// Events unblock. Nothing can emit once the read pump is gone.
func (s *Session) Close() {
	s.teardown()
	s.wg.Wait()
	s.eventsOnce.Do(func() { close(s.events) })
}

// Done is closed once the session is torn down.
func (s *Session) Done() <-chan struct{} {
	return s.ctx.Done()
}

func (s *Session) send(kind proto.Kind, msg any) error {
	frame, err := proto.Encode(kind, msg)
	if err != nil {
		return err
	}
	select {
	case <-s.ctx.Done():
		return ErrSessionClosed
	case s.tx <- frame:
		return nil
	}
}

// request sends a request frame and suspends the caller until the
// correlated answer kind arrives, the context expires or the session
// dies. The one-shot answer handler is unregistered on every path.
//
// apply, when non-nil, runs inside the answer handler on the dispatch
// goroutine. Cache mutations belong there: notifications are dispatched
// on the same goroutine, so applying the confirmed state before
// returning to the read loop keeps cache updates in wire order. An
// unsolicited notification trailing the answer must never be overwritten
// by it.
func request[T any](s *Session, ctx context.Context, kind proto.Kind, msg any, answerKind proto.Kind, apply func(T)) (T, error) {
	var zero T

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.reqTimeout)
		defer cancel()
	}

	answers := make(chan T, 1)
	off := dispatch.On(s.dispatcher, answerKind, func(_ context.Context, answer T, _ uuid.UUID) {
		if apply != nil {
			apply(answer)
		}
		select {
		case answers <- answer:
		default:
		}
	})
	defer off()

	if err := s.send(kind, msg); err != nil {
		return zero, err
	}

	select {
	case <-s.ctx.Done():
		return zero, ErrSessionClosed
	case <-ctx.Done():
		return zero, ctx.Err()
	case answer := <-answers:
		return answer, nil
	}
}

// CreateRoom asks the server to create a room. The creator does not
// join it; call JoinRoom next.
func (s *Session) CreateRoom(ctx context.Context, roomName string) (bool, error) {
	answer, err := request[proto.CreateRoomAnswer](s, ctx,
		proto.KindCreateRoom, proto.CreateRoom{RoomName: roomName}, proto.KindCreateRoomAnswer, nil)
	if err != nil {
		return false, err
	}
	return answer.Success, nil
}

func (s *Session) JoinRoom(ctx context.Context, roomName string) (bool, error) {
	answer, err := request(s, ctx,
		proto.KindJoinRoom, proto.JoinRoom{RoomName: roomName}, proto.KindJoinRoomAnswer,
		func(answer proto.JoinRoomAnswer) {
			if answer.Success {
				s.cache.enterRoom(roomName, answer.Players)
			}
		})
	if err != nil {
		return false, err
	}
	return answer.Success, nil
}

func (s *Session) LeaveRoom(ctx context.Context) (bool, error) {
	answer, err := request(s, ctx,
		proto.KindLeaveRoom, proto.LeaveRoom{}, proto.KindLeaveRoomAnswer,
		func(answer proto.LeaveRoomAnswer) {
			if answer.Success {
				s.cache.leaveRoom()
			}
		})
	if err != nil {
		return false, err
	}
	return answer.Success, nil
}

func (s *Session) Rename(ctx context.Context, newName string) (bool, error) {
	answer, err := request(s, ctx,
		proto.KindRename, proto.Rename{NewName: newName}, proto.KindRenameAnswer,
		func(answer proto.RenameAnswer) {
			if answer.Success {
				s.cache.setName(newName)
			}
		})
	if err != nil {
		return false, err
	}
	return answer.Success, nil
}

// StartGame signals game start. Only the room admin succeeds.
func (s *Session) StartGame(ctx context.Context) (bool, error) {
	answer, err := request[proto.StartGameAnswer](s, ctx,
		proto.KindStartGame, proto.StartGame{}, proto.KindStartGameAnswer, nil)
	if err != nil {
		return false, err
	}
	return answer.Success, nil
}

// Events exposes unsolicited notifications. The channel is buffered;
// notifications overflowing a slow consumer are dropped. Close closes
// the channel.
func (s *Session) Events() <-chan Event {
	return s.events
}

func (s *Session) Self() model.Player {
	self, _, _, _ := s.cache.snapshot()
	return self
}

func (s *Session) Room() string {
	_, room, _, _ := s.cache.snapshot()
	return room
}

func (s *Session) IsAdmin() bool {
	_, _, isAdmin, _ := s.cache.snapshot()
	return isAdmin
}

// Others lists the other members of the current room.
func (s *Session) Others() []model.Player {
	_, _, _, others := s.cache.snapshot()
	return others
}
