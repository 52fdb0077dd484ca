package game

import (
	"context"
	"encoding/json"
	"log"
	"math/rand"
	"sync"
	"time"
)

// Pointer event kinds accepted from clients. They mirror the pointer
// gesture: press on the cue, drag, release to fire.
const (
	PointerAimStart   = "aim_start"
	PointerAimMove    = "aim_move"
	PointerAimRelease = "aim_release"
)

type pointerEvent struct {
	Kind  string
	Point Vec2
}

// Broadcaster pushes server-to-client messages for a session. The ws hub
// registers itself here so the game package never imports the ws package.
type Broadcaster interface {
	BroadcastToSession(sessionToken string, message []byte)
}

var (
	broadcaster   Broadcaster
	broadcasterMu sync.RWMutex
)

// SetBroadcaster wires the outbound message sink. Pass nil in tests to run
// sessions silently.
func SetBroadcaster(b Broadcaster) {
	broadcasterMu.Lock()
	broadcaster = b
	broadcasterMu.Unlock()
}

func sendToSession(token string, message []byte) {
	broadcasterMu.RLock()
	b := broadcaster
	broadcasterMu.RUnlock()
	if b != nil {
		b.BroadcastToSession(token, message)
	}
}

// Session is one live table: a goroutine owning the authoritative snapshot,
// fed by pointer events and publishing frames over the broadcaster. All
// rule side effects (persistence, gift progress) hang off the On* hooks so
// the session itself stays free of storage concerns.
type Session struct {
	Token     string
	GiftToken string
	StageID   int64
	// DBID is the puzzle_sessions row backing this session, 0 when the
	// session runs without a database (tablesim, tests).
	DBID      int64
	CreatedAt time.Time

	engine *Engine
	rng    *rand.Rand

	mu    sync.RWMutex
	state TableState

	inputs chan pointerEvent
	cancel context.CancelFunc
	done   chan struct{}

	lastTick   time.Time
	shotCount  int
	solvedOnce sync.Once

	// OnShot fires on every released shot, OnReset after an overshoot
	// re-rack, OnSolved once after the solve delay elapses. OnSolved never
	// fires if the session is closed during the delay.
	OnShot   func(s *Session, shot Shot, state TableState)
	OnReset  func(s *Session, state TableState)
	OnSolved func(s *Session, state TableState)
}

// NewSession racks a table and draws its first target. The seed fixes the
// target sequence, which keeps simulations replayable.
func NewSession(token, giftToken string, stageID int64, rules Rules, seed int64) *Session {
	engine := NewEngine(rules)
	rng := rand.New(rand.NewSource(seed))
	return &Session{
		Token:     token,
		GiftToken: giftToken,
		StageID:   stageID,
		CreatedAt: time.Now(),
		engine:    engine,
		rng:       rng,
		state:     NewTableState(rules, engine.Table, rng),
		inputs:    make(chan pointerEvent, 64),
		done:      make(chan struct{}),
	}
}

// Start launches the simulation loop. Close stops it.
func (s *Session) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.run(ctx)
}

// Close tears the session down: the loop exits and any pending solved
// signal is cancelled with it.
func (s *Session) Close() {
	if s.cancel != nil {
		s.cancel()
	}
}

// Done closes when the loop has exited.
func (s *Session) Done() <-chan struct{} { return s.done }

// Snapshot returns a copy of the current table state.
func (s *Session) Snapshot() TableState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// ShotCount returns how many shots have been released this session.
func (s *Session) ShotCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.shotCount
}

// HandlePointer queues a pointer event for the next frame. Events are
// dropped, not blocked on, when the queue is full: a stalled simulation
// must never back-pressure the websocket read pump.
func (s *Session) HandlePointer(kind string, x, y float64) {
	select {
	case s.inputs <- pointerEvent{Kind: kind, Point: NewVec2(x, y)}:
	default:
		log.Printf("[GAME] session %s dropping pointer event %s", s.Token, kind)
	}
}

// run is the frame loop. Each tick drains queued pointer events into the
// snapshot, then advances physics by the real elapsed time. The first tick
// sees a zero dt because there is no previous timestamp to diff against.
func (s *Session) run(ctx context.Context) {
	defer close(s.done)

	interval := time.Duration(float64(time.Second) / float64(s.engine.Rules.TickHz))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.broadcastFrame(s.Snapshot())

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.runFrame(ctx, now)
		}
	}
}

// runFrame advances the session by one tick. Split out from run so tests
// can drive frames with a synthetic clock.
func (s *Session) runFrame(ctx context.Context, now time.Time) {
	var dtMillis float64
	if !s.lastTick.IsZero() {
		dtMillis = float64(now.Sub(s.lastTick)) / float64(time.Millisecond)
	}
	s.lastTick = now

	s.mu.Lock()
	state := s.state
	prevFeedbackSeq := state.FeedbackSeq
	wasAiming := state.Aiming

	var firedShots []Shot
drain:
	for {
		select {
		case ev := <-s.inputs:
			switch ev.Kind {
			case PointerAimStart:
				state, _ = s.engine.BeginAim(state, ev.Point)
			case PointerAimMove:
				state = s.engine.MoveAim(state, ev.Point)
			case PointerAimRelease:
				var shot Shot
				var fired bool
				state, shot, fired = s.engine.ReleaseAim(state, ev.Point)
				if fired {
					s.shotCount++
					firedShots = append(firedShots, shot)
				}
			}
		default:
			break drain
		}
	}

	result := s.engine.Step(state, dtMillis, s.rng)
	moved := result.State.AnyMoving() || state.AnyMoving()
	s.state = result.State
	s.mu.Unlock()

	for _, shot := range firedShots {
		if s.OnShot != nil {
			s.OnShot(s, shot, result.State)
		}
	}
	if result.Reset && s.OnReset != nil {
		s.OnReset(s, result.State)
	}
	if result.Solved {
		s.scheduleSolved(ctx, result.State)
	}

	changed := moved || len(result.Events) > 0 ||
		result.State.Aiming || wasAiming ||
		result.State.FeedbackSeq != prevFeedbackSeq
	if changed {
		s.broadcastFrame(result.State)
	}
	if len(result.Events) > 0 {
		s.broadcastEvents(result.Events)
	}
}

// scheduleSolved fires OnSolved after the configured delay, once per
// session. Closing the session during the delay cancels the signal, so a
// torn-down table cannot complete a gift stage behind the player's back.
func (s *Session) scheduleSolved(ctx context.Context, state TableState) {
	s.solvedOnce.Do(func() {
		delay := time.Duration(s.engine.Rules.SolveDelayMillis) * time.Millisecond
		go func() {
			timer := time.NewTimer(delay)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}
			if s.OnSolved != nil {
				s.OnSolved(s, state)
			}
			msg, _ := json.Marshal(map[string]interface{}{
				"type": "solved",
				"data": map[string]interface{}{
					"session_token": s.Token,
					"target_sum":    state.TargetSum,
					"pocketed_sum":  state.PocketedSum,
					"shots":         s.ShotCount(),
				},
			})
			sendToSession(s.Token, msg)
		}()
	})
}

func (s *Session) broadcastFrame(state TableState) {
	msg, err := json.Marshal(map[string]interface{}{
		"type": "frame",
		"data": state,
	})
	if err != nil {
		log.Printf("[GAME] session %s marshal frame: %v", s.Token, err)
		return
	}
	sendToSession(s.Token, msg)
}

func (s *Session) broadcastEvents(events []Event) {
	msg, err := json.Marshal(map[string]interface{}{
		"type": "events",
		"data": events,
	})
	if err != nil {
		log.Printf("[GAME] session %s marshal events: %v", s.Token, err)
		return
	}
	sendToSession(s.Token, msg)
}
