package store

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/harpiadesk/harpia/internal/deck"
	"github.com/harpiadesk/harpia/internal/logging"
	"github.com/harpiadesk/harpia/internal/protocol"
)

// Listener receives the key that changed and its new value.
type Listener func(key Key, value any)

type subscription struct {
	id  int
	key Key
	fn  Listener
}

type notification struct {
	key   Key
	value any
}

// Store is the panel state container. The zero value is not usable; use New.
//
// A mutation and the delivery of its notifications form one cycle. Cycles
// from different goroutines run one at a time, so every mutating call
// returns only after its listeners ran. A listener that mutates the store
// joins the running cycle: its notifications are delivered after the
// current listener returns.
type Store struct {
	mu     sync.Mutex
	state  map[Key]any
	subs   []subscription
	nextID int
	queue  []notification

	cycleMu sync.Mutex
	owner   atomic.Int64
}

// New returns a store with an empty configuration showing the root deck.
func New() *Store {
	return &Store{
		state: map[Key]any{
			KeyDeckConfig:    &deck.Configuration{Decks: map[deck.DeckID]deck.Buttons{}},
			KeyCurrentDeck:   deck.RootDeck,
			KeyButtonStates:  ToggleState{},
			KeyViewMode:      ModeNormal,
			KeyScenes:        []protocol.Scene(nil),
			KeyAudioInputs:   []protocol.AudioInput(nil),
			KeyAvatarHotkeys: []protocol.AvatarHotkey(nil),
		},
	}
}

// Get returns the raw value stored under key. The value is not copied and
// must not be modified.
func (s *Store) Get(key Key) any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state[key]
}

// Set replaces the value under key and notifies subscribers.
func (s *Store) Set(key Key, value any) {
	nested := s.begin()
	s.mu.Lock()
	s.state[key] = value
	s.enqueue(key, value)
	s.mu.Unlock()
	s.end(nested)
}

// Subscribe registers fn for changes to key, or to every key with KeyAll.
// The returned function removes the subscription.
func (s *Store) Subscribe(key Key, fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscription{id: id, key: key, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// UpdateDeckConfig replaces the configuration and reconciles the derived
// state. A nil configuration is treated as empty.
func (s *Store) UpdateDeckConfig(cfg *deck.Configuration) {
	if cfg == nil {
		cfg = &deck.Configuration{}
	}
	if cfg.Decks == nil {
		normalized := *cfg
		normalized.Decks = make(map[deck.DeckID]deck.Buttons)
		cfg = &normalized
	}

	nested := s.begin()
	s.mu.Lock()
	previousDeck := s.currentDeckLocked()
	previous := s.togglesLocked()

	current := previousDeck
	if !cfg.HasDeck(current) {
		current = fallbackDeck(cfg)
		logging.Debug("Current deck removed by configuration update",
			zap.String("previous", previousDeck),
			zap.String("fallback", current),
		)
	}

	toggles := ToggleState{}
	for slot, button := range cfg.Deck(current) {
		if !button.IsStateful {
			continue
		}
		if current == previousDeck {
			toggles[slot] = previous[slot]
		} else {
			toggles[slot] = false
		}
	}

	s.state[KeyDeckConfig] = cfg
	s.state[KeyCurrentDeck] = current
	s.state[KeyButtonStates] = toggles
	s.enqueue(KeyDeckConfig, cfg)
	s.mu.Unlock()
	s.end(nested)
}

// fallbackDeck picks the start deck when it exists, else root. Root is
// returned even when absent; the grid then renders empty.
func fallbackDeck(cfg *deck.Configuration) deck.DeckID {
	if start := cfg.Settings.StartDeck; start != "" && cfg.HasDeck(start) {
		return start
	}
	return deck.RootDeck
}

// Toggle flips the toggle state of slot and returns the value it had
// before. The read and the write happen under one lock.
func (s *Store) Toggle(slot deck.SlotID) (was bool) {
	nested := s.begin()
	s.mu.Lock()
	toggles := s.togglesLocked().Clone()
	was = toggles[slot]
	toggles[slot] = !was
	s.state[KeyButtonStates] = toggles
	s.enqueue(KeyButtonStates, toggles.Clone())
	s.mu.Unlock()
	s.end(nested)
	return was
}

// Navigate shows another deck. Toggle state always starts all-off on the
// destination, even when it was visited before. Only KeyCurrentDeck is
// notified; the toggle reset is implied by it.
func (s *Store) Navigate(id deck.DeckID) {
	if id == "" {
		id = deck.RootDeck
	}
	nested := s.begin()
	s.mu.Lock()
	s.state[KeyCurrentDeck] = id
	s.state[KeyButtonStates] = ToggleState{}
	s.enqueue(KeyCurrentDeck, id)
	s.mu.Unlock()
	s.end(nested)
}

// ToggleViewMode switches between normal and edit mode and returns the new
// mode.
func (s *Store) ToggleViewMode() ViewMode {
	nested := s.begin()
	s.mu.Lock()
	mode := s.modeLocked().Toggled()
	s.state[KeyViewMode] = mode
	s.enqueue(KeyViewMode, mode)
	s.mu.Unlock()
	s.end(nested)
	return mode
}

// Config returns the current configuration. It must not be modified; use
// Clone before rewriting it.
func (s *Store) Config() *deck.Configuration {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg, _ := s.state[KeyDeckConfig].(*deck.Configuration)
	return cfg
}

// CurrentDeck returns the id of the deck on screen.
func (s *Store) CurrentDeck() deck.DeckID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentDeckLocked()
}

// Toggles returns a copy of the toggle state.
func (s *Store) Toggles() ToggleState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.togglesLocked().Clone()
}

// Mode returns the view mode.
func (s *Store) Mode() ViewMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modeLocked()
}

// Button returns the configuration at slot of the current deck.
func (s *Store) Button(slot deck.SlotID) (deck.ButtonConfig, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg, _ := s.state[KeyDeckConfig].(*deck.Configuration)
	b, ok := cfg.Deck(s.currentDeckLocked())[slot]
	return b, ok
}

// Scenes returns the last scene snapshot.
func (s *Store) Scenes() []protocol.Scene {
	v, _ := s.Get(KeyScenes).([]protocol.Scene)
	return v
}

// AudioInputs returns the last audio input snapshot.
func (s *Store) AudioInputs() []protocol.AudioInput {
	v, _ := s.Get(KeyAudioInputs).([]protocol.AudioInput)
	return v
}

// AvatarHotkeys returns the last avatar hotkey snapshot.
func (s *Store) AvatarHotkeys() []protocol.AvatarHotkey {
	v, _ := s.Get(KeyAvatarHotkeys).([]protocol.AvatarHotkey)
	return v
}

// Snapshot is a consistent view of the state the renderer needs.
type Snapshot struct {
	Config      *deck.Configuration
	CurrentDeck deck.DeckID
	Toggles     ToggleState
	Mode        ViewMode
}

// Snapshot reads the render inputs under one lock.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg, _ := s.state[KeyDeckConfig].(*deck.Configuration)
	return Snapshot{
		Config:      cfg,
		CurrentDeck: s.currentDeckLocked(),
		Toggles:     s.togglesLocked().Clone(),
		Mode:        s.modeLocked(),
	}
}

func (s *Store) currentDeckLocked() deck.DeckID {
	id, _ := s.state[KeyCurrentDeck].(deck.DeckID)
	return id
}

func (s *Store) togglesLocked() ToggleState {
	t, _ := s.state[KeyButtonStates].(ToggleState)
	if t == nil {
		return ToggleState{}
	}
	return t
}

func (s *Store) modeLocked() ViewMode {
	m, _ := s.state[KeyViewMode].(ViewMode)
	return m
}

func (s *Store) enqueue(key Key, value any) {
	s.queue = append(s.queue, notification{key: key, value: value})
}

// begin starts a mutation cycle, waiting for cycles on other goroutines.
// It reports true when the caller is a listener of the running cycle.
func (s *Store) begin() (nested bool) {
	id := goroutineID()
	if s.owner.Load() == id {
		return true
	}
	s.cycleMu.Lock()
	s.owner.Store(id)
	return false
}

// end delivers the queued notifications and releases the cycle. Nested
// calls leave delivery to the running cycle.
func (s *Store) end(nested bool) {
	if nested {
		return
	}
	defer func() {
		s.owner.Store(0)
		s.cycleMu.Unlock()
	}()
	s.flush()
}

func (s *Store) flush() {
	s.mu.Lock()
	for len(s.queue) > 0 {
		n := s.queue[0]
		s.queue = s.queue[1:]
		var fns []Listener
		for _, sub := range s.subs {
			if sub.key == n.key || sub.key == KeyAll {
				fns = append(fns, sub.fn)
			}
		}
		s.mu.Unlock()
		for _, fn := range fns {
			fn(n.key, n.value)
		}
		s.mu.Lock()
	}
	s.mu.Unlock()
}

var goroutinePrefix = []byte("goroutine ")

// goroutineID parses the current goroutine's id from its stack header,
// which reads "goroutine 42 [running]:".
func goroutineID() int64 {
	var buf [64]byte
	b := buf[:runtime.Stack(buf[:], false)]
	b = bytes.TrimPrefix(b, goroutinePrefix)
	if i := bytes.IndexByte(b, ' '); i > 0 {
		b = b[:i]
	}
	id, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return -1
	}
	return id
}
