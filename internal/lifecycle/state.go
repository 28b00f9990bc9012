package lifecycle

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Reason names the transition that ended the running phase.
type Reason string

const (
	ReasonPeerDeleted  Reason = "peer_deleted"
	ReasonSignal       Reason = "signal"
	ReasonPluginClosed Reason = "plugin_closed"
)

// State is the process lifecycle: Running until a single terminal transition
// into ShuttingDown. The transition happens at most once; the first reason
// wins.
type State struct {
	mu           sync.Mutex
	shuttingDown bool
	reason       Reason
	done         chan struct{}
}

func NewState() *State {
	return &State{done: make(chan struct{})}
}

// RequestShutdown performs the terminal transition. It reports whether this
// call was the one that transitioned.
func (s *State) RequestShutdown(reason Reason) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.shuttingDown {
		return false
	}
	s.shuttingDown = true
	s.reason = reason
	close(s.done)
	log.Info().Str("module", "lifecycle").Str("reason", string(reason)).Msg("shutdown requested")
	return true
}

func (s *State) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.shuttingDown
}

func (s *State) IsShuttingDown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shuttingDown
}

func (s *State) Reason() Reason {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reason
}

// Done is closed once the terminal transition happens.
func (s *State) Done() <-chan struct{} {
	return s.done
}
