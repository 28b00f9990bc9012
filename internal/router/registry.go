package router

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Peer is one live gateway peer as seen by the router.
type Peer struct {
	ID        string    `json:"peer_id"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
}

// Registry owns the peer bookkeeping on this side of the plugin boundary.
// It is safe for use from the plugin's calling goroutines.
type Registry struct {
	mu    sync.RWMutex
	peers map[string]Peer
}

func NewRegistry() *Registry {
	return &Registry{peers: make(map[string]Peer)}
}

// OnCreatePeer records a peer the gateway finished establishing.
// Re-announcing an existing peer id replaces its token.
func (r *Registry) OnCreatePeer(peerID, token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.peers[peerID] = Peer{ID: peerID, Token: token, CreatedAt: time.Now()}
	log.Info().Str("module", "router").Str("peer_id", peerID).Msg("peer created")
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.peers)
}

func (r *Registry) Snapshot() []Peer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Peer, 0, len(r.peers))
	for _, p := range r.peers {
		out = append(out, p)
	}
	return out
}
