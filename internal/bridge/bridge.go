// Package bridge adapts the gateway plugin's callback events into router
// calls. The plugin registers a table of bare functions and invokes them from
// its own goroutines; the bridge owns the string handoff at that boundary and
// turns peer deletion into the process's terminal shutdown transition.
package bridge

import (
	"github.com/rs/zerolog/log"

	"github.com/takane/peerbridge/internal/boundary"
	"github.com/takane/peerbridge/internal/lifecycle"
	"github.com/takane/peerbridge/internal/plugin"
)

// Router receives the translated plugin events.
type Router interface {
	OnCreatePeer(peerID, token string)
}

// stubDataPort is reported until data-connection provisioning is implemented.
const stubDataPort = 51111

// Bridge is the one live adapter between the plugin and the router.
// Construct it before starting the plugin; events raised earlier have no
// bound handlers to land on.
type Bridge struct {
	router Router
	state  *lifecycle.State
}

// New binds the bridge's handlers into the callback slots, builds the
// registration table and submits it to the plugin. The submission happens
// once and cannot be undone; constructing a second bridge while one is live
// fails with ErrAlreadyBound.
func New(router Router, state *lifecycle.State, reg plugin.Registrar) (*Bridge, error) {
	b := &Bridge{router: router, state: state}
	if err := bind(handlerSet{
		peerCreated:             b.onPeerCreated,
		peerDeleted:             b.onPeerDeleted,
		dataConnectionRequested: b.onDataConnectionRequested,
		dataConnectionClosed:    b.onDataConnectionClosed,
	}); err != nil {
		return nil, err
	}
	table := plugin.CallbackTable{
		OnPeerCreated:             peerCreatedCallback,
		OnPeerDeleted:             peerDeletedCallback,
		OnDataConnectionRequested: dataConnectionRequestedCallback,
		OnDataConnectionClosed:    dataConnectionClosedCallback,
	}
	if err := reg.RegisterCallbacks(table); err != nil {
		resetBinding()
		return nil, err
	}
	return b, nil
}

func (b *Bridge) onPeerCreated(peerID, token *boundary.String) {
	defer release(token)
	defer release(peerID)

	id, err := peerID.Value()
	if err != nil {
		log.Error().Err(err).Str("module", "bridge").Msg("peer created: bad peer id")
		return
	}
	tok, err := token.Value()
	if err != nil {
		log.Error().Err(err).Str("module", "bridge").Msg("peer created: bad token")
		return
	}
	b.router.OnCreatePeer(id, tok)
}

// onPeerDeleted is fatal by design: the gateway tearing down the remote
// session means this process has nothing left to bridge.
func (b *Bridge) onPeerDeleted() {
	log.Info().Str("module", "bridge").Msg("peer deleted by gateway")
	b.state.RequestShutdown(lifecycle.ReasonPeerDeleted)
}

func (b *Bridge) onDataConnectionRequested(message *boundary.String) plugin.LoadResult {
	release(message)
	// TODO: parse the request payload into source/destination endpoints and
	// provision a forwarding channel once the payload schema is settled.
	return plugin.LoadResult{Success: true, Port: stubDataPort}
}

func (b *Bridge) onDataConnectionClosed(dataConnectionID *boundary.String) {
	release(dataConnectionID)
}

func release(s *boundary.String) {
	if err := s.Release(); err != nil {
		log.Error().Err(err).Str("module", "bridge").Msg("boundary string release")
	}
}
