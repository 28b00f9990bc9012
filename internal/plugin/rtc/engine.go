// Package rtc is an in-process stand-in for the native gateway, used in
// embedded mode. It drives a pion PeerConnection and raises the same events a
// remote gateway would.
package rtc

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/takane/peerbridge/internal/boundary"
	"github.com/takane/peerbridge/internal/plugin"
)

func DefaultWebRTCConfig() webrtc.Configuration {
	return webrtc.Configuration{
		ICEServers: []webrtc.ICEServer{
			{
				URLs: []string{"stun:stun.l.google.com:19302"},
			},
		},
	}
}

type Plugin struct {
	peerID string

	mu    sync.Mutex
	table *plugin.CallbackTable
	pc    *webrtc.PeerConnection

	doneOnce sync.Once
	done     chan struct{}
}

func New(peerID string) *Plugin {
	return &Plugin{peerID: peerID, done: make(chan struct{})}
}

func (p *Plugin) RegisterCallbacks(t plugin.CallbackTable) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.table != nil {
		return plugin.ErrAlreadyRegistered
	}
	p.table = &t
	return nil
}

// Start creates the peer connection and announces the peer. The token is
// freshly generated per process, matching the gateway's pt- token shape.
func (p *Plugin) Start(ctx context.Context) error {
	p.mu.Lock()
	table := p.table
	p.mu.Unlock()
	if table == nil {
		return plugin.ErrNotRegistered
	}

	pc, err := webrtc.NewPeerConnection(DefaultWebRTCConfig())
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.pc = pc
	p.mu.Unlock()

	pc.OnConnectionStateChange(func(s webrtc.PeerConnectionState) {
		log.Info().Str("module", "plugin.rtc").Str("peer_id", p.peerID).Str("peer_connection_state", s.String()).Msg("peer state")
		if s == webrtc.PeerConnectionStateFailed ||
			s == webrtc.PeerConnectionStateClosed {
			table.OnPeerDeleted()
			p.signalDone()
		}
	})

	pc.OnDataChannel(func(dc *webrtc.DataChannel) {
		dc.OnOpen(func() {
			res := table.OnDataConnectionRequested(boundary.NewString(dc.Label()))
			log.Info().
				Str("module", "plugin.rtc").
				Str("label", dc.Label()).
				Bool("success", res.Success).
				Uint16("port", res.Port).
				Msg("data channel opened")
		})
		dc.OnClose(func() {
			table.OnDataConnectionClosed(boundary.NewString(dc.Label()))
		})
	})

	token := "pt-" + uuid.NewString()
	table.OnPeerCreated(boundary.NewString(p.peerID), boundary.NewString(token))
	return nil
}

func (p *Plugin) Close() error {
	p.mu.Lock()
	pc := p.pc
	p.pc = nil
	p.mu.Unlock()
	p.signalDone()
	if pc != nil {
		return pc.Close()
	}
	return nil
}

func (p *Plugin) Done() <-chan struct{} {
	return p.done
}

func (p *Plugin) signalDone() {
	p.doneOnce.Do(func() { close(p.done) })
}
