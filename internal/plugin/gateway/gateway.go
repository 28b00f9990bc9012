// Package gateway implements the plugin boundary against a remote WebRTC
// gateway process, consuming its event stream over a WebSocket.
package gateway

import (
	"context"
	"sync"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/takane/peerbridge/internal/boundary"
	"github.com/takane/peerbridge/internal/plugin"
)

// event is one frame on the gateway's event stream.
type event struct {
	Event            string `json:"event"`
	PeerID           string `json:"peer_id"`
	Token            string `json:"token"`
	DataConnectionID string `json:"data_connection_id"`
	Payload          string `json:"payload"`
}

const (
	eventPeerCreated   = "PEER_CREATED"
	eventPeerDeleted   = "PEER_DELETED"
	eventDataRequested = "DATA_REQUESTED"
	eventDataClosed    = "DATA_CLOSED"
)

type Plugin struct {
	url       string
	readLimit int64

	mu     sync.Mutex
	table  *plugin.CallbackTable
	conn   *websocket.Conn
	closed bool

	doneOnce sync.Once
	done     chan struct{}
}

func New(url string, readLimit int64) *Plugin {
	return &Plugin{url: url, readLimit: readLimit, done: make(chan struct{})}
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

// Start dials the gateway's event endpoint and begins dispatching events into
// the registered table. Events stop when the stream ends, Close is called, or
// ctx is canceled.
func (p *Plugin) Start(ctx context.Context) error {
	p.mu.Lock()
	table := p.table
	p.mu.Unlock()
	if table == nil {
		return plugin.ErrNotRegistered
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, p.url, nil)
	if err != nil {
		return err
	}
	conn.SetReadLimit(p.readLimit)

	p.mu.Lock()
	p.conn = conn
	p.mu.Unlock()

	log.Info().Str("module", "plugin.gateway").Str("url", p.url).Msg("event stream connected")

	go func() {
		<-ctx.Done()
		_ = p.closeConn()
	}()
	go p.readPump(conn, table)
	return nil
}

// readPump delivers events until the stream ends; after that the plugin is
// done for good, which Done reports to the composition root.
func (p *Plugin) readPump(conn *websocket.Conn, table *plugin.CallbackTable) {
	defer p.signalDone()
	defer p.closeConn()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			log.Info().Err(err).Str("module", "plugin.gateway").Msg("event stream closed")
			return
		}
		var ev event
		if err := json.Unmarshal(data, &ev); err != nil {
			log.Error().Err(err).Str("module", "plugin.gateway").Msg("bad event frame")
			continue
		}
		p.dispatch(table, ev)
	}
}

func (p *Plugin) dispatch(table *plugin.CallbackTable, ev event) {
	switch ev.Event {
	case eventPeerCreated:
		table.OnPeerCreated(boundary.NewString(ev.PeerID), boundary.NewString(ev.Token))
	case eventPeerDeleted:
		table.OnPeerDeleted()
	case eventDataRequested:
		res := table.OnDataConnectionRequested(boundary.NewString(ev.Payload))
		log.Info().
			Str("module", "plugin.gateway").
			Bool("success", res.Success).
			Uint16("port", res.Port).
			Msg("data connection requested")
	case eventDataClosed:
		table.OnDataConnectionClosed(boundary.NewString(ev.DataConnectionID))
	default:
		log.Warn().Str("module", "plugin.gateway").Str("event", ev.Event).Msg("unknown event")
	}
}

func (p *Plugin) Close() error {
	err := p.closeConn()
	p.signalDone()
	return err
}

func (p *Plugin) Done() <-chan struct{} {
	return p.done
}

// closeConn closes the stream at most once; the read pump, context
// cancellation and Close all funnel through here.
func (p *Plugin) closeConn() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

func (p *Plugin) signalDone() {
	p.doneOnce.Do(func() { close(p.done) })
}
