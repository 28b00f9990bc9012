package plugin

import (
	"context"
	"errors"

	"github.com/takane/peerbridge/internal/boundary"
)

var (
	ErrAlreadyRegistered = errors.New("plugin: callbacks already registered")
	ErrNotRegistered     = errors.New("plugin: callbacks not registered")
)

// LoadResult is returned to the plugin from the data-connection-requested
// callback.
type LoadResult struct {
	Success      bool
	Port         uint16
	ErrorMessage string
}

// CallbackTable is the fixed set of functions the plugin invokes for the
// events it raises. It is built once, submitted once, and never mutated
// afterwards. The registration API takes bare functions; there is no
// user-data pointer, so implementations reach their state some other way.
type CallbackTable struct {
	OnPeerCreated             func(peerID, token *boundary.String)
	OnPeerDeleted             func()
	OnDataConnectionRequested func(message *boundary.String) LoadResult
	OnDataConnectionClosed    func(dataConnectionID *boundary.String)
}

// Registrar accepts a callback table exactly once. A second registration
// on the same plugin is an error.
type Registrar interface {
	RegisterCallbacks(CallbackTable) error
}

// Plugin is an event source behind the callback boundary. Callbacks must be
// registered before Start; the plugin raises no events before Start and none
// after Close returns. Done is closed once the plugin will raise no further
// events, whether from Close or from its event source ending on its own.
type Plugin interface {
	Registrar
	Start(ctx context.Context) error
	Close() error
	Done() <-chan struct{}
}
