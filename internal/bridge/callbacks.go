package bridge

import (
	"errors"
	"sync"

	"github.com/takane/peerbridge/internal/boundary"
	"github.com/takane/peerbridge/internal/plugin"
)

var ErrAlreadyBound = errors.New("bridge: handlers already bound to a live bridge")

// handlerSet is the set of methods bound to the one live Bridge. The plugin's
// registration API takes bare functions with no context pointer, so the raw
// callbacks below reach their Bridge through these package-level slots.
type handlerSet struct {
	peerCreated             func(peerID, token *boundary.String)
	peerDeleted             func()
	dataConnectionRequested func(message *boundary.String) plugin.LoadResult
	dataConnectionClosed    func(dataConnectionID *boundary.String)
}

var (
	bindMu   sync.Mutex
	bound    bool
	handlers handlerSet
)

// bind installs the handlers exactly once. The slots are written here, before
// the plugin is started, and only read afterwards; a second live bridge is
// rejected rather than silently overwriting the first.
func bind(h handlerSet) error {
	bindMu.Lock()
	defer bindMu.Unlock()
	if bound {
		return ErrAlreadyBound
	}
	handlers = h
	bound = true
	return nil
}

// resetBinding clears the slots again. Used when table submission fails
// after a successful bind, and by tests.
func resetBinding() {
	bindMu.Lock()
	defer bindMu.Unlock()
	handlers = handlerSet{}
	bound = false
}

// Raw callback trampolines. No logic lives here: the registration API wants
// bare functions, and these only forward into the bound handler set.

func peerCreatedCallback(peerID, token *boundary.String) {
	handlers.peerCreated(peerID, token)
}

func peerDeletedCallback() {
	handlers.peerDeleted()
}

func dataConnectionRequestedCallback(message *boundary.String) plugin.LoadResult {
	return handlers.dataConnectionRequested(message)
}

func dataConnectionClosedCallback(dataConnectionID *boundary.String) {
	handlers.dataConnectionClosed(dataConnectionID)
}
