package rtc

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/takane/peerbridge/internal/boundary"
	"github.com/takane/peerbridge/internal/plugin"
)

func TestRegisterCallbacksOnce(t *testing.T) {
	t.Parallel()
	p := New("p1")
	if err := p.RegisterCallbacks(plugin.CallbackTable{}); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := p.RegisterCallbacks(plugin.CallbackTable{}); !errors.Is(err, plugin.ErrAlreadyRegistered) {
		t.Errorf("second register: got %v, want ErrAlreadyRegistered", err)
	}
}

func TestStartWithoutRegistration(t *testing.T) {
	t.Parallel()
	p := New("p1")
	if err := p.Start(context.Background()); !errors.Is(err, plugin.ErrNotRegistered) {
		t.Errorf("Start: got %v, want ErrNotRegistered", err)
	}
}

func TestStartAnnouncesPeer(t *testing.T) {
	t.Parallel()
	var gotID, gotToken string
	table := plugin.CallbackTable{
		OnPeerCreated: func(peerID, token *boundary.String) {
			gotID, _ = peerID.Value()
			gotToken, _ = token.Value()
		},
		OnPeerDeleted: func() {},
		OnDataConnectionRequested: func(*boundary.String) plugin.LoadResult {
			return plugin.LoadResult{}
		},
		OnDataConnectionClosed: func(*boundary.String) {},
	}

	p := New("embedded-peer")
	if err := p.RegisterCallbacks(table); err != nil {
		t.Fatalf("RegisterCallbacks: %v", err)
	}
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer p.Close()

	if gotID != "embedded-peer" {
		t.Errorf("peer id: got %q, want %q", gotID, "embedded-peer")
	}
	if !strings.HasPrefix(gotToken, "pt-") {
		t.Errorf("token: got %q, want pt- prefix", gotToken)
	}
}

func TestCloseSignalsDone(t *testing.T) {
	t.Parallel()
	p := New("p1")
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	select {
	case <-p.Done():
	case <-time.After(time.Second):
		t.Fatal("Done not closed after Close")
	}
}
