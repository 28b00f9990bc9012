package boundary

import (
	"errors"
	"sync/atomic"
)

var (
	ErrAlreadyReleased = errors.New("boundary: string already released")
	ErrUseAfterRelease = errors.New("boundary: use after release")
)

// String is a string value handed across the plugin boundary.
// The sender transfers ownership on delivery; the receiver must call
// Release exactly once after last use. The value itself is immutable;
// release state is the only mutable field, so Value and Release resolve
// through the released flag even when racing.
type String struct {
	value    string
	released atomic.Bool
}

func NewString(v string) *String {
	return &String{value: v}
}

// Value returns the underlying string. Calling it after Release is an error,
// never stale data.
func (s *String) Value() (string, error) {
	if s == nil || s.released.Load() {
		return "", ErrUseAfterRelease
	}
	return s.value, nil
}

// Release hands the string back for deallocation. Exactly one call succeeds;
// later calls report ErrAlreadyReleased. Safe on a nil receiver.
func (s *String) Release() error {
	if s == nil {
		return nil
	}
	if !s.released.CompareAndSwap(false, true) {
		return ErrAlreadyReleased
	}
	return nil
}

func (s *String) Released() bool {
	return s != nil && s.released.Load()
}
