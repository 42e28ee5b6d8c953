package navigation

import (
	"github.com/yt2ig/yt2ig"
)

type Event interface {
	// The Handle of the entry this event relates to.
	Handle() Handle
}

type entryEvent struct {
	handle Handle
}

func (e entryEvent) Handle() Handle {
	return e.handle
}

type StatePushed struct {
	entryEvent
	State yt2ig.AppState
}
type StateReplaced struct {
	entryEvent
	Old yt2ig.AppState
	New yt2ig.AppState
}
type StateRemoved struct {
	entryEvent
	State yt2ig.AppState
}
