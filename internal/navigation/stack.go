// Package navigation holds the stack of screens a user has navigated through. Entries are addressed by a stable
// Handle rather than by position, so a run can keep updating its own entry while others are pushed or removed.
package navigation

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yt2ig/yt2ig"
	"github.com/yt2ig/yt2ig/generic"
	"github.com/yt2ig/yt2ig/internal/pubsub"
	"github.com/yt2ig/yt2ig/internal/sync_"
)

const eventBufSize = 16

type Handle string

func NewHandle() Handle {
	return Handle(generic.Unwrap(uuid.NewRandom()).String())
}

type Entry struct {
	Handle Handle
	State  yt2ig.AppState
}

// Stack is safe for concurrent use. Every change is published as an Event, in the order the changes were made.
// Subscribers must keep receiving: once their buffers are full, changes to the Stack block until they catch up.
// Reads never wait on subscribers.
type Stack struct {
	log *zap.SugaredLogger
	// changes serialises each change with its Event, so events are published in the order of the changes
	changes sync.Mutex
	entries *sync_.RWMutexed[[]Entry]
	events  pubsub.Publisher[Event]
}

func NewStack() *Stack {
	return &Stack{
		log:     zap.S().Named("navigation"),
		entries: sync_.NewRWMutexed[[]Entry](nil),
		events:  pubsub.NewPublisherBufSize[Event](eventBufSize),
	}
}

// NavigateTo pushes a new entry, returning its handle.
func (s *Stack) NavigateTo(state yt2ig.AppState) Handle {
	h := NewHandle()
	s.changes.Lock()
	defer s.changes.Unlock()
	_ = s.entries.Locked(func(entries *[]Entry) error {
		*entries = append(*entries, Entry{Handle: h, State: state})
		return nil
	})
	s.events.Send(StatePushed{entryEvent{h}, state})
	s.log.Debugw("pushed", "handle", h, "summary", state.Summary())
	return h
}

// ReplaceState swaps the state of the entry at h. If the entry is no longer on the stack, nothing happens and false is
// returned.
func (s *Stack) ReplaceState(h Handle, state yt2ig.AppState) bool {
	var old yt2ig.AppState
	var replaced bool
	s.changes.Lock()
	defer s.changes.Unlock()
	_ = s.entries.Locked(func(entries *[]Entry) error {
		i := indexOf(*entries, h)
		if i < 0 {
			return nil
		}
		old = (*entries)[i].State
		(*entries)[i].State = state
		replaced = true
		return nil
	})
	if !replaced {
		s.log.Debugw("dropped replacement for missing entry", "handle", h)
		return false
	}
	s.events.Send(StateReplaced{entryEvent{h}, old, state})
	return true
}

// Remove takes the entry at h off the stack, wherever it is.
func (s *Stack) Remove(h Handle) bool {
	var removed Entry
	var ok bool
	s.changes.Lock()
	defer s.changes.Unlock()
	_ = s.entries.Locked(func(entries *[]Entry) error {
		i := indexOf(*entries, h)
		if i < 0 {
			return nil
		}
		removed, ok = (*entries)[i], true
		*entries = append((*entries)[:i:i], (*entries)[i+1:]...)
		return nil
	})
	if ok {
		s.events.Send(StateRemoved{entryEvent{h}, removed.State})
	}
	return ok
}

// Pop removes the top entry, if any.
func (s *Stack) Pop() (entry Entry, ok bool) {
	s.changes.Lock()
	defer s.changes.Unlock()
	_ = s.entries.Locked(func(entries *[]Entry) error {
		n := len(*entries)
		if n == 0 {
			return nil
		}
		entry, ok = (*entries)[n-1], true
		*entries = (*entries)[:n-1]
		return nil
	})
	if ok {
		s.events.Send(StateRemoved{entryEvent{entry.Handle}, entry.State})
	}
	return entry, ok
}

// Current returns the top entry, if any.
func (s *Stack) Current() (entry Entry, ok bool) {
	_ = s.entries.RLocked(func(entries *[]Entry) error {
		if n := len(*entries); n > 0 {
			entry, ok = (*entries)[n-1], true
		}
		return nil
	})
	return entry, ok
}

func (s *Stack) Get(h Handle) (state yt2ig.AppState, ok bool) {
	_ = s.entries.RLocked(func(entries *[]Entry) error {
		if i := indexOf(*entries, h); i >= 0 {
			state, ok = (*entries)[i].State, true
		}
		return nil
	})
	return state, ok
}

// Entries returns a copy of the stack, bottom first.
func (s *Stack) Entries() []Entry {
	var res []Entry
	_ = s.entries.RLocked(func(entries *[]Entry) error {
		res = append(make([]Entry, 0, len(*entries)), *entries...)
		return nil
	})
	return res
}

func (s *Stack) Len() int {
	return len(s.entries.Get())
}

// Subscribe receives events for every change made after it returns.
func (s *Stack) Subscribe() (pubsub.ReceiverCloser[Event], error) {
	return s.events.SubscribeBufSize(eventBufSize)
}

// SubscribeHandle only receives events for the entry at h.
func (s *Stack) SubscribeHandle(h Handle) (pubsub.ReceiverCloser[Event], error) {
	ch := pubsub.NewChannel[Event](eventBufSize)
	filtered := pubsub.NewFilteredSender[Event](ch, func(e Event) bool { return e.Handle() == h })
	if err := s.events.AddSubscriber(filtered, true); err != nil {
		return nil, err
	}
	return ch, nil
}

// Close stops publishing events, closing all subscriptions.
func (s *Stack) Close() {
	s.events.Close()
}

func indexOf(entries []Entry, h Handle) int {
	for i, e := range entries {
		if e.Handle == h {
			return i
		}
	}
	return -1
}
