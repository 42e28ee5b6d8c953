package navigation

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	assert_ "github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yt2ig/yt2ig"
)

func receive(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case e := <-ch:
		return e
	case <-time.After(5 * time.Second):
		require.FailNow(t, "timed out waiting for event")
		return nil
	}
}

func share(id string, loading yt2ig.LoadingState) yt2ig.AppState {
	target := yt2ig.YouTubeVideo{VideoID: id}
	if loading == nil {
		loading = yt2ig.Starting{Target: target}
	}
	return yt2ig.Share{Target: target, Loading: loading}
}

func TestStack(t *testing.T) {
	assert := assert_.New(t)
	s := NewStack()
	defer s.Close()
	events, err := s.Subscribe()
	require.NoError(t, err)

	_, ok := s.Current()
	assert.False(ok)

	home := yt2ig.Home{}
	h1 := s.NavigateTo(home)
	assert.Equal(StatePushed{entryEvent{h1}, home}, receive(t, events.Receive()))

	first := share("a", nil)
	h2 := s.NavigateTo(first)
	assert.NotEqual(h1, h2)
	assert.Equal(2, s.Len())
	receive(t, events.Receive())

	current, ok := s.Current()
	assert.True(ok)
	assert.Equal(Entry{h2, first}, current)

	second := share("a", yt2ig.LoadedInfo{Target: yt2ig.YouTubeVideo{VideoID: "a"}})
	assert.True(s.ReplaceState(h2, second))
	assert.Equal(StateReplaced{entryEvent{h2}, first, second}, receive(t, events.Receive()))
	state, ok := s.Get(h2)
	assert.True(ok)
	assert.Equal(second, state)

	// Replacing an entry that is not the top still works
	h3 := s.NavigateTo(share("b", nil))
	receive(t, events.Receive())
	failed := yt2ig.ErrorState{Message: yt2ig.ErrorMessage{Code: yt2ig.CodeAny}}
	assert.True(s.ReplaceState(h2, failed))
	receive(t, events.Receive())
	assert.Equal([]Entry{{h1, home}, {h2, failed}, {h3, share("b", nil)}}, s.Entries())

	// Removing from the middle keeps the other handles valid
	assert.True(s.Remove(h2))
	assert.Equal(StateRemoved{entryEvent{h2}, failed}, receive(t, events.Receive()))
	assert.False(s.Remove(h2))
	assert.Equal([]Entry{{h1, home}, {h3, share("b", nil)}}, s.Entries())

	popped, ok := s.Pop()
	assert.True(ok)
	assert.Equal(h3, popped.Handle)
	assert.Equal(StateRemoved{entryEvent{h3}, share("b", nil)}, receive(t, events.Receive()))
	assert.Equal(1, s.Len())
}

func TestStack_ReplaceMissing(t *testing.T) {
	assert := assert_.New(t)
	s := NewStack()
	defer s.Close()
	h := s.NavigateTo(share("a", nil))
	events, err := s.Subscribe()
	require.NoError(t, err)
	_, _ = s.Pop()
	assert.Equal(StateRemoved{entryEvent{h}, share("a", nil)}, receive(t, events.Receive()))

	assert.False(s.ReplaceState(h, share("a", yt2ig.LoadedInfo{})))
	assert.False(s.ReplaceState(NewHandle(), yt2ig.Home{}))
	_, ok := s.Get(h)
	assert.False(ok)
	assert.Equal(0, s.Len())
	select {
	case e := <-events.Receive():
		assert.Fail("unexpected event", "%#v", e)
	case <-time.After(50 * time.Millisecond):
	}
	_, ok = s.Pop()
	assert.False(ok)
}

func TestStack_SubscribeHandle(t *testing.T) {
	assert := assert_.New(t)
	s := NewStack()
	h1 := s.NavigateTo(share("a", nil))
	h2 := s.NavigateTo(share("b", nil))
	only1, err := s.SubscribeHandle(h1)
	require.NoError(t, err)

	s.ReplaceState(h2, yt2ig.Home{})
	s.ReplaceState(h1, yt2ig.Home{})
	s.Remove(h2)
	s.Remove(h1)

	e := receive(t, only1.Receive())
	assert.IsType(StateReplaced{}, e)
	assert.Equal(h1, e.Handle())
	e = receive(t, only1.Receive())
	assert.IsType(StateRemoved{}, e)
	assert.Equal(h1, e.Handle())

	s.Close()
	_, ok := <-only1.Receive()
	assert.False(ok, "expected subscription to be closed with the stack")
	_, err = s.Subscribe()
	assert.Error(err)
}

func TestStack_ConcurrentRuns(t *testing.T) {
	assert := assert_.New(t)
	s := NewStack()
	defer s.Close()
	var wg sync.WaitGroup
	handles := make([]Handle, 20)
	for i := range handles {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h := s.NavigateTo(yt2ig.Home{})
			for j := 0; j < 10; j++ {
				assert.True(s.ReplaceState(h, yt2ig.Home{}))
			}
			handles[i] = h
		}(i)
	}
	wg.Wait()
	assert.Equal(len(handles), s.Len())
	for _, h := range handles {
		assert.True(s.Remove(h))
	}
	assert.Equal(0, s.Len())
}

func TestStack_SubscribeSeesOnlyLaterChanges(t *testing.T) {
	assert := assert_.New(t)
	s := NewStack()
	h := s.NavigateTo(yt2ig.Home{})
	s.ReplaceState(h, share("a", nil))
	events, err := s.Subscribe()
	require.NoError(t, err)

	h2 := s.NavigateTo(share("b", nil))
	assert.Equal(StatePushed{entryEvent{h2}, share("b", nil)}, receive(t, events.Receive()))
	s.Close()
	_, ok := <-events.Receive()
	assert.False(ok, "expected only the change made after subscribing")
}

func TestStack_StalledSubscriber(t *testing.T) {
	assert := assert_.New(t)
	s := NewStack()
	defer s.Close()
	h := s.NavigateTo(yt2ig.Home{})
	stalled, err := s.Subscribe()
	require.NoError(t, err)

	// Far more changes than the event buffers can hold, with nobody receiving
	const changes = 5 * eventBufSize
	var replaced atomic.Int32
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < changes; i++ {
			s.ReplaceState(h, yt2ig.Home{})
			replaced.Add(1)
		}
	}()
	assert.Eventually(func() bool {
		before := replaced.Load()
		time.Sleep(20 * time.Millisecond)
		return before > 0 && before == replaced.Load()
	}, 5*time.Second, time.Millisecond)
	assert.Less(int(replaced.Load()), changes, "changes should block on the stalled subscriber")

	// Reads don't wait for the subscriber
	read := make(chan struct{})
	go func() {
		defer close(read)
		_, ok := s.Get(h)
		assert.True(ok)
		assert.Equal(1, s.Len())
		_, ok = s.Current()
		assert.True(ok)
		assert.Len(s.Entries(), 1)
	}()
	select {
	case <-read:
	case <-time.After(5 * time.Second):
		require.FailNow(t, "reads blocked behind a stalled subscriber")
	}

	// Dropping the subscriber lets the changes through
	stalled.Close()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		require.FailNow(t, "changes still blocked after the subscriber closed")
	}
	assert.Equal(int32(changes), replaced.Load())
}
