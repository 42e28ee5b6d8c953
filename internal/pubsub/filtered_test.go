package pubsub

import (
	"strings"
	"testing"

	assert_ "github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hasPrefix(prefix string) func(string) bool {
	return func(s string) bool { return strings.HasPrefix(s, prefix) }
}

func TestFilteredSender(t *testing.T) {
	assert := assert_.New(t)
	ch := NewChannel[string](4)
	filtered := NewFilteredSender[string](ch, hasPrefix("a:"))

	// Dropped messages still count as accepted
	for _, msg := range []string{"a:pushed", "b:pushed", "a:replaced", "b:removed"} {
		assert.True(filtered.Send(msg))
	}
	assert.Equal("a:pushed", <-ch.Receive())
	assert.Equal("a:replaced", <-ch.Receive())
	assertEmpty[string](t, ch)
}

func TestFilteredSender_NilFilter(t *testing.T) {
	ch := NewChannel[string](1)
	assert_.True(t, NewFilteredSender[string](ch, nil).Send("anything"))
	assert_.Equal(t, "anything", <-ch.Receive())
}

func TestFilteredSender_Closed(t *testing.T) {
	assert := assert_.New(t)
	for name, closeFn := range map[string]func(inner Channel[string], filtered SenderCloser[string]){
		"outer": func(_ Channel[string], filtered SenderCloser[string]) { filtered.Close() },
		"inner": func(inner Channel[string], _ SenderCloser[string]) { inner.Close() },
	} {
		ch := NewChannel[string](1)
		filtered := NewFilteredSender[string](ch, hasPrefix("a:"))
		closeFn(ch, filtered)
		<-filtered.Closed()
		// Even messages the filter would drop are refused once closed
		assert.False(filtered.Send("a:x"), name)
		assert.False(filtered.Send("b:x"), name)
	}
}

func TestFilteredSender_Publisher(t *testing.T) {
	assert := assert_.New(t)
	pub := NewPublisherBufSize[string](4)
	all, err := pub.SubscribeBufSize(16)
	require.NoError(t, err)
	onlyA := NewChannel[string](16)
	require.NoError(t, pub.AddSubscriber(NewFilteredSender[string](onlyA, hasPrefix("a:")), true))

	for _, msg := range []string{"a:1", "b:1", "a:2", "b:2", "a:3"} {
		pub.Send(msg)
	}
	pub.Close()

	var received, receivedA []string
	for msg := range all.Receive() {
		received = append(received, msg)
	}
	for msg := range onlyA.Receive() {
		receivedA = append(receivedA, msg)
	}
	assert.Equal([]string{"a:1", "b:1", "a:2", "b:2", "a:3"}, received)
	assert.Equal([]string{"a:1", "a:2", "a:3"}, receivedA)
}
