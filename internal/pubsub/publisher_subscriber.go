package pubsub

import (
	"errors"
	"sync"

	"github.com/yt2ig/yt2ig/internal/sync_"
)

const (
	DefaultPublisherBufSize  = 1
	DefaultSubscriberBufSize = 1
)

var (
	ErrPublisherClosed = errors.New("publisher closed")
)

// Publisher fans each sent message out to every subscriber, in the order they were sent. A message only goes to the
// subscribers registered when it was sent, so a new subscriber never sees anything older than its subscription.
type Publisher[T any] interface {
	SenderCloser[T]
	// AddSubscriber registers s to receive messages. If close is true, s is closed when the publisher is closed.
	AddSubscriber(s SenderCloser[T], close bool) error
	Subscribe() (ReceiverCloser[T], error)
	SubscribeBufSize(int) (ReceiverCloser[T], error)
}

type subscriberSet[T any] map[SenderCloser[T]]bool

// delivery is a queued message along with who it is for.
type delivery[T any] struct {
	msg         T
	subscribers subscriberSet[T]
}

type publisher[T any] struct {
	mu          sync.Mutex
	ch          Channel[delivery[T]]
	running     sync.WaitGroup // Goroutines in progress
	pending     sync.WaitGroup // Messages not yet sent to all their subscribers
	subscribers *sync_.Mutexed[subscriberSet[T]]
	closed      bool
}

func NewPublisher[T any]() Publisher[T] {
	return NewPublisherBufSize[T](DefaultPublisherBufSize)
}

func NewPublisherBufSize[T any](bufSize int) Publisher[T] {
	p := &publisher[T]{
		ch:          NewChannel[delivery[T]](bufSize),
		subscribers: sync_.NewMutexed(make(subscriberSet[T])),
	}
	p.running.Add(1)
	go p.run()
	return p
}

func (p *publisher[T]) run() {
	defer p.running.Done()
	for d := range p.ch.Receive() {
		for s := range d.subscribers {
			if ok := s.Send(d.msg); !ok {
				p.unsubscribe(s)
			}
		}
		p.pending.Done()
	}
}

func (p *publisher[T]) snapshot(clear bool) subscriberSet[T] {
	res := make(subscriberSet[T])
	_ = p.subscribers.Locked(func(subscribers *subscriberSet[T]) error {
		for s, c := range *subscribers {
			res[s] = c
		}
		if clear {
			*subscribers = make(subscriberSet[T])
		}
		return nil
	})
	return res
}

// Send queues msg for the current subscribers (non-blocking while there is buffer space).
func (p *publisher[T]) Send(msg T) bool {
	p.pending.Add(1)
	if ok := p.ch.Send(delivery[T]{msg: msg, subscribers: p.snapshot(false)}); !ok {
		// Never queued, so nothing to wait for
		p.pending.Done()
		return false
	}
	return true
}

func (p *publisher[T]) Subscribe() (ReceiverCloser[T], error) {
	return p.SubscribeBufSize(DefaultSubscriberBufSize)
}

func (p *publisher[T]) SubscribeBufSize(bufSize int) (ReceiverCloser[T], error) {
	s := NewChannel[T](bufSize)
	if err := p.AddSubscriber(s, true); err != nil {
		return nil, err
	}
	return s, nil
}

func (p *publisher[T]) AddSubscriber(s SenderCloser[T], close bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPublisherClosed
	}
	return p.subscribers.Locked(func(subscribers *subscriberSet[T]) error {
		(*subscribers)[s] = close
		return nil
	})
}

func (p *publisher[T]) unsubscribe(s SenderCloser[T]) {
	_ = p.subscribers.Locked(func(subscribers *subscriberSet[T]) error {
		delete(*subscribers, s)
		return nil
	})
}

// Close idempotently shuts down the publisher, after flushing queued messages to subscribers.
func (p *publisher[T]) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.ch.Close()
	p.pending.Wait()
	p.running.Wait()
	for s, close := range p.snapshot(true) {
		if close {
			s.Close()
		}
	}
	p.closed = true
}

func (p *publisher[T]) Closed() <-chan struct{} {
	return p.ch.Closed()
}
