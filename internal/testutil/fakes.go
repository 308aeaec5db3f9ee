package testutil

import (
	"context"
	"sync"
	"time"
)

// MemLocker is an in-process Locker. Set Err to simulate a lock backend outage.
type MemLocker struct {
	mu    sync.Mutex
	held  map[string]string
	Err   error
	Calls int
}

func NewMemLocker() *MemLocker {
	return &MemLocker{held: map[string]string{}}
}

func (l *MemLocker) AcquireLock(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.Calls++
	if l.Err != nil {
		return false, l.Err
	}
	if _, ok := l.held[key]; ok {
		return false, nil
	}
	l.held[key] = value
	return true, nil
}

func (l *MemLocker) ReleaseLock(ctx context.Context, key, value string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.held[key] == value {
		delete(l.held, key)
	}
	return nil
}

// Hold pins key to a foreign owner so every acquire attempt fails.
func (l *MemLocker) Hold(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.held[key] = "someone-else"
}

type Message struct {
	Key   []byte
	Value []byte
}

// MemPublisher records published messages.
type MemPublisher struct {
	mu       sync.Mutex
	Messages []Message
	Err      error
}

func (p *MemPublisher) Publish(ctx context.Context, key, value []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.Messages = append(p.Messages, Message{Key: key, Value: value})
	return nil
}

func (p *MemPublisher) Snapshot() []Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Message(nil), p.Messages...)
}
