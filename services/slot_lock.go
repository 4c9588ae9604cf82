package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrSlotBusy is returned when a slot lease could not be taken in time.
var ErrSlotBusy = errors.New("slot is being booked by another request")

// SlotLocker serialises booking attempts for one (table, date, time) slot.
// It narrows the race window; the unique slot index in the database is what
// finally rejects a double booking.
type SlotLocker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

func slotKey(tableID uint, date, clock string) string {
	return fmt.Sprintf("%d|%s|%s", tableID, date, clock)
}

// LocalSlotLocker is a keyed mutex for a single process.
type LocalSlotLocker struct {
	mu    sync.Mutex
	slots map[string]*slotMutex
}

type slotMutex struct {
	ch   chan struct{}
	refs int
}

func NewLocalSlotLocker() *LocalSlotLocker {
	return &LocalSlotLocker{slots: make(map[string]*slotMutex)}
}

func (l *LocalSlotLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	m, ok := l.slots[key]
	if !ok {
		m = &slotMutex{ch: make(chan struct{}, 1)}
		l.slots[key] = m
	}
	m.refs++
	l.mu.Unlock()

	select {
	case m.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(key, m)
		return nil, ErrSlotBusy
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-m.ch
			l.release(key, m)
		})
	}, nil
}

func (l *LocalSlotLocker) release(key string, m *slotMutex) {
	l.mu.Lock()
	defer l.mu.Unlock()
	m.refs--
	if m.refs == 0 {
		delete(l.slots, key)
	}
}

// releaseScript deletes the lease only when it still carries our token.
var releaseScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

// RedisSlotLocker takes a short lease per slot so several API instances
// serialise on the same booking.
type RedisSlotLocker struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	poll   time.Duration
}

func NewRedisSlotLocker(client *redis.Client, ttl time.Duration) *RedisSlotLocker {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &RedisSlotLocker{client: client, prefix: "reservation:slot:", ttl: ttl, poll: 25 * time.Millisecond}
}

func (l *RedisSlotLocker) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := l.prefix + key
	token := uuid.NewString()

	ticker := time.NewTicker(l.poll)
	defer ticker.Stop()
	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ErrSlotBusy
			}
			return nil, storageError("acquire slot lease", err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ErrSlotBusy
		case <-ticker.C:
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// Release on a fresh context: the request may already be done.
			rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = releaseScript.Run(rctx, l.client, []string{redisKey}, token).Err()
		})
	}, nil
}
