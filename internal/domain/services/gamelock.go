package services

import (
	"context"
	"sync"
)

// GameLocks serializes work per game. Different games never block each other.
type GameLocks struct {
	mu    sync.Mutex
	locks map[int64]*gameLock
}

type gameLock struct {
	sem  chan struct{}
	refs int
}

// NewGameLocks creates an empty lock table.
func NewGameLocks() *GameLocks {
	return &GameLocks{locks: make(map[int64]*gameLock)}
}

// Lock blocks until gameID is free or ctx is done. The returned function
// releases the lock and must be called exactly once.
func (g *GameLocks) Lock(ctx context.Context, gameID int64) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g.mu.Lock()
	l, ok := g.locks[gameID]
	if !ok {
		l = &gameLock{sem: make(chan struct{}, 1)}
		g.locks[gameID] = l
	}
	l.refs++
	g.mu.Unlock()

	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		g.release(gameID, l)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-l.sem
			g.release(gameID, l)
		})
	}, nil
}

// Active returns the number of games with a holder or waiter.
func (g *GameLocks) Active() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.locks)
}

func (g *GameLocks) release(gameID int64, l *gameLock) {
	g.mu.Lock()
	defer g.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(g.locks, gameID)
	}
}
