package cancellation_test

import (
	"sync"
	"testing"
	"time"

	"xnmp/internal/cancellation"
)

func TestTokenFiresOnce(t *testing.T) {
	token := cancellation.NewToken()
	if token.Fired() {
		t.Fatal("fresh token reports fired")
	}

	token.Fire()
	token.Fire()

	if !token.Fired() {
		t.Fatal("token not fired after Fire")
	}
	select {
	case <-token.Done():
	default:
		t.Fatal("Done channel not closed after Fire")
	}
}

func TestTokenWakesAllWaiters(t *testing.T) {
	token := cancellation.NewToken()

	const waiters = 8
	var wg sync.WaitGroup
	wg.Add(waiters)
	for i := 0; i < waiters; i++ {
		go func() {
			defer wg.Done()
			<-token.Done()
		}()
	}

	token.Fire()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("waiters did not observe fired token")
	}
}

func TestTokenConcurrentFire(t *testing.T) {
	token := cancellation.NewToken()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			token.Fire()
		}()
	}
	wg.Wait()

	if !token.Fired() {
		t.Fatal("token not fired")
	}
}
