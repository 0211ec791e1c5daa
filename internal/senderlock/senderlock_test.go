package senderlock_test

import (
	"testing"
	"time"

	"pennywise/internal/senderlock"
)

func TestLock_SameKeyIsExclusive(t *testing.T) {
	locks := senderlock.New()

	unlock := locks.Lock("919876543210")

	acquired := make(chan struct{})
	go func() {
		u := locks.Lock("919876543210")
		close(acquired)
		u()
	}()

	select {
	case <-acquired:
		t.Fatal("second holder acquired the lock while the first still held it")
	case <-time.After(50 * time.Millisecond):
	}

	unlock()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second holder never acquired the lock after release")
	}
}

func TestLock_DifferentKeysDoNotBlock(t *testing.T) {
	locks := senderlock.New()

	unlockA := locks.Lock("sender-a")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		u := locks.Lock("sender-b")
		u()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("independent senders must not serialize against each other")
	}
}

func TestLock_Reentry(t *testing.T) {
	locks := senderlock.New()
	for i := 0; i < 3; i++ {
		unlock := locks.Lock("sender")
		unlock()
	}
}
