//go:build !windows

package shutdown

import (
	"os/signal"
	"syscall"
	"testing"
	"time"
)

func TestChannelReceivesHangup(t *testing.T) {
	ch := Channel()
	defer signal.Reset(syscall.SIGHUP)
	if err := syscall.Kill(syscall.Getpid(), syscall.SIGHUP); err != nil {
		t.Fatal(err)
	}
	select {
	case sig := <-ch:
		if sig != syscall.SIGHUP {
			t.Errorf("got %v, want SIGHUP", sig)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no signal delivered")
	}
}
