package jobs

import (
	"sync/atomic"
	"testing"
	"time"
)

type countingPurger struct {
	calls atomic.Int32
	ttl   atomic.Int64
}

func (p *countingPurger) PurgeIdle(maxIdle time.Duration) int {
	p.calls.Add(1)
	p.ttl.Store(int64(maxIdle))
	return 1
}

func TestStartSessionSweeperInvalidSchedule(t *testing.T) {
	if _, err := StartSessionSweeper("toda hora", time.Minute, &countingPurger{}, nil); err == nil {
		t.Fatal("esperava erro para agenda inválida")
	}
}

func TestStartSessionSweeperRuns(t *testing.T) {
	purger := &countingPurger{}
	c, err := StartSessionSweeper("@every 1s", 30*time.Minute, purger, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Stop()

	deadline := time.Now().Add(3 * time.Second)
	for purger.calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
	if purger.calls.Load() == 0 {
		t.Fatal("a limpeza não foi executada")
	}
	if got := time.Duration(purger.ttl.Load()); got != 30*time.Minute {
		t.Errorf("ttl = %v", got)
	}
}
