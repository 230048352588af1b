package loom_test

import (
	"context"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/loomlog/loom"
)

func TestRateLimitedProviderDropsBeyondBurst(t *testing.T) {
	t.Parallel()
	var delivered []*loom.Record
	sink := loom.ProviderFunc(func(rec *loom.Record) error {
		delivered = append(delivered, rec)
		return nil
	})

	// Refill so slowly that only the initial burst passes during the
	// test.
	limited := loom.NewRateLimitedProvider(sink, rate.Every(time.Hour), 3)
	reg := loom.NewRegistry(loom.WithProvider(limited))
	log := reg.Logger("svc")

	ctx := context.Background()
	for i := 0; i < 10; i++ {
		log.Info(ctx, "burst {N}", i)
	}

	if want, have := 3, len(delivered); want != have {
		t.Fatalf("want %d records through the limiter, have %d", want, have)
	}
	if want, have := uint64(7), limited.Dropped(); want != have {
		t.Errorf("want %d drops counted, have %d", want, have)
	}
	// The records that passed are the earliest ones.
	for i, rec := range delivered {
		if want, have := uint64(i+1), rec.Sequence; want != have {
			t.Errorf("record %d: want sequence %d, have %d", i, want, have)
		}
	}
}

func TestRateLimitedProviderEnabled(t *testing.T) {
	t.Parallel()
	var n int
	limited := loom.NewRateLimitedProvider(enabledAbove(loom.LevelWarn, &n), rate.Inf, 0)

	if limited.Enabled("svc", loom.LevelDebug) {
		t.Error("want Enabled to defer to the wrapped provider")
	}
	if !limited.Enabled("svc", loom.LevelCrit) {
		t.Error("want crit level enabled")
	}
}

func TestRateLimitedProviderClose(t *testing.T) {
	t.Parallel()
	nop := loom.ProviderFunc(func(*loom.Record) error { return nil })
	closer := &closerProvider{Provider: nop}
	limited := loom.NewRateLimitedProvider(closer, rate.Inf, 0)

	if err := limited.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if want, have := 1, closer.closed; want != have {
		t.Errorf("want wrapped provider closed %d time, have %d", want, have)
	}
}
