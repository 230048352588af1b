package loom_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/loomlog/loom"
)

func TestFanOutOrder(t *testing.T) {
	t.Parallel()
	var order []string
	tag := func(name string) loom.Provider {
		return loom.ProviderFunc(func(rec *loom.Record) error {
			order = append(order, name)
			return nil
		})
	}
	reg := loom.NewRegistry(loom.WithProvider(tag("first")))
	reg.RegisterProvider(tag("second"))
	reg.RegisterProvider(tag("third"))

	reg.Logger("svc").Info(context.Background(), "fan out")

	if want, have := "first,second,third", strings.Join(order, ","); want != have {
		t.Errorf("want dispatch order %q, have %q", want, have)
	}
}

func TestFailingProviderIsolation(t *testing.T) {
	t.Parallel()
	var failures []error
	var delivered []*loom.Record

	failing := loom.ProviderFunc(func(rec *loom.Record) error {
		return errors.New("sink unavailable")
	})
	panicking := loom.ProviderFunc(func(rec *loom.Record) error {
		panic("sink bug")
	})
	healthy := loom.ProviderFunc(func(rec *loom.Record) error {
		delivered = append(delivered, rec)
		return nil
	})

	reg := loom.NewRegistry(
		loom.WithErrorHandler(loom.ErrorHandlerFunc(func(err error) {
			failures = append(failures, err)
		})),
		loom.WithProvider(failing),
		loom.WithProvider(panicking),
		loom.WithProvider(healthy),
	)

	reg.Logger("svc").Info(context.Background(), "must reach the healthy sink")

	if want, have := 1, len(delivered); want != have {
		t.Fatalf("want %d records at the healthy provider, have %d", want, have)
	}
	if want, have := 2, len(failures); want != have {
		t.Fatalf("want %d reported failures, have %d", want, have)
	}
	if !strings.Contains(failures[0].Error(), "sink unavailable") {
		t.Errorf("want provider error surfaced, have %v", failures[0])
	}
	if !strings.Contains(failures[1].Error(), "panic") || !strings.Contains(failures[1].Error(), "sink bug") {
		t.Errorf("want recovered panic surfaced, have %v", failures[1])
	}
}

func TestProviderEnabledFilter(t *testing.T) {
	t.Parallel()
	var infoCount, errorCount int
	reg := loom.NewRegistry(
		loom.WithProvider(enabledAbove(loom.LevelError, &errorCount)),
		loom.WithProvider(enabledAbove(loom.LevelInfo, &infoCount)),
	)

	log := reg.Logger("svc")
	ctx := context.Background()
	log.Info(ctx, "one")
	log.Error(ctx, "two")

	if want, have := 1, errorCount; want != have {
		t.Errorf("want %d records at the error-only provider, have %d", want, have)
	}
	if want, have := 2, infoCount; want != have {
		t.Errorf("want %d records at the info provider, have %d", want, have)
	}
}

type thresholdProvider struct {
	min   loom.Level
	count *int
}

func enabledAbove(min loom.Level, count *int) loom.Provider {
	return thresholdProvider{min: min, count: count}
}

func (p thresholdProvider) Log(rec *loom.Record) error {
	*p.count++
	return nil
}

func (p thresholdProvider) Enabled(category string, level loom.Level) bool {
	return level >= p.min
}

func TestProvidersShareOneRecord(t *testing.T) {
	t.Parallel()
	var a, b *loom.Record
	reg := loom.NewRegistry(
		loom.WithProvider(loom.ProviderFunc(func(rec *loom.Record) error { a = rec; return nil })),
		loom.WithProvider(loom.ProviderFunc(func(rec *loom.Record) error { b = rec; return nil })),
	)

	reg.Logger("svc").Info(context.Background(), "shared")

	if a == nil || a != b {
		t.Errorf("want both providers to receive the same record, have %p and %p", a, b)
	}
}

func TestDispatchWithoutProviders(t *testing.T) {
	t.Parallel()
	reg := loom.NewRegistry()
	reg.Logger("svc").Info(context.Background(), "nowhere to go")
}

func TestNilProviderPanics(t *testing.T) {
	t.Parallel()
	reg := loom.NewRegistry()
	defer func() {
		if recover() == nil {
			t.Error("want panic on nil provider, have none")
		}
	}()
	reg.RegisterProvider(nil)
}

func TestSequenceAcrossLoggers(t *testing.T) {
	t.Parallel()
	var recs []*loom.Record
	ctx := context.Background()
	reg := capture(&recs)

	a, b := reg.Logger("a"), reg.Logger("b")
	for i := 0; i < 10; i++ {
		a.Info(ctx, "a{N}", i)
		b.Info(ctx, "b{N}", i)
	}

	var last uint64
	for i, rec := range recs {
		if rec.Sequence <= last {
			t.Fatalf("record %d: want sequence > %d, have %d", i, last, rec.Sequence)
		}
		last = rec.Sequence
	}
}

type closerProvider struct {
	loom.Provider
	closed int
	err    error
}

func (c *closerProvider) Close() error {
	c.closed++
	return c.err
}

func TestCloseClosesProviders(t *testing.T) {
	t.Parallel()
	nop := loom.ProviderFunc(func(*loom.Record) error { return nil })
	failing := &closerProvider{Provider: nop, err: fmt.Errorf("flush failed")}
	quiet := &closerProvider{Provider: nop}

	reg := loom.NewRegistry(loom.WithProvider(failing), loom.WithProvider(quiet))

	err := reg.Close()
	if err == nil || !strings.Contains(err.Error(), "flush failed") {
		t.Errorf("want close error surfaced, have %v", err)
	}
	if want, have := 1, failing.closed; want != have {
		t.Errorf("want %d Close calls, have %d", want, have)
	}
	if want, have := 1, quiet.closed; want != have {
		t.Errorf("want %d Close calls, have %d", want, have)
	}

	if err := reg.Close(); err != nil {
		t.Errorf("want idempotent Close, have %v", err)
	}
	if want, have := 1, failing.closed; want != have {
		t.Errorf("want Close once after repeat, have %d", have)
	}
}
