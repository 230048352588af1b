package zerolog_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"github.com/loomlog/loom"
	adapter "github.com/loomlog/loom/zerolog"
)

func newCapture(buf *bytes.Buffer, opts ...adapter.Option) *loom.Registry {
	zl := zerolog.New(buf)
	return loom.NewRegistry(
		loom.WithConfig(&loom.Config{MinimumLevel: loom.LevelTrace}),
		loom.WithProvider(adapter.NewProvider(&zl, opts...)),
	)
}

func decode(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	out := map[string]interface{}{}
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal %q: %v", buf.String(), err)
	}
	return out
}

func TestProviderForwards(t *testing.T) {
	t.Parallel()
	buf := &bytes.Buffer{}
	reg := newCapture(buf)
	log := reg.Logger("svc.orders")

	ctx, scope := log.BeginScope(context.Background(), "TransactionId", "TXN-42")
	defer scope.End()
	log.Info(ctx, "Processing order {OrderId}", "ORD-100")

	out := decode(t, buf)
	if want, have := "Processing order ORD-100", out["message"]; want != have {
		t.Errorf("want message %q, have %q", want, have)
	}
	if want, have := "info", out["level"]; want != have {
		t.Errorf("want level %q, have %q", want, have)
	}
	if want, have := "svc.orders", out["category"]; want != have {
		t.Errorf("want category %q, have %q", want, have)
	}
	if want, have := "TXN-42", out["TransactionId"]; want != have {
		t.Errorf("want TransactionId %q, have %q", want, have)
	}
	if want, have := "ORD-100", out["OrderId"]; want != have {
		t.Errorf("want OrderId %q, have %q", want, have)
	}
	if want, have := "Processing order {OrderId}", out["OriginalFormat"]; want != have {
		t.Errorf("want OriginalFormat %q, have %q", want, have)
	}
	if want, have := float64(1), out["sequence"]; want != have {
		t.Errorf("want sequence %v, have %v", want, have)
	}
}

func TestProviderLevels(t *testing.T) {
	t.Parallel()
	for _, tc := range []struct {
		level loom.Level
		want  string
	}{
		{loom.LevelTrace, "trace"},
		{loom.LevelDebug, "debug"},
		{loom.LevelInfo, "info"},
		{loom.LevelWarn, "warn"},
		{loom.LevelError, "error"},
		{loom.LevelCrit, "fatal"},
	} {
		buf := &bytes.Buffer{}
		newCapture(buf).Logger("svc").Log(context.Background(), tc.level, "ping")

		out := decode(t, buf)
		if have := out["level"]; tc.want != have {
			t.Errorf("%v: want zerolog level %q, have %q", tc.level, tc.want, have)
		}
	}
}

func TestProviderCritDoesNotExit(t *testing.T) {
	t.Parallel()
	buf := &bytes.Buffer{}
	newCapture(buf).Logger("svc").Crit(context.Background(), "meltdown")

	// Reaching this line proves the fatal label carries no os.Exit.
	out := decode(t, buf)
	if want, have := "meltdown", out["message"]; want != have {
		t.Errorf("want message %q, have %q", want, have)
	}
}

func TestProviderException(t *testing.T) {
	t.Parallel()
	buf := &bytes.Buffer{}
	reg := newCapture(buf)

	cause := fmt.Errorf("connection refused")
	err := fmt.Errorf("store order: %w", cause)
	reg.Logger("svc").WithError(err).Error(context.Background(), "persist")

	out := decode(t, buf)
	if want, have := "store order: connection refused", out["error"]; want != have {
		t.Errorf("want error %q, have %q", want, have)
	}
	chain, ok := out["error_chain"].([]interface{})
	if !ok {
		t.Fatalf("want error_chain array, have %#v", out["error_chain"])
	}
	if want, have := 2, len(chain); want != have {
		t.Fatalf("want %d chain links, have %d: %v", want, have, chain)
	}
	if want, have := "connection refused", chain[1]; want != have {
		t.Errorf("want innermost link %q, have %q", want, have)
	}
	if out["error_type"] == "" {
		t.Error("want an error_type field")
	}
}

func TestProviderEvent(t *testing.T) {
	t.Parallel()
	buf := &bytes.Buffer{}
	newCapture(buf).Logger("svc").Event(2001).Warn(context.Background(), "slow response")

	out := decode(t, buf)
	if want, have := float64(2001), out["event"]; want != have {
		t.Errorf("want event %v, have %v", want, have)
	}
}

func TestProviderMinLevel(t *testing.T) {
	t.Parallel()
	buf := &bytes.Buffer{}
	reg := newCapture(buf, adapter.WithMinLevel(loom.LevelError))
	log := reg.Logger("svc")
	ctx := context.Background()

	log.Warn(ctx, "below the floor")
	if buf.Len() != 0 {
		t.Fatalf("want nothing forwarded below the floor, have %q", buf.String())
	}

	log.Error(ctx, "at the floor")
	if buf.Len() == 0 {
		t.Error("want the error record forwarded")
	}
}
