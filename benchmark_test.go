package loom_test

import (
	"context"
	"testing"

	"github.com/loomlog/loom"
)

func benchmarkRunner(b *testing.B, min loom.Level, f func(*loom.Logger, context.Context)) {
	reg := loom.NewRegistry(
		loom.WithConfig(&loom.Config{MinimumLevel: min}),
		loom.WithProvider(loom.ProviderFunc(func(*loom.Record) error { return nil })),
	)
	log := reg.Logger("bench")
	ctx := context.Background()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		f(log, ctx)
	}
}

var (
	plainMessage = func(log *loom.Logger, ctx context.Context) {
		log.Info(ctx, "ready")
	}
	templateMessage = func(log *loom.Logger, ctx context.Context) {
		log.Info(ctx, "order {OrderId} for amount {Amount}", "ORD-1", 42.5)
	}
	destructuredMessage = func(log *loom.Logger, ctx context.Context) {
		log.Info(ctx, "shipped {@Parcel}", parcel{ID: "P-1", Weight: 2.5})
	}
)

func BenchmarkSuppressedLevel(b *testing.B) {
	benchmarkRunner(b, loom.LevelError, templateMessage)
}

func BenchmarkPlainMessage(b *testing.B) {
	benchmarkRunner(b, loom.LevelTrace, plainMessage)
}

func BenchmarkTemplateMessage(b *testing.B) {
	benchmarkRunner(b, loom.LevelTrace, templateMessage)
}

func BenchmarkDestructuredMessage(b *testing.B) {
	benchmarkRunner(b, loom.LevelTrace, destructuredMessage)
}

func BenchmarkScopedMessage(b *testing.B) {
	benchmarkRunner(b, loom.LevelTrace, func(log *loom.Logger, ctx context.Context) {
		sctx, scope := log.BeginScope(ctx, "TransactionId", "TXN-42")
		log.Info(sctx, "inside")
		scope.End()
	})
}

func BenchmarkEnabledCheck(b *testing.B) {
	reg := loom.NewRegistry(loom.WithConfig(&loom.Config{
		MinimumLevel: loom.LevelInfo,
		Category:     map[string]loom.Level{"bench.sub": loom.LevelWarn},
	}))
	log := reg.Logger("bench.sub.deep")
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		log.Enabled(loom.LevelInfo)
	}
}
