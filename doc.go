// Package loom provides leveled, structured logging built around
// message templates, ambient scopes, and fan-out dispatch to pluggable
// providers.
//
// Basic Usage
//
// A Registry owns providers and configuration; category loggers are
// handles onto it:
//
//	reg := loom.NewRegistry(
//		loom.WithConfig(&loom.Config{MinimumLevel: loom.LevelDebug}),
//	)
//	reg.RegisterProvider(term.NewProvider(os.Stderr, reg.Config()))
//
//	log := reg.Logger("svc.billing")
//	log.Info(ctx, "Processing order {OrderId} for amount {Amount}", orderID, amount)
//
// The template is rendered once into the record's Message, and each
// placeholder becomes a named state entry alongside the OriginalFormat
// entry, so sinks can index by argument value or by message shape.
//
// Structured Capture
//
// A placeholder captures its argument as an opaque scalar. Prefixing
// the name with @ decomposes the argument through the Fielder
// interface instead:
//
//	log.Info(ctx, "Shipped {@Parcel}", parcel)
//
// Only types that implement Fielder are decomposed. Expansion is
// recursive, bounded in depth, and cycle-safe.
//
// Scopes
//
// BeginScope pushes ambient fields onto the context; every record
// emitted with that context carries them until the scope ends:
//
//	ctx, scope := log.BeginScope(ctx, "TransactionId", "TXN-42")
//	defer scope.End()
//
// Scopes nest and must end innermost first. Ending out of order is
// reported to the registry's error handler, not honored.
//
// Providers
//
// Anything implementing Provider can be registered. Every enabled
// provider receives every record in registration order; a provider
// that fails or panics is isolated and reported, and the rest still
// run. Decorators compose: NewAsyncProvider buffers a slow sink,
// NewRateLimitedProvider caps a noisy one.
//
// Configuration
//
// The registry's ConfigCell holds an immutable configuration
// generation. Replace installs a new generation atomically while
// logging continues; per-category thresholds use longest-prefix
// matching on dotted names.
//
// Concurrent Safety
//
// Loggers, the registry, and the configuration cell are safe for
// concurrent use. Records handed to providers are immutable.
//
// Testing
//
// Package collect provides a capturing provider for asserting on
// emitted records in tests.
package loom
