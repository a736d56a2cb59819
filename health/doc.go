// Package health reports whether the logging pipeline behind a server is
// usable.
//
// An Aggregator runs named Checkers in parallel under one deadline. The
// checks shipped here probe the pieces an invocation depends on:
//
//	agg := health.NewAggregator()
//	agg.Register(health.NewAspectProbe(a))
//	agg.Register(health.NewLoggerCheck(logger, observe.LevelInfo))
//
//	health.Register(e, agg) // GET /healthz, /readyz, /health, /health/:name
package health
