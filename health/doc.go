// Package health reports liveness of the pipeline's supporting
// infrastructure: cache store occupancy and janitor sweep freshness.
//
// A Checker probes one component and returns a Result graded Healthy,
// Degraded, or Unhealthy. StoreChecker watches the entry count of a
// cache store against configured thresholds; JanitorChecker watches how
// recently the janitor completed a sweep. Arbitrary probes plug in
// through NewCheckerFunc.
//
// # Aggregation
//
// An Aggregator runs many checkers as one composite check:
//
//	agg := health.NewAggregator(health.AggregatorConfig{})
//	agg.Register("store", storeChecker)
//	agg.Register("janitor", janitorChecker)
//
//	results := agg.CheckAll(ctx)
//	overall := agg.OverallStatus(results)
//
// The overall status is the worst status in the result set: one
// unhealthy component makes the aggregate unhealthy, one degraded
// component degrades it. Checks run in parallel under a shared timeout
// unless the aggregator is configured to run them serially.
package health
