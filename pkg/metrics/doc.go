/*
Package metrics exposes Prometheus metrics for hadoopctl.

Counters and histograms cover the three places where time is actually spent
on a node: administrative command executions (pkg/runner), readiness polling
loops (pkg/wait), and configuration file rewrites (pkg/confedit). Metrics are
registered on the default registry; Handler() serves them over HTTP.
*/
package metrics
