/*
Package wait implements the blocking readiness loops used during cluster
bring-up: waiting for a remote endpoint to accept TCP connections, for HDFS
to leave safe mode with live DataNodes, or for a named Java process to appear
in the process table.

Each wait polls at a fixed interval and is bounded by an explicit timeout,
after which an errdefs.TimeoutError is returned; nothing here blocks
indefinitely. Waits are plain synchronous loops with no cancellation, since a
node process drives a single lifecycle at a time.
*/
package wait
