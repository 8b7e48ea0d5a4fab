// Package hacoord coordinates the install and high-availability lifecycle
// of the Hadoop services on a single node.
//
// Operations that are destructive when repeated are guarded by durable flags
// in the node's state store, so each runs at most once per node no matter how
// often the coordinator is re-invoked; the remainder are idempotent at the
// command level. Together they form a forward-only progression for a
// NameNode:
//
//	UNINITIALIZED -> FORMATTED -> SHARED_EDITS_READY -> STANDBY_BOOTSTRAPPED -> ACTIVE | STANDBY
//
// There is no reverse path; flags are never cleared.
//
// Failover management covers exactly two NameNodes. EnsureHAActive rejects
// any other candidate count with errdefs.ErrNotTwoNodes rather than guess
// at quorum semantics this package does not implement.
package hacoord
