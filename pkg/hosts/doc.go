// Package hosts maintains the managed /etc/hosts entries that keep hostname
// resolution consistent across cluster members, persisting the authoritative
// mapping in the state store and rewriting only the lines it owns.
package hosts
