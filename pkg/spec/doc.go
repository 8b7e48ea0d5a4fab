// Package spec models the identity descriptor exchanged between cooperating
// nodes and the subset-match rule that decides compatibility.
package spec
