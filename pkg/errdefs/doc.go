/*
Package errdefs defines the error taxonomy shared across hadoopctl.

Four error kinds matter to callers and are distinguishable with the Is*
helpers:

  - ConfigError: malformed descriptor, fatal at load time
  - CompatibilityError: permanent spec mismatch between cooperating nodes
  - TimeoutError: a bounded readiness wait expired
  - CommandError: non-zero exit from an administrative command, output attached

Everything else propagates as plain wrapped errors.
*/
package errdefs
