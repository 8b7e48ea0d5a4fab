/*
Package log provides structured logging for hadoopctl using zerolog.

The log package wraps the zerolog library to provide JSON-structured logging
with component-specific loggers, configurable log levels, and helper functions
for common logging patterns. All logs include timestamps and support filtering
by severity level.

# Usage

Initializing the Logger:

	// JSON output (production)
	log.Init(log.Config{
		Level:      log.InfoLevel,
		JSONOutput: true,
		Output:     os.Stdout,
	})

Simple Logging:

	log.Info("NameNode formatted")
	log.Error("Failed to reach ResourceManager")

Structured Logging:

	log.Logger.Info().
		Str("role", "namenode").
		Str("host", "nn-0").
		Msg("Transitioned to active")

Component Loggers:

	haLog := log.WithComponent("hacoord")
	haLog.Info().Msg("Bootstrapping standby NameNode")

# Integration Points

This package integrates with:

  - pkg/hacoord: logs HA state transitions and administrative commands
  - pkg/distconfig: logs user/group/directory materialization
  - pkg/relation: logs readiness evaluation and spec checks
  - pkg/wait: logs polling progress and timeouts
*/
package log
