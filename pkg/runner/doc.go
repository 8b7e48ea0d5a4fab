/*
Package runner executes administrative commands as Hadoop service users.

Commands run through su with the environment read from /etc/environment, the
way the Hadoop daemons themselves expect to be invoked. A non-zero exit is
wrapped in an errdefs.CommandError carrying the combined output, which callers
inspect for liveness substrings ("Safe mode is OFF", "connection refused")
instead of parsing structured output the tools do not provide.

The package also knows how to find named Java processes in the process table,
used to make start operations idempotent.
*/
package runner
