package runner

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/cloudbrew/hadoopctl/pkg/errdefs"
	"github.com/cloudbrew/hadoopctl/pkg/metrics"
)

// Runner executes administrative commands as a particular service user.
// Failures are reported as *errdefs.CommandError with captured output
// attached; nothing is retried here.
type Runner interface {
	// Run executes the command and discards output on success.
	Run(ctx context.Context, user string, name string, args ...string) error

	// Output executes the command and returns its combined output. On a
	// non-zero exit the output collected so far is still returned alongside
	// the error, since callers inspect it for liveness substrings.
	Output(ctx context.Context, user string, name string, args ...string) (string, error)
}

// ExecRunner runs commands through su so they pick up the service user's
// identity, with the environment taken from /etc/environment.
type ExecRunner struct {
	// EnvFile is the flat environment file merged into each command's
	// environment. Defaults to /etc/environment.
	EnvFile string
}

func NewExecRunner() *ExecRunner {
	return &ExecRunner{EnvFile: "/etc/environment"}
}

func (r *ExecRunner) Run(ctx context.Context, user string, name string, args ...string) error {
	_, err := r.Output(ctx, user, name, args...)
	return err
}

func (r *ExecRunner) Output(ctx context.Context, user string, name string, args ...string) (string, error) {
	quoted := make([]string, 0, len(args)+1)
	for _, part := range append([]string{name}, args...) {
		quoted = append(quoted, "'"+part+"'")
	}
	cmdline := strings.Join(quoted, " ")

	cmd := exec.CommandContext(ctx, "su", user, "-c", cmdline)
	cmd.Env = flatten(ReadEnvironment(r.EnvFile))

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	start := time.Now()
	err := cmd.Run()
	metrics.CommandDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.CommandsTotal.WithLabelValues(name, "error").Inc()
		return buf.String(), errdefs.NewCommandError(
			fmt.Sprintf("%s %s", name, strings.Join(args, " ")), buf.String(), err)
	}
	metrics.CommandsTotal.WithLabelValues(name, "ok").Inc()
	return buf.String(), nil
}

// ReadEnvironment reads a flat KEY=value environment file, plus any *_proxy
// variables from the process environment so commands behind a proxy keep
// working. Quotes around values are stripped.
func ReadEnvironment(path string) map[string]string {
	env := make(map[string]string)

	for _, kv := range os.Environ() {
		key, value, _ := strings.Cut(kv, "=")
		if strings.HasSuffix(strings.ToLower(key), "_proxy") {
			env[key] = value
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return env
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		env[strings.TrimSpace(key)] = strings.Trim(strings.TrimSpace(value), `'"`)
	}
	return env
}

func flatten(env map[string]string) []string {
	out := make([]string, 0, len(env))
	for key, value := range env {
		out = append(out, key+"="+value)
	}
	return out
}
