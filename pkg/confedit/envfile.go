package confedit

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/cloudbrew/hadoopctl/pkg/metrics"
)

// EnvSession is a scoped edit over a flat KEY=value environment file such as
// /etc/environment. Unlike the XML editor this is not a diff: the entire file
// is regenerated from the final map on Close, with every value double-quoted
// regardless of how it was quoted on read. Existing keys keep their on-disk
// order; new keys are appended sorted.
type EnvSession struct {
	path   string
	order  []string
	env    map[string]string
	closed bool
}

// OpenEnvironment starts an edit session on a flat environment file. A
// missing file is treated as empty.
func OpenEnvironment(path string) (*EnvSession, error) {
	s := &EnvSession{
		path: path,
		env:  make(map[string]string),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read environment file: %w", err)
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
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `'"`)
		if _, seen := s.env[key]; !seen {
			s.order = append(s.order, key)
		}
		s.env[key] = value
	}
	return s, nil
}

// Env returns the mutable key/value view of the file.
func (s *EnvSession) Env() map[string]string {
	return s.env
}

// Close regenerates the whole file from the final map. Closing twice is a
// no-op.
func (s *EnvSession) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var sb strings.Builder
	written := make(map[string]bool, len(s.env))
	for _, key := range s.order {
		value, present := s.env[key]
		if !present {
			continue
		}
		fmt.Fprintf(&sb, "%s=\"%s\"\n", key, value)
		written[key] = true
	}
	var added []string
	for key := range s.env {
		if !written[key] {
			added = append(added, key)
		}
	}
	sort.Strings(added)
	for _, key := range added {
		fmt.Fprintf(&sb, "%s=\"%s\"\n", key, s.env[key])
	}

	if err := os.WriteFile(s.path, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("failed to write environment file: %w", err)
	}
	metrics.ConfigEdits.WithLabelValues("env").Inc()
	return nil
}

// EditEnvironment runs fn against the mutable view of path and rewrites the
// file on every exit path.
func EditEnvironment(path string, fn func(env map[string]string) error) (err error) {
	s, err := OpenEnvironment(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); err == nil {
			err = cerr
		}
	}()
	return fn(s.Env())
}
