package confedit

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/cloudbrew/hadoopctl/pkg/metrics"
)

// ReplaceLines performs in-place regex substitution edits on a file. For each
// line, every (pattern, replacement) pair whose pattern matches the line is
// substituted. With appendMissing, patterns that matched no line anywhere in
// the file have their replacement appended as a literal line at end-of-file.
//
// This is for single-value edits inside otherwise opaque files, such as one
// environment variable assignment in hadoop-env.sh, where full structured
// parsing would be overkill.
func ReplaceLines(path string, subs map[string]string, appendMissing bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	patterns := make([]string, 0, len(subs))
	compiled := make(map[string]*regexp.Regexp, len(subs))
	for pat := range subs {
		re, err := regexp.Compile(pat)
		if err != nil {
			return fmt.Errorf("bad pattern %q: %w", pat, err)
		}
		patterns = append(patterns, pat)
		compiled[pat] = re
	}
	sort.Strings(patterns)

	content := string(data)
	trailingNewline := strings.HasSuffix(content, "\n")
	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")

	matched := make(map[string]bool, len(subs))
	for i, line := range lines {
		for _, pat := range patterns {
			re := compiled[pat]
			if re.MatchString(line) {
				matched[pat] = true
				line = re.ReplaceAllString(line, subs[pat])
			}
		}
		lines[i] = line
	}

	if appendMissing {
		trailingNewline = true
		for _, pat := range patterns {
			if !matched[pat] {
				lines = append(lines, subs[pat])
			}
		}
	}

	out := strings.Join(lines, "\n")
	if trailingNewline {
		out += "\n"
	}

	mode := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode()
	}
	if err := os.WriteFile(path, []byte(out), mode); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	metrics.ConfigEdits.WithLabelValues("line").Inc()
	return nil
}
