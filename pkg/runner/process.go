package runner

import (
	"os/exec"
	"strings"
)

// JavaProcessPattern builds the pgrep pattern for a named Java process. The
// first character of the name is wrapped in a character class so the pgrep
// invocation does not match itself.
func JavaProcessPattern(name string) string {
	if name == "" {
		return ""
	}
	return `^[^ ]*java .*[` + name[:1] + `]` + name[1:]
}

// JavaPIDs returns the PIDs of named Java processes for any user. A process
// that is not running is an empty result, not an error.
func JavaPIDs(name string) []string {
	out, err := exec.Command("sudo", "pgrep", "-f", JavaProcessPattern(name)).Output()
	if err != nil {
		return nil
	}
	var pids []string
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		if line != "" {
			pids = append(pids, line)
		}
	}
	return pids
}
