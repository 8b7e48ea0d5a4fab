package hosts

import (
	"fmt"
	"net"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/cloudbrew/hadoopctl/pkg/log"
	"github.com/cloudbrew/hadoopctl/pkg/statestore"
)

// managedMarker tags the /etc/hosts lines this tool owns. Unmarked lines are
// passed through untouched on every rewrite.
const managedMarker = "# HADOOPCTL MANAGED"

// storePrefix namespaces host entries inside the state store.
const storePrefix = "etc_host."

var (
	ipPat         = regexp.MustCompile(`^\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}$`)
	containsIPPat = regexp.MustCompile(`\d{1,3}[-.]\d{1,3}[-.]\d{1,3}[-.]\d{1,3}`)
)

// Manager keeps the managed host entries in the persistent store and renders
// them into an /etc/hosts style file. Hadoop requires that every cluster
// member resolves every other member's hostname consistently, which cloud
// DNS rarely guarantees.
type Manager struct {
	store statestore.Store
	path  string
}

func NewManager(store statestore.Store, path string) *Manager {
	return &Manager{store: store, path: path}
}

// Hosts returns the managed IP to hostname mapping.
func (m *Manager) Hosts() (map[string]string, error) {
	return m.store.GetRange(storePrefix)
}

// UpdateHost records one managed entry, first dropping any other IP mapped to
// the same hostname so a host has exactly one address.
func (m *Manager) UpdateHost(ip, hostname string) error {
	if err := m.RemoveHosts(hostname); err != nil {
		return err
	}
	return m.store.Set(storePrefix+ip, hostname)
}

// UpdateHosts records a batch of managed entries.
func (m *Manager) UpdateHosts(ipsToNames map[string]string) error {
	for ip, name := range ipsToNames {
		if err := m.UpdateHost(ip, name); err != nil {
			return err
		}
	}
	return nil
}

// RemoveHosts drops every managed IP for the given hostnames.
func (m *Manager) RemoveHosts(hostnames ...string) error {
	known, err := m.Hosts()
	if err != nil {
		return err
	}
	var remove []string
	for ip, name := range known {
		for _, h := range hostnames {
			if name == h {
				remove = append(remove, ip)
			}
		}
	}
	return m.store.UnsetRange(storePrefix, remove...)
}

// Apply rewrites the hosts file from the store: unmanaged lines pass through
// unchanged, managed entries are re-rendered at the end. An entry whose IP
// does not look like one is written commented out rather than silently
// dropped.
func (m *Manager) Apply() error {
	managed, err := m.Hosts()
	if err != nil {
		return err
	}
	hostsLog := log.WithComponent("hosts")
	hostsLog.Debug().
		Int("entries", len(managed)).
		Msg("Rewriting hosts file from store")

	var lines []string
	if data, err := os.ReadFile(m.path); err == nil {
		for _, line := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
			if !strings.Contains(line, managedMarker) {
				lines = append(lines, line)
			}
		}
	}

	names := make(map[string]string, len(managed))
	for ip, name := range managed {
		names[name] = ip
	}
	for _, name := range sortedKeys(names) {
		ip := names[name]
		line := fmt.Sprintf("%s %s  %s", ip, name, managedMarker)
		if !ipPat.MatchString(ip) {
			line = "# " + line + " (INVALID IP)"
		}
		lines = append(lines, line)
	}

	return os.WriteFile(m.path, []byte(strings.Join(lines, "\n")+"\n"), 0644)
}

// ResolvePrivateAddress turns a private-address value into an IP: already an
// IP, resolvable via DNS, or as a last resort guessed from an IP embedded in
// the name (the ip-10-0-0-1 convention).
func ResolvePrivateAddress(addr string) (string, error) {
	if ipPat.MatchString(addr) {
		return addr, nil
	}
	if ips, err := net.LookupHost(addr); err == nil && len(ips) > 0 {
		return ips[0], nil
	}
	contained := containsIPPat.FindString(addr)
	if contained == "" {
		return "", fmt.Errorf("unable to resolve or guess IP from private-address: %s", addr)
	}
	return strings.ReplaceAll(contained, "-", "."), nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
