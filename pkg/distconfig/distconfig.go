package distconfig

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"

	"github.com/cloudbrew/hadoopctl/pkg/errdefs"
	"github.com/cloudbrew/hadoopctl/pkg/log"
)

// maxResolveDepth bounds placeholder substitution so cyclic directory
// references fail instead of looping forever.
const maxResolveDepth = 100

var placeholderPat = regexp.MustCompile(`\{(config|dirs)\[([^\]]+)\]\}`)

// UserSpec declares one OS user. The first group is primary, the rest
// secondary.
type UserSpec struct {
	Groups []string `yaml:"groups"`
}

// DirSpec declares one logical directory. Path may contain {config[...]} and
// {dirs[...]} placeholders resolved by Path().
type DirSpec struct {
	Path  string `yaml:"path"`
	Owner string `yaml:"owner"`
	Group string `yaml:"group"`
	Perms uint32 `yaml:"perms"`
}

// PortSpec declares one named port, optionally owned by a service for
// firewall exposure.
type PortSpec struct {
	Port      int    `yaml:"port"`
	ExposedOn string `yaml:"exposed_on"`
}

// ConfigSource resolves {config[...]} placeholders. Unlike the descriptor
// itself, which is immutable for the process lifetime, config values may vary
// call to call.
type ConfigSource func(key string) (string, bool)

// DistConfig is the distribution descriptor: the vendor-specific users,
// groups, directories, packages, and ports a Hadoop deployment needs.
// Constructed once per process and read-only thereafter.
type DistConfig struct {
	Vendor        string              `yaml:"vendor"`
	HadoopVersion string              `yaml:"hadoop_version"`
	Groups        []string            `yaml:"groups"`
	Users         map[string]UserSpec `yaml:"users"`
	Dirs          map[string]DirSpec  `yaml:"dirs"`
	Packages      []string            `yaml:"packages"`
	Ports         map[string]PortSpec `yaml:"ports"`

	file   string
	config ConfigSource
}

// Option configures descriptor loading.
type Option func(*DistConfig) error

// WithConfigSource supplies the external lookup behind {config[...]}
// placeholders.
func WithConfigSource(src ConfigSource) Option {
	return func(dc *DistConfig) error {
		dc.config = src
		return nil
	}
}

// WithOverrides merges a partial descriptor over the loaded one, overriding
// scalar values and adding map entries.
func WithOverrides(override *DistConfig) Option {
	return func(dc *DistConfig) error {
		return mergo.Merge(dc, override, mergo.WithOverride)
	}
}

// Load reads a YAML distribution descriptor. Each name in required must be
// present as a top-level key or loading fails with a ConfigError.
func Load(path string, required []string, opts ...Option) (*DistConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read descriptor: %w", err)
	}
	return parse(data, path, required, opts...)
}

// FromBytes builds a descriptor from an in-memory YAML document, for tests
// and injected configurations.
func FromBytes(data []byte, required []string, opts ...Option) (*DistConfig, error) {
	return parse(data, "<inline>", required, opts...)
}

func parse(data []byte, file string, required []string, opts ...Option) (*DistConfig, error) {
	var raw map[string]yaml.Node
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errdefs.NewConfigError(file, "malformed descriptor: %v", err)
	}

	var missing []string
	for _, key := range required {
		if _, present := raw[key]; !present {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		plural := ""
		if len(missing) > 1 {
			plural = "s"
		}
		return nil, errdefs.NewConfigError(file, "missing required option%s: %s",
			plural, strings.Join(missing, ", "))
	}

	dc := &DistConfig{file: file}
	if err := yaml.Unmarshal(data, dc); err != nil {
		return nil, errdefs.NewConfigError(file, "malformed descriptor: %v", err)
	}
	for _, opt := range opts {
		if err := opt(dc); err != nil {
			return nil, err
		}
	}
	return dc, nil
}

// ValidateDirs checks that every named logical directory exists in the
// descriptor. Absence is a fatal configuration error.
func (dc *DistConfig) ValidateDirs(names ...string) error {
	var missing []string
	for _, name := range names {
		if _, present := dc.Dirs[name]; !present {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return errdefs.NewConfigError(dc.file, "dirs option is missing required entries: %s",
			strings.Join(missing, ", "))
	}
	return nil
}

// Path resolves the logical directory name to an absolute path, substituting
// {config[...]} and {dirs[...]} placeholders until the result is stable.
// Substitution over a DAG of references converges; a cycle exhausts the
// bounded iteration count and fails with a ConfigError.
func (dc *DistConfig) Path(name string) (string, error) {
	dir, present := dc.Dirs[name]
	if !present {
		return "", errdefs.NewConfigError(dc.file, "unknown directory: %s", name)
	}

	path := dir.Path
	for level := 0; strings.Contains(path, "{"); level++ {
		if level >= maxResolveDepth {
			return "", errdefs.NewConfigError(dc.file,
				"maximum level of nested dir references exceeded for %s: %v", name, errdefs.ErrNotConverged)
		}
		var substErr error
		next := placeholderPat.ReplaceAllStringFunc(path, func(m string) string {
			groups := placeholderPat.FindStringSubmatch(m)
			kind, key := groups[1], groups[2]
			switch kind {
			case "config":
				if dc.config == nil {
					substErr = errdefs.NewConfigError(dc.file, "no config source for {config[%s]} in %s", key, name)
					return m
				}
				value, found := dc.config(key)
				if !found {
					substErr = errdefs.NewConfigError(dc.file, "missing config key %q for %s", key, name)
					return m
				}
				return value
			default: // dirs
				ref, found := dc.Dirs[key]
				if !found {
					substErr = errdefs.NewConfigError(dc.file, "missing dir reference %q for %s", key, name)
					return m
				}
				return ref.Path
			}
		})
		if substErr != nil {
			return "", substErr
		}
		if next == path {
			break
		}
		path = next
	}
	return path, nil
}

// Port returns the named port, or false if the descriptor does not declare
// it.
func (dc *DistConfig) Port(name string) (int, bool) {
	p, present := dc.Ports[name]
	if !present {
		return 0, false
	}
	return p.Port, true
}

// ExposedPorts lists the ports owned by the named service, for the external
// firewall collaborator to open. Sorted for determinism.
func (dc *DistConfig) ExposedPorts(service string) []int {
	var exposed []int
	for _, p := range dc.Ports {
		if p.ExposedOn == service {
			exposed = append(exposed, p.Port)
		}
	}
	sort.Ints(exposed)
	return exposed
}

// AddGroupsAndUsers converges the declared groups and users, groups first
// since user creation references them. Existing groups and users are no-ops.
func (dc *DistConfig) AddGroupsAndUsers(ops SysOps) error {
	dcLog := log.WithComponent("distconfig")
	for _, group := range dc.Groups {
		if err := ops.AddGroup(group); err != nil {
			return err
		}
	}
	for _, name := range sortedKeys(dc.Users) {
		groups := dc.Users[name].Groups
		var primary string
		var secondary []string
		if len(groups) > 0 {
			primary = groups[0]
			secondary = groups[1:]
		}
		dcLog.Info().
			Str("user", name).
			Str("primary_group", primary).
			Strs("secondary_groups", secondary).
			Msg("Creating user")
		if err := ops.AddUser(name, primary, secondary); err != nil {
			return err
		}
	}
	return nil
}

// AddDirs converges the declared directories, resolving placeholders first.
// Existing directories are no-ops; OS failures propagate unretried.
func (dc *DistConfig) AddDirs(ops SysOps) error {
	for _, name := range sortedKeys(dc.Dirs) {
		dir := dc.Dirs[name]
		path, err := dc.Path(name)
		if err != nil {
			return err
		}
		owner := dir.Owner
		if owner == "" {
			owner = "root"
		}
		group := dir.Group
		if group == "" {
			group = "root"
		}
		perms := os.FileMode(dir.Perms)
		if perms == 0 {
			perms = 0755
		}
		if err := ops.MkDir(path, owner, group, perms); err != nil {
			return err
		}
	}
	return nil
}

// AddPackages converges the declared package list in its declared order.
func (dc *DistConfig) AddPackages(ops SysOps) error {
	if len(dc.Packages) == 0 {
		return nil
	}
	return ops.InstallPackages(dc.Packages)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
