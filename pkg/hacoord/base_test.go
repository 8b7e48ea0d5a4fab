package hacoord

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudbrew/hadoopctl/pkg/distconfig"
	"github.com/cloudbrew/hadoopctl/pkg/spec"
	"github.com/cloudbrew/hadoopctl/pkg/statestore"
)

// fakeRunner records every command line and serves scripted outputs keyed
// by "user name args...".
type fakeRunner struct {
	calls   []string
	outputs map[string]string
	errs    map[string]error
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{outputs: map[string]string{}, errs: map[string]error{}}
}

func callKey(user, name string, args []string) string {
	return strings.Join(append([]string{user, name}, args...), " ")
}

func (r *fakeRunner) Run(ctx context.Context, user, name string, args ...string) error {
	key := callKey(user, name, args)
	r.calls = append(r.calls, key)
	return r.errs[key]
}

func (r *fakeRunner) Output(ctx context.Context, user, name string, args ...string) (string, error) {
	key := callKey(user, name, args)
	r.calls = append(r.calls, key)
	return r.outputs[key], r.errs[key]
}

func (r *fakeRunner) count(key string) int {
	n := 0
	for _, c := range r.calls {
		if c == key {
			n++
		}
	}
	return n
}

type fakePC struct {
	running map[string]bool
	started []string
	stopped []string
}

func (p *fakePC) Start(ctx context.Context, service string) error {
	p.started = append(p.started, service)
	return nil
}

func (p *fakePC) Stop(ctx context.Context, service string) error {
	p.stopped = append(p.stopped, service)
	return nil
}

func (p *fakePC) Running(service string) bool {
	return p.running[service]
}

type noSysOps struct{}

func (noSysOps) AddGroup(string) error                  { return nil }
func (noSysOps) AddUser(string, string, []string) error { return nil }
func (noSysOps) MkDir(string, string, string, os.FileMode) error {
	return nil
}
func (noSysOps) InstallPackages([]string) error { return nil }

func testDescriptor(confDir string) string {
	return fmt.Sprintf(`
vendor: apache
hadoop_version: 2.7.1
groups:
  - hadoop
users:
  hdfs:
    groups: ['hadoop']
dirs:
  hadoop:
    path: '/usr/lib/hadoop'
  hadoop_conf:
    path: '%s'
  hdfs_log_dir:
    path: '/var/log/hadoop/hdfs'
  mapred_log_dir:
    path: '/var/log/hadoop/mapred'
  yarn_log_dir:
    path: '/var/log/hadoop/yarn'
  hdfs_dir_base:
    path: '/var/lib/hadoop'
ports:
  namenode:
    port: 8020
  nn_webapp_http:
    port: 50070
    exposed_on: 'namenode'
  journalnode:
    port: 8485
  resourcemanager:
    port: 8032
`, confDir)
}

func newTestBase(t *testing.T) (*HadoopBase, *fakeRunner, string) {
	t.Helper()
	confDir := t.TempDir()
	dc, err := distconfig.FromBytes([]byte(testDescriptor(confDir)),
		[]string{"vendor", "hadoop_version", "groups", "users", "dirs", "ports"})
	require.NoError(t, err)
	run := newFakeRunner()
	base := &HadoopBase{
		DC:      dc,
		Store:   statestore.NewMemStore(),
		Run:     run,
		Ops:     noSysOps{},
		EnvFile: filepath.Join(t.TempDir(), "environment"),
		Arch:    "x86_64",
	}
	return base, run, confDir
}

func writeConfFile(t *testing.T, confDir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(confDir, name), []byte(content), 0644))
}

const emptyPropFile = `<?xml version="1.0" encoding="UTF-8"?>
<configuration>
</configuration>
`

func TestInstallJavaRecordsVersion(t *testing.T) {
	base, run, _ := newTestBase(t)
	run.outputs["root install-java.sh"] = "/usr/lib/jvm/java-8\n1.8.0_151\n"

	require.NoError(t, base.InstallJava(context.Background(), "install-java.sh"))

	home, _, _ := base.Store.Get(KeyJavaHome)
	version, _, _ := base.Store.Get(KeyJavaVersion)
	release, _, _ := base.Store.Get(KeyJavaVersionRelease)
	assert.Equal(t, "/usr/lib/jvm/java-8", home)
	assert.Equal(t, "1.8.0", version)
	assert.Equal(t, "151", release)
}

func TestInstallJavaRejectsUnexpectedOutput(t *testing.T) {
	base, run, _ := newTestBase(t)
	run.outputs["root install-java.sh"] = "something went sideways\n"

	err := base.InstallJava(context.Background(), "install-java.sh")
	require.Error(t, err)
}

func TestSpecNilUntilJavaInstalled(t *testing.T) {
	base, run, _ := newTestBase(t)
	assert.Nil(t, base.Spec())

	run.outputs["root install-java.sh"] = "/usr/lib/jvm/java-8\n1.8.0_151\n"
	require.NoError(t, base.InstallJava(context.Background(), "install-java.sh"))

	assert.Equal(t, spec.Spec{
		"vendor": "apache",
		"hadoop": "2.7.1",
		"java":   "1.8.0",
		"arch":   "x86_64",
	}, base.Spec())
}

func TestInstallRunsOnce(t *testing.T) {
	base, run, confDir := newTestBase(t)
	run.outputs["root install-java.sh"] = "/usr/lib/jvm/java-8\n1.8.0_151\n"
	writeConfFile(t, confDir, "hadoop-env.sh", "export JAVA_HOME=${JAVA_HOME}\n")

	ctx := context.Background()
	require.NoError(t, base.Install(ctx, "install-java.sh", false))
	assert.True(t, base.IsInstalled())
	assert.Equal(t, 1, run.count("root install-java.sh"))

	require.NoError(t, base.Install(ctx, "install-java.sh", false))
	assert.Equal(t, 1, run.count("root install-java.sh"))

	require.NoError(t, base.Install(ctx, "install-java.sh", true))
	assert.Equal(t, 2, run.count("root install-java.sh"))
}

func TestConfigureEnvironment(t *testing.T) {
	base, _, confDir := newTestBase(t)
	require.NoError(t, base.Store.Set(KeyJavaHome, "/usr/lib/jvm/java-8"))
	writeConfFile(t, confDir, "hadoop-env.sh",
		"# Hadoop environment\nexport JAVA_HOME=${JAVA_HOME}\n")

	require.NoError(t, base.ConfigureEnvironment())

	env, err := os.ReadFile(base.EnvFile)
	require.NoError(t, err)
	assert.Contains(t, string(env), `JAVA_HOME="/usr/lib/jvm/java-8"`)
	assert.Contains(t, string(env), `HADOOP_HOME="/usr/lib/hadoop"`)
	assert.Contains(t, string(env), fmt.Sprintf("HADOOP_CONF_DIR=%q", confDir))
	assert.Contains(t, string(env), "/usr/lib/jvm/java-8/bin:")
	assert.Contains(t, string(env), ":/usr/lib/hadoop/sbin")

	hadoopEnv, err := os.ReadFile(filepath.Join(confDir, "hadoop-env.sh"))
	require.NoError(t, err)
	assert.Contains(t, string(hadoopEnv), "export JAVA_HOME=/usr/lib/jvm/java-8")
	assert.NotContains(t, string(hadoopEnv), "${JAVA_HOME}")
}

func TestConfigureEnvironmentRequiresJava(t *testing.T) {
	base, _, _ := newTestBase(t)
	require.Error(t, base.ConfigureEnvironment())
}

func TestRegisterSlavesWritesManagedFile(t *testing.T) {
	base, _, confDir := newTestBase(t)
	require.NoError(t, base.RegisterSlaves([]string{"worker-1", "worker-2"}))

	data, err := os.ReadFile(filepath.Join(confDir, "slaves"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "#"))
	assert.Equal(t, "worker-1", lines[2])
	assert.Equal(t, "worker-2", lines[3])
}
