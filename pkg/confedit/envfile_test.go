package confedit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvironmentRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "environment")
	require.NoError(t, os.WriteFile(path, []byte(
		"PATH=\"/usr/bin:/bin\"\nLANG=en_US.UTF-8\nQUOTED='single'\n"), 0644))

	err := EditEnvironment(path, func(env map[string]string) error {
		assert.Equal(t, "/usr/bin:/bin", env["PATH"])
		assert.Equal(t, "en_US.UTF-8", env["LANG"])
		assert.Equal(t, "single", env["QUOTED"])
		env["JAVA_HOME"] = "/usr/lib/jvm/java-8"
		env["PATH"] = "/usr/lib/jvm/java-8/bin:" + env["PATH"]
		return nil
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	// all values uniformly double-quoted, existing order kept, new key appended
	assert.Equal(t,
		"PATH=\"/usr/lib/jvm/java-8/bin:/usr/bin:/bin\"\n"+
			"LANG=\"en_US.UTF-8\"\n"+
			"QUOTED=\"single\"\n"+
			"JAVA_HOME=\"/usr/lib/jvm/java-8\"\n",
		string(data))
}

func TestEnvironmentDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "environment")
	require.NoError(t, os.WriteFile(path, []byte("A=\"1\"\nB=\"2\"\n"), 0644))

	err := EditEnvironment(path, func(env map[string]string) error {
		delete(env, "A")
		return nil
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "B=\"2\"\n", string(data))
}

func TestEnvironmentMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "environment")

	err := EditEnvironment(path, func(env map[string]string) error {
		env["HADOOP_HOME"] = "/opt/hadoop"
		return nil
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "HADOOP_HOME=\"/opt/hadoop\"\n", string(data))
}

func TestReplaceLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hadoop-env.sh")
	require.NoError(t, os.WriteFile(path, []byte(
		"# The java implementation to use.\nexport JAVA_HOME=${JAVA_HOME}\nexport HADOOP_HEAPSIZE=1000\n"), 0644))

	err := ReplaceLines(path, map[string]string{
		`export JAVA_HOME *=.*`: "export JAVA_HOME=/usr/lib/jvm/java-8",
	}, false)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"# The java implementation to use.\n"+
			"export JAVA_HOME=/usr/lib/jvm/java-8\n"+
			"export HADOOP_HEAPSIZE=1000\n",
		string(data))
}

func TestReplaceLinesAppendMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hadoop-env.sh")
	require.NoError(t, os.WriteFile(path, []byte("export HADOOP_HEAPSIZE=1000\n"), 0644))

	err := ReplaceLines(path, map[string]string{
		`export JAVA_HOME *=.*`: "export JAVA_HOME=/usr/lib/jvm/java-8",
	}, true)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"export HADOOP_HEAPSIZE=1000\n"+
			"export JAVA_HOME=/usr/lib/jvm/java-8\n",
		string(data))
}

func TestReplaceLinesBadPattern(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f")
	require.NoError(t, os.WriteFile(path, []byte("x\n"), 0644))
	err := ReplaceLines(path, map[string]string{`(`: "y"}, false)
	require.Error(t, err)
}
