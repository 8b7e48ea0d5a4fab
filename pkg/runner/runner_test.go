package runner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "environment")
	require.NoError(t, os.WriteFile(path, []byte(
		"JAVA_HOME=\"/usr/lib/jvm/java-8\"\nPATH='/usr/bin:/bin'\n\n# comment\nBROKENLINE\n"), 0644))

	env := ReadEnvironment(path)
	assert.Equal(t, "/usr/lib/jvm/java-8", env["JAVA_HOME"])
	assert.Equal(t, "/usr/bin:/bin", env["PATH"])
	assert.NotContains(t, env, "BROKENLINE")
}

func TestReadEnvironmentProxyPassthrough(t *testing.T) {
	t.Setenv("https_proxy", "http://proxy:3128")
	t.Setenv("NOT_A_PROXY_VAR", "x")

	env := ReadEnvironment(filepath.Join(t.TempDir(), "absent"))
	assert.Equal(t, "http://proxy:3128", env["https_proxy"])
	assert.NotContains(t, env, "NOT_A_PROXY_VAR")
}

func TestJavaProcessPattern(t *testing.T) {
	assert.Equal(t, `^[^ ]*java .*[N]ameNode`, JavaProcessPattern("NameNode"))
	assert.Equal(t, `^[^ ]*java .*[D]ataNode`, JavaProcessPattern("DataNode"))
	assert.Empty(t, JavaProcessPattern(""))
}
