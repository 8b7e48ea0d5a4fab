package hosts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudbrew/hadoopctl/pkg/statestore"
)

func newManager(t *testing.T) (*Manager, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hosts")
	return NewManager(statestore.NewMemStore(), path), path
}

func TestApplyPreservesUnmanagedLines(t *testing.T) {
	m, path := newManager(t)
	require.NoError(t, os.WriteFile(path,
		[]byte("127.0.0.1 localhost\n10.9.9.9 stale  # HADOOPCTL MANAGED\n"), 0644))

	require.NoError(t, m.UpdateHost("10.0.0.1", "nn-0"))
	require.NoError(t, m.Apply())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "127.0.0.1 localhost")
	assert.Contains(t, content, "10.0.0.1 nn-0  # HADOOPCTL MANAGED")
	assert.NotContains(t, content, "stale")
}

func TestOneIPPerHostname(t *testing.T) {
	m, _ := newManager(t)
	require.NoError(t, m.UpdateHost("10.0.0.1", "nn-0"))
	require.NoError(t, m.UpdateHost("10.0.0.2", "nn-0"))

	hosts, err := m.Hosts()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"10.0.0.2": "nn-0"}, hosts)
}

func TestRemoveHosts(t *testing.T) {
	m, _ := newManager(t)
	require.NoError(t, m.UpdateHosts(map[string]string{
		"10.0.0.1": "nn-0",
		"10.0.0.2": "dn-0",
	}))
	require.NoError(t, m.RemoveHosts("dn-0"))

	hosts, err := m.Hosts()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"10.0.0.1": "nn-0"}, hosts)
}

func TestApplyCommentsInvalidIP(t *testing.T) {
	m, path := newManager(t)
	require.NoError(t, m.UpdateHost("not-an-ip", "broken"))
	require.NoError(t, m.Apply())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# not-an-ip broken")
	assert.Contains(t, string(data), "(INVALID IP)")
}

func TestResolvePrivateAddress(t *testing.T) {
	ip, err := ResolvePrivateAddress("10.1.2.3")
	require.NoError(t, err)
	assert.Equal(t, "10.1.2.3", ip)

	ip, err = ResolvePrivateAddress("ip-10-1-2-3.nosuchdomain.invalid")
	require.NoError(t, err)
	assert.Equal(t, "10.1.2.3", ip)

	_, err = ResolvePrivateAddress("no.address.here.invalid")
	require.Error(t, err)
}
