package hacoord

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudbrew/hadoopctl/pkg/confedit"
	"github.com/cloudbrew/hadoopctl/pkg/errdefs"
)

const hdfsBin = "/usr/lib/hadoop/bin/hdfs"

func newTestHDFS(t *testing.T) (*HDFS, *fakeRunner, *fakePC, string) {
	t.Helper()
	base, run, confDir := newTestBase(t)
	pc := &fakePC{running: map[string]bool{}}
	return &HDFS{Base: base, PC: pc}, run, pc, confDir
}

func readPropFile(t *testing.T, path string) map[string]string {
	t.Helper()
	s, err := confedit.OpenProperties(path)
	require.NoError(t, err)
	props := s.Props()
	require.NoError(t, s.Close())
	return props
}

func TestFormatStopsNameNodeAndRunsOnce(t *testing.T) {
	h, run, pc, _ := newTestHDFS(t)
	ctx := context.Background()

	require.NoError(t, h.Format(ctx))
	assert.Equal(t, []string{"namenode"}, pc.stopped)
	assert.Equal(t, 1, run.count("hdfs "+hdfsBin+" namenode -format -noninteractive"))

	// already formatted: no second stop, no second format
	require.NoError(t, h.Format(ctx))
	assert.Equal(t, []string{"namenode"}, pc.stopped)
	assert.Equal(t, 1, run.count("hdfs "+hdfsBin+" namenode -format -noninteractive"))
}

func TestFormatFailureLeavesGuardUnset(t *testing.T) {
	h, run, _, _ := newTestHDFS(t)
	ctx := context.Background()
	key := "hdfs " + hdfsBin + " namenode -format -noninteractive"
	run.errs[key] = errors.New("format failed")

	require.Error(t, h.Format(ctx))
	formatted, _ := h.Base.Store.Flag(FlagNameNodeFormatted)
	assert.False(t, formatted)

	// retried after the failure is fixed
	delete(run.errs, key)
	require.NoError(t, h.Format(ctx))
	assert.Equal(t, 2, run.count(key))
}

func TestHAOpsCommandLines(t *testing.T) {
	h, run, _, _ := newTestHDFS(t)
	ctx := context.Background()

	require.NoError(t, h.InitSharedEdits(ctx))
	assert.Equal(t, 1, run.count(
		"hdfs "+hdfsBin+" namenode -initializeSharedEdits -nonInteractive -force"))

	require.NoError(t, h.BootstrapStandby(ctx))
	assert.Equal(t, 1, run.count(
		"hdfs "+hdfsBin+" namenode -bootstrapStandby -nonInteractive -force"))
}

func TestServiceState(t *testing.T) {
	h, run, _, _ := newTestHDFS(t)
	ctx := context.Background()

	run.outputs["hdfs "+hdfsBin+" haadmin -getServiceState nn-1"] = "active\n"
	assert.Equal(t, StateActive, h.ServiceState(ctx, "nn-1"))

	run.errs["hdfs "+hdfsBin+" haadmin -getServiceState nn-2"] =
		errors.New("connection refused")
	assert.Equal(t, StateUnknown, h.ServiceState(ctx, "nn-2"))
}

func TestEnsureHAActive(t *testing.T) {
	promoteKey := "hdfs " + hdfsBin + " haadmin -transitionToActive nn-1"

	tests := []struct {
		name     string
		states   map[string]string
		promotes bool
	}{
		{"one already active", map[string]string{"nn-1": "standby", "nn-2": "active"}, false},
		{"both standby", map[string]string{"nn-1": "standby", "nn-2": "standby"}, true},
		{"both unreachable", map[string]string{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, run, _, _ := newTestHDFS(t)
			for node, state := range tt.states {
				run.outputs["hdfs "+hdfsBin+" haadmin -getServiceState "+node] = state + "\n"
			}
			require.NoError(t, h.EnsureHAActive(context.Background(), []string{"nn-1", "nn-2"}, "nn-1"))
			if tt.promotes {
				assert.Equal(t, 1, run.count(promoteKey))
			} else {
				assert.Equal(t, 0, run.count(promoteKey))
			}
		})
	}
}

func TestEnsureHAActiveRequiresTwoNodes(t *testing.T) {
	h, _, _, _ := newTestHDFS(t)
	ctx := context.Background()

	err := h.EnsureHAActive(ctx, []string{"nn-1"}, "nn-1")
	assert.ErrorIs(t, err, errdefs.ErrNotTwoNodes)

	err = h.EnsureHAActive(ctx, []string{"nn-1", "nn-2", "nn-3"}, "nn-1")
	assert.ErrorIs(t, err, errdefs.ErrNotTwoNodes)
}

func TestCreateClusterDirsRunsOnce(t *testing.T) {
	h, run, _, _ := newTestHDFS(t)
	ctx := context.Background()

	require.NoError(t, h.CreateClusterDirs(ctx))
	first := len(run.calls)
	assert.Equal(t, 1, run.count("hdfs "+hdfsBin+" dfs -mkdir -p /mr-history/done"))
	assert.Equal(t, 1, run.count("hdfs "+hdfsBin+" dfs -chown -R mapred:hdfs /mr-history"))
	assert.Equal(t, 1, run.count("hdfs "+hdfsBin+" dfs -chown yarn /app-logs"))

	require.NoError(t, h.CreateClusterDirs(ctx))
	assert.Equal(t, first, len(run.calls))
}

func TestConfigureNameNode(t *testing.T) {
	h, _, _, confDir := newTestHDFS(t)
	writeConfFile(t, confDir, "core-site.xml", emptyPropFile)
	writeConfFile(t, confDir, "hdfs-site.xml", emptyPropFile)

	require.NoError(t, h.ConfigureNameNode([]string{"nn-2", "nn-1"}))

	core := readPropFile(t, confDir+"/core-site.xml")
	assert.Equal(t, "hdfs://cluster", core["fs.defaultFS"])
	assert.Equal(t, "*", core["hadoop.proxyuser.hue.hosts"])

	site := readPropFile(t, confDir+"/hdfs-site.xml")
	assert.Equal(t, "cluster", site["dfs.nameservices"])
	// hosts sorted so both namenodes emit identical config
	assert.Equal(t, "nn-1,nn-2", site["dfs.ha.namenodes.cluster"])
	assert.Equal(t, "nn-1:8020", site["dfs.namenode.rpc-address.cluster.nn-1"])
	assert.Equal(t, "nn-2:50070", site["dfs.namenode.http-address.cluster.nn-2"])
	assert.Equal(t, "sshfence", site["dfs.ha.fencing.methods"])
	assert.Equal(t, "/var/lib/hadoop/cache/hadoop/dfs/name", site["dfs.namenode.name.dir"])
	assert.Equal(t, "false", site["dfs.permissions"])
}

func TestConfigureDataNode(t *testing.T) {
	h, _, _, confDir := newTestHDFS(t)
	writeConfFile(t, confDir, "core-site.xml", emptyPropFile)
	writeConfFile(t, confDir, "hdfs-site.xml", emptyPropFile)

	require.NoError(t, h.ConfigureDataNode([]string{"nn-1", "nn-2"}))

	site := readPropFile(t, confDir+"/hdfs-site.xml")
	assert.Equal(t, "/var/lib/hadoop/cache/hadoop/dfs/data", site["dfs.datanode.data.dir"])
	assert.Equal(t, "nn-1,nn-2", site["dfs.ha.namenodes.cluster"])
}

func TestRegisterJournalNodes(t *testing.T) {
	h, _, _, confDir := newTestHDFS(t)
	writeConfFile(t, confDir, "hdfs-site.xml", emptyPropFile)

	require.NoError(t, h.RegisterJournalNodes([]string{"jn-2", "jn-1", "jn-3"}))

	site := readPropFile(t, confDir+"/hdfs-site.xml")
	assert.Equal(t, "qjournal://jn-1:8485;jn-2:8485;jn-3:8485/cluster",
		site["dfs.namenode.shared.edits.dir"])
}

func TestRegisterSlavesRefreshesRunningNameNode(t *testing.T) {
	h, run, pc, _ := newTestHDFS(t)
	ctx := context.Background()
	refreshKey := "hdfs " + hdfsBin + " dfsadmin -refreshNodes"

	require.NoError(t, h.RegisterSlaves(ctx, []string{"worker-1"}))
	assert.Equal(t, 0, run.count(refreshKey))

	pc.running["namenode"] = true
	require.NoError(t, h.RegisterSlaves(ctx, []string{"worker-1", "worker-2"}))
	assert.Equal(t, 1, run.count(refreshKey))
}
