package hacoord

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cloudbrew/hadoopctl/pkg/confedit"
	"github.com/cloudbrew/hadoopctl/pkg/errdefs"
	"github.com/cloudbrew/hadoopctl/pkg/log"
)

// HDFS state flags. Each guards an operation that is destructive or
// cluster-visible when repeated, so it runs at most once per node.
const (
	FlagNameNodeFormatted  = "hdfs.namenode.formatted"
	FlagClusterDirsCreated = "hdfs.namenode.dirs.created"
)

// ClusterName is the logical HA nameservice ID shared by both NameNodes.
const ClusterName = "cluster"

// NameNode HA service states as reported by haadmin.
const (
	StateActive  = "active"
	StateStandby = "standby"
	StateUnknown = "unknown"
)

// HDFS coordinates the HDFS services on a node: formatting, HA state
// transitions, and the hdfs-site / core-site configuration for each role.
type HDFS struct {
	Base *HadoopBase
	PC   ProcessControl
}

func NewHDFS(base *HadoopBase) *HDFS {
	return &HDFS{Base: base, PC: NewDaemonScripts(base.DC, base.Run)}
}

func (h *HDFS) hdfs(ctx context.Context, args ...string) (string, error) {
	hadoopHome, err := h.Base.DC.Path("hadoop")
	if err != nil {
		return "", err
	}
	return h.Base.Run.Output(ctx, "hdfs", filepath.Join(hadoopHome, "bin/hdfs"), args...)
}

func (h *HDFS) confFile(name string) (string, error) {
	confDir, err := h.Base.DC.Path("hadoop_conf")
	if err != nil {
		return "", err
	}
	return filepath.Join(confDir, name), nil
}

// Format formats the NameNode metadata directory. The namenode daemon is
// stopped first; a running daemon holds the directory lock. Guarded by the
// formatted flag: once a node has formatted, it never formats again.
func (h *HDFS) Format(ctx context.Context) error {
	if formatted, _ := h.Base.Store.Flag(FlagNameNodeFormatted); formatted {
		return nil
	}
	if err := h.PC.Stop(ctx, "namenode"); err != nil {
		return err
	}
	hdfsLog := log.WithComponent("hdfs")
	hdfsLog.Info().Msg("Formatting namenode")
	if _, err := h.hdfs(ctx, "namenode", "-format", "-noninteractive"); err != nil {
		return err
	}
	return h.Base.Store.SetFlag(FlagNameNodeFormatted)
}

// InitSharedEdits initializes the shared edits directory on the journal
// nodes. Issued by the first NameNode only; -force makes the command itself
// safe to re-run, so there is no local guard.
func (h *HDFS) InitSharedEdits(ctx context.Context) error {
	hdfsLog := log.WithComponent("hdfs")
	hdfsLog.Info().Msg("Initializing shared edits")
	_, err := h.hdfs(ctx, "namenode", "-initializeSharedEdits", "-nonInteractive", "-force")
	return err
}

// BootstrapStandby copies the namespace from the active NameNode. Issued by
// the second NameNode only; -force makes re-runs safe.
func (h *HDFS) BootstrapStandby(ctx context.Context) error {
	hdfsLog := log.WithComponent("hdfs")
	hdfsLog.Info().Msg("Bootstrapping standby namenode")
	_, err := h.hdfs(ctx, "namenode", "-bootstrapStandby", "-nonInteractive", "-force")
	return err
}

// TransitionToActive promotes the named NameNode to the active state.
func (h *HDFS) TransitionToActive(ctx context.Context, node string) error {
	hdfsLog := log.WithComponent("hdfs")
	hdfsLog.Info().Str("node", node).Msg("Transitioning namenode to active")
	_, err := h.hdfs(ctx, "haadmin", "-transitionToActive", node)
	return err
}

// ServiceState queries the HA state of the named NameNode. A NameNode that
// cannot be reached reports StateUnknown rather than an error; an
// unreachable peer is a normal condition during cluster bring-up.
func (h *HDFS) ServiceState(ctx context.Context, node string) string {
	out, err := h.hdfs(ctx, "haadmin", "-getServiceState", node)
	if err != nil {
		return StateUnknown
	}
	state := strings.TrimSpace(out)
	if state == "" {
		return StateUnknown
	}
	return state
}

// EnsureHAActive makes sure exactly one of the candidate NameNodes is
// active, promoting preferred when neither is. The decision procedure only
// covers the two-node case; any other candidate count is rejected.
func (h *HDFS) EnsureHAActive(ctx context.Context, candidates []string, preferred string) error {
	if len(candidates) != 2 {
		return errdefs.ErrNotTwoNodes
	}
	for _, node := range candidates {
		if h.ServiceState(ctx, node) == StateActive {
			return nil
		}
	}
	return h.TransitionToActive(ctx, preferred)
}

// CreateClusterDirs creates the shared HDFS directory tree used by
// MapReduce staging, job history, and log aggregation. Runs once, on the
// active NameNode, after HDFS is up.
func (h *HDFS) CreateClusterDirs(ctx context.Context) error {
	if done, _ := h.Base.Store.Flag(FlagClusterDirsCreated); done {
		return nil
	}
	cmds := [][]string{
		{"dfs", "-mkdir", "-p", "/tmp/hadoop/mapred/staging"},
		{"dfs", "-chmod", "-R", "1777", "/tmp/hadoop/mapred/staging"},
		{"dfs", "-mkdir", "-p", "/tmp/hadoop-yarn/staging"},
		{"dfs", "-chmod", "-R", "1777", "/tmp/hadoop-yarn"},
		{"dfs", "-mkdir", "-p", "/user/ubuntu"},
		{"dfs", "-chown", "-R", "ubuntu", "/user/ubuntu"},
		{"dfs", "-mkdir", "-p", "/mr-history/tmp"},
		{"dfs", "-chmod", "-R", "1777", "/mr-history/tmp"},
		{"dfs", "-mkdir", "-p", "/mr-history/done"},
		{"dfs", "-chmod", "-R", "1777", "/mr-history/done"},
		{"dfs", "-chown", "-R", "mapred:hdfs", "/mr-history"},
		{"dfs", "-mkdir", "-p", "/app-logs"},
		{"dfs", "-chmod", "-R", "1777", "/app-logs"},
		{"dfs", "-chown", "yarn", "/app-logs"},
	}
	for _, args := range cmds {
		if _, err := h.hdfs(ctx, args...); err != nil {
			return err
		}
	}
	return h.Base.Store.SetFlag(FlagClusterDirsCreated)
}

// configureBase writes the core-site settings every HDFS role shares.
func (h *HDFS) configureBase() error {
	coreSite, err := h.confFile("core-site.xml")
	if err != nil {
		return err
	}
	return confedit.EditProperties(coreSite, func(props map[string]string) error {
		props["fs.defaultFS"] = "hdfs://" + ClusterName
		props["hadoop.proxyuser.hue.hosts"] = "*"
		props["hadoop.proxyuser.hue.groups"] = "*"
		props["hadoop.proxyuser.oozie.hosts"] = "*"
		props["hadoop.proxyuser.oozie.groups"] = "*"
		props["io.compression.codecs"] = strings.Join([]string{
			"org.apache.hadoop.io.compress.GzipCodec",
			"org.apache.hadoop.io.compress.DefaultCodec",
			"org.apache.hadoop.io.compress.BZip2Codec",
			"org.apache.hadoop.io.compress.SnappyCodec",
		}, ",")
		return nil
	})
}

// configureHA writes the HA topology for the given NameNode hosts: the
// nameservice, the per-node RPC and HTTP addresses, client failover, and
// ssh fencing. The node IDs are the hostnames themselves, sorted so both
// NameNodes generate identical configuration.
func (h *HDFS) configureHA(nameNodes []string) error {
	hdfsSite, err := h.confFile("hdfs-site.xml")
	if err != nil {
		return err
	}
	rpcPort, ok := h.Base.DC.Port("namenode")
	if !ok {
		rpcPort = 8020
	}
	httpPort, ok := h.Base.DC.Port("nn_webapp_http")
	if !ok {
		httpPort = 50070
	}

	hosts := append([]string(nil), nameNodes...)
	sort.Strings(hosts)

	return confedit.EditProperties(hdfsSite, func(props map[string]string) error {
		props["dfs.nameservices"] = ClusterName
		props["dfs.ha.namenodes."+ClusterName] = strings.Join(hosts, ",")
		for _, host := range hosts {
			props[fmt.Sprintf("dfs.namenode.rpc-address.%s.%s", ClusterName, host)] = fmt.Sprintf("%s:%d", host, rpcPort)
			props[fmt.Sprintf("dfs.namenode.http-address.%s.%s", ClusterName, host)] = fmt.Sprintf("%s:%d", host, httpPort)
		}
		props["dfs.client.failover.proxy.provider."+ClusterName] =
			"org.apache.hadoop.hdfs.server.namenode.ha.ConfiguredFailoverProxyProvider"
		props["dfs.ha.fencing.methods"] = "sshfence"
		props["dfs.ha.fencing.ssh.private-key-files"] = "/home/hdfs/.ssh/id_rsa"
		return nil
	})
}

// ConfigureNameNode writes the NameNode side of hdfs-site along with the
// shared base and HA topology.
func (h *HDFS) ConfigureNameNode(nameNodes []string) error {
	if err := h.configureBase(); err != nil {
		return err
	}
	if err := h.configureHA(nameNodes); err != nil {
		return err
	}
	hdfsSite, err := h.confFile("hdfs-site.xml")
	if err != nil {
		return err
	}
	nameDir, err := h.Base.DC.Path("hdfs_dir_base")
	if err != nil {
		return err
	}
	return confedit.EditProperties(hdfsSite, func(props map[string]string) error {
		props["dfs.namenode.name.dir"] = filepath.Join(nameDir, "cache/hadoop/dfs/name")
		props["dfs.webhdfs.enabled"] = "true"
		// permissive mode; this module manages a trusted private cluster
		props["dfs.permissions"] = "false"
		return nil
	})
}

// ConfigureDataNode points the DataNode at its storage directory and the
// HA NameNode pair.
func (h *HDFS) ConfigureDataNode(nameNodes []string) error {
	if err := h.configureBase(); err != nil {
		return err
	}
	if err := h.configureHA(nameNodes); err != nil {
		return err
	}
	hdfsSite, err := h.confFile("hdfs-site.xml")
	if err != nil {
		return err
	}
	dataDir, err := h.Base.DC.Path("hdfs_dir_base")
	if err != nil {
		return err
	}
	return confedit.EditProperties(hdfsSite, func(props map[string]string) error {
		props["dfs.datanode.data.dir"] = filepath.Join(dataDir, "cache/hadoop/dfs/data")
		props["dfs.permissions"] = "false"
		return nil
	})
}

// ConfigureJournalNode sets the local journal storage directory.
func (h *HDFS) ConfigureJournalNode() error {
	hdfsSite, err := h.confFile("hdfs-site.xml")
	if err != nil {
		return err
	}
	baseDir, err := h.Base.DC.Path("hdfs_dir_base")
	if err != nil {
		return err
	}
	return confedit.EditProperties(hdfsSite, func(props map[string]string) error {
		props["dfs.journalnode.edits.dir"] = filepath.Join(baseDir, "cache/hadoop/dfs/journal")
		return nil
	})
}

// ConfigureClient writes the minimal client-side view: the shared base and
// the HA topology, so plain hdfs commands resolve the active NameNode.
func (h *HDFS) ConfigureClient(nameNodes []string) error {
	if err := h.configureBase(); err != nil {
		return err
	}
	return h.configureHA(nameNodes)
}

// RegisterJournalNodes records the quorum journal URI built from the given
// hosts. The hosts are sorted so every NameNode derives the same URI.
func (h *HDFS) RegisterJournalNodes(hosts []string) error {
	hdfsSite, err := h.confFile("hdfs-site.xml")
	if err != nil {
		return err
	}
	port, ok := h.Base.DC.Port("journalnode")
	if !ok {
		port = 8485
	}
	sorted := append([]string(nil), hosts...)
	sort.Strings(sorted)
	addrs := make([]string, len(sorted))
	for i, host := range sorted {
		addrs[i] = fmt.Sprintf("%s:%d", host, port)
	}
	return confedit.EditProperties(hdfsSite, func(props map[string]string) error {
		props["dfs.namenode.shared.edits.dir"] =
			fmt.Sprintf("qjournal://%s/%s", strings.Join(addrs, ";"), ClusterName)
		return nil
	})
}

// RegisterSlaves rewrites the slaves file and asks a running NameNode to
// reload it. A stopped NameNode picks the file up at next start.
func (h *HDFS) RegisterSlaves(ctx context.Context, slaves []string) error {
	if err := h.Base.RegisterSlaves(slaves); err != nil {
		return err
	}
	if h.PC.Running("namenode") {
		if _, err := h.hdfs(ctx, "dfsadmin", "-refreshNodes"); err != nil {
			return err
		}
	}
	return nil
}
