package relation

import "fmt"

// Relation names are shared vocabulary between cooperating nodes.
const (
	RelNameNode        = "namenode"
	RelDataNode        = "datanode"
	RelResourceManager = "resourcemanager"
	RelNodeManager     = "nodemanager"
	RelHadoopPlugin    = "hadoop-plugin"
)

// NameNode is the client-side view of the NameNode relation: consumers learn
// where HDFS lives and whether it is ready, gated on spec compatibility.
func NameNode(x Exchange, localSpec SpecSource) *Relation {
	return &Relation{
		Name:         RelNameNode,
		Role:         RoleConsumer,
		RequiredKeys: []string{"private-address", "port", "ready"},
		exchange:     x,
		localSpec:    localSpec,
	}
}

// NameNodeProvider is the NameNode's own side of the client relation. The
// ready fields are published only once the cluster settles; gate should
// block until HDFS reports live DataNodes out of safe mode.
func NameNodeProvider(x Exchange, localSpec SpecSource, port int, gate func() error) *Relation {
	return &Relation{
		Name:         RelNameNode,
		Role:         RoleProvider,
		RequiredKeys: []string{"private-address", "port", "ready"},
		exchange:     x,
		localSpec:    localSpec,
		gate:         gate,
		readyData: map[string]string{
			"ready": "true",
			"port":  fmt.Sprint(port),
		},
	}
}

// NameNodeMaster is the alternate NameNode view of the datanode relation,
// through which the master tells its DataNodes it is ready for them.
func NameNodeMaster(x Exchange, localSpec SpecSource, port int) *Relation {
	return &Relation{
		Name:         RelDataNode,
		Role:         RoleProvider,
		RequiredKeys: []string{"private-address", "hostname", "hostfqdn"},
		exchange:     x,
		localSpec:    localSpec,
		readyData: map[string]string{
			"ready": "true",
			"port":  fmt.Sprint(port),
		},
	}
}

// DataNode reports a storage node's identity back to its NameNodes.
func DataNode(x Exchange, hostname, hostfqdn string) *Relation {
	return &Relation{
		Name:         RelDataNode,
		Role:         RoleConsumer,
		RequiredKeys: []string{"private-address", "hostname", "hostfqdn"},
		exchange:     x,
		baseData: map[string]string{
			"hostname": hostname,
			"hostfqdn": hostfqdn,
		},
	}
}

// ResourceManager is the client-side view of the YARN master relation.
func ResourceManager(x Exchange, localSpec SpecSource) *Relation {
	return &Relation{
		Name:         RelResourceManager,
		Role:         RoleConsumer,
		RequiredKeys: []string{"private-address", "port", "ready"},
		exchange:     x,
		localSpec:    localSpec,
	}
}

// ResourceManagerProvider is the ResourceManager's own side of the client
// relation.
func ResourceManagerProvider(x Exchange, localSpec SpecSource, port int) *Relation {
	return &Relation{
		Name:         RelResourceManager,
		Role:         RoleProvider,
		RequiredKeys: []string{"private-address", "port", "ready"},
		exchange:     x,
		localSpec:    localSpec,
		readyData: map[string]string{
			"ready": "true",
			"port":  fmt.Sprint(port),
		},
	}
}

// ResourceManagerMaster is the alternate ResourceManager view of the
// nodemanager relation. The master's public SSH key rides along so
// NodeManagers can authorize it; key material is produced elsewhere and
// treated as opaque here.
func ResourceManagerMaster(x Exchange, localSpec SpecSource, sshKey string) *Relation {
	return &Relation{
		Name:         RelNodeManager,
		Role:         RoleProvider,
		RequiredKeys: []string{"private-address", "ssh-key", "ready"},
		exchange:     x,
		localSpec:    localSpec,
		baseData: map[string]string{
			"ssh-key": sshKey,
		},
		readyData: map[string]string{
			"ready": "true",
		},
	}
}

// NodeManager reports a worker node's identity back to its ResourceManager.
func NodeManager(x Exchange, hostname, hostfqdn string) *Relation {
	return &Relation{
		Name:         RelNodeManager,
		Role:         RoleConsumer,
		RequiredKeys: []string{"private-address", "hostname", "hostfqdn"},
		exchange:     x,
		baseData: map[string]string{
			"hostname": hostname,
			"hostfqdn": hostfqdn,
		},
	}
}

// HadoopPlugin lets co-located client tools learn when HDFS is usable. The
// gate should block until HDFS settles before hdfs-ready is advertised.
func HadoopPlugin(x Exchange, gate func() error) *Relation {
	return &Relation{
		Name:         RelHadoopPlugin,
		Role:         RoleProvider,
		RequiredKeys: []string{"private-address", "hdfs-ready"},
		exchange:     x,
		gate:         gate,
		readyData: map[string]string{
			"hdfs-ready": "true",
		},
	}
}
