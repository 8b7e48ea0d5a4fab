/*
Package statestore provides durable per-node key/value state using BoltDB.

The store records which one-time operations (NameNode format, cluster
directory creation, base install) have already completed, so repeated
orchestration runs converge instead of re-executing destructive commands.
It also holds node identity values (java.home, node.id) and the managed
host registry used to rebuild /etc/hosts.

The store is node-local, opened once per process, and accessed by a single
orchestration process at a time; no cross-process locking is provided.

# Usage

	store, err := statestore.NewBoltStore("/var/lib/hadoopctl")
	if err != nil {
		return err
	}
	defer store.Close()

	formatted, _ := store.Flag("hdfs.namenode.formatted")
	if !formatted {
		// ... run the format ...
		store.SetFlag("hdfs.namenode.formatted")
	}
*/
package statestore
