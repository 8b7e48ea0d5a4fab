/*
Package distconfig loads and materializes the distribution descriptor: the
vendor-specific groups, users, directories, packages, and ports a Hadoop
deployment needs on every node.

The descriptor is YAML, loaded once per process and immutable thereafter:

	vendor: apache
	hadoop_version: 2.7.1
	packages:
	  - libsnappy1
	groups:
	  - hadoop
	users:
	  hdfs:
	    groups: ['hadoop']
	dirs:
	  hadoop:
	    path: '/usr/lib/hadoop'
	    perms: 0o755
	  hdfs_log_dir:
	    path: '{dirs[log_base]}/hdfs'
	    owner: 'hdfs'
	    group: 'hadoop'
	ports:
	  namenode:
	    port: 8020
	  nn_webapp_http:
	    port: 50070
	    exposed_on: 'namenode'

Directory paths may reference other directories ({dirs[...]}) and external
configuration values ({config[...]}); Path() iterates substitution until
stable, with a bounded pass count so a cyclic reference fails loudly instead
of hanging.

Materialization (AddGroupsAndUsers, AddDirs, AddPackages) is idempotent
convergence through the SysOps collaborator: creating something that already
exists is a no-op. Groups are created before users before directories, since
directory ownership references both.
*/
package distconfig
