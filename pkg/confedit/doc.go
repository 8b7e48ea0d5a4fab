/*
Package confedit applies declarative edits to the three file formats a Hadoop
node's configuration actually lives in, without disturbing content the caller
did not touch.

# Editors

XML property maps (core-site.xml, hdfs-site.xml, yarn-site.xml,
mapred-site.xml):

	s, err := confedit.OpenProperties("hdfs-site.xml")
	if err != nil {
		return err
	}
	props := s.Props()
	props["dfs.replication"] = "3"
	delete(props, "dfs.permissions")
	return s.Close()

or, with the rewrite guaranteed on every exit path:

	confedit.EditProperties("hdfs-site.xml", func(props map[string]string) error {
		props["dfs.replication"] = "3"
		return nil
	})

Close computes the diff against the original name set: new names become new
entries without a description, changed values are updated in place keeping
their description, deleted names are dropped, everything else is serialized
unchanged. Output is deterministically pretty-printed with 4-space indent and
a trailing newline, so re-applying the same change set is byte-identical.

Flat environment files (/etc/environment) are not diffed: the whole file is
regenerated from the final map with every value double-quoted.

Line-pattern edits (hadoop-env.sh) substitute regex matches line by line,
optionally appending replacements for patterns that matched nothing.

# Concurrency

No editor locks the file. A single orchestration process per node is assumed;
concurrent external writers are a data race out of scope here.
*/
package confedit
