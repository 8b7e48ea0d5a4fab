package hacoord

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/cloudbrew/hadoopctl/pkg/distconfig"
	"github.com/cloudbrew/hadoopctl/pkg/runner"
)

// ProcessControl is the external process-supervision collaborator. The
// coordinator only needs three things from it: stop a daemon before unsafe
// operations, start one idempotently, and ask whether one is running.
type ProcessControl interface {
	Start(ctx context.Context, service string) error
	Stop(ctx context.Context, service string) error
	Running(service string) bool
}

type daemonSpec struct {
	user   string
	script string
	proc   string
}

// daemons maps service names to the stock Hadoop daemon scripts, the user
// they run as, and the Java process name they appear under.
var daemons = map[string]daemonSpec{
	"namenode":          {"hdfs", "sbin/hadoop-daemon.sh", "NameNode"},
	"secondarynamenode": {"hdfs", "sbin/hadoop-daemon.sh", "SecondaryNameNode"},
	"datanode":          {"hdfs", "sbin/hadoop-daemon.sh", "DataNode"},
	"journalnode":       {"hdfs", "sbin/hadoop-daemon.sh", "JournalNode"},
	"resourcemanager":   {"yarn", "sbin/yarn-daemon.sh", "ResourceManager"},
	"nodemanager":       {"yarn", "sbin/yarn-daemon.sh", "NodeManager"},
	"historyserver":     {"mapred", "sbin/mr-jobhistory-daemon.sh", "JobHistoryServer"},
}

// DaemonScripts implements ProcessControl with the distribution's own daemon
// scripts. Start is a no-op when the Java process is already in the process
// table.
type DaemonScripts struct {
	DC  *distconfig.DistConfig
	Run runner.Runner
}

func NewDaemonScripts(dc *distconfig.DistConfig, run runner.Runner) *DaemonScripts {
	return &DaemonScripts{DC: dc, Run: run}
}

func (d *DaemonScripts) daemon(ctx context.Context, command, service string) error {
	ds, known := daemons[service]
	if !known {
		return fmt.Errorf("unknown service: %s", service)
	}
	hadoopHome, err := d.DC.Path("hadoop")
	if err != nil {
		return err
	}
	confDir, err := d.DC.Path("hadoop_conf")
	if err != nil {
		return err
	}
	return d.Run.Run(ctx, ds.user,
		filepath.Join(hadoopHome, ds.script),
		"--config", confDir, command, service)
}

func (d *DaemonScripts) Start(ctx context.Context, service string) error {
	if d.Running(service) {
		return nil
	}
	return d.daemon(ctx, "start", service)
}

func (d *DaemonScripts) Stop(ctx context.Context, service string) error {
	return d.daemon(ctx, "stop", service)
}

func (d *DaemonScripts) Running(service string) bool {
	ds, known := daemons[service]
	if !known {
		return false
	}
	return len(runner.JavaPIDs(ds.proc)) > 0
}
