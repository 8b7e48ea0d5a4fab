package hacoord

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/cloudbrew/hadoopctl/pkg/confedit"
	"github.com/cloudbrew/hadoopctl/pkg/log"
)

const FlagDemoInstalled = "yarn.client.demo.installed"

// YARN coordinates the compute side: ResourceManager, NodeManager, and the
// MapReduce job history server configuration.
type YARN struct {
	Base *HadoopBase
	PC   ProcessControl
}

func NewYARN(base *HadoopBase) *YARN {
	return &YARN{Base: base, PC: NewDaemonScripts(base.DC, base.Run)}
}

func (y *YARN) confFile(name string) (string, error) {
	confDir, err := y.Base.DC.Path("hadoop_conf")
	if err != nil {
		return "", err
	}
	return filepath.Join(confDir, name), nil
}

// configureBase writes the yarn-site and mapred-site settings shared by
// every YARN role, all pointed at the given ResourceManager host.
func (y *YARN) configureBase(rmHost string) error {
	yarnSite, err := y.confFile("yarn-site.xml")
	if err != nil {
		return err
	}
	rmPort, ok := y.Base.DC.Port("resourcemanager")
	if !ok {
		rmPort = 8032
	}
	webPort, ok := y.Base.DC.Port("rm_webapp_http")
	if !ok {
		webPort = 8088
	}
	historyWeb, ok := y.Base.DC.Port("jh_webapp_http")
	if !ok {
		historyWeb = 19888
	}
	err = confedit.EditProperties(yarnSite, func(props map[string]string) error {
		props["yarn.resourcemanager.hostname"] = rmHost
		props["yarn.resourcemanager.address"] = fmt.Sprintf("%s:%d", rmHost, rmPort)
		props["yarn.resourcemanager.webapp.address"] = fmt.Sprintf("%s:%d", rmHost, webPort)
		props["yarn.nodemanager.aux-services"] = "mapreduce_shuffle"
		props["yarn.nodemanager.aux-services.mapreduce_shuffle.class"] =
			"org.apache.hadoop.mapred.ShuffleHandler"
		// virtual memory accounting kills healthy JVMs on small nodes
		props["yarn.nodemanager.vmem-check-enabled"] = "false"
		props["yarn.log.server.url"] = fmt.Sprintf("http://%s:%d/jobhistory/logs/", rmHost, historyWeb)
		return nil
	})
	if err != nil {
		return err
	}

	mapredSite, err := y.confFile("mapred-site.xml")
	if err != nil {
		return err
	}
	return confedit.EditProperties(mapredSite, func(props map[string]string) error {
		props["mapreduce.framework.name"] = "yarn"
		props["mapreduce.map.output.compress"] = "true"
		props["mapred.map.output.compress.codec"] = "org.apache.hadoop.io.compress.SnappyCodec"
		return nil
	})
}

// ConfigureResourceManager writes the ResourceManager's own view plus the
// job history server addresses, which live on the same host.
func (y *YARN) ConfigureResourceManager(rmHost string) error {
	if err := y.configureBase(rmHost); err != nil {
		return err
	}
	return y.ConfigureJobHistory(rmHost)
}

// ConfigureJobHistory points mapred-site at the history server and at the
// shared history directories created by the NameNode.
func (y *YARN) ConfigureJobHistory(host string) error {
	mapredSite, err := y.confFile("mapred-site.xml")
	if err != nil {
		return err
	}
	rpcPort, ok := y.Base.DC.Port("jobhistory")
	if !ok {
		rpcPort = 10020
	}
	webPort, ok := y.Base.DC.Port("jh_webapp_http")
	if !ok {
		webPort = 19888
	}
	return confedit.EditProperties(mapredSite, func(props map[string]string) error {
		props["mapreduce.jobhistory.address"] = fmt.Sprintf("%s:%d", host, rpcPort)
		props["mapreduce.jobhistory.webapp.address"] = fmt.Sprintf("%s:%d", host, webPort)
		props["mapreduce.jobhistory.intermediate-done-dir"] = "/mr-history/tmp"
		props["mapreduce.jobhistory.done-dir"] = "/mr-history/done"
		return nil
	})
}

// ConfigureNodeManager writes the NodeManager view of the given
// ResourceManager.
func (y *YARN) ConfigureNodeManager(rmHost string) error {
	return y.configureBase(rmHost)
}

// ConfigureClient writes the client view so job submission resolves the
// ResourceManager.
func (y *YARN) ConfigureClient(rmHost string) error {
	return y.configureBase(rmHost)
}

// InstallDemo copies the bundled demo job into the ubuntu user's home so a
// fresh cluster can be smoke-tested. At most once per node.
func (y *YARN) InstallDemo(ctx context.Context, source string) error {
	if done, _ := y.Base.Store.Flag(FlagDemoInstalled); done {
		return nil
	}
	yarnLog := log.WithComponent("yarn")
	yarnLog.Info().Str("source", source).Msg("Installing demo job")
	dest := "/home/ubuntu/" + filepath.Base(source)
	if err := y.Base.Run.Run(ctx, "root", "cp", "-R", source, dest); err != nil {
		return err
	}
	if err := y.Base.Run.Run(ctx, "root", "chmod", "-R", "755", dest); err != nil {
		return err
	}
	if err := y.Base.Run.Run(ctx, "root", "chown", "-R", "ubuntu:hadoop", dest); err != nil {
		return err
	}
	return y.Base.Store.SetFlag(FlagDemoInstalled)
}

// RegisterSlaves rewrites the slaves file and asks a running
// ResourceManager to re-read it.
func (y *YARN) RegisterSlaves(ctx context.Context, slaves []string) error {
	if err := y.Base.RegisterSlaves(slaves); err != nil {
		return err
	}
	if y.PC.Running("resourcemanager") {
		hadoopHome, err := y.Base.DC.Path("hadoop")
		if err != nil {
			return err
		}
		return y.Base.Run.Run(ctx, "mapred",
			filepath.Join(hadoopHome, "bin/yarn"), "rmadmin", "-refreshNodes")
	}
	return nil
}
