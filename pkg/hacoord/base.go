package hacoord

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cloudbrew/hadoopctl/pkg/confedit"
	"github.com/cloudbrew/hadoopctl/pkg/distconfig"
	"github.com/cloudbrew/hadoopctl/pkg/log"
	"github.com/cloudbrew/hadoopctl/pkg/runner"
	"github.com/cloudbrew/hadoopctl/pkg/spec"
	"github.com/cloudbrew/hadoopctl/pkg/statestore"
)

// Persistent flag and state keys. Flags are set exactly once, after the
// guarded operation succeeds, and never cleared by this system.
const (
	FlagBaseInstalled = "hadoop.base.installed"

	KeyJavaHome           = "java.home"
	KeyJavaVersion        = "java.version"
	KeyJavaVersionRelease = "java.version.release"
)

// requiredDirs are the logical directories every descriptor must declare:
// the install root, the cluster config dir, and the three service log dirs.
var requiredDirs = []string{"hadoop", "hadoop_conf", "hdfs_log_dir", "mapred_log_dir", "yarn_log_dir"}

// HadoopBase carries the shared per-node state and collaborators for the
// role-specific coordinators.
type HadoopBase struct {
	DC    *distconfig.DistConfig
	Store statestore.Store
	Run   runner.Runner
	Ops   distconfig.SysOps

	// EnvFile is the flat environment file configured during install.
	// Defaults to /etc/environment.
	EnvFile string

	// Arch is the CPU architecture advertised in the interoperability spec.
	Arch string
}

// NewHadoopBase validates the descriptor's required directories and builds
// the shared base. Arch is taken from uname when empty.
func NewHadoopBase(dc *distconfig.DistConfig, store statestore.Store, run runner.Runner) (*HadoopBase, error) {
	if err := dc.ValidateDirs(requiredDirs...); err != nil {
		return nil, err
	}
	return &HadoopBase{
		DC:      dc,
		Store:   store,
		Run:     run,
		Ops:     distconfig.NewExecSysOps(),
		EnvFile: "/etc/environment",
		Arch:    cpuArch(),
	}, nil
}

func cpuArch() string {
	out, err := runner.NewExecRunner().Output(context.Background(), "root", "uname", "-p")
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(out)
}

// Spec generates the interoperability spec advertised to cooperating nodes.
// It returns nil until Java is installed, because the Java version must be
// reflected in the same invocation that installs it.
func (h *HadoopBase) Spec() spec.Spec {
	javaVersion, found, err := h.Store.Get(KeyJavaVersion)
	if err != nil || !found {
		return nil
	}
	return spec.Spec{
		"vendor": h.DC.Vendor,
		"hadoop": h.DC.HadoopVersion,
		"java":   javaVersion,
		"arch":   h.Arch,
	}
}

// IsInstalled reports whether the one-time base install has completed.
func (h *HadoopBase) IsInstalled() bool {
	installed, _ := h.Store.Flag(FlagBaseInstalled)
	return installed
}

// Install converges the node to the installed state: groups, users,
// directories, packages, Java, and the Hadoop environment. Guarded by the
// installed flag unless force is set.
func (h *HadoopBase) Install(ctx context.Context, javaInstaller string, force bool) error {
	if !force && h.IsInstalled() {
		return nil
	}
	baseLog := log.WithComponent("hacoord")
	baseLog.Info().Msg("Installing Hadoop base")

	if err := h.DC.AddGroupsAndUsers(h.Ops); err != nil {
		return err
	}
	if err := h.DC.AddDirs(h.Ops); err != nil {
		return err
	}
	if err := h.DC.AddPackages(h.Ops); err != nil {
		return err
	}
	if err := h.InstallJava(ctx, javaInstaller); err != nil {
		return err
	}
	if err := h.ConfigureEnvironment(); err != nil {
		return err
	}
	if err := h.Store.SetFlag(FlagBaseInstalled); err != nil {
		return err
	}
	baseLog.Info().Msg("Hadoop base installed")
	return nil
}

// InstallJava runs the idempotent Java installer and records JAVA_HOME and
// the Java version. The installer's only output must be two lines: the
// JAVA_HOME path and the version.
func (h *HadoopBase) InstallJava(ctx context.Context, installer string) error {
	out, err := h.Run.Output(ctx, "root", installer)
	if err != nil {
		return err
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		return fmt.Errorf("unexpected output from java installer: %q", out)
	}
	javaHome := strings.TrimSpace(lines[0])
	javaVersion := strings.TrimSpace(lines[1])

	major, release, _ := strings.Cut(javaVersion, "_")
	if err := h.Store.Set(KeyJavaHome, javaHome); err != nil {
		return err
	}
	if err := h.Store.Set(KeyJavaVersion, major); err != nil {
		return err
	}
	return h.Store.Set(KeyJavaVersionRelease, release)
}

// ConfigureEnvironment writes the Hadoop environment into the flat
// environment file and pins JAVA_HOME inside hadoop-env.sh.
func (h *HadoopBase) ConfigureEnvironment() error {
	javaHome, found, err := h.Store.Get(KeyJavaHome)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("java.home not recorded; install Java first")
	}
	hadoopHome, err := h.DC.Path("hadoop")
	if err != nil {
		return err
	}
	confDir, err := h.DC.Path("hadoop_conf")
	if err != nil {
		return err
	}
	hdfsLogDir, err := h.DC.Path("hdfs_log_dir")
	if err != nil {
		return err
	}
	mapredLogDir, err := h.DC.Path("mapred_log_dir")
	if err != nil {
		return err
	}
	yarnLogDir, err := h.DC.Path("yarn_log_dir")
	if err != nil {
		return err
	}

	javaBin := filepath.Join(javaHome, "bin")
	hadoopBin := filepath.Join(hadoopHome, "bin")
	hadoopSbin := filepath.Join(hadoopHome, "sbin")

	err = confedit.EditEnvironment(h.EnvFile, func(env map[string]string) error {
		env["JAVA_HOME"] = javaHome
		path := env["PATH"]
		if path == "" {
			path = "/usr/local/sbin:/usr/local/bin:/usr/sbin:/usr/bin:/sbin:/bin"
		}
		if !strings.Contains(path, javaBin) {
			// correct java must win over any distro one
			path = javaBin + ":" + path
		}
		if !strings.Contains(path, hadoopBin) {
			path = path + ":" + hadoopBin
		}
		if !strings.Contains(path, hadoopSbin) {
			path = path + ":" + hadoopSbin
		}
		env["PATH"] = path
		env["HADOOP_LIBEXEC_DIR"] = filepath.Join(hadoopHome, "libexec")
		env["HADOOP_INSTALL"] = hadoopHome
		env["HADOOP_HOME"] = hadoopHome
		env["HADOOP_COMMON_HOME"] = hadoopHome
		env["HADOOP_HDFS_HOME"] = hadoopHome
		env["HADOOP_MAPRED_HOME"] = hadoopHome
		env["HADOOP_YARN_HOME"] = hadoopHome
		env["HADOOP_CONF_DIR"] = confDir
		env["HADOOP_LOG_DIR"] = hdfsLogDir
		env["HADOOP_MAPRED_LOG_DIR"] = mapredLogDir
		env["YARN_LOG_DIR"] = yarnLogDir
		return nil
	})
	if err != nil {
		return err
	}

	hadoopEnv := filepath.Join(confDir, "hadoop-env.sh")
	return confedit.ReplaceLines(hadoopEnv, map[string]string{
		`export JAVA_HOME *=.*`: "export JAVA_HOME=" + javaHome,
	}, false)
}

// RegisterSlaves rewrites the managed slaves file with the given hostnames.
func (h *HadoopBase) RegisterSlaves(slaves []string) error {
	confDir, err := h.DC.Path("hadoop_conf")
	if err != nil {
		return err
	}
	lines := append([]string{
		"# DO NOT EDIT",
		"# This file is managed by hadoopctl",
	}, slaves...)
	return os.WriteFile(filepath.Join(confDir, "slaves"),
		[]byte(strings.Join(lines, "\n")+"\n"), 0644)
}
