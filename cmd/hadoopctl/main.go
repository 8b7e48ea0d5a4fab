package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/cloudbrew/hadoopctl/pkg/distconfig"
	"github.com/cloudbrew/hadoopctl/pkg/hacoord"
	"github.com/cloudbrew/hadoopctl/pkg/log"
	"github.com/cloudbrew/hadoopctl/pkg/runner"
	"github.com/cloudbrew/hadoopctl/pkg/statestore"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

var (
	flagDescriptor string
	flagDataDir    string
	flagEnvFile    string
	flagLogLevel   string
	flagLogJSON    bool
	flagSet        []string
)

// requiredOptions are the descriptor keys every distribution file must
// carry before any command will act on it.
var requiredOptions = []string{"vendor", "hadoop_version", "groups", "users", "dirs", "ports"}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "hadoopctl",
	Short: "hadoopctl - Hadoop cluster install and HA lifecycle coordinator",
	Long: `hadoopctl converges a node onto its role in a Hadoop cluster: it
installs the base platform, edits the cluster configuration files in
place, and drives the one-time HA NameNode operations in the right
order. Every destructive step is guarded by a durable flag, so commands
can be re-run safely.`,
	Version: Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.Init(log.Config{
			Level:      log.Level(flagLogLevel),
			JSONOutput: flagLogJSON,
		})
	},
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"hadoopctl version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagDescriptor, "descriptor", "/etc/hadoop/dist.yaml", "Distribution descriptor file")
	pf.StringVar(&flagDataDir, "data-dir", "/var/lib/hadoopctl", "Data directory for node state")
	pf.StringVar(&flagEnvFile, "env-file", "/etc/environment", "Environment file managed during install")
	pf.StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	pf.BoolVar(&flagLogJSON, "json", false, "Emit JSON logs")
	pf.StringArrayVar(&flagSet, "set", nil, "Descriptor config values as key=value (repeatable)")

	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(configureCmd)
	rootCmd.AddCommand(namenodeCmd)
	rootCmd.AddCommand(slavesCmd)
	rootCmd.AddCommand(hostsCmd)
	rootCmd.AddCommand(waitCmd)
	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(statusCmd)
}

// nodeContext bundles the collaborators every subcommand needs. Close
// releases the state store.
type nodeContext struct {
	dc    *distconfig.DistConfig
	store statestore.Store
	run   runner.Runner
	base  *hacoord.HadoopBase
}

func (c *nodeContext) Close() {
	if err := c.store.Close(); err != nil {
		log.Errorf("closing state store: %v", err)
	}
}

func configSource() distconfig.ConfigSource {
	values := map[string]string{}
	for _, kv := range flagSet {
		key, value, ok := strings.Cut(kv, "=")
		if ok {
			values[key] = value
		}
	}
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func newNodeContext() (*nodeContext, error) {
	dc, err := distconfig.Load(flagDescriptor, requiredOptions,
		distconfig.WithConfigSource(configSource()))
	if err != nil {
		return nil, err
	}
	store, err := statestore.NewBoltStore(flagDataDir)
	if err != nil {
		return nil, err
	}
	if err := ensureNodeID(store); err != nil {
		store.Close()
		return nil, err
	}
	run := &runner.ExecRunner{EnvFile: flagEnvFile}
	base, err := hacoord.NewHadoopBase(dc, store, run)
	if err != nil {
		store.Close()
		return nil, err
	}
	base.EnvFile = flagEnvFile
	return &nodeContext{dc: dc, store: store, run: run, base: base}, nil
}

// ensureNodeID assigns this node a stable identity on first contact.
func ensureNodeID(store statestore.Store) error {
	id, found, err := store.Get("node.id")
	if err != nil {
		return err
	}
	if !found {
		id = uuid.NewString()
		if err := store.Set("node.id", id); err != nil {
			return err
		}
	}
	log.Logger = log.Logger.With().Str("node", id).Logger()
	return nil
}

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install the Hadoop base platform on this node",
	Long: `Install converges this node to the installed state: service groups
and users, the directory layout, distribution packages, Java, and the
Hadoop environment. It runs once; re-invocations are no-ops unless
--force is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		javaInstaller, _ := cmd.Flags().GetString("java-installer")
		force, _ := cmd.Flags().GetBool("force")

		ctl, err := newNodeContext()
		if err != nil {
			return err
		}
		defer ctl.Close()

		if err := ctl.base.Install(cmd.Context(), javaInstaller, force); err != nil {
			return err
		}
		fmt.Println("✓ Hadoop base installed")
		return nil
	},
}

func init() {
	installCmd.Flags().String("java-installer", "", "Idempotent Java installer script")
	installCmd.Flags().Bool("force", false, "Re-run the install even if already done")
	installCmd.MarkFlagRequired("java-installer")
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show this node's lifecycle state",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctl, err := newNodeContext()
		if err != nil {
			return err
		}
		defer ctl.Close()

		id, _, _ := ctl.store.Get("node.id")
		fmt.Printf("Node:      %s\n", id)
		fmt.Printf("Vendor:    %s %s\n", ctl.dc.Vendor, ctl.dc.HadoopVersion)
		if s := ctl.base.Spec(); s != nil {
			fmt.Printf("Spec:      %v\n", s)
		} else {
			fmt.Println("Spec:      (not available until Java is installed)")
		}
		for _, flag := range []string{
			hacoord.FlagBaseInstalled,
			hacoord.FlagNameNodeFormatted,
			hacoord.FlagClusterDirsCreated,
			hacoord.FlagDemoInstalled,
		} {
			set, _ := ctl.store.Flag(flag)
			mark := " "
			if set {
				mark = "✓"
			}
			fmt.Printf("  [%s] %s\n", mark, flag)
		}
		return nil
	},
}
