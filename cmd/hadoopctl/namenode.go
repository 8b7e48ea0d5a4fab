package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cloudbrew/hadoopctl/pkg/errdefs"
	"github.com/cloudbrew/hadoopctl/pkg/hacoord"
	"github.com/cloudbrew/hadoopctl/pkg/log"
	"github.com/cloudbrew/hadoopctl/pkg/metrics"
)

var (
	flagCandidates []string
	flagPreferred  string
)

var namenodeCmd = &cobra.Command{
	Use:   "namenode",
	Short: "Drive the one-time HA NameNode operations",
	Long: `The namenode subcommands perform the destructive, order-dependent
steps of bringing up an HA NameNode pair. Each step records a durable
flag once it succeeds and becomes a no-op afterwards, so the commands
can be re-run without damaging cluster state.`,
}

var namenodeFormatCmd = &cobra.Command{
	Use:   "format",
	Short: "Format the NameNode metadata directory (first NameNode only)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctl, err := newNodeContext()
		if err != nil {
			return err
		}
		defer ctl.Close()

		if err := hacoord.NewHDFS(ctl.base).Format(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("✓ NameNode formatted")
		return nil
	},
}

var namenodeInitSharedEditsCmd = &cobra.Command{
	Use:   "init-shared-edits",
	Short: "Initialize the shared edits directory on the JournalNodes",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctl, err := newNodeContext()
		if err != nil {
			return err
		}
		defer ctl.Close()

		if err := hacoord.NewHDFS(ctl.base).InitSharedEdits(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("✓ Shared edits initialized")
		return nil
	},
}

var namenodeBootstrapStandbyCmd = &cobra.Command{
	Use:   "bootstrap-standby",
	Short: "Copy the namespace from the active NameNode (second NameNode only)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctl, err := newNodeContext()
		if err != nil {
			return err
		}
		defer ctl.Close()

		if err := hacoord.NewHDFS(ctl.base).BootstrapStandby(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("✓ Standby bootstrapped")
		return nil
	},
}

var namenodeEnsureActiveCmd = &cobra.Command{
	Use:   "ensure-active",
	Short: "Make sure one of the two NameNodes is active",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctl, err := newNodeContext()
		if err != nil {
			return err
		}
		defer ctl.Close()

		err = hacoord.NewHDFS(ctl.base).EnsureHAActive(cmd.Context(), flagCandidates, flagPreferred)
		if errors.Is(err, errdefs.ErrNotTwoNodes) {
			return fmt.Errorf("--candidates must name exactly two NameNodes, got %d", len(flagCandidates))
		}
		if err != nil {
			return err
		}
		fmt.Println("✓ An active NameNode is present")
		return nil
	},
}

var namenodeStateCmd = &cobra.Command{
	Use:   "state NODE",
	Short: "Print the HA service state of a NameNode",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctl, err := newNodeContext()
		if err != nil {
			return err
		}
		defer ctl.Close()

		fmt.Println(hacoord.NewHDFS(ctl.base).ServiceState(cmd.Context(), args[0]))
		return nil
	},
}

var namenodeCreateDirsCmd = &cobra.Command{
	Use:   "create-dirs",
	Short: "Create the shared HDFS directory tree (active NameNode only)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctl, err := newNodeContext()
		if err != nil {
			return err
		}
		defer ctl.Close()

		if err := hacoord.NewHDFS(ctl.base).CreateClusterDirs(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("✓ Cluster directories created")
		return nil
	},
}

func init() {
	namenodeCmd.AddCommand(namenodeFormatCmd)
	namenodeCmd.AddCommand(namenodeInitSharedEditsCmd)
	namenodeCmd.AddCommand(namenodeBootstrapStandbyCmd)
	namenodeCmd.AddCommand(namenodeEnsureActiveCmd)
	namenodeCmd.AddCommand(namenodeStateCmd)
	namenodeCmd.AddCommand(namenodeCreateDirsCmd)

	for _, c := range []*cobra.Command{namenodeEnsureActiveCmd, monitorCmd} {
		c.Flags().StringSliceVar(&flagCandidates, "candidates", nil, "The two NameNode hostnames")
		c.Flags().StringVar(&flagPreferred, "preferred", "", "NameNode to promote when neither is active")
		c.MarkFlagRequired("candidates")
		c.MarkFlagRequired("preferred")
	}
}

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Watch the NameNode pair and keep one active",
	Long: `Monitor periodically re-runs the ensure-active check against the
NameNode pair and serves Prometheus metrics for the commands it issues.
It runs until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		listen, _ := cmd.Flags().GetString("listen")
		interval, _ := cmd.Flags().GetDuration("interval")

		ctl, err := newNodeContext()
		if err != nil {
			return err
		}
		defer ctl.Close()

		hdfs := hacoord.NewHDFS(ctl.base)
		monLog := log.WithComponent("monitor")

		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			fmt.Fprintln(w, "ok")
		})
		srv := &http.Server{Addr: listen, Handler: mux}
		errCh := make(chan error, 1)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()
		monLog.Info().Str("listen", listen).Dur("interval", interval).Msg("Monitor started")

		check := func() {
			if err := hdfs.EnsureHAActive(cmd.Context(), flagCandidates, flagPreferred); err != nil {
				monLog.Error().Err(err).Msg("Failover check failed")
			}
		}
		check()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		for {
			select {
			case <-ticker.C:
				check()
			case err := <-errCh:
				return err
			case <-sigCh:
				monLog.Info().Msg("Shutting down")
				return srv.Close()
			}
		}
	},
}

func init() {
	monitorCmd.Flags().String("listen", ":9104", "Metrics listen address")
	monitorCmd.Flags().Duration("interval", time.Minute, "Failover check interval")
}
