package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/cloudbrew/hadoopctl/pkg/hosts"
	"github.com/cloudbrew/hadoopctl/pkg/wait"
)

var flagHostsFile string

var hostsCmd = &cobra.Command{
	Use:   "hosts",
	Short: "Manage the cluster entries in /etc/hosts",
	Long: `The hosts subcommands keep a managed block of cluster hostname
entries in /etc/hosts, leaving everything else in the file untouched.
DNS inside provider networks is often unreliable; registering peers
here keeps the Hadoop daemons resolving each other consistently.`,
}

var hostsSetCmd = &cobra.Command{
	Use:   "set HOSTNAME ADDRESS",
	Short: "Register or update a cluster host entry",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctl, err := newNodeContext()
		if err != nil {
			return err
		}
		defer ctl.Close()

		ip, err := hosts.ResolvePrivateAddress(args[1])
		if err != nil {
			return err
		}
		m := hosts.NewManager(ctl.store, flagHostsFile)
		if err := m.UpdateHost(ip, args[0]); err != nil {
			return err
		}
		if err := m.Apply(); err != nil {
			return err
		}
		fmt.Printf("✓ %s -> %s\n", args[0], ip)
		return nil
	},
}

var hostsRemoveCmd = &cobra.Command{
	Use:   "remove HOSTNAME...",
	Short: "Remove cluster host entries",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctl, err := newNodeContext()
		if err != nil {
			return err
		}
		defer ctl.Close()

		m := hosts.NewManager(ctl.store, flagHostsFile)
		if err := m.RemoveHosts(args...); err != nil {
			return err
		}
		return m.Apply()
	},
}

func init() {
	hostsCmd.AddCommand(hostsSetCmd)
	hostsCmd.AddCommand(hostsRemoveCmd)
	hostsCmd.PersistentFlags().StringVar(&flagHostsFile, "hosts-file", "/etc/hosts", "Hosts file to manage")
}

var flagWaitTimeout time.Duration

var waitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Block until a cluster dependency is ready",
}

var waitHDFSCmd = &cobra.Command{
	Use:   "hdfs",
	Short: "Wait until HDFS reports live DataNodes and safe mode is off",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctl, err := newNodeContext()
		if err != nil {
			return err
		}
		defer ctl.Close()

		if err := wait.ForHDFS(ctl.run, flagWaitTimeout); err != nil {
			return err
		}
		fmt.Println("✓ HDFS is ready")
		return nil
	},
}

var waitConnectCmd = &cobra.Command{
	Use:   "connect HOST PORT",
	Short: "Wait until a TCP port accepts connections",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		port, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid port %q: %v", args[1], err)
		}
		if err := wait.ForConnect(args[0], port, flagWaitTimeout); err != nil {
			return err
		}
		fmt.Printf("✓ %s:%d is reachable\n", args[0], port)
		return nil
	},
}

var waitProcessCmd = &cobra.Command{
	Use:   "process NAME",
	Short: "Wait until a Hadoop Java process appears",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := wait.ForProcess(args[0], flagWaitTimeout); err != nil {
			return err
		}
		fmt.Printf("✓ %s is running\n", args[0])
		return nil
	},
}

func init() {
	waitCmd.AddCommand(waitHDFSCmd)
	waitCmd.AddCommand(waitConnectCmd)
	waitCmd.AddCommand(waitProcessCmd)
	waitCmd.PersistentFlags().DurationVar(&flagWaitTimeout, "timeout", 30*time.Minute, "How long to wait before giving up")
}
