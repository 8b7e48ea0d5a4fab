package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cloudbrew/hadoopctl/pkg/hacoord"
)

var (
	flagNameNodes       []string
	flagJournalNodes    []string
	flagResourceManager string
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Write the cluster configuration for a role on this node",
}

var configureNameNodeCmd = &cobra.Command{
	Use:   "namenode",
	Short: "Configure this node as an HA NameNode",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctl, err := newNodeContext()
		if err != nil {
			return err
		}
		defer ctl.Close()

		hdfs := hacoord.NewHDFS(ctl.base)
		if err := hdfs.ConfigureNameNode(flagNameNodes); err != nil {
			return err
		}
		if len(flagJournalNodes) > 0 {
			if err := hdfs.RegisterJournalNodes(flagJournalNodes); err != nil {
				return err
			}
		}
		fmt.Println("✓ NameNode configured")
		return nil
	},
}

var configureDataNodeCmd = &cobra.Command{
	Use:   "datanode",
	Short: "Configure this node as a DataNode",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctl, err := newNodeContext()
		if err != nil {
			return err
		}
		defer ctl.Close()

		if err := hacoord.NewHDFS(ctl.base).ConfigureDataNode(flagNameNodes); err != nil {
			return err
		}
		fmt.Println("✓ DataNode configured")
		return nil
	},
}

var configureJournalNodeCmd = &cobra.Command{
	Use:   "journalnode",
	Short: "Configure this node as a JournalNode",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctl, err := newNodeContext()
		if err != nil {
			return err
		}
		defer ctl.Close()

		if err := hacoord.NewHDFS(ctl.base).ConfigureJournalNode(); err != nil {
			return err
		}
		fmt.Println("✓ JournalNode configured")
		return nil
	},
}

var configureResourceManagerCmd = &cobra.Command{
	Use:   "resourcemanager HOSTNAME",
	Short: "Configure this node as the ResourceManager",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctl, err := newNodeContext()
		if err != nil {
			return err
		}
		defer ctl.Close()

		if err := hacoord.NewYARN(ctl.base).ConfigureResourceManager(args[0]); err != nil {
			return err
		}
		fmt.Println("✓ ResourceManager configured")
		return nil
	},
}

var configureNodeManagerCmd = &cobra.Command{
	Use:   "nodemanager",
	Short: "Configure this node as a NodeManager",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctl, err := newNodeContext()
		if err != nil {
			return err
		}
		defer ctl.Close()

		if err := hacoord.NewYARN(ctl.base).ConfigureNodeManager(flagResourceManager); err != nil {
			return err
		}
		fmt.Println("✓ NodeManager configured")
		return nil
	},
}

var configureClientCmd = &cobra.Command{
	Use:   "client",
	Short: "Configure this node as a Hadoop client",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctl, err := newNodeContext()
		if err != nil {
			return err
		}
		defer ctl.Close()

		hdfs := hacoord.NewHDFS(ctl.base)
		if err := hdfs.ConfigureClient(flagNameNodes); err != nil {
			return err
		}
		if flagResourceManager != "" {
			if err := hacoord.NewYARN(ctl.base).ConfigureClient(flagResourceManager); err != nil {
				return err
			}
		}
		fmt.Println("✓ Client configured")
		return nil
	},
}

var slavesCmd = &cobra.Command{
	Use:   "slaves HOSTNAME...",
	Short: "Register the worker nodes with the local master daemons",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		service, _ := cmd.Flags().GetString("service")

		ctl, err := newNodeContext()
		if err != nil {
			return err
		}
		defer ctl.Close()

		switch service {
		case "hdfs":
			err = hacoord.NewHDFS(ctl.base).RegisterSlaves(cmd.Context(), args)
		case "yarn":
			err = hacoord.NewYARN(ctl.base).RegisterSlaves(cmd.Context(), args)
		default:
			return fmt.Errorf("service must be 'hdfs' or 'yarn'")
		}
		if err != nil {
			return err
		}
		fmt.Printf("✓ Registered %d slaves\n", len(args))
		return nil
	},
}

func init() {
	configureCmd.AddCommand(configureNameNodeCmd)
	configureCmd.AddCommand(configureDataNodeCmd)
	configureCmd.AddCommand(configureJournalNodeCmd)
	configureCmd.AddCommand(configureResourceManagerCmd)
	configureCmd.AddCommand(configureNodeManagerCmd)
	configureCmd.AddCommand(configureClientCmd)

	for _, c := range []*cobra.Command{configureNameNodeCmd, configureDataNodeCmd, configureClientCmd} {
		c.Flags().StringSliceVar(&flagNameNodes, "namenodes", nil, "The HA NameNode hostnames")
		c.MarkFlagRequired("namenodes")
	}
	configureNameNodeCmd.Flags().StringSliceVar(&flagJournalNodes, "journalnodes", nil, "The JournalNode quorum hostnames")
	configureNodeManagerCmd.Flags().StringVar(&flagResourceManager, "resourcemanager", "", "The ResourceManager hostname")
	configureNodeManagerCmd.MarkFlagRequired("resourcemanager")
	configureClientCmd.Flags().StringVar(&flagResourceManager, "resourcemanager", "", "The ResourceManager hostname")

	slavesCmd.Flags().String("service", "hdfs", "Which master to register with (hdfs or yarn)")
}
