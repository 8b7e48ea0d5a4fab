package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cloudbrew/hadoopctl/pkg/errdefs"
	"github.com/cloudbrew/hadoopctl/pkg/spec"
)

var specCmd = &cobra.Command{
	Use:   "spec",
	Short: "Inspect and check the node interoperability spec",
	Long: `A node advertises an identity spec (vendor, hadoop version, java
version, architecture) to the nodes it cooperates with. Before trusting
a remote unit's advertised capability, its spec must satisfy every field
this node cares about; a mismatch is a permanent misconfiguration, not
a transient condition.`,
}

var specShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the spec this node advertises",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctl, err := newNodeContext()
		if err != nil {
			return err
		}
		defer ctl.Close()

		local := ctl.base.Spec()
		if local == nil {
			return fmt.Errorf("spec not available until Java is installed")
		}
		encoded, err := local.Encode()
		if err != nil {
			return err
		}
		fmt.Println(encoded)
		return nil
	},
}

var specCheckCmd = &cobra.Command{
	Use:   "check JSON|@FILE",
	Short: "Check a remote unit's spec against this node's",
	Long: `Check decodes a remote unit's advertised spec (a JSON object given
inline or via @file) and verifies it satisfies this node's spec. Exits
non-zero on a mismatch, naming the first incompatible field.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw := args[0]
		if len(raw) > 1 && raw[0] == '@' {
			data, err := os.ReadFile(raw[1:])
			if err != nil {
				return err
			}
			raw = string(data)
		}
		remote, err := spec.Decode(raw)
		if err != nil {
			return fmt.Errorf("malformed remote spec: %v", err)
		}

		ctl, err := newNodeContext()
		if err != nil {
			return err
		}
		defer ctl.Close()

		local := ctl.base.Spec()
		if local == nil {
			return fmt.Errorf("spec not available until Java is installed")
		}
		if key, mismatched := spec.Mismatch(local, remote); mismatched {
			return errdefs.NewCompatibilityError("remote", key, local[key], remote[key])
		}
		fmt.Println("✓ Specs are compatible")
		return nil
	},
}

func init() {
	specCmd.AddCommand(specShowCmd)
	specCmd.AddCommand(specCheckCmd)
	rootCmd.AddCommand(specCmd)
}
