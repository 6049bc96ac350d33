package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "clear <chapter-id>",
		Short: "Delete a chapter's primary, backup, and suspend records",
		Args:  cobra.ExactArgs(1),
		Run:   runClear,
	}

	cmd.Flags().Bool("yes", false, "Skip the confirmation prompt")

	RootCmd.AddCommand(cmd)
}

func runClear(cmd *cobra.Command, args []string) {
	yes, _ := cmd.Flags().GetBool("yes")
	if !yes {
		exitErr("clear", fmt.Errorf("refusing to delete chapter %q without --yes", args[0]))
	}

	gateway, kv := openGateway()
	defer kv.Close()

	if err := gateway.Clear(cmd.Context(), args[0]); err != nil {
		exitErr("clear chapter", err)
	}
	fmt.Printf("cleared chapter %s\n", args[0])
}
