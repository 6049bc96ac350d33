package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "suspend-info <chapter-id>",
		Short: "Show a chapter's suspend record",
		Args:  cobra.ExactArgs(1),
		Run:   runSuspendInfo,
	}

	RootCmd.AddCommand(cmd)
}

func runSuspendInfo(cmd *cobra.Command, args []string) {
	gateway, kv := openGateway()
	defer kv.Close()

	record, err := gateway.LoadSuspend(cmd.Context(), args[0])
	if err != nil {
		exitErr("load suspend record", err)
	}

	b, _ := json.MarshalIndent(record, "", "  ")
	fmt.Println(string(b))
}
