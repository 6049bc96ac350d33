package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List chapters with persisted loss data",
		Run:   runList,
	}

	RootCmd.AddCommand(cmd)
}

func runList(cmd *cobra.Command, args []string) {
	gateway, kv := openGateway()
	defer kv.Close()

	ids, err := gateway.ListChapters(cmd.Context())
	if err != nil {
		exitErr("list chapters", err)
	}
	for _, id := range ids {
		fmt.Println(id)
	}
}
