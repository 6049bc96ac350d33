package cli

import (
	"encoding/json"
	"fmt"

	"github.com/louisbranch/ironmarch/internal/chapter/domain"
	"github.com/louisbranch/ironmarch/internal/chapter/persist"
	"github.com/louisbranch/ironmarch/internal/telemetry"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "inspect <chapter-id>",
		Short: "Show a chapter's loss data and statistics",
		Args:  cobra.ExactArgs(1),
		Run:   runInspect,
	}

	cmd.Flags().Int("telemetry", 0, "Also print the last N telemetry events")

	RootCmd.AddCommand(cmd)
}

type inspectOutput struct {
	Data       domain.ChapterLossData `json:"data"`
	Statistics domain.LossStatistics  `json:"statistics"`
	Recovered  persist.RecoveryTier   `json:"recovered,omitempty"`
	Telemetry  []telemetry.Event      `json:"telemetry,omitempty"`
}

func runInspect(cmd *cobra.Command, args []string) {
	tail, _ := cmd.Flags().GetInt("telemetry")

	gateway, kv := openGateway()
	defer kv.Close()

	result, err := gateway.Load(cmd.Context(), args[0])
	if err != nil {
		exitErr("load chapter", err)
	}
	if result.Empty {
		exitErr("load chapter", fmt.Errorf("no data for chapter %q", args[0]))
	}

	out := inspectOutput{
		Data:       result.Data,
		Statistics: domain.ComputeLossStatistics(result.Data.LossHistory),
		Recovered:  result.Recovered,
	}
	if tail > 0 {
		events, err := telemetry.NewJournal(kv).Tail(cmd.Context(), tail)
		if err != nil {
			exitErr("read telemetry", err)
		}
		out.Telemetry = events
	}

	b, _ := json.MarshalIndent(out, "", "  ")
	fmt.Println(string(b))
}
