package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/louisbranch/ironmarch/internal/chapter/domain"
	"github.com/louisbranch/ironmarch/internal/chapter/ledger"
	"github.com/louisbranch/ironmarch/internal/chapter/persist"
	"github.com/louisbranch/ironmarch/internal/storage"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "repair <chapter-id>",
		Short: "Repair structural inconsistencies in a chapter's primary blob",
		Args:  cobra.ExactArgs(1),
		Run:   runRepair,
	}

	cmd.Flags().Bool("dry-run", false, "Report repairs without writing")

	RootCmd.AddCommand(cmd)
}

func runRepair(cmd *cobra.Command, args []string) {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	chapterID := args[0]

	gateway, kv := openGateway()
	defer kv.Close()

	raw, err := kv.Get(cmd.Context(), persist.PrimaryKeyPrefix+chapterID)
	if errors.Is(err, storage.ErrNotFound) {
		exitErr("repair", fmt.Errorf("no data for chapter %q", chapterID))
	}
	if err != nil {
		exitErr("read primary", err)
	}

	var data domain.ChapterLossData
	if err := json.Unmarshal(raw, &data); err != nil {
		exitErr("repair", fmt.Errorf("blob is not parseable, try 'backup promote': %w", err))
	}

	led := ledger.New()
	if err := led.RestoreForRepair(data); err != nil {
		exitErr("repair", err)
	}
	repairs := led.ValidateAndRepair()

	for _, repair := range repairs {
		fmt.Printf("%s %s: %s\n", repair.Kind, repair.CharacterID, repair.Detail)
	}
	if len(repairs) == 0 {
		fmt.Println("no repairs needed")
	}
	if dryRun {
		return
	}

	if err := gateway.Save(cmd.Context(), led.Serialize()); err != nil {
		exitErr("write repaired data", err)
	}
	fmt.Printf("repaired chapter %s (%d corrections)\n", chapterID, len(repairs))
}
