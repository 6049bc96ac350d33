package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/louisbranch/ironmarch/internal/chapter/domain"
	"github.com/louisbranch/ironmarch/internal/chapter/persist"
	"github.com/louisbranch/ironmarch/internal/storage"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "verify <chapter-id>",
		Short: "Check primary and backup blobs without modifying them",
		Args:  cobra.ExactArgs(1),
		Run:   runVerify,
	}

	RootCmd.AddCommand(cmd)
}

func runVerify(cmd *cobra.Command, args []string) {
	kv := openKV(loadConfig())
	defer kv.Close()

	chapterID := args[0]
	failures := 0
	for _, copyName := range []struct {
		label  string
		prefix string
	}{
		{"primary", persist.PrimaryKeyPrefix},
		{"backup", persist.BackupKeyPrefix},
	} {
		raw, err := kv.Get(cmd.Context(), copyName.prefix+chapterID)
		if errors.Is(err, storage.ErrNotFound) {
			fmt.Printf("%s: absent\n", copyName.label)
			continue
		}
		if err != nil {
			exitErr("read "+copyName.label, err)
		}
		if err := checkBlob(raw, chapterID); err != nil {
			failures++
			fmt.Printf("%s: INVALID: %v\n", copyName.label, err)
			continue
		}
		fmt.Printf("%s: ok\n", copyName.label)
	}
	if failures > 0 {
		exitErr("verify", fmt.Errorf("%d invalid copies", failures))
	}
}

func checkBlob(raw []byte, chapterID string) error {
	var data domain.ChapterLossData
	if err := json.Unmarshal(raw, &data); err != nil {
		return err
	}
	if data.LostCharacters == nil {
		data.LostCharacters = make(map[string]domain.LostCharacter)
	}
	if err := data.Validate(); err != nil {
		return err
	}
	if data.ChapterID != chapterID {
		return fmt.Errorf("blob belongs to chapter %q", data.ChapterID)
	}
	return nil
}
