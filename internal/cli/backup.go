package cli

import (
	"errors"
	"fmt"

	"github.com/louisbranch/ironmarch/internal/chapter/persist"
	"github.com/louisbranch/ironmarch/internal/storage"
	"github.com/spf13/cobra"
)

func init() {
	backup := &cobra.Command{
		Use:   "backup",
		Short: "Manage backup copies",
	}
	promote := &cobra.Command{
		Use:   "promote <chapter-id>",
		Short: "Overwrite the primary blob with the backup copy",
		Args:  cobra.ExactArgs(1),
		Run:   runBackupPromote,
	}

	backup.AddCommand(promote)
	RootCmd.AddCommand(backup)
}

func runBackupPromote(cmd *cobra.Command, args []string) {
	kv := openKV(loadConfig())
	defer kv.Close()

	chapterID := args[0]
	raw, err := kv.Get(cmd.Context(), persist.BackupKeyPrefix+chapterID)
	if errors.Is(err, storage.ErrNotFound) {
		exitErr("promote", fmt.Errorf("no backup for chapter %q", chapterID))
	}
	if err != nil {
		exitErr("read backup", err)
	}
	if err := checkBlob(raw, chapterID); err != nil {
		exitErr("promote", fmt.Errorf("backup is invalid: %w", err))
	}
	if err := kv.Set(cmd.Context(), persist.PrimaryKeyPrefix+chapterID, raw); err != nil {
		exitErr("write primary", err)
	}
	fmt.Printf("promoted backup for chapter %s\n", chapterID)
}
