package i18n

// Error codes must match the codes defined in internal/platform/errors/codes.go.
// These are duplicated as strings to avoid an import cycle.
const (
	CodeChapterNotInitialized = "CHAPTER_NOT_INITIALIZED"
	CodeChapterCompleted      = "CHAPTER_COMPLETED"
	CodeInvalidCharacter      = "INVALID_CHARACTER"
	CodeInvalidLossCause      = "INVALID_LOSS_CAUSE"
	CodeLossProcessingFailed  = "LOSS_PROCESSING_FAILED"
	CodeSaveDataCorrupted     = "SAVE_DATA_CORRUPTED"
	CodeSaveFailed            = "SAVE_FAILED"
	CodeSuspendNotFound       = "SUSPEND_NOT_FOUND"
	CodeStorageFailed         = "STORAGE_FAILED"
	CodeSystemError           = "SYSTEM_ERROR"
)

// enUS holds the base locale message templates.
var enUS = map[Code]string{
	CodeChapterNotInitialized: "No chapter is in progress. Start a chapter before issuing orders.",
	CodeChapterCompleted:      "This chapter has already been completed.",
	CodeInvalidCharacter:      "Character data is invalid{{if .character_id}} for {{.character_id}}{{end}}.",
	CodeInvalidLossCause:      "The reported cause of defeat is invalid.",
	CodeLossProcessingFailed:  "The defeat could not be recorded. The battle state is unchanged.",
	CodeSaveDataCorrupted:     "Saved chapter data is corrupted and could not be recovered. Manual recovery is not possible.",
	CodeSaveFailed:            "Progress could not be saved. Check available storage.",
	CodeSuspendNotFound:       "No suspended chapter was found to resume.",
	CodeStorageFailed:         "Storage is unavailable.",
	CodeSystemError:           "An internal error occurred.",
}
