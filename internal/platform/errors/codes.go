package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Chapter lifecycle errors
	CodeChapterNotInitialized Code = "CHAPTER_NOT_INITIALIZED"
	CodeChapterCompleted      Code = "CHAPTER_COMPLETED"

	// Loss processing errors
	CodeInvalidCharacter     Code = "INVALID_CHARACTER"
	CodeInvalidLossCause     Code = "INVALID_LOSS_CAUSE"
	CodeLossProcessingFailed Code = "LOSS_PROCESSING_FAILED"

	// Persistence errors
	CodeSaveDataCorrupted Code = "SAVE_DATA_CORRUPTED"
	CodeSaveFailed        Code = "SAVE_FAILED"
	CodeSuspendNotFound   Code = "SUSPEND_NOT_FOUND"

	// Storage errors
	CodeStorageFailed Code = "STORAGE_FAILED"

	// Internal errors
	CodeSystemError Code = "SYSTEM_ERROR"
)

// Recoverable reports whether an error with this code can be retried or
// resolved without discarding chapter state. Corruption that survived every
// recovery tier is the only unrecoverable case.
func (c Code) Recoverable() bool {
	return c != CodeSaveDataCorrupted
}
