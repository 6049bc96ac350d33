package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	err := New(CodeInvalidCharacter, "unit has no id")
	if !stderrors.Is(err, New(CodeInvalidCharacter, "different message")) {
		t.Fatal("expected errors with the same code to match")
	}
	if stderrors.Is(err, New(CodeStorageFailed, "")) {
		t.Fatal("expected errors with different codes not to match")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Wrap(CodeSaveFailed, "write primary chapter data", cause)

	if !stderrors.Is(err, cause) {
		t.Fatal("expected wrapped cause to be found")
	}
	if err.Error() != "write primary chapter data" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestCodeOfWalksChain(t *testing.T) {
	inner := New(CodeSaveDataCorrupted, "blob failed validation")
	outer := fmt.Errorf("loading chapter: %w", inner)

	if code := CodeOf(outer); code != CodeSaveDataCorrupted {
		t.Fatalf("expected %s, got %s", CodeSaveDataCorrupted, code)
	}
	if code := CodeOf(stderrors.New("plain")); code != CodeUnknown {
		t.Fatalf("expected %s for plain error, got %s", CodeUnknown, code)
	}
	if code := CodeOf(nil); code != CodeUnknown {
		t.Fatalf("expected %s for nil, got %s", CodeUnknown, code)
	}
}

func TestRecoverable(t *testing.T) {
	if New(CodeSaveDataCorrupted, "").Recoverable() {
		t.Fatal("expected corruption to be unrecoverable")
	}
	if !New(CodeChapterNotInitialized, "").Recoverable() {
		t.Fatal("expected initialization errors to be recoverable")
	}
}

func TestWithRemediationReturnsCopy(t *testing.T) {
	base := New(CodeSaveFailed, "write failed")
	hinted := base.WithRemediation("check storage capacity")

	if base.Remediation != "" {
		t.Fatal("expected original error untouched")
	}
	if hinted.Remediation != "check storage capacity" {
		t.Fatalf("unexpected remediation %q", hinted.Remediation)
	}
	if hinted.Code != base.Code {
		t.Fatal("expected copy to keep the code")
	}
}

func TestWithMetadataCarriesContext(t *testing.T) {
	err := WithMetadata(CodeInvalidCharacter, "unit has no id",
		map[string]string{"chapter_id": "ch-1"})
	if err.Metadata["chapter_id"] != "ch-1" {
		t.Fatalf("unexpected metadata %v", err.Metadata)
	}
	if err.Timestamp.IsZero() {
		t.Fatal("expected timestamp stamped")
	}
}
