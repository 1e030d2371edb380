package i18n

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/pilipandr770/sekretar-sub006/catalog"
)

func TestCompileError_Unwrap(t *testing.T) {
	err := &CompileError{Locale: "de", Cause: catalog.ErrNotFound}
	if !errors.Is(err, catalog.ErrNotFound) {
		t.Fatal("CompileError does not unwrap to its cause")
	}
	if !strings.Contains(err.Error(), "de") {
		t.Fatalf("message %q does not name the locale", err.Error())
	}
}

func TestExtractError_Message(t *testing.T) {
	cause := fmt.Errorf("bad html")
	err := &ExtractError{Message: "scanning sources", Cause: cause}
	if !errors.Is(err, cause) {
		t.Fatal("ExtractError does not unwrap to its cause")
	}

	bare := &ExtractError{Message: "saving template"}
	if !strings.Contains(bare.Error(), "saving template") {
		t.Fatalf("message %q missing context", bare.Error())
	}
}
