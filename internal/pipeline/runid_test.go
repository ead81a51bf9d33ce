package pipeline

import (
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewRunIDFormat(t *testing.T) {
	id := newRunID(time.Date(2026, 3, 1, 10, 0, 5, 0, time.UTC), uuid.MustParse("1f2e3d4c-0000-4000-8000-000000000000"))
	if id != "20260301T100005-1f2e3d4c" {
		t.Fatalf("run id = %q", id)
	}
	if !regexp.MustCompile(`^\d{8}T\d{6}-[0-9a-f]{8}$`).MatchString(NewRunID()) {
		t.Fatal("NewRunID does not match the expected format")
	}
	if NewRunID() == NewRunID() {
		t.Fatal("consecutive run ids should differ")
	}
}
