package matching

import (
	"testing"

	"github.com/lib/pq"
)

func TestStrangerExcludeListNeverBindsNull(t *testing.T) {
	// A user with no relation rows yields a nil exclusion list. Bound
	// as-is it becomes SQL NULL and ANY(NULL) filters out every
	// stranger, so the bind must stay a real empty array.
	value, err := pq.Array(emptyIfNil(nil)).Value()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value == nil {
		t.Fatal("expected an empty array bind, got SQL NULL")
	}
	if s, ok := value.(string); !ok || s != "{}" {
		t.Errorf("expected {} bind, got %v", value)
	}

	value, err = pq.Array(emptyIfNil([]string{"u-1"})).Value()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s, ok := value.(string); !ok || s != `{"u-1"}` {
		t.Errorf("expected populated array bind, got %v", value)
	}
}
