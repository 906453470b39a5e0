package capsa

import (
	"encoding/json"
	"testing"
)

func TestStructuredData_PreservesInsertionOrder(t *testing.T) {
	s := NewStructuredData()
	s.Set("z", 1).Set("a", 2).Set("m", 3)

	raw, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"z":1,"a":2,"m":3}`
	if string(raw) != want {
		t.Fatalf("expected %s, got %s", want, raw)
	}
}

func TestStructuredData_UpdateKeepsPosition(t *testing.T) {
	s := NewStructuredData()
	s.Set("a", 1).Set("b", 2)
	s.Set("a", 99)

	raw, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"a":99,"b":2}`
	if string(raw) != want {
		t.Fatalf("expected %s, got %s", want, raw)
	}
}

func TestStructuredData_Len(t *testing.T) {
	s := NewStructuredData()
	if s.Len() != 0 {
		t.Fatalf("expected empty length 0, got %d", s.Len())
	}
	s.Set("a", 1).Set("b", 2)
	if s.Len() != 2 {
		t.Fatalf("expected length 2, got %d", s.Len())
	}
}
