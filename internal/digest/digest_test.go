package digest

import "testing"

func TestSHA256Hex(t *testing.T) {
	t.Parallel()
	got := SHA256Hex([]byte(""))
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if len(got) != 64 {
		t.Fatalf("len = %d, want 64", len(got))
	}
	if got != want {
		t.Fatalf("SHA256Hex(\"\") = %s, want %s", got, want)
	}
}

func TestConstantTimeEqual(t *testing.T) {
	t.Parallel()
	cases := []struct {
		a, b []byte
		want bool
	}{
		{[]byte("abc"), []byte("abc"), true},
		{[]byte("abc"), []byte("abd"), false},
		{[]byte("abc"), []byte("ab"), false},
		{nil, nil, true},
	}
	for _, c := range cases {
		if got := ConstantTimeEqual(c.a, c.b); got != c.want {
			t.Fatalf("ConstantTimeEqual(%q, %q) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}
