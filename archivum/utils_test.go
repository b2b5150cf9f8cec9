package archivum

import "testing"

func TestIsSafeEntryPath(t *testing.T) {
	cases := []struct {
		path string
		safe bool
	}{
		{"a/b/c.txt", true},
		{"a.txt", true},
		{"", false},
		{"/etc/passwd", false},
		{"../escape", false},
		{"a/../../escape", false},
		{"a/..", false},
		{"..", false},
	}
	for _, c := range cases {
		if got := isSafeEntryPath(c.path); got != c.safe {
			t.Errorf("isSafeEntryPath(%q) = %v, want %v", c.path, got, c.safe)
		}
	}
}

func TestResolveUnderRoot(t *testing.T) {
	root := t.TempDir()

	if _, ok := resolveUnderRoot(root, "sub/file.txt"); !ok {
		t.Error("expected sub/file.txt to resolve under root")
	}
	if _, ok := resolveUnderRoot(root, "../escape.txt"); ok {
		t.Error("expected ../escape.txt to be rejected")
	}
	if _, ok := resolveUnderRoot(root, "/abs/escape.txt"); ok {
		t.Error("expected an absolute path to be rejected")
	}
}

func TestCompressionRatio(t *testing.T) {
	if r := compressionRatio(100, 0); r != 1.0 {
		t.Errorf("compressionRatio(100, 0) = %v, want 1.0", r)
	}
	if r := compressionRatio(100, 50); r != 2.0 {
		t.Errorf("compressionRatio(100, 50) = %v, want 2.0", r)
	}
}
