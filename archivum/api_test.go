package archivum

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestListAndSearch(t *testing.T) {
	src := t.TempDir()
	writeTestTree(t, src)
	out := t.TempDir()
	if _, err := Create(CreateOptions{SourceRoot: src, OutputDir: out, Compression: CompressionNone}, 0); err != nil {
		t.Fatalf("Create: %v", err)
	}

	all, err := List(out, nil)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("List returned %d entries, want 3", len(all))
	}

	matched, err := Search(out, []string{"**/*.txt"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matched) != 2 {
		t.Errorf("Search returned %d entries, want 2", len(matched))
	}

	if _, err := Search(out, nil); err == nil {
		t.Error("expected Search with no patterns to fail")
	}
}

func TestInfoAndStats(t *testing.T) {
	src := t.TempDir()
	writeTestTree(t, src)
	out := t.TempDir()
	if _, err := Create(CreateOptions{SourceRoot: src, OutputDir: out, Compression: CompressionGzip, Notes: "n"}, 42); err != nil {
		t.Fatalf("Create: %v", err)
	}

	hdr, err := Info(out)
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if hdr.Notes != "n" {
		t.Errorf("Notes = %q, want n", hdr.Notes)
	}
	if hdr.CreatedAtUnix != 42 {
		t.Errorf("CreatedAtUnix = %d, want 42", hdr.CreatedAtUnix)
	}

	stats, err := Stats(out)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.CompressionRatio <= 0 {
		t.Errorf("CompressionRatio = %v, want > 0", stats.CompressionRatio)
	}
}

func TestCatStreamsPayload(t *testing.T) {
	src := t.TempDir()
	writeTestTree(t, src)
	out := t.TempDir()
	if _, err := Create(CreateOptions{SourceRoot: src, OutputDir: out, Compression: CompressionNone}, 0); err != nil {
		t.Fatalf("Create: %v", err)
	}

	var buf bytes.Buffer
	if err := Cat(out, "a.txt", &buf); err != nil {
		t.Fatalf("Cat: %v", err)
	}
	if buf.String() != "hello\n" {
		t.Errorf("Cat output = %q, want %q", buf.String(), "hello\n")
	}
}

func TestExtractWritesSingleFile(t *testing.T) {
	src := t.TempDir()
	writeTestTree(t, src)
	out := t.TempDir()
	if _, err := Create(CreateOptions{SourceRoot: src, OutputDir: out, Compression: CompressionGzip}, 0); err != nil {
		t.Fatalf("Create: %v", err)
	}

	dest := filepath.Join(t.TempDir(), "extracted.txt")
	if err := Extract(out, "sub/b.txt", dest, false); err != nil {
		t.Fatalf("Extract: %v", err)
	}
	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "world\n" {
		t.Errorf("extracted content = %q, want %q", got, "world\n")
	}
}

func TestPruneKeepsMinimumAndAge(t *testing.T) {
	now := int64(1000)
	dirs := make([]string, 4)
	mtimes := map[string]int64{}
	for i := range dirs {
		d := t.TempDir()
		dirs[i] = d
		mtimes[d] = now - int64(i)*100
	}

	removed, err := Prune(dirs, mtimes, now-150, 1)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if len(removed) != 2 {
		t.Fatalf("removed %d dirs, want 2: %v", len(removed), removed)
	}
	for _, r := range removed {
		if _, err := os.Stat(r); !os.IsNotExist(err) {
			t.Errorf("expected %s to be removed", r)
		}
	}
	if _, err := os.Stat(dirs[0]); err != nil {
		t.Errorf("newest archive should survive prune: %v", err)
	}
}
