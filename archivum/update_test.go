package archivum

import (
	"os"
	"path/filepath"
	"testing"
)

func TestUpdateCopiesUnchangedAndRehashesModified(t *testing.T) {
	src := t.TempDir()
	writeTestTree(t, src)
	oldDir := t.TempDir()
	if _, err := Create(CreateOptions{SourceRoot: src, OutputDir: oldDir, Compression: CompressionGzip}, 0); err != nil {
		t.Fatalf("Create: %v", err)
	}

	mustWrite(t, filepath.Join(src, "a.txt"), "hello again\n")
	mustWrite(t, filepath.Join(src, "new.txt"), "brand new\n")

	newDir := t.TempDir()
	idx, err := Update(UpdateOptions{
		OldArchiveDir: oldDir,
		SourceRoot:    src,
		OutputDir:     newDir,
		Compression:   CompressionGzip,
	}, 1700000100)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := validateInvariants(idx); err != nil {
		t.Fatalf("validateInvariants: %v", err)
	}

	report, err := Verify(VerifyOptions{ArchiveDir: newDir})
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !report.Ok {
		t.Errorf("updated archive failed verify: %+v", report)
	}

	dst := t.TempDir()
	if err := Restore(RestoreOptions{ArchiveDir: newDir, TargetDir: dst}); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	for name, want := range map[string]string{
		"a.txt":     "hello again\n",
		"sub/b.txt": "world\n",
		"new.txt":   "brand new\n",
	} {
		got, err := os.ReadFile(filepath.Join(dst, name))
		if err != nil {
			t.Fatalf("ReadFile %s: %v", name, err)
		}
		if string(got) != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}
}

func TestUpdateDropsRemovedEntries(t *testing.T) {
	src := t.TempDir()
	writeTestTree(t, src)
	oldDir := t.TempDir()
	if _, err := Create(CreateOptions{SourceRoot: src, OutputDir: oldDir, Compression: CompressionNone}, 0); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := os.Remove(filepath.Join(src, "sub", "b.txt")); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	newDir := t.TempDir()
	idx, err := Update(UpdateOptions{OldArchiveDir: oldDir, SourceRoot: src, OutputDir: newDir, Compression: CompressionNone}, 0)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	for _, e := range idx.Entries {
		if e.Path == "sub/b.txt" {
			t.Fatal("removed path sub/b.txt should not appear in the updated index")
		}
	}
}
