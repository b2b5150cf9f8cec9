package archivum

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRepairRebuildsIndexFromOrphanParts(t *testing.T) {
	src := t.TempDir()
	writeTestTree(t, src)
	archiveDir := t.TempDir()
	if _, err := Create(CreateOptions{SourceRoot: src, OutputDir: archiveDir, Compression: CompressionGzip}, 0); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := os.Remove(filepath.Join(archiveDir, indexFileName)); err != nil {
		t.Fatalf("removing index: %v", err)
	}
	if err := os.Remove(filepath.Join(archiveDir, sealFileName)); err != nil {
		t.Fatalf("removing seal: %v", err)
	}

	outDir := t.TempDir()
	idx, err := Repair(RepairOptions{ArchiveDir: archiveDir, OutputDir: outDir, Base: "data"}, 1700000300)
	if err != nil {
		t.Fatalf("Repair: %v", err)
	}
	if err := validateInvariants(idx); err != nil {
		t.Fatalf("validateInvariants: %v", err)
	}
	if idx.TotalFiles != 2 {
		t.Errorf("TotalFiles = %d, want 2", idx.TotalFiles)
	}

	report, err := Verify(VerifyOptions{ArchiveDir: outDir})
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !report.Ok {
		t.Errorf("repaired archive failed verify: %+v", report)
	}
}

func TestRepairFailsWithNoOrphanParts(t *testing.T) {
	empty := t.TempDir()
	if _, err := Repair(RepairOptions{ArchiveDir: empty, OutputDir: t.TempDir(), Base: "data"}, 0); err == nil {
		t.Fatal("expected an error when no orphan part files are present")
	}
}
