package archivum

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func fileEntry(path string, size uint64, sha string, tarPart uint32) Entry {
	return Entry{Path: path, EntryType: EntryTypeFile, Size: size, SHA256: strPtr(sha), TarPart: tarPart}
}

func TestBuildIndexComputesHeaderCounters(t *testing.T) {
	entries := []Entry{
		fileEntry("a.txt", 5, "deadbeef", 0),
		{Path: "dir", EntryType: EntryTypeDirectory, TarPart: 0},
		fileEntry("b.txt", 7, "cafebabe", 1),
	}
	idx := buildIndex(entries, 1700000000, CompressionGzip, 0, []string{"data"}, "note")

	if idx.TotalFiles != 2 {
		t.Fatalf("TotalFiles = %d, want 2", idx.TotalFiles)
	}
	if idx.TotalDirs != 1 {
		t.Fatalf("TotalDirs = %d, want 1", idx.TotalDirs)
	}
	if idx.TotalSize != 12 {
		t.Fatalf("TotalSize = %d, want 12", idx.TotalSize)
	}
	if idx.TotalParts != 2 {
		t.Fatalf("TotalParts = %d, want 2", idx.TotalParts)
	}
	if idx.Version != IndexVersion {
		t.Fatalf("Version = %d, want %d", idx.Version, IndexVersion)
	}
}

func TestBuildIndexSortsByTarPartThenPath(t *testing.T) {
	entries := []Entry{
		fileEntry("z.txt", 1, "1", 1),
		fileEntry("a.txt", 1, "2", 1),
		fileEntry("m.txt", 1, "3", 0),
	}
	idx := buildIndex(entries, 0, CompressionNone, 0, nil, "")
	var got []string
	for _, e := range idx.Entries {
		got = append(got, e.Path)
	}
	want := []string{"m.txt", "a.txt", "z.txt"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("sorted paths mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildIndexEmptyHasZeroParts(t *testing.T) {
	idx := buildIndex(nil, 0, CompressionNone, 0, nil, "")
	if idx.TotalParts != 0 {
		t.Fatalf("TotalParts = %d, want 0", idx.TotalParts)
	}
}

func TestValidateInvariantsAcceptsWellFormedIndex(t *testing.T) {
	idx := buildIndex([]Entry{
		fileEntry("a.txt", 3, "abc", 0),
	}, 0, CompressionNone, 0, []string{"data"}, "")
	if err := validateInvariants(idx); err != nil {
		t.Fatalf("validateInvariants: %v", err)
	}
}

func TestValidateInvariantsRejectsMissingSHA256(t *testing.T) {
	idx := Index{
		IndexHeader: IndexHeader{Version: IndexVersion, TotalFiles: 1, TotalParts: 1},
		Entries: []Entry{
			{Path: "a.txt", EntryType: EntryTypeFile, Size: 3, TarPart: 0},
		},
	}
	if err := validateInvariants(idx); err == nil {
		t.Fatal("expected an invariant violation for a file entry with no sha256 and no dedup_of")
	}
}

func TestValidateInvariantsRejectsBadDedupReference(t *testing.T) {
	idx := Index{
		IndexHeader: IndexHeader{Version: IndexVersion, TotalFiles: 1, TotalParts: 1},
		Entries: []Entry{
			{Path: "b.txt", EntryType: EntryTypeFile, Size: 3, TarPart: 0, DedupOf: strPtr("missing.txt")},
		},
	}
	if err := validateInvariants(idx); err == nil {
		t.Fatal("expected an invariant violation for a dedup_of pointing at a nonexistent entry")
	}
}

func TestValidateInvariantsRejectsUnsafePath(t *testing.T) {
	idx := Index{
		IndexHeader: IndexHeader{Version: IndexVersion, TotalFiles: 1, TotalParts: 1},
		Entries: []Entry{
			fileEntry("../escape.txt", 1, "abc", 0),
		},
	}
	if err := validateInvariants(idx); err == nil {
		t.Fatal("expected an invariant violation for a path containing ..")
	}
}

func TestMarshalIndexRoundTrips(t *testing.T) {
	idx := buildIndex([]Entry{fileEntry("a.txt", 5, "deadbeef", 0)}, 1700000000, CompressionGzip, 0, []string{"data"}, "")
	data, err := marshalIndex(idx)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	dir := t.TempDir()
	require.NoError(t, writeIndexAndSeal(dir, idx, func(b []byte) string { return "fixed-seal" }))

	loaded, raw, err := loadIndex(dir)
	require.NoError(t, err)
	require.Equal(t, "a.txt", loaded.Entries[0].Path)
	require.NotEmpty(t, raw)

	seal, err := loadSeal(dir)
	require.NoError(t, err)
	require.Equal(t, "fixed-seal", seal)
}

func TestLoadIndexRejectsUnknownVersion(t *testing.T) {
	dir := t.TempDir()
	idx := Index{IndexHeader: IndexHeader{Version: 99}}
	if err := writeIndexAndSeal(dir, idx, func(b []byte) string { return "x" }); err != nil {
		t.Fatalf("writeIndexAndSeal: %v", err)
	}
	if _, _, err := loadIndex(dir); err == nil {
		t.Fatal("expected an error loading an index with an unsupported version")
	}
}
