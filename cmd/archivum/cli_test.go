package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fulmenhq/archivum/archivum"
	"github.com/fulmenhq/archivum/internal/config"
	"github.com/fulmenhq/archivum/internal/output"
)

// setupTestCLI resets the package-level globals every command reads from,
// the same ones root.go's PersistentPreRunE would otherwise set, and
// returns the buffer out.Out/out.Err write to.
func setupTestCLI(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	ctx := output.New(false, false, false)
	ctx.Out = buf
	ctx.Err = buf
	out = ctx
	cfg = config.Default()
	flags = globalFlags{}
	return buf
}

func writeSourceTree(t *testing.T, root string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("hello\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "b.txt"), []byte("world\n"), 0o644))
}

func TestParseCompressionKnownValues(t *testing.T) {
	cases := map[string]archivum.Compression{
		"none":  archivum.CompressionNone,
		"gzip":  archivum.CompressionGzip,
		"zstd":  archivum.CompressionZstd,
		"bzip2": archivum.CompressionBzip2,
		"lz4":   archivum.CompressionLZ4,
	}
	for in, want := range cases {
		got, err := parseCompression(in)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestParseCompressionRejectsUnknown(t *testing.T) {
	_, err := parseCompression("rar")
	require.Error(t, err)
	ae, ok := err.(*archivum.ArchivumError)
	require.True(t, ok, "expected an *archivum.ArchivumError, got %T", err)
	require.Equal(t, archivum.ExitUsage, ae.ExitCode())
}

func TestCreateCommandWritesArchive(t *testing.T) {
	setupTestCLI(t)
	src := t.TempDir()
	writeSourceTree(t, src)
	archiveDir := t.TempDir()

	cmd := newCreateCmd()
	require.NoError(t, cmd.Flags().Set("output", archiveDir))
	cmd.SetArgs([]string{src})
	require.NoError(t, cmd.Execute())

	require.FileExists(t, filepath.Join(archiveDir, "index.arc.json"))
}

func TestCreateCommandRequiresOutputFlag(t *testing.T) {
	setupTestCLI(t)
	src := t.TempDir()
	writeSourceTree(t, src)

	cmd := newCreateCmd()
	cmd.SetArgs([]string{src})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	require.Error(t, cmd.Execute())
}

func TestCreateCommandDryRunSkipsWrite(t *testing.T) {
	buf := setupTestCLI(t)
	flags.dryRun = true
	src := t.TempDir()
	writeSourceTree(t, src)
	archiveDir := filepath.Join(t.TempDir(), "archive")

	cmd := newCreateCmd()
	require.NoError(t, cmd.Flags().Set("output", archiveDir))
	cmd.SetArgs([]string{src})
	require.NoError(t, cmd.Execute())

	_, err := os.Stat(archiveDir)
	require.True(t, os.IsNotExist(err), "dry-run should not have created %s", archiveDir)
	require.Contains(t, buf.String(), "[dry-run]")
}

func createFixtureArchive(t *testing.T) (src, archiveDir string) {
	t.Helper()
	src = t.TempDir()
	writeSourceTree(t, src)
	archiveDir = t.TempDir()

	setupTestCLI(t)
	cmd := newCreateCmd()
	require.NoError(t, cmd.Flags().Set("output", archiveDir))
	cmd.SetArgs([]string{src})
	require.NoError(t, cmd.Execute())
	return src, archiveDir
}

func TestListCommandPrintsEntries(t *testing.T) {
	_, archiveDir := createFixtureArchive(t)
	buf := setupTestCLI(t)

	cmd := newListCmd()
	cmd.SetArgs([]string{archiveDir})
	require.NoError(t, cmd.Execute())
	require.Contains(t, buf.String(), "a.txt")
	require.Contains(t, buf.String(), "sub/b.txt")
}

func TestVerifyCommandReportsOk(t *testing.T) {
	_, archiveDir := createFixtureArchive(t)
	buf := setupTestCLI(t)

	cmd := newVerifyCmd()
	cmd.SetArgs([]string{archiveDir})
	require.NoError(t, cmd.Execute())
	require.Contains(t, buf.String(), "ok:")
}

func TestVerifyCommandFailsOnTamperedPart(t *testing.T) {
	_, archiveDir := createFixtureArchive(t)

	entries, err := os.ReadDir(archiveDir)
	require.NoError(t, err)
	var partPath string
	for _, e := range entries {
		if filepath.Ext(e.Name()) != ".json" && e.Name() != "index.arc.json.b3" {
			partPath = filepath.Join(archiveDir, e.Name())
		}
	}
	require.NotEmpty(t, partPath, "expected to find a part file in %s", archiveDir)

	data, err := os.ReadFile(partPath)
	require.NoError(t, err)
	require.NotEmpty(t, data)
	data[len(data)-1] ^= 0xFF
	require.NoError(t, os.WriteFile(partPath, data, 0o644))

	setupTestCLI(t)
	cmd := newVerifyCmd()
	cmd.SetArgs([]string{archiveDir})
	require.Error(t, cmd.Execute())
}

func TestStatsCommandPrintsCounters(t *testing.T) {
	_, archiveDir := createFixtureArchive(t)
	buf := setupTestCLI(t)

	cmd := newStatsCmd()
	cmd.SetArgs([]string{archiveDir})
	require.NoError(t, cmd.Execute())
	require.Contains(t, buf.String(), "files:")
	require.Contains(t, buf.String(), "ratio:")
}

func TestInfoCommandPrintsHeader(t *testing.T) {
	_, archiveDir := createFixtureArchive(t)
	buf := setupTestCLI(t)

	cmd := newInfoCmd()
	cmd.SetArgs([]string{archiveDir})
	require.NoError(t, cmd.Execute())
	require.Contains(t, buf.String(), "version:")
	require.Contains(t, buf.String(), "compression:")
}

func TestSearchCommandFindsMatches(t *testing.T) {
	_, archiveDir := createFixtureArchive(t)
	buf := setupTestCLI(t)

	cmd := newSearchCmd()
	cmd.SetArgs([]string{archiveDir, "**/*.txt"})
	require.NoError(t, cmd.Execute())
	require.Contains(t, buf.String(), "a.txt")
}

func TestRestoreCommandRebuildsTree(t *testing.T) {
	_, archiveDir := createFixtureArchive(t)
	setupTestCLI(t)
	dst := t.TempDir()

	cmd := newRestoreCmd()
	cmd.SetArgs([]string{archiveDir, dst})
	require.NoError(t, cmd.Execute())

	got, err := os.ReadFile(filepath.Join(dst, "a.txt"))
	require.NoError(t, err)
	require.Equal(t, "hello\n", string(got))
}

func TestExtractCommandWritesSingleFile(t *testing.T) {
	_, archiveDir := createFixtureArchive(t)
	setupTestCLI(t)
	dst := filepath.Join(t.TempDir(), "out.txt")

	cmd := newExtractCmd()
	cmd.SetArgs([]string{archiveDir, "a.txt", dst})
	require.NoError(t, cmd.Execute())

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	require.Equal(t, "hello\n", string(got))
}

func TestCatCommandStreamsToOut(t *testing.T) {
	_, archiveDir := createFixtureArchive(t)
	buf := setupTestCLI(t)

	cmd := newCatCmd()
	cmd.SetArgs([]string{archiveDir, "a.txt"})
	require.NoError(t, cmd.Execute())
	require.Equal(t, "hello\n", buf.String())
}

func TestDiffCommandReportsModification(t *testing.T) {
	src, archiveDir := createFixtureArchive(t)
	require.NoError(t, os.WriteFile(filepath.Join(src, "a.txt"), []byte("changed\n"), 0o644))
	buf := setupTestCLI(t)

	cmd := newDiffCmd()
	cmd.SetArgs([]string{archiveDir, src})
	require.NoError(t, cmd.Execute())
	require.Contains(t, buf.String(), "a.txt")
}

func TestPruneCommandKeepsMinimum(t *testing.T) {
	setupTestCLI(t)
	a := t.TempDir()
	b := t.TempDir()

	cmd := newPruneCmd()
	require.NoError(t, cmd.Flags().Set("keep-min", "5"))
	require.NoError(t, cmd.Flags().Set("max-age-days", "0"))
	cmd.SetArgs([]string{a, b})
	require.NoError(t, cmd.Execute())
}

func TestConfigShowPrintsResolvedValues(t *testing.T) {
	buf := setupTestCLI(t)
	root := newConfigCmd()
	root.SetArgs([]string{"show"})
	require.NoError(t, root.Execute())
	require.Contains(t, buf.String(), "compression:")
}

func TestConfigPathPrintsConfigPath(t *testing.T) {
	buf := setupTestCLI(t)
	root := newConfigCmd()
	root.SetArgs([]string{"path"})
	require.NoError(t, root.Execute())
	require.Equal(t, config.ConfigPath()+"\n", buf.String())
}

func TestCompletionsCommandRejectsUnknownShell(t *testing.T) {
	setupTestCLI(t)
	cmd := newCompletionsCmd()
	cmd.SetArgs([]string{"tcsh"})
	require.Error(t, cmd.Execute())
}

func TestCompletionsCommandEmitsBashScript(t *testing.T) {
	buf := setupTestCLI(t)
	cmd := newCompletionsCmd()
	cmd.SetArgs([]string{"bash"})
	require.NoError(t, cmd.Execute())
	require.NotEmpty(t, buf.String())
}
