package codec

import (
	"bytes"
	"io"
	"testing"
)

func TestParseRoundTripsWithString(t *testing.T) {
	for _, alg := range List() {
		s := alg.String()
		parsed, err := Parse(s)
		if err != nil {
			t.Fatalf("Parse(%q): %v", s, err)
		}
		if parsed != alg {
			t.Errorf("Parse(%q) = %v, want %v", s, parsed, alg)
		}
	}
}

func TestParseEmptyStringIsNone(t *testing.T) {
	alg, err := Parse("")
	if err != nil {
		t.Fatalf("Parse(\"\"): %v", err)
	}
	if alg != None {
		t.Errorf("Parse(\"\") = %v, want None", alg)
	}
}

func TestParseRejectsUnknown(t *testing.T) {
	if _, err := Parse("lzma"); err == nil {
		t.Fatal("expected an error for an unsupported codec name")
	}
}

func TestExtensionsAreDistinct(t *testing.T) {
	seen := map[string]bool{}
	for _, alg := range List() {
		ext := alg.Extension()
		if seen[ext] {
			t.Errorf("duplicate extension %q for %v", ext, alg)
		}
		seen[ext] = true
	}
}

func TestWriterReaderRoundTrip(t *testing.T) {
	payload := []byte("the quick brown fox jumps over the lazy dog, repeated for good measure, repeated for good measure")

	for _, alg := range List() {
		alg := alg
		t.Run(alg.String(), func(t *testing.T) {
			var buf bytes.Buffer
			w, err := OpenWriter(alg, &buf, 3)
			if err != nil {
				t.Fatalf("OpenWriter(%v): %v", alg, err)
			}
			if _, err := w.Write(payload); err != nil {
				t.Fatalf("Write: %v", err)
			}
			if err := w.Close(); err != nil {
				t.Fatalf("Close: %v", err)
			}

			r, err := OpenReader(alg, &buf)
			if err != nil {
				t.Fatalf("OpenReader(%v): %v", alg, err)
			}
			defer r.Close()

			got, err := io.ReadAll(r)
			if err != nil {
				t.Fatalf("ReadAll: %v", err)
			}
			if !bytes.Equal(got, payload) {
				t.Errorf("round trip mismatch for %v: got %d bytes, want %d", alg, len(got), len(payload))
			}
		})
	}
}

func TestOpenWriterRejectsUnknownAlgorithm(t *testing.T) {
	var buf bytes.Buffer
	if _, err := OpenWriter(Algorithm(99), &buf, 0); err == nil {
		t.Fatal("expected an error for an unsupported algorithm")
	}
}
