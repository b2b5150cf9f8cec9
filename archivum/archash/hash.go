package archash

import (
	"crypto/sha256"
	"io"
	"os"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/zeebo/blake3"
)

// DefaultWorkers is used when HashFiles is called with workers <= 0.
const DefaultWorkers = 4

// HashFile computes the hex-encoded SHA-256 of a single file's contents.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", &FileError{Path: path, Cause: err}
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", &FileError{Path: path, Cause: err}
	}
	return newDigest(h.Sum(nil)).Hex(), nil
}

// HashFiles computes the hex-encoded SHA-256 of every path in the input
// slice, in parallel across `workers` goroutines (DefaultWorkers if
// workers <= 0), and returns the digests in input order.
//
// HashFiles fails fast: the first worker to hit an I/O error cancels the
// remaining work and the error (a *FileError identifying the offending
// path) is returned.
func HashFiles(paths []string, workers int) ([]string, error) {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if len(paths) == 0 {
		return nil, nil
	}

	type job struct {
		index int
		path  string
	}
	type result struct {
		index int
		digest string
		err    error
	}

	jobs := make(chan job, len(paths))
	results := make(chan result, len(paths))

	var failed atomic.Bool
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				if failed.Load() {
					continue
				}
				digest, err := HashFile(j.path)
				if err != nil {
					failed.Store(true)
				}
				results <- result{index: j.index, digest: digest, err: err}
			}
		}()
	}

	for i, p := range paths {
		jobs <- job{index: i, path: p}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	out := make([]string, len(paths))
	var firstErr error
	for r := range results {
		if r.err != nil {
			if firstErr == nil {
				firstErr = r.err
			}
			continue
		}
		out[r.index] = r.digest
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}

// SealIndex computes the hex-encoded Blake3 digest of the exact bytes of a
// serialized index, as required by the v3 index seal (index.arc.json.b3).
func SealIndex(indexBytes []byte) string {
	h := blake3.New()
	_, _ = h.Write(indexBytes)
	return newDigest(h.Sum(nil)).Hex()
}

// DedupGroups partitions paths by content hash, returning, for every group
// of two or more identical digests, the list of paths sharing that digest
// in stable (first-seen) order.
func DedupGroups(paths []string, digests []string) map[string][]string {
	groups := make(map[string][]string)
	for i, d := range digests {
		groups[d] = append(groups[d], paths[i])
	}
	for d, ps := range groups {
		if len(ps) < 2 {
			delete(groups, d)
		}
	}
	return groups
}

// SortedDigestKeys returns the keys of a digest->paths map in sorted order,
// useful for deterministic iteration in tests and reporting.
func SortedDigestKeys(groups map[string][]string) []string {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
