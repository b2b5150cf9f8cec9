package archivum

// assignParts runs the single pass described in spec section 4.3: walk
// entries in scan order, rolling to a new part when the next file would
// overflow splitBytes (and the current part already holds something) or
// when splitFiles is reached. A single file larger than splitBytes still
// gets its own part rather than being split.
//
// Directories and symlinks count toward the file cap but add zero bytes;
// this mirrors the spec's "directories and symlinks count as one file for
// the count cap" rule.
func assignParts(entries []preEntry, splitBytes uint64, splitFiles int) []uint32 {
	tarParts := make([]uint32, len(entries))

	var partIdx uint32
	var curBytes uint64
	var curFiles int

	for i, e := range entries {
		if e.entryType == EntryTypeFile && splitBytes > 0 && curFiles > 0 && curBytes+e.size > splitBytes {
			partIdx++
			curBytes = 0
			curFiles = 0
		} else if splitFiles > 0 && curFiles >= splitFiles {
			partIdx++
			curBytes = 0
			curFiles = 0
		}

		tarParts[i] = partIdx

		if e.entryType == EntryTypeFile {
			curBytes += e.size
		}
		curFiles++
	}

	return tarParts
}

// totalParts returns one past the highest assigned part index, or zero
// when entries is empty.
func totalParts(tarParts []uint32) int {
	max := -1
	for _, p := range tarParts {
		if int(p) > max {
			max = int(p)
		}
	}
	return max + 1
}
