// Package outpath names output files for analysis results. Result names are
// assembled from the parts that identify a run (test name, format, object
// types) and suffixed to avoid overwriting earlier results unless the caller
// asked to clobber.
package outpath

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Globber matches existing files; injected so tests run without a
// filesystem.
type Globber func(pattern string) ([]string, error)

// Namer hands out collision-free output paths inside one directory.
type Namer struct {
	dir     string
	clobber bool
	glob    Globber
	written map[string]int
}

// New builds a Namer writing under dir. With clobber set, names are reused
// across runs and only deduplicated within this process.
func New(dir string, clobber bool, glob Globber) *Namer {
	if dir == "" {
		dir = "."
	}
	if glob == nil {
		glob = filepath.Glob
	}
	return &Namer{dir: dir, clobber: clobber, glob: glob, written: map[string]int{}}
}

// Path joins the identifying parts with underscores and returns a path that
// does not collide with files already present (or already handed out, in
// clobber mode). A final part starting with a dot is treated as the file
// extension.
func (n *Namer) Path(parts ...string) (string, error) {
	if len(parts) == 0 {
		return "", fmt.Errorf("output path needs at least one name part")
	}
	extension := ""
	if last := parts[len(parts)-1]; strings.HasPrefix(last, ".") {
		extension = last
		parts = parts[:len(parts)-1]
	}
	stem := strings.Join(parts, "_")

	if n.clobber {
		base := filepath.Join(n.dir, stem+extension)
		seq, seen := n.written[base]
		if seen {
			seq++
		}
		n.written[base] = seq
		return filepath.Join(n.dir, fmt.Sprintf("%s_%d%s", stem, seq, extension)), nil
	}

	matches, err := n.glob(filepath.Join(n.dir, stem) + "*" + extension)
	if err != nil {
		return "", fmt.Errorf("scanning for existing outputs: %w", err)
	}
	// Binned outputs append their bin short names with more underscores;
	// those never collide with an unbinned result and are ignored here.
	maxUnderscores := strings.Count(n.dir, "_") + strings.Count(stem, "_") + 1
	taken := map[string]bool{}
	count := 0
	for _, m := range matches {
		if strings.Count(m, "_") <= maxUnderscores {
			taken[m] = true
			count++
		}
	}

	candidate := filepath.Join(n.dir, stem+extension)
	if !taken[candidate] {
		return candidate, nil
	}
	for seq := count; ; seq++ {
		candidate = filepath.Join(n.dir, fmt.Sprintf("%s_%d%s", stem, seq, extension))
		if !taken[candidate] {
			return candidate, nil
		}
	}
}
