// Package patch renders fix results as git-style patches and applies such
// patches back to a working tree.
package patch

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
	"github.com/cockroachdb/errors"
	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"

	"github.com/wharflab/typelint/internal/fix"
)

// ErrEmptyPatch is returned by Parse when the input holds no file diffs.
var ErrEmptyPatch = errors.New("patch contains no file changes")

// Unified returns the git-style diff turning before into after for path.
// It returns "" when the contents are equal.
func Unified(path string, before, after []byte) string {
	if bytes.Equal(before, after) {
		return ""
	}
	name := filepath.ToSlash(path)
	edits := myers.ComputeEdits(span.URIFromPath(name), string(before), string(after))
	unified := gotextdiff.ToUnified("a/"+name, "b/"+name, string(before), edits)

	var sb strings.Builder
	fmt.Fprintf(&sb, "diff --git a/%s b/%s\n", name, name)
	fmt.Fprint(&sb, unified)
	return sb.String()
}

// Write writes one patch covering every changed file, in path order.
func Write(w io.Writer, changes map[string]*fix.FileChange) error {
	paths := make([]string, 0, len(changes))
	for p, fc := range changes {
		if fc.HasChanges() {
			paths = append(paths, p)
		}
	}
	slices.Sort(paths)

	for _, p := range paths {
		fc := changes[p]
		if _, err := io.WriteString(w, Unified(fc.Path, fc.OriginalContent, fc.ModifiedContent)); err != nil {
			return err
		}
	}
	return nil
}

// FileResult is the outcome of applying one file's diff.
type FileResult struct {
	Path     string
	Original []byte
	Patched  []byte
}

// Parse reads a patch. Renames, deletions and binary diffs are rejected.
func Parse(r io.Reader) ([]*gitdiff.File, error) {
	files, _, err := gitdiff.Parse(r)
	if err != nil {
		return nil, errors.Wrap(err, "parse patch")
	}
	if len(files) == 0 {
		return nil, ErrEmptyPatch
	}
	for _, f := range files {
		switch {
		case f.IsBinary:
			return nil, errors.Newf("%s: binary patches are not supported", f.NewName)
		case f.IsDelete, f.IsNew, f.IsRename, f.IsCopy:
			return nil, errors.Newf("%s: only in-place modifications are supported", displayName(f))
		}
	}
	return files, nil
}

// Apply applies every file diff against the content returned by read and
// returns the patched contents. Nothing is written; a failing hunk fails the
// whole patch.
func Apply(files []*gitdiff.File, read func(path string) ([]byte, error)) ([]FileResult, error) {
	results := make([]FileResult, 0, len(files))
	for _, f := range files {
		path := f.OldName
		src, err := read(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		var out bytes.Buffer
		if err := gitdiff.Apply(&out, bytes.NewReader(src), f); err != nil {
			return nil, errors.Wrapf(err, "apply patch to %s", path)
		}
		results = append(results, FileResult{Path: path, Original: src, Patched: out.Bytes()})
	}
	return results, nil
}

// ApplyFile applies the patch at patchPath to files under root and writes
// the results, preserving file modes.
func ApplyFile(patchPath, root string) ([]FileResult, error) {
	f, err := os.Open(patchPath)
	if err != nil {
		return nil, fmt.Errorf("open patch: %w", err)
	}
	defer f.Close()

	files, err := Parse(f)
	if err != nil {
		return nil, err
	}
	results, err := Apply(files, func(p string) ([]byte, error) {
		return os.ReadFile(filepath.Join(root, filepath.FromSlash(p)))
	})
	if err != nil {
		return nil, err
	}

	for _, r := range results {
		target := filepath.Join(root, filepath.FromSlash(r.Path))
		info, err := os.Stat(target)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", target, err)
		}
		if err := os.WriteFile(target, r.Patched, info.Mode().Perm()); err != nil {
			return nil, fmt.Errorf("write %s: %w", target, err)
		}
	}
	return results, nil
}

func displayName(f *gitdiff.File) string {
	if f.NewName != "" {
		return f.NewName
	}
	return f.OldName
}
