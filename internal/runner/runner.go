// Package runner merges whole revision directories at file granularity.
// Each file tuple merges independently on its own goroutine; the tree,
// context, and handler pipeline of a single file stay on one goroutine.
package runner

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/dusk-indust/structmerge"
	"github.com/dusk-indust/structmerge/internal/files"
)

// Result holds the outcome of one file tuple.
type Result struct {
	// Relative is the tuple's path below the revision roots.
	Relative string

	// Output is the merged source on success.
	Output string

	// Conflicts is the number of conflict regions in Output.
	Conflicts int

	// Err is non-nil if this tuple failed to merge.
	Err error
}

// MergeDirectories pairs the files under the three revision roots by
// relative path and merges every tuple in parallel. When outDir is
// non-empty each merged file is written there under its relative path.
// Results come back sorted by relative path; per-tuple failures are
// collected into the returned error without stopping other tuples.
func MergeDirectories(ctx context.Context, leftDir, baseDir, rightDir, outDir string, opts *structmerge.Options) ([]Result, error) {
	tuples, err := discoverTuples(leftDir, baseDir, rightDir, opts.Git)
	if err != nil {
		return nil, err
	}

	results := make([]Result, len(tuples))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, rel := range tuples {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res := mergeTuple(leftDir, baseDir, rightDir, outDir, rel, opts)
			mu.Lock()
			results[i] = res
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var merr *multierror.Error
	for _, r := range results {
		if r.Err != nil {
			merr = multierror.Append(merr, r.Err)
		}
	}
	return results, merr.ErrorOrNil()
}

func mergeTuple(leftDir, baseDir, rightDir, outDir, rel string, opts *structmerge.Options) Result {
	res, err := structmerge.SemistructuredMerge(
		filepath.Join(leftDir, rel),
		filepath.Join(baseDir, rel),
		filepath.Join(rightDir, rel),
		opts,
	)
	if err != nil {
		return Result{Relative: rel, Err: err}
	}

	out := Result{Relative: rel, Output: res.Output, Conflicts: res.Conflicts}
	if outDir != "" {
		if err := files.WriteText(filepath.Join(outDir, rel), res.Output, res.Encoding); err != nil {
			out.Err = err
		}
	}
	return out
}

// discoverTuples walks the three roots and returns the sorted union of
// relative paths with a mergeable extension. A path present under any
// root becomes a tuple; missing counterparts surface as deleted-file
// errors during the merge itself.
func discoverTuples(leftDir, baseDir, rightDir string, loose bool) ([]string, error) {
	seen := map[string]bool{}
	for _, root := range []string{leftDir, baseDir, rightDir} {
		if root == "" {
			continue
		}
		err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if !mergeableExtension(path, loose) {
				return nil
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			seen[rel] = true
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	tuples := make([]string, 0, len(seen))
	for rel := range seen {
		tuples = append(tuples, rel)
	}
	sort.Strings(tuples)
	return tuples, nil
}

func mergeableExtension(path string, loose bool) bool {
	if loose {
		return true
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".java", ".go":
		return true
	}
	return false
}
