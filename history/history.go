// Package history implements the priority-queue commit-DAG walker
// described in spec §4.8: a max-heap keyed by author timestamp (OID
// descending as tiebreak) with a pluggable filter pipeline. The
// teacher has no history walker at all (its plumbing stops at ref
// resolution and loose-object reads), so this is new functionality
// built in the surrounding codebase's idiom: a pull-driven iterator
// type wrapping container/heap, sentinel-free errors surfaced lazily
// the way the teacher's own commit parsing reports failures.
package history

import (
	"container/heap"
	"strings"
	"time"

	"github.com/halide-vcs/gitkit/backend"
	"github.com/halide-vcs/gitkit/githash"
	"github.com/halide-vcs/gitkit/internal/pathmap"
	"github.com/halide-vcs/gitkit/object"
)

// Options filters which commits Walker yields. A zero Options walks
// every reachable commit from the start OID.
type Options struct {
	// Author, if set, must appear as a substring of the commit
	// author's name or email (case-sensitive, matching spec §4.8).
	Author string
	// Since/Until bound the commit author timestamp, inclusive. A
	// zero time.Time leaves that bound unset.
	Since, Until time.Time
	// Paths, if non-empty, requires a commit to touch at least one of
	// these paths (a changed path matches a filter path P if it
	// equals P or is nested under directory P).
	Paths []string
	// FirstParent restricts traversal to each commit's first parent.
	FirstParent bool
	// MaxCount stops the walk after this many commits are yielded.
	// Zero means unbounded.
	MaxCount int
}

type heapEntry struct {
	oid  githash.Oid
	time int64
}

type commitHeap []heapEntry

func (h commitHeap) Len() int { return len(h) }
func (h commitHeap) Less(i, j int) bool {
	if h[i].time != h[j].time {
		return h[i].time > h[j].time
	}
	return h[i].oid.String() > h[j].oid.String()
}
func (h commitHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *commitHeap) Push(x any)        { *h = append(*h, x.(heapEntry)) }
func (h *commitHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Walker is a pull-driven iterator over a commit DAG. Abandoning it
// mid-walk is safe: it holds no external state beyond the backend
// handle it was built with (spec §5's iterator-cancellation note).
type Walker struct {
	b       backend.Backend
	opts    Options
	heap    commitHeap
	visited map[githash.Oid]bool
	yielded int
	done    bool
}

// New returns a Walker rooted at start. The starting commit is always
// emitted first regardless of its own author time (spec §4.8's
// initialization rule: pushed with time = max int64).
func New(b backend.Backend, start githash.Oid, opts Options) *Walker {
	w := &Walker{
		b:       b,
		opts:    opts,
		visited: map[githash.Oid]bool{},
	}
	if !start.IsZero() {
		heap.Push(&w.heap, heapEntry{oid: start, time: maxInt64})
	}
	return w
}

const maxInt64 = int64(1)<<63 - 1

// Next returns the next commit satisfying the filter pipeline, or
// (nil, false, nil) once the walk is exhausted. A non-nil error means
// a commit object could not be read or parsed; the walk is not
// advanced further past the failing commit (spec §7: iterator errors
// are yielded as the corresponding item rather than silently dropped).
func (w *Walker) Next() (*object.Commit, bool, error) {
	if w.done {
		return nil, false, nil
	}
	if w.opts.MaxCount > 0 && w.yielded >= w.opts.MaxCount {
		w.done = true
		return nil, false, nil
	}

	for w.heap.Len() > 0 {
		entry := heap.Pop(&w.heap).(heapEntry)
		if w.visited[entry.oid] {
			continue
		}
		w.visited[entry.oid] = true

		obj, err := w.b.Object(entry.oid)
		if err != nil {
			return nil, false, err
		}
		commit, err := object.ParseCommit(w.b.Hash(), obj)
		if err != nil {
			return nil, false, err
		}

		if err := w.enqueueParents(commit); err != nil {
			return nil, false, err
		}

		matched, err := w.matches(commit)
		if err != nil {
			return nil, false, err
		}
		if !matched {
			continue
		}

		w.yielded++
		return commit, true, nil
	}

	w.done = true
	return nil, false, nil
}

func (w *Walker) enqueueParents(commit *object.Commit) error {
	parents := commit.ParentIDs()
	if w.opts.FirstParent && len(parents) > 1 {
		parents = parents[:1]
	}
	for _, pid := range parents {
		if w.visited[pid] {
			continue
		}
		pObj, err := w.b.Object(pid)
		if err != nil {
			return err
		}
		pCommit, err := object.ParseCommit(w.b.Hash(), pObj)
		if err != nil {
			return err
		}
		heap.Push(&w.heap, heapEntry{oid: pid, time: pCommit.Author().When.Unix()})
	}
	return nil
}

func (w *Walker) matches(commit *object.Commit) (bool, error) {
	if w.opts.Author != "" {
		a := commit.Author()
		if !strings.Contains(a.Name, w.opts.Author) && !strings.Contains(a.Email, w.opts.Author) {
			return false, nil
		}
	}
	when := commit.Author().When
	if !w.opts.Since.IsZero() && when.Before(w.opts.Since) {
		return false, nil
	}
	if !w.opts.Until.IsZero() && when.After(w.opts.Until) {
		return false, nil
	}
	if len(w.opts.Paths) > 0 {
		touched, err := w.touchesAny(commit)
		if err != nil {
			return false, err
		}
		if !touched {
			return false, nil
		}
	}
	return true, nil
}

// touchesAny reports whether commit's diff against its first parent
// (or against an empty tree for a root commit) touches any filter path.
func (w *Walker) touchesAny(commit *object.Commit) (bool, error) {
	var parentTreeID githash.Oid
	if parents := commit.ParentIDs(); len(parents) > 0 {
		pObj, err := w.b.Object(parents[0])
		if err != nil {
			return false, err
		}
		pCommit, err := object.ParseCommit(w.b.Hash(), pObj)
		if err != nil {
			return false, err
		}
		parentTreeID = pCommit.TreeID()
	}

	oldMap, err := pathmap.Flatten(w.b, parentTreeID)
	if err != nil {
		return false, err
	}
	newMap, err := pathmap.Flatten(w.b, commit.TreeID())
	if err != nil {
		return false, err
	}

	changed := map[string]struct{}{}
	for p := range oldMap {
		if e, ok := newMap[p]; !ok || e.ID != oldMap[p].ID {
			changed[p] = struct{}{}
		}
	}
	for p := range newMap {
		if _, ok := oldMap[p]; !ok {
			changed[p] = struct{}{}
		}
	}

	for c := range changed {
		for _, filterPath := range w.opts.Paths {
			fp := strings.TrimSuffix(filterPath, "/")
			if c == fp || strings.HasPrefix(c, fp+"/") {
				return true, nil
			}
		}
	}
	return false, nil
}
