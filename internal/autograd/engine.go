package autograd

import (
	"container/heap"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// backwardsInFlight counts backward passes currently executing, process
// wide. Version bumps that happen while it is nonzero are flagged so that a
// later stale unpack reports a concurrent modification rather than an
// ordinary version mismatch.
var backwardsInFlight atomic.Int64

// Options control one engine run.
type Options struct {
	// RetainGraph keeps saved forward state after the pass so the same graph
	// can be differentiated again. When false, every executed Function has
	// its saved variables released as soon as it runs.
	RetainGraph bool

	// CreateGraph records the backward computation itself, making
	// higher-order gradients possible. Implies retaining the graph.
	CreateGraph bool
}

// capture asks the engine to read the gradient buffered for slot of fn once
// fn becomes ready. The value lands in the result slice at resultIndex, or
// accumulates into variable when resultIndex is negative.
type capture struct {
	fn          Function
	slot        int
	resultIndex int
	variable    *Variable
}

// inputBuffer collects the gradient contributions fanning into one Function.
// Contributions to the same slot are summed; the sum is recorded when grad
// mode is on so higher-order backward sees it.
type inputBuffer struct {
	mu    sync.Mutex
	grads []*Variable
}

func newInputBuffer(n int) *inputBuffer {
	return &inputBuffer{grads: make([]*Variable, n)}
}

func (b *inputBuffer) add(slot int, g *Variable) {
	if g == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if slot >= len(b.grads) {
		grown := make([]*Variable, slot+1)
		copy(grown, b.grads)
		b.grads = grown
	}
	if b.grads[slot] == nil {
		b.grads[slot] = g
		return
	}
	b.grads[slot] = recordedAdd(b.grads[slot], g)
}

type nodeTask struct {
	fn     Function
	buffer *inputBuffer
}

// readyQueue is a max-heap on sequence number: among ready nodes the most
// recently constructed runs first, which walks each branch depth-first and
// keeps peak buffered-gradient memory low.
type readyQueue []*nodeTask

func (q readyQueue) Len() int { return len(q) }
func (q readyQueue) Less(i, j int) bool {
	return q[i].fn.Base().SequenceNr() > q[j].fn.Base().SequenceNr()
}
func (q readyQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *readyQueue) Push(x any) { *q = append(*q, x.(*nodeTask)) }
func (q *readyQueue) Pop() any {
	old := *q
	n := len(old)
	task := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return task
}

// execInfo is the per-node execution plan for a filtered pass.
type execInfo struct {
	// needed: gradient must flow into this node's buffer.
	needed bool
	// exec: Apply must actually run (some target lies at or below it).
	exec bool
}

// graphTask is the state of one backward pass.
type graphTask struct {
	mu      sync.Mutex
	cond    *sync.Cond
	ready   readyQueue
	running int
	err     error

	dependencies map[Function]int
	buffers      map[Function]*inputBuffer

	// info is nil for an unfiltered pass, in which case every discovered
	// node is both needed and executed.
	info map[Function]*execInfo

	captures map[Function][]capture
	results  []*Variable

	retainGraph bool
}

func (t *graphTask) plan(fn Function) execInfo {
	if t.info == nil {
		return execInfo{needed: true, exec: true}
	}
	if ei, ok := t.info[fn]; ok {
		return *ei
	}
	return execInfo{}
}

// Engine runs reverse-mode passes over recorded graphs. The zero value is
// ready to use; MaxWorkers bounds parallelism across independent branches
// (0 means GOMAXPROCS).
type Engine struct {
	MaxWorkers int
}

var defaultEngine Engine

// Execute seeds the graph at rootEdges with seeds and runs the reverse
// traversal. captures and accTargets restrict the pass: with both empty the
// whole reachable graph executes and every leaf accumulator fires; otherwise
// only the subgraph between the roots and the targets runs. Returns the
// capture results, indexed by capture.resultIndex.
func (e *Engine) Execute(rootEdges []Edge, seeds []*Variable, opts Options, captures []capture, accTargets []Function, numResults int) ([]*Variable, error) {
	root := NewGraphRoot(rootEdges, seeds)

	task := &graphTask{
		dependencies: make(map[Function]int),
		buffers:      make(map[Function]*inputBuffer),
		results:      make([]*Variable, numResults),
		retainGraph:  opts.RetainGraph || opts.CreateGraph,
	}
	task.cond = sync.NewCond(&task.mu)

	if len(captures) > 0 || len(accTargets) > 0 {
		task.captures = make(map[Function][]capture)
		for _, c := range captures {
			task.captures[c.fn] = append(task.captures[c.fn], c)
		}
		targets := make(map[Function]bool, len(accTargets))
		for _, fn := range accTargets {
			targets[fn] = true
		}
		task.info = make(map[Function]*execInfo)
		analyze(task, root, targets)
	}

	task.countDependencies(root)

	// Gradients produced during the pass join the graph only under
	// create-graph; otherwise backward formulas run untracked.
	restore := SetGradEnabled(opts.CreateGraph)
	defer restore()

	backwardsInFlight.Add(1)
	defer backwardsInFlight.Add(-1)

	heap.Push(&task.ready, &nodeTask{fn: root, buffer: newInputBuffer(0)})

	workers := e.MaxWorkers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			task.workLoop()
		}()
	}
	wg.Wait()

	if task.err != nil {
		return nil, task.err
	}
	return task.results, nil
}

// analyze computes, per node, whether gradient needs to reach it and whether
// its Apply must run. A node executes when some target lies strictly below
// it or it is itself an accumulation target.
func analyze(t *graphTask, fn Function, accTargets map[Function]bool) bool {
	if ei, ok := t.info[fn]; ok {
		return ei.needed
	}
	ei := &execInfo{}
	t.info[fn] = ei

	childHit := false
	for _, edge := range fn.Base().NextEdges() {
		if edge.IsValid() && analyze(t, edge.Function, accTargets) {
			childHit = true
		}
	}
	_, captured := t.captures[fn]
	ei.exec = childHit || accTargets[fn]
	ei.needed = ei.exec || captured
	return ei.needed
}

// countDependencies walks the graph breadth-first from root, counting for
// every needed node how many executed parents feed it. A node becomes ready
// once all counted parents have run.
func (t *graphTask) countDependencies(root Function) {
	seen := map[Function]bool{root: true}
	queue := []Function{root}
	for len(queue) > 0 {
		fn := queue[0]
		queue = queue[1:]
		if !t.plan(fn).exec {
			continue
		}
		for _, edge := range fn.Base().NextEdges() {
			if !edge.IsValid() || !t.plan(edge.Function).needed {
				continue
			}
			t.dependencies[edge.Function]++
			if !seen[edge.Function] {
				seen[edge.Function] = true
				queue = append(queue, edge.Function)
			}
		}
	}
}

func (t *graphTask) workLoop() {
	t.mu.Lock()
	for {
		for len(t.ready) == 0 && t.running > 0 {
			t.cond.Wait()
		}
		if len(t.ready) == 0 {
			// Nothing ready and nothing running: the pass is over.
			t.cond.Broadcast()
			t.mu.Unlock()
			return
		}
		task := heap.Pop(&t.ready).(*nodeTask)
		if t.err != nil {
			// Drain without executing; already-running nodes finish.
			continue
		}
		t.running++
		t.mu.Unlock()

		err := t.runNode(task)

		t.mu.Lock()
		t.running--
		if err != nil && t.err == nil {
			t.err = err
		}
		t.cond.Broadcast()
	}
}

// runNode executes one ready Function and routes its gradients downstream.
func (t *graphTask) runNode(task *nodeTask) error {
	fn := task.fn
	base := fn.Base()
	plan := t.plan(fn)

	grads := task.buffer.grads
	if len(grads) < base.NumInputs() {
		grown := make([]*Variable, base.NumInputs())
		copy(grown, grads)
		grads = grown
	}

	if caps, ok := t.captures[fn]; ok {
		for _, c := range caps {
			var g *Variable
			if c.slot < len(grads) {
				g = grads[c.slot]
			}
			if g == nil {
				continue
			}
			if c.resultIndex >= 0 {
				t.setResult(c.resultIndex, g)
			} else if c.variable != nil {
				c.variable.addGrad(g)
			}
		}
	}

	if !plan.exec {
		return nil
	}

	klog.V(2).Infof("autograd: executing %s (seq %d, %d inputs)",
		fn.Name(), base.SequenceNr(), base.NumInputs())

	for _, hook := range base.preHooks {
		if replaced := hook(grads); replaced != nil {
			grads = replaced
		}
	}

	gradInputs, err := fn.Apply(grads)
	if err != nil {
		return errors.WithMessagef(err, "in backward of %s (seq %d)", fn.Name(), base.SequenceNr())
	}

	for _, hook := range base.postHooks {
		hook(gradInputs, grads)
	}

	if !t.retainGraph {
		fn.ReleaseSaved()
	}

	edges := base.NextEdges()
	if len(gradInputs) > len(edges) {
		return errors.Errorf("%s returned %d gradients for %d inputs",
			fn.Name(), len(gradInputs), len(edges))
	}

	for i, edge := range edges {
		if !edge.IsValid() || !t.plan(edge.Function).needed {
			continue
		}
		var g *Variable
		if i < len(gradInputs) {
			g = gradInputs[i]
		}
		if g != nil {
			expected := edge.Function.Base().InputShape(edge.InputNr)
			if expected != nil && !expected.Equal(g.Shape()) {
				return errors.WithMessagef(ErrGradientShapeMismatch,
					"%s produced gradient of shape %v for input %d of %s, expected %v",
					fn.Name(), g.Shape(), edge.InputNr, edge.Function.Name(), expected)
			}
		}
		t.route(edge, g)
	}
	return nil
}

// route delivers one gradient along an edge, readying the destination when
// its last counted parent has run. A nil gradient still counts as delivery:
// undefined gradients stay implicit zeros all the way down.
func (t *graphTask) route(edge Edge, g *Variable) {
	t.mu.Lock()
	buf, ok := t.buffers[edge.Function]
	if !ok {
		buf = newInputBuffer(edge.Function.Base().NumInputs())
		t.buffers[edge.Function] = buf
	}
	t.mu.Unlock()

	// The buffered write must land before the dependency decrement: the
	// parent that drops the count to zero publishes a fully summed buffer.
	buf.add(edge.InputNr, g)

	t.mu.Lock()
	t.dependencies[edge.Function]--
	if t.dependencies[edge.Function] == 0 {
		delete(t.buffers, edge.Function)
		heap.Push(&t.ready, &nodeTask{fn: edge.Function, buffer: buf})
		t.cond.Signal()
	}
	t.mu.Unlock()
}

func (t *graphTask) setResult(i int, g *Variable) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.results[i] == nil {
		t.results[i] = g
		return
	}
	t.results[i] = recordedAdd(t.results[i], g)
}
