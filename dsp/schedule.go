package dsp

import (
	"fmt"
	"sort"
	"strings"
)

type visitState int

const (
	unvisited visitState = iota
	visiting
	visited
)

// Schedule returns the render order of the patch tree: every object reachable
// from an end point (dac~, tabwrite~...) through signal connections, each one
// after all the objects feeding it signals. The traversal starts from the
// end points in creation order and is depth-first and post-order; upstream
// objects are visited in creation order, so objects without an ordering
// dependency keep the order they were created in. Nested patches are
// transparent: their boundary objects are scheduled in place of the patch
// portlets.
//
// The order is cached in the root patch and recomputed after any change to
// the signal graph. A cycle in the signal connections fails with
// ErrCyclicSignalGraph.
func (p *Patch) Schedule() ([]Object, error) {
	root := p.Root()
	if root.valid {
		return root.order, nil
	}
	var endPoints []Object
	root.walk(func(obj Object) {
		if obj.node().endPoint {
			endPoints = append(endPoints, obj)
		}
	})
	sortByID(endPoints)
	s := scheduler{state: make(map[Object]visitState)}
	for _, obj := range endPoints {
		if err := s.visit(obj); err != nil {
			return nil, err
		}
	}
	root.order = s.order
	root.valid = true
	return root.order, nil
}

type scheduler struct {
	state map[Object]visitState
	path  []Object
	order []Object
}

func (s *scheduler) visit(obj Object) error {
	switch s.state[obj] {
	case visited:
		return nil
	case visiting:
		return fmt.Errorf("%w: %v", ErrCyclicSignalGraph, s.cycle(obj))
	}
	s.state[obj] = visiting
	s.path = append(s.path, obj)
	for _, up := range upstream(obj) {
		if err := s.visit(up); err != nil {
			return err
		}
	}
	s.path = s.path[:len(s.path)-1]
	s.state[obj] = visited
	s.order = append(s.order, obj)
	return nil
}

// cycle describes the back edge found at obj, e.g. "osc~#3 -> *~#5 -> osc~#3".
func (s *scheduler) cycle(obj Object) string {
	start := 0
	for i, o := range s.path {
		if o == obj {
			start = i
			break
		}
	}
	parts := make([]string, 0, len(s.path)-start+1)
	for _, o := range s.path[start:] {
		parts = append(parts, o.node().String())
	}
	parts = append(parts, obj.node().String())
	return strings.Join(parts, " -> ")
}

// upstream returns the objects feeding obj through signal connections, in
// creation order and without duplicates. Outlets of nested patches resolve to
// the outlet~ objects inside; inlet~ objects resolve to whatever feeds the
// corresponding inlet of their patch.
func upstream(obj Object) []Object {
	var ret []Object
	seen := make(map[Object]bool)
	add := func(in *Inlet) {
		for _, src := range in.sources {
			if src.kind != KindSignal {
				continue
			}
			up := resolve(src)
			if !seen[up] {
				seen[up] = true
				ret = append(ret, up)
			}
		}
	}
	for _, in := range obj.node().inlets {
		if in.kind == KindSignal {
			add(in)
		}
	}
	if b, ok := obj.(*signalInlet); ok {
		add(b.parentInlet())
	}
	sortByID(ret)
	return ret
}

func resolve(src *Outlet) Object {
	if sub, ok := src.owner.(*Patch); ok {
		return sub.outletProxies[src.index]
	}
	return src.owner
}

func sortByID(objs []Object) {
	sort.SliceStable(objs, func(i, j int) bool { return objs[i].node().id < objs[j].node().id })
}
