package pdfgraph

import (
	"fmt"
	"sort"
)

// Input is one document to merge.
type Input struct {
	Name string
	Data []byte
}

// Skipped records an input that could not be parsed.
type Skipped struct {
	Name string
	Err  error
}

// Result is the outcome of a merge.
type Result struct {
	// Data is the serialized merged document.
	Data []byte

	// Pages is the page count of the merged document.
	Pages int

	// Merged lists the names of the inputs that were merged, in order.
	Merged []string

	// Contributed holds, per merged input, the object ids it owns in the
	// merged arena. Lists are pairwise disjoint.
	Contributed [][]int

	// Skipped lists the inputs that failed to parse.
	Skipped []Skipped
}

type parsedInput struct {
	name  string
	data  []byte
	graph *Graph
}

// Merge combines inputs into one document, preserving input order and each
// input's page order. Inputs that fail to parse, including those whose page
// tree cannot be walked, are skipped and reported.
func Merge(inputs []Input) (*Result, error) {
	res := &Result{}
	var parsed []parsedInput
	for _, in := range inputs {
		g, err := Parse(in.Data)
		if err != nil {
			res.Skipped = append(res.Skipped, Skipped{Name: in.Name, Err: err})
			continue
		}
		parsed = append(parsed, parsedInput{name: in.Name, data: in.Data, graph: g})
	}

	switch len(parsed) {
	case 0:
		return res, ErrNothingToMerge
	case 1:
		pages, err := parsed[0].graph.Pages()
		if err != nil {
			return res, err
		}
		res.Data = parsed[0].data
		res.Pages = len(pages)
		res.Merged = []string{parsed[0].name}
		res.Contributed = [][]int{parsed[0].graph.IDs()}
		return res, nil
	}

	base, err := newMerger(parsed[0].graph)
	if err != nil {
		return res, fmt.Errorf("%s: %w", parsed[0].name, err)
	}
	res.Merged = append(res.Merged, parsed[0].name)
	res.Contributed = append(res.Contributed, base.graph.IDs())

	for _, p := range parsed[1:] {
		ids, err := base.add(p.graph)
		if err != nil {
			return res, fmt.Errorf("%s: %w", p.name, err)
		}
		res.Merged = append(res.Merged, p.name)
		res.Contributed = append(res.Contributed, ids)
	}

	base.finish()
	res.Data = base.graph.Bytes()
	res.Pages = len(base.kids)
	return res, nil
}

// merger accumulates renumbered graphs into the base graph.
type merger struct {
	graph *Graph
	root  Ref
	kids  Array
}

func newMerger(g *Graph) (*merger, error) {
	leaves, err := g.pageLeaves()
	if err != nil {
		return nil, err
	}
	// Dangling references in the base are nulled the same way as in every
	// other input, so the written file never refers to a renumbered id.
	t := identityTable(g)
	g.Objects = t.applyGraph(g)
	g.Trailer = t.remapDict(g.Trailer)

	root, err := g.PageTreeRoot()
	if err != nil {
		return nil, err
	}
	m := &merger{graph: g, root: root}
	for _, leaf := range leaves {
		inherited, _ := t.remapObject(leaf.inherited).(Dict)
		m.adoptPage(leaf.ref, inherited)
	}
	return m, nil
}

// add renumbers g above the running maximum, copies it into the arena and
// appends its pages. It returns the ids now owned by g.
func (m *merger) add(g *Graph) ([]int, error) {
	leaves, err := g.pageLeaves()
	if err != nil {
		return nil, err
	}

	t := newRemapTable(g, m.graph.MaxID+1)
	objects := t.applyGraph(g)

	ids := make([]int, 0, len(objects))
	for id := range objects {
		if _, taken := m.graph.Objects[id]; taken || id <= m.graph.MaxID {
			return nil, fmt.Errorf("%w: id %d", ErrIDCollision, id)
		}
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for id, e := range objects {
		m.graph.Objects[id] = e
	}
	if len(ids) > 0 {
		m.graph.MaxID = ids[len(ids)-1]
	}
	if compareVersions(g.Version, m.graph.Version) > 0 {
		m.graph.Version = g.Version
	}

	for _, leaf := range leaves {
		ref, ok := t.ref(leaf.ref)
		if !ok {
			continue
		}
		inherited, _ := t.remapObject(leaf.inherited).(Dict)
		m.adoptPage(ref, inherited)
	}
	return ids, nil
}

// adoptPage materializes inherited attributes onto a page, points its
// /Parent at the base root and appends it to the merged page list.
func (m *merger) adoptPage(ref Ref, inherited Dict) {
	page, ok := m.graph.Objects[ref.ID].Value.(Dict)
	if !ok {
		return
	}
	page = page.Clone()
	for _, k := range inheritable {
		if _, own := page[k]; own {
			continue
		}
		if v, ok := inherited[k]; ok {
			page[k] = v
		}
	}
	page["Parent"] = m.root

	e := m.graph.Objects[ref.ID]
	e.Value = page
	m.graph.Objects[ref.ID] = e
	m.kids = append(m.kids, ref)
}

// finish replaces the base root's children with the merged page list.
// Inheritable attributes are removed from the root because every page now
// carries its own.
func (m *merger) finish() {
	e := m.graph.Objects[m.root.ID]
	root, _ := e.Value.(Dict)
	root = root.Clone()
	for _, k := range inheritable {
		delete(root, k)
	}
	root["Kids"] = m.kids
	root["Count"] = Integer(len(m.kids))
	delete(root, "Parent")
	e.Value = root
	m.graph.Objects[m.root.ID] = e
}
