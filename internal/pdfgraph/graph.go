package pdfgraph

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// DefaultVersion is used when the header version cannot be read.
const DefaultVersion = "1.4"

// MaxObjectID is the highest object number accepted on input.
const MaxObjectID = 8_388_607

// headerWindow is how far into the file the %PDF- header may appear.
const headerWindow = 1024

// inheritable page attributes, resolved through /Parent chains.
var inheritable = []Name{"Resources", "MediaBox", "CropBox", "Rotate"}

// Graph is the indirect-object graph of one document.
type Graph struct {
	// Version is the header version, such as "1.7".
	Version string

	// Objects is the arena of indirect objects keyed by object number.
	Objects map[int]Entry

	// MaxID is the highest object number in the arena. A trailer /Size is
	// not trusted for it.
	MaxID int

	// Trailer holds /Root, /Info and /ID. Cross-reference bookkeeping keys
	// are removed; /Size is recomputed on write.
	Trailer Dict
}

// Parse reads a document into a Graph. The page tree must be walkable: no
// node visited twice and only references in /Kids.
func Parse(data []byte) (*Graph, error) {
	version, err := readHeader(data)
	if err != nil {
		return nil, err
	}

	r := newReader(data)
	objects, trailer, err := r.readAll()
	if err == nil {
		if _, ok := trailer["Encrypt"]; ok {
			return nil, ErrEncrypted
		}
		g := newGraph(version, objects, trailer)
		if _, terr := g.pageLeaves(); terr == nil {
			return g, nil
		}
	}

	objects, trailer, rerr := newReader(data).reconstruct()
	if rerr != nil {
		if err != nil {
			return nil, fmt.Errorf("%w (rebuild: %v)", err, rerr)
		}
		return nil, rerr
	}
	if _, ok := trailer["Encrypt"]; ok {
		return nil, ErrEncrypted
	}
	g := newGraph(version, objects, trailer)
	if _, err := g.pageLeaves(); err != nil {
		return nil, err
	}
	return g, nil
}

func validID(id int) bool {
	return id > 0 && id <= MaxObjectID
}

func readHeader(data []byte) (string, error) {
	window := data[:min(len(data), headerWindow)]
	idx := bytes.Index(window, []byte("%PDF-"))
	if idx < 0 {
		return "", ErrNotPDF
	}
	rest := data[idx+len("%PDF-"):]
	end := 0
	for end < len(rest) && end < 8 && (isDigit(rest[end]) || rest[end] == '.') {
		end++
	}
	v := string(rest[:end])
	if !validVersion(v) {
		return DefaultVersion, nil
	}
	return v, nil
}

func validVersion(v string) bool {
	major, minor, ok := strings.Cut(v, ".")
	if !ok {
		return false
	}
	_, err1 := strconv.Atoi(major)
	_, err2 := strconv.Atoi(minor)
	return err1 == nil && err2 == nil
}

func newGraph(version string, objects map[int]Entry, trailer Dict) *Graph {
	g := &Graph{Version: version, Objects: objects, Trailer: cleanTrailer(trailer)}
	for id, e := range objects {
		if isContainer(e.Value) {
			delete(objects, id)
		}
	}
	for id := range objects {
		g.MaxID = max(g.MaxID, id)
	}
	return g
}

// isContainer reports objects that only carry file structure.
func isContainer(obj Object) bool {
	d, ok := dictOf(obj)
	if !ok {
		return false
	}
	if _, ok := obj.(*Stream); ok {
		switch d.Name("Type") {
		case "XRef", "ObjStm":
			return true
		}
	}
	_, linearized := d["Linearized"]
	return linearized
}

var trailerBookkeeping = []Name{"Size", "Prev", "XRefStm", "Type", "W", "Index", "Filter", "DecodeParms", "Length"}

func cleanTrailer(t Dict) Dict {
	out := t.Clone()
	for _, k := range trailerBookkeeping {
		delete(out, k)
	}
	return out
}

// IDs returns the arena's object numbers in ascending order.
func (g *Graph) IDs() []int {
	ids := make([]int, 0, len(g.Objects))
	for id := range g.Objects {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Resolve follows a reference into the arena. Non-reference values are
// returned unchanged; references to missing objects resolve to Null.
func (g *Graph) Resolve(obj Object) Object {
	ref, ok := obj.(Ref)
	if !ok {
		return obj
	}
	e, ok := g.Objects[ref.ID]
	if !ok {
		return Null{}
	}
	return e.Value
}

// Catalog returns the document catalog dictionary.
func (g *Graph) Catalog() (Ref, Dict, error) {
	ref, ok := g.Trailer.Ref("Root")
	if !ok {
		return Ref{}, nil, ErrNoCatalog
	}
	d, ok := g.Resolve(ref).(Dict)
	if !ok {
		return Ref{}, nil, ErrNoCatalog
	}
	if t := d.Name("Type"); t != "" && t != "Catalog" {
		return Ref{}, nil, fmt.Errorf("%w: root has type %s", ErrNoCatalog, t)
	}
	return ref, d, nil
}

// PageTreeRoot returns the root node of the page tree.
func (g *Graph) PageTreeRoot() (Ref, error) {
	_, cat, err := g.Catalog()
	if err != nil {
		return Ref{}, err
	}
	ref, ok := cat.Ref("Pages")
	if !ok {
		return Ref{}, ErrNoPageTree
	}
	d, ok := g.Resolve(ref).(Dict)
	if !ok {
		return Ref{}, ErrNoPageTree
	}
	if d.Name("Type") != "Pages" {
		return Ref{}, fmt.Errorf("%w: root node is not a Pages node", ErrNoPageTree)
	}
	return ref, nil
}

// Pages returns the page references in document order.
func (g *Graph) Pages() ([]Ref, error) {
	leaves, err := g.pageLeaves()
	if err != nil {
		return nil, err
	}
	refs := make([]Ref, len(leaves))
	for i, leaf := range leaves {
		refs[i] = leaf.ref
	}
	return refs, nil
}

// pageLeaf is a page with the inheritable attributes of its ancestors.
type pageLeaf struct {
	ref       Ref
	inherited Dict
}

var errPageCycle = errors.New("page tree visits a node twice")

// pageLeaves walks the page tree depth first.
func (g *Graph) pageLeaves() ([]pageLeaf, error) {
	root, err := g.PageTreeRoot()
	if err != nil {
		return nil, err
	}
	var leaves []pageLeaf
	visited := make(map[int]bool)

	var walk func(ref Ref, inherited Dict) error
	walk = func(ref Ref, inherited Dict) error {
		if visited[ref.ID] {
			return fmt.Errorf("%w: %w at object %d", ErrNoPageTree, errPageCycle, ref.ID)
		}
		visited[ref.ID] = true

		d, ok := g.Resolve(ref).(Dict)
		if !ok {
			return fmt.Errorf("%w: object %d is not a page tree node", ErrNoPageTree, ref.ID)
		}
		kids, isNode := d["Kids"].(Array)
		if d.Name("Type") == "Page" || (!isNode && d.Name("Type") != "Pages") {
			leaves = append(leaves, pageLeaf{ref: ref, inherited: inherited})
			return nil
		}

		next := inherited.Clone()
		for _, k := range inheritable {
			if v, ok := d[k]; ok {
				next[k] = v
			}
		}
		for _, kid := range kids {
			kref, ok := kid.(Ref)
			if !ok {
				return fmt.Errorf("%w: direct object in /Kids of %d", ErrNoPageTree, ref.ID)
			}
			if err := walk(kref, next); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(root, Dict{}); err != nil {
		return nil, err
	}
	return leaves, nil
}

// compareVersions orders "major.minor" strings numerically.
func compareVersions(a, b string) int {
	am, an := splitVersion(a)
	bm, bn := splitVersion(b)
	switch {
	case am != bm:
		return am - bm
	default:
		return an - bn
	}
}

func splitVersion(v string) (int, int) {
	major, minor, _ := strings.Cut(v, ".")
	m, _ := strconv.Atoi(major)
	n, _ := strconv.Atoi(minor)
	return m, n
}
