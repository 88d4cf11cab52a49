package pdfgraph

// remapTable maps an input's original object numbers to their ids in the
// merged arena. It is built once per input before any object is copied, so
// every reference is rewritten through the same mapping.
type remapTable map[int]Ref

// newRemapTable assigns sequential ids starting at next, in ascending order
// of the original ids, all with generation 0.
func newRemapTable(g *Graph, next int) remapTable {
	t := make(remapTable, len(g.Objects))
	for _, id := range g.IDs() {
		t[id] = Ref{ID: next}
		next++
	}
	return t
}

// identityTable maps each object to itself.
func identityTable(g *Graph) remapTable {
	t := make(remapTable, len(g.Objects))
	for id, e := range g.Objects {
		t[id] = Ref{ID: id, Gen: e.Gen}
	}
	return t
}

// remapObject returns a deep copy of obj with every reference rewritten.
// References the table does not know become null in arrays and are dropped
// from dictionaries.
func (t remapTable) remapObject(obj Object) Object {
	switch v := obj.(type) {
	case Ref:
		if to, ok := t[v.ID]; ok {
			return to
		}
		return Null{}
	case Array:
		out := make(Array, len(v))
		for i, item := range v {
			out[i] = t.remapObject(item)
		}
		return out
	case Dict:
		return t.remapDict(v)
	case *Stream:
		return &Stream{Dict: t.remapDict(v.Dict), Data: v.Data}
	case String:
		return String{Value: append([]byte(nil), v.Value...), Hex: v.Hex}
	default:
		return obj
	}
}

func (t remapTable) remapDict(d Dict) Dict {
	out := make(Dict, len(d))
	for k, v := range d {
		mapped := t.remapObject(v)
		if _, dangling := mapped.(Null); dangling {
			continue
		}
		out[k] = mapped
	}
	return out
}

// applyGraph returns g's arena rewritten through the table, keyed by new id.
func (t remapTable) applyGraph(g *Graph) map[int]Entry {
	out := make(map[int]Entry, len(g.Objects))
	for id, e := range g.Objects {
		to := t[id]
		out[to.ID] = Entry{Gen: to.Gen, Value: t.remapObject(e.Value)}
	}
	return out
}

// ref returns the new reference for an original one.
func (t remapTable) ref(r Ref) (Ref, bool) {
	to, ok := t[r.ID]
	return to, ok
}
