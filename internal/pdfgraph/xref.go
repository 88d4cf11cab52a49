package pdfgraph

import (
	"bytes"
	"fmt"
	"regexp"
	"sort"
)

type xrefKind int

const (
	xrefFree xrefKind = iota
	xrefOffset
	xrefCompressed
)

// xrefEntry locates one object: at a byte offset, or at an index inside an
// object stream.
type xrefEntry struct {
	kind   xrefKind
	offset int
	gen    int
	stream int
	index  int
}

// objStream is a decoded object stream: member ids mapped to offsets in data.
type objStream struct {
	data    []byte
	offsets map[int]int
}

type reader struct {
	data      []byte
	xref      map[int]xrefEntry
	trailer   Dict
	objstms   map[int]*objStream
	resolving map[int]bool
}

func newReader(data []byte) *reader {
	return &reader{
		data:      data,
		xref:      make(map[int]xrefEntry),
		objstms:   make(map[int]*objStream),
		resolving: make(map[int]bool),
	}
}

// readAll loads every object listed by the cross-reference chain. Any
// unreadable object fails the whole load so the caller can rebuild instead.
func (r *reader) readAll() (map[int]Entry, Dict, error) {
	start, err := r.findStartXref()
	if err != nil {
		return nil, nil, err
	}
	if err := r.readXrefChain(start); err != nil {
		return nil, nil, err
	}
	if r.trailer == nil {
		return nil, nil, fmt.Errorf("%w: no trailer", ErrXref)
	}

	objects := make(map[int]Entry, len(r.xref))
	for id, e := range r.xref {
		if e.kind == xrefFree || id == 0 {
			continue
		}
		entry, err := r.load(id)
		if err != nil {
			return nil, nil, err
		}
		objects[id] = entry
	}
	return objects, r.trailer, nil
}

func (r *reader) findStartXref() (int, error) {
	idx := bytes.LastIndex(r.data, []byte("startxref"))
	if idx < 0 {
		return 0, fmt.Errorf("%w: startxref not found", ErrXref)
	}
	l := &lexer{data: r.data, pos: idx + len("startxref")}
	off, err := l.readUint()
	if err != nil || off >= len(r.data) {
		return 0, fmt.Errorf("%w: invalid startxref offset", ErrXref)
	}
	return off, nil
}

// readXrefChain reads sections from newest to oldest. Entries already seen
// come from a newer section and win.
func (r *reader) readXrefChain(offset int) error {
	seen := make(map[int]bool)
	pending := []int{offset}
	for len(pending) > 0 {
		off := pending[0]
		pending = pending[1:]
		if seen[off] {
			continue
		}
		seen[off] = true
		if off < 0 || off >= len(r.data) {
			return fmt.Errorf("%w: section offset %d out of range", ErrXref, off)
		}

		l := &lexer{data: r.data, pos: off}
		var trailer Dict
		var err error
		if l.peekKeyword() == "xref" {
			trailer, err = r.readXrefTable(l)
		} else {
			trailer, err = r.readXrefStream(l)
		}
		if err != nil {
			return err
		}
		if r.trailer == nil {
			r.trailer = trailer
		}

		// Hybrid files: the XRefStm section belongs to the same revision
		// and is consulted before older revisions.
		var next []int
		if stm, ok := trailer.Int("XRefStm"); ok {
			next = append(next, stm)
		}
		if prev, ok := trailer.Int("Prev"); ok {
			next = append(next, prev)
		}
		pending = append(next, pending...)
	}
	return nil
}

func (r *reader) addEntry(id int, e xrefEntry) {
	if _, exists := r.xref[id]; !exists {
		r.xref[id] = e
	}
}

// checkSubsection rejects a run of ids that leaves the valid object range.
func checkSubsection(first, count int) error {
	if first < 0 || count < 0 || first > MaxObjectID || count > MaxObjectID-first+1 {
		return fmt.Errorf("%w: subsection %d+%d outside object range", ErrXref, first, count)
	}
	return nil
}

func (r *reader) readXrefTable(l *lexer) (Dict, error) {
	if err := l.expectKeyword("xref"); err != nil {
		return nil, err
	}
	for {
		if l.peekKeyword() == "trailer" {
			l.readKeyword()
			break
		}
		first, err := l.readUint()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrXref, err)
		}
		count, err := l.readUint()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrXref, err)
		}
		if err := checkSubsection(first, count); err != nil {
			return nil, err
		}
		for i := range count {
			offset, err := l.readUint()
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrXref, err)
			}
			gen, err := l.readUint()
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrXref, err)
			}
			switch kind := l.readKeyword(); kind {
			case "n":
				r.addEntry(first+i, xrefEntry{kind: xrefOffset, offset: offset, gen: gen})
			case "f":
				r.addEntry(first+i, xrefEntry{kind: xrefFree})
			default:
				return nil, fmt.Errorf("%w: bad entry type %q", ErrXref, kind)
			}
		}
	}

	obj, err := l.parseObject(0)
	if err != nil {
		return nil, fmt.Errorf("%w: trailer: %v", ErrXref, err)
	}
	trailer, ok := obj.(Dict)
	if !ok {
		return nil, fmt.Errorf("%w: trailer is not a dictionary", ErrXref)
	}
	return trailer, nil
}

func (r *reader) readXrefStream(l *lexer) (Dict, error) {
	_, _, obj, err := l.parseIndirect(nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrXref, err)
	}
	s, ok := obj.(*Stream)
	if !ok || s.Dict.Name("Type") != "XRef" {
		return nil, fmt.Errorf("%w: expected cross-reference stream", ErrXref)
	}
	data, err := decodeStream(s)
	if err != nil {
		return nil, err
	}

	w, ok := s.Dict["W"].(Array)
	if !ok || len(w) < 3 {
		return nil, fmt.Errorf("%w: missing /W", ErrXref)
	}
	var widths [3]int
	for i := range widths {
		n, ok := w[i].(Integer)
		if !ok || n < 0 || n > 8 {
			return nil, fmt.Errorf("%w: bad /W entry", ErrXref)
		}
		widths[i] = int(n)
	}
	size, _ := s.Dict.Int("Size")
	index := []int{0, size}
	if arr, ok := s.Dict["Index"].(Array); ok {
		index = index[:0]
		for _, v := range arr {
			n, ok := v.(Integer)
			if !ok {
				return nil, fmt.Errorf("%w: bad /Index entry", ErrXref)
			}
			index = append(index, int(n))
		}
	}

	rowLen := widths[0] + widths[1] + widths[2]
	if rowLen == 0 {
		return nil, fmt.Errorf("%w: empty /W", ErrXref)
	}
	pos := 0
	for i := 0; i+1 < len(index); i += 2 {
		first, count := index[i], index[i+1]
		if err := checkSubsection(first, count); err != nil {
			return nil, err
		}
		for j := range count {
			if pos+rowLen > len(data) {
				return nil, fmt.Errorf("%w: cross-reference stream truncated", ErrXref)
			}
			typ := 1
			if widths[0] > 0 {
				typ = readField(data[pos : pos+widths[0]])
			}
			f2 := readField(data[pos+widths[0] : pos+widths[0]+widths[1]])
			f3 := readField(data[pos+widths[0]+widths[1] : pos+rowLen])
			pos += rowLen

			switch typ {
			case 0:
				r.addEntry(first+j, xrefEntry{kind: xrefFree})
			case 1:
				r.addEntry(first+j, xrefEntry{kind: xrefOffset, offset: f2, gen: f3})
			case 2:
				r.addEntry(first+j, xrefEntry{kind: xrefCompressed, stream: f2, index: f3})
			}
		}
	}
	return s.Dict, nil
}

func readField(b []byte) int {
	n := 0
	for _, c := range b {
		n = n<<8 | int(c)
	}
	return n
}

// load reads one object through the cross-reference table.
func (r *reader) load(id int) (Entry, error) {
	e, ok := r.xref[id]
	if !ok || e.kind == xrefFree {
		return Entry{}, fmt.Errorf("%w: object %d not found", ErrXref, id)
	}
	if e.kind == xrefCompressed {
		obj, err := r.loadCompressed(id, e.stream)
		if err != nil {
			return Entry{}, err
		}
		return Entry{Value: obj}, nil
	}

	if e.offset <= 0 || e.offset >= len(r.data) {
		return Entry{}, fmt.Errorf("%w: object %d offset %d out of range", ErrXref, id, e.offset)
	}
	l := &lexer{data: r.data, pos: e.offset}
	gotID, gen, obj, err := l.parseIndirect(r.resolveLength)
	if err != nil {
		return Entry{}, fmt.Errorf("%w: object %d: %v", ErrXref, id, err)
	}
	if gotID != id {
		return Entry{}, fmt.Errorf("%w: offset for object %d points at object %d", ErrXref, id, gotID)
	}
	return Entry{Gen: gen, Value: obj}, nil
}

func (r *reader) resolveLength(ref Ref) (int, bool) {
	if r.resolving[ref.ID] {
		return 0, false
	}
	r.resolving[ref.ID] = true
	defer delete(r.resolving, ref.ID)

	e, err := r.load(ref.ID)
	if err != nil {
		return 0, false
	}
	n, ok := e.Value.(Integer)
	return int(n), ok
}

func (r *reader) loadCompressed(id, streamID int) (Object, error) {
	stm, err := r.objStream(streamID)
	if err != nil {
		return nil, err
	}
	off, ok := stm.offsets[id]
	if !ok {
		return nil, fmt.Errorf("%w: object %d missing from object stream %d", ErrXref, id, streamID)
	}
	l := &lexer{data: stm.data, pos: off}
	obj, err := l.parseObject(0)
	if err != nil {
		return nil, fmt.Errorf("object %d in object stream %d: %w", id, streamID, err)
	}
	return obj, nil
}

func (r *reader) objStream(id int) (*objStream, error) {
	if stm, ok := r.objstms[id]; ok {
		return stm, nil
	}
	e, ok := r.xref[id]
	if !ok || e.kind != xrefOffset {
		return nil, fmt.Errorf("%w: object stream %d not found", ErrXref, id)
	}
	entry, err := r.load(id)
	if err != nil {
		return nil, err
	}
	s, ok := entry.Value.(*Stream)
	if !ok {
		return nil, fmt.Errorf("%w: object %d is not an object stream", ErrXref, id)
	}
	stm, err := decodeObjStream(s)
	if err != nil {
		return nil, fmt.Errorf("object stream %d: %w", id, err)
	}
	r.objstms[id] = stm
	return stm, nil
}

func decodeObjStream(s *Stream) (*objStream, error) {
	data, err := decodeStream(s)
	if err != nil {
		return nil, err
	}
	n, ok := s.Dict.Int("N")
	if !ok || n < 0 {
		return nil, fmt.Errorf("%w: object stream without /N", ErrSyntax)
	}
	first, ok := s.Dict.Int("First")
	if !ok || first < 0 || first > len(data) {
		return nil, fmt.Errorf("%w: object stream without valid /First", ErrSyntax)
	}

	stm := &objStream{data: data, offsets: make(map[int]int, n)}
	l := &lexer{data: data[:first]}
	for range n {
		id, err := l.readUint()
		if err != nil {
			return nil, err
		}
		off, err := l.readUint()
		if err != nil {
			return nil, err
		}
		if !validID(id) {
			return nil, fmt.Errorf("%w: object number %d out of range", ErrSyntax, id)
		}
		if off >= len(data)-first {
			return nil, fmt.Errorf("%w: object %d offset outside object stream", ErrSyntax, id)
		}
		if _, dup := stm.offsets[id]; !dup {
			stm.offsets[id] = first + off
		}
	}
	return stm, nil
}

var objHeader = regexp.MustCompile(`(\d+)[\x00\t\n\f\r ]+(\d+)[\x00\t\n\f\r ]+obj\b`)

// reconstruct rebuilds the arena by scanning the file for object headers in
// order. Later definitions of an id replace earlier ones, as incremental
// updates would.
func (r *reader) reconstruct() (map[int]Entry, Dict, error) {
	objects := make(map[int]Entry)
	pos := 0
	for pos < len(r.data) {
		loc := objHeader.FindIndex(r.data[pos:])
		if loc == nil {
			break
		}
		start := pos + loc[0]
		if start > 0 && isDigit(r.data[start-1]) {
			pos = start + 1
			continue
		}
		l := &lexer{data: r.data, pos: start}
		id, gen, obj, err := l.parseIndirect(nil)
		if err != nil || !validID(id) {
			pos += loc[1]
			continue
		}
		objects[id] = Entry{Gen: gen, Value: obj}
		pos = l.pos
	}
	if len(objects) == 0 {
		return nil, nil, fmt.Errorf("%w: no objects found", ErrXref)
	}

	// Members of object streams fill ids not defined as plain objects.
	ids := make([]int, 0, len(objects))
	for id := range objects {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		s, ok := objects[id].Value.(*Stream)
		if !ok || s.Dict.Name("Type") != "ObjStm" {
			continue
		}
		stm, err := decodeObjStream(s)
		if err != nil {
			continue
		}
		for member, off := range stm.offsets {
			if _, exists := objects[member]; exists {
				continue
			}
			l := &lexer{data: stm.data, pos: off}
			if obj, err := l.parseObject(0); err == nil {
				objects[member] = Entry{Value: obj}
			}
		}
	}

	return objects, r.rebuildTrailer(objects), nil
}

// rebuildTrailer takes the last parseable trailer naming a root, then any
// cross-reference stream dictionary, then synthesizes one from the catalog.
func (r *reader) rebuildTrailer(objects map[int]Entry) Dict {
	kw := []byte("trailer")
	end := len(r.data)
	for end > 0 {
		idx := bytes.LastIndex(r.data[:end], kw)
		if idx < 0 {
			break
		}
		l := &lexer{data: r.data, pos: idx + len(kw)}
		if obj, err := l.parseObject(0); err == nil {
			if d, ok := obj.(Dict); ok {
				if _, ok := d.Ref("Root"); ok {
					return d
				}
			}
		}
		end = idx
	}

	ids := make([]int, 0, len(objects))
	for id := range objects {
		ids = append(ids, id)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ids)))
	for _, id := range ids {
		if s, ok := objects[id].Value.(*Stream); ok && s.Dict.Name("Type") == "XRef" {
			if _, ok := s.Dict.Ref("Root"); ok {
				return s.Dict.Clone()
			}
		}
	}
	for _, id := range ids {
		if d, ok := dictOf(objects[id].Value); ok && d.Name("Type") == "Catalog" {
			return Dict{"Root": Ref{ID: id, Gen: objects[id].Gen}}
		}
	}
	return Dict{}
}
