package pdfgraph

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
)

// Bytes serializes the graph with a classic cross-reference table. Objects
// are written in ascending id order; every stream gets a direct /Length.
// The table lists object 0 and then one subsection per run of consecutive
// ids, so gaps in the numbering cost nothing.
func (g *Graph) Bytes() []byte {
	var buf bytes.Buffer
	version := g.Version
	if version == "" {
		version = DefaultVersion
	}
	fmt.Fprintf(&buf, "%%PDF-%s\n%%\xe2\xe3\xcf\xd3\n", version)

	var written []xrefRow
	for _, id := range g.IDs() {
		if id <= 0 {
			continue
		}
		e := g.Objects[id]
		written = append(written, xrefRow{id: id, offset: buf.Len(), gen: e.Gen})
		fmt.Fprintf(&buf, "%d %d obj\n", id, e.Gen)
		writeObject(&buf, e.Value)
		buf.WriteString("\nendobj\n")
	}

	xrefOffset := buf.Len()
	buf.WriteString("xref\n")
	writeXrefSubsections(&buf, written)

	size := 1
	if n := len(written); n > 0 {
		size = written[n-1].id + 1
	}
	trailer := g.Trailer.Clone()
	trailer["Size"] = Integer(size)
	buf.WriteString("trailer\n")
	writeObject(&buf, trailer)
	fmt.Fprintf(&buf, "\nstartxref\n%d\n%%%%EOF\n", xrefOffset)
	return buf.Bytes()
}

// xrefRow is the table entry of one written object.
type xrefRow struct {
	id, offset, gen int
}

// writeXrefSubsections writes 20-byte entries for rows sorted by id. Object 0
// heads an empty free list; ids that are not written are simply not listed.
func writeXrefSubsections(buf *bytes.Buffer, rows []xrefRow) {
	buf.WriteString("0 1\n0000000000 65535 f\r\n")
	for start := 0; start < len(rows); {
		end := start + 1
		for end < len(rows) && rows[end].id == rows[end-1].id+1 {
			end++
		}
		fmt.Fprintf(buf, "%d %d\n", rows[start].id, end-start)
		for _, r := range rows[start:end] {
			fmt.Fprintf(buf, "%010d %05d n\r\n", r.offset, r.gen)
		}
		start = end
	}
}

func writeObject(buf *bytes.Buffer, obj Object) {
	switch v := obj.(type) {
	case nil, Null:
		buf.WriteString("null")
	case Boolean:
		buf.WriteString(strconv.FormatBool(bool(v)))
	case Integer:
		buf.WriteString(strconv.FormatInt(int64(v), 10))
	case Real:
		buf.WriteString(strconv.FormatFloat(float64(v), 'f', -1, 64))
	case Name:
		writeName(buf, v)
	case String:
		writeString(buf, v)
	case Ref:
		fmt.Fprintf(buf, "%d %d R", v.ID, v.Gen)
	case Array:
		buf.WriteByte('[')
		for i, item := range v {
			if i > 0 {
				buf.WriteByte(' ')
			}
			writeObject(buf, item)
		}
		buf.WriteByte(']')
	case Dict:
		writeDict(buf, v)
	case *Stream:
		d := v.Dict.Clone()
		d["Length"] = Integer(len(v.Data))
		writeDict(buf, d)
		buf.WriteString("\nstream\n")
		buf.Write(v.Data)
		buf.WriteString("\nendstream")
	}
}

func writeDict(buf *bytes.Buffer, d Dict) {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)

	buf.WriteString("<<")
	for _, k := range keys {
		writeName(buf, Name(k))
		buf.WriteByte(' ')
		writeObject(buf, d[Name(k)])
	}
	buf.WriteString(">>")
}

func writeName(buf *bytes.Buffer, n Name) {
	buf.WriteByte('/')
	for i := 0; i < len(n); i++ {
		c := n[i]
		if c < 0x21 || c > 0x7e || c == '#' || isDelimiter(c) {
			fmt.Fprintf(buf, "#%02X", c)
			continue
		}
		buf.WriteByte(c)
	}
}

func writeString(buf *bytes.Buffer, s String) {
	if s.Hex {
		fmt.Fprintf(buf, "<%X>", s.Value)
		return
	}
	buf.WriteByte('(')
	for _, c := range s.Value {
		switch c {
		case '(', ')', '\\':
			buf.WriteByte('\\')
			buf.WriteByte(c)
		case '\r':
			buf.WriteString(`\r`)
		default:
			buf.WriteByte(c)
		}
	}
	buf.WriteByte(')')
}
