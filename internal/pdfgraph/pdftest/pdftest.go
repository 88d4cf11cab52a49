// Package pdftest builds small, valid PDF documents for tests.
package pdftest

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"sort"
	"strings"
)

// Object is one indirect object. Body is written verbatim between
// "ID 0 obj" and "endobj".
type Object struct {
	ID   int
	Body string
}

// Doc is a document under construction.
type Doc struct {
	Version string
	Objects []Object
	// Trailer holds extra trailer entries such as "/Root 1 0 R".
	Trailer string
}

// Stream returns an object body for a stream with the given dictionary
// entries and data. /Length is computed.
func Stream(dict string, data string) string {
	return fmt.Sprintf("<< %s /Length %d >>\nstream\n%s\nendstream", dict, len(data), data)
}

// Content returns a page content stream that shows label.
func Content(label string) string {
	return fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", label)
}

// Document returns a document with one page per label. The page tree root
// carries MediaBox and Resources so pages inherit them.
//
//	1 Catalog, 2 Pages, 3 Font, then per page: 4+2i Page, 5+2i Contents
func Document(labels ...string) Doc {
	kids := make([]string, len(labels))
	for i := range labels {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	objects := []Object{
		{ID: 1, Body: "<< /Type /Catalog /Pages 2 0 R >>"},
		{ID: 2, Body: fmt.Sprintf(
			"<< /Type /Pages /Kids [%s] /Count %d /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> >>",
			strings.Join(kids, " "), len(labels))},
		{ID: 3, Body: "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>"},
	}
	for i, label := range labels {
		page, content := 4+2*i, 5+2*i
		objects = append(objects,
			Object{ID: page, Body: fmt.Sprintf("<< /Type /Page /Parent 2 0 R /Contents %d 0 R >>", content)},
			Object{ID: content, Body: Stream("", Content(label))},
		)
	}
	return Doc{Version: "1.4", Objects: objects, Trailer: "/Root 1 0 R"}
}

func (d Doc) header(b *bytes.Buffer) {
	version := d.Version
	if version == "" {
		version = "1.4"
	}
	fmt.Fprintf(b, "%%PDF-%s\n%%\xe2\xe3\xcf\xd3\n", version)
}

func (d Doc) maxID() int {
	n := 0
	for _, o := range d.Objects {
		n = max(n, o.ID)
	}
	return n
}

// Bytes writes the document with a classic cross-reference table.
func (d Doc) Bytes() []byte {
	var b bytes.Buffer
	d.header(&b)
	offsets := make(map[int]int, len(d.Objects))
	for _, o := range d.Objects {
		offsets[o.ID] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", o.ID, o.Body)
	}

	size := d.maxID() + 1
	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n0000000000 65535 f\r\n", size)
	for id := 1; id < size; id++ {
		if off, ok := offsets[id]; ok {
			fmt.Fprintf(&b, "%010d 00000 n\r\n", off)
		} else {
			b.WriteString("0000000000 00001 f\r\n")
		}
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d %s >>\nstartxref\n%d\n%%%%EOF\n", size, d.Trailer, xref)
	return b.Bytes()
}

// Compressed writes the document with every non-stream object packed into a
// Flate-compressed object stream and a cross-reference stream using the PNG
// Up predictor.
func (d Doc) Compressed() []byte {
	var packed, plain []Object
	for _, o := range d.Objects {
		if strings.Contains(o.Body, "stream\n") {
			plain = append(plain, o)
		} else {
			packed = append(packed, o)
		}
	}
	sort.Slice(packed, func(i, j int) bool { return packed[i].ID < packed[j].ID })

	objstmID := d.maxID() + 1
	xrefID := objstmID + 1
	size := xrefID + 1

	var header, body strings.Builder
	for _, o := range packed {
		fmt.Fprintf(&header, "%d %d ", o.ID, body.Len())
		body.WriteString(o.Body)
		body.WriteString("\n")
	}
	objstm := deflate([]byte(header.String() + body.String()))

	var b bytes.Buffer
	d.header(&b)
	type row struct{ typ, f2, f3 int }
	rows := make([]row, size)
	for _, o := range plain {
		rows[o.ID] = row{1, b.Len(), 0}
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", o.ID, o.Body)
	}
	for i, o := range packed {
		rows[o.ID] = row{2, objstmID, i}
	}

	rows[objstmID] = row{1, b.Len(), 0}
	fmt.Fprintf(&b, "%d 0 obj\n<< /Type /ObjStm /N %d /First %d /Filter /FlateDecode /Length %d >>\nstream\n",
		objstmID, len(packed), header.Len(), len(objstm))
	b.Write(objstm)
	b.WriteString("\nendstream\nendobj\n")

	xrefOffset := b.Len()
	rows[xrefID] = row{1, xrefOffset, 0}
	rows[0] = row{0, 0, 0xffff}

	// W [1 4 2]: 7 bytes per row, each row prefixed with PNG filter 2 (Up).
	const width = 7
	raw := make([]byte, 0, size*(width+1))
	prev := make([]byte, width)
	for _, r := range rows {
		cur := []byte{
			byte(r.typ),
			byte(r.f2 >> 24), byte(r.f2 >> 16), byte(r.f2 >> 8), byte(r.f2),
			byte(r.f3 >> 8), byte(r.f3),
		}
		raw = append(raw, 2)
		for i := range cur {
			raw = append(raw, cur[i]-prev[i])
		}
		prev = cur
	}
	xrefData := deflate(raw)

	fmt.Fprintf(&b, "%d 0 obj\n<< /Type /XRef /Size %d /W [1 4 2] %s /Filter /FlateDecode "+
		"/DecodeParms << /Predictor 12 /Columns %d >> /Length %d >>\nstream\n",
		xrefID, size, d.Trailer, width, len(xrefData))
	b.Write(xrefData)
	fmt.Fprintf(&b, "\nendstream\nendobj\nstartxref\n%d\n%%%%EOF\n", xrefOffset)
	return b.Bytes()
}

func deflate(data []byte) []byte {
	var b bytes.Buffer
	zw := zlib.NewWriter(&b)
	_, _ = zw.Write(data)
	_ = zw.Close()
	return b.Bytes()
}
