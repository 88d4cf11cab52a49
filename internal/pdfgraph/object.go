package pdfgraph

// Object is any PDF object value: Null, Boolean, Integer, Real, Name, String,
// Array, Dict, Ref or *Stream.
type Object interface {
	isObject()
}

// Null is the PDF null object.
type Null struct{}

// Boolean is a PDF boolean.
type Boolean bool

// Integer is a PDF integer.
type Integer int64

// Real is a PDF real number.
type Real float64

// Name is a PDF name without the leading slash, with #xx escapes decoded.
type Name string

// String is a PDF string. Hex records the written form so it round-trips.
type String struct {
	Value []byte
	Hex   bool
}

// Array is a PDF array.
type Array []Object

// Dict is a PDF dictionary.
type Dict map[Name]Object

// Ref is an indirect reference "ID Gen R".
type Ref struct {
	ID  int
	Gen int
}

// Stream is a stream object. Data holds the raw, still-encoded bytes.
type Stream struct {
	Dict Dict
	Data []byte
}

func (Null) isObject()    {}
func (Boolean) isObject() {}
func (Integer) isObject() {}
func (Real) isObject()    {}
func (Name) isObject()    {}
func (String) isObject()  {}
func (Array) isObject()   {}
func (Dict) isObject()    {}
func (Ref) isObject()     {}
func (*Stream) isObject() {}

// Entry is one indirect object in the arena.
type Entry struct {
	Gen   int
	Value Object
}

// Name returns the name stored under key, or "" when absent or not a name.
func (d Dict) Name(key Name) Name {
	n, _ := d[key].(Name)
	return n
}

// Int returns the integer stored under key.
func (d Dict) Int(key Name) (int, bool) {
	switch v := d[key].(type) {
	case Integer:
		return int(v), true
	case Real:
		return int(v), true
	}
	return 0, false
}

// Ref returns the reference stored under key.
func (d Dict) Ref(key Name) (Ref, bool) {
	r, ok := d[key].(Ref)
	return r, ok
}

// Clone returns a shallow copy of the dictionary.
func (d Dict) Clone() Dict {
	out := make(Dict, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// dictOf returns the dictionary of a Dict or *Stream value.
func dictOf(obj Object) (Dict, bool) {
	switch v := obj.(type) {
	case Dict:
		return v, true
	case *Stream:
		return v.Dict, true
	}
	return nil, false
}
