package pdfgraph

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
)

// maxDecodedSize caps the inflated size of one container stream.
const maxDecodedSize = 256 << 20

// decodeStream returns the decoded data of a container stream (cross-reference
// or object stream). Content streams are never decoded; they are copied raw.
func decodeStream(s *Stream) ([]byte, error) {
	filters := filterNames(s.Dict["Filter"])
	data := s.Data
	for i, f := range filters {
		switch f {
		case "FlateDecode", "Fl":
			out, err := inflate(data)
			if err != nil {
				return nil, err
			}
			if data, err = unpredict(out, decodeParms(s.Dict["DecodeParms"], i)); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedFilter, f)
		}
	}
	return data, nil
}

func filterNames(obj Object) []Name {
	switch v := obj.(type) {
	case Name:
		return []Name{v}
	case Array:
		names := make([]Name, 0, len(v))
		for _, item := range v {
			if n, ok := item.(Name); ok {
				names = append(names, n)
			}
		}
		return names
	}
	return nil
}

func decodeParms(obj Object, i int) Dict {
	switch v := obj.(type) {
	case Dict:
		if i == 0 {
			return v
		}
	case Array:
		if i < len(v) {
			d, _ := v[i].(Dict)
			return d
		}
	}
	return nil
}

// inflate decompresses zlib data. Streams with a damaged checksum or a
// truncated tail still yield whatever was decompressed.
func inflate(data []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: FlateDecode: %v", ErrSyntax, err)
	}
	defer func() { _ = zr.Close() }()

	out, err := io.ReadAll(io.LimitReader(zr, maxDecodedSize+1))
	if err != nil && len(out) == 0 {
		return nil, fmt.Errorf("%w: FlateDecode: %v", ErrSyntax, err)
	}
	if len(out) > maxDecodedSize {
		return nil, fmt.Errorf("%w: FlateDecode: stream inflates past %d bytes", ErrSyntax, maxDecodedSize)
	}
	return out, nil
}

// unpredict reverses PNG row predictors (Predictor >= 10).
func unpredict(data []byte, parms Dict) ([]byte, error) {
	if parms == nil {
		return data, nil
	}
	predictor, _ := parms.Int("Predictor")
	switch {
	case predictor < 2:
		return data, nil
	case predictor == 2:
		return nil, fmt.Errorf("%w: TIFF predictor", ErrUnsupportedFilter)
	}

	colors := intOr(parms, "Colors", 1)
	bpc := intOr(parms, "BitsPerComponent", 8)
	columns := intOr(parms, "Columns", 1)
	if colors > 32 || bpc > 16 || columns > max(len(data), 1) {
		return nil, fmt.Errorf("%w: predictor parameters out of range", ErrSyntax)
	}

	bpp := max(1, colors*bpc/8)
	rowLen := (colors*bpc*columns + 7) / 8
	stride := rowLen + 1

	out := make([]byte, 0, len(data)/stride*rowLen)
	prev := make([]byte, rowLen)
	for off := 0; off+stride <= len(data); off += stride {
		filter := data[off]
		row := append([]byte(nil), data[off+1:off+stride]...)
		for i := range row {
			var left, up, upLeft byte
			if i >= bpp {
				left = row[i-bpp]
				upLeft = prev[i-bpp]
			}
			up = prev[i]
			switch filter {
			case 0:
			case 1:
				row[i] += left
			case 2:
				row[i] += up
			case 3:
				row[i] += byte((int(left) + int(up)) / 2)
			case 4:
				row[i] += paeth(left, up, upLeft)
			default:
				return nil, fmt.Errorf("%w: PNG filter type %d", ErrUnsupportedFilter, filter)
			}
		}
		out = append(out, row...)
		prev = row
	}
	return out, nil
}

func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa, pb, pc := abs(p-int(a)), abs(p-int(b)), abs(p-int(c))
	switch {
	case pa <= pb && pa <= pc:
		return a
	case pb <= pc:
		return b
	default:
		return c
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func intOr(d Dict, key Name, fallback int) int {
	if v, ok := d.Int(key); ok && v > 0 {
		return v
	}
	return fallback
}
