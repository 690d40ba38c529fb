// =============================================================================
// ExcelTools - VBA Stream Decompression
// =============================================================================
//
// VBA source streams are stored with the compression scheme of the Office
// VBA file format: a container of 4096-byte chunks, each either raw or
// run-length encoded with copy tokens whose offset/length bit split depends
// on the position within the chunk.
//
// =============================================================================

package vba

import "fmt"

const chunkSize = 4096

// Decompress expands a compressed VBA container. The data must start with
// the 0x01 container signature.
func Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 || data[0] != 0x01 {
		return nil, fmt.Errorf("not a compressed VBA container")
	}

	var out []byte
	pos := 1
	for pos+1 < len(data) {
		header := uint16(data[pos]) | uint16(data[pos+1])<<8
		pos += 2

		size := int(header&0x0FFF) + 3
		compressed := header&0x8000 != 0

		// Chunk size counts the 2 header bytes.
		end := pos + size - 2
		if end > len(data) {
			end = len(data)
		}
		chunk := data[pos:end]
		pos = end

		if !compressed {
			out = append(out, chunk...)
			continue
		}

		expanded, err := decompressChunk(chunk)
		if err != nil {
			return nil, err
		}
		out = append(out, expanded...)
	}
	return out, nil
}

// decompressChunk expands one compressed chunk: groups of a flag byte and
// eight tokens, each token a literal byte or a 2-byte copy token.
func decompressChunk(chunk []byte) ([]byte, error) {
	out := make([]byte, 0, chunkSize)
	pos := 0

	for pos < len(chunk) && len(out) < chunkSize {
		flags := chunk[pos]
		pos++

		for bit := 0; bit < 8 && pos < len(chunk) && len(out) < chunkSize; bit++ {
			if flags&(1<<bit) == 0 {
				out = append(out, chunk[pos])
				pos++
				continue
			}

			if pos+1 >= len(chunk) {
				return nil, fmt.Errorf("truncated copy token")
			}
			token := uint16(chunk[pos]) | uint16(chunk[pos+1])<<8
			pos += 2

			offBits := offsetBits(len(out))
			lengthMask := uint16(0xFFFF) >> offBits
			offset := int(token>>(16-offBits)) + 1
			length := int(token&lengthMask) + 3

			if offset > len(out) {
				return nil, fmt.Errorf("copy token offset %d beyond %d decompressed bytes", offset, len(out))
			}
			// Copies may overlap their own output.
			for i := 0; i < length; i++ {
				out = append(out, out[len(out)-offset])
			}
		}
	}
	return out, nil
}

// offsetBits returns how many bits of a copy token hold the offset, given
// the number of bytes already decompressed in the chunk.
func offsetBits(decompressed int) uint {
	bits := uint(4)
	for 1<<bits < decompressed {
		bits++
	}
	if bits > 12 {
		bits = 12
	}
	return bits
}
