// Package deltacodec implements stowr's byte-level delta format: a way to
// express one file's content as a small set of edits against a similar
// base file's content instead of storing it independently. It replaces the
// content-defined-chunking delta scheme carried in by the teacher's
// internal/delta package, which diffed fixed/rolling-hash chunk boundaries
// rather than this format's flat COPY/INSERT instruction stream; the
// chunked scheme does not produce this wire format; this package is a
// from-scratch rewrite of that concern, exposed as a plain Encode/Apply
// pair.
package deltacodec

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/xiaolin/stowr/internal/storeerr"
)

// Magic is the fixed 14-byte header identifying a stowr delta blob.
const Magic = "STOWR_DELTA_V1"

const (
	opCopy   byte = 0x01
	opInsert byte = 0x02
)

// Encode produces the delta blob that reconstructs target when applied
// against base. The instruction stream has no offset field in either
// opcode, so the base read cursor can only ever move forward through a
// COPY instruction: it never skips or re-visits base bytes on its own.
// Encode mirrors that constraint by freezing baseCursor while it gathers
// an INSERT run, resuming COPY only once the frozen base byte matches
// the target again.
func Encode(base, target []byte) []byte {
	var instrs bytes.Buffer

	baseCursor, targetCursor := 0, 0
	for targetCursor < len(target) {
		if baseCursor < len(base) && base[baseCursor] == target[targetCursor] {
			matchLen := commonPrefixLen(base[baseCursor:], target[targetCursor:])
			writeCopy(&instrs, matchLen)
			baseCursor += matchLen
			targetCursor += matchLen
			continue
		}

		insertStart := targetCursor
		for targetCursor < len(target) && !(baseCursor < len(base) && base[baseCursor] == target[targetCursor]) {
			targetCursor++
		}
		writeInsert(&instrs, target[insertStart:targetCursor])
	}

	var out bytes.Buffer
	out.WriteString(Magic)
	writeUint64(&out, uint64(len(base)))
	writeUint64(&out, uint64(len(target)))
	out.Write(instrs.Bytes())
	return out.Bytes()
}

// Apply reconstructs the original target bytes from a delta blob and the
// base content it was encoded against.
func Apply(base, blob []byte) ([]byte, error) {
	if len(blob) < len(Magic)+16 {
		return nil, fmt.Errorf("%w: delta blob too short", storeerr.ErrDeltaCorrupt)
	}
	if string(blob[:len(Magic)]) != Magic {
		return nil, fmt.Errorf("%w: bad magic", storeerr.ErrDeltaCorrupt)
	}
	pos := len(Magic)
	baseLen := binary.LittleEndian.Uint64(blob[pos : pos+8])
	pos += 8
	targetLen := binary.LittleEndian.Uint64(blob[pos : pos+8])
	pos += 8

	if uint64(len(base)) != baseLen {
		return nil, fmt.Errorf("%w: base length mismatch, expected %d got %d", storeerr.ErrDeltaCorrupt, baseLen, len(base))
	}

	out := make([]byte, 0, targetLen)
	baseCursor := 0
	for pos < len(blob) {
		op := blob[pos]
		pos++
		switch op {
		case opCopy:
			if pos+4 > len(blob) {
				return nil, fmt.Errorf("%w: truncated copy instruction", storeerr.ErrDeltaCorrupt)
			}
			n := binary.LittleEndian.Uint32(blob[pos : pos+4])
			pos += 4
			if baseCursor+int(n) > len(base) {
				return nil, fmt.Errorf("%w: copy reads past base", storeerr.ErrDeltaCorrupt)
			}
			out = append(out, base[baseCursor:baseCursor+int(n)]...)
			baseCursor += int(n)
		case opInsert:
			if pos+4 > len(blob) {
				return nil, fmt.Errorf("%w: truncated insert instruction", storeerr.ErrDeltaCorrupt)
			}
			n := binary.LittleEndian.Uint32(blob[pos : pos+4])
			pos += 4
			if pos+int(n) > len(blob) {
				return nil, fmt.Errorf("%w: truncated insert payload", storeerr.ErrDeltaCorrupt)
			}
			out = append(out, blob[pos:pos+int(n)]...)
			pos += int(n)
		default:
			return nil, fmt.Errorf("%w: unknown opcode %#x", storeerr.ErrDeltaCorrupt, op)
		}
	}

	if uint64(len(out)) != targetLen {
		return nil, fmt.Errorf("%w: reconstructed length mismatch, expected %d got %d", storeerr.ErrDeltaCorrupt, targetLen, len(out))
	}
	return out, nil
}

func writeUint64(buf *bytes.Buffer, v uint64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	buf.Write(tmp[:])
}

func writeCopy(buf *bytes.Buffer, n int) {
	buf.WriteByte(opCopy)
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], uint32(n))
	buf.Write(tmp[:])
}

func writeInsert(buf *bytes.Buffer, payload []byte) {
	buf.WriteByte(opInsert)
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], uint32(len(payload)))
	buf.Write(tmp[:])
	buf.Write(payload)
}

func commonPrefixLen(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}
