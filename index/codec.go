package index

import (
	"bytes"
	"crypto/sha1" //nolint:gosec // index trailer checksum, not a security boundary
	"encoding/binary"

	"github.com/halide-vcs/gitkit/githash"
	"github.com/halide-vcs/gitkit/object"
	"golang.org/x/xerrors"
)

// entryPrefixSize is the size, in bytes, of an entry's fixed fields up
// through (and including) the 2-byte flags field.
const entryPrefixSize = 62

// trailerSize is the size of the trailing SHA-1 checksum.
const trailerSize = 20

// StrictChecksum, when passed to Parse, makes a trailer mismatch a
// parse failure (ErrInvalidIndex) instead of being silently ignored.
// Spec §4.7 leaves this implementation-defined; SPEC_FULL.md §12
// resolves it in favor of strict checking, since a corrupt index is
// far more dangerous to silently accept than a corrupt object (the
// next commit would silently drop or misplace staged changes).
type StrictChecksum bool

// Parse decodes a full index stream: header, entry_count entries, and
// the trailing SHA-1 checksum.
func Parse(hash githash.Hash, data []byte, strict StrictChecksum) (*Index, error) {
	if len(data) < 12+trailerSize {
		return nil, xerrors.Errorf("stream too short (%d bytes): %w", len(data), ErrInvalidIndex)
	}

	if string(data[0:4]) != Signature {
		return nil, xerrors.Errorf("bad signature %q: %w", string(data[0:4]), ErrInvalidIndex)
	}
	version := binary.BigEndian.Uint32(data[4:8])
	if version < MinVersion || version > MaxVersion {
		return nil, xerrors.Errorf("unsupported version %d: %w", version, ErrInvalidIndex)
	}
	count := binary.BigEndian.Uint32(data[8:12])

	body := data[:len(data)-trailerSize]
	trailer := data[len(data)-trailerSize:]
	if bool(strict) {
		sum := sha1.Sum(body) //nolint:gosec
		if !bytes.Equal(sum[:], trailer) {
			return nil, xerrors.Errorf("trailer checksum mismatch: %w", ErrInvalidIndex)
		}
	}

	idx := &Index{Version: version}
	offset := 12
	for i := uint32(0); i < count; i++ {
		e, consumed, err := parseEntry(hash, body, offset, version)
		if err != nil {
			return nil, xerrors.Errorf("entry %d: %w", i, err)
		}
		idx.entries = append(idx.entries, e)
		offset += consumed
	}
	return idx, nil
}

func parseEntry(hash githash.Hash, body []byte, start int, version uint32) (Entry, int, error) {
	if start+entryPrefixSize > len(body) {
		return Entry{}, 0, xerrors.Errorf("truncated entry prefix: %w", ErrInvalidIndex)
	}
	p := body[start : start+entryPrefixSize]

	var e Entry
	e.CTimeSec = binary.BigEndian.Uint32(p[0:4])
	e.CTimeNano = binary.BigEndian.Uint32(p[4:8])
	e.MTimeSec = binary.BigEndian.Uint32(p[8:12])
	e.MTimeNano = binary.BigEndian.Uint32(p[12:16])
	e.Dev = binary.BigEndian.Uint32(p[16:20])
	e.Ino = binary.BigEndian.Uint32(p[20:24])
	mode := object.Mode(binary.BigEndian.Uint32(p[24:28]))
	if !mode.IsValid() {
		return Entry{}, 0, xerrors.Errorf("unsupported mode %o: %w", uint32(mode), ErrInvalidIndex)
	}
	e.Mode = mode
	e.UID = binary.BigEndian.Uint32(p[28:32])
	e.GID = binary.BigEndian.Uint32(p[32:36])
	e.Size = binary.BigEndian.Uint32(p[36:40])

	oidSize := hash.OidSize()
	if 40+oidSize+2 > entryPrefixSize {
		return Entry{}, 0, xerrors.Errorf("oid size %d too large for fixed entry prefix: %w", oidSize, ErrInvalidIndex)
	}
	oid, err := hash.FromBytes(p[40 : 40+oidSize])
	if err != nil {
		return Entry{}, 0, xerrors.Errorf("invalid oid: %w", ErrInvalidIndex)
	}
	e.ID = oid

	flagsOff := 40 + oidSize
	flags := binary.BigEndian.Uint16(p[flagsOff : flagsOff+2])
	nameLen := int(flags & nameMask)
	e.Stage = uint8((flags >> stageShift) & stageMask)

	pos := start + entryPrefixSize
	if flags&extendedFlag != 0 {
		if version < 3 {
			return Entry{}, 0, xerrors.Errorf("extended flag set on v%d entry: %w", version, ErrInvalidIndex)
		}
		pos += 2 // skip extended flags; no extended bit is interpreted
	}

	if nameLen == nameMask {
		// name is 0xFFF or longer: read up to the next NUL instead of
		// trusting the truncated length.
		end := bytes.IndexByte(body[pos:], 0)
		if end < 0 {
			return Entry{}, 0, xerrors.Errorf("unterminated long name: %w", ErrInvalidIndex)
		}
		nameLen = end
	}
	if pos+nameLen > len(body) {
		return Entry{}, 0, xerrors.Errorf("truncated name: %w", ErrInvalidIndex)
	}
	e.Path = string(body[pos : pos+nameLen])
	pos += nameLen

	entryLen := pos - start
	padded := alignUp(entryLen, 8)
	if start+padded > len(body) {
		return Entry{}, 0, xerrors.Errorf("truncated padding: %w", ErrInvalidIndex)
	}
	return e, padded, nil
}

// alignUp rounds n up to the next multiple of align, always advancing
// by at least 1 byte (the NUL terminator is never optional).
func alignUp(n, align int) int {
	rem := n % align
	if rem == 0 {
		return n + align
	}
	return n + (align - rem)
}

// Serialize encodes the index into its on-disk DIRC form: header,
// entries sorted ascending by (path, stage), then a trailing SHA-1 of
// everything preceding it.
func Serialize(hash githash.Hash, idx *Index) []byte {
	idx.sort()

	buf := new(bytes.Buffer)
	buf.WriteString(Signature)
	writeUint32(buf, idx.Version)
	writeUint32(buf, uint32(len(idx.entries)))

	for _, e := range idx.entries {
		writeEntry(buf, e)
	}

	sum := sha1.Sum(buf.Bytes()) //nolint:gosec
	buf.Write(sum[:])
	return buf.Bytes()
}

func writeEntry(buf *bytes.Buffer, e Entry) {
	start := buf.Len()
	writeUint32(buf, e.CTimeSec)
	writeUint32(buf, e.CTimeNano)
	writeUint32(buf, e.MTimeSec)
	writeUint32(buf, e.MTimeNano)
	writeUint32(buf, e.Dev)
	writeUint32(buf, e.Ino)
	writeUint32(buf, uint32(e.Mode))
	writeUint32(buf, e.UID)
	writeUint32(buf, e.GID)
	writeUint32(buf, e.Size)
	buf.Write(e.ID.Bytes())

	path := normalizeSlashes(e.Path)
	nameLen := len(path)
	flags := uint16(nameLen)
	if nameLen > nameMask {
		flags = nameMask
	}
	flags |= uint16(e.Stage&stageMask) << stageShift
	writeUint16(buf, flags)

	buf.WriteString(path)

	entryLen := buf.Len() - start
	padded := alignUp(entryLen, 8)
	for i := 0; i < padded-entryLen; i++ {
		buf.WriteByte(0)
	}
}

func normalizeSlashes(p string) string {
	out := make([]byte, len(p))
	for i := 0; i < len(p); i++ {
		if p[i] == '\\' {
			out[i] = '/'
		} else {
			out[i] = p[i]
		}
	}
	return string(out)
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeUint16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}
