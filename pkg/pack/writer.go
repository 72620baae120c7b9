package pack

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrDuplicateEntry is returned when a path is added twice.
var ErrDuplicateEntry = errors.New("duplicate pack entry")

// Writer builds a pack. The header is rewritten on Close, so the target must
// be seekable.
type Writer struct {
	w       io.WriteSeeker
	entries []Entry
	names   map[string]bool
	offset  uint64
	closed  bool
}

// NewWriter starts a pack on w, which must be positioned at its start.
func NewWriter(w io.WriteSeeker) (*Writer, error) {
	if _, err := w.Write(make([]byte, headerSize)); err != nil {
		return nil, err
	}
	return &Writer{w: w, names: make(map[string]bool), offset: headerSize}, nil
}

// Add stores data under name. Payloads that do not shrink under zlib are
// stored raw.
func (w *Writer) Add(name string, data []byte) error {
	if w.closed {
		return errors.New("pack writer closed")
	}
	name = normalizePath(name)
	if w.names[name] {
		return fmt.Errorf("%w: %s", ErrDuplicateEntry, name)
	}

	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	if _, err := zw.Write(data); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}

	entry := Entry{
		Name:             name,
		UncompressedSize: uint32(len(data)),
		Flags:            FlagFile,
		Offset:           w.offset,
	}
	payload := data
	if compressed.Len() < len(data) {
		payload = compressed.Bytes()
		entry.Flags |= FlagCompressed
	}
	entry.CompressedSize = uint32(len(payload))

	if _, err := w.w.Write(payload); err != nil {
		return err
	}
	w.offset += uint64(len(payload))
	w.entries = append(w.entries, entry)
	w.names[name] = true
	return nil
}

// AddDir adds every regular file below root, named by its slash-separated
// path relative to root.
func (w *Writer) AddDir(root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		return w.Add(filepath.ToSlash(rel), data)
	})
}

// Close writes the file table and the final header.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	var table bytes.Buffer
	var fixed [entryFixed]byte
	for _, e := range w.entries {
		table.WriteString(e.Name)
		table.WriteByte(0)
		binary.LittleEndian.PutUint32(fixed[0:], e.CompressedSize)
		binary.LittleEndian.PutUint32(fixed[4:], e.UncompressedSize)
		fixed[8] = e.Flags
		binary.LittleEndian.PutUint64(fixed[9:], e.Offset)
		table.Write(fixed[:])
	}

	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	if _, err := zw.Write(table.Bytes()); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}

	var sizes [8]byte
	binary.LittleEndian.PutUint32(sizes[0:], uint32(compressed.Len()))
	binary.LittleEndian.PutUint32(sizes[4:], uint32(table.Len()))
	if _, err := w.w.Write(sizes[:]); err != nil {
		return err
	}
	if _, err := w.w.Write(compressed.Bytes()); err != nil {
		return err
	}

	header := Header{Version: version, TableOffset: w.offset, FileCount: uint32(len(w.entries))}
	copy(header.Magic[:], magic)
	if _, err := w.w.Seek(0, io.SeekStart); err != nil {
		return err
	}
	return binary.Write(w.w, binary.LittleEndian, &header)
}
