// Package pack reads and writes skeleton asset packs: a single file holding
// skeletons, atlases and texture pages, each zlib-compressed, behind a
// compressed file table. An opened Archive is an fs.FS and can be mounted as
// an asset root.
//
// Layout (little endian):
//
//	header   magic "SKPK", version u32, table offset u64, file count u32
//	data     entry payloads, back to back
//	table    compressed size u32, uncompressed size u32, zlib(entries)
//	entry    name NUL, compressed size u32, size u32, flags u8, offset u64
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
	"path"
	"sort"
	"strings"
	"time"
)

const (
	magic   = "SKPK"
	version = 1

	headerSize = 20
	entryFixed = 17
)

// Entry flags.
const (
	FlagFile       = 0x01
	FlagCompressed = 0x02
)

// Errors.
var (
	ErrInvalidMagic       = errors.New("invalid pack magic")
	ErrUnsupportedVersion = errors.New("unsupported pack version")
	ErrCorrupt            = errors.New("corrupt pack")
)

// Header is the fixed-size pack header.
type Header struct {
	Magic       [4]byte
	Version     uint32
	TableOffset uint64
	FileCount   uint32
}

// Entry describes one file in the pack.
type Entry struct {
	Name             string
	CompressedSize   uint32
	UncompressedSize uint32
	Flags            uint8
	Offset           uint64
}

// Archive is an opened pack. Reads are safe for concurrent use.
type Archive struct {
	r        io.ReaderAt
	closer   io.Closer
	header   Header
	fileList map[string]*Entry
	modTime  time.Time
}

// Open opens a pack file for reading.
func Open(name string) (*Archive, error) {
	file, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}

	archive, err := NewReader(file, info.Size())
	if err != nil {
		file.Close()
		return nil, err
	}
	archive.closer = file
	archive.modTime = info.ModTime()
	return archive, nil
}

// NewReader reads a pack of the given size from r.
func NewReader(r io.ReaderAt, size int64) (*Archive, error) {
	archive := &Archive{r: r, fileList: make(map[string]*Entry)}
	if err := archive.readHeader(); err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if err := archive.readFileTable(size); err != nil {
		return nil, fmt.Errorf("reading file table: %w", err)
	}
	return archive, nil
}

// Close closes the underlying file, if the archive owns one.
func (a *Archive) Close() error {
	if a.closer != nil {
		return a.closer.Close()
	}
	return nil
}

// Header returns the pack header.
func (a *Archive) Header() Header { return a.header }

func (a *Archive) readHeader() error {
	buf := make([]byte, headerSize)
	if _, err := a.r.ReadAt(buf, 0); err != nil {
		return fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if err := binary.Read(bytes.NewReader(buf), binary.LittleEndian, &a.header); err != nil {
		return err
	}
	if string(a.header.Magic[:]) != magic {
		return ErrInvalidMagic
	}
	if a.header.Version != version {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, a.header.Version)
	}
	return nil
}

func (a *Archive) readFileTable(size int64) error {
	off := int64(a.header.TableOffset)
	if off < headerSize || off+8 > size {
		return fmt.Errorf("%w: table offset %d", ErrCorrupt, off)
	}

	var sizes [8]byte
	if _, err := a.r.ReadAt(sizes[:], off); err != nil {
		return fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	compressedSize := binary.LittleEndian.Uint32(sizes[0:])
	uncompressedSize := binary.LittleEndian.Uint32(sizes[4:])
	if off+8+int64(compressedSize) > size {
		return fmt.Errorf("%w: table size %d", ErrCorrupt, compressedSize)
	}

	compressedData := make([]byte, compressedSize)
	if _, err := a.r.ReadAt(compressedData, off+8); err != nil {
		return fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	tableData, err := inflate(compressedData, uncompressedSize)
	if err != nil {
		return err
	}

	offset := 0
	for i := uint32(0); i < a.header.FileCount; i++ {
		nameEnd := bytes.IndexByte(tableData[offset:], 0)
		if nameEnd < 0 {
			return fmt.Errorf("%w: unterminated name in entry %d", ErrCorrupt, i)
		}
		name := string(tableData[offset : offset+nameEnd])
		offset += nameEnd + 1

		if offset+entryFixed > len(tableData) {
			return fmt.Errorf("%w: truncated entry %d", ErrCorrupt, i)
		}

		entry := &Entry{
			Name:             normalizePath(name),
			CompressedSize:   binary.LittleEndian.Uint32(tableData[offset:]),
			UncompressedSize: binary.LittleEndian.Uint32(tableData[offset+4:]),
			Flags:            tableData[offset+8],
			Offset:           binary.LittleEndian.Uint64(tableData[offset+9:]),
		}
		offset += entryFixed

		if entry.Offset+uint64(entry.CompressedSize) > uint64(off) {
			return fmt.Errorf("%w: entry %s overlaps the table", ErrCorrupt, entry.Name)
		}
		if entry.Flags&FlagFile != 0 {
			a.fileList[entry.Name] = entry
		}
	}
	return nil
}

// List returns all file paths in the pack, sorted.
func (a *Archive) List() []string {
	result := make([]string, 0, len(a.fileList))
	for p := range a.fileList {
		result = append(result, p)
	}
	sort.Strings(result)
	return result
}

// Stat returns the entry for a path.
func (a *Archive) Stat(name string) (*Entry, bool) {
	e, ok := a.fileList[normalizePath(name)]
	return e, ok
}

// Contains checks if a file exists.
func (a *Archive) Contains(name string) bool {
	_, ok := a.fileList[normalizePath(name)]
	return ok
}

// Read reads a file from the pack.
func (a *Archive) Read(name string) ([]byte, error) {
	entry, ok := a.fileList[normalizePath(name)]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, fs.ErrNotExist)
	}

	data := make([]byte, entry.CompressedSize)
	if _, err := a.r.ReadAt(data, int64(entry.Offset)); err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrCorrupt, entry.Name, err)
	}
	if entry.Flags&FlagCompressed == 0 {
		return data, nil
	}
	return inflate(data, entry.UncompressedSize)
}

func inflate(data []byte, size uint32) ([]byte, error) {
	reader, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	defer reader.Close()

	result := make([]byte, size)
	if _, err := io.ReadFull(reader, result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return result, nil
}

// Paths are slash separated and matched case-insensitively.
func normalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	return strings.ToLower(path.Clean(p))
}
