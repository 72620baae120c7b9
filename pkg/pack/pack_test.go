package pack

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var testFiles = []struct {
	name    string
	content []byte
}{
	{"hero/hero.skel.yaml", []byte(strings.Repeat("bones: []\n", 20))},
	{"hero/hero.atlas.yaml", []byte("pages: []")},
	{"Hero/Hero.png", []byte{0x89, 'P', 'N', 'G'}},
}

func writeTestPack(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "test.skpk")
	f, err := os.Create(p)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	w, err := NewWriter(f)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	for _, tf := range testFiles {
		if err := w.Add(tf.name, tf.content); err != nil {
			t.Fatalf("Add(%s): %v", tf.name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return p
}

func TestRoundTrip(t *testing.T) {
	archive, err := Open(writeTestPack(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer archive.Close()

	if got := archive.Header().FileCount; got != uint32(len(testFiles)) {
		t.Errorf("FileCount = %d, want %d", got, len(testFiles))
	}
	want := []string{"hero/hero.atlas.yaml", "hero/hero.png", "hero/hero.skel.yaml"}
	if got := archive.List(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("List() = %v, want %v", got, want)
	}

	for _, tf := range testFiles {
		data, err := archive.Read(tf.name)
		if err != nil {
			t.Errorf("Read(%s): %v", tf.name, err)
			continue
		}
		if !bytes.Equal(data, tf.content) {
			t.Errorf("Read(%s) = %q, want %q", tf.name, data, tf.content)
		}
	}

	skel, _ := archive.Stat("hero/hero.skel.yaml")
	if skel.Flags&FlagCompressed == 0 || skel.CompressedSize >= skel.UncompressedSize {
		t.Errorf("repetitive entry not compressed: %+v", skel)
	}
	png, _ := archive.Stat("hero/hero.png")
	if png.Flags&FlagCompressed != 0 {
		t.Errorf("tiny entry stored compressed: %+v", png)
	}
}

func TestCaseInsensitive(t *testing.T) {
	archive, err := Open(writeTestPack(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer archive.Close()

	for _, name := range []string{"HERO/hero.png", `hero\hero.png`, "hero/./hero.png"} {
		if !archive.Contains(name) {
			t.Errorf("Contains(%q) = false", name)
		}
	}
	if archive.Contains("hero/missing.png") {
		t.Error("Contains(missing) = true")
	}
	if _, err := archive.Read("hero/missing.png"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Read(missing) = %v, want fs.ErrNotExist", err)
	}
}

func TestFS(t *testing.T) {
	archive, err := Open(writeTestPack(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer archive.Close()

	var fsys fs.FS = archive
	data, err := fs.ReadFile(fsys, "hero/hero.atlas.yaml")
	if err != nil || string(data) != "pages: []" {
		t.Errorf("fs.ReadFile = %q, %v", data, err)
	}

	f, err := fsys.Open("hero/hero.png")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	info, err := f.Stat()
	if err != nil || info.Name() != "hero.png" || info.Size() != 4 || info.IsDir() {
		t.Errorf("Stat = %+v, %v", info, err)
	}
	f.Close()

	if _, err := fsys.Open("hero/nope"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Open(nope) = %v, want fs.ErrNotExist", err)
	}
	if _, err := fsys.Open("../escape"); !errors.Is(err, fs.ErrInvalid) {
		t.Errorf("Open(../escape) = %v, want fs.ErrInvalid", err)
	}
}

func TestDuplicateEntry(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "dup.skpk"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	w, _ := NewWriter(f)
	if err := w.Add("a.txt", []byte("1")); err != nil {
		t.Fatal(err)
	}
	if err := w.Add("A.txt", []byte("2")); !errors.Is(err, ErrDuplicateEntry) {
		t.Errorf("Add(duplicate) = %v, want ErrDuplicateEntry", err)
	}
}

func TestAddDir(t *testing.T) {
	src := t.TempDir()
	if err := os.MkdirAll(filepath.Join(src, "hero"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "hero", "a.yaml"), []byte("a"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "b.yaml"), []byte("b"), 0644); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(t.TempDir(), "dir.skpk")
	f, err := os.Create(out)
	if err != nil {
		t.Fatal(err)
	}
	w, _ := NewWriter(f)
	if err := w.AddDir(src); err != nil {
		t.Fatalf("AddDir: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	f.Close()

	archive, err := Open(out)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer archive.Close()
	if got := strings.Join(archive.List(), ","); got != "b.yaml,hero/a.yaml" {
		t.Errorf("List() = %s", got)
	}
}

func TestInvalid(t *testing.T) {
	valid, err := os.ReadFile(writeTestPack(t))
	if err != nil {
		t.Fatal(err)
	}

	badMagic := append([]byte(nil), valid...)
	copy(badMagic, "NOPE")

	badVersion := append([]byte(nil), valid...)
	badVersion[4] = 9

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"magic", badMagic, ErrInvalidMagic},
		{"version", badVersion, ErrUnsupportedVersion},
		{"truncated header", valid[:10], ErrCorrupt},
		{"truncated table", valid[:len(valid)-4], ErrCorrupt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewReader(bytes.NewReader(tt.data), int64(len(tt.data)))
			if !errors.Is(err, tt.want) {
				t.Errorf("NewReader = %v, want %v", err, tt.want)
			}
		})
	}
}
