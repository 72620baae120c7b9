// skelpack is a CLI utility for working with skeleton asset packs.
package main

import (
	"flag"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Faultbox/skelbridge/pkg/formats"
	"github.com/Faultbox/skelbridge/pkg/pack"
	"github.com/Faultbox/skelbridge/pkg/rig"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "create", "c":
		cmdCreate(args)
	case "info":
		cmdInfo(args)
	case "list", "ls":
		cmdList(args)
	case "extract", "x":
		cmdExtract(args)
	case "check":
		cmdCheck(args)
	case "convert":
		cmdConvert(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`skelpack - skeleton asset pack utility

Usage:
  skelpack <command> [options]

Commands:
  create <out.skpk> <dir>             Pack every file below dir
  info <file.skpk>                    Show pack information
  list <file.skpk> [pattern]          List files (optional glob pattern)
  extract <file.skpk> <path> [output] Extract file(s) to directory
  check <file.skpk>                   Parse every atlas and skeleton
  convert <in.skel.yaml> <out.skb>    Convert a text skeleton to binary

Examples:
  skelpack create hero.skpk assets/hero
  skelpack list hero.skpk "*.yaml"
  skelpack extract hero.skpk "*.png" ./output
  skelpack convert hero.skel.yaml hero.skb`)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func openPack(name string) *pack.Archive {
	archive, err := pack.Open(name)
	if err != nil {
		fatalf("Error: %v", err)
	}
	return archive
}

func cmdCreate(args []string) {
	if len(args) < 2 {
		fatalf("Usage: skelpack create <out.skpk> <dir>")
	}

	f, err := os.Create(args[0])
	if err != nil {
		fatalf("Error: %v", err)
	}
	defer f.Close()

	w, err := pack.NewWriter(f)
	if err != nil {
		fatalf("Error: %v", err)
	}
	if err := w.AddDir(args[1]); err != nil {
		fatalf("Error adding %s: %v", args[1], err)
	}
	if err := w.Close(); err != nil {
		fatalf("Error writing table: %v", err)
	}
	fmt.Printf("Created: %s\n", args[0])
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fatalf("Usage: skelpack info <file.skpk>")
	}

	archive := openPack(args[0])
	defer archive.Close()

	files := archive.List()

	// Count by extension
	extCount := make(map[string]int)
	var packed, unpacked uint64
	for _, f := range files {
		ext := strings.ToLower(path.Ext(f))
		if ext == "" {
			ext = "(no ext)"
		}
		extCount[ext]++
		if e, ok := archive.Stat(f); ok {
			packed += uint64(e.CompressedSize)
			unpacked += uint64(e.UncompressedSize)
		}
	}

	fmt.Printf("Pack:    %s\n", args[0])
	fmt.Printf("Version: %d\n", archive.Header().Version)
	fmt.Printf("Files:   %d\n", len(files))
	fmt.Printf("Size:    %.2f KB packed, %.2f KB unpacked\n", float64(packed)/1024, float64(unpacked)/1024)
	fmt.Println()
	fmt.Println("Files by type:")

	type extStat struct {
		ext   string
		count int
	}
	var stats []extStat
	for ext, count := range extCount {
		stats = append(stats, extStat{ext, count})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].count != stats[j].count {
			return stats[i].count > stats[j].count
		}
		return stats[i].ext < stats[j].ext
	})
	for _, s := range stats {
		fmt.Printf("  %-10s %d\n", s.ext, s.count)
	}
}

func cmdList(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	limit := fs.Int("n", 0, "Limit output to N files (0 = all)")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fatalf("Usage: skelpack list <file.skpk> [pattern]")
	}

	archive := openPack(fs.Arg(0))
	defer archive.Close()

	pattern := ""
	if fs.NArg() > 1 {
		pattern = strings.ToLower(fs.Arg(1))
	}

	count := 0
	for _, f := range archive.List() {
		if pattern != "" && !matches(pattern, f) {
			continue
		}
		e, _ := archive.Stat(f)
		fmt.Printf("%-40s %8d\n", f, e.UncompressedSize)
		count++
		if *limit > 0 && count >= *limit {
			break
		}
	}

	if pattern != "" {
		fmt.Fprintf(os.Stderr, "\n(%d files matched)\n", count)
	}
}

func matches(pattern, name string) bool {
	matched, _ := path.Match(pattern, path.Base(name))
	return matched || strings.Contains(name, pattern)
}

func cmdExtract(args []string) {
	if len(args) < 2 {
		fatalf("Usage: skelpack extract <file.skpk> <path> [output_dir]")
	}
	outputDir := "."
	if len(args) > 2 {
		outputDir = args[2]
	}

	archive := openPack(args[0])
	defer archive.Close()

	want := strings.ToLower(args[1])
	extracted := 0
	for _, f := range archive.List() {
		if f != want && !(strings.Contains(want, "*") && matches(want, f)) {
			continue
		}

		data, err := archive.Read(f)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", f, err)
			continue
		}

		// Preserve directory structure
		outputPath := filepath.Join(outputDir, filepath.FromSlash(f))
		if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating directory: %v\n", err)
			continue
		}
		if err := os.WriteFile(outputPath, data, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", outputPath, err)
			continue
		}

		fmt.Printf("Extracted: %s (%d bytes)\n", outputPath, len(data))
		extracted++
	}

	if extracted == 0 {
		fatalf("File not found: %s", args[1])
	}
}

// cmdCheck parses every atlas, then every skeleton against the atlas with the
// same base name in its directory.
func cmdCheck(args []string) {
	if len(args) < 1 {
		fatalf("Usage: skelpack check <file.skpk>")
	}

	archive := openPack(args[0])
	defer archive.Close()

	atlases := make(map[string]*rig.Atlas)
	failures := 0
	for _, f := range archive.List() {
		if !strings.HasSuffix(f, ".atlas.yaml") {
			continue
		}
		data, err := archive.Read(f)
		if err == nil {
			var atlas *rig.Atlas
			if atlas, err = formats.ParseAtlas(data); err == nil {
				atlases[strings.TrimSuffix(f, ".atlas.yaml")] = atlas
				fmt.Printf("ok    %s (%d regions)\n", f, len(atlas.Regions))
				continue
			}
		}
		fmt.Printf("FAIL  %s: %v\n", f, err)
		failures++
	}

	for _, f := range archive.List() {
		var base string
		var parse func([]byte, *rig.Atlas) (*rig.SkeletonData, error)
		switch {
		case strings.HasSuffix(f, ".skel.yaml"):
			base, parse = strings.TrimSuffix(f, ".skel.yaml"), formats.ParseSkeletonText
		case strings.HasSuffix(f, ".skb"):
			base, parse = strings.TrimSuffix(f, ".skb"), formats.ParseSkeletonBinary
		default:
			continue
		}

		atlas, ok := atlases[base]
		if !ok {
			fmt.Printf("FAIL  %s: no atlas %s.atlas.yaml\n", f, base)
			failures++
			continue
		}
		data, err := archive.Read(f)
		if err == nil {
			var sd *rig.SkeletonData
			if sd, err = parse(data, atlas); err == nil {
				fmt.Printf("ok    %s (%d bones, %d slots, %d animations)\n", f, len(sd.Bones), len(sd.Slots), len(sd.Animations))
				continue
			}
		}
		fmt.Printf("FAIL  %s: %v\n", f, err)
		failures++
	}

	if failures > 0 {
		fatalf("\n%d files failed", failures)
	}
}

func cmdConvert(args []string) {
	if len(args) < 2 {
		fatalf("Usage: skelpack convert <in.skel.yaml> <out.skb>")
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		fatalf("Error: %v", err)
	}
	doc, err := formats.DecodeSkeletonText(data)
	if err != nil {
		fatalf("Error: %v", err)
	}
	out, err := formats.EncodeSkeletonBinary(doc)
	if err != nil {
		fatalf("Error: %v", err)
	}
	if err := os.WriteFile(args[1], out, 0644); err != nil {
		fatalf("Error: %v", err)
	}
	fmt.Printf("Converted: %s -> %s (%d -> %d bytes)\n", args[0], args[1], len(data), len(out))
}
