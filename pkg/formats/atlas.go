package formats

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/skelbridge/pkg/rig"
)

// AtlasDocument is the YAML layout of an atlas file.
type AtlasDocument struct {
	Pages []AtlasPageDocument `yaml:"pages"`
}

// AtlasPageDocument describes one texture page and its regions.
type AtlasPageDocument struct {
	Name    string                `yaml:"name"`
	File    string                `yaml:"file,omitempty"`
	Width   int                   `yaml:"width"`
	Height  int                   `yaml:"height"`
	PMA     bool                  `yaml:"pma"`
	Regions []AtlasRegionDocument `yaml:"regions"`
}

// AtlasRegionDocument is a packed rectangle in pixels.
type AtlasRegionDocument struct {
	Name   string `yaml:"name"`
	X      int    `yaml:"x"`
	Y      int    `yaml:"y"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// ParseAtlas parses a YAML atlas.
func ParseAtlas(data []byte) (*rig.Atlas, error) {
	var doc AtlasDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAtlas, err)
	}
	return BuildAtlas(&doc)
}

// BuildAtlas validates a document and converts it to runtime form.
func BuildAtlas(doc *AtlasDocument) (*rig.Atlas, error) {
	if len(doc.Pages) == 0 {
		return nil, fmt.Errorf("%w: no pages", ErrInvalidAtlas)
	}

	var pages []*rig.AtlasPage
	var regions []*rig.AtlasRegion
	seen := make(map[string]bool)

	for i, pd := range doc.Pages {
		if pd.Width <= 0 || pd.Height <= 0 {
			return nil, fmt.Errorf("%w: page %d has size %dx%d", ErrInvalidAtlas, i, pd.Width, pd.Height)
		}
		file := pd.File
		if file == "" {
			file = pd.Name
		}
		page := &rig.AtlasPage{
			Name:               pd.Name,
			File:               file,
			Width:              pd.Width,
			Height:             pd.Height,
			PremultipliedAlpha: pd.PMA,
		}
		pages = append(pages, page)

		for _, rd := range pd.Regions {
			if seen[rd.Name] {
				return nil, fmt.Errorf("%w: duplicate region %q", ErrInvalidAtlas, rd.Name)
			}
			if rd.X < 0 || rd.Y < 0 || rd.X+rd.Width > pd.Width || rd.Y+rd.Height > pd.Height {
				return nil, fmt.Errorf("%w: region %q outside page %q", ErrInvalidAtlas, rd.Name, pd.Name)
			}
			seen[rd.Name] = true
			regions = append(regions, &rig.AtlasRegion{
				Name:   rd.Name,
				Page:   page,
				X:      rd.X,
				Y:      rd.Y,
				Width:  rd.Width,
				Height: rd.Height,
			})
		}
	}

	return rig.NewAtlas(pages, regions), nil
}
