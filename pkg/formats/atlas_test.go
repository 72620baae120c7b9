package formats

import (
	"errors"
	"testing"
)

func TestParseAtlas(t *testing.T) {
	atlas := loadTestAtlas(t)

	if len(atlas.Pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(atlas.Pages))
	}
	if !atlas.PremultipliedAlpha() {
		t.Error("expected premultiplied page")
	}
	if atlas.Pages[0].File != "hero.png" {
		t.Errorf("expected file to default to page name, got %q", atlas.Pages[0].File)
	}

	sword := atlas.FindRegion("sword")
	if sword == nil {
		t.Fatal("sword region missing")
	}
	if sword.U != 0.5 || sword.V != 0 || sword.U2 != 1 || sword.V2 != 0.5 {
		t.Errorf("unexpected sword uvs (%v,%v)-(%v,%v)", sword.U, sword.V, sword.U2, sword.V2)
	}
	if atlas.FindRegion("nope") != nil {
		t.Error("expected nil for unknown region")
	}
}

func TestBuildAtlas_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  AtlasDocument
	}{
		{"no pages", AtlasDocument{}},
		{"zero size", AtlasDocument{Pages: []AtlasPageDocument{{Name: "p"}}}},
		{"region outside page", AtlasDocument{Pages: []AtlasPageDocument{{
			Name: "p", Width: 8, Height: 8,
			Regions: []AtlasRegionDocument{{Name: "r", X: 4, Y: 0, Width: 8, Height: 8}},
		}}}},
		{"duplicate region", AtlasDocument{Pages: []AtlasPageDocument{{
			Name: "p", Width: 8, Height: 8,
			Regions: []AtlasRegionDocument{{Name: "r", Width: 1, Height: 1}, {Name: "r", Width: 1, Height: 1}},
		}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := BuildAtlas(&tt.doc); !errors.Is(err, ErrInvalidAtlas) {
				t.Errorf("expected ErrInvalidAtlas, got %v", err)
			}
		})
	}
}

func TestParseAtlas_Malformed(t *testing.T) {
	if _, err := ParseAtlas([]byte("pages: {")); !errors.Is(err, ErrInvalidAtlas) {
		t.Errorf("expected ErrInvalidAtlas, got %v", err)
	}
}
