package cover

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeThemeID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: ""},
		{in: "v3", want: "V3"},
		{in: "V3", want: "V3"},
		{in: "v12_summer", want: "V12_SUMMER"},
		{in: "classic", want: "classic"},
		{in: "vintage", want: "vintage"}, // no digit after v: not version-style
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := NormalizeThemeID(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, NormalizeThemeID(got)) // idempotent
		})
	}
}

func TestNormalizeColourID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: ""},
		{in: "v3", want: "V3"},
		{in: "v3_c", want: "V3"},
		{in: "v3_C", want: "V3"},
		{in: "V3_C", want: "V3"},
		{in: "teal_c", want: "teal"},
		{in: "teal", want: "teal"},
		{in: "_c", want: "_c"}, // too short to be a suffixed id
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := NormalizeColourID(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, NormalizeColourID(got)) // idempotent
		})
	}
}

func TestNormalizeLibrary(t *testing.T) {
	t.Run("canonical payload", func(t *testing.T) {
		payload := []byte(`{
			"themes": [
				{"id": "v1", "label": "Sunshine"},
				{"id": "v2"},
				{"label": "no id, dropped"}
			],
			"colours": {
				"v1_c": {"P": "/v1/p.png", "nursery": "/v1/n.png", "x": "/ignored.png"},
				"v2": {"U": ""}
			},
			"colour_versions": ["v1_c", "v2"]
		}`)
		lib := NormalizeLibrary(payload)

		assert.Equal(t, []Theme{{ID: "V1", Label: "Sunshine"}, {ID: "V2", Label: "V2"}}, lib.Themes)
		assert.Equal(t, map[Grade]string{
			GradePlaygroup: "/v1/p.png",
			GradeNursery:   "/v1/n.png",
		}, lib.Colours["V1"])
		// empty image URLs dropped, leaving no usable entry
		assert.NotContains(t, lib.Colours, "V2")
		assert.Equal(t, []string{"V1", "V2"}, lib.ColourVersions)
	})

	t.Run("legacy covers key", func(t *testing.T) {
		lib := NormalizeLibrary([]byte(`{"covers": [{"id": "v7", "label": "Retro"}]}`))
		theme, ok := lib.Theme("v7")
		assert.True(t, ok)
		assert.Equal(t, "Retro", theme.Label)
	})

	t.Run("malformed sections dropped independently", func(t *testing.T) {
		payload := []byte(`{
			"themes": "not-an-array",
			"colours": {"v1": {"P": "/v1/p.png"}, "bad": 42}
		}`)
		lib := NormalizeLibrary(payload)
		// themes fall back, valid colours survive
		assert.Equal(t, FallbackLibrary().Themes, lib.Themes)
		assert.Contains(t, lib.Colours, "V1")
		assert.NotContains(t, lib.Colours, "bad")
	})

	t.Run("empty payload falls back", func(t *testing.T) {
		for _, payload := range [][]byte{nil, []byte(`{}`), []byte(`not json`)} {
			lib := NormalizeLibrary(payload)
			assert.Equal(t, FallbackLibrary().Themes, lib.Themes)
			assert.Equal(t, FallbackLibrary().Colours, lib.Colours)
		}
	})
}

func TestLibrary_Image(t *testing.T) {
	lib := testLibrary()

	url, ok := lib.Image("v1_c", GradeNursery) // raw id accepted
	assert.True(t, ok)
	assert.Equal(t, "/covers/V1/N.png", url)

	_, ok = lib.Image("V2", GradeUKG) // colour exists, grade image missing
	assert.False(t, ok)

	_, ok = lib.Image("V9", GradeNursery)
	assert.False(t, ok)
}

func TestFallbackLibrary(t *testing.T) {
	lib := FallbackLibrary()

	assert.NotEmpty(t, lib.Themes)
	for _, theme := range lib.Themes {
		images, ok := lib.Colours[theme.ID]
		assert.True(t, ok, "theme %s has no colour entry", theme.ID)
		for _, g := range AllGrades {
			assert.NotEmpty(t, images[g], "theme %s missing image for %s", theme.ID, g)
		}
	}

	// version order is part of the published payload and must be stable
	assert.Len(t, lib.ColourVersions, len(lib.Colours))
	assert.True(t, sort.StringsAreSorted(lib.ColourVersions), "ColourVersions = %v; want sorted", lib.ColourVersions)
}
