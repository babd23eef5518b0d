package cover

import (
	"encoding/json"
	"log"
	"regexp"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	appfs "github.com/trezcool/kitabu/fs"
)

var (
	versionPrefixRegex = regexp.MustCompile(`^[vV]\d+`)
	versionRegex       = regexp.MustCompile(`^[vV]\d+$`)

	fallback     Library
	fallbackInit sync.Once
)

// NormalizeThemeID canonicalizes version-style theme ids (`v3` -> `V3`).
// Non version-style ids pass through unchanged. Idempotent.
func NormalizeThemeID(id string) string {
	if versionPrefixRegex.MatchString(id) {
		return strings.ToUpper(id)
	}
	return id
}

// NormalizeColourID strips the legacy `_C` suffix and canonicalizes
// version-style ids to uppercase (`v3_c` -> `V3`). Idempotent.
func NormalizeColourID(id string) string {
	if n := len(id); n > 2 && strings.EqualFold(id[n-2:], "_c") {
		id = id[:n-2]
	}
	if versionRegex.MatchString(id) {
		return strings.ToUpper(id)
	}
	return id
}

// rawLibrary tolerates the payload shapes the upstream backend has shipped
// over time. Individual fields decode independently; bad entries are dropped.
type rawLibrary struct {
	Themes         json.RawMessage            `json:"themes"`
	Covers         json.RawMessage            `json:"covers"` // legacy key for themes
	Colours        map[string]json.RawMessage `json:"colours"`
	ColourVersions []string                   `json:"colour_versions"`
}

// NormalizeLibrary turns an arbitrarily-shaped library payload into the
// canonical Library. It never fails: absent or malformed entries are dropped
// silently, and when no usable theme survives the built-in fallback
// catalogue is returned instead.
func NormalizeLibrary(payload []byte) Library {
	var raw rawLibrary
	if len(payload) > 0 {
		_ = json.Unmarshal(payload, &raw)
	}

	lib := Library{Colours: make(map[string]map[Grade]string)}

	themesRaw := raw.Themes
	if len(themesRaw) == 0 {
		themesRaw = raw.Covers
	}
	if len(themesRaw) > 0 {
		var themes []Theme
		if err := json.Unmarshal(themesRaw, &themes); err == nil {
			for _, t := range themes {
				if t.ID == "" {
					continue
				}
				t.ID = NormalizeThemeID(t.ID)
				if t.Label == "" {
					t.Label = t.ID
				}
				lib.Themes = append(lib.Themes, t)
			}
		}
	}

	for id, imagesRaw := range raw.Colours {
		var images map[string]string
		if err := json.Unmarshal(imagesRaw, &images); err != nil {
			continue
		}
		colourID := NormalizeColourID(id)
		byGrade := make(map[Grade]string, len(images))
		for key, url := range images {
			if url == "" {
				continue
			}
			// grade keys arrive either as single-letter codes or full names
			if g, ok := GradeFromCode(strings.ToUpper(key)); ok {
				byGrade[g] = url
			} else if g := Grade(strings.ToLower(key)); g.Valid() {
				byGrade[g] = url
			}
		}
		if len(byGrade) > 0 {
			lib.Colours[colourID] = byGrade
		}
	}

	for _, v := range raw.ColourVersions {
		if v = NormalizeColourID(v); v != "" {
			lib.ColourVersions = append(lib.ColourVersions, v)
		}
	}
	if lib.ColourVersions == nil {
		for id := range lib.Colours {
			lib.ColourVersions = append(lib.ColourVersions, id)
		}
		sort.Strings(lib.ColourVersions)
	}

	if len(lib.Themes) == 0 {
		fb := FallbackLibrary()
		lib.Themes = fb.Themes
		if len(lib.Colours) == 0 {
			lib.Colours = fb.Colours
			lib.ColourVersions = fb.ColourVersions
		}
	}
	return lib
}

// Theme returns the theme with the given (normalized) id.
func (lib Library) Theme(id string) (Theme, bool) {
	id = NormalizeThemeID(id)
	for _, t := range lib.Themes {
		if t.ID == id {
			return t, true
		}
	}
	return Theme{}, false
}

// Image resolves the image URL for a (colour, grade) pair.
// Missing entries mean "no image available", not an error.
func (lib Library) Image(colourID string, grade Grade) (string, bool) {
	images, ok := lib.Colours[NormalizeColourID(colourID)]
	if !ok {
		return "", false
	}
	url, ok := images[grade]
	return url, ok
}

// FallbackLibrary is the static built-in catalogue shown when the remote
// library cannot be loaded. Shipped embedded so the wizard never renders empty.
func FallbackLibrary() Library {
	fallbackInit.Do(func() {
		data, err := appfs.FS.ReadFile("themes.yml")
		if err != nil {
			log.Printf("cover: reading embedded catalogue: %v", err)
			return
		}
		var doc struct {
			Themes  []Theme                      `yaml:"themes"`
			Colours map[string]map[string]string `yaml:"colours"`
		}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			log.Printf("cover: decoding embedded catalogue: %v", err)
			return
		}
		fallback = Library{Themes: doc.Themes, Colours: make(map[string]map[Grade]string)}
		for id, images := range doc.Colours {
			byGrade := make(map[Grade]string, len(images))
			for code, url := range images {
				if g, ok := GradeFromCode(strings.ToUpper(code)); ok {
					byGrade[g] = url
				}
			}
			fallback.Colours[NormalizeColourID(id)] = byGrade
			fallback.ColourVersions = append(fallback.ColourVersions, NormalizeColourID(id))
		}
		// doc.Colours is a map; keep the published version order stable
		sort.Strings(fallback.ColourVersions)
	})
	return fallback
}
