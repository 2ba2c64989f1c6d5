package fontmetrics

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/flanksource/commons/logger"
	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// refSize is the pixels-per-em the provider measures at before scaling
// to the target size; large for precision.
const refSize = 1000

// maxCachedFonts bounds the parsed-font cache.
const maxCachedFonts = 16

// FontPathEnv lists extra font directories, separated by the OS path
// list separator.
const FontPathEnv = "GRIDPLATE_FONT_PATH"

// FontProvider resolves family names to font files found in the
// configured directories and measures strings against the real glyph
// outlines. Lookups are cached; repeated measurements are idempotent.
type FontProvider struct {
	dirs     []string
	families map[string]string // lower-cased family name -> file path
	fonts    map[string]*sfnt.Font
	buf      sfnt.Buffer
}

// New creates a provider scanning the given directories, or the platform
// font directories (plus $GRIDPLATE_FONT_PATH) when none are given.
func New(dirs ...string) *FontProvider {
	if len(dirs) == 0 {
		dirs = defaultFontDirs()
	}
	return &FontProvider{
		dirs:  dirs,
		fonts: map[string]*sfnt.Font{},
	}
}

func defaultFontDirs() []string {
	dirs := []string{
		"/usr/share/fonts",
		"/usr/local/share/fonts",
		"/Library/Fonts",
		"/System/Library/Fonts",
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs,
			filepath.Join(home, ".fonts"),
			filepath.Join(home, ".local", "share", "fonts"),
			filepath.Join(home, "Library", "Fonts"),
		)
	}
	if extra := os.Getenv(FontPathEnv); extra != "" {
		dirs = append(dirs, filepath.SplitList(extra)...)
	}
	return dirs
}

// Measure implements Provider.
func (p *FontProvider) Measure(family, text string, size float64) (Metrics, error) {
	f, err := p.resolve(family)
	if err != nil {
		return Metrics{}, err
	}

	ppem := fixed.I(refSize)
	var (
		pen        fixed.Int26_6
		minX, minY fixed.Int26_6
		maxX, maxY fixed.Int26_6
		first      = true
	)
	for _, r := range text {
		gi, err := f.GlyphIndex(&p.buf, r)
		if err != nil {
			return Metrics{}, fmt.Errorf("failed to look up glyph for %q: %w", r, err)
		}
		bounds, advance, err := f.GlyphBounds(&p.buf, gi, ppem, font.HintingNone)
		if err != nil {
			return Metrics{}, fmt.Errorf("failed to measure glyph for %q: %w", r, err)
		}
		if bounds.Min.X != bounds.Max.X || bounds.Min.Y != bounds.Max.Y {
			if first {
				minX, maxX = pen+bounds.Min.X, pen+bounds.Max.X
				minY, maxY = bounds.Min.Y, bounds.Max.Y
				first = false
			} else {
				minX = min(minX, pen+bounds.Min.X)
				maxX = max(maxX, pen+bounds.Max.X)
				minY = min(minY, bounds.Min.Y)
				maxY = max(maxY, bounds.Max.Y)
			}
		}
		pen += advance
	}
	if first {
		// no ink, e.g. all spaces
		return Metrics{}, nil
	}

	scale := size / refSize
	return Metrics{
		Width:       f26dot6(maxX-minX) * scale,
		Height:      f26dot6(maxY-minY) * scale,
		LeftBearing: f26dot6(minX) * scale,
		TopBearing:  f26dot6(minY) * scale,
	}, nil
}

// resolve maps a family name to a parsed font, scanning the font
// directories on first use.
func (p *FontProvider) resolve(family string) (*sfnt.Font, error) {
	if p.families == nil {
		p.scan()
	}
	path, ok := p.families[strings.ToLower(family)]
	if !ok {
		return nil, fmt.Errorf("font family %q not found", family)
	}
	return p.load(path)
}

// scan indexes every parseable font file under the configured
// directories. First file per family wins.
func (p *FontProvider) scan() {
	p.families = map[string]string{}
	for _, dir := range p.dirs {
		_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}
			switch strings.ToLower(filepath.Ext(path)) {
			case ".ttf", ".otf":
			default:
				return nil
			}
			family, err := p.familyName(path)
			if err != nil {
				logger.Debugf("skipping font %s: %v", path, err)
				return nil
			}
			key := strings.ToLower(family)
			if _, exists := p.families[key]; !exists {
				p.families[key] = path
			}
			return nil
		})
	}
	logger.Debugf("indexed %d font families from %d directories", len(p.families), len(p.dirs))
}

func (p *FontProvider) familyName(path string) (string, error) {
	f, err := p.load(path)
	if err != nil {
		return "", err
	}
	return f.Name(&p.buf, sfnt.NameIDFamily)
}

func (p *FontProvider) load(path string) (*sfnt.Font, error) {
	if f, ok := p.fonts[path]; ok {
		return f, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read font %s: %w", path, err)
	}
	f, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font %s: %w", path, err)
	}
	if len(p.fonts) >= maxCachedFonts {
		p.fonts = map[string]*sfnt.Font{}
	}
	p.fonts[path] = f
	return f, nil
}

func f26dot6(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
