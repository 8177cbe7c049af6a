package shaderlink

import (
	"fmt"
	"image"
	"image/draw"
	"os"

	"github.com/cogentcore/webgpu/wgpu"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// TextVertex is the CPU layout for text programs: float32x2 position in
// clip space, float32x2 atlas coordinate, normalized uint8x4 color.
type TextVertex struct {
	Pos   [2]float32
	UV    [2]float32
	Color [4]uint8
}

// TextLine is one run of text to lay out. Position is in pixels, top-left
// origin; Scale multiplies the rasterized glyph size.
type TextLine struct {
	Text     string
	Position [2]float32
	Scale    float32
	Color    [4]uint8
}

type Glyph struct {
	UVMin [2]float32
	UVMax [2]float32
	Size  [2]float32
	Off   [2]float32
	Adv   float32
}

// TextAtlas packs the printable ASCII glyphs of a font face into a single
// alpha texture and lays text out against it.
type TextAtlas struct {
	atlas  *image.Alpha
	glyphs map[rune]Glyph
	face   font.Face
}

const textAtlasSize = 512

// LoadFontFace parses an OpenType font file at the given size.
func LoadFontFace(filename string, size float64) (font.Face, error) {
	fontBytes, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("shaderlink: read font file: %w", err)
	}

	f, err := opentype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("shaderlink: parse font: %w", err)
	}

	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("shaderlink: create font face: %w", err)
	}
	return face, nil
}

// NewTextAtlas rasterizes the glyphs of face into the atlas image.
func NewTextAtlas(face font.Face) *TextAtlas {
	atlas := image.NewAlpha(image.Rect(0, 0, textAtlasSize, textAtlasSize))
	glyphs := make(map[rune]Glyph)

	x, y := 2, 2
	rowHeight := 0

	for r := rune(32); r < 127; r++ {
		dr, mask, maskp, adv, ok := face.Glyph(fixed.Point26_6{}, r)
		if !ok {
			continue
		}

		w := dr.Dx()
		h := dr.Dy()

		if x+w >= textAtlasSize {
			x = 2
			y += rowHeight + 4
			rowHeight = 0
		}

		if y+h >= textAtlasSize {
			break
		}

		draw.Draw(atlas, image.Rect(x, y, x+w, y+h), mask, maskp, draw.Src)

		glyphs[r] = Glyph{
			UVMin: [2]float32{float32(x) / textAtlasSize, float32(y) / textAtlasSize},
			UVMax: [2]float32{float32(x+w) / textAtlasSize, float32(y+h) / textAtlasSize},
			Size:  [2]float32{float32(w), float32(h)},
			Off:   [2]float32{float32(dr.Min.X), float32(dr.Min.Y)},
			Adv:   float32(adv) / 64.0, // fixed 26.6 to float
		}

		x += w + 4
		if h > rowHeight {
			rowHeight = h
		}
	}

	return &TextAtlas{
		atlas:  atlas,
		glyphs: glyphs,
		face:   face,
	}
}

// AtlasTexture exposes the atlas as uploadable single-channel texels.
func (ta *TextAtlas) AtlasTexture() *TextureData {
	return NewTextureData(ta.atlas.Pix, textAtlasSize, textAtlasSize, wgpu.TextureFormatR8Unorm)
}

func (ta *TextAtlas) Glyph(r rune) (Glyph, bool) {
	g, ok := ta.glyphs[r]
	return g, ok
}

// BuildVertices lays the lines out in pixel space and emits two clip-space
// triangles per glyph.
func (ta *TextAtlas) BuildVertices(lines []TextLine, screenW, screenH int) []TextVertex {
	vertices := make([]TextVertex, 0, len(lines)*6)

	sw := float32(screenW)
	sh := float32(screenH)
	metrics := ta.face.Metrics()
	ascent := float32(metrics.Ascent.Ceil())
	lineHeight := float32(metrics.Height.Ceil())

	for _, line := range lines {
		startX := line.Position[0]
		posX := startX
		posY := line.Position[1] + ascent*line.Scale

		for _, r := range line.Text {
			if r == '\n' {
				posX = startX
				posY += lineHeight * line.Scale
				continue
			}

			g, ok := ta.glyphs[r]
			if !ok {
				continue
			}

			x0 := (posX+g.Off[0]*line.Scale)/sw*2.0 - 1.0
			y0 := 1.0 - (posY+g.Off[1]*line.Scale)/sh*2.0
			x1 := (posX+(g.Off[0]+g.Size[0])*line.Scale)/sw*2.0 - 1.0
			y1 := 1.0 - (posY+(g.Off[1]+g.Size[1])*line.Scale)/sh*2.0

			vertices = append(vertices,
				TextVertex{Pos: [2]float32{x0, y0}, UV: [2]float32{g.UVMin[0], g.UVMin[1]}, Color: line.Color},
				TextVertex{Pos: [2]float32{x1, y0}, UV: [2]float32{g.UVMax[0], g.UVMin[1]}, Color: line.Color},
				TextVertex{Pos: [2]float32{x0, y1}, UV: [2]float32{g.UVMin[0], g.UVMax[1]}, Color: line.Color},
				TextVertex{Pos: [2]float32{x1, y0}, UV: [2]float32{g.UVMax[0], g.UVMin[1]}, Color: line.Color},
				TextVertex{Pos: [2]float32{x1, y1}, UV: [2]float32{g.UVMax[0], g.UVMax[1]}, Color: line.Color},
				TextVertex{Pos: [2]float32{x0, y1}, UV: [2]float32{g.UVMin[0], g.UVMax[1]}, Color: line.Color},
			)

			posX += g.Adv * line.Scale
		}
	}

	return vertices
}

// MeasureText returns the pixel width and height the text would occupy.
func (ta *TextAtlas) MeasureText(text string, scale float32) (float32, float32) {
	if ta == nil {
		return 0, 0
	}

	metrics := ta.face.Metrics()
	lineHeight := float32(metrics.Height.Ceil())

	maxW := float32(0)
	currentW := float32(0)
	lines := 1

	for _, r := range text {
		if r == '\n' {
			if currentW > maxW {
				maxW = currentW
			}
			currentW = 0
			lines++
			continue
		}

		g, ok := ta.glyphs[r]
		if !ok {
			continue
		}
		currentW += g.Adv * scale
	}

	if currentW > maxW {
		maxW = currentW
	}

	return maxW, lineHeight * scale * float32(lines)
}

func (ta *TextAtlas) LineHeight(scale float32) float32 {
	if ta == nil {
		return 0
	}
	metrics := ta.face.Metrics()
	return float32(metrics.Height.Ceil()) * scale
}
