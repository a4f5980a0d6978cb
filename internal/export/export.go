// Package export renders a roster for sharing outside the app: a PNG of the
// lane grid and a plain text summary for the clipboard.
package export

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"strings"

	"github.com/atotto/clipboard"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/DoyleJ11/team-builder/internal/engine"
)

var ErrNoClipboard = errors.New("no clipboard utility available")

const (
	padding   = 12
	rowHeight = 24
	rowGap    = 4
	opWidth   = 40
	minSlot   = 96
	textInset = 6
)

type palette struct {
	background color.Color
	row        color.Color
	text       color.Color
	faint      color.Color
	tiers      map[engine.Tier]color.Color
}

var palettes = map[engine.Theme]palette{
	engine.ThemeDark: {
		background: color.NRGBA{0x1e, 0x1f, 0x26, 0xff},
		row:        color.NRGBA{0x2a, 0x2c, 0x36, 0xff},
		text:       color.NRGBA{0xee, 0xee, 0xf2, 0xff},
		faint:      color.NRGBA{0x6b, 0x6e, 0x7d, 0xff},
		tiers: map[engine.Tier]color.Color{
			engine.TierHigh: color.NRGBA{0x8c, 0x2f, 0x39, 0xff},
			engine.TierMid:  color.NRGBA{0x8a, 0x6d, 0x1f, 0xff},
			engine.TierLow:  color.NRGBA{0x2f, 0x6d, 0x45, 0xff},
		},
	},
	engine.ThemeLight: {
		background: color.NRGBA{0xfa, 0xfa, 0xfc, 0xff},
		row:        color.NRGBA{0xe6, 0xe7, 0xee, 0xff},
		text:       color.NRGBA{0x1a, 0x1b, 0x22, 0xff},
		faint:      color.NRGBA{0x99, 0x9b, 0xa8, 0xff},
		tiers: map[engine.Tier]color.Color{
			engine.TierHigh: color.NRGBA{0xf4, 0xb6, 0xbc, 0xff},
			engine.TierMid:  color.NRGBA{0xf5, 0xdc, 0x9a, 0xff},
			engine.TierLow:  color.NRGBA{0xb5, 0xe3, 0xc4, 0xff},
		},
	},
}

func paletteFor(t engine.Theme) palette {
	if p, ok := palettes[t]; ok {
		return p
	}
	return palettes[engine.ThemeDark]
}

// Render draws one row per lane: position, slot A, operator, slot B. Slots
// are tinted by the occupant's tier and the state's theme.
func Render(s engine.State) *image.RGBA {
	face := basicfont.Face7x13
	pal := paletteFor(s.Theme)

	labelW := 0
	slotW := minSlot
	for _, l := range s.Lanes {
		labelW = max(labelW, font.MeasureString(face, l.Position).Ceil())
		slotW = max(slotW,
			font.MeasureString(face, l.SlotA).Ceil()+2*textInset,
			font.MeasureString(face, l.SlotB).Ceil()+2*textInset)
	}
	labelW += 2 * textInset

	width := 2*padding + labelW + 2*slotW + opWidth
	height := 2*padding + len(s.Lanes)*rowHeight + max(len(s.Lanes)-1, 0)*rowGap
	if len(s.Lanes) == 0 {
		height = 2 * padding
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(pal.background), image.Point{}, draw.Src)

	tiers := make(map[string]engine.Tier, len(s.Players))
	for _, p := range s.Players {
		tiers[p.Name] = p.Tier
	}

	for i, l := range s.Lanes {
		y := padding + i*(rowHeight+rowGap)
		x := padding

		fill(img, image.Rect(x, y, width-padding, y+rowHeight), pal.row)
		drawText(img, x+textInset, y, l.Position, pal.text)
		x += labelW

		slot(img, x, y, slotW, l.SlotA, tiers, pal)
		x += slotW

		drawText(img, x+(opWidth-font.MeasureString(face, string(l.Operator)).Ceil())/2, y, string(l.Operator), pal.text)
		x += opWidth

		slot(img, x, y, slotW, l.SlotB, tiers, pal)
	}
	return img
}

// RenderPNG encodes Render(s) to w.
func RenderPNG(w io.Writer, s engine.State) error {
	if err := png.Encode(w, Render(s)); err != nil {
		return fmt.Errorf("failed to encode roster png: %w", err)
	}
	return nil
}

func slot(img *image.RGBA, x, y, w int, name string, tiers map[string]engine.Tier, pal palette) {
	r := image.Rect(x+2, y+2, x+w-2, y+rowHeight-2)
	if name == "" {
		drawText(img, x+textInset, y, "-", pal.faint)
		return
	}
	fill(img, r, pal.tiers[engine.BucketTier(tiers[name])])
	drawText(img, x+textInset, y, name, pal.text)
}

func fill(img *image.RGBA, r image.Rectangle, c color.Color) {
	draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Src)
}

// drawText writes s vertically centered in the row starting at top.
func drawText(img *image.RGBA, x, top int, s string, c color.Color) {
	face := basicfont.Face7x13
	baseline := top + (rowHeight+face.Ascent-face.Descent)/2
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, baseline),
	}
	d.DrawString(s)
}

// Summary is the plain text form of the roster:
//
//	Top      Alice  =  Bob
//	Jungle   -      >  Carol
//
//	Unassigned: Dave, Erin
func Summary(s engine.State) string {
	labelW, slotW := 0, 1
	for _, l := range s.Lanes {
		labelW = max(labelW, len(l.Position))
		slotW = max(slotW, len(l.SlotA))
	}

	var b strings.Builder
	for _, l := range s.Lanes {
		line := fmt.Sprintf("%-*s  %-*s  %-2s %s", labelW, l.Position, slotW, orDash(l.SlotA), l.Operator, orDash(l.SlotB))
		b.WriteString(strings.TrimRight(line, " "))
		b.WriteByte('\n')
	}

	pool := engine.Pool(s)
	if len(pool) > 0 {
		names := make([]string, 0, len(pool))
		for _, p := range pool {
			names = append(names, p.Name)
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("Unassigned: " + strings.Join(names, ", ") + "\n")
	}
	return b.String()
}

func orDash(name string) string {
	if name == "" {
		return "-"
	}
	return name
}

// CopyToClipboard writes text to the system clipboard.
func CopyToClipboard(text string) error {
	if clipboard.Unsupported {
		return ErrNoClipboard
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	return nil
}
