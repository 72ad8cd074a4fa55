package game

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
)

// ErrAsset is wrapped by every asset loading failure.
var ErrAsset = errors.New("could not load asset")

// Texture is paddle pixel data cropped to the paddle size. The GPU image is
// created on first use and rebuilt after a reload.
type Texture struct {
	Source image.Image
	img    *ebiten.Image
}

// Size returns the texture's pixel size.
func (t *Texture) Size() (int, int) {
	if t == nil || t.Source == nil {
		return 0, 0
	}
	b := t.Source.Bounds()
	return b.Dx(), b.Dy()
}

// Empty reports whether the texture has no pixels.
func (t *Texture) Empty() bool {
	w, h := t.Size()
	return w == 0 || h == 0
}

// Image returns the GPU image, creating it if needed.
func (t *Texture) Image() *ebiten.Image {
	if t.img == nil && !t.Empty() {
		t.img = ebiten.NewImageFromImage(t.Source)
	}
	return t.img
}

func (t *Texture) replace(src image.Image) {
	if t.img != nil {
		t.img.Deallocate()
		t.img = nil
	}
	t.Source = src
}

// Assets owns the paddle textures for the program's lifetime.
type Assets struct {
	Dir      string
	Textures map[PlayerId]*Texture
}

// AssetPath returns the file a player's paddle texture is read from.
func AssetPath(dir string, id PlayerId) string {
	return filepath.Join(dir, id.String()+"-paddle.png")
}

// LoadAssets reads blue-paddle.png and green-paddle.png from dir.
func LoadAssets(dir string) (*Assets, error) {
	assets := &Assets{Dir: dir, Textures: make(map[PlayerId]*Texture, 2)}
	for _, id := range AllPlayers() {
		src, err := loadTexture(AssetPath(dir, id))
		if err != nil {
			return nil, err
		}
		assets.Textures[id] = &Texture{Source: src}
	}
	return assets, nil
}

// Reload re-reads one texture in place. Sprites holding the texture pick up
// the new pixels on their next draw. On error the old pixels are kept.
func (a *Assets) Reload(id PlayerId) error {
	if !id.Valid() {
		return fmt.Errorf("%w: unknown player %s", ErrAsset, id)
	}
	src, err := loadTexture(AssetPath(a.Dir, id))
	if err != nil {
		return err
	}
	tex, ok := a.Textures[id]
	if !ok {
		tex = &Texture{}
		a.Textures[id] = tex
	}
	tex.replace(src)
	return nil
}

// PlaceholderAssets returns solid paddle textures for runs without asset files.
func PlaceholderAssets() *Assets {
	fills := map[PlayerId]color.RGBA{
		Blue:  {R: 40, G: 90, B: 220, A: 255},
		Green: {R: 40, G: 180, B: 80, A: 255},
	}
	assets := &Assets{Textures: make(map[PlayerId]*Texture, 2)}
	for id, c := range fills {
		img := image.NewRGBA(image.Rect(0, 0, PaddleWidth, PaddleHeight))
		draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
		assets.Textures[id] = &Texture{Source: img}
	}
	return assets
}

// loadTexture decodes a PNG and crops it to the paddle rectangle at the
// image origin. Smaller images are kept at their own size.
func loadTexture(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrAsset, path, err)
	}
	defer f.Close()

	src, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrAsset, path, err)
	}

	b := src.Bounds()
	crop := image.Rect(b.Min.X, b.Min.Y, b.Min.X+PaddleWidth, b.Min.Y+PaddleHeight).Intersect(b)
	if crop.Empty() {
		return nil, fmt.Errorf("%w: %s: empty image", ErrAsset, path)
	}

	dst := image.NewRGBA(image.Rect(0, 0, crop.Dx(), crop.Dy()))
	draw.Draw(dst, dst.Bounds(), src, crop.Min, draw.Src)
	return dst, nil
}
