package app

import (
	"image/color"

	"github.com/decker502/beancounters/internal/collider"
	"github.com/decker502/beancounters/pkg/components"
	"github.com/hajimehoshi/ebiten/v2"
)

// layerColors 各碰撞层掩码叠加层的颜色（半透明）
var layerColors = map[components.CollisionLayer]color.RGBA{
	components.LayerCatcher: {R: 0, G: 0, B: 160, A: 120},
	components.LayerBag:     {R: 160, G: 110, B: 0, A: 160},
	components.LayerHazard:  {R: 180, G: 0, B: 0, A: 160},
	components.LayerBonus:   {R: 0, G: 160, B: 0, A: 160},
}

// maskPixels 把掩码展开成 RGBA 像素，置位像素为 c，其余透明
// 返回的切片长度为 width*height*4，可直接传给 WritePixels
func maskPixels(m *collider.BitMask, c color.RGBA) []byte {
	w, h := m.Width(), m.Height()
	pix := make([]byte, w*h*4)
	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			if !m.Bit(row, col) {
				continue
			}
			i := (row*w + col) * 4
			// ebiten 使用预乘 alpha
			pix[i] = byte(uint16(c.R) * uint16(c.A) / 255)
			pix[i+1] = byte(uint16(c.G) * uint16(c.A) / 255)
			pix[i+2] = byte(uint16(c.B) * uint16(c.A) / 255)
			pix[i+3] = c.A
		}
	}
	return pix
}

// maskImageCache 缓存掩码叠加层图片，键为掩码ID和碰撞层
type maskImageCache struct {
	images map[maskImageKey]*ebiten.Image
}

type maskImageKey struct {
	id    string
	layer components.CollisionLayer
}

func newMaskImageCache() *maskImageCache {
	return &maskImageCache{images: make(map[maskImageKey]*ebiten.Image)}
}

// get 返回掩码的叠加层图片；空掩码返回 nil
func (c *maskImageCache) get(id string, m *collider.BitMask, layer components.CollisionLayer) *ebiten.Image {
	if m.Empty() {
		return nil
	}

	key := maskImageKey{id: id, layer: layer}
	if img, ok := c.images[key]; ok {
		return img
	}

	img := ebiten.NewImage(m.Width(), m.Height())
	img.WritePixels(maskPixels(m, layerColors[layer]))
	c.images[key] = img
	return img
}
