package collider

import (
	"image"
	"image/color"
	"testing"
)

// newTestImage 创建 w x h 的 NRGBA 图片，opaque 返回 true 的像素 alpha 为 255
func newTestImage(w, h int, opaque func(x, y int) bool) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if opaque(x, y) {
				img.SetNRGBA(x, y, color.NRGBA{R: 200, G: 120, B: 40, A: 255})
			}
		}
	}
	return img
}

// checkMaskMatchesImage 校验裁剪后的掩码与源图片逐像素一致
func checkMaskMatchesImage(t *testing.T, m *BitMask, w, h int, opaque func(x, y int) bool) {
	t.Helper()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			got := m.Bit(y-m.OffsetY(), x-m.OffsetX())
			if got != opaque(x, y) {
				t.Fatalf("pixel (%d, %d): expected %v, got %v", x, y, opaque(x, y), got)
			}
		}
	}
}

// TestFromImageCrop 测试 100x100 图片中只有 [10,20)x[30,50) 不透明时的裁剪结果
func TestFromImageCrop(t *testing.T) {
	opaque := func(x, y int) bool {
		if x < 10 || x >= 20 || y < 30 || y >= 50 {
			return false
		}
		// 边框全部不透明，内部留一些透明的洞
		if x == 10 || x == 19 || y == 30 || y == 49 {
			return true
		}
		return (x+y)%3 != 0
	}
	img := newTestImage(100, 100, opaque)

	m := FromImage(img)

	if m.OffsetX() != 10 || m.OffsetY() != 30 {
		t.Errorf("expected offset (10, 30), got (%d, %d)", m.OffsetX(), m.OffsetY())
	}
	if m.Width() != 10 || m.Height() != 20 {
		t.Errorf("expected size 10x20, got %dx%d", m.Width(), m.Height())
	}
	if m.Pitch() != PitchFor(10) {
		t.Errorf("expected pitch %d, got %d", PitchFor(10), m.Pitch())
	}
	checkMaskMatchesImage(t, m, 100, 100, opaque)
}

// TestFromImageCropAcrossWords 裁剪起点不对齐且宽度跨多个字
func TestFromImageCropAcrossWords(t *testing.T) {
	opaque := func(x, y int) bool {
		if x < 45 || x >= 150 || y < 3 || y >= 9 {
			return false
		}
		return (x*7+y*13)%5 != 0 || x == 45 || x == 149
	}
	img := newTestImage(200, 12, opaque)

	m := FromImage(img)

	if m.OffsetX() != 45 || m.Width() != 105 {
		t.Errorf("expected offsetX 45 width 105, got %d / %d", m.OffsetX(), m.Width())
	}
	checkMaskMatchesImage(t, m, 200, 12, opaque)

	// 裁剪后行尾填充位必须为 0
	for row := 0; row < m.Height(); row++ {
		for col := m.Width(); col < m.Pitch()*32; col++ {
			if streamBit(m, row, col) != 0 {
				t.Fatalf("padding bit (%d, %d) should be clear", row, col)
			}
		}
	}
}

func TestFromImageFullyOpaque(t *testing.T) {
	opaque := func(x, y int) bool { return true }
	img := newTestImage(40, 7, opaque)

	m := FromImage(img)

	if m.OffsetX() != 0 || m.OffsetY() != 0 {
		t.Errorf("expected zero offset, got (%d, %d)", m.OffsetX(), m.OffsetY())
	}
	if m.Width() != 40 || m.Height() != 7 {
		t.Errorf("expected 40x7, got %dx%d", m.Width(), m.Height())
	}
	if m.Count() != 40*7 {
		t.Errorf("expected %d set bits, got %d", 40*7, m.Count())
	}
}

// TestFromImageTransparent 完全透明的图片得到空掩码，而不是反转的矩形
func TestFromImageTransparent(t *testing.T) {
	img := newTestImage(50, 20, func(x, y int) bool { return false })

	m := FromImage(img)

	if !m.Empty() {
		t.Fatalf("expected empty mask, got %v", m)
	}
	if m.OffsetX() != 0 || m.OffsetY() != 0 {
		t.Errorf("expected zero offset, got (%d, %d)", m.OffsetX(), m.OffsetY())
	}
	if HitTest(m, 0, 0, NewBlock(100, 100), 0, 0) {
		t.Error("empty mask should never collide")
	}
}

// TestFromImageSinglePixel 单个像素在右下角
func TestFromImageSinglePixel(t *testing.T) {
	img := newTestImage(33, 33, func(x, y int) bool { return x == 32 && y == 32 })

	m := FromImage(img)

	if m.OffsetX() != 32 || m.OffsetY() != 32 || m.Width() != 1 || m.Height() != 1 {
		t.Fatalf("unexpected mask %v", m)
	}
	if !m.Bit(0, 0) {
		t.Error("single pixel should be set")
	}
}

// TestFromImageGenericPath 非 NRGBA/RGBA 图片走 At() 通用路径
func TestFromImageGenericPath(t *testing.T) {
	img := image.NewNRGBA64(image.Rect(0, 0, 70, 5))
	img.SetNRGBA64(3, 1, color.NRGBA64{A: 1})
	img.SetNRGBA64(66, 4, color.NRGBA64{A: 0xffff})

	m := FromImage(img)

	if m.OffsetX() != 3 || m.OffsetY() != 1 || m.Width() != 64 || m.Height() != 4 {
		t.Fatalf("unexpected mask %v", m)
	}
	if !m.Bit(0, 0) || !m.Bit(3, 63) {
		t.Error("expected corner pixels to be set")
	}
	if m.Count() != 2 {
		t.Errorf("expected 2 set bits, got %d", m.Count())
	}
}

// TestFromImageSubImage 子图的坐标原点是 Bounds().Min
func TestFromImageSubImage(t *testing.T) {
	base := newTestImage(64, 64, func(x, y int) bool { return x == 20 && y == 25 })
	sub := base.SubImage(image.Rect(10, 10, 40, 40))

	m := FromImage(sub)

	if m.OffsetX() != 10 || m.OffsetY() != 15 {
		t.Errorf("expected offset (10, 15) relative to sub-image, got (%d, %d)", m.OffsetX(), m.OffsetY())
	}
	if m.Width() != 1 || m.Height() != 1 || !m.Bit(0, 0) {
		t.Errorf("unexpected mask %v", m)
	}
}

// TestFromImageRGBA 预乘 RGBA 图片同样只看 alpha
func TestFromImageRGBA(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	img.SetRGBA(2, 2, color.RGBA{A: 10})
	img.SetRGBA(5, 6, color.RGBA{R: 5, A: 5})

	m := FromImage(img)

	if m.OffsetX() != 2 || m.OffsetY() != 2 || m.Width() != 4 || m.Height() != 5 {
		t.Fatalf("unexpected mask %v", m)
	}
	if m.Count() != 2 {
		t.Errorf("expected 2 set bits, got %d", m.Count())
	}
}
