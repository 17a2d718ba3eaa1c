package collider

import (
	"image"
)

// FromImage 从图片的 alpha 通道生成碰撞掩码
//
// 所有 alpha 非零的像素都属于碰撞轮廓。生成后会自动裁剪到包含全部
// 不透明像素的最小矩形，并把裁剪起点记录为掩码偏移。
//
// 参数:
//   - img: 已解码的图片，坐标原点取 img.Bounds().Min
//
// 返回:
//   - *BitMask: 裁剪后的掩码；图片完全透明时返回空掩码（宽高为 0，不会与任何掩码碰撞）
//
// 示例:
//
//	f, _ := os.Open("images/bag_3.png")
//	img, _, _ := image.Decode(f)
//	mask := collider.FromImage(img)
func FromImage(img image.Image) *BitMask {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	full := newBitMask(0, 0, w, h)

	// min 从图片尺寸开始、max 从 0 开始，扫描后 max 转为开区间
	minX, minY := w, h
	maxX, maxY := 0, 0
	opaque := false

	alphaAt := alphaReader(img)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if alphaAt(x, y) == 0 {
				continue
			}
			full.set(y, x)
			opaque = true
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
		}
	}

	if !opaque {
		return newBitMask(0, 0, 0, 0)
	}

	maxX++
	maxY++

	if minX != 0 || minY != 0 || maxX != w || maxY != h {
		return crop(full, minX, minY, maxX, maxY)
	}

	return full
}

// crop 把全幅掩码裁剪到 [minX,maxX) x [minY,maxY)
//
// 每行按 32 位步长调用 ExtractBlock 从原掩码读出重新对齐的字，
// 直接写入目标掩码，避免逐像素复制。
func crop(src *BitMask, minX, minY, maxX, maxY int) *BitMask {
	dst := newBitMask(minX, minY, maxX-minX, maxY-minY)
	pitch := int(dst.pitch)

	for row := minY; row < maxY; row++ {
		remaining := maxX - minX
		col := minX
		for remaining > 0 {
			pos := (row-minY)*pitch + (col-minX)/wordBits
			dst.bits[pos] = src.ExtractBlock(row, col, min(remaining, wordBits))
			col += wordBits
			remaining -= wordBits
		}
	}

	return dst
}

// alphaReader 返回按 (x, y)（相对 Bounds().Min）读取 alpha 的函数
//
// NRGBA / RGBA 直接读 Pix 中的 alpha 字节，其他格式走通用的 At().RGBA()。
func alphaReader(img image.Image) func(x, y int) uint32 {
	b := img.Bounds()

	switch src := img.(type) {
	case *image.NRGBA:
		return func(x, y int) uint32 {
			return uint32(src.Pix[y*src.Stride+x*4+3])
		}
	case *image.RGBA:
		return func(x, y int) uint32 {
			return uint32(src.Pix[y*src.Stride+x*4+3])
		}
	case *image.Alpha:
		return func(x, y int) uint32 {
			return uint32(src.Pix[y*src.Stride+x])
		}
	default:
		return func(x, y int) uint32 {
			_, _, _, a := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			return a
		}
	}
}
