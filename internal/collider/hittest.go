package collider

import "image"

// Overlaps 只比较两个掩码在世界坐标中的矩形是否相交
//
// 不读取任何掩码数据，可作为粗检测阶段使用。
func Overlaps(a *BitMask, ax, ay int, b *BitMask, bx, by int) bool {
	if a.Empty() || b.Empty() {
		return false
	}
	return !a.Bounds(ax, ay).Intersect(b.Bounds(bx, by)).Empty()
}

// HitTest 判断两个已定位掩码的不透明像素是否重叠
//
// 先计算两个掩码的世界矩形（位置 + 掩码偏移），不相交时立即返回 false，
// 不访问掩码数据。相交时逐行、按 32 位步长从两个掩码各取一个块做按位与，
// 任一结果非零即存在重叠像素。
//
// 参数:
//   - a, b: 要比较的掩码
//   - ax, ay: a 所属精灵在世界坐标中的位置
//   - bx, by: b 所属精灵在世界坐标中的位置
//
// 返回:
//   - bool: 存在至少一对重合的不透明像素时返回 true
func HitTest(a *BitMask, ax, ay int, b *BitMask, bx, by int) bool {
	if a.Empty() || b.Empty() {
		return false
	}

	rectA := a.Bounds(ax, ay)
	rectB := b.Bounds(bx, by)

	inter := rectA.Intersect(rectB)
	if inter.Empty() {
		// 连包围盒都不相交
		return false
	}

	return overlapBits(a, inter.Min.Sub(rectA.Min), b, inter.Min.Sub(rectB.Min), inter.Dx(), inter.Dy())
}

// overlapBits 在交集矩形内逐块比较两个掩码
// offA / offB 是交集左上角相对各自掩码原点的坐标。
func overlapBits(a *BitMask, offA image.Point, b *BitMask, offB image.Point, w, h int) bool {
	for row := 0; row < h; row++ {
		remaining := w
		col := 0
		for remaining > 0 {
			size := min(remaining, wordBits)
			blockA := a.ExtractBlock(row+offA.Y, col+offA.X, size)
			blockB := b.ExtractBlock(row+offB.Y, col+offB.X, size)

			if blockA&blockB != 0 {
				return true
			}

			col += wordBits
			remaining -= wordBits
		}
	}
	return false
}
