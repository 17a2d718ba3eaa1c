// Package collider 实现像素级精确碰撞检测
//
// 精灵的不透明像素被压缩成每像素 1 bit 的掩码（BitMask），按行存储，
// 每行占用 pitch 个 32 位字，最高位对应最左侧像素。
// 掩码可以离线从图片 alpha 通道生成（FromImage），以 .col 格式持久化
// （Encode/Decode），并在运行时通过 HitTest 判断两个已定位的掩码是否重叠。
//
// BitMask 构造完成后只读，多个 goroutine 可以并发调用 HitTest。
package collider

import (
	"fmt"
	"image"
	"math/bits"
)

// wordBits 每个掩码字的位数
const wordBits = 32

// BitMask 精灵轮廓的 1-bit 掩码
//
// 字段含义：
//   - offsetX, offsetY: 从精灵原点到裁剪后掩码原点的平移量
//   - width, height: 裁剪区域的像素尺寸
//   - pitch: 每行占用的 32 位字数（见 PitchFor）
//   - bits: 行优先存储的掩码数据，长度为 pitch*height
//
// bit (row, col) 位于 bits[row*pitch + col/32] 的第 31-(col%32) 位。
type BitMask struct {
	offsetX, offsetY uint32
	width, height    uint32
	pitch            uint32
	bits             []uint32
}

// PitchFor 计算给定宽度的掩码每行所需的字数
//
// 宽度是 32 的倍数时为 width/32+1，否则为 width/32+2。
// 多出的一个字保证 ExtractBlock 在一行最后一列向后读一个字时不会越界，
// 修改此公式前必须重新推导该读取边界。
func PitchFor(width int) int {
	if width%wordBits != 0 {
		return width/wordBits + 2
	}
	return width/wordBits + 1
}

// newBitMask 分配一个全零掩码
func newBitMask(offsetX, offsetY, width, height int) *BitMask {
	pitch := PitchFor(width)
	return &BitMask{
		offsetX: uint32(offsetX),
		offsetY: uint32(offsetY),
		width:   uint32(width),
		height:  uint32(height),
		pitch:   uint32(pitch),
		bits:    make([]uint32, pitch*height),
	}
}

// NewBlock 创建一个 width x height 的实心矩形掩码
//
// 用于没有精灵图片的危险物（铁砧、鱼、花盆），它们只需要一个矩形判定区域。
// 行内超出 width 的填充位保持为 0。
//
// 参数:
//   - width, height: 矩形尺寸（像素），负值按 0 处理
//
// 返回:
//   - *BitMask: 偏移为 (0, 0) 的实心掩码
func NewBlock(width, height int) *BitMask {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}

	m := newBitMask(0, 0, width, height)
	pitch := int(m.pitch)
	for row := 0; row < height; row++ {
		for col := 0; col < width; col += wordBits {
			n := width - col
			if n > wordBits {
				n = wordBits
			}
			m.bits[row*pitch+col/wordBits] = ^uint32(0) << uint(wordBits-n)
		}
	}
	return m
}

// OffsetX 返回掩码相对精灵原点的 X 偏移
func (m *BitMask) OffsetX() int { return int(m.offsetX) }

// OffsetY 返回掩码相对精灵原点的 Y 偏移
func (m *BitMask) OffsetY() int { return int(m.offsetY) }

// Width 返回掩码宽度（像素）
func (m *BitMask) Width() int { return int(m.width) }

// Height 返回掩码高度（像素）
func (m *BitMask) Height() int { return int(m.height) }

// Pitch 返回每行字数
func (m *BitMask) Pitch() int { return int(m.pitch) }

// Empty 报告掩码是否没有可碰撞面积
func (m *BitMask) Empty() bool {
	return m == nil || m.width == 0 || m.height == 0
}

// Words 返回掩码数据的副本（行优先，pitch*height 个字）
func (m *BitMask) Words() []uint32 {
	out := make([]uint32, len(m.bits))
	copy(out, m.bits)
	return out
}

// Bit 返回 (row, col) 处的像素是否属于碰撞轮廓
// 超出掩码范围的坐标返回 false。
func (m *BitMask) Bit(row, col int) bool {
	if row < 0 || col < 0 || row >= int(m.height) || col >= int(m.width) {
		return false
	}
	word := m.bits[row*int(m.pitch)+col/wordBits]
	return word&(1<<uint(wordBits-1-col%wordBits)) != 0
}

// set 置位 (row, col)，仅在构造阶段使用
func (m *BitMask) set(row, col int) {
	m.bits[row*int(m.pitch)+col/wordBits] |= 1 << uint(wordBits-1-col%wordBits)
}

// Count 统计轮廓内被置位的像素数，超出 width 的填充位不计入
func (m *BitMask) Count() int {
	n := 0
	w := int(m.width)
	for row := 0; row < int(m.height); row++ {
		for col := 0; col < w; col += wordBits {
			n += bits.OnesCount32(m.ExtractBlock(row, col, min(w-col, wordBits)))
		}
	}
	return n
}

// Bounds 返回精灵放在世界坐标 (x, y) 时掩码覆盖的矩形
func (m *BitMask) Bounds(x, y int) image.Rectangle {
	minX := x + int(m.offsetX)
	minY := y + int(m.offsetY)
	return image.Rect(minX, minY, minX+int(m.width), minY+int(m.height))
}

// Equal 比较两个掩码的偏移、尺寸和全部 pitch*height 个字
func (m *BitMask) Equal(other *BitMask) bool {
	if m == nil || other == nil {
		return m == other
	}
	if m.offsetX != other.offsetX || m.offsetY != other.offsetY ||
		m.width != other.width || m.height != other.height || m.pitch != other.pitch {
		return false
	}
	if len(m.bits) != len(other.bits) {
		return false
	}
	for i := range m.bits {
		if m.bits[i] != other.bits[i] {
			return false
		}
	}
	return true
}

// String 返回掩码的简要描述，便于日志输出
func (m *BitMask) String() string {
	if m == nil {
		return "BitMask(nil)"
	}
	return fmt.Sprintf("BitMask(offset=%d,%d size=%dx%d pitch=%d)",
		m.offsetX, m.offsetY, m.width, m.height, m.pitch)
}

// ExtractBlock 从 (row, col) 开始读取连续 32 个掩码位
//
// col 不必按 32 对齐：未对齐时把当前字左移、下一个字右移后拼接，
// 得到恰好从 col 开始的 32 位窗口。size < 32 时清除低 32-size 位，
// 这些位对应请求宽度之外的列，不能参与碰撞判断。
//
// 这是热路径上的原语，调用方负责保证 row、col 在范围内且 0 < size <= 32。
// 使用 colliderdebug 构建标签编译时，越界参数会直接 panic。
func (m *BitMask) ExtractBlock(row, col, size int) uint32 {
	if debugChecks {
		m.checkBlock(row, col, size)
	}

	pos := row*int(m.pitch) + col/wordBits
	shift := uint(col % wordBits)

	res := m.bits[pos]
	if shift != 0 {
		res = res<<shift | m.bits[pos+1]>>(wordBits-shift)
	}

	if size < wordBits {
		// 去掉超出请求宽度的位
		res &^= uint32(1)<<uint(wordBits-size) - 1
	}

	return res
}

// checkBlock 校验 ExtractBlock 的前置条件，失败时 panic
func (m *BitMask) checkBlock(row, col, size int) {
	if size <= 0 || size > wordBits {
		panic(fmt.Sprintf("collider: block size %d out of range (0, 32]", size))
	}
	if row < 0 || row >= int(m.height) {
		panic(fmt.Sprintf("collider: block row %d out of range [0, %d)", row, m.height))
	}
	if col < 0 {
		panic(fmt.Sprintf("collider: block column %d is negative", col))
	}
	last := col / wordBits
	if col%wordBits != 0 {
		last++
	}
	if last >= int(m.pitch) {
		panic(fmt.Sprintf("collider: block column %d reads word %d past pitch %d", col, last, m.pitch))
	}
}
