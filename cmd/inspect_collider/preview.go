package main

import (
	"strings"

	"github.com/decker502/beancounters/internal/collider"
)

const (
	cellSet   = '█'
	cellClear = '·'
)

// previewScale 返回每个字符单元覆盖的像素宽度
// 终端字符大约是 1:2 的长方形，所以每个单元的高度是宽度的两倍
func previewScale(width, maxCols int) int {
	if maxCols <= 0 || width <= maxCols {
		return 1
	}
	return (width + maxCols - 1) / maxCols
}

// renderPreview 把掩码缩小成字符画
// 单元内任意像素不透明即显示为实心
func renderPreview(m *collider.BitMask, maxCols int) []string {
	if m.Empty() {
		return nil
	}

	sx := previewScale(m.Width(), maxCols)
	sy := sx * 2

	rows := make([]string, 0, (m.Height()+sy-1)/sy)
	var sb strings.Builder
	for y := 0; y < m.Height(); y += sy {
		sb.Reset()
		for x := 0; x < m.Width(); x += sx {
			if anySet(m, y, x, sy, sx) {
				sb.WriteRune(cellSet)
			} else {
				sb.WriteRune(cellClear)
			}
		}
		rows = append(rows, sb.String())
	}
	return rows
}

func anySet(m *collider.BitMask, row, col, h, w int) bool {
	for r := row; r < row+h && r < m.Height(); r++ {
		for c := col; c < col+w && c < m.Width(); c++ {
			if m.Bit(r, c) {
				return true
			}
		}
	}
	return false
}
