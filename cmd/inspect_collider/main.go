// inspect_collider - 查看 .col 碰撞掩码文件
//
// 输出文件头、pitch、不透明像素数，以及掩码的字符画预览。
//
// 用法:
//
//	inspect_collider [-preview=false] [-width 80] <file.col>...
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/decker502/beancounters/internal/collider"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	setStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F25D94"))
	clearStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#3C3C3C"))
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#555555")).Padding(0, 1)
)

func main() {
	preview := flag.Bool("preview", true, "显示掩码预览")
	width := flag.Int("width", 80, "预览最大宽度（字符）")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <file.col>...\n\nFlags:\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(1)
	}

	log.SetFlags(0)

	failed := false
	for _, path := range flag.Args() {
		m, err := collider.LoadFile(path)
		if err != nil {
			log.Printf("Error: %v", err)
			failed = true
			continue
		}
		fmt.Println(describe(path, m))
		if *preview {
			if rows := renderPreview(m, *width); rows != nil {
				fmt.Println(boxStyle.Render(stylePreview(rows)))
			}
		}
	}

	if failed {
		os.Exit(1)
	}
}

// describe 格式化文件头信息
func describe(path string, m *collider.BitMask) string {
	field := func(label string, value interface{}) string {
		return fmt.Sprintf("  %s %v", labelStyle.Render(label+":"), value)
	}

	lines := []string{
		titleStyle.Render(path),
		field("version", collider.FormatVersion),
		field("offset", fmt.Sprintf("(%d, %d)", m.OffsetX(), m.OffsetY())),
		field("size", fmt.Sprintf("%dx%d", m.Width(), m.Height())),
		field("pitch", fmt.Sprintf("%d words", m.Pitch())),
		field("opaque", fmt.Sprintf("%d / %d pixels", m.Count(), m.Width()*m.Height())),
	}
	if m.Empty() {
		lines = append(lines, field("note", "empty mask, never collides"))
	}
	return strings.Join(lines, "\n")
}

// stylePreview 为字符画上色
func stylePreview(rows []string) string {
	styled := make([]string, len(rows))
	for i, row := range rows {
		var sb strings.Builder
		for _, r := range row {
			if r == cellSet {
				sb.WriteString(setStyle.Render(string(r)))
			} else {
				sb.WriteString(clearStyle.Render(string(r)))
			}
		}
		styled[i] = sb.String()
	}
	return lipgloss.JoinVertical(lipgloss.Left, styled...)
}
