//go:build ignore

// 校验 data/colliders.yaml 以及它引用的 .col 文件
//
// 用法（在仓库根目录）:
//
//	go run tools/validate_colliders.go [data/colliders.yaml]
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/decker502/beancounters/internal/collider"
	"github.com/decker502/beancounters/pkg/config"
)

func main() {
	path := config.ColliderConfigPath
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	cfg, err := config.LoadColliderConfig(path)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ 配置格式正确\n")
	fmt.Printf("✅ 掩码 %d 个，实心块 %d 个，轨迹 %d 条\n", len(cfg.Colliders), len(cfg.Blocks), len(cfg.Tracks))

	// .col 路径相对于配置所在目录的上一级（仓库根目录）
	root := filepath.Dir(filepath.Dir(path))

	problems := 0
	for _, asset := range cfg.Colliders {
		colPath := filepath.Join(root, filepath.FromSlash(cfg.ColliderPath(asset)))
		m, err := collider.LoadFile(colPath)
		switch {
		case err == nil:
			fmt.Printf("✅ %-16s %dx%d, %d 个不透明像素\n", asset.ID, m.Width(), m.Height(), m.Count())
		case errors.Is(err, fs.ErrNotExist) && asset.Source != "":
			srcPath := filepath.Join(root, filepath.FromSlash(asset.Source))
			if _, statErr := os.Stat(srcPath); statErr != nil {
				fmt.Printf("❌ %-16s 缺少 .col 且源图片不可用: %v\n", asset.ID, statErr)
				problems++
				continue
			}
			fmt.Printf("⚠️  %-16s 缺少 .col，运行时将从 %s 生成\n", asset.ID, asset.Source)
		default:
			fmt.Printf("❌ %-16s %v\n", asset.ID, err)
			problems++
		}
	}

	if problems > 0 {
		fmt.Printf("❌ 有 %d 个掩码无法加载\n", problems)
		os.Exit(1)
	}
	fmt.Printf("✅ 所有掩码都可以加载\n")
}
