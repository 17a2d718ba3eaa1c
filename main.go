package main

import (
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"time"

	"github.com/decker502/beancounters/pkg/app"
	"github.com/decker502/beancounters/pkg/config"
	"github.com/decker502/beancounters/pkg/embedded"
	"github.com/decker502/beancounters/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	verbose := flag.Bool("verbose", false, "Enable verbose logging")
	dataDir := flag.String("data", "", "Project root containing data/ (e.g. '.'), used instead of the embedded copy")
	noCache := flag.Bool("no-cache", false, "Do not cache masks derived from source images")
	flag.Parse()

	embedded.Init(dataFS)

	var fsys fs.FS
	var err error
	if *dataDir != "" {
		fsys, err = openDataDir(*dataDir)
		if err != nil {
			log.Fatalf("Invalid -data: %v", err)
		}
	} else {
		fsys, err = embedded.FS()
		if err != nil {
			log.Fatalf("Failed to access embedded data: %v", err)
		}
	}

	storage, err := utils.OpenStorage(app.AppName)
	if err != nil {
		// 设置和掩码缓存仅保留在内存中
		log.Printf("Warning: %v", err)
		storage = nil
	}

	gameApp, err := app.NewApp(app.Config{
		Verbose: *verbose,
		DataFS:  fsys,
		Storage: storage,
		NoCache: *noCache,
		Seed:    time.Now().UnixNano(),
	})
	if err != nil {
		// 日志可能已被静默，直接写到 stderr
		log.SetOutput(os.Stderr)
		log.Fatalf("游戏初始化失败: %v", err)
	}

	ebiten.SetWindowSize(config.GameWindowWidth, config.GameWindowHeight)
	ebiten.SetWindowTitle("Bean Counters")
	ebiten.SetTPS(config.TicksPerSecond)
	ebiten.SetFullscreen(gameApp.Settings().GetSettings().Fullscreen)

	// Start the game loop
	// This will call Update() and Draw() repeatedly until the window is closed
	if err := ebiten.RunGame(gameApp); err != nil {
		log.Fatal(err)
	}
}

// openDataDir 打开磁盘上的项目根目录，资源路径以 "data/" 开头
func openDataDir(dir string) (fs.FS, error) {
	fsys := os.DirFS(dir)
	if _, err := fs.Stat(fsys, config.ColliderConfigPath); err != nil {
		return nil, fmt.Errorf("%s has no %s (pass the directory that contains data/): %w", dir, config.ColliderConfigPath, err)
	}
	return fsys, nil
}
