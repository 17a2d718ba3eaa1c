// generate_collider - 从图片的 alpha 通道生成 .col 碰撞掩码
//
// 用法:
//
//	generate_collider [flags] <image> <output.col>
//	generate_collider -config data/colliders.yaml [-root .] [-jobs N] [-watch]
//
// 第一种形式处理单张图片；第二种形式为配置中每个带 source 的掩码重新生成 .col，
// 加上 -watch 后持续监视源图片，变化时自动重新生成。
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/decker502/beancounters/internal/maskgen"
	"github.com/decker502/beancounters/pkg/config"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage:\n")
	fmt.Fprintf(os.Stderr, "  %s [flags] <image> <output.col>\n", filepath.Base(os.Args[0]))
	fmt.Fprintf(os.Stderr, "  %s -config data/colliders.yaml [-root .] [-jobs N] [-watch]\n\n", filepath.Base(os.Args[0]))
	fmt.Fprintf(os.Stderr, "Flags:\n")
	flag.PrintDefaults()
}

func main() {
	configPath := flag.String("config", "", "碰撞掩码配置文件（批量模式）")
	root := flag.String("root", ".", "项目根目录，配置中的路径相对于它")
	jobs := flag.Int("jobs", runtime.NumCPU(), "批量模式的最大并行数")
	watch := flag.Bool("watch", false, "生成后继续监视源图片（批量模式）")
	flag.Usage = usage
	flag.Parse()

	log.SetFlags(0)

	if *configPath == "" {
		if flag.NArg() != 2 {
			usage()
			os.Exit(1)
		}
		job := maskgen.Job{ID: filepath.Base(flag.Arg(0)), Source: flag.Arg(0), Output: flag.Arg(1)}
		res, err := maskgen.Build(job)
		if err != nil {
			log.Fatalf("Error: %v", err)
		}
		fmt.Printf("%s -> %s %v\n", job.Source, job.Output, res.Mask)
		return
	}

	cfg, err := config.LoadColliderConfig(filepath.Join(*root, *configPath))
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	batch := maskgen.JobsFromConfig(cfg, *root)
	if len(batch) == 0 {
		log.Fatalf("Error: no collider in %s has a source image", *configPath)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	results, err := maskgen.BuildAll(ctx, batch, *jobs)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	for _, res := range results {
		fmt.Printf("%-12s %s -> %s %v\n", res.Job.ID, res.Job.Source, res.Job.Output, res.Mask)
	}

	if !*watch {
		return
	}

	w, err := maskgen.NewWatcher(batch, func(res *maskgen.Result, err error) {
		if err != nil {
			// 监视模式下单次失败不退出，等待下一次保存
			log.Printf("Error: %v", err)
			return
		}
		fmt.Printf("%-12s regenerated %v\n", res.Job.ID, res.Mask)
	})
	if err != nil {
		log.Fatalf("Error: failed to start watcher: %v", err)
	}
	defer w.Close()

	fmt.Printf("Watching %d source images, press Ctrl+C to stop\n", len(batch))
	if err := w.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("Error: watcher stopped: %v", err)
	}
}
