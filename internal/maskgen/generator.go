// Package maskgen 从源图片批量生成 .col 碰撞掩码文件
//
// 支持的输入格式：PNG、JPEG、GIF，以及 golang.org/x/image 提供的 BMP、TIFF、WebP。
// 生成结果与运行时 collider.FromImage 完全一致。
package maskgen

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"log"
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp"  // Register BMP decoder
	_ "golang.org/x/image/tiff" // Register TIFF decoder
	_ "golang.org/x/image/webp" // Register WebP decoder
	"golang.org/x/sync/errgroup"

	"github.com/decker502/beancounters/internal/collider"
	"github.com/decker502/beancounters/pkg/config"
)

// Job 一个生成任务
type Job struct {
	ID     string // 资源ID，仅用于日志
	Source string // 源图片路径
	Output string // .col 输出路径
}

// Result 生成结果
type Result struct {
	Job    Job
	Format string // 源图片格式（"png"、"bmp" 等）
	Mask   *collider.BitMask
}

// JobsFromConfig 为配置中每个带 source 的掩码资源生成任务
//
// 参数:
//   - cfg: 碰撞掩码配置
//   - root: 项目根目录，source 和 base_path 都相对于它
//
// 返回:
//   - []Job: 按配置顺序排列的任务；没有 source 的资源被跳过
func JobsFromConfig(cfg *config.ColliderConfig, root string) []Job {
	jobs := make([]Job, 0, len(cfg.Colliders))
	for _, asset := range cfg.Colliders {
		if asset.Source == "" {
			continue
		}
		jobs = append(jobs, Job{
			ID:     asset.ID,
			Source: filepath.Join(root, filepath.FromSlash(asset.Source)),
			Output: filepath.Join(root, filepath.FromSlash(cfg.ColliderPath(asset))),
		})
	}
	return jobs
}

// Decode 读取并解码源图片
func Decode(path string) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	return img, format, nil
}

// Build 执行一个任务：解码源图片、生成掩码并写入 .col 文件
// 输出目录不存在时自动创建
func Build(job Job) (*Result, error) {
	img, format, err := Decode(job.Source)
	if err != nil {
		return nil, err
	}

	mask := collider.FromImage(img)

	if err := os.MkdirAll(filepath.Dir(job.Output), 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := collider.SaveFile(job.Output, mask); err != nil {
		return nil, err
	}

	log.Printf("[Generator] %s: %s (%s) -> %s %v", job.ID, job.Source, format, job.Output, mask)
	return &Result{Job: job, Format: format, Mask: mask}, nil
}

// BuildAll 并行执行所有任务
//
// 参数:
//   - ctx: 取消后不再启动新任务
//   - jobs: 任务列表
//   - workers: 最大并行数，<= 0 时不限制
//
// 返回:
//   - []*Result: 与 jobs 一一对应
//   - error: 第一个失败任务的错误（包含资源ID），其余任务尽量取消
func BuildAll(ctx context.Context, jobs []Job, workers int) ([]*Result, error) {
	results := make([]*Result, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	for i, job := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := Build(job)
			if err != nil {
				return fmt.Errorf("failed to generate %s: %w", job.ID, err)
			}
			// 每个 worker 只写自己的下标
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
