package maskgen

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/image/bmp"

	"github.com/decker502/beancounters/internal/collider"
	"github.com/decker502/beancounters/pkg/config"
)

// newRectImage 生成 w x h 的图片，只有 r 内的像素不透明
func newRectImage(w, h int, r image.Rectangle) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 50, G: 100, B: 150, A: 255})
		}
	}
	return img
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
}

func TestJobsFromConfig(t *testing.T) {
	cfg := &config.ColliderConfig{
		BasePath: "data/collider",
		Colliders: []config.ColliderAsset{
			{ID: "bag_3", Path: "bag_3.col", Source: "data/images/bag_3.png"},
			{ID: "penguin_1", Path: "penguin_1.col"},
		},
	}

	jobs := JobsFromConfig(cfg, "/project")
	if len(jobs) != 1 {
		t.Fatalf("expected 1 job (assets without source are skipped), got %d", len(jobs))
	}

	want := Job{
		ID:     "bag_3",
		Source: filepath.Join("/project", "data", "images", "bag_3.png"),
		Output: filepath.Join("/project", "data", "collider", "bag_3.col"),
	}
	if jobs[0] != want {
		t.Errorf("expected %+v, got %+v", want, jobs[0])
	}
}

func TestBuildPNG(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "bag_3.png")
	img := newRectImage(64, 56, image.Rect(8, 10, 57, 53))
	writePNG(t, src, img)

	out := filepath.Join(dir, "collider", "bag_3.col")
	res, err := Build(Job{ID: "bag_3", Source: src, Output: out})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if res.Format != "png" {
		t.Errorf("expected format png, got %s", res.Format)
	}

	loaded, err := collider.LoadFile(out)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if !collider.FromImage(img).Equal(loaded) {
		t.Errorf("generated file does not match FromImage: %v", loaded)
	}
	if loaded.OffsetX() != 8 || loaded.OffsetY() != 10 || loaded.Width() != 49 || loaded.Height() != 43 {
		t.Errorf("expected 49x43 at (8, 10), got %v", loaded)
	}
}

// TestBuildBMP golang.org/x/image 注册的格式同样可以作为输入
func TestBuildBMP(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "block.bmp")

	f, err := os.Create(src)
	if err != nil {
		t.Fatalf("failed to create bmp: %v", err)
	}
	if err := bmp.Encode(f, newRectImage(10, 4, image.Rect(0, 0, 10, 4))); err != nil {
		t.Fatalf("failed to encode bmp: %v", err)
	}
	f.Close()

	res, err := Build(Job{ID: "block", Source: src, Output: filepath.Join(dir, "block.col")})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if res.Format != "bmp" {
		t.Errorf("expected format bmp, got %s", res.Format)
	}
	if !collider.NewBlock(10, 4).Equal(res.Mask) {
		t.Errorf("expected a solid 10x4 mask, got %v", res.Mask)
	}
}

func TestBuildErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Build(Job{ID: "none", Source: filepath.Join(dir, "none.png"), Output: filepath.Join(dir, "none.col")}); err == nil {
		t.Error("expected error for missing source")
	}

	bogus := filepath.Join(dir, "bogus.png")
	if err := os.WriteFile(bogus, []byte("not an image"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, err := Build(Job{ID: "bogus", Source: bogus, Output: filepath.Join(dir, "bogus.col")}); err == nil {
		t.Error("expected error for undecodable source")
	}
	if _, err := os.Stat(filepath.Join(dir, "bogus.col")); !os.IsNotExist(err) {
		t.Error("no output should be written for a failed job")
	}

	// 两端都不透明，裁剪后宽度仍超过上限
	wide := image.NewNRGBA(image.Rect(0, 0, collider.MaxDimension+1, 1))
	wide.SetNRGBA(0, 0, color.NRGBA{A: 255})
	wide.SetNRGBA(collider.MaxDimension, 0, color.NRGBA{A: 255})
	wideSrc := filepath.Join(dir, "wide.png")
	writePNG(t, wideSrc, wide)

	_, err := Build(Job{ID: "wide", Source: wideSrc, Output: filepath.Join(dir, "wide.col")})
	if !errors.Is(err, collider.ErrTooLarge) {
		t.Errorf("expected ErrTooLarge for an oversized source, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "wide.col")); !os.IsNotExist(err) {
		t.Error("no output should be written for an oversized mask")
	}
}

func TestBuildAll(t *testing.T) {
	dir := t.TempDir()

	var jobs []Job
	for i, id := range []string{"a", "b", "c", "d"} {
		src := filepath.Join(dir, id+".png")
		writePNG(t, src, newRectImage(40, 40, image.Rect(i, i, 20+i, 30)))
		jobs = append(jobs, Job{ID: id, Source: src, Output: filepath.Join(dir, "out", id+".col")})
	}

	results, err := BuildAll(context.Background(), jobs, 2)
	if err != nil {
		t.Fatalf("BuildAll failed: %v", err)
	}
	if len(results) != len(jobs) {
		t.Fatalf("expected %d results, got %d", len(jobs), len(results))
	}
	for i, res := range results {
		if res.Job.ID != jobs[i].ID {
			t.Errorf("result %d: expected job %s, got %s", i, jobs[i].ID, res.Job.ID)
		}
		if res.Mask.OffsetX() != i {
			t.Errorf("result %d: expected offset %d, got %d", i, i, res.Mask.OffsetX())
		}
	}

	jobs = append(jobs, Job{ID: "broken", Source: filepath.Join(dir, "missing.png"), Output: filepath.Join(dir, "out", "broken.col")})
	_, err = BuildAll(context.Background(), jobs, 0)
	if err == nil || !strings.Contains(err.Error(), "broken") {
		t.Errorf("expected error naming the broken job, got %v", err)
	}
}

// TestWatcherRebuilds 源图片被覆盖后重新生成 .col
func TestWatcherRebuilds(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "oneup.png")
	out := filepath.Join(dir, "oneup.col")
	writePNG(t, src, newRectImage(40, 40, image.Rect(0, 0, 40, 40)))

	built := make(chan *Result, 4)
	w, err := NewWatcher([]Job{{ID: "oneup", Source: src, Output: out}}, func(res *Result, err error) {
		if err != nil {
			t.Errorf("rebuild failed: %v", err)
			return
		}
		built <- res
	})
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Close()
	w.SetDebounce(20 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	// 写入新的源图片：不透明区域缩小为 [5,15)x[5,25)
	writePNG(t, src, newRectImage(40, 40, image.Rect(5, 5, 15, 25)))

	select {
	case res := <-built:
		if res.Mask.Width() != 10 || res.Mask.Height() != 20 {
			t.Errorf("expected rebuilt 10x20 mask, got %v", res.Mask)
		}
		loaded, err := collider.LoadFile(out)
		if err != nil {
			t.Fatalf("LoadFile failed: %v", err)
		}
		if !res.Mask.Equal(loaded) {
			t.Error("written file does not match rebuilt mask")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for rebuild")
	}
}

// TestWatcherSkipsSupersededBuild 定时器已触发但 fire 尚未登记完成时再次收到事件，只生成一次
func TestWatcherSkipsSupersededBuild(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "bag_3.png")
	writePNG(t, src, newRectImage(8, 8, image.Rect(0, 0, 8, 8)))
	job := Job{ID: "bag_3", Source: src, Output: filepath.Join(dir, "bag_3.col")}

	var mu sync.Mutex
	builds := 0
	w, err := NewWatcher([]Job{job}, func(res *Result, err error) {
		mu.Lock()
		builds++
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Close()
	w.SetDebounce(time.Hour)

	key := filepath.Clean(src)
	w.schedule(job)
	first := w.timers[key]

	// 模拟定时器已经触发：Stop 之后 Reset 返回 false
	first.timer.Stop()
	w.schedule(job)
	second := w.timers[key]
	first.timer.Stop()
	if second == first {
		t.Fatal("expected a new pending build after the timer fired")
	}

	w.fire(key, job, first)
	w.fire(key, job, second)

	mu.Lock()
	defer mu.Unlock()
	if builds != 1 {
		t.Errorf("expected exactly 1 build, got %d", builds)
	}
}

// syncBuffer 可以被日志和测试并发访问的缓冲区
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// TestWatcherLogsErrors fsnotify 报告的错误写入日志，监视继续运行
func TestWatcherLogsErrors(t *testing.T) {
	var out syncBuffer
	log.SetOutput(&out)
	defer log.SetOutput(os.Stderr)

	w, err := NewWatcher(nil, nil)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	w.watcher.Errors <- errors.New("queue overflow")

	deadline := time.Now().Add(5 * time.Second)
	for !strings.Contains(out.String(), "[Watcher] Warning: queue overflow") {
		if time.Now().After(deadline) {
			t.Fatalf("expected the error to be logged, got %q", out.String())
		}
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case err := <-done:
		t.Fatalf("Run returned after an error event: %v", err)
	default:
	}
}
