package maskgen

import (
	"context"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce 源图片变化后等待的时间，编辑器保存时通常会连续触发多个事件
const DefaultDebounce = 200 * time.Millisecond

// Watcher 监视源图片，变化后重新生成对应的 .col 文件
//
// fsnotify 监视的是源图片所在目录而不是文件本身，
// 这样编辑器以“写临时文件再重命名”的方式保存时也能收到事件。
type Watcher struct {
	watcher *fsnotify.Watcher
	jobs    map[string]Job // 源图片路径（Clean 后）-> 任务

	onBuilt  func(*Result, error)
	debounce time.Duration

	mu      sync.Mutex
	timers  map[string]*pendingBuild
	closed  bool
	closeMu sync.Once
}

// NewWatcher 创建监视器
//
// 参数:
//   - jobs: 要监视的任务
//   - onBuilt: 每次重新生成后的回调（在定时器 goroutine 中调用），可为 nil
func NewWatcher(jobs []Job, onBuilt func(*Result, error)) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:  watcher,
		jobs:     make(map[string]Job, len(jobs)),
		onBuilt:  onBuilt,
		debounce: DefaultDebounce,
		timers:   make(map[string]*pendingBuild),
	}

	dirs := make(map[string]bool)
	for _, job := range jobs {
		src := filepath.Clean(job.Source)
		w.jobs[src] = job
		dirs[filepath.Dir(src)] = true
	}

	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			_ = watcher.Close()
			return nil, err
		}
	}

	return w, nil
}

// SetDebounce 修改去抖时间，必须在 Run 之前调用
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// Run 处理文件事件，直到 ctx 取消或监视器关闭
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if job, ok := w.jobs[filepath.Clean(event.Name)]; ok {
				w.schedule(job)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("[Watcher] Warning: %v", err)
		}
	}
}

// Close 停止监视并取消尚未触发的重新生成
func (w *Watcher) Close() error {
	var err error
	w.closeMu.Do(func() {
		w.mu.Lock()
		w.closed = true
		for _, p := range w.timers {
			p.timer.Stop()
		}
		w.timers = nil
		w.mu.Unlock()
		err = w.watcher.Close()
	})
	return err
}

// pendingBuild 一次待执行的重新生成
// 指针本身用作标识，fire 只执行仍登记在 timers 中的那一次。
type pendingBuild struct {
	timer *time.Timer
}

func (w *Watcher) schedule(job Job) {
	key := filepath.Clean(job.Source)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}

	if p, ok := w.timers[key]; ok && p.timer.Reset(w.debounce) {
		return
	}
	// 定时器已触发时 fire 可能正在等锁，换成新的登记，旧的那次会被跳过
	p := &pendingBuild{}
	p.timer = time.AfterFunc(w.debounce, func() { w.fire(key, job, p) })
	w.timers[key] = p
}

func (w *Watcher) fire(key string, job Job, p *pendingBuild) {
	w.mu.Lock()
	if w.closed || w.timers[key] != p {
		w.mu.Unlock()
		return
	}
	delete(w.timers, key)
	w.mu.Unlock()

	res, err := Build(job)
	if w.onBuilt != nil {
		w.onBuilt(res, err)
	}
}
