// Package app 提供游戏应用的核心包装器
//
// 该包将游戏初始化逻辑从 main 包提取出来，使其可以被桌面端和移动端共用。
// 桌面端通过 main.go 调用 NewApp()，移动端通过 mobile/mobile.go 调用。
//
// 这里只实现碰撞相关的主循环：企鹅跟随鼠标，掉落物沿轨迹表飞行，
// 每个逻辑帧做一次像素级碰撞判定。计分、关卡推进等规则只做最简单的计数。
package app

import (
	"fmt"
	"image/color"
	"io"
	"io/fs"
	"log"
	"math/rand"

	"github.com/decker502/beancounters/pkg/components"
	"github.com/decker502/beancounters/pkg/config"
	"github.com/decker502/beancounters/pkg/ecs"
	"github.com/decker502/beancounters/pkg/entities"
	"github.com/decker502/beancounters/pkg/game"
	"github.com/decker502/beancounters/pkg/systems"
	"github.com/decker502/beancounters/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/quasilyte/gdata/v2"
)

// AppName gdata 存储使用的应用名
const AppName = "beancounters"

// Config 定义应用启动配置
type Config struct {
	// Verbose 启用详细日志输出
	Verbose bool
	// DataFS 资源文件系统，路径以 "data/" 开头
	DataFS fs.FS
	// Storage gdata 存储，用于保存设置和掩码缓存；nil 时降级为仅内存
	Storage *gdata.Manager
	// NoCache 禁用掩码缓存
	NoCache bool
	// Seed 掉落物生成的随机种子，0 表示使用固定种子 1
	Seed int64
}

// Stats 碰撞结果计数
type Stats struct {
	Caught    int // 接住的袋子
	Crashes   int // 被危险物砸中或袋子叠太多被压倒
	OneUps    int // 接住的 1UP
	Missed    int // 落地的掉落物
	Carried   int // 企鹅身上当前叠着的袋子
	Delivered int // 卸到卡车上的袋子
}

// App 是游戏应用的核心包装器，实现 ebiten.Game 接口
type App struct {
	em           *ecs.EntityManager
	colliders    *game.ColliderManager
	settings     *game.SettingsManager
	trajectories *systems.TrajectorySystem
	collisions   *systems.CollisionSystem
	maskImages   *maskImageCache
	rng          *rand.Rand

	catcher      ecs.EntityID
	catcherMasks []string // 按叠袋数选用的企鹅掩码
	spawnTimer   int
	stats        Stats
	verbose      bool
}

// NewApp 创建并初始化游戏应用
//
// 所有碰撞掩码在这里一次性加载，任何一个加载失败都返回错误，由调用方终止程序。
func NewApp(cfg Config) (*App, error) {
	// 配置日志输出
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}

	if cfg.DataFS == nil {
		return nil, fmt.Errorf("data file system not set")
	}

	colliders := game.NewColliderManager(cfg.DataFS)
	if err := colliders.LoadColliderConfig(config.ColliderConfigPath); err != nil {
		return nil, fmt.Errorf("碰撞配置加载失败: %w", err)
	}

	if !cfg.NoCache {
		colliders.SetCache(game.NewColliderCache(cfg.Storage))
	}

	if err := colliders.LoadAll(); err != nil {
		return nil, fmt.Errorf("碰撞掩码加载失败: %w", err)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = 1
	}

	a := &App{
		em:         ecs.NewEntityManager(),
		colliders:  colliders,
		settings:   game.NewSettingsManager(cfg.Storage),
		maskImages: newMaskImageCache(),
		rng:        rand.New(rand.NewSource(seed)),
		verbose:    cfg.Verbose,
	}

	a.catcherMasks = colliders.Config().CatcherColliders()
	catcher, err := entities.NewCatcherEntity(a.em, colliders, a.catcherMasks[0], config.GameWindowWidth/2)
	if err != nil {
		return nil, err
	}
	a.catcher = catcher
	a.trajectories = systems.NewTrajectorySystem(a.em)
	a.collisions = systems.NewCollisionSystem(a.em, catcher)

	log.Printf("[App] Initialized with %d masks", colliders.Count())
	return a, nil
}

// layerForTrack 根据轨迹决定掉落物的碰撞层
func layerForTrack(track config.TrackConfig) components.CollisionLayer {
	switch {
	case track.Kind == config.TrackKindBag:
		return components.LayerBag
	case track.ID == "oneup":
		return components.LayerBonus
	default:
		return components.LayerHazard
	}
}

// spawn 按间隔随机生成掉落物
func (a *App) spawn() {
	a.spawnTimer++
	if a.spawnTimer < config.SpawnIntervalTicks {
		return
	}
	a.spawnTimer = 0

	tracks := a.colliders.Config().Tracks
	if len(tracks) == 0 {
		return
	}
	airborne := len(ecs.GetEntitiesWith1[*components.TrajectoryComponent](a.em))
	if airborne >= config.MaxAirborne {
		return
	}

	track := tracks[a.rng.Intn(len(tracks))]
	if _, err := entities.NewFallingObjectEntity(a.em, a.colliders, track.ID, layerForTrack(track)); err != nil {
		log.Printf("[App] Failed to spawn %s: %v", track.ID, err)
	}
}

// applyEvents 根据碰撞事件更新计数
//
// 接住袋子会叠到企鹅身上，叠到 MaxStack 个或被危险物砸中时企鹅倒下，袋子清空。
func (a *App) applyEvents(events []systems.CollisionEvent) {
	for _, ev := range events {
		switch ev.Layer {
		case components.LayerBag:
			a.stats.Caught++
			a.stats.Carried++
			if a.stats.Carried >= config.MaxStack {
				log.Printf("[App] Catcher overloaded with %d bags", a.stats.Carried)
				a.stats.Crashes++
				a.stats.Carried = 0
			}
		case components.LayerHazard:
			a.stats.Crashes++
			a.stats.Carried = 0
		case components.LayerBonus:
			a.stats.OneUps++
		}
	}
	if len(events) > 0 {
		a.updateCatcherMask()
	}
}

// updateCatcherMask 按叠袋数更换企鹅掩码，超出列表时使用最后一个
func (a *App) updateCatcherMask() {
	maskID := a.catcherMasks[min(a.stats.Carried, len(a.catcherMasks)-1)]
	if err := entities.SetCatcherMask(a.em, a.colliders, a.catcher, maskID); err != nil {
		log.Printf("[App] Warning: %v", err)
	}
}

// Unload 指针在卡车一侧时卸下一个袋子
//
// 返回是否卸下了袋子。
func (a *App) Unload(pointerX int) bool {
	if pointerX > config.UnloadMaxX || a.stats.Carried <= 0 || a.stats.Carried >= config.MaxStack {
		return false
	}
	a.stats.Carried--
	a.stats.Delivered++
	a.updateCatcherMask()
	return true
}

// Tick 推进一个逻辑帧：移动接盘者、生成掉落物、推进轨迹、判定碰撞、清理实体
func (a *App) Tick(mouseX int) []systems.CollisionEvent {
	if pos, ok := ecs.GetComponent[*components.PositionComponent](a.em, a.catcher); ok {
		pos.X = mouseX + entities.CatcherOffsetX
	}

	a.spawn()
	a.stats.Missed += len(a.trajectories.Update())
	events := a.collisions.Update()
	a.applyEvents(events)
	a.em.RemoveMarkedEntities()
	return events
}

// Update 更新游戏逻辑
// 每个 tick 调用一次（config.TicksPerSecond 次/秒）
func (a *App) Update() error {
	settings := a.settings.GetSettings()
	if inpututil.IsKeyJustPressed(ebiten.KeyD) {
		a.settings.SetShowMasks(!settings.ShowMasks)
		a.saveSettings()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		a.settings.SetFullscreen(!settings.Fullscreen)
		ebiten.SetFullscreen(a.settings.GetSettings().Fullscreen)
		a.saveSettings()
	}

	x, _ := utils.PointerPosition()
	if utils.PointerJustPressed() {
		a.Unload(x)
	}
	a.Tick(x)
	return nil
}

func (a *App) saveSettings() {
	if err := a.settings.Save(); err != nil {
		log.Printf("[App] Warning: %v", err)
	}
}

// Settings 返回设置管理器
// main 在启动窗口前读取全屏设置
func (a *App) Settings() *game.SettingsManager {
	return a.settings
}

// Draw 绘制游戏画面
// 每帧调用一次
func (a *App) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 200, G: 230, B: 255, A: 255})

	if a.settings.GetSettings().ShowMasks {
		for _, id := range ecs.GetEntitiesWith2[*components.PositionComponent, *components.CollisionComponent](a.em) {
			pos, _ := ecs.GetComponent[*components.PositionComponent](a.em, id)
			col, _ := ecs.GetComponent[*components.CollisionComponent](a.em, id)

			// 掉落物只画本帧实际参与判定的掩码
			hf := components.HitFrame{MaskID: col.MaskID, Mask: col.Mask, X: pos.X, Y: pos.Y}
			if traj, ok := ecs.GetComponent[*components.TrajectoryComponent](a.em, id); ok {
				if hf, ok = traj.HitShape(pos, col); !ok {
					continue
				}
			}

			img := a.maskImages.get(hf.MaskID, hf.Mask, col.Layer)
			if img == nil {
				continue
			}
			op := &ebiten.DrawImageOptions{}
			op.GeoM.Translate(float64(hf.X+hf.Mask.OffsetX()), float64(hf.Y+hf.Mask.OffsetY()))
			screen.DrawImage(img, op)
		}
	}

	ebitenutil.DebugPrint(screen, fmt.Sprintf(
		"caught: %d  carried: %d  delivered: %d  crashes: %d  1up: %d  missed: %d\nentities: %d  TPS: %0.1f  [D] masks",
		a.stats.Caught, a.stats.Carried, a.stats.Delivered, a.stats.Crashes, a.stats.OneUps, a.stats.Missed,
		a.em.Count(), ebiten.ActualTPS()))
}

// Layout 返回游戏的逻辑屏幕尺寸
// 此尺寸独立于实际窗口大小，Ebitengine 会自动处理缩放
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return config.GameWindowWidth, config.GameWindowHeight
}

// Stats 返回当前计数
func (a *App) Stats() Stats {
	return a.stats
}

// IsVerbose 返回是否启用了详细日志
func (a *App) IsVerbose() bool {
	return a.verbose
}
