package entities

import (
	"fmt"

	"github.com/decker502/beancounters/internal/collider"
	"github.com/decker502/beancounters/pkg/components"
	"github.com/decker502/beancounters/pkg/config"
	"github.com/decker502/beancounters/pkg/ecs"
)

// CatcherY 接盘者（企鹅）精灵左上角的固定纵坐标
const CatcherY = 251

// CatcherOffsetX 企鹅精灵左上角相对鼠标横坐标的偏移
const CatcherOffsetX = -120

// ColliderSource 提供碰撞掩码和轨迹表
// game.ColliderManager 实现了该接口
type ColliderSource interface {
	GetCollider(id string) *collider.BitMask
	Config() *config.ColliderConfig
}

// NewCatcherEntity 创建接盘者实体
//
// 参数:
//   - em: 实体管理器
//   - src: 掩码来源
//   - maskID: 企鹅掩码ID（如 "penguin_1"）
//   - mouseX: 鼠标横坐标，企鹅精灵放在 mouseX+CatcherOffsetX
//
// 返回:
//   - ecs.EntityID: 接盘者实体
//   - error: 掩码不存在时返回错误
func NewCatcherEntity(em *ecs.EntityManager, src ColliderSource, maskID string, mouseX int) (ecs.EntityID, error) {
	mask := src.GetCollider(maskID)
	if mask == nil {
		return ecs.InvalidEntity, fmt.Errorf("catcher collider not found: %s", maskID)
	}

	id := em.CreateEntity()
	em.AddComponent(id, &components.PositionComponent{X: mouseX + CatcherOffsetX, Y: CatcherY})
	em.AddComponent(id, &components.CollisionComponent{
		MaskID: maskID,
		Mask:   mask,
		Layer:  components.LayerCatcher,
	})
	return id, nil
}

// NewFallingObjectEntity 按轨迹表创建一个掉落物
//
// 掉落物使用轨迹配置中指定的掩码，位置为轨迹第 0 帧。
// 轨迹配置了判定窗口时，窗口中的逐帧掩码在这里一次解析好。
//
// 参数:
//   - em: 实体管理器
//   - src: 掩码来源
//   - trackID: 轨迹ID（如 "bag_throw"、"anvil"）
//   - layer: 碰撞层
//
// 返回:
//   - ecs.EntityID: 掉落物实体
//   - error: 轨迹或掩码不存在时返回错误
func NewFallingObjectEntity(em *ecs.EntityManager, src ColliderSource, trackID string, layer components.CollisionLayer) (ecs.EntityID, error) {
	cfg := src.Config()
	if cfg == nil {
		return ecs.InvalidEntity, fmt.Errorf("collider config not loaded")
	}

	trackCfg, ok := cfg.FindTrack(trackID)
	if !ok {
		return ecs.InvalidEntity, fmt.Errorf("track not found: %s", trackID)
	}

	track, err := components.NewTrajectory(trackCfg)
	if err != nil {
		return ecs.InvalidEntity, err
	}

	mask := src.GetCollider(trackCfg.Collider)
	if mask == nil {
		return ecs.InvalidEntity, fmt.Errorf("collider %s for track %s not loaded", trackCfg.Collider, trackID)
	}

	hits, err := newHitWindow(src, trackCfg)
	if err != nil {
		return ecs.InvalidEntity, err
	}

	x, y := track.Position(0)

	id := em.CreateEntity()
	em.AddComponent(id, &components.PositionComponent{X: x, Y: y})
	em.AddComponent(id, &components.TrajectoryComponent{TrackID: trackID, Track: track, Hits: hits})
	em.AddComponent(id, &components.CollisionComponent{
		MaskID: trackCfg.Collider,
		Mask:   mask,
		Layer:  layer,
	})
	return id, nil
}

// newHitWindow 解析轨迹的判定窗口，没有配置时返回 nil
func newHitWindow(src ColliderSource, trackCfg *config.TrackConfig) (*components.HitWindow, error) {
	if trackCfg.Hits == nil {
		return nil, nil
	}

	window := &components.HitWindow{
		Start:  trackCfg.Hits.Start,
		Frames: make([]components.HitFrame, len(trackCfg.Hits.Points)),
	}
	for i, p := range trackCfg.Hits.Points {
		if len(p) != 2 {
			return nil, fmt.Errorf("track %s hit point #%d: expected 2 values, got %d", trackCfg.ID, i, len(p))
		}
		maskID := trackCfg.Collider
		if len(trackCfg.Hits.Colliders) > 0 {
			maskID = trackCfg.Hits.Colliders[i]
		}
		mask := src.GetCollider(maskID)
		if mask == nil {
			return nil, fmt.Errorf("collider %s for track %s hit frame %d not loaded", maskID, trackCfg.ID, window.Start+i)
		}
		window.Frames[i] = components.HitFrame{MaskID: maskID, Mask: mask, X: p[0], Y: p[1]}
	}
	return window, nil
}

// SetCatcherMask 更换接盘者的碰撞掩码（例如企鹅叠上更多袋子后）
func SetCatcherMask(em *ecs.EntityManager, src ColliderSource, catcher ecs.EntityID, maskID string) error {
	col, ok := ecs.GetComponent[*components.CollisionComponent](em, catcher)
	if !ok {
		return fmt.Errorf("entity %d has no collision component", catcher)
	}
	if col.MaskID == maskID {
		return nil
	}
	mask := src.GetCollider(maskID)
	if mask == nil {
		return fmt.Errorf("catcher collider not found: %s", maskID)
	}
	col.MaskID = maskID
	col.Mask = mask
	return nil
}
