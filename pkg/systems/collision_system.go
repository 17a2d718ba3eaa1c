package systems

import (
	"log"

	"github.com/decker502/beancounters/internal/collider"
	"github.com/decker502/beancounters/pkg/components"
	"github.com/decker502/beancounters/pkg/ecs"
)

// CollisionEvent 一次掉落物与接盘者的碰撞
// 由外部游戏逻辑根据 Layer 决定计分、扣命或加命
type CollisionEvent struct {
	Entity ecs.EntityID
	Layer  components.CollisionLayer
	MaskID string
	Frame  int // 碰撞发生时掉落物所在的轨迹帧
}

// CollisionSystem 每个逻辑帧对所有空中掉落物与接盘者做像素级碰撞判定
//
// 判定使用 collider.HitTest：先比较两者的世界矩形，不相交时不读取掩码数据，
// 因此每帧对所有掉落物判定一次的开销很小。
// 带判定窗口的掉落物只在窗口内的帧判定，并使用窗口中的逐帧掩码和位置。
// 命中的掉落物被销毁（延迟到 RemoveMarkedEntities），同一掉落物只会上报一次。
type CollisionSystem struct {
	em      *ecs.EntityManager
	catcher ecs.EntityID
}

// NewCollisionSystem 创建碰撞系统
//
// 参数:
//   - em: 实体管理器
//   - catcher: 接盘者实体，必须拥有 PositionComponent 和 CollisionComponent
func NewCollisionSystem(em *ecs.EntityManager, catcher ecs.EntityID) *CollisionSystem {
	return &CollisionSystem{em: em, catcher: catcher}
}

// SetCatcher 更换接盘者实体
func (cs *CollisionSystem) SetCatcher(catcher ecs.EntityID) {
	cs.catcher = catcher
}

// Update 执行本帧的碰撞判定
//
// 返回:
//   - []CollisionEvent: 按实体槽位顺序排列的碰撞事件；接盘者不存在时返回 nil
func (cs *CollisionSystem) Update() []CollisionEvent {
	catcherPos, ok := ecs.GetComponent[*components.PositionComponent](cs.em, cs.catcher)
	if !ok {
		return nil
	}
	catcherCol, ok := ecs.GetComponent[*components.CollisionComponent](cs.em, cs.catcher)
	if !ok || catcherCol.Mask == nil {
		return nil
	}

	var events []CollisionEvent

	objects := ecs.GetEntitiesWith3[*components.TrajectoryComponent, *components.PositionComponent, *components.CollisionComponent](cs.em)
	for _, id := range objects {
		traj, _ := ecs.GetComponent[*components.TrajectoryComponent](cs.em, id)
		pos, _ := ecs.GetComponent[*components.PositionComponent](cs.em, id)
		col, _ := ecs.GetComponent[*components.CollisionComponent](cs.em, id)
		if col.Layer == components.LayerCatcher {
			continue
		}

		// 判定窗口之外（或已落地）的掉落物本帧不判定
		hf, ok := traj.HitShape(pos, col)
		if !ok {
			continue
		}

		if !collider.HitTest(hf.Mask, hf.X, hf.Y, catcherCol.Mask, catcherPos.X, catcherPos.Y) {
			continue
		}

		log.Printf("[CollisionSystem] %s (%s) hit catcher at frame %d", hf.MaskID, col.Layer, traj.Frame)
		events = append(events, CollisionEvent{
			Entity: id,
			Layer:  col.Layer,
			MaskID: hf.MaskID,
			Frame:  traj.Frame,
		})

		// 清理前不再参与判定
		traj.Landed = true
		cs.em.DestroyEntity(id)
	}

	return events
}
