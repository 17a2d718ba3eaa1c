package systems

import (
	"github.com/decker502/beancounters/pkg/components"
	"github.com/decker502/beancounters/pkg/ecs"
)

// TrajectorySystem 推进掉落物的轨迹表
//
// 每个逻辑帧把每个掉落物前进一帧，并把位置更新为轨迹表中该帧的坐标。
// 轨迹走完的掉落物标记为落地并被销毁（延迟到 RemoveMarkedEntities）。
type TrajectorySystem struct {
	em *ecs.EntityManager
}

// NewTrajectorySystem 创建轨迹系统
func NewTrajectorySystem(em *ecs.EntityManager) *TrajectorySystem {
	return &TrajectorySystem{em: em}
}

// Update 推进一帧
//
// 返回:
//   - []ecs.EntityID: 本帧落地的掉落物
func (ts *TrajectorySystem) Update() []ecs.EntityID {
	var landed []ecs.EntityID

	for _, id := range ecs.GetEntitiesWith2[*components.TrajectoryComponent, *components.PositionComponent](ts.em) {
		traj, _ := ecs.GetComponent[*components.TrajectoryComponent](ts.em, id)
		pos, _ := ecs.GetComponent[*components.PositionComponent](ts.em, id)

		if traj.Landed {
			continue
		}

		traj.Frame++
		if traj.Frame >= traj.Track.Len() {
			traj.Landed = true
			landed = append(landed, id)
			ts.em.DestroyEntity(id)
			continue
		}

		pos.X, pos.Y = traj.Track.Position(traj.Frame)
	}

	return landed
}
