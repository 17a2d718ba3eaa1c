package components

import (
	"fmt"

	"github.com/decker502/beancounters/internal/collider"
	"github.com/decker502/beancounters/pkg/config"
)

// Trajectory 掉落物的逐帧轨迹表
//
// 两种实现对应两种轨迹点形状：
//   - BagTrajectory: 每帧 [精灵编号, x, y]
//   - ObjectTrajectory: 每帧 [x, y]
//
// 调用方用类型断言区分，例如绘制袋子时需要取精灵编号。
type Trajectory interface {
	// Len 返回帧数
	Len() int
	// Position 返回第 frame 帧的位置，frame 必须在 [0, Len()) 内
	Position(frame int) (x, y int)
}

// BagPoint 袋子轨迹的一帧
type BagPoint struct {
	Sprite int // 本帧使用的袋子精灵编号
	X      int
	Y      int
}

// ObjectPoint 其他掉落物轨迹的一帧
type ObjectPoint struct {
	X int
	Y int
}

// BagTrajectory 袋子轨迹
type BagTrajectory []BagPoint

// Len 返回帧数
func (t BagTrajectory) Len() int { return len(t) }

// Position 返回第 frame 帧的位置
func (t BagTrajectory) Position(frame int) (int, int) {
	return t[frame].X, t[frame].Y
}

// Sprite 返回第 frame 帧的精灵编号
func (t BagTrajectory) Sprite(frame int) int {
	return t[frame].Sprite
}

// ObjectTrajectory 其他掉落物轨迹
type ObjectTrajectory []ObjectPoint

// Len 返回帧数
func (t ObjectTrajectory) Len() int { return len(t) }

// Position 返回第 frame 帧的位置
func (t ObjectTrajectory) Position(frame int) (int, int) {
	return t[frame].X, t[frame].Y
}

// NewTrajectory 根据配置中的轨迹表构建轨迹
//
// 参数:
//   - track: 已通过 Validate 的轨迹配置
//
// 返回:
//   - Trajectory: BagTrajectory 或 ObjectTrajectory
//   - error: 轨迹类型未知或轨迹点元素个数不符时返回错误
func NewTrajectory(track *config.TrackConfig) (Trajectory, error) {
	switch track.Kind {
	case config.TrackKindBag:
		points := make(BagTrajectory, len(track.Points))
		for i, p := range track.Points {
			if len(p) != 3 {
				return nil, fmt.Errorf("track %s point #%d: expected 3 values, got %d", track.ID, i, len(p))
			}
			points[i] = BagPoint{Sprite: p[0], X: p[1], Y: p[2]}
		}
		return points, nil

	case config.TrackKindObject:
		points := make(ObjectTrajectory, len(track.Points))
		for i, p := range track.Points {
			if len(p) != 2 {
				return nil, fmt.Errorf("track %s point #%d: expected 2 values, got %d", track.ID, i, len(p))
			}
			points[i] = ObjectPoint{X: p[0], Y: p[1]}
		}
		return points, nil

	default:
		return nil, fmt.Errorf("track %s: unknown kind '%s'", track.ID, track.Kind)
	}
}

// HitFrame 一帧的判定数据：掩码和它在世界坐标中的位置
type HitFrame struct {
	MaskID string
	Mask   *collider.BitMask
	X, Y   int
}

// HitWindow 只在 [Start, Start+len(Frames)) 帧判定
type HitWindow struct {
	Start  int
	Frames []HitFrame
}

// At 返回第 frame 帧的判定数据，窗口外返回 false
func (w *HitWindow) At(frame int) (HitFrame, bool) {
	i := frame - w.Start
	if i < 0 || i >= len(w.Frames) {
		return HitFrame{}, false
	}
	return w.Frames[i], true
}

// TrajectoryComponent 沿轨迹表飞行的掉落物
type TrajectoryComponent struct {
	TrackID string
	Track   Trajectory
	Frame   int        // 当前帧
	Landed  bool       // 轨迹已走完（落地）
	Hits    *HitWindow // 判定窗口，nil 表示每帧都用 CollisionComponent 在当前位置判定
}

// InFlight 返回掉落物是否仍在空中
// 只有空中的掉落物参与碰撞判定
func (t *TrajectoryComponent) InFlight() bool {
	return !t.Landed && t.Frame < t.Track.Len()
}

// HitShape 返回本帧参与判定的掩码和位置
//
// 没有判定窗口时使用 col 的掩码放在 pos；有窗口时使用窗口中本帧的数据。
// 落地、不在窗口内或掩码为空时返回 false。
func (t *TrajectoryComponent) HitShape(pos *PositionComponent, col *CollisionComponent) (HitFrame, bool) {
	if !t.InFlight() {
		return HitFrame{}, false
	}
	if t.Hits != nil {
		hf, ok := t.Hits.At(t.Frame)
		if !ok || hf.Mask == nil {
			return HitFrame{}, false
		}
		return hf, true
	}
	if col.Mask == nil {
		return HitFrame{}, false
	}
	return HitFrame{MaskID: col.MaskID, Mask: col.Mask, X: pos.X, Y: pos.Y}, true
}
