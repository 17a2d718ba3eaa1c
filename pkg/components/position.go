package components

// PositionComponent 实体在屏幕上的位置（像素）
// 与精灵的绘制位置一致，即精灵图片左上角；碰撞掩码的偏移量相对于这个点
type PositionComponent struct {
	X int
	Y int
}
