package config

// 布局配置常量
// 本文件定义了窗口尺寸和逻辑帧率，坐标与原版 760x480 画面一致
const (
	// GameWindowWidth 逻辑屏幕宽度
	GameWindowWidth = 760

	// GameWindowHeight 逻辑屏幕高度
	GameWindowHeight = 480

	// TicksPerSecond 逻辑帧率，轨迹表按每秒 24 帧录制
	TicksPerSecond = 24

	// SpawnIntervalTicks 生成掉落物的间隔（逻辑帧）
	SpawnIntervalTicks = 18

	// MaxAirborne 同时在空中的掉落物上限
	MaxAirborne = 5

	// MaxStack 企鹅最多能叠的袋子数，接到第 MaxStack 个时被压倒
	MaxStack = 6

	// UnloadMaxX 指针横坐标不超过该值时点击可以把一个袋子卸到卡车上
	UnloadMaxX = 230
)
