package clock

import (
	"fmt"
	"sync"

	"github.com/YashasJKumar/V2I-System/utils/config"
)

// Clock 仿真时钟管理器
// 功能：管理仿真系统的时间推进，承载暂停状态与速度倍率
// 说明：速度倍率只缩放每步的等效dt（影响计时器衰减与位移量），
// 不改变步频，从而保证任意倍速下避撞距离判定仍然有效
type Clock struct {
	DT         float64 // 每个模拟步基准时间间隔（秒）
	START_STEP int32   // 起始步
	END_STEP   int32   // 结束步，模拟区间[START, END)，0表示不设上限

	T            float64 // 当前时间（秒）
	InternalStep int32   // 当前步数

	mtx         sync.RWMutex
	paused      bool    // 暂停标志，暂停时单步工作全部短路但状态保留
	speedFactor float64 // 速度倍率
}

// New 根据配置创建新的时钟实例
// 功能：根据控制步配置初始化时钟信息
// 参数：stepConfig-控制步配置，包含时间间隔、总步数
// 返回：初始化完成的时钟实例
func New(stepConfig config.ControlStep) *Clock {
	c := &Clock{
		DT:          stepConfig.Interval,
		START_STEP:  0,
		END_STEP:    stepConfig.Total,
		speedFactor: 1,
	}
	c.Init()
	return c
}

// Init 初始化时钟状态
// 功能：重置步数为起始步，重新计算当前时间
func (c *Clock) Init() {
	c.InternalStep = c.START_STEP
	c.T = float64(c.InternalStep) * c.DT
}

// EffectiveDT 获取本步的等效时间步长
// 功能：返回经过速度倍率缩放后的dt
// 返回：等效dt（秒）
func (c *Clock) EffectiveDT() float64 {
	c.mtx.RLock()
	defer c.mtx.RUnlock()
	return c.DT * c.speedFactor
}

// Paused 获取暂停状态
func (c *Clock) Paused() bool {
	c.mtx.RLock()
	defer c.mtx.RUnlock()
	return c.paused
}

// SetPaused 设置暂停状态
// 功能：暂停/恢复仿真，暂停期间不丢失任何状态，恢复后从原处继续
func (c *Clock) SetPaused(paused bool) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.paused = paused
}

// SpeedFactor 获取速度倍率
func (c *Clock) SpeedFactor() float64 {
	c.mtx.RLock()
	defer c.mtx.RUnlock()
	return c.speedFactor
}

// SetSpeedFactor 设置速度倍率
// 功能：调整等效dt的缩放倍率
// 参数：factor-速度倍率，非正值视为编程错误
// 返回：设置错误
func (c *Clock) SetSpeedFactor(factor float64) error {
	if factor <= 0 {
		return fmt.Errorf("clock: speed factor must be positive, got %v", factor)
	}
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.speedFactor = factor
	return nil
}

// String 获取时钟的字符串表示
// 功能：将当前时间格式化为可读的字符串（HH:MM:SS）
func (c *Clock) String() string {
	t := c.T
	h := int(t / 3600)
	t -= float64(h * 3600)
	m := int(t / 60)
	t -= float64(m * 60)
	s := int(t)
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
