package signal

import (
	"github.com/YashasJKumar/V2I-System/entity"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("module", "signal")

// 依赖倒置，表达intersection对信号控制器实现的接口需求

// ISignal 信号控制器接口
// 说明：两种实现（四相位独立轮转、两相位南北/东西轴），同一路口同一时刻
// 只有一个控制器实例推进计时
type ISignal interface {
	Prepare()          // 准备阶段，更新快照
	Update(dt float64) // 更新阶段，推进计时；抢占期间完全跳过

	// 当前步各方向信号状态（信号推进与抢占写入之后）
	Current() [entity.DirectionCount]entity.LightState
	// 快照各方向信号状态（供输出）
	States() [entity.DirectionCount]entity.LightState
	RemainingTime() float64 // 当前相位剩余时长（快照）

	// 强制给定方向为绿、其余为红，并挂起计时推进；非法方向视为编程错误
	SetOverride(greens []entity.Direction)
	// 解除强制，从安全默认相位恢复计时（不延用过期计时器）
	ClearOverride()
	Overridden() bool
}
