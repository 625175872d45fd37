package signal

import (
	"github.com/YashasJKumar/V2I-System/entity"
)

// fourPhaseRuntime 四相位信号运行时数据结构
// 功能：存储独立四相位信控的运行时状态
type fourPhaseRuntime struct {
	active    entity.Direction                 // 当前持有绿灯的方向
	yellow    bool                             // 是否处于黄灯过渡
	remaining float64                          // 当前相位剩余时间
	override  bool                             // 抢占标志
	greens    [entity.DirectionCount]bool      // 抢占期间强制为绿的方向
}

// fourPhaseSignal 四相位独立信号控制器
// 功能：四个方向各自循环绿->黄->红，绿灯按{北,东,南,西}严格轮转，
// 任意时刻至多一个方向为绿；处于红灯的方向等待轮转到达
type fourPhaseSignal struct {
	intersectionID int32
	greenTime      float64
	yellowTime     float64

	snapshot fourPhaseRuntime // 快照，用于保存输出的数据
	runtime  fourPhaseRuntime // 运行时数据
}

// NewFourPhase 创建四相位信号控制器
// 参数：intersectionID-路口ID，greenTime/yellowTime-相位时长（秒）
func NewFourPhase(intersectionID int32, greenTime, yellowTime float64) *fourPhaseSignal {
	return &fourPhaseSignal{
		intersectionID: intersectionID,
		greenTime:      greenTime,
		yellowTime:     yellowTime,
		runtime: fourPhaseRuntime{
			active:    entity.DirectionNorth,
			remaining: greenTime,
		},
	}
}

// Prepare 准备阶段，写入快照
func (s *fourPhaseSignal) Prepare() {
	s.snapshot = s.runtime
}

// Update 更新阶段，推进相位计时
// 参数：dt-等效时间步长（已含速度倍率）
// 算法说明：
// 1. 抢占期间计时完全挂起
// 2. 绿灯计时耗尽进入黄灯，黄灯耗尽轮转到下一方向的绿灯
// 3. 大dt下可能一步跨越多个相位，循环补偿
func (s *fourPhaseSignal) Update(dt float64) {
	if s.runtime.override {
		return
	}
	s.runtime.remaining -= dt
	for s.runtime.remaining <= 0 {
		if !s.runtime.yellow {
			s.runtime.yellow = true
			s.runtime.remaining += s.yellowTime
		} else {
			s.runtime.yellow = false
			s.runtime.active = (s.runtime.active + 1) % entity.DirectionCount
			s.runtime.remaining += s.greenTime
		}
	}
}

// states 从运行时数据推导各方向信号状态
func (r *fourPhaseRuntime) states() [entity.DirectionCount]entity.LightState {
	var out [entity.DirectionCount]entity.LightState
	for d := range out {
		out[d] = entity.LightStateRed
	}
	if r.override {
		for d, green := range r.greens {
			if green {
				out[d] = entity.LightStateGreen
			}
		}
		return out
	}
	if r.yellow {
		out[r.active] = entity.LightStateYellow
	} else {
		out[r.active] = entity.LightStateGreen
	}
	return out
}

// Current 当前步各方向信号状态
func (s *fourPhaseSignal) Current() [entity.DirectionCount]entity.LightState {
	return s.runtime.states()
}

// States 快照各方向信号状态
func (s *fourPhaseSignal) States() [entity.DirectionCount]entity.LightState {
	return s.snapshot.states()
}

// RemainingTime 当前相位剩余时间（快照）
func (s *fourPhaseSignal) RemainingTime() float64 {
	return s.snapshot.remaining
}

// SetOverride 应用抢占
// 功能：强制给定方向为绿、其余为红，挂起计时
func (s *fourPhaseSignal) SetOverride(greens []entity.Direction) {
	var mask [entity.DirectionCount]bool
	for _, d := range greens {
		if !d.Valid() {
			log.Panicf("intersection %d: invalid override direction %d", s.intersectionID, d)
		}
		mask[d] = true
	}
	s.runtime.override = true
	s.runtime.greens = mask
}

// ClearOverride 解除抢占
// 功能：恢复计时推进，保持轮转位置不变并给满一个绿灯相位
func (s *fourPhaseSignal) ClearOverride() {
	if !s.runtime.override {
		return
	}
	s.runtime.override = false
	s.runtime.greens = [entity.DirectionCount]bool{}
	s.runtime.yellow = false
	s.runtime.remaining = s.greenTime
}

// Overridden 是否处于抢占
func (s *fourPhaseSignal) Overridden() bool {
	return s.runtime.override
}
