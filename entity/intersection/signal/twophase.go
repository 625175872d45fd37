package signal

import (
	"github.com/YashasJKumar/V2I-System/entity"
)

// twoPhasePhase 两相位信号的相位枚举
type twoPhasePhase int32

const (
	phaseNSGreen twoPhasePhase = iota
	phaseNSYellow
	phaseEWGreen
	phaseEWYellow

	twoPhaseCount = 4
)

// twoPhaseRuntime 两相位信号运行时数据结构
type twoPhaseRuntime struct {
	phase     twoPhasePhase               // 当前相位
	remaining float64                     // 当前相位剩余时间
	override  bool                        // 抢占标志
	greens    [entity.DirectionCount]bool // 抢占期间强制为绿的方向
	lastAxis  entity.Axis                 // 最近一次抢占的通行轴，用于解除后的安全恢复
}

// twoPhaseSignal 两相位信号控制器
// 功能：南北绿->南北黄->东西绿->东西黄循环，路口共用单计时器
// 说明：作为四相位模型的替代配置存在，同一路口只由一种模型推进计时
type twoPhaseSignal struct {
	intersectionID int32
	greenTime      float64
	yellowTime     float64

	snapshot twoPhaseRuntime
	runtime  twoPhaseRuntime
}

// NewTwoPhase 创建两相位信号控制器
func NewTwoPhase(intersectionID int32, greenTime, yellowTime float64) *twoPhaseSignal {
	return &twoPhaseSignal{
		intersectionID: intersectionID,
		greenTime:      greenTime,
		yellowTime:     yellowTime,
		runtime: twoPhaseRuntime{
			phase:     phaseNSGreen,
			remaining: greenTime,
		},
	}
}

// Prepare 准备阶段，写入快照
func (s *twoPhaseSignal) Prepare() {
	s.snapshot = s.runtime
}

// Update 更新阶段，推进相位计时；抢占期间挂起
func (s *twoPhaseSignal) Update(dt float64) {
	if s.runtime.override {
		return
	}
	s.runtime.remaining -= dt
	for s.runtime.remaining <= 0 {
		s.runtime.phase = (s.runtime.phase + 1) % twoPhaseCount
		if s.runtime.phase == phaseNSGreen || s.runtime.phase == phaseEWGreen {
			s.runtime.remaining += s.greenTime
		} else {
			s.runtime.remaining += s.yellowTime
		}
	}
}

func (r *twoPhaseRuntime) states() [entity.DirectionCount]entity.LightState {
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
	var state entity.LightState
	var axis entity.Axis
	switch r.phase {
	case phaseNSGreen:
		state, axis = entity.LightStateGreen, entity.AxisNS
	case phaseNSYellow:
		state, axis = entity.LightStateYellow, entity.AxisNS
	case phaseEWGreen:
		state, axis = entity.LightStateGreen, entity.AxisEW
	case phaseEWYellow:
		state, axis = entity.LightStateYellow, entity.AxisEW
	}
	for d := entity.Direction(0); d < entity.DirectionCount; d++ {
		if d.Axis() == axis {
			out[d] = state
		}
	}
	return out
}

// Current 当前步各方向信号状态
func (s *twoPhaseSignal) Current() [entity.DirectionCount]entity.LightState {
	return s.runtime.states()
}

// States 快照各方向信号状态
func (s *twoPhaseSignal) States() [entity.DirectionCount]entity.LightState {
	return s.snapshot.states()
}

// RemainingTime 当前相位剩余时间（快照）
func (s *twoPhaseSignal) RemainingTime() float64 {
	return s.snapshot.remaining
}

// SetOverride 应用抢占
// 功能：将给定方向扩展为所在通行轴的方向对，强制为绿、另一轴为红
func (s *twoPhaseSignal) SetOverride(greens []entity.Direction) {
	var mask [entity.DirectionCount]bool
	for _, g := range greens {
		if !g.Valid() {
			log.Panicf("intersection %d: invalid override direction %d", s.intersectionID, g)
		}
		for d := entity.Direction(0); d < entity.DirectionCount; d++ {
			if d.Axis() == g.Axis() {
				mask[d] = true
			}
		}
		s.runtime.lastAxis = g.Axis()
	}
	s.runtime.override = true
	s.runtime.greens = mask
}

// ClearOverride 解除抢占
// 功能：恢复到最近抢占通行轴的整绿相位，避免刚通过的方向立刻切红
func (s *twoPhaseSignal) ClearOverride() {
	if !s.runtime.override {
		return
	}
	s.runtime.override = false
	s.runtime.greens = [entity.DirectionCount]bool{}
	if s.runtime.lastAxis == entity.AxisEW {
		s.runtime.phase = phaseEWGreen
	} else {
		s.runtime.phase = phaseNSGreen
	}
	s.runtime.remaining = s.greenTime
}

// Overridden 是否处于抢占
func (s *twoPhaseSignal) Overridden() bool {
	return s.runtime.override
}
