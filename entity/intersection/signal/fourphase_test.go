package signal_test

import (
	"testing"

	"github.com/YashasJKumar/V2I-System/entity"
	"github.com/YashasJKumar/V2I-System/entity/intersection/signal"
	"github.com/stretchr/testify/assert"
)

func greenCount(states [entity.DirectionCount]entity.LightState) int {
	n := 0
	for _, s := range states {
		if s == entity.LightStateGreen {
			n++
		}
	}
	return n
}

func TestFourPhaseRotation(t *testing.T) {
	s := signal.NewFourPhase(0, 10, 3)

	// 初始：北向绿灯
	states := s.Current()
	assert.Equal(t, entity.LightStateGreen, states[entity.DirectionNorth])
	assert.Equal(t, entity.LightStateRed, states[entity.DirectionEast])

	// 绿灯耗尽进入黄灯
	s.Update(10)
	states = s.Current()
	assert.Equal(t, entity.LightStateYellow, states[entity.DirectionNorth])

	// 黄灯耗尽轮转到东向
	s.Update(3)
	states = s.Current()
	assert.Equal(t, entity.LightStateGreen, states[entity.DirectionEast])
	assert.Equal(t, entity.LightStateRed, states[entity.DirectionNorth])

	// 完整一圈回到北向：剩余3个方向各13秒
	s.Update(13 * 3)
	states = s.Current()
	assert.Equal(t, entity.LightStateGreen, states[entity.DirectionNorth])
}

func TestFourPhaseMutualExclusion(t *testing.T) {
	s := signal.NewFourPhase(0, 10, 3)
	for i := 0; i < 2000; i++ {
		s.Update(0.05)
		states := s.Current()
		// 任意时刻至多一个方向为绿
		assert.LessOrEqual(t, greenCount(states), 1)
	}
}

func TestFourPhaseLargeStep(t *testing.T) {
	s := signal.NewFourPhase(0, 10, 3)
	// 一步跨越多个相位：10+3+10+3+1秒后处于南向绿灯
	s.Update(27)
	states := s.Current()
	assert.Equal(t, entity.LightStateGreen, states[entity.DirectionSouth])
}

func TestFourPhaseOverride(t *testing.T) {
	s := signal.NewFourPhase(0, 10, 3)
	s.SetOverride([]entity.Direction{entity.DirectionSouth})
	assert.True(t, s.Overridden())

	states := s.Current()
	assert.Equal(t, entity.LightStateGreen, states[entity.DirectionSouth])
	assert.Equal(t, entity.LightStateRed, states[entity.DirectionNorth])
	assert.Equal(t, entity.LightStateRed, states[entity.DirectionEast])
	assert.Equal(t, entity.LightStateRed, states[entity.DirectionWest])

	// 抢占期间计时挂起，状态不随时间变化
	s.Update(100)
	assert.Equal(t, states, s.Current())

	// 解除后恢复整绿相位并继续轮转
	s.ClearOverride()
	assert.False(t, s.Overridden())
	assert.Equal(t, 1, greenCount(s.Current()))
	s.Update(10)
	states = s.Current()
	assert.Equal(t, entity.LightStateYellow, states[entity.DirectionNorth])
}

func TestFourPhaseInvalidOverridePanics(t *testing.T) {
	s := signal.NewFourPhase(0, 10, 3)
	assert.Panics(t, func() {
		s.SetOverride([]entity.Direction{entity.Direction(7)})
	})
}
