package entity_test

import (
	"testing"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/YashasJKumar/V2I-System/entity"
	"github.com/stretchr/testify/assert"
)

func TestTurnTarget(t *testing.T) {
	// 右转为顺时针90度（屏幕坐标系y向下）
	assert.Equal(t, entity.DirectionSouth, entity.TurnTarget(entity.DirectionEast, entity.TurnRight))
	assert.Equal(t, entity.DirectionWest, entity.TurnTarget(entity.DirectionSouth, entity.TurnRight))
	assert.Equal(t, entity.DirectionNorth, entity.TurnTarget(entity.DirectionWest, entity.TurnRight))
	assert.Equal(t, entity.DirectionEast, entity.TurnTarget(entity.DirectionNorth, entity.TurnRight))
	// 左转为逆时针90度
	assert.Equal(t, entity.DirectionNorth, entity.TurnTarget(entity.DirectionEast, entity.TurnLeft))
	assert.Equal(t, entity.DirectionEast, entity.TurnTarget(entity.DirectionSouth, entity.TurnLeft))
	assert.Equal(t, entity.DirectionSouth, entity.TurnTarget(entity.DirectionWest, entity.TurnLeft))
	assert.Equal(t, entity.DirectionWest, entity.TurnTarget(entity.DirectionNorth, entity.TurnLeft))
	// 直行不变
	for d := entity.Direction(0); d < entity.DirectionCount; d++ {
		assert.Equal(t, d, entity.TurnTarget(d, entity.TurnStraight))
	}
}

func TestDirectionOpposite(t *testing.T) {
	assert.Equal(t, entity.DirectionWest, entity.DirectionEast.Opposite())
	assert.Equal(t, entity.DirectionNorth, entity.DirectionSouth.Opposite())
}

func TestAheadDistance(t *testing.T) {
	from := geometry.Point{X: 100, Y: 200}
	// 东向：+x为前方
	assert.Equal(t, 50.0, entity.AheadDistance(from, entity.DirectionEast, geometry.Point{X: 150, Y: 200}))
	assert.Equal(t, -50.0, entity.AheadDistance(from, entity.DirectionEast, geometry.Point{X: 50, Y: 200}))
	// 北向：-y为前方
	assert.Equal(t, 80.0, entity.AheadDistance(from, entity.DirectionNorth, geometry.Point{X: 100, Y: 120}))
	// 横向位移不计入前方距离
	assert.Equal(t, 50.0, entity.AheadDistance(from, entity.DirectionEast, geometry.Point{X: 150, Y: 300}))
}

func TestLateralOffset(t *testing.T) {
	from := geometry.Point{X: 100, Y: 200}
	assert.Equal(t, 0.0, entity.LateralOffset(from, entity.DirectionEast, geometry.Point{X: 500, Y: 200}))
	assert.Equal(t, 30.0, entity.LateralOffset(from, entity.DirectionEast, geometry.Point{X: 150, Y: 230}))
	assert.Equal(t, 30.0, entity.LateralOffset(from, entity.DirectionWest, geometry.Point{X: 150, Y: 230}))
	assert.Equal(t, 25.0, entity.LateralOffset(from, entity.DirectionSouth, geometry.Point{X: 125, Y: 400}))
}

func TestVehicleKind(t *testing.T) {
	assert.True(t, entity.KindAmbulance.IsEmergency())
	assert.True(t, entity.KindFireTruck.IsEmergency())
	assert.True(t, entity.KindPolice.IsEmergency())
	assert.False(t, entity.KindCar.IsEmergency())
	assert.False(t, entity.KindBus.IsEmergency())
	assert.False(t, entity.KindTruck.IsEmergency())
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "stopped (queue)", entity.StatusQueued.String())
	assert.Equal(t, "turning", entity.StatusTurning.String())
}
