package task_test

import (
	"testing"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/YashasJKumar/V2I-System/entity"
	"github.com/YashasJKumar/V2I-System/task"
	"github.com/YashasJKumar/V2I-System/utils/config"
	"github.com/stretchr/testify/assert"
)

func newTask(t *testing.T, c config.Config) *task.Context {
	ctx, err := task.NewContext(c)
	assert.NoError(t, err)
	ctx.Init()
	return ctx
}

func TestStraightDriveRemoval(t *testing.T) {
	ctx := newTask(t, config.Default())
	id, err := ctx.SpawnVehicle(entity.KindCar, entity.TurnStraight)
	assert.NoError(t, err)

	// 横穿画布最多15秒，加上信号等待也远小于200秒
	for i := 0; i < 4000; i++ {
		ctx.Step()
	}
	snap := ctx.Snapshot()
	assert.Empty(t, snap.Vehicles)
	assert.Equal(t, int32(1), snap.Stats.TotalSpawned)
	_, err = ctx.VehicleManager().GetOrError(id)
	assert.Error(t, err)
}

func TestLaneLocking(t *testing.T) {
	ctx := newTask(t, config.Default())
	for i := 0; i < 6; i++ {
		_, err := ctx.SpawnVehicle(entity.KindCar, entity.TurnStraight)
		assert.NoError(t, err)
	}
	grid := ctx.RoadGrid()
	for i := 0; i < 500; i++ {
		ctx.Step()
		for _, v := range ctx.Snapshot().Vehicles {
			if v.Status == entity.StatusTurning {
				continue
			}
			center := grid.LaneCenter(v.RoadID, v.Lane, v.Direction)
			if v.Direction.Axis() == entity.AxisEW {
				assert.InDelta(t, center, v.Y, 1e-9)
			} else {
				assert.InDelta(t, center, v.X, 1e-9)
			}
		}
	}
}

func TestNoOverlapFollowing(t *testing.T) {
	ctx := newTask(t, config.Default())
	// 错峰生成，避免同一生成点上的瞬时重叠
	for i := 0; i < 8; i++ {
		_, err := ctx.SpawnVehicle(entity.KindCar, entity.TurnStraight)
		assert.NoError(t, err)
		for j := 0; j < 60; j++ {
			ctx.Step()
		}
	}
	cfg := ctx.RuntimeConfig().C.Vehicle
	for i := 0; i < 1000; i++ {
		ctx.Step()
		vehicles := ctx.Snapshot().Vehicles
		for _, a := range vehicles {
			for _, b := range vehicles {
				if a.ID == b.ID || a.Direction != b.Direction || a.RoadID != b.RoadID || a.Lane != b.Lane {
					continue
				}
				dx, dy := a.X-b.X, a.Y-b.Y
				dist := dx*dx + dy*dy
				// 同道同向车辆间距不跌破安全距离的一半（跟车减速生效）
				min := cfg.SafeDistance / 2
				assert.GreaterOrEqual(t, dist, min*min,
					"vehicles %d and %d overlap", a.ID, b.ID)
			}
		}
	}
}

func TestPauseLossless(t *testing.T) {
	ctx := newTask(t, config.Default())
	_, err := ctx.SpawnVehicle(entity.KindBus, entity.TurnStraight)
	assert.NoError(t, err)
	for i := 0; i < 10; i++ {
		ctx.Step()
	}
	before := ctx.Snapshot()

	ctx.SetPaused(true)
	for i := 0; i < 20; i++ {
		ctx.Step()
	}
	during := ctx.Snapshot()
	assert.True(t, during.Paused)
	assert.Equal(t, before.Step, during.Step)
	assert.Equal(t, before.T, during.T)
	assert.Equal(t, before.Vehicles, during.Vehicles)
	assert.Equal(t, before.Intersections, during.Intersections)

	// 恢复后从原处继续
	ctx.SetPaused(false)
	ctx.Step()
	after := ctx.Snapshot()
	assert.Equal(t, before.Step+1, after.Step)
}

func TestSpeedMultiplierScalesDT(t *testing.T) {
	// 同种子双实例：1倍速走两步与2倍速走一步位置一致
	a := newTask(t, config.Default())
	b := newTask(t, config.Default())
	idA, err := a.SpawnVehicle(entity.KindCar, entity.TurnStraight)
	assert.NoError(t, err)
	idB, err := b.SpawnVehicle(entity.KindCar, entity.TurnStraight)
	assert.NoError(t, err)
	assert.Equal(t, idA, idB)

	assert.NoError(t, b.SetSpeedMultiplier(2))
	a.Step()
	a.Step()
	b.Step()

	va := a.Snapshot().Vehicles
	vb := b.Snapshot().Vehicles
	assert.Len(t, va, 1)
	assert.Len(t, vb, 1)
	assert.InDelta(t, va[0].X, vb[0].X, 1e-9)
	assert.InDelta(t, va[0].Y, vb[0].Y, 1e-9)

	assert.Error(t, b.SetSpeedMultiplier(0))
}

func TestCommDisabledStateIdentical(t *testing.T) {
	// 关闭通信模拟后，车辆与路口状态逐位一致
	enabled := newTask(t, config.Default())
	cfg := config.Default()
	cfg.Control.Comm.Enabled = false
	disabled := newTask(t, cfg)

	spawn := func(ctx *task.Context) {
		_, err := ctx.SpawnVehicle(entity.KindCar, entity.TurnStraight)
		assert.NoError(t, err)
		_, err = ctx.SpawnVehicle(entity.KindAmbulance, entity.TurnRight)
		assert.NoError(t, err)
		_, err = ctx.SpawnVehicle(entity.KindBus, entity.TurnStraight)
		assert.NoError(t, err)
	}
	spawn(enabled)
	spawn(disabled)

	for i := 0; i < 200; i++ {
		enabled.Step()
		disabled.Step()
	}
	se := enabled.Snapshot()
	sd := disabled.Snapshot()
	assert.Equal(t, se.Vehicles, sd.Vehicles)
	assert.Equal(t, se.Intersections, sd.Intersections)
	assert.Equal(t, se.EmergencyActive, sd.EmergencyActive)
	assert.Empty(t, sd.Links)
}

func TestPreemptionLifecycle(t *testing.T) {
	ctx := newTask(t, config.Default())
	_, err := ctx.SpawnVehicle(entity.KindAmbulance, entity.TurnStraight)
	assert.NoError(t, err)

	rc := ctx.RuntimeConfig()
	pre := rc.C.Preemption
	footprint := rc.G.Footprint
	// 快照中的抢占簿记基于上一步位置求解，判定距离留出一步位移的余量
	slack := rc.C.Vehicle.EmergencySpeed * rc.C.Step.Interval

	sawOverride := false
	for i := 0; i < 1000; i++ {
		ctx.Step()
		snap := ctx.Snapshot()
		var amb *entity.VehicleView
		for j := range snap.Vehicles {
			if snap.Vehicles[j].IsEmergency {
				amb = &snap.Vehicles[j]
			}
		}
		if amb == nil {
			break // 到达终点已移除
		}
		pos := geometry.Point{X: amb.X, Y: amb.Y}
		for _, iv := range snap.Intersections {
			site := geometry.Point{X: iv.X, Y: iv.Y}
			dist := entity.Distance(pos, site)
			if iv.EmergencyOverride {
				sawOverride = true
				// 驶出解除距离后一步内必须解除
				assert.LessOrEqual(t, dist, pre.ClearDistance+slack,
					"intersection %d still overridden at distance %.1f", iv.ID, dist)
			}
			ahead := entity.AheadDistance(pos, amb.Direction, site)
			lateral := entity.LateralOffset(pos, amb.Direction, site)
			if ahead > 0 && lateral <= footprint && dist < pre.MinDistance {
				// 逼近到最小距离之前，抢占与绿灯必须已经就位
				assert.True(t, iv.EmergencyOverride,
					"intersection %d not overridden at distance %.1f", iv.ID, dist)
				assert.Equal(t, entity.LightStateGreen, iv.Signals[amb.Direction].State,
					"intersection %d not green for approach at distance %.1f", iv.ID, dist)
			}
		}
	}
	assert.True(t, sawOverride)

	// 应急车辆离场后不留任何抢占
	for i := 0; i < 3; i++ {
		ctx.Step()
	}
	for _, iv := range ctx.Snapshot().Intersections {
		assert.False(t, iv.EmergencyOverride)
	}
}

func TestEmergencyActiveFlag(t *testing.T) {
	ctx := newTask(t, config.Default())
	snap := ctx.Snapshot()
	assert.False(t, snap.EmergencyActive)

	_, err := ctx.SpawnVehicle(entity.KindFireTruck, entity.TurnStraight)
	assert.NoError(t, err)
	ctx.Step()
	ctx.Step()
	assert.True(t, ctx.Snapshot().EmergencyActive)
}

func TestRemoveVehicleCommand(t *testing.T) {
	ctx := newTask(t, config.Default())
	id, err := ctx.SpawnVehicle(entity.KindTruck, entity.TurnStraight)
	assert.NoError(t, err)
	ctx.Step()
	assert.Len(t, ctx.Snapshot().Vehicles, 1)

	assert.NoError(t, ctx.RemoveVehicle(id))
	ctx.Step()
	assert.Empty(t, ctx.Snapshot().Vehicles)

	assert.Error(t, ctx.RemoveVehicle(9999))
}

func TestSpawnIDsStrictlyIncreasing(t *testing.T) {
	ctx := newTask(t, config.Default())
	last := int32(-1)
	for i := 0; i < 20; i++ {
		id, err := ctx.SpawnVehicle(entity.KindCar, entity.TurnStraight)
		assert.NoError(t, err)
		assert.Greater(t, id, last)
		last = id
	}
}
