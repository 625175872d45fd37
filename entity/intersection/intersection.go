package intersection

import (
	"flag"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/YashasJKumar/V2I-System/entity"
	"github.com/YashasJKumar/V2I-System/entity/intersection/signal"
)

var (
	defaultGreenTime  = flag.Float64("signal.green_time", 10, "绿灯时长默认值（秒），配置未指定时生效")
	defaultYellowTime = flag.Float64("signal.yellow_time", 3, "黄灯时长默认值（秒），配置未指定时生效")
)

// overrideRuntime 抢占簿记运行时数据
type overrideRuntime struct {
	override  bool                 // 是否处于应急抢占
	turn      entity.TurnDirection // 抢占车辆在本路口的动作
	vehicleID int32                // 持有抢占的车辆ID，-1表示无
}

// Intersection 路口实体
// 功能：持有一个路口的四方向信号状态与抢占簿记
// 说明：创建于仿真启动，每步更新，运行期间不销毁
type Intersection struct {
	ctx entity.ITaskContext

	id     int32
	site   entity.IntersectionSite
	signal signal.ISignal // 信号控制器模块

	snapshot, runtime overrideRuntime
}

// newIntersection 创建并初始化一个新的路口实例
// 功能：根据路口位置与信控配置创建路口对象
// 参数：ctx-任务上下文，site-路口位置
// 返回：初始化完成的路口实例
func newIntersection(ctx entity.ITaskContext, site entity.IntersectionSite) *Intersection {
	cfg := ctx.RuntimeConfig().C.Signal
	green, yellow := cfg.GreenTime, cfg.YellowTime
	if green <= 0 {
		green = *defaultGreenTime
	}
	if yellow <= 0 {
		yellow = *defaultYellowTime
	}
	var s signal.ISignal
	switch cfg.Model {
	case "two_phase":
		s = signal.NewTwoPhase(site.ID, green, yellow)
	default:
		s = signal.NewFourPhase(site.ID, green, yellow)
	}
	return &Intersection{
		ctx:     ctx,
		id:      site.ID,
		site:    site,
		signal:  s,
		runtime: overrideRuntime{vehicleID: -1},
	}
}

// prepare 准备阶段，写入快照
func (i *Intersection) prepare() {
	i.snapshot = i.runtime
	i.signal.Prepare()
}

// update 更新阶段，推进信号计时
// 参数：dt-等效时间步长
// 说明：抢占期间信号控制器内部完全跳过计时推进
func (i *Intersection) update(dt float64) {
	i.signal.Update(dt)
}

// ID 获取路口的唯一标识符
func (i *Intersection) ID() int32 {
	if i == nil {
		return -1
	}
	return i.id
}

// XY 获取路口位置
func (i *Intersection) XY() geometry.Point {
	return i.site.XY
}

// SignalFor 获取指定方向的当前步信号状态
// 说明：读取的是本步信号推进与抢占写入之后的状态，供运动学使用
func (i *Intersection) SignalFor(d entity.Direction) entity.LightState {
	return i.signal.Current()[d]
}

// RemainingTime 获取当前相位剩余时间
func (i *Intersection) RemainingTime() float64 {
	return i.signal.RemainingTime()
}

// Overridden 是否处于应急抢占
func (i *Intersection) Overridden() bool {
	return i.runtime.override
}

// OverrideTurn 获取抢占车辆在本路口的动作
func (i *Intersection) OverrideTurn() entity.TurnDirection {
	return i.runtime.turn
}

// OverrideVehicle 获取持有抢占的车辆ID
func (i *Intersection) OverrideVehicle() int32 {
	if !i.runtime.override {
		return -1
	}
	return i.runtime.vehicleID
}

// ApplyOverride 应用应急抢占
// 功能：强制给定方向为绿、其余为红，挂起计时推进并记录抢占簿记
// 参数：greens-强制为绿的方向，turn-抢占车辆在本路口的动作，vehicleID-抢占车辆
func (i *Intersection) ApplyOverride(greens []entity.Direction, turn entity.TurnDirection, vehicleID int32) {
	i.signal.SetOverride(greens)
	i.runtime = overrideRuntime{
		override:  true,
		turn:      turn,
		vehicleID: vehicleID,
	}
}

// ClearOverride 解除应急抢占
// 功能：清除抢占簿记，信号控制器从安全默认相位恢复计时
func (i *Intersection) ClearOverride() {
	i.signal.ClearOverride()
	i.runtime = overrideRuntime{vehicleID: -1}
}

// ToView 产生路口的快照视图
func (i *Intersection) ToView() entity.IntersectionView {
	states := i.signal.States()
	view := entity.IntersectionView{
		ID:                i.id,
		X:                 i.site.XY.X,
		Y:                 i.site.XY.Y,
		EmergencyOverride: i.snapshot.override,
		EmergencyTurn:     i.snapshot.turn,
	}
	for d := 0; d < entity.DirectionCount; d++ {
		view.Signals[d] = entity.SignalView{
			State:         states[d],
			RemainingTime: i.signal.RemainingTime(),
		}
	}
	return view
}
