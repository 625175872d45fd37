package vehicle

import (
	"fmt"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/YashasJKumar/V2I-System/entity"
	"github.com/YashasJKumar/V2I-System/entity/vehicle/route"
	"github.com/YashasJKumar/V2I-System/utils/container"
)

// vehicleRuntime 车辆运行时数据结构
// 功能：每步由运动学推进的全部可变状态
// 说明：snapshot/runtime分离，本步所有"前车"判定都针对其他车辆的
// 快照（上一步末状态）进行，避免更新顺序带来的伪差异
type vehicleRuntime struct {
	XY        geometry.Point
	Direction entity.Direction
	RoadID    int32
	Lane      int32 // 1内侧/2外侧
	V         float64
	Status    entity.Status
	Stopped   bool

	WaypointIndex int  // 当前途经点下标，-1表示不在转弯路径上
	TurnDone      bool // 转向已提交
	TurnAborted   bool // 转弯已放弃（回退直行）
	Removed       bool // 本步到达终点，待移除
}

// Vehicle 车辆实体
// 功能：承载车辆标识、属性、行驶计划与运动学状态
// 生命周期：由生成命令创建，每步由运动学推进，
// 到达终点（距离小于判定阈值）后移除出活跃集合
type Vehicle struct {
	container.IncrementalItemBase

	ctx entity.ITaskContext

	id    int32
	kind  entity.VehicleKind
	speed float64 // 标称速度（px/s）
	plan  *route.Plan

	controller *controller

	removeRequested bool // 外部移除请求，下一个步边界生效

	snapshot, runtime vehicleRuntime
}

// newVehicle 创建并初始化一个新的车辆实例
// 功能：根据行驶计划设定初始运动学状态
// 说明：转弯计划从首个途经点开始跟踪；其余计划直接跟踪直行终点，
// 二者同一时刻有且只有一个处于活动状态
func newVehicle(ctx entity.ITaskContext, id int32, kind entity.VehicleKind, speed float64, plan *route.Plan) *Vehicle {
	v := &Vehicle{
		ctx:   ctx,
		id:    id,
		kind:  kind,
		speed: speed,
		plan:  plan,
	}
	wpIndex := -1
	if len(plan.Waypoints) > 0 {
		wpIndex = 0
	}
	v.runtime = vehicleRuntime{
		XY:            plan.Start,
		Direction:     plan.Direction,
		RoadID:        plan.RoadID,
		Lane:          plan.Lane,
		V:             speed,
		Status:        entity.StatusMoving,
		WaypointIndex: wpIndex,
	}
	v.snapshot = v.runtime
	v.controller = newController(v)
	return v
}

// prepare 准备阶段，写入快照
func (v *Vehicle) prepare() {
	v.snapshot = v.runtime
}

// update 更新阶段，执行车辆的运动学推进
// 参数：dt-等效时间步长
// 返回：是否到达终点（待移除）
func (v *Vehicle) update(dt float64) bool {
	rt := v.snapshot
	v.controller.update(&rt, dt)
	v.runtime = rt
	return rt.Removed
}

// getter（读取快照）

// ID 获取车辆的唯一标识符
func (v *Vehicle) ID() int32 {
	return v.id
}

// Kind 获取车辆类型
func (v *Vehicle) Kind() entity.VehicleKind {
	return v.kind
}

// IsEmergency 判断是否为应急车辆
func (v *Vehicle) IsEmergency() bool {
	return v.kind.IsEmergency()
}

// XY 获取车辆位置
func (v *Vehicle) XY() geometry.Point {
	return v.snapshot.XY
}

// Direction 获取当前行驶方向
func (v *Vehicle) Direction() entity.Direction {
	return v.snapshot.Direction
}

// V 获取当前速度
func (v *Vehicle) V() float64 {
	return v.snapshot.V
}

// RoadID 获取所在道路
func (v *Vehicle) RoadID() int32 {
	return v.snapshot.RoadID
}

// Lane 获取所在车道号
func (v *Vehicle) Lane() int32 {
	return v.snapshot.Lane
}

// Status 获取状态标签
func (v *Vehicle) Status() entity.Status {
	return v.snapshot.Status
}

// Stopped 判断是否处于停车状态
func (v *Vehicle) Stopped() bool {
	return v.snapshot.Stopped
}

// 运行时读取（更新序列内串行使用）

// RuntimeXY 获取本步更新后的最新位置
// 说明：供更新序列中位于运动学之后的串行组件（通信模拟）读取，
// 并行的准备/更新阶段只允许读取上方的快照getter
func (v *Vehicle) RuntimeXY() geometry.Point {
	return v.runtime.XY
}

// RuntimeDirection 获取本步更新后的最新行驶方向
func (v *Vehicle) RuntimeDirection() entity.Direction {
	return v.runtime.Direction
}

// RuntimeV 获取本步更新后的最新速度
func (v *Vehicle) RuntimeV() float64 {
	return v.runtime.V
}

// TurnDirection 获取整体转向意图
func (v *Vehicle) TurnDirection() entity.TurnDirection {
	return v.plan.Turn
}

// TurnIntersectionID 获取计划转弯路口ID（-1表示无）
func (v *Vehicle) TurnIntersectionID() int32 {
	return v.plan.TurnIntersectionID
}

// ToView 产生车辆的快照视图
func (v *Vehicle) ToView() entity.VehicleView {
	return entity.VehicleView{
		ID:                 v.id,
		X:                  v.snapshot.XY.X,
		Y:                  v.snapshot.XY.Y,
		Direction:          v.snapshot.Direction,
		Kind:               v.kind,
		IsEmergency:        v.IsEmergency(),
		V:                  v.snapshot.V,
		Stopped:            v.snapshot.Stopped,
		Status:             v.snapshot.Status,
		RoadID:             v.snapshot.RoadID,
		Lane:               v.snapshot.Lane,
		TurnDirection:      v.plan.Turn,
		TurnIntersectionID: v.plan.TurnIntersectionID,
	}
}

func (v *Vehicle) String() string {
	return fmt.Sprintf("Vehicle{id=%d, kind=%v, xy=(%.1f,%.1f), dir=%v, status=%v}",
		v.id, v.kind, v.snapshot.XY.X, v.snapshot.XY.Y, v.snapshot.Direction, v.snapshot.Status)
}
