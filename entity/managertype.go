package entity

import "git.fiblab.net/general/common/v2/geometry"

// Manager依赖倒置

// entity/roadgrid/grid.go的依赖倒置
// 说明：静态几何，无副作用，全部为纯查询
type IRoadGrid interface {
	Roads() []Road
	// 输入Road ID，查找Road，如果不存在则panic
	GetRoad(id int32) Road
	// 输入Road ID，查找Road，如果不存在则返回error
	GetRoadOrError(id int32) (Road, error)

	// 给定道路、车道号（1内侧/2外侧）和行驶方向，返回车道中心线的权威坐标
	// （东西向道路返回y，南北向道路返回x）
	LaneCenter(roadID int32, lane int32, d Direction) float64
	// 给定路口与转弯后方向，返回车辆转弯后所在的道路
	RoadAfterTurn(intersectionID int32, d Direction) Road

	Sites() []IntersectionSite
	// 输入路口ID，查找路口位置，如果不存在则panic
	Site(id int32) IntersectionSite
	// 距离给定位置最近的路口
	NearestSite(pos geometry.Point) IntersectionSite
	// 沿给定方向位于前方的路口列表（按前方距离从近到远排序）
	SitesAhead(pos geometry.Point, d Direction) []IntersectionSite
	// 判断位置是否在某个路口的物理范围内
	InFootprint(pos geometry.Point, site IntersectionSite) bool
}

// entity/intersection/intersection.go的依赖倒置
type IIntersection interface {
	ID() int32
	XY() geometry.Point

	// 当前步信号状态（信号推进与抢占写入之后的状态，供运动学读取）
	SignalFor(d Direction) LightState
	RemainingTime() float64
	Overridden() bool
	OverrideTurn() TurnDirection
	OverrideVehicle() int32 // 持有抢占的车辆ID，-1表示无

	// 抢占写入钩子：强制给定方向为绿、其余为红，并挂起计时推进
	ApplyOverride(greens []Direction, turn TurnDirection, vehicleID int32)
	// 解除抢占：从安全默认相位恢复计时推进
	ClearOverride()

	ToView() IntersectionView // 基于快照的输出视图
}

// entity/intersection/manager.go的依赖倒置
type IIntersectionManager interface {
	Init()

	// 输入路口ID，查找路口，如果不存在则panic
	Get(id int32) IIntersection
	// 输入路口ID，查找路口，如果不存在则返回error
	GetOrError(id int32) (IIntersection, error)
	Intersections() []IIntersection

	Prepare()          // 准备阶段：快照更新
	Update(dt float64) // 更新阶段：信号计时推进
}

// entity/vehicle/vehicle.go的依赖倒置（快照读取接口）
type IVehicle interface {
	ID() int32
	Kind() VehicleKind
	IsEmergency() bool

	XY() geometry.Point
	Direction() Direction
	V() float64
	RoadID() int32
	Lane() int32
	Status() Status
	Stopped() bool

	TurnDirection() TurnDirection
	TurnIntersectionID() int32 // 计划转弯路口ID，-1表示无

	// 本步更新后的最新状态，供更新序列中位于运动学之后的串行组件
	// （通信模拟）读取；并行的准备/更新阶段只允许读取上方的快照getter
	RuntimeXY() geometry.Point
	RuntimeDirection() Direction
	RuntimeV() float64

	ToView() VehicleView
}

// entity/vehicle/manager.go的依赖倒置
type IVehicleManager interface {
	Init()

	// 输入车辆ID，查找车辆，如果不存在则panic
	Get(id int32) IVehicle
	// 输入车辆ID，查找车辆，如果不存在则返回error
	GetOrError(id int32) (IVehicle, error)
	// 当前活跃车辆（本步成员集合，更新阶段内不变）
	Vehicles() []IVehicle

	// 生成车辆（延迟到下一个准备阶段加入活跃集合）
	Spawn(kind VehicleKind, turn TurnDirection) (int32, error)
	// 移除车辆（延迟到下一个准备阶段生效）
	Remove(id int32) error

	TotalSpawned() int32

	Prepare()          // 准备阶段：应用生成/移除，快照更新
	Update(dt float64) // 更新阶段：运动学推进
}

// entity/preemption/preemption.go的依赖倒置
type IPreemptionEngine interface {
	Prepare()
	Update() // 重算抢占计划并写入路口

	// 查询本步被授予应急放行的车辆（无视红灯以让出通道）
	HasClearance(vehicleID int32) bool
	EmergencyActive() bool
	Events() int32 // 累计抢占事件数
}
