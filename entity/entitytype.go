package entity

import (
	"fmt"
	"math"

	"git.fiblab.net/general/common/v2/geometry"
)

// Direction 行驶方向
// 说明：屏幕坐标系，y轴向下；枚举顺序即四相位信控的轮转顺序{北,东,南,西}
type Direction int32

const (
	DirectionNorth Direction = iota // 北（-y）
	DirectionEast                   // 东（+x）
	DirectionSouth                  // 南（+y）
	DirectionWest                   // 西（-x）

	DirectionCount = 4
)

// directionVectors 各方向的单位向量
var directionVectors = [DirectionCount]geometry.Point{
	{X: 0, Y: -1},
	{X: 1, Y: 0},
	{X: 0, Y: 1},
	{X: -1, Y: 0},
}

// Valid 判断方向是否合法
func (d Direction) Valid() bool {
	return d >= DirectionNorth && d < DirectionCount
}

// Vector 获取方向的单位向量
// 说明：非法方向属于编程错误，直接panic
func (d Direction) Vector() geometry.Point {
	if !d.Valid() {
		panic(fmt.Sprintf("entity: invalid direction %d", d))
	}
	return directionVectors[d]
}

// Axis 获取方向所在的通行轴
// 返回：南北向返回AxisNS，东西向返回AxisEW
func (d Direction) Axis() Axis {
	if d == DirectionNorth || d == DirectionSouth {
		return AxisNS
	}
	return AxisEW
}

// Opposite 获取相反方向
func (d Direction) Opposite() Direction {
	return (d + 2) % DirectionCount
}

func (d Direction) String() string {
	switch d {
	case DirectionNorth:
		return "north"
	case DirectionEast:
		return "east"
	case DirectionSouth:
		return "south"
	case DirectionWest:
		return "west"
	}
	return fmt.Sprintf("direction(%d)", int32(d))
}

// Axis 通行轴
type Axis int32

const (
	AxisNS Axis = iota // 南北轴（垂直道路）
	AxisEW             // 东西轴（水平道路）
)

// LightState 信号灯状态
type LightState int32

const (
	LightStateGreen LightState = iota
	LightStateYellow
	LightStateRed
)

func (s LightState) String() string {
	switch s {
	case LightStateGreen:
		return "green"
	case LightStateYellow:
		return "yellow"
	case LightStateRed:
		return "red"
	}
	return fmt.Sprintf("light(%d)", int32(s))
}

// TurnDirection 转向意图
type TurnDirection int32

const (
	TurnStraight TurnDirection = iota
	TurnLeft
	TurnRight
)

func (t TurnDirection) String() string {
	switch t {
	case TurnStraight:
		return "straight"
	case TurnLeft:
		return "left"
	case TurnRight:
		return "right"
	}
	return fmt.Sprintf("turn(%d)", int32(t))
}

// TurnTarget 计算转向后的行驶方向
// 功能：右转为顺时针90度，左转为逆时针90度，直行不变
// 说明：映射表内部自洽（如东向右转->南，东向左转->北），四个方向均成立
func TurnTarget(d Direction, t TurnDirection) Direction {
	switch t {
	case TurnRight:
		return (d + 1) % DirectionCount
	case TurnLeft:
		return (d + 3) % DirectionCount
	}
	return d
}

// VehicleKind 车辆类型
type VehicleKind int32

const (
	KindCar VehicleKind = iota
	KindBus
	KindTruck
	KindAmbulance
	KindFireTruck
	KindPolice
)

// IsEmergency 判断是否为应急车辆
func (k VehicleKind) IsEmergency() bool {
	switch k {
	case KindAmbulance, KindFireTruck, KindPolice:
		return true
	}
	return false
}

func (k VehicleKind) String() string {
	switch k {
	case KindCar:
		return "car"
	case KindBus:
		return "bus"
	case KindTruck:
		return "truck"
	case KindAmbulance:
		return "ambulance"
	case KindFireTruck:
		return "fire_truck"
	case KindPolice:
		return "police"
	}
	return fmt.Sprintf("kind(%d)", int32(k))
}

// Status 车辆状态标签
type Status int32

const (
	StatusMoving    Status = iota // 正常行驶
	StatusStopped                 // 停车（信号灯或应急避让）
	StatusFollowing               // 跟车减速
	StatusQueued                  // 队列中停车
	StatusTurning                 // 转弯中
)

func (s Status) String() string {
	switch s {
	case StatusMoving:
		return "moving"
	case StatusStopped:
		return "stopped"
	case StatusFollowing:
		return "following"
	case StatusQueued:
		return "stopped (queue)"
	case StatusTurning:
		return "turning"
	}
	return fmt.Sprintf("status(%d)", int32(s))
}

// Road 道路描述
// 说明：Coord为道路中心线的固定坐标（东西向道路为y，南北向道路为x）
type Road struct {
	ID    int32
	Axis  Axis
	Coord float64
}

// IntersectionSite 路口位置描述
type IntersectionSite struct {
	ID      int32
	XY      geometry.Point
	HRoadID int32 // 经过本路口的水平道路
	VRoadID int32 // 经过本路口的垂直道路
}

// LinkType 通信链路类型
type LinkType int32

const (
	LinkV2V LinkType = iota // 车-车链路
	LinkV2I                 // 车-路口链路
)

// V2IMessage 应急车辆向路口发送的优先通行请求消息
// 说明：Intention为整体转向意图，NextAction为在最近路口的实际动作，
// 当转弯点在两个路口之外时二者可能不同
type V2IMessage struct {
	VehicleID  int32
	Direction  Direction
	Intention  TurnDirection
	NextAction TurnDirection
	ETA        float64 // 预计到达时间（秒）
	Distance   float64 // 当前距离（px）
}

// CommLink 单个广播周期内的通信链路记录
// 说明：逐周期全量重算，不跨周期保留
type CommLink struct {
	Type    LinkType
	From    geometry.Point
	To      geometry.Point
	Message *V2IMessage // 仅应急V2I链路携带
}

// SignalView 单方向信号的快照视图
type SignalView struct {
	State         LightState
	RemainingTime float64
}

// VehicleView 车辆快照视图
type VehicleView struct {
	ID                 int32
	X, Y               float64
	Direction          Direction
	Kind               VehicleKind
	IsEmergency        bool
	V                  float64
	Stopped            bool
	Status             Status
	RoadID             int32
	Lane               int32
	TurnDirection      TurnDirection
	TurnIntersectionID int32 // 计划转弯路口，-1表示无
}

// IntersectionView 路口快照视图
type IntersectionView struct {
	ID                int32
	X, Y              float64
	Signals           [DirectionCount]SignalView
	EmergencyOverride bool
	EmergencyTurn     TurnDirection
}

// Stats 聚合统计
type Stats struct {
	TotalSpawned    int32 // 累计生成车辆数
	EmergencyEvents int32 // 累计抢占事件数
	LiveLinks       int32 // 当前通信链路数
	V2IBroadcasts   int32 // 累计V2I广播数
}

// Snapshot 只读快照，供展示层每步读取
type Snapshot struct {
	Step            int32
	T               float64
	Paused          bool
	SpeedFactor     float64
	EmergencyActive bool
	Vehicles        []VehicleView
	Intersections   []IntersectionView
	Links           []CommLink
	Stats           Stats
}

// Distance 计算两点间的平面距离
func Distance(a, b geometry.Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// AheadDistance 计算目标点沿行驶方向的有向前方距离
// 功能：点积式前方判定，正值表示目标在行驶方向前方
func AheadDistance(from geometry.Point, d Direction, to geometry.Point) float64 {
	v := d.Vector()
	return (to.X-from.X)*v.X + (to.Y-from.Y)*v.Y
}

// LateralOffset 计算目标点相对行驶方向的横向偏移量（绝对值）
func LateralOffset(from geometry.Point, d Direction, to geometry.Point) float64 {
	v := d.Vector()
	return math.Abs((to.X-from.X)*v.Y - (to.Y-from.Y)*v.X)
}
