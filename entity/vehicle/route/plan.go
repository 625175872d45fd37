package route

import (
	"git.fiblab.net/general/common/v2/geometry"
	"github.com/YashasJKumar/V2I-System/entity"
)

// Plan 车辆的行驶计划
// 功能：生成时一次性计算，之后不可变；是"在哪个路口转弯"的唯一权威
// 说明：几何路线形状与转弯执行时机解耦，Waypoints只描述转弯弧线，
// TurnIntersectionID决定在哪个路口提交转向
type Plan struct {
	RoadID    int32
	Lane      int32 // 1内侧/2外侧
	Direction entity.Direction

	Start       geometry.Point
	Destination geometry.Point // 直行终点（转弯计划中作为放弃转弯后的回退终点）

	Turn               entity.TurnDirection
	TurnIntersectionID int32            // 计划转弯路口ID，-1表示无
	Waypoints          []geometry.Point // 转弯弧线途经点，仅转弯计划非空，末项为路口出口

	// 转弯提交后的行驶参数（生成时预计算）
	ExitRoadID      int32
	ExitLane        int32
	ExitDirection   entity.Direction
	ExitDestination geometry.Point
}

// HasTurn 判断是否为转弯计划
func (p *Plan) HasTurn() bool {
	return p.Turn != entity.TurnStraight && p.TurnIntersectionID >= 0
}
