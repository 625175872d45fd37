package vehicle

import (
	"math"

	"git.fiblab.net/general/common/v2/geometry"
	"git.fiblab.net/general/common/v2/mathutil"
	"github.com/YashasJKumar/V2I-System/entity"
)

// controller 车辆控制器
// 功能：管理单台车辆每步的全部运动学决策：终点判定、跟车避撞、
// 信号合规、应急接近预停、途经点推进与车道锁定直线运动
// 说明：所有对其他车辆的读取都针对其快照（上一步末状态）
type controller struct {
	self *Vehicle // 模块所在车辆
}

// newController 创建新的车辆控制器
func newController(self *Vehicle) *controller {
	return &controller{self: self}
}

// update 执行一步运动学推进
// 参数：rt-本车运行时状态（入参为快照副本，原地推进），dt-等效时间步长
// 算法说明（按序执行）：
// 1. 终点判定：距最终目标小于判定阈值则标记移除
// 2. 跟车避撞：应急车辆拥有绝对路权，完全跳过；其余车辆取最近前车，
//    间距小于安全距离时前车停则停（排队），否则按前车速度乘减速系数跟行
// 3. 信号合规：应急车辆与获应急放行的车辆无条件豁免
// 4. 应急接近预停：有应急车辆逼近的路口，正在接近（尚未进入路口范围）
//    的车辆提前停车让行；已在路口范围内的车辆继续通过以免堵死路口
// 5. 途经点推进：接近当前途经点则切换下一个；方向变更只在最后一个
//    途经点提交，且要求当前最近路口与计划转弯路口一致
// 6. 直线运动：沿单位向量向当前目标移动，随后将横向坐标锁定到
//    车道中心线（转弯弧线上除外）
func (c *controller) update(rt *vehicleRuntime, dt float64) {
	cfg := &c.self.ctx.RuntimeConfig().C

	// 1. 终点判定
	if entity.Distance(rt.XY, c.finalTarget(rt)) <= cfg.Vehicle.DestinationReach {
		rt.Removed = true
		rt.V = 0
		return
	}

	emergency := c.self.IsEmergency()
	clearance := c.self.ctx.PreemptionEngine().HasClearance(c.self.id)

	v := c.self.speed
	status := entity.StatusMoving
	stop := false

	// 2. 跟车避撞
	if !emergency {
		if lead, gap := c.findLead(rt); lead != nil && gap < cfg.Vehicle.SafeDistance {
			if lead.Stopped() {
				stop = true
				status = entity.StatusQueued
			} else {
				v = lead.V() * cfg.Vehicle.DecelerationFactor
				status = entity.StatusFollowing
			}
		}
	}

	// 3. 信号合规 与 4. 应急接近预停
	if !emergency && !clearance && !stop {
		if c.shouldStopAtSignal(rt) || c.shouldStopForEmergencyApproach(rt) {
			stop = true
			status = entity.StatusStopped
		}
	}

	if stop {
		rt.V = 0
		rt.Stopped = true
		rt.Status = status
		return
	}
	rt.Stopped = false

	// 6. 直线运动（目标为当前途经点或最终终点）
	target := c.currentTarget(rt)
	dx, dy := target.X-rt.XY.X, target.Y-rt.XY.Y
	if norm := math.Hypot(dx, dy); norm > 0 {
		step := math.Min(v*dt, norm)
		rt.XY.X += dx / norm * step
		rt.XY.Y += dy / norm * step
	}
	rt.V = v

	// 5. 途经点推进
	if rt.WaypointIndex >= 0 {
		c.progressWaypoints(rt, cfg.Vehicle.WaypointReach)
		if rt.WaypointIndex >= 1 {
			status = entity.StatusTurning
		}
	}
	// 车道锁定：横向坐标每步吸附到车道中心线，只有沿行驶方向的坐标自由
	if rt.WaypointIndex < 1 {
		c.lockToLane(rt)
	}
	rt.Status = status
}

// finalTarget 获取最终移除目标点
func (c *controller) finalTarget(rt *vehicleRuntime) geometry.Point {
	if rt.TurnDone {
		return c.self.plan.ExitDestination
	}
	return c.self.plan.Destination
}

// currentTarget 获取当前移动目标点
func (c *controller) currentTarget(rt *vehicleRuntime) geometry.Point {
	p := c.self.plan
	if rt.WaypointIndex >= 0 && rt.WaypointIndex < len(p.Waypoints) {
		return p.Waypoints[rt.WaypointIndex]
	}
	return c.finalTarget(rt)
}

// findLead 查找最近前车
// 功能：在全部车辆快照中筛选同方向、横向偏移在车道容差内、
// 且位于行驶方向前方的车辆，返回其中最近者及其间距
func (c *controller) findLead(rt *vehicleRuntime) (entity.IVehicle, float64) {
	cfg := &c.self.ctx.RuntimeConfig().C.Vehicle
	var lead entity.IVehicle
	best := mathutil.INF
	for _, o := range c.self.ctx.VehicleManager().Vehicles() {
		if o.ID() == c.self.id {
			continue
		}
		if o.Direction() != rt.Direction {
			continue
		}
		if entity.LateralOffset(rt.XY, rt.Direction, o.XY()) > cfg.LaneTolerance {
			continue
		}
		ahead := entity.AheadDistance(rt.XY, rt.Direction, o.XY())
		if ahead <= 0 {
			continue
		}
		if ahead < best {
			best = ahead
			lead = o
		}
	}
	return lead, best
}

// shouldStopAtSignal 信号合规检查
// 功能：前方检查距离内存在本方向为红灯（或按策略黄灯）的路口则停车
// 说明：已进入路口物理范围的车辆不再停车，继续清空路口
func (c *controller) shouldStopAtSignal(rt *vehicleRuntime) bool {
	cfg := &c.self.ctx.RuntimeConfig().C
	footprint := c.self.ctx.RuntimeConfig().G.Footprint
	grid := c.self.ctx.RoadGrid()
	for _, site := range grid.SitesAhead(rt.XY, rt.Direction) {
		if entity.LateralOffset(rt.XY, rt.Direction, site.XY) > footprint {
			continue
		}
		ahead := entity.AheadDistance(rt.XY, rt.Direction, site.XY)
		if ahead > cfg.Vehicle.CheckDistance {
			// 前方路口按距离升序，后续只会更远
			break
		}
		if ahead <= footprint {
			return false
		}
		state := c.self.ctx.IntersectionManager().Get(site.ID).SignalFor(rt.Direction)
		return state == entity.LightStateRed ||
			(state == entity.LightStateYellow && cfg.Signal.StopOnYellow)
	}
	return false
}

// shouldStopForEmergencyApproach 应急接近预停检查
// 功能：若某路口检测范围内存在应急车辆，正在接近该路口且尚未进入
// 路口物理范围的车辆，在缓冲距离处提前停车，无视自身信号状态
func (c *controller) shouldStopForEmergencyApproach(rt *vehicleRuntime) bool {
	cfg := &c.self.ctx.RuntimeConfig().C.Preemption
	footprint := c.self.ctx.RuntimeConfig().G.Footprint
	vehicles := c.self.ctx.VehicleManager().Vehicles()
	for _, site := range c.self.ctx.RoadGrid().Sites() {
		active := false
		for _, o := range vehicles {
			if o.ID() == c.self.id || !o.IsEmergency() {
				continue
			}
			if entity.Distance(o.XY(), site.XY) <= cfg.DetectionDistance {
				active = true
				break
			}
		}
		if !active {
			continue
		}
		if entity.LateralOffset(rt.XY, rt.Direction, site.XY) > footprint {
			continue
		}
		ahead := entity.AheadDistance(rt.XY, rt.Direction, site.XY)
		if ahead <= footprint {
			// 已在路口范围内，继续通过而不是停在路口中央
			continue
		}
		if ahead <= footprint+cfg.StopThreshold {
			return true
		}
	}
	return false
}

// progressWaypoints 途经点推进与转向提交
// 功能：接近当前途经点则推进；最后一个途经点处提交转向，
// 仅当当前最近路口与计划转弯路口一致时生效，防止在多路口路径上
// 提前或重复转弯；不一致则放弃转弯回退直行
func (c *controller) progressWaypoints(rt *vehicleRuntime, reach float64) {
	plan := c.self.plan
	wp := plan.Waypoints[rt.WaypointIndex]
	if entity.Distance(rt.XY, wp) > reach {
		return
	}
	if rt.WaypointIndex < len(plan.Waypoints)-1 {
		rt.WaypointIndex++
		return
	}
	// 最后一个途经点：提交转向
	grid := c.self.ctx.RoadGrid()
	nearest := grid.NearestSite(rt.XY)
	if nearest.ID == plan.TurnIntersectionID {
		rt.Direction = plan.ExitDirection
		rt.RoadID = plan.ExitRoadID
		rt.Lane = plan.ExitLane
		rt.TurnDone = true
	} else {
		log.Warnf("vehicle %d planned turn at intersection %d but reached %d, continuing straight",
			c.self.id, plan.TurnIntersectionID, nearest.ID)
		rt.TurnAborted = true
	}
	rt.WaypointIndex = -1
}

// lockToLane 车道锁定
// 功能：将横向坐标吸附到RoadGrid给出的车道中心线权威坐标
func (c *controller) lockToLane(rt *vehicleRuntime) {
	center := c.self.ctx.RoadGrid().LaneCenter(rt.RoadID, rt.Lane, rt.Direction)
	if rt.Direction.Axis() == entity.AxisEW {
		rt.XY.Y = center
	} else {
		rt.XY.X = center
	}
}
