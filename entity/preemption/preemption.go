package preemption

import (
	"sort"

	"github.com/YashasJKumar/V2I-System/entity"
	"github.com/YashasJKumar/V2I-System/utils/config"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("module", "preemption")

// Claim 单个路口的抢占请求
type Claim struct {
	VehicleID int32                // 抢占车辆
	Green     entity.Direction     // 强制为绿的方向
	Turn      entity.TurnDirection // 抢占车辆在本路口的动作
}

// Plan 一步的完整抢占计划
// 说明：纯数据，由Resolve全量重算，引擎负责写入路口
type Plan struct {
	Overrides  map[int32]Claim    // 路口ID -> 抢占请求
	Holds      map[int32]struct{} // 维持现有抢占的路口（应急车辆仍在解除距离内）
	Clearances map[int32]struct{} // 获应急放行的普通车辆ID

	EmergencyActive bool
}

// Resolve 重算抢占计划
// 功能：对活跃应急车辆x全部路口求解本步的信号抢占与放行集合
// 参数：p-抢占配置，laneTolerance-同车道判定容差，footprint-路口物理范围，
// sites-全部路口位置，vehicles-活跃车辆快照
// 返回：本步抢占计划
// 算法说明：
//  1. 检测窗口：应急车辆到路口距离落在(最小距离,检测距离]、路口位于其
//     行驶方向前方且横向对齐时，产生抢占请求
//  2. 目标方向：若该路口即计划转弯路口且意图非直行，授予转出方向绿灯，
//     否则授予当前行驶方向
//  3. 多车仲裁：按车辆ID升序处理，每个路口先到先得，保证确定性
//  4. 维持集合：路口附近（解除距离内）仍有应急车辆时维持现有抢占
//  5. 排队放行级联：应急车辆同车道前方、且挡在其与前方某路口之间的
//     普通车辆获得放行，无视红灯驶离以让出通道
func Resolve(p config.Preemption, laneTolerance, footprint float64, sites []entity.IntersectionSite, vehicles []entity.IVehicle) *Plan {
	plan := &Plan{
		Overrides:  make(map[int32]Claim),
		Holds:      make(map[int32]struct{}),
		Clearances: make(map[int32]struct{}),
	}
	emergencies := lo.Filter(vehicles, func(v entity.IVehicle, _ int) bool { return v.IsEmergency() })
	if len(emergencies) == 0 {
		return plan
	}
	plan.EmergencyActive = true
	sort.Slice(emergencies, func(i, j int) bool { return emergencies[i].ID() < emergencies[j].ID() })

	for _, v := range emergencies {
		for _, site := range sites {
			dist := entity.Distance(v.XY(), site.XY)
			if dist <= p.ClearDistance {
				plan.Holds[site.ID] = struct{}{}
			}
			if dist <= p.MinDistance || dist > p.DetectionDistance {
				continue
			}
			if entity.AheadDistance(v.XY(), v.Direction(), site.XY) <= 0 {
				continue
			}
			if entity.LateralOffset(v.XY(), v.Direction(), site.XY) > footprint {
				continue
			}
			if _, taken := plan.Overrides[site.ID]; taken {
				continue
			}
			green := v.Direction()
			turn := entity.TurnStraight
			if site.ID == v.TurnIntersectionID() && v.TurnDirection() != entity.TurnStraight {
				turn = v.TurnDirection()
				green = entity.TurnTarget(v.Direction(), turn)
			}
			plan.Overrides[site.ID] = Claim{VehicleID: v.ID(), Green: green, Turn: turn}
		}

		// 排队放行级联
		for _, o := range vehicles {
			if o.IsEmergency() || o.Direction() != v.Direction() {
				continue
			}
			if entity.LateralOffset(v.XY(), v.Direction(), o.XY()) > laneTolerance {
				continue
			}
			ahead := entity.AheadDistance(v.XY(), v.Direction(), o.XY())
			if ahead <= 0 || ahead > p.DetectionDistance {
				continue
			}
			for _, site := range sites {
				if entity.LateralOffset(v.XY(), v.Direction(), site.XY) > footprint {
					continue
				}
				if entity.AheadDistance(v.XY(), v.Direction(), site.XY) > ahead {
					plan.Clearances[o.ID()] = struct{}{}
					break
				}
			}
		}
	}
	return plan
}

// Engine 应急抢占引擎
// 功能：每步全量重算抢占计划并写入路口，维护放行集合与统计
// 说明：引擎只做计划落地，求解全部在纯函数Resolve中完成
type Engine struct {
	ctx entity.ITaskContext

	clearances      map[int32]struct{}
	emergencyActive bool
	events          int32
}

// NewEngine 创建应急抢占引擎
func NewEngine(ctx entity.ITaskContext) *Engine {
	return &Engine{
		ctx:        ctx,
		clearances: make(map[int32]struct{}),
	}
}

// Prepare 准备阶段
// 说明：抢占计划每步全量重算，无跨步状态需要快照
func (e *Engine) Prepare() {}

// Update 更新阶段
// 功能：求解本步抢占计划并写入路口：新请求应用抢占，已有抢占在
// 应急车辆仍处解除距离内时维持，其余全部解除
func (e *Engine) Update() {
	cfg := e.ctx.RuntimeConfig()
	plan := Resolve(
		cfg.C.Preemption,
		cfg.C.Vehicle.LaneTolerance,
		cfg.G.Footprint,
		e.ctx.RoadGrid().Sites(),
		e.ctx.VehicleManager().Vehicles(),
	)
	e.clearances = plan.Clearances
	e.emergencyActive = plan.EmergencyActive

	for _, it := range e.ctx.IntersectionManager().Intersections() {
		if claim, ok := plan.Overrides[it.ID()]; ok {
			if !it.Overridden() {
				e.events++
				log.Debugf("intersection %d preempted by vehicle %d, green=%v",
					it.ID(), claim.VehicleID, claim.Green)
			}
			it.ApplyOverride([]entity.Direction{claim.Green}, claim.Turn, claim.VehicleID)
		} else if it.Overridden() {
			if _, hold := plan.Holds[it.ID()]; !hold {
				it.ClearOverride()
				log.Debugf("intersection %d preemption cleared", it.ID())
			}
		}
	}
}

// HasClearance 查询车辆是否获应急放行
func (e *Engine) HasClearance(vehicleID int32) bool {
	_, ok := e.clearances[vehicleID]
	return ok
}

// EmergencyActive 当前是否存在应急车辆
func (e *Engine) EmergencyActive() bool {
	return e.emergencyActive
}

// Events 累计抢占事件数
func (e *Engine) Events() int32 {
	return e.events
}
