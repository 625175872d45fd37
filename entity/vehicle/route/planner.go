package route

import (
	"errors"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/YashasJKumar/V2I-System/entity"
	"github.com/YashasJKumar/V2I-System/utils/container"
	"github.com/YashasJKumar/V2I-System/utils/randengine"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("module", "route")

var (
	// ErrNoRoute 无可用路线
	// 说明：固定路网下理论上不应出现，但必须防御；调用方拒绝本次生成
	ErrNoRoute = errors.New("route: no matching route for spawn request")
)

const (
	spawnMargin = 40 // 生成点超出画布边缘的距离（px）
	exitMargin  = 60 // 终点超出画布边缘的距离（px）
)

// Planner 路线规划器
// 功能：在车辆生成时计算完整行驶计划（路线形状+转弯路口）
// 说明：所有计算只发生在生成时刻，运行期间计划不可变
type Planner struct {
	ctx entity.ITaskContext
}

// NewPlanner 创建路线规划器
func NewPlanner(ctx entity.ITaskContext) *Planner {
	return &Planner{ctx: ctx}
}

// edgePoints 计算给定方向与横向坐标下的生成点与直行终点
// 参数：d-行驶方向，cross-车道中心线横向坐标
func (p *Planner) edgePoints(d entity.Direction, cross float64) (start, dest geometry.Point) {
	g := p.ctx.RuntimeConfig().G
	switch d {
	case entity.DirectionEast:
		return geometry.Point{X: -spawnMargin, Y: cross}, geometry.Point{X: g.Width + exitMargin, Y: cross}
	case entity.DirectionWest:
		return geometry.Point{X: g.Width + spawnMargin, Y: cross}, geometry.Point{X: -exitMargin, Y: cross}
	case entity.DirectionSouth:
		return geometry.Point{X: cross, Y: -spawnMargin}, geometry.Point{X: cross, Y: g.Height + exitMargin}
	case entity.DirectionNorth:
		return geometry.Point{X: cross, Y: g.Height + spawnMargin}, geometry.Point{X: cross, Y: -exitMargin}
	}
	log.Panicf("invalid direction %d", d)
	return
}

// randomRoad 随机选择与行驶方向轴向匹配的道路
func (p *Planner) randomRoad(e *randengine.Engine, d entity.Direction) entity.Road {
	grid := p.ctx.RoadGrid()
	candidates := lo.Filter(grid.Roads(), func(r entity.Road, _ int) bool {
		return r.Axis == d.Axis()
	})
	return candidates[e.IntnSafe(len(candidates))]
}

// PlanStraight 规划直行路线
// 功能：随机选择方向与道路，车道按权重偏向内侧（应急车辆固定内侧）
// 参数：e-随机数引擎，isEmergency-是否为应急车辆
// 返回：直行计划
func (p *Planner) PlanStraight(e *randengine.Engine, isEmergency bool) (*Plan, error) {
	grid := p.ctx.RoadGrid()
	cfg := p.ctx.RuntimeConfig().C.Vehicle

	d := entity.Direction(e.IntnSafe(int(entity.DirectionCount)))
	road := p.randomRoad(e, d)
	lane := int32(1)
	if !isEmergency && !e.PTrue(cfg.InnerLaneWeight) {
		lane = 2
	}
	cross := grid.LaneCenter(road.ID, lane, d)
	start, dest := p.edgePoints(d, cross)

	return &Plan{
		RoadID:             road.ID,
		Lane:               lane,
		Direction:          d,
		Start:              start,
		Destination:        dest,
		Turn:               entity.TurnStraight,
		TurnIntersectionID: -1,
		ExitRoadID:         -1,
		ExitLane:           lane,
		ExitDirection:      d,
	}, nil
}

// electTurnSite 选定转弯路口
// 功能：扫描车辆初始方向前方、位于本道路上的路口，按距离排序；
// 前方至少有两个路口则选第二个，否则选第一个
// 说明：该ID一经选定不可变，是转弯执行时机的唯一权威
func (p *Planner) electTurnSite(start geometry.Point, d entity.Direction, roadID int32) (entity.IntersectionSite, error) {
	grid := p.ctx.RoadGrid()
	queue := container.NewPriorityQueue[entity.IntersectionSite]()
	for _, site := range grid.Sites() {
		if site.HRoadID != roadID && site.VRoadID != roadID {
			continue
		}
		if ahead := entity.AheadDistance(start, d, site.XY); ahead > 0 {
			queue.Push(site, ahead)
		}
	}
	queue.Heapify()
	switch queue.Len() {
	case 0:
		return entity.IntersectionSite{}, ErrNoRoute
	case 1:
		site, _ := queue.HeapPop()
		return site, nil
	default:
		queue.HeapPop()
		site, _ := queue.HeapPop()
		return site, nil
	}
}

// PlanTurn 规划带转弯的路线
// 功能：选择一条经典90度转弯路线（覆盖4个来向x2个转向），
// 由{起点, 路口入口途经点, 出口}构成，入口与出口之间用贝塞尔弧线平滑
// 参数：e-随机数引擎，turn-转向意图
// 返回：转弯计划
// 算法说明：
// 1. 随机选择来向与道路（内侧车道）
// 2. 选定转弯路口（前方第二个，不足则第一个）
// 3. 入口=路口前沿来向车道中心，出口=路口后沿转出车道中心
// 4. 控制点取两条车道中心线的交点，采样二次贝塞尔弧线
// 5. 预计算转出道路、车道与最终终点
func (p *Planner) PlanTurn(e *randengine.Engine, turn entity.TurnDirection) (*Plan, error) {
	if turn == entity.TurnStraight {
		return p.PlanStraight(e, true)
	}
	grid := p.ctx.RoadGrid()
	footprint := p.ctx.RuntimeConfig().G.Footprint

	d := entity.Direction(e.IntnSafe(int(entity.DirectionCount)))
	road := p.randomRoad(e, d)
	lane := int32(1)
	cross := grid.LaneCenter(road.ID, lane, d)
	start, fallbackDest := p.edgePoints(d, cross)

	site, err := p.electTurnSite(start, d, road.ID)
	if err != nil {
		return nil, err
	}

	exitDir := entity.TurnTarget(d, turn)
	exitRoad := grid.RoadAfterTurn(site.ID, exitDir)
	exitCross := grid.LaneCenter(exitRoad.ID, lane, exitDir)

	// 入口：沿来向在路口前沿，横向对齐来向车道中心
	v := d.Vector()
	entry := geometry.Point{X: site.XY.X - v.X*footprint, Y: site.XY.Y - v.Y*footprint}
	if d.Axis() == entity.AxisEW {
		entry.Y = cross
	} else {
		entry.X = cross
	}
	// 出口：沿转出方向在路口后沿，横向对齐转出车道中心
	ev := exitDir.Vector()
	exit := geometry.Point{X: site.XY.X + ev.X*footprint, Y: site.XY.Y + ev.Y*footprint}
	if exitDir.Axis() == entity.AxisEW {
		exit.Y = exitCross
	} else {
		exit.X = exitCross
	}
	// 控制点：来向车道中心线与转出车道中心线的交点
	var control geometry.Point
	if d.Axis() == entity.AxisEW {
		control = geometry.Point{X: exit.X, Y: entry.Y}
	} else {
		control = geometry.Point{X: entry.X, Y: exit.Y}
	}

	_, exitDest := p.edgePoints(exitDir, exitCross)

	return &Plan{
		RoadID:             road.ID,
		Lane:               lane,
		Direction:          d,
		Start:              start,
		Destination:        fallbackDest,
		Turn:               turn,
		TurnIntersectionID: site.ID,
		Waypoints:          ComputeTurnArc(entry, exit, control),
		ExitRoadID:         exitRoad.ID,
		ExitLane:           lane,
		ExitDirection:      exitDir,
		ExitDestination:    exitDest,
	}, nil
}
