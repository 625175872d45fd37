package roadgrid

import (
	"fmt"
	"sort"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/YashasJKumar/V2I-System/entity"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("module", "roadgrid")

// Grid 道路网格
// 功能：2x2路口网格的静态几何描述，提供车道中心线与路口位置的纯查询
// 说明：构造后只读，无副作用；非法的道路/车道输入属于编程错误，直接panic
type Grid struct {
	ctx entity.ITaskContext

	roads   []entity.Road
	roadMap map[int32]entity.Road
	sites   []entity.IntersectionSite
	siteMap map[int32]entity.IntersectionSite
}

// New 创建道路网格
// 功能：根据网格配置生成道路与路口布局
// 参数：ctx-任务上下文
// 返回：初始化完成的道路网格实例
// 算法说明：
// 1. 水平道路（东西向）按配置y坐标依次编号
// 2. 垂直道路（南北向）接续编号
// 3. 路口为水平与垂直道路的全部交点，按行优先编号
func New(ctx entity.ITaskContext) *Grid {
	g := &Grid{
		ctx:     ctx,
		roads:   make([]entity.Road, 0),
		roadMap: make(map[int32]entity.Road),
		sites:   make([]entity.IntersectionSite, 0),
		siteMap: make(map[int32]entity.IntersectionSite),
	}
	cfg := ctx.RuntimeConfig().G

	id := int32(0)
	for _, y := range cfg.HorizontalY {
		g.roads = append(g.roads, entity.Road{ID: id, Axis: entity.AxisEW, Coord: y})
		id++
	}
	for _, x := range cfg.VerticalX {
		g.roads = append(g.roads, entity.Road{ID: id, Axis: entity.AxisNS, Coord: x})
		id++
	}
	for _, r := range g.roads {
		g.roadMap[r.ID] = r
	}

	siteID := int32(0)
	for hi, y := range cfg.HorizontalY {
		for vi, x := range cfg.VerticalX {
			g.sites = append(g.sites, entity.IntersectionSite{
				ID:      siteID,
				XY:      geometry.Point{X: x, Y: y},
				HRoadID: int32(hi),
				VRoadID: int32(len(cfg.HorizontalY) + vi),
			})
			siteID++
		}
	}
	for _, s := range g.sites {
		g.siteMap[s.ID] = s
	}
	return g
}

// Roads 获取所有道路
func (g *Grid) Roads() []entity.Road {
	return g.roads
}

// GetRoad 根据ID获取道路，如果不存在则panic
func (g *Grid) GetRoad(id int32) entity.Road {
	r, ok := g.roadMap[id]
	if !ok {
		log.Panicf("no id %d in road data", id)
	}
	return r
}

// GetRoadOrError 根据ID获取道路（带错误处理）
func (g *Grid) GetRoadOrError(id int32) (entity.Road, error) {
	r, ok := g.roadMap[id]
	if !ok {
		return entity.Road{}, fmt.Errorf("no id %d in road data", id)
	}
	return r, nil
}

// LaneCenter 计算车道中心线的权威坐标
// 功能：给定道路、车道号和行驶方向，返回车辆必须对齐的横向坐标
// 参数：roadID-道路ID，lane-车道号（1内侧/2外侧），d-行驶方向
// 返回：东西向道路返回y坐标，南北向道路返回x坐标
// 算法说明：
// 1. 校验车道号与方向和道路轴向的匹配（不匹配为编程错误）
// 2. 按靠右行驶规则将相反方向的车道偏移到道路中心线两侧
// 3. 2号车道始终比1号车道更远离中心线（外侧）
func (g *Grid) LaneCenter(roadID int32, lane int32, d entity.Direction) float64 {
	r := g.GetRoad(roadID)
	cfg := g.ctx.RuntimeConfig().G
	var offset float64
	switch lane {
	case 1:
		offset = cfg.LaneOffset1
	case 2:
		offset = cfg.LaneOffset2
	default:
		log.Panicf("invalid lane %d for road %d", lane, roadID)
	}
	if d.Axis() != r.Axis {
		log.Panicf("direction %v does not travel along road %d", d, roadID)
	}
	// 屏幕坐标系y向下，靠右行驶：东侧偏+y，西侧偏-y，南侧偏-x，北侧偏+x
	switch d {
	case entity.DirectionEast:
		return r.Coord + offset
	case entity.DirectionWest:
		return r.Coord - offset
	case entity.DirectionSouth:
		return r.Coord - offset
	case entity.DirectionNorth:
		return r.Coord + offset
	}
	log.Panicf("invalid direction %d", d)
	return 0
}

// RoadAfterTurn 计算转弯后所在的道路
// 功能：给定路口与转弯后的行驶方向，返回车辆此后行驶的物理道路
func (g *Grid) RoadAfterTurn(intersectionID int32, d entity.Direction) entity.Road {
	site := g.Site(intersectionID)
	if d.Axis() == entity.AxisEW {
		return g.GetRoad(site.HRoadID)
	}
	return g.GetRoad(site.VRoadID)
}

// Sites 获取所有路口位置
func (g *Grid) Sites() []entity.IntersectionSite {
	return g.sites
}

// Site 根据ID获取路口位置，如果不存在则panic
func (g *Grid) Site(id int32) entity.IntersectionSite {
	s, ok := g.siteMap[id]
	if !ok {
		log.Panicf("no id %d in intersection data", id)
	}
	return s
}

// NearestSite 获取距离给定位置最近的路口
func (g *Grid) NearestSite(pos geometry.Point) entity.IntersectionSite {
	best := g.sites[0]
	bestD := entity.Distance(pos, best.XY)
	for _, s := range g.sites[1:] {
		if d := entity.Distance(pos, s.XY); d < bestD {
			best, bestD = s, d
		}
	}
	return best
}

// SitesAhead 获取沿行驶方向位于前方的路口
// 功能：过滤出前方路口并按前方距离从近到远排序
// 说明：前方判定基于沿行驶方向的有向投影，而非简单的最近距离
func (g *Grid) SitesAhead(pos geometry.Point, d entity.Direction) []entity.IntersectionSite {
	type entry struct {
		site entity.IntersectionSite
		dist float64
	}
	entries := make([]entry, 0, len(g.sites))
	for _, s := range g.sites {
		if ahead := entity.AheadDistance(pos, d, s.XY); ahead > 0 {
			entries = append(entries, entry{site: s, dist: ahead})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].dist < entries[j].dist })
	result := make([]entity.IntersectionSite, len(entries))
	for i, e := range entries {
		result[i] = e.site
	}
	return result
}

// InFootprint 判断位置是否处于路口物理范围内
func (g *Grid) InFootprint(pos geometry.Point, site entity.IntersectionSite) bool {
	return entity.Distance(pos, site.XY) <= g.ctx.RuntimeConfig().G.Footprint
}
