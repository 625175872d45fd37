package comm

import (
	"flag"

	"github.com/YashasJKumar/V2I-System/entity"
	"github.com/sirupsen/logrus"
)

var (
	log = logrus.WithField("module", "comm")

	defaultBroadcastInterval = flag.Float64("comm.broadcast_interval", 0.3, "广播周期默认值（秒），配置未指定时生效")
)

// Simulator 通信模拟器
// 功能：按广播周期重算V2V/V2I链路与应急优先通行消息
// 说明：纯观测组件，只读车辆与路口状态，产出展示数据；
// 关闭或移除该组件不得改变任何车辆或信号状态。
// 广播周期独立于运动学步长，慢于步频，周期内链路保持上次结果
type Simulator struct {
	ctx entity.ITaskContext

	accumulator float64 // 距上次广播累计的仿真时间（秒）

	links         []entity.CommLink
	snapshot      []entity.CommLink
	v2iBroadcasts int32
}

// NewSimulator 创建通信模拟器
func NewSimulator(ctx entity.ITaskContext) *Simulator {
	return &Simulator{ctx: ctx}
}

// Prepare 准备阶段，写入链路快照
func (s *Simulator) Prepare() {
	s.snapshot = s.links
}

// Update 更新阶段
// 功能：推进广播计时，到达周期时全量重算链路
// 参数：dt-等效时间步长
func (s *Simulator) Update(dt float64) {
	cfg := &s.ctx.RuntimeConfig().C.Comm
	if !cfg.Enabled {
		return
	}
	interval := cfg.BroadcastInterval
	if interval <= 0 {
		interval = *defaultBroadcastInterval
	}
	s.accumulator += dt
	if s.accumulator < interval {
		return
	}
	s.accumulator -= interval
	s.broadcast()
}

// broadcast 重算一个广播周期的全部链路
// 说明：位于运动学之后串行执行，读取车辆本步更新后的最新状态
// 算法说明：
//  1. V2V：所有有序车辆对，间距不超过V2V范围即产生链路
//  2. 应急V2I：只对路径上最近的前方路口，距离在(V2I最小,V2I最大]时
//     发出优先通行消息，载荷区分整体转向意图与该路口的实际动作
//     （转弯点在更远路口时二者不同），并附ETA与当前距离，
//     ETA按含速度倍率的等效速度折算为真实秒数
//  3. 普通V2I：与任意近旁路口（静态小半径内）的无载荷链路
func (s *Simulator) broadcast() {
	cfg := &s.ctx.RuntimeConfig().C.Comm
	footprint := s.ctx.RuntimeConfig().G.Footprint
	grid := s.ctx.RoadGrid()
	vehicles := s.ctx.VehicleManager().Vehicles()

	speedFactor := s.ctx.Clock().SpeedFactor()
	links := make([]entity.CommLink, 0, len(vehicles))
	for _, v := range vehicles {
		for _, o := range vehicles {
			if o.ID() == v.ID() {
				continue
			}
			if entity.Distance(v.RuntimeXY(), o.RuntimeXY()) <= cfg.V2VRange {
				links = append(links, entity.CommLink{
					Type: entity.LinkV2V,
					From: v.RuntimeXY(),
					To:   o.RuntimeXY(),
				})
			}
		}

		if v.IsEmergency() {
			if site, ok := s.nextSiteAhead(v, footprint); ok {
				dist := entity.Distance(v.RuntimeXY(), site.XY)
				if dist > cfg.V2IMin && dist <= cfg.V2IMax {
					action := entity.TurnStraight
					if site.ID == v.TurnIntersectionID() {
						action = v.TurnDirection()
					}
					eta := 0.0
					if sp := v.RuntimeV() * speedFactor; sp > 0 {
						eta = dist / sp
					}
					links = append(links, entity.CommLink{
						Type: entity.LinkV2I,
						From: v.RuntimeXY(),
						To:   site.XY,
						Message: &entity.V2IMessage{
							VehicleID:  v.ID(),
							Direction:  v.RuntimeDirection(),
							Intention:  v.TurnDirection(),
							NextAction: action,
							ETA:        eta,
							Distance:   dist,
						},
					})
					s.v2iBroadcasts++
				}
			}
		} else {
			for _, site := range grid.Sites() {
				if entity.Distance(v.RuntimeXY(), site.XY) <= cfg.RegularV2IRange {
					links = append(links, entity.CommLink{
						Type: entity.LinkV2I,
						From: v.RuntimeXY(),
						To:   site.XY,
					})
				}
			}
		}
	}
	s.links = links
	log.Tracef("broadcast cycle: %d links", len(links))
}

// nextSiteAhead 查找车辆路径上最近的前方路口
func (s *Simulator) nextSiteAhead(v entity.IVehicle, footprint float64) (entity.IntersectionSite, bool) {
	xy, dir := v.RuntimeXY(), v.RuntimeDirection()
	for _, site := range s.ctx.RoadGrid().SitesAhead(xy, dir) {
		if entity.LateralOffset(xy, dir, site.XY) <= footprint {
			return site, true
		}
	}
	return entity.IntersectionSite{}, false
}

// Links 获取最近一个广播周期的链路快照
func (s *Simulator) Links() []entity.CommLink {
	return s.snapshot
}

// V2IBroadcasts 累计发出的应急V2I消息数
func (s *Simulator) V2IBroadcasts() int32 {
	return s.v2iBroadcasts
}
