package intersection

import (
	"fmt"

	"git.fiblab.net/general/common/v2/parallel"
	"github.com/YashasJKumar/V2I-System/entity"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("module", "intersection")

// Manager 路口管理器
type Manager struct {
	ctx entity.ITaskContext

	data          map[int32]*Intersection
	intersections []*Intersection
}

// NewManager 创建路口管理器实例
func NewManager(ctx entity.ITaskContext) *Manager {
	return &Manager{
		ctx:           ctx,
		data:          make(map[int32]*Intersection),
		intersections: make([]*Intersection, 0),
	}
}

// Init 初始化所有路口及其信控
// 功能：根据道路网格的路口位置创建路口对象
func (m *Manager) Init() {
	sites := m.ctx.RoadGrid().Sites()
	m.intersections = parallel.GoMap(sites, func(site entity.IntersectionSite) *Intersection {
		return newIntersection(m.ctx, site)
	})
	m.data = lo.SliceToMap(m.intersections, func(i *Intersection) (int32, *Intersection) {
		return i.id, i
	})
}

// Get 根据ID获取路口实例，如果不存在则panic
func (m *Manager) Get(id int32) entity.IIntersection {
	if i, ok := m.data[id]; !ok {
		log.Panicf("no id %d in intersection data", id)
		return nil
	} else {
		return i
	}
}

// GetOrError 根据ID获取路口实例（带错误处理）
func (m *Manager) GetOrError(id int32) (entity.IIntersection, error) {
	if i, ok := m.data[id]; !ok {
		return nil, fmt.Errorf("no id %d in intersection data", id)
	} else {
		return i, nil
	}
}

// Intersections 获取所有路口
func (m *Manager) Intersections() []entity.IIntersection {
	return lo.Map(m.intersections, func(i *Intersection, _ int) entity.IIntersection { return i })
}

// Prepare 准备阶段，处理所有路口的快照更新
func (m *Manager) Prepare() {
	parallel.GoFor(m.intersections, func(i *Intersection) { i.prepare() })
}

// Update 更新阶段，推进所有路口的信号计时
func (m *Manager) Update(dt float64) {
	parallel.GoFor(m.intersections, func(i *Intersection) { i.update(dt) })
}
