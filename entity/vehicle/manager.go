package vehicle

import (
	"errors"
	"fmt"
	"sync"

	"git.fiblab.net/general/common/v2/parallel"
	"github.com/YashasJKumar/V2I-System/entity"
	"github.com/YashasJKumar/V2I-System/entity/vehicle/route"
	"github.com/YashasJKumar/V2I-System/utils/container"
	"github.com/YashasJKumar/V2I-System/utils/randengine"
	"github.com/samber/lo"
)

var (
	// ErrVehicleNotFound 车辆不存在或已被移除
	ErrVehicleNotFound = errors.New("vehicle: not found")
)

// Manager 车辆管理器
// 功能：管理所有车辆实体，提供生成、查找、移除与每步推进
// 说明：生成/移除全部缓冲，统一在步边界应用，保证一个更新阶段内
// 活跃集合不变；移除在检测到的那一步结束时生效
type Manager struct {
	ctx entity.ITaskContext

	planner   *route.Planner
	generator *randengine.Engine

	data     map[int32]*Vehicle
	vehicles *container.IncrementalArray[*Vehicle]

	inserted      []*Vehicle // 新生成的车辆
	insertedMutex sync.Mutex
	nextID        int32
	totalSpawned  int32
}

// NewManager 创建车辆管理器实例
func NewManager(ctx entity.ITaskContext) *Manager {
	return &Manager{
		ctx:      ctx,
		data:     make(map[int32]*Vehicle),
		vehicles: container.NewIncrementalArray[*Vehicle](),
		inserted: make([]*Vehicle, 0),
	}
}

// Init 初始化车辆管理器
// 功能：创建路线规划器与随机数引擎
func (m *Manager) Init() {
	m.planner = route.NewPlanner(m.ctx)
	m.generator = randengine.New(m.ctx.RuntimeConfig().C.Seed)
	m.nextID = 1000
}

// speedFor 按车辆类型取标称速度
func (m *Manager) speedFor(kind entity.VehicleKind) float64 {
	cfg := &m.ctx.RuntimeConfig().C.Vehicle
	switch kind {
	case entity.KindBus:
		return cfg.BusSpeed
	case entity.KindTruck:
		return cfg.TruckSpeed
	case entity.KindAmbulance, entity.KindFireTruck, entity.KindPolice:
		return cfg.EmergencySpeed
	default:
		return cfg.CarSpeed
	}
}

// Spawn 生成车辆
// 功能：按请求规划路线并创建车辆，延迟到下一个步边界加入活跃集合
// 参数：kind-车辆类型，turn-转向意图（仅应急车辆生效，其余车辆直行）
// 返回：车辆ID与错误；无可用路线时拒绝生成，不产生车辆，调用方可重试
// 说明：ID由生成序号叠加随机步进构成，连续快速生成也保证唯一且严格递增
func (m *Manager) Spawn(kind entity.VehicleKind, turn entity.TurnDirection) (int32, error) {
	var plan *route.Plan
	var err error
	if kind.IsEmergency() && turn != entity.TurnStraight {
		plan, err = m.planner.PlanTurn(m.generator, turn)
	} else {
		plan, err = m.planner.PlanStraight(m.generator, kind.IsEmergency())
	}
	if err != nil {
		return 0, fmt.Errorf("vehicle: spawn rejected: %w", err)
	}

	m.insertedMutex.Lock()
	defer m.insertedMutex.Unlock()
	id := m.nextID
	m.nextID += int32(1 + m.generator.IntnSafe(7))
	v := newVehicle(m.ctx, id, kind, m.speedFor(kind), plan)
	m.inserted = append(m.inserted, v)
	m.totalSpawned++
	log.Debugf("spawn vehicle %d kind=%v turn=%v at (%.1f,%.1f)", id, kind, plan.Turn, plan.Start.X, plan.Start.Y)
	return id, nil
}

// Remove 请求移除车辆
// 功能：标记车辆待移除，延迟到下一个步边界生效
func (m *Manager) Remove(id int32) error {
	m.insertedMutex.Lock()
	defer m.insertedMutex.Unlock()
	if v, ok := m.data[id]; ok {
		v.removeRequested = true
		return nil
	}
	for _, v := range m.inserted {
		if v.id == id {
			v.removeRequested = true
			return nil
		}
	}
	return fmt.Errorf("%w: id %d", ErrVehicleNotFound, id)
}

// Get 根据ID获取车辆实例，如果不存在则panic
func (m *Manager) Get(id int32) entity.IVehicle {
	if v, ok := m.data[id]; !ok {
		log.Panicf("no id %d in vehicle data", id)
		return nil
	} else {
		return v
	}
}

// GetOrError 根据ID获取车辆实例（带错误处理）
func (m *Manager) GetOrError(id int32) (entity.IVehicle, error) {
	if v, ok := m.data[id]; !ok {
		return nil, fmt.Errorf("%w: id %d", ErrVehicleNotFound, id)
	} else {
		return v, nil
	}
}

// Vehicles 获取当前活跃车辆
// 说明：返回本步成员集合，更新阶段内保持不变
func (m *Manager) Vehicles() []entity.IVehicle {
	return lo.Map(m.vehicles.Data(), func(v *Vehicle, _ int) entity.IVehicle { return v })
}

// TotalSpawned 获取累计生成车辆数
func (m *Manager) TotalSpawned() int32 {
	m.insertedMutex.Lock()
	defer m.insertedMutex.Unlock()
	return m.totalSpawned
}

// applyLifecycle 应用生命周期变更
// 功能：将缓冲的生成加入活跃集合，移除到达终点或被请求移除的车辆
// 说明：活跃集合只在这里变化，任何"前车"计算都不会引用已移除车辆
func (m *Manager) applyLifecycle() {
	m.insertedMutex.Lock()
	for _, v := range m.inserted {
		m.data[v.id] = v
		m.vehicles.Add(v)
	}
	m.inserted = m.inserted[:0]
	m.insertedMutex.Unlock()

	for _, v := range m.vehicles.Data() {
		if v.runtime.Removed || v.removeRequested {
			m.vehicles.Remove(v)
			delete(m.data, v.id)
		}
	}
	m.vehicles.Prepare()
}

// Prepare 准备阶段
// 功能：应用步间到达的命令，刷新所有车辆的快照
func (m *Manager) Prepare() {
	m.applyLifecycle()
	parallel.GoFor(m.vehicles.Data(), func(v *Vehicle) { v.prepare() })
}

// Update 更新阶段
// 功能：对全部车辆执行运动学推进，结束时应用移除
func (m *Manager) Update(dt float64) {
	parallel.GoFor(m.vehicles.Data(), func(v *Vehicle) { v.update(dt) })
	m.applyLifecycle()
}
