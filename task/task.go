package task

import (
	"sync"
	"sync/atomic"

	"github.com/YashasJKumar/V2I-System/clock"
	"github.com/YashasJKumar/V2I-System/comm"
	"github.com/YashasJKumar/V2I-System/entity"
	"github.com/YashasJKumar/V2I-System/entity/intersection"
	"github.com/YashasJKumar/V2I-System/entity/preemption"
	"github.com/YashasJKumar/V2I-System/entity/roadgrid"
	"github.com/YashasJKumar/V2I-System/entity/vehicle"
	"github.com/YashasJKumar/V2I-System/utils/config"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("module", "task")

// Context 仿真任务上下文
// 功能：包含一次仿真任务的所有变量和状态，替代全局变量
// 说明：管理仿真系统的所有组件，包括时钟、网格、管理器与通信模拟；
// 对外命令与快照查询同单步执行互斥，调用方可在任意时刻安全调用
type Context struct {

	// 关闭指令
	closed atomic.Bool
	// 单步执行与命令/查询的互斥
	mtx sync.Mutex

	// 时钟
	clock *clock.Clock

	// 道路网格
	roadGrid entity.IRoadGrid
	// 路口管理器
	intersectionManager entity.IIntersectionManager
	// 车辆管理器
	vehicleManager entity.IVehicleManager
	// 应急抢占引擎
	preemptionEngine entity.IPreemptionEngine
	// 通信模拟器
	comm *comm.Simulator

	// 运行时配置文件
	runtimeConfig *config.RuntimeConfig
}

// NewContext 创建新的仿真任务上下文
// 功能：初始化仿真系统的所有组件和配置
// 参数：c-配置对象
// 返回：初始化完成的Context实例与错误
// 算法说明：
// 1. 校验配置并创建运行时配置
// 2. 创建时钟与道路网格（静态几何，构造即可用）
// 3. 创建各管理器、抢占引擎与通信模拟器（实体初始化留给Init）
func NewContext(c config.Config) (*Context, error) {
	ctx := &Context{}
	runtimeConfig, err := config.NewRuntimeConfig(c)
	if err != nil {
		return nil, err
	}
	ctx.runtimeConfig = runtimeConfig
	ctx.clock = clock.New(c.Control.Step)

	ctx.roadGrid = roadgrid.New(ctx)
	ctx.intersectionManager = intersection.NewManager(ctx)
	ctx.vehicleManager = vehicle.NewManager(ctx)
	ctx.preemptionEngine = preemption.NewEngine(ctx)
	ctx.comm = comm.NewSimulator(ctx)
	return ctx, nil
}

func (ctx *Context) Clock() *clock.Clock {
	return ctx.clock
}

func (ctx *Context) RuntimeConfig() *config.RuntimeConfig {
	return ctx.runtimeConfig
}

func (ctx *Context) RoadGrid() entity.IRoadGrid {
	return ctx.roadGrid
}

func (ctx *Context) IntersectionManager() entity.IIntersectionManager {
	return ctx.intersectionManager
}

func (ctx *Context) VehicleManager() entity.IVehicleManager {
	return ctx.vehicleManager
}

func (ctx *Context) PreemptionEngine() entity.IPreemptionEngine {
	return ctx.preemptionEngine
}

// Init 初始化仿真实体
// 功能：重置时钟，创建全部路口及其信控，初始化车辆管理器
func (ctx *Context) Init() {
	ctx.clock.Init()

	log.Infof("Road: %v", len(ctx.roadGrid.Roads()))
	log.Infof("Intersection: %v", len(ctx.roadGrid.Sites()))

	ctx.intersectionManager.Init()
	ctx.vehicleManager.Init()
}

// Close 请求结束运行
func (ctx *Context) Close() {
	ctx.closed.Store(true)
}
