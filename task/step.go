package task

import (
	"flag"
	"sync"
	"time"

	"github.com/YashasJKumar/V2I-System/entity"
	"github.com/samber/lo"
)

var (
	heartBeatInterval = flag.Int("log.heartbeat_interval", 100, "心跳日志间隔步数")
)

// prepare 准备阶段，每步执行一次
// 功能：在每个仿真步骤开始时进行准备工作
// 算法说明：
// 1. 更新时钟：增加内部步数并计算当前时间
// 2. 心跳日志：定期输出系统状态信息
// 3. 并行准备：并发执行各组件的准备操作
//   - 路口管理器：快照路口抢占簿记与信号状态
//   - 车辆管理器：应用缓冲的生成/移除，快照车辆状态
//   - 通信模拟器：快照链路
//
// 说明：确保所有组件在更新阶段前都处于正确状态
func (ctx *Context) prepare() {
	ctx.clock.InternalStep++
	ctx.clock.T = float64(ctx.clock.InternalStep) * ctx.clock.DT

	if ctx.clock.InternalStep%int32(*heartBeatInterval) == 0 {
		log.Infof(
			"STEP: %d(%v) vehicles=%d",
			ctx.clock.InternalStep,
			ctx.clock,
			len(ctx.vehicleManager.Vehicles()),
		)
	}

	// Prepare
	var wg sync.WaitGroup
	{
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx.intersectionManager.Prepare() // intersection
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx.vehicleManager.Prepare() // vehicle
			ctx.preemptionEngine.Prepare()
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx.comm.Prepare() // comm
		}()
		wg.Wait()
	}
}

// update 更新阶段，每步执行一次
// 功能：在每个仿真步骤中执行主要的仿真逻辑
// 参数：dt-等效时间步长（已含速度倍率）
// 算法说明（顺序即语义，不可并行）：
// 1. 路口管理器：信号计时推进（抢占期间内部跳过）
// 2. 应急抢占引擎：重算抢占计划并写入路口
// 3. 车辆管理器：运动学推进，读取抢占后的信号状态与其他车辆快照
// 4. 通信模拟器：按自身广播周期重算链路
func (ctx *Context) update(dt float64) {
	ctx.intersectionManager.Update(dt)
	ctx.preemptionEngine.Update()
	ctx.vehicleManager.Update(dt)
	ctx.comm.Update(dt)
}

// Step 执行一个仿真步
// 功能：暂停时直接返回（状态无损保留），否则按等效dt推进一步
func (ctx *Context) Step() {
	ctx.mtx.Lock()
	defer ctx.mtx.Unlock()
	if ctx.clock.Paused() {
		return
	}
	dt := ctx.clock.EffectiveDT()
	ctx.prepare()
	ctx.update(dt)
}

// Run 运行
// 功能：按固定步频循环执行仿真步，直到到达总步数或被关闭
// 说明：调用前须完成Init；速度倍率只缩放每步等效dt，步频恒定
func (ctx *Context) Run() {
	ticker := time.NewTicker(time.Duration(ctx.clock.DT * float64(time.Second)))
	defer ticker.Stop()
	for range ticker.C {
		if ctx.closed.Load() {
			break
		}
		ctx.Step()
		if ctx.clock.END_STEP > 0 && ctx.clock.InternalStep+1 >= ctx.clock.END_STEP {
			break
		}
	}
	log.Infof("engine complete")
}

// SpawnVehicle 生成车辆命令
// 参数：kind-车辆类型，turn-转向意图
// 返回：车辆ID与错误；无可用路线时拒绝，不产生车辆
func (ctx *Context) SpawnVehicle(kind entity.VehicleKind, turn entity.TurnDirection) (int32, error) {
	ctx.mtx.Lock()
	defer ctx.mtx.Unlock()
	return ctx.vehicleManager.Spawn(kind, turn)
}

// RemoveVehicle 移除车辆命令
func (ctx *Context) RemoveVehicle(id int32) error {
	ctx.mtx.Lock()
	defer ctx.mtx.Unlock()
	return ctx.vehicleManager.Remove(id)
}

// SetPaused 设置暂停状态
func (ctx *Context) SetPaused(paused bool) {
	ctx.clock.SetPaused(paused)
}

// SetSpeedMultiplier 设置速度倍率
func (ctx *Context) SetSpeedMultiplier(factor float64) error {
	return ctx.clock.SetSpeedFactor(factor)
}

// Snapshot 产生当前仿真状态的只读快照
// 功能：供展示层每步读取，内容全部来自各实体的快照视图
func (ctx *Context) Snapshot() entity.Snapshot {
	ctx.mtx.Lock()
	defer ctx.mtx.Unlock()
	links := ctx.comm.Links()
	return entity.Snapshot{
		Step:            ctx.clock.InternalStep,
		T:               ctx.clock.T,
		Paused:          ctx.clock.Paused(),
		SpeedFactor:     ctx.clock.SpeedFactor(),
		EmergencyActive: ctx.preemptionEngine.EmergencyActive(),
		Vehicles: lo.Map(ctx.vehicleManager.Vehicles(), func(v entity.IVehicle, _ int) entity.VehicleView {
			return v.ToView()
		}),
		Intersections: lo.Map(ctx.intersectionManager.Intersections(), func(i entity.IIntersection, _ int) entity.IntersectionView {
			return i.ToView()
		}),
		Links: links,
		Stats: entity.Stats{
			TotalSpawned:    ctx.vehicleManager.TotalSpawned(),
			EmergencyEvents: ctx.preemptionEngine.Events(),
			LiveLinks:       int32(len(links)),
			V2IBroadcasts:   ctx.comm.V2IBroadcasts(),
		},
	}
}
