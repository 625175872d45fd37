package comm_test

import (
	"testing"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/YashasJKumar/V2I-System/clock"
	"github.com/YashasJKumar/V2I-System/comm"
	"github.com/YashasJKumar/V2I-System/entity"
	"github.com/YashasJKumar/V2I-System/entity/roadgrid"
	"github.com/YashasJKumar/V2I-System/utils/config"
	"github.com/stretchr/testify/assert"
)

// stubVehicle 固定状态的车辆
// 说明：rtXY为本步更新后位置，nil时与快照位置一致
type stubVehicle struct {
	id       int32
	kind     entity.VehicleKind
	xy       geometry.Point
	rtXY     *geometry.Point
	dir      entity.Direction
	v        float64
	turn     entity.TurnDirection
	turnSite int32
}

func (v *stubVehicle) ID() int32                           { return v.id }
func (v *stubVehicle) Kind() entity.VehicleKind            { return v.kind }
func (v *stubVehicle) IsEmergency() bool                   { return v.kind.IsEmergency() }
func (v *stubVehicle) XY() geometry.Point                  { return v.xy }
func (v *stubVehicle) Direction() entity.Direction         { return v.dir }
func (v *stubVehicle) V() float64                          { return v.v }
func (v *stubVehicle) RoadID() int32                       { return 0 }
func (v *stubVehicle) Lane() int32                         { return 1 }
func (v *stubVehicle) Status() entity.Status               { return entity.StatusMoving }
func (v *stubVehicle) Stopped() bool                       { return false }
func (v *stubVehicle) TurnDirection() entity.TurnDirection { return v.turn }
func (v *stubVehicle) TurnIntersectionID() int32           { return v.turnSite }
func (v *stubVehicle) RuntimeXY() geometry.Point {
	if v.rtXY != nil {
		return *v.rtXY
	}
	return v.xy
}
func (v *stubVehicle) RuntimeDirection() entity.Direction { return v.dir }
func (v *stubVehicle) RuntimeV() float64                  { return v.v }
func (v *stubVehicle) ToView() entity.VehicleView         { return entity.VehicleView{ID: v.id} }

// stubVehicleManager 返回固定车辆集合的管理器
type stubVehicleManager struct {
	vehicles []entity.IVehicle
}

func (m *stubVehicleManager) Init()                                 {}
func (m *stubVehicleManager) Get(id int32) entity.IVehicle          { return nil }
func (m *stubVehicleManager) GetOrError(int32) (entity.IVehicle, error) {
	return nil, nil
}
func (m *stubVehicleManager) Vehicles() []entity.IVehicle { return m.vehicles }
func (m *stubVehicleManager) Spawn(entity.VehicleKind, entity.TurnDirection) (int32, error) {
	return 0, nil
}
func (m *stubVehicleManager) Remove(int32) error    { return nil }
func (m *stubVehicleManager) TotalSpawned() int32   { return 0 }
func (m *stubVehicleManager) Prepare()              {}
func (m *stubVehicleManager) Update(float64)        {}

// stubCtx 仅提供通信模拟器所需的依赖
type stubCtx struct {
	rc   *config.RuntimeConfig
	clk  *clock.Clock
	grid entity.IRoadGrid
	vm   *stubVehicleManager
}

func (s *stubCtx) Clock() *clock.Clock                              { return s.clk }
func (s *stubCtx) RuntimeConfig() *config.RuntimeConfig             { return s.rc }
func (s *stubCtx) RoadGrid() entity.IRoadGrid                       { return s.grid }
func (s *stubCtx) IntersectionManager() entity.IIntersectionManager { return nil }
func (s *stubCtx) VehicleManager() entity.IVehicleManager           { return s.vm }
func (s *stubCtx) PreemptionEngine() entity.IPreemptionEngine       { return nil }

func newTestCtx(t *testing.T, c config.Config, vehicles ...entity.IVehicle) *stubCtx {
	rc, err := config.NewRuntimeConfig(c)
	assert.NoError(t, err)
	ctx := &stubCtx{rc: rc, clk: clock.New(c.Control.Step), vm: &stubVehicleManager{vehicles: vehicles}}
	ctx.grid = roadgrid.New(ctx)
	return ctx
}

// stepUntilBroadcast 推进一个完整广播周期并刷新快照
func stepUntilBroadcast(s *comm.Simulator, interval float64) {
	for t := 0.0; t < interval; t += 0.05 {
		s.Update(0.05)
	}
	s.Prepare()
}

func TestBroadcastCadence(t *testing.T) {
	ctx := newTestCtx(t, config.Default(),
		&stubVehicle{id: 1, kind: entity.KindCar, xy: geometry.Point{X: 100, Y: 210}, dir: entity.DirectionEast, v: 60, turnSite: -1},
		&stubVehicle{id: 2, kind: entity.KindCar, xy: geometry.Point{X: 150, Y: 210}, dir: entity.DirectionEast, v: 60, turnSite: -1},
	)
	s := comm.NewSimulator(ctx)

	// 周期未到：无链路
	for i := 0; i < 5; i++ {
		s.Update(0.05)
	}
	s.Prepare()
	assert.Empty(t, s.Links())

	// 到达周期：产出链路
	s.Update(0.05)
	s.Prepare()
	assert.NotEmpty(t, s.Links())
}

func TestV2VLinks(t *testing.T) {
	near1 := &stubVehicle{id: 1, kind: entity.KindCar, xy: geometry.Point{X: 100, Y: 410}, dir: entity.DirectionEast, v: 60, turnSite: -1}
	near2 := &stubVehicle{id: 2, kind: entity.KindCar, xy: geometry.Point{X: 150, Y: 410}, dir: entity.DirectionEast, v: 60, turnSite: -1}
	far := &stubVehicle{id: 3, kind: entity.KindCar, xy: geometry.Point{X: 700, Y: 410}, dir: entity.DirectionEast, v: 60, turnSite: -1}
	ctx := newTestCtx(t, config.Default(), near1, near2, far)
	s := comm.NewSimulator(ctx)
	stepUntilBroadcast(s, ctx.rc.C.Comm.BroadcastInterval)

	v2v := 0
	for _, l := range s.Links() {
		if l.Type == entity.LinkV2V {
			v2v++
			assert.Nil(t, l.Message)
		}
	}
	// 间距50的两车产生双向链路，远处车辆不参与
	assert.Equal(t, 2, v2v)
}

func TestEmergencyV2IMessage(t *testing.T) {
	// 东向应急车辆：路径上最近的前方路口为路口1（550,200）
	amb := &stubVehicle{
		id: 7, kind: entity.KindAmbulance,
		xy: geometry.Point{X: 300, Y: 210}, dir: entity.DirectionEast, v: 90,
		turn: entity.TurnRight, turnSite: 1,
	}
	ctx := newTestCtx(t, config.Default(), amb)
	s := comm.NewSimulator(ctx)
	stepUntilBroadcast(s, ctx.rc.C.Comm.BroadcastInterval)

	links := s.Links()
	assert.Len(t, links, 1)
	l := links[0]
	assert.Equal(t, entity.LinkV2I, l.Type)
	assert.NotNil(t, l.Message)
	assert.Equal(t, int32(7), l.Message.VehicleID)
	assert.Equal(t, entity.DirectionEast, l.Message.Direction)
	assert.Equal(t, entity.TurnRight, l.Message.Intention)
	// 转弯点就在下一个路口：本路口动作与整体意图一致
	assert.Equal(t, entity.TurnRight, l.Message.NextAction)
	assert.InDelta(t, l.Message.Distance/90, l.Message.ETA, 1e-9)
	assert.Equal(t, int32(1), s.V2IBroadcasts())
}

func TestEmergencyV2INextActionDiffers(t *testing.T) {
	// 转弯点在两个路口之外：整体意图为右转，下一路口动作为直行
	amb := &stubVehicle{
		id: 7, kind: entity.KindAmbulance,
		xy: geometry.Point{X: 100, Y: 210}, dir: entity.DirectionEast, v: 90,
		turn: entity.TurnRight, turnSite: 1,
	}
	ctx := newTestCtx(t, config.Default(), amb)
	s := comm.NewSimulator(ctx)
	stepUntilBroadcast(s, ctx.rc.C.Comm.BroadcastInterval)

	links := s.Links()
	assert.Len(t, links, 1)
	assert.Equal(t, entity.TurnRight, links[0].Message.Intention)
	assert.Equal(t, entity.TurnStraight, links[0].Message.NextAction)
}

func TestEmergencyV2IMinDistanceExcluded(t *testing.T) {
	// 已贴近路口（距离小于下限）：不再发出消息
	amb := &stubVehicle{
		id: 7, kind: entity.KindAmbulance,
		xy: geometry.Point{X: 545, Y: 205}, dir: entity.DirectionEast, v: 90, turnSite: -1,
	}
	ctx := newTestCtx(t, config.Default(), amb)
	s := comm.NewSimulator(ctx)
	stepUntilBroadcast(s, ctx.rc.C.Comm.BroadcastInterval)
	assert.Empty(t, s.Links())
}

func TestEmergencyV2IETAUsesSpeedFactor(t *testing.T) {
	amb := &stubVehicle{
		id: 7, kind: entity.KindAmbulance,
		xy: geometry.Point{X: 300, Y: 210}, dir: entity.DirectionEast, v: 90, turnSite: -1,
	}
	ctx := newTestCtx(t, config.Default(), amb)
	assert.NoError(t, ctx.clk.SetSpeedFactor(2))
	s := comm.NewSimulator(ctx)
	stepUntilBroadcast(s, ctx.rc.C.Comm.BroadcastInterval)

	links := s.Links()
	assert.Len(t, links, 1)
	msg := links[0].Message
	assert.NotNil(t, msg)
	// ETA按等效速度折算：distance / (90*2)
	assert.InDelta(t, msg.Distance/180, msg.ETA, 1e-9)
}

func TestBroadcastReadsPostUpdateState(t *testing.T) {
	// 快照位置在普通V2I范围外，本步更新后位置在范围内：链路必须取更新后位置
	moved := geometry.Point{X: 230, Y: 210}
	car := &stubVehicle{
		id: 1, kind: entity.KindCar,
		xy: geometry.Point{X: 100, Y: 210}, rtXY: &moved,
		dir: entity.DirectionEast, v: 60, turnSite: -1,
	}
	ctx := newTestCtx(t, config.Default(), car)
	s := comm.NewSimulator(ctx)
	stepUntilBroadcast(s, ctx.rc.C.Comm.BroadcastInterval)

	links := s.Links()
	assert.Len(t, links, 1)
	assert.Equal(t, entity.LinkV2I, links[0].Type)
	assert.Equal(t, moved, links[0].From)
}

func TestRegularV2ILink(t *testing.T) {
	car := &stubVehicle{id: 1, kind: entity.KindCar, xy: geometry.Point{X: 220, Y: 210}, dir: entity.DirectionEast, v: 60, turnSite: -1}
	ctx := newTestCtx(t, config.Default(), car)
	s := comm.NewSimulator(ctx)
	stepUntilBroadcast(s, ctx.rc.C.Comm.BroadcastInterval)

	links := s.Links()
	assert.Len(t, links, 1)
	assert.Equal(t, entity.LinkV2I, links[0].Type)
	assert.Nil(t, links[0].Message)
	assert.Equal(t, geometry.Point{X: 250, Y: 200}, links[0].To)
}

func TestCommDisabled(t *testing.T) {
	c := config.Default()
	c.Control.Comm.Enabled = false
	ctx := newTestCtx(t, c,
		&stubVehicle{id: 1, kind: entity.KindCar, xy: geometry.Point{X: 100, Y: 210}, dir: entity.DirectionEast, v: 60, turnSite: -1},
		&stubVehicle{id: 2, kind: entity.KindCar, xy: geometry.Point{X: 120, Y: 210}, dir: entity.DirectionEast, v: 60, turnSite: -1},
	)
	s := comm.NewSimulator(ctx)
	for i := 0; i < 100; i++ {
		s.Update(0.05)
	}
	s.Prepare()
	assert.Empty(t, s.Links())
	assert.Equal(t, int32(0), s.V2IBroadcasts())
}
