package config

// ControlStep 指定模拟器模拟时间步长和步数的配置项
// 功能：定义仿真时间控制参数
// 说明：速度倍率只缩放每步的等效dt，不改变步频（见clock模块）
type ControlStep struct {
	Total    int32   `yaml:"total"`    // 总步数，0表示持续运行
	Interval float64 `yaml:"interval"` // 每步的时间间隔（秒）
}

// Signal 信号控制器配置
// 功能：定义信号控制器的模型与相位时长
type Signal struct {
	Model        string  `yaml:"model"`          // 信控模型（four_phase|two_phase）
	GreenTime    float64 `yaml:"green_time"`     // 绿灯时长（秒）
	YellowTime   float64 `yaml:"yellow_time"`    // 黄灯时长（秒）
	StopOnYellow bool    `yaml:"stop_on_yellow"` // 黄灯是否停车
}

// Grid 道路网格配置
// 功能：定义2x2路口网格的画布尺寸、道路位置与车道几何
type Grid struct {
	Width       float64   `yaml:"width"`        // 画布宽度（px）
	Height      float64   `yaml:"height"`       // 画布高度（px）
	HorizontalY []float64 `yaml:"horizontal_y"` // 水平道路中心线y坐标
	VerticalX   []float64 `yaml:"vertical_x"`   // 垂直道路中心线x坐标
	LaneOffset1 float64   `yaml:"lane_offset1"` // 1号车道（内侧）到道路中心线的偏移
	LaneOffset2 float64   `yaml:"lane_offset2"` // 2号车道（外侧）到道路中心线的偏移
	Footprint   float64   `yaml:"footprint"`    // 路口物理范围半径（px）
}

// Vehicle 车辆运动学配置
// 功能：定义车辆运动与避撞判定的各距离阈值和车速
type Vehicle struct {
	SafeDistance       float64 `yaml:"safe_distance"`       // 跟车安全距离（px）
	LaneTolerance      float64 `yaml:"lane_tolerance"`      // 同车道横向判定容差（px）
	DecelerationFactor float64 `yaml:"deceleration_factor"` // 跟车减速系数
	CheckDistance      float64 `yaml:"check_distance"`      // 信号灯检查距离（px）
	DestinationReach   float64 `yaml:"destination_reach"`   // 终点到达判定距离（px）
	WaypointReach      float64 `yaml:"waypoint_reach"`      // 途经点到达判定距离（px）
	InnerLaneWeight    float64 `yaml:"inner_lane_weight"`   // 内侧车道选择权重
	CarSpeed           float64 `yaml:"car_speed"`           // 小汽车速度（px/s）
	BusSpeed           float64 `yaml:"bus_speed"`           // 公交车速度（px/s）
	TruckSpeed         float64 `yaml:"truck_speed"`         // 卡车速度（px/s）
	EmergencySpeed     float64 `yaml:"emergency_speed"`     // 应急车辆速度（px/s）
}

// Preemption 应急抢占配置
// 功能：定义应急车辆信号抢占协议的各距离阈值
type Preemption struct {
	DetectionDistance float64 `yaml:"detection_distance"` // 抢占检测距离（px）
	MinDistance       float64 `yaml:"min_distance"`       // 抢占最小距离（px）
	ClearDistance     float64 `yaml:"clear_distance"`     // 抢占解除距离（px）
	StopThreshold     float64 `yaml:"stop_threshold"`     // 普通车辆提前停车缓冲（px）
}

// Comm 通信模拟配置
// 功能：定义V2V/V2I链路的作用范围与广播周期
// 说明：该模块只产出展示数据，关闭后不得影响任何车辆或信号状态
type Comm struct {
	Enabled           bool    `yaml:"enabled"`            // 是否启用通信模拟
	BroadcastInterval float64 `yaml:"broadcast_interval"` // 广播周期（秒）
	V2VRange          float64 `yaml:"v2v_range"`          // V2V链路范围（px）
	V2IMin            float64 `yaml:"v2i_min"`            // 应急V2I最小距离（px）
	V2IMax            float64 `yaml:"v2i_max"`            // 应急V2I最大距离（px）
	RegularV2IRange   float64 `yaml:"regular_v2i_range"`  // 普通车辆V2I范围（px）
}

// Control 模拟器控制配置
type Control struct {
	Step       ControlStep `yaml:"step"`
	Seed       uint64      `yaml:"seed"`       // 随机数种子
	Signal     Signal      `yaml:"signal"`     // 信控配置
	Vehicle    Vehicle     `yaml:"vehicle"`    // 车辆配置
	Preemption Preemption  `yaml:"preemption"` // 抢占配置
	Comm       Comm        `yaml:"comm"`       // 通信配置
}

// Config YAML配置文件的根结构
type Config struct {
	Grid    Grid    `yaml:"grid"`    // 道路网格
	Control Control `yaml:"control"` // 模拟过程控制
}

// Default 返回默认配置
// 功能：给出引擎全部命名常量的默认值，作为构造引擎的基准配置
func Default() Config {
	return Config{
		Grid: Grid{
			Width:       800,
			Height:      600,
			HorizontalY: []float64{200, 400},
			VerticalX:   []float64{250, 550},
			LaneOffset1: 10,
			LaneOffset2: 25,
			Footprint:   35,
		},
		Control: Control{
			Step: ControlStep{
				Total:    0,
				Interval: 0.05,
			},
			Seed: 43,
			Signal: Signal{
				Model:        "four_phase",
				GreenTime:    10,
				YellowTime:   3,
				StopOnYellow: true,
			},
			Vehicle: Vehicle{
				SafeDistance:       40,
				LaneTolerance:      15,
				DecelerationFactor: 0.8,
				CheckDistance:      80,
				DestinationReach:   5,
				WaypointReach:      10,
				InnerLaneWeight:    0.7,
				CarSpeed:           60,
				BusSpeed:           45,
				TruckSpeed:         40,
				EmergencySpeed:     90,
			},
			Preemption: Preemption{
				DetectionDistance: 200,
				MinDistance:       50,
				ClearDistance:     200,
				StopThreshold:     30,
			},
			Comm: Comm{
				Enabled:           true,
				BroadcastInterval: 0.3,
				V2VRange:          100,
				V2IMin:            10,
				V2IMax:            300,
				RegularV2IRange:   80,
			},
		},
	}
}
