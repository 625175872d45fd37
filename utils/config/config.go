package config

import "fmt"

// RuntimeConfig 运行时配置
// 功能：存储仿真运行时的配置信息，构造后只读
// 说明：将YAML/默认配置转换为运行时可用的配置对象，供各组件注入使用
type RuntimeConfig struct {
	All Config  // 全部配置
	C   Control // 全局控制配置
	G   Grid    // 道路网格配置
}

// NewRuntimeConfig 根据配置初始化运行时配置
// 功能：创建运行时配置对象，进行配置校验与默认值补全
// 参数：config-原始配置对象
// 返回：初始化的运行时配置指针与校验错误
// 说明：配置错误属于编程缺陷而非可恢复输入，调用方通常直接panic
func NewRuntimeConfig(config Config) (*RuntimeConfig, error) {
	rc := &RuntimeConfig{}

	if config.Control.Step.Interval <= 0 {
		return nil, fmt.Errorf("config: step interval must be positive, got %v", config.Control.Step.Interval)
	}
	if len(config.Grid.HorizontalY) != 2 || len(config.Grid.VerticalX) != 2 {
		return nil, fmt.Errorf("config: grid must have 2 horizontal and 2 vertical roads, got %d/%d",
			len(config.Grid.HorizontalY), len(config.Grid.VerticalX))
	}
	if config.Grid.LaneOffset2 <= config.Grid.LaneOffset1 {
		return nil, fmt.Errorf("config: lane 2 must be outboard of lane 1 (%v <= %v)",
			config.Grid.LaneOffset2, config.Grid.LaneOffset1)
	}
	switch config.Control.Signal.Model {
	case "four_phase", "two_phase":
	default:
		return nil, fmt.Errorf("config: unknown signal model %q", config.Control.Signal.Model)
	}

	rc.All = config
	rc.C = config.Control
	rc.G = config.Grid

	return rc, nil
}
