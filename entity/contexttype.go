package entity

import (
	"github.com/YashasJKumar/V2I-System/clock"
	"github.com/YashasJKumar/V2I-System/utils/config"
)

type ITaskContext interface {
	Clock() *clock.Clock
	RuntimeConfig() *config.RuntimeConfig
	RoadGrid() IRoadGrid
	IntersectionManager() IIntersectionManager
	VehicleManager() IVehicleManager
	PreemptionEngine() IPreemptionEngine
}
