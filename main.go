package main

import (
	"encoding/base64"
	"flag"
	"os"

	"github.com/YashasJKumar/V2I-System/entity"
	"github.com/YashasJKumar/V2I-System/task"
	"github.com/YashasJKumar/V2I-System/utils/config"
	easy "git.fiblab.net/utils/logrus-easy-formatter"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

var (
	// 配置文件路径，为空则使用内置默认配置
	configPath = flag.String("config", "", "config file path (empty means built-in defaults)")
	// 配置文件Base64编码后的数据
	configData = flag.String("config-data", "", "config file base64 encoded data")
	// 启动时按脚本生成的车辆数
	seedVehicles = flag.Int("scenario.vehicles", 12, "number of vehicles spawned at startup")
	// 是否在启动脚本中加入一辆右转应急车辆
	seedEmergency = flag.Bool("scenario.emergency", true, "spawn one right-turning emergency vehicle at startup")

	// log
	logLevels = map[string]logrus.Level{
		"trace":    logrus.TraceLevel,
		"debug":    logrus.DebugLevel,
		"info":     logrus.InfoLevel,
		"warn":     logrus.WarnLevel,
		"error":    logrus.ErrorLevel,
		"critical": logrus.FatalLevel,
		"off":      logrus.PanicLevel,
	}
	logLevel = flag.String("log.level", "info", "日志级别（可选项：trace debug info warn error critical off）")

	log = logrus.WithField("module", "main")
)

// seedScenario 启动脚本
// 功能：生成一批普通车辆与可选的一辆右转应急车辆，作为无头运行的默认负载
func seedScenario(t *task.Context) {
	kinds := []entity.VehicleKind{entity.KindCar, entity.KindCar, entity.KindBus, entity.KindTruck}
	for i := 0; i < *seedVehicles; i++ {
		kind := kinds[i%len(kinds)]
		if id, err := t.SpawnVehicle(kind, entity.TurnStraight); err != nil {
			log.Warnf("spawn %v failed: %v", kind, err)
		} else {
			log.Debugf("spawned %v id=%d", kind, id)
		}
	}
	if *seedEmergency {
		if id, err := t.SpawnVehicle(entity.KindAmbulance, entity.TurnRight); err != nil {
			log.Warnf("spawn ambulance failed: %v", err)
		} else {
			log.Infof("spawned ambulance id=%d with right turn", id)
		}
	}
}

func main() {
	flag.Parse()
	logrus.SetFormatter(&easy.Formatter{
		TimestampFormat: "2006-01-02 15:04:05.0000",
		LogFormat:       "[%module%] [%time%] [%lvl%] %msg%\n",
	})
	// log: 运行时才修改
	if level, ok := logLevels[*logLevel]; ok {
		logrus.SetLevel(level)
	} else {
		log.Panicf("log.level must be one of %v", logLevels)
	}
	// 获取配置
	c := config.Default()
	var file []byte
	var err error
	if *configPath != "" {
		file, err = os.ReadFile(*configPath)
	} else if *configData != "" {
		file, err = base64.StdEncoding.DecodeString(*configData)
	}
	if err != nil {
		log.Panicf("config load err: %v", err)
	}
	if len(file) > 0 {
		if err := yaml.UnmarshalStrict(file, &c); err != nil {
			log.Panicf("config file load err: %v", err)
		}
	}
	log.Infof("%+v", c)

	t, err := task.NewContext(c)
	if err != nil {
		log.Panicf("bad config: %v", err)
	}
	t.Init()
	seedScenario(t)
	t.Run()
}
