package config_test

import (
	"testing"

	"github.com/YashasJKumar/V2I-System/utils/config"
	"github.com/stretchr/testify/assert"
)

func TestDefaultConfigValid(t *testing.T) {
	rc, err := config.NewRuntimeConfig(config.Default())
	assert.NoError(t, err)
	assert.Equal(t, 0.05, rc.C.Step.Interval)
	assert.Equal(t, 800.0, rc.G.Width)
	assert.Equal(t, "four_phase", rc.C.Signal.Model)
}

func TestConfigValidation(t *testing.T) {
	c := config.Default()
	c.Control.Step.Interval = 0
	_, err := config.NewRuntimeConfig(c)
	assert.Error(t, err)

	c = config.Default()
	c.Grid.VerticalX = []float64{250}
	_, err = config.NewRuntimeConfig(c)
	assert.Error(t, err)

	c = config.Default()
	c.Grid.LaneOffset2 = c.Grid.LaneOffset1
	_, err = config.NewRuntimeConfig(c)
	assert.Error(t, err)

	c = config.Default()
	c.Control.Signal.Model = "three_phase"
	_, err = config.NewRuntimeConfig(c)
	assert.Error(t, err)
}
