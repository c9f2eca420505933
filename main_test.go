package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptechstar/uptech-go/pkg/board"
	"github.com/uptechstar/uptech-go/pkg/config"
)

func TestInitOutputsSetsInterval(t *testing.T) {
	cfg := config.Config{Outputs: []config.OutputConfig{{Type: "console"}}}
	entries, err := initOutputs(&cfg, 123)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 123, cfg.Outputs[0].IntervalMs)
	assert.Equal(t, 123, entries[0].IntervalMs)
}

func TestInitOutputsUnknownType(t *testing.T) {
	cfg := config.Config{Outputs: []config.OutputConfig{{Type: "carrier-pigeon"}}}
	_, err := initOutputs(&cfg, 100)
	require.Error(t, err)
}

func TestSamplerSnapshot(t *testing.T) {
	sess, err := board.Open(board.Config{Device: "sim-main", Timeout: 50 * time.Millisecond})
	require.NoError(t, err)
	defer sess.Close()

	sim := board.Sim("sim-main")
	sim.SetADC(1, 768)
	sim.SetMotion([3]int16{0, 0, 4096}, [3]int16{0, 0, 0})

	cfg := config.DefaultConfig()
	cfg.Channels = []int{0, 1}
	smp, err := newSampler(sess, cfg)
	require.NoError(t, err)

	snap, err := smp.snapshot()
	require.NoError(t, err)
	require.Len(t, snap.Readings, 2)
	assert.Equal(t, 0, snap.Readings[0].Channel)
	assert.Equal(t, 1, snap.Readings[1].Channel)
	assert.Equal(t, 768, snap.Readings[1].Raw)
	require.NotNil(t, snap.Lines)
	require.NotNil(t, snap.Motion)
	assert.InDelta(t, 1.0, snap.Motion.Accel[2], 1e-9)
	assert.Nil(t, snap.Attitude)
}

func TestSamplerSkipsStaleMotion(t *testing.T) {
	sess, err := board.Open(board.Config{Device: "sim-main-stale", Timeout: 50 * time.Millisecond})
	require.NoError(t, err)
	defer sess.Close()

	cfg := config.DefaultConfig()
	cfg.Channels = []int{0}
	smp, err := newSampler(sess, cfg)
	require.NoError(t, err)

	board.Sim("sim-main-stale").SetMotionReady(false)
	snap, err := smp.snapshot()
	require.NoError(t, err)
	assert.Nil(t, snap.Motion)
	require.Len(t, snap.Readings, 1)
}
