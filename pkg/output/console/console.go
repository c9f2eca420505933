package console

import (
	"fmt"
	"time"

	"github.com/uptechstar/uptech-go/pkg/output"
)

type ConsoleOutput struct{}

func NewConsole() output.Output { return &ConsoleOutput{} }

func (c *ConsoleOutput) Publish(snap output.Snapshot) error {
	ts := snap.Timestamp.Format(time.RFC3339)
	for _, r := range snap.Readings {
		fmt.Printf("%s channel=%d raw=%d volts=%.4f\n", ts, r.Channel, r.Raw, r.Volts)
	}
	if snap.Lines != nil {
		fmt.Printf("%s lines=%08b\n", ts, *snap.Lines)
	}
	if m := snap.Motion; m != nil {
		fmt.Printf("%s accel=[%.3f %.3f %.3f]g gyro=[%.1f %.1f %.1f]dps range=%dg/%ddps\n",
			ts, m.Accel[0], m.Accel[1], m.Accel[2], m.Gyro[0], m.Gyro[1], m.Gyro[2], m.AccelG, m.GyroDPS)
	}
	if a := snap.Attitude; a != nil {
		fmt.Printf("%s pitch=%.2f roll=%.2f yaw=%.2f\n", ts, a.Pitch, a.Roll, a.Yaw)
	}
	return nil
}

func (c *ConsoleOutput) Close() error { return nil }
