package output

import (
	"time"

	"github.com/uptechstar/uptech-go/pkg/adcio"
	"github.com/uptechstar/uptech-go/pkg/mpu"
)

// Snapshot is one sampling pass over the board: the ADC readings plus the
// optional digital IO and motion state captured alongside them.
type Snapshot struct {
	Readings  []adcio.Reading `json:"readings"`
	Lines     *byte           `json:"lines,omitempty"`
	Motion    *mpu.Sample     `json:"motion,omitempty"`
	Attitude  *mpu.Attitude   `json:"attitude,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

type Output interface {
	Publish(Snapshot) error
	Close() error
}

// concrete outputs live in subpackages
