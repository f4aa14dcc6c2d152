package timing

import (
	"time"

	"github.com/lixenwraith/polyphonica/core"
)

// BeatEvent is an immutable record of one scheduled musical instant,
// produced by BeatScheduler or PatternPlayer and consumed by the driver.
// It has no identity beyond the tick that created it.
type BeatEvent struct {
	BeatNumber    int
	Accent        bool
	Samples       []core.ClickType
	Timestamp     time.Time
	TempoBPM      float64
	TimeSignature core.TimeSignature
}
