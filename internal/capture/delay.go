package capture

import (
	"fmt"
	"time"
)

// Delay is the countdown before a capture is taken.
type Delay int

const (
	DelayOff Delay = 0
	Delay3   Delay = 3
	Delay5   Delay = 5
	Delay10  Delay = 10
)

var delays = []Delay{DelayOff, Delay3, Delay5, Delay10}

// ParseDelay accepts 0, 3, 5 or 10 seconds.
func ParseDelay(seconds int) (Delay, error) {
	for _, d := range delays {
		if int(d) == seconds {
			return d, nil
		}
	}
	return DelayOff, fmt.Errorf("timer must be 0, 3, 5 or 10 seconds, got %d", seconds)
}

// Next cycles to the next delay.
func (d Delay) Next() Delay {
	for i, v := range delays {
		if v == d {
			return delays[(i+1)%len(delays)]
		}
	}
	return DelayOff
}

// Duration returns the delay as a time.Duration.
func (d Delay) Duration() time.Duration { return time.Duration(d) * time.Second }

// String returns the name of the delay.
func (d Delay) String() string {
	if d == DelayOff {
		return "off"
	}
	return fmt.Sprintf("%ds", int(d))
}

// Icon returns a visual indicator for the delay.
func (d Delay) Icon() string {
	if d == DelayOff {
		return ""
	}
	return fmt.Sprintf("[timer %ds]", int(d))
}

// Countdown counts whole seconds down to a capture.
type Countdown struct {
	remaining int
	active    bool
}

// Start begins a countdown of d. A zero delay is immediately done.
func (c *Countdown) Start(d Delay) {
	c.remaining = int(d)
	c.active = d > 0
}

// Tick consumes one second and reports whether the countdown just finished.
func (c *Countdown) Tick() bool {
	if !c.active {
		return false
	}
	c.remaining--
	if c.remaining <= 0 {
		c.remaining = 0
		c.active = false
		return true
	}
	return false
}

// Cancel abandons the countdown.
func (c *Countdown) Cancel() {
	c.remaining = 0
	c.active = false
}

// Active reports whether a countdown is running.
func (c *Countdown) Active() bool { return c.active }

// Remaining returns the seconds left.
func (c *Countdown) Remaining() int { return c.remaining }
