// Package gesture defines the closed swipe parameter enumerations and turns
// them into concrete coordinate plans against a device's display.
package gesture

import (
	"fmt"
	"time"
)

// Direction of a swipe, named from the finger's point of view.
type Direction string

const (
	Up    Direction = "up"
	Down  Direction = "down"
	Left  Direction = "left"
	Right Direction = "right"
)

// Distance is a swipe length as a fraction of the screen extent along the
// swipe axis.
type Distance float64

const (
	Short  Distance = 0.20
	Medium Distance = 0.40
	Long   Distance = 0.60
)

// Speed is the total gesture duration.
type Speed time.Duration

const (
	Slow   Speed = Speed(2500 * time.Millisecond)
	Normal Speed = Speed(1 * time.Second)
	Fast   Speed = Speed(250 * time.Millisecond)
)

func (s Speed) Duration() time.Duration { return time.Duration(s) }

// ParseDirection maps a wire string onto a Direction.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case Up, Down, Left, Right:
		return Direction(s), nil
	}
	return "", fmt.Errorf("unknown direction %q (want up, down, left or right)", s)
}

// ParseDistance maps a wire string onto a Distance. Empty selects medium.
func ParseDistance(s string) (Distance, error) {
	switch s {
	case "", "medium":
		return Medium, nil
	case "short":
		return Short, nil
	case "long":
		return Long, nil
	}
	return 0, fmt.Errorf("unknown distance %q (want short, medium or long)", s)
}

// ParseSpeed maps a wire string onto a Speed. Empty selects normal.
func ParseSpeed(s string) (Speed, error) {
	switch s {
	case "", "normal":
		return Normal, nil
	case "slow":
		return Slow, nil
	case "fast":
		return Fast, nil
	}
	return 0, fmt.Errorf("unknown speed %q (want slow, normal or fast)", s)
}

// Plan is a resolved swipe in screen coordinates.
type Plan struct {
	FromX, FromY int
	ToX, ToY     int
	Duration     time.Duration
}

// PlanSwipe computes a swipe centered on the screen. The travel is
// dist*extent along the swipe axis, split evenly either side of the center,
// so a long swipe never starts off-screen.
func PlanSwipe(width, height int, dir Direction, dist Distance, speed Speed) Plan {
	centerX := width / 2
	centerY := height / 2

	p := Plan{FromX: centerX, FromY: centerY, ToX: centerX, ToY: centerY, Duration: speed.Duration()}

	switch dir {
	case Up:
		half := int(float64(height) * float64(dist) / 2)
		p.FromY = centerY + half
		p.ToY = centerY - half
	case Down:
		half := int(float64(height) * float64(dist) / 2)
		p.FromY = centerY - half
		p.ToY = centerY + half
	case Left:
		half := int(float64(width) * float64(dist) / 2)
		p.FromX = centerX + half
		p.ToX = centerX - half
	case Right:
		half := int(float64(width) * float64(dist) / 2)
		p.FromX = centerX - half
		p.ToX = centerX + half
	}

	return p
}
