package fleet

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrInvalidFloor     = errors.New("invalid floor")
	ErrInvalidDirection = errors.New("invalid direction")
	ErrDuplicateLift    = errors.New("duplicate lift id")
	ErrUnknownLift      = errors.New("unknown lift")
)

// Direction is the scan direction of a lift. Idle means the lift has no
// assigned direction and is looking for its next request.
type Direction int

const (
	DirectionIdle Direction = iota
	DirectionUp
	DirectionDown
)

func (d Direction) String() string {
	switch d {
	case DirectionUp:
		return "UP"
	case DirectionDown:
		return "DOWN"
	case DirectionIdle:
		return "IDLE"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// ParseDirection accepts the wire names UP, DOWN and IDLE.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "UP", "up":
		return DirectionUp, nil
	case "DOWN", "down":
		return DirectionDown, nil
	case "IDLE", "idle":
		return DirectionIdle, nil
	}
	return DirectionIdle, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

func (d Direction) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Direction) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := ParseDirection(s)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

type MotionState int

const (
	Stopped MotionState = iota
	Moving
)

func (m MotionState) String() string {
	if m == Moving {
		return "MOVING"
	}
	return "STOPPED"
}

func (m MotionState) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *MotionState) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "MOVING":
		*m = Moving
	case "STOPPED":
		*m = Stopped
	default:
		return fmt.Errorf("invalid motion state %q", s)
	}
	return nil
}
