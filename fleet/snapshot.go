package fleet

// Snapshot is the complete observable state of one lift at an instant.
// Snapshots are values: transitions build a new Snapshot with one of the
// With* helpers and install it through the Registry.
type Snapshot struct {
	ID              string      `json:"id"`
	SecondsPerFloor int         `json:"seconds_per_floor"`
	Tonnage         int         `json:"tonnage"`
	CurrentFloor    int         `json:"current_floor"`
	LightsOn        bool        `json:"lights_on"`
	Motion          MotionState `json:"motion"`
	Direction       Direction   `json:"direction"`
	Panel           Panel       `json:"panel"`
}

// NewLift returns the startup state of a lift: ground floor, heading up,
// stopped with the lights off and nothing pressed.
func NewLift(id string, floors, secondsPerFloor, tonnage int) Snapshot {
	return Snapshot{
		ID:              id,
		SecondsPerFloor: secondsPerFloor,
		Tonnage:         tonnage,
		Motion:          Stopped,
		Direction:       DirectionUp,
		Panel:           NewPanel(floors),
	}
}

func (s Snapshot) WithPanel(p Panel) Snapshot {
	s.Panel = p
	return s
}

func (s Snapshot) WithDirection(d Direction) Snapshot {
	s.Direction = d
	return s
}

func (s Snapshot) WithMotion(m MotionState, lightsOn bool) Snapshot {
	s.Motion = m
	s.LightsOn = lightsOn
	return s
}

func (s Snapshot) WithFloor(floor int, m MotionState) Snapshot {
	s.CurrentFloor = floor
	s.Motion = m
	return s
}

// Distance returns the signed preference between the nearest lit floor
// above and the nearest lit floor below: |up-cur| - |cur-down|, where a side
// with nothing lit counts as the current floor itself.
func (s Snapshot) Distance() int {
	cur := s.CurrentFloor
	up, ok := s.Panel.NextAbove(cur)
	if !ok {
		up = cur
	}
	down, ok := s.Panel.NextBelow(cur)
	if !ok {
		down = cur
	}
	return abs(up-cur) - abs(cur-down)
}

// Heading picks the next scan direction from Distance. A lift only goes
// idle when its panel is empty; equal pull in both directions scans up.
func (s Snapshot) Heading() Direction {
	switch d := s.Distance(); {
	case d > 0:
		return DirectionUp
	case d < 0:
		return DirectionDown
	case s.Panel.AllOff():
		return DirectionIdle
	default:
		// Idle here would leave the stops lit and the worker spinning on them.
		return DirectionUp
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
