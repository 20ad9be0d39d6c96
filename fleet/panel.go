package fleet

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Panel is the set of floors with a pending stop for one lift. A Panel is
// immutable: every update returns a new Panel and leaves the receiver intact.
type Panel struct {
	keys []bool
}

// NewPanel returns a panel for floors 0..floors-1 with every button off.
func NewPanel(floors int) Panel {
	if floors < 0 {
		floors = 0
	}
	return Panel{keys: make([]bool, floors)}
}

// Floors returns the number of floors the panel covers.
func (p Panel) Floors() int { return len(p.keys) }

func (p Panel) valid(floor int) error {
	if floor < 0 || floor >= len(p.keys) {
		return fmt.Errorf("%w %d (floors 0..%d)", ErrInvalidFloor, floor, len(p.keys)-1)
	}
	return nil
}

// NextAbove returns the lowest lit floor strictly above floor.
func (p Panel) NextAbove(floor int) (int, bool) {
	start := floor + 1
	if start < 0 {
		start = 0
	}
	for i := start; i < len(p.keys); i++ {
		if p.keys[i] {
			return i, true
		}
	}
	return 0, false
}

// NextBelow returns the highest lit floor strictly below floor.
func (p Panel) NextBelow(floor int) (int, bool) {
	start := floor - 1
	if start >= len(p.keys) {
		start = len(p.keys) - 1
	}
	for i := start; i >= 0; i-- {
		if p.keys[i] {
			return i, true
		}
	}
	return 0, false
}

func (p Panel) TurnOn(floor int) (Panel, error) {
	return p.TurnOnAll(floor)
}

// TurnOnAll lights every given floor. Nothing is changed if any floor is out
// of range.
func (p Panel) TurnOnAll(floors ...int) (Panel, error) {
	for _, f := range floors {
		if err := p.valid(f); err != nil {
			return p, err
		}
	}
	next := p.clone()
	for _, f := range floors {
		next.keys[f] = true
	}
	return next, nil
}

func (p Panel) TurnOff(floor int) (Panel, error) {
	if err := p.valid(floor); err != nil {
		return p, err
	}
	next := p.clone()
	next.keys[floor] = false
	return next, nil
}

func (p Panel) IsOn(floor int) (bool, error) {
	if err := p.valid(floor); err != nil {
		return false, err
	}
	return p.keys[floor], nil
}

func (p Panel) AllOff() bool {
	for _, k := range p.keys {
		if k {
			return false
		}
	}
	return true
}

// Pending returns the lit floors in ascending order.
func (p Panel) Pending() []int {
	var out []int
	for i, k := range p.keys {
		if k {
			out = append(out, i)
		}
	}
	return out
}

func (p Panel) Equal(o Panel) bool {
	if len(p.keys) != len(o.keys) {
		return false
	}
	for i := range p.keys {
		if p.keys[i] != o.keys[i] {
			return false
		}
	}
	return true
}

func (p Panel) String() string {
	parts := make([]string, len(p.keys))
	for i, k := range p.keys {
		mark := "□"
		if k {
			mark = "☑"
		}
		parts[i] = fmt.Sprintf("%d=%s", i, mark)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (p Panel) MarshalJSON() ([]byte, error) {
	keys := p.keys
	if keys == nil {
		keys = []bool{}
	}
	return json.Marshal(keys)
}

func (p *Panel) UnmarshalJSON(data []byte) error {
	var keys []bool
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	p.keys = keys
	return nil
}

func (p Panel) clone() Panel {
	keys := make([]bool, len(p.keys))
	copy(keys, p.keys)
	return Panel{keys: keys}
}
