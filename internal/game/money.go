package game

import (
	"fmt"
	"math"
	"strconv"
)

// Pence is a money amount in integer pence. The server speaks decimal pounds
// on the wire (betValue: 2.50), which is exactly the kind of value you do not
// want to do modulo arithmetic on as a float.
type Pence int64

func FromPounds(v float64) Pence {
	return Pence(math.Round(v * 100))
}

func (p Pence) Pounds() float64 { return float64(p) / 100 }

func (p Pence) String() string {
	return strconv.FormatFloat(p.Pounds(), 'f', 2, 64)
}

func (p Pence) MarshalJSON() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Pence) UnmarshalJSON(data []byte) error {
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("invalid money value %s: %w", data, err)
	}
	*p = FromPounds(v)
	return nil
}

// IsMultipleOf reports whether p is an exact multiple of the ante unit.
// Wagers that fail this check are rejected before any send.
func (p Pence) IsMultipleOf(ante Pence) bool {
	if ante <= 0 {
		return true
	}
	return p%ante == 0
}
