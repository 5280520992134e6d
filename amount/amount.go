package amount

import (
	"errors"
	"math"
	"strconv"
)

const (
	// NanoVRD is the number of atomic units in one VRD.
	NanoVRD = 1e9
)

type Unit int

const (
	MegaVRD  Unit = 6
	KiloVRD  Unit = 3
	VRD      Unit = 0
	MilliVRD Unit = -3
	MicroVRD Unit = -6
	NanoUnit Unit = -9
)

func (u Unit) String() string {
	switch u {
	case MegaVRD:
		return "MVRD"
	case KiloVRD:
		return "kVRD"
	case VRD:
		return "VRD"
	case MilliVRD:
		return "mVRD"
	case MicroVRD:
		return "μVRD"
	case NanoUnit:
		return "nVRD"
	default:
		return "1e" + strconv.FormatInt(int64(u), 10) + " VRD"
	}
}

// Amount is the atomic unit of the native asset.
// Each unit equals 1e-9 of a VRD, so percentage fees stay exact integers.
type Amount int64

func round(f float64) Amount {
	if f < 0 {
		return Amount(f - 0.5)
	}
	return Amount(f + 0.5)
}

// NewAmount converts a floating point number of VRD into an Amount.
func NewAmount(f float64) (Amount, error) {
	switch {
	case math.IsNaN(f),
		math.IsInf(f, 1),
		math.IsInf(f, -1):
		return 0, errors.New("invalid VRD amount")
	}

	return round(f * float64(NanoVRD)), nil
}

func FromString(str string) (Amount, error) {
	f, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0, err
	}
	return NewAmount(f)
}

func (a Amount) ToUnit(u Unit) float64 {
	return float64(a) / math.Pow10(int(u+9))
}

func (a Amount) ToVRD() float64 {
	return a.ToUnit(VRD)
}

func (a Amount) ToNanoVRD() int64 {
	return int64(a)
}

func (a Amount) Format(u Unit) string {
	units := " " + u.String()
	formatted := strconv.FormatFloat(a.ToUnit(u), 'f', -int(u+9), 64)
	return formatted + units
}

// String is the equivalent of calling Format with VRD.
func (a Amount) String() string {
	return a.Format(VRD)
}

func (a Amount) MulF64(f float64) Amount {
	return round(float64(a) * f)
}
