package glm

import (
	"math"

	"github.com/goki/ki/kit"
)

// NonLinearity selects the mapping from the linear drive u to the
// conditional intensity r.  Both choices guarantee r > 0.
type NonLinearity int32

//go:generate stringer -type=NonLinearity

var KiT_NonLinearity = kit.Enums.AddEnum(NonLinearityN, kit.NotBitFlag, nil)

const (
	// Exp is r = exp(u)
	Exp NonLinearity = iota

	// LogExp is the softplus r = log(1 + exp(u))
	LogExp

	NonLinearityN
)

func (nl NonLinearity) String() string {
	switch nl {
	case Exp:
		return "Exp"
	case LogExp:
		return "LogExp"
	}
	return "NonLinearityUnknown"
}

// Fn applies the nonlinearity to the linear drive u.
func (nl NonLinearity) Fn(u float64) float64 {
	switch nl {
	case LogExp:
		if u > 30 { // log1p(exp(u)) == u to double precision
			return u
		}
		return math.Log1p(math.Exp(u))
	default:
		return math.Exp(u)
	}
}

// DerivFromRate returns dr/du expressed as a function of the rate r itself,
// which is what the closed-form score needs.  For Exp dr/du = r, for LogExp
// dr/du = sigmoid(u) = 1 - exp(-r).
func (nl NonLinearity) DerivFromRate(r float64) float64 {
	switch nl {
	case LogExp:
		return -math.Expm1(-r)
	default:
		return r
	}
}
