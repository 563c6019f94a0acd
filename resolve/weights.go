package resolve

import "math"

// Weights are the conversion costs summed into an argument distance.
// Boxing and vararg expansion also move a candidate into a later phase, so
// their weights only order candidates within that phase.
type Weights struct {
	PrimitiveWidening int `yaml:"primitive_widening" validate:"gte=0"`
	ReferenceHop      int `yaml:"reference_hop" validate:"gte=0"`
	NullConversion    int `yaml:"null_conversion" validate:"gte=0"`
	Boxing            int `yaml:"boxing" validate:"gtefield=ReferenceHop"`
	VarargWrap        int `yaml:"vararg_wrap" validate:"gtefield=Boxing"`
	FunctionalTarget  int `yaml:"functional_target" validate:"gte=0"`
}

var DefaultWeights = Weights{
	PrimitiveWidening: 1,
	ReferenceHop:      2,
	NullConversion:    1,
	Boxing:            1000,
	VarargWrap:        100000,
	FunctionalTarget:  0,
}

// UnknownDistance is the invoker distance of a member found without a
// known path from the receiver class.
const UnknownDistance = math.MaxInt32
