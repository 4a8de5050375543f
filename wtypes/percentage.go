package wtypes

import (
	"errors"
	"fmt"
	"math/big"
)

// ErrPercentageOutOfBounds is returned when constructing a Percentage from a
// rational that falls outside the closed interval [0, 1].
var ErrPercentageOutOfBounds = errors.New("percentage out of bounds")

// Percentage is an exact rational number in the closed interval [0, 1]. It
// is stored as the literal numerator and denominator pair rather than a
// float, so values such as 1/3 survive a database round trip without
// drifting. The pair is not reduced: 2/6 and 1/3 compare equal via Rat but
// keep their distinct representations.
type Percentage struct {
	// Numerator is the numerator of the rational.
	Numerator uint64

	// Denominator is the denominator of the rational. It is never zero
	// for a Percentage built through NewPercentage.
	Denominator uint64
}

// NewPercentage constructs a Percentage from a numerator and denominator,
// returning ErrPercentageOutOfBounds unless 0 <= num/den <= 1.
func NewPercentage(num, den uint64) (Percentage, error) {
	if den == 0 {
		return Percentage{}, fmt.Errorf("%w: zero denominator",
			ErrPercentageOutOfBounds)
	}
	if num > den {
		return Percentage{}, fmt.Errorf("%w: %d/%d exceeds 1",
			ErrPercentageOutOfBounds, num, den)
	}

	return Percentage{
		Numerator:   num,
		Denominator: den,
	}, nil
}

// Rat returns the percentage as an exact big rational.
func (p Percentage) Rat() *big.Rat {
	return new(big.Rat).SetFrac(
		new(big.Int).SetUint64(p.Numerator),
		new(big.Int).SetUint64(p.Denominator),
	)
}

// Equal reports whether p and other denote the same rational value,
// regardless of representation.
func (p Percentage) Equal(other Percentage) bool {
	return p.Rat().Cmp(other.Rat()) == 0
}

// String renders the percentage as a decimal with two fractional digits,
// e.g. "3.14%".
func (p Percentage) String() string {
	hundred := new(big.Rat).SetInt64(100)

	return new(big.Rat).Mul(p.Rat(), hundred).FloatString(2) + "%"
}
