package pricing

import (
	"fmt"
	"math"
	"math/big"

	"github.com/ethereum/go-ethereum/params"
)

// OracleExpo is the fixed-point exponent the feeds publish with.
const OracleExpo = 8

// PerFraction derives the unit price from an asset's recorded valuation.
func PerFraction(totalValue, fractionCount int64) float64 {
	return float64(totalValue) / float64(fractionCount)
}

// TotalCost is the fiat cost of a purchase at the given unit price.
func TotalCost(perFraction float64, amount int64) float64 {
	return perFraction * float64(amount)
}

// FromFixedPoint converts an 8-decimal fixed-point price to a decimal value.
func FromFixedPoint(price int64) float64 {
	return float64(price) / math.Pow10(OracleExpo)
}

// ToNativePayment converts a fiat cost (minor units) into wei: divide by the
// configured scale factor, round to precision fractional digits, then scale
// to the smallest denomination. Only this last step produces an integral
// amount; everything before it stays in real arithmetic.
func ToNativePayment(cost, scaleFactor float64, precision int) (*big.Int, error) {
	if cost < 0 {
		return nil, fmt.Errorf("negative cost %v", cost)
	}
	if scaleFactor <= 0 {
		return nil, fmt.Errorf("scale factor must be positive, got %v", scaleFactor)
	}
	if precision < 0 || precision > 18 {
		return nil, fmt.Errorf("precision out of range: %d", precision)
	}

	shift := math.Pow10(precision)
	native := math.Round(cost/scaleFactor*shift) / shift

	// native carries at most 53 significant bits; the widened mantissa
	// keeps the 1e18 multiply exact instead of rounding off low-order wei.
	wei := new(big.Float).SetPrec(128).SetFloat64(native)
	wei.Mul(wei, new(big.Float).SetPrec(128).SetUint64(params.Ether))
	out, _ := wei.Int(nil)
	return out, nil
}
