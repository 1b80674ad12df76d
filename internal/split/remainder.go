package split

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/tabsplit-dev/tabsplit/internal/money"
)

// apportion rounds a vector of exact shares to the minor currency unit so
// that the rounded values sum to target exactly. Each share is floored to
// whole minor units, then the leftover units are handed out one at a time
// to the largest fractional remainders first (largest-remainder method),
// ties broken by the sorted participant ID order of ids. A negative
// leftover removes units from the smallest remainders first, since those
// shares gained the most from rounding.
func apportion(ids []string, exact map[string]decimal.Decimal, target money.Money) (map[string]money.Money, error) {
	n := int64(len(ids))
	scale := decimal.New(1, money.Exponent(target.Currency))
	targetUnits := target.Amount.Mul(scale).RoundBank(0).IntPart()

	if n == 0 {
		if targetUnits != 0 {
			return nil, fmt.Errorf("cannot apportion %s across zero participants", target)
		}
		return map[string]money.Money{}, nil
	}

	units := make(map[string]int64, len(ids))
	remainders := make(map[string]decimal.Decimal, len(ids))
	var sum int64
	for _, id := range ids {
		scaled := exact[id].Mul(scale)
		floored := scaled.Floor()
		units[id] = floored.IntPart()
		remainders[id] = scaled.Sub(floored)
		sum += units[id]
	}

	leftover := targetUnits - sum

	// Spread whole multiples evenly first so a large drift (inconsistent
	// receipt totals) does not land entirely on one participant.
	base := leftover / n
	extra := leftover % n
	if base != 0 {
		for _, id := range ids {
			units[id] += base
		}
	}

	if extra != 0 {
		ordered := make([]string, len(ids))
		copy(ordered, ids)
		if extra > 0 {
			sort.SliceStable(ordered, func(i, j int) bool {
				return remainders[ordered[i]].GreaterThan(remainders[ordered[j]])
			})
			for i := int64(0); i < extra; i++ {
				units[ordered[i]]++
			}
		} else {
			sort.SliceStable(ordered, func(i, j int) bool {
				return remainders[ordered[i]].LessThan(remainders[ordered[j]])
			})
			for i := int64(0); i < -extra; i++ {
				units[ordered[i]]--
			}
		}
	}

	out := make(map[string]money.Money, len(ids))
	for _, id := range ids {
		out[id] = money.New(decimal.New(units[id], -money.Exponent(target.Currency)), target.Currency)
	}
	return out, nil
}
