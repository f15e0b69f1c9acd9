package service

// PriceTable prices a reservation by the number of seats in it.
// One seat costs BaseCents, a pair costs PairCents and larger groups pay
// BaseCents per seat.
type PriceTable struct {
    BaseCents int64
    PairCents int64
}

// DefaultPriceTable is the tariff used when none is configured.
func DefaultPriceTable() PriceTable {
    return PriceTable{BaseCents: 1199, PairCents: 1999}
}

// Price returns the total in cents for a reservation of n seats.
func (p PriceTable) Price(n int) int64 {
    switch {
    case n <= 0:
        return 0
    case n == 1:
        return p.BaseCents
    case n == 2:
        return p.PairCents
    default:
        return int64(n) * p.BaseCents
    }
}
