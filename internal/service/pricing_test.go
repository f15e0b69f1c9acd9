package service

import (
    "testing"

    "github.com/stretchr/testify/assert"
)

func TestPriceTable(t *testing.T) {
    p := DefaultPriceTable()
    testCases := []struct {
        seats int
        want  int64
    }{
        {0, 0},
        {1, 1199},
        {2, 1999},
        {3, 3597},
        {5, 5995},
    }
    for _, tc := range testCases {
        assert.Equal(t, tc.want, p.Price(tc.seats), "%d seats", tc.seats)
    }
}
