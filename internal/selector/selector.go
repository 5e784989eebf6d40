// Package selector picks uniformly random entries from compliment and member pools.
package selector

import (
	"errors"
	"math/rand/v2"

	"github.com/edgard/complimentbot/internal/gateway"
)

// ErrEmptyPool is returned when there is nothing to pick from.
var ErrEmptyPool = errors.New("empty selection pool")

// Selector draws uniformly random indices. The zero value is not usable; use New or NewWithSource.
type Selector struct {
	intN func(n int) int
}

// New returns a Selector backed by the process-wide random source, which is safe for concurrent use.
func New() *Selector {
	return &Selector{intN: rand.IntN}
}

// NewWithSource returns a Selector that draws from intN. intN must return a value in [0, n).
func NewWithSource(intN func(n int) int) *Selector {
	return &Selector{intN: intN}
}

// PickCompliment returns one compliment chosen uniformly at random.
func (s *Selector) PickCompliment(compliments []string) (string, error) {
	return pick(s, compliments)
}

// PickMember returns one member chosen uniformly at random.
func (s *Selector) PickMember(members []gateway.Member) (gateway.Member, error) {
	return pick(s, members)
}

func pick[T any](s *Selector, pool []T) (T, error) {
	var zero T
	if len(pool) == 0 {
		return zero, ErrEmptyPool
	}
	return pool[s.intN(len(pool))], nil
}

var defaultSelector = New()

// PickCompliment picks from compliments with the default selector.
func PickCompliment(compliments []string) (string, error) {
	return defaultSelector.PickCompliment(compliments)
}

// PickMember picks from members with the default selector.
func PickMember(members []gateway.Member) (gateway.Member, error) {
	return defaultSelector.PickMember(members)
}
