package card

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
)

// ErrPoolExhausted is returned when a draw is attempted on an empty pool.
var ErrPoolExhausted = errors.New("card pool exhausted")

// Registry owns every card instance of the simulation and the pool of
// instances not currently dealt into a deck.
type Registry struct {
	all  []*Card
	byID map[int]*Card
	pool []*Card
}

// NewRegistry instantiates one card per definition. IDs must be unique.
func NewRegistry(defs []Definition) (*Registry, error) {
	r := &Registry{
		all:  make([]*Card, 0, len(defs)),
		byID: make(map[int]*Card, len(defs)),
		pool: make([]*Card, 0, len(defs)),
	}
	for _, def := range defs {
		if err := def.Validate(); err != nil {
			return nil, err
		}
		if _, dup := r.byID[def.ID]; dup {
			return nil, fmt.Errorf("duplicate card id %d", def.ID)
		}
		c := New(def)
		r.all = append(r.all, c)
		r.byID[def.ID] = c
		r.pool = append(r.pool, c)
	}
	return r, nil
}

// Len returns the fixed number of card instances.
func (r *Registry) Len() int {
	return len(r.all)
}

// All returns every instance in definition order.
func (r *Registry) All() []*Card {
	return r.all
}

// Get looks up an instance by id.
func (r *Registry) Get(id int) (*Card, bool) {
	c, ok := r.byID[id]
	return c, ok
}

// Pool returns the instances currently unused.
func (r *Registry) Pool() []*Card {
	return r.pool
}

// PoolSize returns the number of unused instances.
func (r *Registry) PoolSize() int {
	return len(r.pool)
}

// TakeRandom removes a uniformly random card from the pool.
func (r *Registry) TakeRandom(rng *rand.Rand) (*Card, error) {
	if len(r.pool) == 0 {
		return nil, ErrPoolExhausted
	}
	return r.removeAt(rng.Intn(len(r.pool))), nil
}

// Take removes the card with id from the pool. ok is false when the card is
// unknown or already dealt.
func (r *Registry) Take(id int) (*Card, bool) {
	for i, c := range r.pool {
		if c.ID == id {
			return r.removeAt(i), true
		}
	}
	return nil, false
}

// TakeFittest removes the pool card with the highest strictly positive
// fitness. The first card wins ties. ok is false when no card in the pool
// has positive fitness.
func (r *Registry) TakeFittest() (*Card, bool) {
	best := -1
	bestFitness := 0.0
	for i, c := range r.pool {
		if c.Fitness > bestFitness {
			best = i
			bestFitness = c.Fitness
		}
	}
	if best < 0 {
		return nil, false
	}
	return r.removeAt(best), true
}

// ReturnAll resets every instance and puts it back in the pool.
func (r *Registry) ReturnAll() {
	r.pool = r.pool[:0]
	for _, c := range r.all {
		c.Reset()
		r.pool = append(r.pool, c)
	}
}

// TopByFitness returns up to n distinct instances with positive fitness,
// highest first.
func (r *Registry) TopByFitness(n int) []*Card {
	ranked := make([]*Card, 0, len(r.all))
	for _, c := range r.all {
		if c.Fitness > 0 {
			ranked = append(ranked, c)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Fitness > ranked[j].Fitness
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

func (r *Registry) removeAt(i int) *Card {
	c := r.pool[i]
	r.pool = append(r.pool[:i], r.pool[i+1:]...)
	return c
}
