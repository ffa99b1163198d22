// Package permutation encodes solutions as orderings of 0..n-1.
package permutation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/san-kum/metaheur/internal/core"
	"github.com/san-kum/metaheur/internal/rng"
)

// Genotype is an ordering of the indices 0..n-1.
type Genotype []int

func (g Genotype) Clone() Genotype {
	c := make(Genotype, len(g))
	copy(c, g)
	return c
}

func (g Genotype) String() string {
	parts := make([]string, len(g))
	for i, v := range g {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, " ")
}

// Key identifies a genotype for caching.
func Key(g Genotype) string { return g.String() }

// Space holds every permutation of n indices.
type Space struct {
	n int
}

func NewSpace(n int) (Space, error) {
	if n < 1 {
		return Space{}, fmt.Errorf("permutation of %d elements: %w", n, core.ErrInvalidArgument)
	}
	return Space{n: n}, nil
}

func (s Space) Size() int { return s.n }

// Contains reports whether g is a bijection of 0..n-1.
func (s Space) Contains(g Genotype) bool {
	if len(g) != s.n {
		return false
	}
	seen := make([]bool, s.n)
	for _, v := range g {
		if v < 0 || v >= s.n || seen[v] {
			return false
		}
		seen[v] = true
	}
	return true
}

// RandomCreator draws uniformly random permutations with a Fisher-Yates
// shuffle.
type RandomCreator struct{}

func (RandomCreator) Create(count int, random *rng.Random, space Space) ([]Genotype, error) {
	if count <= 0 {
		return nil, fmt.Errorf("create count %d: %w", count, core.ErrInvalidArgument)
	}
	out := make([]Genotype, count)
	for i := range out {
		out[i] = Genotype(random.Perm(space.n))
	}
	return out, nil
}

// SwapMutator exchanges Swaps random pairs of positions, one child per
// parent. Swaps below 1 means a single swap.
type SwapMutator struct {
	Swaps int
}

func (m SwapMutator) Mutate(parents []Genotype, random *rng.Random, _ Space, _ core.Problem[Genotype, Space]) ([]Genotype, error) {
	swaps := max(m.Swaps, 1)
	out := make([]Genotype, len(parents))
	for i, p := range parents {
		child := p.Clone()
		if len(child) > 1 {
			for i := 0; i < swaps; i++ {
				a := random.Intn(len(child))
				b := random.Intn(len(child))
				child[a], child[b] = child[b], child[a]
			}
		}
		out[i] = child
	}
	return out, nil
}

// InversionMutator reverses a random segment, one child per parent.
type InversionMutator struct{}

func (InversionMutator) Mutate(parents []Genotype, random *rng.Random, _ Space, _ core.Problem[Genotype, Space]) ([]Genotype, error) {
	out := make([]Genotype, len(parents))
	for i, p := range parents {
		child := p.Clone()
		if len(child) > 1 {
			a, b := segment(random, len(child))
			for l, r := a, b-1; l < r; l, r = l+1, r-1 {
				child[l], child[r] = child[r], child[l]
			}
		}
		out[i] = child
	}
	return out, nil
}

// OrderCrossover (OX) keeps a random segment of one parent in place and
// fills the remaining positions in the order the other parent visits them.
// It returns two children, one per donor parent.
type OrderCrossover struct{}

func (OrderCrossover) Cross(a, b Genotype, random *rng.Random, space Space) ([]Genotype, error) {
	if !space.Contains(a) || !space.Contains(b) {
		return nil, fmt.Errorf("%w: parents are not permutations of %d elements", core.ErrDomainViolation, space.n)
	}
	if space.n < 2 {
		return []Genotype{a.Clone(), b.Clone()}, nil
	}
	lo, hi := segment(random, space.n)
	return []Genotype{orderFill(a, b, lo, hi), orderFill(b, a, lo, hi)}, nil
}

func orderFill(keep, donor Genotype, lo, hi int) Genotype {
	n := len(keep)
	child := make(Genotype, n)
	used := make([]bool, n)
	for i := lo; i < hi; i++ {
		child[i] = keep[i]
		used[keep[i]] = true
	}
	pos := hi % n
	for k := 0; k < n; k++ {
		gene := donor[(hi+k)%n]
		if used[gene] {
			continue
		}
		child[pos] = gene
		used[gene] = true
		pos = (pos + 1) % n
	}
	return child
}

// segment draws a non-empty half-open range [lo, hi) inside 0..n.
func segment(random *rng.Random, n int) (int, int) {
	a := random.Intn(n)
	b := random.Intn(n)
	if a > b {
		a, b = b, a
	}
	return a, b + 1
}
