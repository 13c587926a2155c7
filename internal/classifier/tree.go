package classifier

import (
	"math"
	"math/rand/v2"
	"sort"
)

const leafFeature = -1

// Node is one split or leaf of a decision tree. Leaves carry class probabilities.
type Node struct {
	Feature   int       `json:"f"`
	Threshold float64   `json:"t,omitempty"`
	Left      int       `json:"l,omitempty"`
	Right     int       `json:"r,omitempty"`
	Proba     []float64 `json:"p,omitempty"`
}

// IsLeaf reports whether the node terminates a path.
func (n Node) IsLeaf() bool {
	return n.Feature == leafFeature
}

// Tree is a CART classification tree stored as a flat node array rooted at 0.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// predict walks x down to a leaf and returns its class distribution.
func (t *Tree) predict(x SparseVector) []float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.IsLeaf() {
			return n.Proba
		}
		if x.At(n.Feature) <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// treeBuilder grows a single tree with gini impurity and random feature subsets.
type treeBuilder struct {
	X           []SparseVector
	y           []int
	nClasses    int
	nFeatures   int
	maxFeatures int
	maxDepth    int
	minSplit    int
	rng         *rand.Rand

	nodes    []Node
	features []int   // permutation buffer for feature sampling
	present  []int32 // present[f] == stamp when f is non-zero in the current node
	stamp    int32
	values   []sampleValue
}

type sampleValue struct {
	value float64
	class int
}

type split struct {
	feature   int
	threshold float64
	impurity  float64
}

func newTreeBuilder(X []SparseVector, y []int, nClasses, nFeatures, maxFeatures, maxDepth, minSplit int, rng *rand.Rand) *treeBuilder {
	features := make([]int, nFeatures)
	for i := range features {
		features[i] = i
	}
	return &treeBuilder{
		X:           X,
		y:           y,
		nClasses:    nClasses,
		nFeatures:   nFeatures,
		maxFeatures: maxFeatures,
		maxDepth:    maxDepth,
		minSplit:    max(2, minSplit),
		rng:         rng,
		features:    features,
		present:     make([]int32, nFeatures),
	}
}

// build grows a tree over the given (possibly repeated) sample indices.
func (b *treeBuilder) build(samples []int) *Tree {
	b.nodes = b.nodes[:0]
	b.grow(samples, 0)
	return &Tree{Nodes: append([]Node(nil), b.nodes...)}
}

func (b *treeBuilder) grow(samples []int, depth int) int {
	counts := b.classCounts(samples)
	idx := len(b.nodes)
	b.nodes = append(b.nodes, Node{Feature: leafFeature})

	if len(samples) < b.minSplit || isPure(counts) || (b.maxDepth > 0 && depth >= b.maxDepth) {
		b.nodes[idx].Proba = toProba(counts, len(samples))
		return idx
	}

	best, ok := b.bestSplit(samples, counts)
	if !ok {
		b.nodes[idx].Proba = toProba(counts, len(samples))
		return idx
	}

	var left, right []int
	for _, s := range samples {
		if b.X[s].At(best.feature) <= best.threshold {
			left = append(left, s)
		} else {
			right = append(right, s)
		}
	}

	l := b.grow(left, depth+1)
	r := b.grow(right, depth+1)
	b.nodes[idx] = Node{Feature: best.feature, Threshold: best.threshold, Left: l, Right: r}
	return idx
}

// bestSplit draws features without replacement until maxFeatures features
// that vary across the node's samples have been evaluated. Constant features
// do not count toward maxFeatures, so sparse nodes still compare a full
// subset of real candidates.
func (b *treeBuilder) bestSplit(samples []int, counts []int) (split, bool) {
	b.stamp++
	for _, s := range samples {
		for _, f := range b.X[s].Indices {
			b.present[f] = b.stamp
		}
	}

	best := split{impurity: math.Inf(1)}
	evaluated := 0
	for i := 0; i < b.nFeatures && evaluated < b.maxFeatures; i++ {
		j := i + b.rng.IntN(b.nFeatures-i)
		b.features[i], b.features[j] = b.features[j], b.features[i]
		f := b.features[i]

		// A feature absent from every sample is constant zero here.
		if b.present[f] != b.stamp {
			continue
		}
		s, ok := b.evaluate(samples, counts, f)
		if !ok {
			continue
		}
		evaluated++
		if s.impurity < best.impurity {
			best = s
		}
	}
	return best, evaluated > 0
}

// evaluate finds the threshold on feature f minimizing weighted child gini.
func (b *treeBuilder) evaluate(samples []int, counts []int, f int) (split, bool) {
	b.values = b.values[:0]
	for _, s := range samples {
		b.values = append(b.values, sampleValue{value: b.X[s].At(f), class: b.y[s]})
	}
	sort.Slice(b.values, func(i, j int) bool { return b.values[i].value < b.values[j].value })

	n := len(b.values)
	if b.values[0].value == b.values[n-1].value {
		return split{}, false
	}

	left := make([]int, b.nClasses)
	right := append([]int(nil), counts...)
	best := split{feature: f, impurity: math.Inf(1)}
	for i := 0; i < n-1; i++ {
		c := b.values[i].class
		left[c]++
		right[c]--
		if b.values[i].value == b.values[i+1].value {
			continue
		}
		nl, nr := i+1, n-i-1
		imp := float64(nl)*gini(left, nl) + float64(nr)*gini(right, nr)
		if imp < best.impurity {
			best.impurity = imp
			best.threshold = (b.values[i].value + b.values[i+1].value) / 2
		}
	}
	return best, !math.IsInf(best.impurity, 1)
}

func (b *treeBuilder) classCounts(samples []int) []int {
	counts := make([]int, b.nClasses)
	for _, s := range samples {
		counts[b.y[s]]++
	}
	return counts
}

func gini(counts []int, total int) float64 {
	if total == 0 {
		return 0
	}
	sum := 0.0
	for _, c := range counts {
		p := float64(c) / float64(total)
		sum += p * p
	}
	return 1 - sum
}

func isPure(counts []int) bool {
	nonZero := 0
	for _, c := range counts {
		if c > 0 {
			nonZero++
		}
	}
	return nonZero <= 1
}

func toProba(counts []int, total int) []float64 {
	proba := make([]float64, len(counts))
	if total == 0 {
		return proba
	}
	for i, c := range counts {
		proba[i] = float64(c) / float64(total)
	}
	return proba
}
