package classifier

import (
	"math"
	"math/rand/v2"
	"sort"
)

// stratifiedSplit partitions sample indices into train and test sets so each
// class keeps its share in both. Every class contributes at least one sample to
// each side, which requires at least two members per class.
func stratifiedSplit(y []int, classes []string, testFraction float64, seed uint64) (train, test []int, err error) {
	byClass := make([][]int, len(classes))
	for i, c := range y {
		byClass[c] = append(byClass[c], i)
	}

	for c, members := range byClass {
		if len(members) < 2 {
			return nil, nil, &InsufficientDataError{
				Message: "every class needs at least 2 examples for a stratified split",
				Class:   classes[c],
				Count:   len(members),
			}
		}
	}

	rng := newRand(seed, 0)
	for _, members := range byClass {
		rng.Shuffle(len(members), func(i, j int) {
			members[i], members[j] = members[j], members[i]
		})

		nTest := int(math.Round(float64(len(members)) * testFraction))
		nTest = max(1, min(nTest, len(members)-1))

		test = append(test, members[:nTest]...)
		train = append(train, members[nTest:]...)
	}

	sort.Ints(train)
	sort.Ints(test)
	return train, test, nil
}

// newRand returns a deterministic generator for a seed and stream.
func newRand(seed, stream uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, stream))
}
