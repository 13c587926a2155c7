package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabelEncoder(t *testing.T) {
	e := &LabelEncoder{}
	e.Fit([]string{"HR", "ENGINEERING", "HR", "FINANCE"})
	assert.Equal(t, []string{"ENGINEERING", "FINANCE", "HR"}, e.Classes)

	ids, err := e.EncodeAll([]string{"HR", "ENGINEERING"})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 0}, ids)

	_, err = e.Encode("LEGAL")
	assert.Error(t, err)

	label, ok := e.Decode(1)
	assert.True(t, ok)
	assert.Equal(t, "FINANCE", label)

	_, ok = e.Decode(3)
	assert.False(t, ok)
	_, ok = e.Decode(-1)
	assert.False(t, ok)
}

func TestStratifiedSplit(t *testing.T) {
	classes := []string{"a", "b", "c"}
	var y []int
	for c, n := range []int{10, 3, 2} {
		for i := 0; i < n; i++ {
			y = append(y, c)
		}
	}

	train, test, err := stratifiedSplit(y, classes, 0.2, 42)
	require.NoError(t, err)
	assert.Len(t, train, 15-len(test))

	testPerClass := make([]int, len(classes))
	for _, i := range test {
		testPerClass[y[i]]++
	}
	assert.Equal(t, []int{2, 1, 1}, testPerClass)

	again, againTest, err := stratifiedSplit(y, classes, 0.2, 42)
	require.NoError(t, err)
	assert.Equal(t, train, again)
	assert.Equal(t, test, againTest)
}

func TestStratifiedSplit_SingletonClass(t *testing.T) {
	_, _, err := stratifiedSplit([]int{0, 0, 1}, []string{"a", "b"}, 0.2, 42)

	var dataErr *InsufficientDataError
	require.ErrorAs(t, err, &dataErr)
	assert.Equal(t, "b", dataErr.Class)
	assert.Equal(t, 1, dataErr.Count)
}

func TestEvaluate(t *testing.T) {
	ev := evaluate([]int{0, 0, 1, 1}, []int{0, 1, 1, 1}, []string{"a", "b"})

	assert.InDelta(t, 0.75, ev.Accuracy, 1e-12)
	assert.InDelta(t, 1.0, ev.PerClass[0].Precision, 1e-12)
	assert.InDelta(t, 0.5, ev.PerClass[0].Recall, 1e-12)
	assert.InDelta(t, 2.0/3.0, ev.PerClass[0].F1, 1e-12)
	assert.InDelta(t, 2.0/3.0, ev.PerClass[1].Precision, 1e-12)
	assert.InDelta(t, 1.0, ev.PerClass[1].Recall, 1e-12)
	assert.InDelta(t, 0.8, ev.PerClass[1].F1, 1e-12)
	assert.InDelta(t, (2.0/3.0+0.8)/2, ev.MacroAvg.F1, 1e-12)
	assert.Equal(t, 4, ev.WeightedAvg.Support)

	report := ev.Report()
	assert.Contains(t, report, "precision")
	assert.Contains(t, report, "accuracy")
	assert.Contains(t, report, "macro avg")
}

func TestEvaluate_ClassNeverPredicted(t *testing.T) {
	ev := evaluate([]int{0, 1}, []int{0, 0}, []string{"a", "b"})

	assert.Zero(t, ev.PerClass[1].Precision)
	assert.Zero(t, ev.PerClass[1].Recall)
	assert.Zero(t, ev.PerClass[1].F1)
}
