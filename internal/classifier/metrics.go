package classifier

import (
	"fmt"
	"strings"
)

// ClassMetrics holds precision, recall and F1 for one class or an average.
type ClassMetrics struct {
	Class     string  `json:"class"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// Evaluation summarizes classifier quality on the held-out partition.
type Evaluation struct {
	Accuracy    float64        `json:"accuracy"`
	TrainSize   int            `json:"train_size"`
	TestSize    int            `json:"test_size"`
	PerClass    []ClassMetrics `json:"per_class"`
	MacroAvg    ClassMetrics   `json:"macro_avg"`
	WeightedAvg ClassMetrics   `json:"weighted_avg"`
}

// evaluate compares predictions against the true labels. Classes with no
// predictions get precision 0, classes with no support get recall 0.
func evaluate(yTrue, yPred []int, classes []string) *Evaluation {
	k := len(classes)
	tp := make([]int, k)
	predicted := make([]int, k)
	support := make([]int, k)
	correct := 0
	for i := range yTrue {
		support[yTrue[i]]++
		if yPred[i] >= 0 && yPred[i] < k {
			predicted[yPred[i]]++
		}
		if yTrue[i] == yPred[i] {
			tp[yTrue[i]]++
			correct++
		}
	}

	ev := &Evaluation{
		TestSize:    len(yTrue),
		PerClass:    make([]ClassMetrics, k),
		MacroAvg:    ClassMetrics{Class: "macro avg"},
		WeightedAvg: ClassMetrics{Class: "weighted avg"},
	}
	if len(yTrue) > 0 {
		ev.Accuracy = float64(correct) / float64(len(yTrue))
	}

	for c := range classes {
		m := ClassMetrics{Class: classes[c], Support: support[c]}
		if predicted[c] > 0 {
			m.Precision = float64(tp[c]) / float64(predicted[c])
		}
		if support[c] > 0 {
			m.Recall = float64(tp[c]) / float64(support[c])
		}
		if m.Precision+m.Recall > 0 {
			m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
		}
		ev.PerClass[c] = m

		ev.MacroAvg.Precision += m.Precision
		ev.MacroAvg.Recall += m.Recall
		ev.MacroAvg.F1 += m.F1
		w := float64(m.Support)
		ev.WeightedAvg.Precision += w * m.Precision
		ev.WeightedAvg.Recall += w * m.Recall
		ev.WeightedAvg.F1 += w * m.F1
	}

	total := len(yTrue)
	ev.MacroAvg.Support = total
	ev.WeightedAvg.Support = total
	if k > 0 {
		ev.MacroAvg.Precision /= float64(k)
		ev.MacroAvg.Recall /= float64(k)
		ev.MacroAvg.F1 /= float64(k)
	}
	if total > 0 {
		ev.WeightedAvg.Precision /= float64(total)
		ev.WeightedAvg.Recall /= float64(total)
		ev.WeightedAvg.F1 /= float64(total)
	}
	return ev
}

// Report renders the evaluation as a fixed-width classification report.
func (e *Evaluation) Report() string {
	width := len("weighted avg")
	for _, m := range e.PerClass {
		width = max(width, len(m.Class))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%*s %9s %9s %9s %9s\n\n", width, "", "precision", "recall", "f1-score", "support")
	for _, m := range e.PerClass {
		writeRow(&sb, width, m)
	}
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "%*s %9s %9s %9.2f %9d\n", width, "accuracy", "", "", e.Accuracy, e.TestSize)
	writeRow(&sb, width, e.MacroAvg)
	writeRow(&sb, width, e.WeightedAvg)
	return sb.String()
}

func writeRow(sb *strings.Builder, width int, m ClassMetrics) {
	fmt.Fprintf(sb, "%*s %9.2f %9.2f %9.2f %9d\n", width, m.Class, m.Precision, m.Recall, m.F1, m.Support)
}
