package gto

import (
	"fmt"

	"github.com/lox/pokertrainer/analysis"
)

// Starter push/fold charts for heads-up blind-vs-blind play,
// approximating the unexploitable jamming ranges at each depth. Mixed
// classes carry fractional weights through the range notation.
var (
	sbPushCharts = map[int]string{
		5:  "22+,A2+,K2+,Q2+,J2+,T2s+,T5o+,92s+,96o+,84s+,86o+,74s+,76o,63s+,65o,53s+,43s",
		8:  "22+,A2+,K2s+,K4o+,Q2s+,Q6o+,J4s+,J8o+,T6s+,T8o+,96s+,98o,85s+,87o,75s+,64s+,54s",
		10: "22+,A2+,K2s+,K5o+,Q4s+,Q8o+,J6s+,J9o+,T7s+,T9o,97s+,87s,76s,65s:0.5",
		15: "22+,A2s+,A7o+,K9s+,KJo+,Q9s+,QJo,J9s+,T9s,98s",
	}

	bbCallCharts = map[int]string{
		5:  "22+,A2+,K2s+,K5o+,Q5s+,Q8o+,J7s+,J9o+,T8s+,98s",
		8:  "22+,A2+,K5s+,K9o+,Q8s+,QJo,J9s+,T9s",
		10: "22+,A2s+,A7o+,K9s+,KJo+,QTs+,JTs:0.5",
		15: "66+,A9s+,ATo+,KQs",
	}
)

// PushFoldTable builds the built-in blind-vs-blind push/fold strategy
// table. Every starting-hand class is covered at every charted depth,
// so drill queries at those depths never miss: classes outside the
// charted range fold (or fold to the push) at frequency 1.
func PushFoldTable() (*Table, error) {
	entries := make(map[Situation]Frequencies)

	if err := addChartEntries(entries, sbPushCharts, "SB", "unopened", ActionPush); err != nil {
		return nil, err
	}
	if err := addChartEntries(entries, bbCallCharts, "BB", "push", ActionCall); err != nil {
		return nil, err
	}

	return NewTable("push-fold", entries)
}

func addChartEntries(entries map[Situation]Frequencies, charts map[int]string, position, facing string, action Action) error {
	for depth, notation := range charts {
		r, err := analysis.ParseRange(notation)
		if err != nil {
			return fmt.Errorf("%s %dbb chart: %w", position, depth, err)
		}
		weights := r.ClassWeights()

		for _, class := range analysis.AllClasses() {
			w := weights[class]
			if w > 1 {
				w = 1
			}
			entries[Situation{
				Street:    Preflop,
				Position:  position,
				StackBB:   depth,
				Facing:    facing,
				HandClass: class,
			}] = Frequencies{
				action:     w,
				ActionFold: 1 - w,
			}
		}
	}
	return nil
}
