// Package summary groups compared pairs by their classification and orders
// the differing ones by how much of the image changed.
package summary

import (
	"sort"

	"go.skia.org/imgdiff/imgdiff/go/types"
)

// Summary is the grouped result of a run. It is built once and not modified.
type Summary struct {
	// ByState holds every item, grouped by State. Diff items are sorted by
	// descending severity, the others by GoodPath.
	ByState map[types.State][]types.WorkItem

	// Total is the number of items summarized.
	Total int
}

// Summarize groups items by state. items is not modified.
func Summarize(items []types.WorkItem) *Summary {
	ret := &Summary{
		ByState: make(map[types.State][]types.WorkItem, len(types.AllStates)),
		Total:   len(items),
	}
	for _, item := range items {
		ret.ByState[item.State] = append(ret.ByState[item.State], item)
	}
	for state, group := range ret.ByState {
		if state == types.Diff {
			sort.Slice(group, func(i, j int) bool {
				return moreSevere(&group[i], &group[j])
			})
			continue
		}
		sort.Slice(group, func(i, j int) bool {
			return group[i].GoodPath < group[j].GoodPath
		})
	}
	return ret
}

// Severity is the fraction of differing pixels in [0, 1], or 0 if the item has
// no pixels.
func Severity(item *types.WorkItem) float64 {
	if item.NumPixels == 0 {
		return 0
	}
	return float64(item.NumDiffPixels) / float64(item.NumPixels)
}

func moreSevere(a, b *types.WorkItem) bool {
	if sa, sb := Severity(a), Severity(b); sa != sb {
		return sa > sb
	}
	if a.MaxChannelDelta != b.MaxChannelDelta {
		return a.MaxChannelDelta > b.MaxChannelDelta
	}
	return a.GoodPath < b.GoodPath
}

// Count returns the number of items with the given state.
func (s *Summary) Count(state types.State) int {
	return len(s.ByState[state])
}

// Items returns the items with the given state in report order.
func (s *Summary) Items(state types.State) []types.WorkItem {
	return s.ByState[state]
}

// Diffs returns the differing items, most severe first.
func (s *Summary) Diffs() []types.WorkItem {
	return s.ByState[types.Diff]
}

// Equal returns the number of items whose pixels matched, whether or not the
// files did.
func (s *Summary) Equal() int {
	return s.Count(types.ByteEqual) + s.Count(types.PixelEqual)
}
