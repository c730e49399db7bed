// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package insights

import (
	"sort"

	"github.com/tejzpr/thread-mcp/internal/content"
)

// SortInsights orders by priority rank, then confidence, keeping input order on ties
func SortInsights(list []Insight) {
	sort.SliceStable(list, func(i, j int) bool {
		ri, rj := list[i].Priority.Rank(), list[j].Priority.Rank()
		if ri != rj {
			return ri > rj
		}
		return list[i].Confidence > list[j].Confidence
	})
}

// DropStale removes insights that point at ids the snapshot does not contain
func DropStale(list []Insight, s *content.Snapshot) []Insight {
	out := list[:0:0]
	for _, ins := range list {
		ok := true
		for _, ref := range ins.References() {
			if !s.Has(ref) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, ins)
		}
	}
	return out
}
