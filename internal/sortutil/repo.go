package sortutil

import (
	"sort"

	"github.com/skaphos/pinkeeper/internal/model"
)

// SortRecords orders registry records by name. Equal names keep their
// relative order.
func SortRecords(records []model.RepoRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Name < records[j].Name
	})
}

// SortOutcomes orders outcomes by record name.
func SortOutcomes(outcomes []model.Outcome) {
	sort.SliceStable(outcomes, func(i, j int) bool {
		return outcomes[i].Record.Name < outcomes[j].Record.Name
	})
}
