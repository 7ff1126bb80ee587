package fields

import (
	"hash/fnv"

	"github.com/ajitpratap0/canvas-engine/internal/models"
)

// Palette holds the bucket colors, indexed by declared position. Ad hoc
// buckets hash their name into the same palette so a given value keeps its
// color across renders.
var Palette = []string{
	"#6B7280",
	"#F59E0B",
	"#10B981",
	"#3B82F6",
	"#8B5CF6",
	"#EC4899",
	"#EF4444",
	"#14B8A6",
}

// ColorAt returns the palette color for a declared bucket position.
func ColorAt(index int) string {
	if index < 0 {
		index = -index
	}
	return Palette[index%len(Palette)]
}

// ColorFor returns a stable color for an ad hoc bucket name.
func ColorFor(name string) string {
	h := fnv.New32a()
	h.Write([]byte(name))
	return Palette[int(h.Sum32())%len(Palette)]
}

// DeriveColumns builds the bucket set for a record batch: one column per
// declared allowedValue of the category field, in declared order. The first
// record carrying allowedValues for the category key wins; batches with no
// declared values yield no columns and views bucket ad hoc.
func DeriveColumns(records []models.Record, roles Roles) []models.Column {
	for _, rec := range records {
		f, ok := rec.Field(roles.Category)
		if !ok || len(f.AllowedValues) == 0 {
			continue
		}
		cols := make([]models.Column, 0, len(f.AllowedValues))
		for i, v := range f.AllowedValues {
			cols = append(cols, models.Column{ID: v, Name: v, Color: ColorAt(i)})
		}
		return cols
	}
	return nil
}
