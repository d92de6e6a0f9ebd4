package pinfile

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/skaphos/pinkeeper/internal/model"
)

// Render emits the registry block for records in the given order. Lines
// wider than MaxLineWidth carry the annotation.
func Render(records []model.RepoRecord, opts Options) string {
	opts = opts.withDefaults()
	var b strings.Builder
	b.WriteString("var " + opts.VarName + " = []" + opts.TypeName + "{\n")
	for _, rec := range records {
		b.WriteString("\t" + renderRecord(rec) + ",\n")
	}
	b.WriteString("}\n")
	return Annotate(b.String(), opts)
}

func renderRecord(rec model.RepoRecord) string {
	paths := "nil"
	if len(rec.WatchedPaths) > 0 {
		quoted := make([]string, 0, len(rec.WatchedPaths))
		for _, p := range rec.WatchedPaths {
			quoted = append(quoted, strconv.Quote(p))
		}
		paths = "[]string{" + strings.Join(quoted, ", ") + "}"
	}
	return "{Name: " + strconv.Quote(rec.Name) +
		", Version: " + strconv.Quote(rec.Version) +
		", WatchedPaths: " + paths + "}"
}

// Annotate appends the line-length annotation to every line of text longer
// than MaxLineWidth characters.
func Annotate(text string, opts Options) string {
	opts = opts.withDefaults()
	var b strings.Builder
	for _, line := range strings.SplitAfter(text, "\n") {
		if line == "" {
			continue
		}
		body := strings.TrimSuffix(line, "\n")
		if utf8.RuneCountInString(body) > opts.MaxLineWidth {
			b.WriteString(body + " " + opts.Annotation)
			if strings.HasSuffix(line, "\n") {
				b.WriteString("\n")
			}
			continue
		}
		b.WriteString(line)
	}
	return b.String()
}
