package commands

import (
	"bytes"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/starford/tmgr/internal/models"
)

var listColumns = []string{"id", "name", "priority", "description", "created_at", "completed_at"}

// RenderList renders tasks as a table. The header row is printed even when
// tasks is empty.
func RenderList(tasks []models.Task) (string, error) {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(listColumns, "\t"))
	for _, t := range tasks {
		fields, err := t.Fields()
		if err != nil {
			return "", err
		}
		byName := make(map[string]string, len(fields))
		for _, f := range fields {
			byName[f.Name] = f.Value
		}
		row := make([]string, len(listColumns))
		for i, c := range listColumns {
			row[i] = oneLine(byName[c])
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	if err := w.Flush(); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// RenderTask renders every field of t as a Key/Value table.
func RenderTask(t models.Task) (string, error) {
	fields, err := t.Fields()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "Key\tValue")
	for _, f := range fields {
		fmt.Fprintf(w, "%s\t%s\n", f.Name, oneLine(f.Value))
	}
	if err := w.Flush(); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// oneLine keeps multi-line descriptions from breaking table alignment.
func oneLine(s string) string {
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\t", " ").Replace(s)
}
