package view

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/jonathan-r-thorpe/nmos-js/internal/models"
	"github.com/jonathan-r-thorpe/nmos-js/internal/version"
)

// Row is one displayed field.
type Row struct {
	Label    string   `json:"label"`
	Path     string   `json:"path"`
	Renderer Renderer `json:"renderer"`
	Text     string   `json:"text,omitempty"`
	Raw      string   `json:"raw,omitempty"` // unconverted timestamp
	Href     string   `json:"href,omitempty"`
	Bool     *bool    `json:"bool,omitempty"`
	Items    []string `json:"items,omitempty"`
	Tags     []Tag    `json:"tags,omitempty"`
	Columns  []string `json:"columns,omitempty"`
	Cells    [][]Row  `json:"cells,omitempty"`
	Refs     []Ref    `json:"refs,omitempty"`
	// Query is set on back-reference rows; the referring resources are
	// resolved by the caller.
	Query *RefQuery `json:"query,omitempty"`
	// Truncated is set when Refs holds only part of the referring resources.
	Truncated bool `json:"truncated,omitempty"`
	Empty     bool `json:"empty,omitempty"`
}

// Tag is one entry of a tagged map.
type Tag struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (t Tag) String() string { return t.Key + ": " + t.Value }

// Ref is a link to another resource. Label is filled in by the caller once
// the referenced resource has been fetched.
type Ref struct {
	Resource string `json:"resource"`
	ID       string `json:"id"`
	Label    string `json:"label,omitempty"`
}

// Display returns the label, or the id when the resource has no label.
func (r Ref) Display() string {
	if r.Label != "" {
		return r.Label
	}
	return r.ID
}

// RefQuery selects the resources whose Field equals Value.
type RefQuery struct {
	Resource string `json:"resource"`
	Field    string `json:"field"`
	Value    string `json:"value"`
}

// Render projects a record through rules for the active API version. Rules
// newer than active are skipped; paths that do not resolve are omitted or
// rendered empty, never an error. Render has no side effects.
func Render(r models.Resource, rules []Rule, active version.Version) []Row {
	rows := make([]Row, 0, len(rules))
	for _, rule := range rules {
		if !active.AtLeast(rule.Since) {
			continue
		}
		if row, ok := renderRule(r, rule, active, false); ok {
			rows = append(rows, row)
		}
	}
	return rows
}

// omitsWhenAbsent lists renderers whose whole section disappears when the
// field is absent.
func omitsWhenAbsent(r Renderer) bool {
	switch r {
	case RenderTable, RenderTags, RenderItems, RenderReference, RenderJSON, RenderVerbatim:
		return true
	}
	return false
}

// renderRule renders one rule. Table cells never omit, so columns stay
// aligned.
func renderRule(r models.Resource, rule Rule, active version.Version, cell bool) (Row, bool) {
	row := Row{Label: rule.Label, Path: rule.Path, Renderer: rule.Renderer}

	if rule.Renderer == RenderBackReference {
		id := r.ID()
		if id == "" {
			return row, cell
		}
		row.Query = &RefQuery{Resource: rule.Reference, Field: rule.Path, Value: id}
		return row, true
	}

	v := Lookup(r, rule.Path)
	if rule.Transform != nil {
		v = rule.Transform(v)
	}
	if v.Missing() {
		if !cell && (rule.OmitIfAbsent || omitsWhenAbsent(rule.Renderer)) {
			return row, false
		}
		row.Empty = true
		return row, true
	}

	switch rule.Renderer {
	case RenderTimestamp:
		row.Raw = v.Text()
		row.Text = FormatTAI(row.Raw)
	case RenderBoolean:
		if b, ok := v.Bool(); ok {
			row.Bool = &b
		}
		row.Text = v.Text()
	case RenderURL:
		row.Text = v.Text()
		row.Href = row.Text
	case RenderItems:
		row.Items = itemTexts(v)
		row.Empty = len(row.Items) == 0
	case RenderTags:
		m, ok := v.Map()
		if !ok || len(m) == 0 {
			if cell {
				row.Empty = true
				return row, true
			}
			return row, false
		}
		for _, k := range sortedKeys(m) {
			row.Tags = append(row.Tags, Tag{Key: k, Value: strings.Join(itemTexts(Of(m[k])), ", ")})
		}
	case RenderTable:
		list, ok := v.List()
		if !ok {
			if cell {
				row.Empty = true
				return row, true
			}
			return row, false
		}
		row.Columns, row.Cells = renderTable(list, rule.Columns, active)
		row.Empty = len(row.Cells) == 0
	case RenderReference:
		row.Text = v.Text()
		row.Refs = []Ref{{Resource: rule.Reference, ID: row.Text}}
	case RenderJSON:
		b, err := json.MarshalIndent(v.Raw(), "", "  ")
		if err != nil {
			row.Text = v.Text()
		} else {
			row.Text = string(b)
		}
	default:
		row.Text = v.Text()
	}
	return row, true
}

// renderTable projects each element through the version-gated column rules.
// Without column rules, the columns are the sorted union of element keys.
func renderTable(list []interface{}, columns []Rule, active version.Version) ([]string, [][]Row) {
	var cols []Rule
	if len(columns) > 0 {
		for _, c := range columns {
			if active.AtLeast(c.Since) {
				cols = append(cols, c)
			}
		}
	} else {
		seen := map[string]interface{}{}
		for _, elem := range list {
			if m, ok := elem.(map[string]interface{}); ok {
				for k := range m {
					seen[k] = nil
				}
			}
		}
		for _, k := range sortedKeys(seen) {
			cols = append(cols, Rule{Path: k, Label: k, Renderer: RenderText})
		}
	}

	labels := make([]string, len(cols))
	for i, c := range cols {
		labels[i] = c.Label
	}

	cells := make([][]Row, 0, len(list))
	for _, elem := range list {
		m, _ := elem.(map[string]interface{})
		sub := models.Resource(m)
		line := make([]Row, 0, len(cols))
		for _, c := range cols {
			cell, _ := renderRule(sub, c, active, true)
			line = append(line, cell)
		}
		cells = append(cells, line)
	}
	return labels, cells
}

// itemTexts formats a scalar or a sequence of scalars as display strings.
func itemTexts(v Value) []string {
	list, ok := v.List()
	if !ok {
		if v.Missing() {
			return nil
		}
		return []string{v.Text()}
	}
	items := make([]string, 0, len(list))
	for _, e := range list {
		items = append(items, Of(e).Text())
	}
	return items
}

// Summarize renders a row as a single line of text, for terminals and logs.
func (row Row) Summarize() string {
	switch {
	case row.Empty:
		return ""
	case row.Renderer == RenderTags:
		parts := make([]string, len(row.Tags))
		for i, t := range row.Tags {
			parts[i] = t.String()
		}
		return strings.Join(parts, "; ")
	case row.Renderer == RenderItems:
		return strings.Join(row.Items, ", ")
	case row.Renderer == RenderTable:
		return strconv.Itoa(len(row.Cells)) + " rows"
	case len(row.Refs) > 0:
		parts := make([]string, len(row.Refs))
		for i, r := range row.Refs {
			parts[i] = r.Display()
		}
		if row.Truncated {
			parts = append(parts, "...")
		}
		return strings.Join(parts, ", ")
	}
	return row.Text
}
