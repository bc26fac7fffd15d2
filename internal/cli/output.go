package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/mesh-intelligence/record/pkg/record"
	"github.com/mesh-intelligence/record/pkg/types"
)

// parseAttrs parses key=value arguments in order. Values that are valid
// JSON scalars are decoded (null, numbers, booleans, quoted strings);
// anything else is kept as the raw string.
func parseAttrs(args []string) ([]record.Attr, error) {
	attrs := make([]record.Attr, 0, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: invalid pair %q (expected key=value)", errUsage, arg)
		}
		attrs = append(attrs, record.Attr{Key: key, Value: parseValue(value)})
	}
	return attrs, nil
}

func parseValue(raw string) any {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var parsed any
	if err := dec.Decode(&parsed); err != nil || dec.More() {
		return raw
	}
	switch v := parsed.(type) {
	case nil, bool, string:
		return v
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
	}
	return raw
}

// writeRows prints rows as a tab-aligned table, or as a JSON array of
// column-keyed objects.
func writeRows(w io.Writer, rows []types.Row, asJSON bool) error {
	if asJSON {
		out := make([]map[string]any, len(rows))
		for i, r := range rows {
			out[i] = r.Map()
		}
		return writeJSON(w, out)
	}
	if len(rows) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(rows[0].Columns, "\t"))
	for _, r := range rows {
		cells := make([]string, len(r.Values))
		for i, v := range r.Values {
			cells[i] = formatValue(v)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(x)
	default:
		return fmt.Sprint(x)
	}
}

func writeJSON(w io.Writer, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}
