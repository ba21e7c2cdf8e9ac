// Package output renders command results as tables, Markdown, JSON or YAML.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/mattn/go-isatty"
	md "github.com/nao1215/markdown"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Format types for output.
type Format string

const (
	// FormatTable represents table output format.
	FormatTable Format = "table"
	// FormatJSON represents JSON output format.
	FormatJSON Format = "json"
	// FormatYAML represents YAML output format.
	FormatYAML Format = "yaml"
	// FormatWide represents table output with every column.
	FormatWide Format = "wide"
	// FormatMarkdown represents a GitHub flavored Markdown table.
	FormatMarkdown Format = "markdown"
)

// Structured reports whether f is a machine readable format.
func (f Format) Structured() bool {
	return f == FormatJSON || f == FormatYAML
}

// Formatter interface for all output types.
type Formatter interface {
	Format(w io.Writer, data any) error
}

// FormatterFunc allows functions to implement Formatter.
type FormatterFunc func(io.Writer, any) error

// Format implements the Formatter interface.
func (f FormatterFunc) Format(w io.Writer, data any) error {
	return f(w, data)
}

// NewFormatter creates appropriate formatter based on format.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: "  "}
	case FormatYAML:
		return &YAMLFormatter{}
	case FormatMarkdown:
		return &MarkdownFormatter{}
	default:
		return &TableFormatter{}
	}
}

// JSONFormatter outputs JSON format.
type JSONFormatter struct {
	Indent string
}

// Format implements the Formatter interface for JSON output.
func (f *JSONFormatter) Format(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	if f.Indent != "" {
		encoder.SetIndent("", f.Indent)
	}
	return encoder.Encode(data)
}

// YAMLFormatter outputs YAML format.
type YAMLFormatter struct{}

// Format outputs data in YAML format.
func (f *YAMLFormatter) Format(w io.Writer, data any) error {
	yamlData, err := yaml.MarshalWithOptions(data,
		yaml.Indent(2),
		yaml.IndentSequence(false),
	)
	if err != nil {
		return err
	}
	_, err = w.Write(yamlData)
	return err
}

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault uses the default alignment.
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Data represents data formatted for table output.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align
}

// TableFormatter outputs table format.
type TableFormatter struct{}

// Format outputs data in table format. Slices of structs are tabulated by
// field; anything else falls back to JSON.
func (f *TableFormatter) Format(w io.Writer, data any) error {
	switch v := data.(type) {
	case Data:
		return f.formatTable(w, v)
	case *Data:
		return f.formatTable(w, *v)
	default:
		if tableData := structsToData(data); tableData != nil {
			return f.formatTable(w, *tableData)
		}
		jsonFormatter := &JSONFormatter{Indent: "  "}
		return jsonFormatter.Format(w, data)
	}
}

func (f *TableFormatter) formatTable(w io.Writer, data Data) error {
	config := tablewriter.Config{}
	if len(data.ColumnAlignment) > 0 {
		twAlign := make([]tw.Align, len(data.ColumnAlignment))
		for i, align := range data.ColumnAlignment {
			switch align {
			case AlignLeft:
				twAlign[i] = tw.AlignLeft
			case AlignCenter:
				twAlign[i] = tw.AlignCenter
			case AlignRight:
				twAlign[i] = tw.AlignRight
			default:
				twAlign[i] = tw.Skip
			}
		}
		config.Header.Alignment = tw.CellAlignment{PerColumn: twAlign}
		config.Row.Alignment = tw.CellAlignment{PerColumn: twAlign}
	}

	table := tablewriter.NewTable(w, tablewriter.WithConfig(config))
	if len(data.Headers) > 0 {
		headers := make([]any, len(data.Headers))
		for i, h := range data.Headers {
			headers[i] = h
		}
		table.Header(headers...)
	}
	for _, row := range data.Rows {
		cells := make([]any, len(row))
		for i, cell := range row {
			cells[i] = cell
		}
		if err := table.Append(cells...); err != nil {
			return err
		}
	}
	return table.Render()
}

// MarkdownFormatter outputs a Markdown table, for pasting into issues and
// CI job summaries.
type MarkdownFormatter struct{}

// Format implements the Formatter interface for Markdown output.
func (f *MarkdownFormatter) Format(w io.Writer, data any) error {
	var table Data
	switch v := data.(type) {
	case Data:
		table = v
	case *Data:
		table = *v
	default:
		tableData := structsToData(data)
		if tableData == nil {
			jsonFormatter := &JSONFormatter{Indent: "  "}
			return jsonFormatter.Format(w, data)
		}
		table = *tableData
	}
	return md.NewMarkdown(w).
		Table(md.TableSet{Header: table.Headers, Rows: table.Rows}).
		Build()
}

// DetectFormat returns the explicit format if given, a table on terminals
// and JSON when stdout is a pipe or a file.
func DetectFormat(explicitFormat string) Format {
	if explicitFormat != "" {
		return Format(strings.ToLower(explicitFormat))
	}
	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return FormatTable
	}
	return FormatJSON
}

// ParseFormat converts string to Format with validation.
func ParseFormat(s string) (Format, error) {
	format := Format(strings.ToLower(s))
	switch format {
	case FormatTable, FormatJSON, FormatYAML, FormatWide, FormatMarkdown, "":
		return format, nil
	case "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("invalid format %q: must be one of: table, wide, markdown, json, yaml", s)
	}
}

var titler = cases.Title(language.English)

// structsToData tabulates a non-empty slice of structs, one column per
// exported field, headed by the title-cased json name.
func structsToData(data any) *Data {
	v := reflect.ValueOf(data)
	if v.Kind() != reflect.Slice || v.Len() == 0 || v.Index(0).Kind() != reflect.Struct {
		return nil
	}

	elemType := v.Index(0).Type()
	var headers []string
	var fields []int
	for i := 0; i < elemType.NumField(); i++ {
		field := elemType.Field(i)
		if !field.IsExported() {
			continue
		}
		name := field.Name
		if tag := field.Tag.Get("json"); tag != "" && tag != "-" {
			if idx := strings.Index(tag, ","); idx >= 0 {
				tag = tag[:idx]
			}
			if tag != "" {
				name = titler.String(strings.ReplaceAll(tag, "_", " "))
			}
		}
		headers = append(headers, name)
		fields = append(fields, i)
	}

	rows := make([][]string, 0, v.Len())
	for i := 0; i < v.Len(); i++ {
		elem := v.Index(i)
		row := make([]string, len(fields))
		for j, f := range fields {
			row[j] = fmt.Sprintf("%v", elem.Field(f).Interface())
		}
		rows = append(rows, row)
	}
	return &Data{Headers: headers, Rows: rows}
}
