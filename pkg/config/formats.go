package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
	"gopkg.in/yaml.v3"
)

// PackageFile is the project manifest that may embed configuration.
const PackageFile = "package.json"

// DefaultPackageField is the package.json field holding configuration.
const DefaultPackageField = "mdpipeConfig"

// decode parses a configuration file by name. found is false for a
// package.json without the configuration field.
func (r *Resolver) decode(path string, data []byte) (doc any, found bool, err error) {
	name := strings.ToLower(filepath.Base(path))
	switch {
	case name == PackageFile:
		return decodePackage(data, r.packageField)
	case strings.HasSuffix(name, ".json"):
		doc, err = decodeJSON(data)
	case strings.HasSuffix(name, ".hcl"):
		doc, err = decodeHCL(path, data)
	default:
		doc, err = decodeYAML(data)
	}
	return doc, err == nil, err
}

func decodeJSON(data []byte) (any, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			line, col := position(data, syntaxErr.Offset)
			return nil, &Error{Err: ErrSyntax, Issues: []Issue{{
				Location: fmt.Sprintf("%d:%d", line, col),
				Message:  syntaxErr.Error(),
			}}}
		}
		return nil, &Error{Err: ErrSyntax, Issues: []Issue{{Message: err.Error()}}}
	}
	return doc, nil
}

func decodePackage(data []byte, field string) (any, bool, error) {
	var pkg map[string]json.RawMessage
	if _, err := decodeJSON(data); err != nil {
		return nil, false, err
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, false, &Error{Err: ErrSyntax, Issues: []Issue{{Message: err.Error()}}}
	}
	raw, ok := pkg[field]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, false, nil
	}
	doc, err := decodeJSON(raw)
	if err != nil {
		return nil, false, err
	}
	return doc, true, nil
}

func decodeYAML(data []byte) (any, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &Error{Err: ErrSyntax, Issues: []Issue{{Message: err.Error()}}}
	}
	if doc == nil {
		return map[string]any{}, nil
	}
	normalized, err := toJSONValue(doc)
	if err != nil {
		return nil, &Error{Err: ErrSyntax, Issues: []Issue{{Message: err.Error()}}}
	}
	return normalized, nil
}

// decodeHCL reads top-level attributes, e.g.
//
//	settings = { bullet = "-" }
//	plugins  = ["gfm"]
func decodeHCL(path string, data []byte) (any, error) {
	file, diags := hclparse.NewParser().ParseHCL(data, path)
	if diags.HasErrors() {
		return nil, &Error{Err: ErrSyntax, Issues: diagnosticIssues(diags)}
	}

	attrs, diags := file.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, &Error{Err: ErrSyntax, Issues: diagnosticIssues(diags)}
	}

	doc := make(map[string]any, len(attrs))
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, &Error{Err: ErrSyntax, Issues: diagnosticIssues(diags)}
		}
		native, err := ctyToNative(val)
		if err != nil {
			return nil, &Error{Err: ErrSyntax, Issues: []Issue{{
				Location: rangeLocation(&attr.Range),
				Message:  fmt.Sprintf("attribute %q: %v", name, err),
			}}}
		}
		doc[name] = native
	}
	return doc, nil
}

// ctyToNative converts a cty.Value to its most natural Go counterpart.
func ctyToNative(v cty.Value) (any, error) {
	if v.IsNull() || !v.IsKnown() {
		return nil, nil
	}

	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString(), nil

	case ty == cty.Number:
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return nil, fmt.Errorf("could not convert number: %w", err)
		}
		return f, nil

	case ty == cty.Bool:
		return v.True(), nil

	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		slice := make([]any, 0, v.LengthInt())
		it := v.ElementIterator()
		for it.Next() {
			_, val := it.Element()
			native, err := ctyToNative(val)
			if err != nil {
				return nil, err
			}
			slice = append(slice, native)
		}
		return slice, nil

	case ty.IsObjectType() || ty.IsMapType():
		m := make(map[string]any, v.LengthInt())
		it := v.ElementIterator()
		for it.Next() {
			key, val := it.Element()
			native, err := ctyToNative(val)
			if err != nil {
				return nil, fmt.Errorf("in attribute %q: %w", key.AsString(), err)
			}
			m[key.AsString()] = native
		}
		return m, nil

	default:
		return nil, fmt.Errorf("unsupported type %s", ty.FriendlyName())
	}
}

func diagnosticIssues(diags hcl.Diagnostics) []Issue {
	issues := make([]Issue, 0, len(diags))
	for _, d := range diags {
		if d.Severity != hcl.DiagError {
			continue
		}
		msg := d.Summary
		if d.Detail != "" {
			msg += "; " + d.Detail
		}
		issues = append(issues, Issue{Location: rangeLocation(d.Subject), Message: msg})
	}
	return issues
}

func rangeLocation(rng *hcl.Range) string {
	if rng == nil {
		return ""
	}
	return fmt.Sprintf("%d:%d", rng.Start.Line, rng.Start.Column)
}

// position converts a byte offset into a 1-based line and column.
func position(data []byte, offset int64) (int, int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	before := data[:offset]
	line := bytes.Count(before, []byte("\n")) + 1
	col := len(before) - bytes.LastIndexByte(before, '\n')
	return line, col
}
