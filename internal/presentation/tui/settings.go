package tui

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/mdpipe/pkg/engine"
)

// SettingsTable lists settings as a Markdown table.
func SettingsTable(descs []engine.SettingDescriptor) string {
	var b strings.Builder
	b.WriteString("| Setting | Default | Values | Description |\n")
	b.WriteString("| --- | --- | --- | --- |\n")
	for _, d := range descs {
		fmt.Fprintf(&b, "| `%s` | %s | %s | %s |\n", d.Name, literal(d.Default), values(d), cell(d.Help))
	}
	return b.String()
}

// PrintSettings writes the settings table to w. When styled is set the table
// is rendered for the terminal, otherwise the Markdown is written as is.
func PrintSettings(w io.Writer, descs []engine.SettingDescriptor, styled bool) error {
	table := SettingsTable(descs)
	if styled {
		render, err := NewRenderer()
		if err != nil {
			return fmt.Errorf("create renderer: %w", err)
		}
		if table, err = render(table); err != nil {
			return fmt.Errorf("render settings: %w", err)
		}
	}
	_, err := io.WriteString(w, table)
	return err
}

func values(d engine.SettingDescriptor) string {
	switch {
	case len(d.Enum) > 0:
		parts := make([]string, len(d.Enum))
		for i, v := range d.Enum {
			parts[i] = literal(v)
		}
		return strings.Join(parts, ", ")
	case d.Min != nil:
		return fmt.Sprintf("%s >= %g", d.Type, *d.Min)
	default:
		return d.Type
	}
}

// literal formats v as JSON inside a code span.
func literal(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return cell(fmt.Sprint(v))
	}
	return "`` " + cell(string(b)) + " ``"
}

func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
