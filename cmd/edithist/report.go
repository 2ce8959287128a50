package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"gopkg.in/yaml.v3"

	"github.com/dshills/edithistory/internal/engine"
	"github.com/dshills/edithistory/internal/engine/doc"
	"github.com/dshills/edithistory/internal/engine/schema"
)

// report is the machine-readable summary of a run.
type report struct {
	Cursor   int            `json:"cursor" yaml:"cursor"`
	Bytes    int            `json:"bytes" yaml:"bytes"`
	Actions  []reportAction `json:"actions" yaml:"actions"`
	Document any            `json:"document" yaml:"document"`
}

type reportAction struct {
	Index      int           `json:"index" yaml:"index"`
	ID         string        `json:"id,omitempty" yaml:"id,omitempty"`
	Status     string        `json:"status" yaml:"status"`
	Label      string        `json:"label,omitempty" yaml:"label,omitempty"`
	Bytes      int           `json:"bytes" yaml:"bytes"`
	EventCount int           `json:"eventCount" yaml:"eventCount"`
	Elided     int           `json:"elided,omitempty" yaml:"elided,omitempty"`
	Events     []reportEvent `json:"events,omitempty" yaml:"events,omitempty"`
}

type reportEvent struct {
	Op      string `json:"op" yaml:"op"`
	Route   string `json:"route" yaml:"route"`
	Summary string `json:"summary" yaml:"summary"`
	Bytes   int    `json:"bytes" yaml:"bytes"`
}

// loadDocument reads a YAML document of type t.
func loadDocument(t *schema.Type, path string) (engine.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	var x any
	if err := yaml.Unmarshal(data, &x); err != nil {
		return nil, fmt.Errorf("parse document %s: %w", path, err)
	}
	v, err := doc.FromNative(t, x)
	if err != nil {
		return nil, fmt.Errorf("document %s: %w", path, err)
	}
	return v, nil
}

func buildReport(e *engine.Engine, events bool) (report, error) {
	x, err := e.Native("")
	if err != nil {
		return report{}, err
	}
	r := report{
		Cursor:   e.CursorIndex(),
		Bytes:    e.HistoryBytes(),
		Actions:  []reportAction{},
		Document: x,
	}
	for _, a := range e.Render(events) {
		ra := reportAction{
			Index:      a.Index,
			Status:     a.Status.String(),
			Bytes:      a.ByteCount,
			EventCount: a.EventCount,
			Elided:     a.Elided,
		}
		if a.ID != uuid.Nil {
			ra.ID = a.ID.String()
		}
		if a.Metadata != nil {
			ra.Label = fmt.Sprint(a.Metadata)
		}
		for _, ev := range a.Events {
			ra.Events = append(ra.Events, reportEvent{
				Op:      ev.Op.String(),
				Route:   ev.Route,
				Summary: ev.Summary,
				Bytes:   ev.ByteCount,
			})
		}
		r.Actions = append(r.Actions, ra)
	}
	return r, nil
}

// errNoMatch is returned when a report query selects nothing.
var errNoMatch = errors.New("query matched nothing")

// queryReport prints the part of the JSON report selected by a gjson path
// such as "actions.#.status" or "document.items.0".
func queryReport(w io.Writer, e *engine.Engine, query string, events bool) error {
	r, err := buildReport(e, events)
	if err != nil {
		return err
	}
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	res := gjson.GetBytes(data, query)
	if !res.Exists() {
		return fmt.Errorf("%w: %s", errNoMatch, query)
	}
	if res.IsObject() || res.IsArray() {
		_, err = w.Write(pretty.Pretty([]byte(res.Raw)))
		return err
	}
	_, err = fmt.Fprintln(w, res.String())
	return err
}

// writeReport prints the history and the final document in format.
func writeReport(w io.Writer, e *engine.Engine, format string, events bool) error {
	r, err := buildReport(e, events)
	if err != nil {
		return err
	}

	switch format {
	case "json":
		data, err := json.Marshal(r)
		if err != nil {
			return err
		}
		_, err = w.Write(pretty.Pretty(data))
		return err

	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "INDEX\tSTATUS\tBYTES\tEVENTS\tLABEL\n")
	for _, a := range r.Actions {
		mark := ""
		if a.Index == r.Cursor-1 {
			mark = "*"
		}
		label := a.Label
		if a.Status == engine.ElisionMarker.String() {
			label = fmt.Sprintf("(closed %d)", a.Elided)
		}
		fmt.Fprintf(tw, "%d%s\t%s\t%d\t%d\t%s\n", a.Index, mark, a.Status, a.Bytes, a.EventCount, label)
		for _, ev := range a.Events {
			fmt.Fprintf(tw, "\t  %s\t%d\t\t%s %s\n", ev.Op, ev.Bytes, ev.Route, ev.Summary)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	text, err := e.Format("")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "\ncursor %d, %d bytes\n%s\n", r.Cursor, r.Bytes, text)
	return err
}
