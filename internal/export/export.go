// Package export serializes simulation results for other tools.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/san-kum/glacialsim/internal/dynamo"
)

type Format string

const (
	FormatJSON    Format = "json"
	FormatMsgPack Format = "msgpack"
)

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "json":
		return FormatJSON, nil
	case "msgpack", "mp":
		return FormatMsgPack, nil
	}
	return "", fmt.Errorf("export: unknown format %q", s)
}

// Ext returns the conventional file extension including the dot.
func (f Format) Ext() string {
	if f == FormatMsgPack {
		return ".msgpack"
	}
	return ".json"
}

type ExportData struct {
	ID         string               `json:"id,omitempty"`
	Model      string               `json:"model"`
	Integrator string               `json:"integrator,omitempty"`
	Steps      int                  `json:"steps"`
	Times      []float64            `json:"times"`
	Forcing    []float64            `json:"forcing"`
	States     []string             `json:"states"`
	Vars       map[string][]float64 `json:"vars"`
	PeakIdx    []int                `json:"peak_idx"`
	Metrics    map[string]float64   `json:"metrics"`
}

// FromResult flattens a result into columns.
func FromResult(id, integrator string, result *dynamo.Result) ExportData {
	data := ExportData{
		ID:         id,
		Model:      result.Model,
		Integrator: integrator,
		Steps:      len(result.Snapshots),
		Times:      result.Times,
		Forcing:    result.Forcing,
		States:     make([]string, len(result.Snapshots)),
		Vars:       make(map[string][]float64),
		PeakIdx:    result.PeakIdx,
		Metrics:    result.Metrics,
	}

	for i, s := range result.Snapshots {
		data.States[i] = s.State.Label()
	}
	if len(result.Snapshots) > 0 {
		for _, name := range result.Snapshots[0].VarNames() {
			data.Vars[name] = result.Series(name)
		}
	}
	return data
}

func WriteJSON(w io.Writer, data ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// WriteMsgPack encodes data with the same field names as the JSON form.
func WriteMsgPack(w io.Writer, data ExportData) error {
	enc := msgpack.NewEncoder(w)
	enc.SetCustomStructTag("json")
	return enc.Encode(data)
}

func ReadMsgPack(r io.Reader) (ExportData, error) {
	var data ExportData
	dec := msgpack.NewDecoder(r)
	dec.SetCustomStructTag("json")
	err := dec.Decode(&data)
	return data, err
}

func Write(w io.Writer, format Format, data ExportData) error {
	switch format {
	case FormatMsgPack:
		return WriteMsgPack(w, data)
	case FormatJSON:
		return WriteJSON(w, data)
	}
	return fmt.Errorf("export: unknown format %q", format)
}

// WriteFile writes data to path, or to stdout when path is "-".
func WriteFile(path string, format Format, data ExportData) error {
	if path == "-" {
		return Write(os.Stdout, format, data)
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(file, format, data); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
