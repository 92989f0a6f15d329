package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/tealeg/xlsx"

	"github.com/san-kum/autoxsim/internal/dynamo"
)

type ExportData struct {
	Run     *RunMetadata `json:"run"`
	Species []string     `json:"species"`
	Times   []float64    `json:"times"`
	States  [][]float64  `json:"states"`
}

// ExportJSON writes metadata and the full trajectory as one document.
func ExportJSON(w io.Writer, meta *RunMetadata, traj *dynamo.Trajectory) error {
	data := ExportData{
		Run:     meta,
		Species: traj.Species(),
		Times:   traj.Times(),
		States:  make([][]float64, traj.Len()),
	}
	traj.Each(func(i int, _ float64, x dynamo.State) {
		data.States[i] = x.Clone()
	})

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// ExportXLSX writes a workbook with a "trajectory" sheet laid out like
// states.csv and a "run" sheet of metadata key/value rows.
func ExportXLSX(w io.Writer, meta *RunMetadata, traj *dynamo.Trajectory) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("trajectory")
	if err != nil {
		return err
	}
	row := sheet.AddRow()
	row.AddCell().SetString("time")
	for _, name := range traj.Species() {
		row.AddCell().SetString(name)
	}
	traj.Each(func(_ int, t float64, x dynamo.State) {
		row := sheet.AddRow()
		row.AddCell().SetFloat(t)
		for _, v := range x {
			row.AddCell().SetFloat(v)
		}
	})

	info, err := file.AddSheet("run")
	if err != nil {
		return err
	}
	pair := func(key string, value interface{}) {
		r := info.AddRow()
		r.AddCell().SetString(key)
		switch v := value.(type) {
		case float64:
			r.AddCell().SetFloat(v)
		case int:
			r.AddCell().SetFloat(float64(v))
		default:
			r.AddCell().SetString(fmt.Sprint(v))
		}
	}
	pair("id", meta.ID)
	pair("variant", meta.Variant)
	pair("method", meta.Method)
	pair("start", meta.Start)
	pair("end", meta.End)
	pair("samples", meta.Samples)
	pair("rtol", meta.Tolerance.Rel)
	pair("atol", meta.Tolerance.Abs)
	for _, k := range sortedKeys(meta.Rates) {
		pair(k, meta.Rates[k])
	}
	for _, k := range sortedKeys(meta.Metrics) {
		pair(k, meta.Metrics[k])
	}
	return file.Write(w)
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
