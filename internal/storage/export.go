package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/jmkerr/odelab/internal/sim"
)

type ExportData struct {
	Model    string             `json:"model"`
	Dt       float64            `json:"dt"`
	Duration float64            `json:"duration"`
	Samples  int                `json:"samples"`
	Times    []float64          `json:"times"`
	States   [][]float64        `json:"states"`
	Metrics  map[string]float64 `json:"metrics"`
	Failure  string             `json:"failure,omitempty"`
}

func buildExport(model string, cfg sim.Config, result *sim.Result) ExportData {
	tr := result.Trajectory
	data := ExportData{
		Model:    model,
		Dt:       cfg.Dt,
		Duration: cfg.Duration,
		Samples:  tr.Len(),
		Times:    tr.Times,
		States:   make([][]float64, tr.Len()),
		Metrics:  result.Metrics,
	}
	for i, s := range tr.States {
		data.States[i] = s
	}
	if result.Err != nil {
		data.Failure = result.Err.Error()
	}
	return data
}

func ExportJSON(w io.Writer, model string, cfg sim.Config, result *sim.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(buildExport(model, cfg, result))
}

func ExportJSONFile(path, model string, cfg sim.Config, result *sim.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return ExportJSON(file, model, cfg, result)
}

// ExportCSV writes the sampled trajectory as a time column followed by
// one column per state component.
func ExportCSV(w io.Writer, result *sim.Result) error {
	return writeCSV(w, result)
}

func ExportCSVFile(path string, result *sim.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return writeCSV(file, result)
}

func writeCSV(w io.Writer, result *sim.Result) error {
	tr := result.Trajectory
	if tr == nil || tr.Len() == 0 {
		return nil
	}

	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"time"}
	for i := range tr.States[0] {
		header = append(header, fmt.Sprintf("x%d", i))
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for i := range tr.States {
		row := make([]string, 0, len(header))
		row = append(row, strconv.FormatFloat(tr.Times[i], 'g', -1, 64))
		for _, val := range tr.States[i] {
			row = append(row, strconv.FormatFloat(val, 'g', -1, 64))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
