package sailprop

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/soniakeys/meeus/v3/julian"
)

// ExportConfig configures trajectory export. An empty config exports nothing.
type ExportConfig struct {
	Filename string // without extension
	AsCSV    bool
	AsJSON   bool
}

// IsUseless returns whether this config would not export anything.
func (c ExportConfig) IsUseless() bool {
	return c.Filename == "" || (!c.AsCSV && !c.AsJSON)
}

// exportedSample is the JSON shape of a trajectory sample.
type exportedSample struct {
	JD        float64   `json:"jd"`
	Position  []float64 `json:"position"` // AU, heliocentric
	Truncated bool      `json:"truncated,omitempty"`
}

// ExportTrajectory writes the predicted samples per the config. CSV records
// are JD, x, y, z, truncated with positions in AU.
func ExportTrajectory(conf ExportConfig, samples []Sample) error {
	if conf.IsUseless() {
		return nil
	}
	if conf.AsCSV {
		f, err := os.Create(conf.Filename + ".csv")
		if err != nil {
			return err
		}
		if err := writeTrajectoryCSV(f, samples); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	if conf.AsJSON {
		f, err := os.Create(conf.Filename + ".json")
		if err != nil {
			return err
		}
		if err := writeTrajectoryJSON(f, samples); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}

func writeTrajectoryCSV(w io.Writer, samples []Sample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"jd", "x", "y", "z", "truncated"}); err != nil {
		return err
	}
	for _, s := range samples {
		rec := []string{
			fmt.Sprintf("%.6f", julian.TimeToJD(s.DT)),
			fmt.Sprintf("%.9f", s.R[0]),
			fmt.Sprintf("%.9f", s.R[1]),
			fmt.Sprintf("%.9f", s.R[2]),
			strconv.FormatBool(s.Truncated),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeTrajectoryJSON(w io.Writer, samples []Sample) error {
	out := make([]exportedSample, len(samples))
	for i, s := range samples {
		out[i] = exportedSample{JD: julian.TimeToJD(s.DT), Position: s.R, Truncated: s.Truncated}
	}
	return json.NewEncoder(w).Encode(out)
}
