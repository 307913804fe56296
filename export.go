package sailship

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// WriteSamples writes the samples as space separated records of <jd> <x> <y> <z>, preceded by a
// commented header. ParseSamples reads them back.
func WriteSamples(w io.Writer, ship string, samples []Sample) error {
	header := fmt.Sprintf(`# Predicted trajectory of %s
# Records are <jd> <x> <y> <z>
#   Time is a Julian date
#   Position is heliocentric, in AU
`, ship)
	if len(samples) > 0 {
		header += fmt.Sprintf("#   Prediction start (UTC): %s\n", julian.JDToTime(samples[0].Time).UTC().Format(time.RFC3339))
	}
	if _, err := io.WriteString(w, header); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	cw.Comma = ' '
	for _, s := range samples {
		record := []string{
			strconv.FormatFloat(s.Time, 'f', 6, 64),
			strconv.FormatFloat(s.X, 'e', 12, 64),
			strconv.FormatFloat(s.Y, 'e', 12, 64),
			strconv.FormatFloat(s.Z, 'e', 12, 64),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ParseSamples reads samples written by WriteSamples.
func ParseSamples(r io.Reader) ([]Sample, error) {
	cr := csv.NewReader(r)
	cr.Comma = ' '
	cr.Comment = '#'
	cr.FieldsPerRecord = 4
	var samples []Sample
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return samples, nil
		}
		if err != nil {
			return nil, err
		}
		var vals [4]float64
		for i, field := range record {
			if vals[i], err = strconv.ParseFloat(field, 64); err != nil {
				return nil, fmt.Errorf("line %d: %w", len(samples)+1, err)
			}
		}
		samples = append(samples, Sample{Time: vals[0], X: vals[1], Y: vals[2], Z: vals[3]})
	}
}

// WriteElementsCSV writes one comma separated record of the ship's orbit, with angles in degrees,
// optionally preceded by the header row.
func WriteElementsCSV(w io.Writer, ship *Ship, jd float64, header bool) error {
	cw := csv.NewWriter(w)
	if header {
		if err := cw.Write([]string{"time", "jd", "body", "a", "e", "i", "Omega", "omega", "M"}); err != nil {
			return err
		}
	}
	o := ship.Elements
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }
	record := []string{
		julian.JDToTime(jd).UTC().Format("2006-01-02 15:04:05"),
		f(jd),
		ship.SOI.CurrentBody,
		f(o.A), f(o.E), f(Rad2deg(o.I)), f(Rad2deg(o.RAAN)), f(Rad2deg(o.ArgPeri)), f(Rad2deg(o.MeanAnomalyAt(jd))),
	}
	if err := cw.Write(record); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}
