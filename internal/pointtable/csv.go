package pointtable

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Required sample table headers. Frame is optional and enables the
// temporal extraction path.
const (
	ColX     = "X"
	ColY     = "Y"
	ColZ     = "Z"
	ColSV    = "SV"
	ColFrame = "Frame"
)

// ReadCSV loads a sample table from a CSV file with X, Y, Z, SV headers and
// an optional Frame header. Header order is insensitive; extra columns are
// ignored. An empty (or NaN) SV field marks a missing measurement.
func ReadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sample table: %w", err)
	}
	defer f.Close()

	t, err := ReadTable(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// ReadTable parses sample table CSV from r. See ReadCSV for the contract.
func ReadTable(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty table: missing header row")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, name := range []string{ColX, ColY, ColZ, ColSV} {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("missing required column %q", name)
		}
	}
	frameCol, hasFrame := cols[ColFrame]

	t := &Table{HasFrame: hasFrame}
	for row := 2; ; row++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}

		var p Point
		if p.X, err = parseCoord(rec, cols[ColX], ColX); err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		if p.Y, err = parseCoord(rec, cols[ColY], ColY); err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		if p.Z, err = parseCoord(rec, cols[ColZ], ColZ); err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}

		sv := strings.TrimSpace(rec[cols[ColSV]])
		if sv != "" {
			v, err := strconv.ParseFloat(sv, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid %s '%s': %w", row, ColSV, sv, err)
			}
			// A literal NaN in the file is a missing measurement, same as
			// an empty field.
			if !math.IsNaN(v) {
				p.SV = v
				p.HasSV = true
			}
		}

		if hasFrame {
			fs := strings.TrimSpace(rec[frameCol])
			n, err := strconv.Atoi(fs)
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid %s '%s': %w", row, ColFrame, fs, err)
			}
			if n < 0 {
				return nil, fmt.Errorf("row %d: negative %s %d", row, ColFrame, n)
			}
			p.Frame = n
		}

		t.Points = append(t.Points, p)
	}
	return t, nil
}

func parseCoord(rec []string, col int, name string) (float64, error) {
	s := strings.TrimSpace(rec[col])
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s '%s': %w", name, s, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid %s '%s': not a finite coordinate", name, s)
	}
	return v, nil
}

// ReadManifest loads an ordered sample collection from a manifest CSV with
// path and label columns. Relative sample paths resolve against the
// manifest's directory.
func ReadManifest(path string) ([]Labeled, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%s: empty manifest", path)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: read header: %w", path, err)
	}

	pathCol, labelCol := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case "path":
			pathCol = i
		case "label":
			labelCol = i
		}
	}
	if pathCol < 0 || labelCol < 0 {
		return nil, fmt.Errorf("%s: manifest requires 'path' and 'label' columns", path)
	}

	dir := filepath.Dir(path)
	var samples []Labeled
	for row := 2; ; row++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: row %d: %w", path, row, err)
		}

		sp := strings.TrimSpace(rec[pathCol])
		if sp == "" {
			return nil, fmt.Errorf("%s: row %d: empty sample path", path, row)
		}
		if !filepath.IsAbs(sp) {
			sp = filepath.Join(dir, sp)
		}
		label := strings.TrimSpace(rec[labelCol])
		if label == "" {
			return nil, fmt.Errorf("%s: row %d: empty label", path, row)
		}

		t, err := ReadCSV(sp)
		if err != nil {
			return nil, fmt.Errorf("manifest row %d: %w", row, err)
		}
		samples = append(samples, Labeled{Table: t, Label: label})
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("%s: manifest lists no samples", path)
	}
	return samples, nil
}
