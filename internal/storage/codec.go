package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/san-kum/metaheur/internal/core"
	"github.com/san-kum/metaheur/internal/experiment"
	"github.com/san-kum/metaheur/internal/operators"
)

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

func indexed(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s%d", prefix, i)
	}
	return out
}

func parseFloats(fields []string) (core.ObjectiveVector, error) {
	if len(fields) == 0 {
		return nil, nil
	}
	out := make(core.ObjectiveVector, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// writeHistory writes one row per snapshot: iteration, size, time, then dim
// best scores and dim mean scores. Snapshots without a population leave
// those columns empty.
func writeHistory(w io.Writer, history []operators.Snapshot, dim int) error {
	cw := csv.NewWriter(w)
	header := append([]string{"iteration", "size", "time"}, indexed("best", dim)...)
	header = append(header, indexed("mean", dim)...)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, s := range history {
		row := []string{strconv.Itoa(s.Iteration), strconv.Itoa(s.Size), s.Time.Format(time.RFC3339Nano)}
		for i := 0; i < dim; i++ {
			row = append(row, cell(s.Best, i))
		}
		for i := 0; i < dim; i++ {
			row = append(row, cell(s.Mean, i))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func cell(v []float64, i int) string {
	if i >= len(v) {
		return ""
	}
	return formatFloat(v[i])
}

func readHistory(r io.Reader) ([]operators.Snapshot, error) {
	records, err := readAll(r)
	if err != nil || len(records) == 0 {
		return nil, err
	}
	dim := (len(records[0]) - 3) / 2
	out := make([]operators.Snapshot, 0, len(records)-1)
	for line, rec := range records[1:] {
		if len(rec) != 3+2*dim {
			return nil, fmt.Errorf("history line %d: %d fields, want %d", line+2, len(rec), 3+2*dim)
		}
		var s operators.Snapshot
		if s.Iteration, err = strconv.Atoi(rec[0]); err != nil {
			return nil, fmt.Errorf("history line %d: %w", line+2, err)
		}
		if s.Size, err = strconv.Atoi(rec[1]); err != nil {
			return nil, fmt.Errorf("history line %d: %w", line+2, err)
		}
		if s.Time, err = time.Parse(time.RFC3339Nano, rec[2]); err != nil {
			return nil, fmt.Errorf("history line %d: %w", line+2, err)
		}
		if rec[3] != "" {
			if s.Best, err = parseFloats(rec[3 : 3+dim]); err != nil {
				return nil, fmt.Errorf("history line %d: %w", line+2, err)
			}
			mean, err := parseFloats(rec[3+dim:])
			if err != nil {
				return nil, fmt.Errorf("history line %d: %w", line+2, err)
			}
			s.Mean = mean
		}
		out = append(out, s)
	}
	return out, nil
}

// writePopulation writes rank, the objective scores, then the genotype and
// its decoded form.
func writePopulation(w io.Writer, members []experiment.Member, dim int) error {
	cw := csv.NewWriter(w)
	header := append([]string{"rank"}, indexed("f", dim)...)
	if err := cw.Write(append(header, "genotype", "decoded")); err != nil {
		return err
	}
	for _, m := range members {
		row := []string{strconv.Itoa(m.Rank)}
		for i := 0; i < dim; i++ {
			row = append(row, cell(m.Objectives, i))
		}
		if err := cw.Write(append(row, m.Genotype, m.Decoded)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func readPopulation(r io.Reader) ([]experiment.Member, error) {
	records, err := readAll(r)
	if err != nil || len(records) == 0 {
		return nil, err
	}
	dim := len(records[0]) - 3
	out := make([]experiment.Member, 0, len(records)-1)
	for line, rec := range records[1:] {
		if len(rec) != dim+3 {
			return nil, fmt.Errorf("population line %d: %d fields, want %d", line+2, len(rec), dim+3)
		}
		var m experiment.Member
		if m.Rank, err = strconv.Atoi(rec[0]); err != nil {
			return nil, fmt.Errorf("population line %d: %w", line+2, err)
		}
		if m.Objectives, err = parseFloats(rec[1 : 1+dim]); err != nil {
			return nil, fmt.Errorf("population line %d: %w", line+2, err)
		}
		m.Genotype, m.Decoded = rec[1+dim], rec[2+dim]
		out = append(out, m)
	}
	return out, nil
}

func writeVectors(w io.Writer, vectors []core.ObjectiveVector, dim int) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(indexed("f", dim)); err != nil {
		return err
	}
	for _, v := range vectors {
		row := make([]string, dim)
		for i := range row {
			row[i] = cell(v, i)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func readVectors(r io.Reader) ([]core.ObjectiveVector, error) {
	records, err := readAll(r)
	if err != nil || len(records) < 2 {
		return nil, err
	}
	out := make([]core.ObjectiveVector, 0, len(records)-1)
	for line, rec := range records[1:] {
		v, err := parseFloats(rec)
		if err != nil {
			return nil, fmt.Errorf("vectors line %d: %w", line+2, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func readAll(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	return cr.ReadAll()
}
