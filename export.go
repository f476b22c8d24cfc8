package lotsizing

import (
	"fmt"
	"math"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
)

// ExportRow is the columnar form of a BatchRow. Undefined numbers are
// flagged rather than written as NaN.
type ExportRow struct {
	Filename            string  `parquet:"name=filename, type=UTF8"`
	Family              string  `parquet:"name=family, type=UTF8"`
	Variant             string  `parquet:"name=variant, type=UTF8"`
	Status              string  `parquet:"name=status, type=UTF8"`
	Failed              bool    `parquet:"name=failed, type=BOOLEAN"`
	Error               string  `parquet:"name=error, type=UTF8"`
	Objective           float64 `parquet:"name=objective, type=DOUBLE"`
	ObjectiveDefined    bool    `parquet:"name=objective_defined, type=BOOLEAN"`
	RelaxationObjective float64 `parquet:"name=relaxation_objective, type=DOUBLE"`
	RelaxationDefined   bool    `parquet:"name=relaxation_defined, type=BOOLEAN"`
	GapPercent          float64 `parquet:"name=gap_percent, type=DOUBLE"`
	GapDefined          bool    `parquet:"name=gap_defined, type=BOOLEAN"`
	Nodes               int64   `parquet:"name=nodes, type=INT64"`
	WallClockSeconds    float64 `parquet:"name=wall_clock_seconds, type=DOUBLE"`
}

// ExportRows converts the rows of b, in order.
func ExportRows(b *Batch) []ExportRow {
	rows := make([]ExportRow, len(b.Rows))
	for i := range b.Rows {
		row := &b.Rows[i]
		out := ExportRow{
			Filename: row.Filename,
			Family:   Family(row.Filename),
			Variant:  b.Variant.String(),
			Status:   row.Status.String(),
			Failed:   row.Failed(),
			Nodes:    row.Nodes,
		}
		if row.Failed() {
			out.Status = "Failed"
			out.Error = row.Err.Error()
		} else {
			out.WallClockSeconds = row.WallClock.Seconds()
		}
		out.Objective, out.ObjectiveDefined = defined(row.Objective)
		out.RelaxationObjective, out.RelaxationDefined = defined(row.RelaxationObjective)
		out.GapPercent, out.GapDefined = defined(row.GapPercent)
		rows[i] = out
	}
	return rows
}

func defined(v float64) (float64, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ExportParquet writes the rows of b to a Parquet file at path.
func ExportParquet(path string, b *Batch) error {
	const numGoRoutines int64 = 1

	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer fw.Close()

	pw, err := writer.NewParquetWriter(fw, new(ExportRow), numGoRoutines)
	if err != nil {
		return fmt.Errorf("creating parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, row := range ExportRows(b) {
		if err := pw.Write(row); err != nil {
			return fmt.Errorf("writing parquet row: %w", err)
		}
	}

	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("finishing parquet file: %w", err)
	}

	return nil
}
