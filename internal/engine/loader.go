package engine

import (
	"bufio"
	stdcsv "encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/csv"
	"github.com/labstack/gommon/log"
)

// Rows per arrow record batch while reading.
const chunkRows = 4096

// columnTypes pins the required columns. Other columns are never parsed.
var columnTypes = map[string]arrow.DataType{
	ColCountry:   arrow.BinaryTypes.String,
	ColYear:      arrow.PrimitiveTypes.Int64,
	ColPop:       arrow.PrimitiveTypes.Float64,
	ColContinent: arrow.BinaryTypes.String,
	ColLifeExp:   arrow.PrimitiveTypes.Float64,
	ColGDP:       arrow.PrimitiveTypes.Float64,
}

var requiredColumns = []string{ColCountry, ColYear, ColPop, ColContinent, ColLifeExp, ColGDP}

// LoadTable reads the dataset at path. Any problem with the file is fatal for the caller:
// there is no partially loaded table.
func LoadTable(path string) (*Table, error) {
	start := time.Now()
	log.Infof("Loading dataset %s...", path)

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	t, err := ReadTable(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	log.Infof("Load Complete. Rows: %d. Time: %v", t.Len(), time.Since(start))
	return t, nil
}

// ReadTable parses CSV with a header row into a Table. A header without data rows gives
// an empty table; a missing header or required column is an error.
func ReadTable(r io.Reader) (*Table, error) {
	br := bufio.NewReader(r)
	header, err := readHeader(br)
	if err != nil {
		return nil, err
	}
	more, err := hasRows(br)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if !more {
		return NewTable(nil), nil
	}

	rdr := csv.NewInferringReader(io.MultiReader(strings.NewReader(header), br),
		csv.WithHeader(true),
		csv.WithChunk(chunkRows),
		csv.WithIncludeColumns(requiredColumns),
		csv.WithColumnTypes(columnTypes),
		csv.WithNullReader(false, "", "NA"),
	)
	defer rdr.Release()

	records := make([]Record, 0)
	for rdr.Next() {
		batch, err := decodeBatch(rdr.Record(), len(records))
		if err != nil {
			return nil, err
		}
		records = append(records, batch...)
	}
	if err := rdr.Err(); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	return NewTable(records), nil
}

// readHeader consumes the header line and checks it names every required column.
// The returned line has any byte order mark stripped.
func readHeader(br *bufio.Reader) (string, error) {
	line, err := br.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read header: %w", err)
	}
	line = strings.TrimPrefix(line, "\ufeff")
	if strings.TrimSpace(line) == "" {
		return "", errors.New("missing header row")
	}

	names, err := stdcsv.NewReader(strings.NewReader(line)).Read()
	if err != nil {
		return "", fmt.Errorf("parse header: %w", err)
	}
	present := make(map[string]bool, len(names))
	for _, n := range names {
		present[n] = true
	}
	for _, name := range requiredColumns {
		if !present[name] {
			return "", fmt.Errorf("missing required column %q", name)
		}
	}
	return line, nil
}

// hasRows skips blank lines and reports whether any data is left.
func hasRows(br *bufio.Reader) (bool, error) {
	for {
		b, err := br.ReadByte()
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		if b != '\n' && b != '\r' {
			return true, br.UnreadByte()
		}
	}
}

// --- BATCH DECODING ---

type batchColumns struct {
	country   *array.String
	year      *array.Int64
	pop       *array.Float64
	continent *array.String
	lifeExp   *array.Float64
	gdp       *array.Float64
}

// decodeBatch converts one record batch; offset is the number of data rows before it.
func decodeBatch(rec arrow.Record, offset int) ([]Record, error) {
	cols, err := bindColumns(rec)
	if err != nil {
		return nil, err
	}

	// Values point into arrow buffers; strings are cloned so the table outlives the batch.
	n := int(rec.NumRows())
	out := make([]Record, n)
	for i := 0; i < n; i++ {
		if cols.hasNull(i) {
			return nil, fmt.Errorf("data row %d (country %q): missing value in a required column",
				offset+i+1, cols.country.Value(i))
		}
		out[i] = Record{
			Country:   strings.Clone(cols.country.Value(i)),
			Year:      int(cols.year.Value(i)),
			Pop:       cols.pop.Value(i),
			Continent: strings.Clone(cols.continent.Value(i)),
			LifeExp:   cols.lifeExp.Value(i),
			GDP:       cols.gdp.Value(i),
		}
	}
	return out, nil
}

func bindColumns(rec arrow.Record) (*batchColumns, error) {
	idx := make(map[string]arrow.Array, len(requiredColumns))
	for _, name := range requiredColumns {
		found := rec.Schema().FieldIndices(name)
		if len(found) == 0 {
			return nil, fmt.Errorf("missing required column %q", name)
		}
		idx[name] = rec.Column(found[0])
	}

	var (
		cols batchColumns
		ok   [6]bool
	)
	cols.country, ok[0] = idx[ColCountry].(*array.String)
	cols.year, ok[1] = idx[ColYear].(*array.Int64)
	cols.pop, ok[2] = idx[ColPop].(*array.Float64)
	cols.continent, ok[3] = idx[ColContinent].(*array.String)
	cols.lifeExp, ok[4] = idx[ColLifeExp].(*array.Float64)
	cols.gdp, ok[5] = idx[ColGDP].(*array.Float64)
	for i, good := range ok {
		if !good {
			return nil, fmt.Errorf("column %q has unexpected type %s", requiredColumns[i], idx[requiredColumns[i]].DataType())
		}
	}
	return &cols, nil
}

func (c *batchColumns) hasNull(i int) bool {
	return c.country.IsNull(i) || c.year.IsNull(i) || c.pop.IsNull(i) ||
		c.continent.IsNull(i) || c.lifeExp.IsNull(i) || c.gdp.IsNull(i)
}
