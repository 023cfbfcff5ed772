package project

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/thomhuang/NearestSegment/internal/feature"
	"github.com/thomhuang/NearestSegment/internal/logging"
)

// ReadCSV reads a delimited file with a header row into one ordered property
// mapping per row. Malformed rows are logged and skipped.
func ReadCSV(ctx context.Context, reader io.Reader, log *logging.Logger) ([]*feature.Properties, error) {
	if log == nil {
		log = logging.Noop()
	}

	csvReader := csv.NewReader(reader)
	header, err := csvReader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	csvReader.FieldsPerRecord = len(header)

	var rows []*feature.Properties
	for line := 2; ; line++ {
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			log.LogSkip(ctx, line, err)
			continue
		}
		if err != nil {
			return nil, err
		}

		props := feature.NewProperties()
		for i, name := range header {
			props.Set(name, record[i])
		}
		rows = append(rows, props)
	}
	return rows, nil
}
