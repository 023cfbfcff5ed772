package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/thomhuang/NearestSegment/internal/atr"
	"github.com/thomhuang/NearestSegment/internal/config"
	"github.com/thomhuang/NearestSegment/internal/feature"
	"github.com/thomhuang/NearestSegment/internal/geocode"
	"github.com/thomhuang/NearestSegment/internal/index"
	"github.com/thomhuang/NearestSegment/internal/logging"
	"github.com/thomhuang/NearestSegment/internal/match"
	"github.com/thomhuang/NearestSegment/internal/project"
	"github.com/thomhuang/NearestSegment/internal/store"
	"github.com/thomhuang/NearestSegment/internal/writer"
)

const usage = `usage: nearseg <command> [flags]

commands:
  match        tag each point record with the id of its nearest segment
  atr-geocode  geocode ATR count files into a point CSV for match
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err := config.LoadEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log, closeLog, err := logging.Setup(logging.OptionsFromEnv())
	if err != nil {
		fmt.Fprintln(os.Stderr, "could not set up logging:", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	cfg := config.Default()
	if err := cfg.FromEnv(nil); err != nil {
		log.Error("bad environment", "error", err)
		os.Exit(1)
	}

	switch os.Args[1] {
	case "match":
		err = runMatch(ctx, log, &cfg, os.Args[2:])
	case "atr-geocode":
		err = runGeocode(ctx, log, &cfg, os.Args[2:])
	default:
		fmt.Fprint(os.Stderr, usage)
		err = fmt.Errorf("unknown command %q", os.Args[1])
	}

	stop()
	if err != nil && !errors.Is(err, flag.ErrHelp) {
		log.Error("nearseg failed", "command", os.Args[1], "error", err)
		closeLog()
		os.Exit(1)
	}
	closeLog()
}

func runMatch(ctx context.Context, log *logging.Logger, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("match", flag.ContinueOnError)
	cfg.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Output == "" {
		cfg.Output = "matched.geojson"
	}

	// Validate has already accepted these
	backend, _ := index.ParseBackend(cfg.Backend)
	policy, _ := project.ParsePolicy(cfg.OnError)
	working, _ := project.ParseCRS(cfg.WorkingCRS)
	var source project.CRS
	if cfg.SourceCRS != "" {
		source, _ = project.ParseCRS(cfg.SourceCRS)
	}

	sources := make([]store.Source, 0, len(cfg.Segments))
	for _, path := range cfg.Segments {
		src, err := store.Open(path)
		if err != nil {
			return err
		}
		sources = append(sources, src)
	}
	st, err := store.Load(ctx, log, sources...)
	if err != nil {
		return err
	}

	start := time.Now()
	idx, err := index.Build(backend, st.Bounds())
	if err != nil {
		return err
	}
	log.LogBuild(ctx, string(backend), idx.Len(), time.Since(start))

	f, err := os.Open(cfg.Records)
	if err != nil {
		return fmt.Errorf("could not open records: %w", err)
	}
	rows, err := project.ReadCSV(ctx, f, log)
	f.Close()
	if err != nil {
		return err
	}
	log.LogLoad(ctx, cfg.Records, len(rows), nil)

	projector := &project.Projector{
		XField:     cfg.XField,
		YField:     cfg.YField,
		SourceCRS:  source,
		WorkingCRS: working,
		OnError:    policy,
		Logger:     log,
	}
	records, err := projector.ProjectAll(ctx, rows)
	if err != nil {
		return err
	}

	opts := []match.Option{match.WithLogger(log)}
	if cfg.DistanceFld != "" {
		opts = append(opts, match.WithDistanceField(cfg.DistanceFld))
	}
	if cfg.GeodesicFld != "" {
		opts = append(opts, match.WithGeodesicField(cfg.GeodesicFld, working))
	}
	m, err := match.New(st, idx, cfg.Tolerance, opts...)
	if err != nil {
		return err
	}

	if _, err := m.MatchAllParallel(ctx, records, cfg.Workers); err != nil {
		return err
	}

	if len(records) == 0 {
		log.WarnContext(ctx, "no records to write", "records", cfg.Records)
		return nil
	}
	schema := recordSchema(records[0].Properties, cfg.DistanceFld, cfg.GeodesicFld)
	err = writer.Write(schema, cfg.Output, records, writer.RecordGeometry, writer.RecordProperties)
	log.LogWrite(ctx, cfg.Output, len(records), err)
	return err
}

// recordSchema types every CSV column as text and the optional distance
// columns as floats, since an unmatched first record leaves them nil.
func recordSchema(sample *feature.Properties, numeric ...string) writer.Schema {
	schema := writer.InferSchema("Point", sample)
	for i, f := range schema.Properties {
		for _, name := range numeric {
			if name != "" && f.Name == name {
				schema.Properties[i].Type = writer.TypeFloat
			}
		}
	}
	return schema
}

type geocodeJob struct {
	File    string
	Address string
}

type geocodeRow struct {
	geocodeJob
	Result geocode.Result
	Err    error
}

func runGeocode(ctx context.Context, log *logging.Logger, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("atr-geocode", flag.ContinueOnError)
	cfg.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("no ATR files given")
	}
	if cfg.Output == "" {
		cfg.Output = "atr_points.csv"
	}

	var jobs []geocodeJob
	for _, name := range fs.Args() {
		if !atr.IsReadable(name) {
			log.DebugContext(ctx, "skipping ATR file", "file", name)
			continue
		}
		addr, ok := atr.Address(name, cfg.GeocodeCity)
		if !ok {
			continue
		}
		jobs = append(jobs, geocodeJob{File: name, Address: addr})
	}
	log.LogLoad(ctx, "atr files", len(jobs), nil)

	g := geocode.NewRetrying(geocode.NewGoogle(cfg.GeocodeKey), cfg.GeocodeRate)
	return writeGeocoded(ctx, log, g, jobs, cfg.Output, cfg.XField, cfg.YField, cfg.Workers)
}

// writeGeocoded fans jobs out to workers and streams their answers to a CSV
// with file, address and the coordinate columns match reads.
func writeGeocoded(ctx context.Context, log *logging.Logger, g geocode.Geocoder, jobs []geocodeJob, dest, xField, yField string, numWorkers int) error {
	file, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("could not create %s: %w", dest, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write([]string{"file", "address", xField, yField}); err != nil {
		return err
	}

	if numWorkers < 1 {
		numWorkers = 1
	}
	queue := make(chan geocodeJob, numWorkers*2)
	results := make(chan geocodeRow, numWorkers*2)

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range queue {
				res, err := g.Geocode(ctx, job.Address)
				results <- geocodeRow{geocodeJob: job, Result: res, Err: err}
			}
		}()
	}

	go func() {
		defer close(queue)
		for _, job := range jobs {
			select {
			case queue <- job:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	written := 0
	for row := range results {
		if row.Err != nil {
			log.WarnContext(ctx, "could not geocode", "file", row.File, "address", row.Address, "error", row.Err)
			continue
		}
		if err := w.Write([]string{
			row.File,
			row.Result.Address,
			strconv.FormatFloat(row.Result.Lon, 'f', -1, 64),
			strconv.FormatFloat(row.Result.Lat, 'f', -1, 64),
		}); err != nil {
			log.ErrorContext(ctx, "could not write row", "file", row.File, "error", err)
			continue
		}
		written++
	}

	w.Flush()
	err = w.Error()
	log.LogWrite(ctx, dest, written, err)
	if err != nil {
		return err
	}
	return ctx.Err()
}
