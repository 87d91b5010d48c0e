// Package loader implements the ingestion and normalization pipeline:
// resolve the survey export among candidate file names, read it in bounded
// row batches, dictionary-encode the columns, remap known value codes, and
// apply the codebook rename. The result is an immutable table; on any
// failure the loader returns an error and no table at all.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/git-galluppakistan/survey-dashboard/app/fileloader"
	"github.com/git-galluppakistan/survey-dashboard/app/table"
)

// ErrLoadParse indicates the source file exists but failed to parse or
// decompress. The underlying cause is attached via error wrapping.
var ErrLoadParse = errors.New("survey data failed to load")

// DefaultBatchRows is the number of rows ingested per batch. Batching
// bounds peak memory during the read; results are identical to a
// single-pass read.
const DefaultBatchRows = 50000

// Options configures a load.
type Options struct {
	// DataDir is the directory searched for source candidates.
	DataDir string

	// SourceCandidates is the ordered list of accepted file names or
	// patterns; first match wins.
	SourceCandidates []string

	// CodebookPath is the codebook CSV path. Empty disables renaming.
	CodebookPath string

	// BatchRows overrides DefaultBatchRows when > 0.
	BatchRows int

	// FileOptions are passed through to the format readers.
	FileOptions fileloader.FileOptions
}

// Result is a successfully loaded dataset.
type Result struct {
	Table        *table.Table
	SourcePath   string
	CodebookPath string // empty when the codebook was missing
	Warnings     []string
	LoadDuration time.Duration
}

// Load runs the full ingestion pipeline. The operation is idempotent and
// side-effect-free on failure: it returns either a complete table or an
// error, never a partial table.
func Load(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()

	sourcePath, err := fileloader.ResolveSourceFile(opts.DataDir, opts.SourceCandidates)
	if err != nil {
		return nil, err
	}
	log.Printf("[LOAD] Resolved source file: %s", sourcePath)

	batchRows := opts.BatchRows
	if batchRows <= 0 {
		batchRows = DefaultBatchRows
	}

	tbl, err := readTable(ctx, sourcePath, opts.FileOptions, batchRows)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrLoadParse, err)
	}
	log.Printf("[LOAD] Ingested %d rows, %d columns in %v",
		tbl.RowCount(), tbl.ColumnCount(), time.Since(start))

	applyGenderRemap(tbl)

	result := &Result{
		Table:      tbl,
		SourcePath: sourcePath,
	}

	if opts.CodebookPath != "" {
		entries, err := LoadCodebook(opts.CodebookPath)
		switch {
		case errors.Is(err, ErrMissingCodebook):
			// Non-fatal: proceed with raw identifiers
			warn := fmt.Sprintf("codebook %q not found; showing raw field identifiers", opts.CodebookPath)
			log.Printf("[LOAD] %s", warn)
			result.Warnings = append(result.Warnings, warn)
		case err != nil:
			return nil, fmt.Errorf("%w: %w", ErrLoadParse, err)
		default:
			mapping := BuildRenameMapping(entries)
			tbl.RenameColumns(mapping)
			result.CodebookPath = opts.CodebookPath
			log.Printf("[LOAD] Applied codebook: %d columns renamed", len(mapping))
		}
	}

	result.LoadDuration = time.Since(start)
	return result, nil
}

// readTable streams the source file into a table builder in fixed-size row
// batches.
func readTable(ctx context.Context, sourcePath string, fileOpts fileloader.FileOptions, batchRows int) (*table.Table, error) {
	records, closer, err := fileloader.GetRecords(sourcePath, fileOpts)
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	var header []string
	if fileOpts.NoHeaderRow {
		// Peek one row to size the synthetic header, then intern it as data.
		first, err := records.Read()
		if err == io.EOF {
			return nil, fmt.Errorf("source file is empty")
		}
		if err != nil {
			return nil, err
		}
		header = fileloader.NormalizeHeaders(make([]string, len(first)))

		builder := table.NewBuilder(header)
		builder.ForceCategorical(genderColumns...)
		firstCopy := append([]string(nil), first...)
		if err := builder.AppendBatch([][]string{firstCopy}); err != nil {
			return nil, err
		}
		return fillBuilder(ctx, builder, records, batchRows)
	}

	first, err := records.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("source file is empty")
	}
	if err != nil {
		return nil, err
	}
	header = fileloader.NormalizeHeaders(first)

	builder := table.NewBuilder(header)
	builder.ForceCategorical(genderColumns...)
	return fillBuilder(ctx, builder, records, batchRows)
}

// fillBuilder drains the record reader into the builder, one bounded batch
// at a time. The batch buffer is reused so peak memory stays at one batch
// of raw strings plus the compact interned columns.
func fillBuilder(ctx context.Context, builder *table.Builder, records fileloader.RecordReader, batchRows int) (*table.Table, error) {
	batch := make([][]string, 0, batchRows)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := builder.AppendBatch(batch); err != nil {
			return err
		}
		batch = batch[:0]
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		rec, err := records.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if rec == nil {
			continue
		}

		// CSV readers reuse the record slice; copy before buffering.
		recCopy := append([]string(nil), rec...)
		batch = append(batch, recCopy)

		if len(batch) >= batchRows {
			if err := flush(); err != nil {
				return nil, err
			}
			log.Printf("[LOAD] Interned batch, %d rows total", builder.RowCount())
		}
	}

	if err := flush(); err != nil {
		return nil, err
	}

	return builder.Finalize(), nil
}

// applyGenderRemap translates gender codes on the known gender columns.
// Unmapped codes pass through unchanged.
func applyGenderRemap(tbl *table.Table) {
	for _, name := range genderColumns {
		if cat, ok := tbl.Categorical(name); ok {
			cat.Remap(GenderValueMap)
			log.Printf("[LOAD] Remapped gender codes on column %q", name)
		}
	}
}
