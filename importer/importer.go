// Package importer sequences the export ingestion pipeline:
// router -> normalizer -> dedup -> reconstructor -> risk annotator, then
// hands closed trades to the persistence store and appends one audit record.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/tradebook/exchange"
	"github.com/rustyeddy/tradebook/fills"
	"github.com/rustyeddy/tradebook/journal"
	"github.com/rustyeddy/tradebook/pkg/id"
	"github.com/rustyeddy/tradebook/position"
	"github.com/rustyeddy/tradebook/risk"
)

// defaultChunkSize is how many rows are normalized between progress callbacks.
const defaultChunkSize = 1000

// Request carries one upload plus the run's external inputs.
type Request struct {
	Data     []byte // raw CSV bytes (already decompressed)
	FileName string
	FileSize int64
	SHA256   string

	// Exchange declares the export's source; empty or "auto" detects from
	// the header row.
	Exchange     string
	AccountLabel string

	// Risk is the configuration snapshot used to annotate this run's trades;
	// nil leaves trades unannotated.
	Risk *risk.Config

	// DryRun previews the run without persisting trades or audit records.
	DryRun bool
}

type Importer struct {
	store     journal.Store
	log       *zap.Logger
	chunkSize int
	progress  func(processed, total int)
}

func New(store journal.Store, log *zap.Logger) *Importer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Importer{store: store, log: log, chunkSize: defaultChunkSize}
}

// SetProgress installs a best-effort progress callback, invoked after each
// normalized chunk. A run is never resumable: a failed or cancelled run must
// be restarted from the original file.
func (imp *Importer) SetProgress(fn func(processed, total int)) {
	imp.progress = fn
}

// Run executes one import synchronously. Only structural failures return an
// error (unreadable input, unrecognized format); everything row- or
// position-level accumulates in the Result's warnings. The Result is always
// returned, even alongside an error.
func (imp *Importer) Run(req Request) (*Result, error) {
	res := &Result{ImportID: id.New()}

	header, rows, err := readCSV(req.Data)
	if err != nil {
		err = fmt.Errorf("read upload: %w", err)
		res.Errors = append(res.Errors, err.Error())
		return res, err
	}
	res.TotalRows = len(rows)

	profile, err := imp.resolveProfile(req.Exchange, header)
	if err != nil {
		res.Errors = append(res.Errors, err.Error())
		return res, err
	}
	res.Exchange = profile.Exchange

	imp.log.Info("import started",
		zap.String("import_id", res.ImportID),
		zap.String("exchange", profile.Exchange),
		zap.String("file", req.FileName),
		zap.Int("rows", res.TotalRows),
	)

	normalized := imp.normalizeChunked(profile, header, rows, res)

	deduped, removed := fills.Dedupe(normalized)
	res.FillsAfterDedupe = len(deduped)
	res.DuplicatesRemoved = removed
	if removed > 0 {
		imp.log.Info("duplicate fills discarded", zap.Int("count", removed))
	}

	position.SortFills(deduped)
	closed, open, warns := position.Reconstruct(deduped)
	for _, w := range warns {
		res.Warnings = append(res.Warnings, w.String())
		imp.log.Warn("fill discarded", zap.String("detail", w.String()))
	}

	for i := range closed {
		risk.Annotate(&closed[i], req.Risk)
	}

	res.Trades = closed
	res.ClosedEmitted = len(closed)
	res.InProgress = open
	res.InProgressCount = len(open)

	if !req.DryRun && imp.store != nil {
		if err := imp.persist(req, res, deduped); err != nil {
			res.Errors = append(res.Errors, err.Error())
			return res, err
		}
	}

	imp.log.Info("import finished",
		zap.String("import_id", res.ImportID),
		zap.Int("closed", res.ClosedEmitted),
		zap.Int("in_progress", res.InProgressCount),
		zap.Int("warnings", len(res.Warnings)),
	)
	return res, nil
}

func (imp *Importer) resolveProfile(declared string, header []string) (*exchange.Profile, error) {
	if declared != "" && declared != "auto" {
		p, ok := exchange.ByName(declared)
		if !ok {
			return nil, fmt.Errorf("unknown exchange %q", declared)
		}
		// A declared exchange still has to match the upload's headers;
		// otherwise every row would fail normalization one warning at a time.
		if missing := p.MissingRequired(header); len(missing) > 0 {
			return nil, fmt.Errorf("%s export missing required column(s): %s",
				p.Exchange, strings.Join(missing, ", "))
		}
		return p, nil
	}
	return exchange.Detect(header)
}

// normalizeChunked runs the normalizer a chunk at a time so the progress
// callback can fire mid-run. Row numbers in warnings stay file-relative.
func (imp *Importer) normalizeChunked(p *exchange.Profile, header []string, rows [][]string, res *Result) []fills.Fill {
	var out []fills.Fill
	for start := 0; start < len(rows); start += imp.chunkSize {
		end := start + imp.chunkSize
		if end > len(rows) {
			end = len(rows)
		}
		// +1 for the header row
		fs, warns := fills.Normalize(p, header, rows[start:end], start+1)
		out = append(out, fs...)
		for _, w := range warns {
			res.Warnings = append(res.Warnings, w.String())
		}
		if imp.progress != nil {
			imp.progress(end, len(rows))
		}
	}
	return out
}

func (imp *Importer) persist(req Request, res *Result, deduped []fills.Fill) error {
	inserted, err := imp.store.SaveTrades(res.Trades)
	if err != nil {
		return fmt.Errorf("persist trades: %w", err)
	}
	if skipped := len(res.Trades) - inserted; skipped > 0 {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("%d trade(s) already persisted by an earlier import; skipped", skipped))
	}

	rec := journal.ImportRecord{
		ImportID:          res.ImportID,
		Timestamp:         time.Now().UTC(),
		Exchange:          res.Exchange,
		AccountLabel:      req.AccountLabel,
		FileName:          req.FileName,
		FileSize:          req.FileSize,
		FileSHA256:        req.SHA256,
		TotalRows:         res.TotalRows,
		FillsAfterDedupe:  res.FillsAfterDedupe,
		DuplicatesRemoved: res.DuplicatesRemoved,
		ClosedEmitted:     res.ClosedEmitted,
		WarningCount:      len(res.Warnings),
		RiskSnapshot:      req.Risk,
		MaxFillTime:       maxFillTime(deduped),
	}
	if err := imp.store.RecordImport(rec); err != nil {
		return fmt.Errorf("record import audit: %w", err)
	}
	return nil
}

func maxFillTime(fs []fills.Fill) time.Time {
	var max time.Time
	for _, f := range fs {
		if f.Time.After(max) {
			max = f.Time
		}
	}
	return max
}

// readCSV parses the upload into a header row plus data rows. Ragged rows are
// tolerated here; the normalizer decides per-row what is usable.
func readCSV(data []byte) ([]string, [][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.LazyQuotes = true

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil, fmt.Errorf("empty file")
	}
	if err != nil {
		return nil, nil, err
	}

	var rows [][]string
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		rows = append(rows, row)
	}
	return header, rows, nil
}
