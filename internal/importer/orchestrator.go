package importer

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rpattn/fleetledger/internal/domain"
	"github.com/rpattn/fleetledger/internal/repository"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Step is the orchestrator phase. COMPLETE and ABORTED are terminal;
// ABORTED is reachable only from MAPPING.
type Step string

const (
	StepIdle       Step = "IDLE"
	StepReading    Step = "READING"
	StepMapping    Step = "MAPPING"
	StepParsing    Step = "PARSING"
	StepResolving  Step = "RESOLVING"
	StepPersisting Step = "PERSISTING"
	StepComplete   Step = "COMPLETE"
	StepAborted    Step = "ABORTED"
)

// Progress is one snapshot delivered to the caller's sink.
type Progress struct {
	Step            Step    `json:"currentStep"`
	PercentComplete float64 `json:"percentComplete"`
	Errors          int     `json:"errorsSoFar"`
	Warnings        int     `json:"warningsSoFar"`
}

// ProgressSink receives progress snapshots during an import. The
// pipeline runs headless when no sink is attached.
type ProgressSink interface {
	Publish(Progress)
}

// ProgressFunc adapts a function to the ProgressSink interface.
type ProgressFunc func(Progress)

func (f ProgressFunc) Publish(p Progress) { f(p) }

// SessionConfig carries the per-import settings, fixed for a whole run.
type SessionConfig struct {
	FileName      string
	DateOrder     DateOrder
	Providers     []Provider
	HeaderAliases map[string][]string
	// ProgressEvery is the row granularity of snapshots during
	// PERSISTING.
	ProgressEvery int
	// Parallelism bounds concurrent row parsing inside PARSING.
	Parallelism int
}

// Summary is the final result handed back to the caller.
type Summary struct {
	TotalRows       int            `json:"totalRows"`
	SucceededRows   int            `json:"succeededRows"`
	FailedRows      int            `json:"failedRows"`
	Issues          []Issue        `json:"issues"`
	CreatedEntities map[string]int `json:"createdEntityCounts"`
	Aborted         bool           `json:"aborted"`
}

// ErrAlreadyRan is returned when a single-use orchestrator is reused.
var ErrAlreadyRan = errors.New("import orchestrator is single-use; start a new one")

// Orchestrator sequences one import: read, map, parse, resolve,
// persist, summarize. Each instance runs exactly once.
type Orchestrator struct {
	drivers  repository.DriverRepository
	vehicles repository.VehicleRepository
	entries  repository.ShiftEntryRepository
	logs     repository.ImportLogRepository
	logger   logrus.FieldLogger
	step     Step
}

// NewOrchestrator wires an orchestrator. logs may be nil (issues then
// live only in the summary); logger may be nil (the standard logger is
// used).
func NewOrchestrator(
	drivers repository.DriverRepository,
	vehicles repository.VehicleRepository,
	entries repository.ShiftEntryRepository,
	logs repository.ImportLogRepository,
	logger logrus.FieldLogger,
) *Orchestrator {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Orchestrator{
		drivers:  drivers,
		vehicles: vehicles,
		entries:  entries,
		logs:     logs,
		logger:   logger,
		step:     StepIdle,
	}
}

// Run executes the whole pipeline over the file payload and returns
// the final summary. Phases are strictly sequential: resolution needs
// the complete distinct-name set before creating anything. Cancellation
// is honored at phase boundaries and between persisted rows; already
// persisted rows are not rolled back.
func (o *Orchestrator) Run(ctx context.Context, payload []byte, cfg SessionConfig, sink ProgressSink) (Summary, error) {
	if o.step != StepIdle {
		return Summary{}, ErrAlreadyRan
	}

	summary := Summary{
		Issues: []Issue{},
		CreatedEntities: map[string]int{
			string(KindDriver):  0,
			string(KindVehicle): 0,
		},
	}

	// READING
	o.step = StepReading
	table, err := ReadTable(cfg.FileName, payload)
	if err != nil {
		return summary, fmt.Errorf("failed to read import file: %w", err)
	}
	summary.TotalRows = len(table.Rows)
	o.emit(sink, summary, 10)

	// MAPPING
	o.step = StepMapping
	mapper := NewColumnMapper(cfg.Providers, cfg.HeaderAliases)
	mapping, err := mapper.Map(table.Header)
	if err != nil {
		o.step = StepAborted
		summary.Aborted = true
		summary.TotalRows = 0
		summary.Issues = append(summary.Issues, Issue{RowNumber: 0, Severity: SeverityError, Message: err.Error()})
		o.recordIssues(ctx, cfg.FileName, summary.Issues)
		o.emit(sink, summary, 100)
		o.logger.WithField("file", cfg.FileName).WithError(err).Warn("import aborted")
		return summary, err
	}
	summary.Issues = append(summary.Issues, mapping.Warnings...)
	o.emit(sink, summary, 20)

	// PARSING. Rows are independent, so parsing runs in a bounded
	// worker group; results land in row-indexed slices and issues are
	// re-sorted afterwards.
	o.step = StepParsing
	parser := NewRowParser(cfg.DateOrder, cfg.Providers)

	records := make([]*RowRecord, len(table.Rows))
	rowIssues := make([][]Issue, len(table.Rows))

	group, groupCtx := errgroup.WithContext(ctx)
	parallelism := cfg.Parallelism
	if parallelism <= 0 {
		parallelism = 4
	}
	group.SetLimit(parallelism)

	for i := range table.Rows {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			record, issues, ok := parser.ParseRow(table.Rows[i], mapping, i+1)
			rowIssues[i] = issues
			if ok {
				records[i] = &record
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return summary, err
	}

	parsed := make([]RowRecord, 0, len(table.Rows))
	for i := range table.Rows {
		summary.Issues = append(summary.Issues, rowIssues[i]...)
		if records[i] != nil {
			parsed = append(parsed, *records[i])
		} else {
			summary.FailedRows++
		}
	}
	o.emit(sink, summary, 55)

	// RESOLVING
	o.step = StepResolving
	resolver := NewEntityResolver(o.drivers, o.vehicles)
	resolution, err := resolver.Resolve(ctx, parsed)
	if err != nil {
		return summary, err
	}
	summary.CreatedEntities[string(KindDriver)] = resolution.Created[KindDriver]
	summary.CreatedEntities[string(KindVehicle)] = resolution.Created[KindVehicle]
	o.emit(sink, summary, 70)

	// PERSISTING. Each row is its own write; one failure never halts
	// the remaining rows, and there is no transaction spanning the
	// file.
	o.step = StepPersisting
	progressEvery := cfg.ProgressEvery
	if progressEvery <= 0 {
		progressEvery = 25
	}

	for i, record := range parsed {
		if err := ctx.Err(); err != nil {
			o.finish(ctx, cfg.FileName, &summary, sink)
			return summary, err
		}

		driverID, driverOK := resolution.DriverID(record.DriverName)
		vehicleID, vehicleOK := resolution.VehicleID(record.VehicleName)
		if !driverOK || !vehicleOK {
			summary.FailedRows++
			attributed := false
			if message, failed := resolution.FailureFor(KindDriver, record.DriverName); failed {
				attributed = true
				summary.Issues = append(summary.Issues, Issue{
					RowNumber: record.RowNumber,
					Severity:  SeverityError,
					Message:   fmt.Sprintf("driver %q could not be provisioned: %s", record.DriverName, message),
				})
			}
			if message, failed := resolution.FailureFor(KindVehicle, record.VehicleName); failed {
				attributed = true
				summary.Issues = append(summary.Issues, Issue{
					RowNumber: record.RowNumber,
					Severity:  SeverityError,
					Message:   fmt.Sprintf("vehicle %q could not be provisioned: %s", record.VehicleName, message),
				})
			}
			if !attributed {
				summary.Issues = append(summary.Issues, Issue{
					RowNumber: record.RowNumber,
					Severity:  SeverityError,
					Message:   "row references an unresolved entity",
				})
			}
			continue
		}

		entry := domain.NewShiftEntry(driverID, vehicleID, record.Date, record.Earnings, record.Notes)
		if _, err := o.entries.Create(ctx, entry); err != nil {
			summary.FailedRows++
			summary.Issues = append(summary.Issues, Issue{
				RowNumber: record.RowNumber,
				Severity:  SeverityError,
				Message:   fmt.Sprintf("failed to persist row: %v", err),
			})
			continue
		}
		summary.SucceededRows++

		if (i+1)%progressEvery == 0 {
			o.emit(sink, summary, 70+30*float64(i+1)/float64(len(parsed)))
		}
	}

	o.step = StepComplete
	o.finish(ctx, cfg.FileName, &summary, sink)

	o.logger.WithFields(logrus.Fields{
		"file":      cfg.FileName,
		"total":     summary.TotalRows,
		"succeeded": summary.SucceededRows,
		"failed":    summary.FailedRows,
		"drivers":   summary.CreatedEntities[string(KindDriver)],
		"vehicles":  summary.CreatedEntities[string(KindVehicle)],
	}).Info("import complete")

	return summary, nil
}

// Step reports the current phase; mainly useful to callers inspecting
// a finished orchestrator.
func (o *Orchestrator) Step() Step {
	return o.step
}

func (o *Orchestrator) finish(ctx context.Context, fileName string, summary *Summary, sink ProgressSink) {
	sort.SliceStable(summary.Issues, func(i, j int) bool {
		return summary.Issues[i].RowNumber < summary.Issues[j].RowNumber
	})
	o.recordIssues(ctx, fileName, summary.Issues)
	o.emit(sink, *summary, 100)
}

// recordIssues persists the issue trail; the pipeline stays correct
// when no log repository is wired.
func (o *Orchestrator) recordIssues(ctx context.Context, fileName string, issues []Issue) {
	if o.logs == nil {
		return
	}
	for _, issue := range issues {
		entry := domain.ImportLogEntry{
			FileName: fileName,
			Severity: string(issue.Severity),
			Message:  issue.Message,
		}
		if issue.RowNumber > 0 {
			rowNumber := issue.RowNumber
			entry.RowNumber = &rowNumber
		}
		if err := o.logs.Record(ctx, entry); err != nil {
			o.logger.WithError(err).Warn("failed to record import log entry")
		}
	}
}

func (o *Orchestrator) emit(sink ProgressSink, summary Summary, percent float64) {
	if sink == nil {
		return
	}
	var errorCount, warningCount int
	for _, issue := range summary.Issues {
		if issue.Severity == SeverityError {
			errorCount++
		} else {
			warningCount++
		}
	}
	sink.Publish(Progress{
		Step:            o.step,
		PercentComplete: percent,
		Errors:          errorCount,
		Warnings:        warningCount,
	})
}
