package audit

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/dep3audit/internal/dep3"
)

const (
	patchesDiscoveredMessageConstant  = "patches discovered"
	patchInspectedMessageConstant     = "patch inspected"
	patchUnreadableMessageConstant    = "patch could not be read"
	historyUnavailableMessageConstant = "git history unavailable"
	auditCompletedMessageConstant     = "audit completed"
	logFieldRootsConstant             = "roots"
	logFieldPatchCountConstant        = "patch_count"
	logFieldPatchPathConstant         = "patch_path"
	logFieldStatusConstant            = "status"
	logFieldTotalConstant             = "total"
	logFieldValidConstant             = "valid"
	logFieldInvalidConstant           = "invalid"
	logFieldUnreadableConstant        = "unreadable"
	discoveryErrorTemplateConstant    = "unable to discover patches: %w"
	reportWriteErrorTemplateConstant  = "unable to write report: %w"
	nonCompliantPatchesTemplate       = "%w: %d invalid, %d unreadable of %d"
)

// ErrNonCompliantPatches is returned when FailOnInvalid is set and a patch is not valid.
var ErrNonCompliantPatches = errors.New("non-compliant patches found")

// Service coordinates patch discovery, parsing, history lookup and reporting.
type Service struct {
	discoverer      PatchDiscoverer
	parser          PatchParser
	historyResolver HistoryResolver
	logger          *zap.Logger
	outputWriter    io.Writer
}

// NewService constructs a Service using the provided dependencies.
// A nil historyResolver disables the history fallback.
func NewService(discoverer PatchDiscoverer, parser PatchParser, historyResolver HistoryResolver, logger *zap.Logger, outputWriter io.Writer) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		discoverer:      discoverer,
		parser:          parser,
		historyResolver: historyResolver,
		logger:          logger,
		outputWriter:    outputWriter,
	}
}

// Run executes the audit according to the provided options and returns the tally.
func (service *Service) Run(executionContext context.Context, options CommandOptions) (Summary, error) {
	reportWriter, writerError := NewReportWriter(options.Format)
	if writerError != nil {
		return Summary{}, writerError
	}

	patches, discoveryError := service.discoverer.DiscoverPatches(options.Roots, options.Patterns, options.Excludes)
	if discoveryError != nil {
		return Summary{}, fmt.Errorf(discoveryErrorTemplateConstant, discoveryError)
	}

	service.logger.Info(
		patchesDiscoveredMessageConstant,
		zap.Strings(logFieldRootsConstant, options.Roots),
		zap.Int(logFieldPatchCountConstant, len(patches)),
	)

	rows, inspectionError := service.inspectPatches(executionContext, patches, options)
	if inspectionError != nil {
		return Summary{}, inspectionError
	}

	summary := summarize(rows)

	reportedRows := rows
	if options.OnlyInvalid {
		reportedRows = filterNonCompliant(rows)
	}
	if writeError := reportWriter.WriteReport(service.outputWriter, reportedRows); writeError != nil {
		return summary, fmt.Errorf(reportWriteErrorTemplateConstant, writeError)
	}

	service.logger.Info(
		auditCompletedMessageConstant,
		zap.Int(logFieldTotalConstant, summary.Total),
		zap.Int(logFieldValidConstant, summary.Valid),
		zap.Int(logFieldInvalidConstant, summary.Invalid),
		zap.Int(logFieldUnreadableConstant, summary.Unreadable),
	)

	if options.FailOnInvalid && !summary.Compliant() {
		return summary, fmt.Errorf(nonCompliantPatchesTemplate, ErrNonCompliantPatches, summary.Invalid, summary.Unreadable, summary.Total)
	}
	return summary, nil
}

// inspectPatches parses every patch with at most options.Concurrency workers,
// keeping rows in discovery order.
func (service *Service) inspectPatches(executionContext context.Context, patches []string, options CommandOptions) ([]ReportRow, error) {
	rows := make([]ReportRow, len(patches))

	workerGroup, groupContext := errgroup.WithContext(executionContext)
	if options.Concurrency > 0 {
		workerGroup.SetLimit(options.Concurrency)
	}

	for patchIndex, patchPath := range patches {
		workerGroup.Go(func() error {
			if contextError := groupContext.Err(); contextError != nil {
				return contextError
			}
			rows[patchIndex] = service.inspectPatch(groupContext, patchPath, options.HistoryFallback)
			return nil
		})
	}

	if waitError := workerGroup.Wait(); waitError != nil {
		return nil, waitError
	}
	return rows, nil
}

func (service *Service) inspectPatch(executionContext context.Context, patchPath string, historyFallback bool) ReportRow {
	record, parseError := service.parser.ParseFile(patchPath)
	if parseError != nil {
		service.logger.Warn(patchUnreadableMessageConstant, zap.String(logFieldPatchPathConstant, patchPath), zap.Error(parseError))
		return ReportRow{Path: patchPath, Status: PatchStatusUnreadable, Error: parseError.Error()}
	}

	row := reportRowFromRecord(patchPath, record)
	if historyFallback && service.historyResolver != nil && (len(row.Author) == 0 || len(row.LastUpdate) == 0) {
		service.applyHistory(executionContext, &row)
	}

	service.logger.Debug(patchInspectedMessageConstant, zap.String(logFieldPatchPathConstant, patchPath), zap.String(logFieldStatusConstant, string(row.Status)))
	return row
}

func (service *Service) applyHistory(executionContext context.Context, row *ReportRow) {
	entry, resolveError := service.historyResolver.Resolve(executionContext, row.Path)
	if resolveError != nil {
		service.logger.Debug(historyUnavailableMessageConstant, zap.String(logFieldPatchPathConstant, row.Path), zap.Error(resolveError))
		return
	}
	if len(row.Author) == 0 && len(entry.Author) > 0 {
		row.Author = entry.Author
		row.AuthorSource = FieldSourceHistory
	}
	if len(row.LastUpdate) == 0 && len(entry.LastUpdate) > 0 {
		row.LastUpdate = entry.LastUpdate
		row.LastUpdateSource = FieldSourceHistory
	}
}

func reportRowFromRecord(patchPath string, record *dep3.Record) ReportRow {
	status := PatchStatusInvalid
	if record.Valid() {
		status = PatchStatusValid
	}

	row := ReportRow{
		Path:        patchPath,
		Status:      status,
		Description: record.Value(dep3.FieldDescription),
		Author:      record.Value(dep3.FieldAuthor),
		Origin:      record.Value(dep3.FieldOrigin),
		Bug:         record.Value(dep3.FieldBug),
		Forwarded:   record.Value(dep3.FieldForwarded),
		LastUpdate:  record.Value(dep3.FieldLastUpdate),
	}
	if len(row.Author) > 0 {
		row.AuthorSource = FieldSourceHeader
	}
	if len(row.LastUpdate) > 0 {
		row.LastUpdateSource = FieldSourceHeader
	}
	return row
}

func filterNonCompliant(rows []ReportRow) []ReportRow {
	filtered := make([]ReportRow, 0, len(rows))
	for _, row := range rows {
		if row.Status == PatchStatusValid {
			continue
		}
		filtered = append(filtered, row)
	}
	return filtered
}
