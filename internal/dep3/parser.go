package dep3

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"
)

const (
	lineSeparatorConstant             = "\n"
	carriageReturnConstant            = "\r"
	metadataDelimiterConstant         = "---"
	readerSourceLabelConstant         = "<reader>"
	readErrorTemplateConstant         = "unable to read patch %s: %v"
	undecodableLineSkippedMessage     = "skipping undecodable patch line"
	patchParsedMessageConstant        = "patch header parsed"
	logFieldSourceConstant            = "source"
	logFieldLineNumberConstant        = "line_number"
	logFieldValidConstant             = "valid"
	logFieldFieldCountConstant        = "field_count"
	headerLinePatternConstant         = `^(\S+):(.*)$`
	foldedContinuationPatternConstant = `^\s+(\S.*)$`
)

var (
	headerLinePattern         = regexp.MustCompile(headerLinePatternConstant)
	foldedContinuationPattern = regexp.MustCompile(foldedContinuationPatternConstant)
)

// ReadError reports that a patch could not be opened or read. It is distinct
// from a readable patch that fails validation, which yields an invalid Record.
type ReadError struct {
	Path string
	Err  error
}

// Error describes the failed read.
func (readError ReadError) Error() string {
	return fmt.Sprintf(readErrorTemplateConstant, readError.Path, readError.Err)
}

// Unwrap exposes the underlying I/O error.
func (readError ReadError) Unwrap() error {
	return readError.Err
}

// UndecodableLinePolicy controls lines that are not valid UTF-8 and therefore
// cannot be probed for the end-of-metadata delimiter.
type UndecodableLinePolicy int

// Supported undecodable line policies.
const (
	// SkipUndecodableLines drops the line with a warning and keeps reading.
	SkipUndecodableLines UndecodableLinePolicy = iota
	// KeepUndecodableLines processes the raw bytes like any other line.
	KeepUndecodableLines
)

// Option customizes a Parser.
type Option func(*Parser)

// WithLogger attaches a logger used for parse diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(parser *Parser) {
		if logger != nil {
			parser.logger = logger
		}
	}
}

// WithUndecodableLinePolicy overrides the default SkipUndecodableLines policy.
func WithUndecodableLinePolicy(policy UndecodableLinePolicy) Option {
	return func(parser *Parser) {
		parser.undecodableLinePolicy = policy
	}
}

// Parser extracts DEP3 header records from patch files. It keeps no state
// between calls and is safe for concurrent use.
type Parser struct {
	logger                *zap.Logger
	undecodableLinePolicy UndecodableLinePolicy
}

// NewParser constructs a Parser with the provided options applied.
func NewParser(options ...Option) *Parser {
	parser := &Parser{
		logger:                zap.NewNop(),
		undecodableLinePolicy: SkipUndecodableLines,
	}
	for _, option := range options {
		if option != nil {
			option(parser)
		}
	}
	return parser
}

// ParseFile reads the patch at filePath and returns its header record.
// The error is non-nil only when the file cannot be opened or read.
func (parser *Parser) ParseFile(filePath string) (*Record, error) {
	patchFile, openError := os.Open(filePath)
	if openError != nil {
		return nil, ReadError{Path: filePath, Err: openError}
	}
	defer patchFile.Close()

	record, parseError := parser.parse(patchFile, filePath)
	if parseError != nil {
		return nil, ReadError{Path: filePath, Err: parseError}
	}
	return record, nil
}

// ParseReader parses patch content from an arbitrary reader.
func (parser *Parser) ParseReader(source io.Reader) (*Record, error) {
	record, parseError := parser.parse(source, readerSourceLabelConstant)
	if parseError != nil {
		return nil, ReadError{Path: readerSourceLabelConstant, Err: parseError}
	}
	return record, nil
}

func (parser *Parser) parse(source io.Reader, sourceLabel string) (*Record, error) {
	lineReader := bufio.NewReader(source)
	accumulator := &scanAccumulator{record: NewRecord()}
	state := parserState{kind: stateNone}
	lineNumber := 0

	for {
		line, readError := lineReader.ReadString('\n')
		if readError != nil && !errors.Is(readError, io.EOF) {
			return nil, readError
		}
		if len(line) > 0 {
			lineNumber++
			if !parser.decodable(line, sourceLabel, lineNumber) {
				if errors.Is(readError, io.EOF) {
					break
				}
				continue
			}
			if isMetadataDelimiter(line) {
				break
			}
			state = step(state, line, accumulator)
		}
		if errors.Is(readError, io.EOF) {
			break
		}
	}

	accumulator.finish()

	parser.logger.Debug(
		patchParsedMessageConstant,
		zap.String(logFieldSourceConstant, sourceLabel),
		zap.Bool(logFieldValidConstant, accumulator.record.Valid()),
		zap.Int(logFieldFieldCountConstant, accumulator.record.Len()),
	)

	return accumulator.record, nil
}

// decodable applies the undecodable line policy while probing for the delimiter.
func (parser *Parser) decodable(line string, sourceLabel string, lineNumber int) bool {
	if parser.undecodableLinePolicy == KeepUndecodableLines || utf8.ValidString(line) {
		return true
	}
	parser.logger.Warn(
		undecodableLineSkippedMessage,
		zap.String(logFieldSourceConstant, sourceLabel),
		zap.Int(logFieldLineNumberConstant, lineNumber),
	)
	return false
}

func isMetadataDelimiter(line string) bool {
	return strings.TrimSpace(line) == metadataDelimiterConstant
}

type parserStateKind int

const (
	stateNone parserStateKind = iota
	stateHeader
	stateFreeForm
)

// parserState is the tagged state threaded through the scan loop.
// currentHeader is meaningful only for stateHeader.
type parserState struct {
	kind          parserStateKind
	currentHeader string
}

type scanAccumulator struct {
	record      *Record
	freeForm    string
	hasFreeForm bool
}

func (accumulator *scanAccumulator) appendFreeForm(text string) {
	if !accumulator.hasFreeForm {
		accumulator.freeForm = text
		accumulator.hasFreeForm = true
		return
	}
	accumulator.freeForm += lineSeparatorConstant + text
}

// step applies the first matching transition rule to one raw line.
func step(state parserState, line string, accumulator *scanAccumulator) parserState {
	content := chomp(line)

	if headerMatch := headerLinePattern.FindStringSubmatch(content); headerMatch != nil {
		fieldName := headerMatch[1]
		fieldValue := strings.TrimLeftFunc(headerMatch[2], unicode.IsSpace)
		accumulator.record.appendValue(fieldName, fieldValue)
		return parserState{kind: stateHeader, currentHeader: fieldName}
	}

	if state.kind == stateHeader {
		if foldMatch := foldedContinuationPattern.FindStringSubmatch(content); foldMatch != nil {
			accumulator.record.appendValue(state.currentHeader, foldMatch[1])
			return state
		}
	}

	if state.kind == stateFreeForm && line == lineSeparatorConstant {
		return parserState{kind: stateNone}
	}

	freeFormText := content
	if line == lineSeparatorConstant {
		freeFormText = line
	}
	accumulator.appendFreeForm(freeFormText)
	return parserState{kind: stateFreeForm}
}

// finish validates the record and, when it qualifies, merges the free-form
// text into Description and trims every value.
func (accumulator *scanAccumulator) finish() {
	record := accumulator.record
	if !record.Has(descriptionFieldNameConstant) {
		return
	}
	if !record.Has(originFieldNameConstant) && !record.Has(authorFieldNameConstant) {
		return
	}

	if accumulator.hasFreeForm {
		record.appendValue(descriptionFieldNameConstant, accumulator.freeForm)
	}
	accumulator.freeForm = ""
	accumulator.hasFreeForm = false

	for _, storedName := range record.order {
		record.values[storedName] = strings.TrimSpace(record.values[storedName])
	}
	record.valid = true
}

func chomp(line string) string {
	trimmed := strings.TrimSuffix(line, lineSeparatorConstant)
	return strings.TrimSuffix(trimmed, carriageReturnConstant)
}
