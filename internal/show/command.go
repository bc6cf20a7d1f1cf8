package show

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/temirov/dep3audit/internal/dep3"
)

const (
	commandUseConstant              = "show <patch>..."
	commandShortDescriptionConstant = "Print the parsed DEP3 header of patch files"
	commandLongDescriptionConstant  = "show parses each patch file and prints its validity and header fields as YAML, preserving field order."
	yamlStringTagConstant           = "!!str"
	yamlBoolTagConstant             = "!!bool"
	yamlIndentationConstant         = 2
	documentPathKeyConstant         = "path"
	documentValidKeyConstant        = "valid"
	documentFieldsKeyConstant       = "fields"
	encodeErrorTemplateConstant     = "unable to render %s: %w"
	missingPatchesMessageConstant   = "no patch files provided"
)

var errMissingPatches = errors.New(missingPatchesMessageConstant)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// PatchParser extracts the DEP3 header record from one patch file.
type PatchParser interface {
	ParseFile(filePath string) (*dep3.Record, error)
}

// CommandBuilder assembles the show cobra command.
type CommandBuilder struct {
	LoggerProvider LoggerProvider
	Parser         PatchParser
}

// Build constructs the cobra command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	return &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) == 0 {
		if helpError := command.Help(); helpError != nil {
			return helpError
		}
		return errMissingPatches
	}

	parser := builder.resolveParser()
	encoder := yaml.NewEncoder(command.OutOrStdout())
	encoder.SetIndent(yamlIndentationConstant)

	for _, patchPath := range arguments {
		record, parseError := parser.ParseFile(patchPath)
		if parseError != nil {
			return parseError
		}
		if encodeError := encoder.Encode(recordDocument(patchPath, record)); encodeError != nil {
			return fmt.Errorf(encodeErrorTemplateConstant, patchPath, encodeError)
		}
	}
	return encoder.Close()
}

func (builder *CommandBuilder) resolveParser() PatchParser {
	if builder.Parser != nil {
		return builder.Parser
	}
	logger := zap.NewNop()
	if builder.LoggerProvider != nil {
		if providedLogger := builder.LoggerProvider(); providedLogger != nil {
			logger = providedLogger
		}
	}
	return dep3.NewParser(dep3.WithLogger(logger))
}

// recordDocument builds a mapping node so the header fields keep their order.
func recordDocument(patchPath string, record *dep3.Record) *yaml.Node {
	fieldsNode := &yaml.Node{Kind: yaml.MappingNode}
	for _, field := range record.Fields() {
		fieldsNode.Content = append(fieldsNode.Content, scalarNode(field.Name), scalarNode(field.Value))
	}

	return &yaml.Node{
		Kind: yaml.MappingNode,
		Content: []*yaml.Node{
			scalarNode(documentPathKeyConstant), scalarNode(patchPath),
			scalarNode(documentValidKeyConstant), {Kind: yaml.ScalarNode, Tag: yamlBoolTagConstant, Value: fmt.Sprint(record.Valid())},
			scalarNode(documentFieldsKeyConstant), fieldsNode,
		},
	}
}

func scalarNode(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: yamlStringTagConstant, Value: value}
}
