package show_test

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/temirov/dep3audit/internal/show"
)

const (
	firstPatchContentConstant  = "Upstream prose.\n\nOrigin: upstream\nDescription: fix crash\nBug: 1\n---\n"
	secondPatchContentConstant = "Bug: 2\n---\n"
)

type renderedDocument struct {
	Path   string    `yaml:"path"`
	Valid  bool      `yaml:"valid"`
	Fields yaml.Node `yaml:"fields"`
}

func (document renderedDocument) fieldNames() []string {
	var names []string
	for index := 0; index+1 < len(document.Fields.Content); index += 2 {
		names = append(names, document.Fields.Content[index].Value)
	}
	return names
}

func (document renderedDocument) fieldValue(name string) string {
	for index := 0; index+1 < len(document.Fields.Content); index += 2 {
		if document.Fields.Content[index].Value == name {
			return document.Fields.Content[index+1].Value
		}
	}
	return ""
}

func runShowCommand(testInstance *testing.T, arguments []string) (string, error) {
	testInstance.Helper()
	builder := show.CommandBuilder{LoggerProvider: func() *zap.Logger { return zap.NewNop() }}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	command.SetContext(context.Background())
	command.SetArgs(arguments)
	outputBuffer := &bytes.Buffer{}
	command.SetOut(outputBuffer)
	command.SetErr(outputBuffer)

	executionError := command.Execute()
	return outputBuffer.String(), executionError
}

func TestShowCommandRendersRecordsInFieldOrder(testInstance *testing.T) {
	patchDirectory := testInstance.TempDir()
	firstPatchPath := filepath.Join(patchDirectory, "first.patch")
	secondPatchPath := filepath.Join(patchDirectory, "second.patch")
	require.NoError(testInstance, os.WriteFile(firstPatchPath, []byte(firstPatchContentConstant), 0o600))
	require.NoError(testInstance, os.WriteFile(secondPatchPath, []byte(secondPatchContentConstant), 0o600))

	output, executionError := runShowCommand(testInstance, []string{firstPatchPath, secondPatchPath})
	require.NoError(testInstance, executionError)

	decoder := yaml.NewDecoder(strings.NewReader(output))

	firstDocument := renderedDocument{}
	require.NoError(testInstance, decoder.Decode(&firstDocument))
	require.Equal(testInstance, firstPatchPath, firstDocument.Path)
	require.True(testInstance, firstDocument.Valid)
	require.Equal(testInstance, []string{"Origin", "Subject", "Bug"}, firstDocument.fieldNames())
	require.Equal(testInstance, "fix crash\nUpstream prose.", firstDocument.fieldValue("Subject"))

	secondDocument := renderedDocument{}
	require.NoError(testInstance, decoder.Decode(&secondDocument))
	require.Equal(testInstance, secondPatchPath, secondDocument.Path)
	require.False(testInstance, secondDocument.Valid)
	require.Equal(testInstance, []string{"Bug"}, secondDocument.fieldNames())
}

func TestShowCommandPropagatesReadErrors(testInstance *testing.T) {
	missingPath := filepath.Join(testInstance.TempDir(), "missing.patch")

	_, executionError := runShowCommand(testInstance, []string{missingPath})
	require.Error(testInstance, executionError)
	require.ErrorIs(testInstance, executionError, fs.ErrNotExist)
}

func TestShowCommandRequiresPatches(testInstance *testing.T) {
	output, executionError := runShowCommand(testInstance, []string{})
	require.Error(testInstance, executionError)
	require.Contains(testInstance, output, "show <patch>...")
}
