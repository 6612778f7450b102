package pipeline

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	configurationLoadErrorTemplateConstant       = "failed to load pipeline configuration: %w"
	configurationParseErrorTemplateConstant      = "failed to parse pipeline configuration: %w"
	configurationPathRequiredMessageConstant     = "pipeline configuration path must be provided"
	configurationEmptyStepsMessageConstant       = "pipeline configuration must define at least one step"
	configurationOperationMissingMessageConstant = "pipeline step missing operation name"
	configurationUnknownOperationTemplate        = "pipeline configuration references unknown operation %s"
)

// OperationType identifies supported pipeline operations.
type OperationType string

// Supported pipeline operations.
const (
	OperationTypeVerifyRepository OperationType = OperationType("verify-repository")
	OperationTypeCollectArtifacts OperationType = OperationType("collect-artifacts")
	OperationTypeGenerateNotes    OperationType = OperationType("generate-notes")
	OperationTypeArchiveRelease   OperationType = OperationType("archive-release")
	OperationTypePruneNightly     OperationType = OperationType("prune-nightly")
	OperationTypePublishRelease   OperationType = OperationType("publish-release")
)

// Configuration describes the ordered pipeline steps loaded from YAML.
type Configuration struct {
	Steps []StepConfiguration `yaml:"steps"`
}

// StepConfiguration names a single pipeline operation.
type StepConfiguration struct {
	Operation OperationType `yaml:"operation"`
}

// DefaultConfiguration returns the standard publishing order.
func DefaultConfiguration() Configuration {
	return Configuration{
		Steps: []StepConfiguration{
			{Operation: OperationTypeVerifyRepository},
			{Operation: OperationTypeCollectArtifacts},
			{Operation: OperationTypeGenerateNotes},
			{Operation: OperationTypeArchiveRelease},
			{Operation: OperationTypePruneNightly},
			{Operation: OperationTypePublishRelease},
		},
	}
}

// LoadConfiguration reads the pipeline definition from disk and performs basic validation.
func LoadConfiguration(filePath string) (Configuration, error) {
	trimmedPath := strings.TrimSpace(filePath)
	if len(trimmedPath) == 0 {
		return Configuration{}, errors.New(configurationPathRequiredMessageConstant)
	}

	contentBytes, readError := os.ReadFile(trimmedPath)
	if readError != nil {
		return Configuration{}, fmt.Errorf(configurationLoadErrorTemplateConstant, readError)
	}

	var configuration Configuration
	if unmarshalError := yaml.Unmarshal(contentBytes, &configuration); unmarshalError != nil {
		var wrapper struct {
			Pipeline Configuration `yaml:"pipeline"`
		}
		nestedError := yaml.Unmarshal(contentBytes, &wrapper)
		if nestedError != nil || len(wrapper.Pipeline.Steps) == 0 {
			return Configuration{}, fmt.Errorf(configurationParseErrorTemplateConstant, unmarshalError)
		}
		configuration = wrapper.Pipeline
	} else if len(configuration.Steps) == 0 {
		var wrapper struct {
			Pipeline Configuration `yaml:"pipeline"`
		}
		if nestedError := yaml.Unmarshal(contentBytes, &wrapper); nestedError == nil && len(wrapper.Pipeline.Steps) > 0 {
			configuration = wrapper.Pipeline
		}
	}

	if len(configuration.Steps) == 0 {
		return Configuration{}, errors.New(configurationEmptyStepsMessageConstant)
	}

	for stepIndex := range configuration.Steps {
		trimmedOperation := strings.TrimSpace(string(configuration.Steps[stepIndex].Operation))
		if len(trimmedOperation) == 0 {
			return Configuration{}, errors.New(configurationOperationMissingMessageConstant)
		}
		configuration.Steps[stepIndex].Operation = OperationType(trimmedOperation)
	}

	return configuration, nil
}

// BuildOperations materializes the configured steps into executable operations.
func (configuration Configuration) BuildOperations() ([]Operation, error) {
	operations := make([]Operation, 0, len(configuration.Steps))
	for _, stepConfiguration := range configuration.Steps {
		operation, operationError := NewOperation(stepConfiguration.Operation)
		if operationError != nil {
			return nil, operationError
		}
		operations = append(operations, operation)
	}
	return operations, nil
}

// NewOperation constructs the operation implementing the named step.
func NewOperation(operationType OperationType) (Operation, error) {
	switch operationType {
	case OperationTypeVerifyRepository:
		return &verifyRepositoryOperation{}, nil
	case OperationTypeCollectArtifacts:
		return &collectArtifactsOperation{}, nil
	case OperationTypeGenerateNotes:
		return &generateNotesOperation{}, nil
	case OperationTypeArchiveRelease:
		return &archiveReleaseOperation{}, nil
	case OperationTypePruneNightly:
		return &pruneNightlyOperation{}, nil
	case OperationTypePublishRelease:
		return &publishReleaseOperation{}, nil
	default:
		return nil, fmt.Errorf(configurationUnknownOperationTemplate, operationType)
	}
}
