package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
)

const (
	pipelineExecutionErrorTemplateConstant = "pipeline operation %s failed: %w"
	pipelineDependenciesMessageConstant    = "pipeline executor requires notes, artifacts, release, and repository dependencies"
	pipelineCompletedLogMessageConstant    = "Release pipeline completed"
	operationCountLogFieldConstant         = "operation_count"
)

// Dependencies configures shared collaborators for pipeline execution.
type Dependencies struct {
	Logger              *zap.Logger
	NotesService        NotesGenerator
	ArtifactsService    ArtifactCollector
	ReleaseService      ReleaseCoordinator
	RepositoryInspector RepositoryResolver
	Output              io.Writer
	Errors              io.Writer
}

// RuntimeOptions captures user-provided execution modifiers.
type RuntimeOptions struct {
	DryRun bool
}

// Executor runs the configured release pipeline operations in order.
type Executor struct {
	operations   []Operation
	dependencies Dependencies
}

// NewExecutor constructs an Executor instance.
func NewExecutor(operations []Operation, dependencies Dependencies) *Executor {
	return &Executor{operations: append([]Operation{}, operations...), dependencies: dependencies}
}

// Execute runs each operation against a shared state seeded from the inputs.
func (executor *Executor) Execute(executionContext context.Context, inputs Inputs, runtimeOptions RuntimeOptions) (*State, error) {
	if executor.dependencies.NotesService == nil || executor.dependencies.ArtifactsService == nil || executor.dependencies.ReleaseService == nil || executor.dependencies.RepositoryInspector == nil {
		return nil, errors.New(pipelineDependenciesMessageConstant)
	}

	logger := executor.dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	state := &State{Inputs: inputs}
	environment := &Environment{
		NotesService:        executor.dependencies.NotesService,
		ArtifactsService:    executor.dependencies.ArtifactsService,
		ReleaseService:      executor.dependencies.ReleaseService,
		RepositoryInspector: executor.dependencies.RepositoryInspector,
		Output:              executor.dependencies.Output,
		Errors:              executor.dependencies.Errors,
		Logger:              logger,
		DryRun:              runtimeOptions.DryRun,
	}

	for operationIndex := range executor.operations {
		operation := executor.operations[operationIndex]
		if operation == nil {
			continue
		}
		if executeError := operation.Execute(executionContext, environment, state); executeError != nil {
			return nil, fmt.Errorf(pipelineExecutionErrorTemplateConstant, operation.Name(), executeError)
		}
	}

	logger.Debug(pipelineCompletedLogMessageConstant, zap.Int(operationCountLogFieldConstant, len(executor.operations)))

	return state, nil
}
