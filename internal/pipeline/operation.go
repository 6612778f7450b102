package pipeline

import (
	"context"
	"io"

	"go.uber.org/zap"

	"github.com/temirov/releasekit/internal/artifacts"
	"github.com/temirov/releasekit/internal/gitrepo"
	"github.com/temirov/releasekit/internal/notes"
	"github.com/temirov/releasekit/internal/releases"
)

// Operation coordinates a single step of the release pipeline.
type Operation interface {
	Name() string
	Execute(executionContext context.Context, environment *Environment, state *State) error
}

// NotesGenerator is the subset of notes.Service used by pipeline operations.
type NotesGenerator interface {
	Generate(executionContext context.Context, request notes.GenerationRequest) (notes.GeneratedNotes, error)
}

// ArtifactCollector is the subset of artifacts.Service used by pipeline operations.
type ArtifactCollector interface {
	Collect(options artifacts.CollectionOptions) (artifacts.Collection, error)
}

// ReleaseCoordinator is the subset of releases.Service used by pipeline operations.
type ReleaseCoordinator interface {
	Publish(executionContext context.Context, options releases.PublishOptions) error
	Prune(executionContext context.Context, options releases.PruneOptions) (releases.PruneResult, error)
	Archive(executionContext context.Context, options releases.ArchiveOptions) error
}

// RepositoryResolver is the subset of gitrepo.RepositoryInspector used by pipeline operations.
type RepositoryResolver interface {
	ResolveCommit(repositoryPath string, commitish string) (string, error)
	TagExists(repositoryPath string, tagName string) (bool, error)
	OriginRepository(repositoryPath string) (gitrepo.RemoteURL, error)
}

// Environment exposes shared dependencies for pipeline operations.
type Environment struct {
	NotesService        NotesGenerator
	ArtifactsService    ArtifactCollector
	ReleaseService      ReleaseCoordinator
	RepositoryInspector RepositoryResolver
	Output              io.Writer
	Errors              io.Writer
	Logger              *zap.Logger
	DryRun              bool
}

// Inputs captures the caller-provided parameters of a pipeline run.
type Inputs struct {
	Nightly             bool
	Version             string
	TargetCommitish     string
	Repository          string
	RepositoryPath      string
	ArtifactsDirectory  string
	NotesDirectory      string
	ArchiveRepository   string
	ArchiveToken        string
	AllowEmptyArtifacts bool
}

// State accumulates the results produced by earlier pipeline operations.
type State struct {
	Inputs         Inputs
	Repository     string
	ReleaseTag     string
	ResolvedCommit string
	Collection     artifacts.Collection
	Notes          notes.GeneratedNotes
}
