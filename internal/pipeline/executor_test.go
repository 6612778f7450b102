package pipeline_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/releasekit/internal/artifacts"
	"github.com/temirov/releasekit/internal/gitrepo"
	"github.com/temirov/releasekit/internal/notes"
	"github.com/temirov/releasekit/internal/pipeline"
	"github.com/temirov/releasekit/internal/releases"
)

const (
	testVersionConstant           = "2024.08.24"
	testRepositoryConstant        = "acme/widget"
	testArchiveRepositoryConstant = "acme/widget-archive"
	testArchiveTokenConstant      = "ghp_archive"
	testResolvedCommitConstant    = "0123456789abcdef0123456789abcdef01234567"
	testReleaseNotesPathConstant  = "/tmp/notes/release_notes.md"
	testPrereleasePathConstant    = "/tmp/notes/prerelease_notes.md"
	testArchivePathConstant       = "/tmp/notes/archive_notes.md"
	testArtifactPathConstant      = "/tmp/dist/widget.tar.gz"
)

type stubNotesService struct {
	generated       notes.GeneratedNotes
	generationError error
	requests        []notes.GenerationRequest
}

func (service *stubNotesService) Generate(_ context.Context, request notes.GenerationRequest) (notes.GeneratedNotes, error) {
	service.requests = append(service.requests, request)
	return service.generated, service.generationError
}

type stubArtifactsService struct {
	collection      artifacts.Collection
	collectionError error
	options         []artifacts.CollectionOptions
}

func (service *stubArtifactsService) Collect(options artifacts.CollectionOptions) (artifacts.Collection, error) {
	service.options = append(service.options, options)
	return service.collection, service.collectionError
}

type stubReleaseService struct {
	publishOptions []releases.PublishOptions
	pruneOptions   []releases.PruneOptions
	archiveOptions []releases.ArchiveOptions
	publishError   error
	pruneError     error
	archiveError   error
}

func (service *stubReleaseService) Publish(_ context.Context, options releases.PublishOptions) error {
	service.publishOptions = append(service.publishOptions, options)
	return service.publishError
}

func (service *stubReleaseService) Prune(_ context.Context, options releases.PruneOptions) (releases.PruneResult, error) {
	service.pruneOptions = append(service.pruneOptions, options)
	return releases.PruneResult{ReleaseDeleted: true, TagDeleted: true}, service.pruneError
}

func (service *stubReleaseService) Archive(_ context.Context, options releases.ArchiveOptions) error {
	service.archiveOptions = append(service.archiveOptions, options)
	return service.archiveError
}

type stubRepositoryInspector struct {
	resolvedCommit string
	resolveError   error
	tagExists      bool
	tagError       error
	originRemote   gitrepo.RemoteURL
	originError    error
}

func (inspector *stubRepositoryInspector) ResolveCommit(string, string) (string, error) {
	return inspector.resolvedCommit, inspector.resolveError
}

func (inspector *stubRepositoryInspector) TagExists(string, string) (bool, error) {
	return inspector.tagExists, inspector.tagError
}

func (inspector *stubRepositoryInspector) OriginRepository(string) (gitrepo.RemoteURL, error) {
	return inspector.originRemote, inspector.originError
}

type pipelineFixture struct {
	notesService     *stubNotesService
	artifactsService *stubArtifactsService
	releaseService   *stubReleaseService
	inspector        *stubRepositoryInspector
}

func newPipelineFixture() *pipelineFixture {
	return &pipelineFixture{
		notesService: &stubNotesService{generated: notes.GeneratedNotes{
			ReleaseNotesPath:    testReleaseNotesPathConstant,
			PrereleaseNotesPath: testPrereleasePathConstant,
			ArchiveNotesPath:    testArchivePathConstant,
			CommitCount:         2,
		}},
		artifactsService: &stubArtifactsService{collection: artifacts.Collection{
			ArtifactPaths: []string{testArtifactPathConstant},
			ManifestPaths: []string{"/tmp/dist/SHA2-256SUMS", "/tmp/dist/SHA2-512SUMS"},
		}},
		releaseService: &stubReleaseService{},
		inspector:      &stubRepositoryInspector{resolvedCommit: testResolvedCommitConstant},
	}
}

func (fixture *pipelineFixture) executor(testInstance *testing.T) *pipeline.Executor {
	operations, buildError := pipeline.DefaultConfiguration().BuildOperations()
	require.NoError(testInstance, buildError)

	return pipeline.NewExecutor(operations, pipeline.Dependencies{
		Logger:              zap.NewNop(),
		NotesService:        fixture.notesService,
		ArtifactsService:    fixture.artifactsService,
		ReleaseService:      fixture.releaseService,
		RepositoryInspector: fixture.inspector,
	})
}

func stableInputs() pipeline.Inputs {
	return pipeline.Inputs{
		Version:            testVersionConstant,
		Repository:         testRepositoryConstant,
		RepositoryPath:     "/tmp/repo",
		ArtifactsDirectory: "/tmp/dist",
		NotesDirectory:     "/tmp/notes",
	}
}

func nightlyInputs() pipeline.Inputs {
	inputs := stableInputs()
	inputs.Nightly = true
	inputs.ArchiveRepository = testArchiveRepositoryConstant
	inputs.ArchiveToken = testArchiveTokenConstant
	return inputs
}

func TestExecuteStableRelease(testInstance *testing.T) {
	fixture := newPipelineFixture()

	state, executionError := fixture.executor(testInstance).Execute(context.Background(), stableInputs(), pipeline.RuntimeOptions{})
	require.NoError(testInstance, executionError)

	require.Equal(testInstance, testVersionConstant, state.ReleaseTag)
	require.Equal(testInstance, testResolvedCommitConstant, state.ResolvedCommit)

	require.Empty(testInstance, fixture.releaseService.archiveOptions)
	require.Empty(testInstance, fixture.releaseService.pruneOptions)
	require.Len(testInstance, fixture.releaseService.publishOptions, 1)

	publishOptions := fixture.releaseService.publishOptions[0]
	require.Equal(testInstance, testRepositoryConstant, publishOptions.Repository)
	require.Equal(testInstance, testVersionConstant, publishOptions.TagName)
	require.False(testInstance, publishOptions.Prerelease)
	require.Equal(testInstance, testReleaseNotesPathConstant, publishOptions.NotesFilePath)
	require.Contains(testInstance, publishOptions.AssetPaths, testArtifactPathConstant)
}

func TestExecuteNightlyRelease(testInstance *testing.T) {
	fixture := newPipelineFixture()

	state, executionError := fixture.executor(testInstance).Execute(context.Background(), nightlyInputs(), pipeline.RuntimeOptions{})
	require.NoError(testInstance, executionError)
	require.Equal(testInstance, pipeline.NightlyReleaseTag, state.ReleaseTag)

	require.Len(testInstance, fixture.releaseService.archiveOptions, 1)
	archiveOptions := fixture.releaseService.archiveOptions[0]
	require.Equal(testInstance, testArchiveRepositoryConstant, archiveOptions.ArchiveRepository)
	require.Equal(testInstance, testArchiveTokenConstant, archiveOptions.Token)
	require.Equal(testInstance, testVersionConstant, archiveOptions.TagName)
	require.Equal(testInstance, testArchivePathConstant, archiveOptions.NotesFilePath)

	require.Len(testInstance, fixture.releaseService.pruneOptions, 1)
	require.Equal(testInstance, pipeline.NightlyReleaseTag, fixture.releaseService.pruneOptions[0].TagName)

	require.Len(testInstance, fixture.releaseService.publishOptions, 1)
	publishOptions := fixture.releaseService.publishOptions[0]
	require.Equal(testInstance, pipeline.NightlyReleaseTag, publishOptions.TagName)
	require.True(testInstance, publishOptions.Prerelease)
	require.Equal(testInstance, testPrereleasePathConstant, publishOptions.NotesFilePath)
}

func TestExecuteNightlyWithoutArchiveConfigurationSkipsArchive(testInstance *testing.T) {
	fixture := newPipelineFixture()
	inputs := nightlyInputs()
	inputs.ArchiveRepository = ""

	_, executionError := fixture.executor(testInstance).Execute(context.Background(), inputs, pipeline.RuntimeOptions{})
	require.NoError(testInstance, executionError)
	require.Empty(testInstance, fixture.releaseService.archiveOptions)
	require.Len(testInstance, fixture.releaseService.pruneOptions, 1)
}

func TestExecuteNightlyWithoutArchiveTokenSkipsArchive(testInstance *testing.T) {
	fixture := newPipelineFixture()
	inputs := nightlyInputs()
	inputs.ArchiveToken = ""

	_, executionError := fixture.executor(testInstance).Execute(context.Background(), inputs, pipeline.RuntimeOptions{})
	require.NoError(testInstance, executionError)
	require.Empty(testInstance, fixture.releaseService.archiveOptions)
	require.Len(testInstance, fixture.releaseService.pruneOptions, 1)
	require.Len(testInstance, fixture.releaseService.publishOptions, 1)
}

func TestExecuteStableReleaseRefusesExistingTag(testInstance *testing.T) {
	fixture := newPipelineFixture()
	fixture.inspector.tagExists = true

	_, executionError := fixture.executor(testInstance).Execute(context.Background(), stableInputs(), pipeline.RuntimeOptions{})
	require.Error(testInstance, executionError)
	require.Contains(testInstance, executionError.Error(), "already exists")
	require.Empty(testInstance, fixture.releaseService.publishOptions)
}

func TestExecuteResolvesRepositoryFromOrigin(testInstance *testing.T) {
	fixture := newPipelineFixture()
	fixture.inspector.originRemote = gitrepo.RemoteURL{Host: "github.com", Owner: "acme", Repository: "widget"}

	inputs := stableInputs()
	inputs.Repository = ""

	state, executionError := fixture.executor(testInstance).Execute(context.Background(), inputs, pipeline.RuntimeOptions{})
	require.NoError(testInstance, executionError)
	require.Equal(testInstance, testRepositoryConstant, state.Repository)
}

func TestExecutePropagatesDryRun(testInstance *testing.T) {
	fixture := newPipelineFixture()

	_, executionError := fixture.executor(testInstance).Execute(context.Background(), nightlyInputs(), pipeline.RuntimeOptions{DryRun: true})
	require.NoError(testInstance, executionError)
	require.True(testInstance, fixture.releaseService.publishOptions[0].DryRun)
	require.True(testInstance, fixture.releaseService.pruneOptions[0].DryRun)
	require.True(testInstance, fixture.releaseService.archiveOptions[0].DryRun)
}

func TestExecuteValidation(testInstance *testing.T) {
	testInstance.Run("missing_dependencies", func(testInstance *testing.T) {
		executor := pipeline.NewExecutor(nil, pipeline.Dependencies{})
		_, executionError := executor.Execute(context.Background(), stableInputs(), pipeline.RuntimeOptions{})
		require.Error(testInstance, executionError)
	})

	testInstance.Run("missing_version", func(testInstance *testing.T) {
		fixture := newPipelineFixture()
		inputs := stableInputs()
		inputs.Version = " "
		_, executionError := fixture.executor(testInstance).Execute(context.Background(), inputs, pipeline.RuntimeOptions{})
		require.Error(testInstance, executionError)
	})

	testInstance.Run("missing_artifacts_directory", func(testInstance *testing.T) {
		fixture := newPipelineFixture()
		inputs := stableInputs()
		inputs.ArtifactsDirectory = ""
		_, executionError := fixture.executor(testInstance).Execute(context.Background(), inputs, pipeline.RuntimeOptions{})
		require.Error(testInstance, executionError)
	})
}

func TestExecuteWrapsOperationFailures(testInstance *testing.T) {
	fixture := newPipelineFixture()
	fixture.releaseService.publishError = errors.New("publish rejected")

	_, executionError := fixture.executor(testInstance).Execute(context.Background(), stableInputs(), pipeline.RuntimeOptions{})
	require.Error(testInstance, executionError)
	require.Contains(testInstance, executionError.Error(), string(pipeline.OperationTypePublishRelease))
	require.Contains(testInstance, executionError.Error(), "publish rejected")
}
