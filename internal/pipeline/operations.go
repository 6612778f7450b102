package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/releasekit/internal/artifacts"
	"github.com/temirov/releasekit/internal/notes"
	"github.com/temirov/releasekit/internal/releases"
)

const (
	// NightlyReleaseTag is the rolling tag used for nightly builds.
	NightlyReleaseTag = "nightly"

	versionRequiredMessageConstant          = "release version must be provided"
	artifactsDirectoryRequiredMessage       = "artifacts directory must be provided"
	repositoryUnresolvedMessageConstant     = "release repository could not be determined"
	commitResolutionErrorTemplateConstant   = "unable to resolve target commitish: %w"
	repositoryDetectionErrorTemplate        = "unable to detect repository from origin remote: %w"
	tagInspectionErrorTemplateConstant      = "unable to inspect release tag %s: %w"
	stableTagExistsErrorTemplateConstant    = "release tag %s already exists, refusing to publish a duplicate"
	archiveSkippedLogMessageConstant        = "Archive repository not configured, skipping archive step"
	archiveTokenSkippedLogMessageConstant   = "Archive token not configured, skipping archive step"
	archiveStableSkippedLogMessageConstant  = "Stable release, skipping archive step"
	pruneStableSkippedLogMessageConstant    = "Stable release, skipping nightly prune"
	resolvedReleaseTargetLogMessageConstant = "Resolved release target"
	repositoryLogFieldConstant              = "repository"
	releaseTagLogFieldConstant              = "tag"
	commitLogFieldConstant                  = "commit"
)

type verifyRepositoryOperation struct{}

func (operation *verifyRepositoryOperation) Name() string {
	return string(OperationTypeVerifyRepository)
}

// Execute resolves the release repository, tag, and target commit before any
// mutation happens. Nightly builds always publish under the rolling tag.
func (operation *verifyRepositoryOperation) Execute(executionContext context.Context, environment *Environment, state *State) error {
	trimmedVersion := strings.TrimSpace(state.Inputs.Version)
	if len(trimmedVersion) == 0 {
		return errors.New(versionRequiredMessageConstant)
	}

	state.Repository = strings.TrimSpace(state.Inputs.Repository)
	if len(state.Repository) == 0 {
		originRemote, originError := environment.RepositoryInspector.OriginRepository(state.Inputs.RepositoryPath)
		if originError != nil {
			return fmt.Errorf(repositoryDetectionErrorTemplate, originError)
		}
		state.Repository = originRemote.OwnerAndRepository()
	}
	if len(state.Repository) == 0 {
		return errors.New(repositoryUnresolvedMessageConstant)
	}

	resolvedCommit, resolveError := environment.RepositoryInspector.ResolveCommit(state.Inputs.RepositoryPath, state.Inputs.TargetCommitish)
	if resolveError != nil {
		return fmt.Errorf(commitResolutionErrorTemplateConstant, resolveError)
	}
	state.ResolvedCommit = resolvedCommit

	state.ReleaseTag = trimmedVersion
	if state.Inputs.Nightly {
		state.ReleaseTag = NightlyReleaseTag
	}

	if !state.Inputs.Nightly {
		tagAlreadyExists, tagLookupError := environment.RepositoryInspector.TagExists(state.Inputs.RepositoryPath, state.ReleaseTag)
		if tagLookupError != nil {
			return fmt.Errorf(tagInspectionErrorTemplateConstant, state.ReleaseTag, tagLookupError)
		}
		if tagAlreadyExists {
			return fmt.Errorf(stableTagExistsErrorTemplateConstant, state.ReleaseTag)
		}
	}

	environment.Logger.Info(resolvedReleaseTargetLogMessageConstant,
		zap.String(repositoryLogFieldConstant, state.Repository),
		zap.String(releaseTagLogFieldConstant, state.ReleaseTag),
		zap.String(commitLogFieldConstant, state.ResolvedCommit),
	)

	return nil
}

type collectArtifactsOperation struct{}

func (operation *collectArtifactsOperation) Name() string {
	return string(OperationTypeCollectArtifacts)
}

func (operation *collectArtifactsOperation) Execute(executionContext context.Context, environment *Environment, state *State) error {
	trimmedDirectory := strings.TrimSpace(state.Inputs.ArtifactsDirectory)
	if len(trimmedDirectory) == 0 {
		return errors.New(artifactsDirectoryRequiredMessage)
	}

	collection, collectionError := environment.ArtifactsService.Collect(artifacts.CollectionOptions{
		Directory:  trimmedDirectory,
		AllowEmpty: state.Inputs.AllowEmptyArtifacts,
	})
	if collectionError != nil {
		return collectionError
	}

	state.Collection = collection
	return nil
}

type generateNotesOperation struct{}

func (operation *generateNotesOperation) Name() string {
	return string(OperationTypeGenerateNotes)
}

func (operation *generateNotesOperation) Execute(executionContext context.Context, environment *Environment, state *State) error {
	generatedNotes, generationError := environment.NotesService.Generate(executionContext, notes.GenerationRequest{
		RepositoryPath:  state.Inputs.RepositoryPath,
		Version:         state.Inputs.Version,
		TargetCommitish: state.ResolvedCommit,
		OutputDirectory: state.Inputs.NotesDirectory,
	})
	if generationError != nil {
		return generationError
	}

	state.Notes = generatedNotes
	return nil
}

type archiveReleaseOperation struct{}

func (operation *archiveReleaseOperation) Name() string {
	return string(OperationTypeArchiveRelease)
}

// Execute mirrors nightly builds into the archive repository. Stable releases
// and runs missing either the archive destination or its token skip the step.
func (operation *archiveReleaseOperation) Execute(executionContext context.Context, environment *Environment, state *State) error {
	if !state.Inputs.Nightly {
		environment.Logger.Info(archiveStableSkippedLogMessageConstant)
		return nil
	}

	if len(strings.TrimSpace(state.Inputs.ArchiveRepository)) == 0 {
		environment.Logger.Info(archiveSkippedLogMessageConstant)
		return nil
	}

	if len(strings.TrimSpace(state.Inputs.ArchiveToken)) == 0 {
		environment.Logger.Info(archiveTokenSkippedLogMessageConstant)
		return nil
	}

	return environment.ReleaseService.Archive(executionContext, releases.ArchiveOptions{
		ArchiveRepository: state.Inputs.ArchiveRepository,
		Token:             state.Inputs.ArchiveToken,
		TagName:           strings.TrimSpace(state.Inputs.Version),
		Title:             strings.TrimSpace(state.Inputs.Version),
		NotesFilePath:     state.Notes.ArchiveNotesPath,
		AssetPaths:        state.Collection.AllPaths(),
		DryRun:            environment.DryRun,
	})
}

type pruneNightlyOperation struct{}

func (operation *pruneNightlyOperation) Name() string {
	return string(OperationTypePruneNightly)
}

// Execute removes the previous nightly release and tag so the replacement can
// take the rolling tag. Stable releases keep their history and skip the step.
func (operation *pruneNightlyOperation) Execute(executionContext context.Context, environment *Environment, state *State) error {
	if !state.Inputs.Nightly {
		environment.Logger.Info(pruneStableSkippedLogMessageConstant)
		return nil
	}

	_, pruneError := environment.ReleaseService.Prune(executionContext, releases.PruneOptions{
		Repository:     state.Repository,
		RepositoryPath: state.Inputs.RepositoryPath,
		TagName:        NightlyReleaseTag,
		DryRun:         environment.DryRun,
	})
	return pruneError
}

type publishReleaseOperation struct{}

func (operation *publishReleaseOperation) Name() string {
	return string(OperationTypePublishRelease)
}

func (operation *publishReleaseOperation) Execute(executionContext context.Context, environment *Environment, state *State) error {
	notesFilePath := state.Notes.ReleaseNotesPath
	if state.Inputs.Nightly {
		notesFilePath = state.Notes.PrereleaseNotesPath
	}

	return environment.ReleaseService.Publish(executionContext, releases.PublishOptions{
		Repository:      state.Repository,
		TagName:         state.ReleaseTag,
		Title:           strings.TrimSpace(state.Inputs.Version),
		NotesFilePath:   notesFilePath,
		TargetCommitish: state.ResolvedCommit,
		Prerelease:      state.Inputs.Nightly,
		AssetPaths:      state.Collection.AllPaths(),
		DryRun:          environment.DryRun,
	})
}
