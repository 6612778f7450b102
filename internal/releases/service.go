package releases

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/releasekit/internal/execshell"
	"github.com/temirov/releasekit/internal/githubcli"
)

const (
	pushSubcommandConstant                   = "push"
	defaultRemoteNameConstant                = "origin"
	tagDeletionRefspecTemplateConstant       = ":refs/tags/%s"
	archiveTokenEnvironmentVariableConstant  = "GH_TOKEN"
	gitExecutorMissingMessageConstant        = "releases git executor not configured"
	githubClientMissingMessageConstant       = "releases github client not configured"
	repositoryRequiredMessageConstant        = "release repository must be provided"
	tagRequiredMessageConstant               = "release tag must be provided"
	archiveRepositoryRequiredMessageConstant = "archive repository must be provided"
	archiveTokenRequiredMessageConstant      = "archive token must be provided"
	notesFileMissingTemplateConstant         = "release notes file %s is not readable: %w"
	publishFailureTemplateConstant           = "unable to publish release %s to %s: %w"
	dryRunSkipLogMessageConstant             = "Dry-run enabled, skipping release mutation"
	previousReleaseMissingLogMessageConstant = "Previous release not found, skipping release deletion"
	releaseDeletionFailedLogMessageConstant  = "Previous release deletion failed, continuing"
	tagDeletionFailedLogMessageConstant      = "Previous tag deletion failed, continuing"
	publishedReleaseLogMessageConstant       = "Published release"
	archivedReleaseLogMessageConstant        = "Archived release"
	repositoryLogFieldConstant               = "repository"
	tagLogFieldConstant                      = "tag"
	errorLogFieldConstant                    = "error"
)

// GitHubReleaseClient is the subset of githubcli.Client used by the service.
type GitHubReleaseClient interface {
	CreateRelease(executionContext context.Context, repository string, options githubcli.ReleaseCreateOptions) error
	DeleteRelease(executionContext context.Context, repository string, options githubcli.ReleaseDeleteOptions) error
	ViewRelease(executionContext context.Context, repository string, tagName string) (githubcli.ReleaseDetails, error)
}

// GitExecutor is the subset of execshell.ShellExecutor used by the service.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// ServiceDependencies wires the collaborators required by the release service.
type ServiceDependencies struct {
	Logger       *zap.Logger
	GitExecutor  GitExecutor
	GitHubClient GitHubReleaseClient
}

// Service publishes, prunes, and archives GitHub releases.
type Service struct {
	logger       *zap.Logger
	gitExecutor  GitExecutor
	githubClient GitHubReleaseClient
}

var (
	// ErrGitExecutorNotConfigured indicates the service was constructed without a git executor.
	ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)
	// ErrGitHubClientNotConfigured indicates the service was constructed without a GitHub client.
	ErrGitHubClientNotConfigured = errors.New(githubClientMissingMessageConstant)
	// ErrRepositoryRequired indicates an operation was invoked without a repository.
	ErrRepositoryRequired = errors.New(repositoryRequiredMessageConstant)
	// ErrTagRequired indicates an operation was invoked without a tag name.
	ErrTagRequired = errors.New(tagRequiredMessageConstant)
	// ErrArchiveRepositoryRequired indicates archiving was requested without a destination repository.
	ErrArchiveRepositoryRequired = errors.New(archiveRepositoryRequiredMessageConstant)
	// ErrArchiveTokenRequired indicates archiving was requested without credentials for the destination.
	ErrArchiveTokenRequired = errors.New(archiveTokenRequiredMessageConstant)
)

// PublishOptions configures Publish invocations.
type PublishOptions struct {
	Repository      string
	TagName         string
	Title           string
	NotesFilePath   string
	TargetCommitish string
	Prerelease      bool
	AssetPaths      []string
	DryRun          bool
}

// PruneOptions configures Prune invocations.
type PruneOptions struct {
	Repository     string
	RepositoryPath string
	TagName        string
	RemoteName     string
	DryRun         bool
}

// PruneResult reports which best-effort deletions succeeded.
type PruneResult struct {
	ReleaseDeleted bool
	TagDeleted     bool
}

// ArchiveOptions configures Archive invocations.
type ArchiveOptions struct {
	ArchiveRepository string
	Token             string
	TagName           string
	Title             string
	NotesFilePath     string
	AssetPaths        []string
	DryRun            bool
}

// NewService constructs a release Service.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.GitExecutor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	if dependencies.GitHubClient == nil {
		return nil, ErrGitHubClientNotConfigured
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{logger: logger, gitExecutor: dependencies.GitExecutor, githubClient: dependencies.GitHubClient}, nil
}

// Publish creates a GitHub release with the provided notes and assets.
func (service *Service) Publish(executionContext context.Context, options PublishOptions) error {
	trimmedRepository := strings.TrimSpace(options.Repository)
	if len(trimmedRepository) == 0 {
		return ErrRepositoryRequired
	}

	trimmedTagName := strings.TrimSpace(options.TagName)
	if len(trimmedTagName) == 0 {
		return ErrTagRequired
	}

	notesValidationError := validateNotesFile(options.NotesFilePath)
	if notesValidationError != nil {
		return notesValidationError
	}

	if options.DryRun {
		service.logger.Info(dryRunSkipLogMessageConstant,
			zap.String(repositoryLogFieldConstant, trimmedRepository),
			zap.String(tagLogFieldConstant, trimmedTagName),
		)
		return nil
	}

	creationError := service.githubClient.CreateRelease(executionContext, trimmedRepository, githubcli.ReleaseCreateOptions{
		TagName:         trimmedTagName,
		Title:           options.Title,
		NotesFilePath:   options.NotesFilePath,
		TargetCommitish: options.TargetCommitish,
		Prerelease:      options.Prerelease,
		AssetPaths:      options.AssetPaths,
	})
	if creationError != nil {
		return fmt.Errorf(publishFailureTemplateConstant, trimmedTagName, trimmedRepository, creationError)
	}

	service.logger.Info(publishedReleaseLogMessageConstant,
		zap.String(repositoryLogFieldConstant, trimmedRepository),
		zap.String(tagLogFieldConstant, trimmedTagName),
	)

	return nil
}

// Prune removes the previous release and its tag ahead of a replacement
// publish. The release is looked up first so a missing release skips the gh
// deletion entirely. Both deletions are best-effort: a missing release or tag
// is not an error, so failures are logged and the run continues.
func (service *Service) Prune(executionContext context.Context, options PruneOptions) (PruneResult, error) {
	trimmedRepository := strings.TrimSpace(options.Repository)
	if len(trimmedRepository) == 0 {
		return PruneResult{}, ErrRepositoryRequired
	}

	trimmedTagName := strings.TrimSpace(options.TagName)
	if len(trimmedTagName) == 0 {
		return PruneResult{}, ErrTagRequired
	}

	if options.DryRun {
		service.logger.Info(dryRunSkipLogMessageConstant,
			zap.String(repositoryLogFieldConstant, trimmedRepository),
			zap.String(tagLogFieldConstant, trimmedTagName),
		)
		return PruneResult{}, nil
	}

	pruneResult := PruneResult{}

	_, releaseLookupError := service.githubClient.ViewRelease(executionContext, trimmedRepository, trimmedTagName)
	if releaseLookupError != nil {
		service.logger.Info(previousReleaseMissingLogMessageConstant,
			zap.String(repositoryLogFieldConstant, trimmedRepository),
			zap.String(tagLogFieldConstant, trimmedTagName),
		)
	} else {
		releaseDeletionError := service.githubClient.DeleteRelease(executionContext, trimmedRepository, githubcli.ReleaseDeleteOptions{TagName: trimmedTagName})
		if releaseDeletionError != nil {
			service.logger.Warn(releaseDeletionFailedLogMessageConstant,
				zap.String(repositoryLogFieldConstant, trimmedRepository),
				zap.String(tagLogFieldConstant, trimmedTagName),
				zap.Error(releaseDeletionError),
			)
		} else {
			pruneResult.ReleaseDeleted = true
		}
	}

	remoteName := strings.TrimSpace(options.RemoteName)
	if len(remoteName) == 0 {
		remoteName = defaultRemoteNameConstant
	}

	tagDeletionDetails := execshell.CommandDetails{
		Arguments:        []string{pushSubcommandConstant, remoteName, fmt.Sprintf(tagDeletionRefspecTemplateConstant, trimmedTagName)},
		WorkingDirectory: options.RepositoryPath,
	}

	_, tagDeletionError := service.gitExecutor.ExecuteGit(executionContext, tagDeletionDetails)
	if tagDeletionError != nil {
		service.logger.Warn(tagDeletionFailedLogMessageConstant,
			zap.String(tagLogFieldConstant, trimmedTagName),
			zap.Error(tagDeletionError),
		)
	} else {
		pruneResult.TagDeleted = true
	}

	return pruneResult, nil
}

// Archive republishes the release into the archive repository using the
// dedicated archive credentials.
func (service *Service) Archive(executionContext context.Context, options ArchiveOptions) error {
	trimmedArchiveRepository := strings.TrimSpace(options.ArchiveRepository)
	if len(trimmedArchiveRepository) == 0 {
		return ErrArchiveRepositoryRequired
	}

	trimmedToken := strings.TrimSpace(options.Token)
	if len(trimmedToken) == 0 {
		return ErrArchiveTokenRequired
	}

	trimmedTagName := strings.TrimSpace(options.TagName)
	if len(trimmedTagName) == 0 {
		return ErrTagRequired
	}

	notesValidationError := validateNotesFile(options.NotesFilePath)
	if notesValidationError != nil {
		return notesValidationError
	}

	if options.DryRun {
		service.logger.Info(dryRunSkipLogMessageConstant,
			zap.String(repositoryLogFieldConstant, trimmedArchiveRepository),
			zap.String(tagLogFieldConstant, trimmedTagName),
		)
		return nil
	}

	creationError := service.githubClient.CreateRelease(executionContext, trimmedArchiveRepository, githubcli.ReleaseCreateOptions{
		TagName:       trimmedTagName,
		Title:         options.Title,
		NotesFilePath: options.NotesFilePath,
		AssetPaths:    options.AssetPaths,
		Environment:   map[string]string{archiveTokenEnvironmentVariableConstant: trimmedToken},
	})
	if creationError != nil {
		return fmt.Errorf(publishFailureTemplateConstant, trimmedTagName, trimmedArchiveRepository, creationError)
	}

	service.logger.Info(archivedReleaseLogMessageConstant,
		zap.String(repositoryLogFieldConstant, trimmedArchiveRepository),
		zap.String(tagLogFieldConstant, trimmedTagName),
	)

	return nil
}

func validateNotesFile(notesFilePath string) error {
	trimmedNotesFilePath := strings.TrimSpace(notesFilePath)
	if len(trimmedNotesFilePath) == 0 {
		return fmt.Errorf(notesFileMissingTemplateConstant, notesFilePath, os.ErrNotExist)
	}

	_, statError := os.Stat(trimmedNotesFilePath)
	if statError != nil {
		return fmt.Errorf(notesFileMissingTemplateConstant, trimmedNotesFilePath, statError)
	}

	return nil
}
