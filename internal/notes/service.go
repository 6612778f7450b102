package notes

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/releasekit/internal/execshell"
)

const (
	describeSubcommandConstant             = "describe"
	logSubcommandConstant                  = "log"
	tagsFlagConstant                       = "--tags"
	abbrevZeroFlagConstant                 = "--abbrev=0"
	noMergesFlagConstant                   = "--no-merges"
	shortDateFlagConstant                  = "--date=short"
	logFormatFlagConstant                  = "--pretty=format:- %s (%h)"
	commitRangeTemplateConstant            = "%s..HEAD"
	releaseNotesFileNameConstant           = "release_notes.md"
	prereleaseNotesFileNameConstant        = "prerelease_notes.md"
	archiveNotesFileNameConstant           = "archive_notes.md"
	notesFilePermissionsConstant           = 0o644
	notesDirectoryPermissionsConstant      = 0o755
	executorNotConfiguredMessageConstant   = "notes git executor not configured"
	versionRequiredMessageConstant         = "release version must be provided"
	outputDirectoryRequiredMessageConstant = "notes output directory must be provided"
	historyCollectionErrorTemplateConstant = "unable to collect commit history: %w"
	notesWriteErrorTemplateConstant        = "unable to write %s: %w"
	directoryCreateErrorTemplateConstant   = "unable to create notes directory %s: %w"
	emptyHistoryPlaceholderConstant        = "- No changes recorded since the previous release."
	notesHeaderTemplateConstant            = "# Release %s\n\n"
	notesCommitLineTemplateConstant        = "Built from commit `%s`.\n\n"
	prereleaseNoticeConstant               = "This is an automated nightly build and may be unstable.\n\n"
	archiveNoticeTemplateConstant          = "Archived copy of release %s.\n\n"
	previousTagLogMessageConstant          = "Resolved previous release tag"
	fullHistoryLogMessageConstant          = "No previous tag found, collecting full history"
	previousTagLogFieldConstant            = "previous_tag"
	commitCountLogFieldConstant            = "commit_count"
)

// GitCommandExecutor is the minimal interface required from execshell.ShellExecutor.
type GitCommandExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// GenerationRequest describes the inputs for a notes generation run.
type GenerationRequest struct {
	RepositoryPath  string
	Version         string
	TargetCommitish string
	OutputDirectory string
}

// GeneratedNotes lists the notes files written by Generate.
type GeneratedNotes struct {
	ReleaseNotesPath    string
	PrereleaseNotesPath string
	ArchiveNotesPath    string
	CommitCount         int
	PreviousTag         string
}

var (
	// ErrExecutorNotConfigured indicates the service was constructed without a git executor.
	ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)
	// ErrVersionRequired indicates the generation request omitted the release version.
	ErrVersionRequired = errors.New(versionRequiredMessageConstant)
	// ErrOutputDirectoryRequired indicates the generation request omitted the output directory.
	ErrOutputDirectoryRequired = errors.New(outputDirectoryRequiredMessageConstant)
)

// Service renders release, prerelease, and archive notes from repository history.
type Service struct {
	logger   *zap.Logger
	executor GitCommandExecutor
}

// NewService constructs a notes Service.
func NewService(logger *zap.Logger, executor GitCommandExecutor) (*Service, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{logger: logger, executor: executor}, nil
}

// Generate collects commit history since the previous tag and writes the
// release, prerelease, and archive notes files into the output directory.
func (service *Service) Generate(executionContext context.Context, request GenerationRequest) (GeneratedNotes, error) {
	trimmedVersion := strings.TrimSpace(request.Version)
	if len(trimmedVersion) == 0 {
		return GeneratedNotes{}, ErrVersionRequired
	}

	trimmedOutputDirectory := strings.TrimSpace(request.OutputDirectory)
	if len(trimmedOutputDirectory) == 0 {
		return GeneratedNotes{}, ErrOutputDirectoryRequired
	}

	previousTag := service.resolvePreviousTag(executionContext, request.RepositoryPath)
	historyLines, historyError := service.collectHistory(executionContext, request.RepositoryPath, previousTag)
	if historyError != nil {
		return GeneratedNotes{}, historyError
	}

	directoryError := os.MkdirAll(trimmedOutputDirectory, notesDirectoryPermissionsConstant)
	if directoryError != nil {
		return GeneratedNotes{}, fmt.Errorf(directoryCreateErrorTemplateConstant, trimmedOutputDirectory, directoryError)
	}

	changeSection := strings.Join(historyLines, "\n")
	if len(historyLines) == 0 {
		changeSection = emptyHistoryPlaceholderConstant
	}

	generatedNotes := GeneratedNotes{
		ReleaseNotesPath:    filepath.Join(trimmedOutputDirectory, releaseNotesFileNameConstant),
		PrereleaseNotesPath: filepath.Join(trimmedOutputDirectory, prereleaseNotesFileNameConstant),
		ArchiveNotesPath:    filepath.Join(trimmedOutputDirectory, archiveNotesFileNameConstant),
		CommitCount:         len(historyLines),
		PreviousTag:         previousTag,
	}

	releaseBody := service.renderNotes(trimmedVersion, request.TargetCommitish, changeSection, "")
	prereleaseBody := service.renderNotes(trimmedVersion, request.TargetCommitish, changeSection, prereleaseNoticeConstant)
	archiveBody := service.renderNotes(trimmedVersion, request.TargetCommitish, changeSection, fmt.Sprintf(archiveNoticeTemplateConstant, trimmedVersion))

	notesFiles := []struct {
		path string
		body string
	}{
		{path: generatedNotes.ReleaseNotesPath, body: releaseBody},
		{path: generatedNotes.PrereleaseNotesPath, body: prereleaseBody},
		{path: generatedNotes.ArchiveNotesPath, body: archiveBody},
	}

	for _, notesFile := range notesFiles {
		writeError := os.WriteFile(notesFile.path, []byte(notesFile.body), notesFilePermissionsConstant)
		if writeError != nil {
			return GeneratedNotes{}, fmt.Errorf(notesWriteErrorTemplateConstant, notesFile.path, writeError)
		}
	}

	service.logger.Debug(previousTagLogMessageConstant,
		zap.String(previousTagLogFieldConstant, previousTag),
		zap.Int(commitCountLogFieldConstant, len(historyLines)),
	)

	return generatedNotes, nil
}

// resolvePreviousTag locates the most recent tag reachable from HEAD.
// A describe failure means no tag exists yet and the full history is used.
func (service *Service) resolvePreviousTag(executionContext context.Context, repositoryPath string) string {
	commandDetails := execshell.CommandDetails{
		Arguments:        []string{describeSubcommandConstant, tagsFlagConstant, abbrevZeroFlagConstant},
		WorkingDirectory: repositoryPath,
	}

	executionResult, executionError := service.executor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		service.logger.Debug(fullHistoryLogMessageConstant)
		return ""
	}

	return strings.TrimSpace(executionResult.StandardOutput)
}

func (service *Service) collectHistory(executionContext context.Context, repositoryPath string, previousTag string) ([]string, error) {
	commandArguments := []string{logSubcommandConstant, noMergesFlagConstant, shortDateFlagConstant, logFormatFlagConstant}
	if len(previousTag) > 0 {
		commandArguments = append(commandArguments, fmt.Sprintf(commitRangeTemplateConstant, previousTag))
	}

	commandDetails := execshell.CommandDetails{
		Arguments:        commandArguments,
		WorkingDirectory: repositoryPath,
	}

	executionResult, executionError := service.executor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		return nil, fmt.Errorf(historyCollectionErrorTemplateConstant, executionError)
	}

	historyLines := make([]string, 0)
	for _, rawLine := range strings.Split(executionResult.StandardOutput, "\n") {
		trimmedLine := strings.TrimSpace(rawLine)
		if len(trimmedLine) > 0 {
			historyLines = append(historyLines, trimmedLine)
		}
	}

	return historyLines, nil
}

func (service *Service) renderNotes(version string, targetCommitish string, changeSection string, notice string) string {
	var notesBuilder strings.Builder
	notesBuilder.WriteString(fmt.Sprintf(notesHeaderTemplateConstant, version))
	notesBuilder.WriteString(notice)
	if trimmedTarget := strings.TrimSpace(targetCommitish); len(trimmedTarget) > 0 {
		notesBuilder.WriteString(fmt.Sprintf(notesCommitLineTemplateConstant, trimmedTarget))
	}
	notesBuilder.WriteString(changeSection)
	notesBuilder.WriteString("\n")
	return notesBuilder.String()
}
