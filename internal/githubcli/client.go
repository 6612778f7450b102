package githubcli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/releasekit/internal/execshell"
)

const (
	repoSubcommandConstant                  = "repo"
	releaseSubcommandConstant               = "release"
	createSubcommandConstant                = "create"
	deleteSubcommandConstant                = "delete"
	viewSubcommandConstant                  = "view"
	jsonFlagConstant                        = "--json"
	repoFlagConstant                        = "--repo"
	titleFlagConstant                       = "--title"
	notesFileFlagConstant                   = "--notes-file"
	targetFlagConstant                      = "--target"
	prereleaseFlagConstant                  = "--prerelease"
	latestDisabledFlagConstant              = "--latest=false"
	confirmFlagConstant                     = "--yes"
	cleanupTagFlagConstant                  = "--cleanup-tag"
	repositoryFieldNameConstant             = "repository"
	tagFieldNameConstant                    = "tag"
	notesFileFieldNameConstant              = "notes_file"
	requiredValueMessageConstant            = "value required"
	executorNotConfiguredMessageConstant    = "github cli executor not configured"
	releaseViewJSONFieldsConstant           = "tagName,name,isPrerelease,targetCommitish"
	repoViewJSONFieldsConstant              = "defaultBranchRef,nameWithOwner,description"
	operationErrorMessageTemplateConstant   = "%s operation failed"
	operationErrorWithCauseTemplateConstant = "%s operation failed: %s"
	responseDecodingErrorTemplateConstant   = "%s response decoding failed: %s"
	invalidInputErrorTemplateConstant       = "%s: %s"
	repositoryMetadataOperationNameConstant = OperationName("ResolveRepoMetadata")
	createReleaseOperationNameConstant      = OperationName("CreateRelease")
	deleteReleaseOperationNameConstant      = OperationName("DeleteRelease")
	viewReleaseOperationNameConstant        = OperationName("ViewRelease")
)

// OperationName describes a named GitHub CLI workflow supported by the client.
type OperationName string

// RepositoryMetadata contains key details resolved from GitHub.
type RepositoryMetadata struct {
	NameWithOwner string
	Description   string
	DefaultBranch string
}

// ReleaseDetails describes an existing GitHub release.
type ReleaseDetails struct {
	TagName         string
	Name            string
	IsPrerelease    bool
	TargetCommitish string
}

// ReleaseCreateOptions configures CreateRelease invocations.
type ReleaseCreateOptions struct {
	TagName         string
	Title           string
	NotesFilePath   string
	TargetCommitish string
	Prerelease      bool
	AssetPaths      []string
	Environment     map[string]string
}

// ReleaseDeleteOptions configures DeleteRelease invocations.
type ReleaseDeleteOptions struct {
	TagName    string
	CleanupTag bool
}

// GitHubCommandExecutor is the minimal interface required from execshell.ShellExecutor.
type GitHubCommandExecutor interface {
	ExecuteGitHubCLI(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Client coordinates GitHub CLI invocations through execshell.
type Client struct {
	executor GitHubCommandExecutor
}

var (
	// ErrExecutorNotConfigured indicates the client was constructed without an executor.
	ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)
)

// InvalidInputError surfaces validation issues for operation inputs.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// OperationError wraps execution issues for GitHub CLI operations.
type OperationError struct {
	Operation OperationName
	Cause     error
}

// Error describes the operation failure.
func (operationError OperationError) Error() string {
	if operationError.Cause == nil {
		return fmt.Sprintf(operationErrorMessageTemplateConstant, operationError.Operation)
	}
	return fmt.Sprintf(operationErrorWithCauseTemplateConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// ResponseDecodingError indicates JSON decoding failures.
type ResponseDecodingError struct {
	Operation OperationName
	Cause     error
}

// Error describes the decoding failure.
func (decodingError ResponseDecodingError) Error() string {
	return fmt.Sprintf(responseDecodingErrorTemplateConstant, decodingError.Operation, decodingError.Cause)
}

// Unwrap exposes the underlying JSON error.
func (decodingError ResponseDecodingError) Unwrap() error {
	return decodingError.Cause
}

// NewClient constructs a GitHub CLI client.
func NewClient(executor GitHubCommandExecutor) (*Client, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &Client{executor: executor}, nil
}

// ResolveRepoMetadata retrieves canonical metadata for a repository using gh repo view.
func (client *Client) ResolveRepoMetadata(executionContext context.Context, repository string) (RepositoryMetadata, error) {
	repositoryIdentifier := strings.TrimSpace(repository)
	if len(repositoryIdentifier) == 0 {
		return RepositoryMetadata{}, InvalidInputError{FieldName: repositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}

	commandDetails := execshell.CommandDetails{
		Arguments: []string{
			repoSubcommandConstant,
			viewSubcommandConstant,
			repositoryIdentifier,
			jsonFlagConstant,
			repoViewJSONFieldsConstant,
		},
	}

	executionResult, executionError := client.executor.ExecuteGitHubCLI(executionContext, commandDetails)
	if executionError != nil {
		return RepositoryMetadata{}, OperationError{Operation: repositoryMetadataOperationNameConstant, Cause: executionError}
	}

	var response struct {
		NameWithOwner    string `json:"nameWithOwner"`
		Description      string `json:"description"`
		DefaultBranchRef struct {
			Name string `json:"name"`
		} `json:"defaultBranchRef"`
	}

	decodingError := json.Unmarshal([]byte(executionResult.StandardOutput), &response)
	if decodingError != nil {
		return RepositoryMetadata{}, ResponseDecodingError{Operation: repositoryMetadataOperationNameConstant, Cause: decodingError}
	}

	return RepositoryMetadata{
		NameWithOwner: response.NameWithOwner,
		Description:   response.Description,
		DefaultBranch: response.DefaultBranchRef.Name,
	}, nil
}

// CreateRelease publishes a release with gh release create, uploading the provided assets.
func (client *Client) CreateRelease(executionContext context.Context, repository string, options ReleaseCreateOptions) error {
	repositoryIdentifier := strings.TrimSpace(repository)
	if len(repositoryIdentifier) == 0 {
		return InvalidInputError{FieldName: repositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}

	tagName := strings.TrimSpace(options.TagName)
	if len(tagName) == 0 {
		return InvalidInputError{FieldName: tagFieldNameConstant, Message: requiredValueMessageConstant}
	}

	if len(strings.TrimSpace(options.NotesFilePath)) == 0 {
		return InvalidInputError{FieldName: notesFileFieldNameConstant, Message: requiredValueMessageConstant}
	}

	commandArguments := []string{
		releaseSubcommandConstant,
		createSubcommandConstant,
		tagName,
		repoFlagConstant,
		repositoryIdentifier,
		notesFileFlagConstant,
		options.NotesFilePath,
	}
	if len(strings.TrimSpace(options.Title)) > 0 {
		commandArguments = append(commandArguments, titleFlagConstant, options.Title)
	}
	if len(strings.TrimSpace(options.TargetCommitish)) > 0 {
		commandArguments = append(commandArguments, targetFlagConstant, options.TargetCommitish)
	}
	// Prereleases never take over the "latest" marker of the repository.
	if options.Prerelease {
		commandArguments = append(commandArguments, prereleaseFlagConstant, latestDisabledFlagConstant)
	}
	commandArguments = append(commandArguments, options.AssetPaths...)

	commandDetails := execshell.CommandDetails{
		Arguments:            commandArguments,
		EnvironmentVariables: options.Environment,
	}

	_, executionError := client.executor.ExecuteGitHubCLI(executionContext, commandDetails)
	if executionError != nil {
		return OperationError{Operation: createReleaseOperationNameConstant, Cause: executionError}
	}

	return nil
}

// DeleteRelease removes a release with gh release delete.
func (client *Client) DeleteRelease(executionContext context.Context, repository string, options ReleaseDeleteOptions) error {
	repositoryIdentifier := strings.TrimSpace(repository)
	if len(repositoryIdentifier) == 0 {
		return InvalidInputError{FieldName: repositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}

	tagName := strings.TrimSpace(options.TagName)
	if len(tagName) == 0 {
		return InvalidInputError{FieldName: tagFieldNameConstant, Message: requiredValueMessageConstant}
	}

	commandArguments := []string{
		releaseSubcommandConstant,
		deleteSubcommandConstant,
		tagName,
		repoFlagConstant,
		repositoryIdentifier,
		confirmFlagConstant,
	}
	if options.CleanupTag {
		commandArguments = append(commandArguments, cleanupTagFlagConstant)
	}

	commandDetails := execshell.CommandDetails{Arguments: commandArguments}

	_, executionError := client.executor.ExecuteGitHubCLI(executionContext, commandDetails)
	if executionError != nil {
		return OperationError{Operation: deleteReleaseOperationNameConstant, Cause: executionError}
	}

	return nil
}

// ViewRelease retrieves details of an existing release with gh release view.
func (client *Client) ViewRelease(executionContext context.Context, repository string, tagName string) (ReleaseDetails, error) {
	repositoryIdentifier := strings.TrimSpace(repository)
	if len(repositoryIdentifier) == 0 {
		return ReleaseDetails{}, InvalidInputError{FieldName: repositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}

	trimmedTagName := strings.TrimSpace(tagName)
	if len(trimmedTagName) == 0 {
		return ReleaseDetails{}, InvalidInputError{FieldName: tagFieldNameConstant, Message: requiredValueMessageConstant}
	}

	commandDetails := execshell.CommandDetails{
		Arguments: []string{
			releaseSubcommandConstant,
			viewSubcommandConstant,
			trimmedTagName,
			repoFlagConstant,
			repositoryIdentifier,
			jsonFlagConstant,
			releaseViewJSONFieldsConstant,
		},
	}

	executionResult, executionError := client.executor.ExecuteGitHubCLI(executionContext, commandDetails)
	if executionError != nil {
		return ReleaseDetails{}, OperationError{Operation: viewReleaseOperationNameConstant, Cause: executionError}
	}

	var response struct {
		TagName         string `json:"tagName"`
		Name            string `json:"name"`
		IsPrerelease    bool   `json:"isPrerelease"`
		TargetCommitish string `json:"targetCommitish"`
	}

	decodingError := json.Unmarshal([]byte(executionResult.StandardOutput), &response)
	if decodingError != nil {
		return ReleaseDetails{}, ResponseDecodingError{Operation: viewReleaseOperationNameConstant, Cause: decodingError}
	}

	return ReleaseDetails{
		TagName:         response.TagName,
		Name:            response.Name,
		IsPrerelease:    response.IsPrerelease,
		TargetCommitish: response.TargetCommitish,
	}, nil
}
