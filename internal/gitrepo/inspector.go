package gitrepo

import (
	"errors"
	"fmt"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

const (
	originRemoteNameConstant                 = "origin"
	repositoryPathRequiredMessageConstant    = "repository path must be provided"
	repositoryOpenErrorTemplateConstant      = "unable to open repository at %s: %w"
	commitishResolveErrorTemplateConstant    = "unable to resolve %s in %s: %w"
	headResolveErrorTemplateConstant         = "unable to resolve HEAD in %s: %w"
	remoteLookupErrorTemplateConstant        = "unable to read %s remote in %s: %w"
	remoteWithoutURLsMessageTemplateConstant = "remote %s in %s defines no URLs"
	tagLookupErrorTemplateConstant           = "unable to inspect tag %s in %s: %w"
)

// RepositoryInspector answers questions about local repositories using go-git.
type RepositoryInspector struct{}

// NewRepositoryInspector constructs a RepositoryInspector instance.
func NewRepositoryInspector() *RepositoryInspector {
	return &RepositoryInspector{}
}

// ResolveCommit resolves the provided commitish to a full commit SHA.
// An empty commitish resolves to the repository HEAD.
func (inspector *RepositoryInspector) ResolveCommit(repositoryPath string, commitish string) (string, error) {
	repository, openError := inspector.openRepository(repositoryPath)
	if openError != nil {
		return "", openError
	}

	trimmedCommitish := strings.TrimSpace(commitish)
	if len(trimmedCommitish) == 0 {
		headReference, headError := repository.Head()
		if headError != nil {
			return "", fmt.Errorf(headResolveErrorTemplateConstant, repositoryPath, headError)
		}
		return headReference.Hash().String(), nil
	}

	resolvedHash, resolveError := repository.ResolveRevision(plumbing.Revision(trimmedCommitish))
	if resolveError != nil {
		return "", fmt.Errorf(commitishResolveErrorTemplateConstant, trimmedCommitish, repositoryPath, resolveError)
	}

	return resolvedHash.String(), nil
}

// TagExists reports whether the named tag is present in the repository.
func (inspector *RepositoryInspector) TagExists(repositoryPath string, tagName string) (bool, error) {
	repository, openError := inspector.openRepository(repositoryPath)
	if openError != nil {
		return false, openError
	}

	_, tagError := repository.Tag(strings.TrimSpace(tagName))
	if tagError == nil {
		return true, nil
	}
	if errors.Is(tagError, gogit.ErrTagNotFound) {
		return false, nil
	}
	return false, fmt.Errorf(tagLookupErrorTemplateConstant, tagName, repositoryPath, tagError)
}

// OriginRepository derives the owner/repository identity from the origin remote.
func (inspector *RepositoryInspector) OriginRepository(repositoryPath string) (RemoteURL, error) {
	repository, openError := inspector.openRepository(repositoryPath)
	if openError != nil {
		return RemoteURL{}, openError
	}

	remote, remoteError := repository.Remote(originRemoteNameConstant)
	if remoteError != nil {
		return RemoteURL{}, fmt.Errorf(remoteLookupErrorTemplateConstant, originRemoteNameConstant, repositoryPath, remoteError)
	}

	remoteURLs := remote.Config().URLs
	if len(remoteURLs) == 0 {
		return RemoteURL{}, fmt.Errorf(remoteWithoutURLsMessageTemplateConstant, originRemoteNameConstant, repositoryPath)
	}

	return ParseRemoteURL(remoteURLs[0])
}

func (inspector *RepositoryInspector) openRepository(repositoryPath string) (*gogit.Repository, error) {
	trimmedPath := strings.TrimSpace(repositoryPath)
	if len(trimmedPath) == 0 {
		return nil, errors.New(repositoryPathRequiredMessageConstant)
	}

	repository, openError := gogit.PlainOpenWithOptions(trimmedPath, &gogit.PlainOpenOptions{DetectDotGit: true})
	if openError != nil {
		return nil, fmt.Errorf(repositoryOpenErrorTemplateConstant, trimmedPath, openError)
	}

	return repository, nil
}
