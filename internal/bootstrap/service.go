package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/repofleet/internal/manifest"
	"github.com/temirov/repofleet/internal/prompt"
	"github.com/temirov/repofleet/internal/remote"
)

const (
	defaultDecisionDeadlineConstant        = 10 * time.Second
	blockingDeadlineConstant               = time.Duration(0)
	repositoryRootQuestionConstant         = "Repository root location (for example ~/fleet): "
	organizationBaseURLQuestionConstant    = "Organization base URL: "
	accessSecretQuestionConstant           = "Access secret (personal access token): "
	restrictProjectsQuestionConstant       = "Track only a subset of projects? [y/N] "
	selectProjectsQuestionConstant         = "Select projects to track (for example 1,3-5): "
	addAnotherOrganizationQuestionConstant = "Add another organization? [y/N] "
	discoveredProjectsTemplateConstant     = "Discovered %d projects in %s.\n"
	noProjectsDiscoveredTemplateConstant   = "No projects discovered in %s.\n"
	missingInputMessageTemplateConstant    = "%s was not provided"
	repositoryRootFieldNameConstant        = "repository root location"
	organizationBaseURLFieldNameConstant   = "organization base URL"
	accessSecretFieldNameConstant          = "access secret"
	projectListingFailedMessageConstant    = "Project discovery failed; organization starts without projects"
	repositoryListingFailedMessage         = "Repository listing failed; project starts without repositories"
	organizationURLLogFieldNameConstant    = "organization_url"
	projectNameLogFieldNameConstant        = "project"
)

var (
	// ErrListerNotConfigured indicates the initializer requires a remote lister.
	ErrListerNotConfigured = errors.New("bootstrap lister not configured")
	// ErrPrompterNotConfigured indicates the initializer requires a prompter.
	ErrPrompterNotConfigured = errors.New("bootstrap prompter not configured")
	// ErrLoggerNotConfigured indicates the initializer requires a logger instance.
	ErrLoggerNotConfigured = errors.New("bootstrap logger not configured")
	// ErrDocumentSaverNotConfigured indicates the initializer requires a document saver.
	ErrDocumentSaverNotConfigured = errors.New("bootstrap document saver not configured")
)

// MissingInputError reports a required first-run answer that was left blank.
type MissingInputError struct {
	Field string
}

// Error describes the missing input.
func (missingInputError MissingInputError) Error() string {
	return fmt.Sprintf(missingInputMessageTemplateConstant, missingInputError.Field)
}

// SetupPrompter captures the operator interactions the initializer needs.
type SetupPrompter interface {
	Ask(question string, deadline time.Duration) prompt.Answer
	AskLine(question string) (string, error)
	AskSecret(question string) (string, error)
	AskSelection(question string, options []prompt.SelectionOption, deadline time.Duration) []string
}

// DocumentSaver persists the assembled configuration document.
type DocumentSaver interface {
	Save(configuration manifest.Configuration) error
}

// ServiceConfiguration adjusts initializer behavior.
type ServiceConfiguration struct {
	// DecisionDeadline bounds the project restriction prompts; zero selects
	// the default. The add-another prompt always waits indefinitely.
	DecisionDeadline time.Duration
}

// Service walks the operator through first-run configuration.
type Service struct {
	lister           remote.Lister
	prompter         SetupPrompter
	documentSaver    DocumentSaver
	logger           *zap.Logger
	outputWriter     io.Writer
	decisionDeadline time.Duration
}

// NewService constructs an initializer with the supplied collaborators.
func NewService(lister remote.Lister, prompter SetupPrompter, documentSaver DocumentSaver, logger *zap.Logger, outputWriter io.Writer, configuration ServiceConfiguration) (*Service, error) {
	if lister == nil {
		return nil, ErrListerNotConfigured
	}
	if prompter == nil {
		return nil, ErrPrompterNotConfigured
	}
	if documentSaver == nil {
		return nil, ErrDocumentSaverNotConfigured
	}
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if outputWriter == nil {
		outputWriter = io.Discard
	}
	decisionDeadline := configuration.DecisionDeadline
	if decisionDeadline <= 0 {
		decisionDeadline = defaultDecisionDeadlineConstant
	}
	return &Service{
		lister:           lister,
		prompter:         prompter,
		documentSaver:    documentSaver,
		logger:           logger,
		outputWriter:     outputWriter,
		decisionDeadline: decisionDeadline,
	}, nil
}

// Run collects the repository root and at least one organization from the
// operator, discovers the remote inventory, persists the document, and
// returns it. Required answers left blank abort the run with
// MissingInputError.
func (service *Service) Run(executionContext context.Context) (manifest.Configuration, error) {
	repositoryRoot, rootReadError := service.askRequiredLine(repositoryRootQuestionConstant, repositoryRootFieldNameConstant)
	if rootReadError != nil {
		return manifest.Configuration{}, rootReadError
	}

	configuration := manifest.Configuration{RepositoryRoot: repositoryRoot}
	for {
		organization, organizationError := service.collectOrganization(executionContext)
		if organizationError != nil {
			return manifest.Configuration{}, organizationError
		}
		configuration.Organizations = append(configuration.Organizations, organization)

		addAnotherAnswer := service.prompter.Ask(addAnotherOrganizationQuestionConstant, blockingDeadlineConstant)
		if addAnotherAnswer != prompt.AnswerYes {
			break
		}
	}

	if saveError := service.documentSaver.Save(configuration); saveError != nil {
		return configuration, saveError
	}
	return configuration, nil
}

func (service *Service) collectOrganization(executionContext context.Context) (manifest.Organization, error) {
	baseURL, baseURLError := service.askRequiredLine(organizationBaseURLQuestionConstant, organizationBaseURLFieldNameConstant)
	if baseURLError != nil {
		return manifest.Organization{}, baseURLError
	}
	baseURL = manifest.NormalizeBaseURL(baseURL)

	accessSecret, secretReadError := service.prompter.AskSecret(accessSecretQuestionConstant)
	if secretReadError != nil {
		return manifest.Organization{}, secretReadError
	}
	if len(strings.TrimSpace(accessSecret)) == 0 {
		return manifest.Organization{}, MissingInputError{Field: accessSecretFieldNameConstant}
	}

	organization := manifest.Organization{BaseURL: baseURL, Secret: accessSecret}
	chosenProjectNames := service.chooseProjects(executionContext, organization)
	for _, chosenProjectName := range chosenProjectNames {
		repositoryNames, listingError := service.lister.ListRepositories(executionContext, organization.BaseURL, chosenProjectName, organization.Secret)
		if listingError != nil {
			service.logger.Warn(repositoryListingFailedMessage,
				zap.String(organizationURLLogFieldNameConstant, organization.BaseURL),
				zap.String(projectNameLogFieldNameConstant, chosenProjectName),
				zap.Error(listingError))
			repositoryNames = nil
		}
		organization.Projects = append(organization.Projects, manifest.Project{Name: chosenProjectName, Repositories: repositoryNames})
	}
	return organization, nil
}

// chooseProjects discovers the live project list and applies the optional
// subset restriction. The restriction prompt defaults to tracking everything
// when the operator stays silent.
func (service *Service) chooseProjects(executionContext context.Context, organization manifest.Organization) []string {
	discoveredProjectNames, listingError := service.lister.ListProjects(executionContext, organization.BaseURL, organization.Secret)
	if listingError != nil {
		service.logger.Warn(projectListingFailedMessageConstant,
			zap.String(organizationURLLogFieldNameConstant, organization.BaseURL),
			zap.Error(listingError))
		return nil
	}
	if len(discoveredProjectNames) == 0 {
		fmt.Fprintf(service.outputWriter, noProjectsDiscoveredTemplateConstant, organization.BaseURL)
		return nil
	}

	fmt.Fprintf(service.outputWriter, discoveredProjectsTemplateConstant, len(discoveredProjectNames), organization.BaseURL)
	restrictAnswer := service.prompter.Ask(restrictProjectsQuestionConstant, service.decisionDeadline)
	if restrictAnswer != prompt.AnswerYes {
		return discoveredProjectNames
	}

	selectionOptions := make([]prompt.SelectionOption, 0, len(discoveredProjectNames))
	for _, discoveredProjectName := range discoveredProjectNames {
		selectionOptions = append(selectionOptions, prompt.SelectionOption{Label: discoveredProjectName, Preselected: true})
	}
	return service.prompter.AskSelection(selectProjectsQuestionConstant, selectionOptions, service.decisionDeadline)
}

func (service *Service) askRequiredLine(question string, fieldName string) (string, error) {
	answerText, readError := service.prompter.AskLine(question)
	if readError != nil {
		return "", readError
	}
	trimmedAnswer := strings.TrimSpace(answerText)
	if len(trimmedAnswer) == 0 {
		return "", MissingInputError{Field: fieldName}
	}
	return trimmedAnswer, nil
}
