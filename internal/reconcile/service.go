package reconcile

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
	defaultDecisionDeadlineConstant            = 10 * time.Second
	driftNoticeTemplateConstant                = "Organization %s project selection changed.\n  Stored: %s\n  Live:   %s\n"
	updateSelectionQuestionConstant            = "Update the tracked project selection? [y/N] "
	selectProjectsQuestionConstant             = "Select projects to track (for example 1,3-5): "
	keepCurrentSelectionMessageConstant        = "Keeping the current project selection."
	emptyNameListPlaceholderConstant           = "(none)"
	nameListSeparatorConstant                  = ", "
	projectListingFailedMessageConstant        = "Project listing failed; leaving organization unchanged"
	repositoryListingFailedMessageConstant     = "Repository listing failed; starting with an empty repository list"
	driftDetectedNonInteractiveMessageConstant = "Project drift detected; keeping the stored selection in non-interactive mode"
	organizationURLLogFieldNameConstant        = "organization_url"
	projectNameLogFieldNameConstant            = "project"
	storedProjectNamesLogFieldNameConstant     = "stored_projects"
	discoveredProjectNamesLogFieldNameConstant = "live_projects"
)

var (
	// ErrListerNotConfigured indicates the reconciler requires a remote lister.
	ErrListerNotConfigured = errors.New("reconcile lister not configured")
	// ErrPrompterNotConfigured indicates the reconciler requires a prompter.
	ErrPrompterNotConfigured = errors.New("reconcile prompter not configured")
	// ErrLoggerNotConfigured indicates the reconciler requires a logger instance.
	ErrLoggerNotConfigured = errors.New("reconcile logger not configured")
)

// DecisionPrompter captures the operator interactions the reconciler needs.
type DecisionPrompter interface {
	Ask(question string, deadline time.Duration) prompt.Answer
	AskSelection(question string, options []prompt.SelectionOption, deadline time.Duration) []string
}

// ServiceConfiguration adjusts reconciliation behavior.
type ServiceConfiguration struct {
	// NonInteractive treats every drift decision as declined.
	NonInteractive bool
	// DecisionDeadline bounds each drift prompt; zero selects the default.
	DecisionDeadline time.Duration
}

// Service detects and resolves drift between stored project selections and
// live remote listings.
type Service struct {
	lister           remote.Lister
	prompter         DecisionPrompter
	logger           *zap.Logger
	outputWriter     io.Writer
	nonInteractive   bool
	decisionDeadline time.Duration
}

// NewService constructs a reconciler with the supplied collaborators.
func NewService(lister remote.Lister, prompter DecisionPrompter, logger *zap.Logger, outputWriter io.Writer, configuration ServiceConfiguration) (*Service, error) {
	if lister == nil {
		return nil, ErrListerNotConfigured
	}
	if prompter == nil {
		return nil, ErrPrompterNotConfigured
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
		logger:           logger,
		outputWriter:     outputWriter,
		nonInteractive:   configuration.NonInteractive,
		decisionDeadline: decisionDeadline,
	}, nil
}

// Reconcile aligns every organization's tracked projects with the live remote
// listing and reports whether the configuration changed. Listing failures
// leave the affected organization untouched.
func (service *Service) Reconcile(executionContext context.Context, configuration *manifest.Configuration) bool {
	if configuration == nil {
		return false
	}

	configurationMutated := false
	for organizationIndex := range configuration.Organizations {
		organization := &configuration.Organizations[organizationIndex]
		if service.reconcileOrganization(executionContext, organization) {
			configurationMutated = true
		}
	}
	return configurationMutated
}

func (service *Service) reconcileOrganization(executionContext context.Context, organization *manifest.Organization) bool {
	liveProjectNames, listingError := service.lister.ListProjects(executionContext, organization.BaseURL, organization.Secret)
	if listingError != nil {
		service.logger.Warn(projectListingFailedMessageConstant,
			zap.String(organizationURLLogFieldNameConstant, organization.BaseURL),
			zap.Error(listingError))
		return false
	}

	storedProjectNames := organization.ProjectNames()
	if manifest.ProjectNameSetsEqual(storedProjectNames, liveProjectNames) {
		return false
	}

	if service.nonInteractive {
		service.logger.Info(driftDetectedNonInteractiveMessageConstant,
			zap.String(organizationURLLogFieldNameConstant, organization.BaseURL),
			zap.Strings(storedProjectNamesLogFieldNameConstant, storedProjectNames),
			zap.Strings(discoveredProjectNamesLogFieldNameConstant, liveProjectNames))
		return false
	}

	fmt.Fprintf(service.outputWriter, driftNoticeTemplateConstant,
		organization.BaseURL,
		formatNameList(storedProjectNames),
		formatNameList(liveProjectNames))

	updateAnswer := service.prompter.Ask(updateSelectionQuestionConstant, service.decisionDeadline)
	if updateAnswer != prompt.AnswerYes {
		fmt.Fprintln(service.outputWriter, keepCurrentSelectionMessageConstant)
		return false
	}

	selectionOptions := buildSelectionOptions(liveProjectNames, storedProjectNames)
	chosenProjectNames := service.prompter.AskSelection(selectProjectsQuestionConstant, selectionOptions, service.decisionDeadline)
	if manifest.ProjectNameSetsEqual(chosenProjectNames, storedProjectNames) {
		return false
	}

	organization.Projects = service.rebuildProjects(executionContext, organization, chosenProjectNames)
	return true
}

// rebuildProjects assembles the new project list: names already stored keep
// their existing Project value untouched, new names are fetched fresh, and
// unchosen stored names are dropped.
func (service *Service) rebuildProjects(executionContext context.Context, organization *manifest.Organization, chosenProjectNames []string) []manifest.Project {
	rebuiltProjects := make([]manifest.Project, 0, len(chosenProjectNames))
	for _, chosenProjectName := range chosenProjectNames {
		existingProject, projectFound := organization.FindProject(chosenProjectName)
		if projectFound {
			rebuiltProjects = append(rebuiltProjects, existingProject)
			continue
		}
		repositoryNames, listingError := service.lister.ListRepositories(executionContext, organization.BaseURL, chosenProjectName, organization.Secret)
		if listingError != nil {
			service.logger.Warn(repositoryListingFailedMessageConstant,
				zap.String(organizationURLLogFieldNameConstant, organization.BaseURL),
				zap.String(projectNameLogFieldNameConstant, chosenProjectName),
				zap.Error(listingError))
			repositoryNames = nil
		}
		rebuiltProjects = append(rebuiltProjects, manifest.Project{Name: chosenProjectName, Repositories: repositoryNames})
	}
	return rebuiltProjects
}

func buildSelectionOptions(liveProjectNames []string, storedProjectNames []string) []prompt.SelectionOption {
	storedNameSet := make(map[string]struct{}, len(storedProjectNames))
	for _, storedProjectName := range storedProjectNames {
		storedNameSet[strings.ToLower(strings.TrimSpace(storedProjectName))] = struct{}{}
	}
	selectionOptions := make([]prompt.SelectionOption, 0, len(liveProjectNames))
	for _, liveProjectName := range liveProjectNames {
		_, alreadyStored := storedNameSet[strings.ToLower(strings.TrimSpace(liveProjectName))]
		selectionOptions = append(selectionOptions, prompt.SelectionOption{Label: liveProjectName, Preselected: alreadyStored})
	}
	return selectionOptions
}

func formatNameList(names []string) string {
	if len(names) == 0 {
		return emptyNameListPlaceholderConstant
	}
	return strings.Join(names, nameListSeparatorConstant)
}
