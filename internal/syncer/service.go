package syncer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/repofleet/internal/manifest"
	pathutils "github.com/temirov/repofleet/internal/utils/path"
)

// RepositoryAction identifies how a repository gets synchronized.
type RepositoryAction string

// Actions planned and executed per repository.
const (
	RepositoryActionClone RepositoryAction = "clone"
	RepositoryActionPull  RepositoryAction = "pull"
)

const (
	defaultParallelCloneLimitConstant     = 4
	planCloneLineTemplateConstant         = "clone  %s  (from %s)\n"
	planPullLineTemplateConstant          = "pull   %s\n"
	planSkipLineTemplateConstant          = "skip   %s  (%v)\n"
	summaryLineTemplateConstant           = "Synchronized %d repositories: %d cloned, %d pulled, %d failed.\n"
	failureLineTemplateConstant           = "Failed %s: %v\n"
	noRepositoriesMessageConstant         = "No repositories to synchronize."
	repositorySynchronizedMessageConstant = "Repository synchronized"
	repositorySyncFailedMessageConstant   = "Repository synchronization failed"
	repositoryPathLogFieldNameConstant    = "repository_path"
	repositoryActionLogFieldNameConstant  = "action"
)

var (
	// ErrConfigurationIncomplete indicates the manifest lacks a repository root
	// or organizations and the run cannot prompt for them.
	ErrConfigurationIncomplete = errors.New("fleet manifest is incomplete; run init first")
	// ErrStoreNotConfigured indicates the sync engine requires a document store.
	ErrStoreNotConfigured = errors.New("syncer document store not configured")
	// ErrInitializerNotConfigured indicates the sync engine requires an initializer.
	ErrInitializerNotConfigured = errors.New("syncer initializer not configured")
	// ErrReconcilerNotConfigured indicates the sync engine requires a reconciler.
	ErrReconcilerNotConfigured = errors.New("syncer reconciler not configured")
	// ErrLocatorNotConfigured indicates the sync engine requires a remote locator.
	ErrLocatorNotConfigured = errors.New("syncer remote locator not configured")
	// ErrRepositoryManagerNotConfigured indicates the sync engine requires a repository manager.
	ErrRepositoryManagerNotConfigured = errors.New("syncer repository manager not configured")
	// ErrLoggerNotConfigured indicates the sync engine requires a logger instance.
	ErrLoggerNotConfigured = errors.New("syncer logger not configured")
)

// DocumentStore loads and persists the fleet manifest.
type DocumentStore interface {
	Load() manifest.Configuration
	Save(configuration manifest.Configuration) error
}

// Initializer collects a configuration document on first run.
type Initializer interface {
	Run(executionContext context.Context) (manifest.Configuration, error)
}

// Reconciler aligns the stored project selections with live listings.
type Reconciler interface {
	Reconcile(executionContext context.Context, configuration *manifest.Configuration) bool
}

// RemoteLocator resolves remote URLs and authorization headers per organization.
type RemoteLocator interface {
	RepositoryRemoteURL(organizationURL string, projectName string, repositoryName string) string
	AuthorizationHeaderFor(organizationURL string, secret string) string
}

// WorkingCopyManager performs the git operations the sync engine schedules.
type WorkingCopyManager interface {
	IsWorkingCopy(executionContext context.Context, repositoryPath string) (bool, error)
	CloneRepository(executionContext context.Context, remoteURL string, destinationPath string, authorizationHeader string) error
	PullRepository(executionContext context.Context, repositoryPath string, authorizationHeader string) error
}

// RunOptions adjusts a single synchronization run.
type RunOptions struct {
	// NonInteractive fails on incomplete configuration instead of prompting.
	NonInteractive bool
	// DryRun prints the per-repository plan without touching git.
	DryRun bool
	// ParallelClones bounds concurrent git operations; zero selects the default.
	ParallelClones int
}

// RepositoryOutcome records what happened to a single repository.
type RepositoryOutcome struct {
	OrganizationURL string
	ProjectName     string
	RepositoryName  string
	RepositoryPath  string
	Action          RepositoryAction
	Failure         error
}

type workItem struct {
	organizationURL     string
	projectName         string
	repositoryName      string
	repositoryPath      string
	remoteURL           string
	authorizationHeader string
}

// Service orchestrates a full fleet synchronization run.
type Service struct {
	documentStore     DocumentStore
	initializer       Initializer
	reconciler        Reconciler
	remoteLocator     RemoteLocator
	repositoryManager WorkingCopyManager
	logger            *zap.Logger
	outputWriter      io.Writer
	homeExpander      *pathutils.HomeExpander
}

// NewService constructs a sync engine with the supplied collaborators.
func NewService(documentStore DocumentStore, initializer Initializer, reconciler Reconciler, remoteLocator RemoteLocator, repositoryManager WorkingCopyManager, logger *zap.Logger, outputWriter io.Writer) (*Service, error) {
	if documentStore == nil {
		return nil, ErrStoreNotConfigured
	}
	if initializer == nil {
		return nil, ErrInitializerNotConfigured
	}
	if reconciler == nil {
		return nil, ErrReconcilerNotConfigured
	}
	if remoteLocator == nil {
		return nil, ErrLocatorNotConfigured
	}
	if repositoryManager == nil {
		return nil, ErrRepositoryManagerNotConfigured
	}
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if outputWriter == nil {
		outputWriter = io.Discard
	}
	return &Service{
		documentStore:     documentStore,
		initializer:       initializer,
		reconciler:        reconciler,
		remoteLocator:     remoteLocator,
		repositoryManager: repositoryManager,
		logger:            logger,
		outputWriter:      outputWriter,
		homeExpander:      pathutils.NewHomeExpander(),
	}, nil
}

// Run loads the manifest, brings it up to date, and synchronizes every
// tracked repository. Per-repository failures are recorded and summarized;
// the returned error is reserved for conditions that stop the whole run.
func (service *Service) Run(executionContext context.Context, options RunOptions) error {
	configuration := service.documentStore.Load()
	if !configuration.IsComplete() {
		if options.NonInteractive {
			return ErrConfigurationIncomplete
		}
		initializedConfiguration, initializationError := service.initializer.Run(executionContext)
		if initializationError != nil {
			return initializationError
		}
		configuration = initializedConfiguration
	} else if service.reconciler.Reconcile(executionContext, &configuration) {
		if saveError := service.documentStore.Save(configuration); saveError != nil {
			return saveError
		}
	}

	workItems := service.buildWorkItems(configuration)
	if len(workItems) == 0 {
		fmt.Fprintln(service.outputWriter, noRepositoriesMessageConstant)
		return nil
	}

	if options.DryRun {
		service.printPlan(executionContext, workItems)
		return nil
	}

	outcomes := service.executeWorkItems(executionContext, workItems, options.ParallelClones)
	service.writeSummary(outcomes)
	return nil
}

func (service *Service) buildWorkItems(configuration manifest.Configuration) []workItem {
	repositoryRoot := service.homeExpander.Expand(strings.TrimSpace(configuration.RepositoryRoot))
	workItems := []workItem{}
	for _, organization := range configuration.Organizations {
		organizationLabel := pathutils.OrganizationDirectoryLabel(organization.BaseURL)
		authorizationHeader := service.remoteLocator.AuthorizationHeaderFor(organization.BaseURL, organization.Secret)
		for _, project := range organization.Projects {
			projectDirectory := pathutils.SanitizePathComponent(project.Name)
			for _, repositoryName := range project.Repositories {
				repositoryDirectory := pathutils.SanitizePathComponent(repositoryName)
				workItems = append(workItems, workItem{
					organizationURL:     organization.BaseURL,
					projectName:         project.Name,
					repositoryName:      repositoryName,
					repositoryPath:      filepath.Join(repositoryRoot, organizationLabel, projectDirectory, repositoryDirectory),
					remoteURL:           service.remoteLocator.RepositoryRemoteURL(organization.BaseURL, project.Name, repositoryName),
					authorizationHeader: authorizationHeader,
				})
			}
		}
	}
	return workItems
}

// decideAction inspects the local path: absent means clone, a working copy
// means pull, and anything else becomes a clone attempt whose refusal git
// reports.
func (service *Service) decideAction(executionContext context.Context, repositoryPath string) (RepositoryAction, error) {
	_, statError := os.Stat(repositoryPath)
	if statError != nil {
		if os.IsNotExist(statError) {
			return RepositoryActionClone, nil
		}
		return "", statError
	}
	workingCopy, inspectionError := service.repositoryManager.IsWorkingCopy(executionContext, repositoryPath)
	if inspectionError != nil {
		return "", inspectionError
	}
	if workingCopy {
		return RepositoryActionPull, nil
	}
	return RepositoryActionClone, nil
}

func (service *Service) printPlan(executionContext context.Context, workItems []workItem) {
	for _, item := range workItems {
		plannedAction, decisionError := service.decideAction(executionContext, item.repositoryPath)
		switch {
		case decisionError != nil:
			fmt.Fprintf(service.outputWriter, planSkipLineTemplateConstant, item.repositoryPath, decisionError)
		case plannedAction == RepositoryActionClone:
			fmt.Fprintf(service.outputWriter, planCloneLineTemplateConstant, item.repositoryPath, item.remoteURL)
		default:
			fmt.Fprintf(service.outputWriter, planPullLineTemplateConstant, item.repositoryPath)
		}
	}
}

func (service *Service) executeWorkItems(executionContext context.Context, workItems []workItem, parallelCloneLimit int) []RepositoryOutcome {
	if parallelCloneLimit <= 0 {
		parallelCloneLimit = defaultParallelCloneLimitConstant
	}

	workGroup, groupContext := errgroup.WithContext(executionContext)
	workGroup.SetLimit(parallelCloneLimit)

	var outcomesMutex sync.Mutex
	outcomes := make([]RepositoryOutcome, 0, len(workItems))
	for _, item := range workItems {
		item := item
		workGroup.Go(func() error {
			outcome := service.syncRepository(groupContext, item)
			outcomesMutex.Lock()
			outcomes = append(outcomes, outcome)
			outcomesMutex.Unlock()
			return nil
		})
	}
	_ = workGroup.Wait()

	sort.Slice(outcomes, func(firstIndex int, secondIndex int) bool {
		return outcomes[firstIndex].RepositoryPath < outcomes[secondIndex].RepositoryPath
	})
	return outcomes
}

func (service *Service) syncRepository(executionContext context.Context, item workItem) RepositoryOutcome {
	outcome := RepositoryOutcome{
		OrganizationURL: item.organizationURL,
		ProjectName:     item.projectName,
		RepositoryName:  item.repositoryName,
		RepositoryPath:  item.repositoryPath,
	}

	action, decisionError := service.decideAction(executionContext, item.repositoryPath)
	if decisionError != nil {
		outcome.Failure = decisionError
		service.logger.Warn(repositorySyncFailedMessageConstant,
			zap.String(repositoryPathLogFieldNameConstant, item.repositoryPath),
			zap.Error(decisionError))
		return outcome
	}

	outcome.Action = action
	switch action {
	case RepositoryActionClone:
		outcome.Failure = service.repositoryManager.CloneRepository(executionContext, item.remoteURL, item.repositoryPath, item.authorizationHeader)
	case RepositoryActionPull:
		outcome.Failure = service.repositoryManager.PullRepository(executionContext, item.repositoryPath, item.authorizationHeader)
	}

	if outcome.Failure != nil {
		service.logger.Warn(repositorySyncFailedMessageConstant,
			zap.String(repositoryPathLogFieldNameConstant, item.repositoryPath),
			zap.String(repositoryActionLogFieldNameConstant, string(action)),
			zap.Error(outcome.Failure))
		return outcome
	}

	service.logger.Info(repositorySynchronizedMessageConstant,
		zap.String(repositoryPathLogFieldNameConstant, item.repositoryPath),
		zap.String(repositoryActionLogFieldNameConstant, string(action)))
	return outcome
}

func (service *Service) writeSummary(outcomes []RepositoryOutcome) {
	clonedCount := 0
	pulledCount := 0
	failedCount := 0
	for _, outcome := range outcomes {
		switch {
		case outcome.Failure != nil:
			failedCount++
			fmt.Fprintf(service.outputWriter, failureLineTemplateConstant, outcome.RepositoryPath, outcome.Failure)
		case outcome.Action == RepositoryActionClone:
			clonedCount++
		case outcome.Action == RepositoryActionPull:
			pulledCount++
		}
	}
	fmt.Fprintf(service.outputWriter, summaryLineTemplateConstant, len(outcomes), clonedCount, pulledCount, failedCount)
}
