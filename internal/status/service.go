package status

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/temirov/repofleet/internal/manifest"
	"github.com/temirov/repofleet/internal/secrets"
)

const (
	manifestLineTemplateConstant      = "Manifest: %s\n"
	rootLineTemplateConstant          = "Root:     %s\n"
	incompleteDocumentMessageConstant = "Fleet manifest is incomplete. Run repofleet init to create it."
	organizationHeaderConstant        = "Organization"
	projectsHeaderConstant            = "Projects"
	repositoriesHeaderConstant        = "Repositories"
	secretHeaderConstant              = "Secret"
	secretStateProtectedConstant      = "stored (protected)"
	secretStatePlaintextConstant      = "stored (plaintext)"
	secretStateNoneConstant           = "none"
)

// ErrDocumentSourceNotConfigured indicates the overview requires a document source.
var ErrDocumentSourceNotConfigured = errors.New("status document source not configured")

// DocumentSource supplies the manifest location and its at-rest contents.
type DocumentSource interface {
	DocumentPath() string
	LoadStored() manifest.Configuration
}

// Service writes a human-readable summary of the stored fleet manifest.
type Service struct {
	documentSource DocumentSource
	outputWriter   io.Writer
}

// NewService constructs an overview renderer for the provided document source.
func NewService(documentSource DocumentSource, outputWriter io.Writer) (*Service, error) {
	if documentSource == nil {
		return nil, ErrDocumentSourceNotConfigured
	}
	if outputWriter == nil {
		outputWriter = io.Discard
	}
	return &Service{documentSource: documentSource, outputWriter: outputWriter}, nil
}

// Report prints the manifest location, the repository root, and one table row
// per organization. Secrets are classified by their at-rest form and never
// printed.
func (service *Service) Report() {
	fmt.Fprintf(service.outputWriter, manifestLineTemplateConstant, service.documentSource.DocumentPath())

	configuration := service.documentSource.LoadStored()
	if !configuration.IsComplete() {
		fmt.Fprintln(service.outputWriter, incompleteDocumentMessageConstant)
		return
	}

	fmt.Fprintf(service.outputWriter, rootLineTemplateConstant, configuration.RepositoryRoot)
	fmt.Fprintln(service.outputWriter)

	overviewTable := tablewriter.NewWriter(service.outputWriter)
	overviewTable.SetHeader([]string{organizationHeaderConstant, projectsHeaderConstant, repositoriesHeaderConstant, secretHeaderConstant})
	for _, organization := range configuration.Organizations {
		repositoryCount := 0
		for _, project := range organization.Projects {
			repositoryCount += len(project.Repositories)
		}
		overviewTable.Append([]string{
			organization.BaseURL,
			strconv.Itoa(len(organization.Projects)),
			strconv.Itoa(repositoryCount),
			classifySecret(organization.Secret),
		})
	}
	overviewTable.Render()
}

func classifySecret(storedSecret string) string {
	trimmedSecret := strings.TrimSpace(storedSecret)
	if len(trimmedSecret) == 0 {
		return secretStateNoneConstant
	}
	if secrets.IsEncoded(trimmedSecret) {
		return secretStateProtectedConstant
	}
	return secretStatePlaintextConstant
}
