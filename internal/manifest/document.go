package manifest

import (
	"strings"
)

const baseURLTrailingCharactersConstant = "/"

// Configuration is the persisted manifest describing the local root location
// and every organization kept in sync.
type Configuration struct {
	RepositoryRoot string         `json:"repoRootLocation"`
	Organizations  []Organization `json:"organizations,omitempty"`
}

// Organization describes one remote organization with its access secret and
// chosen projects.
type Organization struct {
	BaseURL  string    `json:"baseUrl"`
	Secret   string    `json:"secret,omitempty"`
	Projects []Project `json:"projects,omitempty"`
}

// Project pairs a project name with the repositories synchronized beneath it.
type Project struct {
	Name         string   `json:"name"`
	Repositories []string `json:"repositories,omitempty"`
}

// IsComplete reports whether the document holds enough information to run a
// synchronization without bootstrapping: a root location plus at least one
// organization with a base URL.
func (configuration Configuration) IsComplete() bool {
	if len(strings.TrimSpace(configuration.RepositoryRoot)) == 0 {
		return false
	}
	for _, organization := range configuration.Organizations {
		if len(strings.TrimSpace(organization.BaseURL)) > 0 {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the document.
func (configuration Configuration) Clone() Configuration {
	clonedConfiguration := Configuration{RepositoryRoot: configuration.RepositoryRoot}
	if configuration.Organizations == nil {
		return clonedConfiguration
	}

	clonedConfiguration.Organizations = make([]Organization, len(configuration.Organizations))
	for organizationIndex, organization := range configuration.Organizations {
		clonedOrganization := Organization{BaseURL: organization.BaseURL, Secret: organization.Secret}
		if organization.Projects != nil {
			clonedOrganization.Projects = make([]Project, len(organization.Projects))
			for projectIndex, project := range organization.Projects {
				clonedProject := Project{Name: project.Name}
				if project.Repositories != nil {
					clonedProject.Repositories = append([]string(nil), project.Repositories...)
				}
				clonedOrganization.Projects[projectIndex] = clonedProject
			}
		}
		clonedConfiguration.Organizations[organizationIndex] = clonedOrganization
	}
	return clonedConfiguration
}

// ProjectNames lists the organization's stored project names in document order.
func (organization Organization) ProjectNames() []string {
	projectNames := make([]string, 0, len(organization.Projects))
	for _, project := range organization.Projects {
		projectNames = append(projectNames, project.Name)
	}
	return projectNames
}

// FindProject locates a stored project by case-insensitive name.
func (organization Organization) FindProject(projectName string) (Project, bool) {
	for _, project := range organization.Projects {
		if strings.EqualFold(project.Name, projectName) {
			return project, true
		}
	}
	return Project{}, false
}

// NormalizeBaseURL trims surrounding whitespace and trailing slashes from an
// organization URL so stored and entered values compare consistently.
func NormalizeBaseURL(rawBaseURL string) string {
	return strings.TrimRight(strings.TrimSpace(rawBaseURL), baseURLTrailingCharactersConstant)
}

// ProjectNameSetsEqual reports whether two name collections contain the same
// case-insensitive set of names regardless of order or duplication.
func ProjectNameSetsEqual(firstNames []string, secondNames []string) bool {
	firstNameSet := buildNameSet(firstNames)
	secondNameSet := buildNameSet(secondNames)
	if len(firstNameSet) != len(secondNameSet) {
		return false
	}
	for name := range firstNameSet {
		if _, present := secondNameSet[name]; !present {
			return false
		}
	}
	return true
}

func buildNameSet(names []string) map[string]struct{} {
	nameSet := make(map[string]struct{}, len(names))
	for _, name := range names {
		nameSet[strings.ToLower(strings.TrimSpace(name))] = struct{}{}
	}
	return nameSet
}
