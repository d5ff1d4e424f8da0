package pathutils

import (
	"net/url"
	"strings"
)

const (
	labelSegmentSeparatorConstant         = "_"
	disallowedComponentCharactersConstant = "/\\:*?\"<>| "
	componentReplacementRuneConstant      = '_'
	fallbackComponentNameConstant         = "remote"
)

// OrganizationDirectoryLabel derives the directory name that holds an
// organization's repositories from its base URL. The label keeps both host
// and path so two organizations on the same server stay apart on disk.
func OrganizationDirectoryLabel(organizationURL string) string {
	trimmedURL := strings.TrimSpace(organizationURL)
	parsedURL, parseError := url.Parse(trimmedURL)
	if parseError != nil || len(parsedURL.Host) == 0 {
		return SanitizePathComponent(trimmedURL)
	}
	labelSegments := []string{parsedURL.Host}
	for _, pathSegment := range strings.Split(parsedURL.Path, "/") {
		if len(pathSegment) > 0 {
			labelSegments = append(labelSegments, pathSegment)
		}
	}
	return SanitizePathComponent(strings.Join(labelSegments, labelSegmentSeparatorConstant))
}

// SanitizePathComponent rewrites a name so it can serve as a single directory
// component on every supported platform.
func SanitizePathComponent(component string) string {
	sanitizedComponent := strings.Map(func(componentRune rune) rune {
		if strings.ContainsRune(disallowedComponentCharactersConstant, componentRune) {
			return componentReplacementRuneConstant
		}
		return componentRune
	}, strings.TrimSpace(component))
	if len(sanitizedComponent) == 0 {
		return fallbackComponentNameConstant
	}
	return sanitizedComponent
}
