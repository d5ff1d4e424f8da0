package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

const (
	defaultDirectoryNameConstant        = "repofleet"
	defaultDocumentNameConstant         = "manifest.json"
	documentFilePermissionConstant      = 0o600
	documentDirectoryPermissionConstant = 0o700
	temporaryDocumentPatternConstant    = "manifest-*.json"
	jsonIndentConstant                  = "  "
	documentPathFieldConstant           = "manifest_path"
	organizationFieldConstant           = "organization_url"
	unreadableDocumentMessageConstant   = "Manifest unreadable; starting with an empty document"
	invalidDocumentMessageConstant      = "Manifest invalid; starting with an empty document"
	legacyMigrationMessageConstant      = "Migrated legacy single-organization manifest"
	secretDecodeWarningConstant         = "Stored secret is unusable on this machine; re-enter it to refresh"
	saveFailureTemplateConstant         = "manifest save failed: %w"
	defaultPathFailureTemplateConstant  = "user configuration directory unavailable: %w"
)

// SecretCodec converts secrets between plaintext and their protected at-rest form.
type SecretCodec interface {
	Encode(secretValue string) (string, error)
	Decode(storedValue string) (string, error)
}

var (
	// ErrSecretCodecNotConfigured indicates a Store was constructed without a codec.
	ErrSecretCodecNotConfigured = errors.New("secret codec not configured")
	// ErrStoreLoggerNotConfigured indicates a Store was constructed without a logger.
	ErrStoreLoggerNotConfigured = errors.New("store logger not configured")
)

// Store reads and writes the manifest document at a fixed path.
type Store struct {
	documentPath string
	secretCodec  SecretCodec
	logger       *zap.Logger
}

// NewStore constructs a Store for the provided document path. An empty path
// selects the per-user default location.
func NewStore(documentPath string, secretCodec SecretCodec, logger *zap.Logger) (*Store, error) {
	if secretCodec == nil {
		return nil, ErrSecretCodecNotConfigured
	}
	if logger == nil {
		return nil, ErrStoreLoggerNotConfigured
	}

	resolvedPath := strings.TrimSpace(documentPath)
	if len(resolvedPath) == 0 {
		defaultPath, defaultPathError := DefaultDocumentPath()
		if defaultPathError != nil {
			return nil, defaultPathError
		}
		resolvedPath = defaultPath
	}

	return &Store{documentPath: resolvedPath, secretCodec: secretCodec, logger: logger}, nil
}

// DefaultDocumentPath resolves the per-user manifest location.
func DefaultDocumentPath() (string, error) {
	configurationDirectory, directoryError := os.UserConfigDir()
	if directoryError != nil {
		return "", fmt.Errorf(defaultPathFailureTemplateConstant, directoryError)
	}
	return filepath.Join(configurationDirectory, defaultDirectoryNameConstant, defaultDocumentNameConstant), nil
}

// DocumentPath reports the path this store reads and writes.
func (store *Store) DocumentPath() string {
	return store.documentPath
}

// Load reads the manifest document. Missing, unreadable, and invalid documents
// yield an empty Configuration so the caller can bootstrap. Stored secrets are
// decoded in place; a secret that cannot be decoded keeps its stored value so
// the operator can re-enter it later.
func (store *Store) Load() Configuration {
	configuration := store.loadDocument()
	store.decodeSecrets(&configuration)
	return configuration
}

// LoadStored reads the manifest document while leaving every secret in its
// at-rest form. Reporting code uses it to classify secrets without decoding them.
func (store *Store) LoadStored() Configuration {
	return store.loadDocument()
}

func (store *Store) loadDocument() Configuration {
	documentBytes, readError := os.ReadFile(store.documentPath)
	if readError != nil {
		if !errors.Is(readError, os.ErrNotExist) {
			store.logger.Warn(unreadableDocumentMessageConstant,
				zap.String(documentPathFieldConstant, store.documentPath),
				zap.Error(readError))
		}
		return Configuration{}
	}

	configuration, migrated, parsed := parseDocument(documentBytes)
	if !parsed {
		store.logger.Warn(invalidDocumentMessageConstant,
			zap.String(documentPathFieldConstant, store.documentPath))
		return Configuration{}
	}
	if migrated {
		store.logger.Info(legacyMigrationMessageConstant,
			zap.String(documentPathFieldConstant, store.documentPath))
	}

	return configuration
}

// Save writes the document atomically with every secret in its protected form.
func (store *Store) Save(configuration Configuration) error {
	persistedConfiguration := configuration.Clone()
	for organizationIndex := range persistedConfiguration.Organizations {
		organization := &persistedConfiguration.Organizations[organizationIndex]
		encodedSecret, encodeError := store.secretCodec.Encode(organization.Secret)
		if encodeError != nil {
			return fmt.Errorf(saveFailureTemplateConstant, encodeError)
		}
		organization.Secret = encodedSecret
	}

	documentBytes, marshalError := json.MarshalIndent(persistedConfiguration, "", jsonIndentConstant)
	if marshalError != nil {
		return fmt.Errorf(saveFailureTemplateConstant, marshalError)
	}
	documentBytes = append(documentBytes, '\n')

	documentDirectory := filepath.Dir(store.documentPath)
	if directoryError := os.MkdirAll(documentDirectory, documentDirectoryPermissionConstant); directoryError != nil {
		return fmt.Errorf(saveFailureTemplateConstant, directoryError)
	}

	temporaryFile, temporaryFileError := os.CreateTemp(documentDirectory, temporaryDocumentPatternConstant)
	if temporaryFileError != nil {
		return fmt.Errorf(saveFailureTemplateConstant, temporaryFileError)
	}
	temporaryPath := temporaryFile.Name()

	if _, writeError := temporaryFile.Write(documentBytes); writeError != nil {
		_ = temporaryFile.Close()
		_ = os.Remove(temporaryPath)
		return fmt.Errorf(saveFailureTemplateConstant, writeError)
	}
	if permissionError := temporaryFile.Chmod(documentFilePermissionConstant); permissionError != nil {
		_ = temporaryFile.Close()
		_ = os.Remove(temporaryPath)
		return fmt.Errorf(saveFailureTemplateConstant, permissionError)
	}
	if closeError := temporaryFile.Close(); closeError != nil {
		_ = os.Remove(temporaryPath)
		return fmt.Errorf(saveFailureTemplateConstant, closeError)
	}
	if renameError := os.Rename(temporaryPath, store.documentPath); renameError != nil {
		_ = os.Remove(temporaryPath)
		return fmt.Errorf(saveFailureTemplateConstant, renameError)
	}

	return nil
}

type legacyDocument struct {
	RepositoryRoot string    `json:"repoRootLocation"`
	BaseURL        string    `json:"baseUrl"`
	Secret         string    `json:"secret"`
	Projects       []Project `json:"projects"`
}

func parseDocument(documentBytes []byte) (Configuration, bool, bool) {
	var configuration Configuration
	if unmarshalError := json.Unmarshal(documentBytes, &configuration); unmarshalError != nil {
		return Configuration{}, false, false
	}
	if len(configuration.Organizations) > 0 {
		return configuration, false, true
	}

	var legacy legacyDocument
	if unmarshalError := json.Unmarshal(documentBytes, &legacy); unmarshalError == nil {
		if len(strings.TrimSpace(legacy.BaseURL)) > 0 {
			migratedConfiguration := Configuration{
				RepositoryRoot: legacy.RepositoryRoot,
				Organizations: []Organization{{
					BaseURL:  NormalizeBaseURL(legacy.BaseURL),
					Secret:   legacy.Secret,
					Projects: legacy.Projects,
				}},
			}
			return migratedConfiguration, true, true
		}
	}

	return configuration, false, true
}

func (store *Store) decodeSecrets(configuration *Configuration) {
	for organizationIndex := range configuration.Organizations {
		organization := &configuration.Organizations[organizationIndex]
		decodedSecret, decodeError := store.secretCodec.Decode(organization.Secret)
		if decodeError != nil {
			store.logger.Warn(secretDecodeWarningConstant,
				zap.String(organizationFieldConstant, organization.BaseURL),
				zap.Error(decodeError))
			continue
		}
		organization.Secret = decodedSecret
	}
}
