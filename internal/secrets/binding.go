package secrets

import (
	"fmt"
	"os"
	"os/user"
	"strings"
)

const (
	machineIdentifierPrimaryPathConstant  = "/etc/machine-id"
	machineIdentifierFallbackPathConstant = "/var/lib/dbus/machine-id"
	machineIdentifierDefaultConstant      = "unknown-machine"
	bindingComponentSeparatorConstant     = "\n"
	userIdentitySeparatorConstant         = ":"
	userIdentityFallbackTemplateConstant  = "uid-%d"
)

// Binding supplies the environment-specific key material that ties protected
// secrets to the user and machine that produced them.
type Binding interface {
	BindingMaterial() ([]byte, error)
}

// HostBinding gathers binding material from the operating system: the machine
// identifier and the current user identity.
type HostBinding struct{}

// BindingMaterial combines the machine identifier with the current user identity.
func (HostBinding) BindingMaterial() ([]byte, error) {
	bindingComponents := []string{readMachineIdentifier(), currentUserIdentity()}
	return []byte(strings.Join(bindingComponents, bindingComponentSeparatorConstant)), nil
}

func readMachineIdentifier() string {
	candidatePaths := []string{machineIdentifierPrimaryPathConstant, machineIdentifierFallbackPathConstant}
	for _, candidatePath := range candidatePaths {
		contents, readError := os.ReadFile(candidatePath)
		if readError != nil {
			continue
		}
		machineIdentifier := strings.TrimSpace(string(contents))
		if len(machineIdentifier) > 0 {
			return machineIdentifier
		}
	}

	hostName, hostNameError := os.Hostname()
	if hostNameError != nil || len(strings.TrimSpace(hostName)) == 0 {
		return machineIdentifierDefaultConstant
	}
	return strings.TrimSpace(hostName)
}

func currentUserIdentity() string {
	currentUser, lookupError := user.Current()
	if lookupError != nil {
		return fmt.Sprintf(userIdentityFallbackTemplateConstant, os.Getuid())
	}
	return currentUser.Uid + userIdentitySeparatorConstant + currentUser.Username
}
