package commands

import "github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/version"

// versionString reports the build's version field, used as the OTel
// resource's service.version attribute.
func versionString() string {
	return version.Version
}
