package manifest

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func validManifest() Manifest {
	return Manifest{
		SchemaVersion: "1",
		Plugin: PluginInfo{
			ID:      "com.example.gain",
			Name:    "Gain",
			Vendor:  "Example",
			Version: "1.0.0",
		},
		Build: BuildInfo{
			GoSharedLibrary:    "libplugbridge_nativeplugin.so",
			ForeignLibraryPath: "C:\\Plugins\\Gain.dll",
			ABI:                "clap",
		},
	}
}

func TestValidateAcceptsWellFormedManifest(t *testing.T) {
	m := validManifest()
	require.NoError(t, m.Validate())
}

func TestValidateRejectsUnsupportedABI(t *testing.T) {
	m := validManifest()
	m.Build.ABI = "au"
	require.Error(t, m.Validate())
}

func TestValidateRejectsMissingForeignLibraryPath(t *testing.T) {
	m := validManifest()
	m.Build.ForeignLibraryPath = ""
	require.Error(t, m.Validate())
}

func TestGetLibraryPathJoinsPluginDir(t *testing.T) {
	m := validManifest()
	require.Equal(t, filepath.Join("/plugins/gain", "libplugbridge_nativeplugin.so"), m.GetLibraryPath("/plugins/gain"))
}
