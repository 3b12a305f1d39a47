// The genmanifest command writes the JSON manifest that ties a
// nativeplugin shared library to the foreign plugin binary it bridges,
// per spec.md §6's "per-instance" install layout.
//
// Grounded on cmd/generate-manifest/main.go's flag surface and
// text/template-free JSON emission, adapted from describing a compiled
// Go CLAP plugin to describing a bridged foreign plugin: the flags this
// command needs are the foreign library path and target ABI rather than
// Go source generation options, so the interactive wizard and code-
// generation flags present in the teacher's version are dropped (there
// is no Go plugin source for this bridge to scaffold).
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/plugbridge/plugbridge/pkg/manifest"
)

var (
	pluginID       = flag.String("id", "", "Plugin ID (e.g., com.vendor.gain)")
	pluginName     = flag.String("name", "", "Plugin display name")
	pluginVendor   = flag.String("vendor", "", "Plugin vendor")
	pluginVersion  = flag.String("version", "1.0.0", "Plugin version")
	description    = flag.String("description", "", "Plugin description")
	url            = flag.String("url", "", "Plugin URL")
	manualURL      = flag.String("manual-url", "", "Plugin manual URL")
	supportURL     = flag.String("support-url", "", "Plugin support URL")
	abi            = flag.String("abi", "clap", "Foreign ABI: vst2, vst3, or clap")
	foreignLibrary = flag.String("foreign-library", "", "Path to the foreign (Windows) plugin binary this manifest bridges")
	nativeLibrary  = flag.String("native-library", "libplugbridge_nativeplugin.so", "Name of the nativeplugin shared library installed alongside this manifest")
	outputPath     = flag.String("output", "", "Output manifest file path (defaults to <id>.json in the current directory)")
)

func main() {
	flag.Parse()

	if *pluginID == "" || *pluginName == "" || *pluginVendor == "" {
		fmt.Fprintln(os.Stderr, "genmanifest: -id, -name, and -vendor are required")
		flag.Usage()
		os.Exit(1)
	}
	if *foreignLibrary == "" {
		fmt.Fprintln(os.Stderr, "genmanifest: -foreign-library is required")
		os.Exit(1)
	}

	m := manifest.Manifest{
		SchemaVersion: "1",
		Plugin: manifest.PluginInfo{
			ID:          *pluginID,
			Name:        *pluginName,
			Vendor:      *pluginVendor,
			Version:     *pluginVersion,
			Description: *description,
			URL:         *url,
			ManualURL:   *manualURL,
			SupportURL:  *supportURL,
		},
		Build: manifest.BuildInfo{
			GoSharedLibrary:    *nativeLibrary,
			ForeignLibraryPath: *foreignLibrary,
			ABI:                *abi,
		},
	}

	if err := m.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "genmanifest: invalid manifest: %v\n", err)
		os.Exit(1)
	}

	out := *outputPath
	if out == "" {
		out = filepath.Join(".", *pluginID+".json")
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "genmanifest: encoding manifest: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "genmanifest: writing %s: %v\n", out, err)
		os.Exit(1)
	}
	fmt.Printf("genmanifest: wrote %s\n", out)
}
