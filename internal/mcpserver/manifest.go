package mcpserver

import (
	"encoding/json"
)

const manifestSchema = "https://static.modelcontextprotocol.io/schemas/2025-10-17/server.schema.json"

// Manifest is the MCP registry entry (server.json) for livewalk.
type Manifest struct {
	Schema      string      `json:"$schema"`
	Name        string      `json:"name"`
	Title       string      `json:"title,omitempty"`
	Description string      `json:"description"`
	Version     string      `json:"version"`
	WebsiteURL  string      `json:"websiteUrl,omitempty"`
	Repository  *Repository `json:"repository,omitempty"`
	Packages    []Package   `json:"packages,omitempty"`
}

// Repository locates the source.
type Repository struct {
	URL    string `json:"url"`
	Source string `json:"source"`
}

// Package is one way to run the server.
type Package struct {
	RegistryType         string        `json:"registryType"`
	Identifier           string        `json:"identifier"`
	Version              string        `json:"version,omitempty"`
	RuntimeArguments     []Argument    `json:"runtimeArguments,omitempty"`
	PackageArguments     []Argument    `json:"packageArguments,omitempty"`
	EnvironmentVariables []EnvVariable `json:"environmentVariables,omitempty"`
	Transport            Transport     `json:"transport"`
}

// Argument is a command-line argument. Named arguments carry Name.
type Argument struct {
	Type        string `json:"type"`
	Name        string `json:"name,omitempty"`
	Value       string `json:"value,omitempty"`
	Description string `json:"description,omitempty"`
}

// EnvVariable is an environment variable the server reads.
type EnvVariable struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsRequired  bool   `json:"isRequired,omitempty"`
}

// Transport is the connection the server speaks.
type Transport struct {
	Type string `json:"type"`
}

// GenerateManifest returns the registry manifest for version as indented JSON.
// The image mounts the firmware checkout at /src.
func GenerateManifest(version string) ([]byte, error) {
	if version == "" || version == "dev" {
		version = "0.0.0"
	}

	configEnv := EnvVariable{
		Name:        "LIVEWALK_CONFIG",
		Description: "Path to a livewalk.toml naming the values file, palette and excludes",
	}
	stdio := Transport{Type: "stdio"}

	manifest := Manifest{
		Schema:      manifestSchema,
		Name:        "io.github.panbanda/livewalk",
		Title:       "livewalk",
		Description: "Overlay live ECU condition values onto C/C++ firmware source to show which branches ran",
		Version:     version,
		WebsiteURL:  "https://github.com/panbanda/livewalk",
		Repository: &Repository{
			URL:    "https://github.com/panbanda/livewalk",
			Source: "github",
		},
		Packages: []Package{
			{
				RegistryType: "oci",
				Identifier:   "ghcr.io/panbanda/livewalk:" + version,
				RuntimeArguments: []Argument{
					{Type: "named", Name: "-v", Value: "{firmware_dir}:/src", Description: "Firmware checkout to walk"},
					{Type: "named", Name: "-w", Value: "/src"},
				},
				PackageArguments:     []Argument{{Type: "positional", Value: "mcp"}},
				EnvironmentVariables: []EnvVariable{configEnv},
				Transport:            stdio,
			},
		},
	}

	return json.MarshalIndent(manifest, "", "  ")
}
