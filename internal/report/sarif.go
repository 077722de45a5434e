package report

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"arch4u/internal/engine/rules"
	"arch4u/internal/shared/util"
)

// SARIF v2.1.0 schema – see https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json

const (
	sarifSchema  = "https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json"
	sarifVersion = "2.1.0"

	toolName    = "arch4u"
	toolVersion = "1.0.0"
)

// sarifReport is the top-level SARIF document.
type sarifReport struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version"`
	Rules   []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string                 `json:"id"`
	Name             string                 `json:"name"`
	ShortDescription sarifMessage           `json:"shortDescription"`
	DefaultConfig    sarifRuleDefaultConfig `json:"defaultConfiguration"`
}

type sarifRuleDefaultConfig struct {
	Level string `json:"level"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           *sarifRegion          `json:"region,omitempty"`
}

type sarifArtifactLocation struct {
	URI       string `json:"uri"`
	URIBaseID string `json:"uriBaseId"`
}

type sarifRegion struct {
	StartLine   int `json:"startLine,omitempty"`
	StartColumn int `json:"startColumn,omitempty"`
}

// GenerateSARIF builds a SARIF v2.1.0 document from rule violations. File
// URIs are made relative to projectRoot; absolute paths are never included
// so that reports are safe to share.
func GenerateSARIF(projectRoot string, violations []rules.Violation) ([]byte, error) {
	results := make([]sarifResult, 0, len(violations))
	for _, v := range violations {
		msg := fmt.Sprintf("Invocation of prohibited method %q on a variable of type %s", v.Method, v.TargetType)
		result := sarifResult{
			RuleID:  v.Rule,
			Level:   "warning",
			Message: sarifMessage{Text: msg},
		}
		if v.Location.File != "" {
			uri := relativeURI(projectRoot, v.Location.File)
			loc := sarifLocation{
				PhysicalLocation: sarifPhysicalLocation{
					ArtifactLocation: sarifArtifactLocation{
						URI:       uri,
						URIBaseID: "%SRCROOT%",
					},
				},
			}
			if v.Location.Line > 0 {
				loc.PhysicalLocation.Region = &sarifRegion{
					StartLine:   v.Location.Line,
					StartColumn: v.Location.Column,
				}
			}
			result.Locations = []sarifLocation{loc}
		}
		results = append(results, result)
	}

	doc := sarifReport{
		Schema:  sarifSchema,
		Version: sarifVersion,
		Runs: []sarifRun{
			{
				Tool: sarifTool{
					Driver: sarifDriver{
						Name:    toolName,
						Version: toolVersion,
						Rules:   buildSARIFRules(violations),
					},
				},
				Results: results,
			},
		},
	}

	return json.MarshalIndent(doc, "", "  ")
}

// buildSARIFRules returns one rule entry per distinct rule name that fired.
func buildSARIFRules(violations []rules.Violation) []sarifRule {
	byName := make(map[string]bool)
	for _, v := range violations {
		byName[v.Rule] = true
	}
	out := make([]sarifRule, 0, len(byName))
	for _, name := range util.SortedStringKeys(byName) {
		out = append(out, sarifRule{
			ID:               name,
			Name:             "AvoidProhibitedMethodInvocation",
			ShortDescription: sarifMessage{Text: "A prohibited method was invoked on a variable of a flagged type."},
			DefaultConfig:    sarifRuleDefaultConfig{Level: "warning"},
		})
	}
	return out
}

// relativeURI converts an absolute file path to a forward-slash relative URI
// anchored at projectRoot. If the path is already relative or projectRoot is
// empty, the original path (with forward slashes) is returned.
func relativeURI(projectRoot, filePath string) string {
	if projectRoot != "" && filepath.IsAbs(filePath) {
		rel, err := filepath.Rel(projectRoot, filePath)
		if err == nil {
			filePath = rel
		}
	}
	// SARIF URIs use forward slashes.
	return filepath.ToSlash(filePath)
}
