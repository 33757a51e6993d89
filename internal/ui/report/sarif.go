package report

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"scopecheck/internal/core/app"
	"scopecheck/internal/engine/resolver"
	"scopecheck/internal/shared/version"
)

// SARIF v2.1.0 schema – see https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json

const (
	sarifSchema  = "https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json"
	sarifVersion = "2.1.0"

	ruleIDAlreadyDeclared = "SCOPE001"
	ruleIDUndeclared      = "SCOPE002"
	ruleIDShadowed        = "SCOPE003"
)

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

var sarifRules = map[resolver.Kind]sarifRule{
	resolver.KindAlreadyDeclared: {
		ID:               ruleIDAlreadyDeclared,
		Name:             "AlreadyDeclared",
		ShortDescription: sarifMessage{Text: "A name was declared twice in the same scope and namespace."},
		DefaultConfig:    sarifRuleDefaultConfig{Level: "error"},
	},
	resolver.KindUndeclared: {
		ID:               ruleIDUndeclared,
		Name:             "UndeclaredIdentifier",
		ShortDescription: sarifMessage{Text: "An identifier does not resolve in any enclosing scope."},
		DefaultConfig:    sarifRuleDefaultConfig{Level: "error"},
	},
	resolver.KindShadowed: {
		ID:               ruleIDShadowed,
		Name:             "ShadowedDeclaration",
		ShortDescription: sarifMessage{Text: "A declaration hides one from an enclosing scope."},
		DefaultConfig:    sarifRuleDefaultConfig{Level: "note"},
	},
}

// GenerateSARIF builds a SARIF v2.1.0 document from a report. File URIs are
// made relative to projectRoot when possible.
func GenerateSARIF(projectRoot string, r *app.Report) ([]byte, error) {
	seen := make(map[resolver.Kind]bool)
	rules := make([]sarifRule, 0, len(sarifRules))
	results := make([]sarifResult, 0, len(r.Diagnostics))

	for _, d := range r.Diagnostics {
		rule, ok := sarifRules[d.Kind]
		if !ok {
			continue
		}
		if !seen[d.Kind] {
			seen[d.Kind] = true
			rules = append(rules, rule)
		}

		loc := sarifLocation{
			PhysicalLocation: sarifPhysicalLocation{
				ArtifactLocation: sarifArtifactLocation{
					URI:       relativeURI(projectRoot, d.Location.File),
					URIBaseID: "%SRCROOT%",
				},
			},
		}
		if d.Location.Line > 0 {
			loc.PhysicalLocation.Region = &sarifRegion{
				StartLine:   d.Location.Line,
				StartColumn: d.Location.Column,
			}
		}
		results = append(results, sarifResult{
			RuleID:    rule.ID,
			Level:     rule.DefaultConfig.Level,
			Message:   sarifMessage{Text: d.Message},
			Locations: []sarifLocation{loc},
		})
	}

	report := sarifReport{
		Schema:  sarifSchema,
		Version: sarifVersion,
		Runs: []sarifRun{
			{
				Tool: sarifTool{
					Driver: sarifDriver{
						Name:    "scopecheck",
						Version: version.Version,
						Rules:   rules,
					},
				},
				Results: results,
			},
		},
	}

	return json.MarshalIndent(report, "", "  ")
}

// relativeURI converts filePath to a forward-slash URI relative to
// projectRoot. Paths outside projectRoot are kept as they are.
func relativeURI(projectRoot, filePath string) string {
	if projectRoot != "" {
		absRoot, errRoot := filepath.Abs(projectRoot)
		absFile, errFile := filepath.Abs(filePath)
		if errRoot == nil && errFile == nil {
			if rel, err := filepath.Rel(absRoot, absFile); err == nil && !strings.HasPrefix(rel, "..") {
				filePath = rel
			}
		}
	}
	return filepath.ToSlash(filePath)
}
