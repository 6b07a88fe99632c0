package compare

import (
	"math"

	json "github.com/goccy/go-json"
	"github.com/rgehrsitz/planscore/internal/calculation"
)

// JSONFormatter formats comparison results as JSON
type JSONFormatter struct {
	Pretty bool // If true, format with indentation
}

// planJSON adds the expected log wealth, which is null when it is -Inf
type planJSON struct {
	PlanResult
	LogWealth *float64 `json:"expectedLogWealth"`
}

type resultJSON struct {
	Profile            ProfileSummary     `json:"profile"`
	ScenarioSetName    string             `json:"scenarioSetName"`
	ScenarioSetVersion string             `json:"scenarioSetVersion"`
	Policy             calculation.Policy `json:"policy"`
	Ranked             []planJSON         `json:"ranked"`
	Failed             []PlanFailure      `json:"failed"`
	Recommendations    []string           `json:"recommendations"`
	ConfigPath         string             `json:"configPath,omitempty"`
}

// Format generates JSON output for comparison results
func (jf *JSONFormatter) Format(result *ComparisonResult) (string, error) {
	doc := resultJSON{
		Profile:            result.Profile,
		ScenarioSetName:    result.ScenarioSetName,
		ScenarioSetVersion: result.ScenarioSetVersion,
		Policy:             result.Policy,
		Ranked:             make([]planJSON, 0, len(result.Ranked)),
		Failed:             result.Failed,
		Recommendations:    result.Recommendations,
		ConfigPath:         result.ConfigPath,
	}
	for _, r := range result.Ranked {
		p := planJSON{PlanResult: r}
		if !math.IsInf(r.ExpectedLogWealth, 0) && !math.IsNaN(r.ExpectedLogWealth) {
			v := r.ExpectedLogWealth
			p.LogWealth = &v
		}
		doc.Ranked = append(doc.Ranked, p)
	}

	var data []byte
	var err error

	if jf.Pretty {
		data, err = json.MarshalIndent(doc, "", "  ")
	} else {
		data, err = json.Marshal(doc)
	}

	if err != nil {
		return "", err
	}

	return string(data), nil
}
