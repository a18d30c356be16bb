package source

import "strings"

// Model registry lifecycle stages are a fixed table, not remote data; a
// tag definition is emitted for each once per pass.
type stageInfo struct {
	name        string
	description string
	colorHex    string
}

var registeredModelStages = [...]stageInfo{
	{
		name:        "Production",
		description: "Production Stage for an ML model in MLflow Model Registry",
		colorHex:    "#308613",
	},
	{
		name:        "Staging",
		description: "Staging Stage for an ML model in MLflow Model Registry",
		colorHex:    "#FACB66",
	},
	{
		name:        "Archived",
		description: "Archived Stage for an ML model in MLflow Model Registry",
		colorHex:    "#5D7283",
	},
	{
		name:        "None",
		description: "None Stage for an ML model in MLflow Model Registry",
		colorHex:    "#F2F4F5",
	},
}

func stageTagName(stageName string) string {
	return platform + "_" + strings.ToLower(stageName)
}
