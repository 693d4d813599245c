package helm

import (
	"fmt"

	"github.com/kroft-dev/kroft/pkg/fsutil"
	helmv4strvals "helm.sh/helm/v4/pkg/strvals"
	"sigs.k8s.io/yaml"
)

// mergeValues assembles the final values map for a chart operation. Sources
// merge in increasing precedence: value files, inline YAML, --set style
// values, JSON values and file-sourced values.
func (c *Client) mergeValues(spec *ChartSpec) (map[string]any, error) {
	merged := map[string]any{}

	for _, filePath := range spec.ValueFiles {
		err := overlayValuesFile(merged, filePath)
		if err != nil {
			return nil, err
		}
	}

	if spec.ValuesYaml != "" {
		var inline map[string]any

		err := yaml.Unmarshal([]byte(spec.ValuesYaml), &inline)
		if err != nil {
			return nil, fmt.Errorf("failed to parse ValuesYaml: %w", err)
		}

		deepMerge(merged, inline)
	}

	for key, val := range spec.SetValues {
		err := helmv4strvals.ParseInto(fmt.Sprintf("%s=%s", key, val), merged)
		if err != nil {
			return nil, fmt.Errorf("failed to parse set value %s=%s: %w", key, val, err)
		}
	}

	for key, val := range spec.SetJSONVals {
		err := helmv4strvals.ParseJSON(fmt.Sprintf("%s=%s", key, val), merged)
		if err != nil {
			return nil, fmt.Errorf("failed to parse JSON value %s=%s: %w", key, val, err)
		}
	}

	for key, filePath := range spec.SetFileVals {
		fileBytes, err := fsutil.ReadFileSafe(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read file value %s: %w", filePath, err)
		}

		err = helmv4strvals.ParseInto(fmt.Sprintf("%s=%s", key, string(fileBytes)), merged)
		if err != nil {
			return nil, fmt.Errorf("failed to parse file value %s: %w", key, err)
		}
	}

	return merged, nil
}

// overlayValuesFile reads a YAML values file and deep merges it into dest.
func overlayValuesFile(dest map[string]any, filePath string) error {
	fileBytes, err := fsutil.ReadFileSafe(filePath)
	if err != nil {
		return fmt.Errorf("failed to read values file %s: %w", filePath, err)
	}

	var parsed map[string]any

	err = yaml.Unmarshal(fileBytes, &parsed)
	if err != nil {
		return fmt.Errorf("failed to parse values file %s as YAML: %w", filePath, err)
	}

	deepMerge(dest, parsed)

	return nil
}

// deepMerge overlays src onto dest, merging nested maps instead of
// replacing them.
func deepMerge(dest, src map[string]any) {
	for key, srcVal := range src {
		srcMap, srcIsMap := srcVal.(map[string]any)
		destMap, destIsMap := dest[key].(map[string]any)

		if srcIsMap && destIsMap {
			deepMerge(destMap, srcMap)

			continue
		}

		dest[key] = srcVal
	}
}
