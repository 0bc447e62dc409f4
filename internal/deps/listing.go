package deps

import (
	"strings"

	"github.com/bitfield/script"
)

// installedNames extracts the package-name column from "pip list" output,
// lower-cased. The header and separator rows are dropped.
func installedNames(listing string) (map[string]bool, error) {
	names, err := script.Echo(listing).Column(1).Slice()
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(names))
	for _, name := range names {
		if name == "Package" || strings.Trim(name, "-") == "" {
			continue
		}
		set[normalizeName(name)] = true
	}
	return set, nil
}

// normalizeName folds case and the -/_/. separators pip treats as equal.
func normalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer("_", "-", ".", "-").Replace(name)
}

// missingMarkers returns the markers that do not appear in installed.
func missingMarkers(installed map[string]bool, markers []string) []string {
	var missing []string
	for _, m := range markers {
		if !installed[normalizeName(m)] {
			missing = append(missing, m)
		}
	}
	return missing
}
