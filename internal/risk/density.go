package risk

import (
	"fmt"
	"strconv"
	"strings"

	"energydocs-backend/internal/facts"
)

// minDensityMWPerAcre is 4 kW per acre, below which land use looks inefficient.
const minDensityMWPerAcre = 0.004

// DensityFlag computes capacity per unit area and flags unusually sparse
// projects. Area sizes arrive as free text ("approx. 850 acres"), so the check
// silently skips when the capacity is unparsed, the area carries no acre unit,
// or no usable number can be pulled out of it.
func DensityFlag(f *facts.ProjectFacts) (string, bool) {
	if f == nil || !f.CapacityMW.Valid || f.ProjectAreaSize == nil {
		return "", false
	}
	area := strings.ToLower(*f.ProjectAreaSize)
	if !strings.Contains(area, "acre") {
		return "", false
	}
	acres, ok := extractNumber(area)
	if !ok || acres <= 0 {
		return "", false
	}
	density := f.CapacityMW.Value / acres
	if density >= minDensityMWPerAcre {
		return "", false
	}
	return fmt.Sprintf("LOW_DENSITY: Project density is %.3f MW/acre, which may indicate land use inefficiency", density), true
}

func extractNumber(s string) (float64, bool) {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	v, err := strconv.ParseFloat(b.String(), 64)
	return v, err == nil
}
