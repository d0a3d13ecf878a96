package tender

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	voltageRe    = regexp.MustCompile(`(?i)(\d+)\s*k?v\b`)
	lengthKMRe   = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*km`)
	lengthMeterR = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*meters?`)
	coresRe      = regexp.MustCompile(`(?i)(\d+)[-\s]?core`)
	indianStdRe  = regexp.MustCompile(`(?i)\bis\s*\d+`)
	britishStdRe = regexp.MustCompile(`(?i)\bbs\b`)
)

// DefaultStandard is assumed when the text names none.
const DefaultStandard = "IS 7098"

func ExtractCableType(text string) string {
	switch {
	case strings.Contains(text, "xlpe"):
		return "XLPE"
	case strings.Contains(text, "pvc"):
		return "PVC"
	case strings.Contains(text, "armored"), strings.Contains(text, "armoured"):
		return "Armored"
	default:
		return "General"
	}
}

// ExtractVoltage returns the first voltage mention as written (e.g. "11kv"), or "".
func ExtractVoltage(text string) string {
	return voltageRe.FindString(text)
}

// ExtractLength returns the required length in kilometres, or 0.
func ExtractLength(text string) float64 {
	if m := lengthKMRe.FindStringSubmatch(text); m != nil {
		v, _ := strconv.ParseFloat(m[1], 64)
		return v
	}
	if m := lengthMeterR.FindStringSubmatch(text); m != nil {
		v, _ := strconv.ParseFloat(m[1], 64)
		return v / 1000
	}
	return 0
}

func ExtractConductorMaterial(text string) string {
	if strings.Contains(text, "aluminum") || strings.Contains(text, "aluminium") {
		return "Aluminum"
	}
	return "Copper"
}

func ExtractInsulationType(text string) string {
	switch {
	case strings.Contains(text, "xlpe"):
		return "XLPE"
	case strings.Contains(text, "pvc"):
		return "PVC"
	case strings.Contains(text, "epr"):
		return "EPR"
	default:
		return "XLPE"
	}
}

func ExtractArmoring(text string) string {
	if strings.Contains(text, "armor") || strings.Contains(text, "armour") {
		return "Armored"
	}
	return "Unarmored"
}

func ExtractCores(text string) string {
	if m := coresRe.FindStringSubmatch(text); m != nil {
		return m[1] + "-core"
	}
	return "3-core"
}

func ExtractStandards(text string) []string {
	var standards []string
	if indianStdRe.MatchString(text) {
		standards = append(standards, "IS 7098")
	}
	if strings.Contains(text, "iec") {
		standards = append(standards, "IEC 60502")
	}
	if britishStdRe.MatchString(text) {
		standards = append(standards, "BS 6622")
	}
	if len(standards) == 0 {
		return []string{DefaultStandard}
	}
	return standards
}

// ExtractTestRequirements lists the tests a tender text asks for, in a fixed order.
func ExtractTestRequirements(text string) []string {
	containsAny := func(keys ...string) bool {
		for _, k := range keys {
			if strings.Contains(text, k) {
				return true
			}
		}
		return false
	}

	var tests []string
	if containsAny("routine test", "acceptance test") {
		tests = append(tests, "Routine tests as per applicable standards")
	}
	if containsAny("type test", "qualification") {
		tests = append(tests, "Type tests for product qualification")
	}
	if containsAny("voltage", "dielectric", "withstand") {
		tests = append(tests, "High voltage withstand test")
	}
	if containsAny("conductor resistance", "dc resistance") {
		tests = append(tests, "DC resistance measurement")
	}
	if strings.Contains(text, "insulation resistance") {
		tests = append(tests, "Insulation resistance test")
	}
	if strings.Contains(text, "partial discharge") {
		tests = append(tests, "Partial discharge test")
	}

	tests = append(tests,
		"Visual inspection and dimensional check",
		"Mechanical tests (tensile, elongation)",
	)

	if standards := ExtractStandards(text); len(standards) > 0 {
		tests = append(tests, fmt.Sprintf("Tests as per %s", standards[0]))
	}

	return tests
}
