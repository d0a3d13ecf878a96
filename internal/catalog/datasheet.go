package catalog

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	productCodeRe   = regexp.MustCompile(`(?i)Product\s*Code\s*[:：]\s*([A-Z0-9\-]+)`)
	boldCodeRe      = regexp.MustCompile(`(?i)\*\*Product Code\*\*:\s*([A-Z0-9\-]+)`)
	productLineRe   = regexp.MustCompile(`(?i)###\s*Product:\s*(.+)`)
	manufacturerRe  = regexp.MustCompile(`(?m)^#\s*([A-Z][A-Za-z &]+)$`)
	ratedVoltageRe  = regexp.MustCompile(`(?i)Rated Voltage.*?([0-9]{1,3}\s*/?\s*(?:[0-9]{1,3}\s*/)?\s*(\d{1,3})\s*kV)`)
	systemVoltageRe = regexp.MustCompile(`(?i)/\s*(\d{1,3})\s*kV`)
	anyVoltageRe    = regexp.MustCompile(`(?i)(\d{1,3})\s*kV`)
	coresLabelRe    = regexp.MustCompile(`(?i)Number of Cores\s*[:：]\s*([0-9]+\s*-?core)`)
	coresRe         = regexp.MustCompile(`(?i)\b(3-core|4-core)\b`)
	sizeRe          = regexp.MustCompile(`(?i)(\d+\s*sq\.mm)`)
	aluminumRe      = regexp.MustCompile(`(?i)Aluminum|Aluminium`)
	xlpeRe          = regexp.MustCompile(`(?i)XLPE`)
	pvcRe           = regexp.MustCompile(`(?i)\bPVC\b`)
	armourRe        = regexp.MustCompile(`(?i)Armou?r`)
	is7098Re        = regexp.MustCompile(`(?i)IS\s*7098`)
	iec60502Re      = regexp.MustCompile(`(?i)IEC\s*60502`)
	is1554Re        = regexp.MustCompile(`(?i)IS\s*1554`)
	listPriceRe     = regexp.MustCompile(`(?i)List Price\s*[:：]\s*Rs\s*([\d,]+)`)
)

func find(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	if len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(m[0])
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// ParseDatasheet extracts a product from datasheet text. file is used for the
// manufacturer and SKU fallbacks.
func ParseDatasheet(file, text string) Product {
	base := filepath.Base(file)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	sku := firstOf(find(productCodeRe, text), find(boldCodeRe, text))
	if sku == "" {
		h := fnv.New32a()
		_, _ = h.Write([]byte(base))
		sku = fmt.Sprintf("SKU-%d", h.Sum32()%100000)
	}

	manufacturer := find(manufacturerRe, text)
	if manufacturer == "" {
		manufacturer = strings.Split(stem, "_")[0]
	}
	manufacturer = cases.Title(language.English).String(strings.ToLower(strings.TrimSpace(manufacturer)))

	voltage := datasheetVoltage(text)
	cores := firstOf(find(coresLabelRe, text), find(coresRe, text))
	size := find(sizeRe, text)

	material := "Copper"
	if aluminumRe.MatchString(text) {
		material = "Aluminum"
	}

	insulation := "XLPE"
	if !xlpeRe.MatchString(text) && pvcRe.MatchString(text) {
		insulation = "PVC"
	}

	armoring := "Unarmored"
	if armourRe.MatchString(text) {
		armoring = "Armored"
	}

	var standards []string
	if is7098Re.MatchString(text) {
		standards = append(standards, "IS 7098")
	}
	if iec60502Re.MatchString(text) {
		standards = append(standards, "IEC 60502")
	}
	if is1554Re.MatchString(text) {
		standards = append(standards, "IS 1554")
	}
	if len(standards) == 0 {
		standards = []string{"IS 7098"}
	}

	var price float64
	if raw := find(listPriceRe, text); raw != "" {
		price, _ = strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	}

	name := find(productLineRe, text)
	if name == "" {
		name = strings.Join(strings.Fields(strings.Join([]string{voltage, insulation, cores, size}, " ")), " ")
	}

	if voltage == "" {
		voltage = "Unknown"
	}
	if cores == "" {
		cores = "3-core"
	}

	return Product{
		SKU:          sku,
		Name:         name,
		Manufacturer: manufacturer,
		Spec: Spec{
			Voltage:           voltage,
			CableType:         insulation,
			ConductorMaterial: material,
			InsulationType:    insulation,
			Armoring:          armoring,
			Cores:             cores,
			ConductorSize:     size,
			Standards:         standards,
		},
		PricePerMeter: price,
		RawText:       text,
	}
}

// datasheetVoltage prefers the rated voltage line and, for "Uo/U" pairs, the
// system voltage after the slash.
func datasheetVoltage(text string) string {
	rated := find(ratedVoltageRe, text)
	if rated != "" {
		if strings.Contains(rated, "/") {
			if m := systemVoltageRe.FindStringSubmatch(rated); m != nil {
				return m[1] + " kV"
			}
		}
		return rated
	}
	if m := anyVoltageRe.FindStringSubmatch(text); m != nil {
		return m[1] + " kV"
	}
	return ""
}

// HTMLText flattens an HTML datasheet into markdown-like lines so the same
// extraction applies: headings keep their "#" prefix and table rows become
// "label: value".
func HTMLText(raw []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	doc.Find("script, style").Remove()

	var lines []string
	doc.Find("h1, h2, h3, h4, p, li, tr").Each(func(_ int, s *goquery.Selection) {
		switch tag := goquery.NodeName(s); tag {
		case "h1", "h2", "h3", "h4":
			level, _ := strconv.Atoi(tag[1:])
			lines = append(lines, strings.Repeat("#", level)+" "+strings.TrimSpace(s.Text()))
		case "tr":
			var cells []string
			s.Find("th, td").Each(func(_ int, c *goquery.Selection) {
				if v := strings.TrimSpace(c.Text()); v != "" {
					cells = append(cells, v)
				}
			})
			if len(cells) > 0 {
				lines = append(lines, strings.Join(cells, ": "))
			}
		default:
			if v := strings.TrimSpace(s.Text()); v != "" {
				lines = append(lines, v)
			}
		}
	})

	return strings.Join(lines, "\n"), nil
}
