package matching

import (
	"slices"
	"strings"

	"github.com/spigell/tender-bid/internal/catalog"
	"github.com/spigell/tender-bid/internal/specnorm"
	"github.com/spigell/tender-bid/internal/tender"
)

// Parameter names one of the seven compared attributes.
type Parameter string

const (
	ParamVoltage           Parameter = "voltage"
	ParamCableType         Parameter = "cable_type"
	ParamConductorMaterial Parameter = "conductor_material"
	ParamInsulationType    Parameter = "insulation_type"
	ParamArmoring          Parameter = "armoring"
	ParamCores             Parameter = "cores"
	ParamStandards         Parameter = "standards"
)

// Parameters is the fixed comparison order.
var Parameters = []Parameter{
	ParamVoltage,
	ParamCableType,
	ParamConductorMaterial,
	ParamInsulationType,
	ParamArmoring,
	ParamCores,
	ParamStandards,
}

// RFPSpec is the requested attribute set for one scope item.
type RFPSpec struct {
	Voltage           string   `json:"voltage"`
	CableType         string   `json:"cable_type"`
	ConductorMaterial string   `json:"conductor_material"`
	InsulationType    string   `json:"insulation_type"`
	Armoring          string   `json:"armoring"`
	Cores             string   `json:"cores"`
	Standards         []string `json:"standards"`
}

// BuildRFPSpec merges item-level hints over tender-level requirements.
// Conductor defaults to Copper and insulation to XLPE.
func BuildRFPSpec(item tender.ScopeItem, reqs tender.ProductRequirements) RFPSpec {
	spec := RFPSpec{
		Voltage:           firstNonEmpty(item.Voltage, reqs.Voltage),
		CableType:         firstNonEmpty(item.CableType, reqs.CableType),
		ConductorMaterial: firstNonEmpty(reqs.ConductorMaterial, specnorm.Copper),
		InsulationType:    firstNonEmpty(reqs.InsulationType, specnorm.XLPE),
		Armoring:          reqs.Armoring,
		Cores:             reqs.Cores,
		Standards:         slices.Clone(reqs.Standards),
	}
	return spec
}

// Normalized returns a copy in canonical vocabulary.
func (s RFPSpec) Normalized() RFPSpec {
	out := s
	out.Voltage = specnorm.Voltage(s.Voltage)
	out.CableType = specnorm.Text(s.CableType)
	out.ConductorMaterial = specnorm.Text(s.ConductorMaterial)
	out.InsulationType = specnorm.Text(s.InsulationType)
	out.Armoring = specnorm.Armoring(s.Armoring)
	out.Standards = slices.Clone(s.Standards)
	return out
}

// value returns the scalar form of a parameter, standards joined by ", ".
func (s RFPSpec) value(p Parameter) string {
	switch p {
	case ParamVoltage:
		return s.Voltage
	case ParamCableType:
		return s.CableType
	case ParamConductorMaterial:
		return s.ConductorMaterial
	case ParamInsulationType:
		return s.InsulationType
	case ParamArmoring:
		return s.Armoring
	case ParamCores:
		return s.Cores
	case ParamStandards:
		return strings.Join(s.Standards, ", ")
	}
	return ""
}

func productValue(s catalog.Spec, p Parameter) string {
	switch p {
	case ParamVoltage:
		return s.Voltage
	case ParamCableType:
		return s.CableType
	case ParamConductorMaterial:
		return s.ConductorMaterial
	case ParamInsulationType:
		return s.InsulationType
	case ParamArmoring:
		return s.Armoring
	case ParamCores:
		return s.Cores
	case ParamStandards:
		return strings.Join(s.Standards, ", ")
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
