package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/tender-bid/internal/catalog"
	"github.com/spigell/tender-bid/internal/tender"
)

func exactSpec() catalog.Spec {
	return catalog.Spec{
		Voltage:           "11 kV",
		CableType:         "XLPE",
		ConductorMaterial: "Copper",
		InsulationType:    "XLPE",
		Armoring:          "Armored",
		Cores:             "3-core",
		Standards:         []string{"IS 7098", "IEC 60502"},
	}
}

func exactRFP() RFPSpec {
	return RFPSpec{
		Voltage:           "11 kV",
		CableType:         "XLPE",
		ConductorMaterial: "Copper",
		InsulationType:    "XLPE",
		Armoring:          "Armored",
		Cores:             "3-core",
		Standards:         []string{"IS 7098"},
	}
}

func TestScoreEqualWeight(t *testing.T) {
	assert.Equal(t, 100.0, Score(exactRFP(), exactSpec()))
	assert.Equal(t, 0.0, Score(RFPSpec{}, exactSpec()))

	three := RFPSpec{Voltage: "12 kV", CableType: "XLPE", ConductorMaterial: "COPPER", InsulationType: "PVC", Armoring: "Unarmored", Cores: "4-core", Standards: []string{"BS 6622"}}
	assert.Equal(t, 42.86, Score(three, exactSpec()))

	none := RFPSpec{Voltage: "33 kV", CableType: "PVC", ConductorMaterial: "Aluminum", InsulationType: "PVC", Armoring: "Unarmored", Cores: "4-core", Standards: []string{"BS 6622"}}
	assert.Equal(t, 0.0, Score(none, exactSpec()))
}

func TestScoreMissingValuesStayInDenominator(t *testing.T) {
	rfp := exactRFP()
	rfp.Cores = ""
	rfp.Standards = nil
	assert.Equal(t, 71.43, Score(rfp, exactSpec()))
}

func TestBuildRFPSpecDefaults(t *testing.T) {
	spec := BuildRFPSpec(tender.ScopeItem{ItemNo: 1, Voltage: "33kv"}, tender.ProductRequirements{
		Voltage:   "11kv",
		CableType: "xlpe",
		Armoring:  "armoured",
	}).Normalized()

	assert.Equal(t, "33 kV", spec.Voltage)
	assert.Equal(t, "XLPE", spec.CableType)
	assert.Equal(t, "Copper", spec.ConductorMaterial)
	assert.Equal(t, "XLPE", spec.InsulationType)
	assert.Equal(t, "Armored", spec.Armoring)

	empty := BuildRFPSpec(tender.ScopeItem{}, tender.ProductRequirements{}).Normalized()
	assert.Empty(t, empty.Voltage)
	assert.Empty(t, empty.CableType)
	assert.Empty(t, empty.Armoring)
}

func TestCandidatesFallBackToFirstFive(t *testing.T) {
	products := catalog.New("test", catalog.Builtin()).Products()
	rfp := RFPSpec{Voltage: "132 kV", CableType: "EPR"}

	got := Candidates(rfp, products)
	require.Len(t, got, 5)
	assert.Equal(t, products[0].SKU, got[0].SKU)

	rfp = RFPSpec{Voltage: "22 kV", CableType: "EPR"}
	got = Candidates(rfp, products)
	require.Len(t, got, 2)
	assert.Equal(t, "OEM-XLPE-22KV-3C-95", got[0].SKU)
}

func TestComplianceEvidence(t *testing.T) {
	product := catalog.Product{
		SKU:     "P-1",
		Spec:    exactSpec(),
		RawText: "Rated Voltage: 6.35/11 kV\nArmour: galvanised steel wire armored\nConductor: copper",
	}
	rfp := exactRFP()
	rfp.Cores = "4-core"

	items := Compliance(rfp, product)
	require.Len(t, items, 7)

	byParam := map[Parameter]ComplianceItem{}
	for _, it := range items {
		byParam[it.Parameter] = it
	}
	assert.Equal(t, StatusPass, byParam[ParamVoltage].Status)
	assert.Equal(t, "Rated Voltage: 6.35/11 kV", byParam[ParamVoltage].Evidence)
	assert.Equal(t, "Armour: galvanised steel wire armored", byParam[ParamArmoring].Evidence)
	assert.Equal(t, "Conductor: copper", byParam[ParamConductorMaterial].Evidence)
	assert.Equal(t, StatusGap, byParam[ParamCores].Status)
	assert.Equal(t, StatusPass, byParam[ParamStandards].Status)
	assert.Empty(t, byParam[ParamStandards].Evidence)
}

func elevenKVInput(qty float64) Input {
	return Input{
		TenderID: "T-1",
		ProductRequirements: tender.ProductRequirements{
			CableType:         "XLPE",
			Voltage:           "11kv",
			ConductorMaterial: "Copper",
			InsulationType:    "XLPE",
			Armoring:          "Armored",
			Cores:             "3-core",
			Standards:         []string{"IS 7098"},
		},
		ScopeOfSupply: []tender.ScopeItem{{ItemNo: 1, Description: "11kV XLPE cable", Voltage: "11kv", CableType: "XLPE", Quantity: qty, Unit: "km"}},
	}
}

func TestProcessSelectsTopThree(t *testing.T) {
	m := New(catalog.New("builtin", catalog.Builtin()), nil)
	res := m.Process(elevenKVInput(10))

	require.Equal(t, StatusSuccess, res.Status)
	require.Len(t, res.Products, 1)
	item := res.Products[0]
	require.Len(t, item.Top, 3)
	assert.Equal(t, "OEM-XLPE-11KV-3C-185", item.Top[0].SKU)
	assert.Equal(t, 1, item.Top[0].Rank)
	assert.Equal(t, 100.0, item.Top[0].MatchScore)
	assert.Equal(t, "OEM-XLPE-11KV-3C-300", item.Top[1].SKU)
	require.NotNil(t, item.Selected)
	assert.Equal(t, "OEM-XLPE-11KV-3C-185", item.Selected.SKU)
	assert.Len(t, item.Compliance, 7)

	require.Len(t, res.FinalSelection, 1)
	assert.Equal(t, 100.0, res.FinalSelection[0].MatchScore)
	assert.Equal(t, "Item 1: 11kV XLPE cable - 10 km", res.ScopeSummary)
	assert.Empty(t, NewProductRequests("T-1", res, 80))
}

func TestProcessEmptyInputs(t *testing.T) {
	m := New(catalog.New("builtin", catalog.Builtin()), nil)
	in := elevenKVInput(1)
	in.ScopeOfSupply = nil

	res := m.Process(in)
	assert.Equal(t, StatusNoScope, res.Status)
	assert.Empty(t, res.Products)
	assert.Equal(t, "No items in scope", res.ScopeSummary)

	empty := New(catalog.New("none", nil), nil)
	res = empty.Process(elevenKVInput(1))
	assert.Equal(t, StatusNoCatalog, res.Status)
	require.Len(t, res.Products, 1)
	assert.Nil(t, res.Products[0].Selected)
	assert.Empty(t, res.FinalSelection)

	nilCatalog := New(nil, nil)
	res = nilCatalog.Process(elevenKVInput(1))
	assert.Equal(t, StatusNoCatalog, res.Status)
}

func TestNewProductRequests(t *testing.T) {
	products := []catalog.Product{{
		SKU:  "AL-1",
		Name: "33kV Aluminium",
		Spec: catalog.Spec{Voltage: "33 kV", CableType: "XLPE", ConductorMaterial: "Aluminum", InsulationType: "XLPE", Armoring: "Armored", Cores: "3-core", Standards: []string{"IS 7098"}},
	}}
	m := New(catalog.New("test", products), nil)
	in := elevenKVInput(2)
	in.ProductRequirements.Cores = "4-core"

	res := m.Process(in)
	require.NotNil(t, res.Products[0].Selected)
	assert.Equal(t, 57.14, res.Products[0].Selected.MatchScore)

	reqs := NewProductRequests("T-1", res, 80)
	require.Len(t, reqs, 1)
	r := reqs[0]
	assert.Equal(t, "AL-1", r.ClosestSKU)
	assert.Equal(t, RequestRecommendation, r.Recommendation)
	assert.Equal(t, []Gap{
		{Parameter: ParamVoltage, RFP: "11 kV", Closest: "33 kV"},
		{Parameter: ParamConductorMaterial, RFP: "Copper", Closest: "Aluminum"},
		{Parameter: ParamCores, RFP: "4-core", Closest: "3-core"},
	}, r.Gaps)
}
