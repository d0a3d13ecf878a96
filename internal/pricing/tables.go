package pricing

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/tender-bid/internal/fallback"
	"github.com/spigell/tender-bid/internal/policy"
)

const (
	// DefaultKey is the catch-all entry of a product price table.
	DefaultKey = "DEFAULT"
	// DefaultUnitPrice is used when neither table nor catalog knows a SKU.
	DefaultUnitPrice = 850.0
	// DefaultTestCost is used for tests that match no table entry.
	DefaultTestCost = 5000.0

	productPricesFile = "product_prices"
	testPricesFile    = "test_prices"

	SourceCSV     = "csv"
	SourceJSON    = "json"
	SourceBuiltin = "builtin"
)

var (
	skuColumns       = []string{"sku", "SKU", "product_sku", "product", "code"}
	unitPriceColumns = []string{"unit_price", "price", "rate", "per_meter"}
	testNameColumns  = []string{"test", "name", "test_name"}
	testCostColumns  = []string{"price", "cost", "rate"}
)

// TestPrice is one entry of the services table.
type TestPrice struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// TestTable keeps file order: the first entry contained in a requirement wins.
type TestTable []TestPrice

// Lookup returns the price of the first entry whose lowercased name is a
// substring of the lowercased requirement.
func (t TestTable) Lookup(requirement string) float64 {
	req := strings.ToLower(requirement)
	for _, entry := range t {
		if strings.Contains(req, strings.ToLower(entry.Name)) {
			return entry.Price
		}
	}
	return DefaultTestCost
}

// MarketCosts carries commodity multipliers applied to conductor prices.
type MarketCosts struct {
	CopperMultiplier   float64 `mapstructure:"copper_multiplier" json:"copper_multiplier"`
	AluminumMultiplier float64 `mapstructure:"aluminum_multiplier" json:"aluminum_multiplier"`
	// Loaded is false when no market feed was read.
	Loaded bool `mapstructure:"-" json:"loaded"`
}

// Tables groups every static price source the engine reads.
type Tables struct {
	Products       map[string]float64
	ProductsSource string
	Tests          TestTable
	TestsSource    string
	Market         MarketCosts
}

// DefaultProductPrices is the built-in per-meter price list.
func DefaultProductPrices() map[string]float64 {
	return map[string]float64{
		"OEM-XLPE-11KV-3C-35":  850,
		"OEM-XLPE-11KV-3C-50":  920,
		"OEM-XLPE-11KV-4C-35":  980,
		"KEI-XLPE-11KV-3C-35":  880,
		"OEM-XLPE-22KV-3C-95":  1150,
		"OEM-XLPE-22KV-3C-120": 1250,
		"OEM-XLPE-33KV-3C-120": 1450,
		"OEM-XLPE-33KV-3C-150": 1650,
		"OEM-XLPE-33KV-3C-185": 1850,
		"HAVELLS-33KV-3C-120":  1480,
		"AL-XLPE-33KV-3C-120":  1100,
		"OEM-PVC-440V-3C-16":   120,
		DefaultKey:             DefaultUnitPrice,
	}
}

// DefaultTestPrices is the built-in services table in match order.
func DefaultTestPrices() TestTable {
	return TestTable{
		{Name: "routine", Price: 5000},
		{Name: "type test", Price: 15000},
		{Name: "voltage", Price: 8000},
		{Name: "resistance", Price: 3000},
		{Name: "insulation", Price: 3500},
		{Name: "discharge", Price: 12000},
		{Name: "visual", Price: 2000},
		{Name: "mechanical", Price: 6000},
		{Name: "standard", Price: 5000},
	}
}

// LoadTables reads price tables from dir (CSV first, then JSON, then built-in)
// and market multipliers from marketFile. It never fails.
func LoadTables(dir, marketFile string, logger *zap.Logger) Tables {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("stage", "pricing"))

	products, productsSource, _ := fallback.First(logger,
		fallback.Loader[map[string]float64]{Name: SourceCSV, Load: func() (map[string]float64, error) {
			return readPriceCSV(filepath.Join(dir, productPricesFile+".csv"))
		}},
		fallback.Loader[map[string]float64]{Name: SourceJSON, Load: func() (map[string]float64, error) {
			return readPriceJSON(filepath.Join(dir, productPricesFile+".json"))
		}},
		fallback.Static(SourceBuiltin, DefaultProductPrices()),
	)

	tests, testsSource, _ := fallback.First(logger,
		fallback.Loader[TestTable]{Name: SourceCSV, Load: func() (TestTable, error) {
			return readTestCSV(filepath.Join(dir, testPricesFile+".csv"))
		}},
		fallback.Loader[TestTable]{Name: SourceJSON, Load: func() (TestTable, error) {
			return readTestJSON(filepath.Join(dir, testPricesFile+".json"))
		}},
		fallback.Static(SourceBuiltin, DefaultTestPrices()),
	)

	market := LoadMarketCosts(marketFile, logger)

	logger.Info("price tables loaded",
		zap.String("products_source", productsSource),
		zap.Int("products", len(products)),
		zap.String("tests_source", testsSource),
		zap.Int("tests", len(tests)),
		zap.Bool("market_feed", market.Loaded),
	)

	return Tables{
		Products:       products,
		ProductsSource: productsSource,
		Tests:          tests,
		TestsSource:    testsSource,
		Market:         market,
	}
}

// DefaultTables returns the built-in tables without a market feed.
func DefaultTables() Tables {
	return Tables{
		Products:       DefaultProductPrices(),
		ProductsSource: SourceBuiltin,
		Tests:          DefaultTestPrices(),
		TestsSource:    SourceBuiltin,
		Market:         MarketCosts{CopperMultiplier: 1, AluminumMultiplier: 1},
	}
}

// LoadMarketCosts reads the market feed. Missing multipliers default to 1; an
// unreadable feed leaves Loaded false.
func LoadMarketCosts(path string, logger *zap.Logger) MarketCosts {
	mc := MarketCosts{CopperMultiplier: 1, AluminumMultiplier: 1}
	if strings.TrimSpace(path) == "" {
		return mc
	}

	settings := map[string]any{}
	if err := policy.DecodeFile(path, &settings); err != nil {
		if logger != nil {
			logger.Debug("no market cost feed", zap.String("path", path), zap.Error(err))
		}
		return mc
	}
	if len(settings) == 0 {
		return mc
	}

	if err := policy.Decode(settings, &mc); err != nil {
		if logger != nil {
			logger.Warn("market cost feed ignored", zap.String("path", path), zap.Error(err))
		}
		return MarketCosts{CopperMultiplier: 1, AluminumMultiplier: 1}
	}
	mc.Loaded = true
	return mc
}

func parseAmount(v string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(v, ",", "")), 64)
}

// readRows returns CSV records as header-keyed maps.
func readRows(path string) ([]map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fallback.ErrNoResult
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err == io.EOF {
		return nil, fallback.ErrNoResult
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	var rows []map[string]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(rec) {
				row[strings.TrimSpace(col)] = rec[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// column returns the first non-empty value among the candidate columns.
func column(row map[string]string, names []string) string {
	for _, n := range names {
		if v := strings.TrimSpace(row[n]); v != "" {
			return v
		}
	}
	return ""
}

func readPriceCSV(path string) (map[string]float64, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}

	prices := map[string]float64{}
	for _, row := range rows {
		sku, raw := column(row, skuColumns), column(row, unitPriceColumns)
		if sku == "" || raw == "" {
			continue
		}
		price, err := parseAmount(raw)
		if err != nil {
			continue
		}
		prices[sku] = price
	}
	if len(prices) == 0 {
		return nil, fallback.ErrNoResult
	}
	return prices, nil
}

func readTestCSV(path string) (TestTable, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}

	var table TestTable
	for _, row := range rows {
		name, raw := column(row, testNameColumns), column(row, testCostColumns)
		if name == "" || raw == "" {
			continue
		}
		price, err := parseAmount(raw)
		if err != nil {
			continue
		}
		table = table.set(name, price)
	}
	if len(table) == 0 {
		return nil, fallback.ErrNoResult
	}
	return table, nil
}

// set replaces an existing entry in place or appends a new one.
func (t TestTable) set(name string, price float64) TestTable {
	for i := range t {
		if t[i].Name == name {
			t[i].Price = price
			return t
		}
	}
	return append(t, TestPrice{Name: name, Price: price})
}

func readPriceJSON(path string) (map[string]float64, error) {
	table, err := readOrderedJSON(path)
	if err != nil {
		return nil, err
	}
	prices := make(map[string]float64, len(table))
	for _, e := range table {
		prices[e.Name] = e.Price
	}
	return prices, nil
}

func readTestJSON(path string) (TestTable, error) {
	return readOrderedJSON(path)
}

// readOrderedJSON decodes a flat {"key": number} object keeping key order.
func readOrderedJSON(path string) (TestTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fallback.ErrNoResult
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("parse %s: expected an object", path)
	}

	var table TestTable
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		key, _ := keyTok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		var price float64
		if err := json.Unmarshal(raw, &price); err != nil {
			return nil, fmt.Errorf("parse %s: value of %q: %w", path, key, err)
		}
		table = table.set(key, price)
	}
	if len(table) == 0 {
		return nil, fallback.ErrNoResult
	}
	return table, nil
}
