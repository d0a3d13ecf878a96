package catalog

import "fmt"

var xlpeStandards = []string{"IS 7098", "IEC 60502"}

func xlpeVariant(sku string, kv int, size int, material string, price float64) Product {
	name := fmt.Sprintf("%dkV XLPE 3C %d sq.mm", kv, size)
	if material == "Aluminum" {
		name += " (Aluminum)"
	}
	return Product{
		SKU:          sku,
		Name:         name,
		Manufacturer: "Polycab",
		Spec: Spec{
			Voltage:           fmt.Sprintf("%d kV", kv),
			CableType:         "XLPE",
			ConductorMaterial: material,
			InsulationType:    "XLPE",
			Armoring:          "Armored",
			Cores:             "3-core",
			ConductorSize:     fmt.Sprintf("%d sq.mm", size),
			Standards:         append([]string(nil), xlpeStandards...),
		},
		PricePerMeter: price,
	}
}

// lowVoltageControl guarantees at least one LV product in every catalog.
func lowVoltageControl() Product {
	return Product{
		SKU:          "OEM-PVC-440V-3C-16",
		Name:         "440V PVC Control Cable 3-Core 16 sq.mm",
		Manufacturer: "Generic",
		Spec: Spec{
			Voltage:           "440V",
			CableType:         "PVC",
			ConductorMaterial: "Copper",
			InsulationType:    "PVC",
			Armoring:          "Unarmored",
			Cores:             "3-core",
			ConductorSize:     "16 sq.mm",
			Standards:         []string{"IS 1554"},
		},
		PricePerMeter: 120,
	}
}

// Builtin returns the built-in product variants.
func Builtin() []Product {
	return []Product{
		xlpeVariant("OEM-XLPE-11KV-3C-185", 11, 185, "Copper", 850),
		xlpeVariant("OEM-XLPE-11KV-3C-300", 11, 300, "Copper", 1250),
		xlpeVariant("OEM-XLPE-11KV-3C-240", 11, 240, "Copper", 1050),
		xlpeVariant("OEM-XLPE-33KV-3C-150", 33, 150, "Copper", 1650),
		xlpeVariant("OEM-XLPE-33KV-3C-185", 33, 185, "Copper", 1850),
		xlpeVariant("AL-XLPE-33KV-3C-120", 33, 120, "Aluminum", 1100),
		xlpeVariant("OEM-XLPE-22KV-3C-95", 22, 95, "Copper", 1150),
		xlpeVariant("OEM-XLPE-22KV-3C-120", 22, 120, "Copper", 1250),
		lowVoltageControl(),
	}
}
