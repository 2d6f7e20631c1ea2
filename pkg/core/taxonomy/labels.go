package taxonomy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Labels holds the static enumerated label tables and classification sets
// used while decoding the taxonomy. Loaded once at process start and passed
// explicitly into Build; fixtures can substitute alternate tables.
type Labels struct {
	Sectors map[string]string `yaml:"sectors"`
	Columns map[string]string `yaml:"columns"`
	Fossil  []string          `yaml:"fossil_sectors"`

	fossilSet map[string]bool
}

// DefaultLabels returns the built-in tables: NACE Rev 2 sector labels,
// K_41.00 column labels, and the 7-member CPRS fossil-fuel sector set
// (Battiston et al. 2017 classification, adopted by the EBA ITS).
func DefaultLabels() Labels {
	l := Labels{
		Sectors: map[string]string{
			"x12": "Total - Sectors NOT contributing highly to climate change",
			"x13": "Total - Sectors contributing highly to climate change",
			"x10": "Other sectors (households, public admin, education, health, etc.)",
			"A":   "Agriculture, forestry and fishing (NACE A)",
			"B":   "Mining and quarrying - TOTAL (NACE B)",
			"B5":  "Mining of coal and lignite (NACE 05)",
			"B6":  "Extraction of crude petroleum and natural gas (NACE 06)",
			"B7":  "Mining of metal ores (NACE 07)",
			"B8":  "Other mining and quarrying (NACE 08)",
			"B9":  "Mining support service activities (NACE 09)",
			"C":   "Manufacturing - TOTAL (NACE C)",
			"C10": "Manufacture of food products (NACE 10)",
			"C11": "Manufacture of beverages (NACE 11)",
			"C12": "Manufacture of tobacco products (NACE 12)",
			"C13": "Manufacture of textiles (NACE 13)",
			"C14": "Manufacture of wearing apparel (NACE 14)",
			"C15": "Manufacture of leather products (NACE 15)",
			"C16": "Manufacture of wood products (NACE 16)",
			"C17": "Manufacture of paper (NACE 17)",
			"C18": "Printing and reproduction of recorded media (NACE 18)",
			"C19": "Manufacture of coke and refined petroleum products (NACE 19)",
			"C20": "Manufacture of chemicals (NACE 20)",
			"C21": "Manufacture of pharmaceuticals (NACE 21)",
			"C22": "Manufacture of rubber and plastics (NACE 22)",
			"C23": "Manufacture of non-metallic mineral products (NACE 23)",
			"C24": "Manufacture of basic metals (NACE 24)",
			"C25": "Manufacture of fabricated metal products (NACE 25)",
			"C26": "Manufacture of computer and electronic products (NACE 26)",
			"C27": "Manufacture of electrical equipment (NACE 27)",
			"C28": "Manufacture of machinery and equipment (NACE 28)",
			"C29": "Manufacture of motor vehicles (NACE 29)",
			"C30": "Manufacture of other transport equipment (NACE 30)",
			"C31": "Manufacture of furniture (NACE 31)",
			"C32": "Other manufacturing (NACE 32)",
			"C33": "Repair and installation of machinery (NACE 33)",
			"D":   "Electricity, gas, steam and air conditioning supply - TOTAL (NACE D)",
			"D35_1":  "Electricity, gas and steam supply - subsection (NACE 35.1 group)",
			"D35_11": "Electric power generation from renewables (NACE 35.11)",
			"D35_2":  "Manufacture of gas; distribution of gaseous fuels (NACE 35.2)",
			"D35_3":  "Steam and air conditioning supply (NACE 35.3)",
			"E":   "Water supply; sewerage, waste management (NACE E)",
			"F":   "Construction - TOTAL (NACE F)",
			"F41": "Construction of buildings (NACE 41)",
			"F42": "Civil engineering (NACE 42)",
			"F43": "Specialised construction activities (NACE 43)",
			"G":      "Wholesale and retail trade - TOTAL (NACE G)",
			"G46_71": "Wholesale of solid, liquid and gaseous fuels (NACE 46.71)",
			"G47_3":  "Retail sale of automotive fuel (NACE 47.3)",
			"H":     "Transportation and storage - TOTAL (NACE H)",
			"H49":   "Land transport and transport via pipelines (NACE 49)",
			"H49_5": "Transport via pipeline (NACE 49.5)",
			"H50":   "Water transport (NACE 50)",
			"H51":   "Air transport (NACE 51)",
			"H52":   "Warehousing and support for transportation (NACE 52)",
			"H53":   "Postal and courier activities (NACE 53)",
			"I":     "Accommodation and food service activities (NACE I)",
			"J":     "Information and communication (NACE J)",
			"K":     "Financial and insurance activities (NACE K)",
			"L":     "Real estate activities (NACE L)",
			"M":     "Professional, scientific and technical activities (NACE M)",
			"N":     "Administrative and support service activities (NACE N)",
		},
		Columns: map[string]string{
			"c0010": "Gross carrying amount - TOTAL",
			"c0020": "Of which: performing",
			"c0030": "Of which: past due > 30 days",
			"c0040": "Of which: non-performing",
			"c0050": "Of which: subject to impairment",
			"c0060": "Accumulated impairment",
			"c0070": "Net carrying amount",
			"c0080": "Of which: fossil fuel related",
			"c0090": "Of which: subject to transition risk",
			"c0100": "Number of obligors",
			"c0110": "Of which: SMEs",
			"c0120": "Weighted average maturity",
			"c0130": "Of which: <= 5 years",
			"c0140": "Of which: > 5 years and <= 10 years",
			"c0150": "Of which: > 10 years and <= 20 years",
			"c0160": "Of which: > 20 years",
		},
		Fossil: []string{"B5", "B6", "C19", "D35_2", "G46_71", "G47_3", "H49_5"},
	}
	l.index()
	return l
}

// LoadLabels reads a YAML override file with the same structure as the
// defaults. Intended for fixtures and future taxonomy versions.
func LoadLabels(path string) (Labels, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Labels{}, fmt.Errorf("failed to read labels file: %w", err)
	}
	var l Labels
	if err := yaml.Unmarshal(data, &l); err != nil {
		return Labels{}, fmt.Errorf("failed to parse labels file: %w", err)
	}
	l.index()
	return l, nil
}

func (l *Labels) index() {
	l.fossilSet = make(map[string]bool, len(l.Fossil))
	for _, code := range l.Fossil {
		l.fossilSet[code] = true
	}
}

// SectorLabel returns the human label for a NACE sector code. Unknown
// codes get a synthesized placeholder so the build never fails on a label.
func (l Labels) SectorLabel(code string) string {
	if label, ok := l.Sectors[code]; ok {
		return label
	}
	return fmt.Sprintf("Unknown NAC: %s", code)
}

// ColumnLabel returns the human label for a column code, or the code
// itself when unknown.
func (l Labels) ColumnLabel(code string) string {
	if label, ok := l.Columns[code]; ok {
		return label
	}
	return code
}

// IsFossil reports whether a NACE sector code belongs to the CPRS
// fossil-fuel set.
func (l Labels) IsFossil(code string) bool {
	return l.fossilSet[code]
}
