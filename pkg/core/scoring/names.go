package scoring

// entityNames maps LEI to a readable institution name for prompts and
// reports. Entities outside the directory fall back to a LEI prefix.
var entityNames = map[string]string{
	"5UMCZOEYKCVFAW8ZLO05": "Alpha Bank",
	"K8MS7FD7N5Z2WQ51AZ71": "Santander",
	"PSNL19R2RXX5U3QWHI44": "Banco BPM",
	"M6AD1Y1KW32H8THQ6F76": "Eurobank",
	"5493008QOCP58OLEN998": "Belfius",
	"7CUNS533WID6K7DGFI87": "Sabadell",
	"J48C8PCSJVUBR8KCW529": "Mediobanca",
	"851WYGNLUQLFZBSYGB56": "DZ Bank",
	"95980020140005881190": "Abanca",
	"529900HNOAA1KXQJUQ27": "pbb",
	"5493006QMFDDMYWIAM13": "BBVA",
	"549300HFEHJOXGE4ZE63": "Arkea",
	"815600E4E6DCD2D25E30": "Intesa Sanpaolo",
	"549300OLBL49CW8CT155": "Ibercaja",
	"549300RG3H390KEL8896": "Banca Transilvania",
	"5493000LKS7B3UTF7H35": "PKO Bank Polski",
	"3H0Q3U74FVFED2SHZT16": "OTP Bank",
	"3157002JBFAI478MD587": "Tatra Banka",
	"213800A1O379I6DMCU10": "APS Bank",
	"J4CP7MHCXR8DAQMKIL78": "Credem",
	"815600AD83B2B6317788": "Banca MPS",
	"NNVPP80YIZGEY2314M97": "BPER Banca",
	"FR9695005MSX1OYEMGDF": "BPCE Group",
	"BFXS5XCH7N0Y05NIXW11": "ABN AMRO",
	"VWMYAEQSTOPNV0SUGU82": "Unicaja",
	"635400AKJBGNS5WNQL34": "AIB Group",
	"LOO0AWXR8GF142JCO404": "Mediocredito Centrale",
	"96950001WI712W7PQG45": "Caisse des Depots",
	"529900HEKOENJHPNN480": "Alandsbanken",
	"7LVZJ6XRIE7VNZ4UBX81": "Banca Galileo",
	"213800TC9PZRBHMJW403": "Bank of Valletta",
	"H0YX5LBGKDVOWCXBZ594": "Swedbank",
	"815600DDCE9083CAC598": "Banca Patavina",
	"549300IQZVZ949N37S44": "Crelan",
	"259400YLRTOBISHBVX41": "Bank Pekao",
}

// EntityName resolves a LEI to its directory name, or a shortened LEI when
// unknown.
func EntityName(lei string) string {
	if name, ok := entityNames[lei]; ok {
		return name
	}
	if len(lei) > 12 {
		return lei[:12]
	}
	return lei
}
