package schedule

// Airline names as printed on the arrivals and departures panels
var airlineNameToIATA = map[string]string{
	"AMERICAN AIRLINES":  "AA",
	"SOUTHWEST AIRLINES": "WN",
	"DELTA AIR LINES":    "DL",
	"UNITED AIRLINES":    "UA",
	"ALASKA AIRLINES":    "AS",
	"FRONTIER AIRLINES":  "F9",
	"SPIRIT AIRLINES":    "NK",
	"JETBLUE AIRWAYS":    "B6",
	"ALLEGIANT AIR":      "G4",
	"HAWAIIAN AIRLINES":  "HA",
	"VIRGIN AMERICA":     "VX",
	"WESTJET":            "WS",
	"AIR CANADA":         "AC",
	"VOLARIS":            "Y4",
	"INTERJET":           "4O",
	"BRITISH AIRWAYS":    "BA",
	"LUFTHANSA":          "LH",
	"EDELWEISS AIR":      "WK",
}

var iataToICAO = map[string]string{
	"WN": "SWA",
	"DL": "DAL",
	"AA": "AAL",
	"UA": "UAL",
	"AS": "ASA",
	"F9": "FFT",
	"NK": "NKS",
	"B6": "JBU",
	"G4": "AAY",
}
