package config

// DefaultClassifier returns the tuned thresholds used when the config leaves them unset
func DefaultClassifier() ClassifierConfig {
	return ClassifierConfig{
		MinGroundSpeedKts: 130,
		MaxAltitudeFt:     15000,

		ArrivalMaxAltitudeFt:   15000,
		ArrivalMaxDistanceKm:   60,
		ArrivalMaxHeadingDiff:  120,
		DepartureMaxAltitudeFt: 10000,
		DepartureMaxDistanceKm: 30,

		SatelliteRadiusKm:      5,
		SatelliteMaxAltitudeFt: 5000,

		NorthernLatitude:      36.15,
		NorthernMaxAltitudeFt: 6000,

		UnknownRouteFallback:          false,
		UnknownRouteMinRateFPM:        100,
		UnknownRouteArrivalMaxAltFt:   12000,
		UnknownRouteDepartureMaxAltFt: 10000,

		RunwayMaxDistanceKm:  40,
		RunwayMaxAltitudeFt:  7000,
		RunwayMaxHeadingDiff: 90,

		IgnoredTypes: []string{
			// Helicopters
			"A109", "A119", "A129", "A139", "A169", "A189", "AS32", "AS35", "AS55", "AS65",
			"B105", "B407", "B412", "B427", "B429", "B430", "EC20", "EC25", "EC30", "EC35",
			"EC45", "EC55", "H47", "H60", "MD52", "MD60", "MD90", "R22", "R44", "R66",
			"S76", "S92", "B505", "H125", "H130", "H135", "H145", "H160", "H175", "H225",
			// Light aircraft
			"C150", "C152", "C172", "C182", "C206", "C208", "C210", "C310", "C337", "P28A",
			"P28R", "P32R", "P46T", "BE33", "BE35", "BE36", "BE55", "BE58", "M20P", "M20T",
			"SR20", "SR22", "DA40", "DA42", "DA62", "PC6T", "PC12", "TBM7", "TBM8", "TBM9",
			"SF50", "PA46", "PA34", "PA31", "BN2P", "GA8", "DHC2", "DHC3", "DHC6",
			"C421", "T206",
		},
		IgnoredPrefixes: []string{
			// Helicopter families
			"A1", "AS", "B4", "EC", "H1", "H2", "MD", "R2", "R4", "R6", "S7", "S9", "H",
			// Light aircraft families
			"C1", "C2", "P2", "SR", "BE", "M20", "DA", "PC", "TBM", "PA", "BN2", "GA", "DHC", "C4", "T2",
		},
	}
}

// DefaultPoll returns the stock cadence: 20 s in the peak and mid-day
// windows, 90 s overnight
func DefaultPoll() PollConfig {
	return PollConfig{
		PeakIntervalSecs:   20,
		MidDayIntervalSecs: 20,
		NightIntervalSecs:  90,
		PeakWindows:        []HourRange{{Start: 6, End: 10}, {Start: 16, End: 21}},
		MidDayWindows:      []HourRange{{Start: 10, End: 16}, {Start: 21, End: 24}},
	}
}
