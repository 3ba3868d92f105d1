package pb

// TrafficType filters live feed results by airborne/ground state.
type TrafficType int32

const (
	TrafficType_NONE          TrafficType = 0
	TrafficType_GROUND_ONLY   TrafficType = 1
	TrafficType_AIRBORNE_ONLY TrafficType = 2
	TrafficType_ALL           TrafficType = 3
)

var (
	TrafficType_name = map[int32]string{
		0: "NONE",
		1: "GROUND_ONLY",
		2: "AIRBORNE_ONLY",
		3: "ALL",
	}
	TrafficType_value = map[string]int32{
		"NONE":          0,
		"GROUND_ONLY":   1,
		"AIRBORNE_ONLY": 2,
		"ALL":           3,
	}
)

func (t TrafficType) String() string {
	return enumString(TrafficType_name, int32(t))
}

// ParseTrafficType parses a name (case insensitive) or number.
func ParseTrafficType(s string) (TrafficType, error) {
	return parseEnum[TrafficType]("TrafficType", TrafficType_value, s)
}

// DataSource identifies the receiver network a position came from.
type DataSource int32

const (
	DataSource_ADSB              DataSource = 0
	DataSource_MLAT              DataSource = 1
	DataSource_FLARM             DataSource = 2
	DataSource_FAA               DataSource = 3
	DataSource_ESTIMATED         DataSource = 4
	DataSource_SATELLITE         DataSource = 5
	DataSource_OTHER_DATA_SOURCE DataSource = 6
	DataSource_UAT               DataSource = 7
	DataSource_SPIDERTRACKS      DataSource = 8
	DataSource_AUS               DataSource = 9
)

var (
	DataSource_name = map[int32]string{
		0: "ADSB",
		1: "MLAT",
		2: "FLARM",
		3: "FAA",
		4: "ESTIMATED",
		5: "SATELLITE",
		6: "OTHER_DATA_SOURCE",
		7: "UAT",
		8: "SPIDERTRACKS",
		9: "AUS",
	}
	DataSource_value = map[string]int32{
		"ADSB":              0,
		"MLAT":              1,
		"FLARM":             2,
		"FAA":               3,
		"ESTIMATED":         4,
		"SATELLITE":         5,
		"OTHER_DATA_SOURCE": 6,
		"UAT":               7,
		"SPIDERTRACKS":      8,
		"AUS":               9,
	}
)

func (s DataSource) String() string {
	return enumString(DataSource_name, int32(s))
}

// ParseDataSource parses a name (case insensitive) or number.
func ParseDataSource(s string) (DataSource, error) {
	return parseEnum[DataSource]("DataSource", DataSource_value, s)
}
