package pb

// LocationBoundaries is a bounding box in degrees.
type LocationBoundaries struct {
	North float32
	South float32
	West  float32
	East  float32
}

func (m *LocationBoundaries) appendFields(e *encoder) {
	e.float32(1, m.North)
	e.float32(2, m.South)
	e.float32(3, m.West)
	e.float32(4, m.East)
}

func (m *LocationBoundaries) Marshal() ([]byte, error) { return marshal(m), nil }

func (m *LocationBoundaries) Unmarshal(b []byte) error {
	*m = LocationBoundaries{}
	d := newDecoder(b)
	for d.next() {
		switch d.num {
		case 1:
			m.North = d.float32()
		case 2:
			m.South = d.float32()
		case 3:
			m.West = d.float32()
		case 4:
			m.East = d.float32()
		default:
			d.skip()
		}
	}
	return d.err
}

// VisibilitySettings restricts which sources and traffic are returned.
type VisibilitySettings struct {
	Sources        []DataSource
	Services       []int32
	TrafficType    TrafficType
	OnlyRestricted bool
}

func (m *VisibilitySettings) appendFields(e *encoder) {
	sources := make([]int32, len(m.Sources))
	for i, s := range m.Sources {
		sources[i] = int32(s)
	}
	e.packedInt32s(1, sources)
	e.packedInt32s(2, m.Services)
	e.int32(3, int32(m.TrafficType))
	e.bool(4, m.OnlyRestricted)
}

func (m *VisibilitySettings) Marshal() ([]byte, error) { return marshal(m), nil }

func (m *VisibilitySettings) Unmarshal(b []byte) error {
	*m = VisibilitySettings{}
	d := newDecoder(b)
	for d.next() {
		switch d.num {
		case 1:
			for _, v := range d.int32s(nil) {
				m.Sources = append(m.Sources, DataSource(v))
			}
		case 2:
			m.Services = d.int32s(m.Services)
		case 3:
			m.TrafficType = TrafficType(d.int32())
		case 4:
			m.OnlyRestricted = d.bool()
		default:
			d.skip()
		}
	}
	return d.err
}

// FieldMask selects optional live feed fields by name.
type FieldMask struct {
	FieldNames []string
}

func (m *FieldMask) appendFields(e *encoder) {
	e.strings(1, m.FieldNames)
}

func (m *FieldMask) Marshal() ([]byte, error) { return marshal(m), nil }

func (m *FieldMask) Unmarshal(b []byte) error {
	*m = FieldMask{}
	d := newDecoder(b)
	for d.next() {
		switch d.num {
		case 1:
			m.FieldNames = append(m.FieldNames, d.string())
		default:
			d.skip()
		}
	}
	return d.err
}

type LiveFeedRequest struct {
	Bounds            *LocationBoundaries
	Settings          *VisibilitySettings
	Stats             bool
	Limit             int32
	MaxAge            int32
	RestrictionMode   RestrictionVisibility
	FieldMask         *FieldMask
	SelectedFlightIDs []uint32
	HighlightMode     bool
}

func (m *LiveFeedRequest) appendFields(e *encoder) {
	if m.Bounds != nil {
		e.message(1, m.Bounds)
	}
	if m.Settings != nil {
		e.message(2, m.Settings)
	}
	e.bool(4, m.Stats)
	e.int32(5, m.Limit)
	e.int32(6, m.MaxAge)
	e.int32(7, int32(m.RestrictionMode))
	if m.FieldMask != nil {
		e.message(8, m.FieldMask)
	}
	e.packedUint32s(9, m.SelectedFlightIDs)
	e.bool(10, m.HighlightMode)
}

func (m *LiveFeedRequest) Marshal() ([]byte, error) { return marshal(m), nil }

func (m *LiveFeedRequest) Unmarshal(b []byte) error {
	*m = LiveFeedRequest{}
	d := newDecoder(b)
	for d.next() {
		switch d.num {
		case 1:
			m.Bounds = new(LocationBoundaries)
			d.message(m.Bounds)
		case 2:
			m.Settings = new(VisibilitySettings)
			d.message(m.Settings)
		case 4:
			m.Stats = d.bool()
		case 5:
			m.Limit = d.int32()
		case 6:
			m.MaxAge = d.int32()
		case 7:
			m.RestrictionMode = RestrictionVisibility(d.int32())
		case 8:
			m.FieldMask = new(FieldMask)
			d.message(m.FieldMask)
		case 9:
			m.SelectedFlightIDs = d.uint32s(m.SelectedFlightIDs)
		case 10:
			m.HighlightMode = d.bool()
		default:
			d.skip()
		}
	}
	return d.err
}

type Route struct {
	From string
	To   string
}

func (m *Route) appendFields(e *encoder) {
	e.string(1, m.From)
	e.string(2, m.To)
}

func (m *Route) Marshal() ([]byte, error) { return marshal(m), nil }

func (m *Route) Unmarshal(b []byte) error {
	*m = Route{}
	d := newDecoder(b)
	for d.next() {
		switch d.num {
		case 1:
			m.From = d.string()
		case 2:
			m.To = d.string()
		default:
			d.skip()
		}
	}
	return d.err
}

// Schedule times are Unix seconds.
type Schedule struct {
	STD uint32
	ETD uint32
	ATD uint32
	STA uint32
	ETA uint32
	ATA uint32
}

func (m *Schedule) appendFields(e *encoder) {
	e.uint32(1, m.STD)
	e.uint32(2, m.ETD)
	e.uint32(3, m.ATD)
	e.uint32(4, m.STA)
	e.uint32(5, m.ETA)
	e.uint32(6, m.ATA)
}

func (m *Schedule) Marshal() ([]byte, error) { return marshal(m), nil }

func (m *Schedule) Unmarshal(b []byte) error {
	*m = Schedule{}
	d := newDecoder(b)
	for d.next() {
		switch d.num {
		case 1:
			m.STD = d.uint32()
		case 2:
			m.ETD = d.uint32()
		case 3:
			m.ATD = d.uint32()
		case 4:
			m.STA = d.uint32()
		case 5:
			m.ETA = d.uint32()
		case 6:
			m.ATA = d.uint32()
		default:
			d.skip()
		}
	}
	return d.err
}

// ExtraFlightInfo carries the fields selected through the request field mask.
type ExtraFlightInfo struct {
	Flight   string
	Reg      string
	Route    *Route
	Type     string
	Squawk   uint32
	VSpeed   int32
	Age      uint32
	LogoID   uint32
	Airspace string
	Schedule *Schedule
}

func (m *ExtraFlightInfo) appendFields(e *encoder) {
	e.string(1, m.Flight)
	e.string(2, m.Reg)
	if m.Route != nil {
		e.message(3, m.Route)
	}
	e.string(4, m.Type)
	e.uint32(5, m.Squawk)
	e.int32(6, m.VSpeed)
	e.uint32(7, m.Age)
	e.uint32(8, m.LogoID)
	e.string(9, m.Airspace)
	if m.Schedule != nil {
		e.message(10, m.Schedule)
	}
}

func (m *ExtraFlightInfo) Marshal() ([]byte, error) { return marshal(m), nil }

func (m *ExtraFlightInfo) Unmarshal(b []byte) error {
	*m = ExtraFlightInfo{}
	d := newDecoder(b)
	for d.next() {
		switch d.num {
		case 1:
			m.Flight = d.string()
		case 2:
			m.Reg = d.string()
		case 3:
			m.Route = new(Route)
			d.message(m.Route)
		case 4:
			m.Type = d.string()
		case 5:
			m.Squawk = d.uint32()
		case 6:
			m.VSpeed = d.int32()
		case 7:
			m.Age = d.uint32()
		case 8:
			m.LogoID = d.uint32()
		case 9:
			m.Airspace = d.string()
		case 10:
			m.Schedule = new(Schedule)
			d.message(m.Schedule)
		default:
			d.skip()
		}
	}
	return d.err
}

// RecentPosition is a position relative to its parent Flight.
type RecentPosition struct {
	DeltaLat int32
	DeltaLon int32
	DeltaMs  uint32
}

func (m *RecentPosition) appendFields(e *encoder) {
	e.int32(1, m.DeltaLat)
	e.int32(2, m.DeltaLon)
	e.uint32(3, m.DeltaMs)
}

func (m *RecentPosition) Marshal() ([]byte, error) { return marshal(m), nil }

func (m *RecentPosition) Unmarshal(b []byte) error {
	*m = RecentPosition{}
	d := newDecoder(b)
	for d.next() {
		switch d.num {
		case 1:
			m.DeltaLat = d.int32()
		case 2:
			m.DeltaLon = d.int32()
		case 3:
			m.DeltaMs = d.uint32()
		default:
			d.skip()
		}
	}
	return d.err
}

type PositionBuffer struct {
	RecentPositions []RecentPosition
}

func (m *PositionBuffer) appendFields(e *encoder) {
	for i := range m.RecentPositions {
		e.message(1, &m.RecentPositions[i])
	}
}

func (m *PositionBuffer) Marshal() ([]byte, error) { return marshal(m), nil }

func (m *PositionBuffer) Unmarshal(b []byte) error {
	*m = PositionBuffer{}
	d := newDecoder(b)
	for d.next() {
		switch d.num {
		case 1:
			var p RecentPosition
			d.message(&p)
			m.RecentPositions = append(m.RecentPositions, p)
		default:
			d.skip()
		}
	}
	return d.err
}

// Flight is a single aircraft position in a live feed.
type Flight struct {
	FlightID       uint32
	Lat            float32
	Lon            float32
	Track          uint32
	Alt            int32
	Speed          uint32
	Icon           int32
	Status         int32
	Timestamp      uint32
	OnGround       bool
	Callsign       string
	Source         DataSource
	ExtraInfo      *ExtraFlightInfo
	PositionBuffer *PositionBuffer
}

func (m *Flight) appendFields(e *encoder) {
	e.uint32(1, m.FlightID)
	e.float32(2, m.Lat)
	e.float32(3, m.Lon)
	e.uint32(4, m.Track)
	e.int32(5, m.Alt)
	e.uint32(6, m.Speed)
	e.int32(7, m.Icon)
	e.int32(8, m.Status)
	e.uint32(9, m.Timestamp)
	e.bool(10, m.OnGround)
	e.string(11, m.Callsign)
	e.int32(12, int32(m.Source))
	if m.ExtraInfo != nil {
		e.message(13, m.ExtraInfo)
	}
	if m.PositionBuffer != nil {
		e.message(14, m.PositionBuffer)
	}
}

func (m *Flight) Marshal() ([]byte, error) { return marshal(m), nil }

func (m *Flight) Unmarshal(b []byte) error {
	*m = Flight{}
	d := newDecoder(b)
	for d.next() {
		switch d.num {
		case 1:
			m.FlightID = d.uint32()
		case 2:
			m.Lat = d.float32()
		case 3:
			m.Lon = d.float32()
		case 4:
			m.Track = d.uint32()
		case 5:
			m.Alt = d.int32()
		case 6:
			m.Speed = d.uint32()
		case 7:
			m.Icon = d.int32()
		case 8:
			m.Status = d.int32()
		case 9:
			m.Timestamp = d.uint32()
		case 10:
			m.OnGround = d.bool()
		case 11:
			m.Callsign = d.string()
		case 12:
			m.Source = DataSource(d.int32())
		case 13:
			m.ExtraInfo = new(ExtraFlightInfo)
			d.message(m.ExtraInfo)
		case 14:
			m.PositionBuffer = new(PositionBuffer)
			d.message(m.PositionBuffer)
		default:
			d.skip()
		}
	}
	return d.err
}

type SourceStats struct {
	Source DataSource
	Count  uint32
}

func (m *SourceStats) appendFields(e *encoder) {
	e.int32(1, int32(m.Source))
	e.uint32(2, m.Count)
}

func (m *SourceStats) Marshal() ([]byte, error) { return marshal(m), nil }

func (m *SourceStats) Unmarshal(b []byte) error {
	*m = SourceStats{}
	d := newDecoder(b)
	for d.next() {
		switch d.num {
		case 1:
			m.Source = DataSource(d.int32())
		case 2:
			m.Count = d.uint32()
		default:
			d.skip()
		}
	}
	return d.err
}

type Stats struct {
	Total   uint32
	Sources []SourceStats
}

func (m *Stats) appendFields(e *encoder) {
	e.uint32(1, m.Total)
	for i := range m.Sources {
		e.message(2, &m.Sources[i])
	}
}

func (m *Stats) Marshal() ([]byte, error) { return marshal(m), nil }

func (m *Stats) Unmarshal(b []byte) error {
	*m = Stats{}
	d := newDecoder(b)
	for d.next() {
		switch d.num {
		case 1:
			m.Total = d.uint32()
		case 2:
			var s SourceStats
			d.message(&s)
			m.Sources = append(m.Sources, s)
		default:
			d.skip()
		}
	}
	return d.err
}

type LiveFeedResponse struct {
	Flights            []Flight
	Stats              *Stats
	SelectedFlightInfo []Flight
	ServerTimeMs       uint64
}

func (m *LiveFeedResponse) appendFields(e *encoder) {
	for i := range m.Flights {
		e.message(1, &m.Flights[i])
	}
	if m.Stats != nil {
		e.message(2, m.Stats)
	}
	for i := range m.SelectedFlightInfo {
		e.message(3, &m.SelectedFlightInfo[i])
	}
	e.uint64(4, m.ServerTimeMs)
}

func (m *LiveFeedResponse) Marshal() ([]byte, error) { return marshal(m), nil }

func (m *LiveFeedResponse) Unmarshal(b []byte) error {
	*m = LiveFeedResponse{}
	d := newDecoder(b)
	for d.next() {
		switch d.num {
		case 1:
			var f Flight
			d.message(&f)
			m.Flights = append(m.Flights, f)
		case 2:
			m.Stats = new(Stats)
			d.message(m.Stats)
		case 3:
			var f Flight
			d.message(&f)
			m.SelectedFlightInfo = append(m.SelectedFlightInfo, f)
		case 4:
			m.ServerTimeMs = d.uint64()
		default:
			d.skip()
		}
	}
	return d.err
}

// PlaybackRequest replays the live feed at a past timestamp.
type PlaybackRequest struct {
	LiveFeedRequest *LiveFeedRequest
	Timestamp       uint32
	Prefetch        uint32
	HFreq           uint32
}

func (m *PlaybackRequest) appendFields(e *encoder) {
	if m.LiveFeedRequest != nil {
		e.message(1, m.LiveFeedRequest)
	}
	e.uint32(2, m.Timestamp)
	e.uint32(3, m.Prefetch)
	e.uint32(4, m.HFreq)
}

func (m *PlaybackRequest) Marshal() ([]byte, error) { return marshal(m), nil }

func (m *PlaybackRequest) Unmarshal(b []byte) error {
	*m = PlaybackRequest{}
	d := newDecoder(b)
	for d.next() {
		switch d.num {
		case 1:
			m.LiveFeedRequest = new(LiveFeedRequest)
			d.message(m.LiveFeedRequest)
		case 2:
			m.Timestamp = d.uint32()
		case 3:
			m.Prefetch = d.uint32()
		case 4:
			m.HFreq = d.uint32()
		default:
			d.skip()
		}
	}
	return d.err
}

type PlaybackResponse struct {
	LiveFeedResponse *LiveFeedResponse
}

func (m *PlaybackResponse) appendFields(e *encoder) {
	if m.LiveFeedResponse != nil {
		e.message(1, m.LiveFeedResponse)
	}
}

func (m *PlaybackResponse) Marshal() ([]byte, error) { return marshal(m), nil }

func (m *PlaybackResponse) Unmarshal(b []byte) error {
	*m = PlaybackResponse{}
	d := newDecoder(b)
	for d.next() {
		switch d.num {
		case 1:
			m.LiveFeedResponse = new(LiveFeedResponse)
			d.message(m.LiveFeedResponse)
		default:
			d.skip()
		}
	}
	return d.err
}
