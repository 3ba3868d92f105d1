package pb

type ImageInfo struct {
	URL       string
	Copyright string
	Thumbnail string
	Medium    string
	Large     string
}

func (m *ImageInfo) appendFields(e *encoder) {
	e.string(1, m.URL)
	e.string(2, m.Copyright)
	e.string(3, m.Thumbnail)
	e.string(4, m.Medium)
	e.string(5, m.Large)
}

func (m *ImageInfo) Marshal() ([]byte, error) { return marshal(m), nil }

func (m *ImageInfo) Unmarshal(b []byte) error {
	*m = ImageInfo{}
	d := newDecoder(b)
	for d.next() {
		switch d.num {
		case 1:
			m.URL = d.string()
		case 2:
			m.Copyright = d.string()
		case 3:
			m.Thumbnail = d.string()
		case 4:
			m.Medium = d.string()
		case 5:
			m.Large = d.string()
		default:
			d.skip()
		}
	}
	return d.err
}

type AircraftInfo struct {
	ICAOAddress     uint32
	Reg             string
	Type            string
	Icon            int32
	FullDescription string
	MSN             string
	Service         int32
	BirthDate       string
	AgeText         string
	Images          []ImageInfo
	IsTestFlight    bool
}

func (m *AircraftInfo) appendFields(e *encoder) {
	e.uint32(1, m.ICAOAddress)
	e.string(2, m.Reg)
	e.string(3, m.Type)
	e.int32(4, m.Icon)
	e.string(5, m.FullDescription)
	e.string(6, m.MSN)
	e.int32(7, m.Service)
	e.string(8, m.BirthDate)
	e.string(9, m.AgeText)
	for i := range m.Images {
		e.message(10, &m.Images[i])
	}
	e.bool(11, m.IsTestFlight)
}

func (m *AircraftInfo) Marshal() ([]byte, error) { return marshal(m), nil }

func (m *AircraftInfo) Unmarshal(b []byte) error {
	*m = AircraftInfo{}
	d := newDecoder(b)
	for d.next() {
		switch d.num {
		case 1:
			m.ICAOAddress = d.uint32()
		case 2:
			m.Reg = d.string()
		case 3:
			m.Type = d.string()
		case 4:
			m.Icon = d.int32()
		case 5:
			m.FullDescription = d.string()
		case 6:
			m.MSN = d.string()
		case 7:
			m.Service = d.int32()
		case 8:
			m.BirthDate = d.string()
		case 9:
			m.AgeText = d.string()
		case 10:
			var img ImageInfo
			d.message(&img)
			m.Images = append(m.Images, img)
		case 11:
			m.IsTestFlight = d.bool()
		default:
			d.skip()
		}
	}
	return d.err
}

// ScheduleInfo times are Unix seconds; airport and airline ids are provider ids.
type ScheduleInfo struct {
	FlightNumber       string
	OperatedByID       uint32
	PaintedAsID        uint32
	OriginID           uint32
	DestinationID      uint32
	DivertedToID       uint32
	ScheduledDeparture uint32
	ScheduledArrival   uint32
	ActualDeparture    uint32
	ActualArrival      uint32
	ArrTerminal        string
	ArrGate            string
	BaggageBelt        string
}

func (m *ScheduleInfo) appendFields(e *encoder) {
	e.string(1, m.FlightNumber)
	e.uint32(2, m.OperatedByID)
	e.uint32(3, m.PaintedAsID)
	e.uint32(4, m.OriginID)
	e.uint32(5, m.DestinationID)
	e.uint32(6, m.DivertedToID)
	e.uint32(7, m.ScheduledDeparture)
	e.uint32(8, m.ScheduledArrival)
	e.uint32(9, m.ActualDeparture)
	e.uint32(10, m.ActualArrival)
	e.string(11, m.ArrTerminal)
	e.string(12, m.ArrGate)
	e.string(13, m.BaggageBelt)
}

func (m *ScheduleInfo) Marshal() ([]byte, error) { return marshal(m), nil }

func (m *ScheduleInfo) Unmarshal(b []byte) error {
	*m = ScheduleInfo{}
	d := newDecoder(b)
	for d.next() {
		switch d.num {
		case 1:
			m.FlightNumber = d.string()
		case 2:
			m.OperatedByID = d.uint32()
		case 3:
			m.PaintedAsID = d.uint32()
		case 4:
			m.OriginID = d.uint32()
		case 5:
			m.DestinationID = d.uint32()
		case 6:
			m.DivertedToID = d.uint32()
		case 7:
			m.ScheduledDeparture = d.uint32()
		case 8:
			m.ScheduledArrival = d.uint32()
		case 9:
			m.ActualDeparture = d.uint32()
		case 10:
			m.ActualArrival = d.uint32()
		case 11:
			m.ArrTerminal = d.string()
		case 12:
			m.ArrGate = d.string()
		case 13:
			m.BaggageBelt = d.string()
		default:
			d.skip()
		}
	}
	return d.err
}

// FlightProgress distances are metres, times are seconds.
type FlightProgress struct {
	TraversedDistance   uint32
	RemainingDistance   uint32
	ElapsedTime         uint32
	RemainingTime       uint32
	ETA                 uint32
	GreatCircleDistance uint32
	MeanFlightTime      uint32
	FlightStage         int32
	DelayStatus         int32
	ProgressPct         int32
}

func (m *FlightProgress) appendFields(e *encoder) {
	e.uint32(1, m.TraversedDistance)
	e.uint32(2, m.RemainingDistance)
	e.uint32(3, m.ElapsedTime)
	e.uint32(4, m.RemainingTime)
	e.uint32(5, m.ETA)
	e.uint32(6, m.GreatCircleDistance)
	e.uint32(7, m.MeanFlightTime)
	e.int32(8, m.FlightStage)
	e.int32(9, m.DelayStatus)
	e.int32(10, m.ProgressPct)
}

func (m *FlightProgress) Marshal() ([]byte, error) { return marshal(m), nil }

func (m *FlightProgress) Unmarshal(b []byte) error {
	*m = FlightProgress{}
	d := newDecoder(b)
	for d.next() {
		switch d.num {
		case 1:
			m.TraversedDistance = d.uint32()
		case 2:
			m.RemainingDistance = d.uint32()
		case 3:
			m.ElapsedTime = d.uint32()
		case 4:
			m.RemainingTime = d.uint32()
		case 5:
			m.ETA = d.uint32()
		case 6:
			m.GreatCircleDistance = d.uint32()
		case 7:
			m.MeanFlightTime = d.uint32()
		case 8:
			m.FlightStage = d.int32()
		case 9:
			m.DelayStatus = d.int32()
		case 10:
			m.ProgressPct = d.int32()
		default:
			d.skip()
		}
	}
	return d.err
}

// ExtendedFlightInfo is the latest position attached to a details response.
type ExtendedFlightInfo struct {
	FlightID    uint32
	Lat         float32
	Lon         float32
	Track       int32
	Alt         int32
	Speed       int32
	TimestampMs uint64
	OnGround    bool
	Callsign    string
	Source      DataSource
	Squawk      uint32
	VSpeed      int32
}

func (m *ExtendedFlightInfo) appendFields(e *encoder) {
	e.uint32(1, m.FlightID)
	e.float32(2, m.Lat)
	e.float32(3, m.Lon)
	e.int32(4, m.Track)
	e.int32(5, m.Alt)
	e.int32(6, m.Speed)
	e.uint64(7, m.TimestampMs)
	e.bool(8, m.OnGround)
	e.string(9, m.Callsign)
	e.int32(10, int32(m.Source))
	e.uint32(11, m.Squawk)
	e.int32(12, m.VSpeed)
}

func (m *ExtendedFlightInfo) Marshal() ([]byte, error) { return marshal(m), nil }

func (m *ExtendedFlightInfo) Unmarshal(b []byte) error {
	*m = ExtendedFlightInfo{}
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
			m.Track = d.int32()
		case 5:
			m.Alt = d.int32()
		case 6:
			m.Speed = d.int32()
		case 7:
			m.TimestampMs = d.uint64()
		case 8:
			m.OnGround = d.bool()
		case 9:
			m.Callsign = d.string()
		case 10:
			m.Source = DataSource(d.int32())
		case 11:
			m.Squawk = d.uint32()
		case 12:
			m.VSpeed = d.int32()
		default:
			d.skip()
		}
	}
	return d.err
}

// TrailPoint is one historical position. SnapshotID is Unix seconds.
type TrailPoint struct {
	SnapshotID uint64
	Lat        float32
	Lon        float32
	Altitude   int32
	Spd        uint32
	Heading    uint32
	VSpd       int32
}

func (m *TrailPoint) appendFields(e *encoder) {
	e.uint64(1, m.SnapshotID)
	e.float32(2, m.Lat)
	e.float32(3, m.Lon)
	e.int32(4, m.Altitude)
	e.uint32(5, m.Spd)
	e.uint32(6, m.Heading)
	e.int32(7, m.VSpd)
}

func (m *TrailPoint) Marshal() ([]byte, error) { return marshal(m), nil }

func (m *TrailPoint) Unmarshal(b []byte) error {
	*m = TrailPoint{}
	d := newDecoder(b)
	for d.next() {
		switch d.num {
		case 1:
			m.SnapshotID = d.uint64()
		case 2:
			m.Lat = d.float32()
		case 3:
			m.Lon = d.float32()
		case 4:
			m.Altitude = d.int32()
		case 5:
			m.Spd = d.uint32()
		case 6:
			m.Heading = d.uint32()
		case 7:
			m.VSpd = d.int32()
		default:
			d.skip()
		}
	}
	return d.err
}

// EMSInfo is enhanced Mode-S telemetry. TS is Unix milliseconds.
type EMSInfo struct {
	TS          uint64
	IAS         int32
	TAS         int32
	Mach        int32
	MCP         int32
	FMS         int32
	Autopilot   int32
	OAT         int32
	Track       int32
	Roll        int32
	QNH         uint32
	WindDir     int32
	WindSpeed   int32
	Precision   uint32
	AltitudeGPS int32
	Emergency   uint32
	TCASACAS    uint32
	Heading     uint32
}

func (m *EMSInfo) appendFields(e *encoder) {
	e.uint64(1, m.TS)
	e.int32(2, m.IAS)
	e.int32(3, m.TAS)
	e.int32(4, m.Mach)
	e.int32(5, m.MCP)
	e.int32(6, m.FMS)
	e.int32(7, m.Autopilot)
	e.int32(8, m.OAT)
	e.int32(9, m.Track)
	e.int32(10, m.Roll)
	e.uint32(11, m.QNH)
	e.int32(12, m.WindDir)
	e.int32(13, m.WindSpeed)
	e.uint32(14, m.Precision)
	e.int32(15, m.AltitudeGPS)
	e.uint32(16, m.Emergency)
	e.uint32(17, m.TCASACAS)
	e.uint32(18, m.Heading)
}

func (m *EMSInfo) Marshal() ([]byte, error) { return marshal(m), nil }

func (m *EMSInfo) Unmarshal(b []byte) error {
	*m = EMSInfo{}
	d := newDecoder(b)
	for d.next() {
		switch d.num {
		case 1:
			m.TS = d.uint64()
		case 2:
			m.IAS = d.int32()
		case 3:
			m.TAS = d.int32()
		case 4:
			m.Mach = d.int32()
		case 5:
			m.MCP = d.int32()
		case 6:
			m.FMS = d.int32()
		case 7:
			m.Autopilot = d.int32()
		case 8:
			m.OAT = d.int32()
		case 9:
			m.Track = d.int32()
		case 10:
			m.Roll = d.int32()
		case 11:
			m.QNH = d.uint32()
		case 12:
			m.WindDir = d.int32()
		case 13:
			m.WindSpeed = d.int32()
		case 14:
			m.Precision = d.uint32()
		case 15:
			m.AltitudeGPS = d.int32()
		case 16:
			m.Emergency = d.uint32()
		case 17:
			m.TCASACAS = d.uint32()
		case 18:
			m.Heading = d.uint32()
		default:
			d.skip()
		}
	}
	return d.err
}

type FlightDetailsRequest struct {
	FlightID        uint32
	RestrictionMode RestrictionVisibility
	Verbose         bool
}

func (m *FlightDetailsRequest) appendFields(e *encoder) {
	e.uint32(1, m.FlightID)
	e.int32(2, int32(m.RestrictionMode))
	e.bool(3, m.Verbose)
}

func (m *FlightDetailsRequest) Marshal() ([]byte, error) { return marshal(m), nil }

func (m *FlightDetailsRequest) Unmarshal(b []byte) error {
	*m = FlightDetailsRequest{}
	d := newDecoder(b)
	for d.next() {
		switch d.num {
		case 1:
			m.FlightID = d.uint32()
		case 2:
			m.RestrictionMode = RestrictionVisibility(d.int32())
		case 3:
			m.Verbose = d.bool()
		default:
			d.skip()
		}
	}
	return d.err
}

// PlaybackFlightRequest asks for a flight's details as of Timestamp (Unix seconds).
type PlaybackFlightRequest struct {
	FlightID  uint32
	Timestamp uint64
}

func (m *PlaybackFlightRequest) appendFields(e *encoder) {
	e.uint32(1, m.FlightID)
	e.uint64(2, m.Timestamp)
}

func (m *PlaybackFlightRequest) Marshal() ([]byte, error) { return marshal(m), nil }

func (m *PlaybackFlightRequest) Unmarshal(b []byte) error {
	*m = PlaybackFlightRequest{}
	d := newDecoder(b)
	for d.next() {
		switch d.num {
		case 1:
			m.FlightID = d.uint32()
		case 2:
			m.Timestamp = d.uint64()
		default:
			d.skip()
		}
	}
	return d.err
}

type FlightDetailsResponse struct {
	AircraftInfo   *AircraftInfo
	ScheduleInfo   *ScheduleInfo
	FlightProgress *FlightProgress
	FlightInfo     *ExtendedFlightInfo
	FlightTrail    []TrailPoint
	EMS            []EMSInfo
}

func (m *FlightDetailsResponse) appendFields(e *encoder) {
	if m.AircraftInfo != nil {
		e.message(1, m.AircraftInfo)
	}
	if m.ScheduleInfo != nil {
		e.message(2, m.ScheduleInfo)
	}
	if m.FlightProgress != nil {
		e.message(3, m.FlightProgress)
	}
	if m.FlightInfo != nil {
		e.message(4, m.FlightInfo)
	}
	for i := range m.FlightTrail {
		e.message(5, &m.FlightTrail[i])
	}
	for i := range m.EMS {
		e.message(6, &m.EMS[i])
	}
}

func (m *FlightDetailsResponse) Marshal() ([]byte, error) { return marshal(m), nil }

func (m *FlightDetailsResponse) Unmarshal(b []byte) error {
	*m = FlightDetailsResponse{}
	d := newDecoder(b)
	for d.next() {
		switch d.num {
		case 1:
			m.AircraftInfo = new(AircraftInfo)
			d.message(m.AircraftInfo)
		case 2:
			m.ScheduleInfo = new(ScheduleInfo)
			d.message(m.ScheduleInfo)
		case 3:
			m.FlightProgress = new(FlightProgress)
			d.message(m.FlightProgress)
		case 4:
			m.FlightInfo = new(ExtendedFlightInfo)
			d.message(m.FlightInfo)
		case 5:
			var p TrailPoint
			d.message(&p)
			m.FlightTrail = append(m.FlightTrail, p)
		case 6:
			var ems EMSInfo
			d.message(&ems)
			m.EMS = append(m.EMS, ems)
		default:
			d.skip()
		}
	}
	return d.err
}

// PlaybackFlightResponse shares its layout with FlightDetailsResponse.
type PlaybackFlightResponse FlightDetailsResponse

func (m *PlaybackFlightResponse) appendFields(e *encoder) {
	(*FlightDetailsResponse)(m).appendFields(e)
}

func (m *PlaybackFlightResponse) Marshal() ([]byte, error) { return marshal(m), nil }

func (m *PlaybackFlightResponse) Unmarshal(b []byte) error {
	return (*FlightDetailsResponse)(m).Unmarshal(b)
}
