package record

import (
	"radar.pub/radar/internal/pb"
)

// TrailPoint is one historical position of a flight. Timestamp is Unix seconds.
type TrailPoint struct {
	Timestamp     uint64  `json:"timestamp"`
	Latitude      float32 `json:"latitude"`
	Longitude     float32 `json:"longitude"`
	Altitude      int32   `json:"altitude"`
	GroundSpeed   int16   `json:"ground_speed"`
	Track         uint16  `json:"track"`
	VerticalSpeed int16   `json:"vertical_speed"`
}

var trailPointColumns = []column[TrailPoint]{
	u64("timestamp", func(r *TrailPoint) *uint64 { return &r.Timestamp }),
	f32("latitude", func(r *TrailPoint) *float32 { return &r.Latitude }),
	f32("longitude", func(r *TrailPoint) *float32 { return &r.Longitude }),
	i32("altitude", func(r *TrailPoint) *int32 { return &r.Altitude }),
	i16("ground_speed", func(r *TrailPoint) *int16 { return &r.GroundSpeed }),
	u16("track", func(r *TrailPoint) *uint16 { return &r.Track }),
	i16("vertical_speed", func(r *TrailPoint) *int16 { return &r.VerticalSpeed }),
}

// EMSPoint is enhanced Mode-S telemetry. TimestampMs is Unix milliseconds.
type EMSPoint struct {
	TimestampMs uint64 `json:"timestamp_ms"`
	IAS         int16  `json:"ias"`
	TAS         int16  `json:"tas"`
	Mach        int16  `json:"mach"`
	MCP         int32  `json:"mcp"`
	FMS         int32  `json:"fms"`
	Autopilot   int16  `json:"autopilot"`
	OAT         int16  `json:"oat"`
	Track       uint16 `json:"track"`
	Roll        int16  `json:"roll"`
	QNH         uint16 `json:"qnh"`
	WindDir     int16  `json:"wind_dir"`
	WindSpeed   int16  `json:"wind_speed"`
	Precision   uint8  `json:"precision"`
	AltitudeGPS int32  `json:"altitude_gps"`
	Emergency   uint8  `json:"emergency"`
	TCASACAS    uint8  `json:"tcas_acas"`
	Heading     uint16 `json:"heading"`
}

var emsPointColumns = []column[EMSPoint]{
	u64("timestamp_ms", func(r *EMSPoint) *uint64 { return &r.TimestampMs }),
	i16("ias", func(r *EMSPoint) *int16 { return &r.IAS }),
	i16("tas", func(r *EMSPoint) *int16 { return &r.TAS }),
	i16("mach", func(r *EMSPoint) *int16 { return &r.Mach }),
	i32("mcp", func(r *EMSPoint) *int32 { return &r.MCP }),
	i32("fms", func(r *EMSPoint) *int32 { return &r.FMS }),
	i16("autopilot", func(r *EMSPoint) *int16 { return &r.Autopilot }),
	i16("oat", func(r *EMSPoint) *int16 { return &r.OAT }),
	u16("track", func(r *EMSPoint) *uint16 { return &r.Track }),
	i16("roll", func(r *EMSPoint) *int16 { return &r.Roll }),
	u16("qnh", func(r *EMSPoint) *uint16 { return &r.QNH }),
	i16("wind_dir", func(r *EMSPoint) *int16 { return &r.WindDir }),
	i16("wind_speed", func(r *EMSPoint) *int16 { return &r.WindSpeed }),
	u8("precision", func(r *EMSPoint) *uint8 { return &r.Precision }),
	i32("altitude_gps", func(r *EMSPoint) *int32 { return &r.AltitudeGPS }),
	u8("emergency", func(r *EMSPoint) *uint8 { return &r.Emergency }),
	u8("tcas_acas", func(r *EMSPoint) *uint8 { return &r.TCASACAS }),
	u16("heading", func(r *EMSPoint) *uint16 { return &r.Heading }),
}

// FlightDetails flattens aircraft, schedule, progress and the latest position
// of one flight, with its trail and telemetry as nested lists.
type FlightDetails struct {
	// aircraft
	ICAOAddress     uint32 `json:"icao_address"`
	Registration    string `json:"registration"`
	Typecode        string `json:"typecode"`
	FullDescription string `json:"full_description"`
	MSN             string `json:"msn"`

	// schedule
	FlightNumber       string `json:"flight_number"`
	OperatedByID       uint32 `json:"operated_by_id"`
	PaintedAsID        uint32 `json:"painted_as_id"`
	OriginID           uint32 `json:"origin_id"`
	DestinationID      uint32 `json:"destination_id"`
	DivertedToID       uint32 `json:"diverted_to_id"`
	ScheduledDeparture uint32 `json:"scheduled_departure"`
	ScheduledArrival   uint32 `json:"scheduled_arrival"`
	ActualDeparture    uint32 `json:"actual_departure"`
	ActualArrival      uint32 `json:"actual_arrival"`

	// progress
	TraversedDistance   uint32 `json:"traversed_distance"`
	RemainingDistance   uint32 `json:"remaining_distance"`
	ElapsedTime         uint32 `json:"elapsed_time"`
	RemainingTime       uint32 `json:"remaining_time"`
	ETA                 uint32 `json:"eta"`
	GreatCircleDistance uint32 `json:"great_circle_distance"`
	MeanFlightTime      uint32 `json:"mean_flight_time"`
	FlightStage         int32  `json:"flight_stage"`
	DelayStatus         int32  `json:"delay_status"`
	ProgressPct         int32  `json:"progress_pct"`

	// latest position
	FlightID      uint32  `json:"flightid"`
	Latitude      float32 `json:"latitude"`
	Longitude     float32 `json:"longitude"`
	Track         uint16  `json:"track"`
	Altitude      int32   `json:"altitude"`
	GroundSpeed   int16   `json:"ground_speed"`
	VerticalSpeed int16   `json:"vertical_speed"`
	TimestampMs   uint64  `json:"timestamp_ms"`
	OnGround      bool    `json:"on_ground"`
	Callsign      string  `json:"callsign"`
	Source        uint8   `json:"source"`
	Squawk        uint16  `json:"squawk"`

	FlightTrail []TrailPoint `json:"flight_trail_list"`
	EMS         []EMSPoint   `json:"ems"`
}

var FlightDetailsSchema = newSchema("flight_details", []column[FlightDetails]{
	u32("icao_address", func(r *FlightDetails) *uint32 { return &r.ICAOAddress }),
	str("registration", func(r *FlightDetails) *string { return &r.Registration }),
	str("typecode", func(r *FlightDetails) *string { return &r.Typecode }),
	str("full_description", func(r *FlightDetails) *string { return &r.FullDescription }),
	str("msn", func(r *FlightDetails) *string { return &r.MSN }),

	str("flight_number", func(r *FlightDetails) *string { return &r.FlightNumber }),
	u32("operated_by_id", func(r *FlightDetails) *uint32 { return &r.OperatedByID }),
	u32("painted_as_id", func(r *FlightDetails) *uint32 { return &r.PaintedAsID }),
	u32("origin_id", func(r *FlightDetails) *uint32 { return &r.OriginID }),
	u32("destination_id", func(r *FlightDetails) *uint32 { return &r.DestinationID }),
	u32("diverted_to_id", func(r *FlightDetails) *uint32 { return &r.DivertedToID }),
	u32("scheduled_departure", func(r *FlightDetails) *uint32 { return &r.ScheduledDeparture }),
	u32("scheduled_arrival", func(r *FlightDetails) *uint32 { return &r.ScheduledArrival }),
	u32("actual_departure", func(r *FlightDetails) *uint32 { return &r.ActualDeparture }),
	u32("actual_arrival", func(r *FlightDetails) *uint32 { return &r.ActualArrival }),

	u32("traversed_distance", func(r *FlightDetails) *uint32 { return &r.TraversedDistance }),
	u32("remaining_distance", func(r *FlightDetails) *uint32 { return &r.RemainingDistance }),
	u32("elapsed_time", func(r *FlightDetails) *uint32 { return &r.ElapsedTime }),
	u32("remaining_time", func(r *FlightDetails) *uint32 { return &r.RemainingTime }),
	u32("eta", func(r *FlightDetails) *uint32 { return &r.ETA }),
	u32("great_circle_distance", func(r *FlightDetails) *uint32 { return &r.GreatCircleDistance }),
	u32("mean_flight_time", func(r *FlightDetails) *uint32 { return &r.MeanFlightTime }),
	i32("flight_stage", func(r *FlightDetails) *int32 { return &r.FlightStage }),
	i32("delay_status", func(r *FlightDetails) *int32 { return &r.DelayStatus }),
	i32("progress_pct", func(r *FlightDetails) *int32 { return &r.ProgressPct }),

	u32("flightid", func(r *FlightDetails) *uint32 { return &r.FlightID }),
	f32("latitude", func(r *FlightDetails) *float32 { return &r.Latitude }),
	f32("longitude", func(r *FlightDetails) *float32 { return &r.Longitude }),
	u16("track", func(r *FlightDetails) *uint16 { return &r.Track }),
	i32("altitude", func(r *FlightDetails) *int32 { return &r.Altitude }),
	i16("ground_speed", func(r *FlightDetails) *int16 { return &r.GroundSpeed }),
	i16("vertical_speed", func(r *FlightDetails) *int16 { return &r.VerticalSpeed }),
	u64("timestamp_ms", func(r *FlightDetails) *uint64 { return &r.TimestampMs }),
	boolean("on_ground", func(r *FlightDetails) *bool { return &r.OnGround }),
	str("callsign", func(r *FlightDetails) *string { return &r.Callsign }),
	u8("source", func(r *FlightDetails) *uint8 { return &r.Source }),
	u16("squawk", func(r *FlightDetails) *uint16 { return &r.Squawk }),

	list("flight_trail_list", func(r *FlightDetails) *[]TrailPoint { return &r.FlightTrail }, trailPointColumns...),
	list("ems", func(r *FlightDetails) *[]EMSPoint { return &r.EMS }, emsPointColumns...),
})

type detailsParts struct {
	aircraft *pb.AircraftInfo
	schedule *pb.ScheduleInfo
	progress *pb.FlightProgress
	info     *pb.ExtendedFlightInfo
	trail    []pb.TrailPoint
	ems      []pb.EMSInfo
}

func (p detailsParts) row() FlightDetails {
	row := FlightDetails{
		FlightTrail: make([]TrailPoint, len(p.trail)),
		EMS:         make([]EMSPoint, len(p.ems)),
	}
	if a := p.aircraft; a != nil {
		row.ICAOAddress = a.ICAOAddress
		row.Registration = a.Reg
		row.Typecode = a.Type
		row.FullDescription = a.FullDescription
		row.MSN = a.MSN
	}
	if s := p.schedule; s != nil {
		row.FlightNumber = s.FlightNumber
		row.OperatedByID = s.OperatedByID
		row.PaintedAsID = s.PaintedAsID
		row.OriginID = s.OriginID
		row.DestinationID = s.DestinationID
		row.DivertedToID = s.DivertedToID
		row.ScheduledDeparture = s.ScheduledDeparture
		row.ScheduledArrival = s.ScheduledArrival
		row.ActualDeparture = s.ActualDeparture
		row.ActualArrival = s.ActualArrival
	}
	if g := p.progress; g != nil {
		row.TraversedDistance = g.TraversedDistance
		row.RemainingDistance = g.RemainingDistance
		row.ElapsedTime = g.ElapsedTime
		row.RemainingTime = g.RemainingTime
		row.ETA = g.ETA
		row.GreatCircleDistance = g.GreatCircleDistance
		row.MeanFlightTime = g.MeanFlightTime
		row.FlightStage = g.FlightStage
		row.DelayStatus = g.DelayStatus
		row.ProgressPct = g.ProgressPct
	}
	if f := p.info; f != nil {
		row.FlightID = f.FlightID
		row.Latitude = f.Lat
		row.Longitude = f.Lon
		row.Track = uint16(f.Track)
		row.Altitude = f.Alt
		row.GroundSpeed = int16(f.Speed)
		row.VerticalSpeed = int16(f.VSpeed)
		row.TimestampMs = f.TimestampMs
		row.OnGround = f.OnGround
		row.Callsign = f.Callsign
		row.Source = uint8(f.Source)
		row.Squawk = uint16(f.Squawk)
	}
	for i, t := range p.trail {
		row.FlightTrail[i] = TrailPoint{
			Timestamp:     t.SnapshotID,
			Latitude:      t.Lat,
			Longitude:     t.Lon,
			Altitude:      t.Altitude,
			GroundSpeed:   int16(t.Spd),
			Track:         uint16(t.Heading),
			VerticalSpeed: int16(t.VSpd),
		}
	}
	for i, e := range p.ems {
		row.EMS[i] = EMSPoint{
			TimestampMs: e.TS,
			IAS:         int16(e.IAS),
			TAS:         int16(e.TAS),
			Mach:        int16(e.Mach),
			MCP:         e.MCP,
			FMS:         e.FMS,
			Autopilot:   int16(e.Autopilot),
			OAT:         int16(e.OAT),
			Track:       uint16(e.Track),
			Roll:        int16(e.Roll),
			QNH:         uint16(e.QNH),
			WindDir:     int16(e.WindDir),
			WindSpeed:   int16(e.WindSpeed),
			Precision:   uint8(e.Precision),
			AltitudeGPS: e.AltitudeGPS,
			Emergency:   uint8(e.Emergency),
			TCASACAS:    uint8(e.TCASACAS),
			Heading:     uint16(e.Heading),
		}
	}
	return row
}

// FlightDetailsOf flattens a flight details response into a single row.
func FlightDetailsOf(resp *pb.FlightDetailsResponse) FlightDetails {
	if resp == nil {
		return detailsParts{}.row()
	}
	return detailsParts{
		aircraft: resp.AircraftInfo,
		schedule: resp.ScheduleInfo,
		progress: resp.FlightProgress,
		info:     resp.FlightInfo,
		trail:    resp.FlightTrail,
		ems:      resp.EMS,
	}.row()
}

// PlaybackFlightOf flattens a flight playback response.
func PlaybackFlightOf(resp *pb.PlaybackFlightResponse) FlightDetails {
	return FlightDetailsOf((*pb.FlightDetailsResponse)(resp))
}

// FollowUpdate flattens one follow flight stream message. Sub-messages the
// update does not carry are left zero.
func FollowUpdate(resp *pb.FollowFlightResponse) FlightDetails {
	if resp == nil {
		return detailsParts{}.row()
	}
	return detailsParts{
		aircraft: resp.AircraftInfo,
		schedule: resp.ScheduleInfo,
		progress: resp.FlightProgress,
		info:     resp.FlightInfo,
		trail:    resp.FlightTrail,
	}.row()
}
