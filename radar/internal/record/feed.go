// Package record flattens provider responses into typed rows with a fixed
// column layout per kind.
//
// Proto3 scalars carry no presence, so a zero value (an altitude of 0, an
// empty registration) means either "reported as zero" or "not reported".
// Rows keep the zero value and do not try to tell the two apart.
package record

import (
	"radar.pub/radar/internal/pb"
)

// PositionDelta is a recent position relative to its parent row.
type PositionDelta struct {
	DeltaLat int32  `json:"delta_lat"`
	DeltaLon int32  `json:"delta_lon"`
	DeltaMs  uint32 `json:"delta_ms"`
}

// FeedFlight is one aircraft in a live feed snapshot.
type FeedFlight struct {
	Timestamp      uint32          `json:"timestamp"`
	FlightID       uint32          `json:"flightid"`
	Latitude       float32         `json:"latitude"`
	Longitude      float32         `json:"longitude"`
	Track          uint16          `json:"track"`
	Altitude       int32           `json:"altitude"`
	GroundSpeed    int16           `json:"ground_speed"`
	OnGround       bool            `json:"on_ground"`
	Callsign       string          `json:"callsign"`
	Source         uint8           `json:"source"`
	Registration   string          `json:"registration"`
	Origin         string          `json:"origin"`
	Destination    string          `json:"destination"`
	Typecode       string          `json:"typecode"`
	ETA            uint32          `json:"eta"`
	Squawk         uint16          `json:"squawk"`
	VerticalSpeed  int16           `json:"vertical_speed"`
	PositionBuffer []PositionDelta `json:"position_buffer"`
}

var positionDeltaColumns = []column[PositionDelta]{
	i32("delta_lat", func(r *PositionDelta) *int32 { return &r.DeltaLat }),
	i32("delta_lon", func(r *PositionDelta) *int32 { return &r.DeltaLon }),
	u32("delta_ms", func(r *PositionDelta) *uint32 { return &r.DeltaMs }),
}

var feedFlightColumns = []column[FeedFlight]{
	u32("timestamp", func(r *FeedFlight) *uint32 { return &r.Timestamp }),
	u32("flightid", func(r *FeedFlight) *uint32 { return &r.FlightID }),
	f32("latitude", func(r *FeedFlight) *float32 { return &r.Latitude }),
	f32("longitude", func(r *FeedFlight) *float32 { return &r.Longitude }),
	u16("track", func(r *FeedFlight) *uint16 { return &r.Track }),
	i32("altitude", func(r *FeedFlight) *int32 { return &r.Altitude }),
	i16("ground_speed", func(r *FeedFlight) *int16 { return &r.GroundSpeed }),
	boolean("on_ground", func(r *FeedFlight) *bool { return &r.OnGround }),
	str("callsign", func(r *FeedFlight) *string { return &r.Callsign }),
	u8("source", func(r *FeedFlight) *uint8 { return &r.Source }),
	str("registration", func(r *FeedFlight) *string { return &r.Registration }),
	str("origin", func(r *FeedFlight) *string { return &r.Origin }),
	str("destination", func(r *FeedFlight) *string { return &r.Destination }),
	str("typecode", func(r *FeedFlight) *string { return &r.Typecode }),
	u32("eta", func(r *FeedFlight) *uint32 { return &r.ETA }),
	u16("squawk", func(r *FeedFlight) *uint16 { return &r.Squawk }),
	i16("vertical_speed", func(r *FeedFlight) *int16 { return &r.VerticalSpeed }),
	list("position_buffer", func(r *FeedFlight) *[]PositionDelta { return &r.PositionBuffer }, positionDeltaColumns...),
}

// FeedFlightSchema is shared by live feed, feed playback and search index tables.
var FeedFlightSchema = newSchema("feed_flight", feedFlightColumns)

// FeedFlights flattens a live feed response.
func FeedFlights(resp *pb.LiveFeedResponse) []FeedFlight {
	if resp == nil {
		return []FeedFlight{}
	}
	return feedFlights(resp.Flights)
}

// PlaybackFeedFlights flattens a feed playback response.
func PlaybackFeedFlights(resp *pb.PlaybackResponse) []FeedFlight {
	if resp == nil {
		return []FeedFlight{}
	}
	return FeedFlights(resp.LiveFeedResponse)
}

// SearchIndex flattens the search index.
func SearchIndex(resp *pb.FetchSearchIndexResponse) []FeedFlight {
	if resp == nil {
		return []FeedFlight{}
	}
	return feedFlights(resp.Flights)
}

func feedFlights(flights []pb.Flight) []FeedFlight {
	rows := make([]FeedFlight, len(flights))
	for i := range flights {
		rows[i] = FeedFlightOf(&flights[i])
	}
	return rows
}

// FeedFlightOf flattens a single flight.
func FeedFlightOf(f *pb.Flight) FeedFlight {
	row := FeedFlight{
		Timestamp:      f.Timestamp,
		FlightID:       f.FlightID,
		Latitude:       f.Lat,
		Longitude:      f.Lon,
		Track:          uint16(f.Track),
		Altitude:       f.Alt,
		GroundSpeed:    int16(f.Speed),
		OnGround:       f.OnGround,
		Callsign:       f.Callsign,
		Source:         uint8(f.Source),
		PositionBuffer: []PositionDelta{},
	}
	if x := f.ExtraInfo; x != nil {
		row.Registration = x.Reg
		row.Typecode = x.Type
		row.Squawk = uint16(x.Squawk)
		row.VerticalSpeed = int16(x.VSpeed)
		if x.Route != nil {
			row.Origin = x.Route.From
			row.Destination = x.Route.To
		}
		if x.Schedule != nil {
			row.ETA = x.Schedule.ETA
		}
	}
	if f.PositionBuffer != nil {
		for _, p := range f.PositionBuffer.RecentPositions {
			row.PositionBuffer = append(row.PositionBuffer, PositionDelta{
				DeltaLat: p.DeltaLat,
				DeltaLon: p.DeltaLon,
				DeltaMs:  p.DeltaMs,
			})
		}
	}
	return row
}

// NearestFlight is a FeedFlight with its distance from the query point in metres.
type NearestFlight struct {
	FeedFlight
	Distance uint32 `json:"distance"`
}

var NearestFlightSchema = newSchema("nearest_flight",
	embed(func(r *NearestFlight) *FeedFlight { return &r.FeedFlight }, feedFlightColumns),
	[]column[NearestFlight]{
		u32("distance", func(r *NearestFlight) *uint32 { return &r.Distance }),
	},
)

func NearestFlights(resp *pb.NearestFlightsResponse) []NearestFlight {
	if resp == nil {
		return []NearestFlight{}
	}
	rows := make([]NearestFlight, 0, len(resp.Flights))
	for _, nf := range resp.Flights {
		row := NearestFlight{Distance: nf.Distance}
		if nf.Flight != nil {
			row.FeedFlight = FeedFlightOf(nf.Flight)
		} else {
			row.PositionBuffer = []PositionDelta{}
		}
		rows = append(rows, row)
	}
	return rows
}

// FlightStatus is the live status of a single flight.
type FlightStatus struct {
	FlightID  uint32  `json:"flightid"`
	Latitude  float32 `json:"latitude"`
	Longitude float32 `json:"longitude"`
	Status    int32   `json:"status"`
	Squawk    uint16  `json:"squawk"`
}

var FlightStatusSchema = newSchema("flight_status", []column[FlightStatus]{
	u32("flightid", func(r *FlightStatus) *uint32 { return &r.FlightID }),
	f32("latitude", func(r *FlightStatus) *float32 { return &r.Latitude }),
	f32("longitude", func(r *FlightStatus) *float32 { return &r.Longitude }),
	i32("status", func(r *FlightStatus) *int32 { return &r.Status }),
	u16("squawk", func(r *FlightStatus) *uint16 { return &r.Squawk }),
})

func FlightStatuses(resp *pb.LiveFlightsStatusResponse) []FlightStatus {
	if resp == nil {
		return []FlightStatus{}
	}
	rows := make([]FlightStatus, 0, len(resp.Flights))
	for _, s := range resp.Flights {
		row := FlightStatus{FlightID: s.FlightID}
		if d := s.Data; d != nil {
			row.Latitude = d.Lat
			row.Longitude = d.Lon
			row.Status = d.Status
			row.Squawk = uint16(d.Squawk)
		}
		rows = append(rows, row)
	}
	return rows
}

// TopFlight is one entry of the most tracked flights scoreboard.
type TopFlight struct {
	FlightID        uint32 `json:"flight_id"`
	LiveClicks      uint32 `json:"live_clicks"`
	TotalClicks     uint32 `json:"total_clicks"`
	FlightNumber    string `json:"flight_number"`
	Callsign        string `json:"callsign"`
	Squawk          uint16 `json:"squawk"`
	FromIATA        string `json:"from_iata"`
	FromCity        string `json:"from_city"`
	ToIATA          string `json:"to_iata"`
	ToCity          string `json:"to_city"`
	Type            string `json:"type"`
	FullDescription string `json:"full_description"`
}

var TopFlightSchema = newSchema("top_flight", []column[TopFlight]{
	u32("flight_id", func(r *TopFlight) *uint32 { return &r.FlightID }),
	u32("live_clicks", func(r *TopFlight) *uint32 { return &r.LiveClicks }),
	u32("total_clicks", func(r *TopFlight) *uint32 { return &r.TotalClicks }),
	str("flight_number", func(r *TopFlight) *string { return &r.FlightNumber }),
	str("callsign", func(r *TopFlight) *string { return &r.Callsign }),
	u16("squawk", func(r *TopFlight) *uint16 { return &r.Squawk }),
	str("from_iata", func(r *TopFlight) *string { return &r.FromIATA }),
	str("from_city", func(r *TopFlight) *string { return &r.FromCity }),
	str("to_iata", func(r *TopFlight) *string { return &r.ToIATA }),
	str("to_city", func(r *TopFlight) *string { return &r.ToCity }),
	str("type", func(r *TopFlight) *string { return &r.Type }),
	str("full_description", func(r *TopFlight) *string { return &r.FullDescription }),
})

func TopFlights(resp *pb.TopFlightsResponse) []TopFlight {
	if resp == nil {
		return []TopFlight{}
	}
	rows := make([]TopFlight, len(resp.Scoreboard))
	for i, f := range resp.Scoreboard {
		rows[i] = TopFlight{
			FlightID:        f.FlightID,
			LiveClicks:      f.LiveClicks,
			TotalClicks:     f.TotalClicks,
			FlightNumber:    f.FlightNumber,
			Callsign:        f.Callsign,
			Squawk:          uint16(f.Squawk),
			FromIATA:        f.FromIATA,
			FromCity:        f.FromCity,
			ToIATA:          f.ToIATA,
			ToCity:          f.ToCity,
			Type:            f.Type,
			FullDescription: f.FullDescription,
		}
	}
	return rows
}
