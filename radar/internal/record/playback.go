package record

import (
	"strconv"
)

// PlaybackResponse is the JSON body of the flight playback endpoint.
type PlaybackResponse struct {
	Result struct {
		Response struct {
			Timestamp int64 `json:"timestamp"`
			Data      struct {
				Flight struct {
					Identification struct {
						ID       *string `json:"id"`
						Callsign *string `json:"callsign"`
					} `json:"identification"`
					Track []PlaybackTrackPoint `json:"track"`
				} `json:"flight"`
			} `json:"data"`
		} `json:"response"`
	} `json:"result"`
}

// PlaybackTrackPoint is one point of a playback track as sent by the provider.
type PlaybackTrackPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  struct {
		Feet int32 `json:"feet"`
	} `json:"altitude"`
	Speed struct {
		Kts int32 `json:"kts"`
	} `json:"speed"`
	VerticalSpeed struct {
		FPM int32 `json:"fpm"`
	} `json:"verticalSpeed"`
	Heading   int32   `json:"heading"`
	Squawk    *string `json:"squawk"`
	Timestamp int64   `json:"timestamp"`
}

// TrackPoint is one position of a played back flight. Timestamp is Unix seconds.
type TrackPoint struct {
	Timestamp     uint32  `json:"timestamp"`
	Latitude      float32 `json:"latitude"`
	Longitude     float32 `json:"longitude"`
	Altitude      int32   `json:"altitude"`
	GroundSpeed   int16   `json:"ground_speed"`
	VerticalSpeed int16   `json:"vertical_speed"`
	Track         int16   `json:"track"`
	Squawk        uint16  `json:"squawk"`
}

var TrackPointSchema = newSchema("track_point", []column[TrackPoint]{
	u32("timestamp", func(r *TrackPoint) *uint32 { return &r.Timestamp }),
	f32("latitude", func(r *TrackPoint) *float32 { return &r.Latitude }),
	f32("longitude", func(r *TrackPoint) *float32 { return &r.Longitude }),
	i32("altitude", func(r *TrackPoint) *int32 { return &r.Altitude }),
	i16("ground_speed", func(r *TrackPoint) *int16 { return &r.GroundSpeed }),
	i16("vertical_speed", func(r *TrackPoint) *int16 { return &r.VerticalSpeed }),
	i16("track", func(r *TrackPoint) *int16 { return &r.Track }),
	u16("squawk", func(r *TrackPoint) *uint16 { return &r.Squawk }),
})

// PlaybackTrack flattens the track of a playback response. Squawks are sent
// as decimal strings of the octal code and kept as those digits.
func PlaybackTrack(resp *PlaybackResponse) []TrackPoint {
	if resp == nil {
		return []TrackPoint{}
	}
	track := resp.Result.Response.Data.Flight.Track
	rows := make([]TrackPoint, len(track))
	for i, p := range track {
		rows[i] = TrackPoint{
			Timestamp:     uint32(p.Timestamp),
			Latitude:      float32(p.Latitude),
			Longitude:     float32(p.Longitude),
			Altitude:      p.Altitude.Feet,
			GroundSpeed:   int16(p.Speed.Kts),
			VerticalSpeed: int16(p.VerticalSpeed.FPM),
			Track:         int16(p.Heading),
		}
		if p.Squawk != nil {
			if sq, err := strconv.ParseUint(*p.Squawk, 10, 16); err == nil {
				rows[i].Squawk = uint16(sq)
			}
		}
	}
	return rows
}
