package pb

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

type message interface {
	Marshal() ([]byte, error)
	Unmarshal([]byte) error
}

func testFlight(id uint32) Flight {
	return Flight{
		FlightID:  id,
		Lat:       51.47,
		Lon:       -0.4543,
		Track:     270,
		Alt:       -35,
		Speed:     142,
		Icon:      3,
		Status:    1,
		Timestamp: 1700000000,
		OnGround:  true,
		Callsign:  "BAW123",
		Source:    DataSource_MLAT,
		ExtraInfo: &ExtraFlightInfo{
			Flight:   "BA123",
			Reg:      "G-EUUA",
			Route:    &Route{From: "LHR", To: "JFK"},
			Type:     "A320",
			Squawk:   0o7700,
			VSpeed:   -1280,
			Age:      12,
			LogoID:   44,
			Airspace: "EGTT",
			Schedule: &Schedule{STD: 1, ETD: 2, ATD: 3, STA: 4, ETA: 5, ATA: 6},
		},
		PositionBuffer: &PositionBuffer{RecentPositions: []RecentPosition{
			{DeltaLat: -12, DeltaLon: 40, DeltaMs: 250},
			{DeltaLat: 3, DeltaLon: -7, DeltaMs: 1500},
		}},
	}
}

func testDetails() FlightDetailsResponse {
	return FlightDetailsResponse{
		AircraftInfo: &AircraftInfo{
			ICAOAddress:     0x4CA2D1,
			Reg:             "EI-DVM",
			Type:            "B738",
			Icon:            7,
			FullDescription: "Boeing 737-8AS",
			MSN:             "33563",
			Service:         1,
			BirthDate:       "2008-04-01",
			AgeText:         "16 years",
			Images:          []ImageInfo{{URL: "https://img/1", Copyright: "someone", Thumbnail: "t", Medium: "m", Large: "l"}},
			IsTestFlight:    true,
		},
		ScheduleInfo: &ScheduleInfo{
			FlightNumber:       "FR123",
			OperatedByID:       9,
			PaintedAsID:        9,
			OriginID:           100,
			DestinationID:      200,
			DivertedToID:       300,
			ScheduledDeparture: 1700000000,
			ScheduledArrival:   1700003600,
			ActualDeparture:    1700000300,
			ActualArrival:      1700003700,
			ArrTerminal:        "2",
			ArrGate:            "B12",
			BaggageBelt:        "7",
		},
		FlightProgress: &FlightProgress{
			TraversedDistance:   1000,
			RemainingDistance:   2000,
			ElapsedTime:         600,
			RemainingTime:       1200,
			ETA:                 1700003600,
			GreatCircleDistance: 3000,
			MeanFlightTime:      1800,
			FlightStage:         2,
			DelayStatus:         -1,
			ProgressPct:         33,
		},
		FlightInfo: &ExtendedFlightInfo{
			FlightID:    0x2F8A3B1,
			Lat:         53.42,
			Lon:         -6.27,
			Track:       90,
			Alt:         35000,
			Speed:       450,
			TimestampMs: 1700001000123,
			Callsign:    "RYR123",
			Source:      DataSource_ADSB,
			Squawk:      1234,
			VSpeed:      -64,
		},
		FlightTrail: []TrailPoint{
			{SnapshotID: 1700000000, Lat: 53.4, Lon: -6.2, Altitude: 1000, Spd: 180, Heading: 280, VSpd: 1500},
			{SnapshotID: 1700000060, Lat: 53.5, Lon: -6.3, Altitude: 5000, Spd: 250, Heading: 285, VSpd: -200},
		},
		EMS: []EMSInfo{{
			TS: 1700001000000, IAS: 280, TAS: 450, Mach: 780, MCP: 35000, FMS: 35000,
			Autopilot: 1, OAT: -50, Track: 91, Roll: -2, QNH: 1013, WindDir: 270,
			WindSpeed: 80, Precision: 3, AltitudeGPS: 35200, Emergency: 0, TCASACAS: 1, Heading: 92,
		}},
	}
}

func TestRoundTrip(t *testing.T) {
	details := testDetails()
	playback := PlaybackFlightResponse(testDetails())

	tests := []struct {
		name  string
		in    message
		empty message
	}{
		{
			name: "LiveFeedRequest",
			in: &LiveFeedRequest{
				Bounds:            &LocationBoundaries{North: 50.5, South: 49, West: -1.5, East: 2},
				Settings:          &VisibilitySettings{Sources: []DataSource{DataSource_ADSB, DataSource_MLAT, DataSource_AUS}, Services: []int32{0, 1, 11}, TrafficType: TrafficType_ALL, OnlyRestricted: true},
				Stats:             true,
				Limit:             1500,
				MaxAge:            14400,
				RestrictionMode:   RestrictionVisibility_FULLY_VISIBLE,
				FieldMask:         NewFieldMask(FieldFlight, FieldReg, FieldRoute, FieldType),
				SelectedFlightIDs: []uint32{1, 0xFFFFFFFF},
				HighlightMode:     true,
			},
			empty: &LiveFeedRequest{},
		},
		{
			name: "LiveFeedResponse",
			in: &LiveFeedResponse{
				Flights:            []Flight{testFlight(1), testFlight(2)},
				Stats:              &Stats{Total: 2, Sources: []SourceStats{{Source: DataSource_ADSB, Count: 1}, {Source: DataSource_MLAT, Count: 1}}},
				SelectedFlightInfo: []Flight{testFlight(3)},
				ServerTimeMs:       1700000000123,
			},
			empty: &LiveFeedResponse{},
		},
		{
			name: "PlaybackRequest",
			in: &PlaybackRequest{
				LiveFeedRequest: &LiveFeedRequest{Limit: 10, Bounds: &LocationBoundaries{North: 1, South: -1, West: -1, East: 1}},
				Timestamp:       1700000000,
				Prefetch:        1700000007,
				HFreq:           1,
			},
			empty: &PlaybackRequest{},
		},
		{
			name:  "PlaybackResponse",
			in:    &PlaybackResponse{LiveFeedResponse: &LiveFeedResponse{Flights: []Flight{testFlight(9)}}},
			empty: &PlaybackResponse{},
		},
		{
			name:  "NearestFlightsRequest",
			in:    &NearestFlightsRequest{Location: &Geolocation{Lat: 22.31257, Lon: 113.92708}, Radius: 10000, Limit: 1500},
			empty: &NearestFlightsRequest{},
		},
		{
			name: "NearestFlightsResponse",
			in: &NearestFlightsResponse{Flights: []NearbyFlight{
				{Flight: &Flight{FlightID: 5, Callsign: "CPA1"}, Distance: 1200},
				{Flight: &Flight{FlightID: 6}, Distance: 2400},
			}},
			empty: &NearestFlightsResponse{},
		},
		{
			name:  "LiveFlightsStatusRequest",
			in:    &LiveFlightsStatusRequest{FlightIDs: []uint32{0x2F8A3B1, 7}},
			empty: &LiveFlightsStatusRequest{},
		},
		{
			name: "LiveFlightsStatusResponse",
			in: &LiveFlightsStatusResponse{Flights: []FlightStatus{
				{FlightID: 1, Data: &FlightStatusData{Lat: 1.5, Lon: -2.5, Status: 3, Squawk: 7000}},
				{FlightID: 2},
			}},
			empty: &LiveFlightsStatusResponse{},
		},
		{
			name:  "FetchSearchIndexResponse",
			in:    &FetchSearchIndexResponse{Flights: []Flight{testFlight(4)}},
			empty: &FetchSearchIndexResponse{},
		},
		{
			name:  "TopFlightsRequest",
			in:    &TopFlightsRequest{Limit: 10},
			empty: &TopFlightsRequest{},
		},
		{
			name: "TopFlightsResponse",
			in: &TopFlightsResponse{Scoreboard: []FollowedFlight{{
				FlightID: 1, LiveClicks: 2, TotalClicks: 3, FlightNumber: "AF1", Callsign: "AFR1", Squawk: 7,
				FromIATA: "CDG", FromCity: "Paris", ToIATA: "JFK", ToCity: "New York", Type: "A359", FullDescription: "Airbus A350-941",
			}}},
			empty: &TopFlightsResponse{},
		},
		{
			name:  "FollowFlightRequest",
			in:    &FollowFlightRequest{FlightID: 0x2F8A3B1, RestrictionMode: RestrictionVisibility_PARTIALLY_FAA},
			empty: &FollowFlightRequest{},
		},
		{
			name: "FollowFlightResponse",
			in: &FollowFlightResponse{
				AircraftInfo:   details.AircraftInfo,
				FlightInfo:     details.FlightInfo,
				ScheduleInfo:   details.ScheduleInfo,
				FlightProgress: details.FlightProgress,
				FlightTrail:    details.FlightTrail,
			},
			empty: &FollowFlightResponse{},
		},
		{
			name:  "FlightDetailsRequest",
			in:    &FlightDetailsRequest{FlightID: 1, RestrictionMode: RestrictionVisibility_FULLY_VISIBLE, Verbose: true},
			empty: &FlightDetailsRequest{},
		},
		{
			name:  "FlightDetailsResponse",
			in:    &details,
			empty: &FlightDetailsResponse{},
		},
		{
			name:  "PlaybackFlightRequest",
			in:    &PlaybackFlightRequest{FlightID: 1, Timestamp: 1700000000},
			empty: &PlaybackFlightRequest{},
		},
		{
			name:  "PlaybackFlightResponse",
			in:    &playback,
			empty: &PlaybackFlightResponse{},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b, err := tc.in.Marshal()
			require.NoError(t, err)
			require.NotEmpty(t, b)

			require.NoError(t, tc.empty.Unmarshal(b))
			if diff := cmp.Diff(tc.in, tc.empty, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}

			// Encoding is deterministic.
			again, err := tc.empty.Marshal()
			require.NoError(t, err)
			assert.Equal(t, b, again)
		})
	}
}

func TestZeroValuesOmitted(t *testing.T) {
	b, err := (&LiveFeedRequest{}).Marshal()
	require.NoError(t, err)
	assert.Empty(t, b)

	b, err = (&FetchSearchIndexRequest{}).Marshal()
	require.NoError(t, err)
	assert.Empty(t, b)

	// Set nested messages are written even when empty.
	b, err = (&LiveFeedRequest{Bounds: &LocationBoundaries{}}).Marshal()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x0a, 0x00}, b)
}

func TestNegativeInt32SignExtended(t *testing.T) {
	b, err := (&RecentPosition{DeltaLat: -1}).Marshal()
	require.NoError(t, err)
	// tag + 10 byte varint
	assert.Len(t, b, 11)

	var got RecentPosition
	require.NoError(t, got.Unmarshal(b))
	assert.Equal(t, int32(-1), got.DeltaLat)
}

func TestUnpackedRepeatedAccepted(t *testing.T) {
	var b []byte
	for _, id := range []uint32{3, 1, 2} {
		b = protowire.AppendTag(b, 1, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(id))
	}

	var got LiveFlightsStatusRequest
	require.NoError(t, got.Unmarshal(b))
	assert.Equal(t, []uint32{3, 1, 2}, got.FlightIDs)
}

func TestUnknownFieldsSkipped(t *testing.T) {
	b, err := (&TopFlightsRequest{Limit: 7}).Marshal()
	require.NoError(t, err)
	b = protowire.AppendTag(b, 99, protowire.BytesType)
	b = protowire.AppendString(b, "future")
	b = protowire.AppendTag(b, 100, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, 42)

	var got TopFlightsRequest
	require.NoError(t, got.Unmarshal(b))
	assert.Equal(t, uint32(7), got.Limit)
}

func TestUnmarshalErrors(t *testing.T) {
	t.Run("WrongWireType", func(t *testing.T) {
		b := protowire.AppendTag(nil, 1, protowire.BytesType)
		b = protowire.AppendString(b, "x")

		var got TopFlightsRequest
		assert.ErrorIs(t, got.Unmarshal(b), ErrWireType)
	})
	t.Run("Truncated", func(t *testing.T) {
		b, err := (&FlightDetailsResponse{ScheduleInfo: &ScheduleInfo{FlightNumber: "AB123"}}).Marshal()
		require.NoError(t, err)

		var got FlightDetailsResponse
		assert.Error(t, got.Unmarshal(b[:len(b)-2]))
	})
	t.Run("NestedError", func(t *testing.T) {
		inner := protowire.AppendTag(nil, 1, protowire.Fixed32Type)
		inner = protowire.AppendFixed32(inner, 1)
		b := protowire.AppendTag(nil, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, inner)

		var got LiveFlightsStatusResponse
		assert.ErrorIs(t, got.Unmarshal(b), ErrWireType)
	})
}

func TestUnmarshalResets(t *testing.T) {
	got := LiveFeedResponse{ServerTimeMs: 9, Flights: []Flight{testFlight(1)}}
	require.NoError(t, got.Unmarshal(nil))
	assert.Equal(t, LiveFeedResponse{}, got)
}
