package pb

type TopFlightsRequest struct {
	Limit uint32
}

func (m *TopFlightsRequest) appendFields(e *encoder) {
	e.uint32(1, m.Limit)
}

func (m *TopFlightsRequest) Marshal() ([]byte, error) { return marshal(m), nil }

func (m *TopFlightsRequest) Unmarshal(b []byte) error {
	*m = TopFlightsRequest{}
	d := newDecoder(b)
	for d.next() {
		switch d.num {
		case 1:
			m.Limit = d.uint32()
		default:
			d.skip()
		}
	}
	return d.err
}

// FollowedFlight is one entry of the most-tracked scoreboard.
type FollowedFlight struct {
	FlightID        uint32
	LiveClicks      uint32
	TotalClicks     uint32
	FlightNumber    string
	Callsign        string
	Squawk          uint32
	FromIATA        string
	FromCity        string
	ToIATA          string
	ToCity          string
	Type            string
	FullDescription string
}

func (m *FollowedFlight) appendFields(e *encoder) {
	e.uint32(1, m.FlightID)
	e.uint32(2, m.LiveClicks)
	e.uint32(3, m.TotalClicks)
	e.string(4, m.FlightNumber)
	e.string(5, m.Callsign)
	e.uint32(6, m.Squawk)
	e.string(7, m.FromIATA)
	e.string(8, m.FromCity)
	e.string(9, m.ToIATA)
	e.string(10, m.ToCity)
	e.string(11, m.Type)
	e.string(12, m.FullDescription)
}

func (m *FollowedFlight) Marshal() ([]byte, error) { return marshal(m), nil }

func (m *FollowedFlight) Unmarshal(b []byte) error {
	*m = FollowedFlight{}
	d := newDecoder(b)
	for d.next() {
		switch d.num {
		case 1:
			m.FlightID = d.uint32()
		case 2:
			m.LiveClicks = d.uint32()
		case 3:
			m.TotalClicks = d.uint32()
		case 4:
			m.FlightNumber = d.string()
		case 5:
			m.Callsign = d.string()
		case 6:
			m.Squawk = d.uint32()
		case 7:
			m.FromIATA = d.string()
		case 8:
			m.FromCity = d.string()
		case 9:
			m.ToIATA = d.string()
		case 10:
			m.ToCity = d.string()
		case 11:
			m.Type = d.string()
		case 12:
			m.FullDescription = d.string()
		default:
			d.skip()
		}
	}
	return d.err
}

type TopFlightsResponse struct {
	Scoreboard []FollowedFlight
}

func (m *TopFlightsResponse) appendFields(e *encoder) {
	for i := range m.Scoreboard {
		e.message(1, &m.Scoreboard[i])
	}
}

func (m *TopFlightsResponse) Marshal() ([]byte, error) { return marshal(m), nil }

func (m *TopFlightsResponse) Unmarshal(b []byte) error {
	*m = TopFlightsResponse{}
	d := newDecoder(b)
	for d.next() {
		switch d.num {
		case 1:
			var f FollowedFlight
			d.message(&f)
			m.Scoreboard = append(m.Scoreboard, f)
		default:
			d.skip()
		}
	}
	return d.err
}

// FetchSearchIndexRequest has no fields.
type FetchSearchIndexRequest struct{}

func (m *FetchSearchIndexRequest) appendFields(*encoder) {}

func (m *FetchSearchIndexRequest) Marshal() ([]byte, error) { return marshal(m), nil }

func (m *FetchSearchIndexRequest) Unmarshal(b []byte) error {
	d := newDecoder(b)
	for d.next() {
		d.skip()
	}
	return d.err
}

type FetchSearchIndexResponse struct {
	Flights []Flight
}

func (m *FetchSearchIndexResponse) appendFields(e *encoder) {
	for i := range m.Flights {
		e.message(1, &m.Flights[i])
	}
}

func (m *FetchSearchIndexResponse) Marshal() ([]byte, error) { return marshal(m), nil }

func (m *FetchSearchIndexResponse) Unmarshal(b []byte) error {
	*m = FetchSearchIndexResponse{}
	d := newDecoder(b)
	for d.next() {
		switch d.num {
		case 1:
			var f Flight
			d.message(&f)
			m.Flights = append(m.Flights, f)
		default:
			d.skip()
		}
	}
	return d.err
}
