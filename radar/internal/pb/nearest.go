package pb

type Geolocation struct {
	Lat float64
	Lon float64
}

func (m *Geolocation) appendFields(e *encoder) {
	e.float64(1, m.Lat)
	e.float64(2, m.Lon)
}

func (m *Geolocation) Marshal() ([]byte, error) { return marshal(m), nil }

func (m *Geolocation) Unmarshal(b []byte) error {
	*m = Geolocation{}
	d := newDecoder(b)
	for d.next() {
		switch d.num {
		case 1:
			m.Lat = d.float64()
		case 2:
			m.Lon = d.float64()
		default:
			d.skip()
		}
	}
	return d.err
}

// NearestFlightsRequest asks for flights around a point. Radius is in metres.
type NearestFlightsRequest struct {
	Location *Geolocation
	Radius   uint32
	Limit    uint32
}

func (m *NearestFlightsRequest) appendFields(e *encoder) {
	if m.Location != nil {
		e.message(1, m.Location)
	}
	e.uint32(2, m.Radius)
	e.uint32(3, m.Limit)
}

func (m *NearestFlightsRequest) Marshal() ([]byte, error) { return marshal(m), nil }

func (m *NearestFlightsRequest) Unmarshal(b []byte) error {
	*m = NearestFlightsRequest{}
	d := newDecoder(b)
	for d.next() {
		switch d.num {
		case 1:
			m.Location = new(Geolocation)
			d.message(m.Location)
		case 2:
			m.Radius = d.uint32()
		case 3:
			m.Limit = d.uint32()
		default:
			d.skip()
		}
	}
	return d.err
}

// NearbyFlight is a Flight with its distance from the query point in metres.
type NearbyFlight struct {
	Flight   *Flight
	Distance uint32
}

func (m *NearbyFlight) appendFields(e *encoder) {
	if m.Flight != nil {
		e.message(1, m.Flight)
	}
	e.uint32(2, m.Distance)
}

func (m *NearbyFlight) Marshal() ([]byte, error) { return marshal(m), nil }

func (m *NearbyFlight) Unmarshal(b []byte) error {
	*m = NearbyFlight{}
	d := newDecoder(b)
	for d.next() {
		switch d.num {
		case 1:
			m.Flight = new(Flight)
			d.message(m.Flight)
		case 2:
			m.Distance = d.uint32()
		default:
			d.skip()
		}
	}
	return d.err
}

type NearestFlightsResponse struct {
	Flights []NearbyFlight
}

func (m *NearestFlightsResponse) appendFields(e *encoder) {
	for i := range m.Flights {
		e.message(1, &m.Flights[i])
	}
}

func (m *NearestFlightsResponse) Marshal() ([]byte, error) { return marshal(m), nil }

func (m *NearestFlightsResponse) Unmarshal(b []byte) error {
	*m = NearestFlightsResponse{}
	d := newDecoder(b)
	for d.next() {
		switch d.num {
		case 1:
			var f NearbyFlight
			d.message(&f)
			m.Flights = append(m.Flights, f)
		default:
			d.skip()
		}
	}
	return d.err
}
