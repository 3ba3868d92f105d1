package pb

type LiveFlightsStatusRequest struct {
	FlightIDs []uint32
}

func (m *LiveFlightsStatusRequest) appendFields(e *encoder) {
	e.packedUint32s(1, m.FlightIDs)
}

func (m *LiveFlightsStatusRequest) Marshal() ([]byte, error) { return marshal(m), nil }

func (m *LiveFlightsStatusRequest) Unmarshal(b []byte) error {
	*m = LiveFlightsStatusRequest{}
	d := newDecoder(b)
	for d.next() {
		switch d.num {
		case 1:
			m.FlightIDs = d.uint32s(m.FlightIDs)
		default:
			d.skip()
		}
	}
	return d.err
}

type FlightStatusData struct {
	Lat    float32
	Lon    float32
	Status int32
	Squawk uint32
}

func (m *FlightStatusData) appendFields(e *encoder) {
	e.float32(1, m.Lat)
	e.float32(2, m.Lon)
	e.int32(3, m.Status)
	e.uint32(4, m.Squawk)
}

func (m *FlightStatusData) Marshal() ([]byte, error) { return marshal(m), nil }

func (m *FlightStatusData) Unmarshal(b []byte) error {
	*m = FlightStatusData{}
	d := newDecoder(b)
	for d.next() {
		switch d.num {
		case 1:
			m.Lat = d.float32()
		case 2:
			m.Lon = d.float32()
		case 3:
			m.Status = d.int32()
		case 4:
			m.Squawk = d.uint32()
		default:
			d.skip()
		}
	}
	return d.err
}

type FlightStatus struct {
	FlightID uint32
	Data     *FlightStatusData
}

func (m *FlightStatus) appendFields(e *encoder) {
	e.uint32(1, m.FlightID)
	if m.Data != nil {
		e.message(2, m.Data)
	}
}

func (m *FlightStatus) Marshal() ([]byte, error) { return marshal(m), nil }

func (m *FlightStatus) Unmarshal(b []byte) error {
	*m = FlightStatus{}
	d := newDecoder(b)
	for d.next() {
		switch d.num {
		case 1:
			m.FlightID = d.uint32()
		case 2:
			m.Data = new(FlightStatusData)
			d.message(m.Data)
		default:
			d.skip()
		}
	}
	return d.err
}

type LiveFlightsStatusResponse struct {
	Flights []FlightStatus
}

func (m *LiveFlightsStatusResponse) appendFields(e *encoder) {
	for i := range m.Flights {
		e.message(1, &m.Flights[i])
	}
}

func (m *LiveFlightsStatusResponse) Marshal() ([]byte, error) { return marshal(m), nil }

func (m *LiveFlightsStatusResponse) Unmarshal(b []byte) error {
	*m = LiveFlightsStatusResponse{}
	d := newDecoder(b)
	for d.next() {
		switch d.num {
		case 1:
			var s FlightStatus
			d.message(&s)
			m.Flights = append(m.Flights, s)
		default:
			d.skip()
		}
	}
	return d.err
}
