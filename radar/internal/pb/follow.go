package pb

type FollowFlightRequest struct {
	FlightID        uint32
	RestrictionMode RestrictionVisibility
}

func (m *FollowFlightRequest) appendFields(e *encoder) {
	e.uint32(1, m.FlightID)
	e.int32(2, int32(m.RestrictionMode))
}

func (m *FollowFlightRequest) Marshal() ([]byte, error) { return marshal(m), nil }

func (m *FollowFlightRequest) Unmarshal(b []byte) error {
	*m = FollowFlightRequest{}
	d := newDecoder(b)
	for d.next() {
		switch d.num {
		case 1:
			m.FlightID = d.uint32()
		case 2:
			m.RestrictionMode = RestrictionVisibility(d.int32())
		default:
			d.skip()
		}
	}
	return d.err
}

// FollowFlightResponse is one server-streamed update. The first message of a
// stream is usually complete, later ones only carry what changed.
type FollowFlightResponse struct {
	AircraftInfo   *AircraftInfo
	FlightInfo     *ExtendedFlightInfo
	ScheduleInfo   *ScheduleInfo
	FlightProgress *FlightProgress
	FlightTrail    []TrailPoint
}

func (m *FollowFlightResponse) appendFields(e *encoder) {
	if m.AircraftInfo != nil {
		e.message(1, m.AircraftInfo)
	}
	if m.FlightInfo != nil {
		e.message(3, m.FlightInfo)
	}
	if m.ScheduleInfo != nil {
		e.message(4, m.ScheduleInfo)
	}
	if m.FlightProgress != nil {
		e.message(5, m.FlightProgress)
	}
	for i := range m.FlightTrail {
		e.message(6, &m.FlightTrail[i])
	}
}

func (m *FollowFlightResponse) Marshal() ([]byte, error) { return marshal(m), nil }

func (m *FollowFlightResponse) Unmarshal(b []byte) error {
	*m = FollowFlightResponse{}
	d := newDecoder(b)
	for d.next() {
		switch d.num {
		case 1:
			m.AircraftInfo = new(AircraftInfo)
			d.message(m.AircraftInfo)
		case 3:
			m.FlightInfo = new(ExtendedFlightInfo)
			d.message(m.FlightInfo)
		case 4:
			m.ScheduleInfo = new(ScheduleInfo)
			d.message(m.ScheduleInfo)
		case 5:
			m.FlightProgress = new(FlightProgress)
			d.message(m.FlightProgress)
		case 6:
			var p TrailPoint
			d.message(&p)
			m.FlightTrail = append(m.FlightTrail, p)
		default:
			d.skip()
		}
	}
	return d.err
}
