package record

import (
	"strconv"
	"strings"
)

// FlightListResponse is the JSON body of the flight list endpoint.
type FlightListResponse struct {
	Result struct {
		Response struct {
			Item struct {
				Current int `json:"current"`
				Total   int `json:"total"`
				Limit   int `json:"limit"`
			} `json:"item"`
			Page struct {
				Current int  `json:"current"`
				More    bool `json:"more"`
			} `json:"page"`
			Data []FlightListItem `json:"data"`
		} `json:"response"`
	} `json:"result"`
}

// More reports whether the provider has further pages.
func (r *FlightListResponse) More() bool { return r.Result.Response.Page.More }

// Items on this page.
func (r *FlightListResponse) Items() []FlightListItem { return r.Result.Response.Data }

// FlightListItem is one flight in a flight list page. Most fields may be null.
type FlightListItem struct {
	Identification struct {
		ID     *string `json:"id"`
		Number struct {
			Default *string `json:"default"`
		} `json:"number"`
		Callsign *string `json:"callsign"`
	} `json:"identification"`
	Status struct {
		Live    bool    `json:"live"`
		Text    *string `json:"text"`
		Generic struct {
			Status struct {
				Text *string `json:"text"`
			} `json:"status"`
		} `json:"generic"`
	} `json:"status"`
	Aircraft *struct {
		Model struct {
			Code *string `json:"code"`
		} `json:"model"`
		Registration *string `json:"registration"`
		Hex          *string `json:"hex"`
	} `json:"aircraft"`
	Airport struct {
		Origin      *listAirport `json:"origin"`
		Destination *listAirport `json:"destination"`
	} `json:"airport"`
	Time struct {
		Scheduled listTimes `json:"scheduled"`
		Real      listTimes `json:"real"`
		Estimated listTimes `json:"estimated"`
	} `json:"time"`
}

type listAirport struct {
	Code struct {
		IATA *string `json:"iata"`
		ICAO *string `json:"icao"`
	} `json:"code"`
}

type listTimes struct {
	Departure *int64 `json:"departure"`
	Arrival   *int64 `json:"arrival"`
}

// FlightListEntry is one flight of a registration's or flight number's history.
// Times are Unix seconds; zero means not reported.
type FlightListEntry struct {
	FlightID     uint64 `json:"flight_id"`
	Number       string `json:"number"`
	Callsign     string `json:"callsign"`
	ICAO24       uint32 `json:"icao24"`
	Registration string `json:"registration"`
	Typecode     string `json:"typecode"`
	Origin       string `json:"origin"`
	Destination  string `json:"destination"`
	Status       string `json:"status"`
	STOD         int64  `json:"stod"`
	ETOD         int64  `json:"etod"`
	ATOD         int64  `json:"atod"`
	STOA         int64  `json:"stoa"`
	ETOA         int64  `json:"etoa"`
	ATOA         int64  `json:"atoa"`
}

var FlightListSchema = newSchema("flight_list", []column[FlightListEntry]{
	u64("flight_id", func(r *FlightListEntry) *uint64 { return &r.FlightID }),
	str("number", func(r *FlightListEntry) *string { return &r.Number }),
	str("callsign", func(r *FlightListEntry) *string { return &r.Callsign }),
	u32("icao24", func(r *FlightListEntry) *uint32 { return &r.ICAO24 }),
	str("registration", func(r *FlightListEntry) *string { return &r.Registration }),
	str("typecode", func(r *FlightListEntry) *string { return &r.Typecode }),
	str("origin", func(r *FlightListEntry) *string { return &r.Origin }),
	str("destination", func(r *FlightListEntry) *string { return &r.Destination }),
	str("status", func(r *FlightListEntry) *string { return &r.Status }),
	i64("stod", func(r *FlightListEntry) *int64 { return &r.STOD }),
	i64("etod", func(r *FlightListEntry) *int64 { return &r.ETOD }),
	i64("atod", func(r *FlightListEntry) *int64 { return &r.ATOD }),
	i64("stoa", func(r *FlightListEntry) *int64 { return &r.STOA }),
	i64("etoa", func(r *FlightListEntry) *int64 { return &r.ETOA }),
	i64("atoa", func(r *FlightListEntry) *int64 { return &r.ATOA }),
})

// FlightList flattens one page. Hex ids that fail to parse become zero.
func FlightList(resp *FlightListResponse) []FlightListEntry {
	if resp == nil {
		return []FlightListEntry{}
	}
	items := resp.Items()
	rows := make([]FlightListEntry, len(items))
	for i := range items {
		rows[i] = FlightListEntryOf(&items[i])
	}
	return rows
}

func FlightListEntryOf(item *FlightListItem) FlightListEntry {
	row := FlightListEntry{
		FlightID: parseHex(item.Identification.ID, 64),
		Number:   deref(item.Identification.Number.Default),
		Callsign: deref(item.Identification.Callsign),
		Status:   deref(item.Status.Text),
		STOD:     deref(item.Time.Scheduled.Departure),
		ETOD:     deref(item.Time.Estimated.Departure),
		ATOD:     deref(item.Time.Real.Departure),
		STOA:     deref(item.Time.Scheduled.Arrival),
		ETOA:     deref(item.Time.Estimated.Arrival),
		ATOA:     deref(item.Time.Real.Arrival),
	}
	if row.Status == "" {
		row.Status = deref(item.Status.Generic.Status.Text)
	}
	if a := item.Aircraft; a != nil {
		row.ICAO24 = uint32(parseHex(a.Hex, 32))
		row.Registration = deref(a.Registration)
		row.Typecode = deref(a.Model.Code)
	}
	if o := item.Airport.Origin; o != nil {
		row.Origin = airportCode(o)
	}
	if d := item.Airport.Destination; d != nil {
		row.Destination = airportCode(d)
	}
	return row
}

func airportCode(a *listAirport) string {
	if icao := deref(a.Code.ICAO); icao != "" {
		return icao
	}
	return deref(a.Code.IATA)
}

func parseHex(s *string, bits int) uint64 {
	if s == nil {
		return 0
	}
	v, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(*s), "0x"), 16, bits)
	if err != nil {
		return 0
	}
	return v
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
