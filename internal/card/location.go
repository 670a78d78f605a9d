package card

import (
	"encoding/json"
	"fmt"
)

// LocationKind tags which variant a Location holds
type LocationKind int

const (
	// LocationUnset means the card carries no location
	LocationUnset LocationKind = iota
	// LocationPlace is a structured location with optional city, address and gps
	LocationPlace
	// LocationLegacy is a bare string, treated as a city name
	LocationLegacy
)

// GPS is a coordinate pair. Both values are always present together.
type GPS struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// MapsURL returns a link that opens the coordinates on a map
func (g GPS) MapsURL() string {
	return fmt.Sprintf("https://maps.google.com/?q=%v,%v", g.Lat, g.Lng)
}

// Location is the polymorphic location field of a card
type Location struct {
	Kind    LocationKind
	City    string
	Address string
	GPS     *GPS
	Legacy  string
}

// PlaceLocation builds a structured location
func PlaceLocation(city, address string, gps *GPS) Location {
	if city == "" && address == "" && gps == nil {
		return Location{}
	}
	return Location{Kind: LocationPlace, City: city, Address: address, GPS: gps}
}

// LegacyLocation builds a location from a bare city string
func LegacyLocation(city string) Location {
	return Location{Kind: LocationLegacy, Legacy: city}
}

// CityName returns the city carried by the location, if any
func (l Location) CityName() string {
	switch l.Kind {
	case LocationPlace:
		return l.City
	case LocationLegacy:
		return l.Legacy
	default:
		return ""
	}
}

// placeJSON is the wire form of a structured location
type placeJSON struct {
	City    string   `json:"city,omitempty"`
	Address string   `json:"address,omitempty"`
	GPS     *gpsJSON `json:"gps,omitempty"`
}

type gpsJSON struct {
	Lat *float64 `json:"lat,omitempty"`
	Lng *float64 `json:"lng,omitempty"`
}

// MarshalJSON writes an unset location as an empty object, a legacy location
// as a string and a place as an object
func (l Location) MarshalJSON() ([]byte, error) {
	switch l.Kind {
	case LocationLegacy:
		return json.Marshal(l.Legacy)
	case LocationPlace:
		p := placeJSON{City: l.City, Address: l.Address}
		if l.GPS != nil {
			lat, lng := l.GPS.Lat, l.GPS.Lng
			p.GPS = &gpsJSON{Lat: &lat, Lng: &lng}
		}
		return json.Marshal(p)
	default:
		return []byte("{}"), nil
	}
}

// UnmarshalJSON accepts null, a string or an object. Any other JSON value
// decodes as an unset location rather than failing the whole card.
func (l *Location) UnmarshalJSON(data []byte) error {
	*l, _ = decodeLocation(data)
	return nil
}

// decodeLocation reads the location field. City and address are read on
// their own so a malformed gps only drops the coordinates. Dropped parts are
// reported in notes.
func decodeLocation(data []byte) (Location, []string) {
	raw, ok := present(data)
	if !ok {
		return Location{}, nil
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil || s == "" {
			return Location{}, nil
		}
		return LegacyLocation(s), nil
	case '{':
		d := &fieldDecoder{}
		if err := json.Unmarshal(raw, &d.fields); err != nil {
			return Location{}, []string{"malformed object, ignored"}
		}
		city := d.text("city")
		address := d.text("address")
		gps := d.gps()
		return PlaceLocation(city, address, gps), d.notes
	default:
		return Location{}, []string{fmt.Sprintf("expected text or an object, ignored %s", raw)}
	}
}

// gps reads the coordinate pair. Coordinates may be numbers or numeric
// strings; a missing or unreadable half drops the pair.
func (d *fieldDecoder) gps() *GPS {
	raw, ok := d.raw("gps")
	if !ok {
		return nil
	}

	var pair map[string]json.RawMessage
	if err := json.Unmarshal(raw, &pair); err != nil {
		d.notef("gps: expected an object with lat and lng, ignored")
		return nil
	}
	latRaw, hasLat := present(pair["lat"])
	lngRaw, hasLng := present(pair["lng"])
	if !hasLat || !hasLng {
		if hasLat || hasLng {
			d.notef("gps: lat and lng must both be set, ignored")
		}
		return nil
	}
	lat, okLat := number(latRaw)
	lng, okLng := number(lngRaw)
	if !okLat || !okLng {
		d.notef("gps: coordinates are not numbers, ignored")
		return nil
	}
	return &GPS{Lat: lat, Lng: lng}
}
