package syncboard

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jpalmerr/syncboard/table"
)

// Presence classes carried by the status cell of a device row.
const (
	ClassOnline  = "online"
	ClassOffline = "offline"
)

// DeviceColumns are the headers of the device table, in cell order.
var DeviceColumns = []string{"Name", "ID", "Status", "Last Seen", "IP"}

// Device is one known peer as reported by GET /peers.
//
// LastSeen is opaque and displayed verbatim.
type Device struct {
	Name     string `json:"name"`
	ID       string `json:"id"`
	Online   bool   `json:"online"`
	LastSeen string `json:"last_seen"`
	IP       string `json:"ip"`
}

// State returns the presence class: [ClassOnline] or [ClassOffline].
func (d Device) State() string {
	if d.Online {
		return ClassOnline
	}
	return ClassOffline
}

// Label returns the human-readable presence: "Online" or "Offline".
func (d Device) Label() string {
	if d.Online {
		return "Online"
	}
	return "Offline"
}

// DeviceRow renders a device as name | id | status | last seen | ip.
// The status cell carries the presence class.
func DeviceRow(d Device) table.Row {
	return table.NewRow(
		table.Text(d.Name),
		table.Text(d.ID),
		table.Classed(d.Label(), d.State()),
		table.Text(d.LastSeen),
		table.Text(d.IP),
	)
}

var errNotDeviceArray = errors.New("expected a JSON array of devices")

// DecodeDevices parses a /peers body.
//
// The body must be a JSON array of device objects. Anything else, including
// null, an empty body and a null element, is an error.
func DecodeDevices(body []byte) ([]Device, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, errNotDeviceArray
	}

	devices, err := decodeObjects[Device](trimmed)
	if err != nil {
		return nil, fmt.Errorf("decode devices: %w", err)
	}
	return devices, nil
}

// decodeObjects unmarshals a JSON array whose elements must all be objects.
// A null element is rejected rather than decoded as a zero value.
func decodeObjects[T any](data []byte) ([]T, error) {
	var ptrs []*T
	if err := json.Unmarshal(data, &ptrs); err != nil {
		return nil, err
	}
	out := make([]T, len(ptrs))
	for i, p := range ptrs {
		if p == nil {
			return nil, fmt.Errorf("element %d is null", i)
		}
		out[i] = *p
	}
	return out, nil
}
