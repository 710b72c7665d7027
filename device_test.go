package syncboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpalmerr/syncboard/table"
)

func TestDeviceRow(t *testing.T) {
	tests := []struct {
		name      string
		device    Device
		wantClass string
		wantLabel string
	}{
		{
			name:      "online",
			device:    Device{Name: "nodeA", ID: "1", Online: true, LastSeen: "12:00", IP: "10.0.0.1"},
			wantClass: "online",
			wantLabel: "Online",
		},
		{
			name:      "offline",
			device:    Device{Name: "nodeB", ID: "2", Online: false, LastSeen: "yesterday", IP: "10.0.0.2"},
			wantClass: "offline",
			wantLabel: "Offline",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := DeviceRow(tt.device)

			require.Len(t, row.Cells, len(DeviceColumns))
			assert.Equal(t, []string{tt.device.Name, tt.device.ID, tt.wantLabel, tt.device.LastSeen, tt.device.IP}, row.Texts())
			assert.Equal(t, table.Classed(tt.wantLabel, tt.wantClass), row.Cells[2])
			assert.Equal(t, tt.wantClass, tt.device.State())
			assert.Equal(t, tt.wantLabel, tt.device.Label())
		})
	}
}

func TestDeviceRow_LastSeenVerbatim(t *testing.T) {
	row := DeviceRow(Device{LastSeen: "  2026-01-02T03:04:05Z (approx) "})
	assert.Equal(t, "  2026-01-02T03:04:05Z (approx) ", row.Cells[3].Text)
}

func TestDecodeDevices(t *testing.T) {
	devices, err := DecodeDevices([]byte(`[
		{"name":"nodeA","id":"1","online":true,"last_seen":"12:00","ip":"10.0.0.1"},
		{"name":"nodeB","id":"2","online":false,"last_seen":"11:00","ip":"10.0.0.2"}
	]`))

	require.NoError(t, err)
	require.Len(t, devices, 2)
	assert.Equal(t, Device{Name: "nodeA", ID: "1", Online: true, LastSeen: "12:00", IP: "10.0.0.1"}, devices[0])
	assert.Equal(t, "nodeB", devices[1].Name)
	assert.False(t, devices[1].Online)
}

func TestDecodeDevices_EmptyArray(t *testing.T) {
	devices, err := DecodeDevices([]byte(` [] `))
	require.NoError(t, err)
	assert.Empty(t, devices)
}

func TestDecodeDevices_NotAnArray(t *testing.T) {
	bodies := map[string]string{
		"null":               `null`,
		"empty body":         ``,
		"object":             `{"name":"nodeA"}`,
		"string":             `"nodeA"`,
		"truncated":          `[{"name":"nodeA"`,
		"wrong type":         `[{"name":"nodeA","online":"yes"}]`,
		"numbers":            `[1,2,3]`,
		"null element":       `[null]`,
		"null after valid":   `[{"name":"nodeA"},null]`,
		"bare online string": `[{"online":"yes"}]`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeDevices([]byte(body))
			assert.Error(t, err)
		})
	}
}
