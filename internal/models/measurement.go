package models

import "time"

// Document is a measurement payload as submitted by a device. It is stored
// verbatim, including fields the service does not know about.
type Document map[string]any

// Record is a stored measurement as returned by the history endpoint. Time is
// when the store accepted the record.
type Record struct {
	ID       string    `json:"id,omitempty"`
	Time     time.Time `json:"time"`
	Document Document  `json:"document"`
}

// Timestamp returns the document's timestamp field when it is a string.
func (d Document) Timestamp() (string, bool) {
	ts, ok := d["timestamp"].(string)
	return ts, ok
}

// Measures returns the document's measures field when it is a JSON object.
func (d Document) Measures() (map[string]any, bool) {
	m, ok := d["measures"].(map[string]any)
	return m, ok
}

// DeviceID returns the optional device identifier carried by some gateways.
func (d Document) DeviceID() string {
	for _, key := range []string{"deviceId", "device_id"} {
		if id, ok := d[key].(string); ok && id != "" {
			return id
		}
	}
	return ""
}

// Clone returns a shallow copy so stores can annotate without touching the caller's map.
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// DataResponse is the envelope returned by GET /data.
type DataResponse struct {
	Data DataPayload `json:"data"`
}

type DataPayload struct {
	Response []Record `json:"Response"`
}
