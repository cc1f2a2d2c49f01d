package imu

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Wire formats accepted by the stream sources:
//
//	JSON: {"t":1712345678901,"ax":0.01,"ay":-0.98,"az":0.12,"gx":1.4,"gy":-210.5,"gz":3.0}
//	CSV:  1712345678901,0.01,-0.98,0.12,1.4,-210.5,3.0
//
// The timestamp field is unix milliseconds and optional in both forms; a
// missing or zero timestamp yields a zero T and the source stamps receive
// time.

// ErrBadSample reports a payload that could not be decoded as one combined
// sample. Sources count these and keep reading.
var ErrBadSample = errors.New("imu: malformed sample")

type wireSample struct {
	T  int64   `json:"t,omitempty"`
	Ax float64 `json:"ax"`
	Ay float64 `json:"ay"`
	Az float64 `json:"az"`
	Gx float64 `json:"gx"`
	Gy float64 `json:"gy"`
	Gz float64 `json:"gz"`
}

// ParseJSON decodes one JSON-encoded combined sample. Unknown fields are
// ignored so device bridges can attach their own metadata.
func ParseJSON(data []byte) (CombinedSample, error) {
	var w wireSample
	if err := json.Unmarshal(data, &w); err != nil {
		return CombinedSample{}, fmt.Errorf("%w: %v", ErrBadSample, err)
	}
	return w.toSample(), nil
}

// ParseCSV decodes one CSV-encoded combined sample. Both the 7-field form
// (leading timestamp) and the 6-field form are accepted.
func ParseCSV(line string) (CombinedSample, error) {
	fields := strings.Split(strings.TrimSpace(line), ",")

	var w wireSample
	switch len(fields) {
	case 7:
		t, err := strconv.ParseInt(strings.TrimSpace(fields[0]), 10, 64)
		if err != nil {
			return CombinedSample{}, fmt.Errorf("%w: bad timestamp %q", ErrBadSample, fields[0])
		}
		w.T = t
		fields = fields[1:]
	case 6:
		// no timestamp column
	default:
		return CombinedSample{}, fmt.Errorf("%w: got %d fields, want 6 or 7", ErrBadSample, len(fields))
	}

	vals := make([]float64, 6)
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return CombinedSample{}, fmt.Errorf("%w: bad value %q", ErrBadSample, f)
		}
		vals[i] = v
	}
	w.Ax, w.Ay, w.Az = vals[0], vals[1], vals[2]
	w.Gx, w.Gy, w.Gz = vals[3], vals[4], vals[5]
	return w.toSample(), nil
}

// MarshalCSV renders the 7-field CSV form used by recordings.
func MarshalCSV(s CombinedSample) string {
	var t int64
	if !s.T.IsZero() {
		t = s.T.UnixMilli()
	}
	return fmt.Sprintf("%d,%g,%g,%g,%g,%g,%g",
		t, s.Accel.X, s.Accel.Y, s.Accel.Z, s.Gyro.X, s.Gyro.Y, s.Gyro.Z)
}

func (w wireSample) toSample() CombinedSample {
	s := CombinedSample{
		Accel: Vec3{X: w.Ax, Y: w.Ay, Z: w.Az},
		Gyro:  Vec3{X: w.Gx, Y: w.Gy, Z: w.Gz},
	}
	if w.T != 0 {
		s.T = time.UnixMilli(w.T).UTC()
	}
	return s
}
