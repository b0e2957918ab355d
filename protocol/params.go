package protocol

import (
	"encoding/json"
	"reflect"
	"strconv"
)

// Params carries command parameters on the wire. It exists because
// encoding/json turns a raw byte slice into a base64 string, while the wire
// format is a plain JSON array of numbers in 0-255.
type Params []uint8

func (p Params) MarshalJSON() ([]byte, error) {
	buf := make([]byte, 0, len(p)*4+2)
	buf = append(buf, '[')
	for i, v := range p {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = strconv.AppendUint(buf, uint64(v), 10)
	}
	return append(buf, ']'), nil
}

func (p *Params) UnmarshalJSON(data []byte) error {
	var raw []int64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Params, len(raw))
	for i, v := range raw {
		if v < 0 || v > 255 {
			return &json.UnmarshalTypeError{
				Value: "number " + strconv.FormatInt(v, 10),
				Type:  reflect.TypeOf(uint8(0)),
			}
		}
		out[i] = uint8(v)
	}
	*p = out
	return nil
}
