package karchive

import "encoding/base64"

// Bytes wraps a decoded NS.data payload so it survives a JSON round trip as
// URL-safe base64 with padding preserved, instead of encoding/json's default
// padded standard alphabet. Decode itself never produces this type — it is a
// convenience for callers that serialize the result tree with
// encoding/json, applied at the boundary rather than inside the decoder so
// the in-memory tree keeps plain []byte values.
type Bytes []byte

func (b Bytes) MarshalJSON() ([]byte, error) {
	enc := base64.URLEncoding.EncodeToString(b)
	out := make([]byte, 0, len(enc)+2)
	out = append(out, '"')
	out = append(out, enc...)
	out = append(out, '"')
	return out, nil
}

func (b *Bytes) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return errEnvelope("Bytes: not a JSON string")
	}
	decoded, err := base64.URLEncoding.DecodeString(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*b = decoded
	return nil
}

// ForJSON walks a Decode result and rewrites every []byte leaf into a
// Bytes, so json.Marshal renders them as URL-safe base64 instead of the
// standard alphabet it uses for plain []byte. Call it once on the
// top-level map right before marshaling; Decode's own output always uses
// plain []byte internally.
func ForJSON(v any) any {
	switch t := v.(type) {
	case []byte:
		return Bytes(t)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, elem := range t {
			out[k] = ForJSON(elem)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, elem := range t {
			out[i] = ForJSON(elem)
		}
		return out
	default:
		return v
	}
}
