package config

// Payload is the decoded, format-agnostic configuration: plain Go values as
// a YAML or HCL decoder produces them (map[string]any, []any, string, bool,
// numbers). The resolver consumes a Payload without knowing which syntax it
// came from.
type Payload = map[string]any

// Merge combines configuration payloads in argument order, later payloads
// overriding earlier ones key by key at the top level. Nested values are
// replaced wholesale; a file definition is a unit and splicing two halves of
// one together would produce a configuration nobody wrote.
func Merge(payloads ...Payload) Payload {
	merged := Payload{}
	for _, p := range payloads {
		for k, v := range p {
			merged[k] = v
		}
	}
	return merged
}
