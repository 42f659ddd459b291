package speakermatch

import "fmt"

// Method records which stage produced a mapping entry.
type Method int

const (
	MethodNone Method = iota
	MethodEmbedding
	MethodNameBased
	MethodScoreBased
	MethodElimination
)

// legacyEliminationTag is the tag earlier tagging runs stored for
// elimination matches.
const legacyEliminationTag = "소거법"

func (m Method) String() string {
	switch m {
	case MethodEmbedding:
		return "embedding"
	case MethodNameBased:
		return "name_based"
	case MethodScoreBased:
		return "score_based"
	case MethodElimination:
		return "elimination"
	default:
		return "none"
	}
}

// ParseMethod converts a stored tag back into a Method.
func ParseMethod(value string) (Method, error) {
	switch value {
	case "embedding":
		return MethodEmbedding, nil
	case "name_based":
		return MethodNameBased, nil
	case "score_based":
		return MethodScoreBased, nil
	case "elimination", legacyEliminationTag:
		return MethodElimination, nil
	case "none", "":
		return MethodNone, nil
	default:
		return MethodNone, fmt.Errorf("unknown match method %q", value)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Method) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Method) UnmarshalText(text []byte) error {
	parsed, err := ParseMethod(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
