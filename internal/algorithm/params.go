package algorithm

import "fmt"

// Params carries the raw algorithm parameters from the game config. Values
// arrive as whatever the YAML/JSON decoder produced (float64, int, nested
// maps), so access goes through the typed helpers below.
type Params map[string]any

func (p Params) float(key string, def float64) float64 {
	v, ok := p[key]
	if !ok {
		return def
	}
	f, ok := toFloat(v)
	if !ok {
		return def
	}
	return f
}

func (p Params) str(key string) string {
	s, _ := p[key].(string)
	return s
}

// statMap reads a stat-name → number parameter such as additivePerLevel.
func (p Params) statMap(key string) map[string]float64 {
	raw, ok := p[key].(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]float64, len(raw))
	for k, v := range raw {
		if f, ok := toFloat(v); ok {
			out[k] = f
		}
	}
	return out
}

func (p Params) list(key string) []map[string]any {
	raw, ok := p[key].([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

func (p Params) requireFloat(key string) (float64, error) {
	v, ok := p[key]
	if !ok {
		return 0, fmt.Errorf("missing parameter %q", key)
	}
	f, ok := toFloat(v)
	if !ok {
		return 0, fmt.Errorf("parameter %q must be a number", key)
	}
	return f, nil
}

func (p Params) requireString(key string) (string, error) {
	v, ok := p[key]
	if !ok {
		return "", fmt.Errorf("missing parameter %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("parameter %q must be a string", key)
	}
	return s, nil
}
