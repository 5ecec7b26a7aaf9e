// Package workset implements the work-set diff (C6), the single mechanism
// that makes the ingestion pipeline incremental and idempotent: every stage
// calls Diff before doing any work so reruns skip what is already committed
// to disk.
package workset

// Diff partitions a source key set s against a downstream artifact's key
// set d. A nil or empty d is treated as "no downstream artifact yet" (spec
// §4.1: missing downstream artifact => D = empty).
//
// ok is false when s itself is empty, signalling "nothing to do" to the
// caller (spec §4.1: missing upstream artifact => empty sets, nothing to
// do). Callers that already know s is non-empty may ignore ok.
func Diff(s []string, d map[string]struct{}) (toProcess, alreadyProcessed []string, ok bool) {
	if len(s) == 0 {
		return nil, nil, false
	}
	toProcess = make([]string, 0, len(s))
	alreadyProcessed = make([]string, 0, len(s))
	for _, key := range s {
		if _, done := d[key]; done {
			alreadyProcessed = append(alreadyProcessed, key)
		} else {
			toProcess = append(toProcess, key)
		}
	}
	return toProcess, alreadyProcessed, true
}

// KeysOf builds the key set a downstream JSON artifact's map keys form, for
// use as Diff's d argument.
func KeysOf[V any](m map[string]V) map[string]struct{} {
	out := make(map[string]struct{}, len(m))
	for k := range m {
		out[k] = struct{}{}
	}
	return out
}

// RestrictToKeys returns the subset of m whose keys are in keys, for
// building the "upstream values keyed by to_process" half of a stage's
// Diff output (spec §4.1).
func RestrictToKeys[V any](m map[string]V, keys []string) map[string]V {
	out := make(map[string]V, len(keys))
	for _, k := range keys {
		if v, ok := m[k]; ok {
			out[k] = v
		}
	}
	return out
}
