package restclient

// OutputName returns the field name value is written under: the mapped
// name when output has a mapping entry, output itself otherwise.
func OutputName(output string, mapping MappingParams) string {
	if mapped, ok := mapping[output]; ok && mapped != "" {
		return mapped
	}
	return output
}

// Merge returns one new record per input: a shallow copy of the input with
// value stored under the (possibly mapped) output name.
func Merge(inputs []PluginParams, output string, value any, mapping MappingParams) []PluginParams {
	name := OutputName(output, mapping)
	out := make([]PluginParams, len(inputs))
	for i, in := range inputs {
		rec := make(PluginParams, len(in)+1)
		for k, v := range in {
			rec[k] = v
		}
		rec[name] = value
		out[i] = rec
	}
	return out
}
