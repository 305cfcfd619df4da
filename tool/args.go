package tool

import "slices"

// ValidateArguments checks an argument map against a descriptor's parameter
// schema and returns the coerced copy the handler will receive. The first
// violated constraint is named in the returned INVALID_ARGUMENTS error.
//
// Declaration order decides which violation is reported first, so checks run
// over Params in order before scanning for unknown keys.
func ValidateArguments(desc Descriptor, args map[string]any) (map[string]any, error) {
	validated := make(map[string]any, len(args))
	known := make(map[string]struct{}, len(desc.Params))

	for _, param := range desc.Params {
		known[param.Name] = struct{}{}

		value, present := args[param.Name]
		if !present {
			if param.Required {
				return nil, InvalidArgumentsError("missing required argument %q", param.Name)
			}
			continue
		}

		coerced, ok := Coerce(value, param.Type)
		if !ok {
			return nil, InvalidArgumentsError("argument %q must be of type %s", param.Name, param.Type)
		}
		validated[param.Name] = coerced
	}

	if !desc.AllowExtras {
		for _, key := range sortedKeys(args) {
			if _, ok := known[key]; !ok {
				return nil, InvalidArgumentsError("unknown argument %q", key)
			}
		}
	} else {
		for key, value := range args {
			if _, ok := known[key]; !ok {
				validated[key] = value
			}
		}
	}

	return validated, nil
}

// ValidatePromptArguments applies the same schema rules to prompt arguments.
func ValidatePromptArguments(p Prompt, args map[string]any) (map[string]any, error) {
	return ValidateArguments(Descriptor{Name: p.Name, Params: p.Params}, args)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}
