package karchive

// classDescriptor returns the $classname and $classes ancestor list
// referenced by a record's $class UID, or an error naming which structural
// field was missing.
func classDescriptor(record map[string]any, pool []any) (name string, ancestors []string, err error) {
	classProp, ok := record["$class"]
	if !ok {
		return "", nil, errStructural("", "$class", "missing $class property")
	}

	idx, ok := IsUID(classProp)
	if !ok {
		return "", nil, errStructural("", "$class", "$class is not a UID")
	}
	if idx < 0 || idx >= len(pool) {
		return "", nil, errPoolRef("", "$class", "UID out of range")
	}

	descriptor, ok := pool[idx].(map[string]any)
	if !ok {
		return "", nil, errPoolRef("", "$class", "referenced class descriptor is missing")
	}

	classname, ok := descriptor["$classname"].(string)
	if !ok || classname == "" {
		return "", nil, errStructural("", "$classname", "missing $classname in class descriptor")
	}

	if rawClasses, ok := descriptor["$classes"].([]any); ok {
		for _, c := range rawClasses {
			if s, ok := c.(string); ok {
				ancestors = append(ancestors, s)
			}
		}
	}

	return classname, ancestors, nil
}

// classNameOf returns the archived class name of record. Absence of $class
// is not an error here: it returns "" and a nil error.
func classNameOf(record map[string]any, pool []any) (string, error) {
	if _, ok := record["$class"]; !ok {
		return "", nil
	}
	name, _, err := classDescriptor(record, pool)
	return name, err
}
