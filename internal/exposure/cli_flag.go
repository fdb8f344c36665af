package exposure

import (
	"fmt"
	"strings"
)

// ParseFlag parses a single CLI exposure flag of the form
// "file:<secret_name>:<vanity_path>" or "env:<secret_name>:<ENV_NAME>".
// It returns exactly one of (*File, nil) or (nil, *Env).
func ParseFlag(raw string) (*File, *Env, error) {
	parts := strings.SplitN(raw, ":", 3)
	if len(parts) != 3 {
		return nil, nil, fmt.Errorf("invalid exposure flag %q: expected kind:secret:value", raw)
	}

	kind, secretName, value := parts[0], parts[1], parts[2]
	if secretName == "" {
		return nil, nil, fmt.Errorf("invalid exposure flag %q: empty secret name", raw)
	}
	if value == "" {
		return nil, nil, fmt.Errorf("invalid exposure flag %q: empty value", raw)
	}

	switch kind {
	case "file":
		return &File{SecretName: secretName, VanityPath: value}, nil, nil
	case "env":
		return nil, &Env{SecretName: secretName, EnvName: value}, nil
	default:
		return nil, nil, fmt.Errorf("invalid exposure flag %q: unknown kind %q (want file or env)", raw, kind)
	}
}

// AddFlag parses raw and adds the resulting spec to b.
func (b *Builder) AddFlag(raw string) error {
	file, env, err := ParseFlag(raw)
	if err != nil {
		return err
	}
	if file != nil {
		return b.AddFile(*file)
	}
	return b.AddEnv(*env)
}
