package exposure

import "fmt"

// specYAML mirrors one entry of a mount-config mapping:
// `secret_name -> [ExposureSpec]`, ExposureSpec a tagged union on `type`.
type specYAML struct {
	Type       string `yaml:"type"`
	VanityPath string `yaml:"vanity_path,omitempty"`
	Mode       uint32 `yaml:"mode,omitempty"`
	Owner      string `yaml:"owner,omitempty"`
	Group      string `yaml:"group,omitempty"`
	EnvName    string `yaml:"env_name,omitempty"`
}

// MountConfig is the parsed shape of a YAML mount-config file: a mapping of
// secret name to an ordered list of exposure specs.
type MountConfig map[string][]specYAML

// AddMountConfig adds every exposure spec in mc to the builder.
func (b *Builder) AddMountConfig(mc MountConfig) error {
	for secretName, specs := range mc {
		for _, s := range specs {
			switch s.Type {
			case "file":
				if err := b.AddFile(File{
					SecretName: secretName,
					VanityPath: s.VanityPath,
					Mode:       s.Mode,
					Owner:      s.Owner,
					Group:      s.Group,
				}); err != nil {
					return err
				}
			case "env":
				if s.EnvName == "" {
					return fmt.Errorf("secret %q: env exposure missing env_name", secretName)
				}
				if err := b.AddEnv(Env{SecretName: secretName, EnvName: s.EnvName}); err != nil {
					return err
				}
			default:
				return fmt.Errorf("secret %q: unknown exposure type %q", secretName, s.Type)
			}
		}
	}
	return nil
}
