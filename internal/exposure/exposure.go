// Package exposure builds the deduplicated, merged set of file/env
// exposures that the child runner and mount controller materialize.
package exposure

import "fmt"

// File is a file exposure spec: secretName's plaintext should appear as a
// file, optionally symlinked to a vanity path with a specific mode/owner.
type File struct {
	SecretName string
	VanityPath string // empty means no symlink, only root/<secret.name>
	Mode       uint32 // 0 means default (0o400)
	Owner      string // empty means the secret's OwnerUser, else unchanged
	Group      string // empty means the secret's OwnerGroup, else unchanged
}

// Env is an env exposure spec: secretName's plaintext should be set as
// EnvName in the child environment.
type Env struct {
	SecretName string
	EnvName    string
}

// Exposures is the immutable, finalized result of a Builder: two mappings
// keyed by secret name.
type Exposures struct {
	Files map[string][]File
	Envs  map[string][]Env
}

// DuplicatePathError reports that two File specs share a non-empty vanity
// path.
type DuplicatePathError struct {
	Path string
}

func (e *DuplicatePathError) Error() string {
	return fmt.Sprintf("duplicate vanity path: %s", e.Path)
}

// DuplicateEnvNameError reports that two Env specs share an env name.
type DuplicateEnvNameError struct {
	Name string
}

func (e *DuplicateEnvNameError) Error() string {
	return fmt.Sprintf("duplicate env name: %s", e.Name)
}

// UnknownSecretError reports that an exposure references a secret name not
// present in the configured secret set.
type UnknownSecretError struct {
	SecretName string
}

func (e *UnknownSecretError) Error() string {
	return fmt.Sprintf("no such secret: %s", e.SecretName)
}

// Builder accumulates File and Env specs from any number of sources (YAML
// config files, CLI flags, mount-config files) in any order and enforces
// the deduplication invariants before finalizing. A Builder is single-owner
// during construction — it is not safe for concurrent use.
type Builder struct {
	files       map[string][]File
	envs        map[string][]Env
	seenPaths   map[string]bool
	seenEnvVars map[string]bool
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		files:       make(map[string][]File),
		envs:        make(map[string][]Env),
		seenPaths:   make(map[string]bool),
		seenEnvVars: make(map[string]bool),
	}
}

// AddFile adds a File exposure. If f.VanityPath is non-empty and already
// claimed by a previously added File, returns DuplicatePathError and leaves
// the builder unchanged for this call — but any specs added before this
// call remain, matching the testable property that duplicates are caught
// before any I/O occurs (the builder never does I/O).
func (b *Builder) AddFile(f File) error {
	if f.VanityPath != "" {
		if b.seenPaths[f.VanityPath] {
			return &DuplicatePathError{Path: f.VanityPath}
		}
		b.seenPaths[f.VanityPath] = true
	}
	b.files[f.SecretName] = append(b.files[f.SecretName], f)
	return nil
}

// AddEnv adds an Env exposure. Duplicate EnvName across any inputs fails
// with DuplicateEnvNameError.
func (b *Builder) AddEnv(e Env) error {
	if b.seenEnvVars[e.EnvName] {
		return &DuplicateEnvNameError{Name: e.EnvName}
	}
	b.seenEnvVars[e.EnvName] = true
	b.envs[e.SecretName] = append(b.envs[e.SecretName], e)
	return nil
}

// AddFiles adds a batch of File specs, e.g. the contents of one config
// file's mapping. Addition order across batches does not affect the final
// result (commutativity of exposure addition) because the only thing that
// matters is set membership of vanity paths and env names, not order.
func (b *Builder) AddFiles(files []File) error {
	for _, f := range files {
		if err := b.AddFile(f); err != nil {
			return err
		}
	}
	return nil
}

// AddEnvs adds a batch of Env specs.
func (b *Builder) AddEnvs(envs []Env) error {
	for _, e := range envs {
		if err := b.AddEnv(e); err != nil {
			return err
		}
	}
	return nil
}

// Finalize validates that every referenced secret name exists in
// secretNames and returns the immutable Exposures.
func (b *Builder) Finalize(secretNames map[string]bool) (*Exposures, error) {
	for name := range b.files {
		if !secretNames[name] {
			return nil, &UnknownSecretError{SecretName: name}
		}
	}
	for name := range b.envs {
		if !secretNames[name] {
			return nil, &UnknownSecretError{SecretName: name}
		}
	}

	return &Exposures{Files: b.files, Envs: b.envs}, nil
}
