// Package brickyard implements the user-scoped registry that maps logical
// blueprint names to filesystem locations, persisted as a small
// length-prefixed binary file.
package brickyard

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/distribution/reference"
	"github.com/opencontainers/go-digest"
)

// entryBlueprint is the only record tag this format defines today; any
// other tag byte encountered while loading rejects the whole file.
const entryBlueprint byte = 0x01

// Entry is a single name -> (version, path) mapping.
type Entry struct {
	Name    string
	Version string
	Path    string
}

// Yard is an in-memory brickyard: an ordered, duplicate-permitting list of
// entries plus a dirty flag so an unchanged yard is never rewritten.
type Yard struct {
	entries []Entry
	dirty   bool
}

// New returns an empty Yard.
func New() *Yard {
	return &Yard{}
}

// DefaultPath returns the conventional brickyard location,
// <user-config>/bricks/brick.yard, using os.UserConfigDir for the
// per-platform base (%AppData% on Windows, ~/Library/Application Support
// on macOS, $XDG_CONFIG_HOME or ~/.config on other Unix systems) instead of
// the original's hand-rolled platform_application_data_directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "bricks", "brick.yard"), nil
}

// Add appends a new entry, duplicates permitted, and marks the yard dirty.
func (y *Yard) Add(name, version, path string) {
	y.entries = append(y.entries, Entry{Name: name, Version: version, Path: path})
	y.dirty = true
}

// Find performs a linear scan and returns the path of the first entry
// matching name and, when version is non-empty, also matching version. An
// empty version matches any version of that name.
func (y *Yard) Find(name, version string) (string, bool) {
	for _, e := range y.entries {
		if e.Name != name {
			continue
		}
		if version != "" && e.Version != version {
			continue
		}
		return e.Path, true
	}
	return "", false
}

// Entries returns the yard's entries in insertion order. The returned
// slice must not be mutated by the caller.
func (y *Yard) Entries() []Entry {
	return y.entries
}

// IsDirty reports whether Add has been called since the last Save.
func (y *Yard) IsDirty() bool {
	return y.dirty
}

// Load reads the contents of path into a new Yard. Duplicates are allowed
// on read; an unknown record tag rejects the whole file, and Load then
// returns an error and no Yard, matching the original's "whole file
// rejected" behavior.
func Load(path string) (*Yard, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	y := &Yard{}
	r := bufio.NewReader(f)
	for {
		tag, err := r.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if tag != entryBlueprint {
			return nil, fmt.Errorf("brickyard: unknown record tag 0x%02x in %s", tag, path)
		}

		name, err := readString(r)
		if err != nil {
			return nil, err
		}
		version, err := readString(r)
		if err != nil {
			return nil, err
		}
		path, err := readString(r)
		if err != nil {
			return nil, err
		}
		y.entries = append(y.entries, Entry{Name: name, Version: version, Path: path})
	}

	return y, nil
}

// Save truncates and rewrites path with y's entries when y is dirty or
// force is set; otherwise it is a no-op. A successful rewrite clears the
// dirty flag.
func (y *Yard) Save(path string, force bool) error {
	if !y.dirty && !force {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, e := range y.entries {
		if err := w.WriteByte(entryBlueprint); err != nil {
			return err
		}
		if err := writeString(w, e.Name); err != nil {
			return err
		}
		if err := writeString(w, e.Version); err != nil {
			return err
		}
		if err := writeString(w, e.Path); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	y.dirty = false
	return nil
}

// ValidateName rejects names that aren't valid brickyard identifiers,
// reusing the name grammar github.com/distribution/reference uses for
// image repository names instead of a hand-rolled character class check.
func ValidateName(name string) error {
	if _, err := reference.ParseNormalizedNamed(name); err != nil {
		return fmt.Errorf("brickyard: invalid name %q: %w", name, err)
	}
	return nil
}

// pathDigest computes a content-addressable digest of an absolute,
// cleaned path so two different spellings of the same directory compare
// equal (SPEC_FULL.md §D.4).
func pathDigest(path string) (digest.Digest, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return digest.FromString(filepath.Clean(abs)), nil
}

// DuplicateNameError reports that name is already registered under a
// different path than the one being registered.
type DuplicateNameError struct {
	Name         string
	ExistingPath string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("brickyard: %q is already registered at %s", e.Name, e.ExistingPath)
}

// CheckDuplicate reports a *DuplicateNameError if name is already
// registered in y under a *different* path than path. Re-registering the
// identical path is not an error. It never mutates y. Used by the
// `register` CLI command to refuse silently overwriting an existing
// brick under a new location without --force; `Brickyard.Add` itself
// still permits duplicates for every other caller (spec.md §4.6).
func CheckDuplicate(y *Yard, name, path string) error {
	wantDigest, err := pathDigest(path)
	if err != nil {
		return err
	}

	for _, e := range y.entries {
		if e.Name != name {
			continue
		}
		haveDigest, err := pathDigest(e.Path)
		if err != nil {
			return err
		}
		if haveDigest != wantDigest {
			return &DuplicateNameError{Name: name, ExistingPath: e.Path}
		}
	}
	return nil
}

func readString(r *bufio.Reader) (string, error) {
	var length uint32
	if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
		return "", err
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func writeString(w *bufio.Writer, s string) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(s))); err != nil {
		return err
	}
	_, err := w.WriteString(s)
	return err
}
