// Package store persists stage outputs on the local filesystem: fitted objects as gob, numeric
// arrays in the gonum binary matrix format and reports as YAML.
package store

import (
	"bufio"
	"encoding/gob"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"
)

// SaveObject gob-encodes v into path. Interface values held by v must have their concrete types
// registered with gob.Register.
func SaveObject(path string, v any) error {
	return writeFile(path, func(w io.Writer) error {
		return errors.Wrap(gob.NewEncoder(w).Encode(v), "unable to encode object")
	})
}

// LoadObject decodes a gob object saved by SaveObject into v.
func LoadObject(path string, v any) error {
	return readFile(path, func(r io.Reader) error {
		return errors.Wrap(gob.NewDecoder(r).Decode(v), "unable to decode object")
	})
}

// SaveArray writes m in the gonum binary matrix format.
func SaveArray(path string, m *mat.Dense) error {
	if m == nil || m.IsEmpty() {
		return errors.Errorf("unable to save empty array to %s", path)
	}

	return writeFile(path, func(w io.Writer) error {
		_, err := m.MarshalBinaryTo(w)

		return errors.Wrap(err, "unable to encode array")
	})
}

// LoadArray reads a matrix written by SaveArray.
func LoadArray(path string) (*mat.Dense, error) {
	var m mat.Dense
	err := readFile(path, func(r io.Reader) error {
		_, err := m.UnmarshalBinaryFrom(r)

		return errors.Wrap(err, "unable to decode array")
	})
	if err != nil {
		return nil, err
	}

	return &m, nil
}

// WriteYAML marshals v as YAML into path.
func WriteYAML(path string, v any) error {
	return writeFile(path, func(w io.Writer) error {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		err := enc.Encode(v)
		if err != nil {
			return errors.Wrap(err, "unable to encode yaml")
		}

		return errors.Wrap(enc.Close(), "unable to flush yaml")
	})
}

// ReadYAML unmarshals the YAML document at path into v.
func ReadYAML(path string, v any) error {
	return readFile(path, func(r io.Reader) error {
		return errors.Wrap(yaml.NewDecoder(r).Decode(v), "unable to decode yaml")
	})
}

// CopyFile copies src to dst, creating the parent directories of dst.
func CopyFile(src, dst string) error {
	return readFile(src, func(r io.Reader) error {
		return writeFile(dst, func(w io.Writer) error {
			_, err := io.Copy(w, r)

			return errors.Wrap(err, "unable to copy")
		})
	})
}

func writeFile(path string, fn func(w io.Writer) error) error {
	err := os.MkdirAll(filepath.Dir(path), 0o755)
	if err != nil {
		return errors.Wrapf(err, "unable to create directory for %s", path)
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "unable to create %s", path)
	}

	buf := bufio.NewWriter(file)
	err = fn(buf)
	if err == nil {
		err = buf.Flush()
	}
	if err != nil {
		file.Close()

		return errors.Wrapf(err, "unable to write %s", path)
	}

	return errors.Wrapf(file.Close(), "unable to close %s", path)
}

func readFile(path string, fn func(r io.Reader) error) error {
	file, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "unable to open %s", path)
	}
	defer file.Close()

	return errors.Wrapf(fn(bufio.NewReader(file)), "unable to read %s", path)
}
