package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"

	"github.com/roach88/linkgraph/internal/graph"
)

// Load reads the snapshot at path and builds its graph. path is a YAML
// file (.yaml, .yml), a CUE file, or a directory of CUE files.
func Load(path string) (*graph.Graph, error) {
	doc, err := Read(path)
	if err != nil {
		return nil, err
	}
	return doc.Graph()
}

// Read decodes the snapshot at path without building the graph.
func Read(path string) (*Document, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, newLoadError(ErrCodeNotFound, "snapshot not found: %s", path)
	}
	if err != nil {
		return nil, newLoadError(ErrCodeNotFound, "error accessing snapshot: %v", err)
	}
	if info.IsDir() {
		return ReadCUE(path)
	}

	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, newLoadError(ErrCodeNotFound, "reading snapshot: %v", err)
		}
		return DecodeYAML(bytes.NewReader(data))
	case ".cue":
		return ReadCUE(path)
	default:
		return nil, newLoadError(ErrCodeGeneric, "unsupported snapshot format: %s", path)
	}
}

// DecodeYAML decodes a YAML document. Unknown fields are rejected.
func DecodeYAML(r io.Reader) (*Document, error) {
	var doc Document
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, newLoadError(ErrCodeGeneric, "empty snapshot")
		}
		return nil, newLoadError(ErrCodeGeneric, "parsing YAML: %v", err)
	}
	return &doc, nil
}

// ReadCUE loads a CUE file, or the CUE package in a directory, and decodes
// the resulting value. Fields that are not part of Document, at any depth,
// are rejected.
func ReadCUE(path string) (*Document, error) {
	cfg := &load.Config{Dir: path}
	args := []string{"."}
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		cfg.Dir = filepath.Dir(path)
		args = []string{filepath.Base(path)}
	} else {
		files, err := findCUEFiles(path)
		if err != nil {
			return nil, newLoadError(ErrCodeScanError, "error scanning directory: %v", err)
		}
		if len(files) == 0 {
			return nil, newLoadError(ErrCodeNoFiles, "no CUE files found in %s", path)
		}
	}

	instances := load.Instances(args, cfg)
	if len(instances) == 0 {
		return nil, newLoadError(ErrCodeLoadFailed, "no CUE instances loaded")
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, cueLoadError(ErrCodeLoadFailed, "loading CUE files", inst.Err)
	}

	value := cuecontext.New().BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, cueLoadError(ErrCodeBuildFailed, "building CUE value", err)
	}
	if err := value.Validate(); err != nil {
		return nil, cueLoadError(ErrCodeBuildFailed, "validating CUE value", err)
	}

	return decodeCUE(value)
}

// decodeCUE decodes value through its JSON form so that unknown fields are
// rejected at every depth, as the YAML decoder does.
func decodeCUE(value cue.Value) (*Document, error) {
	data, err := value.MarshalJSON()
	if err != nil {
		return nil, cueLoadError(ErrCodeGeneric, "decoding snapshot", err)
	}

	var doc Document
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		if name, ok := unknownField(err); ok {
			return nil, &LoadError{
				Code:    ErrCodeGeneric,
				Message: fmt.Sprintf("decoding snapshot: unknown field %s", name),
				Pos:     fieldPos(value, name),
			}
		}
		return nil, newLoadError(ErrCodeGeneric, "decoding snapshot: %v", err)
	}
	return &doc, nil
}

// unknownField extracts the field name from a DisallowUnknownFields error.
func unknownField(err error) (string, bool) {
	quoted, ok := strings.CutPrefix(err.Error(), "json: unknown field ")
	if !ok {
		return "", false
	}
	name, err := strconv.Unquote(quoted)
	if err != nil {
		return "", false
	}
	return name, true
}

// fieldPos returns the position of the first regular field called name,
// searching depth-first.
func fieldPos(v cue.Value, name string) token.Pos {
	switch v.IncompleteKind() {
	case cue.StructKind:
		iter, err := v.Fields()
		if err != nil {
			return token.NoPos
		}
		for iter.Next() {
			if iter.Selector().Unquoted() == name {
				return iter.Value().Pos()
			}
			if pos := fieldPos(iter.Value(), name); pos.IsValid() {
				return pos
			}
		}
	case cue.ListKind:
		iter, err := v.List()
		if err != nil {
			return token.NoPos
		}
		for iter.Next() {
			if pos := fieldPos(iter.Value(), name); pos.IsValid() {
				return pos
			}
		}
	}
	return token.NoPos
}

func cueLoadError(code, context string, err error) *LoadError {
	le := &LoadError{Code: code, Message: fmt.Sprintf("%s: %v", context, err)}
	if positions := cueerrors.Positions(err); len(positions) > 0 {
		le.Pos = positions[0]
	}
	return le
}

func findCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
