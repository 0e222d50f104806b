// Package script applies a list of edits, written as YAML, to a tree.
// It drives the same node operations as the interactive editor.
//
//	steps:
//	  - {op: rename, path: name, value: title}
//	  - {op: remove, path: tags/0}
//	  - {op: append, path: tags}
//	  - {op: edit, path: tags/1, value: "42"}
//
// Paths are keys joined with "/"; "~1" stands for "/" and "~0" for "~"
// inside a key. The empty path is the document itself.
package script

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/mcncl/jsonedit/internal/errors"
	"github.com/mcncl/jsonedit/internal/parser"
	"github.com/mcncl/jsonedit/internal/tree"
)

// Op names a script step.
type Op string

const (
	OpEdit   Op = "edit"
	OpToggle Op = "toggle"
	OpRename Op = "rename"
	OpAppend Op = "append"
	OpRemove Op = "remove"
	OpSet    Op = "set"
)

// Step is one edit.
type Step struct {
	Op   Op     `yaml:"op"`
	Path string `yaml:"path"`
	// Value is the typed text for edit, the new key for rename and JSON
	// text for set.
	Value string `yaml:"value,omitempty"`
}

// Script is a list of steps.
type Script struct {
	Steps []Step `yaml:"steps"`
}

// Parse decodes a script.
func Parse(data []byte) (Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Script{}, errors.NewInputError("failed to parse script", err)
	}
	for i, step := range s.Steps {
		switch step.Op {
		case OpEdit, OpToggle, OpRename, OpAppend, OpRemove, OpSet:
		default:
			return Script{}, errors.NewInputError(fmt.Sprintf("step %d: unknown op %q", i+1, step.Op), errors.ErrNotSupported)
		}
	}
	return s, nil
}

// Load reads and decodes the script at path.
func Load(path string) (Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Script{}, errors.NewInputError(fmt.Sprintf("script '%s' not found", path), errors.ErrFileNotFound)
		}
		return Script{}, errors.NewInputError(fmt.Sprintf("failed to read script '%s'", path), err)
	}
	return Parse(data)
}

// SplitPath turns a slash separated path into keys.
func SplitPath(path string) []string {
	if path == "" {
		return nil
	}
	parts := strings.Split(path, "/")
	for i, p := range parts {
		parts[i] = strings.ReplaceAll(strings.ReplaceAll(p, "~1", "/"), "~0", "~")
	}
	return parts
}

// Runner applies scripts to a tree.
type Runner struct {
	tree *tree.Tree
	log  *zap.Logger
}

// NewRunner creates a Runner for t.
func NewRunner(t *tree.Tree, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{tree: t, log: log}
}

// Run applies the steps in order and stops at the first failure. It
// returns the number of steps applied.
func (r *Runner) Run(s Script) (int, error) {
	for i, step := range s.Steps {
		if err := r.apply(step); err != nil {
			r.log.Debug("step failed", zap.Int("step", i+1), zap.String("op", string(step.Op)), zap.String("path", step.Path), zap.Error(err))
			return i, fmt.Errorf("step %d (%s %q): %w", i+1, step.Op, step.Path, err)
		}
		r.log.Debug("step applied", zap.Int("step", i+1), zap.String("op", string(step.Op)), zap.String("path", step.Path))
	}
	return len(s.Steps), nil
}

func (r *Runner) apply(step Step) error {
	path := SplitPath(step.Path)

	switch step.Op {
	case OpAppend:
		n, err := r.tree.Lookup(path)
		if err != nil {
			return err
		}
		_, err = n.Append()
		return err
	case OpSet:
		v, err := parser.ParseString(step.Value)
		if err != nil {
			return err
		}
		n, err := r.tree.Lookup(path)
		if err != nil {
			return err
		}
		return n.SetJSON(v)
	}

	n, key, err := r.entry(path)
	if err != nil {
		return err
	}
	switch step.Op {
	case OpEdit:
		return n.EditLeaf(key, step.Value)
	case OpToggle:
		return n.Toggle(key)
	case OpRename:
		_, err := n.Rename(key, step.Value)
		return err
	case OpRemove:
		return n.Remove(key)
	default:
		return errors.NewInputError(fmt.Sprintf("unknown op %q", step.Op), errors.ErrNotSupported)
	}
}

// entry returns the node owning the last key of path. The empty path is
// the unnamed entry of a scalar document.
func (r *Runner) entry(path []string) (*tree.Node, string, error) {
	if len(path) == 0 {
		root := r.tree.Root()
		if root == nil {
			return nil, "", errors.NewContractError("script run before load", errors.ErrStaleNode)
		}
		return root, "", nil
	}
	n, err := r.tree.Lookup(path[:len(path)-1])
	if err != nil {
		return nil, "", err
	}
	return n, path[len(path)-1], nil
}
