// Package frontmatter reads and writes markdown pages that start with a YAML
// block between --- lines. Export bundles use it for their index page.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

const delim = "---\n"

var (
	ErrMissingOpen  = errors.New("frontmatter: missing opening --- delimiter")
	ErrMissingClose = errors.New("frontmatter: missing closing --- delimiter")
)

// Parse splits a page into its raw YAML block and its body.
func Parse(data []byte) (fm []byte, body []byte, err error) {
	if !bytes.HasPrefix(data, []byte(delim)) {
		return nil, nil, ErrMissingOpen
	}
	rest := data[len(delim):]
	var idx int
	if bytes.HasPrefix(rest, []byte(delim)) {
		// Empty block.
		idx = -1
	} else {
		idx = bytes.Index(rest, []byte("\n---"))
		if idx < 0 {
			return nil, nil, ErrMissingClose
		}
	}
	fm = rest[:idx+1]
	tail := rest[idx+1+len("---"):]
	if len(tail) > 0 && tail[0] == '\n' {
		tail = tail[1:]
	}
	return fm, tail, nil
}

// Decode parses data and unmarshals its YAML block into v, returning the body.
func Decode(data []byte, v any) ([]byte, error) {
	fm, body, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(fm, v); err != nil {
		return nil, fmt.Errorf("frontmatter: unmarshal: %w", err)
	}
	return body, nil
}

// Write marshals v as the YAML block and appends body.
func Write(v any, body string) ([]byte, error) {
	fm, err := yaml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("frontmatter: marshal: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString(delim)
	buf.Write(fm)
	buf.WriteString(delim)
	buf.WriteString(body)
	return buf.Bytes(), nil
}
