// Package batchconfig parses the externally supplied answers file for
// the Input resolver's Batch mode (spec §4.6 "given a Map<path,
// string> of externally supplied answers"). Two formats are accepted:
// Java-style `.properties` (key=value per line, '#'/'!' comments) and
// YAML, detected by file extension.
//
// Grounded on funvibe/funxy's direct dependency on gopkg.in/yaml.v3 for
// the YAML half; the properties half has no library anywhere in the
// retrieval pack (it is a two-line format with no meaningful parsing
// library to reach for), so it is hand-rolled — see DESIGN.md.
package batchconfig

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads a batch answers document from r. ext selects the format:
// ".yml"/".yaml" parses as YAML (nested maps are flattened to dotted
// paths); anything else is treated as Java properties syntax.
func Load(r io.Reader, ext string) (map[string]string, error) {
	switch strings.ToLower(ext) {
	case ".yml", ".yaml":
		return loadYAML(r)
	default:
		return loadProperties(r)
	}
}

func loadProperties(r io.Reader) (map[string]string, error) {
	out := make(map[string]string)
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
			continue
		}
		idx := strings.IndexAny(line, "=:")
		if idx < 0 {
			return nil, fmt.Errorf("batchconfig: line %d: expected key=value, got %q", lineNo, line)
		}
		key := strings.TrimSpace(line[:idx])
		val := strings.TrimSpace(line[idx+1:])
		if key == "" {
			return nil, fmt.Errorf("batchconfig: line %d: empty key", lineNo)
		}
		out[key] = val
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("batchconfig: %w", err)
	}
	return out, nil
}

func loadYAML(r io.Reader) (map[string]string, error) {
	var doc map[string]interface{}
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("batchconfig: yaml: %w", err)
	}
	out := make(map[string]string)
	flatten("", doc, out)
	return out, nil
}

// flatten walks a decoded YAML document into dotted-path -> string
// entries, matching the Context's own path convention (spec §4.4).
func flatten(prefix string, v interface{}, out map[string]string) {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, val := range t {
			flatten(joinKey(prefix, k), val, out)
		}
	case map[interface{}]interface{}:
		for k, val := range t {
			flatten(joinKey(prefix, fmt.Sprintf("%v", k)), val, out)
		}
	case []interface{}:
		items := make([]string, len(t))
		for i, item := range t {
			items[i] = scalarString(item)
		}
		out[prefix] = strings.Join(items, ",")
	default:
		out[prefix] = scalarString(v)
	}
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

func scalarString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}
