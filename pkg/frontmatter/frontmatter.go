// Package frontmatter implements the codec for skill documents: Markdown
// files with an optional YAML frontmatter header delimited by "---" lines.
// Parsing is deliberately forgiving and never fails; a document whose header
// is missing or malformed is treated as body-only with defaulted metadata.
// Serialization produces output that Parse round-trips field for field.
package frontmatter

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultName is assigned when a document header carries no usable name.
const DefaultName = "untitled"

// Metadata is the semantic header of a skill document. Name and Description
// are always set after parsing; optional fields stay empty when absent.
// Unrecognized top-level header keys are preserved in Extra.
type Metadata struct {
	Name          string
	Description   string
	License       string
	Compatibility string
	Author        string
	Version       string
	GeneratedBy   string
	Tags          []string
	Extra         map[string]string
}

var headerPattern = regexp.MustCompile(`(?s)\A---[ \t]*\r?\n(.*?)\r?\n---[ \t]*\r?\n?(.*)\z`)

// Parse splits a skill document into metadata and Markdown body. If the
// content has no "---"-delimited header, or the header is not valid YAML,
// the entire input becomes the body and the metadata falls back to defaults.
func Parse(content string) (Metadata, string) {
	fallback := Metadata{Name: DefaultName}

	m := headerPattern.FindStringSubmatch(content)
	if m == nil {
		return fallback, content
	}

	var raw map[string]any
	if err := yaml.Unmarshal([]byte(m[1]), &raw); err != nil || raw == nil {
		return fallback, content
	}

	return metadataFromMap(raw), strings.TrimSpace(m[2])
}

// metadataFromMap maps a parsed header onto Metadata. A legacy nested
// "metadata:" block may carry author, version, generatedBy, and tags; those
// values win over same-named top-level keys.
func metadataFromMap(raw map[string]any) Metadata {
	meta := Metadata{}

	for key, value := range raw {
		switch key {
		case "name":
			meta.Name = scalarString(value)
		case "description":
			meta.Description = scalarString(value)
		case "license":
			meta.License = scalarString(value)
		case "compatibility":
			meta.Compatibility = scalarString(value)
		case "author":
			meta.Author = scalarString(value)
		case "version":
			meta.Version = scalarString(value)
		case "generatedBy":
			meta.GeneratedBy = scalarString(value)
		case "tags":
			meta.Tags = stringSlice(value)
		case "metadata":
			// handled below so precedence does not depend on map order
		default:
			if meta.Extra == nil {
				meta.Extra = make(map[string]string)
			}
			meta.Extra[key] = scalarString(value)
		}
	}

	if nested, ok := raw["metadata"].(map[string]any); ok {
		if v, ok := nested["author"]; ok {
			meta.Author = scalarString(v)
		}
		if v, ok := nested["version"]; ok {
			meta.Version = scalarString(v)
		}
		if v, ok := nested["generatedBy"]; ok {
			meta.GeneratedBy = scalarString(v)
		}
		if v, ok := nested["tags"]; ok {
			meta.Tags = stringSlice(v)
		}
	}

	if strings.TrimSpace(meta.Name) == "" {
		meta.Name = DefaultName
	}

	return meta
}

// scalarString renders a header value as a string. Empty and missing values
// become "", never an empty mapping; structured values are not representable
// as scalars and also resolve to "".
func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case map[string]any, []any:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

// stringSlice flattens a header sequence into ordered strings. Indentation
// quirks in hand-written headers can nest sequences one level deep; those
// items are flattened rather than dropped.
func stringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}

	var out []string
	for _, item := range items {
		if sub, ok := item.([]any); ok {
			for _, nested := range sub {
				out = append(out, scalarString(nested))
			}
			continue
		}
		out = append(out, scalarString(item))
	}
	return out
}

// Serialize renders metadata and body back into a skill document. Name and
// description are always emitted, optional scalars only when set, tags as a
// block sequence only when non-empty, and author/version/generatedBy inside
// a nested "metadata:" block. The version is always quoted so numeric-looking
// values survive a later parse as strings.
func Serialize(meta Metadata, body string) string {
	var b strings.Builder
	b.WriteString("---\n")

	writeField(&b, "name", meta.Name)
	writeField(&b, "description", meta.Description)
	if meta.License != "" {
		writeField(&b, "license", meta.License)
	}
	if meta.Compatibility != "" {
		writeField(&b, "compatibility", meta.Compatibility)
	}

	if len(meta.Tags) > 0 {
		b.WriteString("tags:\n")
		for _, tag := range meta.Tags {
			b.WriteString("  - ")
			b.WriteString(formatValue(tag))
			b.WriteString("\n")
		}
	}

	if meta.Author != "" || meta.Version != "" || meta.GeneratedBy != "" {
		b.WriteString("metadata:\n")
		if meta.Author != "" {
			b.WriteString("  author: ")
			b.WriteString(formatValue(meta.Author))
			b.WriteString("\n")
		}
		if meta.Version != "" {
			b.WriteString("  version: ")
			b.WriteString(quote(meta.Version))
			b.WriteString("\n")
		}
		if meta.GeneratedBy != "" {
			b.WriteString("  generatedBy: ")
			b.WriteString(formatValue(meta.GeneratedBy))
			b.WriteString("\n")
		}
	}

	for _, key := range sortedKeys(meta.Extra) {
		writeField(&b, key, meta.Extra[key])
	}

	b.WriteString("---\n\n")
	b.WriteString(strings.TrimSpace(body))
	b.WriteString("\n")
	return b.String()
}

func writeField(b *strings.Builder, key, value string) {
	b.WriteString(key)
	b.WriteString(": ")
	b.WriteString(formatValue(value))
	b.WriteString("\n")
}

// yamlNumber matches scalars YAML would reinterpret as numbers.
var yamlNumber = regexp.MustCompile(`^[-+]?(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?$`)

func formatValue(value string) string {
	if needsQuote(value) {
		return quote(value)
	}
	return value
}

func needsQuote(value string) bool {
	if value == "" {
		return true
	}
	if strings.ContainsAny(value, ":#{}[],\"'%@`&*!|>") {
		return true
	}
	if value != strings.TrimSpace(value) || strings.HasPrefix(value, "-") {
		return true
	}
	switch strings.ToLower(value) {
	case "true", "false", "null", "yes", "no", "on", "off", "~":
		return true
	}
	return yamlNumber.MatchString(value)
}

func quote(value string) string {
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	return `"` + escaped + `"`
}

func sortedKeys(m map[string]string) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
