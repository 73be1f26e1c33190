// Package autoprops reads the plain INI-like config consulted by the
// apply-autoprops tool: an "auto-props" section mapping filename globs to
// semicolon-separated property lists (spec.md §6). Loading follows the
// same three-tier shape as the teacher's config package: LoadFile reads
// bytes, LoadString parses them, parsing validates as it goes.
package autoprops

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/grazhopper/svndumptool/dumperr"
)

// Prop is one name/value pair an auto-props rule sets on a matching node.
type Prop struct {
	Name  string
	Value string
}

type rule struct {
	glob  string
	re    *regexp.Regexp
	props []Prop
}

// Config is the parsed "auto-props" section: an ordered list of
// glob-to-property-list rules.
type Config struct {
	rules []rule
}

// LoadFile reads and parses path.
func LoadFile(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, dumperr.Wrap(dumperr.IO, fmt.Sprintf("autoprops.LoadFile(%s)", path), err)
	}
	return LoadString(content)
}

// LoadString parses config content directly, for tests and embedded plans.
func LoadString(content []byte) (*Config, error) {
	cfg := &Config{}
	scanner := bufio.NewScanner(bytes.NewReader(content))

	var section string
	var pendingGlob string
	var pendingValue strings.Builder

	flush := func() error {
		if pendingGlob == "" {
			return nil
		}
		props := parsePropList(pendingValue.String())
		re, err := globToRegexp(pendingGlob)
		if err != nil {
			return err
		}
		cfg.rules = append(cfg.rules, rule{glob: pendingGlob, re: re, props: props})
		pendingGlob = ""
		pendingValue.Reset()
		return nil
	}

	for scanner.Scan() {
		raw := scanner.Text()
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" || strings.HasPrefix(trimmed, ";") || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if (strings.HasPrefix(raw, " ") || strings.HasPrefix(raw, "\t")) && section == "auto-props" && pendingGlob != "" {
			pendingValue.WriteString(" ")
			pendingValue.WriteString(trimmed)
			continue
		}
		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			if err := flush(); err != nil {
				return nil, err
			}
			section = strings.TrimSuffix(strings.TrimPrefix(trimmed, "["), "]")
			continue
		}
		if section != "auto-props" {
			continue
		}
		if err := flush(); err != nil {
			return nil, err
		}
		key, value, ok := splitKV(trimmed)
		if !ok {
			return nil, dumperr.New(dumperr.BadFormat, "autoprops.LoadString: expected key = value")
		}
		pendingGlob = key
		pendingValue.WriteString(value)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	if err := scanner.Err(); err != nil {
		return nil, dumperr.Wrap(dumperr.IO, "autoprops.LoadString", err)
	}
	return cfg, nil
}

func splitKV(line string) (key, value string, ok bool) {
	i := strings.IndexAny(line, "=:")
	if i < 0 {
		return "", "", false
	}
	return strings.TrimSpace(line[:i]), strings.TrimSpace(line[i+1:]), true
}

// parsePropList splits a semicolon-separated "name=value;name;..." list.
// An empty value on svn:executable or svn:needs-lock defaults to "*".
func parsePropList(s string) []Prop {
	var props []Prop
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, value := part, ""
		if i := strings.Index(part, "="); i >= 0 {
			name = strings.TrimSpace(part[:i])
			value = strings.TrimSpace(part[i+1:])
		}
		if value == "" && (name == "svn:executable" || name == "svn:needs-lock") {
			value = "*"
		}
		props = append(props, Prop{Name: name, Value: value})
	}
	return props
}

// globToRegexp compiles an auto-props glob: '?' matches any one character,
// '*' matches any sequence, every other regex metacharacter is escaped.
func globToRegexp(glob string) (*regexp.Regexp, error) {
	var buf strings.Builder
	buf.WriteString("^")
	for _, r := range glob {
		switch r {
		case '?':
			buf.WriteString(".")
		case '*':
			buf.WriteString(".*")
		default:
			buf.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	buf.WriteString("$")
	re, err := regexp.Compile(buf.String())
	if err != nil {
		return nil, dumperr.Wrap(dumperr.BadFormat, "autoprops: bad glob "+glob, err)
	}
	return re, nil
}

// Match returns every property set by a rule whose glob matches path, in
// rule-file order, with a later rule's value for the same property name
// overriding an earlier one (matching svn's own auto-props precedence).
func (c *Config) Match(path string) []Prop {
	values := map[string]string{}
	var order []string
	for _, r := range c.rules {
		if !r.re.MatchString(path) {
			continue
		}
		for _, p := range r.props {
			if _, seen := values[p.Name]; !seen {
				order = append(order, p.Name)
			}
			values[p.Name] = p.Value
		}
	}
	out := make([]Prop, len(order))
	for i, name := range order {
		out[i] = Prop{Name: name, Value: values[name]}
	}
	return out
}
