package dom

import (
	"errors"
	"fmt"
	"strings"
)

var ErrBadSelector = errors.New("dom: bad selector")

// Selector is a comma separated list of compound selectors. A compound is an
// optional tag followed by any number of .class, #id and [attr] parts, for
// example "img[data-src]" or ".counter[data-target]". Combinators are not
// supported.
type Selector struct {
	groups []compound
}

type compound struct {
	tag     string
	id      string
	classes []string
	attrs   []string
}

func Compile(sel string) (Selector, error) {
	var s Selector
	for _, part := range strings.Split(sel, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			return Selector{}, fmt.Errorf("%w: empty group in %q", ErrBadSelector, sel)
		}
		c, err := parseCompound(part)
		if err != nil {
			return Selector{}, fmt.Errorf("%w: %q: %v", ErrBadSelector, sel, err)
		}
		s.groups = append(s.groups, c)
	}
	return s, nil
}

// MustCompile is Compile for selectors written into the code.
func MustCompile(sel string) Selector {
	s, err := Compile(sel)
	if err != nil {
		panic(err)
	}
	return s
}

func parseCompound(src string) (compound, error) {
	var c compound
	i := 0
	name := func() string {
		start := i
		for i < len(src) && isNameByte(src[i]) {
			i++
		}
		return src[start:i]
	}

	c.tag = strings.ToLower(name())
	for i < len(src) {
		switch src[i] {
		case '.':
			i++
			n := name()
			if n == "" {
				return c, errors.New("empty class")
			}
			c.classes = append(c.classes, n)
		case '#':
			i++
			n := name()
			if n == "" {
				return c, errors.New("empty id")
			}
			c.id = n
		case '[':
			i++
			n := name()
			if n == "" || i >= len(src) || src[i] != ']' {
				return c, errors.New("unterminated attribute")
			}
			i++
			c.attrs = append(c.attrs, n)
		default:
			return c, fmt.Errorf("unexpected %q", src[i])
		}
	}
	return c, nil
}

func isNameByte(b byte) bool {
	return b == '-' || b == '_' ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func (s Selector) Match(el *Element) bool {
	for _, c := range s.groups {
		if c.match(el) {
			return true
		}
	}
	return false
}

func (c compound) match(el *Element) bool {
	if c.tag != "" && c.tag != el.Tag {
		return false
	}
	if c.id != "" && c.id != el.ID {
		return false
	}
	for _, cl := range c.classes {
		if !el.HasClass(cl) {
			return false
		}
	}
	for _, a := range c.attrs {
		if key, ok := strings.CutPrefix(a, "data-"); ok {
			if _, ok := el.Dataset(key); !ok {
				return false
			}
			continue
		}
		if _, ok := el.Attr(a); !ok {
			return false
		}
	}
	return true
}
