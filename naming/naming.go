// Package naming assigns GDSII structure names to cells.
//
// Structure names share one flat namespace across every library written
// in a stream, may only contain letters, digits, '_', '$' and '?', and are
// bounded in length. A Resolver issues each cell exactly one name that is
// unique among all names it has issued.
package naming

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/gdsii/design"
)

const (
	// DefaultMaxLen is the traditional structure name limit.
	DefaultMaxLen = 32

	// MinMaxLen leaves room for at least one character plus a "_n" suffix.
	// Smaller limits are raised to it.
	MinMaxLen = 4

	// suffixRoom is reserved when truncating natural names.
	suffixRoom = 3

	// LibrarySeparator joins a library prefix to a colliding cell name.
	LibrarySeparator = "$"
)

// Options configures a Resolver.
type Options struct {
	MaxLen int
	Upper  bool
}

// Resolver assigns unique structure names for one write.
// Not safe for concurrent use.
type Resolver struct {
	log     *zap.Logger
	names   map[*design.Cell]string
	used    map[string]*design.Cell
	opts    Options
	renamed int
}

// New creates a Resolver.
func New(opts Options, log *zap.Logger) *Resolver {
	if opts.MaxLen <= 0 {
		opts.MaxLen = DefaultMaxLen
	}
	if opts.MaxLen < MinMaxLen {
		opts.MaxLen = MinMaxLen
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{
		log:   log,
		names: make(map[*design.Cell]string),
		used:  make(map[string]*design.Cell),
		opts:  opts,
	}
}

// Name returns the name already assigned to c.
func (r *Resolver) Name(c *design.Cell) (string, bool) {
	n, ok := r.names[c]
	return n, ok
}

// Renamed returns how many cells were issued a name that differs from
// their own.
func (r *Resolver) Renamed() int {
	return r.renamed
}

// Len returns the number of assigned names.
func (r *Resolver) Len() int {
	return len(r.names)
}

// Assign returns c's structure name, choosing one on first call.
func (r *Resolver) Assign(c *design.Cell) string {
	if n, ok := r.names[c]; ok {
		return n
	}

	natural := r.natural(c)
	name := natural
	if r.taken(name) {
		name = ""
		if prefixed, ok := r.libraryPrefixed(c.LibraryName(), natural); ok && !r.taken(prefixed) {
			name = prefixed
			r.log.Warn("structure name collision, using library prefix",
				zap.Stringer("cell", c), zap.String("name", name))
		}
		if name == "" {
			name = r.numbered(natural)
			r.log.Warn("structure name collision, using numeric suffix",
				zap.Stringer("cell", c), zap.String("name", name))
		}
	}

	r.names[c] = name
	r.used[name] = c
	if name != r.fold(c.Name) {
		r.renamed++
		r.log.Info("cell written under a different name",
			zap.Stringer("cell", c), zap.String("name", name))
	}
	return name
}

// AssignHierarchy names top and every cell reachable from it, top first
// and then depth-first in instance order. Instances of an icon name the
// icon's contents. It returns the cells in the order they were visited.
func (r *Resolver) AssignHierarchy(top *design.Cell) []*design.Cell {
	var order []*design.Cell
	seen := make(map[*design.Cell]bool)
	var walk func(c *design.Cell)
	walk = func(c *design.Cell) {
		if c == nil || seen[c] {
			return
		}
		seen[c] = true
		r.Assign(c)
		order = append(order, c)
		for _, inst := range c.Instances {
			if inst.Proto != nil {
				walk(inst.Proto.Effective())
			}
		}
	}
	walk(top)
	return order
}

func (r *Resolver) natural(c *design.Cell) string {
	base := c.Name
	if limit := r.opts.MaxLen - suffixRoom; len(base) > limit {
		base = base[:limit]
	}
	base = Sanitize(base)
	if base == "" {
		base = "_"
	}
	if !c.IsNewest() {
		base += "_" + strconv.Itoa(c.Version)
	}
	if len(base) > r.opts.MaxLen {
		base = base[:r.opts.MaxLen]
	}
	return r.fold(base)
}

func (r *Resolver) libraryPrefixed(lib, name string) (string, bool) {
	prefix := Sanitize(lib)
	room := r.opts.MaxLen - len(name) - len(LibrarySeparator)
	if prefix == "" || room <= 0 {
		return "", false
	}
	if len(prefix) > room {
		prefix = prefix[:room]
	}
	return r.fold(prefix + LibrarySeparator + name), true
}

func (r *Resolver) numbered(base string) string {
	for n := 1; ; n++ {
		suffix := "_" + strconv.Itoa(n)
		b := base
		if len(b)+len(suffix) > r.opts.MaxLen {
			b = b[:max(0, r.opts.MaxLen-len(suffix))]
		}
		if candidate := b + suffix; !r.taken(candidate) {
			return candidate
		}
	}
}

func (r *Resolver) taken(name string) bool {
	_, ok := r.used[name]
	return ok
}

func (r *Resolver) fold(s string) string {
	if r.opts.Upper {
		return strings.ToUpper(s)
	}
	return s
}

// Legal reports whether b may appear in a structure name.
func Legal(b rune) bool {
	switch {
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
		return true
	case b == '_', b == '$', b == '?':
		return true
	}
	return false
}

// Sanitize replaces every character that may not appear in a structure
// name with '_'.
func Sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, c := range s {
		if Legal(c) {
			b.WriteRune(c)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}
