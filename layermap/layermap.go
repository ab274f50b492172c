// Package layermap resolves design layers to GDS layer/datatype pairs
// through a foundry's layer map.
package layermap

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/gdsii/design"
	"github.com/wippyai/gdsii/errors"
)

// Pair is one GDS (layer, datatype) output.
type Pair struct {
	Layer    uint16
	DataType uint16
}

func (p Pair) String() string {
	return fmt.Sprintf("%d/%d", p.Layer, p.DataType)
}

// Resolved is the output encoding of a layer. A layer with no pairs is not
// drawn.
type Resolved struct {
	Text  *Pair
	Pin   *Pair
	Pairs []Pair
}

// Valid reports whether the layer produces any output.
func (r Resolved) Valid() bool {
	return len(r.Pairs) > 0
}

// Resolver caches layer resolutions for one write. Not safe for concurrent use.
type Resolver struct {
	foundry *design.Foundry
	log     *zap.Logger
	cache   map[*design.Layer]Resolved
}

// New creates a Resolver for foundry. A nil foundry resolves every layer
// as not drawn.
func New(foundry *design.Foundry, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{
		foundry: foundry,
		log:     log,
		cache:   make(map[*design.Layer]Resolved),
	}
}

// Resolve returns the cached resolution of l, computing it on first use.
func (r *Resolver) Resolve(l *design.Layer) Resolved {
	if res, ok := r.cache[l]; ok {
		return res
	}
	res := r.resolve(l)
	r.cache[l] = res
	return res
}

// Len returns the number of cached layers.
func (r *Resolver) Len() int {
	return len(r.cache)
}

func (r *Resolver) resolve(l *design.Layer) Resolved {
	if l == nil {
		return Resolved{}
	}
	m, ok := r.foundry.Mapping(l)
	if !ok || strings.TrimSpace(m.GDS) == "" {
		if l.Pseudo {
			r.log.Debug("layer has no GDS mapping", zap.String("layer", l.Name))
		} else {
			r.log.Warn("layer has no GDS mapping, not written", zap.String("layer", l.Name))
		}
		return Resolved{}
	}

	pairs, err := Parse(m.GDS)
	if err != nil {
		r.log.Warn("invalid GDS mapping, layer not written", zap.String("layer", l.Name), zap.Error(err))
		return Resolved{}
	}
	res := Resolved{Pairs: pairs}
	res.Text = r.single(l, "text", m.Text)
	res.Pin = r.single(l, "pin", m.Pin)
	return res
}

// single parses an optional text or pin encoding; only its first pair is used.
func (r *Resolver) single(l *design.Layer, what, s string) *Pair {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	pairs, err := Parse(s)
	if err != nil {
		r.log.Warn("invalid GDS "+what+" mapping ignored", zap.String("layer", l.Name), zap.Error(err))
		return nil
	}
	return &pairs[0]
}

// Parse reads "layer,datatype[,layer,datatype...]". A trailing layer number
// without a datatype gets datatype 0.
func Parse(s string) ([]Pair, error) {
	fields := strings.Split(s, ",")
	nums := make([]uint16, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			return nil, errors.InvalidData(errors.PhaseResolve, nil, fmt.Sprintf("empty field in %q", s))
		}
		v, err := strconv.ParseUint(f, 10, 16)
		if err != nil {
			return nil, errors.New(errors.PhaseResolve, errors.KindInvalidData).
				Value(f).
				Cause(err).
				Detail("bad number in %q", s).
				Build()
		}
		nums = append(nums, uint16(v))
	}
	if len(nums)%2 == 1 {
		nums = append(nums, 0)
	}
	pairs := make([]Pair, 0, len(nums)/2)
	for i := 0; i < len(nums); i += 2 {
		pairs = append(pairs, Pair{Layer: nums[i], DataType: nums[i+1]})
	}
	return pairs, nil
}
