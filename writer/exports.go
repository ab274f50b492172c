package writer

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/gdsii/design"
	"github.com/wippyai/gdsii/gds"
	"github.com/wippyai/gdsii/layermap"
)

const (
	// labelPresentation centers the label on its anchor.
	labelPresentation uint16 = 0x0005

	labelMag = 0.5

	maxStringLength = 512
)

var bracketReplacer = strings.NewReplacer("[", "_", "]", "_")

// exportLabels computes the text written for each export of the top cell.
// Transforms apply in order: connected groups become "name:name", brackets
// become underscores, and vdd_*/gnd_* collapse to their prefix.
func exportLabels(cell *design.Cell, cfg Config, log *zap.Logger) map[*design.Export]string {
	labels := make(map[*design.Export]string, len(cell.Exports))
	for _, ex := range cell.Exports {
		labels[ex] = ex.Name
	}

	for _, group := range cell.ConnectedExports {
		var matched []*design.Export
		match := groupMatcher(group, log)
		for _, ex := range cell.Exports {
			if match(ex.Name) {
				matched = append(matched, ex)
			}
		}
		if len(matched) == 0 {
			continue
		}
		canonical := matched[0].Name
		for _, ex := range matched {
			labels[ex] = canonical + ":" + canonical
		}
	}

	for ex, label := range labels {
		if cfg.ConvertBrackets {
			label = bracketReplacer.Replace(label)
		}
		if cfg.CollapseVddGnd {
			label = collapseSupply(label)
		}
		labels[ex] = label
	}
	return labels
}

// groupMatcher builds a predicate from literal names and /regexp/ entries.
func groupMatcher(group []string, log *zap.Logger) func(string) bool {
	literal := make(map[string]bool)
	var patterns []*regexp.Regexp
	for _, entry := range group {
		if len(entry) >= 2 && strings.HasPrefix(entry, "/") && strings.HasSuffix(entry, "/") {
			re, err := regexp.Compile("^(?:" + entry[1:len(entry)-1] + ")$")
			if err != nil {
				log.Warn("bad export pattern ignored", zap.String("pattern", entry), zap.Error(err))
				continue
			}
			patterns = append(patterns, re)
			continue
		}
		literal[entry] = true
	}
	return func(name string) bool {
		if literal[name] {
			return true
		}
		for _, re := range patterns {
			if re.MatchString(name) {
				return true
			}
		}
		return false
	}
}

func collapseSupply(label string) string {
	lower := strings.ToLower(label)
	if strings.HasPrefix(lower, "vdd_") || strings.HasPrefix(lower, "gnd_") {
		return label[:3]
	}
	return label
}

// textLayer picks the label layer: the layer's text encoding, then its pin
// encoding, then the configured default.
func textLayer(res layermap.Resolved, fallback int) layermap.Pair {
	switch {
	case res.Text != nil:
		return *res.Text
	case res.Pin != nil:
		return *res.Pin
	default:
		return layermap.Pair{Layer: uint16(fallback)}
	}
}

func (e *emitter) exports(cell *design.Cell, cfg Config) error {
	if !cfg.exportLabels() || len(cell.Exports) == 0 {
		return nil
	}
	labels := exportLabels(cell, cfg, e.log)

	for _, ex := range cell.Exports {
		if ex.Layer == nil {
			e.dropped++
			e.metrics.drop(DropNoPortLayer)
			e.log.Warn("export has no port layer, label not written",
				zap.Strings("cell", e.path), zap.String("export", ex.Name))
			continue
		}
		at, err := e.point(ex.Center)
		if err != nil {
			return err
		}
		text := textLayer(e.layers.Resolve(ex.Layer), cfg.DefaultTextLayer)
		flags, tenths := strans(ex.Orientation)

		e.enc.Header(gds.Text)
		e.enc.Header(gds.Layer, text.Layer)
		e.enc.Header(gds.TextType, text.DataType)
		e.enc.Header(gds.Presentation, labelPresentation)
		e.enc.Header(gds.STrans, flags)
		e.enc.Mag(labelMag)
		if tenths != 0 {
			e.enc.Angle(tenths)
		}
		if err := e.enc.XY([]gds.Point{at}); err != nil {
			return err
		}
		e.enc.Name(gds.String, labels[ex], maxStringLength)
		e.enc.Header(gds.EndEl)
	}
	return nil
}
