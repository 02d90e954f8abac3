package logger

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"

	"github.com/teranos/corrfill/sym"
)

const (
	colorReset = "\x1b[0m"
	colorBold  = "\x1b[1m"
)

// palette holds the colors one theme assigns to each part of a log line.
type palette struct {
	fg        string
	time      string
	component []string // rotated by component name hash
	symbol    string
	id        string
	number    string
	key       string
	warn      string
	warnBg    string
	err       string
	errBg     string
}

// Everforest Dark (natural forest greens)
var everforest = palette{
	fg:        "\x1b[38;5;223m", // Soft beige (#d3c6aa)
	time:      "\x1b[38;5;107m", // Mid green (#83c092)
	component: []string{"\x1b[38;5;108m", "\x1b[38;5;65m", "\x1b[38;5;208m"},
	symbol:    "\x1b[38;5;108m", // Bright green (#a7c080)
	id:        "\x1b[38;5;109m", // Blue-green (#7fbbb3)
	number:    "\x1b[38;5;108m",
	key:       "\x1b[38;5;65m",
	warn:      "\x1b[38;5;179m", // Soft yellow (#dbbc7f)
	warnBg:    "\x1b[48;5;58m",
	err:       "\x1b[38;5;167m", // Warm red (#e67e80)
	errBg:     "\x1b[48;5;52m",
}

// Gruvbox Dark (warm, muted)
var gruvbox = palette{
	fg:        "\x1b[38;5;223m", // Soft cream (#ebdbb2)
	time:      "\x1b[38;5;108m", // Muted aqua (#8ec07c)
	component: []string{"\x1b[38;5;208m", "\x1b[38;5;214m"},
	symbol:    "\x1b[38;5;142m", // Muted green (#b8bb26)
	id:        "\x1b[38;5;109m", // Soft blue (#83a598)
	number:    "\x1b[38;5;175m", // Muted purple (#d3869b)
	key:       "\x1b[38;5;246m",
	warn:      "\x1b[38;5;214m",
	warnBg:    "\x1b[48;5;58m",
	err:       "\x1b[38;5;167m",
	errBg:     "\x1b[48;5;88m",
}

var themes = map[string]*palette{
	"everforest": &everforest,
	"gruvbox":    &gruvbox,
}

// Current active theme (set from am log.theme or CORRFILL_LOG_THEME)
var currentTheme = &everforest

// SetTheme configures the color scheme for console output. Unknown names
// are ignored.
func SetTheme(theme string) {
	if p, ok := themes[theme]; ok {
		currentTheme = p
	}
}

// ThemeNames lists the accepted theme names.
func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var bufferPool = buffer.NewPool()

// minimalEncoder implements a calm, compact console encoder with theme support
// Format: "13:04:35  fill  ✎ Filled template  contract=A123 leaves=42 18ms"
//
// Fields attached with Logger.With land in the embedded map encoder and are
// printed before the entry's own fields. Every field is printed; none are
// dropped.
type minimalEncoder struct {
	*zapcore.MapObjectEncoder
}

func newMinimalEncoder() *minimalEncoder {
	return &minimalEncoder{MapObjectEncoder: zapcore.NewMapObjectEncoder()}
}

func (enc *minimalEncoder) Clone() zapcore.Encoder {
	clone := zapcore.NewMapObjectEncoder()
	for k, v := range enc.Fields {
		clone.Fields[k] = v
	}
	return &minimalEncoder{MapObjectEncoder: clone}
}

type fieldPair struct {
	key   string
	value interface{}
}

func (enc *minimalEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	p := currentTheme
	final := bufferPool.Get()

	final.AppendString(p.time)
	final.AppendString(ent.Time.Format("15:04:05"))
	final.AppendString(colorReset)

	// Level: only shown when it is not plain info
	if level := levelString(p, ent.Level); level != "" {
		final.AppendString("  ")
		final.AppendString(level)
	}

	if ent.LoggerName != "" {
		final.AppendString("  ")
		final.AppendString(colorComponent(p, ent.LoggerName))
		final.AppendString(abbreviateName(ent.LoggerName))
		final.AppendString(colorReset)
	}

	pairs := enc.pairs(fields)

	final.AppendString("  ")
	for i, pair := range pairs {
		if pair.key == FieldSymbol {
			final.AppendString(p.symbol)
			final.AppendString(fmt.Sprint(pair.value))
			final.AppendString(colorReset)
			final.AppendString(" ")
			pairs = append(pairs[:i:i], pairs[i+1:]...)
			break
		}
	}
	final.AppendString(p.fg)
	final.AppendString(colorizeSymbols(p, ent.Message))
	final.AppendString(colorReset)

	if len(pairs) > 0 {
		final.AppendString("  ")
		final.AppendString(formatPairs(p, pairs))
	}

	final.AppendString("\n")
	return final, nil
}

// pairs flattens context fields (sorted by key) followed by the entry's own
// fields in call order.
func (enc *minimalEncoder) pairs(fields []zapcore.Field) []fieldPair {
	out := make([]fieldPair, 0, len(enc.Fields)+len(fields))

	keys := make([]string, 0, len(enc.Fields))
	for k := range enc.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out = append(out, fieldPair{k, enc.Fields[k]})
	}

	for _, f := range fields {
		m := zapcore.NewMapObjectEncoder()
		f.AddTo(m)
		// zap.Error adds "error", namespaces add one nested map; both keep f.Key
		if v, ok := m.Fields[f.Key]; ok {
			out = append(out, fieldPair{f.Key, v})
		}
	}
	return out
}

func formatPairs(p *palette, pairs []fieldPair) string {
	parts := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		val := fmt.Sprint(pair.value)
		switch pair.key {
		case FieldDurationMS:
			parts = append(parts, p.number+val+colorReset+"ms")
		case FieldRunID, FieldContract:
			parts = append(parts, p.key+pair.key+"="+colorReset+p.id+val+colorReset)
		case FieldError:
			parts = append(parts, p.key+pair.key+"="+colorReset+p.err+val+colorReset)
		default:
			parts = append(parts, p.key+pair.key+"="+colorReset+val)
		}
	}
	return strings.Join(parts, " ")
}

// levelString returns bold + colored + background for WARN/ERROR, and a
// plain tag for DEBUG
func levelString(p *palette, level zapcore.Level) string {
	switch level {
	case zapcore.InfoLevel:
		return ""
	case zapcore.DebugLevel:
		return p.key + "DEBUG" + colorReset
	case zapcore.WarnLevel:
		return colorBold + p.warnBg + p.warn + "WARN" + colorReset
	default:
		return colorBold + p.errBg + p.err + level.CapitalString() + colorReset
	}
}

// colorComponent picks a stable color per component name
func colorComponent(p *palette, name string) string {
	hash := 0
	for _, c := range name {
		hash += int(c)
	}
	return p.component[hash%len(p.component)]
}

// abbreviateName shortens dotted component names: fill.watch -> f.watch
func abbreviateName(name string) string {
	parts := strings.Split(name, ".")
	if len(parts) > 1 && parts[0] != "" {
		return string(parts[0][0]) + "." + strings.Join(parts[1:], ".")
	}
	return name
}

var glyphs = []string{sym.Fill, sym.Merge, sym.Resolve, sym.History, sym.AM, sym.Fetch, sym.Watch, sym.DB}

// colorizeSymbols highlights corrfill glyphs inside a message
func colorizeSymbols(p *palette, text string) string {
	for _, g := range glyphs {
		if strings.Contains(text, g) {
			text = strings.ReplaceAll(text, g, p.symbol+g+colorReset+p.fg)
		}
	}
	return text
}
