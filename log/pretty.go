package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ANSI color codes for pretty printing.
const (
	colorReset   = "\033[0m"
	colorGray    = "\033[90m"
	colorRed     = "\033[31m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorBlue    = "\033[34m"
	colorMagenta = "\033[35m"
	colorCyan    = "\033[36m"
)

// prettyHandler writes colorized records either as one key=value line per
// record or as an indented multi-line object.
type prettyHandler struct {
	opts       slog.HandlerOptions
	formatTime FormatTime
	mu         *sync.Mutex
	w          io.Writer
	attrs      []slog.Attr
	group      string
	multiline  bool
}

func newPrettyHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
	formatTime FormatTime,
	multiline bool,
) *prettyHandler {
	if formatTime == nil {
		formatTime = makeFormatTimeFunc(DefaultTimeLayout)
	}

	return &prettyHandler{
		opts:       *opts,
		formatTime: formatTime,
		mu:         &sync.Mutex{},
		w:          w,
		multiline:  multiline,
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	buf := new(bytes.Buffer)

	if h.multiline {
		buf.WriteString("{")
	}

	if !r.Time.IsZero() {
		if ts := h.formatTime(r.Time); ts != "" {
			h.write(buf, slog.TimeKey, slog.StringValue(ts))
		}
	}

	h.write(buf, slog.LevelKey, slog.AnyValue(r.Level))

	if h.opts.AddSource {
		if src := r.Source(); src != nil {
			h.write(buf, slog.SourceKey,
				slog.StringValue(fmt.Sprintf("%s:%d", src.File, src.Line)))
		}
	}

	h.write(buf, slog.MessageKey, slog.StringValue(r.Message))

	for _, a := range h.attrs {
		h.write(buf, a.Key, a.Value)
	}

	r.Attrs(func(a slog.Attr) bool {
		h.write(buf, h.qualify(a.Key), a.Value)

		return true
	})

	if h.multiline {
		buf.WriteString("\n}")
	}

	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	c.attrs = append(c.attrs, h.attrs...)

	for _, a := range attrs {
		c.attrs = append(c.attrs, slog.Attr{Key: h.qualify(a.Key), Value: a.Value})
	}

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.group = h.qualify(name)

	return &c
}

func (h *prettyHandler) qualify(key string) string {
	if h.group == "" {
		return key
	}

	return h.group + "." + key
}

func (h *prettyHandler) write(buf *bytes.Buffer, key string, v slog.Value) {
	v = v.Resolve()

	if v.Kind() == slog.KindGroup {
		for _, a := range v.Group() {
			h.write(buf, key+"."+a.Key, a.Value)
		}

		return
	}

	if h.multiline {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}

		buf.WriteString("\n  ")
		buf.WriteString(colorGray + key + colorReset + ": ")
	} else {
		if buf.Len() > 0 {
			buf.WriteByte(' ')
		}

		buf.WriteString(colorGray + key + colorReset + "=")
	}

	color, text := h.render(v)
	buf.WriteString(color + text + colorReset)
}

func (h *prettyHandler) render(v slog.Value) (color, text string) {
	switch v.Kind() {
	case slog.KindString:
		return colorCyan, v.String()

	case slog.KindInt64:
		return colorYellow, strconv.FormatInt(v.Int64(), 10)

	case slog.KindUint64:
		return colorYellow, strconv.FormatUint(v.Uint64(), 10)

	case slog.KindFloat64:
		return colorYellow, strconv.FormatFloat(v.Float64(), 'g', -1, 64)

	case slog.KindBool:
		if v.Bool() {
			return colorGreen, "true"
		}

		return colorRed, "false"

	case slog.KindDuration:
		return colorMagenta, v.Duration().String()

	case slog.KindTime:
		return colorBlue, v.Time().Format(time.RFC3339Nano)

	case slog.KindAny:
		switch x := v.Any().(type) {
		case slog.Level:
			name := strings.ToUpper(Level(x).String())

			switch {
			case x >= slog.LevelError:
				return colorRed, name
			case x >= slog.LevelWarn:
				return colorYellow, name
			case x >= slog.LevelInfo:
				return colorGreen, name
			default:
				return colorBlue, name
			}

		case nil:
			return colorGray, "null"

		case error:
			return colorRed, x.Error()
		}
	}

	return colorCyan, v.String()
}
