package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	yalrt "github.com/wippyai/yal-runtime"
	"github.com/wippyai/yal-runtime/abi"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	addrStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB"))
	textStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#98FB98"))
)

// argRow is one marshaled String of the argument Slice.
type argRow struct {
	index  int
	record uint32
	value  abi.String
	text   string
}

func describeArgs(mem yalrt.Memory, slice abi.Slice, target abi.Target) ([]argRow, error) {
	codec := abi.StringCodec(target.Layouts())
	values, err := abi.Elements(mem, slice, codec)
	if err != nil {
		return nil, err
	}
	stride := abi.Stride(codec)
	rows := make([]argRow, len(values))
	for i, v := range values {
		text, err := v.Text(mem)
		if err != nil {
			return nil, err
		}
		rows[i] = argRow{
			index:  i,
			record: slice.Data + uint32(i)*stride,
			value:  v,
			text:   text,
		}
	}
	return rows, nil
}

// renderArgs formats the Slice header and one line per String.
func renderArgs(slice abi.Slice, rows []argRow, color bool) string {
	paint := func(s lipgloss.Style, v string) string {
		if !color {
			return v
		}
		return s.Render(v)
	}

	var b strings.Builder
	b.WriteString(paint(headerStyle, fmt.Sprintf("Slice{count: %d, data: 0x%08x}", slice.Count, slice.Data)))
	b.WriteByte('\n')
	for _, r := range rows {
		fmt.Fprintf(&b, "  [%3d] %s  count=%-4d data=%s  %s\n",
			r.index,
			paint(addrStyle, fmt.Sprintf("0x%08x", r.record)),
			r.value.Count,
			paint(addrStyle, fmt.Sprintf("0x%08x", r.value.Data)),
			paint(textStyle, strconv.Quote(r.text)))
	}
	return b.String()
}

func dumpArgs(w io.Writer, mem yalrt.Memory, slice abi.Slice, target abi.Target, color bool) error {
	rows, err := describeArgs(mem, slice, target)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, renderArgs(slice, rows, color))
	return err
}
