package fs_test

import (
	"strings"
	"testing"

	"github.com/aretw0/wtf/pkg/adapters/fs"
	"github.com/aretw0/wtf/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want core.Entry
		ok   bool
	}{
		{"simple", "yolo:you only live once", core.Entry{Term: "yolo", Definition: "you only live once"}, true},
		{"definition keeps colons", "time:12:30 pm", core.Entry{Term: "time", Definition: "12:30 pm"}, true},
		{"crlf", "lit:on fire\r\n", core.Entry{Term: "lit", Definition: "on fire"}, true},
		{"definition kept verbatim", "lit: on fire ", core.Entry{Term: "lit", Definition: " on fire "}, true},
		{"blank", "   ", core.Entry{}, false},
		{"no colon", "just words", core.Entry{}, false},
		{"empty definition", "lit:", core.Entry{}, false},
		{"empty term", ":orphan", core.Entry{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := fs.ParseLine(tt.line)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeEntries(t *testing.T) {
	input := "lit:on fire\nnot a record\n\nLit:amazing\nyolo:you only live once"

	entries, err := fs.DecodeEntries(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []core.Entry{
		{Term: "lit", Definition: "on fire"},
		{Term: "Lit", Definition: "amazing"},
		{Term: "yolo", Definition: "you only live once"},
	}, entries)
}

func TestEncodeEntries(t *testing.T) {
	entries := []core.Entry{
		{Term: "lit", Definition: "on fire"},
		{Term: "time", Definition: "12:30"},
		{Term: "rizz", Definition: " charisma "},
	}
	data := fs.EncodeEntries(entries)
	assert.Equal(t, "lit:on fire\ntime:12:30\nrizz: charisma \n", string(data))

	back, err := fs.DecodeEntries(strings.NewReader(string(data)))
	require.NoError(t, err)
	assert.Equal(t, entries, back)
}
