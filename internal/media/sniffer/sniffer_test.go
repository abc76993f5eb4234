package sniffer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectHead(t *testing.T) {
	tests := []struct {
		name string
		head []byte
		want MediaType
		mime string
	}{
		{"jpeg", []byte{0xff, 0xd8, 0xff, 0xe0}, TypeJPEG, "image/jpeg"},
		{"png", []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0}, TypePNG, "image/png"},
		{"gif87", []byte("GIF87a......"), TypeGIF, "image/gif"},
		{"gif89", []byte("GIF89a......"), TypeGIF, "image/gif"},
		{"webp", append([]byte("RIFF\x00\x00\x00\x00"), []byte("WEBPVP8 ")...), TypeWEBP, "image/webp"},
		{"avif", append([]byte{0, 0, 0, 0x1c}, []byte("ftypavif....")...), TypeAVIF, "image/avif"},
		{"svg", []byte(`<svg xmlns="http://www.w3.org/2000/svg"></svg>`), TypeSVG, "image/svg+xml"},
		{"svg with xml decl", []byte(`<?xml version="1.0"?><svg></svg>`), TypeSVG, "image/svg+xml"},
		{"svg leading whitespace", []byte("\n  <svg></svg>"), TypeSVG, "image/svg+xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := DetectHead(tt.head)
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Type)
			assert.Equal(t, tt.mime, result.MIME)
		})
	}
}

func TestDetectHeadUnknown(t *testing.T) {
	for _, head := range [][]byte{nil, {}, []byte("plain text"), []byte("%PDF-1.7")} {
		_, err := DetectHead(head)
		assert.ErrorIs(t, err, ErrUnknownType)
	}
}

func TestDetectReadsHead(t *testing.T) {
	payload := append([]byte{0xff, 0xd8, 0xff, 0xe0}, bytes.Repeat([]byte{0xab}, 1024)...)

	result, head, err := Detect(bytes.NewReader(payload))
	require.NoError(t, err)
	assert.Equal(t, TypeJPEG, result.Type)
	assert.Len(t, head, 512)
}
