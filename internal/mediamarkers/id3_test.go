package mediamarkers

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"

	domainerrors "github.com/listenupapp/listenup-timeline/internal/errors"
)

const markerXML = `<Markers><Marker><Name>Chapter 1</Name><Time>00:00.000</Time></Marker>` +
	`<Marker><Name>Chapter 2</Name><Time>12:34.500</Time></Marker></Markers>`

type testFrame struct {
	id    string
	flags uint16
	data  []byte
}

func synchsafe(n int) []byte {
	return []byte{byte(n>>21) & 0x7F, byte(n>>14) & 0x7F, byte(n>>7) & 0x7F, byte(n) & 0x7F}
}

func txxx(t *testing.T, enc byte, desc, value string) testFrame {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteByte(enc)
	switch enc {
	case 1:
		e := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
		d, err := e.Bytes([]byte(desc))
		require.NoError(t, err)
		v, err := e.Bytes([]byte(value))
		require.NoError(t, err)
		buf.Write(d)
		buf.Write([]byte{0, 0})
		buf.Write(v)
	case 2:
		e := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewEncoder()
		d, err := e.Bytes([]byte(desc))
		require.NoError(t, err)
		v, err := e.Bytes([]byte(value))
		require.NoError(t, err)
		buf.Write(d)
		buf.Write([]byte{0, 0})
		buf.Write(v)
	default:
		buf.WriteString(desc)
		buf.WriteByte(0)
		buf.WriteString(value)
	}
	return testFrame{id: "TXXX", data: buf.Bytes()}
}

// buildTag assembles an ID3v2 tag followed by a few bytes standing in for audio.
func buildTag(version, flags byte, ext []byte, frames ...testFrame) []byte {
	var body bytes.Buffer
	body.Write(ext)
	for _, f := range frames {
		body.WriteString(f.id)
		if version == 4 {
			body.Write(synchsafe(len(f.data)))
		} else {
			size := make([]byte, 4)
			binary.BigEndian.PutUint32(size, uint32(len(f.data)))
			body.Write(size)
		}
		fl := make([]byte, 2)
		binary.BigEndian.PutUint16(fl, f.flags)
		body.Write(fl)
		body.Write(f.data)
	}
	body.Write(make([]byte, 16))

	out := []byte{'I', 'D', '3', version, 0, flags}
	out = append(out, synchsafe(body.Len())...)
	out = append(out, body.Bytes()...)
	return append(out, 0xFF, 0xFB, 0x90, 0x00)
}

func read(t *testing.T, data []byte) (string, error) {
	t.Helper()
	return Read(bytes.NewReader(data), int64(len(data)))
}

func TestRead_Encodings(t *testing.T) {
	tests := []struct {
		name    string
		version byte
		enc     byte
	}{
		{"v2.3 latin1", 3, 0},
		{"v2.3 utf16 bom", 3, 1},
		{"v2.4 utf16be", 4, 2},
		{"v2.4 utf8", 4, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tag := buildTag(tt.version, 0, nil,
				testFrame{id: "TIT2", data: append([]byte{0}, "Title"...)},
				txxx(t, tt.enc, FrameDescription, markerXML),
			)

			got, err := read(t, tag)
			require.NoError(t, err)
			assert.Equal(t, markerXML, got)
		})
	}
}

func TestRead_FirstMarkerFrameWins(t *testing.T) {
	tag := buildTag(3, 0, nil,
		txxx(t, 0, "Narrator", "Someone"),
		txxx(t, 0, FrameDescription, "first"),
		txxx(t, 0, FrameDescription, "second"),
	)

	got, err := read(t, tag)
	require.NoError(t, err)
	assert.Equal(t, "first", got)
}

func TestRead_Latin1Value(t *testing.T) {
	tag := buildTag(3, 0, nil, txxx(t, 0, FrameDescription, "caf\xe9"))

	got, err := read(t, tag)
	require.NoError(t, err)
	assert.Equal(t, "café", got)
}

func TestRead_ExtendedHeader(t *testing.T) {
	v3ext := []byte{0, 0, 0, 6, 0, 0, 0, 0, 0, 0}
	got, err := read(t, buildTag(3, flagExtendedHeader, v3ext, txxx(t, 0, FrameDescription, "v3")))
	require.NoError(t, err)
	assert.Equal(t, "v3", got)

	v4ext := []byte{0, 0, 0, 6, 1, 0}
	got, err = read(t, buildTag(4, flagExtendedHeader, v4ext, txxx(t, 3, FrameDescription, "v4")))
	require.NoError(t, err)
	assert.Equal(t, "v4", got)
}

func TestRead_TagUnsynchronisation(t *testing.T) {
	plain := buildTag(3, 0, nil, txxx(t, 0, FrameDescription, "\xff\x00x\xff"))

	body := plain[headerSize : len(plain)-4]
	var stuffed []byte
	for _, b := range body {
		stuffed = append(stuffed, b)
		if b == 0xFF {
			stuffed = append(stuffed, 0x00)
		}
	}
	tag := []byte{'I', 'D', '3', 3, 0, flagUnsynchronisation}
	tag = append(tag, synchsafe(len(stuffed))...)
	tag = append(tag, stuffed...)

	got, err := read(t, tag)
	require.NoError(t, err)
	assert.Equal(t, "ÿ\x00xÿ", got)
}

func TestRead_FrameDataLengthIndicator(t *testing.T) {
	f := txxx(t, 3, FrameDescription, markerXML)
	f.flags = frameFlagDataLength
	f.data = append(synchsafe(len(f.data)), f.data...)

	got, err := read(t, buildTag(4, 0, nil, f))
	require.NoError(t, err)
	assert.Equal(t, markerXML, got)
}

func TestRead_NoMarkers(t *testing.T) {
	tests := map[string][]byte{
		"empty":           nil,
		"no tag":          []byte("RIFF....WAVEfmt "),
		"id3v2.2":         {'I', 'D', '3', 2, 0, 0, 0, 0, 0, 0},
		"no marker frame": buildTag(4, 0, nil, txxx(t, 3, "Narrator", "Someone")),
		"only padding":    buildTag(3, 0, nil),
	}

	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := read(t, data)
			require.Error(t, err)
			assert.ErrorIs(t, err, domainerrors.ErrEmptyMarkerSet)
		})
	}
}

func TestRead_TruncatedTag(t *testing.T) {
	tag := buildTag(3, 0, nil, txxx(t, 0, FrameDescription, markerXML))

	_, err := read(t, tag[:40])
	require.Error(t, err)
	assert.NotErrorIs(t, err, domainerrors.ErrEmptyMarkerSet)
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()

	withMarkers := filepath.Join(dir, "part01.mp3")
	require.NoError(t, os.WriteFile(withMarkers, buildTag(3, 0, nil, txxx(t, 1, FrameDescription, markerXML)), 0o600))

	got, err := ReadFile(withMarkers)
	require.NoError(t, err)
	assert.Equal(t, markerXML, got)

	markers, err := ReadMarkers(withMarkers)
	require.NoError(t, err)
	assert.Len(t, markers, 2)

	without := filepath.Join(dir, "part02.mp3")
	require.NoError(t, os.WriteFile(without, buildTag(3, 0, nil), 0o600))

	_, err = ReadFile(without)
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrEmptyMarkerSet)

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, map[string]string{"path": without}, domainErr.Details)

	_, err = ReadFile(filepath.Join(dir, "missing.mp3"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
