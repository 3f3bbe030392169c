// Package mediamarkers reads the chapter markers that audiobook parts carry in an
// ID3v2 user text frame.
package mediamarkers

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	domainerrors "github.com/listenupapp/listenup-timeline/internal/errors"
)

// FrameDescription is the TXXX description of the marker frame.
const FrameDescription = "OverDrive MediaMarkers"

const (
	headerSize      = 10
	frameHeaderSize = 10

	flagUnsynchronisation = 0x80
	flagExtendedHeader    = 0x40

	frameFlagUnsynchronisation = 0x0002
	frameFlagDataLength        = 0x0001
)

// ReadFile returns the marker frame text of the MP3 at path.
func ReadFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}

	text, err := Read(f, info.Size())
	if err != nil {
		if domainerrors.Is(err, domainerrors.ErrEmptyMarkerSet) {
			return "", domainerrors.EmptyMarkerSetf("%s has no %s frame", path, FrameDescription).
				WithDetails(map[string]string{"path": path})
		}
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return text, nil
}

// Read walks the ID3v2.3 or ID3v2.4 tag at the start of r and returns the value of
// the first TXXX frame described as FrameDescription. Later marker frames are
// ignored. Inputs without a tag or without the frame yield an EmptyMarkerSet error.
func Read(r io.ReaderAt, size int64) (string, error) {
	if size < headerSize {
		return "", noMarkers()
	}

	header := make([]byte, headerSize)
	if err := readFull(r, header, 0); err != nil {
		return "", fmt.Errorf("reading tag header: %w", err)
	}
	if string(header[0:3]) != "ID3" {
		return "", noMarkers()
	}

	version := header[3]
	if version != 3 && version != 4 {
		return "", noMarkers()
	}
	flags := header[5]
	tagSize := int64(decodeSynchsafe(header[6:10]))
	if headerSize+tagSize > size {
		return "", fmt.Errorf("tag size %d exceeds input size %d", tagSize, size)
	}

	tag := make([]byte, tagSize)
	if err := readFull(r, tag, headerSize); err != nil {
		return "", fmt.Errorf("reading tag: %w", err)
	}
	if version == 3 && flags&flagUnsynchronisation != 0 {
		tag = removeUnsynchronisation(tag)
	}

	offset := 0
	if flags&flagExtendedHeader != 0 {
		if len(tag) < 4 {
			return "", noMarkers()
		}
		if version == 4 {
			offset = int(decodeSynchsafe(tag[0:4]))
		} else {
			offset = int(binary.BigEndian.Uint32(tag[0:4])) + 4
		}
	}

	for offset+frameHeaderSize <= len(tag) {
		fh := tag[offset : offset+frameHeaderSize]
		// Padding
		if fh[0] == 0 {
			break
		}

		id := string(fh[0:4])
		var frameSize int
		if version == 4 {
			frameSize = int(decodeSynchsafe(fh[4:8]))
		} else {
			frameSize = int(binary.BigEndian.Uint32(fh[4:8]))
		}
		frameFlags := binary.BigEndian.Uint16(fh[8:10])

		start := offset + frameHeaderSize
		end := start + frameSize
		if end > len(tag) {
			break
		}
		offset = end

		if id != "TXXX" {
			continue
		}

		data := tag[start:end]
		if version == 4 {
			if frameFlags&frameFlagDataLength != 0 && len(data) >= 4 {
				data = data[4:]
			}
			if frameFlags&frameFlagUnsynchronisation != 0 {
				data = removeUnsynchronisation(data)
			}
		}

		desc, value, ok := parseTXXX(data)
		if ok && desc == FrameDescription {
			return value, nil
		}
	}

	return "", noMarkers()
}

// readFull accepts io.EOF alongside a complete read.
func readFull(r io.ReaderAt, p []byte, off int64) error {
	n, err := r.ReadAt(p, off)
	if n == len(p) && errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func noMarkers() error {
	return domainerrors.EmptyMarkerSetf("no %s frame", FrameDescription)
}

// parseTXXX splits a user text frame: [encoding][description\0][value].
func parseTXXX(data []byte) (desc, value string, ok bool) {
	if len(data) < 2 {
		return "", "", false
	}
	enc := data[0]
	body := data[1:]

	nullIdx := findNullTerminator(body, enc)
	if nullIdx < 0 {
		return "", "", false
	}

	desc, err := decodeText(body[:nullIdx], enc)
	if err != nil {
		return "", "", false
	}
	rest := body[nullIdx+terminatorSize(enc):]
	// A UTF-16 value carries its own BOM.
	value, err = decodeText(rest, enc)
	if err != nil {
		return "", "", false
	}
	return desc, trimNulls(value), true
}

// decodeText decodes ID3 text in the frame's declared encoding.
func decodeText(data []byte, enc byte) (string, error) {
	if len(data) == 0 {
		return "", nil
	}

	var dec *encoding.Decoder
	switch enc {
	case 0: // ISO-8859-1
		dec = charmap.ISO8859_1.NewDecoder()
	case 1: // UTF-16 with BOM
		dec = unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
	case 2: // UTF-16BE without BOM
		dec = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()
	default: // UTF-8
		return string(data), nil
	}

	out, err := dec.Bytes(data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func findNullTerminator(data []byte, enc byte) int {
	switch enc {
	case 1, 2:
		for i := 0; i+1 < len(data); i += 2 {
			if data[i] == 0 && data[i+1] == 0 {
				return i
			}
		}
		return -1
	default:
		return bytes.IndexByte(data, 0)
	}
}

func terminatorSize(enc byte) int {
	if enc == 1 || enc == 2 {
		return 2
	}
	return 1
}

func trimNulls(s string) string {
	for len(s) > 0 && s[len(s)-1] == 0 {
		s = s[:len(s)-1]
	}
	return s
}

// decodeSynchsafe decodes a 28-bit synchsafe integer.
func decodeSynchsafe(b []byte) uint32 {
	return uint32(b[0]&0x7F)<<21 |
		uint32(b[1]&0x7F)<<14 |
		uint32(b[2]&0x7F)<<7 |
		uint32(b[3]&0x7F)
}

// removeUnsynchronisation reverses the 0xFF 0x00 byte stuffing.
func removeUnsynchronisation(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		out = append(out, b[i])
		if b[i] == 0xFF && i+1 < len(b) && b[i+1] == 0x00 {
			i++
		}
	}
	return out
}
