// Package session packs client session state into a compact, URL-safe token.
//
// Pipeline: JSON value → MessagePack → Brotli → base64url (no padding).
// Decoding reverses it and names the stage that failed.
package session

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/vmihailenco/msgpack/v5"
)

// DefaultQuality is the Brotli quality used when none is given.
const DefaultQuality = 11

// Stage names a step of the decode pipeline.
type Stage string

const (
	StageBase64  Stage = "base64"
	StageBrotli  Stage = "brotli"
	StageMsgpack Stage = "msgpack"
)

// MaxDecodedSize caps the decompressed MessagePack payload of a token.
const MaxDecodedSize = 8 << 20

var (
	// ErrDecode is wrapped by every decode failure.
	ErrDecode = errors.New("session decode")

	// ErrTooLarge is returned when a token decompresses past MaxDecodedSize.
	ErrTooLarge = fmt.Errorf("decompressed payload exceeds %d bytes", MaxDecodedSize)
)

// DecodeError reports which stage rejected the token.
type DecodeError struct {
	Stage Stage
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid %s data: %v", e.Stage, e.Err)
}

func (e *DecodeError) Unwrap() []error { return []error{ErrDecode, e.Err} }

// Stats records the size at each encoding step.
type Stats struct {
	JSONSize         int     `json:"original_json_size"`
	MsgpackSize      int     `json:"msgpack_size"`
	CompressedSize   int     `json:"compressed_size"`
	FinalSize        int     `json:"final_size"`
	MsgpackRatio     float64 `json:"msgpack_ratio"`
	CompressionRatio float64 `json:"compression_ratio"`
	TotalRatio       float64 `json:"total_ratio"`
}

// Encoded is a token plus its size breakdown.
type Encoded struct {
	Content string `json:"content"`
	Stats   Stats  `json:"stats"`
}

// Encode packs v. quality outside 0..11 is replaced by DefaultQuality.
func Encode(v any, quality int) (*Encoded, error) {
	if quality < brotli.BestSpeed || quality > brotli.BestCompression {
		quality = DefaultQuality
	}

	js, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal json: %w", err)
	}
	packed, err := msgpack.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal msgpack: %w", err)
	}

	var buf bytes.Buffer
	w := brotli.NewWriterLevel(&buf, quality)
	if _, err := w.Write(packed); err != nil {
		return nil, fmt.Errorf("brotli write: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("brotli close: %w", err)
	}
	compressed := buf.Len()

	content := base64.RawURLEncoding.EncodeToString(buf.Bytes())
	return &Encoded{
		Content: content,
		Stats: Stats{
			JSONSize:         len(js),
			MsgpackSize:      len(packed),
			CompressedSize:   compressed,
			FinalSize:        len(content),
			MsgpackRatio:     ratio(len(js), len(packed)),
			CompressionRatio: ratio(len(packed), compressed),
			TotalRatio:       ratio(len(js), len(content)),
		},
	}, nil
}

// Decode unpacks a token produced by Encode. Trailing '=' padding and
// surrounding whitespace are tolerated.
func Decode(token string) (any, error) {
	token = strings.TrimRight(strings.TrimSpace(token), "=")
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, &DecodeError{Stage: StageBase64, Err: err}
	}

	packed, err := io.ReadAll(io.LimitReader(brotli.NewReader(bytes.NewReader(raw)), MaxDecodedSize+1))
	if err != nil {
		return nil, &DecodeError{Stage: StageBrotli, Err: err}
	}
	if len(packed) > MaxDecodedSize {
		return nil, &DecodeError{Stage: StageBrotli, Err: ErrTooLarge}
	}

	var v any
	if err := msgpack.Unmarshal(packed, &v); err != nil {
		return nil, &DecodeError{Stage: StageMsgpack, Err: err}
	}
	return v, nil
}

func ratio(a, b int) float64 {
	if b == 0 {
		return 0
	}
	return float64(a) / float64(b)
}
