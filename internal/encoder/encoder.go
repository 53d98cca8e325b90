// Package encoder turns typed text and uploaded files into request parts.
package encoder

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"

	"ai-workbench/internal/model"

	"github.com/gabriel-vasile/mimetype"
)

const defaultMIMEType = "application/octet-stream"

// EncodingError reports an input that could not be read.
type EncodingError struct {
	Name string
	Err  error
}

func (e *EncodingError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("encode attachment: %v", e.Err)
	}
	return fmt.Sprintf("encode attachment %q: %v", e.Name, e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }

var errNilReader = errors.New("no content reader")

// Encode converts one input into a part. Text is passed through unchanged;
// a blob is read fully and base64 encoded.
func Encode(in model.Input) (model.Part, error) {
	switch v := in.(type) {
	case model.Text:
		return model.TextPart{Content: string(v)}, nil
	case model.Blob:
		return encodeBlob(v)
	case *model.Blob:
		if v == nil {
			return nil, &EncodingError{Err: errNilReader}
		}
		return encodeBlob(*v)
	default:
		return nil, &EncodingError{Err: fmt.Errorf("unsupported input %T", in)}
	}
}

// EncodeAll encodes inputs in order and stops at the first failure.
func EncodeAll(inputs ...model.Input) ([]model.Part, error) {
	parts := make([]model.Part, 0, len(inputs))
	for _, in := range inputs {
		p, err := Encode(in)
		if err != nil {
			return nil, err
		}
		parts = append(parts, p)
	}
	return parts, nil
}

// Decode returns the raw bytes of an attachment part.
func Decode(p model.AttachmentPart) ([]byte, error) {
	return base64.StdEncoding.DecodeString(p.Data)
}

func encodeBlob(b model.Blob) (model.Part, error) {
	if b.Reader == nil {
		return nil, &EncodingError{Name: b.Name, Err: errNilReader}
	}
	data, err := io.ReadAll(b.Reader)
	if err != nil {
		return nil, &EncodingError{Name: b.Name, Err: err}
	}
	return model.AttachmentPart{
		Data:     base64.StdEncoding.EncodeToString(data),
		MIMEType: resolveMIMEType(b, data),
	}, nil
}

// resolveMIMEType keeps a declared type; otherwise sniffs the content and
// falls back to the file extension.
func resolveMIMEType(b model.Blob, data []byte) string {
	if b.MIMEType != "" {
		return b.MIMEType
	}
	if len(data) > 0 {
		if mt := mimetype.Detect(data); mt.String() != defaultMIMEType {
			if base, _, err := mime.ParseMediaType(mt.String()); err == nil {
				return base
			}
			return mt.String()
		}
	}
	if ext := filepath.Ext(b.Name); ext != "" {
		if t := mime.TypeByExtension(ext); t != "" {
			return t
		}
	}
	return defaultMIMEType
}
