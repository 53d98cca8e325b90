package model

import "io"

// Part is one unit of a composed request payload. The set is closed:
// only TextPart and AttachmentPart implement it.
type Part interface{ isPart() }

// TextPart carries plain text as-is.
type TextPart struct {
	Content string `json:"content"`
}

func (TextPart) isPart() {}

// AttachmentPart carries a binary attachment as standard base64 plus its MIME type.
type AttachmentPart struct {
	Data     string `json:"data"`
	MIMEType string `json:"mimeType"`
}

func (AttachmentPart) isPart() {}

// Input is something the encoder can turn into a Part: Text or Blob.
type Input interface{ isInput() }

// Text is typed free text.
type Text string

func (Text) isInput() {}

// Blob is an uploaded file. Reader is consumed once by the encoder.
type Blob struct {
	Name     string
	MIMEType string
	Reader   io.Reader
}

func (Blob) isInput() {}

// InputKind names an input for logs ("text" / "file").
func InputKind(in Input) string {
	switch in.(type) {
	case Text:
		return "text"
	case Blob, *Blob:
		return "file"
	default:
		return "unknown"
	}
}
