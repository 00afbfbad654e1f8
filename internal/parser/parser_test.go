package parser

import (
	"errors"
	"strings"
	"testing"
)

func TestExtractTextPlain(t *testing.T) {
	doc := Document{Name: "notes.txt", Data: []byte("line one\nline two\n")}
	text, err := ExtractText(doc)
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if !strings.Contains(text, "line one") || !strings.Contains(text, "line two") {
		t.Errorf("extracted text = %q", text)
	}
}

func TestExtractTextErrors(t *testing.T) {
	tests := []struct {
		name    string
		doc     Document
		wantErr error
	}{
		{
			name:    "unsupported extension",
			doc:     Document{Name: "image.png", Data: []byte{0x89, 0x50}},
			wantErr: ErrUnsupportedFormat,
		},
		{
			name:    "empty text file",
			doc:     Document{Name: "empty.txt", Data: []byte("   \n  ")},
			wantErr: ErrUnparseable,
		},
		{
			name:    "garbage pdf bytes",
			doc:     Document{Name: "broken.pdf", Data: []byte("this is not a pdf")},
			wantErr: ErrUnparseable,
		},
		{
			name:    "garbage docx bytes",
			doc:     Document{Name: "broken.docx", Data: []byte("not a zip archive")},
			wantErr: ErrUnparseable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExtractText(tt.doc)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			if err != nil && !strings.Contains(err.Error(), tt.doc.Name) {
				t.Errorf("error %q should name the failing document", err)
			}
		})
	}
}
