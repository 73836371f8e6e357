package photostore

import (
	"testing"
)

func TestDetectImage(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		wantMIME string
		wantErr  error
	}{
		{
			name:     "JPEG",
			data:     []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10},
			wantMIME: "image/jpeg",
		},
		{
			name:     "PNG",
			data:     []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00},
			wantMIME: "image/png",
		},
		{
			name:    "GIF is not accepted",
			data:    []byte("GIF89a"),
			wantErr: ErrUnsupported,
		},
		{
			name:    "PDF disguised as image",
			data:    []byte("%PDF-1.4 malicious content"),
			wantErr: ErrUnsupported,
		},
		{
			name:    "empty",
			data:    []byte{},
			wantErr: ErrUnsupported,
		},
		{
			name:    "too large",
			data:    append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, make([]byte, MaxPhotoSize)...),
			wantErr: ErrTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotMIME, err := DetectImage(tt.data)
			if err != tt.wantErr {
				t.Errorf("DetectImage() error = %v, want %v", err, tt.wantErr)
			}
			if gotMIME != tt.wantMIME {
				t.Errorf("DetectImage() mimeType = %q, want %q", gotMIME, tt.wantMIME)
			}
		})
	}
}
