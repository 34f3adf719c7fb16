package storage

import (
	"strings"
	"testing"
)

func TestValidateUpload(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		size     int64
		wantErr  string
	}{
		{"pdf allowed", "contract.pdf", 1024, ""},
		{"docx allowed", "Contract.DOCX", 1024, ""},
		{"image allowed", "scan.jpeg", 1024, ""},
		{"executable rejected", "malware.exe", 1024, "not allowed"},
		{"no extension rejected", "README", 1024, "not allowed"},
		{"empty file rejected", "contract.pdf", 0, "empty"},
		{"oversized rejected", "contract.pdf", MaxFileSize + 1, "exceeds"},
		{"exactly at cap", "contract.pdf", MaxFileSize, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUpload(tt.fileName, tt.size)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("ValidateUpload(%q, %d) = %v, want nil", tt.fileName, tt.size, err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("ValidateUpload(%q, %d) = %v, want error containing %q", tt.fileName, tt.size, err, tt.wantErr)
			}
		})
	}
}
