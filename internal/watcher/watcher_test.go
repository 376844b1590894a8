package watcher

import "testing"

func TestDocumentID(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"notes.txt", "notes"},
		{"/var/data/report.md", "report"},
		{"archive.tar.gz", "archive.tar"},
		{"noextension", "noextension"},
		{"./dir/lecture-01.txt", "lecture-01"},
	}

	for _, tt := range tests {
		if got := DocumentID(tt.path); got != tt.want {
			t.Errorf("DocumentID(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
