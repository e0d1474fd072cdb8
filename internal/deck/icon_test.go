package deck

import "testing"

func TestClassifyIcon(t *testing.T) {
	tests := []struct {
		name     string
		icon     string
		wantKind IconKind
		want     string
	}{
		{"upload path", "/uploads/abc.png", IconImage, "/uploads/abc.png"},
		{"https url", "https://cdn.example.com/a.png", IconImage, "https://cdn.example.com/a.png"},
		{"http url", "http://host/a.png", IconImage, "http://host/a.png"},
		{"class token", "fa-solid fa-star", IconClass, "fa-solid fa-star"},
		{"empty", "", IconClass, DefaultIconClass},
		{"relative non-upload path", "/static/a.png", IconClass, "/static/a.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyIcon(tt.icon)
			if got.Kind != tt.wantKind || got.Value != tt.want {
				t.Errorf("ClassifyIcon(%q) = %v/%q, want %v/%q", tt.icon, got.Kind, got.Value, tt.wantKind, tt.want)
			}
		})
	}
}
