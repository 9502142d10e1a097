package game

import "testing"

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", "Summer Party", "Summer Party"},
		{"trims whitespace", "  Summer Party  ", "Summer Party"},
		{"strips separators", `pics/2024\vacation`, "pics2024vacation"},
		{"strips reserved", `a<b>c:d"e|f?g*h`, "abcdefgh"},
		{"only reserved", `<>:"/\|?*`, ""},
		{"whitespace only", "   ", ""},
		{"unicode kept", "Küche Café", "Küche Café"},
		{"inner whitespace kept", "a  b", "a  b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeName(tt.raw); got != tt.want {
				t.Errorf("SanitizeName(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestAllowedImageExtension(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"photo.jpg", true},
		{"photo.JPG", true},
		{"photo.jpeg", true},
		{"photo.png", true},
		{"photo.GIF", true},
		{"photo.webp", true},
		{"photo.bmp", true},
		{"photo.tiff", false},
		{"photo.svg", false},
		{"photo", false},
		{"archive.jpg.zip", false},
	}
	for _, tt := range tests {
		if got := AllowedImageExtension(tt.name); got != tt.want {
			t.Errorf("AllowedImageExtension(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestMIMETypeFor(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"a.jpg", "image/jpeg"},
		{"a.jpeg", "image/jpeg"},
		{"a.PNG", "image/png"},
		{"a.gif", "image/gif"},
		{"a.webp", "image/webp"},
		{"a.bmp", "image/bmp"},
		// Unknown extensions fall back to jpeg rather than failing.
		{"a.xyz", "image/jpeg"},
		{"noext", "image/jpeg"},
	}
	for _, tt := range tests {
		if got := MIMETypeFor(tt.name); got != tt.want {
			t.Errorf("MIMETypeFor(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestImageAnswer(t *testing.T) {
	tests := []struct {
		fileName string
		want     string
	}{
		{"Elvis Presley.jpg", "Elvis Presley"},
		{"photo.final.png", "photo.final"},
		{"noext", "noext"},
	}
	for _, tt := range tests {
		if got := ImageAnswer(tt.fileName); got != tt.want {
			t.Errorf("ImageAnswer(%q) = %q, want %q", tt.fileName, got, tt.want)
		}
	}
}

func TestKindValid(t *testing.T) {
	if !KindImage.Valid() || !KindQuiz.Valid() {
		t.Error("expected image and quiz kinds to be valid")
	}
	if Kind("video").Valid() || Kind("").Valid() {
		t.Error("expected unknown kinds to be invalid")
	}
}
