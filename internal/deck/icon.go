package deck

import "strings"

// UploadPathPrefix is the path prefix of images uploaded to the backend.
const UploadPathPrefix = "/uploads"

// DefaultIconClass is shown for buttons without an icon.
const DefaultIconClass = "fa-solid fa-question"

// IconKind tells how an icon value is displayed.
type IconKind int

const (
	// IconClass is an icon font class token such as "fa-solid fa-star".
	IconClass IconKind = iota
	// IconImage is an absolute URL or an upload-relative path.
	IconImage
)

func (k IconKind) String() string {
	if k == IconImage {
		return "image"
	}
	return "class"
}

// Icon is a classified icon value.
type Icon struct {
	Kind  IconKind
	Value string
}

// IsImageRef reports whether an icon value refers to an image.
func IsImageRef(icon string) bool {
	return strings.HasPrefix(icon, "http") || strings.HasPrefix(icon, UploadPathPrefix)
}

// ClassifyIcon classifies an icon value by prefix. Empty values become the
// default icon class.
func ClassifyIcon(icon string) Icon {
	if IsImageRef(icon) {
		return Icon{Kind: IconImage, Value: icon}
	}
	if icon == "" {
		icon = DefaultIconClass
	}
	return Icon{Kind: IconClass, Value: icon}
}
