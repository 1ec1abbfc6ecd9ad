package types

// Format describes a raw media format as reported by the player response.
type Format struct {
	Itag            int
	URL             string
	Quality         string // qualityLabel, e.g. "720p60"
	MimeType        string
	Bitrate         int
	AverageBitrate  int
	FPS             int
	Width           int
	Height          int
	AudioQuality    string
	Size            int64
	SignatureCipher string
	// Muxed is set for entries of streamingData.formats (audio and video in one file).
	Muxed bool
}

// Thumbnail is a single preview image of a video.
type Thumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// VideoMetadata describes a video. Optional attributes are nil when the
// provider did not report them.
type VideoMetadata struct {
	ID            string
	Title         string
	Author        *string
	LengthSeconds *int64
	Views         *int64
	Description   *string
	Thumbnails    []Thumbnail
}

// MediaKind is the primary media type of a variant.
type MediaKind string

const (
	KindVideo MediaKind = "video"
	KindAudio MediaKind = "audio"
)

// StreamVariant is one addressable rendition of a video.
type StreamVariant struct {
	Itag        int
	MimeType    string
	MimeSubtype string
	Kind        MediaKind
	Resolution  *string // "720p"
	FPS         *int
	ABR         *string // "128kbps"
	Progressive bool
	Adaptive    bool
	// Size is the content length in bytes, nil when unknown.
	Size *int64
}
