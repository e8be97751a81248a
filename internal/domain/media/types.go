// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package media holds the library item and stream model shared by the
// catalog, the encoder adapters and the cover provider.
package media

import (
	"strings"
	"time"
)

// VideoType classifies how an item's video is packaged on disk.
type VideoType string

const (
	VideoTypeFile   VideoType = "file"
	VideoTypeDvd    VideoType = "dvd"
	VideoTypeBluRay VideoType = "bluray"
	VideoTypeIso    VideoType = "iso"
)

// Protocol is the access protocol of an item's path.
type Protocol string

const (
	ProtocolFile Protocol = "file"
	ProtocolHTTP Protocol = "http"
)

// StreamType is the kind of an elementary stream.
type StreamType string

const (
	StreamTypeVideo    StreamType = "video"
	StreamTypeAudio    StreamType = "audio"
	StreamTypeSubtitle StreamType = "subtitle"
)

// ImageType names an artwork slot on an item.
type ImageType string

const (
	ImageTypePrimary ImageType = "primary"
	ImageTypeThumb   ImageType = "thumb"
)

// ParseImageType maps a case-insensitive name to a known ImageType.
func ParseImageType(s string) (ImageType, bool) {
	switch ImageType(strings.ToLower(strings.TrimSpace(s))) {
	case ImageTypePrimary:
		return ImageTypePrimary, true
	case ImageTypeThumb:
		return ImageTypeThumb, true
	}
	return "", false
}

// Item is a catalogued video.
type Item struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Path            string    `json:"path"`
	Container       string    `json:"container,omitempty"`
	Protocol        Protocol  `json:"protocol"`
	VideoType       VideoType `json:"videoType"`
	IsShortcut      bool      `json:"isShortcut"`
	IsPlaceholder   bool      `json:"isPlaceholder"`
	IsCompleteMedia bool      `json:"isCompleteMedia"`
	// Video3DFormat is empty for 2D content.
	Video3DFormat string        `json:"video3DFormat,omitempty"`
	RunTime       time.Duration `json:"runTime"`
	// DefaultVideoStreamIndex is nil when no video stream was detected.
	DefaultVideoStreamIndex *int `json:"defaultVideoStreamIndex,omitempty"`
}

// IsFileProtocol reports whether the item is reachable on the local filesystem.
func (i *Item) IsFileProtocol() bool {
	return i.Protocol == ProtocolFile
}

// Is3D reports whether the item carries stereoscopic video.
func (i *Item) Is3D() bool {
	return i.Video3DFormat != ""
}

// MediaStream describes one elementary stream of an item.
type MediaStream struct {
	ItemID string     `json:"itemId"`
	Index  int        `json:"index"`
	Type   StreamType `json:"type"`
	Codec  string     `json:"codec,omitempty"`
	Width  int        `json:"width,omitempty"`
	Height int        `json:"height,omitempty"`

	IsInterlaced bool `json:"isInterlaced"`
	// ColorTransfer is the transfer characteristic (e.g. smpte2084); empty when absent.
	ColorTransfer string `json:"colorTransfer,omitempty"`
}

// StreamQuery selects streams of one item. Index and Type are optional filters.
type StreamQuery struct {
	ItemID string
	Index  *int
	Type   StreamType
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}
