// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package library

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/ManuGH/animcover/internal/domain/media"
)

// itemNamespace scopes deterministic item IDs derived from paths.
var itemNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("animcover:item"))

// ItemID returns the stable ID for a path.
func ItemID(path string) string {
	return uuid.NewSHA1(itemNamespace, []byte(path)).String()
}

// kind is how a path is handled at registration.
type kind int

const (
	kindVideoFile kind = iota
	kindRemote
	kindShortcut
	kindPlaceholder
	kindIso
	kindDvd
	kindBluRay
)

// classify inspects path without decoding it. Only kindVideoFile is probed.
func classify(path string) (kind, error) {
	lower := strings.ToLower(path)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return kindRemote, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidPath, err)
	}

	if info.IsDir() {
		return classifyDir(path, info)
	}
	if !info.Mode().IsRegular() {
		return 0, fmt.Errorf("%w: %s is not a regular file", ErrInvalidPath, path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".strm":
		return kindShortcut, nil
	case ".disc":
		return kindPlaceholder, nil
	case ".iso":
		return kindIso, nil
	}
	return kindVideoFile, nil
}

func classifyDir(path string, info fs.FileInfo) (kind, error) {
	switch strings.ToUpper(info.Name()) {
	case "VIDEO_TS":
		return kindDvd, nil
	case "BDMV":
		return kindBluRay, nil
	}
	if isDir(filepath.Join(path, "VIDEO_TS")) {
		return kindDvd, nil
	}
	if isDir(filepath.Join(path, "BDMV")) {
		return kindBluRay, nil
	}
	return 0, fmt.Errorf("%w: %s is a directory without disc structure", ErrInvalidPath, path)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// baseItem fills the fields that follow from the path and its kind.
func baseItem(path string, k kind) media.Item {
	name := filepath.Base(path)
	if k != kindDvd && k != kindBluRay {
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}

	it := media.Item{
		ID:              ItemID(path),
		Name:            name,
		Path:            path,
		Protocol:        media.ProtocolFile,
		VideoType:       media.VideoTypeFile,
		IsCompleteMedia: true,
	}
	switch k {
	case kindRemote:
		it.Protocol = media.ProtocolHTTP
	case kindShortcut:
		it.IsShortcut = true
	case kindPlaceholder:
		it.IsPlaceholder = true
		it.IsCompleteMedia = false
	case kindIso:
		it.VideoType = media.VideoTypeIso
	case kindDvd:
		it.VideoType = media.VideoTypeDvd
	case kindBluRay:
		it.VideoType = media.VideoTypeBluRay
	}
	if k != kindRemote {
		it.Container = containerFromExt(path)
	}
	return it
}

func containerFromExt(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}
