package media

import (
	"fmt"
	"os"

	"github.com/dhowden/tag"

	"github.com/ChristianPRO1982/audio-splitter/internal"
)

// ReadTags extracts the embedded title, artist and album of an audio file.
// Files without a supported tag block return tag.ErrNoTagsFound.
func ReadTags(path string) (internal.AudioTags, error) {
	file, err := os.Open(path)
	if err != nil {
		return internal.AudioTags{}, err
	}
	defer file.Close()

	metadata, err := tag.ReadFrom(file)
	if err != nil {
		return internal.AudioTags{}, err
	}

	return internal.AudioTags{
		Title:    metadata.Title(),
		Artist:   metadata.Artist(),
		Album:    metadata.Album(),
		Format:   string(metadata.Format()),
		FileType: string(metadata.FileType()),
	}, nil
}

// SniffFileType identifies the container of an audio file from its content
func SniffFileType(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	_, ft, err := tag.Identify(file)
	if err != nil {
		return "", fmt.Errorf("failed to identify %s: %w", path, err)
	}
	return string(ft), nil
}
