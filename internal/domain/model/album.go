//revive:disable-next-line:var-naming // legacy package name used across the project
package model

import (
	"errors"
	"strings"
	"unicode/utf8"
)

const maxAlbumFieldLen = 255

// Album is one row of the album catalog table.
type Album struct {
	AlbumName   string `dynamodbav:"AlbumName"   json:"album_name"`
	Artist      string `dynamodbav:"Artist"      json:"artist"`
	NumSongs    int    `dynamodbav:"NumSongs"    json:"num_songs"`
	RecordLabel string `dynamodbav:"RecordLabel" json:"record_label"`
	ReleaseYear int    `dynamodbav:"ReleaseYear" json:"release_year"`
	Sales       int64  `dynamodbav:"Sales"       json:"sales"`
}

// Validate checks the album for storage. AlbumName is the table key and is
// required; the remaining fields only need to be within bounds.
func (a Album) Validate() error {
	name := strings.TrimSpace(a.AlbumName)
	if name == "" {
		return errors.New("album name is required and cannot be empty")
	}
	if utf8.RuneCountInString(name) > maxAlbumFieldLen {
		return errors.New("album name cannot exceed 255 characters")
	}
	if utf8.RuneCountInString(a.Artist) > maxAlbumFieldLen {
		return errors.New("artist cannot exceed 255 characters")
	}
	if a.NumSongs < 0 {
		return errors.New("number of songs cannot be negative")
	}
	if a.Sales < 0 {
		return errors.New("sales cannot be negative")
	}
	return nil
}
