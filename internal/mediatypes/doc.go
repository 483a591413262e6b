// Package mediatypes defines the file-type and media-kind classification
// used throughout the application.
//
// Two separate classifications exist:
//
//   - FileType is the scanner-level classification derived purely from a
//     file's extension: video, audio, or subtitle. Files with any other
//     extension are ignored by the scanner.
//   - MediaKind is the catalog-level classification stored on a media
//     record: movie, tv_episode, music, video, or audio. It is derived
//     during reconciliation from the FileType plus filename parsing and is
//     never set directly by the user.
//
// Supported extensions:
//   - Video: mp4, mkv, avi, mov, wmv, flv, webm, m4v
//   - Audio: mp3, flac, wav, aac, ogg, m4a, wma, opus
//   - Subtitle: srt, ass, vtt, sub
package mediatypes
