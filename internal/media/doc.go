// Package media renders and caches thumbnails for cataloged files. Video
// thumbnails are frames extracted with ffmpeg; audio thumbnails come from
// cover art embedded in the file's tags.
package media
