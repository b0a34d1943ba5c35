// Package library moves inbox audio files into an artist/album tree,
// skipping files whose title already exists in the destination folder.
package library
