// Package streams turns raw provider formats into stream variants and orders
// them for presentation.
//
// Ordering is a strict total order over a variant set:
//
//   - progressive variants (audio and video in one file) come first
//   - among the rest, video comes before audio
//   - video is ordered by resolution, audio by bitrate, both descending;
//     progressive variants use resolution then bitrate
//   - remaining ties are broken by ascending itag
//
// Unknown or unparsable resolutions and bitrates count as zero.
package streams
