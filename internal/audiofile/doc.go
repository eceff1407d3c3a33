// Package audiofile provides program-material sources and rendered-output
// sinks for the host driver: WAV and MP3 file input, generated test signals,
// WAV file output and live playback.
//
// Sources deliver mono float32 samples; multichannel files are averaged down
// to one channel. Sinks take one slice per output channel.
package audiofile
