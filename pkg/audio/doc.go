// Package audio is an umbrella for the audio sub-packages:
//
//   - pcm: fixed-format decoded audio buffers and sample-rate math
//   - wav: the RIFF/WAVE codec used for synthesized segments
package audio
