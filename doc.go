// Package hebscribe turns lists of YouTube video URLs into Hebrew text
// transcripts.
//
// The work happens in two phases connected only by a file handoff. The
// caption phase asks YouTube for an existing Hebrew caption track per video
// and saves hits as transcript files; videos without a track are written to
// a remaining-links file. The transcribe phase reads that file, downloads
// each video's audio with yt-dlp (optionally reusing browser session
// cookies for restricted videos), runs a local Whisper model configured for
// Hebrew, and saves the resulting text.
//
// Processing is strictly sequential: one video is fully handled before the
// next begins, with configurable pacing between requests. A single video's
// failure is logged and counted but never aborts the batch; every phase
// ends with a printed summary including the success rate.
//
// The cli directory contains the command-line interface. Sub-packages:
//
//   - config: layered configuration (defaults, hebscribe.json, env vars)
//   - links: link file reading, remaining-list writing, batch splitting
//   - youtube: caption fetching, track availability, audio downloading
//   - whisper: local speech-recognition via the whisper CLI
//   - storage: transcript files, atomic writes, run locking
//   - pipeline: the two phase runners and their summaries
//   - retry: exponential backoff for transient failures
package hebscribe
