// Package speakermatch resolves anonymous diarized speaker labels
// (SPEAKER_00, SPEAKER_01, ...) into participant names.
//
// Resolution consumes already-extracted evidence only: name mentions
// attributed to speakers by an upstream extraction stage, per-speaker
// utterance logs, the participant roster, and a set of speakers already
// matched with certainty (for example by voice embedding comparison). It
// runs a fixed sequence of stages over that evidence:
//
//  1. aggregate mentions into one best claim per speaker
//  2. drop duplicate claims on the same name, keeping the strongest
//  3. assign by elimination when unmapped speakers and unused roster names
//     line up one to one
//  4. assign remaining speakers greedily by blended evidence score, then by
//     utterance count
//  5. fill anything left with "Unknown"
//
// Every speaker in the utterance log or the auto-matched set receives exactly
// one Entry, no non-Unknown name is used twice, and entries that a human
// should confirm are listed in Result.NeedsReview.
//
// Resolve is pure and deterministic. It holds no state between calls and may
// be invoked concurrently for independent meetings.
package speakermatch
