// Package meeting decodes the evidence document handed over by the tagging
// pipeline and converts it into a speakermatch.Input.
//
// A document mirrors the state the upstream stages accumulate for one
// meeting: embedding matches, name mentions (grouped by name or as a flat
// list), per-speaker utterances or raw diarized segments, and the participant
// names the user confirmed.
package meeting
