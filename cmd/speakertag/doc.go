// Command speakertag resolves diarized speaker labels to participant names.
//
// `speakertag resolve meeting.json` reads an evidence document, runs the
// resolver, and prints the mapping. Results can be saved to the local
// database with --save, reviewed with `speakertag runs show`, and corrected
// with `speakertag runs confirm`.
package main
